package migrate

import "github.com/relgenhq/relgen/schema"

// stagedGraph is the planner's working graph: one entry per schema.NodeID,
// carrying the resolved diff classification plus the forward dependency
// edges needed both for the topological walk and for the coalescing DFS.
// Cycles are avoided by keeping all back-references indirect.
type stagedGraph struct {
	order    []schema.NodeID // insertion order — the walk's tie-break rule
	deps     map[schema.NodeID][]schema.NodeID
	children map[schema.NodeID][]schema.NodeID
	state    map[schema.NodeID]*diffNode // nil/absent once erased
}

func newStagedGraph() *stagedGraph {
	return &stagedGraph{
		deps:     make(map[schema.NodeID][]schema.NodeID),
		children: make(map[schema.NodeID][]schema.NodeID),
		state:    make(map[schema.NodeID]*diffNode),
	}
}

func (g *stagedGraph) add(id schema.NodeID, d *diffNode) {
	if _, exists := g.state[id]; !exists {
		g.order = append(g.order, id)
	}
	g.state[id] = d
}

func (g *stagedGraph) addEdge(from, to schema.NodeID) {
	g.deps[to] = append(g.deps[to], from)
	g.children[from] = append(g.children[from], to)
}

// topoWalk visits every node in g exactly once, in dependency order
// (ancestors before descendants), honoring insertion order among nodes
// that become available simultaneously. visit is called once per node, in
// order; a table is always visited before its fields/constraints/indexes,
// which is what lets the Create/Delete dispatch in Plan coalesce a
// child into its parent before the child would otherwise be visited on
// its own. The node may have already been erased by an earlier sibling's
// coalescing pass, in which case g.state[id] is nil when visit runs.
func (g *stagedGraph) topoWalk(visit func(id schema.NodeID)) {
	indegree := make(map[schema.NodeID]int, len(g.order))
	for _, id := range g.order {
		indegree[id] = len(g.deps[id])
	}
	processed := make(map[schema.NodeID]bool, len(g.order))
	remaining := len(g.order)
	for remaining > 0 {
		progressed := false
		for _, id := range g.order {
			if processed[id] || indegree[id] > 0 {
				continue
			}
			processed[id] = true
			remaining--
			progressed = true
			visit(id)
			for _, child := range g.children[id] {
				indegree[child]--
			}
		}
		if !progressed {
			// A cycle would land here; the schema builders only ever
			// produce DAGs (fields/constraints/indexes depend strictly
			// on their owning or referenced tables), so this is
			// unreachable for well-formed input.
			panic("migrate: dependency cycle in schema graph")
		}
	}
}

// coalesceDFS walks forward from root over nodes still classified the
// same diffKind as root, calling absorb(child) for each; a child is
// erased (and its own descendants visited) when absorb reports true —
// this is the delete-coalesce / create-coalesce pass.
func (g *stagedGraph) coalesceDFS(root schema.NodeID, kind diffKind, absorb func(child *diffNode) bool) {
	var visit func(id schema.NodeID)
	visit = func(id schema.NodeID) {
		for _, child := range g.children[id] {
			cd := g.state[child]
			if cd == nil || cd.kind != kind {
				continue
			}
			if absorb(cd) {
				g.state[child] = nil
				visit(child)
			}
		}
	}
	visit(root)
}
