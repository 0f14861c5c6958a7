package expr

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/relgenhq/relgen/dialect"
	"github.com/relgenhq/relgen/token"
	"github.com/relgenhq/relgen/types"
)

// Lit is a literal value of a single primitive type. Value must hold the
// Go type compileLiteral expects for Primitive (bool, int32, int64,
// uint32, float32, float64, string, []byte or time.Time).
//
// Lit implements types.DefaultExpr directly, so a Lit value can be used
// as a field's MigrationDefault without any adapter.
type Lit struct {
	Primitive types.Primitive
	Value     any
}

func (l Lit) Build(ctx *CheckContext, path []string, _ Scope) (types.ExprType, *token.Buffer) {
	path = extend(path, "Literal")
	text, err := compileLiteral(l.Primitive, l.Value, ctx.Dialect)
	if err != nil {
		ctx.Errf(path, "%v", err)
		return nil, token.New()
	}
	b := token.New()
	b.AppendLiteral(text)
	return types.ExprType{{Type: types.FullType{Primitive: l.Primitive}}}, b
}

// CompileDefaultLiteral satisfies types.DefaultExpr.
func (l Lit) CompileDefaultLiteral(d string) (string, error) {
	return compileLiteral(l.Primitive, l.Value, d)
}

func compileLiteral(p types.Primitive, v any, d string) (string, error) {
	switch p {
	case types.Bool:
		b, ok := v.(bool)
		if !ok {
			return "", fmt.Errorf("expr: bool literal requires a bool value, got %T", v)
		}
		if d == dialect.SQLite {
			if b {
				return "1", nil
			}
			return "0", nil
		}
		if b {
			return "TRUE", nil
		}
		return "FALSE", nil
	case types.I32:
		n, ok := v.(int32)
		if !ok {
			return "", fmt.Errorf("expr: i32 literal requires an int32 value, got %T", v)
		}
		return strconv.FormatInt(int64(n), 10), nil
	case types.I64:
		n, ok := v.(int64)
		if !ok {
			return "", fmt.Errorf("expr: i64 literal requires an int64 value, got %T", v)
		}
		return strconv.FormatInt(n, 10), nil
	case types.U32:
		if d != dialect.SQLite {
			return "", fmt.Errorf("expr: u32 literal is only valid under SQLite")
		}
		n, ok := v.(uint32)
		if !ok {
			return "", fmt.Errorf("expr: u32 literal requires a uint32 value, got %T", v)
		}
		return strconv.FormatUint(uint64(n), 10), nil
	case types.F32:
		f, ok := v.(float32)
		if !ok {
			return "", fmt.Errorf("expr: f32 literal requires a float32 value, got %T", v)
		}
		return strconv.FormatFloat(float64(f), 'g', -1, 32), nil
	case types.F64:
		f, ok := v.(float64)
		if !ok {
			return "", fmt.Errorf("expr: f64 literal requires a float64 value, got %T", v)
		}
		return strconv.FormatFloat(f, 'g', -1, 64), nil
	case types.String:
		s, ok := v.(string)
		if !ok {
			return "", fmt.Errorf("expr: string literal requires a string value, got %T", v)
		}
		return "'" + strings.ReplaceAll(s, "'", "''") + "'", nil
	case types.Bytes:
		bs, ok := v.([]byte)
		if !ok {
			return "", fmt.Errorf("expr: bytes literal requires a []byte value, got %T", v)
		}
		return "x'" + hex.EncodeToString(bs) + "'", nil
	case types.UTCTimeS:
		t, ok := v.(time.Time)
		if !ok {
			return "", fmt.Errorf("expr: utc_time_s literal requires a time.Time value, got %T", v)
		}
		if d == dialect.SQLite {
			return strconv.FormatInt(t.Unix(), 10), nil
		}
		return "'" + t.UTC().Format(time.RFC3339) + "'", nil
	case types.UTCTimeMS, types.FixedOffsetTimeMS:
		t, ok := v.(time.Time)
		if !ok {
			return "", fmt.Errorf("expr: timestamp literal requires a time.Time value, got %T", v)
		}
		return "'" + t.Format(time.RFC3339Nano) + "'", nil
	case types.Auto:
		n, ok := v.(int64)
		if !ok {
			return "", fmt.Errorf("expr: auto literal requires an int64 value, got %T", v)
		}
		return strconv.FormatInt(n, 10), nil
	default:
		return "", fmt.Errorf("expr: unknown primitive %s", p)
	}
}

// TypedNullLit is a NULL literal carrying an explicit type, since NULL
// alone has no type to check against.
type TypedNullLit struct {
	Type types.FullType
}

func (n TypedNullLit) Build(_ *CheckContext, _ []string, _ Scope) (types.ExprType, *token.Buffer) {
	b := token.New()
	b.AppendKeyword("NULL")
	t := n.Type
	t.Nullable = true
	return types.ExprType{{Type: t}}, b
}

// ArrayLit is an array constructed from a literal list of same-shape
// scalar expressions, typed as an array of its elements' common type.
type ArrayLit struct {
	Elements []Expr
}

func (a ArrayLit) Build(ctx *CheckContext, path []string, scope Scope) (types.ExprType, *token.Buffer) {
	path = extend(path, "Array literal")
	if len(a.Elements) == 0 {
		ctx.Errf(path, "array literal must have at least one element")
		return nil, token.New()
	}

	elemTypes := make([]types.FullType, len(a.Elements))
	parts := make([]func(*token.Buffer), len(a.Elements))
	for i, e := range a.Elements {
		t, eb := e.Build(ctx, extend(path, fmt.Sprintf("Element %d", i)), scope)
		if s, ok := t.Scalar(); ok {
			elemTypes[i] = s
		} else {
			ctx.Errf(path, "array literal element %d must be a scalar expression", i)
		}
		eb := eb
		parts[i] = func(b *token.Buffer) { b.AppendLiteral(eb.String()) }
	}
	for i := 1; i < len(elemTypes); i++ {
		if !elemTypes[0].GeneralSame(elemTypes[i]) {
			ctx.Errf(path, "array literal elements 0 and %d have incompatible types: %s vs %s", i, elemTypes[0], elemTypes[i])
		}
	}

	b := token.New()
	b.Sub(func(inner *token.Buffer) {
		inner.Join(parts, ",")
	})
	elemType := elemTypes[0]
	elemType.Array = true
	return types.ExprType{{Type: elemType}}, b
}
