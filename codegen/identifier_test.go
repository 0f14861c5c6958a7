package codegen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExportedIdent(t *testing.T) {
	assert.Equal(t, "GetUserById", exportedIdent("get_user_by_id"))
	assert.Equal(t, "Id", exportedIdent("id"))
	assert.Equal(t, "UserName", exportedIdent("user-name"))
	assert.Equal(t, "Field", exportedIdent(""))
}
