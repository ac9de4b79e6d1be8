package permute_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ma595/ffcx/internal/codegen/cnodes"
	"github.com/ma595/ffcx/pkg/permute"
)

func TestGenerateC(t *testing.T) {
	src, err := permute.GenerateC([]int{1, 0}, permute.Reverse, permute.Options{Array: "B"})
	require.NoError(t, err)
	assert.Contains(t, src, "static const int perm_values[2] = {1, 0};")
	assert.Contains(t, src, "B[perm_values[perm_c]]")

	empty, err := permute.GenerateC([]int{0, 1}, permute.Forward, permute.Options{})
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestEmitInPlace(t *testing.T) {
	d, err := permute.Decompose([]int{2, 0, 1}, permute.Forward)
	require.NoError(t, err)

	stmt, err := permute.EmitInPlace(cnodes.C, d, permute.Options{Cursor: permute.CursorDescending})
	require.NoError(t, err)
	assert.Contains(t, stmt.CStmt(), "--perm_c;")

	assert.NoError(t, permute.Verify([]int{2, 0, 1}, permute.Reverse, permute.Options{Rows: 2}))
}
