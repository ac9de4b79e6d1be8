package crs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ma595/ffcx"
)

func TestPushRow(t *testing.T) {
	c := New(4, 5)
	require.NoError(t, c.PushRow(nil))
	require.NoError(t, c.PushRow([]int{0}))
	require.NoError(t, c.PushRow([]int{1, 0}))
	assert.False(t, c.Complete())
	require.NoError(t, c.PushRow([]int{2, 2}))

	assert.True(t, c.Complete())
	assert.Equal(t, 4, c.Len())
	assert.Equal(t, 5, c.NumNonzeros())
	assert.Equal(t, []int{0, 0, 1, 3, 5}, c.RowOffsets())
	assert.Equal(t, []int{0, 1, 0, 2, 2}, c.Columns())
	assert.Empty(t, c.Row(0))
	assert.Equal(t, []int{1, 0}, c.Row(2))
	assert.Equal(t, [][]int{{}, {0}, {1, 0}, {2, 2}}, c.Rows())
}

func TestPushRow_StorageAllocatedOnce(t *testing.T) {
	c := New(3, 4)
	before := cap(c.columns)
	require.NoError(t, c.PushRow([]int{1, 2}))
	require.NoError(t, c.PushRow([]int{0}))
	require.NoError(t, c.PushRow([]int{0}))
	assert.Equal(t, before, cap(c.columns))
	assert.Equal(t, 4, c.Capacity())
}

func TestPushRow_Errors(t *testing.T) {
	t.Run("too many rows", func(t *testing.T) {
		c := New(1, 0)
		require.NoError(t, c.PushRow(nil))
		err := c.PushRow(nil)
		require.Error(t, err)
		assert.True(t, ffcx.IsDimensionMismatchErr(err))
	})

	t.Run("capacity exceeded", func(t *testing.T) {
		c := New(2, 1)
		err := c.PushRow([]int{0, 1})
		require.Error(t, err)
		assert.True(t, ffcx.IsDimensionMismatchErr(err))
		assert.Equal(t, 0, c.Len(), "failed push must not add a row")
	})

	t.Run("column out of range", func(t *testing.T) {
		c := New(2, 2)
		err := c.PushRow([]int{2})
		require.Error(t, err)
		assert.True(t, ffcx.IsInvalidInputErr(err))
	})
}

func TestRow_AppendDoesNotClobber(t *testing.T) {
	c, err := FromRows([][]int{{1}, {0}})
	require.NoError(t, err)

	r := c.Row(0)
	_ = append(r, 99)
	assert.Equal(t, []int{0}, c.Row(1))
}

func TestFromRows_Empty(t *testing.T) {
	c, err := FromRows(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, c.Len())
	assert.True(t, c.Complete())
	assert.Equal(t, []int{0}, c.RowOffsets())
}

func TestInvert(t *testing.T) {
	c, err := FromRows([][]int{
		{},
		{},
		{0, 1},
		{0, 2},
	})
	require.NoError(t, err)

	inv := c.Invert()
	assert.Equal(t, 4, inv.Len())
	assert.Equal(t, c.NumNonzeros(), inv.NumNonzeros())
	assert.Equal(t, [][]int{{2, 3}, {2}, {3}, {}}, inv.Rows())

	assert.Equal(t, c.Rows(), inv.Invert().Rows())
}
