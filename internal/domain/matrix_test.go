package domain

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMatrix(bt BuildType) *Matrix {
	return &Matrix{ID: "root", OwnerID: 1, Status: StatusBase, BuildType: bt}
}

func TestAttachFillsFirstLevelThenSecond(t *testing.T) {
	m := newTestMatrix(BuildTypeTrinary)
	for i := 0; i < 3; i++ {
		require.NoError(t, m.AttachFirstLevel(fmt.Sprintf("c%d", i), "", int64(10+i)))
	}
	assert.True(t, m.FirstLevelFull())
	assert.Equal(t, 0, m.SecondLevelCount())
	assert.ErrorIs(t, m.AttachFirstLevel("c3", "", 13), ErrMatrixFull)

	for i := 0; i < 3; i++ {
		require.NoError(t, m.AttachSecondLevel("c0", fmt.Sprintf("g0%d", i), "", int64(20+i)))
	}
	assert.ErrorIs(t, m.AttachSecondLevel("c0", "g03", "", 23), ErrBranchFull)
	assert.ErrorIs(t, m.AttachSecondLevel("missing", "g99", "", 99), ErrBranchNotFound)
	assert.Equal(t, 6, m.Occupied())
	assert.Len(t, m.Members, m.Occupied())
}

func TestCapacityInvariant(t *testing.T) {
	for _, bt := range []BuildType{BuildTypeBinary, BuildTypeTrinary} {
		m := newTestMatrix(bt)
		n := 0
		for i := 0; i < 50; i++ {
			id := fmt.Sprintf("n%d", i)
			if err := m.AttachFirstLevel(id, "", int64(i)); err == nil {
				n++
				continue
			}
			for _, parent := range m.FirstLevelIDs() {
				if err := m.AttachSecondLevel(parent, id, "", int64(i)); err == nil {
					n++
					break
				}
			}
		}
		assert.Equal(t, bt.Capacity(), n)
		assert.Equal(t, bt.Capacity(), m.Occupied())
		assert.True(t, m.IsFull())
		assert.Len(t, m.Members, m.Occupied())
	}
}

func TestAttachRejectsDuplicateNode(t *testing.T) {
	m := newTestMatrix(BuildTypeBinary)
	require.NoError(t, m.AttachFirstLevel("a", "", 1))
	assert.ErrorIs(t, m.AttachFirstLevel("a", "", 1), ErrNodeAlreadyAttached)
	assert.ErrorIs(t, m.AttachSecondLevel("a", "a", "", 1), ErrNodeAlreadyAttached)
}

func TestCloneIsDeep(t *testing.T) {
	m := newTestMatrix(BuildTypeBinary)
	require.NoError(t, m.AttachFirstLevel("a", "label-a", 1))
	c := m.Clone()
	require.NoError(t, c.AttachSecondLevel("a", "b", "label-b", 2))

	assert.Equal(t, 1, m.Occupied())
	assert.Equal(t, 2, c.Occupied())
	assert.Empty(t, m.DisplayTree[0].Children)
}
