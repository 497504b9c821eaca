package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiffPerformerIDs(t *testing.T) {
	added, removed := diffPerformerIDs([]int64{1, 2}, []int64{2, 3})
	assert.Equal(t, []int64{3}, added)
	assert.Equal(t, []int64{1}, removed)

	added, removed = diffPerformerIDs(nil, []int64{1, 2})
	assert.Equal(t, []int64{1, 2}, added)
	assert.Empty(t, removed)

	added, removed = diffPerformerIDs([]int64{1, 2}, nil)
	assert.Empty(t, added)
	assert.Equal(t, []int64{1, 2}, removed)

	added, removed = diffPerformerIDs([]int64{1, 2}, []int64{1, 2})
	assert.Empty(t, added)
	assert.Empty(t, removed)
}

func TestDiffPerformerIDsDuplicates(t *testing.T) {
	added, removed := diffPerformerIDs([]int64{1}, []int64{2, 2, 1})
	assert.Equal(t, []int64{2}, added)
	assert.Empty(t, removed)
}
