package resolve

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberwell/migrate/internal/entity"
)

func fixturePillars() []entity.Pillar {
	return []entity.Pillar{
		{ID: "pillar10-0000-0000-0000-000000000000", CategoryID: "cat-a", Period: 1, ProgramID: "prog-x"},
		{ID: "pillar20-0000-0000-0000-000000000000", CategoryID: "cat-a", Period: 2, ProgramID: "prog-x"},
		{ID: "pillar30-0000-0000-0000-000000000000", CategoryID: "cat-b", Period: 1, ProgramID: "prog-y"},
	}
}

func TestPillarIndex_Resolve(t *testing.T) {
	ix := NewPillarIndex(fixturePillars())
	require.Equal(t, 3, ix.Len())

	id, ok := ix.Resolve(Key{CategoryID: "cat-a", Period: 2, ProgramID: "prog-x"})
	require.True(t, ok)
	assert.Equal(t, "pillar20-0000-0000-0000-000000000000", id)
}

func TestPillarIndex_Miss(t *testing.T) {
	ix := NewPillarIndex(fixturePillars())

	_, ok := ix.Resolve(Key{CategoryID: "cat-a", Period: 9, ProgramID: "prog-x"})
	assert.False(t, ok)
}

func TestPillarIndex_DuplicateTupleFirstWins(t *testing.T) {
	pillars := append(fixturePillars(), entity.Pillar{
		ID: "pillar99-0000-0000-0000-000000000000", CategoryID: "cat-a", Period: 1, ProgramID: "prog-x",
	})
	ix := NewPillarIndex(pillars)
	require.Equal(t, 3, ix.Len(), "duplicate tuple must not add an entry")

	id, ok := ix.Resolve(Key{CategoryID: "cat-a", Period: 1, ProgramID: "prog-x"})
	require.True(t, ok)
	assert.Equal(t, "pillar10-0000-0000-0000-000000000000", id, "first occurrence in source order wins")
}

func TestResolveActivity(t *testing.T) {
	ix := NewPillarIndex(fixturePillars())

	a := entity.UserActivity{ID: "act1", CategoryID: "cat-b", Period: 1, ProgramID: "prog-y"}
	require.NoError(t, ix.ResolveActivity(&a))
	assert.Equal(t, "pillar30-0000-0000-0000-000000000000", a.PillarID)
}

func TestResolveActivity_MissLeavesActivityUntouched(t *testing.T) {
	ix := NewPillarIndex(fixturePillars())

	a := entity.UserActivity{ID: "act2", CategoryID: "cat-z", Period: 1, ProgramID: "prog-y"}
	err := ix.ResolveActivity(&a)

	var nf *NotFoundError
	require.True(t, errors.As(err, &nf), "want *NotFoundError, got %v", err)
	assert.Equal(t, "act2", nf.ActivityID)
	assert.Equal(t, "cat-z", nf.Key.CategoryID)
	assert.Empty(t, a.PillarID)
}
