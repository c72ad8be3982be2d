package engine

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupHandler_UnknownPairNeedsProcessing(t *testing.T) {
	g := NewGroupHandler()
	assert.True(t, g.ShouldItProcess("a", "b"))
}

func TestGroupHandler_SameGroupIsDecided(t *testing.T) {
	g := NewGroupHandler()
	g.AddSame("a", "b")
	assert.False(t, g.ShouldItProcess("a", "b"))
	assert.False(t, g.ShouldItProcess("b", "a"))
}

func TestGroupHandler_TransitiveSame(t *testing.T) {
	g := NewGroupHandler()
	g.AddSame("a", "b")
	g.AddSame("b", "c")
	assert.False(t, g.ShouldItProcess("a", "c"))
}

func TestGroupHandler_DifferentIsDecided(t *testing.T) {
	g := NewGroupHandler()
	g.AddDifferent("a", "b")
	assert.False(t, g.ShouldItProcess("a", "b"))
	assert.False(t, g.ShouldItProcess("b", "a"))
}

func TestGroupHandler_NegativeFactReachesGroupMembers(t *testing.T) {
	g := NewGroupHandler()
	g.AddSame("a", "b")
	g.AddDifferent("b", "c")

	// c is distinct from b's whole group, a included.
	assert.False(t, g.ShouldItProcess("a", "c"))
}

func TestGroupHandler_NegativeFactSurvivesMerge(t *testing.T) {
	g := NewGroupHandler()
	g.AddSame("a", "b")
	g.AddSame("c", "d")
	g.AddDifferent("a", "c")

	// Both groups carry the fact, so any cross pair is decided.
	assert.False(t, g.ShouldItProcess("b", "d"))
	assert.False(t, g.ShouldItProcess("b", "c"))
	assert.False(t, g.ShouldItProcess("a", "d"))

	// Merging a third group into b's extends the existing fact to the
	// newly joined members.
	g.AddSame("e", "f")
	g.AddSame("b", "e")
	assert.False(t, g.ShouldItProcess("f", "d"))
}

func TestGroupHandler_DissolvedGroupIdRewritten(t *testing.T) {
	g := NewGroupHandler()
	g.AddDifferent("p", "q")
	g.AddSame("r", "s")

	// q's group dissolves into r's; the p<->q fact must now read p<->r.
	g.AddSame("r", "q")
	assert.False(t, g.ShouldItProcess("s", "p"))
	assert.False(t, g.ShouldItProcess("p", "q"))
	assert.True(t, g.ShouldItProcess("s", "unseen"))
}

func TestGroupHandler_MintsSingletonsForDifferent(t *testing.T) {
	g := NewGroupHandler()
	g.AddDifferent("x", "y")
	g.AddSame("y", "z")
	assert.False(t, g.ShouldItProcess("x", "z"))
	assert.True(t, g.ShouldItProcess("x", "unseen"))
}

func TestGroupHandler_BuildGroupedListFiltersSingletons(t *testing.T) {
	g := NewGroupHandler()
	g.AddSame("a", "b")
	g.AddSame("b", "c")
	g.AddDifferent("a", "lonely")

	grouped := g.BuildGroupedList()
	require.Len(t, grouped, 1)
	for _, members := range grouped {
		assert.ElementsMatch(t, []string{"a", "b", "c"}, members)
	}
}

func TestGroupHandler_ManyMerges(t *testing.T) {
	g := NewGroupHandler()

	// Build two chains and join them.
	for i := 0; i < 10; i++ {
		g.AddSame(fmt.Sprintf("left%d", i), fmt.Sprintf("left%d", i+1))
		g.AddSame(fmt.Sprintf("right%d", i), fmt.Sprintf("right%d", i+1))
	}
	g.AddDifferent("left0", "right0")
	assert.False(t, g.ShouldItProcess("left10", "right10"))

	grouped := g.BuildGroupedList()
	assert.Len(t, grouped, 2)
	for _, members := range grouped {
		assert.Len(t, members, 11)
	}
}
