package dtnsim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChunkPlanExactMultiple(t *testing.T) {
	full, tail := chunkPlan(3 * PathMTU)
	assert.Equal(t, 3, full)
	assert.Equal(t, 0, tail)
}

func TestChunkPlanOneByteOver(t *testing.T) {
	full, tail := chunkPlan(3*PathMTU + 1)
	assert.Equal(t, 3, full)
	assert.Equal(t, 1, tail)
}

func TestChunkPlanUnderOneChunk(t *testing.T) {
	full, tail := chunkPlan(10)
	assert.Equal(t, 0, full)
	assert.Equal(t, 10, tail)
}

func TestDistanceBinRoundsBeforeFlooring(t *testing.T) {
	// 4.5 rounds to 5 (round-half-away-from-zero via math.Round), then
	// floor(5/5) = 1, not floor(4.5/5) = 0 -- verified at a width where the
	// two would disagree.
	assert.Equal(t, 1, DistanceBin(4.5, 5))
	assert.Equal(t, 0, DistanceBin(2.4, 5))
	assert.Equal(t, 0, DistanceBin(0, 5))
}

func TestDistanceBinZeroWidthDisabled(t *testing.T) {
	assert.Equal(t, 0, DistanceBin(123.0, 0))
}

func TestMessageCloneDoesNotMutateOriginal(t *testing.T) {
	m := NewMessage(1, 0, 2, 100, 0, 0)
	clone := m.Clone(1)

	assert.Equal(t, []HostID{0}, m.HopPath())
	assert.Equal(t, []HostID{0, 1}, clone.HopPath())
	assert.False(t, m.Delivered())
}

func TestMessageDeliveredWhenHopPathReachesTo(t *testing.T) {
	m := NewMessage(1, 0, 2, 100, 0, 0)
	hop1 := m.Clone(1)
	hop2 := hop1.Clone(2)

	assert.False(t, hop1.Delivered())
	assert.True(t, hop2.Delivered())
	assert.Equal(t, 2, hop2.HopCount())
}
