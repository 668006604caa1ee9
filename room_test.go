package dtnsim

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildClusterGridPlacesCellsInRowMajorOrder(t *testing.T) {
	room, err := ParseRoom("lab", strings.NewReader("(0 0)\n(20 0)\n(20 20)\n(0 20)\n"), nil)
	require.NoError(t, err)

	// A 20x20 room with side-10 cells has a 2x2 grid: 4 valid cells.
	cell0, err := BuildClusterGrid(room, 10, 0, 0)
	require.NoError(t, err)
	x0, y0, _, _ := cell0.Bounds()
	assert.Equal(t, 0.0, x0)
	assert.Equal(t, 0.0, y0)

	cell1, err := BuildClusterGrid(room, 10, 1, 0)
	require.NoError(t, err)
	x1, y1, _, _ := cell1.Bounds()
	assert.Equal(t, 10.0, x1)
	assert.Equal(t, 0.0, y1)

	cell2, err := BuildClusterGrid(room, 10, 2, 0)
	require.NoError(t, err)
	x2, y2, _, _ := cell2.Bounds()
	assert.Equal(t, 0.0, x2)
	assert.Equal(t, 10.0, y2)
}

func TestBuildClusterGridRejectsOutOfRangeID(t *testing.T) {
	room, err := ParseRoom("lab", strings.NewReader("(0 0)\n(20 0)\n(20 20)\n(0 20)\n"), nil)
	require.NoError(t, err)

	_, err = BuildClusterGrid(room, 10, 4, 0) // only 4 valid cells, ids 0..3
	require.Error(t, err)
	var cfgErr *ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestBuildClusterGridSkipsCellsPokingOutsideAnLShapedRoom(t *testing.T) {
	// An L-shaped room: the top-right 10x10 quadrant of a 20x20 square is
	// missing, so the grid cell that would occupy it must be skipped.
	lShape := "(0 0)\n(20 0)\n(20 10)\n(10 10)\n(10 20)\n(0 20)\n"
	room, err := ParseRoom("l", strings.NewReader(lShape), nil)
	require.NoError(t, err)

	// Valid 10-side cells: (0,0), (0,10), (10,0). The (10,10) quadrant is
	// missing from the room, so only 3 cells should ever be reachable.
	_, err = BuildClusterGrid(room, 10, 2, 0)
	require.NoError(t, err)
	_, err = BuildClusterGrid(room, 10, 3, 0)
	require.Error(t, err, "only 3 valid cells exist in the L-shaped room")
}

func TestClusterCellAddHostEnforcesMaxHosts(t *testing.T) {
	room, err := ParseRoom("lab", strings.NewReader("(0 0)\n(20 0)\n(20 20)\n(0 20)\n"), nil)
	require.NoError(t, err)
	cell, err := BuildClusterGrid(room, 10, 0, 2)
	require.NoError(t, err)

	require.NoError(t, cell.AddHost(0))
	require.NoError(t, cell.AddHost(1))
	err = cell.AddHost(2)
	require.Error(t, err)
	assert.Len(t, cell.Hosts(), 2)
}

func TestValidateClusterAssignmentAcceptsExactMatch(t *testing.T) {
	assert.NoError(t, ValidateClusterAssignment(2, 3, 6))
}

func TestValidateClusterAssignmentRejectsMismatch(t *testing.T) {
	err := ValidateClusterAssignment(2, 3, 7)
	require.Error(t, err)
	var cfgErr *ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}
