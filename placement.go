package dtnsim

// placement.go is the rejection-sampling placement model (component C):
// uniform-random coordinates inside a room, or inside a host's assigned
// cluster cell. Every accepted draw is verified against the polygon, not
// just the bounding box, so the "strictly inside" invariant holds with
// probability 1 for any bounded-area room.

import "github.com/iti/rngstream"

// maxPlacementAttempts bounds the rejection loop; a room with a sane
// interior-to-bounding-box area ratio accepts within a handful of draws,
// so a stuck loop past this count means a misconfigured (near-zero-area)
// room rather than bad luck.
const maxPlacementAttempts = 10000

// PlaceInRoom draws a uniform-random coordinate strictly inside room.
func PlaceInRoom(room *Room, rs *rngstream.RngStream) (Coordinate, error) {
	minX, minY, width, height := room.Bounds()
	for i := 0; i < maxPlacementAttempts; i++ {
		x := minX + rs.RandU01()*width
		y := minY + rs.RandU01()*height
		pt := Coordinate{X: x, Y: y}
		if room.Contains(pt) {
			return pt, nil
		}
	}
	return Coordinate{}, NewConfigError("Room."+room.Name, "placement rejection sampling did not converge")
}

// PlaceInCluster draws a uniform-random coordinate strictly inside cell
// (and, by construction, inside its room).
func PlaceInCluster(cell *ClusterCell, rs *rngstream.RngStream) (Coordinate, error) {
	minX, minY, width, height := cell.Bounds()
	for i := 0; i < maxPlacementAttempts; i++ {
		x := minX + rs.RandU01()*width
		y := minY + rs.RandU01()*height
		pt := Coordinate{X: x, Y: y}
		if cell.Contains(pt) {
			return pt, nil
		}
	}
	return Coordinate{}, NewConfigError("Cluster", "placement rejection sampling did not converge")
}
