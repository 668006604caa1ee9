package dtnsim

// room.go builds the Room and Cluster-cell data structures: polygon rooms
// parsed from WKT-like text, and a grid of non-overlapping cluster cells
// placed inside a chosen room. Both are built once at scenario init and are
// immutable afterward -- there is no process-global room registry; each
// Scenario owns its own.

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// Room is a polygon room plus the exterior ray-cast origin used for
// point-in-polygon queries.
type Room struct {
	Name    string
	polygon Polygon
	origin  Coordinate
}

// coordPattern matches a parenthesized "(x y)" pair; surrounding text and
// extra tokens on the line are ignored, per the WKT-ish input format.
var coordPattern = regexp.MustCompile(`\(\s*(-?[0-9]*\.?[0-9]+)\s+(-?[0-9]*\.?[0-9]+)\s*\)`)

// ParseRoom reads a WKT-style polygon description: one "(x y)" pair per
// line of interest, additional whitespace and tokens ignored, coordinates
// rounded to the millimeter. Lines with no recognizable pair are skipped
// as a DataError and reported on warn (nil is permitted, meaning discard).
func ParseRoom(name string, r io.Reader, warn func(error)) (*Room, error) {
	var verts []Coordinate
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		m := coordPattern.FindStringSubmatch(line)
		if m == nil {
			if warn != nil {
				warn(NewDataError(name, line, "no (x y) pair found"))
			}
			continue
		}
		x, xerr := strconv.ParseFloat(m[1], 64)
		y, yerr := strconv.ParseFloat(m[2], 64)
		if xerr != nil || yerr != nil {
			if warn != nil {
				warn(NewDataError(name, line, "non-numeric coordinate"))
			}
			continue
		}
		verts = append(verts, Coordinate{X: roundMM(x), Y: roundMM(y)})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(verts) < 3 {
		return nil, NewConfigError("Room."+name, fmt.Sprintf("need >= 3 vertices, parsed %d", len(verts)))
	}

	poly := Polygon{Vertices: verts}
	return &Room{Name: name, polygon: poly, origin: poly.ExteriorOrigin()}, nil
}

// Contains reports whether pt lies inside the room.
func (rm *Room) Contains(pt Coordinate) bool {
	return rm.polygon.Contains(pt, rm.origin)
}

// Crosses reports whether seg crosses any edge of the room's polygon.
func (rm *Room) Crosses(seg Segment) bool {
	return rm.polygon.Crosses(seg)
}

// Bounds returns the room's bounding box as (minX, minY, width, height).
func (rm *Room) Bounds() (minX, minY, width, height float64) {
	return rm.polygon.Bounds()
}

// RoomSet is the read-only collection of rooms in a scenario, keyed by name.
// It replaces the original's process-global room registry: the caller
// builds it once and hands it to NewScenario, which does not mutate it.
type RoomSet struct {
	byName map[string]*Room
	order  []string
}

// NewRoomSet builds an (initially empty) room set.
func NewRoomSet() *RoomSet {
	return &RoomSet{byName: make(map[string]*Room)}
}

// Add registers a room. Returns a ConfigError if the name is already used.
func (rs *RoomSet) Add(rm *Room) error {
	if _, present := rs.byName[rm.Name]; present {
		return NewConfigError("Room."+rm.Name, "duplicate room name")
	}
	rs.byName[rm.Name] = rm
	rs.order = append(rs.order, rm.Name)
	return nil
}

// Get looks up a room by name.
func (rs *RoomSet) Get(name string) (*Room, bool) {
	rm, ok := rs.byName[name]
	return rm, ok
}

// LineCrossesAnyRoom reports whether the segment between two points crosses
// any room's polygon edges -- the line-of-sight occlusion test used by the
// network interface, evaluated across every known room (not just the room
// hosts happen to be placed in; walls belong to the world, not the host).
func (rs *RoomSet) LineCrossesAnyRoom(seg Segment) bool {
	for _, name := range rs.order {
		if rs.byName[name].Crosses(seg) {
			return true
		}
	}
	return false
}

// ClusterCell is a square sub-region of side Side, with its minimum corner
// at (originX, originY) inside Room, holding at most MaxHosts host
// addresses (0 means unbounded).
type ClusterCell struct {
	ID       int
	Room     *Room
	Side     float64
	originX  float64
	originY  float64
	MaxHosts int
	hosts    []HostID
}

// Bounds returns the cell's own (minX, minY, width, height), a sub-rectangle
// of its room's bounding box.
func (cc *ClusterCell) Bounds() (minX, minY, width, height float64) {
	return cc.originX, cc.originY, cc.Side, cc.Side
}

// Contains reports whether pt is inside both the cluster cell's square and
// the room that contains it -- the invariant every placement must satisfy.
func (cc *ClusterCell) Contains(pt Coordinate) bool {
	if pt.X < cc.originX || pt.X > cc.originX+cc.Side || pt.Y < cc.originY || pt.Y > cc.originY+cc.Side {
		return false
	}
	return cc.Room.Contains(pt)
}

// AddHost assigns a host to the cell, enforcing the MaxHosts cardinality
// bound. Returns a ConfigError if the cell is already full.
func (cc *ClusterCell) AddHost(id HostID) error {
	if cc.MaxHosts > 0 && len(cc.hosts) >= cc.MaxHosts {
		return NewConfigError(fmt.Sprintf("Cluster.%d", cc.ID), "cluster cell is full")
	}
	cc.hosts = append(cc.hosts, id)
	return nil
}

// Hosts returns the host addresses assigned to this cell, in assignment
// order.
func (cc *ClusterCell) Hosts() []HostID {
	out := make([]HostID, len(cc.hosts))
	copy(out, cc.hosts)
	return out
}

// BuildClusterGrid enumerates the integer grid of side-S cells that fit in
// room's bounding box and keeps only cells whose NW and SE corners both lie
// inside the polygon. The id-th valid cell (in row-major scan order) is
// returned for cluster id; if id is out of range, init fails with a
// ConfigError, per the original's unguarded-index ambiguity.
func BuildClusterGrid(room *Room, side float64, id, maxHosts int) (*ClusterCell, error) {
	minX, minY, width, height := room.Bounds()
	cols := int(width / side)
	rows := int(height / side)

	valid := 0
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			ox := minX + float64(col)*side
			oy := minY + float64(row)*side
			nw := Coordinate{X: ox, Y: oy}
			se := Coordinate{X: ox + side, Y: oy + side}
			if !room.Contains(nw) || !room.Contains(se) {
				continue
			}
			if valid == id {
				return &ClusterCell{
					ID: id, Room: room, Side: side,
					originX: ox, originY: oy, MaxHosts: maxHosts,
				}, nil
			}
			valid++
		}
	}
	return nil, NewConfigError(fmt.Sprintf("Group.cluster=%d", id),
		fmt.Sprintf("cluster id out of range: %d valid cells available", valid))
}

// ValidateClusterAssignment rejects scenarios where nrofClusters *
// hostsPerCluster doesn't equal the number of hosts assigned to clustered
// placement -- the original never checked this and behaved unpredictably
// on mismatch; here it is a config-time ConfigError.
func ValidateClusterAssignment(nrofClusters, hostsPerCluster, totalClusteredHosts int) error {
	if nrofClusters*hostsPerCluster != totalClusteredHosts {
		return NewConfigError("Group.nrofHosts",
			fmt.Sprintf("nrofClusters(%d) * hostsPerCluster(%d) = %d != totalHosts(%d)",
				nrofClusters, hostsPerCluster, nrofClusters*hostsPerCluster, totalClusteredHosts))
	}
	return nil
}
