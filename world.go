package dtnsim

import "golang.org/x/exp/slices"

// world.go is the central arena: hosts, interfaces and connections hold
// ids, not pointers into each other, and the World resolves an id to the
// live struct on demand. This is how the implementation represents the
// cyclic host<->interface<->connection<->host object graph of the original
// without a web of mutual pointers -- the design note's prescribed fix.
// Rooms and clusters are built once by NewScenario and never mutated again.

type World struct {
	Now float64

	Hosts       map[HostID]*Host
	Interfaces  map[InterfaceID]*Interface
	Connections map[ConnectionID]*Connection
	Clusters    map[ClusterID]*ClusterCell

	Rooms *RoomSet
	RNG   *RNGService
	Trace *TraceManager

	hostOrder []HostID // ascending address order, fixed at construction

	nextConnID int
	nextMsgID  int
	nextIntfID int
}

// NewWorld builds an empty arena bound to the given room set and RNG
// service.
func NewWorld(rooms *RoomSet, rng *RNGService, trace *TraceManager) *World {
	return &World{
		Hosts:       make(map[HostID]*Host),
		Interfaces:  make(map[InterfaceID]*Interface),
		Connections: make(map[ConnectionID]*Connection),
		Clusters:    make(map[ClusterID]*ClusterCell),
		Rooms:       rooms,
		RNG:         rng,
		Trace:       trace,
	}
}

// AddHost registers a host and keeps the explicit ascending-address
// iteration order invariant: iteration over host sets must never depend on
// map iteration order.
func (w *World) AddHost(h *Host) {
	w.Hosts[h.ID] = h
	w.hostOrder = append(w.hostOrder, h.ID)
	slices.Sort(w.hostOrder)
}

// HostOrder returns every host address, ascending.
func (w *World) HostOrder() []HostID {
	out := make([]HostID, len(w.hostOrder))
	copy(out, w.hostOrder)
	return out
}

// AddInterface registers an interface owned by its host.
func (w *World) AddInterface(intf *Interface) {
	w.Interfaces[intf.ID] = intf
}

// nextConnectionID mints the next connection id, mirroring the teacher's
// nxtConnectID monotonic counter in net.go (there a package global; here a
// field on the per-run World, so nothing about a run survives the process).
func (w *World) nextConnectionID() ConnectionID {
	w.nextConnID++
	return ConnectionID(w.nextConnID)
}

// nextMessageID mints the next message id.
func (w *World) nextMessageID() MessageID {
	w.nextMsgID++
	return MessageID(w.nextMsgID)
}

// nextInterfaceID mints the next interface id. Interface ids share no
// namespace with host ids, so this counter is independent of nextConnID /
// nextMsgID.
func (w *World) nextInterfaceID() InterfaceID {
	w.nextIntfID++
	return InterfaceID(w.nextIntfID)
}

// Distance returns the Euclidean distance between two hosts' locations.
func (w *World) Distance(a, b HostID) float64 {
	return Dist(w.Hosts[a].Location, w.Hosts[b].Location)
}
