package dtnsim

// interface.go is the wireless radio model (component D): proximity-based
// neighbour discovery with polygon line-of-sight occlusion, a
// distance-dependent Shannon-capacity bitrate, and the per-tick connect /
// update / churn state machine. It plays the role the teacher's
// intrfcStruct plays in net.go (one rngstream per interface, a congestion
// test, an availBndwdth query) but the link itself is a radio, not a wire:
// there is no fixed point-to-point topology, only whoever is currently in
// range and in sight.

import (
	"math"

	"golang.org/x/exp/slices"
)

// CommunicationMode restricts which peers an interface will connect to.
type CommunicationMode int

const (
	// ModeNone connects to any reachable peer regardless of cluster.
	ModeNone CommunicationMode = iota
	// ModeIntra connects only to peers in the same cluster cell.
	ModeIntra
	// ModeInter places no cluster restriction on the interface's own
	// connections (see modeAllows); the generator uses it to select
	// cross-cluster pairs.
	ModeInter
)

// Path-loss / Shannon-capacity constants for the bitrate model (§4.D).
const (
	refDistanceM   = 1.0     // reference distance, meters
	refLossDB      = 40.0    // path loss at the reference distance, dB
	pathLossExp    = 2.0     // path-loss exponent
	bandwidthHz    = 1.0e6   // channel bandwidth, Hz
	txPowerDBm     = 0.0     // transmit power, dBm
	noiseFloorDBm  = -85.0   // noise floor, dBm
	maxBitrateBps  = 1.0e6   // clamp: capacity at 1 m is defined to equal this exactly
)

// shannonScale makes capacity at the reference distance equal exactly
// maxBitrateBps; computed once since it depends only on the constants above.
var shannonScale = maxBitrateBps / shannonCapacity(refDistanceM)

// pathLossDB returns the path loss at distance d meters (d clamped up to
// the reference distance).
func pathLossDB(d float64) float64 {
	if d < refDistanceM {
		d = refDistanceM
	}
	return refLossDB + 10*pathLossExp*math.Log10(d/refDistanceM)
}

// shannonCapacity returns the raw (unscaled) Shannon capacity in bits/sec
// at distance d.
func shannonCapacity(d float64) float64 {
	received := txPowerDBm - pathLossDB(d)
	snrDB := received - noiseFloorDBm
	snr := math.Pow(10, snrDB/10)
	return bandwidthHz * math.Log2(1+snr)
}

// Bitrate returns the link bitrate in bits/sec at distance d, for d within
// range r. For d >= r the rate is 0. Distances under 1 m clamp to the 1 m
// rate, and the scaled capacity is itself clamped to maxBitrateBps so
// floating-point overshoot at very short range never exceeds the nominal
// link rate.
func Bitrate(d, r float64) float64 {
	if d >= r {
		return 0
	}
	rate := shannonCapacity(d) * shannonScale
	if rate > maxBitrateBps {
		rate = maxBitrateBps
	}
	return rate
}

// Interface is one host's radio.
type Interface struct {
	ID     InterfaceID
	Host   HostID
	Range  float64 // R, meters
	Churn  float64 // per-tick churn probability, 0 disables churn
	Mode   CommunicationMode
	MaxPar int // max parallel connections, 0 means unbounded

	Active bool // radio on and movement "is scanning"

	conns      map[HostID]ConnectionID // peer host -> connection, at most one per peer
	blacklist  map[HostID]struct{}     // churned-off peers, never reconsidered
}

// NewInterface constructs an interface for host, initially active.
func NewInterface(id InterfaceID, host HostID, rangeM, churn float64, mode CommunicationMode, maxPar int) *Interface {
	return &Interface{
		ID: id, Host: host, Range: rangeM, Churn: churn, Mode: mode, MaxPar: maxPar,
		Active: true, conns: make(map[HostID]ConnectionID), blacklist: make(map[HostID]struct{}),
	}
}

// HasConnectionCapacity reports whether the interface can accept one more
// parallel connection.
func (intf *Interface) HasConnectionCapacity() bool {
	return intf.MaxPar <= 0 || len(intf.conns) < intf.MaxPar
}

// IsBlacklisted reports whether peer has permanently churned off this
// interface.
func (intf *Interface) IsBlacklisted(peer HostID) bool {
	_, blocked := intf.blacklist[peer]
	return blocked
}

// blacklistPeer marks peer as permanently unreachable. BLACKLISTED is an
// absorbing state: no future tick ever installs a connection to peer again.
func (intf *Interface) blacklistPeer(peer HostID) {
	intf.blacklist[peer] = struct{}{}
}

// ConnectedTo reports the connection id to peer, if one is open.
func (intf *Interface) ConnectedTo(peer HostID) (ConnectionID, bool) {
	id, ok := intf.conns[peer]
	return id, ok
}

// Peers returns the host addresses this interface currently holds an open
// connection to, in ascending order.
func (intf *Interface) Peers() []HostID {
	out := make([]HostID, 0, len(intf.conns))
	for peer := range intf.conns {
		out = append(out, peer)
	}
	slices.Sort(out)
	return out
}

// reachable is the neighbour predicate: a and b are reachable from one
// another iff they are within range, both radios are active, and the
// segment between them crosses no room polygon. The line-of-sight test is
// evaluated last because it is the expensive O(rooms * edges) check.
func reachable(w *World, a, b *Interface) bool {
	if !a.Active || !b.Active {
		return false
	}
	d := w.Distance(a.Host, b.Host)
	if d >= a.Range || d >= b.Range {
		return false
	}
	seg := Segment{A: w.Hosts[a.Host].Location, B: w.Hosts[b.Host].Location}
	return !w.Rooms.LineCrossesAnyRoom(seg)
}

// sameCluster reports whether two hosts are assigned to the same cluster
// cell. Hosts with no cluster assignment are never considered same-cluster.
func sameCluster(w *World, a, b HostID) bool {
	ca, oka := w.Hosts[a].Cluster()
	cb, okb := w.Hosts[b].Cluster()
	return oka && okb && ca == cb
}

// modeAllows applies an interface's communication-mode filter to a
// candidate peer. Only INTRA restricts: it requires the same cluster cell.
// INTER imposes no restriction of its own -- it connects regardless of
// cluster, same as no mode filter at all.
func modeAllows(w *World, intf *Interface, peer HostID) bool {
	switch intf.Mode {
	case ModeIntra:
		return sameCluster(w, intf.Host, peer)
	default:
		return true
	}
}

// candidateNeighbours returns every interface in the world that belongs to
// another host, active or not (activity is checked later by reachable) --
// the role a spatial index/optimizer would play at larger host counts. At
// the scale this simulator targets a linear scan is the simplest correct
// implementation.
func candidateNeighbours(w *World, self *Interface) []*Interface {
	out := make([]*Interface, 0, len(w.Interfaces))
	for _, other := range w.Interfaces {
		if other.ID == self.ID || other.Host == self.Host {
			continue
		}
		out = append(out, other)
	}
	return out
}

// Update runs one tick of the connect/teardown state machine for intf:
// first it tears down connections whose peer left range, lost line of
// sight, or lost a churn trial (blacklisting the peer on churn); then it
// attempts new connections to reachable, capacity-available, non-blacklisted,
// mode-compatible peers; finally every surviving connection is updated.
func (intf *Interface) Update(w *World, now float64) {
	intf.teardownStale(w, now)
	intf.connectNew(w, now)
	for _, connID := range intf.conns {
		w.Connections[connID].Update(w, now)
	}
}

func (intf *Interface) teardownStale(w *World, now float64) {
	churnStream := w.RNG.ChurnStream(intf.ID)
	stale := make([]HostID, 0)
	for peer, connID := range intf.conns {
		conn := w.Connections[connID]
		other := w.Interfaces[conn.ToIntf]
		stillUp := reachable(w, intf, other)
		churned := intf.Churn > 0 && Bernoulli(churnStream, intf.Churn)
		if stillUp && !churned {
			continue
		}
		stale = append(stale, peer)
		if churned {
			intf.blacklistPeer(peer)
		}
	}
	for _, peer := range stale {
		if connID, ok := intf.conns[peer]; ok {
			w.teardownConnection(connID)
		}
	}
}

func (intf *Interface) connectNew(w *World, now float64) {
	if !intf.HasConnectionCapacity() {
		return
	}
	for _, other := range candidateNeighbours(w, intf) {
		if !intf.HasConnectionCapacity() {
			return
		}
		peer := other.Host
		if _, already := intf.conns[peer]; already {
			continue
		}
		if intf.IsBlacklisted(peer) || other.IsBlacklisted(intf.Host) {
			continue
		}
		if !other.HasConnectionCapacity() {
			continue
		}
		if !modeAllows(w, intf, peer) || !modeAllows(w, other, intf.Host) {
			continue
		}
		if !reachable(w, intf, other) {
			continue
		}
		w.establishConnection(intf, other, now)
	}
}

// establishConnection installs a bidirectional pair of Connection records:
// one oriented intf->other, one oriented other->intf, sharing no state but
// torn down together.
func (w *World) establishConnection(a, b *Interface, now float64) {
	fwd := newConnection(w.nextConnectionID(), a.ID, b.ID, now)
	rev := newConnection(w.nextConnectionID(), b.ID, a.ID, now)
	w.Connections[fwd.ID] = fwd
	w.Connections[rev.ID] = rev
	a.conns[b.Host] = fwd.ID
	b.conns[a.Host] = rev.ID
}

// teardownConnection removes connID from both endpoints' connection sets.
// Connections are owned jointly: dropping one side always drops the other,
// which is why a single call here clears both the fwd and rev record.
func (w *World) teardownConnection(connID ConnectionID) {
	conn, ok := w.Connections[connID]
	if !ok {
		return
	}
	from := w.Interfaces[conn.FromIntf]
	to := w.Interfaces[conn.ToIntf]
	revID, hasRev := to.conns[from.Host]

	delete(from.conns, to.Host)
	delete(to.conns, from.Host)
	delete(w.Connections, conn.ID)
	if hasRev {
		delete(w.Connections, revID)
	}
}
