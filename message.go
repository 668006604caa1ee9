package dtnsim

// message.go holds the Message and MessageChunk data model. A Message's
// identity (id, endpoints, size, creation time, response size) never
// changes after construction; only its hop path grows, and it grows by
// copy -- every successful forward replicates the message (Message.Clone),
// the same copy-on-forward rule the teacher's network messages follow when
// handed from one interface to the next (see net.go's networkMsg, passed
// by value through enter/exit handlers rather than mutated in place).

import (
	"fmt"
	"math"
)

// PathMTU is the maximum number of bytes transferred per chunk, modelling a
// Bluetooth-LE-like link layer.
const PathMTU = 247

// Message is the immutable-by-value header plus a mutable, append-only hop
// path. Forwarding clones the header and appends to a fresh copy of the
// path; the sender's copy is never mutated.
type Message struct {
	ID           MessageID
	From         HostID
	To           HostID
	Size         int // bytes
	Created      float64
	ResponseSize int // bytes, 0 if none requested

	// CopiesLeft is the spray-and-wait token budget L; unused (0) by the
	// epidemic router, which ignores it.
	CopiesLeft int

	hopPath []HostID
}

// NewMessage constructs a message with a hop path seeded by its origin.
func NewMessage(id MessageID, from, to HostID, size int, created float64, responseSize int) Message {
	return Message{
		ID: id, From: from, To: to, Size: size, Created: created, ResponseSize: responseSize,
		hopPath: []HostID{from},
	}
}

// HopPath returns a defensive copy of the hop path accumulated so far.
func (m Message) HopPath() []HostID {
	out := make([]HostID, len(m.hopPath))
	copy(out, m.hopPath)
	return out
}

// HopCount is the number of hops (edges) the message has traversed, i.e.
// len(hopPath)-1.
func (m Message) HopCount() int {
	if len(m.hopPath) == 0 {
		return 0
	}
	return len(m.hopPath) - 1
}

// Delivered reports whether the message has reached its destination.
func (m Message) Delivered() bool {
	return len(m.hopPath) > 0 && m.hopPath[len(m.hopPath)-1] == m.To
}

// Clone replicates the message and appends nextHop to the new copy's hop
// path, leaving m untouched. This is the mechanism by which "a message is
// replicated (not moved) during forwarding."
func (m Message) Clone(nextHop HostID) Message {
	clone := m
	clone.hopPath = append(append([]HostID{}, m.hopPath...), nextHop)
	return clone
}

func (m Message) String() string {
	return fmt.Sprintf("msg#%d(%d->%d,%dB)", m.ID, m.From, m.To, m.Size)
}

// MessageChunk is an indexed fragment of a logical message in flight over
// one connection.
type MessageChunk struct {
	Index      int
	Created    float64
	Received   float64 // -1 until filled
	SizeBytes  int
}

// chunkPlan splits size bytes into full PathMTU chunks plus an optional
// residual tail, per the PATH_MTU boundary rule: exactly N*PathMTU bytes
// yields N full chunks and no tail; N*PathMTU+1 yields N full chunks and a
// 1-byte tail.
func chunkPlan(size int) (fullChunks int, tailBytes int) {
	fullChunks = size / PathMTU
	tailBytes = size % PathMTU
	return fullChunks, tailBytes
}

// HostPair is an ordered-in-storage, unordered-in-intent pair of hosts used
// by the generator.
type HostPair struct {
	From, To HostID
}

// Bin is a half-open distance interval [k*W, (k+1)*W) holding the host
// pairs whose Euclidean distance falls in it, plus a remaining budget.
type Bin struct {
	Index     int
	Pairs     []HostPair
	Remaining int
}

// DistanceBin returns the bin index floor(round(d)/w) a distance falls
// into -- the distance is rounded to the nearest meter before binning, per
// the generator's round-trip invariant.
func DistanceBin(d, w float64) int {
	if w <= 0 {
		return 0
	}
	return int(math.Floor(math.Round(d) / w))
}
