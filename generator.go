package dtnsim

// generator.go is the workload producer (component I): three host-pair
// selection modes dispatched from one tagged Generator value, per the same
// static-polymorphism design note the Router follows. Every mode is driven
// off its own named RNG stream so two runs with the same seed reproduce the
// identical sequence of MessageCreate events.

import (
	"fmt"

	"github.com/iti/rngstream"
	"golang.org/x/exp/slices"
)

// GeneratorKind selects a Generator's host-pair selection strategy.
type GeneratorKind int

const (
	GenActiveHost GeneratorKind = iota
	GenStaticHostPair
	GenClusterPair
)

// maxPollAttempts bounds ActiveHostMessageGenerator's search for a
// candidate pair. Hosts are stationary in this simulator, so unlike the
// original's mobility-driven retry (where waiting could eventually surface
// a newly-active host), a pair that is unreachable now stays unreachable
// forever; bounding the search and then emitting SimEnd is the correct
// termination, not an approximation of it.
const maxPollAttempts = 4096

// Generator drives the workload: it hands the scheduler one MessageCreate
// (or SimEnd) event at a time.
type Generator struct {
	Kind GeneratorKind
	Name string

	Size         int
	ResponseSize int

	FromLo, FromHi HostID // half-open [FromLo, FromHi)
	ToLo, ToHi     HostID

	BinWidth float64 // W, 0 disables distance binning
	Count    int     // per-bucket budget
	Mode     CommunicationMode

	PollInterval float64

	rng *rngstream.RngStream

	// ActiveHostMessageGenerator state
	activeBinCounts map[int]int
	activeDone      bool

	// StaticHostMessageGenerator / cluster-pair state
	bins        []*Bin
	initialized bool
}

// NewGenerator constructs a generator; Init must be called once with the
// World before the first call to NextEvent.
func NewGenerator(kind GeneratorKind, name string) *Generator {
	return &Generator{Kind: kind, Name: name, PollInterval: 1.0}
}

// Init binds the generator to its RNG stream.
func (g *Generator) Init(w *World) {
	g.rng = w.RNG.GeneratorStream(g.Name)
	g.activeBinCounts = make(map[int]int)
}

func isHostActive(w *World, id HostID) bool {
	h, ok := w.Hosts[id]
	if !ok {
		return false
	}
	for _, intfID := range h.Intfs {
		if w.Interfaces[intfID].Active {
			return true
		}
	}
	return false
}

func (g *Generator) hostRange(lo, hi HostID) []HostID {
	out := make([]HostID, 0, int(hi-lo))
	for id := lo; id < hi; id++ {
		out = append(out, id)
	}
	return out
}

// NextEvent returns the generator's next event: a MessageCreate stamped at
// least one poll interval after `now`, or a SimEnd once the workload is
// exhausted. It never returns nil.
func (g *Generator) NextEvent(w *World, now float64) *Event {
	switch g.Kind {
	case GenStaticHostPair, GenClusterPair:
		return g.nextStatic(w, now)
	default:
		return g.nextActiveHost(w, now)
	}
}

// nextActiveHost implements ActiveHostMessageGenerator: draw a from-address
// uniformly, then a to-address uniformly such that their distance bin is
// below its per-bin cap and both hosts are movement-active. Per §4.I, a
// failed draw advances by a polling interval and tries again, and the
// successful draw adds one more interval -- so the event returned carries
// the simulated time actually spent polling, not the instant the call
// started.
func (g *Generator) nextActiveHost(w *World, now float64) *Event {
	if g.activeDone {
		return &Event{Kind: SimEndEvent, Time: now}
	}

	froms := g.hostRange(g.FromLo, g.FromHi)
	tos := g.hostRange(g.ToLo, g.ToHi)
	if len(froms) == 0 || len(tos) == 0 {
		g.activeDone = true
		return &Event{Kind: SimEndEvent, Time: now}
	}

	t := now
	for attempt := 0; attempt < maxPollAttempts; attempt++ {
		from := froms[UniformInt(g.rng, 0, len(froms))]
		to := tos[UniformInt(g.rng, 0, len(tos))]
		if from == to || !isHostActive(w, from) || !isHostActive(w, to) {
			t += g.PollInterval
			continue
		}
		bin := DistanceBin(w.Distance(from, to), g.BinWidth)
		if g.Count > 0 && g.activeBinCounts[bin] >= g.Count {
			t += g.PollInterval
			continue
		}
		g.activeBinCounts[bin]++
		return &Event{Kind: MessageCreateEvent, Time: t + g.PollInterval, From: from, To: to, Size: g.Size}
	}

	// No candidate found within the search budget: every reachable bin is
	// either capped or unreachable, so waiting longer cannot help. Hosts
	// are stationary, so unlike the original's mobility-driven retry this
	// exhaustion is permanent, not transient.
	g.activeDone = true
	return &Event{Kind: SimEndEvent, Time: t}
}

// nextStatic implements StaticHostMessageGenerator and its cluster-pair
// restriction: on first call, enumerate all ordered host pairs (dropping
// self-pairs and, in cluster modes, cross-cluster or same-cluster pairs per
// Mode), bucket them by distance bin (or one pair per bucket if BinWidth is
// 0), and give each bucket a budget of Count messages. Like the active-host
// generator, each emitted event is spaced one polling interval after the
// last, so the run loop always has a chance to tick between creations.
func (g *Generator) nextStatic(w *World, now float64) *Event {
	if !g.initialized {
		g.buildBuckets(w)
		g.initialized = true
	}

	nonEmpty := make([]int, 0, len(g.bins))
	for i, b := range g.bins {
		if b.Remaining > 0 && len(b.Pairs) > 0 {
			nonEmpty = append(nonEmpty, i)
		}
	}
	if len(nonEmpty) == 0 {
		return &Event{Kind: SimEndEvent, Time: now}
	}

	bin := g.bins[nonEmpty[UniformInt(g.rng, 0, len(nonEmpty))]]
	pair := bin.Pairs[UniformInt(g.rng, 0, len(bin.Pairs))]
	bin.Remaining--

	return &Event{Kind: MessageCreateEvent, Time: now + g.PollInterval, From: pair.From, To: pair.To, Size: g.Size}
}

func (g *Generator) buildBuckets(w *World) {
	var pairs []HostPair
	froms := g.hostRange(g.FromLo, g.FromHi)
	tos := g.hostRange(g.ToLo, g.ToHi)

	for _, f := range froms {
		for _, t := range tos {
			if f == t {
				continue
			}
			if g.Kind == GenClusterPair {
				same := sameCluster(w, f, t)
				if g.Mode == ModeIntra && !same {
					continue
				}
				if g.Mode == ModeInter && same {
					continue
				}
			} else if g.Mode == ModeIntra && !sameCluster(w, f, t) {
				continue
			}
			pairs = append(pairs, HostPair{From: f, To: t})
		}
	}

	buckets := make(map[int][]HostPair)
	if g.BinWidth > 0 {
		for _, p := range pairs {
			bin := DistanceBin(w.Distance(p.From, p.To), g.BinWidth)
			buckets[bin] = append(buckets[bin], p)
		}
	} else {
		for i, p := range pairs {
			buckets[i] = []HostPair{p}
		}
	}

	indices := make([]int, 0, len(buckets))
	for idx := range buckets {
		indices = append(indices, idx)
	}
	slices.Sort(indices)

	g.bins = make([]*Bin, 0, len(indices))
	for _, idx := range indices {
		g.bins = append(g.bins, &Bin{Index: idx, Pairs: buckets[idx], Remaining: g.Count})
	}
}

func (g *Generator) String() string {
	return fmt.Sprintf("Generator(%s)", g.Name)
}
