package dtnsim

// rng.go is the deterministic RNG service (component K). One configured
// seed drives every named stream in the scenario -- one per movement model,
// one per generator, one per interface's churn test -- the same way every
// device in the teacher's network model (net.go: ns.rngstrm, eps.rngstrm,
// ss.rngstrm, rs.rngstrm) owns its own named rngstream.RngStream rather than
// sharing a single global generator. Replaying a scenario with the same
// seed reproduces the same stream of decisions, and therefore the same
// event trace, exactly.

import (
	"fmt"
	"hash/fnv"

	"github.com/iti/rngstream"
)

// RNGService hands out one named stream per caller. Streams are created
// lazily and cached so repeated lookups for the same name return the same
// stream (and therefore the same sequence of draws) within one run.
type RNGService struct {
	seed    int64
	streams map[string]*rngstream.RngStream
}

// NewRNGService seeds the package-level RngStream generator from seed and
// returns a service that mints named streams from it. Two services
// constructed with the same seed and queried for the same stream name
// produce identical draws from that stream, whatever order the streams are
// created in.
func NewRNGService(seed int64) *RNGService {
	s := seedArray(seed)
	rngstream.SetPackageSeed(s[:])
	return &RNGService{seed: seed, streams: make(map[string]*rngstream.RngStream)}
}

// seedArray expands a single int64 scenario seed into the six-element seed
// state the underlying RngStream package requires, deterministically and
// without relying on wall-clock or process state.
func seedArray(seed int64) [6]uint64 {
	var s [6]uint64
	x := uint64(seed)
	if x == 0 {
		x = 1
	}
	for i := range s {
		// splitmix64-style mixing so distinct seeds diverge quickly across
		// all six words instead of only in the low bits.
		x += 0x9E3779B97F4A7C15
		z := x
		z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
		z = (z ^ (z >> 27)) * 0x94D049BB133111EB
		z = z ^ (z >> 31)
		s[i] = z%(4294944443-1) + 1 // keep within the modulus RngStream expects
	}
	return s
}

// Stream returns the named stream, creating it on first use. name should be
// a stable identifier such as "movement.3", "generator.Events1", or
// "churn.7" -- anything that two runs with the same seed will compute
// identically. The stream's seed is derived from the service seed and a
// hash of name, so it does not depend on which streams were created before.
func (svc *RNGService) Stream(name string) *rngstream.RngStream {
	if s, ok := svc.streams[name]; ok {
		return s
	}
	h := fnv.New64a()
	h.Write([]byte(name))
	seed := seedArray(svc.seed ^ int64(h.Sum64()))
	rngstream.SetPackageSeed(seed[:])
	s := rngstream.New(name)
	svc.streams[name] = s
	return s
}

// MovementStream returns the stream dedicated to a host's placement draw.
func (svc *RNGService) MovementStream(host HostID) *rngstream.RngStream {
	return svc.Stream(fmt.Sprintf("movement.%d", host))
}

// ChurnStream returns the stream dedicated to one interface's per-tick
// churn Bernoulli trial.
func (svc *RNGService) ChurnStream(intf InterfaceID) *rngstream.RngStream {
	return svc.Stream(fmt.Sprintf("churn.%d", intf))
}

// GeneratorStream returns the stream dedicated to one named message
// generator's pair and bucket selection.
func (svc *RNGService) GeneratorStream(name string) *rngstream.RngStream {
	return svc.Stream("generator." + name)
}

// UniformInt draws an integer uniformly from [lo, hi).
func UniformInt(s *rngstream.RngStream, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + s.RandInt(0, hi-lo-1)
}

// Bernoulli reports a success with probability p, p in [0,1].
func Bernoulli(s *rngstream.RngStream, p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return s.RandU01() < p
}
