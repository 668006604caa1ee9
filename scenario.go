package dtnsim

// scenario.go is the top-level orchestration (component P's library half):
// turn a parsed ScenarioDesc plus a room registry into a fully-wired World,
// Generator and Scheduler. It plays the role the teacher's mrnes.go
// BuildExperimentNet plays for a wired topology -- one pass per group that
// allocates hosts, interfaces and routers and drops them into the shared
// World -- generalized to radio placement and DTN routers instead of
// switches and routers on fixed links.

import (
	"fmt"
	"io"
)

// Scenario is a fully built, ready-to-run simulation: the World it owns,
// the Scheduler driving it, and the reporters attached to that scheduler.
type Scenario struct {
	World     *World
	Scheduler *Scheduler
}

// ReportSink resolves a ReportDesc to the io.Writer its output should be
// written to. The CLI driver supplies one backed by files under the
// scenario's reportDir; tests can supply one backed by an in-memory buffer.
type ReportSink func(desc ReportDesc) io.Writer

// NewScenario builds a Scenario from a parsed ScenarioDesc and a room
// registry already loaded by the caller (ParseRoom may need several calls,
// one per room file, before the RoomSet is complete).
func NewScenario(desc *ScenarioDesc, rooms *RoomSet, traceMgr *TraceManager, sink ReportSink) (*Scenario, error) {
	rng := NewRNGService(desc.RngSeed)
	w := NewWorld(rooms, rng, traceMgr)

	bufCap := desc.BufferCapacity
	if bufCap <= 0 {
		bufCap = 1 << 20
	}

	nextHostID := HostID(0)
	for _, g := range desc.Groups {
		if err := instantiateGroup(w, g, &nextHostID, bufCap); err != nil {
			return nil, err
		}
	}

	if len(desc.Events) == 0 {
		return nil, NewConfigError("Events", "scenario defines no message generator")
	}
	gen, err := buildGenerator(desc.Events[0])
	if err != nil {
		return nil, err
	}

	sched := NewScheduler(w, gen, desc.UpdateInterval, desc.EndTime)
	for _, rd := range desc.Reports {
		rep, err := buildReporter(rd, sink)
		if err != nil {
			return nil, err
		}
		sched.AddReporter(rep)
	}
	for _, id := range w.HostOrder() {
		wireRouterReporters(w.Hosts[id], w, sched.Reporters)
	}

	return &Scenario{World: w, Scheduler: sched}, nil
}

// instantiateGroup places NrofHosts hosts per g's movement model, attaches
// one interface per InterfaceDesc, and assigns a fresh router of g's kind
// to each host, starting from *nextID and advancing it past the hosts just
// created.
func instantiateGroup(w *World, g GroupDesc, nextID *HostID, bufCap int) error {
	var cell *ClusterCell
	if g.MovementModel == "RandomStationaryCluster" {
		room, ok := firstRoom(w.Rooms)
		if !ok {
			return NewConfigError(fmt.Sprintf("Group%d", g.Index), "cluster placement requires a room")
		}
		c, err := BuildClusterGrid(room, g.ClusterSide, g.ClusterID, g.ClusterHosts)
		if err != nil {
			return err
		}
		w.Clusters[ClusterID(g.ClusterID)] = c
		cell = c
	}

	room, hasRoom := firstRoom(w.Rooms)

	for i := 0; i < g.NrofHosts; i++ {
		id := *nextID
		*nextID++

		var loc Coordinate
		var err error
		if cell != nil {
			loc, err = PlaceInCluster(cell, w.RNG.MovementStream(id))
		} else if hasRoom {
			loc, err = PlaceInRoom(room, w.RNG.MovementStream(id))
		} else {
			return NewConfigError(fmt.Sprintf("Group%d", g.Index), "host placement requires a room")
		}
		if err != nil {
			return err
		}

		rtr := buildRouter(g)
		h := NewHost(id, loc, bufCap, rtr)
		if cell != nil {
			h.SetCluster(ClusterID(g.ClusterID))
			if err := cell.AddHost(id); err != nil {
				return err
			}
		}
		w.AddHost(h)

		for _, spec := range g.Interfaces {
			intfID := w.nextInterfaceID()
			intf := NewInterface(intfID, h.ID, spec.TransmitRange, spec.ChurnRate, spec.Mode, spec.MaxParallel)
			w.AddInterface(intf)
			h.AddInterface(intfID)
		}
	}
	return nil
}

func firstRoom(rs *RoomSet) (*Room, bool) {
	for _, name := range rs.order {
		return rs.byName[name], true
	}
	return nil, false
}

func buildRouter(g GroupDesc) *Router {
	switch g.RouterKind {
	case RouterSprayAndWait:
		copies := g.InitialCopies
		if copies <= 0 {
			copies = 6
		}
		return NewSprayAndWaitRouter(copies, true)
	default:
		return NewEpidemicRouter(true)
	}
}

func buildGenerator(ed EventsDesc) (*Generator, error) {
	var kind GeneratorKind
	switch ed.Class {
	case "StaticHostMessageGenerator":
		kind = GenStaticHostPair
	case "ClusterPairMessageGenerator":
		kind = GenClusterPair
	case "ActiveHostMessageGenerator", "":
		kind = GenActiveHost
	default:
		return nil, NewConfigError("Events.class", "unknown generator class "+ed.Class)
	}
	g := NewGenerator(kind, ed.Name)
	g.Size = ed.Size
	g.Count = ed.Count
	g.BinWidth = ed.BinSize
	g.FromLo, g.FromHi = ed.HostsLo, ed.HostsHi
	g.ToLo, g.ToHi = ed.ToHostsLo, ed.ToHostsHi
	g.Mode = ed.Mode
	return g, nil
}

func buildReporter(rd ReportDesc, sink ReportSink) (Reporter, error) {
	var w io.Writer
	if sink != nil {
		w = sink(rd)
	}
	switch rd.Class {
	case "UnifiedReport":
		return NewUnifiedReport(w), nil
	case "AdjacencyMatrixReport":
		return NewAdjacencyMatrixReport(w, 1.0), nil
	case "ConnectivityReport":
		return NewConnectivityReport(w, 1.0), nil
	default:
		return nil, NewConfigError("Report.class", "unknown report class "+rd.Class)
	}
}
