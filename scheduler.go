package dtnsim

// scheduler.go holds the event queue and main simulation loop (component
// H): a min-heap of time-stamped events interleaved with a periodic
// per-interface update tick, exactly as laid out in the control-flow
// pseudocode -- pop and dispatch whichever comes first, the next queued
// event or the next tick boundary. All work here is single-threaded and
// cooperative; the scheduler is the only place simulation time advances.

// Scheduler drives one scenario to completion.
type Scheduler struct {
	World          *World
	Queue          *EventQueue
	Generator      *Generator
	UpdateInterval float64
	EndTime        float64
	Reporters      []Reporter

	cancelled bool
}

// NewScheduler builds a scheduler bound to world, ticking every
// updateInterval seconds until endTime (or cancellation).
func NewScheduler(w *World, gen *Generator, updateInterval, endTime float64) *Scheduler {
	return &Scheduler{
		World: w, Queue: NewEventQueue(), Generator: gen,
		UpdateInterval: updateInterval, EndTime: endTime,
	}
}

// AddReporter registers a reporter to be notified of every dispatched
// event and every tick boundary.
func (s *Scheduler) AddReporter(r Reporter) {
	s.Reporters = append(s.Reporters, r)
}

// Cancel makes the run loop exit at the head of its next iteration, without
// dispatching any further events; reporters are still flushed. It is the
// only way to stop a run before EndTime; there is no out-of-band signal.
func (s *Scheduler) Cancel() {
	s.cancelled = true
}

// Run advances simulated time from 0 to EndTime, interleaving generator
// events with periodic ticks, until EndTime is reached or Cancel is called.
// Neither an empty queue nor a SimEnd event ends the run: SimEnd only stops
// the generator from being asked for further events.
func (s *Scheduler) Run() {
	if s.Generator != nil {
		s.Generator.Init(s.World)
		s.Queue.Push(s.Generator.NextEvent(s.World, 0))
	}

	t := 0.0
	nextTick := s.UpdateInterval

	// The queue draining is not a stopping condition: once the generator
	// is spent, in-flight messages still need ticks to finish forwarding
	// and deliver, so the loop keeps ticking on an empty queue until
	// EndTime or an explicit Cancel.
	for t < s.EndTime && !s.cancelled {
		peek, ok := s.Queue.Peek()
		if ok && peek.Time <= nextTick {
			ev, _ := s.Queue.Pop()
			t = ev.Time
			s.World.Now = t
			s.dispatch(ev)
			continue
		}

		t = nextTick
		if t > s.EndTime {
			break
		}
		s.World.Now = t
		s.tickAllHosts(t)
		nextTick += s.UpdateInterval
	}

	for _, r := range s.Reporters {
		r.Flush()
	}
}

func (s *Scheduler) dispatch(ev *Event) {
	switch ev.Kind {
	case MessageCreateEvent:
		s.dispatchMessageCreate(ev)
		if s.Generator != nil {
			s.Queue.Push(s.Generator.NextEvent(s.World, ev.Time))
		}
	case SimEndEvent:
		// The workload is exhausted: stop feeding the queue, but keep
		// ticking so messages already in flight still get a chance to
		// connect and deliver before EndTime. Cancel is reserved for an
		// explicit, externally requested stop.
	}
}

// dispatchMessageCreate materializes a new Message and admits it directly
// into its origin host's buffer -- creation is local, not a network
// reception, so it bypasses Router.receive. This fires strictly before any
// possible forwarding of the message, since forwarding only ever consults
// messages already present in a buffer.
func (s *Scheduler) dispatchMessageCreate(ev *Event) {
	w := s.World
	m := NewMessage(w.nextMessageID(), ev.From, ev.To, ev.Size, ev.Time, 0)
	w.Hosts[ev.From].Buf.Admit(m)
	for _, r := range s.Reporters {
		r.OnCreate(w, m, ev.Time)
	}
}

// tickAllHosts updates every host in ascending address order -- iteration
// over host sets always uses this explicit order, never map order, so a
// replayed run with the same seed produces byte-identical reports.
func (s *Scheduler) tickAllHosts(now float64) {
	w := s.World
	for _, id := range w.HostOrder() {
		w.Hosts[id].Update(w, now)
	}
	for _, r := range s.Reporters {
		r.OnTick(w, now)
	}
}
