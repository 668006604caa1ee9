package dtnsim

// report.go is the reporter hook (component J): observers subscribed to
// scheduler events and to snapshot timers. This adapts the teacher's
// TraceManager (net.go/trace.go) -- which accumulates one record per
// simulated event under a boolean "in use" gate -- into report types that
// match the specified deterministic text formats instead of a generic YAML
// trace dump.

import (
	"fmt"
	"io"
	"strings"
)

// Reporter is notified of every message lifecycle event and every tick
// boundary. All reporters registered on a Scheduler are called in
// registration order, so their combined output is itself deterministic.
type Reporter interface {
	OnCreate(w *World, m Message, now float64)
	OnForward(w *World, m Message, from, to HostID, now float64)
	OnDeliver(w *World, m Message, now float64)
	OnDrop(w *World, m Message, host HostID, code AdmitCode, now float64)
	OnTick(w *World, now float64)
	Flush()
}

// wireRouterReporters fans a host's router lifecycle callbacks out to every
// reporter registered on the scheduler. Routers themselves know nothing
// about reporters; this keeps the forwarding policy decoupled from
// observation, the same separation the teacher keeps between net.go's
// transfer logic and its TraceManager.
func wireRouterReporters(host *Host, w *World, reporters []Reporter) {
	host.router().OnEvents(
		func(w *World, m Message, now float64) {
			for _, r := range reporters {
				r.OnDeliver(w, m, now)
			}
		},
		func(w *World, m Message, from, to HostID, now float64) {
			for _, r := range reporters {
				r.OnForward(w, m, from, to, now)
			}
		},
		func(w *World, m Message, host HostID, code AdmitCode, now float64) {
			for _, r := range reporters {
				r.OnDrop(w, m, host, code, now)
			}
		},
	)
}

// unifiedRecord is one line of per-message lifecycle history.
type unifiedRecord struct {
	Time  float64
	Kind  string // "C" create, "F" forward, "D" deliver, "X" drop
	MsgID MessageID
	From  HostID
	To    HostID
	Bytes int
	Hops  int
}

// UnifiedReport accumulates per-message lifecycle records (create, forward,
// deliver, drop) with timestamps, hop-path and byte counts, and writes them
// as plain text on Flush.
type UnifiedReport struct {
	w       io.Writer
	records []unifiedRecord
}

// NewUnifiedReport builds a UnifiedReport writing to w on Flush.
func NewUnifiedReport(w io.Writer) *UnifiedReport {
	return &UnifiedReport{w: w}
}

func (u *UnifiedReport) OnCreate(w *World, m Message, now float64) {
	u.records = append(u.records, unifiedRecord{Time: now, Kind: "C", MsgID: m.ID, From: m.From, To: m.To, Bytes: m.Size})
}

func (u *UnifiedReport) OnForward(w *World, m Message, from, to HostID, now float64) {
	u.records = append(u.records, unifiedRecord{Time: now, Kind: "F", MsgID: m.ID, From: from, To: to, Bytes: m.Size, Hops: m.HopCount()})
}

func (u *UnifiedReport) OnDeliver(w *World, m Message, now float64) {
	u.records = append(u.records, unifiedRecord{Time: now, Kind: "D", MsgID: m.ID, From: m.From, To: m.To, Bytes: m.Size, Hops: m.HopCount()})
}

func (u *UnifiedReport) OnDrop(w *World, m Message, host HostID, code AdmitCode, now float64) {
	u.records = append(u.records, unifiedRecord{Time: now, Kind: "X", MsgID: m.ID, From: m.From, To: host, Bytes: m.Size})
}

func (u *UnifiedReport) OnTick(w *World, now float64) {}

// Flush writes every accumulated record, one per line, oldest first.
func (u *UnifiedReport) Flush() {
	if u.w == nil {
		return
	}
	for _, rec := range u.records {
		fmt.Fprintf(u.w, "%.6f %s %d %d %d %d %d\n", rec.Time, rec.Kind, rec.MsgID, rec.From, rec.To, rec.Bytes, rec.Hops)
	}
}

// Deliveries returns the number of delivered records -- convenient for the
// CLI driver's one-line summary.
func (u *UnifiedReport) Deliveries() int {
	n := 0
	for _, rec := range u.records {
		if rec.Kind == "D" {
			n++
		}
	}
	return n
}

// AdjacencyMatrixReport emits, every Granularity seconds, a block headed by
// "[t]", a "# Node IDs:" line, then n rows of n 0/1 integers: symmetric
// (connections are bidirectional), diagonal 1, rows in ascending host
// address order.
type AdjacencyMatrixReport struct {
	w           io.Writer
	Granularity float64
	nextSnap    float64
	buf         strings.Builder
}

// NewAdjacencyMatrixReport builds a report snapping every granularity
// seconds, writing to w on Flush.
func NewAdjacencyMatrixReport(w io.Writer, granularity float64) *AdjacencyMatrixReport {
	return &AdjacencyMatrixReport{w: w, Granularity: granularity}
}

func (a *AdjacencyMatrixReport) OnCreate(w *World, m Message, now float64)                       {}
func (a *AdjacencyMatrixReport) OnForward(w *World, m Message, from, to HostID, now float64)      {}
func (a *AdjacencyMatrixReport) OnDeliver(w *World, m Message, now float64)                       {}
func (a *AdjacencyMatrixReport) OnDrop(w *World, m Message, host HostID, code AdmitCode, now float64) {}

func (a *AdjacencyMatrixReport) OnTick(w *World, now float64) {
	if a.Granularity <= 0 || now+1e-9 < a.nextSnap {
		return
	}
	a.nextSnap += a.Granularity

	hosts := w.HostOrder()
	fmt.Fprintf(&a.buf, "[%.6f]\n# Node IDs:\n", now)
	ids := make([]string, len(hosts))
	for i, id := range hosts {
		ids[i] = fmt.Sprintf("%d", id)
	}
	fmt.Fprintln(&a.buf, strings.Join(ids, " "))

	adj := BuildAdjacencyMatrix(w, hosts)
	for i := range hosts {
		row := make([]string, len(hosts))
		for j := range hosts {
			row[j] = fmt.Sprintf("%d", adj[i][j])
		}
		fmt.Fprintln(&a.buf, strings.Join(row, " "))
	}
}

// Flush writes the accumulated snapshot blocks.
func (a *AdjacencyMatrixReport) Flush() {
	if a.w == nil {
		return
	}
	io.WriteString(a.w, a.buf.String())
}

// BuildAdjacencyMatrix computes the symmetric 0/1 connectivity matrix over
// hosts, in the given (already-sorted) order, diagonal 1.
func BuildAdjacencyMatrix(w *World, hosts []HostID) [][]int {
	n := len(hosts)
	idx := make(map[HostID]int, n)
	for i, id := range hosts {
		idx[id] = i
	}
	adj := make([][]int, n)
	for i := range adj {
		adj[i] = make([]int, n)
		adj[i][i] = 1
	}
	for i, id := range hosts {
		for _, intfID := range w.Hosts[id].Intfs {
			for _, peer := range w.Interfaces[intfID].Peers() {
				j, ok := idx[peer]
				if !ok {
					continue
				}
				adj[i][j] = 1
				adj[j][i] = 1
			}
		}
	}
	return adj
}
