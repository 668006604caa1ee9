package dtnsim

// trace.go is the diagnostic trace manager (component N), adapted from the
// teacher's TraceManager in trace.go/net.go: a boolean "in use" gate, an
// id->name dictionary, a list of per-execution trace records, and a
// WriteToFile that picks JSON or YAML marshaling by file extension. The
// teacher indexes traces by execID/vrtime.Time; this drops vrtime (the
// scheduler here keeps its own float64 clock, not the teacher's evtm/vrtime
// engine) and indexes instead by MessageID, the natural execution-chain key
// for a store-and-forward simulation.

import (
	"encoding/json"
	"os"
	"path"

	"gopkg.in/yaml.v3"
)

// TraceRecord is one diagnostic line: a message lifecycle transition or a
// recovered DataError, timestamped against simulated time.
type TraceRecord struct {
	Time  float64 `json:"time" yaml:"time"`
	Kind  string  `json:"kind" yaml:"kind"` // "create" | "forward" | "deliver" | "drop" | "warn"
	Text  string  `json:"text" yaml:"text"`
}

// TraceManager gathers diagnostic records about one scenario run. Like the
// teacher's, it is gated by InUse so the bookkeeping can be compiled in and
// left inert for production runs.
type TraceManager struct {
	InUse   bool                     `json:"inuse" yaml:"inuse"`
	ExpName string                   `json:"expname" yaml:"expname"`
	Traces  map[MessageID][]TraceRecord `json:"traces" yaml:"traces"`
}

// CreateTraceManager builds a trace manager for the named experiment. When
// active is false every method is a no-op, exactly as in the teacher.
func CreateTraceManager(expName string, active bool) *TraceManager {
	return &TraceManager{InUse: active, ExpName: expName, Traces: make(map[MessageID][]TraceRecord)}
}

// Active reports whether the trace manager is gathering records.
func (tm *TraceManager) Active() bool {
	return tm != nil && tm.InUse
}

// AddTrace appends a lifecycle record for a message.
func (tm *TraceManager) AddTrace(msgID MessageID, now float64, kind, text string) {
	if !tm.Active() {
		return
	}
	tm.Traces[msgID] = append(tm.Traces[msgID], TraceRecord{Time: now, Kind: kind, Text: text})
}

// Warn records a recovered DataError on the diagnostic stream; the caller
// has already decided to skip the offending input and continue.
func (tm *TraceManager) Warn(now float64, err error) {
	if !tm.Active() || err == nil {
		return
	}
	tm.Traces[0] = append(tm.Traces[0], TraceRecord{Time: now, Kind: "warn", Text: err.Error()})
}

// WriteToFile serializes the gathered traces to filename, choosing JSON or
// YAML by its extension, exactly as the teacher's WriteToFile does.
func (tm *TraceManager) WriteToFile(filename string) error {
	if !tm.Active() {
		return nil
	}

	var data []byte
	var err error
	switch path.Ext(filename) {
	case ".yaml", ".yml", ".YAML":
		data, err = yaml.Marshal(*tm)
	default:
		data, err = json.MarshalIndent(*tm, "", "\t")
	}
	if err != nil {
		return err
	}

	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.Write(data)
	return err
}
