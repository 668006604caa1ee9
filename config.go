package dtnsim

// config.go is the scenario configuration loader (component L): a
// "name = value" text format, "#" comments, blank lines ignored. Keys are
// routed by their dotted prefix into a Frame builder, one per family
// (Scenario, MovementModel, GroupN, bluetoothInterface, EventsN, ReportN),
// mirroring the teacher's two-phase Frame -> Transform() -> Desc pattern in
// desc-topo.go (there: IntrfcFrame/RouterFrame/HostFrame; here: the same
// shape applied to scenario parameters instead of network topology).

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/exp/slices"
)

// InterfaceDesc is the immutable, validated form of a bluetoothInterface.*
// block.
type InterfaceDesc struct {
	Name           string
	TransmitRange  float64
	MaxParallel    int
	ChurnRate      float64
	Mode           CommunicationMode
}

// GroupDesc is the immutable, validated form of one GroupN.* block: a
// homogeneous set of hosts sharing a placement model, a router and a set of
// interface bindings.
type GroupDesc struct {
	Index          int
	NrofHosts      int
	MovementModel  string // "RandomStationaryConstrained" | "RandomStationaryCluster"
	RouterKind     RouterKind
	Interfaces     []InterfaceDesc
	InitialCopies  int // spray-and-wait L, 0 for epidemic
	ClusterSide    float64
	ClusterHosts   int // hosts per cluster, for cluster placement validation
	ClusterID      int
	NrofClusters   int
}

// EventsDesc is the immutable, validated form of one EventsN.* block.
type EventsDesc struct {
	Name         string
	Class        string // "ActiveHostMessageGenerator" | "StaticHostMessageGenerator" | "ClusterPairMessageGenerator"
	Size         int
	Count        int
	BinSize      float64
	HostsLo, HostsHi     HostID
	ToHostsLo, ToHostsHi HostID
	Mode         CommunicationMode
}

// ReportDesc is the immutable, validated form of one ReportN.* block.
type ReportDesc struct {
	Name        string
	Class       string // "UnifiedReport" | "AdjacencyMatrixReport" | "ConnectivityReport"
	Granularity float64
	Dir         string
}

// ScenarioDesc is the fully parsed, validated scenario: read-only once
// built, the same immutability NewScenario requires of the room/cluster
// registry.
type ScenarioDesc struct {
	Name            string
	UpdateInterval  float64
	EndTime         float64
	RngSeed         int64
	WorldW, WorldH  float64
	RoomFile        string
	BufferCapacity  int
	Groups          []GroupDesc
	Events          []EventsDesc
	Reports         []ReportDesc
}

// scenarioFrame accumulates raw key/value assignments before Transform()
// validates and freezes them.
type scenarioFrame struct {
	raw    map[string]string
	groups map[int]*groupFrame
	events map[int]*eventsFrame
	report map[int]*reportFrame
}

type groupFrame struct {
	idx           int
	nrofHosts     int
	movement      string
	router        string
	initialCopies int
	nrofIntfs     int
	intfNames     []string
	clusterID     int
	clusterSide   float64
	clusterHosts  int
	nrofClusters  int
	set           map[string]bool
}

type eventsFrame struct {
	idx     int
	class   string
	size    int
	count   int
	binSize float64
	hosts   string
	toHosts string
	mode    string
}

type reportFrame struct {
	idx         int
	class       string
	granularity float64
	dir         string
}

// ParseScenario reads the "name = value" scenario text format and returns
// the validated ScenarioDesc. Unknown keys and unparseable values are
// reported as ConfigError; there is no recovery from a bad scenario file.
func ParseScenario(r io.Reader) (*ScenarioDesc, error) {
	sf := &scenarioFrame{
		raw: make(map[string]string), groups: make(map[int]*groupFrame),
		events: make(map[int]*eventsFrame), report: make(map[int]*reportFrame),
	}

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		eq := strings.Index(line, "=")
		if eq < 0 {
			return nil, NewConfigError("", fmt.Sprintf("malformed line, no '=': %q", line))
		}
		key := strings.TrimSpace(line[:eq])
		val := strings.TrimSpace(line[eq+1:])
		if err := sf.assign(key, val); err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return sf.transform()
}

func (sf *scenarioFrame) assign(key, val string) error {
	sf.raw[key] = val

	parts := strings.SplitN(key, ".", 2)
	if len(parts) != 2 {
		return NewConfigError(key, "expected a dotted key, e.g. Scenario.name")
	}
	prefix, field := parts[0], parts[1]

	switch {
	case strings.HasPrefix(prefix, "Group"):
		return sf.assignGroup(prefix, field, val)
	case strings.HasPrefix(prefix, "Events"):
		return sf.assignEvents(prefix, field, val)
	case strings.HasPrefix(prefix, "Report"):
		return sf.assignReport(prefix, field, val)
	case prefix == "Scenario" || prefix == "MovementModel" || prefix == "bluetoothInterface":
		switch key {
		case "Scenario.name", "Scenario.updateInterval", "Scenario.endTime", "Scenario.room",
			"Scenario.bufferCapacity", "MovementModel.rngSeed", "MovementModel.worldSize",
			"bluetoothInterface.transmitRange", "bluetoothInterface.maximumParallelConnections",
			"bluetoothInterface.churnRate", "bluetoothInterface.communicationMode":
			return nil // consumed directly from sf.raw during transform
		}
		return NewConfigError(key, "unrecognized key")
	default:
		return NewConfigError(key, "unrecognized key prefix")
	}
}

func indexSuffix(prefix, family string) (int, error) {
	n := strings.TrimPrefix(prefix, family)
	if n == "" {
		return 1, nil
	}
	idx, err := strconv.Atoi(n)
	if err != nil {
		return 0, NewConfigError(prefix, "expected a numeric suffix, e.g. Group1")
	}
	return idx, nil
}

func (sf *scenarioFrame) assignGroup(prefix, field, val string) error {
	idx, err := indexSuffix(prefix, "Group")
	if err != nil {
		return err
	}
	g, ok := sf.groups[idx]
	if !ok {
		g = &groupFrame{idx: idx, set: make(map[string]bool)}
		sf.groups[idx] = g
	}
	g.set[field] = true

	switch {
	case field == "nrofHosts":
		g.nrofHosts, err = strconv.Atoi(val)
	case field == "movementModel":
		g.movement = val
	case field == "router":
		g.router = val
	case field == "initialCopies":
		g.initialCopies, err = strconv.Atoi(val)
	case field == "nrofInterfaces":
		g.nrofIntfs, err = strconv.Atoi(val)
	case field == "cluster":
		g.clusterID, err = strconv.Atoi(val)
	case field == "clusterSide":
		g.clusterSide, err = strconv.ParseFloat(val, 64)
	case field == "clusterHosts":
		g.clusterHosts, err = strconv.Atoi(val)
	case field == "nrofClusters":
		g.nrofClusters, err = strconv.Atoi(val)
	case strings.HasPrefix(field, "interface"):
		g.intfNames = append(g.intfNames, val)
	default:
		return NewConfigError(prefix+"."+field, "unrecognized Group key")
	}
	if err != nil {
		return NewConfigError(prefix+"."+field, err.Error())
	}
	return nil
}

func (sf *scenarioFrame) assignEvents(prefix, field, val string) error {
	idx, err := indexSuffix(prefix, "Events")
	if err != nil {
		return err
	}
	e, ok := sf.events[idx]
	if !ok {
		e = &eventsFrame{idx: idx}
		sf.events[idx] = e
	}
	switch field {
	case "class":
		e.class = val
	case "size":
		e.size, err = strconv.Atoi(val)
	case "count":
		e.count, err = strconv.Atoi(val)
	case "binSize":
		e.binSize, err = strconv.ParseFloat(val, 64)
	case "hosts":
		e.hosts = val
	case "toHosts":
		e.toHosts = val
	case "communicationMode":
		e.mode = val
	default:
		return NewConfigError(prefix+"."+field, "unrecognized Events key")
	}
	if err != nil {
		return NewConfigError(prefix+"."+field, err.Error())
	}
	return nil
}

func (sf *scenarioFrame) assignReport(prefix, field, val string) error {
	// Report.reportN / Report.reportDir share the "Report" family without a
	// numeric suffix; reportN's own numeric suffix comes from its value.
	if prefix != "Report" {
		return NewConfigError(prefix+"."+field, "unrecognized Report key")
	}
	switch {
	case field == "reportDir":
		if sf.report[0] == nil {
			sf.report[0] = &reportFrame{}
		}
		sf.report[0].dir = val
		return nil
	case strings.HasPrefix(field, "report"):
		idx, err := indexSuffix(field, "report")
		if err != nil {
			return err
		}
		r, ok := sf.report[idx]
		if !ok {
			r = &reportFrame{idx: idx}
			sf.report[idx] = r
		}
		r.class = val
		return nil
	}
	return NewConfigError(prefix+"."+field, "unrecognized Report key")
}

// parseHostRange parses a half-open "a,b" address range.
func parseHostRange(s string) (HostID, HostID, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected \"a,b\", got %q", s)
	}
	lo, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, err
	}
	hi, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, err
	}
	return HostID(lo), HostID(hi), nil
}

func parseMode(s string) CommunicationMode {
	switch strings.TrimSpace(s) {
	case "0":
		return ModeIntra
	case "1":
		return ModeInter
	default:
		return ModeNone
	}
}

// transform validates the accumulated frames and freezes them into a
// ScenarioDesc.
func (sf *scenarioFrame) transform() (*ScenarioDesc, error) {
	desc := &ScenarioDesc{}

	desc.Name = sf.raw["Scenario.name"]
	var err error
	if desc.UpdateInterval, err = requireFloat(sf.raw, "Scenario.updateInterval"); err != nil {
		return nil, err
	}
	if desc.EndTime, err = requireFloat(sf.raw, "Scenario.endTime"); err != nil {
		return nil, err
	}
	seed, err := requireFloat(sf.raw, "MovementModel.rngSeed")
	if err != nil {
		return nil, err
	}
	desc.RngSeed = int64(seed)

	desc.RoomFile = sf.raw["Scenario.room"]
	if bc, ok := sf.raw["Scenario.bufferCapacity"]; ok {
		n, perr := strconv.Atoi(bc)
		if perr != nil {
			return nil, NewConfigError("Scenario.bufferCapacity", perr.Error())
		}
		desc.BufferCapacity = n
	}

	if ws, ok := sf.raw["MovementModel.worldSize"]; ok {
		w, h, perr := parseHostRangeFloat(ws)
		if perr != nil {
			return nil, NewConfigError("MovementModel.worldSize", perr.Error())
		}
		desc.WorldW, desc.WorldH = w, h
	}

	intf, err := transformInterface(sf.raw)
	if err != nil {
		return nil, err
	}

	for _, idx := range sortedGroupIdx(sf.groups) {
		g := sf.groups[idx]
		gd := GroupDesc{
			Index: idx, NrofHosts: g.nrofHosts, MovementModel: g.movement,
			InitialCopies: g.initialCopies, ClusterID: g.clusterID,
			ClusterSide: g.clusterSide, ClusterHosts: g.clusterHosts, NrofClusters: g.nrofClusters,
		}
		switch g.router {
		case "SprayAndWaitRouter":
			gd.RouterKind = RouterSprayAndWait
		case "EpidemicRouter", "":
			gd.RouterKind = RouterEpidemic
		default:
			return nil, NewConfigError(fmt.Sprintf("Group%d.router", idx), "unknown router class "+g.router)
		}
		if intf != nil {
			gd.Interfaces = append(gd.Interfaces, *intf)
		}
		if gd.MovementModel == "RandomStationaryCluster" {
			if err := ValidateClusterAssignment(gd.NrofClusters, gd.ClusterHosts, gd.NrofHosts); err != nil {
				return nil, err
			}
		}
		desc.Groups = append(desc.Groups, gd)
	}

	for _, idx := range sortedEventsIdx(sf.events) {
		e := sf.events[idx]
		ed := EventsDesc{Name: fmt.Sprintf("Events%d", idx), Class: e.class, Size: e.size, Count: e.count, BinSize: e.binSize, Mode: parseMode(e.mode)}
		if e.hosts != "" {
			ed.HostsLo, ed.HostsHi, err = parseHostRange(e.hosts)
			if err != nil {
				return nil, NewConfigError(fmt.Sprintf("Events%d.hosts", idx), err.Error())
			}
		}
		if e.toHosts != "" {
			ed.ToHostsLo, ed.ToHostsHi, err = parseHostRange(e.toHosts)
			if err != nil {
				return nil, NewConfigError(fmt.Sprintf("Events%d.toHosts", idx), err.Error())
			}
		}
		if ed.Class == "" {
			return nil, NewConfigError(fmt.Sprintf("Events%d.class", idx), "missing generator class")
		}
		desc.Events = append(desc.Events, ed)
	}

	for _, idx := range sortedReportIdx(sf.report) {
		r := sf.report[idx]
		if r.class == "" {
			continue
		}
		desc.Reports = append(desc.Reports, ReportDesc{Name: fmt.Sprintf("Report%d", idx), Class: r.class, Dir: sf.report[0].dirOrEmpty()})
	}

	return desc, nil
}

func (r *reportFrame) dirOrEmpty() string {
	if r == nil {
		return ""
	}
	return r.dir
}

func transformInterface(raw map[string]string) (*InterfaceDesc, error) {
	rangeStr, ok := raw["bluetoothInterface.transmitRange"]
	if !ok {
		return nil, nil
	}
	rangeM, err := strconv.ParseFloat(rangeStr, 64)
	if err != nil {
		return nil, NewConfigError("bluetoothInterface.transmitRange", err.Error())
	}
	d := &InterfaceDesc{Name: "bluetoothInterface", TransmitRange: rangeM}
	if v, ok := raw["bluetoothInterface.maximumParallelConnections"]; ok {
		d.MaxParallel, err = strconv.Atoi(v)
		if err != nil {
			return nil, NewConfigError("bluetoothInterface.maximumParallelConnections", err.Error())
		}
	}
	if v, ok := raw["bluetoothInterface.churnRate"]; ok {
		d.ChurnRate, err = strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, NewConfigError("bluetoothInterface.churnRate", err.Error())
		}
	}
	if v, ok := raw["bluetoothInterface.communicationMode"]; ok {
		d.Mode = parseMode(v)
	}
	return d, nil
}

func requireFloat(raw map[string]string, key string) (float64, error) {
	v, ok := raw[key]
	if !ok {
		return 0, NewConfigError(key, "missing required key")
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, NewConfigError(key, err.Error())
	}
	return f, nil
}

func parseHostRangeFloat(s string) (float64, float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected \"w,h\", got %q", s)
	}
	w, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, err
	}
	h, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, err
	}
	return w, h, nil
}

func sortedGroupIdx(m map[int]*groupFrame) []int {
	out := make([]int, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

func sortedEventsIdx(m map[int]*eventsFrame) []int {
	out := make([]int, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

func sortedReportIdx(m map[int]*reportFrame) []int {
	out := make([]int, 0, len(m))
	for k := range m {
		if k == 0 {
			continue // slot 0 is reserved for the shared reportDir
		}
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
