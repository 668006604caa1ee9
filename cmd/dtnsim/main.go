// Command dtnsim runs one delay-tolerant-network scenario to completion and
// prints a one-line delivery summary.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/iti/dtnsim"
)

func main() {
	scenarioPath := flag.String("scenario", "", "path to the scenario config file")
	roomPaths := flag.String("rooms", "", "comma-separated list of room WKT files")
	traceFile := flag.String("trace", "", "optional trace dump path (.json or .yaml)")
	flag.Parse()

	if *scenarioPath == "" {
		fmt.Fprintln(os.Stderr, "dtnsim: -scenario is required")
		os.Exit(1)
	}

	if err := run(*scenarioPath, *roomPaths, *traceFile); err != nil {
		switch err.(type) {
		case *dtnsim.ConfigError:
			fmt.Fprintln(os.Stderr, "dtnsim: config error:", err)
			os.Exit(1)
		case *dtnsim.ScenarioError:
			fmt.Fprintln(os.Stderr, "dtnsim: scenario error:", err)
			os.Exit(1)
		default:
			fmt.Fprintln(os.Stderr, "dtnsim:", err)
			os.Exit(1)
		}
	}
}

func run(scenarioPath, roomPaths, traceFile string) error {
	sf, err := os.Open(scenarioPath)
	if err != nil {
		return err
	}
	defer sf.Close()

	desc, err := dtnsim.ParseScenario(sf)
	if err != nil {
		return err
	}

	rooms := dtnsim.NewRoomSet()
	trace := dtnsim.CreateTraceManager(desc.Name, traceFile != "")

	for _, p := range splitNonEmpty(roomPaths) {
		if err := loadRoom(rooms, trace, p); err != nil {
			return err
		}
	}
	if desc.RoomFile != "" {
		if err := loadRoom(rooms, trace, desc.RoomFile); err != nil {
			return err
		}
	}

	sink := fileReportSink(filepath.Dir(scenarioPath))
	scn, err := dtnsim.NewScenario(desc, rooms, trace, sink)
	if err != nil {
		return err
	}

	scn.Scheduler.Run()

	if traceFile != "" {
		if err := trace.WriteToFile(traceFile); err != nil {
			log.Printf("dtnsim: failed to write trace: %v", err)
		}
	}

	delivered := 0
	for _, r := range scn.Scheduler.Reporters {
		if ur, ok := r.(*dtnsim.UnifiedReport); ok {
			delivered += ur.Deliveries()
		}
	}
	fmt.Printf("dtnsim: ran %q to t=%.3f, %d hosts, %d messages delivered\n",
		desc.Name, scn.World.Now, len(scn.World.HostOrder()), delivered)
	return nil
}

func loadRoom(rooms *dtnsim.RoomSet, trace *dtnsim.TraceManager, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	room, err := dtnsim.ParseRoom(name, f, func(derr error) {
		fmt.Fprintln(os.Stderr, "dtnsim: warning:", derr)
		trace.Warn(0, derr)
	})
	if err != nil {
		return err
	}
	return rooms.Add(room)
}

func splitNonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// fileReportSink opens one file per report, named after the report, inside
// dir. Each file stays open for the life of the run; every report type
// buffers internally and writes on Flush, called once the scheduler
// finishes, so there is no need to close these files explicitly before
// process exit.
func fileReportSink(dir string) dtnsim.ReportSink {
	return func(rd dtnsim.ReportDesc) io.Writer {
		name := rd.Name + ".txt"
		if rd.Dir != "" {
			dir = rd.Dir
		}
		f, err := os.Create(filepath.Join(dir, name))
		if err != nil {
			log.Printf("dtnsim: failed to open report file for %s: %v", rd.Name, err)
			return io.Discard
		}
		return f
	}
}
