// Package confload loads a stout.Config from a TOML profile. It is the
// concrete "configuration loader" spec.md names as an external
// collaborator with no defined interface: the core stout package never
// imports this package and only ever consumes the plain Config record it
// produces, the way original_source/stout/config.cpp's INI loader feeds
// a plain config struct into the rest of the application.
package confload

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/softwaregravy/stout"
)

// fileShape mirrors the TOML layout documented alongside cmd/stoutd:
// table-per-concern, array-of-tables for repeated process/watch entries,
// the way apkerr-telegraf structures its own agent configuration.
type fileShape struct {
	Server struct {
		Port         int `toml:"port"`
		FlushPeriodS int `toml:"flush_period_s"`
	} `toml:"server"`

	Monitor struct {
		InitialDelayS int            `toml:"initial_delay_s"`
		SamplingTimeS int            `toml:"sampling_time_s"`
		ErrorReaction string         `toml:"error_reaction"`
		Process       []processShape `toml:"process"`
	} `toml:"monitor"`

	Backends struct {
		Console     bool   `toml:"console"`
		File        string `toml:"file"`
		JSONFile    string `toml:"json_file"`
		DatadogAddr string `toml:"datadog_addr"`
	} `toml:"backends"`
}

type processShape struct {
	ID            string       `toml:"id"`
	ProcessName   string       `toml:"process_name"`
	Attach        bool         `toml:"attach"`
	InstanceCount int          `toml:"instance_count"`
	Watch         []watchShape `toml:"watch"`
}

type watchShape struct {
	CounterPrefix string `toml:"counter_prefix"`
	ValueType     string `toml:"value_type"`
	Op            string `toml:"op"`
	Operand       int64  `toml:"operand"`
	Model         string `toml:"model"`
}

// LoadedConfig bundles the core Config record together with the backend
// wiring selections (§6 [ADD]) that cmd/stoutd needs but the core stout
// package has no business knowing about.
type LoadedConfig struct {
	Core *stout.Config

	ServerPort   int
	FlushPeriodS int

	ConsoleBackend  bool
	FileBackendPath string
	JSONBackendPath string
	DatadogAddr     string
}

// Load parses path as a TOML profile and returns a LoadedConfig. Parse
// errors are wrapped with toml's own line/column context, distinguishable
// from the core configuration errors the stout package itself can return
// (§7 [ADD]).
func Load(path string) (*LoadedConfig, error) {
	var shape fileShape
	meta, err := toml.DecodeFile(path, &shape)
	if err != nil {
		return nil, fmt.Errorf("confload: parsing %s: %w", path, err)
	}
	_ = meta // decode metadata unused; kept for future strict-key checking

	reaction, err := parseErrorReaction(shape.Monitor.ErrorReaction)
	if err != nil {
		return nil, fmt.Errorf("confload: %s: %w", path, err)
	}

	processes := make([]*stout.ProcessConfig, 0, len(shape.Monitor.Process))
	for _, ps := range shape.Monitor.Process {
		proc, err := convertProcess(ps)
		if err != nil {
			return nil, fmt.Errorf("confload: %s: process %q: %w", path, ps.ID, err)
		}
		processes = append(processes, proc)
	}

	core := &stout.Config{
		ServerPort:    shape.Server.Port,
		InitialDelayS: shape.Monitor.InitialDelayS,
		SamplingTimeS: shape.Monitor.SamplingTimeS,
		ErrorReaction: reaction,
		Processes:     processes,
	}

	return &LoadedConfig{
		Core:            core,
		ServerPort:      shape.Server.Port,
		FlushPeriodS:    shape.Server.FlushPeriodS,
		ConsoleBackend:  shape.Backends.Console,
		FileBackendPath: shape.Backends.File,
		JSONBackendPath: shape.Backends.JSONFile,
		DatadogAddr:     shape.Backends.DatadogAddr,
	}, nil
}

func convertProcess(ps processShape) (*stout.ProcessConfig, error) {
	watches := make([]*stout.Watch, 0, len(ps.Watch))
	for _, ws := range ps.Watch {
		w, err := convertWatch(ws)
		if err != nil {
			return nil, err
		}
		watches = append(watches, w)
	}

	return &stout.ProcessConfig{
		ID:            ps.ID,
		ProcessName:   ps.ProcessName,
		Attach:        ps.Attach,
		InstanceCount: ps.InstanceCount,
		Watches:       watches,
	}, nil
}

func convertWatch(ws watchShape) (*stout.Watch, error) {
	valueType, err := parseValueType(ws.ValueType)
	if err != nil {
		return nil, fmt.Errorf("watch %q: %w", ws.CounterPrefix, err)
	}
	op, err := parseOp(ws.Op)
	if err != nil {
		return nil, fmt.Errorf("watch %q: %w", ws.CounterPrefix, err)
	}
	model, err := parseModel(ws.Model)
	if err != nil {
		return nil, fmt.Errorf("watch %q: %w", ws.CounterPrefix, err)
	}

	return &stout.Watch{
		CounterPrefix: ws.CounterPrefix,
		ValueType:     valueType,
		Op:            op,
		Operand:       ws.Operand,
		Model:         model,
	}, nil
}

func parseErrorReaction(s string) (stout.ErrorReaction, error) {
	switch s {
	case "", "log":
		return stout.ReactLog, nil
	case "stop":
		return stout.ReactStop, nil
	default:
		return 0, fmt.Errorf("unknown error_reaction %q", s)
	}
}

func parseValueType(s string) (stout.ValueType, error) {
	switch s {
	case "avg":
		return stout.ValueAvg, nil
	case "min":
		return stout.ValueMin, nil
	case "max":
		return stout.ValueMax, nil
	case "stddev":
		return stout.ValueStdDev, nil
	default:
		return 0, fmt.Errorf("unknown value_type %q", s)
	}
}

func parseOp(s string) (stout.CompareOp, error) {
	switch s {
	case "lt":
		return stout.OpLessThan, nil
	case "gt":
		return stout.OpGreaterThan, nil
	default:
		return 0, fmt.Errorf("unknown op %q", s)
	}
}

func parseModel(s string) (stout.WatchModel, error) {
	switch s {
	case "", "absolute":
		return stout.ModelAbsolute, nil
	case "relative_percent":
		return stout.ModelRelativePercent, nil
	default:
		return 0, fmt.Errorf("unknown model %q", s)
	}
}
