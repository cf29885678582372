package config

import (
	"encoding/json"
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Task is the directory set one location moves files through.
// Completed and Failed are optional: an empty value means the file is
// deleted on that outcome instead of moved.
type Task struct {
	Input      string `json:"input" yaml:"input"`
	Processing string `json:"processing" yaml:"processing"`
	Completed  string `json:"completed,omitempty" yaml:"completed,omitempty"`
	Failed     string `json:"failed,omitempty" yaml:"failed,omitempty"`
}

// ExpandRoot builds the task for the shorthand form where a location's
// "file" is a single root directory: root/input and root/processing, with no
// completed or failed folder.
func ExpandRoot(root string) Task {
	root = strings.TrimSpace(root)
	if root == "" {
		return Task{}
	}
	base := filepath.Clean(filepath.FromSlash(root))
	return Task{
		Input:      filepath.Join(base, "input"),
		Processing: filepath.Join(base, "processing"),
	}
}

// UnmarshalJSON accepts either a task object or a shorthand root string.
func (t *Task) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var root string
	if err := json.Unmarshal(data, &root); err == nil {
		*t = ExpandRoot(root)
		return nil
	}

	type plain Task
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*t = Task(p)
	return nil
}

// UnmarshalYAML accepts either a task mapping or a shorthand root scalar.
func (t *Task) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		var root string
		if err := node.Decode(&root); err != nil {
			return err
		}
		*t = ExpandRoot(root)
		return nil
	}

	type plain Task
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*t = Task(p)
	return nil
}

// Delay is an interval read from the config file either as an integer
// number of milliseconds or as a Go duration string ("1500ms", "2s").
type Delay time.Duration

// Duration returns d as a time.Duration.
func (d Delay) Duration() time.Duration { return time.Duration(d) }

func (d Delay) String() string { return time.Duration(d).String() }

// UnmarshalJSON implements json.Unmarshaler.
func (d *Delay) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	return d.set(v)
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Delay) UnmarshalYAML(node *yaml.Node) error {
	var v any
	if err := node.Decode(&v); err != nil {
		return err
	}
	return d.set(v)
}

func (d *Delay) set(v any) error {
	switch x := v.(type) {
	case nil:
		// null keeps whatever default the field already holds
		return nil
	case int:
		return d.setMillis(int64(x))
	case int64:
		return d.setMillis(x)
	case uint64:
		if x > math.MaxInt64 {
			return fmt.Errorf("delay %d ms out of range", x)
		}
		return d.setMillis(int64(x))
	case float64:
		if math.IsNaN(x) || math.Abs(x) > float64(maxDelayMillis) {
			return fmt.Errorf("delay %v ms out of range", x)
		}
		*d = Delay(time.Duration(x * float64(time.Millisecond)))
		return nil
	case string:
		s := strings.TrimSpace(x)
		if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
			return d.setMillis(ms)
		}
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid delay %q: %w", x, err)
		}
		*d = Delay(parsed)
		return nil
	default:
		return fmt.Errorf("invalid delay value %v", v)
	}
}

// maxDelayMillis is the largest millisecond count a time.Duration can hold.
const maxDelayMillis = math.MaxInt64 / int64(time.Millisecond)

func (d *Delay) setMillis(ms int64) error {
	if ms > maxDelayMillis || ms < -maxDelayMillis {
		return fmt.Errorf("delay %d ms out of range", ms)
	}
	*d = Delay(time.Duration(ms) * time.Millisecond)
	return nil
}

// Location is one watched pipeline: where files arrive, what runs against
// them, and where they go afterwards. Immutable once loaded.
type Location struct {
	Name                string `json:"name,omitempty" yaml:"name,omitempty"`
	File                Task   `json:"file" yaml:"file"`
	ReadinessDelay      Delay  `json:"readinessDelay" yaml:"readinessDelay"`
	MaxReadinessWait    Delay  `json:"max_readiness_wait,omitempty" yaml:"max_readiness_wait,omitempty"`
	Process             string `json:"process" yaml:"process"`
	ShellCommand        bool   `json:"shell_command" yaml:"shell_command"`
	ProcessingTimestamp bool   `json:"processing_timestamp" yaml:"processing_timestamp"`
	CompleteTimestamp   bool   `json:"complete_timestamp" yaml:"complete_timestamp"`
	CurrentDir          string `json:"current_dir,omitempty" yaml:"current_dir,omitempty"`
}

// DefaultReadinessDelay applies when a location omits readinessDelay. An
// explicit 0 is kept.
const DefaultReadinessDelay = time.Second

// UnmarshalJSON decodes a location, defaulting readinessDelay only when the
// key is absent.
func (l *Location) UnmarshalJSON(data []byte) error {
	type plain Location
	p := plain{ReadinessDelay: Delay(DefaultReadinessDelay)}
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*l = Location(p)
	return nil
}

// UnmarshalYAML is the YAML counterpart of UnmarshalJSON.
func (l *Location) UnmarshalYAML(node *yaml.Node) error {
	type plain Location
	p := plain{ReadinessDelay: Delay(DefaultReadinessDelay)}
	if err := node.Decode(&p); err != nil {
		return err
	}
	*l = Location(p)
	return nil
}

// Label identifies the location in logs and the dashboard.
func (l *Location) Label() string {
	if l.Name != "" {
		return l.Name
	}
	return l.File.Input
}

// Locations is the configuration root: every watched location plus the
// poll interval shared between them.
type Locations struct {
	Locations    []Location `json:"locations" yaml:"locations"`
	PollingDelay Delay      `json:"polling_delay" yaml:"polling_delay"`
}

// PollInterval is the sleep between full passes over all locations.
func (c *Locations) PollInterval() time.Duration {
	return c.PollingDelay.Duration()
}
