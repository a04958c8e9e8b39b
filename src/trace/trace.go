// Package trace collects timing events from a generation run and writes
// them out as Chrome trace-event JSON, which the about:tracing viewer
// (or any compatible tool) can interpret nicely.
// See https://docs.google.com/document/d/1CvAClvFfyA5R-PhYUmn5OOQtYMH4h6I0nSsKchNAySU
package trace

import (
	"encoding/json"
	"os"
	"sync"
	"time"

	"gopkg.in/op/go-logging.v1"
)

var log = logging.MustGetLogger("trace")

// Category classifies an event for the viewer.
type Category string

const (
	Resolve     Category = "resolve"
	Emit        Category = "emit"
	TargetWrite Category = "target_write"
	FileWrite   Category = "file_write"
)

// Collector accumulates events. Append-only under an internal lock; each
// event is independent so workers never contend beyond the append.
type Collector struct {
	mutex  sync.Mutex
	events []traceEntry
	start  time.Time
}

// NewCollector returns a collector rooted at the current time.
func NewCollector() *Collector {
	return &Collector{start: time.Now()}
}

// Span is one in-flight event; Done records its end.
type Span struct {
	c     *Collector
	name  string
	cat   Category
	begin time.Duration
}

// Begin opens a span. Safe on a nil collector, which records nothing.
func (c *Collector) Begin(cat Category, name string) Span {
	if c == nil {
		return Span{}
	}
	return Span{c: c, name: name, cat: cat, begin: time.Since(c.start)}
}

// Done closes the span and appends its event.
func (s Span) Done() {
	if s.c == nil {
		return
	}
	end := time.Since(s.c.start)
	s.c.mutex.Lock()
	defer s.c.mutex.Unlock()
	s.c.events = append(s.c.events, traceEntry{
		Name: s.name,
		Cat:  string(s.cat),
		Ph:   "X",
		Ts:   s.begin.Microseconds(),
		Dur:  (end - s.begin).Microseconds(),
	})
}

// Write dumps the collected events to the given file.
func (c *Collector) Write(filename string) {
	if c == nil {
		return
	}
	c.mutex.Lock()
	defer c.mutex.Unlock()
	var out traceObjectFormat
	out.TraceEvents = c.events
	out.OtherData.Version = "genja"
	data, err := json.Marshal(out)
	if err != nil {
		log.Errorf("Error serialising JSON trace data: %s", err)
		return
	}
	if err := os.WriteFile(filename, data, 0644); err != nil {
		log.Errorf("Couldn't create trace file: %s", err)
	}
}

type traceObjectFormat struct {
	TraceEvents []traceEntry `json:"traceEvents"`
	OtherData   struct {
		Version string `json:"version"`
	} `json:"otherData"`
}

type traceEntry struct {
	Name string `json:"name"`
	Cat  string `json:"cat"`
	Ph   string `json:"ph"`
	Pid  int32  `json:"pid"`
	Tid  string `json:"tid"`
	Ts   int64  `json:"ts"`
	Dur  int64  `json:"dur,omitempty"`
}
