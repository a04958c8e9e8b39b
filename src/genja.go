package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/karrick/godirwalk"
	_ "go.uber.org/automaxprocs"
	"gopkg.in/op/go-logging.v1"

	"github.com/genja-build/genja/src/cli"
	"github.com/genja-build/genja/src/core"
	"github.com/genja-build/genja/src/gen"
	"github.com/genja-build/genja/src/load"
	"github.com/genja-build/genja/src/metrics"
	"github.com/genja-build/genja/src/trace"
)

var log = logging.MustGetLogger("genja")

var opts struct {
	Verbosity    cli.Verbosity `short:"v" long:"verbosity" description:"Verbosity of output (higher number = more output)" default:"warning"`
	NumThreads   int           `short:"n" long:"num_threads" description:"Number of concurrent write workers."`
	LogFile      string        `long:"log_file" description:"File to echo full logging output to"`
	TraceFile    string        `long:"trace_file" description:"File to write Chrome tracing output into"`
	MetricsURL   string        `long:"metrics_url" description:"Prometheus pushgateway to report metrics to"`

	Gen struct {
		Graph string `short:"g" long:"graph" default:"graph.json" description:"Path to the resolved graph description"`
		Args  struct {
			BuildDir string   `positional-arg-name:"build_dir" required:"true" description:"Build output directory"`
			Targets  []string `positional-arg-name:"targets" description:"Only generate these targets and their dependencies"`
		} `positional-args:"true" required:"true"`
	} `command:"gen" description:"Generates the build files for a resolved target graph"`

	Clean struct {
		Args struct {
			BuildDir string `positional-arg-name:"build_dir" required:"true" description:"Build output directory"`
		} `positional-args:"true" required:"true"`
	} `command:"clean" description:"Removes all generated files from a build directory"`
}

func main() {
	command := cli.ParseFlagsOrDie("genja", &opts)
	cli.InitLogging(opts.Verbosity)
	if opts.LogFile != "" {
		if err := cli.InitFileLogging(opts.Verbosity, cli.MaxVerbosity, opts.LogFile); err != nil {
			log.Fatalf("Error opening log file: %s", err)
		}
	}
	metrics.Init(opts.MetricsURL)

	switch command {
	case "gen":
		os.Exit(runGen())
	case "clean":
		os.Exit(runClean())
	}
}

func runGen() int {
	start := time.Now()
	graph, err := load.FromFile(opts.Gen.Graph)
	if err != nil {
		return report(err)
	}
	if len(opts.Gen.Args.Targets) > 0 {
		roots, err := targetFilter(graph, opts.Gen.Args.Targets)
		if err != nil {
			return report(err)
		}
		graph = graph.Subgraph(roots)
	}

	var collector *trace.Collector
	if opts.TraceFile != "" {
		collector = trace.NewCollector()
	}
	workers := opts.NumThreads
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	result, err := gen.Generate(graph, gen.Options{
		BuildDirPath: opts.Gen.Args.BuildDir,
		NumWorkers:   workers,
		Trace:        collector,
	})
	collector.Write(opts.TraceFile)
	metrics.Record(result.TargetsResolved, result.FilesWritten, result.FilesSkipped, time.Since(start))
	metrics.Push()
	if err != nil {
		return report(err)
	}
	log.Noticef("Generated %d files (%s), %d unchanged, for %d targets in %s",
		result.FilesWritten, humanize.Bytes(uint64(result.BytesWritten)), result.FilesSkipped,
		result.TargetsResolved, time.Since(start).Round(time.Millisecond))
	return 0
}

// targetFilter resolves the requested target labels, suggesting close
// matches when one doesn't exist.
func targetFilter(graph *core.Graph, targets []string) ([]*core.Target, error) {
	ret := make([]*core.Target, 0, len(targets))
	for _, s := range targets {
		label, err := core.TryParseLabel(s)
		if err != nil {
			return nil, core.NewUserError("%s", err)
		}
		t := graph.Target(label)
		if t == nil {
			msg := fmt.Sprintf("unknown target %s", label)
			msg += cli.SuggestTargets(label, graph.AllLabels(), 5)
			return nil, core.NewUserError("%s", msg)
		}
		ret = append(ret, t)
	}
	return ret, nil
}

// runClean removes everything the generator may have written under the
// build dir: the master and toolchain files, per-target sub-files and
// the obj/ and gen/ trees.
func runClean() int {
	buildDir := opts.Clean.Args.BuildDir
	removed := 0
	err := godirwalk.Walk(buildDir, &godirwalk.Options{
		Unsorted: true,
		Callback: func(path string, de *godirwalk.Dirent) error {
			if de.IsDir() {
				name := de.Name()
				if path != buildDir && (name == "obj" || name == "gen") {
					if err := os.RemoveAll(path); err != nil {
						return err
					}
					removed++
					return filepath.SkipDir
				}
				return nil
			}
			if strings.HasSuffix(path, ".ninja") {
				if err := os.Remove(path); err != nil {
					return err
				}
				removed++
			}
			return nil
		},
	})
	if err != nil {
		return report(core.NewIOError(err))
	}
	log.Noticef("Removed %d generated entries from %s", removed, buildDir)
	return 0
}

// report prints a failure to stderr and maps it to the exit code.
func report(err error) int {
	fmt.Fprintf(os.Stderr, "%s\n", err)
	if e, ok := err.(*core.Err); ok && e.IsFatal() {
		return 2
	}
	return 1
}
