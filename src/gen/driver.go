package gen

import (
	"bytes"
	"context"
	"runtime"
	"sync"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/exp/slices"
	"golang.org/x/sync/errgroup"

	"github.com/genja-build/genja/src/core"
	"github.com/genja-build/genja/src/fs"
	"github.com/genja-build/genja/src/ninja"
	"github.com/genja-build/genja/src/trace"
)

// Options configures a generation run.
type Options struct {
	// Filesystem path of the build directory files are written under.
	BuildDirPath string
	// Number of concurrent write workers; defaults to GOMAXPROCS.
	NumWorkers int
	// Optional trace collector; nil disables tracing.
	Trace *trace.Collector
}

// Result summarises what a run did.
type Result struct {
	TargetsResolved int
	FilesWritten    int
	FilesSkipped    int
	BytesWritten    int64
}

// entry is one target's contribution to its toolchain's aggregate file.
type entry struct {
	label     core.Label
	toolchain *core.Toolchain
	text      string
}

// Generate runs the two-phase emission: resolve every target in
// topological order, then fan per-target writes out over a worker pool.
// Each worker reads immutable post-resolution state and accumulates into
// a private buffer, so the only coordination is the error cell and the
// final single-threaded flush of the aggregate files. User errors are
// collected so one run surfaces as many diagnostics as possible; the
// master file is only written when there were none.
func Generate(g *core.Graph, opts Options) (*Result, error) {
	result := &Result{}

	span := opts.Trace.Begin(trace.Resolve, "resolve")
	resolved, resolveErrs := g.ResolveAll()
	span.Done()
	result.TargetsResolved = len(resolved)
	var userErrs *multierror.Error
	for _, err := range resolveErrs {
		if e, ok := err.(*core.Err); ok && e.IsFatal() {
			return result, e
		}
		userErrs = multierror.Append(userErrs, err)
	}

	workers := opts.NumWorkers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	eg, ctx := errgroup.WithContext(context.Background())
	eg.SetLimit(workers)

	var mutex sync.Mutex
	var entries []entry
	addEntry := func(e entry) {
		mutex.Lock()
		defer mutex.Unlock()
		entries = append(entries, e)
	}
	addUserError := func(err error) {
		mutex.Lock()
		defer mutex.Unlock()
		userErrs = multierror.Append(userErrs, err)
	}

	span = opts.Trace.Begin(trace.Emit, "emit targets")
	for _, t := range resolved {
		t := t
		eg.Go(func() error {
			if ctx.Err() != nil {
				// Another job already failed fatally; discard quietly.
				return nil
			}
			log.Debugf("Computing %s", t.Label)
			tspan := opts.Trace.Begin(trace.TargetWrite, t.Label.String())
			defer tspan.Done()
			text, err := runTarget(t, opts, result, &mutex)
			if err != nil {
				if e, ok := err.(*core.Err); ok && !e.IsFatal() {
					addUserError(err)
					return nil
				}
				return err
			}
			addEntry(entry{label: t.Label, toolchain: t.Toolchain, text: text})
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return result, err
	}
	span.Done()

	span = opts.Trace.Begin(trace.Emit, "flush")
	defer span.Done()
	if err := flush(g, entries, resolved, opts, result, userErrs.ErrorOrNil() != nil); err != nil {
		return result, err
	}
	return result, userErrs.ErrorOrNil()
}

// runTarget dispatches one resolved target to its writer. Binary targets
// get a complete sub-file of their own (compile-flag variables are
// file-scoped in the output dialect, so each flag set needs one) and
// contribute just a subninja reference; everything else returns its rules
// for coalescing into the toolchain's aggregate file.
func runTarget(t *core.Target, opts Options, result *Result, mutex *sync.Mutex) (string, error) {
	var out bytes.Buffer
	var err error
	needsFile := false
	switch t.OutputType {
	case core.BundleData:
		err = writeBundleDataTarget(t, &out)
	case core.CreateBundle:
		err = writeCreateBundleTarget(t, &out)
	case core.CopyFiles:
		err = writeCopyTarget(t, &out)
	case core.Action, core.ActionForEach:
		err = writeActionTarget(t, &out)
	case core.Group:
		err = writeGroupTarget(t, &out)
	case core.GeneratedFile:
		err = writeGeneratedFileTarget(t, &out, opts.BuildDirPath)
	case core.SourceSet, core.StaticLibrary, core.SharedLibrary, core.LoadableModule, core.Executable:
		needsFile = true
		if t.SourceTypes.RustUsed() {
			err = writeRustTarget(t, &out)
		} else {
			err = writeBinaryTarget(t, &out)
		}
	case core.RustLibrary, core.RustProcMacro:
		needsFile = true
		err = writeRustTarget(t, &out)
	default:
		err = core.NewInternalError("output type of target %s not handled", t.Label)
	}
	if err != nil {
		return "", err
	}
	if !needsFile {
		return out.String(), nil
	}

	file := ninja.FileForTarget(t)
	if err := writeGenerated(opts, result, mutex, string(file), out.Bytes()); err != nil {
		return "", err
	}
	return "subninja " + ninja.Escape(string(file), ninja.EscapeNinja) + "\n", nil
}

// flush assembles and writes the per-toolchain aggregate files and, when
// the run was clean, the master file.
func flush(g *core.Graph, entries []entry, resolved []*core.Target, opts Options, result *Result, hadErrors bool) error {
	slices.SortFunc(entries, func(a, b entry) bool { return a.label.Less(b.label) })

	toolchains := g.Toolchains
	byToolchain := make(map[*core.Toolchain][]entry)
	for _, e := range entries {
		byToolchain[e.toolchain] = append(byToolchain[e.toolchain], e)
		// Label order keeps discovery of undeclared toolchains stable.
		if !slices.Contains(toolchains, e.toolchain) {
			toolchains = append(toolchains, e.toolchain)
		}
	}

	var master bytes.Buffer
	master.WriteString("ninja_required_version = 1.7.2\n\n")
	for _, tc := range toolchains {
		var out bytes.Buffer
		writeToolRules(tc, &out)
		for _, e := range byToolchain[tc] {
			out.WriteString(e.text)
		}
		file := ninja.FileForToolchain(tc)
		if err := writeGenerated(opts, result, nil, string(file), out.Bytes()); err != nil {
			return err
		}
		master.WriteString("subninja " + ninja.Escape(string(file), ninja.EscapeNinja) + "\n")
	}

	if hadErrors {
		// No master file on a failed run: the executor must not see a
		// partial build description as complete.
		return nil
	}

	var defaults []core.OutputFile
	for _, t := range resolved {
		if out, ok := t.DependencyOutput(); ok {
			defaults = append(defaults, out)
		}
	}
	slices.Sort(defaults)
	master.WriteString("\nbuild all: phony")
	for _, f := range defaults {
		master.WriteString(" " + ninja.Escape(string(f), ninja.EscapeNinja))
	}
	master.WriteString("\ndefault all\n")
	return writeGenerated(opts, result, nil, ninja.MasterFile, master.Bytes())
}

// writeGenerated streams bytes through write-if-changed and keeps the
// run counters straight. A nil mutex means the caller is already single
// threaded.
func writeGenerated(opts Options, result *Result, mutex *sync.Mutex, file string, data []byte) error {
	if opts.BuildDirPath == "" {
		return nil
	}
	wrote, err := fs.WriteIfChanged(opts.BuildDirPath+"/"+file, data)
	if err != nil {
		return core.NewIOError(err)
	}
	if mutex != nil {
		mutex.Lock()
		defer mutex.Unlock()
	}
	if wrote {
		result.FilesWritten++
		result.BytesWritten += int64(len(data))
	} else {
		result.FilesSkipped++
	}
	return nil
}
