package driver

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"fortio.org/safecast"

	"substrace/internal/diag"
	"substrace/internal/fix"
	"substrace/internal/hir"
	"substrace/internal/lint"
	"substrace/internal/lints"
	"substrace/internal/observ"
	"substrace/internal/project"
	"substrace/internal/source"
	"substrace/internal/trace"
	"substrace/internal/unit"
	"substrace/internal/version"
)

// Options control one check run.
type Options struct {
	// Config overrides discovery; nil means the config above each unit is used.
	Config         *project.Config
	// Overrides set lint levels on top of the config, as -W/-D/-A do.
	Overrides      map[string]lint.Level
	MaxDiagnostics int
	Jobs           int
	Format         unit.Format
	Cache          *DiskCache
	Timings        bool
	Progress       ProgressSink
}

// Result is the outcome of one unit.
type Result struct {
	Path   string
	Crate  *hir.Crate // nil when the unit failed to load
	Files  *source.FileSet
	Bag    *diag.Bag
	Timing observ.Report
	Cached bool
	// Err is set when analysis stopped early; the bag still holds what was found.
	Err    error
}

// CheckUnit loads, lowers and lints the unit at path. Problems with the
// input become diagnostics in Result.Bag; the returned error is reserved for
// configuration failures and cancellation.
func CheckUnit(ctx context.Context, path string, opts Options) (*Result, error) {
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeUnit, "check_unit", trace.ParentFrom(ctx)).
		Set("path", path)
	defer span.End("")
	ctx = trace.WithParent(ctx, span)

	timer := observ.NewTimer()
	res := &Result{Path: path, Bag: diag.NewBag(opts.MaxDiagnostics)}
	defer func() { res.Timing = timer.Report() }()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// load + decode
	emit(opts.Progress, Event{Unit: path, Stage: StageLoad, Status: StatusWorking})
	done := timer.Track("load")
	// #nosec G304 -- path comes from the command line or ListUnits
	data, err := os.ReadFile(path)
	if err != nil {
		done("read failed")
		res.Bag.Add(ioDiagnostic(diag.IOLoadError, "failed to load unit: "+err.Error()))
		emit(opts.Progress, Event{Unit: path, Stage: StageLoad, Status: StatusError, Err: err})
		return res, nil
	}
	format := opts.Format
	if format == unit.FormatAuto {
		format = unit.FormatForPath(path)
	}
	u, err := unit.Decode(data, format)
	done(fmt.Sprintf("%d bytes", len(data)))
	if err != nil {
		res.Bag.Add(ioDiagnostic(diag.IOInvalidUnit, "invalid unit: "+err.Error()))
		emit(opts.Progress, Event{Unit: path, Stage: StageLoad, Status: StatusError, Err: err})
		return res, nil
	}

	var cfg *project.Config
	if opts.Config != nil {
		cfg = opts.Config.Clone()
	} else if cfg, _, err = project.Discover(filepath.Dir(path)); err != nil {
		return nil, err
	}
	reg := lints.Registry(cfg.LintOptions())
	if err := cfg.Validate(reg); err != nil {
		return nil, err
	}
	// overrides go on top of the normalised names, so they win over either spelling
	for name, lvl := range opts.Overrides {
		l, ok := reg.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("override: %w: %s", project.ErrUnknownLint, name)
		}
		cfg.Lints[l.Name] = lvl
	}

	// lower
	emit(opts.Progress, Event{Unit: path, Stage: StageLower, Status: StatusWorking})
	done = timer.Track("lower")
	crate, files, err := unit.Lower(u, filepath.Dir(path))
	done("")
	if err != nil {
		res.Bag.Add(ioDiagnostic(diag.IOInvalidUnit, "invalid unit: "+err.Error()))
		emit(opts.Progress, Event{Unit: path, Stage: StageLower, Status: StatusError, Err: err})
		return res, nil
	}
	res.Crate, res.Files = crate, files

	key := cacheKey(data, files, cfg)
	if opts.Cache != nil {
		var payload DiskPayload
		if ok, cerr := opts.Cache.Get(key, &payload); cerr == nil && ok && payload.Crate == crate.Name {
			for _, d := range payload.Diagnostics {
				res.Bag.Add(d)
			}
			res.Cached = true
			finish(res, opts, timer)
			emit(opts.Progress, Event{Unit: path, Stage: StageLint, Status: StatusDone})
			return res, nil
		}
	}

	// lint
	emit(opts.Progress, Event{Unit: path, Stage: StageLint, Status: StatusWorking})
	start := time.Now()
	done = timer.Track("lint")
	engine := lint.NewEngine(reg, cfg.EngineOptions())
	// дубликаты не занимают место в лимите
	dedup := diag.NewDedupReporter(diag.BagReporter{Bag: res.Bag})
	runErr := engine.Run(ctx, crate, files, dedup)
	done(fmt.Sprintf("%d diagnostics", res.Bag.Len()))
	if n := dedup.Suppressed(); n > 0 {
		span.Set("duplicates", strconv.Itoa(n))
	}
	if runErr != nil {
		res.Err = runErr
		sp := source.Span{File: crate.Root}
		if ae, ok := lint.AsAnalysisError(runErr); ok && files.Get(ae.Span.File) != nil {
			sp = ae.Span
		}
		res.Bag.Add(diag.NewError(diag.EngAnalysisIncomplete, sp, runErr.Error()))
		emit(opts.Progress, Event{Unit: path, Stage: StageLint, Status: StatusError, Elapsed: time.Since(start), Err: runErr})
	} else {
		emit(opts.Progress, Event{Unit: path, Stage: StageLint, Status: StatusDone, Elapsed: time.Since(start)})
	}

	// incomplete runs are not cached: the next run must report the abort again
	if opts.Cache != nil && runErr == nil {
		items := append([]diag.Diagnostic(nil), res.Bag.Items()...)
		if err := opts.Cache.Put(key, &DiskPayload{Crate: crate.Name, Diagnostics: items}); err != nil {
			trace.Point(tracer, trace.ScopeUnit, "cache_put_failed", span.ID(), err.Error())
		}
	}
	finish(res, opts, timer)
	return res, nil
}

func finish(res *Result, opts Options, timer *observ.Timer) {
	res.Bag.Sort()
	if opts.Timings {
		if d, err := timingDiagnostic(res, timer.Report()); err == nil {
			pushPastLimit(res.Bag, d)
		}
	}
	res.Bag.Edit(fix.AssignIDs)
}

func ioDiagnostic(code diag.Code, msg string) diag.Diagnostic {
	return diag.Diagnostic{Severity: diag.SevError, Code: code, Message: msg}
}

// cacheKey covers everything that can change the diagnostics of a unit.
func cacheKey(data []byte, files *source.FileSet, cfg *project.Config) project.Digest {
	parts := []project.Digest{project.Sum(data)}
	for i := 0; i < files.Len(); i++ {
		id, err := safecast.Conv[source.FileID](i)
		if err != nil {
			break
		}
		if f := files.Get(id); f != nil {
			parts = append(parts, project.Digest(f.Hash))
		}
	}
	parts = append(parts, cfg.Fingerprint(), project.Sum([]byte(version.Version)))
	return project.Combine(parts[0], parts[1:]...)
}

