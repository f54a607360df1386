package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"substrace/internal/driver"
	"substrace/internal/lint"
	"substrace/internal/lints"
	"substrace/internal/project"
	"substrace/internal/unit"
)

// addAnalysisFlags registers the flags shared by check, fix and tree.
func addAnalysisFlags(cmd *cobra.Command) {
	cmd.Flags().StringSliceP("warn", "W", nil, "set lints to warn (repeatable, comma-separated)")
	cmd.Flags().StringSliceP("deny", "D", nil, "set lints to deny")
	cmd.Flags().StringSliceP("allow", "A", nil, "set lints to allow")
	cmd.Flags().Int("jobs", 0, "max parallel workers (0 = config or GOMAXPROCS)")
	cmd.Flags().String("unit-format", "auto", "unit encoding (auto|json|msgpack)")
	cmd.Flags().Bool("cache", false, "reuse results of unchanged units from the disk cache")
	cmd.Flags().String("cache-dir", "", "cache directory (default $XDG_CACHE_HOME/substrace)")
}

// analysis is everything a command needs to run the driver.
type analysis struct {
	opts    driver.Options
	defaults project.CheckConfig
}

// loadAnalysis reads flags and the configuration into driver options.
// Without --config every unit discovers its own file; the one above the
// working directory only supplies command defaults.
func loadAnalysis(cmd *cobra.Command) (*analysis, error) {
	root := cmd.Root().PersistentFlags()
	configPath, err := root.GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to get config flag: %w", err)
	}
	maxDiagnostics, err := root.GetInt("max-diagnostics")
	if err != nil {
		return nil, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	showTimings, err := root.GetBool("timings")
	if err != nil {
		return nil, fmt.Errorf("failed to get timings flag: %w", err)
	}

	a := &analysis{}
	var defaults *project.Config
	if configPath != "" {
		cfg, err := project.Load(configPath)
		if err != nil {
			return nil, err
		}
		a.opts.Config = cfg
		defaults = cfg
	} else {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		if defaults, _, err = project.Discover(wd); err != nil {
			return nil, err
		}
	}
	a.defaults = defaults.Check
	warnUndecoded(cmd, defaults)

	overrides, err := levelOverrides(cmd)
	if err != nil {
		return nil, err
	}
	a.opts.Overrides = overrides

	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return nil, fmt.Errorf("failed to get jobs flag: %w", err)
	}
	if jobs == 0 {
		jobs = a.defaults.Jobs
	}
	a.opts.Jobs = jobs

	if maxDiagnostics == 0 {
		maxDiagnostics = a.defaults.MaxDiagnostics
	}
	a.opts.MaxDiagnostics = maxDiagnostics
	a.opts.Timings = showTimings

	formatStr, err := cmd.Flags().GetString("unit-format")
	if err != nil {
		return nil, fmt.Errorf("failed to get unit-format flag: %w", err)
	}
	if a.opts.Format, err = unit.ParseFormat(formatStr); err != nil {
		return nil, err
	}

	useCache, err := cmd.Flags().GetBool("cache")
	if err != nil {
		return nil, fmt.Errorf("failed to get cache flag: %w", err)
	}
	if !cmd.Flags().Changed("cache") && a.defaults.Cache != nil {
		useCache = *a.defaults.Cache
	}
	if useCache {
		cacheDir, err := cmd.Flags().GetString("cache-dir")
		if err != nil {
			return nil, fmt.Errorf("failed to get cache-dir flag: %w", err)
		}
		var cache *driver.DiskCache
		if cacheDir != "" {
			cache, err = driver.OpenDiskCacheAt(cacheDir)
		} else {
			cache, err = driver.OpenDiskCache("substrace")
		}
		if err != nil {
			return nil, fmt.Errorf("open cache: %w", err)
		}
		a.opts.Cache = cache
	}
	return a, nil
}

// levelOverrides collects -W/-D/-A. A lint named in several groups ends up
// at the strictest one.
func levelOverrides(cmd *cobra.Command) (map[string]lint.Level, error) {
	reg := lints.Registry(lints.Options{})
	out := make(map[string]lint.Level)
	for _, group := range []struct {
		flag  string
		level lint.Level
	}{
		{"allow", lint.Allow},
		{"warn", lint.Warn},
		{"deny", lint.Deny},
	} {
		names, err := cmd.Flags().GetStringSlice(group.flag)
		if err != nil {
			return nil, fmt.Errorf("failed to get %s flag: %w", group.flag, err)
		}
		for _, name := range names {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			l, ok := reg.Lookup(name)
			if !ok {
				return nil, fmt.Errorf("--%s: %w: %s", group.flag, project.ErrUnknownLint, name)
			}
			out[l.Name] = group.level
		}
	}
	return out, nil
}

func warnUndecoded(cmd *cobra.Command, cfg *project.Config) {
	if cfg == nil || len(cfg.Undecoded) == 0 {
		return
	}
	if quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet"); quiet {
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s: unknown keys ignored: %s\n", cfg.Path, strings.Join(cfg.Undecoded, ", "))
}
