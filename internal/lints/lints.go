// Package lints assembles the built-in passes into a registry.
package lints

import (
	"substrace/internal/docs"
	"substrace/internal/lint"
	"substrace/internal/lints/benchmarks"
	"substrace/internal/lints/extrinsic"
	"substrace/internal/lints/nopanics"
	"substrace/internal/lints/securitydoc"
	"substrace/internal/lints/storageiter"
)

// Options configure the built-in passes.
type Options struct {
	StoragePolicy      storageiter.Policy
	MixedRaw           docs.MixedRaw
	RequiredPanicLints []string // empty means nopanics.DefaultRequired
}

// Registry returns every built-in pass in a fixed order. Diagnostics of one
// item therefore come out in the same order on every run.
func Registry(opts Options) *lint.Registry {
	reg := lint.NewRegistry()
	reg.MustRegister(func() lint.Pass { return storageiter.New(opts.StoragePolicy) })
	reg.MustRegister(func() lint.Pass { return securitydoc.New(opts.MixedRaw) })
	reg.MustRegister(func() lint.Pass { return extrinsic.New() })
	reg.MustRegister(func() lint.Pass { return nopanics.New(opts.RequiredPanicLints) })
	reg.MustRegister(func() lint.Pass { return benchmarks.New() })
	return reg
}
