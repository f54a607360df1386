package lints

import (
	"testing"

	"substrace/internal/diag"
	"substrace/internal/lint"
)

func TestBuiltinLints(t *testing.T) {
	reg := Registry(Options{})
	want := map[string]struct {
		code  diag.Code
		level lint.Level
	}{
		"storage_iter_insert":          {diag.StoIterateMutate, lint.Warn},
		"missing_security_doc":         {diag.DocMissingSecurity, lint.Deny},
		"unbalanced_backticks":         {diag.DocUnbalancedBackticks, lint.Warn},
		"extrinsics_must_be_tagged":    {diag.ExtCallIndex, lint.Deny},
		"missing_transactional":        {diag.ExtMissingTransactional, lint.Deny},
		"panics":                       {diag.RtmMissingPanicLints, lint.Warn},
		"enable_singlepass_benchmarks": {diag.RtmSinglepassBenchmarks, lint.Warn},
	}
	lints := reg.Lints()
	if len(lints) != len(want) {
		t.Fatalf("registered %d lints, want %d", len(lints), len(want))
	}
	for _, l := range lints {
		w, ok := want[l.Name]
		if !ok {
			t.Fatalf("unexpected lint %q", l.Name)
		}
		if l.Code != w.code || l.Default != w.level {
			t.Errorf("%s: code %v level %v, want %v %v", l.Name, l.Code, l.Default, w.code, w.level)
		}
		if l.Desc == "" || l.Explain == "" {
			t.Errorf("%s: missing description", l.Name)
		}
	}
	if _, ok := reg.Lookup("substrace::panics"); !ok {
		t.Fatal("prefixed lookup failed")
	}
}
