// Package trace records what a substrace run is doing: which units are
// being analysed, how long each phase takes, and where a run got stuck.
//
//	substrace check --trace=- --trace-level=phase target/substrace/
//
// Stream writes events as they happen; Ring keeps the newest ones and is
// dumped when the command ends. Each Level admits one more Scope:
// phase shows driver and unit spans, detail adds decode/lower/lint/fix,
// debug adds every item the lint walker visits.
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopeUnit, "check_unit", trace.ParentFrom(ctx))
//	defer span.End("")
//	ctx = trace.WithParent(ctx, span)
package trace
