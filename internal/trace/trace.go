package trace

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Level is how deep a run is traced. Each level admits one more scope.
type Level uint8

const (
	LevelOff    Level = iota
	LevelError        // crash dumps only
	LevelPhase        // driver and unit spans
	LevelDetail       // + decode/lower/lint/fix phases
	LevelDebug        // + every visited item
)

var levelNames = [...]string{"off", "error", "phase", "detail", "debug"}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "unknown"
}

// ParseLevel accepts the names printed by Level.String, in any case.
func ParseLevel(s string) (Level, error) {
	for i, name := range levelNames {
		if strings.EqualFold(s, name) {
			return Level(i), nil
		}
	}
	return LevelOff, fmt.Errorf("invalid trace level %q (want %s)", s, strings.Join(levelNames[:], "|"))
}

// Admits reports whether events of scope pass at this level.
func (l Level) Admits(scope Scope) bool {
	if l <= LevelError {
		return false
	}
	return uint8(scope) <= uint8(l)
}

// Scope is the granularity of an event: a CLI run, a unit, a phase
// inside the unit, or a single item visited by the lint walker.
type Scope uint8

const (
	ScopeDriver Scope = iota + 1
	ScopeUnit
	ScopePhase
	ScopeNode
)

var scopeNames = [...]string{"", "driver", "unit", "phase", "node"}

func (s Scope) String() string {
	if s > 0 && int(s) < len(scopeNames) {
		return scopeNames[s]
	}
	return "unknown"
}

// Kind tells span boundaries apart from instant events.
type Kind uint8

const (
	KindBegin Kind = iota + 1
	KindEnd
	KindPoint
	KindHeartbeat
)

var kindNames = [...]string{"", "begin", "end", "point", "heartbeat"}

func (k Kind) String() string {
	if k > 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Attr is one key/value pair attached to an event. Order is preserved.
type Attr struct {
	Key   string
	Value string
}

// Event is what a Tracer receives.
type Event struct {
	Time   time.Time
	Seq    uint64
	Kind   Kind
	Scope  Scope
	Span   uint64 // 0 for points and heartbeats
	Parent uint64
	Name   string // "check_unit", "lint", "fn:transfer"
	Detail string
	Attrs  []Attr
}

// Tracer consumes events. Emit must be safe for concurrent use: the
// driver checks units on several goroutines.
type Tracer interface {
	Emit(ev *Event)
	Flush() error
	Close() error
	Level() Level
}

// Enabled is true when t is non-nil and above LevelOff.
func Enabled(t Tracer) bool {
	return t != nil && t.Level() > LevelOff
}

type nopTracer struct{}

func (nopTracer) Emit(*Event)  {}
func (nopTracer) Flush() error { return nil }
func (nopTracer) Close() error { return nil }
func (nopTracer) Level() Level { return LevelOff }

// Nop drops everything.
var Nop Tracer = nopTracer{}

type (
	tracerKey struct{}
	parentKey struct{}
)

// WithTracer stores t in ctx. A nil t stores Nop.
func WithTracer(ctx context.Context, t Tracer) context.Context {
	if t == nil {
		t = Nop
	}
	return context.WithValue(ctx, tracerKey{}, t)
}

// FromContext returns the tracer stored in ctx, or Nop.
func FromContext(ctx context.Context) Tracer {
	if ctx != nil {
		if t, ok := ctx.Value(tracerKey{}).(Tracer); ok {
			return t
		}
	}
	return Nop
}

// WithParent records the enclosing span so nested Begin calls can link to it.
func WithParent(ctx context.Context, span *Span) context.Context {
	return context.WithValue(ctx, parentKey{}, span.ID())
}

// ParentFrom returns the span id stored by WithParent, or 0.
func ParentFrom(ctx context.Context) uint64 {
	if ctx == nil {
		return 0
	}
	id, _ := ctx.Value(parentKey{}).(uint64)
	return id
}
