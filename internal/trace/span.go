package trace

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

var (
	seq    atomic.Uint64
	spanID atomic.Uint64
)

// NextSeq numbers events in emission order across all tracers.
func NextSeq() uint64 { return seq.Add(1) }

// Span is an open Begin event. A span from a disabled tracer is inert,
// so callers never need to check.
type Span struct {
	t       Tracer
	id      uint64
	parent  uint64
	scope   Scope
	name    string
	started time.Time
	attrs   []Attr
}

// Begin opens a span under parent (0 for a root span).
func Begin(t Tracer, scope Scope, name string, parent uint64) *Span {
	if !Enabled(t) || !t.Level().Admits(scope) {
		return &Span{}
	}
	s := &Span{
		t:       t,
		id:      spanID.Add(1),
		parent:  parent,
		scope:   scope,
		name:    name,
		started: time.Now(),
	}
	t.Emit(&Event{Time: s.started, Kind: KindBegin, Scope: scope, Span: s.id, Parent: parent, Name: name})
	return s
}

// Set attaches key=value to the End event.
func (s *Span) Set(key, value string) *Span {
	if s != nil && s.t != nil {
		s.attrs = append(s.attrs, Attr{Key: key, Value: value})
	}
	return s
}

// End closes the span and returns how long it was open.
func (s *Span) End(detail string) time.Duration {
	if s == nil || s.t == nil {
		return 0
	}
	now := time.Now()
	s.t.Emit(&Event{
		Time:   now,
		Kind:   KindEnd,
		Scope:  s.scope,
		Span:   s.id,
		Parent: s.parent,
		Name:   s.name,
		Detail: detail,
		Attrs:  s.attrs,
	})
	return now.Sub(s.started)
}

// ID is 0 for inert spans.
func (s *Span) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.id
}

// Point emits an instant event tied to the span parent.
func Point(t Tracer, scope Scope, name string, parent uint64, detail string) {
	if !Enabled(t) || !t.Level().Admits(scope) {
		return
	}
	t.Emit(&Event{Time: time.Now(), Kind: KindPoint, Scope: scope, Parent: parent, Name: name, Detail: detail})
}

// StartHeartbeat emits a heartbeat every interval until the returned stop
// function is called. Heartbeats without matching End events point at the
// unit a run is stuck on. stop is safe to call more than once.
func StartHeartbeat(t Tracer, interval time.Duration) (stop func()) {
	if !Enabled(t) || interval <= 0 {
		return func() {}
	}
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		tick := time.NewTicker(interval)
		defer tick.Stop()
		for n := 1; ; n++ {
			select {
			case <-done:
				return
			case now := <-tick.C:
				t.Emit(&Event{Time: now, Kind: KindHeartbeat, Scope: ScopeDriver, Name: "heartbeat", Detail: fmt.Sprintf("#%d", n)})
			}
		}
	}()
	var once sync.Once
	return func() {
		once.Do(func() {
			close(done)
			wg.Wait()
		})
	}
}
