package trace

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// Stream writes each event as soon as it arrives.
type Stream struct {
	mu     sync.Mutex
	w      io.Writer
	level  Level
	format Format
}

func NewStream(w io.Writer, level Level, format Format) *Stream {
	return &Stream{w: w, level: level, format: format}
}

func (s *Stream) Emit(ev *Event) {
	if ev.Kind != KindHeartbeat && !s.level.Admits(ev.Scope) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if ev.Seq == 0 {
		ev.Seq = NextSeq()
	}
	// ошибки записи трейса не валят прогон
	_, _ = s.w.Write(Encode(ev, s.format)) //nolint:errcheck
}

func (s *Stream) Flush() error {
	if f, ok := s.w.(interface{ Flush() error }); ok {
		return f.Flush()
	}
	return nil
}

// Close flushes and closes the writer unless it is stdout or stderr.
func (s *Stream) Close() error {
	if err := s.Flush(); err != nil {
		return err
	}
	if s.w == io.Writer(os.Stderr) || s.w == io.Writer(os.Stdout) {
		return nil
	}
	if c, ok := s.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (s *Stream) Level() Level { return s.level }

// Ring keeps the most recent events in memory and writes them out on
// request, typically when the command finishes or crashes.
type Ring struct {
	mu    sync.Mutex
	buf   []Event
	next  int
	total int
	level Level
}

// NewRing holds up to size events; size <= 0 means 4096.
func NewRing(size int, level Level) *Ring {
	if size <= 0 {
		size = 4096
	}
	return &Ring{buf: make([]Event, size), level: level}
}

func (r *Ring) Emit(ev *Event) {
	if ev.Kind != KindHeartbeat && !r.level.Admits(ev.Scope) {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.buf[r.next] = *ev
	if ev.Seq == 0 {
		r.buf[r.next].Seq = NextSeq()
	}
	r.next = (r.next + 1) % len(r.buf)
	r.total++
}

// Snapshot returns the held events, oldest first.
func (r *Ring) Snapshot() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.total < len(r.buf) {
		return append([]Event(nil), r.buf[:r.next]...)
	}
	out := make([]Event, 0, len(r.buf))
	out = append(out, r.buf[r.next:]...)
	return append(out, r.buf[:r.next]...)
}

// Dropped counts events pushed out of the ring.
func (r *Ring) Dropped() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return max(r.total-len(r.buf), 0)
}

// Dump writes Snapshot to w.
func (r *Ring) Dump(w io.Writer, format Format) error {
	for _, ev := range r.Snapshot() {
		if _, err := w.Write(Encode(&ev, format)); err != nil {
			return err
		}
	}
	return nil
}

func (r *Ring) Flush() error { return nil }
func (r *Ring) Close() error { return nil }
func (r *Ring) Level() Level { return r.level }

// fan sends a copy of every event to each sink.
type fan struct {
	sinks []Tracer
	level Level
}

func (f fan) Emit(ev *Event) {
	ev.Seq = NextSeq()
	for _, s := range f.sinks {
		cp := *ev
		s.Emit(&cp)
	}
}

func (f fan) Flush() error {
	var errs []error
	for _, s := range f.sinks {
		errs = append(errs, s.Flush())
	}
	return errors.Join(errs...)
}

func (f fan) Close() error {
	var errs []error
	for _, s := range f.sinks {
		errs = append(errs, s.Close())
	}
	return errors.Join(errs...)
}

func (f fan) Level() Level { return f.level }

// Mode selects where events go.
type Mode uint8

const (
	ModeStream Mode = iota + 1
	ModeRing
	ModeBoth
)

var modeNames = [...]string{"", "stream", "ring", "both"}

func (m Mode) String() string {
	if m > 0 && int(m) < len(modeNames) {
		return modeNames[m]
	}
	return "unknown"
}

func ParseMode(s string) (Mode, error) {
	for i, name := range modeNames[1:] {
		if strings.EqualFold(s, name) {
			return Mode(i + 1), nil
		}
	}
	return ModeStream, fmt.Errorf("invalid trace mode %q (want stream|ring|both)", s)
}

// Config is what --trace* flags turn into.
type Config struct {
	Level    Level
	Mode     Mode
	Format   Format    // FormatAuto picks by Path extension
	Output   io.Writer // overrides Path
	Path     string    // "" or "-" is stderr
	RingSize int
}

// New builds a tracer for cfg. LevelOff yields Nop. With ModeBoth the
// result is not a *Ring; use RingOf to reach the buffer.
func New(cfg Config) (Tracer, error) {
	if cfg.Level == LevelOff {
		return Nop, nil
	}
	format := cfg.Format
	if format == FormatAuto {
		format = FormatFor(cfg.Path)
	}
	switch cfg.Mode {
	case ModeRing:
		return NewRing(cfg.RingSize, cfg.Level), nil
	case ModeStream, ModeBoth:
		w, err := openOutput(cfg)
		if err != nil {
			return nil, err
		}
		stream := NewStream(w, cfg.Level, format)
		if cfg.Mode == ModeStream {
			return stream, nil
		}
		return fan{sinks: []Tracer{stream, NewRing(cfg.RingSize, cfg.Level)}, level: cfg.Level}, nil
	}
	return nil, fmt.Errorf("unknown trace mode %v", cfg.Mode)
}

// RingOf returns the ring buffer behind t, if there is one.
func RingOf(t Tracer) (*Ring, bool) {
	switch v := t.(type) {
	case *Ring:
		return v, true
	case fan:
		for _, s := range v.sinks {
			if r, ok := s.(*Ring); ok {
				return r, true
			}
		}
	}
	return nil, false
}

func openOutput(cfg Config) (io.Writer, error) {
	if cfg.Output != nil {
		return cfg.Output, nil
	}
	if cfg.Path == "" || cfg.Path == "-" {
		return os.Stderr, nil
	}
	f, err := os.Create(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("open trace output: %w", err)
	}
	return f, nil
}
