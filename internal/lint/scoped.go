package lint

// Scoped holds per-body state on a stack: Push on function entry, Pop on
// exit. Nested functions get their own frame and never see the outer one.
type Scoped[T any] struct {
	frames []T
}

// Push opens a zero-valued frame and returns it.
func (s *Scoped[T]) Push() *T {
	var zero T
	s.frames = append(s.frames, zero)
	return &s.frames[len(s.frames)-1]
}

// Top returns the innermost frame, or nil outside any body.
func (s *Scoped[T]) Top() *T {
	if len(s.frames) == 0 {
		return nil
	}
	return &s.frames[len(s.frames)-1]
}

// Pop discards the innermost frame and returns its final value.
func (s *Scoped[T]) Pop() T {
	var zero T
	if len(s.frames) == 0 {
		return zero
	}
	last := s.frames[len(s.frames)-1]
	s.frames[len(s.frames)-1] = zero
	s.frames = s.frames[:len(s.frames)-1]
	return last
}

// Depth returns the number of open frames.
func (s *Scoped[T]) Depth() int { return len(s.frames) }
