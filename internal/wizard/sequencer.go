package wizard

// Sequencer is a 1-based position clamped to [1, max].
type Sequencer struct {
	current int
	max     int
}

func NewSequencer(max int) Sequencer {
	if max < 1 {
		max = 1
	}
	return Sequencer{current: 1, max: max}
}

func (s Sequencer) Current() int { return s.current }

func (s Sequencer) Max() int { return s.max }

func (s Sequencer) AtEnd() bool { return s.current >= s.max }

// Advance moves one position forward and reports whether it moved.
func (s *Sequencer) Advance() bool {
	if s.current >= s.max {
		return false
	}
	s.current++
	return true
}

// Retreat moves one position back and reports whether it moved.
func (s *Sequencer) Retreat() bool {
	if s.current <= 1 {
		return false
	}
	s.current--
	return true
}

// Go jumps to n, clamped.
func (s *Sequencer) Go(n int) {
	s.current = min(max(n, 1), s.max)
}

func (s *Sequencer) Reset() {
	s.current = 1
}
