package detect

import "math/bits"

// utf8State is the incremental UTF-8 automaton state. It is a plain value
// threaded through the window loop so the automaton survives window
// boundaries and stays unit-testable without any I/O.
//
// The automaton classifies each byte by its count of leading one bits:
// 0 is ASCII, 1 is a continuation byte, 2-4 opens a multi-byte sequence,
// anything higher is invalid. Overlong encodings and out-of-range code
// points are not checked.
type utf8State struct {
	pending int    // continuation bytes still expected, always 0..3
	errors  uint64 // structural violations recorded so far
}

// scan advances the automaton over p and returns the updated state.
func (s utf8State) scan(p []byte) utf8State {
	for _, b := range p {
		ones := bits.LeadingZeros8(^b)
		if s.pending > 0 {
			if ones == 1 {
				s.pending--
				continue
			}
			// A continuation was expected but not received. Count the
			// broken sequence once, then let this byte open a new one.
			s.pending = 0
			s.errors++
		}
		switch {
		case ones == 0:
			// ASCII
		case ones == 1:
			// continuation byte with no open sequence
			s.errors++
		case ones <= 4:
			s.pending = ones - 1
		default:
			s.errors++
		}
	}
	return s
}

// finish closes the automaton at end of input. A sequence truncated at
// EOF counts as one more error.
func (s utf8State) finish() utf8State {
	if s.pending > 0 {
		s.pending = 0
		s.errors++
	}
	return s
}
