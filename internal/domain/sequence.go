package domain

// AftershockSequence holds a mainshock and its associated aftershocks.
// Aftershocks are ordered by time ascending and contain no duplicate IDs.
// Built once by the sequence builder; immutable thereafter.
type AftershockSequence struct {
	Mainshock   Event
	Aftershocks []Event
}

// Count returns the number of member aftershocks.
func (s *AftershockSequence) Count() int {
	return len(s.Aftershocks)
}

// DurationHours returns the elapsed time of the last aftershock relative to
// the mainshock, in hours. Zero for an empty sequence.
func (s *AftershockSequence) DurationHours() float64 {
	if len(s.Aftershocks) == 0 {
		return 0
	}
	last := s.Aftershocks[len(s.Aftershocks)-1]
	return last.HoursAfter(&s.Mainshock)
}

// ElapsedHours returns the elapsed time of each aftershock relative to the
// mainshock, in hours, in sequence order.
func (s *AftershockSequence) ElapsedHours() []float64 {
	out := make([]float64, len(s.Aftershocks))
	for i := range s.Aftershocks {
		out[i] = s.Aftershocks[i].HoursAfter(&s.Mainshock)
	}
	return out
}
