package game

// scripted replays fixed values, then repeats the last one
type scripted struct {
	values []int
	pos    int
}

func (s *scripted) IntN(n int) int {
	if len(s.values) == 0 {
		return 0
	}
	v := s.values[s.pos]
	if s.pos < len(s.values)-1 {
		s.pos++
	}
	return v % n
}
