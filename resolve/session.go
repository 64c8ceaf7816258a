package resolve

// Session carries an operator's selections from one run to the next.
type Session struct {
	loadGroup string
}

// SelectLoadGroup records an explicit choice.
func (s *Session) SelectLoadGroup(g string) {
	s.loadGroup = g
}

// LoadGroup returns the remembered load group if it is still among the
// discovered ones, otherwise the first discovered value, which then becomes the
// remembered one. It returns "" if nothing was discovered.
func (s *Session) LoadGroup(discovered []string) string {
	for _, g := range discovered {
		if g == s.loadGroup && g != "" {
			return g
		}
	}
	if len(discovered) == 0 {
		return ""
	}
	s.loadGroup = discovered[0]
	return s.loadGroup
}
