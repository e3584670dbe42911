package engine

// StartDraw builds a fresh session with the hosts already seated and pot 1 open.
func StartDraw(opts ...Option) *Session {
	s := newSession(opts)
	s.Groups = EmptyGroups()
	for _, h := range s.registry.Hosts {
		t, ok := s.registry.Team(h.TeamID)
		if !ok || h.GroupIndex < 0 || h.GroupIndex >= NumGroups {
			continue
		}
		s.Groups[h.GroupIndex].Teams = append(s.Groups[h.GroupIndex].Teams, t)
	}
	s.PotIndex = 0
	s.Remaining = s.unplacedFromPot(0)
	return s
}

func EmptyGroups() []Group {
	groups := make([]Group, NumGroups)
	for i := range groups {
		groups[i] = Group{Name: GroupNames[i], Teams: []Team{}}
	}
	return groups
}

// State is a point-in-time copy of a session, safe to hand to other goroutines.
type State struct {
	Groups    []Group    `json:"groups"`
	PotIndex  int        `json:"pot_index"`
	Remaining []Team     `json:"remaining"`
	Pending   *Placement `json:"pending,omitempty"`
	Unplaced  []Team     `json:"unplaced,omitempty"`
	Finished  bool       `json:"finished"`
	Rules     Rules      `json:"rules"`
}

func (s *Session) State() State {
	st := State{
		Groups:    CloneGroups(s.Groups),
		PotIndex:  s.PotIndex,
		Remaining: append([]Team{}, s.Remaining...),
		Unplaced:  append([]Team(nil), s.Unplaced...),
		Finished:  s.Finished(),
		Rules:     s.Rules,
	}
	if s.Pending != nil {
		p := *s.Pending
		st.Pending = &p
	}
	return st
}

func CloneGroups(groups []Group) []Group {
	out := make([]Group, len(groups))
	for i, g := range groups {
		out[i] = Group{Name: g.Name, Teams: append([]Team{}, g.Teams...)}
	}
	return out
}

func ContainsEvent(events []Event, eventType EventType) bool {
	for _, event := range events {
		if event.Type == eventType {
			return true
		}
	}
	return false
}
