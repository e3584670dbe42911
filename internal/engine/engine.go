package engine

import (
	"errors"
	"fmt"
	"math/rand"
	"slices"
	"time"
)

var ErrPlacementDeadEnd = errors.New("placement dead end")
var ErrUnplaceableTeam = errors.New("team could not be placed")
var ErrInvalidExternalDraw = errors.New("invalid external draw")
var ErrIllegalPlacement = errors.New("illegal placement")
var ErrDrawPending = errors.New("a drawn team is still awaiting assignment")
var ErrDrawFinished = errors.New("draw already finished")
var ErrUnsupportedCommand = errors.New("unsupported command")

const (
	NumPots   = 4
	NumGroups = 12
	GroupSize = NumPots
	MaxUEFA   = 2
)

type Confederation string

const (
	UEFA     Confederation = "UEFA"
	CONMEBOL Confederation = "CONMEBOL"
	CONCACAF Confederation = "CONCACAF"
	CAF      Confederation = "CAF"
	AFC      Confederation = "AFC"
	OFC      Confederation = "OFC"
)

// Team is immutable once registered. Two teams are the same team iff their IDs match.
type Team struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Pot           int           `json:"pot"`
	Confederation Confederation `json:"confederation"`
	Flag          string        `json:"flag,omitempty"`
}

type Group struct {
	Name  string `json:"name"`
	Teams []Team `json:"teams"`
}

// Round is the number of pots this group has already received a team from.
func (g Group) Round() int { return len(g.Teams) }

// Placement is a drawn team together with the group it is headed for.
type Placement struct {
	Team       Team `json:"team"`
	GroupIndex int  `json:"group_index"`
}

type Rules struct {
	// Lookahead narrows every choice to placements that keep the draw completable.
	Lookahead bool `json:"lookahead"`
}

func DefaultRules() Rules { return Rules{Lookahead: true} }

// Session is the mutable state of one draw. It is not safe for concurrent use;
// the lobby owns it and serializes every call.
type Session struct {
	Groups    []Group
	PotIndex  int
	Remaining []Team
	Pending   *Placement
	Unplaced  []Team
	Rules     Rules

	registry *Registry
	rng      *rand.Rand
	guard    *guard
}

type Option func(*Session)

func WithRegistry(r *Registry) Option { return func(s *Session) { s.registry = r } }

func WithRand(rng *rand.Rand) Option { return func(s *Session) { s.rng = rng } }

func WithRules(r Rules) Option { return func(s *Session) { s.Rules = r } }

func newSession(opts []Option) *Session {
	s := &Session{
		Rules:    DefaultRules(),
		registry: &WorldCup2026,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	s.guard = newGuard(s.registry)
	return s
}

func (s *Session) Finished() bool { return s.PotIndex >= NumPots }

func (s *Session) Registry() *Registry { return s.registry }

// DrawNext selects the next team and its group without committing it. A nil
// placement with a nil error means the active pot was already empty and the
// pot index has been advanced instead.
func (s *Session) DrawNext() (*Placement, error) {
	if s.Finished() {
		return nil, ErrDrawFinished
	}
	if s.Pending != nil {
		return nil, ErrDrawPending
	}
	if len(s.Remaining) == 0 {
		s.advancePot()
		return nil, nil
	}

	p, err := selectStepwise(s)
	if err != nil {
		return nil, err
	}
	s.Pending = &p
	return &p, nil
}

// Commit assigns a drawn team to its group. The placement must match the
// pending one when there is one, and must be legal either way.
func (s *Session) Commit(p Placement) error {
	if s.Finished() {
		return ErrDrawFinished
	}
	if s.Pending != nil && (s.Pending.Team.ID != p.Team.ID || s.Pending.GroupIndex != p.GroupIndex) {
		return fmt.Errorf("%w: %s to group %d is not the drawn placement", ErrIllegalPlacement, p.Team.ID, p.GroupIndex)
	}

	idx := slices.IndexFunc(s.Remaining, func(t Team) bool { return t.ID == p.Team.ID })
	if idx < 0 {
		return fmt.Errorf("%w: %s is not in pot %d", ErrIllegalPlacement, p.Team.ID, s.PotIndex+1)
	}
	if p.GroupIndex < 0 || p.GroupIndex >= len(s.Groups) {
		return fmt.Errorf("%w: no group %d", ErrIllegalPlacement, p.GroupIndex)
	}
	g := s.Groups[p.GroupIndex]
	if g.Round() != s.PotIndex {
		return fmt.Errorf("%w: group %s is not awaiting pot %d", ErrIllegalPlacement, g.Name, s.PotIndex+1)
	}
	team := s.Remaining[idx]
	if !CanPlace(g, team) {
		return fmt.Errorf("%w: %s cannot join group %s", ErrIllegalPlacement, team.Name, g.Name)
	}

	s.Groups[p.GroupIndex].Teams = append(s.Groups[p.GroupIndex].Teams, team)
	s.Remaining = slices.Delete(s.Remaining, idx, idx+1)
	s.Pending = nil

	if len(s.Remaining) == 0 {
		s.advancePot()
	}
	return nil
}

// Discard drops the pending placement, if any. Nothing else changes.
func (s *Session) Discard() { s.Pending = nil }

func (s *Session) advancePot() {
	s.PotIndex++
	s.Remaining = nil
	if s.Finished() {
		return
	}
	s.Remaining = s.unplacedFromPot(s.PotIndex)
}

// unplacedFromPot lists the registry teams of pot index p not yet in any group.
func (s *Session) unplacedFromPot(p int) []Team {
	placed := s.placedIDs()
	out := make([]Team, 0, len(s.registry.Pots[p]))
	for _, t := range s.registry.Pots[p] {
		if !placed[t.ID] {
			out = append(out, t)
		}
	}
	return out
}

func (s *Session) placedIDs() map[string]bool {
	placed := make(map[string]bool, NumGroups*GroupSize)
	for _, g := range s.Groups {
		for _, t := range g.Teams {
			placed[t.ID] = true
		}
	}
	return placed
}

// needyGroups returns the indexes of groups waiting for a team from pot index p.
func needyGroups(groups []Group, p int) []int {
	var out []int
	for i, g := range groups {
		if g.Round() == p {
			out = append(out, i)
		}
	}
	return out
}

type CommandType string

const (
	CmdDrawNext     CommandType = "DrawNext"
	CmdCommit       CommandType = "Commit"
	CmdDiscard      CommandType = "Discard"
	CmdCompleteDraw CommandType = "CompleteDraw"
)

type Command struct {
	Type      CommandType
	Placement Placement // CmdCommit only
}

type EventType string

const (
	EvtTeamDrawn     EventType = "TeamDrawn"
	EvtTeamAssigned  EventType = "TeamAssigned"
	EvtDrawDiscarded EventType = "DrawDiscarded"
	EvtPotAdvanced   EventType = "PotAdvanced"
	EvtTeamUnplaced  EventType = "TeamUnplaced"
	EvtDrawCompleted EventType = "DrawCompleted"
)

type Event struct {
	Type       EventType
	Team       Team
	GroupIndex int
	Pot        int
}

// Apply runs one command against the session and reports what happened.
// On error the session is left exactly as it was.
func Apply(s *Session, cmd Command) ([]Event, error) {
	startPot := s.PotIndex

	switch cmd.Type {
	case CmdDrawNext:
		p, err := s.DrawNext()
		if err != nil {
			return nil, err
		}
		if p == nil {
			return potEvents(s, startPot), nil
		}
		return []Event{{Type: EvtTeamDrawn, Team: p.Team, GroupIndex: p.GroupIndex, Pot: s.PotIndex + 1}}, nil

	case CmdCommit:
		if err := s.Commit(cmd.Placement); err != nil {
			return nil, err
		}
		events := []Event{{Type: EvtTeamAssigned, Team: cmd.Placement.Team, GroupIndex: cmd.Placement.GroupIndex, Pot: startPot + 1}}
		return append(events, potEvents(s, startPot)...), nil

	case CmdDiscard:
		if s.Pending == nil {
			return nil, nil
		}
		p := *s.Pending
		s.Discard()
		return []Event{{Type: EvtDrawDiscarded, Team: p.Team, GroupIndex: p.GroupIndex, Pot: startPot + 1}}, nil

	case CmdCompleteDraw:
		if s.Finished() {
			return nil, nil
		}
		report, err := s.CompleteDraw()
		if err != nil {
			return nil, err
		}
		events := make([]Event, 0, len(report.Placements)+len(report.Unplaced)+1)
		for _, p := range report.Placements {
			events = append(events, Event{Type: EvtTeamAssigned, Team: p.Team, GroupIndex: p.GroupIndex, Pot: p.Team.Pot})
		}
		for _, t := range report.Unplaced {
			events = append(events, Event{Type: EvtTeamUnplaced, Team: t, GroupIndex: -1, Pot: t.Pot})
		}
		return append(events, Event{Type: EvtDrawCompleted}), nil

	default:
		return nil, ErrUnsupportedCommand
	}
}

func potEvents(s *Session, from int) []Event {
	var events []Event
	for p := from + 1; p <= s.PotIndex && p <= NumPots; p++ {
		if p == NumPots {
			events = append(events, Event{Type: EvtDrawCompleted})
			break
		}
		events = append(events, Event{Type: EvtPotAdvanced, Pot: p + 1})
	}
	return events
}
