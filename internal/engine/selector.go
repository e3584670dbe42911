package engine

import (
	"fmt"
	"slices"

	"go.uber.org/multierr"
)

// selectStepwise picks the most constrained group waiting for the active pot
// (first one found on ties) and a random team that may join it.
func selectStepwise(s *Session) (Placement, error) {
	needy := needyGroups(s.Groups, s.PotIndex)
	if len(needy) == 0 {
		return Placement{}, fmt.Errorf("%w: no group awaits pot %d but %d teams remain",
			ErrPlacementDeadEnd, s.PotIndex+1, len(s.Remaining))
	}

	best := -1
	var bestValid []Team
	for _, gi := range needy {
		valid := validTeams(s.Groups[gi], s.Remaining)
		if best < 0 || len(valid) < len(bestValid) {
			best, bestValid = gi, valid
		}
	}

	candidates := bestValid
	if s.Rules.Lookahead && len(candidates) > 0 {
		placed := s.placedIDs()
		if s.guard.completable(s.registry, s.Groups, placed, s.PotIndex) {
			candidates = slices.DeleteFunc(slices.Clone(candidates), func(t Team) bool {
				return !s.guard.admits(s.registry, s.Groups, placed, s.PotIndex, best, t)
			})
		}
	}
	if len(candidates) == 0 {
		return Placement{}, fmt.Errorf("%w: no team in pot %d can join group %s",
			ErrPlacementDeadEnd, s.PotIndex+1, s.Groups[best].Name)
	}

	t := candidates[s.rng.Intn(len(candidates))]
	return Placement{Team: t, GroupIndex: best}, nil
}

// BatchReport lists what CompleteDraw did, in placement order.
type BatchReport struct {
	Placements []Placement
	Unplaced   []Team
}

// Err is nil when every team found a group.
func (r BatchReport) Err() error {
	var err error
	for _, t := range r.Unplaced {
		err = multierr.Append(err, fmt.Errorf("%w: %s (pot %d)", ErrUnplaceableTeam, t.Name, t.Pot))
	}
	return err
}

// CompleteDraw seats every remaining team without pausing between
// placements. It always ends in the finished state; teams that fit nowhere
// are reported and left out, so callers must check the report or Validate.
func (s *Session) CompleteDraw() (BatchReport, error) {
	var report BatchReport
	if s.Finished() {
		return report, nil
	}
	if s.Pending != nil {
		return report, ErrDrawPending
	}

	for p := s.PotIndex; p < NumPots; p++ {
		s.PotIndex = p
		placed := s.placedIDs()
		order := s.batchOrder(s.unplacedFromPot(p), p)

		for _, t := range order {
			gi, ok := s.pickBatchGroup(t, order, placed, p)
			if !ok {
				report.Unplaced = append(report.Unplaced, t)
				s.Unplaced = append(s.Unplaced, t)
				continue
			}
			s.Groups[gi].Teams = append(s.Groups[gi].Teams, t)
			placed[t.ID] = true
			report.Placements = append(report.Placements, Placement{Team: t, GroupIndex: gi})
		}
	}

	s.PotIndex = NumPots
	s.Remaining = nil
	return report, nil
}

// batchOrder shuffles a pot. When UEFA teams are at least as many as the
// groups that can still take one, they go first.
func (s *Session) batchOrder(pool []Team, p int) []Team {
	var uefa, other []Team
	for _, t := range pool {
		if t.Confederation == UEFA {
			uefa = append(uefa, t)
		} else {
			other = append(other, t)
		}
	}

	capacity := 0
	for _, gi := range needyGroups(s.Groups, p) {
		if uefaCount(s.Groups[gi]) < MaxUEFA {
			capacity++
		}
	}

	if len(uefa) >= capacity {
		s.shuffle(uefa)
		s.shuffle(other)
		return append(uefa, other...)
	}
	order := slices.Clone(pool)
	s.shuffle(order)
	return order
}

func (s *Session) shuffle(teams []Team) {
	s.rng.Shuffle(len(teams), func(i, j int) { teams[i], teams[j] = teams[j], teams[i] })
}

// pickBatchGroup returns a random group among those that accept t and have
// the fewest still-unplaced teams of this round able to join them.
func (s *Session) pickBatchGroup(t Team, order []Team, placed map[string]bool, p int) (int, bool) {
	lookahead := s.Rules.Lookahead && s.guard.completable(s.registry, s.Groups, placed, p)

	var tied []int
	minLevel := -1
	for _, gi := range needyGroups(s.Groups, p) {
		g := s.Groups[gi]
		if !CanPlace(g, t) {
			continue
		}
		if lookahead && !s.guard.admits(s.registry, s.Groups, placed, p, gi, t) {
			continue
		}

		level := 0
		for _, o := range order {
			if !placed[o.ID] && CanPlace(g, o) {
				level++
			}
		}
		switch {
		case minLevel < 0 || level < minLevel:
			minLevel = level
			tied = []int{gi}
		case level == minLevel:
			tied = append(tied, gi)
		}
	}

	if len(tied) == 0 {
		return -1, false
	}
	return tied[s.rng.Intn(len(tied))], true
}
