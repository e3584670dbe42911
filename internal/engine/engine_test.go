package engine

import (
	"errors"
	"fmt"
	"math/rand"
	"slices"
	"testing"
)

func seeded(seed int64) Option { return WithRand(rand.New(rand.NewSource(seed))) }

func mk(id string, pot int, c Confederation) Team {
	return Team{ID: id, Name: id, Pot: pot, Confederation: c}
}

// checkInvariants asserts the rules that must hold after every mutation.
func checkInvariants(t *testing.T, groups []Group) {
	t.Helper()
	for _, g := range groups {
		if len(g.Teams) > GroupSize {
			t.Fatalf("group %s has %d teams", g.Name, len(g.Teams))
		}
		if n := uefaCount(g); n > MaxUEFA {
			t.Fatalf("group %s has %d UEFA teams", g.Name, n)
		}
		confeds := map[Confederation]bool{}
		pots := map[int]bool{}
		for _, m := range g.Teams {
			if m.Confederation != UEFA && confeds[m.Confederation] {
				t.Fatalf("group %s has two %s teams", g.Name, m.Confederation)
			}
			confeds[m.Confederation] = true
			if pots[m.Pot] {
				t.Fatalf("group %s has two teams from pot %d", g.Name, m.Pot)
			}
			pots[m.Pot] = true
		}
	}
}

func allIDs(groups []Group) []string {
	var ids []string
	for _, g := range groups {
		for _, t := range g.Teams {
			ids = append(ids, t.ID)
		}
	}
	slices.Sort(ids)
	return ids
}

func registryIDs(r *Registry) []string {
	var ids []string
	for _, t := range r.Teams() {
		ids = append(ids, t.ID)
	}
	slices.Sort(ids)
	return ids
}

// runStepwise draws and commits until the session finishes or dead-ends.
func runStepwise(t *testing.T, s *Session) error {
	t.Helper()
	for steps := 0; !s.Finished(); steps++ {
		if steps > 100 {
			t.Fatalf("draw did not finish")
		}
		p, err := s.DrawNext()
		if err != nil {
			return err
		}
		if p == nil {
			continue
		}
		if err := s.Commit(*p); err != nil {
			t.Fatalf("commit of drawn placement failed: %v", err)
		}
		checkInvariants(t, s.Groups)
	}
	return nil
}

func TestCanPlace(t *testing.T) {
	cases := []struct {
		name    string
		members []Team
		team    Team
		want    bool
	}{
		{
			name: "UEFA into empty group",
			team: mk("es", 1, UEFA),
			want: true,
		},
		{
			name:    "second UEFA allowed",
			members: []Team{mk("es", 1, UEFA)},
			team:    mk("hr", 2, UEFA),
			want:    true,
		},
		{
			name:    "third UEFA blocked",
			members: []Team{mk("es", 1, UEFA), mk("hr", 2, UEFA)},
			team:    mk("no", 3, UEFA),
			want:    false,
		},
		{
			name:    "different confederation allowed",
			members: []Team{mk("ar", 1, CONMEBOL)},
			team:    mk("jp", 2, AFC),
			want:    true,
		},
		{
			name:    "same non-UEFA confederation blocked",
			members: []Team{mk("ar", 1, CONMEBOL)},
			team:    mk("uy", 2, CONMEBOL),
			want:    false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := CanPlace(Group{Name: "A", Teams: tc.members}, tc.team)
			if got != tc.want {
				t.Fatalf("CanPlace: got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestStartDraw_SeatsHostsBeforePotOne(t *testing.T) {
	s := StartDraw(seeded(1))

	hosts := map[int]string{0: "Mexico (Host)-1", 1: "Canada (Host)-1", 3: "USA (Host)-1"}
	for i, g := range s.Groups {
		want, isHost := hosts[i]
		if !isHost {
			if len(g.Teams) != 0 {
				t.Fatalf("group %s: want empty, got %+v", g.Name, g.Teams)
			}
			continue
		}
		if len(g.Teams) != 1 || g.Teams[0].ID != want {
			t.Fatalf("group %s: want [%s], got %+v", g.Name, want, g.Teams)
		}
	}

	if s.PotIndex != 0 {
		t.Fatalf("want pot index 0, got %d", s.PotIndex)
	}
	if len(s.Remaining) != 9 {
		t.Fatalf("want 9 teams left in pot 1, got %d", len(s.Remaining))
	}
	for _, team := range s.Remaining {
		for _, id := range hosts {
			if team.ID == id {
				t.Fatalf("host %s still in the pot", id)
			}
		}
	}
}

func TestStepwise_FinishedDrawIsValid(t *testing.T) {
	for seed := int64(0); seed < 100; seed++ {
		s := StartDraw(seeded(seed))
		if err := runStepwise(t, s); err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}

		res := Validate(s.Groups)
		if !res.Valid {
			t.Fatalf("seed %d: violations %v", seed, res.Errors)
		}
		if !slices.Equal(allIDs(s.Groups), registryIDs(&WorldCup2026)) {
			t.Fatalf("seed %d: drawn teams differ from the registry", seed)
		}
	}
}

func TestStepwise_WithoutLookaheadKeepsInvariants(t *testing.T) {
	for seed := int64(0); seed < 100; seed++ {
		s := StartDraw(seeded(seed), WithRules(Rules{Lookahead: false}))
		err := runStepwise(t, s)
		if err != nil && !errors.Is(err, ErrPlacementDeadEnd) {
			t.Fatalf("seed %d: unexpected err %v", seed, err)
		}
		checkInvariants(t, s.Groups)
	}
}

func TestCompleteDraw_FromFreshSession(t *testing.T) {
	for seed := int64(0); seed < 100; seed++ {
		s := StartDraw(seeded(seed))
		report, err := s.CompleteDraw()
		if err != nil {
			t.Fatalf("seed %d: unexpected err %v", seed, err)
		}
		if report.Err() != nil {
			t.Fatalf("seed %d: %v", seed, report.Err())
		}
		if s.PotIndex != NumPots {
			t.Fatalf("seed %d: want pot index %d, got %d", seed, NumPots, s.PotIndex)
		}
		if len(s.Groups) != NumGroups {
			t.Fatalf("seed %d: want %d groups, got %d", seed, NumGroups, len(s.Groups))
		}
		for _, g := range s.Groups {
			if len(g.Teams) != GroupSize {
				t.Fatalf("seed %d: group %s has %d teams", seed, g.Name, len(g.Teams))
			}
		}
		checkInvariants(t, s.Groups)
		if res := Validate(s.Groups); !res.Valid {
			t.Fatalf("seed %d: violations %v", seed, res.Errors)
		}
		if !slices.Equal(allIDs(s.Groups), registryIDs(&WorldCup2026)) {
			t.Fatalf("seed %d: drawn teams differ from the registry", seed)
		}
	}
}

func TestCompleteDraw_WithoutLookaheadKeepsInvariants(t *testing.T) {
	for seed := int64(0); seed < 100; seed++ {
		s := StartDraw(seeded(seed), WithRules(Rules{Lookahead: false}))
		report, err := s.CompleteDraw()
		if err != nil {
			t.Fatalf("seed %d: unexpected err %v", seed, err)
		}
		if !s.Finished() {
			t.Fatalf("seed %d: want finished", seed)
		}
		checkInvariants(t, s.Groups)

		placed := len(allIDs(s.Groups))
		if placed+len(report.Unplaced) != len(WorldCup2026.Teams()) {
			t.Fatalf("seed %d: %d placed + %d unplaced != 48", seed, placed, len(report.Unplaced))
		}
		if len(report.Unplaced) > 0 && Validate(s.Groups).Valid {
			t.Fatalf("seed %d: unplaced teams must surface in validation", seed)
		}
	}
}

func TestCompleteDraw_Idempotent(t *testing.T) {
	s := StartDraw(seeded(7))
	if _, err := s.CompleteDraw(); err != nil {
		t.Fatalf("unexpected err %v", err)
	}
	before := s.State()

	report, err := s.CompleteDraw()
	if err != nil {
		t.Fatalf("unexpected err on second call %v", err)
	}
	if len(report.Placements) != 0 || len(report.Unplaced) != 0 {
		t.Fatalf("second call should not place anything, got %+v", report)
	}
	if s.PotIndex != before.PotIndex {
		t.Fatalf("pot index moved from %d to %d", before.PotIndex, s.PotIndex)
	}
	if !slices.Equal(allIDs(s.Groups), allIDs(before.Groups)) {
		t.Fatalf("groups changed on second call")
	}
}

func TestCompleteDraw_AfterStepwiseDraws(t *testing.T) {
	for seed := int64(0); seed < 30; seed++ {
		s := StartDraw(seeded(seed))
		for i := 0; i < 15; i++ {
			p, err := s.DrawNext()
			if err != nil {
				t.Fatalf("seed %d: %v", seed, err)
			}
			if p != nil {
				if err := s.Commit(*p); err != nil {
					t.Fatalf("seed %d: %v", seed, err)
				}
			}
		}

		if _, err := s.CompleteDraw(); err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}
		if res := Validate(s.Groups); !res.Valid {
			t.Fatalf("seed %d: violations %v", seed, res.Errors)
		}
	}
}

func TestCompleteDraw_RefusedWhilePending(t *testing.T) {
	s := StartDraw(seeded(3))
	if _, err := s.DrawNext(); err != nil {
		t.Fatalf("unexpected err %v", err)
	}
	if _, err := s.CompleteDraw(); !errors.Is(err, ErrDrawPending) {
		t.Fatalf("want ErrDrawPending, got %v", err)
	}
}

func TestDrawNext_EmptyPotAdvancesWithoutPlacement(t *testing.T) {
	s := StartDraw(seeded(1))
	s.Remaining = nil

	p, err := s.DrawNext()
	if err != nil {
		t.Fatalf("unexpected err %v", err)
	}
	if p != nil {
		t.Fatalf("want no placement, got %+v", p)
	}
	if s.PotIndex != 1 {
		t.Fatalf("want pot index 1, got %d", s.PotIndex)
	}
}

func TestDrawNext_RefusesWhilePending(t *testing.T) {
	s := StartDraw(seeded(2))
	first, err := s.DrawNext()
	if err != nil || first == nil {
		t.Fatalf("first draw: %+v, %v", first, err)
	}
	if _, err := s.DrawNext(); !errors.Is(err, ErrDrawPending) {
		t.Fatalf("want ErrDrawPending, got %v", err)
	}

	s.Discard()
	if s.Pending != nil {
		t.Fatalf("discard should clear the pending placement")
	}
	if n := len(allIDs(s.Groups)); n != 3 {
		t.Fatalf("discard must not place anything, %d teams seated", n)
	}
	if _, err := s.DrawNext(); err != nil {
		t.Fatalf("draw after discard: %v", err)
	}
}

func TestDrawNext_AfterFinish(t *testing.T) {
	s := StartDraw(seeded(4))
	if _, err := s.CompleteDraw(); err != nil {
		t.Fatalf("unexpected err %v", err)
	}
	if _, err := s.DrawNext(); !errors.Is(err, ErrDrawFinished) {
		t.Fatalf("want ErrDrawFinished, got %v", err)
	}
}

func TestCommit_RejectsIllegalPlacements(t *testing.T) {
	spain, _ := WorldCup2026.Team("Spain-1")
	croatia, _ := WorldCup2026.Team("Croatia-2")

	cases := []struct {
		name  string
		setup func(s *Session)
		p     Placement
	}{
		{
			name: "team from a later pot",
			p:    Placement{Team: croatia, GroupIndex: 2},
		},
		{
			name: "group already holding a pot 1 team",
			p:    Placement{Team: spain, GroupIndex: 0},
		},
		{
			name: "group out of range",
			p:    Placement{Team: spain, GroupIndex: 12},
		},
		{
			name: "differs from the drawn placement",
			setup: func(s *Session) {
				s.Pending = &Placement{Team: spain, GroupIndex: 2}
			},
			p: Placement{Team: spain, GroupIndex: 4},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := StartDraw(seeded(5))
			if tc.setup != nil {
				tc.setup(s)
			}
			before := allIDs(s.Groups)

			err := s.Commit(tc.p)
			if !errors.Is(err, ErrIllegalPlacement) {
				t.Fatalf("want ErrIllegalPlacement, got %v", err)
			}
			if !slices.Equal(allIDs(s.Groups), before) {
				t.Fatalf("rejected commit changed the groups")
			}
		})
	}
}

func TestCommit_LastTeamOfPotAdvances(t *testing.T) {
	s := StartDraw(seeded(6))
	for s.PotIndex == 0 {
		p, err := s.DrawNext()
		if err != nil {
			t.Fatalf("unexpected err %v", err)
		}
		if err := s.Commit(*p); err != nil {
			t.Fatalf("unexpected err %v", err)
		}
	}
	if s.PotIndex != 1 {
		t.Fatalf("want pot index 1, got %d", s.PotIndex)
	}
	if len(s.Remaining) != 12 {
		t.Fatalf("want pot 2 fully available, got %d", len(s.Remaining))
	}
	for _, team := range s.Remaining {
		if team.Pot != 2 {
			t.Fatalf("pot 2 pool holds %s from pot %d", team.ID, team.Pot)
		}
	}
}

// allSame builds a pot of twelve teams from one confederation.
func allSame(pot int, c Confederation) []Team {
	teams := make([]Team, NumGroups)
	for i := range teams {
		teams[i] = mk(string(c)+"-"+string(rune('a'+i))+"-"+string(rune('0'+pot)), pot, c)
	}
	return teams
}

func impossibleRegistry() *Registry {
	return &Registry{Pots: [NumPots][]Team{
		allSame(1, CONMEBOL),
		allSame(2, CONMEBOL),
		allSame(3, UEFA),
		allSame(4, UEFA),
	}}
}

func TestDrawNext_DeadEnd(t *testing.T) {
	for _, lookahead := range []bool{true, false} {
		s := StartDraw(WithRegistry(impossibleRegistry()), seeded(1), WithRules(Rules{Lookahead: lookahead}))

		var err error
		for i := 0; i < NumGroups+1 && err == nil; i++ {
			var p *Placement
			p, err = s.DrawNext()
			if err == nil && p != nil {
				if cerr := s.Commit(*p); cerr != nil {
					t.Fatalf("commit: %v", cerr)
				}
			}
		}

		if !errors.Is(err, ErrPlacementDeadEnd) {
			t.Fatalf("lookahead=%v: want ErrPlacementDeadEnd, got %v", lookahead, err)
		}
		if s.Pending != nil {
			t.Fatalf("lookahead=%v: dead end must not leave a pending placement", lookahead)
		}
		checkInvariants(t, s.Groups)
	}
}

func TestCompleteDraw_RecordsUnplaceableTeams(t *testing.T) {
	s := StartDraw(WithRegistry(impossibleRegistry()), seeded(1))
	report, err := s.CompleteDraw()
	if err != nil {
		t.Fatalf("unexpected err %v", err)
	}
	if !s.Finished() {
		t.Fatalf("batch mode must always finish")
	}
	if len(report.Placements) != NumGroups {
		t.Fatalf("want only pot 1 placed, got %d placements", len(report.Placements))
	}
	if len(report.Unplaced) != 3*NumGroups {
		t.Fatalf("want 36 unplaced teams, got %d", len(report.Unplaced))
	}
	if !errors.Is(report.Err(), ErrUnplaceableTeam) {
		t.Fatalf("want ErrUnplaceableTeam, got %v", report.Err())
	}
	checkInvariants(t, s.Groups)
	if Validate(s.Groups).Valid {
		t.Fatalf("short groups must fail validation")
	}
}

func TestValidate(t *testing.T) {
	valid := Group{Name: "A", Teams: []Team{
		mk("es", 1, UEFA), mk("jp", 2, AFC), mk("eg", 3, CAF), mk("it", 4, UEFA),
	}}

	cases := []struct {
		name  string
		group Group
		want  []ViolationKind
	}{
		{name: "valid", group: valid},
		{
			name: "no UEFA",
			group: Group{Name: "B", Teams: []Team{
				mk("ar", 1, CONMEBOL), mk("jp", 2, AFC), mk("eg", 3, CAF), mk("jm", 4, CONCACAF),
			}},
			want: []ViolationKind{NoUefaTeam},
		},
		{
			name: "three UEFA",
			group: Group{Name: "C", Teams: []Team{
				mk("es", 1, UEFA), mk("hr", 2, UEFA), mk("no", 3, UEFA), mk("nz", 4, OFC),
			}},
			want: []ViolationKind{TooManyUefaTeams},
		},
		{
			name: "duplicate CAF",
			group: Group{Name: "D", Teams: []Team{
				mk("es", 1, UEFA), mk("ma", 2, CAF), mk("eg", 3, CAF), mk("nz", 4, OFC),
			}},
			want: []ViolationKind{DuplicateConfederation},
		},
		{
			name: "short group without UEFA",
			group: Group{Name: "E", Teams: []Team{
				mk("ar", 1, CONMEBOL), mk("jp", 2, AFC),
			}},
			want: []ViolationKind{NoUefaTeam, IncompleteGroup},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := Validate([]Group{tc.group})
			var got []ViolationKind
			for _, v := range res.Violations {
				got = append(got, v.Kind)
			}
			if !slices.Equal(got, tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
			if res.Valid != (len(tc.want) == 0) {
				t.Fatalf("Valid=%v with violations %v", res.Valid, got)
			}
			if len(res.Errors) != len(tc.want) {
				t.Fatalf("want %d messages, got %v", len(tc.want), res.Errors)
			}
			if (res.Err() == nil) != res.Valid {
				t.Fatalf("Err() disagrees with Valid")
			}
		})
	}
}

func TestValidate_ReportsEveryGroup(t *testing.T) {
	bad := []Group{
		{Name: "A", Teams: []Team{mk("ar", 1, CONMEBOL), mk("jp", 2, AFC), mk("eg", 3, CAF), mk("jm", 4, CONCACAF)}},
		{Name: "B", Teams: []Team{mk("es", 1, UEFA), mk("hr", 2, UEFA), mk("no", 3, UEFA), mk("nz", 4, OFC)}},
	}
	res := Validate(bad)
	want := []string{
		"Group A: No UEFA team (requires at least 1)",
		"Group B: Too many UEFA teams (3, max is 2)",
	}
	if !slices.Equal(res.Errors, want) {
		t.Fatalf("got %q, want %q", res.Errors, want)
	}
}

func TestLoadExternalDraw(t *testing.T) {
	existing := StartDraw(seeded(9))
	before := existing.State()

	_, err := LoadExternalDraw(EmptyGroups()[:11])
	if !errors.Is(err, ErrInvalidExternalDraw) {
		t.Fatalf("11 groups: want ErrInvalidExternalDraw, got %v", err)
	}
	if existing.PotIndex != before.PotIndex || !slices.Equal(allIDs(existing.Groups), allIDs(before.Groups)) {
		t.Fatalf("rejected load touched an existing session")
	}

	tooMany := EmptyGroups()
	tooMany[2].Teams = WorldCup2026.Pots[1][:5]
	if _, err := LoadExternalDraw(tooMany); !errors.Is(err, ErrInvalidExternalDraw) {
		t.Fatalf("5 teams: want ErrInvalidExternalDraw, got %v", err)
	}

	done := StartDraw(seeded(9))
	if _, err := done.CompleteDraw(); err != nil {
		t.Fatalf("unexpected err %v", err)
	}
	loaded, err := LoadExternalDraw(done.Groups)
	if err != nil {
		t.Fatalf("unexpected err %v", err)
	}
	if !loaded.Finished() || loaded.PotIndex != NumPots {
		t.Fatalf("loaded draw must be finished, pot index %d", loaded.PotIndex)
	}
	if !slices.Equal(allIDs(loaded.Groups), allIDs(done.Groups)) {
		t.Fatalf("loaded groups differ")
	}
	if _, err := loaded.DrawNext(); !errors.Is(err, ErrDrawFinished) {
		t.Fatalf("want ErrDrawFinished on a loaded draw, got %v", err)
	}
}

func TestDecodeShareHash(t *testing.T) {
	s := StartDraw(seeded(11))
	if _, err := s.CompleteDraw(); err != nil {
		t.Fatalf("unexpected err %v", err)
	}
	hash, err := EncodeShareHash(s.Groups)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	groups, err := DecodeShareHash(hash)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !slices.Equal(allIDs(groups), allIDs(s.Groups)) {
		t.Fatalf("decoded groups differ")
	}

	if _, err := DecodeShareHash("%%%not-base64"); !errors.Is(err, ErrInvalidExternalDraw) {
		t.Fatalf("want ErrInvalidExternalDraw, got %v", err)
	}
}

func TestApply_Events(t *testing.T) {
	s := StartDraw(seeded(12))

	events, err := Apply(s, Command{Type: CmdDrawNext})
	if err != nil {
		t.Fatalf("unexpected err %v", err)
	}
	if !ContainsEvent(events, EvtTeamDrawn) {
		t.Fatalf("expected EvtTeamDrawn, got %+v", events)
	}

	events, err = Apply(s, Command{Type: CmdCommit, Placement: *s.Pending})
	if err != nil {
		t.Fatalf("unexpected err %v", err)
	}
	if !ContainsEvent(events, EvtTeamAssigned) {
		t.Fatalf("expected EvtTeamAssigned, got %+v", events)
	}

	events, err = Apply(s, Command{Type: CmdCompleteDraw})
	if err != nil {
		t.Fatalf("unexpected err %v", err)
	}
	if !ContainsEvent(events, EvtDrawCompleted) || ContainsEvent(events, EvtTeamUnplaced) {
		t.Fatalf("unexpected batch events %+v", events)
	}

	events, err = Apply(s, Command{Type: CmdCompleteDraw})
	if err != nil || len(events) != 0 {
		t.Fatalf("completing a finished draw: events %+v, err %v", events, err)
	}

	if _, err := Apply(s, Command{Type: "Shuffle"}); !errors.Is(err, ErrUnsupportedCommand) {
		t.Fatalf("want ErrUnsupportedCommand, got %v", err)
	}
}

func TestApply_LastCommitCompletesDraw(t *testing.T) {
	s := StartDraw(seeded(13))
	var last []Event
	for !s.Finished() {
		events, err := Apply(s, Command{Type: CmdDrawNext})
		if err != nil {
			t.Fatalf("unexpected err %v", err)
		}
		if s.Pending == nil {
			last = events
			continue
		}
		last, err = Apply(s, Command{Type: CmdCommit, Placement: *s.Pending})
		if err != nil {
			t.Fatalf("unexpected err %v", err)
		}
	}
	if !ContainsEvent(last, EvtDrawCompleted) {
		t.Fatalf("expected EvtDrawCompleted on the last commit, got %+v", last)
	}
}

// layout builds groups whose members are given by seats; every other group
// gets p+1 filler members so it is not waiting for pot index p.
func layout(p int, seats map[int][]Team) []Group {
	groups := EmptyGroups()
	for i := range groups {
		if members, ok := seats[i]; ok {
			groups[i].Teams = members
			continue
		}
		for k := 0; k <= p; k++ {
			groups[i].Teams = append(groups[i].Teams, mk(fmt.Sprintf("fill-%d-%d", i, k), k+1, OFC))
		}
	}
	return groups
}

// greedy returns a session on a hand-built board with the completability guard off.
func greedy(seed int64, p int, groups []Group, remaining []Team) *Session {
	s := newSession([]Option{seeded(seed), WithRules(Rules{Lookahead: false})})
	s.Groups, s.PotIndex, s.Remaining = groups, p, remaining
	return s
}

func TestSelectStepwise_FirstMostConstrainedGroup(t *testing.T) {
	tests := []struct {
		name      string
		session   func(seed int64) *Session
		wantGroup int
		wantTeams []string
	}{
		{
			name: "fresh draw ties every open group",
			session: func(seed int64) *Session {
				return StartDraw(seeded(seed), WithRules(Rules{Lookahead: false}))
			},
			wantGroup: 2, // A, B and D hold the hosts
			wantTeams: []string{"Spain-1", "Argentina-1", "France-1", "England-1", "Brazil-1",
				"Portugal-1", "Netherlands-1", "Belgium-1", "Germany-1"},
		},
		{
			name: "first of two tightest groups",
			session: func(seed int64) *Session {
				groups := layout(1, map[int][]Team{
					0: {mk("ar", 1, CONMEBOL)},
					1: {mk("es", 1, UEFA)},
					2: {mk("br", 1, CONMEBOL)},
				})
				return greedy(seed, 1, groups, []Team{mk("uy", 2, CONMEBOL), mk("hr", 2, UEFA), mk("ma", 2, CAF)})
			},
			wantGroup: 0,
			wantTeams: []string{"hr", "ma"},
		},
		{
			name: "later group when it alone is tightest",
			session: func(seed int64) *Session {
				groups := layout(1, map[int][]Team{
					0: {mk("es", 1, UEFA)},
					1: {mk("fr", 1, UEFA)},
					2: {mk("eg", 1, CAF)},
				})
				return greedy(seed, 1, groups, []Team{mk("ma", 2, CAF), mk("jp", 2, AFC), mk("hr", 2, UEFA)})
			},
			wantGroup: 2,
			wantTeams: []string{"jp", "hr"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for seed := int64(0); seed < 200; seed++ {
				p, err := selectStepwise(tt.session(seed))
				if err != nil {
					t.Fatalf("seed %d: %v", seed, err)
				}
				if p.GroupIndex != tt.wantGroup {
					t.Fatalf("seed %d: want group %d, got %d", seed, tt.wantGroup, p.GroupIndex)
				}
				if !slices.Contains(tt.wantTeams, p.Team.ID) {
					t.Fatalf("seed %d: team %s cannot be drawn for group %d", seed, p.Team.ID, p.GroupIndex)
				}
			}
		})
	}
}

func TestPickBatchGroup_RandomAmongTied(t *testing.T) {
	drawn := mk("ma", 2, CAF)
	other := mk("uy", 2, CONMEBOL)

	tests := []struct {
		name   string
		seats  map[int][]Team
		placed map[string]bool
		want   []int
	}{
		{
			name:  "two tightest groups",
			seats: map[int][]Team{0: {mk("ar", 1, CONMEBOL)}, 1: {mk("es", 1, UEFA)}, 2: {mk("br", 1, CONMEBOL)}},
			want:  []int{0, 2},
		},
		{
			name:  "single tightest group",
			seats: map[int][]Team{0: {mk("es", 1, UEFA)}, 1: {mk("ar", 1, CONMEBOL)}, 2: {mk("fr", 1, UEFA)}},
			want:  []int{1},
		},
		{
			name:   "placed teams do not count",
			seats:  map[int][]Team{0: {mk("es", 1, UEFA)}, 1: {mk("ar", 1, CONMEBOL)}, 2: {mk("fr", 1, UEFA)}},
			placed: map[string]bool{other.ID: true},
			want:   []int{0, 1, 2},
		},
		{
			name:  "groups refusing the team are skipped",
			seats: map[int][]Team{0: {mk("eg", 1, CAF)}, 1: {mk("es", 1, UEFA)}, 2: {mk("fr", 1, UEFA)}},
			want:  []int{1, 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			placed := tt.placed
			if placed == nil {
				placed = map[string]bool{}
			}
			seen := map[int]bool{}
			for seed := int64(0); seed < 200; seed++ {
				s := greedy(seed, 1, layout(1, tt.seats), nil)
				gi, ok := s.pickBatchGroup(drawn, []Team{drawn, other}, placed, 1)
				if !ok {
					t.Fatalf("seed %d: no group found", seed)
				}
				if !slices.Contains(tt.want, gi) {
					t.Fatalf("seed %d: group %d is not among the tightest %v", seed, gi, tt.want)
				}
				seen[gi] = true
			}
			for _, gi := range tt.want {
				if !seen[gi] {
					t.Fatalf("tied group %d never chosen over 200 seeds", gi)
				}
			}
		})
	}
}

// uefaLeads reports whether every UEFA team comes before every other team.
func uefaLeads(order []Team) bool {
	rest := false
	for _, t := range order {
		if t.Confederation != UEFA {
			rest = true
		} else if rest {
			return false
		}
	}
	return true
}

func TestBatchOrder_UEFAFirstOnlyWhenItFillsCapacity(t *testing.T) {
	tests := []struct {
		name      string
		p         int
		session   func(seed int64) *Session
		pool      func(s *Session) []Team
		uefaFirst bool
	}{
		{
			name:    "seven UEFA for nine open groups",
			p:       0,
			session: func(seed int64) *Session { return StartDraw(seeded(seed), WithRules(Rules{Lookahead: false})) },
			pool:    func(s *Session) []Team { return s.unplacedFromPot(0) },
		},
		{
			name: "three UEFA for three open groups",
			p:    1,
			session: func(seed int64) *Session {
				return greedy(seed, 1, layout(1, map[int][]Team{
					0: {mk("ar", 1, CONMEBOL)}, 1: {mk("eg", 1, CAF)}, 2: {mk("jp", 1, AFC)},
				}), nil)
			},
			pool: func(*Session) []Team {
				return []Team{mk("pa", 2, CONCACAF), mk("hr", 2, UEFA), mk("nz", 2, OFC), mk("ch", 2, UEFA), mk("at", 2, UEFA)}
			},
			uefaFirst: true,
		},
		{
			name: "groups with two UEFA teams leave capacity",
			p:    2,
			session: func(seed int64) *Session {
				return greedy(seed, 2, layout(2, map[int][]Team{
					0: {mk("es", 1, UEFA), mk("hr", 2, UEFA)},
					1: {mk("fr", 1, UEFA), mk("at", 2, UEFA)},
					2: {mk("ar", 1, CONMEBOL), mk("jp", 2, AFC)},
				}), nil)
			},
			pool: func(*Session) []Team {
				return []Team{mk("eg", 3, CAF), mk("py", 3, CONMEBOL), mk("no", 3, UEFA)}
			},
			uefaFirst: true,
		},
		{
			name: "one UEFA for two open groups",
			p:    2,
			session: func(seed int64) *Session {
				return greedy(seed, 2, layout(2, map[int][]Team{
					0: {mk("es", 1, UEFA), mk("ma", 2, CAF)},
					1: {mk("fr", 1, UEFA), mk("at", 2, UEFA)},
					2: {mk("ar", 1, CONMEBOL), mk("jp", 2, AFC)},
				}), nil)
			},
			pool: func(*Session) []Team {
				return []Team{mk("eg", 3, CAF), mk("py", 3, CONMEBOL), mk("no", 3, UEFA)}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mixed := false
			for seed := int64(0); seed < 100; seed++ {
				s := tt.session(seed)
				pool := tt.pool(s)
				order := s.batchOrder(slices.Clone(pool), tt.p)

				if got, want := sortedIDs(order), sortedIDs(pool); !slices.Equal(got, want) {
					t.Fatalf("seed %d: order is not a permutation of the pot: %v vs %v", seed, got, want)
				}
				if tt.uefaFirst && !uefaLeads(order) {
					t.Fatalf("seed %d: UEFA teams must lead, got %v", seed, teamIDs(order))
				}
				if !uefaLeads(order) {
					mixed = true
				}
			}
			if !tt.uefaFirst && !mixed {
				t.Fatalf("want a plain shuffle, but UEFA led on every seed")
			}
		})
	}
}

func teamIDs(teams []Team) []string {
	ids := make([]string, 0, len(teams))
	for _, t := range teams {
		ids = append(ids, t.ID)
	}
	return ids
}

func sortedIDs(teams []Team) []string {
	ids := teamIDs(teams)
	slices.Sort(ids)
	return ids
}
