package engine

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
)

type ViolationKind string

const (
	NoUefaTeam             ViolationKind = "NoUefaTeam"
	TooManyUefaTeams       ViolationKind = "TooManyUefaTeams"
	DuplicateConfederation ViolationKind = "DuplicateConfederation"
	IncompleteGroup        ViolationKind = "IncompleteGroup"
)

type Violation struct {
	Group   string        `json:"group"`
	Kind    ViolationKind `json:"kind"`
	Message string        `json:"message"`
}

type ValidationResult struct {
	Valid      bool        `json:"valid"`
	Errors     []string    `json:"errors"`
	Violations []Violation `json:"violations,omitempty"`
}

// Err combines every violation into one error, or returns nil for a valid draw.
func (r ValidationResult) Err() error {
	var err error
	for _, v := range r.Violations {
		err = multierr.Append(err, errors.New(v.Message))
	}
	return err
}

// Validate checks a finished draw group by group and reports every problem found.
func Validate(groups []Group) ValidationResult {
	var violations []Violation
	add := func(g Group, kind ViolationKind, format string, args ...any) {
		violations = append(violations, Violation{
			Group:   g.Name,
			Kind:    kind,
			Message: fmt.Sprintf("Group %s: ", g.Name) + fmt.Sprintf(format, args...),
		})
	}

	for _, g := range groups {
		uefa := uefaCount(g)
		if uefa < 1 {
			add(g, NoUefaTeam, "No UEFA team (requires at least 1)")
		}
		if uefa > MaxUEFA {
			add(g, TooManyUefaTeams, "Too many UEFA teams (%d, max is %d)", uefa, MaxUEFA)
		}

		seen := make(map[Confederation]bool, len(g.Teams))
		for _, t := range g.Teams {
			if t.Confederation == UEFA {
				continue
			}
			if seen[t.Confederation] {
				add(g, DuplicateConfederation, "Duplicate non-UEFA confederation (%s)", t.Confederation)
				break
			}
			seen[t.Confederation] = true
		}

		if len(g.Teams) != GroupSize {
			add(g, IncompleteGroup, "Incomplete (%d of %d teams)", len(g.Teams), GroupSize)
		}
	}

	res := ValidationResult{Valid: len(violations) == 0, Errors: []string{}, Violations: violations}
	for _, v := range violations {
		res.Errors = append(res.Errors, v.Message)
	}
	return res
}
