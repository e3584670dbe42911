// Package simulate runs many independent draws and tallies how they end.
package simulate

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/DoyleJ11/worldcup-draw-backend/internal/engine"
	"golang.org/x/sync/errgroup"
)

type Mode string

const (
	ModeStepwise Mode = "stepwise"
	ModeBatch    Mode = "batch"
)

var ErrUnknownMode = errors.New("unknown simulation mode")

type Options struct {
	Runs      int
	Workers   int
	Mode      Mode
	Seed      int64
	Lookahead bool
	Registry  *engine.Registry // nil uses the 2026 pots
}

type Summary struct {
	Runs       int                          `json:"runs"`
	Valid      int                          `json:"valid"`
	DeadEnds   int                          `json:"dead_ends"`
	Unplaced   int                          `json:"unplaced_teams"`
	Violations map[engine.ViolationKind]int `json:"violations"`
	Elapsed    time.Duration                `json:"elapsed"`
}

func (s Summary) String() string {
	return fmt.Sprintf("%d runs: %d valid, %d dead ends, %d unplaced teams, violations %v (%s)",
		s.Runs, s.Valid, s.DeadEnds, s.Unplaced, s.Violations, s.Elapsed.Round(time.Millisecond))
}

type outcome struct {
	deadEnd    bool
	unplaced   int
	validation engine.ValidationResult
}

// Run plays opts.Runs draws on up to opts.Workers goroutines. Run i uses
// seed opts.Seed+i, so a summary is reproducible.
func Run(ctx context.Context, opts Options) (Summary, error) {
	if opts.Mode != ModeStepwise && opts.Mode != ModeBatch {
		return Summary{}, fmt.Errorf("%w: %q", ErrUnknownMode, opts.Mode)
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Registry == nil {
		opts.Registry = &engine.WorldCup2026
	}

	start := time.Now()
	sum := Summary{Violations: make(map[engine.ViolationKind]int)}
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for i := 0; i < opts.Runs; i++ {
		seed := opts.Seed + int64(i)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out, err := playOne(opts, seed)
			if err != nil {
				return err
			}

			mu.Lock()
			defer mu.Unlock()
			sum.Runs++
			if out.deadEnd {
				sum.DeadEnds++
			}
			sum.Unplaced += out.unplaced
			if out.validation.Valid && !out.deadEnd {
				sum.Valid++
			}
			for _, v := range out.validation.Violations {
				sum.Violations[v.Kind]++
			}
			return nil
		})
	}
	err := g.Wait()
	sum.Elapsed = time.Since(start)
	return sum, err
}

func playOne(opts Options, seed int64) (outcome, error) {
	s := engine.StartDraw(
		engine.WithRegistry(opts.Registry),
		engine.WithRand(rand.New(rand.NewSource(seed))),
		engine.WithRules(engine.Rules{Lookahead: opts.Lookahead}),
	)

	var out outcome
	switch opts.Mode {
	case ModeBatch:
		report, err := s.CompleteDraw()
		if err != nil {
			return out, err
		}
		out.unplaced = len(report.Unplaced)

	case ModeStepwise:
		for !s.Finished() {
			p, err := s.DrawNext()
			if errors.Is(err, engine.ErrPlacementDeadEnd) {
				out.deadEnd = true
				break
			}
			if err != nil {
				return out, err
			}
			if p == nil {
				continue
			}
			if err := s.Commit(*p); err != nil {
				return out, err
			}
		}
	}

	out.validation = engine.Validate(s.Groups)
	return out, nil
}
