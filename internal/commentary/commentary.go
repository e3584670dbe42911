// Package commentary asks a language model to talk about a finished draw.
package commentary

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/DoyleJ11/worldcup-draw-backend/internal/engine"
	"go.uber.org/zap"
)

// Fallback is shown whenever no commentary could be produced.
const Fallback = "Analysis is not available right now."

var (
	ErrNoAPIKey    = errors.New("commentary: no api key configured")
	ErrEmptyAnswer = errors.New("commentary: empty answer")
	ErrUpstream    = errors.New("commentary: upstream error")
)

type Summarizer interface {
	Summarize(ctx context.Context, groups []engine.Group) (string, error)
}

// Describe never fails: errors are logged and replaced by Fallback.
func Describe(ctx context.Context, s Summarizer, groups []engine.Group, log *zap.Logger) string {
	if log == nil {
		log = zap.NewNop()
	}
	if s == nil {
		return Fallback
	}
	text, err := s.Summarize(ctx, groups)
	if err == nil && strings.TrimSpace(text) == "" {
		err = ErrEmptyAnswer
	}
	if err != nil {
		if errors.Is(err, ErrNoAPIKey) {
			log.Info("commentary: disabled", zap.Error(err))
		} else {
			log.Warn("commentary: falling back", zap.Int("groups", len(groups)), zap.Error(err))
		}
		return Fallback
	}
	return text
}

// Prompt builds a preview for a single group, or the full-draw analysis
// (group of death, easiest group, dark horse) for anything else.
func Prompt(groups []engine.Group) string {
	var b strings.Builder
	if len(groups) == 1 {
		g := groups[0]
		fmt.Fprintf(&b, "FIFA World Cup 2026, Group %s: %s.\n", g.Name, teamList(g))
		b.WriteString("Write a short, energetic preview of this group: who should go through, ")
		b.WriteString("the match to watch, and one player to follow. Keep it under 120 words.")
		return b.String()
	}

	b.WriteString("The FIFA World Cup 2026 draw is complete. These are the groups:\n")
	for _, g := range groups {
		fmt.Fprintf(&b, "Group %s: %s\n", g.Name, teamList(g))
	}
	b.WriteString("\nAnalyse the draw:\n")
	b.WriteString("1. The group of death\n")
	b.WriteString("2. The easiest group\n")
	b.WriteString("3. A dark horse that could cause an upset\n")
	b.WriteString("\nAnswer as a concise markdown list, with the energy of a football fan.")
	return b.String()
}

func teamList(g engine.Group) string {
	names := make([]string, 0, len(g.Teams))
	for _, t := range g.Teams {
		names = append(names, t.Name)
	}
	return strings.Join(names, ", ")
}
