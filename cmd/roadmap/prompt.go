package main

import (
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/roadmap/roadmap/internal/types"
)

// promptDisambiguate shows an interactive select among candidates when the
// lenient Resolver can't pick a single claim, grounded on the teacher's
// create_form.go use of huh.NewSelect for terminal forms.
func promptDisambiguate(ref string, candidates []types.Candidate) (int64, error) {
	options := make([]huh.Option[int64], len(candidates))
	for i, c := range candidates {
		label := fmt.Sprintf("%s  (score %.2f)", c.Slug, c.Score)
		options[i] = huh.NewOption(label, c.ID)
	}

	var chosen int64
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int64]().
				Title(fmt.Sprintf("%q is ambiguous — which claim did you mean?", ref)).
				Options(options...).
				Value(&chosen),
		),
	)
	if err := form.Run(); err != nil {
		return 0, fmt.Errorf("disambiguation prompt: %w", err)
	}
	return chosen, nil
}
