package escalation

import "github.com/viewguard/viewguard/internal/category"

// DefaultPatterns returns the built-in escalation patterns. Callers may
// extend or replace them through configuration.
func DefaultPatterns() []Pattern {
	return []Pattern{
		{
			Name:     "suicide_buildup",
			Category: category.Suicide,
			Phases: [][]string{
				{"can't take this", "can't go on", "no point anymore", "tired of everything"},
				{"one way out", "end it all", "better off without me", "no other choice"},
				{"goodbye", "this is the end", "forgive me", "remember me"},
			},
			MinimumPhases:  3,
			WindowSeconds:  180,
			BaseConfidence: 90,
		},
		{
			Name:     "violence_buildup",
			Category: category.Violence,
			Phases: [][]string{
				{"you'll regret", "i'll make you pay", "last warning"},
				{"get the gun", "grab the knife", "load it"},
				{"i'll kill you", "going to kill", "end you"},
			},
			MinimumPhases:  2,
			WindowSeconds:  90,
			BaseConfidence: 80,
		},
		{
			Name:     "panic_buildup",
			Category: category.Claustrophobia,
			Phases: [][]string{
				{"can't breathe", "no air"},
				{"heart is racing", "heart pounding"},
				{"walls closing in", "trapped in here", "let me out"},
			},
			MinimumPhases:  2,
			WindowSeconds:  60,
			BaseConfidence: 70,
		},
	}
}
