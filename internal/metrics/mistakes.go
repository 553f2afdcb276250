package metrics

import "github.com/verte-zerg/typespeed/internal/model"

// Mistakes lists target positions where a typed token exists and differs.
func Mistakes(target, typed []string) []model.Mistake {
	out := []model.Mistake{}
	for idx, word := range target {
		if idx >= len(typed) {
			break
		}
		got := typed[idx]
		if got == "" || got == word {
			continue
		}
		out = append(out, model.Mistake{WordIndex: idx, Expected: word, Typed: got})
	}
	return out
}
