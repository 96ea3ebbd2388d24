package attention

import "github.com/viewguard/viewguard/internal/category"

// baseWeights seeds each category's learned weights before any feedback
// arrives: visually grounded categories start visual-heavy, linguistic ones
// text-heavy. Categories absent from the table start at an equal split.
var baseWeights = map[category.Category]map[category.Modality]float64{
	category.Blood:           {category.ModalityVisual: 0.70, category.ModalityAudio: 0.15, category.ModalityText: 0.15},
	category.Gore:            {category.ModalityVisual: 0.70, category.ModalityAudio: 0.15, category.ModalityText: 0.15},
	category.GraphicViolence: {category.ModalityVisual: 0.65, category.ModalityAudio: 0.20, category.ModalityText: 0.15},
	category.Nudity:          {category.ModalityVisual: 0.75, category.ModalityAudio: 0.05, category.ModalityText: 0.20},
	category.FlashingLights:  {category.ModalityVisual: 0.85, category.ModalityAudio: 0.05, category.ModalityText: 0.10},
	category.Needles:         {category.ModalityVisual: 0.70, category.ModalityAudio: 0.10, category.ModalityText: 0.20},
	category.Vomit:           {category.ModalityVisual: 0.60, category.ModalityAudio: 0.25, category.ModalityText: 0.15},
	category.Spiders:         {category.ModalityVisual: 0.80, category.ModalityAudio: 0.05, category.ModalityText: 0.15},
	category.Snakes:          {category.ModalityVisual: 0.80, category.ModalityAudio: 0.05, category.ModalityText: 0.15},

	category.LoudNoises: {category.ModalityAudio: 0.75, category.ModalityVisual: 0.10, category.ModalityText: 0.15},
	category.Screaming:  {category.ModalityAudio: 0.70, category.ModalityVisual: 0.15, category.ModalityText: 0.15},
	category.Gunshots:   {category.ModalityAudio: 0.60, category.ModalityVisual: 0.30, category.ModalityText: 0.10},
	category.Explosions: {category.ModalityAudio: 0.55, category.ModalityVisual: 0.35, category.ModalityText: 0.10},
	category.JumpScare:  {category.ModalityAudio: 0.55, category.ModalityVisual: 0.35, category.ModalityText: 0.10},

	category.Suicide:        {category.ModalityText: 0.80, category.ModalityAudio: 0.10, category.ModalityVisual: 0.10},
	category.SelfHarm:       {category.ModalityText: 0.65, category.ModalityAudio: 0.10, category.ModalityVisual: 0.25},
	category.HateSpeech:     {category.ModalityText: 0.80, category.ModalityAudio: 0.15, category.ModalityVisual: 0.05},
	category.Slurs:          {category.ModalityText: 0.85, category.ModalityAudio: 0.10, category.ModalityVisual: 0.05},
	category.EatingDisorder: {category.ModalityText: 0.70, category.ModalityAudio: 0.10, category.ModalityVisual: 0.20},
	category.BodyShaming:    {category.ModalityText: 0.80, category.ModalityAudio: 0.15, category.ModalityVisual: 0.05},
}

// BaseWeights returns a copy of the seed weights for cat, or an equal split
// when the category has no entry (including unknown categories).
func BaseWeights(cat category.Category) map[category.Modality]float64 {
	out := make(map[category.Modality]float64, 3)
	if base, ok := baseWeights[cat]; ok {
		for m, w := range base {
			out[m] = w
		}
		return out
	}
	for _, m := range category.Modalities() {
		out[m] = 1.0 / 3.0
	}
	return out
}
