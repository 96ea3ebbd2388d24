package bayes

import "github.com/viewguard/viewguard/internal/category"

// LikelihoodRatio captures how strongly a modality's report moves the odds
// for a category: True is the ratio applied when the modality reports
// presence at full confidence, False when it reports absence.
type LikelihoodRatio struct {
	True  float64 `yaml:"true"`
	False float64 `yaml:"false"`
}

// Tables is the calibration data driving the calculator. It is configuration,
// not law: callers may override any part of it.
type Tables struct {
	// Priors are per-category base rates. Categories absent from the map use
	// DefaultPrior; unknown categories fall back to the neutral 0.5.
	Priors       map[category.Category]float64
	DefaultPrior float64

	// Ratios overrides likelihood ratios per category and modality;
	// DefaultRatios covers everything else.
	Ratios        map[category.Category]map[category.Modality]LikelihoodRatio
	DefaultRatios map[category.Modality]LikelihoodRatio

	// Vetoes lists, per category and modality, the evidence states that
	// specifically contradict the category (e.g. a cartoon frame arguing
	// against real gore).
	Vetoes map[category.Category]map[category.Modality][]string

	// VetoStrength is the log-odds discount applied per unit of veto
	// confidence.
	VetoStrength float64
}

// DefaultTables returns the built-in calibration data.
func DefaultTables() Tables {
	return Tables{
		Priors: map[category.Category]float64{
			category.Violence:        0.15,
			category.GraphicViolence: 0.06,
			category.Blood:           0.12,
			category.Gore:            0.08,
			category.Death:           0.10,
			category.Murder:          0.07,
			category.Suicide:         0.03,
			category.SelfHarm:        0.03,
			category.SexualContent:   0.10,
			category.Nudity:          0.08,
			category.SexualAssault:   0.02,
			category.FlashingLights:  0.05,
			category.LoudNoises:      0.20,
			category.JumpScare:       0.08,
			category.Gunshots:        0.10,
			category.Explosions:      0.08,
			category.HateSpeech:      0.04,
			category.DrugUse:         0.07,
		},
		DefaultPrior: 0.10,
		Ratios: map[category.Category]map[category.Modality]LikelihoodRatio{
			// Gore and blood are visually grounded: a visual report is worth
			// more than a textual mention.
			category.Gore: {
				category.ModalityVisual: {True: 9, False: 0.15},
				category.ModalityAudio:  {True: 6, False: 0.4},
				category.ModalityText:   {True: 5, False: 0.5},
			},
			category.Blood: {
				category.ModalityVisual: {True: 9, False: 0.15},
				category.ModalityAudio:  {True: 4, False: 0.5},
				category.ModalityText:   {True: 5, False: 0.5},
			},
			// Suicide and hate speech are linguistically grounded.
			category.Suicide: {
				category.ModalityText:   {True: 10, False: 0.3},
				category.ModalityAudio:  {True: 5, False: 0.5},
				category.ModalityVisual: {True: 3, False: 0.6},
			},
			category.HateSpeech: {
				category.ModalityText:   {True: 12, False: 0.25},
				category.ModalityAudio:  {True: 6, False: 0.5},
				category.ModalityVisual: {True: 2, False: 0.8},
			},
			// Photosensitivity hazards are visually measured.
			category.FlashingLights: {
				category.ModalityVisual: {True: 14, False: 0.1},
				category.ModalityAudio:  {True: 2, False: 0.8},
				category.ModalityText:   {True: 2, False: 0.8},
			},
		},
		DefaultRatios: map[category.Modality]LikelihoodRatio{
			category.ModalityText:   {True: 5, False: 0.4},
			category.ModalityAudio:  {True: 6, False: 0.4},
			category.ModalityVisual: {True: 7, False: 0.3},
		},
		Vetoes: map[category.Category]map[category.Modality][]string{
			category.Gore: {
				category.ModalityVisual: {StateCartoon, StateAnimated},
			},
			category.Blood: {
				category.ModalityVisual: {StateCartoon, StateAnimated},
			},
			category.GraphicViolence: {
				category.ModalityVisual: {StateCartoon, StateAnimated},
			},
			category.Screaming: {
				category.ModalityAudio: {StateMusic},
			},
			category.Gunshots: {
				category.ModalityAudio: {StateMusic, StateFireworks},
			},
		},
		VetoStrength: 4.0,
	}
}
