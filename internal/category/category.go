// Package category defines the closed set of content categories the engine
// reasons about, the evidence modalities, and the detector sources that feed
// them. Everything downstream keys off these enumerations; a value outside
// them is rejected at the boundary instead of silently defaulting.
package category

// Category is one content-warning category.
type Category string

const (
	Violence        Category = "violence"
	GraphicViolence Category = "graphic_violence"
	Blood           Category = "blood"
	Gore            Category = "gore"
	Death           Category = "death"
	Murder          Category = "murder"
	Suicide         Category = "suicide"
	SelfHarm        Category = "self_harm"
	SexualContent   Category = "sexual_content"
	Nudity          Category = "nudity"
	SexualAssault   Category = "sexual_assault"
	DomesticAbuse   Category = "domestic_abuse"
	ChildAbuse      Category = "child_abuse"
	AnimalAbuse     Category = "animal_abuse"
	AnimalDeath     Category = "animal_death"
	DrugUse         Category = "drug_use"
	AlcoholAbuse    Category = "alcohol_abuse"
	Smoking         Category = "smoking"
	Needles         Category = "needles"
	Vomit           Category = "vomit"
	MedicalProc     Category = "medical_procedures"
	FlashingLights  Category = "flashing_lights"
	LoudNoises      Category = "loud_noises"
	JumpScare       Category = "jump_scare"
	Screaming       Category = "screaming"
	Gunshots        Category = "gunshots"
	Explosions      Category = "explosions"
	CarCrash        Category = "car_crash"
	Drowning        Category = "drowning"
	Choking         Category = "choking"
	Torture         Category = "torture"
	Kidnapping      Category = "kidnapping"
	HateSpeech      Category = "hate_speech"
	Slurs           Category = "slurs"
	EatingDisorder  Category = "eating_disorder"
	BodyShaming     Category = "body_shaming"
	PregnancyLoss   Category = "pregnancy_loss"
	Spiders         Category = "spiders"
	Snakes          Category = "snakes"
	Claustrophobia  Category = "claustrophobia"
)

// All lists every known category in a stable order.
func All() []Category {
	return []Category{
		Violence, GraphicViolence, Blood, Gore, Death, Murder,
		Suicide, SelfHarm, SexualContent, Nudity, SexualAssault,
		DomesticAbuse, ChildAbuse, AnimalAbuse, AnimalDeath,
		DrugUse, AlcoholAbuse, Smoking, Needles, Vomit, MedicalProc,
		FlashingLights, LoudNoises, JumpScare, Screaming, Gunshots,
		Explosions, CarCrash, Drowning, Choking, Torture, Kidnapping,
		HateSpeech, Slurs, EatingDisorder, BodyShaming, PregnancyLoss,
		Spiders, Snakes, Claustrophobia,
	}
}

var known = func() map[Category]struct{} {
	m := make(map[Category]struct{}, len(All()))
	for _, c := range All() {
		m[c] = struct{}{}
	}
	return m
}()

// Known reports whether c is part of the closed category set.
func Known(c Category) bool {
	_, ok := known[c]
	return ok
}

// Modality is an independent evidence channel.
type Modality string

const (
	ModalityText   Modality = "text"
	ModalityAudio  Modality = "audio"
	ModalityVisual Modality = "visual"
)

// Modalities lists the evidence channels in a stable order.
func Modalities() []Modality {
	return []Modality{ModalityText, ModalityAudio, ModalityVisual}
}

// Source identifies the detector that produced a detection.
type Source string

const (
	SourceText             Source = "text"
	SourceAudioWaveform    Source = "audio_waveform"
	SourceAudioFrequency   Source = "audio_frequency"
	SourceVisual           Source = "visual"
	SourcePhotosensitivity Source = "photosensitivity"
	SourceTemporalPattern  Source = "temporal_pattern"
	SourceExternal         Source = "external"
)

// KnownSource reports whether s is a recognized detector source.
func KnownSource(s Source) bool {
	switch s {
	case SourceText, SourceAudioWaveform, SourceAudioFrequency,
		SourceVisual, SourcePhotosensitivity, SourceTemporalPattern,
		SourceExternal:
		return true
	}
	return false
}

// ModalityOf maps a detector source onto the modality whose learned weight
// governs it. Photosensitivity detectors analyze the video signal, so they
// count as visual evidence; temporal-pattern firings come from subtitle
// cues and count as text, like external detections that carry no channel
// of their own.
func ModalityOf(s Source) Modality {
	switch s {
	case SourceAudioWaveform, SourceAudioFrequency:
		return ModalityAudio
	case SourceVisual, SourcePhotosensitivity:
		return ModalityVisual
	default:
		return ModalityText
	}
}
