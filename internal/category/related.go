package category

// related maps each category to the categories whose detections are allowed
// to corroborate it during fusion. The relation is kept symmetric by
// construction in init below.
var related = map[Category][]Category{
	Violence:        {GraphicViolence, Blood, Gore, Gunshots, Murder},
	GraphicViolence: {Violence, Blood, Gore, Torture},
	Blood:           {Gore, Violence, GraphicViolence, Needles, MedicalProc},
	Gore:            {Blood, GraphicViolence, Death, Torture},
	Death:           {Murder, Gore, AnimalDeath, Drowning},
	Murder:          {Death, Violence, Gunshots, Choking},
	Suicide:         {SelfHarm, Death},
	SelfHarm:        {Suicide, Blood, EatingDisorder},
	SexualContent:   {Nudity, SexualAssault},
	Nudity:          {SexualContent},
	SexualAssault:   {SexualContent, Violence, DomesticAbuse},
	DomesticAbuse:   {Violence, ChildAbuse, SexualAssault},
	ChildAbuse:      {DomesticAbuse, Violence},
	AnimalAbuse:     {AnimalDeath, Violence},
	AnimalDeath:     {AnimalAbuse, Death},
	DrugUse:         {Needles, AlcoholAbuse},
	AlcoholAbuse:    {DrugUse},
	Needles:         {DrugUse, MedicalProc, Blood},
	Vomit:           {EatingDisorder},
	MedicalProc:     {Needles, Blood},
	FlashingLights:  {Explosions, Gunshots},
	LoudNoises:      {Screaming, Gunshots, Explosions, JumpScare},
	JumpScare:       {LoudNoises, Screaming},
	Screaming:       {LoudNoises, JumpScare, Violence},
	Gunshots:        {Violence, Murder, LoudNoises, FlashingLights},
	Explosions:      {LoudNoises, FlashingLights, CarCrash},
	CarCrash:        {Explosions, Death},
	Drowning:        {Death, Choking},
	Choking:         {Drowning, Murder, Violence},
	Torture:         {GraphicViolence, Gore, Kidnapping},
	Kidnapping:      {Torture, Violence},
	HateSpeech:      {Slurs},
	Slurs:           {HateSpeech},
	EatingDisorder:  {SelfHarm, Vomit, BodyShaming},
	BodyShaming:     {EatingDisorder},
}

func init() {
	for c, rels := range related {
		for _, r := range rels {
			if !contains(related[r], c) {
				related[r] = append(related[r], c)
			}
		}
	}
}

func contains(cs []Category, c Category) bool {
	for _, x := range cs {
		if x == c {
			return true
		}
	}
	return false
}

// Related returns the categories considered corroborating evidence for c.
// Categories with no configured relations corroborate only themselves.
func Related(c Category) []Category {
	return related[c]
}

// AreRelated reports whether a and b may corroborate each other. A category
// is always related to itself.
func AreRelated(a, b Category) bool {
	if a == b {
		return true
	}
	return contains(related[a], b)
}

// visualCorroboration holds categories describing visually observable
// content, where a single non-visual modality claiming presence is treated
// with suspicion until a second modality agrees.
var visualCorroboration = map[Category]struct{}{
	Blood:           {},
	Gore:            {},
	GraphicViolence: {},
	Nudity:          {},
	Needles:         {},
	Vomit:           {},
	MedicalProc:     {},
	Spiders:         {},
	Snakes:          {},
}

// RequiresVisualCorroboration reports whether single-modality claims for c
// should be penalized until corroborated.
func RequiresVisualCorroboration(c Category) bool {
	_, ok := visualCorroboration[c]
	return ok
}
