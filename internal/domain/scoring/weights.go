package scoring

// Weights holds the additive ranking adjustments. The defaults reproduce the
// hand-tuned values the matching behavior was calibrated with; they are kept
// configurable rather than baked in as literals.
// TODO: recalibrate against a labeled resume set once one exists.
type Weights struct {
	LocationBoost    float64 `yaml:"location_boost"`
	ExclusivityMajor float64 `yaml:"exclusivity_major"` // 2+ unrequested vocabulary terms present
	ExclusivityMinor float64 `yaml:"exclusivity_minor"` // exactly 1 unrequested term present
	OptionalBoost    float64 `yaml:"optional_boost"`    // per matched optional term
	OptionalCap      float64 `yaml:"optional_cap"`
	TitleBoost       float64 `yaml:"title_boost"`
	SeniorityBoost   float64 `yaml:"seniority_boost"`
	DomainBoost      float64 `yaml:"domain_boost"`
}

// DefaultWeights returns the calibrated default adjustments.
func DefaultWeights() Weights {
	return Weights{
		LocationBoost:    0.05,
		ExclusivityMajor: 0.08,
		ExclusivityMinor: 0.04,
		OptionalBoost:    0.02,
		OptionalCap:      0.06,
		TitleBoost:       0.03,
		SeniorityBoost:   0.02,
		DomainBoost:      0.03,
	}
}

// ApplyDefaults fills zero-valued weights with the calibrated defaults.
func (w *Weights) ApplyDefaults() {
	def := DefaultWeights()
	if w.LocationBoost == 0 {
		w.LocationBoost = def.LocationBoost
	}
	if w.ExclusivityMajor == 0 {
		w.ExclusivityMajor = def.ExclusivityMajor
	}
	if w.ExclusivityMinor == 0 {
		w.ExclusivityMinor = def.ExclusivityMinor
	}
	if w.OptionalBoost == 0 {
		w.OptionalBoost = def.OptionalBoost
	}
	if w.OptionalCap == 0 {
		w.OptionalCap = def.OptionalCap
	}
	if w.TitleBoost == 0 {
		w.TitleBoost = def.TitleBoost
	}
	if w.SeniorityBoost == 0 {
		w.SeniorityBoost = def.SeniorityBoost
	}
	if w.DomainBoost == 0 {
		w.DomainBoost = def.DomainBoost
	}
}
