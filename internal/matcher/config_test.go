package matcher

import "testing"

func TestMatchConfigFactories(t *testing.T) {
	for _, cfg := range []*MatchConfig{
		DefaultMatchConfig(),
		StrictMatchConfig(),
		RelaxedMatchConfig(),
	} {
		if err := cfg.Validate(); err != nil {
			t.Errorf("%s: %v", cfg, err)
		}
	}
}

func TestMatchConfigValidate(t *testing.T) {
	cfg := DefaultMatchConfig()
	cfg.DateToleranceDays = -1
	if err := cfg.Validate(); err == nil {
		t.Error("negative date tolerance accepted")
	}

	cfg = DefaultMatchConfig()
	cfg.MinConfidence = 1.5
	if err := cfg.Validate(); err == nil {
		t.Error("out-of-range confidence accepted")
	}

	cfg = DefaultMatchConfig()
	cfg.MaxCandidatesPerFlight = 0
	if err := cfg.Validate(); err == nil {
		t.Error("zero candidate cap accepted")
	}

	cfg = DefaultMatchConfig()
	cfg.Weights.DateTolerance = 0.5
	if err := cfg.Validate(); err == nil {
		t.Error("tolerance weight above exact weight accepted")
	}
}

func TestMatchConfigClone(t *testing.T) {
	cfg := DefaultMatchConfig()
	clone := cfg.Clone()

	clone.MinConfidence = 0.5
	clone.Weights.Route = 0.9

	if cfg.MinConfidence != 0.7 || cfg.Weights.Route != 0.4 {
		t.Error("clone is not independent of the original")
	}
}
