package config

import "testing"

func TestApplyDefaultsFillsDocumentedValues(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Classification.ConfidenceThreshold != 40 {
		t.Errorf("confidence threshold default = %.1f, want 40", cfg.Classification.ConfidenceThreshold)
	}
	if cfg.Classification.ConfidenceFloor != 15 {
		t.Errorf("confidence floor default = %.1f, want 15", cfg.Classification.ConfidenceFloor)
	}
	if cfg.Classification.MaxEnrichment != 8 {
		t.Errorf("max enrichment default = %d, want 8", cfg.Classification.MaxEnrichment)
	}
	if cfg.Duty.BaselineRate != 10 {
		t.Errorf("baseline rate default = %.1f, want 10", cfg.Duty.BaselineRate)
	}
	if cfg.Classification.Weights.LeadingTermBoost != 50 {
		t.Error("scoring weights not populated")
	}
}

func TestApplyDefaultsPreservesExplicitValues(t *testing.T) {
	cfg := &Config{}
	cfg.Server.Port = 9999
	cfg.Classification.ConfidenceThreshold = 55
	ApplyDefaults(cfg)

	if cfg.Server.Port != 9999 {
		t.Error("explicit port overwritten")
	}
	if cfg.Classification.ConfidenceThreshold != 55 {
		t.Error("explicit threshold overwritten")
	}
}

func TestApplyDefaultsNilSafe(t *testing.T) {
	ApplyDefaults(nil) // must not panic
}
