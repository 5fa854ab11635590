package config

import (
	"strings"
	"testing"
)

func validConfig() *Config {
	cfg := NewDefaultConfig()
	return cfg
}

func TestDefaultConfigIsValid(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
}

func TestValidateServerPort(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Port = 0
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "server.port") {
		t.Errorf("expected server.port error, got %v", err)
	}
	cfg.Server.Port = 70000
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for out-of-range port")
	}
}

func TestValidateServerMode(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Mode = "production"
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "server.mode") {
		t.Errorf("expected server.mode error, got %v", err)
	}
}

func TestValidateDatabase(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Host = ""
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "database.host") {
		t.Errorf("expected database.host error, got %v", err)
	}
}

func TestValidateDisabledSectionsAreSkipped(t *testing.T) {
	cfg := validConfig()
	cfg.Redis.Enabled = false
	cfg.Redis.Addr = ""
	cfg.Milvus.Enabled = false
	cfg.Milvus.Addr = ""
	cfg.OpenSearch.Enabled = false
	cfg.Gemini.Enabled = false
	if err := cfg.Validate(); err != nil {
		t.Errorf("disabled sections must not be validated: %v", err)
	}
}

func TestValidateEnabledSections(t *testing.T) {
	cfg := validConfig()
	cfg.Gemini.Enabled = true
	cfg.Gemini.APIKey = ""
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "gemini.api_key") {
		t.Errorf("expected gemini.api_key error, got %v", err)
	}

	cfg = validConfig()
	cfg.OpenSearch.Enabled = true
	cfg.OpenSearch.Addresses = nil
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "opensearch.addresses") {
		t.Errorf("expected opensearch.addresses error, got %v", err)
	}
}

func TestValidateClassificationThresholds(t *testing.T) {
	cfg := validConfig()
	cfg.Classification.ConfidenceThreshold = 150
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for threshold > 100")
	}

	cfg = validConfig()
	cfg.Classification.ConfidenceFloor = cfg.Classification.ConfidenceThreshold + 1
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for floor above threshold")
	}

	cfg = validConfig()
	cfg.Classification.SemanticDiversityThreshold = 0.9
	cfg.Classification.SemanticPrimaryThreshold = 0.7
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for diversity threshold above primary")
	}
}
