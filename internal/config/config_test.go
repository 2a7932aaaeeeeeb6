package config

import "testing"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("port = %q, want 8080", cfg.Server.Port)
	}
	if cfg.Analysis.Cutoff != 2.0 {
		t.Errorf("cutoff = %v, want 2.0", cfg.Analysis.Cutoff)
	}
	if cfg.Analysis.NTree != 100 {
		t.Errorf("n.tree = %d, want 100", cfg.Analysis.NTree)
	}
	if cfg.Analysis.Seed != 42 {
		t.Errorf("seed = %d, want 42", cfg.Analysis.Seed)
	}
	if cfg.Fitter.TimeoutSec != 60 {
		t.Errorf("timeout = %d, want 60", cfg.Fitter.TimeoutSec)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SENSI_CUTOFF", "3.5")
	t.Setenv("SENSI_NTREE", "25")
	t.Setenv("FITTER_URL", "http://fitter:9000")
	t.Setenv("FITTER_OPTIONS", `{"method": "ML"}`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Analysis.Cutoff != 3.5 {
		t.Errorf("cutoff = %v, want 3.5", cfg.Analysis.Cutoff)
	}
	if cfg.Analysis.NTree != 25 {
		t.Errorf("n.tree = %d, want 25", cfg.Analysis.NTree)
	}
	if cfg.Fitter.URL != "http://fitter:9000" {
		t.Errorf("fitter url = %q", cfg.Fitter.URL)
	}
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("FITTER_OPTIONS", "{not json")
	if _, err := Load(); err == nil {
		t.Error("expected error for malformed FITTER_OPTIONS")
	}
	t.Setenv("FITTER_OPTIONS", "")

	t.Setenv("SENSI_CUTOFF", "-1")
	if _, err := Load(); err == nil {
		t.Error("expected error for negative cutoff")
	}
	t.Setenv("SENSI_CUTOFF", "")

	t.Setenv("SENSI_NTREE", "0")
	if _, err := Load(); err == nil {
		t.Error("expected error for zero n.tree")
	}
}
