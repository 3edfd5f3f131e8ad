package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/weiihann/sheetbench/workload"
)

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}

	if got := cfg.ParsedCases(); len(got) != len(workload.DefaultCases()) {
		t.Errorf("ParsedCases = %v, want the default cases", got)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bench.yaml")

	data := `
cases: ["100x5", "2000X10"]
write_libraries: [excelize-stream, rawxml]
read_libraries: [rawxml]
cache_mode: disk
results_dir: out
timeout: 90s
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	if cfg.Timeout != 90*time.Second {
		t.Errorf("timeout = %s, want 90s", cfg.Timeout)
	}
	if cfg.CacheMode != "disk" || cfg.ResultsDir != "out" {
		t.Errorf("config = %+v", cfg)
	}
	if cfg.ReferenceWriter != "excelize-stream" {
		t.Errorf("reference writer default lost: %q", cfg.ReferenceWriter)
	}

	cases := cfg.ParsedCases()
	if len(cases) != 2 || cases[1] != (workload.Case{Rows: 2000, Cols: 10}) {
		t.Errorf("cases = %v", cases)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for an explicit missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("cases: [unterminated"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		want   string
	}{
		{"unknown writer", func(c *Config) { c.WriteLibraries = append(c.WriteLibraries, "fastexcel") }, "unknown write library"},
		{"unknown reader", func(c *Config) { c.ReadLibraries = []string{"openspout"} }, "unknown read library"},
		{"reference not written", func(c *Config) { c.WriteLibraries = []string{"rawxml"} }, "reference writer"},
		{"bad cache", func(c *Config) { c.CacheMode = "discISAM" }, "cache mode"},
		{"negative timeout", func(c *Config) { c.Timeout = -time.Second }, "negative timeout"},
		{"no writers", func(c *Config) { c.WriteLibraries = nil }, "no write libraries"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)

			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.want)
			}
		})
	}
}

func TestResultsPath(t *testing.T) {
	tests := []struct {
		output, want string
	}{
		{"results.jsonl", filepath.Join("res", "results.jsonl")},
		{"nightly", filepath.Join("res", "nightly.jsonl")},
		{"../elsewhere/run.jsonl", filepath.Join("res", "run.jsonl")},
	}

	for _, tt := range tests {
		cfg := &Config{ResultsDir: "res", Output: tt.output}
		if got := cfg.ResultsPath(); got != tt.want {
			t.Errorf("ResultsPath(%q) = %q, want %q", tt.output, got, tt.want)
		}
	}
}

func TestResolveInput(t *testing.T) {
	cfg := &Config{ResultsDir: "res"}

	if got := cfg.ResolveInput("results.jsonl"); got != filepath.Join("res", "results.jsonl") {
		t.Errorf("bare name resolved to %q", got)
	}

	other := filepath.Join("tmp", "x.jsonl")
	if got := cfg.ResolveInput(other); got != other {
		t.Errorf("path resolved to %q, want unchanged", got)
	}
}
