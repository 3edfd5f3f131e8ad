// Package config defines the benchmark configuration and its YAML loading.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/weiihann/sheetbench/backend"
	"github.com/weiihann/sheetbench/workload"
)

// DefaultFiles are searched, in order, when no config path is given.
var DefaultFiles = []string{"sheetbench.yaml", "sheetbench.yml"}

// Config is the full configuration of a benchmark run and its reports.
type Config struct {
	// Cases are "RxC" tokens; empty means the default case list.
	Cases []string `yaml:"cases"`

	WriteLibraries  []string `yaml:"write_libraries"`
	ReadLibraries   []string `yaml:"read_libraries"`
	ReferenceWriter string   `yaml:"reference_writer"`
	WriteBaseline   string   `yaml:"write_baseline"`
	ReadBaseline    string   `yaml:"read_baseline"`
	CacheMode       string   `yaml:"cache_mode"`

	ResultsDir string `yaml:"results_dir"`
	TmpDir     string `yaml:"tmp_dir"`
	Output     string `yaml:"output"`

	// TrialBinary runs the trials; empty means the running executable.
	TrialBinary string `yaml:"trial_binary"`
	// Timeout kills a trial that runs longer. Zero disables it.
	Timeout time.Duration `yaml:"timeout"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		WriteLibraries:  libraryNames(backend.WriteLibraries()),
		ReadLibraries:   libraryNames(backend.ReadLibraries()),
		ReferenceWriter: string(backend.ReferenceWriter),
		WriteBaseline:   string(backend.WriteBaseline),
		ReadBaseline:    string(backend.ReadBaseline),
		CacheMode:       string(backend.CacheNone),
		ResultsDir:      "results",
		TmpDir:          filepath.Join(os.TempDir(), "sheetbench"),
		Output:          "results.jsonl",
	}
}

// Load reads the configuration from path, or from the first default file
// found when path is empty. With no file at all the defaults are returned.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	var (
		data []byte
		err  error
	)

	if path != "" {
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		found := false

		for _, name := range DefaultFiles {
			data, err = os.ReadFile(name)
			if err == nil {
				path = name
				found = true

				break
			}

			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("read config %s: %w", name, err)
			}
		}

		if !found {
			return cfg, nil
		}
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks that the libraries are known and consistent.
func (c *Config) Validate() error {
	if len(c.WriteLibraries) == 0 {
		return errors.New("no write libraries configured")
	}

	for _, lib := range c.WriteLibraries {
		if !backend.KnownWriter(backend.Library(lib)) {
			return fmt.Errorf("unknown write library %q", lib)
		}
	}

	for _, lib := range c.ReadLibraries {
		if !backend.KnownReader(backend.Library(lib)) {
			return fmt.Errorf("unknown read library %q", lib)
		}
	}

	if !contains(c.WriteLibraries, c.ReferenceWriter) {
		return fmt.Errorf("reference writer %q is not a configured write library", c.ReferenceWriter)
	}

	if _, err := backend.ParseCacheMode(c.CacheMode); err != nil {
		return err
	}

	if c.Timeout < 0 {
		return fmt.Errorf("negative timeout %s", c.Timeout)
	}

	if c.Output == "" {
		return errors.New("empty output file name")
	}

	return nil
}

// ParsedCases returns the configured cases, or the defaults when none of
// the tokens is a valid case.
func (c *Config) ParsedCases() []workload.Case {
	cases := workload.ParseCases(strings.Join(c.Cases, ","))
	if len(cases) == 0 {
		return workload.DefaultCases()
	}

	return cases
}

// ResultsPath is where the run appends its records: the base name of
// Output, with the results extension, inside ResultsDir.
func (c *Config) ResultsPath() string {
	name := filepath.Base(c.Output)
	if !strings.HasSuffix(strings.ToLower(name), ".jsonl") {
		name += ".jsonl"
	}

	return filepath.Join(c.ResultsDir, name)
}

// ResolveInput locates a results or report file: a bare name lives in
// ResultsDir, anything with a directory part is used as given.
func (c *Config) ResolveInput(name string) string {
	if name == "" || filepath.Base(name) != name {
		return name
	}

	return filepath.Join(c.ResultsDir, name)
}

func libraryNames(libs []backend.Library) []string {
	names := make([]string, len(libs))
	for i, lib := range libs {
		names[i] = string(lib)
	}

	return names
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}

	return false
}
