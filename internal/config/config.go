package config

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"jurisnet/domain/agreement"
	"jurisnet/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Paths    PathConfig
	Store    StoreConfig
	Pipeline PipelineConfig
	Metrics  MetricsConfig
	LogLevel string
}

// PathConfig holds input and output file locations
type PathConfig struct {
	CitationGraph  string
	VoteGraph      string
	CasesFile      string
	CitationsFile  string
	AuthorshipFile string
	JudgesFile     string
	OutputDir      string
}

// StoreConfig selects the graph store backend
type StoreConfig struct {
	Kind   string // "graphml" or "sql"
	Driver string // "sqlite" or "postgres"
	DSN    string
}

// PipelineConfig holds feature assembly settings
type PipelineConfig struct {
	DependentWindows  []int
	DependentLags     []int
	AgreementNetworks []string
	OutputFormat      string // "csv" or "xlsx"
	Parallel          bool
}

// MetricsConfig holds the optional Prometheus textfile location
type MetricsConfig struct {
	File string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	pipeline, err := loadPipelineConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load pipeline configuration")
	}

	config := &Config{
		Paths:    *loadPathConfig(),
		Store:    *loadStoreConfig(),
		Pipeline: *pipeline,
		Metrics:  MetricsConfig{File: getEnvOrDefault("METRICS_FILE", "")},
		LogLevel: getEnvOrDefault("LOG_LEVEL", "INFO"),
	}

	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func loadPathConfig() *PathConfig {
	return &PathConfig{
		CitationGraph:  getEnvOrDefault("CITATION_GRAPH", "data/citation_graph.graphml"),
		VoteGraph:      getEnvOrDefault("VOTE_GRAPH", "data/vote_graph.graphml"),
		CasesFile:      getEnvOrDefault("CASES_FILE", "data/cases.csv"),
		CitationsFile:  getEnvOrDefault("CITATIONS_FILE", "data/citations.csv"),
		AuthorshipFile: getEnvOrDefault("AUTHORSHIP_FILE", "data/authorship.csv"),
		JudgesFile:     getEnvOrDefault("JUDGES_FILE", "data/judges.csv"),
		OutputDir:      getEnvOrDefault("OUTPUT_DIR", "data"),
	}
}

func loadStoreConfig() *StoreConfig {
	return &StoreConfig{
		Kind:   getEnvOrDefault("GRAPH_STORE", "graphml"),
		Driver: getEnvOrDefault("STORE_DRIVER", "sqlite"),
		DSN:    getEnvOrDefault("STORE_DSN", "data/graphs.db"),
	}
}

func loadPipelineConfig() (*PipelineConfig, error) {
	windows, err := ParseIntList(getEnvOrDefault("DEPENDENT_WINDOWS", "1-10"))
	if err != nil {
		return nil, errors.Wrap(errors.ConfigInvalid(err.Error()), "DEPENDENT_WINDOWS")
	}
	lags, err := ParseIntList(getEnvOrDefault("DEPENDENT_LAGS", "1,2,3,4,5"))
	if err != nil {
		return nil, errors.Wrap(errors.ConfigInvalid(err.Error()), "DEPENDENT_LAGS")
	}

	return &PipelineConfig{
		DependentWindows:  windows,
		DependentLags:     lags,
		AgreementNetworks: splitList(getEnvOrDefault("AGREEMENT_NETWORKS", strings.Join(agreement.DefaultNetworks(), ","))),
		OutputFormat:      strings.ToLower(getEnvOrDefault("OUTPUT_FORMAT", "csv")),
		Parallel:          getEnvBoolOrDefault("PARALLEL_PIPELINES", false),
	}, nil
}

// Validate checks settings that would otherwise fail deep inside a run.
func (c *Config) Validate() error {
	if len(c.Pipeline.DependentWindows) == 0 {
		return errors.ConfigInvalid("at least one dependent window is required")
	}
	for _, w := range c.Pipeline.DependentWindows {
		if w <= 0 {
			return errors.ConfigInvalid(fmt.Sprintf("dependent window %d must be positive", w))
		}
	}
	for _, l := range c.Pipeline.DependentLags {
		if l <= 0 {
			return errors.ConfigInvalid(fmt.Sprintf("lag %d must be positive", l))
		}
	}
	for _, n := range c.Pipeline.AgreementNetworks {
		if _, err := agreement.Lookup(n); err != nil {
			return errors.ConfigInvalid(fmt.Sprintf("unknown agreement network %q (known: %s)", n, strings.Join(agreement.Names(), ", ")))
		}
	}
	switch c.Pipeline.OutputFormat {
	case "csv", "xlsx":
	default:
		return errors.ConfigInvalid(fmt.Sprintf("unknown output format %q", c.Pipeline.OutputFormat))
	}
	switch c.Store.Kind {
	case "graphml":
	case "sql":
		if c.Store.Driver != "sqlite" && c.Store.Driver != "postgres" {
			return errors.ConfigInvalid(fmt.Sprintf("unknown store driver %q", c.Store.Driver))
		}
		if c.Store.DSN == "" {
			return errors.ConfigInvalid("STORE_DSN is required for the sql graph store")
		}
	default:
		return errors.ConfigInvalid(fmt.Sprintf("unknown graph store %q", c.Store.Kind))
	}
	return nil
}

// ParseIntList parses "1,2,5" and ranges such as "1-10" (inclusive) into a sorted,
// de-duplicated list.
func ParseIntList(value string) ([]int, error) {
	seen := make(map[int]bool)
	var out []int
	for _, part := range splitList(value) {
		lo, hi := part, part
		if i := strings.Index(part, "-"); i > 0 {
			lo, hi = part[:i], part[i+1:]
		}
		start, err := strconv.Atoi(strings.TrimSpace(lo))
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q", lo)
		}
		end, err := strconv.Atoi(strings.TrimSpace(hi))
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q", hi)
		}
		if end < start {
			return nil, fmt.Errorf("invalid range %q", part)
		}
		for v := start; v <= end; v++ {
			if !seen[v] {
				seen[v] = true
				out = append(out, v)
			}
		}
	}
	sort.Ints(out)
	return out, nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
