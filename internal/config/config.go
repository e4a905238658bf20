// Package config loads the command-line generator settings from a YAML file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	gositemapgenerator "github.com/kotylevskiy/go-sitemap-generator"
)

// Config is the on-disk form of a generation run.
type Config struct {
	Domain           string `yaml:"domain"`
	OutputPath       string `yaml:"output_path"`
	BaseFilename     string `yaml:"base_filename"`
	ItemsPerDocument int    `yaml:"items_per_document"`
	// Stdout switches to string output: documents are printed instead of written to files.
	Stdout bool `yaml:"stdout"`

	Index   IndexConfig   `yaml:"index"`
	Source  SourceConfig  `yaml:"source"`
	Filter  FilterConfig  `yaml:"filter"`
	Metrics MetricsConfig `yaml:"metrics"`

	LogLevel string `yaml:"log_level"`
}

// IndexConfig controls the sitemap index. An empty Loc skips the index.
type IndexConfig struct {
	Loc            string `yaml:"loc"`
	LastMod        string `yaml:"lastmod"`
	RepeatLocation bool   `yaml:"repeat_location"`
}

// SourceConfig names where entries come from. With neither set, entries are read from stdin.
type SourceConfig struct {
	File   string `yaml:"file"`
	SQLite string `yaml:"sqlite"`
	Query  string `yaml:"query"`
}

// FilterConfig lists include/exclude patterns and an optional robots.txt file.
type FilterConfig struct {
	Include   []string `yaml:"include"`
	Exclude   []string `yaml:"exclude"`
	Robots    string   `yaml:"robots"`
	UserAgent string   `yaml:"user_agent"`
}

// MetricsConfig enables a Prometheus textfile written at the end of the run.
type MetricsConfig struct {
	File string `yaml:"file"`
}

// DefaultUserAgent is matched against robots.txt groups.
const DefaultUserAgent = "go-sitemap-generator"

// Default returns the settings used when no file is given.
func Default() Config {
	return Config{
		OutputPath:       ".",
		BaseFilename:     gositemapgenerator.DefaultBaseFilename,
		ItemsPerDocument: gositemapgenerator.DefaultItemsPerDocument,
		Index:            IndexConfig{LastMod: gositemapgenerator.DefaultIndexLastMod},
		Filter:           FilterConfig{UserAgent: DefaultUserAgent},
	}
}

// Load reads path over the defaults. Unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks settings that would otherwise fail halfway through a run.
func (c Config) Validate() error {
	if c.ItemsPerDocument < 0 {
		return fmt.Errorf("items_per_document must not be negative, got %d", c.ItemsPerDocument)
	}
	if c.ItemsPerDocument > gositemapgenerator.DefaultItemsPerDocument {
		return fmt.Errorf("items_per_document must not exceed %d, got %d", gositemapgenerator.DefaultItemsPerDocument, c.ItemsPerDocument)
	}
	if c.Source.File != "" && c.Source.SQLite != "" {
		return errors.New("source.file and source.sqlite are mutually exclusive")
	}
	if c.Source.SQLite != "" && c.Source.Query == "" {
		return errors.New("source.query is required with source.sqlite")
	}
	if !c.Stdout && c.OutputPath == "" {
		return errors.New("output_path is required unless stdout is set")
	}
	return nil
}

// GeneratorOptions maps the settings onto generator options.
func (c Config) GeneratorOptions() gositemapgenerator.Options {
	opts := gositemapgenerator.Options{
		Domain:              c.Domain,
		OutputPath:          c.OutputPath,
		BaseFilename:        c.BaseFilename,
		ItemsPerDocument:    c.ItemsPerDocument,
		RepeatIndexLocation: c.Index.RepeatLocation,
	}
	if c.Stdout {
		opts.OutputMode = gositemapgenerator.OutputString
	}
	return opts
}
