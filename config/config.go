// Package config loads run configuration from YAML.
//
// A configuration file mirrors the command line flags:
//
//	input:
//	  format: domtblout
//	segments:
//	  trim: 50/30
//	  min_seg_length: 7
//	filter:
//	  worst_evalue: 0.001
//	  min_dc_hmm_coverage_percent: 80
//	score:
//	  apply_cath_rules: true
//	resolve:
//	  mode: optimal
//	  workers: 8
//	log:
//	  level: info
//
// Unset fields keep the values of Default.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"

	"github.com/hupe1980/domarch"
	"github.com/hupe1980/domarch/blobstore/location"
	"github.com/hupe1980/domarch/codec"
	"github.com/hupe1980/domarch/filter"
	"github.com/hupe1980/domarch/hitio"
	"github.com/hupe1980/domarch/model"
	"github.com/hupe1980/domarch/resolve"
	"github.com/hupe1980/domarch/resource"
	"github.com/hupe1980/domarch/score"
	"github.com/hupe1980/domarch/trim"
)

// Config is the full run configuration.
type Config struct {
	Input     Input     `yaml:"input"`
	Output    Output    `yaml:"output"`
	Segments  Segments  `yaml:"segments"`
	Filter    Filter    `yaml:"filter"`
	Score     Score     `yaml:"score"`
	Resolve   Resolve   `yaml:"resolve"`
	Resources Resources `yaml:"resources"`
	Storage   Storage   `yaml:"storage"`
	Log       Log       `yaml:"log"`
}

// Input selects the hit file layout.
type Input struct {
	Format string `yaml:"format" validate:"required"`
	// ScoreKind applies to raw_with_scores only.
	ScoreKind string `yaml:"score_kind" validate:"omitempty,oneof=score bitscore"`
}

// Output selects the result layout.
type Output struct {
	Format string `yaml:"format" validate:"required"`
	Codec  string `yaml:"codec" validate:"omitempty,oneof=json go-json"`
}

// Segments configures trimming.
type Segments struct {
	Trim         string `yaml:"trim" validate:"required"`
	MinSegLength int    `yaml:"min_seg_length" validate:"gte=0"`
}

// Filter configures hit filtering.
type Filter struct {
	WorstEvalue float64 `yaml:"worst_evalue" validate:"gt=0"`
	// WorstBitscore and WorstScore are unbounded when unset.
	WorstBitscore *float64 `yaml:"worst_bitscore"`
	WorstScore    *float64 `yaml:"worst_score"`

	QueryIDs     []string `yaml:"query_ids" validate:"dive,required"`
	LimitQueries int      `yaml:"limit_queries" validate:"gte=0"`

	MinHMMCoveragePercent   float64 `yaml:"min_hmm_coverage_percent" validate:"gte=0,lte=100"`
	MinDCHMMCoveragePercent float64 `yaml:"min_dc_hmm_coverage_percent" validate:"gte=0,lte=100"`

	PruneRedundant bool `yaml:"prune_redundant"`
}

// Score configures the score adjuster.
type Score struct {
	LongDomainsPreference float64 `yaml:"long_domains_preference" validate:"gte=-100,lte=100"`
	HighScoresPreference  float64 `yaml:"high_scores_preference" validate:"gte=-100,lte=100"`
	ApplyCATHRules        bool    `yaml:"apply_cath_rules"`
}

// Resolve configures the optimizer and its scheduling.
type Resolve struct {
	Mode             string  `yaml:"mode" validate:"required"`
	Workers          int     `yaml:"workers" validate:"gte=0"`
	QueriesPerSecond float64 `yaml:"queries_per_second" validate:"gte=0"`
}

// Resources bounds memory, concurrency and input bandwidth. Zero means unlimited.
type Resources struct {
	MemoryLimitBytes   int64 `yaml:"memory_limit_bytes" validate:"gte=0"`
	MaxInFlightQueries int64 `yaml:"max_in_flight_queries" validate:"gte=0"`
	IOLimitBytesPerSec int64 `yaml:"io_limit_bytes_per_sec" validate:"gte=0"`
}

// Storage configures remote object stores.
type Storage struct {
	Region      string `yaml:"region"`
	S3Endpoint  string `yaml:"s3_endpoint" validate:"omitempty,url"`
	MinioSecure bool   `yaml:"minio_secure"`
}

// Log configures structured logging.
type Log struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Input:    Input{Format: hitio.RawWithScores.String()},
		Output:   Output{Format: hitio.Text.String(), Codec: codec.Default.Name()},
		Segments: Segments{Trim: trim.NoTrim.String()},
		Filter: Filter{
			WorstEvalue:    filter.DefaultWorstEvalue,
			PruneRedundant: true,
		},
		Resolve: Resolve{Mode: resolve.Optimal.String()},
		Log:     Log{Level: "info", Format: "text"},
	}
}

// Load reads and validates a YAML configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// LoadReader reads and validates a YAML configuration from r.
func LoadReader(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML over Default and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if len(bytes.TrimSpace(data)) > 0 {
		if err := yaml.UnmarshalWithOptions(data, cfg, yaml.DisallowUnknownField()); err != nil {
			return nil, domarch.NewConfigError("yaml", yaml.FormatError(err, false, true), err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Marshal encodes cfg as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func init() {
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
}

// Validate checks field ranges and cross-field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			errs := make([]error, 0, len(verrs))
			for _, fe := range verrs {
				errs = append(errs, domarch.NewConfigError(trimNamespace(fe.Namespace()), describe(fe), fe))
			}
			return errors.Join(errs...)
		}
		return err
	}

	var errs []error
	check := func(field string, err error) {
		if err != nil {
			errs = append(errs, domarch.NewConfigError(field, err.Error(), err))
		}
	}

	_, err := c.InputFormat()
	check("input.format", err)
	_, err = c.OutputFormat()
	check("output.format", err)
	_, err = trim.Parse(c.Segments.Trim)
	check("segments.trim", err)
	_, err = resolve.ParseMode(c.Resolve.Mode)
	check("resolve.mode", err)
	if len(c.Filter.QueryIDs) > 0 && c.Filter.LimitQueries > 0 {
		errs = append(errs, domarch.NewConfigError("filter.query_ids", "cannot be combined with filter.limit_queries", nil))
	}
	for _, f := range []struct {
		name string
		v    *float64
	}{{"filter.worst_bitscore", c.Filter.WorstBitscore}, {"filter.worst_score", c.Filter.WorstScore}} {
		if f.v != nil && (math.IsNaN(*f.v) || math.IsInf(*f.v, 1)) {
			errs = append(errs, domarch.NewConfigError(f.name, fmt.Sprintf("%v is not a usable floor", *f.v), nil))
		}
	}
	return errors.Join(errs...)
}

func trimNamespace(ns string) string {
	_, rest, ok := strings.Cut(ns, ".")
	if !ok {
		return ns
	}
	return rest
}

func describe(fe validator.FieldError) string {
	if fe.Param() == "" {
		return fmt.Sprintf("failed %q (got %v)", fe.Tag(), fe.Value())
	}
	return fmt.Sprintf("failed %q=%s (got %v)", fe.Tag(), fe.Param(), fe.Value())
}

// InputFormat returns the parsed input format.
func (c *Config) InputFormat() (hitio.InputFormat, error) {
	return hitio.ParseInputFormat(c.Input.Format)
}

// ReaderOptions returns the hitio reader options implied by the input section.
func (c *Config) ReaderOptions() []hitio.ReaderOption {
	if c.Input.ScoreKind == "" {
		return nil
	}
	kind, err := model.ParseScoreKind(c.Input.ScoreKind)
	if err != nil {
		return nil
	}
	return []hitio.ReaderOption{hitio.WithScoreKind(kind)}
}

// OutputFormat returns the parsed output format.
func (c *Config) OutputFormat() (hitio.OutputFormat, error) {
	return hitio.ParseOutputFormat(c.Output.Format)
}

// Codec returns the JSON codec for output.
func (c *Config) Codec() codec.Codec {
	if cd, ok := codec.ByName(c.Output.Codec); ok {
		return cd
	}
	return codec.Default
}

// FilterSpec converts the filter and segment sections.
func (c *Config) FilterSpec() (filter.Spec, error) {
	spec := filter.DefaultSpec()
	spec.WorstEvalue = c.Filter.WorstEvalue
	if c.Filter.WorstBitscore != nil {
		spec.WorstBitscore = *c.Filter.WorstBitscore
	}
	if c.Filter.WorstScore != nil {
		spec.WorstScore = *c.Filter.WorstScore
	}
	spec.QueryIDs = c.Filter.QueryIDs
	spec.LimitQueries = c.Filter.LimitQueries
	spec.MinSegLength = c.Segments.MinSegLength
	spec.PruneRedundant = c.Filter.PruneRedundant

	var err error
	if spec.MinHMMCoverage, err = filter.CoverageFromPercent(c.Filter.MinHMMCoveragePercent); err != nil {
		return filter.Spec{}, err
	}
	if spec.MinDCHMMCoverage, err = filter.CoverageFromPercent(c.Filter.MinDCHMMCoveragePercent); err != nil {
		return filter.Spec{}, err
	}
	return spec, spec.Validate()
}

// ScoreSpec converts the score section.
func (c *Config) ScoreSpec() score.Spec {
	return score.Spec{
		LongDomainsPreference: c.Score.LongDomainsPreference,
		HighScoresPreference:  c.Score.HighScoresPreference,
		ApplyCATHRules:        c.Score.ApplyCATHRules,
	}
}

// LogLevel returns the configured slog level.
func (c *Config) LogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// Logger builds the configured logger writing to w.
func (c *Config) Logger(w io.Writer) *domarch.Logger {
	format := domarch.LogText
	if c.Log.Format == "json" {
		format = domarch.LogJSON
	}
	return domarch.NewWriterLogger(w, format, c.LogLevel())
}

// Controller returns a resource controller for the resources section, or
// nil when no limit is set.
func (c *Config) Controller() *resource.Controller {
	r := c.Resources
	if r.MemoryLimitBytes == 0 && r.MaxInFlightQueries == 0 && r.IOLimitBytesPerSec == 0 {
		return nil
	}
	inFlight := r.MaxInFlightQueries
	if inFlight == 0 {
		inFlight = int64(max(1, c.Resolve.Workers) * 4)
	}
	return resource.NewController(resource.Config{
		MemoryLimitBytes:   r.MemoryLimitBytes,
		MaxInFlightQueries: inFlight,
		QueriesPerSecond:   c.Resolve.QueriesPerSecond,
		IOLimitBytesPerSec: r.IOLimitBytesPerSec,
	})
}

// LocationConfig returns the storage settings for a location.Resolver.
func (c *Config) LocationConfig(rc *resource.Controller) location.Config {
	return location.Config{
		Region:      c.Storage.Region,
		S3Endpoint:  c.Storage.S3Endpoint,
		MinioSecure: c.Storage.MinioSecure,
		Controller:  rc,
	}
}

// EngineOptions converts the configuration into engine options. rc and
// logger may be nil.
func (c *Config) EngineOptions(rc *resource.Controller, logger *domarch.Logger) ([]domarch.Option, error) {
	ts, err := trim.Parse(c.Segments.Trim)
	if err != nil {
		return nil, domarch.NewConfigError("segments.trim", err.Error(), err)
	}
	fs, err := c.FilterSpec()
	if err != nil {
		return nil, domarch.NewConfigError("filter", err.Error(), err)
	}
	mode, err := resolve.ParseMode(c.Resolve.Mode)
	if err != nil {
		return nil, domarch.NewConfigError("resolve.mode", err.Error(), err)
	}

	opts := []domarch.Option{
		domarch.WithTrim(ts),
		domarch.WithFilter(fs),
		domarch.WithScore(c.ScoreSpec()),
		domarch.WithMode(mode),
		domarch.WithWorkers(c.Resolve.Workers),
		domarch.WithQueriesPerSecond(c.Resolve.QueriesPerSecond),
	}
	if rc != nil {
		opts = append(opts, domarch.WithResourceController(rc))
	}
	if logger != nil {
		opts = append(opts, domarch.WithLogger(logger))
	}
	return opts, nil
}
