// Package config resolves CLI settings from flags, environment and the
// .tablegrab.yaml file, and validates the result.
package config

import (
	"fmt"
	"math"
	"reflect"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/jmylchreest/tablegrab/pkg/format"
)

// Fetch modes.
const (
	FetchStatic  = "static"
	FetchDynamic = "dynamic"
	FetchFile    = "file"
)

// Config is the resolved CLI configuration. Keys match the viper keys,
// so TABLEGRAB_OUTPUT_DIR or output_dir in the config file set OutputDir.
type Config struct {
	URL       string `mapstructure:"url" yaml:"url,omitempty" validate:"required_without=Input,excluded_with=Input"`
	Input     string `mapstructure:"input" yaml:"input,omitempty" validate:"required_without=URL"`
	Format    string `mapstructure:"format" yaml:"format" validate:"required,tableformat"`
	Output    string `mapstructure:"output" yaml:"output,omitempty"`
	OutputDir string `mapstructure:"output_dir" yaml:"output_dir,omitempty"`

	FetchMode string        `mapstructure:"fetch_mode" yaml:"fetch_mode" validate:"oneof=static dynamic file"`
	Timeout   time.Duration `mapstructure:"timeout" yaml:"timeout" validate:"gte=0"`
	MaxSize   string        `mapstructure:"max_size" yaml:"max_size" validate:"bytesize"`
	UserAgent string        `mapstructure:"user_agent" yaml:"user_agent,omitempty"`
	WaitFor   string        `mapstructure:"wait_for" yaml:"wait_for,omitempty"`

	NoClean      bool `mapstructure:"no_clean" yaml:"no_clean"`
	Strip        bool `mapstructure:"strip" yaml:"strip"`
	SaveHTML     bool `mapstructure:"save_html" yaml:"save_html"`
	PreserveRows bool `mapstructure:"preserve_rows" yaml:"preserve_rows"`
	Pretty       bool `mapstructure:"pretty" yaml:"pretty"`

	Debug   bool `mapstructure:"debug" yaml:"debug"`
	Quiet   bool `mapstructure:"quiet" yaml:"quiet"`
	LogJSON bool `mapstructure:"log_json" yaml:"log_json"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Format:    string(format.FormatJSON),
		FetchMode: FetchStatic,
		Timeout:   30 * time.Second,
		MaxSize:   "10MB",
		Pretty:    true,
	}
}

// Decode reads v on top of Default without validating. A local input file
// always selects the file fetch mode.
func Decode(v *viper.Viper) (*Config, error) {
	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Input != "" {
		cfg.FetchMode = FetchFile
	}
	return cfg, nil
}

// Load decodes v and validates the result.
func Load(v *viper.Viper) (*Config, error) {
	cfg, err := Decode(v)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Source returns the address handed to the fetcher.
func (c *Config) Source() string {
	if c.Input != "" {
		return c.Input
	}
	return c.URL
}

// OutputFormat returns the parsed output format.
func (c *Config) OutputFormat() (format.Format, error) {
	return format.Parse(c.Format)
}

// MaxBytes returns MaxSize in bytes. Empty or "0" means unlimited.
func (c *Config) MaxBytes() (int, error) {
	return parseSize(c.MaxSize)
}

// ToStdout reports whether output goes to standard output.
func (c *Config) ToStdout() bool {
	return c.Output == "-"
}

// ValidationError describes one invalid setting.
type ValidationError struct {
	Field   string
	Message string
	Value   any
}

func (e ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// ValidationErrors collects every invalid setting.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, ve := range e {
		msgs[i] = ve.Error()
	}
	return "invalid config: " + strings.Join(msgs, "; ")
}

// Validate checks c against its validate tags.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("validate config: %w", err)
	}

	errs := make(ValidationErrors, 0, len(fieldErrs))
	for _, e := range fieldErrs {
		errs = append(errs, ValidationError{
			Field:   e.Field(),
			Message: formatValidationError(e),
			Value:   e.Value(),
		})
	}
	return errs
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report config keys rather than Go field names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("mapstructure"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("tableformat", func(fl validator.FieldLevel) bool {
		_, err := format.Parse(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("bytesize", func(fl validator.FieldLevel) bool {
		_, err := parseSize(fl.Field().String())
		return err == nil
	})
	return v
}

func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "required_without":
		return "is required when " + e.Param() + " is not set"
	case "excluded_with":
		return "cannot be combined with " + e.Param()
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", e.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", e.Param())
	case "tableformat":
		return fmt.Sprintf("unknown format %q", e.Value())
	case "bytesize":
		return fmt.Sprintf("invalid size %q", e.Value())
	default:
		return fmt.Sprintf("failed validation '%s'", e.Tag())
	}
}

func parseSize(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "0" {
		return 0, nil
	}
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, err
	}
	if n > math.MaxInt {
		return 0, fmt.Errorf("size %q exceeds %d bytes", s, math.MaxInt)
	}
	return int(n), nil
}
