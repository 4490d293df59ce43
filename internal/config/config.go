// Package config loads the optional YAML configuration of the exportable
// command.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/bjaus/exportable"
)

// ErrInvalid is returned when a configuration fails validation.
var ErrInvalid = errors.New("invalid configuration")

// Config holds the settings that flags fall back to.
type Config struct {
	Format     string   `yaml:"format" validate:"required"`
	Encoding   string   `yaml:"encoding" validate:"required"`
	BufferSize int      `yaml:"buffer_size" validate:"gte=1,lte=100000"`
	Strict     bool     `yaml:"strict"`
	Log        Log      `yaml:"log"`
	S3         S3       `yaml:"s3"`
	Database   Database `yaml:"database"`
}

// Log configures the run logger.
type Log struct {
	Level  string `yaml:"level" validate:"oneof=trace debug info warn error"`
	Pretty bool   `yaml:"pretty"`
}

// S3 configures uploads made with --s3-bucket.
type S3 struct {
	Region   string `yaml:"region" validate:"required"`
	Endpoint string `yaml:"endpoint" validate:"omitempty,url"`
	Bucket   string `yaml:"bucket"`
	// PathStyle addresses buckets by path, as S3-compatible stores expect.
	PathStyle bool `yaml:"path_style"`
}

// Database selects the SQL driver and connection used with --query.
type Database struct {
	Driver string `yaml:"driver" validate:"omitempty,oneof=sqlite pgx"`
	DSN    string `yaml:"dsn" validate:"required_with=Driver"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Format:     "csv",
		Encoding:   exportable.DefaultEncoding,
		BufferSize: exportable.DefaultBufferSize,
		Log:        Log{Level: "info"},
		S3:         S3{Region: "us-east-1"},
	}
}

// Load reads the file at path over [Default]. A missing file is not an
// error when path is empty.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML over [Default] and validates the result. Unknown keys
// are rejected.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, cfg.Validate()
}

var validate = validator.New()

// Validate checks the field constraints and that the encoding is one the
// text exporters can produce.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if err := exportable.ValidateEncoding(c.Encoding); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}
