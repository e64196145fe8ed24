package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/towerctl/towerctl/pkg/engine"
)

// Loader decodes and validates landing zone configuration files.
type Loader struct {
	validator *validator.Validate
}

// NewLoader creates a configuration loader.
func NewLoader() *Loader {
	return &Loader{
		validator: validator.New(),
	}
}

// LoadFile reads, decodes, and validates the configuration at path.
func (l *Loader) LoadFile(path string) (*engine.DesiredConfiguration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file: %w", err)
	}
	return l.Load(data)
}

// Load decodes and validates a raw YAML configuration document. Unknown
// fields are rejected so a typo cannot silently drop a setting.
func (l *Loader) Load(data []byte) (*engine.DesiredConfiguration, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var cfg engine.DesiredConfiguration
	if err := dec.Decode(&cfg); err != nil {
		return nil, engine.NewInvalidInputError(
			fmt.Sprintf("configuration is not valid YAML: %v", err))
	}

	if err := l.Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate runs the total validation pass over an already decoded
// configuration.
func (l *Loader) Validate(cfg *engine.DesiredConfiguration) error {
	err := l.validator.Struct(cfg)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return engine.NewInvalidInputError(err.Error())
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
	}
	return engine.NewInvalidInputError(
		"configuration failed validation: " + strings.Join(fields, ", "))
}
