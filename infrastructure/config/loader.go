package config

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"braingraph/domain/layout"
	"braingraph/pkg/utils"
)

// FileLoader decodes one configuration file format
type FileLoader interface {
	Load(reader io.Reader, target interface{}) error
	Extensions() []string
}

// Loader reads configuration files, picking the decoder by extension
type Loader struct {
	fileLoaders map[string]FileLoader
}

// NewLoader creates a loader that understands YAML, JSON and TOML
func NewLoader() *Loader {
	l := &Loader{fileLoaders: make(map[string]FileLoader)}
	l.RegisterLoader(&YAMLLoader{})
	l.RegisterLoader(&JSONLoader{})
	l.RegisterLoader(&TOMLLoader{})
	return l
}

// RegisterLoader registers a file loader for its extensions
func (l *Loader) RegisterLoader(loader FileLoader) {
	for _, ext := range loader.Extensions() {
		l.fileLoaders[ext] = loader
	}
}

// LoadFile decodes path into target. Fields absent from the file keep their
// current values.
func (l *Loader) LoadFile(path string, target interface{}) error {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	loader, ok := l.fileLoaders[ext]
	if !ok {
		return fmt.Errorf("unsupported config format %q", ext)
	}

	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := loader.Load(file, target); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// PresetFile is the on-disk shape of a layout presets file
type PresetFile struct {
	Presets []layout.Preset `yaml:"presets" json:"presets" toml:"presets" validate:"dive"`
}

// LoadPresets reads and validates a presets file
func (l *Loader) LoadPresets(path string) ([]layout.Preset, error) {
	var pf PresetFile
	if err := l.LoadFile(path, &pf); err != nil {
		return nil, err
	}
	if err := utils.ValidateStruct(pf); err != nil {
		return nil, fmt.Errorf("invalid presets in %s: %w", path, err)
	}
	return pf.Presets, nil
}

// YAMLLoader loads YAML configuration files
type YAMLLoader struct{}

// Load decodes YAML
func (y *YAMLLoader) Load(reader io.Reader, target interface{}) error {
	decoder := yaml.NewDecoder(reader)
	decoder.KnownFields(true)
	if err := decoder.Decode(target); err != nil && err != io.EOF {
		return err
	}
	return nil
}

// Extensions returns the YAML file extensions
func (y *YAMLLoader) Extensions() []string { return []string{"yaml", "yml"} }

// JSONLoader loads JSON configuration files
type JSONLoader struct{}

// Load decodes JSON
func (j *JSONLoader) Load(reader io.Reader, target interface{}) error {
	decoder := json.NewDecoder(reader)
	decoder.DisallowUnknownFields()
	return decoder.Decode(target)
}

// Extensions returns the JSON file extension
func (j *JSONLoader) Extensions() []string { return []string{"json"} }

// TOMLLoader loads TOML configuration files
type TOMLLoader struct{}

// Load decodes TOML
func (t *TOMLLoader) Load(reader io.Reader, target interface{}) error {
	md, err := toml.NewDecoder(reader).Decode(target)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("unknown keys: %v", undecoded)
	}
	return nil
}

// Extensions returns the TOML file extension
func (t *TOMLLoader) Extensions() []string { return []string{"toml"} }
