package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvActive overrides the active preset named in the presets document.
const EnvActive = "ACTIVE_CONFIG"

//go:embed presets.yaml
var defaultPresets []byte

var (
	// ErrPresetNotFound is returned when a preset name is not defined.
	ErrPresetNotFound = errors.New("preset not found")
	// ErrNoPresets is returned when a document defines no presets.
	ErrNoPresets = errors.New("no presets defined")
)

// Params are the generation parameters of a preset.
type Params struct {
	Temperature     *float64 `yaml:"temperature,omitempty"`
	MaxTokens       int      `yaml:"max_tokens,omitempty"`
	MaxOutputTokens int      `yaml:"max_output_tokens,omitempty"`
	BaseURL         string   `yaml:"base_url,omitempty"`
	APIKey          string   `yaml:"api_key,omitempty"`
}

// TokenLimit returns max_tokens, falling back to max_output_tokens.
func (p Params) TokenLimit() int {
	if p.MaxTokens > 0 {
		return p.MaxTokens
	}
	return p.MaxOutputTokens
}

// Preset binds a provider and model name to default parameters.
type Preset struct {
	Name       string         `yaml:"-"`
	Provider   string         `yaml:"provider"`
	ModelName  string         `yaml:"model_name"`
	Params     Params         `yaml:"params"`
	Additional map[string]any `yaml:"additional_params"`
}

// Merged returns Params with additional_params laid over params.
func (p Preset) Merged() Params {
	out := p.Params
	if v, ok := p.Additional["base_url"].(string); ok && v != "" {
		out.BaseURL = v
	}
	if v, ok := p.Additional["api_key"].(string); ok && v != "" {
		out.APIKey = v
	}
	if v, ok := toFloat(p.Additional["temperature"]); ok {
		out.Temperature = &v
	}
	if v, ok := toFloat(p.Additional["max_tokens"]); ok {
		out.MaxTokens = int(v)
	}
	if out.MaxTokens == 0 {
		out.MaxTokens = out.MaxOutputTokens
	}
	return out
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

// Presets is an ordered set of named presets with one active entry.
type Presets struct {
	Active string
	Items  map[string]Preset
	order  []string
}

type document struct {
	Active  string    `yaml:"active"`
	Presets yaml.Node `yaml:"presets"`
}

// Default returns the presets embedded in the binary.
func Default() *Presets {
	p, err := Parse(defaultPresets)
	if err != nil {
		panic(fmt.Sprintf("embedded presets: %v", err))
	}
	return p
}

// Load reads a presets document from path. An empty path loads the defaults.
func Load(path string) (*Presets, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read presets: %w", err)
	}
	return Parse(data)
}

var envRef = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Parse decodes a presets document, expanding ${VAR} references first.
func Parse(data []byte) (*Presets, error) {
	expanded := envRef.ReplaceAllStringFunc(string(data), func(m string) string {
		return os.Getenv(envRef.FindStringSubmatch(m)[1])
	})

	var doc document
	if err := yaml.Unmarshal([]byte(expanded), &doc); err != nil {
		return nil, fmt.Errorf("failed to parse presets: %w", err)
	}
	if doc.Presets.Kind != yaml.MappingNode || len(doc.Presets.Content) == 0 {
		return nil, ErrNoPresets
	}

	p := &Presets{Active: doc.Active, Items: make(map[string]Preset)}
	for i := 0; i+1 < len(doc.Presets.Content); i += 2 {
		name := doc.Presets.Content[i].Value
		if _, dup := p.Items[name]; dup {
			return nil, fmt.Errorf("duplicate preset %q", name)
		}
		var preset Preset
		if err := doc.Presets.Content[i+1].Decode(&preset); err != nil {
			return nil, fmt.Errorf("preset %s: %w", name, err)
		}
		preset.Name = name
		p.Items[name] = preset
		p.order = append(p.order, name)
	}
	if p.Active == "" {
		p.Active = p.order[0]
	}
	return p, nil
}

// Get returns the named preset.
func (p *Presets) Get(name string) (Preset, error) {
	preset, ok := p.Items[name]
	if !ok {
		return Preset{}, fmt.Errorf("%w: %s", ErrPresetNotFound, name)
	}
	return preset, nil
}

// ActiveName is the active preset, with ACTIVE_CONFIG taking precedence.
func (p *Presets) ActiveName() string {
	if env := strings.TrimSpace(os.Getenv(EnvActive)); env != "" {
		return env
	}
	return p.Active
}

// ActivePreset returns the preset named by ActiveName.
func (p *Presets) ActivePreset() (Preset, error) {
	return p.Get(p.ActiveName())
}

// List returns the presets in document order.
func (p *Presets) List() []Preset {
	out := make([]Preset, 0, len(p.order))
	for _, name := range p.order {
		out = append(out, p.Items[name])
	}
	return out
}

// LoadEnv loads .env style files into the process environment. Missing files
// are skipped; existing variables are not overridden.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}
