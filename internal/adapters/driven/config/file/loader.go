package file

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/papermap/internal/core/domain"
)

// Default file names looked up in the working directory.
const (
	DefaultConfigFile = "papermap.toml"
	DefaultDotEnvFile = ".env"
	EnvPrefix         = "PAPERMAP_"
)

// apiKeyFallbacks maps providers to the conventional variables their SDKs read.
var apiKeyFallbacks = map[domain.EmbeddingProvider]string{
	domain.ProviderOpenAI: "OPENAI_API_KEY",
	domain.ProviderGemini: "GEMINI_API_KEY",
}

// Override mutates a loaded configuration before defaults are resolved.
type Override func(cfg *domain.PipelineConfig)

// Loader resolves a PipelineConfig from files and the environment.
type Loader struct {
	// ConfigPath is an explicit TOML file. It must exist when set.
	ConfigPath string

	// DotEnvPath is read when present. Empty means DefaultDotEnvFile.
	DotEnvPath string

	// Environ returns KEY=VALUE pairs. Nil means os.Environ.
	Environ func() []string

	source string
}

// NewLoader creates a loader for an optional explicit config file.
func NewLoader(configPath string) *Loader {
	return &Loader{ConfigPath: configPath}
}

// Source returns the TOML file used by the last Load, or "" if none.
func (l *Loader) Source() string {
	return l.source
}

// Load builds the effective configuration. It does not validate it.
func (l *Loader) Load(overrides ...Override) (*domain.PipelineConfig, error) {
	cfg := domain.DefaultPipelineConfig()
	// An empty model resolves to the chosen provider's default at the end.
	cfg.Embedding.Model = ""

	if err := l.loadFile(&cfg); err != nil {
		return nil, err
	}

	environ, err := l.environment()
	if err != nil {
		return nil, err
	}
	if err := env.ParseWithOptions(&cfg, env.Options{
		Prefix:      EnvPrefix,
		Environment: environ,
	}); err != nil {
		return nil, fmt.Errorf("%w: parsing environment: %w", domain.ErrInvalidInput, err)
	}

	for _, override := range overrides {
		override(&cfg)
	}

	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = domain.DefaultEmbeddingModels()[cfg.Embedding.Provider]
	}
	if cfg.Embedding.APIKey == "" {
		if name, ok := apiKeyFallbacks[cfg.Embedding.Provider]; ok {
			cfg.Embedding.APIKey = environ[name]
		}
	}

	return &cfg, nil
}

func (l *Loader) loadFile(cfg *domain.PipelineConfig) error {
	l.source = ""

	path := l.ConfigPath
	required := path != ""
	if !required {
		path = DefaultConfigFile
	}

	f, err := os.Open(path)
	if err != nil {
		if !required && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("opening config file: %w", err)
	}
	defer f.Close()

	dec := toml.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return fmt.Errorf("%w: %s: %s", domain.ErrInvalidInput, path, strict.String())
		}
		return fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, path, err)
	}

	l.source = path
	return nil
}

// environment merges the .env file under the process environment.
// Process variables win, matching godotenv.Load.
func (l *Loader) environment() (map[string]string, error) {
	dotenv := l.DotEnvPath
	if dotenv == "" {
		dotenv = DefaultDotEnvFile
	}

	vars, err := godotenv.Read(dotenv)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading %s: %w", dotenv, err)
		}
		vars = make(map[string]string)
	}

	environ := l.Environ
	if environ == nil {
		environ = os.Environ
	}
	for _, kv := range environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			vars[k] = v
		}
	}
	return vars, nil
}

// Marshal renders cfg as TOML.
func Marshal(cfg domain.PipelineConfig) ([]byte, error) {
	return toml.Marshal(cfg)
}

// Save writes cfg as TOML to path with owner-only permissions,
// since the file may carry an API key.
func Save(path string, cfg domain.PipelineConfig) error {
	data, err := Marshal(cfg)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0600)
}
