// Package config loads quizgen settings from an optional YAML file and
// overlays QUIZGEN_* environment variables on top.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/abhisek/quizgen/internal/llm"
	"github.com/abhisek/quizgen/internal/store"
)

// DefaultHTTPAddr is the listen address used by `quizgen serve`.
const DefaultHTTPAddr = ":8080"

// File is the on-disk configuration format.
type File struct {
	Provider string  `yaml:"provider"`
	APIKeys  APIKeys `yaml:"api_keys"`
	DBPath   string  `yaml:"db_path"`
	HTTP     HTTP    `yaml:"http"`
	Timeout  string  `yaml:"timeout"`
}

// APIKeys holds per-provider credentials.
type APIKeys struct {
	OpenAI     string `yaml:"openai"`
	Anthropic  string `yaml:"anthropic"`
	Gemini     string `yaml:"gemini"`
	OpenRouter string `yaml:"openrouter"`
}

// HTTP configures the generation endpoint.
type HTTP struct {
	Addr        string   `yaml:"addr"`
	CORSOrigins []string `yaml:"cors_origins"`
}

func (k APIKeys) any() bool {
	return k.OpenAI != "" || k.Anthropic != "" || k.Gemini != "" || k.OpenRouter != ""
}

// Settings is the resolved configuration used by the commands.
type Settings struct {
	LLM    llm.Config
	DBPath string
	HTTP   HTTP
}

// DefaultPath returns $XDG_CONFIG_HOME/quizgen/config.yaml, falling back to
// ~/.config/quizgen/config.yaml.
func DefaultPath() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "quizgen", "config.yaml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".config", "quizgen", "config.yaml"), nil
}

// Parse decodes a single YAML document. Unknown keys are rejected.
func Parse(data []byte) (File, error) {
	var f File
	if len(bytes.TrimSpace(data)) == 0 {
		return f, nil
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&f); err != nil {
		return File{}, fmt.Errorf("parse config: %w", err)
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return File{}, fmt.Errorf("parse config: multiple YAML documents are not supported")
		}
		return File{}, fmt.Errorf("parse config: %w", err)
	}
	if f.Timeout != "" {
		if d, err := time.ParseDuration(f.Timeout); err != nil || d <= 0 {
			return File{}, fmt.Errorf("parse config: invalid timeout %q", f.Timeout)
		}
	}
	return f, nil
}

// Load reads and parses the config file at path.
func Load(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, err
	}
	f, err := Parse(data)
	if err != nil {
		return File{}, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// LoadOrDefault loads path, or the default path when path is empty.
// A missing file at the default location yields an empty File.
func LoadOrDefault(path string) (File, error) {
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return File{}, nil
		}
		path = p
	}
	f, err := Load(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return File{}, nil
		}
		return File{}, err
	}
	return f, nil
}

// Resolve merges the file with the environment. Precedence, lowest first:
// defaults, file, QUIZGEN_* variables. When neither the file nor QUIZGEN_*
// names a usable provider, the vendors' own *_API_KEY variables are checked.
func Resolve(f File) (Settings, error) {
	cfg := llm.DefaultConfig()
	if f.Provider != "" {
		cfg.Provider = f.Provider
	}
	cfg.OpenAI.APIKey = f.APIKeys.OpenAI
	cfg.Anthropic.APIKey = f.APIKeys.Anthropic
	cfg.Gemini.APIKey = f.APIKeys.Gemini
	cfg.OpenRouter.APIKey = f.APIKeys.OpenRouter
	if f.Timeout != "" {
		d, err := time.ParseDuration(f.Timeout)
		if err != nil {
			return Settings{}, fmt.Errorf("invalid timeout %q: %w", f.Timeout, err)
		}
		cfg.Timeout = d
	}
	if err := llm.ApplyEnv(&cfg); err != nil {
		return Settings{}, err
	}

	explicit := f.Provider != "" || f.APIKeys.any() || os.Getenv("QUIZGEN_LLM_PROVIDER") != ""
	if cfg.Validate() != nil && !explicit {
		if discovered, ok := llm.DiscoverConfig(); ok {
			discovered.Timeout = cfg.Timeout
			discovered.OpenAI.BaseURL = cfg.OpenAI.BaseURL
			cfg = discovered
		}
	}

	s := Settings{LLM: cfg, HTTP: f.HTTP}

	if p := os.Getenv("QUIZGEN_DB"); p != "" {
		s.DBPath = p
	} else if f.DBPath != "" {
		s.DBPath = expandHome(f.DBPath)
	} else {
		p, err := store.DefaultDBPath()
		if err != nil {
			return Settings{}, err
		}
		s.DBPath = p
	}

	if a := os.Getenv("QUIZGEN_HTTP_ADDR"); a != "" {
		s.HTTP.Addr = a
	}
	if s.HTTP.Addr == "" {
		s.HTTP.Addr = DefaultHTTPAddr
	}
	if o := os.Getenv("QUIZGEN_CORS_ORIGINS"); o != "" {
		s.HTTP.CORSOrigins = splitCSV(o)
	}
	if len(s.HTTP.CORSOrigins) == 0 {
		s.HTTP.CORSOrigins = []string{"http://localhost:3000"}
	}
	return s, nil
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}
