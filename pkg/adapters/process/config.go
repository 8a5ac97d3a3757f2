package process

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Placeholders substituted in configured arguments.
const (
	PlaceholderURL    = "{url}"
	PlaceholderScheme = "{scheme}"
)

// Config describes how URLs are handed to the operating system.
type Config struct {
	// Opener is the command that launches a URL. Empty selects the
	// platform default (xdg-open, open, rundll32).
	Opener string   `yaml:"opener" json:"opener"`
	Args   []string `yaml:"args" json:"args"`

	// Probe, when set, is run to decide whether a scheme has a handler.
	// The scheme is installed if the probe exits 0 with non-empty output.
	Probe     string   `yaml:"probe" json:"probe"`
	ProbeArgs []string `yaml:"probe_args" json:"probe_args"`

	// Schemes lists schemes known to be installed without probing.
	Schemes []string `yaml:"schemes" json:"schemes"`

	Environment map[string]string `yaml:"env" json:"env"`
	Timeout     time.Duration     `yaml:"timeout" json:"timeout"`
}

// ConfigFile represents the structure of host.yaml.
type ConfigFile struct {
	Host Config `yaml:"host" json:"host"`
}

// LoadConfig reads a configuration file (YAML or JSON).
// A missing file yields the zero Config, which selects platform defaults.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("failed to read host config: %w", err)
	}

	var file ConfigFile
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &file); err != nil {
			return Config{}, fmt.Errorf("failed to parse host config %s: %w", path, err)
		}
	} else {
		if err := yaml.Unmarshal(data, &file); err != nil {
			return Config{}, fmt.Errorf("failed to parse host config %s: %w", path, err)
		}
	}
	return file.Host, nil
}

// withDefaults fills the opener and probe for the given platform.
func (c Config) withDefaults(goos string) Config {
	if c.Opener != "" {
		return c
	}
	switch goos {
	case "darwin":
		c.Opener = "open"
	case "windows":
		c.Opener = "rundll32"
		c.Args = []string{"url.dll,FileProtocolHandler", PlaceholderURL}
	default:
		c.Opener = "xdg-open"
		if c.Probe == "" {
			c.Probe = "xdg-mime"
			c.ProbeArgs = []string{"query", "default", "x-scheme-handler/" + PlaceholderScheme}
		}
	}
	return c
}

// DefaultConfig returns the configuration for the running platform.
func DefaultConfig() Config {
	return Config{}.withDefaults(runtime.GOOS)
}

func expand(args []string, u, scheme string) ([]string, bool) {
	out := make([]string, len(args))
	substituted := false
	for i, a := range args {
		if strings.Contains(a, PlaceholderURL) {
			substituted = true
		}
		a = strings.ReplaceAll(a, PlaceholderURL, u)
		out[i] = strings.ReplaceAll(a, PlaceholderScheme, scheme)
	}
	return out, substituted
}
