package providers

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/aretw0/xcallback/pkg/query"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

var (
	// ErrUnknownProvider is returned by Lookup for names not in the catalog.
	ErrUnknownProvider = errors.New("unknown provider")
	// ErrUnknownAction is returned when a provider does not declare an action.
	ErrUnknownAction = errors.New("unknown action")
	// ErrUnknownParam is returned for arguments an action does not declare.
	ErrUnknownParam = errors.New("unknown parameter")
	// ErrMissingParam is returned when a required argument is absent.
	ErrMissingParam = errors.New("missing required parameter")
)

// Param declares one query parameter of an action.
type Param struct {
	Name        string `json:"name" yaml:"name" mapstructure:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty" mapstructure:"description"`
	Required    bool   `json:"required,omitempty" yaml:"required,omitempty" mapstructure:"required"`
	// Flag parameters carry no value: present when true, absent otherwise.
	Flag bool `json:"flag,omitempty" yaml:"flag,omitempty" mapstructure:"flag"`
}

// Action declares one action a provider exposes.
type Action struct {
	Name        string  `json:"name" yaml:"name" mapstructure:"name"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty" mapstructure:"description"`
	Params      []Param `json:"params,omitempty" yaml:"params,omitempty" mapstructure:"params"`
}

// ErrorCode documents an application-specific error-Code.
type ErrorCode struct {
	Code    int    `json:"code" yaml:"code" mapstructure:"code"`
	Message string `json:"message" yaml:"message" mapstructure:"message"`
}

// Provider describes an application reachable through x-callback-url.
type Provider struct {
	Name        string      `json:"name" yaml:"name" mapstructure:"name"`
	Scheme      string      `json:"scheme" yaml:"scheme" mapstructure:"scheme"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty" mapstructure:"description"`
	Actions     []Action    `json:"actions" yaml:"actions" mapstructure:"actions"`
	Errors      []ErrorCode `json:"errors,omitempty" yaml:"errors,omitempty" mapstructure:"errors"`
}

// Action returns the declared action called name.
func (p *Provider) Action(name string) (Action, bool) {
	for _, a := range p.Actions {
		if a.Name == name {
			return a, true
		}
	}
	return Action{}, false
}

// ErrorMessage returns the documented message for code.
func (p *Provider) ErrorMessage(code int) (string, bool) {
	for _, e := range p.Errors {
		if e.Code == code {
			return e.Message, true
		}
	}
	return "", false
}

// Params validates args against the action declaration and renders them in
// declaration order. Nil values are treated as absent.
func (p *Provider) Params(action string, args map[string]any) (query.Pairs, error) {
	a, ok := p.Action(action)
	if !ok {
		return nil, fmt.Errorf("%w: %s has no action %q", ErrUnknownAction, p.Name, action)
	}

	declared := make(map[string]bool, len(a.Params))
	for _, param := range a.Params {
		declared[param.Name] = true
	}
	var unknown []string
	for name := range args {
		if !declared[name] {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, fmt.Errorf("%w: %s.%s does not accept %s", ErrUnknownParam, p.Name, action, strings.Join(unknown, ", "))
	}

	var pairs query.Pairs
	for _, param := range a.Params {
		v, present := args[param.Name]
		if present && v == nil {
			present = false
		}

		if param.Flag {
			if present && truthy(v) {
				pairs.Add(param.Name, "")
			}
			continue
		}

		if !present {
			if param.Required {
				return nil, fmt.Errorf("%w: %s.%s needs %q", ErrMissingParam, p.Name, action, param.Name)
			}
			continue
		}
		pairs.Add(param.Name, stringify(v))
	}
	return pairs, nil
}

func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		if t == "" {
			return true
		}
		b, err := strconv.ParseBool(t)
		return err == nil && b
	default:
		return false
	}
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(v)
	}
}

// Catalog is a set of providers keyed by name.
type Catalog struct {
	providers map[string]*Provider
}

// NewCatalog builds a catalog. Later providers replace earlier ones with the
// same name.
func NewCatalog(list ...Provider) *Catalog {
	c := &Catalog{providers: make(map[string]*Provider, len(list))}
	for _, p := range list {
		c.Add(p)
	}
	return c
}

// Add inserts or replaces a provider.
func (c *Catalog) Add(p Provider) {
	c.providers[p.Name] = &p
}

// Merge adds every provider of other, replacing same-named entries.
func (c *Catalog) Merge(other *Catalog) {
	for _, p := range other.List() {
		c.Add(*p)
	}
}

// Lookup finds a provider by name or, failing that, by scheme.
func (c *Catalog) Lookup(name string) (*Provider, error) {
	if p, ok := c.providers[name]; ok {
		return p, nil
	}
	for _, p := range c.providers {
		if strings.EqualFold(p.Scheme, name) {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, name)
}

// List returns the providers sorted by name.
func (c *Catalog) List() []*Provider {
	out := make([]*Provider, 0, len(c.providers))
	for _, p := range c.providers {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

type catalogFile struct {
	Providers []Provider `mapstructure:"providers"`
}

// Load reads a catalog file. The format follows the extension: .json,
// .toml, otherwise YAML.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return Parse(data, filepath.Ext(path))
}

// Parse decodes catalog content in the format named by ext.
func Parse(data []byte, ext string) (*Catalog, error) {
	raw := map[string]any{}
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "json":
		err := json.Unmarshal(data, &raw)
		if err != nil {
			return nil, fmt.Errorf("failed to parse catalog json: %w", err)
		}
	case "toml":
		if err := toml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse catalog toml: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse catalog yaml: %w", err)
		}
	}

	var file catalogFile
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &file,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}

	for i, p := range file.Providers {
		if p.Name == "" || p.Scheme == "" {
			return nil, fmt.Errorf("invalid catalog: provider #%d needs a name and a scheme", i+1)
		}
	}
	return NewCatalog(file.Providers...), nil
}
