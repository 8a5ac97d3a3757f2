package cli

import (
	"fmt"
	"strings"

	"github.com/aretw0/xcallback/pkg/providers"
	"github.com/aretw0/xcallback/pkg/query"
)

// Target is a parsed "<provider|scheme> <action> [key=value...]" command line.
type Target struct {
	Scheme string
	Action string
	Params query.Pairs

	// Provider is set when the first argument named a catalog entry.
	Provider *providers.Provider
}

// ParseTarget resolves the command arguments against the catalog.
// A bare key (no "=") sets a flag parameter.
func ParseTarget(catalog *providers.Catalog, args []string) (Target, error) {
	if len(args) < 2 {
		return Target{}, fmt.Errorf("expected <provider|scheme> <action> [key=value...]")
	}
	t := Target{Scheme: args[0], Action: args[1]}

	var pairs query.Pairs
	values := map[string]any{}
	for _, kv := range args[2:] {
		key, value, hasValue := strings.Cut(kv, "=")
		if key == "" {
			return Target{}, fmt.Errorf("invalid parameter %q", kv)
		}
		if hasValue {
			values[key] = value
		} else {
			values[key] = true
		}
		pairs.Add(key, value)
	}

	if p, err := catalog.Lookup(args[0]); err == nil {
		validated, err := p.Params(t.Action, values)
		if err != nil {
			return Target{}, err
		}
		t.Scheme, t.Params, t.Provider = p.Scheme, validated, p
		return t, nil
	}

	t.Params = pairs
	return t, nil
}
