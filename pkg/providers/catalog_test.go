package providers_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/xcallback/pkg/providers"
	"github.com/aretw0/xcallback/pkg/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltin(t *testing.T) {
	c := providers.Builtin()

	names := []string{}
	for _, p := range c.List() {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"chrome", "funbox", "instapaper"}, names)

	p, err := c.Lookup("googlechrome-x-callback")
	require.NoError(t, err)
	assert.Equal(t, "chrome", p.Name)

	_, err = c.Lookup("nothing")
	assert.ErrorIs(t, err, providers.ErrUnknownProvider)
}

func TestProvider_Params(t *testing.T) {
	chrome, err := providers.Builtin().Lookup("chrome")
	require.NoError(t, err)

	t.Run("Declaration Order And Flags", func(t *testing.T) {
		pairs, err := chrome.Params("open", map[string]any{"create-new-tab": true, "url": "https://go.dev"})
		require.NoError(t, err)
		assert.Equal(t, query.Pairs{
			{Key: "url", Value: "https://go.dev"},
			{Key: "create-new-tab", Value: ""},
		}, pairs)
	})

	t.Run("False Flag Is Omitted", func(t *testing.T) {
		pairs, err := chrome.Params("open", map[string]any{"url": "u", "create-new-tab": "false"})
		require.NoError(t, err)
		assert.Equal(t, query.Pairs{{Key: "url", Value: "u"}}, pairs)
	})

	t.Run("Missing Required", func(t *testing.T) {
		_, err := chrome.Params("open", map[string]any{"url": nil})
		assert.ErrorIs(t, err, providers.ErrMissingParam)
	})

	t.Run("Unknown Parameter", func(t *testing.T) {
		_, err := chrome.Params("open", map[string]any{"url": "u", "incognito": true})
		assert.ErrorIs(t, err, providers.ErrUnknownParam)
	})

	t.Run("Unknown Action", func(t *testing.T) {
		_, err := chrome.Params("close", nil)
		assert.ErrorIs(t, err, providers.ErrUnknownAction)
	})

	t.Run("Non String Values", func(t *testing.T) {
		p := providers.Provider{Name: "n", Scheme: "n", Actions: []providers.Action{
			{Name: "set", Params: []providers.Param{{Name: "level"}}},
		}}
		pairs, err := p.Params("set", map[string]any{"level": 3})
		require.NoError(t, err)
		assert.Equal(t, "3", pairs.Get("level"))
	})
}

const yamlCatalog = `
providers:
  - name: notes
    scheme: notes-app
    description: Notes
    actions:
      - name: create
        params:
          - name: title
            required: true
          - name: pinned
            flag: "true"
    errors:
      - code: 7
        message: quota exceeded
`

const jsonCatalog = `{
  "providers": [
    {"name": "notes", "scheme": "notes-app", "actions": [
      {"name": "create", "params": [{"name": "title", "required": true}, {"name": "pinned", "flag": true}]}
    ], "errors": [{"code": 7, "message": "quota exceeded"}]}
  ]
}`

const tomlCatalog = `
[[providers]]
name = "notes"
scheme = "notes-app"

[[providers.actions]]
name = "create"

[[providers.actions.params]]
name = "title"
required = true

[[providers.actions.params]]
name = "pinned"
flag = true

[[providers.errors]]
code = 7
message = "quota exceeded"
`

func TestLoad_Formats(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"catalog.yaml": yamlCatalog,
		"catalog.json": jsonCatalog,
		"catalog.toml": tomlCatalog,
	}

	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, os.WriteFile(path, []byte(content), 0644))

			c, err := providers.Load(path)
			require.NoError(t, err)

			p, err := c.Lookup("notes")
			require.NoError(t, err)
			assert.Equal(t, "notes-app", p.Scheme)

			action, ok := p.Action("create")
			require.True(t, ok)
			require.Len(t, action.Params, 2)
			assert.True(t, action.Params[0].Required)
			assert.True(t, action.Params[1].Flag)

			msg, ok := p.ErrorMessage(7)
			assert.True(t, ok)
			assert.Equal(t, "quota exceeded", msg)
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	_, err := providers.Parse([]byte("providers:\n  - name: x\n"), ".yaml")
	assert.ErrorContains(t, err, "needs a name and a scheme")

	_, err = providers.Parse([]byte(`{"providers": [{"name": "x", "scheme": "x", "colour": "red"}]}`), ".json")
	assert.Error(t, err, "unknown keys are rejected")

	_, err = providers.Parse([]byte("{"), "json")
	assert.Error(t, err)

	_, err = providers.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestCatalog_Merge(t *testing.T) {
	c := providers.Builtin()
	custom, err := providers.Parse([]byte(yamlCatalog), "yaml")
	require.NoError(t, err)
	custom.Add(providers.Provider{Name: "funbox", Scheme: "funbox2"})

	c.Merge(custom)

	p, err := c.Lookup("funbox")
	require.NoError(t, err)
	assert.Equal(t, "funbox2", p.Scheme)
	assert.Len(t, c.List(), 4)
}
