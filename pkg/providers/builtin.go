package providers

// Builtin returns the catalog of well-known providers.
func Builtin() *Catalog {
	return NewCatalog(
		Provider{
			Name:        "instapaper",
			Scheme:      "x-callback-instapaper",
			Description: "Save pages to read later.",
			Actions: []Action{
				{
					Name:        "add",
					Description: "Add a URL to the reading list.",
					Params:      []Param{{Name: "url", Required: true}},
				},
			},
		},
		Provider{
			Name:        "chrome",
			Scheme:      "googlechrome-x-callback",
			Description: "Google Chrome.",
			Actions: []Action{
				{
					Name:        "open",
					Description: "Open a URL.",
					Params: []Param{
						{Name: "url", Required: true},
						{Name: "create-new-tab", Flag: true, Description: "Open in a new tab."},
					},
				},
			},
		},
		Provider{
			Name:        "funbox",
			Scheme:      "funbox",
			Description: "Sound box.",
			Actions: []Action{
				{
					Name:        "play",
					Description: "Play a sound.",
					Params:      []Param{{Name: "sound", Required: true}},
				},
				{
					Name:        "download",
					Description: "Download a sound from a URL.",
					Params:      []Param{{Name: "url", Required: true}},
				},
			},
			Errors: []ErrorCode{{Code: -1, Message: "sound not found"}},
		},
	)
}
