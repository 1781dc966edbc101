package schema

import (
	"embed"
	"io/fs"
)

//go:embed defaults/*.yaml
var embeddedDefaults embed.FS

// DefaultsFS exposes the built-in player and monster documents.
func DefaultsFS() fs.FS {
	sub, err := fs.Sub(embeddedDefaults, "defaults")
	if err != nil {
		return embeddedDefaults
	}
	return sub
}

// Defaults loads the built-in documents into a fresh store.
func Defaults() (*Store, error) {
	return loadFS(DefaultsFS(), embeddedSource)
}
