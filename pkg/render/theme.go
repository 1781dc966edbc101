package render

import (
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"

	theme "github.com/goliatone/go-theme"
)

// Theme is a resolved go-theme selection flattened for renderers: template
// overrides keyed by partial name, design tokens and the CSS custom
// properties derived from them.
type Theme struct {
	Name     string
	Variant  string
	Partials map[string]string
	Tokens   map[string]string
	CSSVars  map[string]string
	Assets   map[string]string
}

// ResolveTheme selects a theme and merges the variant overrides over the
// base manifest.
func ResolveTheme(selector theme.ThemeSelector, name, variant string) (*Theme, error) {
	if selector == nil {
		return nil, errors.New("render: theme selector is nil")
	}
	selection, err := selector.Select(name, variant)
	if err != nil {
		return nil, fmt.Errorf("render: select theme %q/%q: %w", name, variant, err)
	}
	return ThemeFromSelection(selection), nil
}

// ThemeFromSelection flattens a go-theme selection. A nil selection or
// manifest yields nil.
func ThemeFromSelection(selection *theme.Selection) *Theme {
	if selection == nil || selection.Manifest == nil {
		return nil
	}
	manifest := selection.Manifest
	out := &Theme{
		Name:     selection.Theme,
		Variant:  selection.Variant,
		Partials: mergeStrings(manifest.Templates, nil),
		Tokens:   mergeStrings(manifest.Tokens, nil),
		Assets:   assetURLs(manifest.Assets.Prefix, manifest.Assets.Files, nil),
	}
	if out.Name == "" {
		out.Name = manifest.Name
	}
	if v, ok := manifest.Variants[selection.Variant]; ok {
		out.Partials = mergeStrings(out.Partials, v.Templates)
		out.Tokens = mergeStrings(out.Tokens, v.Tokens)
		prefix := v.Assets.Prefix
		if prefix == "" {
			prefix = manifest.Assets.Prefix
		}
		out.Assets = assetURLs(prefix, v.Assets.Files, out.Assets)
	}
	out.CSSVars = cssVars(out.Tokens)
	return out
}

// CSSVarsStyle renders the CSS custom properties as an inline style value
// with keys in sorted order.
func (t *Theme) CSSVarsStyle() string {
	if t == nil || len(t.CSSVars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(t.CSSVars))
	for key := range t.CSSVars {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, key+": "+t.CSSVars[key])
	}
	return strings.Join(parts, "; ")
}

// PartialsOrNil returns the partial overrides of t.
func (t *Theme) PartialsOrNil() map[string]string {
	if t == nil {
		return nil
	}
	return t.Partials
}

func cssVars(tokens map[string]string) map[string]string {
	if len(tokens) == 0 {
		return nil
	}
	out := make(map[string]string, len(tokens))
	for key, value := range tokens {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		if !strings.HasPrefix(key, "--") {
			key = "--" + strings.ReplaceAll(key, ".", "-")
		}
		out[key] = value
	}
	return out
}

func assetURLs(prefix string, files, base map[string]string) map[string]string {
	out := mergeStrings(base, nil)
	for key, file := range files {
		if out == nil {
			out = make(map[string]string, len(files))
		}
		if prefix != "" && !strings.HasPrefix(file, "/") && !strings.Contains(file, "://") {
			file = path.Join(prefix, file)
		}
		out[key] = file
	}
	return out
}

func mergeStrings(base, overrides map[string]string) map[string]string {
	if len(base) == 0 && len(overrides) == 0 {
		return nil
	}
	out := make(map[string]string, len(base)+len(overrides))
	for key, value := range base {
		out[key] = value
	}
	for key, value := range overrides {
		out[key] = value
	}
	return out
}
