package render

// RenderOptions describe per-request data renderers use to customise their
// output without touching the schema document.
type RenderOptions struct {
	// Action and Method end up on the form element. Method defaults to POST.
	Action string
	Method string
	// Hidden carries extra hidden inputs keyed by name.
	Hidden map[string]string
	// SubmitLabel overrides the submit button text.
	SubmitLabel string
	// Staged emits repeating containers empty and reports their
	// configuration for later materialisation.
	Staged bool
	// Theme carries a resolved theme. Nil renders the built-in templates.
	Theme *Theme
}
