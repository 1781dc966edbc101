package binding

// MemoryForm is a headless Form backed by plain structs. It is built from the
// control specs the form builder returns and is what the tests, the terminal
// editor and JSON clients use in place of a parsed document.
type MemoryForm struct {
	controls []*MemoryControl
}

// NewMemoryForm creates one control per spec, in order.
func NewMemoryForm(specs []ControlSpec) *MemoryForm {
	form := &MemoryForm{controls: make([]*MemoryControl, 0, len(specs))}
	for _, spec := range specs {
		form.controls = append(form.controls, &MemoryControl{spec: spec})
	}
	return form
}

// Controls implements Form.
func (f *MemoryForm) Controls() []Control {
	out := make([]Control, 0, len(f.controls))
	for _, control := range f.controls {
		out = append(out, control)
	}
	return out
}

// Control returns the first control bound to path.
func (f *MemoryForm) Control(path string) (*MemoryControl, bool) {
	for _, control := range f.controls {
		if control.spec.Path == path {
			return control, true
		}
	}
	return nil, false
}

// Set assigns a display value to the control bound at path, reporting
// whether such a control exists. Checkboxes read value with SubmittedTruthy.
func (f *MemoryForm) Set(path, value string) bool {
	control, ok := f.Control(path)
	if !ok {
		return false
	}
	if control.spec.Type == ControlCheckbox {
		control.SetChecked(SubmittedTruthy(value))
		return true
	}
	control.SetValue(value)
	return true
}

// MemoryControl is the Control used by MemoryForm.
type MemoryControl struct {
	spec    ControlSpec
	value   string
	checked bool
}

func (c *MemoryControl) Spec() ControlSpec       { return c.spec }
func (c *MemoryControl) Path() string            { return c.spec.Path }
func (c *MemoryControl) Type() ControlType       { return c.spec.Type }
func (c *MemoryControl) Value() string           { return c.value }
func (c *MemoryControl) SetValue(value string)   { c.value = value }
func (c *MemoryControl) Checked() bool           { return c.checked }
func (c *MemoryControl) Sequence() string        { return c.spec.Sequence }
func (c *MemoryControl) SetChecked(checked bool) { c.checked = checked }
