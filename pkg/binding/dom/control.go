package dom

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/goliatone/go-sheetform/pkg/binding"
)

// nodeControl adapts one form element to binding.Control.
type nodeControl struct {
	node *html.Node
	kind binding.ControlType
}

func newControl(n *html.Node) (*nodeControl, bool) {
	if n.Type != html.ElementNode || strings.TrimSpace(attr(n, FieldAttr)) == "" {
		return nil, false
	}
	switch n.DataAtom {
	case atom.Input:
		switch strings.ToLower(attr(n, "type")) {
		case "checkbox":
			return &nodeControl{node: n, kind: binding.ControlCheckbox}, true
		case "number":
			return &nodeControl{node: n, kind: binding.ControlNumber}, true
		default:
			return &nodeControl{node: n, kind: binding.ControlText}, true
		}
	case atom.Textarea:
		return &nodeControl{node: n, kind: binding.ControlTextarea}, true
	case atom.Select:
		return &nodeControl{node: n, kind: binding.ControlSelect}, true
	}
	return nil, false
}

func (c *nodeControl) Path() string {
	return strings.TrimSpace(attr(c.node, FieldAttr))
}

// Sequence returns the base path declared on the control or, failing that,
// by the closest enclosing row container.
func (c *nodeControl) Sequence() string {
	for n := c.node; n != nil; n = n.Parent {
		if n.Type == html.ElementNode && hasAttr(n, SequenceAttr) {
			return strings.TrimSpace(attr(n, SequenceAttr))
		}
	}
	return ""
}

func (c *nodeControl) Type() binding.ControlType {
	return c.kind
}

// name is the submission key, falling back to the bound path.
func (c *nodeControl) name() string {
	if name := attr(c.node, "name"); name != "" {
		return name
	}
	return c.Path()
}

func (c *nodeControl) Value() string {
	switch c.kind {
	case binding.ControlTextarea:
		return textContent(c.node)
	case binding.ControlSelect:
		options := c.options()
		for _, option := range options {
			if hasAttr(option, "selected") {
				return optionValue(option)
			}
		}
		if len(options) > 0 {
			return optionValue(options[0])
		}
		return ""
	default:
		return attr(c.node, "value")
	}
}

func (c *nodeControl) SetValue(value string) {
	switch c.kind {
	case binding.ControlTextarea:
		for child := c.node.FirstChild; child != nil; {
			next := child.NextSibling
			c.node.RemoveChild(child)
			child = next
		}
		if value != "" {
			c.node.AppendChild(&html.Node{Type: html.TextNode, Data: value})
		}
	case binding.ControlSelect:
		for _, option := range c.options() {
			if optionValue(option) == value {
				setAttr(option, "selected", "")
			} else {
				removeAttr(option, "selected")
			}
		}
	default:
		setAttr(c.node, "value", value)
	}
}

func (c *nodeControl) Checked() bool {
	return hasAttr(c.node, "checked")
}

func (c *nodeControl) SetChecked(checked bool) {
	if checked {
		setAttr(c.node, "checked", "")
		return
	}
	removeAttr(c.node, "checked")
}

func (c *nodeControl) options() []*html.Node {
	var out []*html.Node
	walk(c.node, func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.DataAtom == atom.Option {
			out = append(out, n)
		}
		return true
	})
	return out
}

func optionValue(option *html.Node) string {
	if hasAttr(option, "value") {
		return attr(option, "value")
	}
	return strings.TrimSpace(textContent(option))
}
