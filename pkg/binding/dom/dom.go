// Package dom binds a parsed HTML form to the binding package. Controls are
// the input, textarea and select elements carrying a data-field attribute;
// repeating containers are located by id.
package dom

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/goliatone/go-sheetform/pkg/binding"
)

// FieldAttr is the attribute carrying a control's entity path.
const FieldAttr = "data-field"

// SequenceAttr marks a row container with the base path of its sequence.
const SequenceAttr = "data-sequence"

// Document is a parsed HTML tree. It may hold a complete page or a
// fragment.
type Document struct {
	root     *html.Node
	fragment bool
}

var _ binding.Form = (*Document)(nil)

// Parse reads a complete HTML document.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("dom: parse document: %w", err)
	}
	return &Document{root: root}, nil
}

// ParseFragment parses markup as the content of a body element, which is
// what the form builder produces.
func ParseFragment(markup string) (*Document, error) {
	nodes, err := html.ParseFragment(strings.NewReader(markup), bodyContext())
	if err != nil {
		return nil, fmt.Errorf("dom: parse fragment: %w", err)
	}
	root := &html.Node{Type: html.DocumentNode}
	for _, node := range nodes {
		root.AppendChild(node)
	}
	return &Document{root: root, fragment: true}, nil
}

// Controls returns every bound control in document order.
func (d *Document) Controls() []binding.Control {
	if d == nil || d.root == nil {
		return nil
	}
	var out []binding.Control
	walk(d.root, func(n *html.Node) bool {
		if control, ok := newControl(n); ok {
			out = append(out, control)
		}
		return true
	})
	return out
}

// ElementByID returns the first element with the given id.
func (d *Document) ElementByID(id string) (*html.Node, bool) {
	if d == nil || d.root == nil || id == "" {
		return nil, false
	}
	var found *html.Node
	walk(d.root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && attr(n, "id") == id {
			found = n
			return false
		}
		return true
	})
	return found, found != nil
}

// ReplaceChildren clears the element with the given id and fills it with
// markup. Clearing first keeps repeated materialisation from duplicating
// rows. A missing container is a no-op and reports false.
func (d *Document) ReplaceChildren(id, markup string) (bool, error) {
	container, ok := d.ElementByID(id)
	if !ok {
		return false, nil
	}
	nodes, err := html.ParseFragment(strings.NewReader(markup), container)
	if err != nil {
		return false, fmt.Errorf("dom: parse rows for %q: %w", id, err)
	}
	for child := container.FirstChild; child != nil; {
		next := child.NextSibling
		container.RemoveChild(child)
		child = next
	}
	for _, node := range nodes {
		container.AppendChild(node)
	}
	return true, nil
}

// ApplySubmission copies submitted form values into the controls the way a
// browser would have produced them: a checkbox is checked only when its
// name was submitted, other controls take the submitted value when present.
func (d *Document) ApplySubmission(values url.Values) {
	for _, c := range d.Controls() {
		control := c.(*nodeControl)
		name := control.name()
		switch control.Type() {
		case binding.ControlCheckbox:
			control.SetChecked(submittedTruthy(values[name]))
		default:
			if submitted, ok := values[name]; ok && len(submitted) > 0 {
				control.SetValue(submitted[len(submitted)-1])
			}
		}
	}
}

// Render writes the tree back out as HTML.
func (d *Document) Render(w io.Writer) error {
	if d == nil || d.root == nil {
		return errors.New("dom: document is nil")
	}
	if !d.fragment {
		return html.Render(w, d.root)
	}
	for child := d.root.FirstChild; child != nil; child = child.NextSibling {
		if err := html.Render(w, child); err != nil {
			return err
		}
	}
	return nil
}

func (d *Document) String() string {
	var buf bytes.Buffer
	if err := d.Render(&buf); err != nil {
		return ""
	}
	return buf.String()
}

func submittedTruthy(values []string) bool {
	for _, value := range values {
		if binding.SubmittedTruthy(value) {
			return true
		}
	}
	return false
}

func bodyContext() *html.Node {
	return &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
}

func walk(n *html.Node, visit func(*html.Node) bool) bool {
	if !visit(n) {
		return false
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if !walk(child, visit) {
			return false
		}
	}
	return true
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return true
		}
	}
	return false
}

func setAttr(n *html.Node, key, value string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = value
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: value})
}

func removeAttr(n *html.Node, key string) {
	out := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			continue
		}
		out = append(out, a)
	}
	n.Attr = out
}

func textContent(n *html.Node) string {
	var b strings.Builder
	walk(n, func(node *html.Node) bool {
		if node.Type == html.TextNode {
			b.WriteString(node.Data)
		}
		return true
	})
	return b.String()
}
