// Package template defines the template engine seam used by the sheet
// renderer and the companion server pages. The pongo2 backed implementation
// lives in the gotemplate subpackage.
package template
