// Package orchestrator wires the sheet pipeline together: fetch an entity,
// build the form from its schema document, bind the values and render; and
// in reverse, bind a submission, harvest the entity and submit it.
package orchestrator
