// Package pins persists subtype tag assignments.
//
// Subtype tags are handed out in first-seen order, so two processes that
// touch derived types in a different order would disagree on the wire. A
// pin file fixes the assignment ahead of time:
//
//	version: "1"
//	subtypes:
//	  - base: example.com/shapes.Shape
//	    derived:
//	      - type: example.com/shapes.Circle
//	        tag: 500
//	      - type: example.com/shapes.Square
//	        tag: 501
//
// Type names are qualified as "<package path>.<name>". Pin files are
// append-only: Merge keeps every existing assignment and gives new derived
// types the next free tag, so regenerating a file never moves a tag that
// is already on the wire.
package pins
