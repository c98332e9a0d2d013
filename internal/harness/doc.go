// Package harness runs container scenarios.
//
// A scenario describes a synthetic container (header, type handles,
// objects, file data) and what a reader should observe after loading it.
// Scenarios are YAML or CUE files; CUE files are validated against the
// embedded schema in schema.cue before decoding.
//
// Run builds the container through the bam write path, loads the bytes back
// into a fresh File and checks the expectations:
//
//   - objects: number of object records
//   - handles: handle names in registration order
//   - unknown_handles: type names that had no interpreter
//   - related: names returned for a type and its subtypes
//   - of_type: ids of live objects of a type, in stream order
//   - roundtrip: writing the loaded file reproduces the built bytes
//
// Types listed under interpreters get a pass-through interpreter that keeps
// the whole payload as extra data, so they show up as live objects.
//
// Example YAML scenario:
//
//	name: root_child
//	description: Child derives from Root
//	version: [6, 30]
//	stdfloat: true
//	interpreters: [Root]
//	handles:
//	  - {id: 1, name: Root}
//	  - {id: 2, name: Child, parents: [1]}
//	objects:
//	  - {id: 1, handle: 1, payload: "2a000000"}
//	  - {id: 2, handle: 2, payload: "aabb"}
//	expect:
//	  related: {Root: [Root, Child]}
//	  of_type: {Root: [1]}
//	  roundtrip: true
package harness
