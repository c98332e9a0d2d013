// Package bam reads and writes BAM containers: a magic-prefixed, versioned
// stream of length-framed records, each carrying a typed object or a
// control opcode.
//
// ARCHITECTURE:
//
// A File owns all per-file state: the header, the type-handle table, the
// ordered raw object records, the live interpreter instances, the shared
// array pool, and raw file-data blocks. Load and Write are each one linear
// pass over a fully buffered byte slice.
//
// Load:
//  1. Check the 6-byte magic and decode the version-gated header
//  2. Reset every pass-scoped table and pointer width flag
//  3. Decode records until the buffer is exhausted (stream.go)
//  4. For each object record, resolve its handle, read its id, keep the
//     payload, and hand it to the interpreter registered for its type name
//
// Write mirrors Load: push for the first object, adjunct for the rest,
// file-data records, then a closing pop when the version has opcodes.
//
// INTERPRETERS:
//
// Per-type payload decoding is pluggable. A Registry maps type names to
// constructors; an object whose type has no constructor is kept as an opaque
// record and written back byte for byte. Interpreters embed Base, which
// keeps unconsumed payload bytes as extra data and re-emits them after the
// interpreter's own output, so newer fields survive a load/save cycle
// through an older interpreter.
//
// CONCURRENCY:
//
// A File is not safe for concurrent use. Registry mutation is not
// synchronized either; register types at start-up before any loading.
package bam
