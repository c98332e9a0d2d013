// Package handle implements the BAM type-handle registry.
//
// A type handle names the declared type of an object in the stream and lists
// its parent types. Handles form a directed acyclic graph (multiple
// inheritance is allowed) and are defined inline, the first time an id is
// referenced. The registry is an id-indexed table: parents are stored as ids
// and every graph walk goes through table lookups with a visited set, so a
// malformed cyclic graph cannot recurse forever.
//
// Id 0 is the null handle. It is never defined and never looked up.
package handle
