// Package dump renders loaded containers for inspection and comparison.
//
// A Summary is a stable, ordered view of a container's handles, objects
// and file data. Its canonical JSON form (sorted keys, NFC strings, no HTML
// escaping, no floats) is byte-stable across runs, which makes it suitable
// for golden files and for content digests. Payloads are never embedded;
// each is reduced to its size and a domain-separated SHA-256 digest.
//
// The text form mirrors the classic handle and object listings:
//
//	1: Root
//	2: Child <- 1
//
//	1: Root
//	2: data, Child (2 bytes)
package dump
