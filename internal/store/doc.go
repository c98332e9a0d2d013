// Package store provides a SQLite index of loaded BAM containers.
//
// Each indexed container gets a row in files plus its type handles, handle
// parent links, object records and file data blocks. Payloads are not
// stored; objects carry their size and the digest computed by package dump.
// File data blocks are stored verbatim.
//
// # Ordering
//
//   - Files are ordered by seq, a logical counter assigned at index time
//   - Objects and file data keep their stream position
//   - Handles keep their registration order
//
// Type queries resolve subtypes with a recursive CTE over handle_parents,
// the same closure bam.File.FindRelated computes in memory.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
