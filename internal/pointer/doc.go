// Package pointer implements BAM object references and the shared-array
// pool.
//
// Object ids are written at an adaptive width. A stream starts with 16-bit
// pointers; the first time the value 0xFFFF is read (or written) the stream
// switches to 32-bit pointers for the rest of the pass. 0xFFFF is a normal
// id as well as the trigger, so it is returned to the caller as is. The read
// and write directions keep independent state.
//
// Arrays shared between objects are interned in a Pool under a 16-bit key.
// The first physical occurrence of a key carries the element count and the
// elements; every later occurrence is the bare key and resolves to the same
// slice, so mutations through one reference are visible through the others.
package pointer
