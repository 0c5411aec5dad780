// Package datum converts the host's opaque machine words to and from typed
// Go values.
//
// A Value pairs a word with its out-of-band null flag. Primitive numeric
// conversions are direct bit reinterpretations of the word. Buffer-backed
// conversions decode one of the four recognized variable-length header
// layouts, normalizing compressed or out-of-line buffers through the host
// first. One-dimensional arrays deconstruct into a parallel word array and
// null bitmap, with typed-slice views for fixed-width element types.
//
// Conversions that allocate charge the current region; see package arena for
// ownership rules.
package datum
