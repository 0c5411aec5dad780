package datum

import pgruntime "github.com/wippyai/pg-runtime"

// Value is an opaque host word together with its null flag. Nullness is
// out-of-band: a null Value carries no word, and null-tagged words are never
// dereferenced.
type Value struct {
	word pgruntime.Datum
	null bool
}

// FromRaw wraps a word and null flag as they arrive at the binary interface.
func FromRaw(word pgruntime.Datum, isNull bool) Value {
	if isNull {
		return Value{null: true}
	}
	return Value{word: word}
}

// Null returns the null Value.
func Null() Value {
	return Value{null: true}
}

// IsNull reports whether the value is null.
//
// This is consulted directly at the binary interface boundary and must not
// panic: an escaped panic there unwinds into host frames and takes the whole
// backend down.
func (v Value) IsNull() bool { return v.null }

// Word returns the raw word; zero when null.
func (v Value) Word() pgruntime.Datum { return v.word }

// Raw returns the word and null flag for writing back to the host.
func (v Value) Raw() (pgruntime.Datum, bool) { return v.word, v.null }
