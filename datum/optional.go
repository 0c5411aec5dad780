package datum

// ToOptional lifts a conversion over nullable words: a null word decodes to
// nil, anything else recurses into the inner conversion.
func ToOptional[T any](v Value, conv func(Value) (T, error)) (*T, error) {
	if v.null {
		return nil, nil
	}
	t, err := conv(v)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// FromOptional maps an absent value to a null word unconditionally.
func FromOptional[T any](v *T, conv func(T) Value) Value {
	if v == nil {
		return Null()
	}
	return conv(*v)
}
