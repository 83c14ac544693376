package encoding

// EncodeKey concatenates encoded terms in the given order into a single
// byte-comparable key, the form every index stores its rows under. Because
// EncodedTerm is fixed-width, lexicographic byte comparison on the
// concatenation is equivalent to comparing the terms position by position,
// which is what makes prefix scans over a bound pattern correct.
func EncodeKey(terms ...EncodedTerm) []byte {
	out := make([]byte, 0, len(terms)*EncodedTermSize)
	for _, t := range terms {
		out = append(out, t[:]...)
	}
	return out
}

// SplitKey is the inverse of EncodeKey for a key known to hold n terms.
func SplitKey(key []byte, n int) ([]EncodedTerm, bool) {
	if len(key) != n*EncodedTermSize {
		return nil, false
	}
	out := make([]EncodedTerm, n)
	for i := range out {
		copy(out[i][:], key[i*EncodedTermSize:(i+1)*EncodedTermSize])
	}
	return out, true
}
