package dispatch

import "encoding/json"

// contextKey serializes an input into the string used as its per-set
// cache key. encoding/json produces equal output for equal content on
// the supported shapes: map keys are emitted in sorted order and struct
// fields in declaration order. Two inputs that marshal identically are
// treated as the same input even if they differ in ways json cannot
// see (unexported fields, for one).
//
// Inputs json cannot represent at all (functions, channels, cycles)
// return an error; the memoizer reports it as a CacheKeyError instead of
// silently bypassing the cache.
func contextKey[C any](input C) (string, error) {
	b, err := json.Marshal(input)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
