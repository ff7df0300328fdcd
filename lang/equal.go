package lang

import (
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

var equalOpts = []cmp.Option{cmpopts.EquateEmpty()}

// Equal reports whether a and b are deeply equal. Nil and empty slices or
// maps are treated as equal.
//
// Equal panics on structs with unexported fields, like cmp.Equal.
func Equal(a, b any) bool {
	return cmp.Equal(a, b, equalOpts...)
}

// Diff returns a human readable report of the differences between a and b,
// or "" when they are Equal.
func Diff(a, b any) string {
	return cmp.Diff(a, b, equalOpts...)
}
