package core

import (
	"context"
	"errors"
	"fmt"
)

// ErrLeafType is returned when a flattened leaf does not have the requested type.
var ErrLeafType = errors.New("unexpected leaf type")

// AssertLeaf converts a flattened leaf to U. A nil leaf is accepted when U is an interface type.
func AssertLeaf[U any](_ context.Context, leaf any) (U, error) {
	u, ok := leaf.(U)
	if !ok && (leaf != nil || any(u) != nil) {
		return u, fmt.Errorf("%w: got %T, want %T", ErrLeafType, leaf, u)
	}
	return u, nil
}
