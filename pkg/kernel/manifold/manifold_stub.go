//go:build !manifold

package manifold

import "github.com/chazu/g3d/pkg/kernel"

// New reports ErrUnavailable.
func New() (kernel.Kernel, error) {
	return nil, ErrUnavailable
}
