// Package manifold provides a CGo-based geometry kernel binding to the
// Manifold library (https://github.com/elalish/manifold). Manifold provides
// guaranteed-manifold mesh boolean operations, and its meshes arrive as
// indexed triangle G3D geometry without welding.
//
// The binding requires the Manifold C library (manifoldc) and is only
// compiled with -tags=manifold. Without the tag New returns ErrUnavailable.
package manifold

import "errors"

// ErrUnavailable is returned by New when the package was built without the
// manifold tag.
var ErrUnavailable = errors.New("manifold kernel not available: build with -tags=manifold")
