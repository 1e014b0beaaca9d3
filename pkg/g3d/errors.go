package g3d

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Error kinds. Concrete errors wrap one of these so callers can branch with
// errors.Is.
var (
	// ErrFormat reports a malformed descriptor string or header.
	ErrFormat = errors.New("g3d: format error")

	// ErrSchemaViolation reports an attribute set that breaks the G3D schema:
	// missing or duplicate canonical attributes, wrong element layouts,
	// cardinality mismatches, out-of-range indices or a broken face partition.
	ErrSchemaViolation = errors.New("g3d: schema violation")

	// ErrUnsupportedConversion reports a cast with no rule in the lattice.
	ErrUnsupportedConversion = errors.New("g3d: unsupported conversion")
)

func formatErrorf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrFormat, format, args...)
}

func schemaErrorf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrSchemaViolation, format, args...)
}

func conversionError(src Layout, target string) error {
	return errors.Wrapf(ErrUnsupportedConversion, "cannot view %s as %s", src, target)
}

// Violation is a single finding produced by Validate.
type Violation struct {
	Key     Key    // attribute the finding is about (zero for container-level findings)
	Message string // human-readable description
}

func (v Violation) String() string {
	if v.Key == (Key{}) {
		return v.Message
	}
	return fmt.Sprintf("%s: %s", v.Key, v.Message)
}

// ValidationErrors collects every violation found by a validation pass.
// It matches ErrSchemaViolation under errors.Is.
type ValidationErrors struct {
	Violations []Violation
}

func (e *ValidationErrors) Error() string {
	if len(e.Violations) == 1 {
		return fmt.Sprintf("%s: %s", ErrSchemaViolation, e.Violations[0])
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %d violations", ErrSchemaViolation, len(e.Violations))
	for _, v := range e.Violations {
		sb.WriteString("\n  - ")
		sb.WriteString(v.String())
	}
	return sb.String()
}

// Is reports whether target is ErrSchemaViolation.
func (e *ValidationErrors) Is(target error) bool {
	return target == ErrSchemaViolation
}

func (e *ValidationErrors) add(key Key, format string, args ...interface{}) {
	e.Violations = append(e.Violations, Violation{Key: key, Message: fmt.Sprintf(format, args...)})
}

func (e *ValidationErrors) orNil() error {
	if len(e.Violations) == 0 {
		return nil
	}
	return e
}
