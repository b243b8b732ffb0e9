package symtree

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Sentinel errors for reconstruction and access.
var (
	// ErrSupplyExhausted indicates the generic tree has more terminal positions than tokens.
	ErrSupplyExhausted = errors.New("token supply exhausted")
	// ErrSupplyNotDrained indicates tokens were left over after reconstruction.
	ErrSupplyNotDrained = errors.New("token supply not drained")
	// ErrVariantMismatch indicates an accessor was used on the wrong tree variant.
	ErrVariantMismatch = errors.New("tree variant mismatch")
	// ErrTooDeep indicates the generic tree exceeds the configured depth limit.
	ErrTooDeep = errors.New("parse tree too deep")
	// ErrTagMismatch indicates a token whose tag disagrees with its terminal category.
	ErrTagMismatch = errors.New("token tag does not match terminal category")
	// ErrNilCursor indicates Reconstruct was called without a token cursor.
	ErrNilCursor = errors.New("nil token cursor")
)

// VariantError reports an accessor applied to the wrong variant.
type VariantError struct {
	Expected Variant
	Actual   Variant
}

func (e *VariantError) Error() string {
	return fmt.Sprintf("expected %s, found %s", e.Expected, e.Actual)
}

// Unwrap returns ErrVariantMismatch.
func (e *VariantError) Unwrap() error {
	return ErrVariantMismatch
}

// ReconstructError locates a reconstruction failure in the generic tree.
// Path holds child indices from the root.
type ReconstructError struct {
	Err  error
	Path []int
}

func (e *ReconstructError) Error() string {
	return "reconstruct at " + FormatPath(e.Path) + ": " + e.Err.Error()
}

func (e *ReconstructError) Unwrap() error {
	return e.Err
}

// FormatPath renders a child-index path as "root/0/2".
func FormatPath(path []int) string {
	var sb strings.Builder

	sb.WriteString("root")

	for _, idx := range path {
		sb.WriteByte('/')
		sb.WriteString(strconv.Itoa(idx))
	}

	return sb.String()
}
