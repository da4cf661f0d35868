// Package reference provides the reference-number allocator: the sole
// authority for issuing and overriding per-bill-type sequence numbers.
package reference

import (
	"fmt"
	"time"

	"vcbot/internal/domain/billtype"
)

// Reference is one persisted counter entry per bill type.
type Reference struct {
	// BillType is the unique key within the store.
	BillType billtype.BillType `json:"bill_type"`

	// Number is the last number issued for this type (0 before first allocation).
	// Non-decreasing over the type's lifetime except under an explicit
	// administrative override.
	Number int64 `json:"reference_number"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Display returns the conventional chat form, e.g. "HR 123".
func (r Reference) Display() string {
	return fmt.Sprintf("%s %d", r.BillType.Display(), r.Number)
}
