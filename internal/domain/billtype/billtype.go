// Package billtype defines the closed set of legislative bill types.
// Every boundary validates against this set; unknown types are rejected,
// never silently created.
package billtype

import (
	"strings"

	"vcbot/internal/core/apperror"
)

// BillType is a closed-set tag identifying a class of reference numbers.
type BillType string

const (
	HR      BillType = "hr"
	S       BillType = "s"
	HRes    BillType = "hres"
	SRes    BillType = "sres"
	HJRes   BillType = "hjres"
	SJRes   BillType = "sjres"
	HConRes BillType = "hconres"
	SConRes BillType = "sconres"
)

// All returns every recognized bill type in display order.
func All() []BillType {
	return []BillType{HR, S, HRes, SRes, HJRes, SJRes, HConRes, SConRes}
}

var known = map[BillType]struct{}{
	HR: {}, S: {}, HRes: {}, SRes: {}, HJRes: {}, SJRes: {}, HConRes: {}, SConRes: {},
}

// Parse converts a string to a BillType. Parsing is case-insensitive and
// trims surrounding whitespace.
func Parse(value string) (BillType, error) {
	bt := BillType(strings.ToLower(strings.TrimSpace(value)))
	if _, ok := known[bt]; !ok {
		return "", apperror.NewInvalidBillType(value)
	}
	return bt, nil
}

// Valid reports whether bt belongs to the recognized set.
func (bt BillType) Valid() bool {
	_, ok := known[bt]
	return ok
}

// String implements fmt.Stringer.
func (bt BillType) String() string {
	return string(bt)
}

// Display returns the conventional uppercase form used in chat output,
// e.g. "HR" for hr, "HJRES" for hjres.
func (bt BillType) Display() string {
	return strings.ToUpper(string(bt))
}
