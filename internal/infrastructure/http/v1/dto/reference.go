package dto

import (
	"time"

	"vcbot/internal/domain/reference"
)

// OverrideReferenceRequest sets a counter to an explicit value.
// A pointer keeps zero distinguishable from absent.
type OverrideReferenceRequest struct {
	ReferenceNumber *int64 `json:"reference_number" binding:"required"`
}

// ReferenceResponse is one bill-type counter.
type ReferenceResponse struct {
	BillType        string    `json:"bill_type"`
	ReferenceNumber int64     `json:"reference_number"`
	Display         string    `json:"display"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// FromReference converts a domain record.
func FromReference(r reference.Reference) ReferenceResponse {
	return ReferenceResponse{
		BillType:        r.BillType.String(),
		ReferenceNumber: r.Number,
		Display:         r.Display(),
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

// FromReferences converts a list of domain records.
func FromReferences(refs []reference.Reference) []ReferenceResponse {
	out := make([]ReferenceResponse, len(refs))
	for i, r := range refs {
		out[i] = FromReference(r)
	}
	return out
}
