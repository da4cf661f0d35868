package dto

import (
	"time"

	"vcbot/internal/domain/bills"
)

// CreateBillRequest submits a new bill draft.
type CreateBillRequest struct {
	Title       string            `json:"title" binding:"required"`
	BillType    string            `json:"bill_type" binding:"required"`
	TextContent string            `json:"text_content" binding:"required"`
	Sponsor     string            `json:"sponsor"`
	Metadata    map[string]string `json:"metadata"`
}

// BillResponse is one bill.
type BillResponse struct {
	Identifier      string            `json:"identifier"`
	Title           string            `json:"title"`
	BillType        string            `json:"bill_type"`
	ReferenceNumber int64             `json:"reference_number"`
	TextContent     string            `json:"text_content,omitempty"`
	PDFPath         string            `json:"pdf_path,omitempty"`
	Sponsor         string            `json:"sponsor,omitempty"`
	Metadata        map[string]string `json:"metadata,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// FromBill converts a domain bill. When withText is false the body is
// omitted, keeping list responses small.
func FromBill(b *bills.Bill, withText bool) BillResponse {
	resp := BillResponse{
		Identifier:      b.Identifier,
		Title:           b.Title,
		BillType:        b.BillType.String(),
		ReferenceNumber: b.ReferenceNumber,
		PDFPath:         b.PDFPath,
		Sponsor:         b.Sponsor,
		Metadata:        b.Metadata,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
	if withText {
		resp.TextContent = b.TextContent
	}
	return resp
}
