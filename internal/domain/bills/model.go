// Package bills provides the bill catalog: legislative texts, their PDFs and
// metadata, numbered through the reference allocator.
package bills

import (
	"context"
	"fmt"
	"strings"
	"time"

	"vcbot/internal/core/apperror"
	"vcbot/internal/domain/billtype"
)

// Bill represents a bill with all its metadata.
type Bill struct {
	// Identifier is the canonical id, e.g. "hr-123".
	Identifier string `json:"identifier"`

	Title           string            `json:"title"`
	BillType        billtype.BillType `json:"bill_type"`
	ReferenceNumber int64             `json:"reference_number"`
	TextContent     string            `json:"text_content"`
	PDFPath         string            `json:"pdf_path,omitempty"`
	Sponsor         string            `json:"sponsor,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
	Metadata        map[string]string `json:"metadata,omitempty"`
}

// FilenameBase returns the base filename for this bill, e.g. "hr123".
func (b *Bill) FilenameBase() string {
	return fmt.Sprintf("%s%d", b.BillType, b.ReferenceNumber)
}

// Validate checks the bill before persistence.
func (b *Bill) Validate(_ context.Context) error {
	if !b.BillType.Valid() {
		return apperror.NewInvalidBillType(b.BillType.String())
	}
	if b.ReferenceNumber <= 0 {
		return apperror.NewValidation("reference number must be positive").
			WithDetail("field", "referenceNumber")
	}
	if strings.TrimSpace(b.Title) == "" {
		return apperror.NewValidation("title is required").
			WithDetail("field", "title")
	}
	if strings.TrimSpace(b.TextContent) == "" {
		return apperror.NewValidation("text content is required").
			WithDetail("field", "textContent")
	}
	return nil
}

// MakeIdentifier builds the canonical bill identifier, e.g. "hr-123".
func MakeIdentifier(bt billtype.BillType, number int64) string {
	return fmt.Sprintf("%s-%d", bt, number)
}

// ParseIdentifier splits a canonical identifier into its parts.
func ParseIdentifier(id string) (billtype.BillType, int64, error) {
	parts := strings.SplitN(strings.TrimSpace(id), "-", 2)
	if len(parts) != 2 {
		return "", 0, apperror.NewValidation("bill identifier must look like hr-123").
			WithDetail("identifier", id)
	}
	bt, err := billtype.Parse(parts[0])
	if err != nil {
		return "", 0, err
	}
	var number int64
	if _, err := fmt.Sscanf(parts[1], "%d", &number); err != nil || number <= 0 {
		return "", 0, apperror.NewValidation("bill identifier must end with a positive number").
			WithDetail("identifier", id)
	}
	return bt, number, nil
}
