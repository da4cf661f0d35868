package handlers

import (
	"io"

	"github.com/gin-gonic/gin"

	"vcbot/internal/core/apperror"
	"vcbot/internal/domain/bills"
	"vcbot/internal/domain/billtype"
	"vcbot/internal/infrastructure/http/v1/dto"
)

// maxPDFSize bounds uploaded PDF bodies.
const maxPDFSize = 32 << 20

// BillHandler exposes the bill catalog.
type BillHandler struct {
	base  *BaseHandler
	bills *bills.Service
}

// NewBillHandler creates a bill handler.
func NewBillHandler(base *BaseHandler, billService *bills.Service) *BillHandler {
	return &BillHandler{base: base, bills: billService}
}

// Create submits a new bill; a reference number is allocated for it.
// POST /api/v1/bills
func (h *BillHandler) Create(c *gin.Context) {
	var req dto.CreateBillRequest
	if !h.base.BindJSON(c, &req) {
		return
	}

	bt, err := billtype.Parse(req.BillType)
	if err != nil {
		h.base.Error(c, err)
		return
	}

	bill, err := h.bills.Create(c.Request.Context(), bills.Draft{
		Title:       req.Title,
		BillType:    bt,
		TextContent: req.TextContent,
		Sponsor:     req.Sponsor,
		Metadata:    req.Metadata,
	})
	if err != nil {
		h.base.Error(c, err)
		return
	}
	h.base.Created(c, dto.FromBill(bill, true))
}

// Get returns one bill with its full text.
// GET /api/v1/bills/:id
func (h *BillHandler) Get(c *gin.Context) {
	bill, err := h.bills.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.base.Error(c, err)
		return
	}
	h.base.OK(c, dto.FromBill(bill, true))
}

// List returns all bills without their text bodies.
// GET /api/v1/bills
func (h *BillHandler) List(c *gin.Context) {
	all, err := h.bills.List(c.Request.Context())
	if err != nil {
		h.base.Error(c, err)
		return
	}

	items := make([]dto.BillResponse, len(all))
	for i, b := range all {
		items[i] = dto.FromBill(b, false)
	}
	h.base.OK(c, dto.ListResponse{Items: items, Count: len(items)})
}

// AttachPDF uploads the rendered PDF for a bill.
// PUT /api/v1/bills/:id/pdf
func (h *BillHandler) AttachPDF(c *gin.Context) {
	content, err := io.ReadAll(io.LimitReader(c.Request.Body, maxPDFSize+1))
	if err != nil {
		h.base.Error(c, apperror.NewValidation("unreadable request body"))
		return
	}
	if len(content) > maxPDFSize {
		h.base.Error(c, apperror.NewValidation("pdf exceeds size limit"))
		return
	}

	bill, err := h.bills.AttachPDF(c.Request.Context(), c.Param("id"), content)
	if err != nil {
		h.base.Error(c, err)
		return
	}
	h.base.OK(c, dto.FromBill(bill, false))
}
