package handlers

import (
	"github.com/gin-gonic/gin"

	"vcbot/internal/domain/billtype"
	"vcbot/internal/domain/reference"
	"vcbot/internal/infrastructure/http/v1/dto"
)

// ReferenceHandler exposes the reference allocator.
type ReferenceHandler struct {
	base *BaseHandler
	refs *reference.Service
}

// NewReferenceHandler creates a reference handler.
func NewReferenceHandler(base *BaseHandler, refs *reference.Service) *ReferenceHandler {
	return &ReferenceHandler{base: base, refs: refs}
}

// Allocate issues the next reference number for a bill type.
// POST /api/v1/references/:type/allocate
func (h *ReferenceHandler) Allocate(c *gin.Context) {
	bt, err := billtype.Parse(c.Param("type"))
	if err != nil {
		h.base.Error(c, err)
		return
	}

	rec, err := h.refs.Allocate(c.Request.Context(), bt)
	if err != nil {
		h.base.Error(c, err)
		return
	}
	h.base.Created(c, dto.FromReference(rec))
}

// Override sets a bill type's counter to an explicit value.
// POST /api/v1/references/:type/override
func (h *ReferenceHandler) Override(c *gin.Context) {
	bt, err := billtype.Parse(c.Param("type"))
	if err != nil {
		h.base.Error(c, err)
		return
	}

	var req dto.OverrideReferenceRequest
	if !h.base.BindJSON(c, &req) {
		return
	}

	rec, err := h.refs.Override(c.Request.Context(), bt, *req.ReferenceNumber)
	if err != nil {
		h.base.Error(c, err)
		return
	}
	h.base.OK(c, dto.FromReference(rec))
}

// Get returns the latest issued number for a bill type.
// GET /api/v1/references/:type
func (h *ReferenceHandler) Get(c *gin.Context) {
	bt, err := billtype.Parse(c.Param("type"))
	if err != nil {
		h.base.Error(c, err)
		return
	}

	rec, err := h.refs.Query(c.Request.Context(), bt)
	if err != nil {
		h.base.Error(c, err)
		return
	}
	h.base.OK(c, dto.FromReference(rec))
}

// List returns all counters.
// GET /api/v1/references
func (h *ReferenceHandler) List(c *gin.Context) {
	refs, err := h.refs.List(c.Request.Context())
	if err != nil {
		h.base.Error(c, err)
		return
	}
	items := dto.FromReferences(refs)
	h.base.OK(c, dto.ListResponse{Items: items, Count: len(items)})
}
