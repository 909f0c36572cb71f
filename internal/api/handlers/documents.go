package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/scribehq/scribe/internal/api/middleware"
	"github.com/scribehq/scribe/internal/collab"
	"github.com/scribehq/scribe/internal/store"
	"github.com/scribehq/scribe/pkg/logger"
	"github.com/scribehq/scribe/pkg/types"
)

// BlockSource serves the live block state of a document. The collaboration
// runtime implements it; readers get the in-memory state instead of a
// possibly stale snapshot row.
type BlockSource interface {
	Blocks(ctx context.Context, documentID string) ([]collab.Block, error)
}

type DocumentHandler struct {
	store  *store.Store
	blocks BlockSource
}

func NewDocumentHandler(st *store.Store, blocks BlockSource) *DocumentHandler {
	return &DocumentHandler{
		store:  st,
		blocks: blocks,
	}
}

// CreateDocumentRequest represents document creation
type CreateDocumentRequest struct {
	Title  string `json:"title" binding:"required"`
	TeamID string `json:"teamId"`
}

// CreateDocument handles POST /v1/documents
func (h *DocumentHandler) CreateDocument(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var req CreateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: err.Error()})
		return
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "title must not be blank"})
		return
	}

	doc, err := h.store.CreateDocument(c.Request.Context(), title, req.TeamID, userID)
	if err != nil {
		logger.Errorf("CreateDocument: %v", err)
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "failed to create document"})
		return
	}

	c.JSON(http.StatusOK, doc)
}

// ListDocuments handles GET /v1/documents
func (h *DocumentHandler) ListDocuments(c *gin.Context) {
	docs, err := h.store.ListDocuments(c.Request.Context())
	if err != nil {
		logger.Errorf("ListDocuments: %v", err)
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "failed to list documents"})
		return
	}
	if docs == nil {
		docs = []store.Document{}
	}
	c.JSON(http.StatusOK, gin.H{"documents": docs})
}

// GetDocument handles GET /v1/documents/:id
func (h *DocumentHandler) GetDocument(c *gin.Context) {
	doc, err := h.store.GetDocument(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, types.ErrorResponse{Error: "document not found"})
		return
	}
	if err != nil {
		logger.Errorf("GetDocument: %v", err)
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "failed to get document"})
		return
	}
	c.JSON(http.StatusOK, doc)
}

// DeleteDocument handles DELETE /v1/documents/:id
func (h *DocumentHandler) DeleteDocument(c *gin.Context) {
	err := h.store.DeleteDocument(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, types.ErrorResponse{Error: "document not found"})
		return
	}
	if err != nil {
		logger.Errorf("DeleteDocument: %v", err)
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "failed to delete document"})
		return
	}
	c.JSON(http.StatusOK, types.SuccessResponse{Success: true})
}

// GetDocumentBlocks handles GET /v1/documents/:id/blocks
//
// The snapshot clients load before joining the live session.
func (h *DocumentHandler) GetDocumentBlocks(c *gin.Context) {
	id := c.Param("id")

	if _, err := h.store.GetDocument(c.Request.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, types.ErrorResponse{Error: "document not found"})
			return
		}
		logger.Errorf("GetDocumentBlocks: %v", err)
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "failed to get document"})
		return
	}

	blocks, err := h.blocks.Blocks(c.Request.Context(), id)
	if err != nil {
		logger.Errorf("GetDocumentBlocks: %v", err)
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "failed to load blocks"})
		return
	}
	if blocks == nil {
		blocks = []collab.Block{}
	}
	c.JSON(http.StatusOK, gin.H{"documentId": id, "blocks": blocks})
}
