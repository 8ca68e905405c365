package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tieubaoca/medguide-be/database"
	"github.com/tieubaoca/medguide-be/types"
)

type SearchHandler struct {
	vectorDB database.VectorDatabase
	topK     int
}

func NewSearchHandler(vectorDB database.VectorDatabase, topK int) *SearchHandler {
	return &SearchHandler{
		vectorDB: vectorDB,
		topK:     topK,
	}
}

// HandleSearch exposes the vector store directly, useful for inspecting
// what the chat agent would retrieve for a given question.
func (h *SearchHandler) HandleSearch(c *gin.Context) {
	var req types.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  "error",
			Message: "Invalid request",
		})
		return
	}
	if req.Query == "" {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  "error",
			Message: "Query is required",
		})
		return
	}
	limit := req.Limit
	if limit <= 0 {
		limit = h.topK
	}

	docs, err := h.vectorDB.Search(c.Request.Context(), req.Query, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.DataResponse{
			Status:  "error",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, types.DataResponse{
		Status: "success",
		Data: types.SearchResponse{
			Documents: docs,
		},
	})
}
