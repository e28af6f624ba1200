package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	piecedomain "github.com/stitchfold/wardrobe/internal/piece/domain"
)

func (s *Server) createPiece(c *gin.Context) {
	var req piecedomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("request", "invalid_request", "invalid request body"))
		return
	}

	resp, err := s.pieceSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (s *Server) listPieces(c *gin.Context) {
	showInactive, err := parseShowInactive(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	sortBy, orderBy := s.parseSort(c)
	limit, offset, err := s.parsePagination(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.pieceSvc.List(c.Request.Context(), piecedomain.ListRequest{
		Query:        strings.TrimSpace(c.Query("q")),
		ShowInactive: showInactive,
		SortBy:       sortBy,
		OrderBy:      orderBy,
		Limit:        limit,
		Offset:       offset,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pieces": resp})
}

func (s *Server) getPiece(c *gin.Context) {
	resp, err := s.pieceSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) updatePiece(c *gin.Context) {
	var req piecedomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("request", "invalid_request", "invalid request body"))
		return
	}
	req.ID = c.Param("id")

	resp, err := s.pieceSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) deactivatePiece(c *gin.Context) {
	resp, err := s.pieceSvc.Deactivate(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
