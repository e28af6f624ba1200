package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	vendordomain "github.com/stitchfold/wardrobe/internal/vendors/domain"
)

func (s *Server) createVendor(c *gin.Context) {
	var req vendordomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("request", "invalid_request", "invalid request body"))
		return
	}

	resp, err := s.vendorSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (s *Server) listVendors(c *gin.Context) {
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

	resp, err := s.vendorSvc.List(c.Request.Context(), vendordomain.ListRequest{
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
	c.JSON(http.StatusOK, gin.H{"vendors": resp})
}

func (s *Server) getVendor(c *gin.Context) {
	resp, err := s.vendorSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) updateVendor(c *gin.Context) {
	var req vendordomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("request", "invalid_request", "invalid request body"))
		return
	}
	req.ID = c.Param("id")

	resp, err := s.vendorSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) deactivateVendor(c *gin.Context) {
	resp, err := s.vendorSvc.Deactivate(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
