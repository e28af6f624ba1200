package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	componentdomain "github.com/stitchfold/wardrobe/internal/component/domain"
)

func (s *Server) createComponent(c *gin.Context) {
	req, err := s.bindComponentCreate(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.componentSvc.Create(c.Request.Context(), *req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (s *Server) bindComponentCreate(c *gin.Context) (*componentdomain.CreateRequest, error) {
	if !isMultipart(c) {
		var req componentdomain.CreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			return nil, newValidationError("request", "invalid_request", "invalid request body")
		}
		return &req, nil
	}

	form, err := c.MultipartForm()
	if err != nil {
		return nil, newValidationError("request", "invalid_request", "invalid multipart form")
	}

	req := componentdomain.CreateRequest{
		Brand:       formOptional(form, "brand"),
		Description: formOptional(form, "description"),
		Notes:       formOptional(form, "notes"),
		VendorID:    formOptional(form, "vendor_id"),
		PieceID:     formOptional(form, "piece_id"),
	}
	if name, ok := formLookup(form, "name"); ok {
		req.Name = name
	}
	if raw, ok := formLookup(form, "cost"); ok {
		cost, parseErr := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if parseErr != nil {
			return nil, newValidationError("cost", "invalid_cost", "cost must be an integer")
		}
		req.Cost = cost
	}
	if req.Metadata, err = formMetadata(form, "metadata"); err != nil {
		return nil, err
	}
	if req.Image, req.Thumbnail, err = s.normalizeUpload(form); err != nil {
		return nil, err
	}
	return &req, nil
}

func (s *Server) listComponents(c *gin.Context) {
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

	resp, err := s.componentSvc.List(c.Request.Context(), componentdomain.ListRequest{
		Query:        strings.TrimSpace(c.Query("q")),
		VendorID:     strings.TrimSpace(c.Query("vendor")),
		PieceID:      strings.TrimSpace(c.Query("piece")),
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
	c.JSON(http.StatusOK, gin.H{"components": resp})
}

func (s *Server) getComponent(c *gin.Context) {
	resp, err := s.componentSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) updateComponent(c *gin.Context) {
	req, err := s.bindComponentUpdate(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	req.ID = c.Param("id")

	resp, err := s.componentSvc.Update(c.Request.Context(), *req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) bindComponentUpdate(c *gin.Context) (*componentdomain.UpdateRequest, error) {
	if !isMultipart(c) {
		var req componentdomain.UpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			return nil, newValidationError("request", "invalid_request", "invalid request body")
		}
		return &req, nil
	}

	form, err := c.MultipartForm()
	if err != nil {
		return nil, newValidationError("request", "invalid_request", "invalid multipart form")
	}

	req := componentdomain.UpdateRequest{
		Name:        formOptional(form, "name"),
		Brand:       formOptional(form, "brand"),
		Description: formOptional(form, "description"),
		Notes:       formOptional(form, "notes"),
		VendorID:    formOptional(form, "vendor_id"),
		PieceID:     formOptional(form, "piece_id"),
	}
	if raw, ok := formLookup(form, "cost"); ok {
		cost, parseErr := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if parseErr != nil {
			return nil, newValidationError("cost", "invalid_cost", "cost must be an integer")
		}
		req.Cost = &cost
	}
	if req.Metadata, err = formMetadata(form, "metadata"); err != nil {
		return nil, err
	}
	if req.Image, req.Thumbnail, err = s.normalizeUpload(form); err != nil {
		return nil, err
	}
	return &req, nil
}

func (s *Server) deactivateComponent(c *gin.Context) {
	resp, err := s.componentSvc.Deactivate(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) uploadComponentImage(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		AbortWithError(c, newValidationError("request", "invalid_request", "invalid multipart form"))
		return
	}

	image, thumbnail, err := s.normalizeUpload(form)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if image == nil {
		AbortWithError(c, newValidationError(imageFormField, "missing_image", "image file is required"))
		return
	}

	resp, err := s.componentSvc.Update(c.Request.Context(), componentdomain.UpdateRequest{
		ID:        c.Param("id"),
		Image:     image,
		Thumbnail: thumbnail,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) clearComponentImage(c *gin.Context) {
	resp, err := s.componentSvc.Update(c.Request.Context(), componentdomain.UpdateRequest{
		ID:         c.Param("id"),
		ClearImage: true,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
