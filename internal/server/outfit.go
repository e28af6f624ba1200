package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	outfitdomain "github.com/stitchfold/wardrobe/internal/outfit/domain"
)

func (s *Server) createOutfit(c *gin.Context) {
	req, err := s.bindOutfitCreate(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.outfitSvc.Create(c.Request.Context(), *req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (s *Server) bindOutfitCreate(c *gin.Context) (*outfitdomain.CreateRequest, error) {
	if !isMultipart(c) {
		var req outfitdomain.CreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			return nil, newValidationError("request", "invalid_request", "invalid request body")
		}
		return &req, nil
	}

	form, err := c.MultipartForm()
	if err != nil {
		return nil, newValidationError("request", "invalid_request", "invalid multipart form")
	}

	req := outfitdomain.CreateRequest{
		Description: formOptional(form, "description"),
		Notes:       formOptional(form, "notes"),
		VendorID:    formOptional(form, "vendor_id"),
	}
	if name, ok := formLookup(form, "name"); ok {
		req.Name = name
	}
	if req.Metadata, err = formMetadata(form, "metadata"); err != nil {
		return nil, err
	}
	if req.Image, req.Thumbnail, err = s.normalizeUpload(form); err != nil {
		return nil, err
	}
	return &req, nil
}

func (s *Server) listOutfits(c *gin.Context) {
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

	resp, err := s.outfitSvc.List(c.Request.Context(), outfitdomain.ListRequest{
		Query:        strings.TrimSpace(c.Query("q")),
		VendorID:     strings.TrimSpace(c.Query("vendor")),
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
	c.JSON(http.StatusOK, gin.H{"outfits": resp})
}

func (s *Server) getOutfit(c *gin.Context) {
	resp, err := s.outfitSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) updateOutfit(c *gin.Context) {
	req, err := s.bindOutfitUpdate(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	req.ID = c.Param("id")

	resp, err := s.outfitSvc.Update(c.Request.Context(), *req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) bindOutfitUpdate(c *gin.Context) (*outfitdomain.UpdateRequest, error) {
	if !isMultipart(c) {
		var req outfitdomain.UpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			return nil, newValidationError("request", "invalid_request", "invalid request body")
		}
		return &req, nil
	}

	form, err := c.MultipartForm()
	if err != nil {
		return nil, newValidationError("request", "invalid_request", "invalid multipart form")
	}

	req := outfitdomain.UpdateRequest{
		Name:        formOptional(form, "name"),
		Description: formOptional(form, "description"),
		Notes:       formOptional(form, "notes"),
		VendorID:    formOptional(form, "vendor_id"),
	}
	if req.Metadata, err = formMetadata(form, "metadata"); err != nil {
		return nil, err
	}
	if req.Image, req.Thumbnail, err = s.normalizeUpload(form); err != nil {
		return nil, err
	}
	return &req, nil
}

func (s *Server) deactivateOutfit(c *gin.Context) {
	resp, err := s.outfitSvc.Deactivate(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) uploadOutfitImage(c *gin.Context) {
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

	resp, err := s.outfitSvc.Update(c.Request.Context(), outfitdomain.UpdateRequest{
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

func (s *Server) clearOutfitImage(c *gin.Context) {
	resp, err := s.outfitSvc.Update(c.Request.Context(), outfitdomain.UpdateRequest{
		ID:         c.Param("id"),
		ClearImage: true,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

type setMembersRequest struct {
	ComponentIDs []string `json:"component_ids"`
}

func (s *Server) setOutfitComponents(c *gin.Context) {
	var req setMembersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("request", "invalid_request", "invalid request body"))
		return
	}

	resp, err := s.ledgerSvc.SetMembers(c.Request.Context(), c.Param("id"), req.ComponentIDs)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) listOutfitComponents(c *gin.Context) {
	members, err := s.ledgerSvc.GetActiveMembers(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"components": members})
}

func (s *Server) addOutfitComponent(c *gin.Context) {
	resp, err := s.ledgerSvc.AddMember(c.Request.Context(), c.Param("id"), c.Param("comid"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) removeOutfitComponent(c *gin.Context) {
	resp, err := s.ledgerSvc.RemoveMember(c.Request.Context(), c.Param("id"), c.Param("comid"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) recomputeOutfitCost(c *gin.Context) {
	total, err := s.ledgerSvc.RecomputeCost(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"outfit_id":  c.Param("id"),
		"total_cost": total,
	})
}
