package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// getImage serves the stored JPEG for a component or outfit. Pass
// ?thumbnail=true for the preview rendition.
func (s *Server) getImage(c *gin.Context) {
	thumbnail := false
	if raw := strings.TrimSpace(c.Query("thumbnail")); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			AbortWithError(c, newValidationError("thumbnail", "invalid_bool", "invalid value"))
			return
		}
		thumbnail = parsed
	}

	var (
		data []byte
		err  error
	)
	switch c.Param("kind") {
	case "components":
		data, err = s.componentSvc.Image(c.Request.Context(), c.Param("id"), thumbnail)
	case "outfits":
		data, err = s.outfitSvc.Image(c.Request.Context(), c.Param("id"), thumbnail)
	default:
		AbortWithError(c, ErrNotFound)
		return
	}
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Data(http.StatusOK, "image/jpeg", data)
}
