package server

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

func parseShowInactive(c *gin.Context) (bool, error) {
	raw := strings.TrimSpace(c.Query("show_inactive"))
	if raw == "" {
		return false, nil
	}
	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		return false, newValidationError("show_inactive", "invalid_bool", "invalid value")
	}
	return parsed, nil
}

func (s *Server) parsePagination(c *gin.Context) (limit, offset int, err error) {
	cfg := s.catalogCfg.Get()

	limit = cfg.DefaultPageSize
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return 0, 0, newValidationError("limit", "invalid_int", "invalid value")
		}
		limit = parsed
	}
	if limit > cfg.MaxPageSize {
		limit = cfg.MaxPageSize
	}

	if raw := strings.TrimSpace(c.Query("offset")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return 0, 0, newValidationError("offset", "invalid_int", "invalid value")
		}
		offset = parsed
	}
	return limit, offset, nil
}

func (s *Server) parseSort(c *gin.Context) (sortBy, orderBy string) {
	sortBy = s.catalogCfg.SortField(c.Query("sort_by"))

	orderBy = strings.ToLower(strings.TrimSpace(c.Query("order_by")))
	if orderBy != "desc" {
		orderBy = "asc"
	}
	return sortBy, orderBy
}
