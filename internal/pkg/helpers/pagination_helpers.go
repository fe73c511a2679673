package helpers

import (
	"strconv"

	"github.com/alnet/mentorbridge/internal/app/models/dto"
	"github.com/gin-gonic/gin"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	DefaultPage     = 1
)

// PageRequest is a normalized 1-based page and limit
type PageRequest struct {
	Page  int
	Limit int
}

// Offset returns the number of rows to skip
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.Limit
}

// NewPageRequest clamps page and limit into their valid ranges
func NewPageRequest(page, limit int) PageRequest {
	if page < 1 {
		page = DefaultPage
	}
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return PageRequest{Page: page, Limit: limit}
}

// ParsePaginationParams extracts page and limit from the query string.
// "size" is accepted as an alias of "limit".
func ParsePaginationParams(c *gin.Context) PageRequest {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil {
		page = DefaultPage
	}

	limitStr := c.Query("limit")
	if limitStr == "" {
		limitStr = c.Query("size")
	}
	limit, err := strconv.Atoi(limitStr)
	if err != nil {
		limit = DefaultPageSize
	}

	return NewPageRequest(page, limit)
}

// NewPaginationInfo creates pagination metadata with pages = ceil(total/limit).
// A page past the end keeps its requested number; the item list is simply empty.
func NewPaginationInfo(total int64, req PageRequest) dto.PaginationInfo {
	pages := 0
	if total > 0 && req.Limit > 0 {
		pages = int((total + int64(req.Limit) - 1) / int64(req.Limit))
	}
	return dto.PaginationInfo{
		Page:  req.Page,
		Limit: req.Limit,
		Total: total,
		Pages: pages,
	}
}
