package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"ledger_service/internal/store"
)

// pathID parses the :id path parameter; on failure it writes the 400 itself.
// Numeric ids that match no row are the store's business and come back 404.
func pathID(c *gin.Context) (uint, bool) {
	v, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return 0, false
	}
	return uint(v), true
}

// sortFromQuery reads ?sort=field or ?sort=-field (descending).
func sortFromQuery(c *gin.Context) store.Sort {
	raw := c.Query("sort")
	if strings.HasPrefix(raw, "-") {
		return store.Sort{Field: raw[1:], Desc: true}
	}
	return store.Sort{Field: raw}
}

// pageFromQuery reads ?page and ?page_size; the store clamps the result.
func pageFromQuery(c *gin.Context) store.Page {
	var p store.Page
	if v, err := strconv.Atoi(c.Query("page")); err == nil && v > 0 {
		p.Number = v
	}
	if v, err := strconv.Atoi(c.Query("page_size")); err == nil && v > 0 {
		p.Size = v
	}
	return p
}

// decimalQuery parses an optional fixed-point query parameter.
func decimalQuery(c *gin.Context, name string) (*decimal.Decimal, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s", name)
	}
	return &d, nil
}

// uintQuery parses an optional id query parameter.
func uintQuery(c *gin.Context, name string) (*uint, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid %s", name)
	}
	u := uint(v)
	return &u, nil
}

// uuidQuery parses an optional uuid query parameter.
func uuidQuery(c *gin.Context, name string) (*uuid.UUID, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s", name)
	}
	return &id, nil
}

// totalPages computes the page count for list response metadata.
func totalPages(total int64, pageSize int) int {
	return (int(total) + pageSize - 1) / pageSize
}
