package handlers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

func parseID(c *gin.Context, name string) (uint, error) {
	raw := strings.TrimSpace(c.Param(name))
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return uint(id), nil
}

func parseOptionalID(c *gin.Context, query string) (*uint, error) {
	raw := strings.TrimSpace(c.Query(query))
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return nil, fmt.Errorf("invalid %s %q", query, raw)
	}
	out := uint(id)
	return &out, nil
}
