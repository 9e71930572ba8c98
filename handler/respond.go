package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/fundchain/chain"
	"github.com/fundchain/service"
)

// writeError maps contract revert kinds onto HTTP status codes. Everything
// unrecognized is a 500.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrNotInitialized):
		status = http.StatusServiceUnavailable
	case errors.Is(err, chain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, chain.ErrUnauthorized), errors.Is(err, chain.ErrComplianceDenied):
		status = http.StatusForbidden
	case errors.Is(err, chain.ErrInvalidParameter):
		status = http.StatusBadRequest
	case errors.Is(err, chain.ErrInvalidState):
		status = http.StatusConflict
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// pageParams reads page/size query params with the usual defaults.
func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.Query("page"))
	if page < 1 {
		page = 1
	}
	size, _ := strconv.Atoi(c.Query("size"))
	if size < 1 || size > 100 {
		size = 20
	}
	return page, size
}

func pathID(c *gin.Context, name string) (uint64, error) {
	return strconv.ParseUint(c.Param(name), 10, 64)
}
