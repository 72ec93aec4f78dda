package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"commentkit/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// fail maps service errors onto JSON responses: validation errors get
// 422 with field-keyed messages, missing rows 404, the rest 500.
func fail(c *gin.Context, err error) {
	var verr *services.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"errors": gin.H{verr.Field: verr.Message},
		})
		return
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found."})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error."})
}

func paramUint(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name + "."})
		return 0, false
	}
	return uint(id), true
}

func queryInt(c *gin.Context, name string, fallback int) int {
	v := c.Query(name)
	if v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}
