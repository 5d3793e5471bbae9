package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/coldkeep/fortunad/internal/generator"
	"github.com/coldkeep/fortunad/internal/models"
	"github.com/coldkeep/fortunad/internal/sources"
)

const reseedTimeout = 5 * time.Second

// Reseed forces an immediate High-priority reseed cycle and waits for
// it to complete.
func Reseed(gen *generator.Generator) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), reseedTimeout)
		defer cancel()

		if err := gen.Reseed(ctx); err != nil {
			c.JSON(http.StatusGatewayTimeout, models.ErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"reseed_count": gen.ReseedCount()})
	}
}

// AddSource registers a new HTTP-polled oracle source pointed at a
// caller-supplied URL.
func AddSource(gen *generator.Generator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.AddSourceRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid payload: " + err.Error()})
			return
		}

		src, err := sources.NewOracle(req.Name, req.URL, nil)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
			return
		}
		gen.AddSource(src)
		c.JSON(http.StatusCreated, gin.H{"name": req.Name})
	}
}
