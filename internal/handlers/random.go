package handlers

import (
	"encoding/base64"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/coldkeep/fortunad/internal/generator"
	"github.com/coldkeep/fortunad/internal/models"
)

// Random is a convenience read path over Fill: GET
// /api/v1/random?n=<count> returns count base64-encoded random bytes.
// It is not a replacement for embedding the generator directly; it
// exists for callers that only have HTTP access.
func Random(gen *generator.Generator) gin.HandlerFunc {
	return func(c *gin.Context) {
		n, err := strconv.Atoi(c.DefaultQuery("n", "32"))
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "n must be a positive integer"})
			return
		}
		if n > gen.MaxRequestBytes() {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "n exceeds the maximum request size"})
			return
		}

		buf := make([]byte, n)
		if err := gen.Fill(buf, 0, n); err != nil {
			c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusOK, models.RandomResponse{Base64: base64.StdEncoding.EncodeToString(buf)})
	}
}
