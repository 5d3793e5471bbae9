package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/coldkeep/fortunad/internal/generator"
	"github.com/coldkeep/fortunad/internal/models"
)

// Status reports the generator's current identity, priority, and
// pool-level entropy counters. Public, read-only. Mirrors Fill's own
// uninitialised check: until the first reseed has completed there is
// no keyed PRNG behind this generator, so the endpoint reports 503
// rather than claiming a healthy 200.
func Status(gen *generator.Generator) gin.HandlerFunc {
	return func(c *gin.Context) {
		snapshot := gen.Snapshot()
		pools := make([]models.PoolStatus, len(snapshot))
		for i, p := range snapshot {
			pools[i] = models.PoolStatus{
				Index:                          p.Index,
				BytesSinceLastDrained:          p.BytesSinceLastDrained,
				EntropyEstimateBytesSinceDrain: p.EntropyEstimateBytes,
			}
		}

		status := http.StatusOK
		if gen.ReseedCount() == 0 {
			status = http.StatusServiceUnavailable
		}

		c.JSON(status, models.StatusResponse{
			GeneratorID:    gen.ID().String(),
			Priority:       gen.Priority().String(),
			ReseedCount:    gen.ReseedCount(),
			BytesRequested: gen.BytesRequested(),
			Pools:          pools,
		})
	}
}
