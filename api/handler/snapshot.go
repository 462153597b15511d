package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/segubroker/cotizador/models"
	"github.com/segubroker/cotizador/scraper"
)

// Snapshot returns a handler for GET /api/v1/debug/snapshot.
//
// It renders the target page (or ?url= override) and reports its
// interactive surface plus a screenshot, which is what you want in hand
// when the insurer ships new markup and the selector tables need updating.
func Snapshot(sc *scraper.Scraper) gin.HandlerFunc {
	return func(c *gin.Context) {
		snap, err := sc.Snapshot(c.Request.Context(), c.Query("url"))
		if err != nil {
			serr := models.AsScrapeError(err)
			c.JSON(statusFor(serr.Code), models.SnapshotResponse{
				Success: false,
				Error:   serr.ToDetail(),
			})
			return
		}
		c.JSON(http.StatusOK, snap)
	}
}
