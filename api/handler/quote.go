package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/segubroker/cotizador/models"
	"github.com/segubroker/cotizador/scraper"
)

// Quote returns a handler for POST /api/v1/quote.
//
// Orchestration flow:
//  1. Parse request; malformed JSON is a 400.
//  2. Scraper.Quote: validation, browser pipeline, extraction.
//  3. Map classified errors to HTTP status codes; attach debug trace
//     when the caller asked for it.
func Quote(sc *scraper.Scraper) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.QuoteRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.QuoteResponse{
				Success: false,
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeValidation,
					Message: err.Error(),
				},
			})
			return
		}

		resp, err := sc.Quote(c.Request.Context(), &req)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, resp)
	}
}

// respondError maps a ScrapeError to the correct HTTP status code and
// writes a structured JSON error response.
func respondError(c *gin.Context, err error) {
	serr := models.AsScrapeError(err)

	resp := models.QuoteResponse{
		Success: false,
		Error:   serr.ToDetail(),
	}

	var derr *scraper.DebugError
	if errors.As(err, &derr) {
		resp.Debug = &models.DebugInfo{Steps: derr.Steps}
	}

	c.JSON(statusFor(serr.Code), resp)
}

// statusFor translates error codes to HTTP status codes.
func statusFor(code string) int {
	switch code {
	case models.ErrCodeValidation:
		return http.StatusUnprocessableEntity // 422
	case models.ErrCodeAntibot:
		return http.StatusTooManyRequests // 429
	case models.ErrCodeNavTimeout:
		return http.StatusGatewayTimeout // 504
	default:
		// SELECTOR_NOT_FOUND, BROWSER_LAUNCH_FAILED, NO_RESULTS, UNEXPECTED
		return http.StatusInternalServerError // 500
	}
}
