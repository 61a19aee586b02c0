package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/gameiq/internal/apperr"
)

func statusOf(kind apperr.Kind) int {
	switch kind {
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindOwnership:
		return http.StatusForbidden
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindState:
		return http.StatusConflict
	case apperr.KindBudgetExceeded, apperr.KindSubscriptionRequired:
		return http.StatusPaymentRequired
	case apperr.KindExternalGeneration:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// writeError renders err as {"error": {...}}. Errors without a kind are
// logged and reported as a bare 500.
func (h *Handler) writeError(c *gin.Context, err error) {
	var ae *apperr.Error
	if !errors.As(err, &ae) {
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		_ = c.Error(err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error": errorResponse{Kind: "internal", Message: "internal error"},
		})
		return
	}

	body := errorResponse{Kind: string(ae.Kind), Code: ae.Code, Message: ae.Message}
	if ae.Kind == apperr.KindBudgetExceeded {
		spent, limit, remaining := ae.SpentCents, ae.CapCents, ae.RemainingCents()
		body.SpentCents, body.CapCents, body.RemainingCents = &spent, &limit, &remaining
	}
	status := statusOf(ae.Kind)
	if status >= http.StatusInternalServerError {
		h.log.Warn().Err(err).Str("path", c.FullPath()).Msg("request failed")
	}
	c.AbortWithStatusJSON(status, gin.H{"error": body})
}

func badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
		"error": errorResponse{Kind: string(apperr.KindValidation), Message: err.Error()},
	})
}
