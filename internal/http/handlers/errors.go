package handlers

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/HarshMishra-Git/MedPath-by-AAS-EduGuide-sub000/domain"
	"github.com/HarshMishra-Git/MedPath-by-AAS-EduGuide-sub000/internal/services"
)

var statusByKind = map[domain.ErrorKind]int{
	domain.KindValidation:         http.StatusBadRequest,
	domain.KindInvalidCredentials: http.StatusUnauthorized,
	domain.KindFederatedAuth:      http.StatusUnauthorized,
	domain.KindUnauthenticated:    http.StatusUnauthorized,
	domain.KindInvalidCode:        http.StatusUnprocessableEntity,
	domain.KindSignatureInvalid:   http.StatusUnprocessableEntity,
	domain.KindNotFound:           http.StatusNotFound,
	domain.KindConflict:           http.StatusConflict,
	domain.KindOrderMismatch:      http.StatusConflict,
	domain.KindSuperseded:         http.StatusConflict,
	domain.KindCheckoutInProgress: http.StatusConflict,
	domain.KindForbidden:          http.StatusForbidden,
	domain.KindRateLimited:        http.StatusTooManyRequests,
	domain.KindNetwork:            http.StatusBadGateway,
	domain.KindServer:             http.StatusBadGateway,
}

// StatusFor maps an error kind to the status the shell answers with
func StatusFor(err error) int {
	if status, ok := statusByKind[domain.KindOf(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// writeError renders err as {"error": message, "kind": kind}. An unauthenticated result
// also points the UI at the login view.
func writeError(c *gin.Context, err error) {
	var de *domain.Error
	if errors.As(err, &de) && de.RetryAfter > 0 {
		c.Header("Retry-After", strconv.Itoa(int(math.Ceil(de.RetryAfter.Seconds()))))
	}
	body := gin.H{
		"error": domain.UserMessage(err),
		"kind":  domain.KindOf(err),
	}
	if domain.IsUnauthenticated(err) {
		c.Header("Location", services.LoginPath)
		body["redirect"] = services.LoginPath
		body["action"] = domain.ActionRedirectLogin
	}
	c.JSON(StatusFor(err), body)
}

// bindError answers a request body that could not be decoded
func bindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error": err.Error(),
		"kind":  domain.KindValidation,
	})
}
