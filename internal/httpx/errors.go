package httpx

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/storefront/internal/apperr"
	"github.com/MikeMC777/storefront/internal/i18n"
)

var kindStatus = map[apperr.Kind]int{
	apperr.KindValidation:      http.StatusBadRequest,
	apperr.KindUnauthenticated: http.StatusUnauthorized,
	apperr.KindForbidden:       http.StatusForbidden,
	apperr.KindNotFound:        http.StatusNotFound,
	apperr.KindConflict:        http.StatusConflict,
	apperr.KindUnavailable:     http.StatusServiceUnavailable,
	apperr.KindInternal:        http.StatusInternalServerError,
}

func StatusOf(err error) int {
	if s, ok := kindStatus[apperr.KindOf(err)]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// Fail aborts the request with a localized error body:
// {"error": message, "code": code, "kind": kind}.
func Fail(c *gin.Context, err error) {
	kind, code := apperr.KindOf(err), apperr.CodeOf(err)
	status := StatusOf(err)
	if status >= http.StatusInternalServerError {
		rid, _ := c.Get(keyRID)
		log.Printf("[http] rid=%v %s %s error: %v", rid, c.Request.Method, c.Request.URL.Path, err)
	}
	c.AbortWithStatusJSON(status, gin.H{
		"error": i18n.Message(LangOf(c), code),
		"code":  code,
		"kind":  kind,
	})
}

// BadRequest reports a binding failure as a validation error.
func BadRequest(c *gin.Context, err error) {
	Fail(c, apperr.Wrap(apperr.KindValidation, apperr.CodeInvalidInput, err))
}
