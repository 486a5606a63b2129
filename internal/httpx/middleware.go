// Package httpx holds the gin middleware and error rendering shared by every
// storefront route.
package httpx

import (
	"crypto/subtle"
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/MikeMC777/storefront/internal/apperr"
	"github.com/MikeMC777/storefront/internal/i18n"
)

const (
	keyRID      = "rid"
	keyLang     = "lang"
	keyIdentity = "identity"

	HeaderAPIKey         = "X-API-KEY"
	HeaderIdempotencyKey = "Idempotency-Key"
)

func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader("X-Request-ID")
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(keyRID, rid)
		c.Writer.Header().Set("X-Request-ID", rid)
		c.Next()
	}
}

func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		rid, _ := c.Get(keyRID)
		log.Printf("[http] rid=%v %s %s status=%d dur=%s",
			rid, c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}

// APIKey rejects requests whose X-API-KEY header differs from key.
// Browsers cannot set headers on websocket upgrades, so those may pass
// the key as ?api_key= instead.
func APIKey(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		got := c.GetHeader(HeaderAPIKey)
		if got == "" && websocket.IsWebSocketUpgrade(c.Request) {
			got = c.Query("api_key")
		}
		if subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
			Fail(c, apperr.New(apperr.KindUnauthenticated, apperr.CodeInvalidInput, "invalid or missing API key"))
			return
		}
		c.Next()
	}
}

// Lang stores the negotiated response language (?lang= wins over
// Accept-Language).
func Lang() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(keyLang, i18n.Negotiate(c.Query("lang"), c.GetHeader("Accept-Language")))
		c.Next()
	}
}

func LangOf(c *gin.Context) i18n.Lang {
	if v, ok := c.Get(keyLang); ok {
		if l, ok := v.(i18n.Lang); ok {
			return l
		}
	}
	return i18n.EN
}

func CORS(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", HeaderAPIKey, HeaderIdempotencyKey, "Accept-Language"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 || len(origins) == 1 && origins[0] == "*" {
		// AllowAllOrigins cannot be combined with credentials
		cfg.AllowOriginFunc = func(string) bool { return true }
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}
