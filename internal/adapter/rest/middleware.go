package rest

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const requestIDHeader = "X-Request-Id"

func accessLog(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		rid := c.GetHeader(requestIDHeader)
		if rid == "" {
			var b [8]byte
			_, _ = rand.Read(b[:])
			rid = hex.EncodeToString(b[:])
		}
		c.Header(requestIDHeader, rid)

		c.Next()

		logger.Info("req",
			zap.String("rid", rid),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("dur", time.Since(start)))
	}
}

// corsConfig builds the CORS policy. Origins must carry an http(s) scheme;
// cors.New panics otherwise, so the config is validated here.
func corsConfig(origins []string) (cors.Config, error) {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", requestIDHeader},
		ExposeHeaders: []string{requestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg, nil
		}
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg, nil
	}
	cfg.AllowOrigins = origins
	if err := cfg.Validate(); err != nil {
		return cors.Config{}, fmt.Errorf("CORS_ALLOW_ORIGINS: %w", err)
	}
	return cfg, nil
}
