package server

import (
	"log/slog"
	"time"

	"github.com/alkime/dictator/internal/config"
	"github.com/gin-contrib/secure"
	"github.com/gin-gonic/gin"
)

// securityConfig builds the response security headers. HSTS is only sent in
// production, where the API sits behind TLS.
func securityConfig(cfg *config.Config) secure.Config {
	var sts int64
	if cfg.Env == config.EnvProduction {
		sts = int64(cfg.HSTSMaxAge)
	}

	return secure.Config{
		STSSeconds:            sts,
		STSIncludeSubdomains:  sts > 0,
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ReferrerPolicy:        "no-referrer",
		ContentSecurityPolicy: config.BuildCSP(cfg.CSPMode),
	}
}

// noStore keeps clients from caching instruction data, which the TUI may
// change at any time.
func noStore() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")
		c.Next()
	}
}

// requestLogger logs each request through slog instead of gin's writer.
func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		attrs := []any{
			"method", c.Request.Method,
			"route", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, "error", c.Errors.String())
		}

		if c.Writer.Status() >= 500 {
			logger.Error("request failed", attrs...)
			return
		}
		logger.Debug("request", attrs...)
	}
}
