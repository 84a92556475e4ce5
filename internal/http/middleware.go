package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Saatvik786/TaskSphere/internal/auth"
	"github.com/Saatvik786/TaskSphere/internal/domain"
	"github.com/Saatvik786/TaskSphere/internal/log"
	"github.com/Saatvik786/TaskSphere/internal/metrics"
	"github.com/Saatvik786/TaskSphere/internal/security"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/ext"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"
)

const (
	requestIDKey    = "X-Request-ID"
	requestIDHeader = "X-Request-ID"
	uidKey          = "uid"
)

func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func route(c *gin.Context) string {
	if r := c.FullPath(); r != "" {
		return r
	}
	return "unmatched"
}

func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		metrics.InFlight.Inc()
		start := time.Now()
		c.Next()
		metrics.InFlight.Dec()
		r := route(c)
		metrics.RequestsTotal.WithLabelValues(r, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.ReqDuration.WithLabelValues(r, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}

// Trace opens a span per request so repo spans and log lines share a trace id.
func Trace() gin.HandlerFunc {
	return func(c *gin.Context) {
		_ = WithSpan(c.Request.Context(), "http.request", func(ctx context.Context) error {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
			if sp, ok := tracer.SpanFromContext(ctx); ok {
				sp.SetTag(ext.ResourceName, c.Request.Method+" "+route(c))
				sp.SetTag(ext.HTTPCode, c.Writer.Status())
			}
			return nil
		}, tracer.SpanType(ext.SpanTypeWeb), tracer.Tag(ext.HTTPMethod, c.Request.Method))
	}
}

func AccessLog(base *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		l := log.WithDD(c.Request.Context(), base,
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.String("method", c.Request.Method),
			zap.String("route", route(c)),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
		if uid := c.GetString(uidKey); uid != "" {
			l = l.With(zap.String("uid", uid))
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			l.Warn("request")
			return
		}
		l.Info("request")
	}
}

// AuthJWT rejects requests without a valid bearer token and puts the token's uid on both
// the gin context and the request context.
func AuthJWT(tokens *security.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		hdr := c.GetHeader("Authorization")
		if len(hdr) < 7 || !strings.EqualFold(hdr[:7], "bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not authorized, no token"})
			return
		}
		tok := strings.TrimSpace(hdr[7:])
		if tok == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not authorized, no token"})
			return
		}
		uid, err := tokens.Verify(tok)
		if err != nil {
			msg := "Not authorized, token failed"
			if errors.Is(err, domain.ErrExpiredToken) {
				msg = "Not authorized, token expired"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
			return
		}
		c.Set(uidKey, uid)
		c.Request = c.Request.WithContext(auth.ContextWithUserID(c.Request.Context(), uid))
		c.Next()
	}
}
