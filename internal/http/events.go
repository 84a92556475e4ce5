package http

import (
	"context"

	"github.com/Saatvik786/TaskSphere/internal/log"
	"github.com/Saatvik786/TaskSphere/internal/metrics"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// publish sends ev in the background. The request context's values (trace, request id)
// carry over but its cancellation does not, since the response is usually written first.
func (h *Handler) publish(c *gin.Context, key string, ev any) {
	ctx := context.WithoutCancel(c.Request.Context())
	reqID := c.GetString(requestIDKey)
	pub, l := h.Events, h.log()
	go func() {
		status := "ok"
		if err := pub.Publish(ctx, key, ev, reqID); err != nil {
			status = "error"
			log.WithDD(ctx, l).Warn("publish event failed",
				zap.String("key", key), zap.String("request_id", reqID), zap.Error(err))
		}
		metrics.EventsPublished.WithLabelValues(key, status).Inc()
	}()
}
