package server

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/preevind/timeverify/internal/common"
)

// requestID tags every request with an id, echoed back in X-Request-ID and
// carried in the request context for downstream logging.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader("X-Request-ID")
		if rid == "" {
			rid = uuid.New().String()
		}
		c.Request = c.Request.WithContext(common.WithRequestID(c.Request.Context(), rid))
		c.Header("X-Request-ID", rid)
		c.Next()
	}
}

// NewRouter wires the handler onto the route table. Routes mirror the
// polling contract: submit, poll, download, dashboard, health.
func NewRouter(h *Handler) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery(), requestID())

	engine.POST("/process-bulk", h.ProcessBulk)
	engine.GET("/status/:job_id", h.JobStatus)
	engine.GET("/download/:job_id", h.Download)
	engine.GET("/dashboard", h.Dashboard)
	engine.GET("/health", h.Health)

	return engine
}
