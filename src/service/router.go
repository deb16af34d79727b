package service

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	assistant "github.com/Protocol-Lattice/go-assistant"
	"github.com/Protocol-Lattice/go-assistant/src/logger"
)

// NewRouter wires the HTTP surface of the assistant.
func NewRouter(svc *Service) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/v1")
	v1.POST("/invoke", handleInvoke(svc))
	v1.GET("/tools", handleTools(svc))
	return router
}

func handleInvoke(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req InvokeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, InvokeResponse{
				Status: StatusError,
				Error:  &ErrorInfo{Kind: assistant.KindBadInput, Message: "malformed request body"},
			})
			return
		}

		resp := svc.Handle(c.Request.Context(), req)
		code := http.StatusOK
		if resp.Status == StatusError {
			code = statusCodeFor(resp.Error)
		}
		c.JSON(code, resp)
	}
}

func handleTools(svc *Service) gin.HandlerFunc {
	type toolView struct {
		Name        string         `json:"name"`
		Description string         `json:"description"`
		InputSchema map[string]any `json:"input_schema"`
	}
	return func(c *gin.Context) {
		specs := svc.Tools()
		views := make([]toolView, 0, len(specs))
		for _, spec := range specs {
			views = append(views, toolView{
				Name:        spec.Name,
				Description: spec.Description,
				InputSchema: spec.InputSchema(),
			})
		}
		c.JSON(http.StatusOK, gin.H{"tools": views, "total": len(views)})
	}
}

// statusCodeFor maps run failures to HTTP codes. Tool faults never show up
// here; they are absorbed inside the run.
func statusCodeFor(errInfo *ErrorInfo) int {
	if errInfo == nil {
		return http.StatusInternalServerError
	}
	switch errInfo.Kind {
	case assistant.KindBadInput:
		return http.StatusBadRequest
	case assistant.KindTimeout:
		return http.StatusGatewayTimeout
	case assistant.KindEndpoint, assistant.KindStepLimit, assistant.KindCanceled:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("[HTTP] %s %s -> %d (%s)",
			c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start).Round(time.Millisecond))
	}
}
