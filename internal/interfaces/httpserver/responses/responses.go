package responses

import (
	"github.com/gin-gonic/gin"

	"github.com/janhq/trading-agents/internal/interfaces/httpserver/middlewares"
)

type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// Error aborts the request with a structured error body carrying the request id.
func Error(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		Error:     message,
		RequestID: middlewares.RequestIDFromContext(c),
	})
}

type ListResponse[T any] struct {
	Object string `json:"object"`
	Data   []T    `json:"data"`
	Total  int    `json:"total"`
}

func NewListResponse[T any](data []T) ListResponse[T] {
	if data == nil {
		data = []T{}
	}
	return ListResponse[T]{Object: "list", Data: data, Total: len(data)}
}
