package handlers

import (
	"context"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kameliyaaivanova/BlogAPI/internal/logging"
	"github.com/kameliyaaivanova/BlogAPI/internal/mykafka"
)

type Response struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func errorResponse(c echo.Context, code int, message string) error {
	return c.JSON(code, Response{Status: "error", Message: message})
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

func listEnvelope(items interface{}, page, offset, limit int, total int64) map[string]interface{} {
	return map[string]interface{}{
		"data": items,
		"meta": map[string]interface{}{
			"page":        page,
			"size":        limit,
			"total":       total,
			"total_pages": (total + int64(limit) - 1) / int64(limit),
			"has_prev":    page > 1,
			"has_next":    int64(offset+limit) < total,
		},
	}
}

// publish sends a domain event without letting broker trouble surface to the
// client.
func publish(c echo.Context, producer *mykafka.Producer, topic, key string, event map[string]interface{}) {
	if producer == nil {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := producer.PublishEvent(ctx, topic, key, event); err != nil {
		logging.FromContext(c.Request().Context()).Warn("kafka publish failed", "topic", topic, "error", err)
	}
}
