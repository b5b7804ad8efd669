package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kameliyaaivanova/BlogAPI/internal/stats"
	"github.com/kameliyaaivanova/BlogAPI/internal/util"
)

// StatsHandler relays activity pages from the external statistics service.
type StatsHandler struct {
	Client *stats.Client
}

func (h *StatsHandler) GetActivity(c echo.Context) error {
	return h.relay(c, h.Client.Activity)
}

func (h *StatsHandler) GetDeletedFiles(c echo.Context) error {
	return h.relay(c, h.Client.DeletedFiles)
}

func (h *StatsHandler) relay(c echo.Context, fetch func(context.Context, int, int) (json.RawMessage, error)) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)

	body, err := fetch(c.Request().Context(), page, size)
	if err != nil {
		return errorResponse(c, http.StatusBadGateway, "statistics service unavailable")
	}
	return c.JSONBlob(http.StatusOK, body)
}
