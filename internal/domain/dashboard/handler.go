package dashboard

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/psconsult/psconsult/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/dashboard")
	g.GET("/stats", h.Stats)

	analytics := g.Group("", auth.RequireTeamRole())
	analytics.GET("/by-ward", h.ByWard)
	analytics.GET("/by-urgency", h.ByUrgency)
}

func (h *Handler) Stats(c echo.Context) error {
	actor := auth.ActorFromContext(c.Request().Context())
	stats, err := h.svc.Stats(c.Request().Context(), actor)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *Handler) ByWard(c echo.Context) error {
	actor := auth.ActorFromContext(c.Request().Context())
	buckets, err := h.svc.ByWard(c.Request().Context(), actor)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if buckets == nil {
		buckets = []Bucket{}
	}
	return c.JSON(http.StatusOK, buckets)
}

func (h *Handler) ByUrgency(c echo.Context) error {
	actor := auth.ActorFromContext(c.Request().Context())
	buckets, err := h.svc.ByUrgency(c.Request().Context(), actor)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if buckets == nil {
		buckets = []Bucket{}
	}
	return c.JSON(http.StatusOK, buckets)
}
