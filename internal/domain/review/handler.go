package review

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/psconsult/psconsult/internal/platform/apperr"
	"github.com/psconsult/psconsult/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/consults/:id/reviews")
	g.POST("", h.Create, auth.RequireTeamRole())
	g.GET("", h.List)
	g.PUT("/:reviewId", h.Update, auth.RequireTeamRole())
}

type reviewRequest struct {
	Designation         *string    `json:"designation,omitempty"`
	Findings            string     `json:"findings"`
	Plan                string     `json:"plan"`
	WoundClassification *string    `json:"wound_classification,omitempty"`
	WoundPhase          *string    `json:"wound_phase,omitempty"`
	WoundLocation       *string    `json:"wound_location,omitempty"`
	WoundLength         *float64   `json:"wound_length,omitempty"`
	WoundWidth          *float64   `json:"wound_width,omitempty"`
	WoundDepth          *float64   `json:"wound_depth,omitempty"`
	ProcedurePlanned    bool       `json:"procedure_planned"`
	ProcedureDate       *time.Time `json:"procedure_date,omitempty"`
	ProcedureDetails    *string    `json:"procedure_details,omitempty"`
	FollowUpDate        *time.Time `json:"follow_up_date,omitempty"`
	FollowUpNotes       *string    `json:"follow_up_notes,omitempty"`
}

func (r *reviewRequest) toReview() *Review {
	return &Review{
		Designation:         r.Designation,
		Findings:            r.Findings,
		Plan:                r.Plan,
		WoundClassification: r.WoundClassification,
		WoundPhase:          r.WoundPhase,
		WoundLocation:       r.WoundLocation,
		WoundLength:         r.WoundLength,
		WoundWidth:          r.WoundWidth,
		WoundDepth:          r.WoundDepth,
		ProcedurePlanned:    r.ProcedurePlanned,
		ProcedureDate:       r.ProcedureDate,
		ProcedureDetails:    r.ProcedureDetails,
		FollowUpDate:        r.FollowUpDate,
		FollowUpNotes:       r.FollowUpNotes,
	}
}

func (h *Handler) Create(c echo.Context) error {
	consultRef, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req reviewRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	actor := auth.ActorFromContext(c.Request().Context())

	rv := req.toReview()
	rv.ConsultRef = consultRef
	created, err := h.svc.Create(c.Request().Context(), actor, rv)
	if err != nil {
		return apperr.Render(c, err)
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *Handler) Update(c echo.Context) error {
	reviewID, err := uuid.Parse(c.Param("reviewId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid review id")
	}
	var req reviewRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	actor := auth.ActorFromContext(c.Request().Context())

	updated, err := h.svc.Update(c.Request().Context(), actor, reviewID, req.toReview())
	if err != nil {
		return apperr.Render(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *Handler) List(c echo.Context) error {
	consultRef, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	items, err := h.svc.ListByConsult(c.Request().Context(), consultRef)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if items == nil {
		items = []*Review{}
	}
	return c.JSON(http.StatusOK, items)
}
