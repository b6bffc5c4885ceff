package consult

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/psconsult/psconsult/internal/platform/apperr"
	"github.com/psconsult/psconsult/internal/platform/auth"
	"github.com/psconsult/psconsult/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes wires the consult endpoints. The public group carries no
// auth requirement so wards without accounts can still submit; everything
// else requires a signed-in user.
func (h *Handler) RegisterRoutes(public, api *echo.Group) {
	public.POST("/consults/public", h.CreatePublic)

	api.POST("/consults", h.Create)
	api.GET("/consults", h.List)
	api.GET("/consults/:id", h.Get)
	api.POST("/consults/sync", h.Sync)

	team := api.Group("/consults", auth.RequireTeamRole())
	team.PUT("/:id/status", h.SetStatus)
	team.PUT("/:id/acknowledge", h.Acknowledge)
}

type createRequest struct {
	PatientName        string     `json:"patient_name"`
	HospitalNumber     string     `json:"hospital_number"`
	Age                int        `json:"age"`
	Sex                string     `json:"sex"`
	Ward               string     `json:"ward"`
	Bed                *string    `json:"bed,omitempty"`
	AdmissionDate      *time.Time `json:"admission_date,omitempty"`
	Diagnosis          string     `json:"diagnosis"`
	Reason             string     `json:"reason"`
	ReasonCategory     *string    `json:"reason_category,omitempty"`
	Urgency            string     `json:"urgency"`
	InvitingUnit       string     `json:"inviting_unit"`
	ConsultantInCharge *string    `json:"consultant_in_charge,omitempty"`
	ContactPerson      string     `json:"contact_person"`
	ContactDesignation *string    `json:"contact_designation,omitempty"`
	ContactPhone       string     `json:"contact_phone"`
	AlternatePhone     *string    `json:"alternate_phone,omitempty"`
	ClientToken        *string    `json:"client_token,omitempty"`
}

func (r *createRequest) toConsult() *Consult {
	return &Consult{
		PatientName:        r.PatientName,
		HospitalNumber:     r.HospitalNumber,
		Age:                r.Age,
		Sex:                r.Sex,
		Ward:               r.Ward,
		Bed:                r.Bed,
		AdmissionDate:      r.AdmissionDate,
		Diagnosis:          r.Diagnosis,
		Reason:             r.Reason,
		ReasonCategory:     r.ReasonCategory,
		Urgency:            r.Urgency,
		InvitingUnit:       r.InvitingUnit,
		ConsultantInCharge: r.ConsultantInCharge,
		ContactPerson:      r.ContactPerson,
		ContactDesignation: r.ContactDesignation,
		ContactPhone:       r.ContactPhone,
		AlternatePhone:     r.AlternatePhone,
	}
}

func (h *Handler) create(c echo.Context) error {
	var req createRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	actor := auth.ActorFromContext(c.Request().Context())

	created, wasNew, err := h.svc.Create(c.Request().Context(), actor, req.toConsult(), req.ClientToken)
	if err != nil {
		return apperr.Render(c, err)
	}
	status := http.StatusCreated
	if !wasNew {
		status = http.StatusOK
	}
	return c.JSON(status, NewAcknowledgement(created, wasNew))
}

// CreatePublic accepts consult submissions without authentication. A valid
// bearer token, if present, still attributes the submission.
func (h *Handler) CreatePublic(c echo.Context) error { return h.create(c) }

func (h *Handler) Create(c echo.Context) error { return h.create(c) }

func (h *Handler) List(c echo.Context) error {
	actor := auth.ActorFromContext(c.Request().Context())
	f := Filter{
		Status:  c.QueryParam("status"),
		Urgency: c.QueryParam("urgency"),
		Ward:    c.QueryParam("ward"),
		Unit:    c.QueryParam("unit"),
		Search:  c.QueryParam("search"),
	}
	if from := c.QueryParam("date_from"); from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "date_from must be YYYY-MM-DD")
		}
		f.DateFrom = &t
	}
	if to := c.QueryParam("date_to"); to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "date_to must be YYYY-MM-DD")
		}
		// Inclusive through the end of the named day.
		end := t.Add(24*time.Hour - time.Nanosecond)
		f.DateTo = &end
	}

	pg := pagination.FromContext(c)
	items, total, err := h.svc.List(c.Request().Context(), actor, f, pg.Limit(), pg.Offset())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if items == nil {
		items = []*Consult{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg))
}

func (h *Handler) Get(c echo.Context) error {
	actor := auth.ActorFromContext(c.Request().Context())
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	consult, err := h.svc.Get(c.Request().Context(), actor, id)
	if err != nil {
		return apperr.Render(c, err)
	}
	return c.JSON(http.StatusOK, consult)
}

type setStatusRequest struct {
	Status string  `json:"status"`
	Notes  *string `json:"notes,omitempty"`
}

func (h *Handler) SetStatus(c echo.Context) error {
	actor := auth.ActorFromContext(c.Request().Context())
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req setStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	consult, err := h.svc.SetStatus(c.Request().Context(), actor, id, req.Status, req.Notes)
	if err != nil {
		return apperr.Render(c, err)
	}
	return c.JSON(http.StatusOK, consult)
}

func (h *Handler) Acknowledge(c echo.Context) error {
	actor := auth.ActorFromContext(c.Request().Context())
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	consult, err := h.svc.Acknowledge(c.Request().Context(), actor, id)
	if err != nil {
		return apperr.Render(c, err)
	}
	return c.JSON(http.StatusOK, consult)
}

type syncRequest struct {
	Items []syncItemRequest `json:"items"`
}

type syncItemRequest struct {
	createRequest
	ClientToken string `json:"client_token"`
}

func (h *Handler) Sync(c echo.Context) error {
	actor := auth.ActorFromContext(c.Request().Context())
	var req syncRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	items := make([]SyncItem, 0, len(req.Items))
	for _, it := range req.Items {
		if it.ClientToken == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "every sync item needs a client_token")
		}
		items = append(items, SyncItem{Consult: *it.toConsult(), ClientToken: it.ClientToken})
	}
	results := h.svc.SyncOffline(c.Request().Context(), actor, items)
	return c.JSON(http.StatusOK, map[string]interface{}{"results": results})
}
