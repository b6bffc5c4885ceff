package identity

import (
	"net/http"

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

// RegisterRoutes wires both the open auth endpoints and the protected user
// management endpoints.
func (h *Handler) RegisterRoutes(public, api *echo.Group) {
	public.POST("/auth/login", h.Login)

	api.POST("/auth/logout", h.Logout)
	api.GET("/auth/me", h.Me)

	admin := api.Group("/users", auth.RequireRole(auth.RoleAdmin))
	admin.POST("", h.Register)
	admin.GET("", h.List)
	admin.GET("/:id", h.Get)
	admin.PUT("/:id", h.Update)
}

type registerRequest struct {
	Username    string  `json:"username"`
	Email       *string `json:"email,omitempty"`
	Password    string  `json:"password"`
	FullName    string  `json:"full_name"`
	Role        string  `json:"role"`
	Designation *string `json:"designation,omitempty"`
	Unit        *string `json:"unit,omitempty"`
	Phone       *string `json:"phone,omitempty"`
}

func (h *Handler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	u := &User{
		Username:    req.Username,
		Email:       req.Email,
		FullName:    req.FullName,
		Role:        req.Role,
		Designation: req.Designation,
		Unit:        req.Unit,
		Phone:       req.Phone,
	}
	if err := h.svc.Register(c.Request().Context(), u, req.Password); err != nil {
		return apperr.Render(c, err)
	}
	return c.JSON(http.StatusCreated, u)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	User        *User  `json:"user"`
}

func (h *Handler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	token, u, err := h.svc.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return apperr.Render(c, err)
	}
	return c.JSON(http.StatusOK, loginResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User:        u,
	})
}

func (h *Handler) Logout(c echo.Context) error {
	actor := auth.ActorFromContext(c.Request().Context())
	h.svc.Logout(c.Request().Context(), actor)
	return c.JSON(http.StatusOK, map[string]string{"status": "logged_out"})
}

func (h *Handler) Me(c echo.Context) error {
	actor := auth.ActorFromContext(c.Request().Context())
	u, err := h.svc.Get(c.Request().Context(), actor.ID)
	if err != nil {
		return apperr.Render(c, err)
	}
	return c.JSON(http.StatusOK, u)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	u, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return apperr.Render(c, err)
	}
	return c.JSON(http.StatusOK, u)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.List(c.Request().Context(), pg.Limit(), pg.Offset())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if items == nil {
		items = []*User{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg))
}

type updateRequest struct {
	Email       *string `json:"email,omitempty"`
	FullName    string  `json:"full_name"`
	Role        string  `json:"role"`
	Designation *string `json:"designation,omitempty"`
	Unit        *string `json:"unit,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	IsActive    bool    `json:"is_active"`
	Password    string  `json:"password,omitempty"`
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req updateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	update := &User{
		Email:       req.Email,
		FullName:    req.FullName,
		Role:        req.Role,
		Designation: req.Designation,
		Unit:        req.Unit,
		Phone:       req.Phone,
		IsActive:    req.IsActive,
	}
	u, err := h.svc.Update(c.Request().Context(), id, update, req.Password)
	if err != nil {
		return apperr.Render(c, err)
	}
	return c.JSON(http.StatusOK, u)
}
