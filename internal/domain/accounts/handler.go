package accounts

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/curaflow/curaflow/internal/platform/auth"
	"github.com/curaflow/curaflow/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterPublicRoutes mounts the unauthenticated account endpoints.
func (h *Handler) RegisterPublicRoutes(api *echo.Group) {
	accounts := api.Group("/accounts")
	accounts.POST("/signup/staff", h.signupStaff)
	accounts.POST("/signup/patient", h.signupPatient)
	accounts.POST("/login", h.login)
	accounts.GET("/verify", h.verifyEmail)
	accounts.POST("/password-reset/request", h.requestPasswordReset)
	accounts.POST("/password-reset", h.resetPassword)
}

// RegisterRoutes mounts the authenticated account endpoints.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/accounts/me", h.me)
	api.GET("/accounts/staff", h.listStaff, auth.RequireRole(auth.RoleStaff))
}

func (h *Handler) listStaff(c echo.Context) error {
	page := pagination.FromContext(c)
	results, total, err := h.svc.ListStaff(c.Request().Context(), page.Limit, page.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(results, total, page.Limit, page.Offset))
}

func (h *Handler) signupStaff(c echo.Context) error {
	var in SignupInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	u, err := h.svc.SignupStaff(c.Request().Context(), in)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, u)
}

func (h *Handler) signupPatient(c echo.Context) error {
	var in SignupInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	u, err := h.svc.SignupPatient(c.Request().Context(), in)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, u)
}

func (h *Handler) login(c echo.Context) error {
	var in LoginInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	result, err := h.svc.Login(c.Request().Context(), in)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	return c.JSON(http.StatusOK, result)
}

func (h *Handler) verifyEmail(c echo.Context) error {
	if err := h.svc.VerifyEmail(c.Request().Context(), c.QueryParam("token")); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "verified"})
}

func (h *Handler) requestPasswordReset(c echo.Context) error {
	var in struct {
		Email string `json:"email"`
	}
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.svc.RequestPasswordReset(c.Request().Context(), in.Email); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) resetPassword(c echo.Context) error {
	var in struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.svc.ResetPassword(c.Request().Context(), in.Token, in.Password); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) me(c echo.Context) error {
	userID := auth.UserIDFromContext(c.Request().Context())
	u, err := h.svc.Get(c.Request().Context(), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	}
	return c.JSON(http.StatusOK, u)
}
