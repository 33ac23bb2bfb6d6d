package finance

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
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

func (h *Handler) RegisterRoutes(api *echo.Group) {
	staff := auth.RequireRole(auth.RoleStaff)

	p := api.Group("/payments", staff)
	p.POST("", h.createPayment)
	p.GET("", h.listPayments)
	p.GET("/:id", h.getPayment)
	p.PUT("/:id", h.updatePayment)
	p.DELETE("/:id", h.deletePayment)

	f := api.Group("/finances", staff)
	f.GET("/records", h.listRecords)
	f.GET("/summary", h.summary)
}

func (h *Handler) createPayment(c echo.Context) error {
	var p PaymentHistory
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	created, err := h.svc.CreatePayment(c.Request().Context(), &p)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *Handler) listPayments(c echo.Context) error {
	page := pagination.FromContext(c)
	results, total, err := h.svc.ListPayments(c.Request().Context(), c.QueryParam("status"), page.Limit, page.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(results, total, page.Limit, page.Offset))
}

func (h *Handler) getPayment(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payment id")
	}
	p, err := h.svc.GetPayment(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) updatePayment(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payment id")
	}
	var p PaymentHistory
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	updated, err := h.svc.UpdatePayment(c.Request().Context(), id, &p)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *Handler) deletePayment(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payment id")
	}
	if err := h.svc.DeletePayment(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) listRecords(c echo.Context) error {
	page := pagination.FromContext(c)
	params := RecordSearch{
		Type:   c.QueryParam("type"),
		Limit:  page.Limit,
		Offset: page.Offset,
	}
	from, to, err := parsePeriod(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	params.From, params.To = from, to

	results, total, err := h.svc.ListRecords(c.Request().Context(), params)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(results, total, page.Limit, page.Offset))
}

func (h *Handler) summary(c echo.Context) error {
	from, to, err := parsePeriod(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	s, err := h.svc.Summary(c.Request().Context(), from, to)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, s)
}

// parsePeriod reads the optional from/to query params as RFC 3339 dates.
func parsePeriod(c echo.Context) (time.Time, time.Time, error) {
	var from, to time.Time
	if v := c.QueryParam("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return from, to, fmt.Errorf("invalid from date %q", v)
		}
		from = t
	}
	if v := c.QueryParam("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return from, to, fmt.Errorf("invalid to date %q", v)
		}
		to = t
	}
	return from, to, nil
}
