package records

import (
	"net/http"

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

	r := api.Group("/medical-records")
	r.POST("", h.createRecord, staff)
	r.GET("", h.listRecords)
	r.GET("/:id", h.getRecord)
	r.PUT("/:id", h.updateRecord, staff)
	r.DELETE("/:id", h.deleteRecord, staff)

	p := api.Group("/prescriptions")
	p.POST("", h.createPrescription, staff)
	p.GET("", h.listPrescriptions)
	p.GET("/:id", h.getPrescription)
	p.PUT("/:id", h.updatePrescription, staff)
	p.DELETE("/:id", h.deletePrescription, staff)
}

// patientScope resolves which patient the caller may read. Staff pass a
// patient_id query param; patients are pinned to their own id.
func patientScope(c echo.Context) (uuid.UUID, error) {
	ctx := c.Request().Context()
	if auth.RoleFromContext(ctx) == auth.RolePatient {
		return auth.UserIDFromContext(ctx), nil
	}
	id, err := uuid.Parse(c.QueryParam("patient_id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "patient_id is required")
	}
	return id, nil
}

func (h *Handler) createRecord(c echo.Context) error {
	var r MedicalRecord
	if err := c.Bind(&r); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	r.StaffID = auth.UserIDFromContext(c.Request().Context())
	created, err := h.svc.CreateRecord(c.Request().Context(), &r)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *Handler) listRecords(c echo.Context) error {
	patientID, err := patientScope(c)
	if err != nil {
		return err
	}
	page := pagination.FromContext(c)
	results, total, err := h.svc.ListRecords(c.Request().Context(), patientID, page.Limit, page.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(results, total, page.Limit, page.Offset))
}

func (h *Handler) getRecord(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid record id")
	}
	ctx := c.Request().Context()
	r, err := h.svc.GetRecord(ctx, id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	if auth.RoleFromContext(ctx) == auth.RolePatient && r.PatientID != auth.UserIDFromContext(ctx) {
		return echo.NewHTTPError(http.StatusForbidden, "access denied")
	}
	return c.JSON(http.StatusOK, r)
}

func (h *Handler) updateRecord(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid record id")
	}
	var r MedicalRecord
	if err := c.Bind(&r); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	updated, err := h.svc.UpdateRecord(c.Request().Context(), id, &r)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *Handler) deleteRecord(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid record id")
	}
	if err := h.svc.DeleteRecord(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) createPrescription(c echo.Context) error {
	var p Prescription
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	p.StaffID = auth.UserIDFromContext(c.Request().Context())
	created, err := h.svc.CreatePrescription(c.Request().Context(), &p)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *Handler) listPrescriptions(c echo.Context) error {
	patientID, err := patientScope(c)
	if err != nil {
		return err
	}
	page := pagination.FromContext(c)
	results, total, err := h.svc.ListPrescriptions(c.Request().Context(), patientID, page.Limit, page.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(results, total, page.Limit, page.Offset))
}

func (h *Handler) getPrescription(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid prescription id")
	}
	ctx := c.Request().Context()
	p, err := h.svc.GetPrescription(ctx, id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	if auth.RoleFromContext(ctx) == auth.RolePatient && p.PatientID != auth.UserIDFromContext(ctx) {
		return echo.NewHTTPError(http.StatusForbidden, "access denied")
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) updatePrescription(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid prescription id")
	}
	var p Prescription
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	updated, err := h.svc.UpdatePrescription(c.Request().Context(), id, &p)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *Handler) deletePrescription(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid prescription id")
	}
	if err := h.svc.DeletePrescription(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
