package inventory

import (
	"net/http"
	"strings"

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

	items := api.Group("/stock", staff)
	items.POST("", h.createItem)
	items.GET("", h.listItems)
	items.GET("/:id", h.getItem)
	items.PUT("/:id", h.updateItem)
	items.DELETE("/:id", h.deleteItem)
	items.POST("/:id/reorder", h.reorder)

	vendors := api.Group("/vendors", staff)
	vendors.POST("", h.createVendor)
	vendors.GET("", h.listVendors)
	vendors.GET("/:id", h.getVendor)
	vendors.GET("/:id/metrics", h.vendorMetrics)
	vendors.PUT("/:id", h.updateVendor)
	vendors.DELETE("/:id", h.deleteVendor)

	orders := api.Group("/stock-orders", staff)
	orders.GET("", h.listOrders)
	orders.GET("/:id", h.getOrder)
}

// RegisterPublicRoutes mounts the token-less confirm/reject links embedded
// in vendor mail. Ids are comma separated and each id is processed on its
// own, so a bad id never blocks the others.
func (h *Handler) RegisterPublicRoutes(e *echo.Echo) {
	e.GET("/confirm", h.confirm)
	e.GET("/reject", h.reject)
}

func splitIDs(raw string) []string {
	return strings.Split(raw, ",")
}

func (h *Handler) confirm(c echo.Context) error {
	raw := c.QueryParam("ids")
	if raw == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "ids is required")
	}
	out := h.svc.ConfirmOrders(c.Request().Context(), splitIDs(raw))
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) reject(c echo.Context) error {
	raw := c.QueryParam("ids")
	if raw == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "ids is required")
	}
	out := h.svc.RejectOrders(c.Request().Context(), splitIDs(raw), c.QueryParam("reason"))
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) createItem(c echo.Context) error {
	var item StockItem
	if err := c.Bind(&item); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	item.CreatedBy = auth.UserIDFromContext(c.Request().Context())
	created, err := h.svc.CreateItem(c.Request().Context(), &item)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *Handler) listItems(c echo.Context) error {
	page := pagination.FromContext(c)
	results, total, err := h.svc.ListItems(c.Request().Context(), page.Limit, page.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(results, total, page.Limit, page.Offset))
}

func (h *Handler) getItem(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid stock item id")
	}
	item, err := h.svc.GetItem(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return c.JSON(http.StatusOK, item)
}

func (h *Handler) updateItem(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid stock item id")
	}
	var item StockItem
	if err := c.Bind(&item); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	updated, err := h.svc.UpdateItem(c.Request().Context(), id, &item)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *Handler) deleteItem(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid stock item id")
	}
	if err := h.svc.DeleteItem(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) reorder(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid stock item id")
	}
	var body struct {
		Quantity int `json:"quantity"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	requestedBy := auth.UserIDFromContext(c.Request().Context())
	order, err := h.svc.Reorder(c.Request().Context(), id, requestedBy, body.Quantity)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, order)
}

func (h *Handler) createVendor(c echo.Context) error {
	var v Vendor
	if err := c.Bind(&v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	created, err := h.svc.CreateVendor(c.Request().Context(), &v)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *Handler) listVendors(c echo.Context) error {
	page := pagination.FromContext(c)
	results, total, err := h.svc.ListVendors(c.Request().Context(), page.Limit, page.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(results, total, page.Limit, page.Offset))
}

func (h *Handler) getVendor(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid vendor id")
	}
	v, err := h.svc.GetVendor(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return c.JSON(http.StatusOK, v)
}

func (h *Handler) vendorMetrics(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid vendor id")
	}
	m, err := h.svc.VendorMetrics(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return c.JSON(http.StatusOK, m)
}

func (h *Handler) updateVendor(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid vendor id")
	}
	var v Vendor
	if err := c.Bind(&v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	updated, err := h.svc.UpdateVendor(c.Request().Context(), id, &v)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *Handler) deleteVendor(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid vendor id")
	}
	if err := h.svc.DeleteVendor(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) listOrders(c echo.Context) error {
	page := pagination.FromContext(c)
	results, total, err := h.svc.ListOrders(c.Request().Context(), page.Limit, page.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(results, total, page.Limit, page.Offset))
}

func (h *Handler) getOrder(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid order id")
	}
	o, err := h.svc.GetOrder(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return c.JSON(http.StatusOK, o)
}
