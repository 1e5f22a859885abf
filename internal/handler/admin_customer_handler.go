package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/andikadwp/buyit/internal/middleware"
	"github.com/andikadwp/buyit/internal/repository"
	"github.com/andikadwp/buyit/internal/usecase"
)

// /admin/customers と /admin/audit-logs
type AdminCustomerHandler struct {
	customers *usecase.AdminCustomerUsecase
	audits    *usecase.AdminAuditUsecase
}

func NewAdminCustomerHandler(customers *usecase.AdminCustomerUsecase, audits *usecase.AdminAuditUsecase) *AdminCustomerHandler {
	return &AdminCustomerHandler{customers: customers, audits: audits}
}

func (h *AdminCustomerHandler) RegisterRoutes(e *echo.Echo) {
	admin := e.Group("/admin")
	admin.Use(middleware.AdminIdentity())

	admin.GET("/customers", h.listCustomers)
	admin.GET("/audit-logs", h.listAuditLogs)
}

func pageLimitParams(c echo.Context, defaultLimit int) (int, int, bool) {
	page := 1
	if v := c.QueryParam("page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return 0, 0, false
		}
		page = p
	}
	limit := defaultLimit
	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return 0, 0, false
		}
		limit = l
	}
	return page, limit, true
}

func (h *AdminCustomerHandler) listCustomers(c echo.Context) error {
	page, limit, ok := pageLimitParams(c, 50)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid paging"})
	}

	out, err := h.customers.List(c.Request().Context(), page, limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminCustomerHandler) listAuditLogs(c echo.Context) error {
	page, limit, ok := pageLimitParams(c, 50)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid paging"})
	}

	out, err := h.audits.List(c.Request().Context(), repository.AuditLogFilter{
		Page:         page,
		Limit:        limit,
		Action:       c.QueryParam("action"),
		ResourceType: c.QueryParam("resource_type"),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
