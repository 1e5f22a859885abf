package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/andikadwp/buyit/internal/cart"
	"github.com/andikadwp/buyit/internal/usecase"
)

// /checkout のAPI。カートのスナップショットを読んでオーケストレータに渡す。
type CheckoutHandler struct {
	uc        *usecase.CheckoutUsecase
	snapshots cart.SnapshotStore
}

func NewCheckoutHandler(uc *usecase.CheckoutUsecase, snapshots cart.SnapshotStore) *CheckoutHandler {
	return &CheckoutHandler{uc: uc, snapshots: snapshots}
}

func (h *CheckoutHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/checkout/orders", h.createPendingOrder)
	e.POST("/checkout/sessions", h.beginPaymentSession)
	e.GET("/checkout/sessions/:id", h.sessionStatus)
	e.POST("/checkout/orders/:id/complete", h.onPaymentComplete)
}

func (h *CheckoutHandler) openCart(c echo.Context) (*cart.Store, error) {
	return cart.OpenStore(c.Request().Context(), h.snapshots, cartSessionFromContext(c))
}

type createPendingOrderRequest struct {
	FullName        string `json:"full_name"`
	Phone           string `json:"phone"`
	ShippingAddress string `json:"shipping_address"`
}

func (h *CheckoutHandler) createPendingOrder(c echo.Context) error {
	var req createPendingOrderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	store, err := h.openCart(c)
	if err != nil {
		return writeError(c, err)
	}

	out, err := h.uc.CreatePendingOrder(c.Request().Context(), customerIDFromContext(c), usecase.CreatePendingOrderInput{
		FullName:        req.FullName,
		Phone:           req.Phone,
		ShippingAddress: req.ShippingAddress,
		Snapshot:        store.Snapshot(),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

type beginPaymentSessionRequest struct {
	OrderID int64 `json:"order_id"`
}

func (h *CheckoutHandler) beginPaymentSession(c echo.Context) error {
	var req beginPaymentSessionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	store, err := h.openCart(c)
	if err != nil {
		return writeError(c, err)
	}

	out, err := h.uc.BeginPaymentSession(c.Request().Context(), usecase.BeginPaymentSessionInput{
		OrderID:  req.OrderID,
		Snapshot: store.Snapshot(),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CheckoutHandler) sessionStatus(c echo.Context) error {
	out, err := h.uc.SessionStatus(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

type onPaymentCompleteRequest struct {
	SessionID string `json:"session_id"`
}

func (h *CheckoutHandler) onPaymentComplete(c echo.Context) error {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req onPaymentCompleteRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	store, err := h.openCart(c)
	if err != nil {
		return writeError(c, err)
	}

	out, err := h.uc.OnPaymentComplete(c.Request().Context(), usecase.OnPaymentCompleteInput{
		OrderID:   orderID,
		SessionID: req.SessionID,
		Snapshot:  store.Snapshot(),
	}, store)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
