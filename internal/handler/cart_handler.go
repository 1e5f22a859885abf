package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/andikadwp/buyit/internal/cart"
	"github.com/andikadwp/buyit/internal/usecase"
)

// /cart のAPI。セッションごとのカートをスナップショットストアから開いて操作する。
type CartHandler struct {
	snapshots cart.SnapshotStore
	products  *usecase.ProductUsecase
}

func NewCartHandler(snapshots cart.SnapshotStore, products *usecase.ProductUsecase) *CartHandler {
	return &CartHandler{snapshots: snapshots, products: products}
}

func (h *CartHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/cart", h.get)
	e.POST("/cart/items", h.addItem)
	e.PATCH("/cart/items/:productID", h.updateQuantity)
	e.DELETE("/cart/items/:productID", h.removeItem)
	e.DELETE("/cart", h.clear)
}

// カート本体＋上限警告。stock_warningはAddItemでクランプが起きたときだけtrue。
type CartResponse struct {
	cart.Cart
	StockWarning bool `json:"stock_warning,omitempty"`
}

func (h *CartHandler) open(c echo.Context) (*cart.Store, error) {
	return cart.OpenStore(c.Request().Context(), h.snapshots, cartSessionFromContext(c))
}

func (h *CartHandler) get(c echo.Context) error {
	store, err := h.open(c)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, CartResponse{Cart: store.Snapshot()})
}

type addItemRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
}

func (h *CartHandler) addItem(c echo.Context) error {
	var req addItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if req.ProductID <= 0 {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid product_id"})
	}

	ctx := c.Request().Context()

	//価格・名前・在庫上限はカタログの現在値で確定する
	p, err := h.products.GetProductDetail(ctx, req.ProductID)
	if err != nil {
		return writeError(c, err)
	}

	store, err := h.open(c)
	if err != nil {
		return writeError(c, err)
	}

	snap, err := store.AddItem(ctx, cart.AddItemInput{
		ProductID:    p.ID,
		Name:         p.Name,
		ImageURL:     p.ImageURL,
		UnitPrice:    p.Price,
		Quantity:     req.Quantity,
		StockCeiling: p.Stock,
	})
	if errors.Is(err, cart.ErrStockExceeded) {
		//入るだけ入れてある。エラーではなく警告として返す
		return c.JSON(http.StatusOK, CartResponse{Cart: snap, StockWarning: true})
	}
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, CartResponse{Cart: snap})
}

type updateQuantityRequest struct {
	Quantity int64 `json:"quantity"`
}

func (h *CartHandler) updateQuantity(c echo.Context) error {
	productID, err := strconv.ParseInt(c.Param("productID"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid product id"})
	}

	var req updateQuantityRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	store, err := h.open(c)
	if err != nil {
		return writeError(c, err)
	}

	snap, err := store.UpdateQuantity(c.Request().Context(), productID, req.Quantity)
	if errors.Is(err, cart.ErrStockExceeded) {
		//こちらは拒否方式。数量は変わらない
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "stock exceeded"})
	}
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, CartResponse{Cart: snap})
}

func (h *CartHandler) removeItem(c echo.Context) error {
	productID, err := strconv.ParseInt(c.Param("productID"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid product id"})
	}

	store, err := h.open(c)
	if err != nil {
		return writeError(c, err)
	}

	snap, err := store.RemoveItem(c.Request().Context(), productID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, CartResponse{Cart: snap})
}

func (h *CartHandler) clear(c echo.Context) error {
	store, err := h.open(c)
	if err != nil {
		return writeError(c, err)
	}
	if err := store.Clear(c.Request().Context()); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, CartResponse{Cart: store.Snapshot()})
}
