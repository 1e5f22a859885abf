package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/andikadwp/buyit/internal/usecase"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		return c.JSON(he.Status, ErrorResponse{Error: he.Message})
	}

	// チェックアウトの段階別エラー
	var oce *usecase.OrderCreationError
	if errors.As(err, &oce) {
		return c.JSON(http.StatusBadGateway, ErrorResponse{Error: "order creation failed"})
	}
	var pse *usecase.PaymentSessionError
	if errors.As(err, &pse) {
		return c.JSON(http.StatusBadGateway, ErrorResponse{Error: "payment session failed"})
	}
	var ofe *usecase.OrderFinalizationError
	if errors.As(err, &ofe) {
		//決済は済んでいる。UI側は注文IDを控えてサポート導線へ
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "order finalization failed"})
	}

	//500
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

// ミドルウェアが詰めた顧客ID。無ければ空文字。
func customerIDFromContext(c echo.Context) string {
	v, _ := c.Get("customer_id").(string)
	return v
}

// ミドルウェアが詰めたカートセッションID。
func cartSessionFromContext(c echo.Context) string {
	v, _ := c.Get("cart_session").(string)
	return v
}
