package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	CtxCustomerIDKey  = "customer_id"  // string (uuid)
	CtxCartSessionKey = "cart_session" // string (uuid)
	CtxAdminIDKey     = "admin_id"     // string (uuid)

	HeaderCustomerID  = "X-Customer-ID"
	HeaderCartSession = "X-Cart-Session"
	HeaderAdminID     = "X-Admin-ID"
)

// 認証レイヤが付けた顧客IDヘッダをcontextへ保存する。
// ヘッダが無いリクエストはそのまま通す（要認証のusecase側で401にする）。
func CustomerIdentity() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := strings.TrimSpace(c.Request().Header.Get(HeaderCustomerID))
			if raw != "" {
				id, err := uuid.Parse(raw)
				if err != nil {
					return c.JSON(http.StatusBadRequest, errorJSON("invalid customer id"))
				}
				c.Set(CtxCustomerIDKey, id.String())
			}
			return next(c)
		}
	}
}

// カートのセッションIDを確定する。
// ヘッダに無ければ新規発行して、レスポンスヘッダで必ず返す。
func CartSession() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sessionID := strings.TrimSpace(c.Request().Header.Get(HeaderCartSession))
			if sessionID != "" {
				id, err := uuid.Parse(sessionID)
				if err != nil {
					return c.JSON(http.StatusBadRequest, errorJSON("invalid cart session"))
				}
				sessionID = id.String()
			} else {
				sessionID = uuid.NewString()
			}

			c.Set(CtxCartSessionKey, sessionID)
			c.Response().Header().Set(HeaderCartSession, sessionID)
			return next(c)
		}
	}
}

// 管理APIの操作者ID。ヘッダ必須（認可自体は外側のゲートウェイ）。
func AdminIdentity() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := strings.TrimSpace(c.Request().Header.Get(HeaderAdminID))
			if raw == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}
			id, err := uuid.Parse(raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}
			c.Set(CtxAdminIDKey, id.String())
			return next(c)
		}
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func errorJSON(msg string) errorResponse {
	return errorResponse{Error: msg}
}
