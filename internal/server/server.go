package server

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/andikadwp/buyit/internal/config"
	"github.com/andikadwp/buyit/internal/middleware"
)

// ルート登録できるハンドラ
type RouteRegistrar interface {
	RegisterRoutes(e *echo.Echo)
}

// Echoを組み立てて全ルートを登録する。
func New(cfg config.Config, handlers ...RouteRegistrar) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomw.Recover())
	if cfg.FEURL != "" {
		e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
			AllowOrigins: []string{cfg.FEURL},
			AllowHeaders: []string{
				echo.HeaderContentType,
				middleware.HeaderCustomerID,
				middleware.HeaderCartSession,
				middleware.HeaderAdminID,
			},
			ExposeHeaders: []string{middleware.HeaderCartSession},
		}))
	}

	//リクエストの身元とカートセッションを確定してから各ハンドラへ
	e.Use(middleware.CustomerIdentity())
	e.Use(middleware.CartSession())

	for _, h := range handlers {
		h.RegisterRoutes(e)
	}

	return e
}

func Start(e *echo.Echo, addr string) error {
	return e.Start(addr)
}
