package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	"github.com/Skotchmaster/catalog/internal/metrics"
	"github.com/Skotchmaster/catalog/internal/middleware"
)

const APIPrefix = "/api/v1"

type Deps struct {
	AuthHandler *AuthHTTP
	ItemHandler *ItemHTTP
	Gate        *middleware.Gate
	DB          *gorm.DB
	Gatherer    prometheus.Gatherer
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", ready(d.DB))
	if d.Gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(metrics.Handler(d.Gatherer)))
	}

	v1 := e.Group(APIPrefix)

	auth := v1.Group("/auth")
	auth.POST("/signup", d.AuthHandler.Signup)
	auth.POST("/signin", d.AuthHandler.Signin)
	auth.POST("/refresh", d.AuthHandler.Refresh, d.Gate.RequireRefresh)
	auth.GET("/tokens", d.AuthHandler.ListTokens, d.Gate.RequireAccess)
	auth.PUT("/tokens/:id", d.AuthHandler.RevokeToken, d.Gate.RequireAccess)

	items := v1.Group("/items", d.Gate.RequireAccess)
	items.POST("", d.ItemHandler.CreateItem)
	items.GET("", d.ItemHandler.GetItems)
	items.GET("/search", d.ItemHandler.SearchItems)
	items.GET("/:id", d.ItemHandler.GetItem)
	items.PATCH("/:id/:field", d.ItemHandler.PatchItem)
	items.DELETE("/:id", d.ItemHandler.DeleteItem)
}

func ready(db *gorm.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		if db == nil {
			return c.NoContent(http.StatusOK)
		}
		sqlDB, err := db.DB()
		if err == nil {
			ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
			defer cancel()
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{
				"status": http.StatusServiceUnavailable,
				"error":  "database unavailable",
			})
		}
		return c.NoContent(http.StatusOK)
	}
}
