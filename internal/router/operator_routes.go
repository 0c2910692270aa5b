package router // router defines how HTTP routes are registered for the API

import (
	"github.com/forgefinance/nft-marketplace/internal/handler"
	"github.com/forgefinance/nft-marketplace/internal/middleware"
	"github.com/labstack/echo/v4"
)

// RegisterOperator registers OPERATOR-scoped endpoints under /v1.
// The listing fee is marketplace-wide state; only the operator account
// may change it.
func RegisterOperator(e *echo.Echo, m *handler.MarketHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("OPERATOR"),
	)

	g.PUT("/market/listing-price", m.UpdateListingPrice)
}
