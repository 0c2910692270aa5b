package router

import (
	"github.com/forgefinance/nft-marketplace/internal/handler"
	"github.com/forgefinance/nft-marketplace/internal/middleware"
	"github.com/labstack/echo/v4"
)

// RegisterTrader registers the authenticated marketplace endpoints under
// /v1. All routes require a valid JWT with the TRADER or OPERATOR role.
// Traders create collections, mint tokens, list them for sale, purchase
// listings and view their role-filtered projections.
func RegisterTrader(e *echo.Echo, col *handler.CollectionHandler, tok *handler.TokenHandler, mkt *handler.MarketHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("TRADER", "OPERATOR"),
	)

	// ---- Collection factory ----
	g.POST("/collections", col.CreateCollection)
	g.GET("/collections", col.ListMyCollections)

	// ---- Token registry ----
	g.POST("/collections/:id/tokens", tok.MintToken)
	g.POST("/collections/:id/tokens/batch", tok.MintBatch)

	// ---- Marketplace ----
	g.POST("/market/items", mkt.CreateItem)
	g.POST("/market/items/:id/sale", mkt.CreateSale)
	g.POST("/market/items/:id/transfer", mkt.Transfer)
	g.GET("/market/my-items", mkt.FetchMyItems)
	g.GET("/market/created", mkt.FetchCreated)
}
