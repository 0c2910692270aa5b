package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/forgefinance/nft-marketplace/internal/handler"
	"github.com/forgefinance/nft-marketplace/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance. Currently it exposes only a health check,
// used by load balancers and monitoring to verify the service is up.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication-related routes and applies
// the necessary middleware. Unauthenticated operations live under
// /v1/auth, while the protected /v1/me endpoint requires a valid access
// token for any known role.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("TRADER", "OPERATOR"),
	)
	auth.GET("/me", a.Me)
}

// RegisterPublic registers unauthenticated browse endpoints. These are
// the read-only views a guest or external indexer needs: the open
// listings, the current listing fee and the per-token ownership
// queries. The cache middleware is applied here so repeated reads are
// served from Redis.
func RegisterPublic(e *echo.Echo, t *handler.TokenHandler, m *handler.MarketHandler, cache echo.MiddlewareFunc) {
	g := e.Group("/v1", cache)
	// All unsold listings, full-scan semantics.
	g.GET("/market/items", m.FetchMarketItems)
	// Marketplace-wide listing fee; readable by anyone.
	g.GET("/market/listing-price", m.GetListingPrice)
	// owner-of + token-URI view for a single token.
	g.GET("/collections/:id/tokens/:no", t.GetToken)
	// balance-of view: token count per account in a collection.
	g.GET("/collections/:id/balance/:account", t.GetBalance)
}
