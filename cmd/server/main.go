package main // Entry point package

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/forgefinance/nft-marketplace/internal/config"
	"github.com/forgefinance/nft-marketplace/internal/database"
	"github.com/forgefinance/nft-marketplace/internal/handler"
	"github.com/forgefinance/nft-marketplace/internal/middleware"
	"github.com/forgefinance/nft-marketplace/internal/model"
	"github.com/forgefinance/nft-marketplace/internal/queue"
	"github.com/forgefinance/nft-marketplace/internal/repository"
	"github.com/forgefinance/nft-marketplace/internal/router"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := database.Migrate(ctx, db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	users := repository.NewUserRepo(db)
	refreshTokens := repository.NewRefreshTokenRepo(db)
	collections := repository.NewCollectionRepo(db)
	tokens := repository.NewTokenRepo(db)

	// Bootstrap the ledger accounts and the default collection. This is
	// the service's analogue of deploying the marketplace and NFT
	// contracts: the custody account id and the collection id are the
	// addresses everything else references.
	marketID, err := users.EnsureAccount(ctx, cfg.MarketEmail, cfg.OperatorPassword, model.RoleMarket, cfg.BcryptCost)
	if err != nil {
		log.Fatalf("ensure market account: %v", err)
	}
	operatorID, err := users.EnsureAccount(ctx, cfg.OperatorEmail, cfg.OperatorPassword, model.RoleOperator, cfg.BcryptCost)
	if err != nil {
		log.Fatalf("ensure operator account: %v", err)
	}
	collectionID, err := collections.EnsureDefault(ctx, operatorID, cfg.CollectionName, cfg.CollectionSymbol)
	if err != nil {
		log.Fatalf("ensure default collection: %v", err)
	}

	market := repository.NewMarketRepo(db, tokens, marketID, operatorID)
	if err := market.EnsureListingPrice(ctx, cfg.ListingPrice); err != nil {
		log.Fatalf("ensure listing price: %v", err)
	}

	log.Printf("marketplace account id: %d", marketID)
	log.Printf("default collection %q (%s) id: %d", cfg.CollectionName, cfg.CollectionSymbol, collectionID)

	authHandler := handler.NewAuthHandler(cfg, users, refreshTokens)
	collectionHandler := handler.NewCollectionHandler(collections)
	tokenHandler := handler.NewTokenHandler(tokens, collections)
	marketHandler := handler.NewMarketHandler(market, tokens)

	// Redis is optional infrastructure: when unavailable the cache and
	// rate limiter become pass-throughs.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; response cache and rate limiting disabled")
	}
	cacheMW := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	rateMW := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	e := echo.New()
	e.Use(rateMW)
	router.RegisterRoutes(e)
	router.RegisterAuth(e, authHandler, cfg.JWTSecret)
	router.RegisterPublic(e, tokenHandler, marketHandler, cacheMW)
	router.RegisterTrader(e, collectionHandler, tokenHandler, marketHandler, cfg.JWTSecret)
	router.RegisterOperator(e, marketHandler, cfg.JWTSecret)

	// Background consumer standing in for the external event indexer.
	go func() {
		if err := queue.StartMarketConsumer(); err != nil {
			log.Printf("market consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
