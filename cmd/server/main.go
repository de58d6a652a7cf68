package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-order-system/internal/config"
	"github.com/iliyamo/restaurant-order-system/internal/database"
	"github.com/iliyamo/restaurant-order-system/internal/handler"
	"github.com/iliyamo/restaurant-order-system/internal/middleware"
	"github.com/iliyamo/restaurant-order-system/internal/queue"
	"github.com/iliyamo/restaurant-order-system/internal/repository"
	"github.com/iliyamo/restaurant-order-system/internal/router"
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
	if err := database.Migrate(ctx, db); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	cancel()

	userRepo := repository.NewUserRepo(db)
	tokenRepo := repository.NewTokenRepo(db)
	restaurantRepo := repository.NewRestaurantRepo(db)
	tableRepo := repository.NewTableRepo(db)
	dishRepo := repository.NewDishRepo(db)
	orderRepo := repository.NewOrderRepo(db)

	authHandler := handler.NewAuthHandler(cfg, userRepo, tokenRepo)
	catalogHandler := handler.NewCatalogHandler(restaurantRepo, dishRepo, tableRepo)
	orderHandler := handler.NewOrderHandler(orderRepo, dishRepo, restaurantRepo, tableRepo, userRepo, cfg.AMQPURL)

	// Redis is optional; without it caching and rate limiting pass through.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; response cache and rate limiting disabled")
	}
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	e := echo.New()
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authHandler, cfg.JWTSecret)
	router.RegisterCatalog(e, catalogHandler, cfg.JWTSecret, cache)
	router.RegisterOrders(e, orderHandler, cfg.JWTSecret)

	// Background consumer appends completed orders to logs/orders.log.
	go func() {
		if err := queue.StartOrderConsumer(cfg.AMQPURL); err != nil {
			log.Printf("order consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
