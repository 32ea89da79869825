package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"lob-engine/internal/api"
	"lob-engine/internal/cache"
	"lob-engine/internal/config"
	"lob-engine/internal/engine"
	"lob-engine/internal/messaging"
	"lob-engine/internal/metrics"
	"lob-engine/internal/models"
	"lob-engine/internal/ws"
)

func main() {
	cfg := config.Load()

	book := engine.New(engine.Config{
		TickSize:         cfg.TickSize,
		MaxDisplayLevels: cfg.MaxDisplayLevels,
	})
	log.Printf("✅ Order book ready (tick=%g, levels=%d)", cfg.TickSize, cfg.MaxDisplayLevels)

	var redisCache *cache.RedisCache
	redisCache, err := cache.NewRedisCache(cfg)
	if err != nil {
		log.Printf("⚠️ Redis cache not available: %v", err)
		redisCache = nil
	} else {
		log.Println("✅ Redis cache connected")
	}
	defer func() {
		if redisCache != nil {
			redisCache.Close()
		}
	}()

	var wsHub *ws.Hub
	if cfg.WSEnabled {
		wsHub = ws.NewHub(&ws.HubConfig{
			HeartbeatInterval: time.Duration(cfg.WSHeartbeatSecs) * time.Second,
			SnapshotInterval:  time.Duration(cfg.WSSnapshotSecs) * time.Second,
			SnapshotLevels:    cfg.WSSnapshotLevels,
			RecentTradesLimit: cfg.RecentTradesLimit,
		}, book, redisCache)
		go wsHub.Run()
		defer wsHub.Stop()
		log.Println("✅ WebSocket hub started")
	}

	var publisher *messaging.Publisher
	publisher, err = messaging.NewPublisher(cfg.RabbitMQURL, cfg.RabbitMQExchange)
	if err != nil {
		log.Printf("⚠️ RabbitMQ publisher not available: %v", err)
		publisher = nil
	} else {
		log.Println("✅ RabbitMQ publisher connected")
		defer publisher.Close()
	}

	appMetrics := metrics.NewMetrics()
	if wsHub != nil {
		wsHub.SetMetrics(appMetrics)
	}

	book.SetTradeCallback(func(taker, maker models.Fill) {
		appMetrics.RecordTrade(taker.Size)

		if wsHub != nil {
			wsHub.BroadcastTrade(taker)
		}
		if redisCache != nil {
			redisCache.AddRecentFill(taker)
		}
		if publisher != nil {
			publisher.Publish("trade.executed", gin.H{
				"taker": taker,
				"maker": maker,
			})
			appMetrics.RecordMQPublished("trade.executed")
		}
	})

	router := gin.Default()
	api.RegisterRoutes(router, cfg, book, redisCache, wsHub, publisher, appMetrics)

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		log.Println("\n🛑 Shutting down...")
		os.Exit(0)
	}()

	log.Printf("🚀 Limit order book engine running on %s", cfg.ServerPort)
	log.Printf("📱 WebSocket endpoint: ws://%s/ws", cfg.ServerPort)
	router.Run(cfg.ServerPort)
}
