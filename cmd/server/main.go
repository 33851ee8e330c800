package main // Entry point package

import (
    "context"
    "log"
    "time"

    "github.com/joho/godotenv"
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/hotel-guest-services/internal/approval"
    "github.com/iliyamo/hotel-guest-services/internal/config"
    "github.com/iliyamo/hotel-guest-services/internal/database"
    "github.com/iliyamo/hotel-guest-services/internal/handler"
    "github.com/iliyamo/hotel-guest-services/internal/lifecycle"
    "github.com/iliyamo/hotel-guest-services/internal/queue"
    "github.com/iliyamo/hotel-guest-services/internal/repository"
    "github.com/iliyamo/hotel-guest-services/internal/router"
    publisher "github.com/iliyamo/hotel-guest-services/internal/service"
)

func main() {
    // Load .env when present; real deployments set variables directly.
    _ = godotenv.Load()

    cfg := config.Load()

    db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
    if err != nil {
        log.Fatalf("database: %v", err)
    }
    defer func() { _ = db.Close() }()

    ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
    if err := database.Migrate(ctx, db); err != nil {
        cancel()
        log.Fatalf("migrate: %v", err)
    }
    cancel()

    // Redis is optional: a nil client disables rate limiting and caching.
    rdb := config.NewRedisClient()
    if rdb == nil {
        log.Println("redis unavailable, rate limiting and caching disabled")
    }

    requests := repository.NewRequestRepo(db)
    activity := repository.NewActivityLogRepo(db)

    // Background consumers drain the ledger and activity queues.  They
    // reconnect with backoff on broker failure, so a down broker delays
    // side effects without failing requests.
    go func() {
        if err := queue.StartLedgerConsumer(); err != nil {
            log.Printf("ledger consumer stopped: %v", err)
        }
    }()
    go func() {
        if err := queue.StartActivityConsumer(activity); err != nil {
            log.Printf("activity consumer stopped: %v", err)
        }
    }()

    approvals := approval.New(cfg.ApprovalSecret, cfg.ApprovalTTLMin)
    facade := lifecycle.NewFacade(requests, approvals, publisher.NewLedgerRecorder(), publisher.NewActivityLogger())

    e := echo.New()
    router.RegisterRoutes(e, router.Deps{
        Requests:  handler.NewRequestHandler(facade),
        Portal:    handler.NewPortalHandler(facade),
        Activity:  handler.NewActivityHandler(activity),
        Approvals: handler.NewApprovalHandler(approvals),
        JWTSecret: cfg.JWTSecret,
        RateLimit: config.LoadRateLimitConfig(),
        Cache:     config.LoadCacheConfig(),
        Redis:     rdb,
    })

    addr := ":" + cfg.Port
    log.Printf("listening on %s (env=%s)", addr, cfg.Env)
    if err := e.Start(addr); err != nil {
        log.Fatal(err)
    }
}
