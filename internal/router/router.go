package router

import (
    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/hotel-guest-services/internal/config"
    "github.com/iliyamo/hotel-guest-services/internal/handler"
    "github.com/iliyamo/hotel-guest-services/internal/middleware"
)

// Deps carries everything route registration needs.  Keeping it in one
// struct means main builds the graph once and the router stays a pure
// wiring layer.
type Deps struct {
    Requests  *handler.RequestHandler
    Portal    *handler.PortalHandler
    Activity  *handler.ActivityHandler
    Approvals *handler.ApprovalHandler

    JWTSecret string
    RateLimit config.RateLimitConfig
    Cache     config.CacheConfig
    Redis     *redis.Client
}

// RegisterRoutes wires every endpoint onto the Echo instance.
//
// Three surfaces exist:
//   - /healthz, unauthenticated, for load balancers.
//   - /v1/portal/:tenant/requests, unauthenticated guest submission.
//   - /v1/*, staff endpoints behind JWT auth and role checks.
//
// Rate limiting applies to both the portal and the staff group so a
// misbehaving kiosk cannot starve the dashboard.  The response cache
// only wraps staff read endpoints.
func RegisterRoutes(e *echo.Echo, d Deps) {
    e.GET("/healthz", handler.Health)

    limiter := middleware.NewTokenBucket(d.RateLimit, d.Redis)
    cache := middleware.NewRedisCache(d.Cache, d.Redis)

    e.POST("/v1/portal/:tenant/requests", d.Portal.Submit, limiter)

    staff := e.Group("/v1")
    staff.Use(middleware.JWTAuth(d.JWTSecret))
    staff.Use(middleware.RequireRole(middleware.RoleStaff, middleware.RoleManager, middleware.RoleFrontdesk))
    staff.Use(limiter)

    staff.GET("/requests", d.Requests.List, cache)
    staff.GET("/requests/:id", d.Requests.Get)
    staff.GET("/requests/:id/activity", d.Activity.ListByRequest)

    staff.POST("/requests/:id/assign", d.Requests.Assign)
    staff.POST("/requests/:id/status", d.Requests.AdvanceStatus)
    staff.POST("/requests/:id/payment", d.Requests.CollectPayment)
    staff.POST("/requests/:id/complimentary", d.Requests.MarkComplimentary)
    staff.POST("/requests/:id/transfer", d.Requests.Transfer)

    // Token minting is manager-only; the extra RequireRole narrows the
    // group-level check.
    staff.POST("/approvals", d.Approvals.Mint, middleware.RequireRole(middleware.RoleManager))
}
