package middleware // middleware provides shared request processing for handlers

import (
    "net/http"

    "github.com/labstack/echo/v4"
)

// Staff roles carried in the session token's "role" claim.
const (
    RoleStaff     = "STAFF"
    RoleManager   = "MANAGER"
    RoleFrontdesk = "FRONTDESK"
)

// RequireRole returns a middleware function that enforces that the
// authenticated staff member has one of the specified roles.  It assumes
// JWTAuth has already stored the role in the context.  Requests with a
// missing or disallowed role are aborted with 403 Forbidden.  Note that
// role checks gate routes only; privileged billing actions additionally
// require a manager approval token validated by the billing engine.
func RequireRole(roles ...string) echo.MiddlewareFunc {
    allowed := make(map[string]bool, len(roles))
    for _, r := range roles {
        allowed[r] = true
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            v := c.Get("role")
            role, ok := v.(string)
            if !ok || !allowed[role] {
                return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
            }
            return next(c)
        }
    }
}
