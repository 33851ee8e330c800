package middleware

import (
    "net/http"
    "strconv"
    "strings"

    "github.com/golang-jwt/jwt/v5"
    "github.com/labstack/echo/v4"
)

// JWTAuth returns an Echo middleware that validates a Bearer staff token
// and injects the token's identity claims into the request context.
// Session tokens are issued by the platform's identity service; this core
// only consumes them.  Handlers read the values via c.Get("staff_id"),
// c.Get("tenant_id") and c.Get("role").  Every claim is required: a
// token without a tenant cannot be scoped and is rejected outright.
func JWTAuth(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            auth := c.Request().Header.Get("Authorization")
            if !strings.HasPrefix(auth, "Bearer ") {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
            }
            raw := strings.TrimPrefix(auth, "Bearer ")

            tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
                if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
                    return nil, echo.ErrUnauthorized
                }
                return []byte(secret), nil
            })
            if err != nil || !tok.Valid {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
            }

            claims, ok := tok.Claims.(jwt.MapClaims)
            if !ok {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
            }

            staffID, okStaff := claimUint64(claims, "sub")
            tenantID, okTenant := claimUint64(claims, "tenant_id")
            role, okRole := claims["role"].(string)
            if !okStaff || !okTenant || !okRole || role == "" {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
            }

            c.Set("staff_id", staffID)
            c.Set("tenant_id", tenantID)
            c.Set("role", role)
            return next(c)
        }
    }
}

// claimUint64 reads a numeric claim.  JSON numbers decode as float64, but
// tokens minted elsewhere may carry strings or ints; accept all three.
func claimUint64(claims jwt.MapClaims, key string) (uint64, bool) {
    switch v := claims[key].(type) {
    case float64:
        if v <= 0 {
            return 0, false
        }
        return uint64(v), true
    case int64:
        if v <= 0 {
            return 0, false
        }
        return uint64(v), true
    case string:
        n, err := strconv.ParseUint(v, 10, 64)
        if err != nil {
            return 0, false
        }
        return n, n > 0
    }
    return 0, false
}
