package handler // handler defines http handlers

import (
    "errors"
    "net/http"
    "strconv"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/hotel-guest-services/internal/lifecycle"
)

// getStaffID extracts the authenticated staff id stored by the JWT
// middleware.  An error means the route was registered without auth.
func getStaffID(c echo.Context) (uint64, error) {
    if v, ok := c.Get("staff_id").(uint64); ok && v > 0 {
        return v, nil
    }
    return 0, errors.New("no staff identity in context")
}

// getTenantID extracts the tenant scope stored by the JWT middleware.
func getTenantID(c echo.Context) (uint64, error) {
    if v, ok := c.Get("tenant_id").(uint64); ok && v > 0 {
        return v, nil
    }
    return 0, errors.New("no tenant scope in context")
}

// pathID parses the :id path parameter.
func pathID(c echo.Context) (uint64, error) {
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || id == 0 {
        return 0, errors.New("invalid request id")
    }
    return id, nil
}

// writeLifecycleError maps the core's sentinel errors onto HTTP
// responses.  Precondition failures are surfaced verbatim for user-facing
// messaging; anything unrecognized is a 500.
func writeLifecycleError(c echo.Context, err error) error {
    switch {
    case errors.Is(err, lifecycle.ErrRequestNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "request not found"})
    case errors.Is(err, lifecycle.ErrInvalidTransition):
        return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
    case errors.Is(err, lifecycle.ErrOverpayment):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    case errors.Is(err, lifecycle.ErrApprovalRequired):
        return c.JSON(http.StatusForbidden, echo.Map{"error": err.Error()})
    case errors.Is(err, lifecycle.ErrAlreadyTransferred),
        errors.Is(err, lifecycle.ErrAlreadySettled):
        return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
    case errors.Is(err, lifecycle.ErrConcurrentModification):
        return c.JSON(http.StatusConflict, echo.Map{"error": "request was modified concurrently, refresh and retry"})
    }
    return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
}
