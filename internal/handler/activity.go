package handler

import (
    "net/http"
    "strconv"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/hotel-guest-services/internal/repository"
)

// ActivityHandler serves the audit trail of a request.
type ActivityHandler struct {
    Repo *repository.ActivityLogRepo
}

// NewActivityHandler constructs an ActivityHandler.
func NewActivityHandler(repo *repository.ActivityLogRepo) *ActivityHandler {
    if repo == nil {
        panic("nil repository passed to NewActivityHandler")
    }
    return &ActivityHandler{Repo: repo}
}

// ListByRequest handles GET /v1/requests/:id/activity.  Entries are
// written asynchronously by the activity consumer, so a verb that just
// ran may not appear for a moment.
func (h *ActivityHandler) ListByRequest(c echo.Context) error {
    tenantID, err := getTenantID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    id, err := pathID(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    }
    limit, _ := strconv.Atoi(c.QueryParam("limit"))
    entries, err := h.Repo.ListByRequest(c.Request().Context(), tenantID, id, limit)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusOK, echo.Map{"activity": entries})
}
