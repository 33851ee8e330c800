package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/hotel-guest-services/internal/lifecycle"
    "github.com/iliyamo/hotel-guest-services/internal/model"
)

// RequestHandler exposes the lifecycle verbs of the request core to the
// staff dashboard.  All methods assume JWT authentication and role
// validation ran in middleware; tenant scoping comes from the session
// token, never from the request body.
type RequestHandler struct {
    Facade *lifecycle.Facade
}

// NewRequestHandler constructs a RequestHandler.  The facade must be
// non-nil.
func NewRequestHandler(f *lifecycle.Facade) *RequestHandler {
    if f == nil {
        panic("nil facade passed to NewRequestHandler")
    }
    return &RequestHandler{Facade: f}
}

// List handles GET /v1/requests.  Optional query filters: status,
// billing_status, type, assigned_to=me.
func (h *RequestHandler) List(c echo.Context) error {
    tenantID, err := getTenantID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    filter := lifecycle.ListFilter{
        Status:        model.RequestStatus(c.QueryParam("status")),
        BillingStatus: model.BillingStatus(c.QueryParam("billing_status")),
        Type:          c.QueryParam("type"),
    }
    if c.QueryParam("assigned_to") == "me" {
        if staffID, err := getStaffID(c); err == nil {
            filter.AssignedTo = staffID
        }
    }
    reqs, err := h.Facade.List(c.Request().Context(), tenantID, filter)
    if err != nil {
        return writeLifecycleError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"requests": reqs})
}

// Get handles GET /v1/requests/:id.
func (h *RequestHandler) Get(c echo.Context) error {
    tenantID, err := getTenantID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    id, err := pathID(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    }
    req, err := h.Facade.Get(c.Request().Context(), tenantID, id)
    if err != nil {
        return writeLifecycleError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{
        "request": req,
        "settled": lifecycle.IsSettled(req),
    })
}

// Assign handles POST /v1/requests/:id/assign.  Without a staff_id in the
// body the caller assigns the request to themselves.
func (h *RequestHandler) Assign(c echo.Context) error {
    tenantID, staffID, id, ok := identityAndID(c)
    if !ok {
        return nil
    }
    var body struct {
        StaffID uint64 `json:"staff_id"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    assignee := body.StaffID
    if assignee == 0 {
        assignee = staffID
    }
    res, err := h.Facade.Assign(c.Request().Context(), tenantID, id, assignee, staffID)
    if err != nil {
        return writeLifecycleError(c, err)
    }
    return c.JSON(http.StatusOK, res)
}

// AdvanceStatus handles POST /v1/requests/:id/status with body
// {"status": "in_progress" | "completed"}.
func (h *RequestHandler) AdvanceStatus(c echo.Context) error {
    tenantID, staffID, id, ok := identityAndID(c)
    if !ok {
        return nil
    }
    var body struct {
        Status model.RequestStatus `json:"status"`
    }
    if err := c.Bind(&body); err != nil || !body.Status.Valid() {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
    }
    res, err := h.Facade.Advance(c.Request().Context(), tenantID, id, body.Status, staffID)
    if err != nil {
        return writeLifecycleError(c, err)
    }
    return c.JSON(http.StatusOK, res)
}

// CollectPayment handles POST /v1/requests/:id/payment.  The payment
// itself already happened at the gateway or cash drawer; this endpoint
// records its outcome against the request.
func (h *RequestHandler) CollectPayment(c echo.Context) error {
    tenantID, staffID, id, ok := identityAndID(c)
    if !ok {
        return nil
    }
    var body lifecycle.PaymentInput
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if body.AmountCents <= 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "amount_cents must be positive"})
    }
    if body.Method == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "method is required"})
    }
    res, err := h.Facade.CollectPayment(c.Request().Context(), tenantID, id, body, staffID)
    if err != nil {
        return writeLifecycleError(c, err)
    }
    return c.JSON(http.StatusOK, res)
}

// MarkComplimentary handles POST /v1/requests/:id/complimentary with body
// {"reason": "...", "approval_token": "..."}.
func (h *RequestHandler) MarkComplimentary(c echo.Context) error {
    tenantID, staffID, id, ok := identityAndID(c)
    if !ok {
        return nil
    }
    var body struct {
        Reason        string `json:"reason"`
        ApprovalToken string `json:"approval_token"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if body.Reason == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "reason is required"})
    }
    res, err := h.Facade.MarkComplimentary(c.Request().Context(), tenantID, id, body.Reason, body.ApprovalToken, staffID)
    if err != nil {
        return writeLifecycleError(c, err)
    }
    return c.JSON(http.StatusOK, res)
}

// Transfer handles POST /v1/requests/:id/transfer, handing billing to the
// front desk.  Repeats return the original reference code with no_op set.
func (h *RequestHandler) Transfer(c echo.Context) error {
    tenantID, staffID, id, ok := identityAndID(c)
    if !ok {
        return nil
    }
    res, err := h.Facade.TransferToFrontdesk(c.Request().Context(), tenantID, id, staffID)
    if err != nil {
        return writeLifecycleError(c, err)
    }
    return c.JSON(http.StatusOK, res)
}

// identityAndID bundles the three values every verb needs.  When ok is
// false the error response has already been written and the handler
// should return nil.
func identityAndID(c echo.Context) (tenantID, staffID, id uint64, ok bool) {
    tenantID, terr := getTenantID(c)
    staffID, serr := getStaffID(c)
    if terr != nil || serr != nil {
        _ = c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
        return 0, 0, 0, false
    }
    id, perr := pathID(c)
    if perr != nil {
        _ = c.JSON(http.StatusBadRequest, echo.Map{"error": perr.Error()})
        return 0, 0, 0, false
    }
    return tenantID, staffID, id, true
}
