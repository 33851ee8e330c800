package handler

import (
    "net/http"
    "strconv"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/hotel-guest-services/internal/lifecycle"
    "github.com/iliyamo/hotel-guest-services/internal/model"
)

// PortalHandler accepts guest submissions from the in-room QR portal.
// Portal routes carry no staff session: the tenant comes from the QR
// deep link and the guest is identified by the stay references the
// portal already resolved.  The expected amount is computed here from
// the submitted order lines and is immutable afterwards.
type PortalHandler struct {
    Facade *lifecycle.Facade
}

// NewPortalHandler constructs a PortalHandler.
func NewPortalHandler(f *lifecycle.Facade) *PortalHandler {
    if f == nil {
        panic("nil facade passed to NewPortalHandler")
    }
    return &PortalHandler{Facade: f}
}

type portalOrderLine struct {
    Name       string `json:"name"`
    PriceCents int64  `json:"price_cents"`
    Quantity   int64  `json:"quantity"`
}

type portalSubmission struct {
    Type          string            `json:"type"`
    GuestID       *uint64           `json:"guest_id"`
    BookingID     *uint64           `json:"booking_id"`
    RoomID        *uint64           `json:"room_id"`
    Note          string            `json:"note"`
    Items         []portalOrderLine `json:"items"`
    PaymentChoice string            `json:"payment_choice"`
}

// Submit handles POST /v1/portal/:tenant/requests.
func (h *PortalHandler) Submit(c echo.Context) error {
    tenantID, err := strconv.ParseUint(c.Param("tenant"), 10, 64)
    if err != nil || tenantID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tenant"})
    }
    var body portalSubmission
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if body.Type == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "type is required"})
    }
    var expected int64
    for _, line := range body.Items {
        if line.PriceCents < 0 || line.Quantity < 0 {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order line"})
        }
        qty := line.Quantity
        if qty == 0 {
            qty = 1
        }
        expected += line.PriceCents * qty
    }
    meta := map[string]string{}
    if body.PaymentChoice != "" {
        meta["payment_choice"] = body.PaymentChoice
    }
    req := &model.Request{
        TenantID:            tenantID,
        Type:                body.Type,
        GuestID:             body.GuestID,
        BookingID:           body.BookingID,
        RoomID:              body.RoomID,
        Note:                body.Note,
        ExpectedAmountCents: expected,
        Metadata:            meta,
    }
    res, err := h.Facade.Create(c.Request().Context(), req)
    if err != nil {
        return writeLifecycleError(c, err)
    }
    return c.JSON(http.StatusCreated, res)
}
