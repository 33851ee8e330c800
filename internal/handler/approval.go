package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/hotel-guest-services/internal/approval"
)

// ApprovalHandler lets managers mint approval tokens for privileged
// billing actions.  The route is gated to the MANAGER role; the token
// itself is what authorizes the eventual write-off, so it can be handed
// to any staff member to execute.
type ApprovalHandler struct {
    Authority *approval.Authority
}

// NewApprovalHandler constructs an ApprovalHandler.
func NewApprovalHandler(a *approval.Authority) *ApprovalHandler {
    if a == nil {
        panic("nil authority passed to NewApprovalHandler")
    }
    return &ApprovalHandler{Authority: a}
}

// Mint handles POST /v1/approvals with body
// {"action": "complimentary", "max_amount_cents": 5000}.
func (h *ApprovalHandler) Mint(c echo.Context) error {
    staffID, err := getStaffID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var body struct {
        Action         string `json:"action"`
        MaxAmountCents int64  `json:"max_amount_cents"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if body.Action == "" || body.MaxAmountCents < 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "action and max_amount_cents are required"})
    }
    token, err := h.Authority.Mint(staffID, body.Action, body.MaxAmountCents)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to mint approval token"})
    }
    return c.JSON(http.StatusCreated, echo.Map{"approval_token": token})
}
