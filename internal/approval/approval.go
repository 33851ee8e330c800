// Package approval implements the manager approval authority.  Approval
// tokens are short-lived HS256 JWTs minted for one specific action and a
// maximum amount; the billing engine validates them before executing a
// write-off.  Using signed tokens keeps the authority stateless: any
// instance can validate a token minted by any other.
package approval

import (
    "context"
    "time"

    "github.com/golang-jwt/jwt/v5"

    "github.com/iliyamo/hotel-guest-services/internal/lifecycle"
)

// Authority mints and validates approval tokens.  It implements
// lifecycle.ApprovalAuthority.
type Authority struct {
    secret []byte
    ttl    time.Duration
}

// New returns an Authority signing with the given secret.  ttlMin bounds
// how long a minted token stays valid.
func New(secret string, ttlMin int) *Authority {
    return &Authority{secret: []byte(secret), ttl: time.Duration(ttlMin) * time.Minute}
}

// Mint issues an approval token for one action up to maxAmountCents,
// signed by the manager identified by approverID.  The claims carry the
// action (act), amount ceiling (amt), approver (sub), expiry (exp) and
// issue time (iat).
func (a *Authority) Mint(approverID uint64, action string, maxAmountCents int64) (string, error) {
    now := time.Now().UTC()
    claims := jwt.MapClaims{
        "sub": approverID,
        "act": action,
        "amt": maxAmountCents,
        "exp": now.Add(a.ttl).Unix(),
        "iat": now.Unix(),
    }
    t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    return t.SignedString(a.secret)
}

// ValidateApprovalToken checks that the token is present, correctly
// signed, unexpired, minted for the requested action and covers the
// requested amount.  On success it returns the approver's staff id; every
// failure collapses into lifecycle.ErrApprovalRequired so callers cannot
// distinguish forged from merely expired tokens.
func (a *Authority) ValidateApprovalToken(ctx context.Context, token, action string, amountCents int64) (uint64, error) {
    if token == "" {
        return 0, lifecycle.ErrApprovalRequired
    }
    tok, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, lifecycle.ErrApprovalRequired
        }
        return a.secret, nil
    })
    if err != nil || !tok.Valid {
        return 0, lifecycle.ErrApprovalRequired
    }
    claims, ok := tok.Claims.(jwt.MapClaims)
    if !ok {
        return 0, lifecycle.ErrApprovalRequired
    }
    act, _ := claims["act"].(string)
    if act != action {
        return 0, lifecycle.ErrApprovalRequired
    }
    amt, ok := claims["amt"].(float64)
    if !ok || int64(amt) < amountCents {
        return 0, lifecycle.ErrApprovalRequired
    }
    sub, ok := claims["sub"].(float64)
    if !ok || sub <= 0 {
        return 0, lifecycle.ErrApprovalRequired
    }
    return uint64(sub), nil
}
