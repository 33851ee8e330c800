package approval

import (
    "context"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/hotel-guest-services/internal/lifecycle"
)

func TestMintAndValidate(t *testing.T) {
    a := New("test-secret", 15)
    token, err := a.Mint(55, "complimentary", 5000)
    require.NoError(t, err)
    require.NotEmpty(t, token)

    approver, err := a.ValidateApprovalToken(context.Background(), token, "complimentary", 5000)
    require.NoError(t, err)
    assert.Equal(t, uint64(55), approver)

    // A smaller amount is still covered by the ceiling.
    approver, err = a.ValidateApprovalToken(context.Background(), token, "complimentary", 100)
    require.NoError(t, err)
    assert.Equal(t, uint64(55), approver)
}

func TestValidateRejectsEmptyToken(t *testing.T) {
    a := New("test-secret", 15)
    _, err := a.ValidateApprovalToken(context.Background(), "", "complimentary", 100)
    assert.ErrorIs(t, err, lifecycle.ErrApprovalRequired)
}

func TestValidateRejectsWrongAction(t *testing.T) {
    a := New("test-secret", 15)
    token, err := a.Mint(55, "refund", 5000)
    require.NoError(t, err)

    _, err = a.ValidateApprovalToken(context.Background(), token, "complimentary", 100)
    assert.ErrorIs(t, err, lifecycle.ErrApprovalRequired)
}

func TestValidateRejectsInsufficientCeiling(t *testing.T) {
    a := New("test-secret", 15)
    token, err := a.Mint(55, "complimentary", 5000)
    require.NoError(t, err)

    _, err = a.ValidateApprovalToken(context.Background(), token, "complimentary", 5001)
    assert.ErrorIs(t, err, lifecycle.ErrApprovalRequired)
}

func TestValidateRejectsExpiredToken(t *testing.T) {
    a := New("test-secret", -1)
    token, err := a.Mint(55, "complimentary", 5000)
    require.NoError(t, err)

    _, err = a.ValidateApprovalToken(context.Background(), token, "complimentary", 100)
    assert.ErrorIs(t, err, lifecycle.ErrApprovalRequired)
}

func TestValidateRejectsWrongSecret(t *testing.T) {
    minting := New("secret-a", 15)
    validating := New("secret-b", 15)
    token, err := minting.Mint(55, "complimentary", 5000)
    require.NoError(t, err)

    _, err = validating.ValidateApprovalToken(context.Background(), token, "complimentary", 100)
    assert.ErrorIs(t, err, lifecycle.ErrApprovalRequired)
}

func TestValidateRejectsGarbage(t *testing.T) {
    a := New("test-secret", 15)
    _, err := a.ValidateApprovalToken(context.Background(), "not.a.jwt", "complimentary", 100)
    assert.ErrorIs(t, err, lifecycle.ErrApprovalRequired)
}
