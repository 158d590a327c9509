package gateway

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carddemo/terminal/internal/core/domain"
	"github.com/carddemo/terminal/internal/core/ports"
)

func status(t *testing.T, err error) int {
	t.Helper()
	var remote *ports.RemoteError
	require.True(t, errors.As(err, &remote), "expected RemoteError, got %v", err)
	return remote.Status
}

func TestFixture_Login(t *testing.T) {
	f := NewFixture()
	ctx := context.Background()

	res, err := f.Login(ctx, "ADMIN001", "PASSWORD")
	require.NoError(t, err)
	assert.Equal(t, "A", res.UserType)
	assert.Equal(t, domain.RoleAdmin, res.Session(time.Now()).Role)

	_, err = f.Login(ctx, "USER001", "WRONG")
	assert.Equal(t, http.StatusUnauthorized, status(t, err))
	assert.EqualError(t, err, "Invalid credentials")

	_, err = f.Login(ctx, "NOBODY", "PASSWORD")
	assert.EqualError(t, err, "User not found")

	_, err = f.Login(ctx, "", "")
	assert.Equal(t, http.StatusBadRequest, status(t, err))
}

func TestFixture_PayBill(t *testing.T) {
	f := NewFixture()
	ctx := context.Background()
	res, err := f.Login(ctx, "USER001", "PASSWORD")
	require.NoError(t, err)

	_, err = f.PayBill(ctx, res.AccessToken, "00000000002")
	assert.Equal(t, http.StatusConflict, status(t, err))
	assert.EqualError(t, err, "You have nothing to pay")

	p, err := f.PayBill(ctx, res.AccessToken, "00000000001")
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^\d{16}$`), p.TransactionID)
	assert.Equal(t, 194.0, p.Amount)

	tx, err := f.GetTransaction(ctx, res.AccessToken, p.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, domain.BillPaymentDescription, tx.Description)
}

func TestFixture_AuthAndRoles(t *testing.T) {
	f := NewFixture()
	ctx := context.Background()

	_, err := f.GetAccount(ctx, "bogus", "00000000001")
	assert.ErrorIs(t, err, ports.ErrUnauthorized)

	user, err := f.Login(ctx, "USER001", "PASSWORD")
	require.NoError(t, err)
	_, err = f.ListUsers(ctx, user.AccessToken, ports.PageRequest{})
	assert.Equal(t, http.StatusForbidden, status(t, err))
	_, err = f.Menu(ctx, user.AccessToken, domain.MenuAdmin)
	assert.Equal(t, http.StatusForbidden, status(t, err))

	admin, err := f.Login(ctx, "ADMIN001", "PASSWORD")
	require.NoError(t, err)
	page, err := f.ListUsers(ctx, admin.AccessToken, ports.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)

	require.NoError(t, f.Logout(ctx, user.AccessToken))
	_, err = f.GetAccount(ctx, user.AccessToken, "00000000001")
	assert.ErrorIs(t, err, ports.ErrUnauthorized)
	_, err = f.Refresh(ctx, user.RefreshToken)
	assert.ErrorIs(t, err, ports.ErrUnauthorized)
}

func TestFixture_RefreshAndExpiry(t *testing.T) {
	f := NewFixture()
	ctx := context.Background()
	res, err := f.Login(ctx, "USER001", "PASSWORD")
	require.NoError(t, err)

	later := time.Now().Add(20 * time.Minute)
	f.now = func() time.Time { return later }

	_, err = f.GetAccount(ctx, res.AccessToken, "00000000001")
	assert.ErrorIs(t, err, ports.ErrUnauthorized, "access token expired")

	refreshed, err := f.Refresh(ctx, res.RefreshToken)
	require.NoError(t, err)
	_, err = f.GetAccount(ctx, refreshed.AccessToken, "00000000001")
	require.NoError(t, err)
}

func TestFixture_ValidateMenuOption(t *testing.T) {
	f := NewFixture()
	ctx := context.Background()
	res, err := f.Login(ctx, "USER001", "PASSWORD")
	require.NoError(t, err)

	ok, path, err := f.ValidateMenuOption(ctx, res.AccessToken, domain.MenuMain, 1)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "/accounts/view", path)

	_, _, err = f.ValidateMenuOption(ctx, res.AccessToken, domain.MenuMain, 99)
	assert.Equal(t, http.StatusBadRequest, status(t, err))
}
