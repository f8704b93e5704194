package auth

import (
	"context"
	"testing"

	"washpos/internal/connectivity"
	"washpos/internal/dto"
	"washpos/internal/model"
	"washpos/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubGateway answers Login; everything else is unused by the session service.
type stubGateway struct {
	user     model.User
	loginErr error
	logins   int
}

func (g *stubGateway) Login(context.Context, string, string) (*dto.LoginResponse, error) {
	g.logins++
	if g.loginErr != nil {
		return nil, g.loginErr
	}
	return &dto.LoginResponse{User: g.user, Token: "tok"}, nil
}
func (g *stubGateway) Refresh(context.Context) (string, error) { return "", nil }
func (g *stubGateway) Me(context.Context) (*model.User, error) { return nil, nil }
func (g *stubGateway) GetCustomers(context.Context) ([]model.Customer, error) { return nil, nil }
func (g *stubGateway) CreateCustomer(_ context.Context, c *model.Customer) (*model.Customer, error) {
	return c, nil
}
func (g *stubGateway) UpdateCustomer(_ context.Context, _ string, c *model.Customer) (*model.Customer, error) {
	return c, nil
}
func (g *stubGateway) GetSales(context.Context) ([]model.Sale, error) { return nil, nil }
func (g *stubGateway) CreateSale(_ context.Context, s *model.Sale) (*model.Sale, error) {
	return s, nil
}
func (g *stubGateway) DashboardStats(context.Context) (*dto.DashboardStats, error) {
	return nil, nil
}

func newTestSession(t *testing.T, online bool) (Service, *stubGateway, *connectivity.Monitor) {
	t.Helper()
	st, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	gw := &stubGateway{user: model.User{ID: "u1", Email: "jane@example.com", Name: "Jane", Role: "cashier"}}
	monitor := connectivity.NewMonitor(online)
	return New(gw, st, monitor), gw, monitor
}

func TestOnlineLoginCachesSession(t *testing.T) {
	svc, gw, _ := newTestSession(t, true)
	ctx := context.Background()

	user, err := svc.Login(ctx, "jane@example.com", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, 1, gw.logins)

	current, err := svc.CurrentUser(ctx)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, "Jane", current.Name)
}

func TestOfflineUnlock(t *testing.T) {
	svc, gw, monitor := newTestSession(t, true)
	ctx := context.Background()

	_, err := svc.Login(ctx, "jane@example.com", "hunter2")
	require.NoError(t, err)

	monitor.Set(false)

	user, err := svc.Login(ctx, "jane@example.com", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, 1, gw.logins, "offline unlock must not hit the gateway")

	_, err = svc.Login(ctx, "jane@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "someone@else.com", "hunter2")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestOfflineLoginWithoutCache(t *testing.T) {
	svc, _, _ := newTestSession(t, false)
	_, err := svc.Login(context.Background(), "jane@example.com", "hunter2")
	assert.ErrorIs(t, err, ErrNoCachedSession)
}

func TestLogoutClearsSession(t *testing.T) {
	svc, _, monitor := newTestSession(t, true)
	ctx := context.Background()

	_, err := svc.Login(ctx, "jane@example.com", "hunter2")
	require.NoError(t, err)
	require.NoError(t, svc.Logout(ctx))

	current, err := svc.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Nil(t, current)

	monitor.Set(false)
	_, err = svc.Login(ctx, "jane@example.com", "hunter2")
	assert.ErrorIs(t, err, ErrNoCachedSession)
}
