package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/brainrot-market/market-service/internal/domain"
	"github.com/brainrot-market/market-service/internal/events"
	"github.com/brainrot-market/market-service/internal/service"
)

type capturedEvents struct {
	events []events.Event
}

func captureAll(dispatcher events.Dispatcher) *capturedEvents {
	captured := &capturedEvents{}
	handler := func(_ context.Context, event events.Event) error {
		captured.events = append(captured.events, event)
		return nil
	}
	for _, eventType := range []events.EventType{
		events.EventRoleChanged,
		events.EventUserBanned,
		events.EventUserUnbanned,
		events.EventUserWarned,
		events.EventCreditGranted,
	} {
		dispatcher.Subscribe(eventType, handler)
	}
	return captured
}

func (c *capturedEvents) last(t *testing.T) events.Event {
	t.Helper()
	require.NotEmpty(t, c.events)
	return c.events[len(c.events)-1]
}

func newAdminService(users *fakeUserRepo, txns *fakeTransactionRepo, site *fakeSiteRepo, dispatcher events.Dispatcher) *service.AdminService {
	return service.NewAdminService(service.AdminDependencies{
		UserRepo:        users,
		TransactionRepo: txns,
		ProductRepo: newFakeProductRepo(
			&domain.Product{ID: "product-1", Status: domain.ProductStatusActive},
			&domain.Product{ID: "product-2", Status: domain.ProductStatusSold},
		),
		SiteRepo:   site,
		Dispatcher: dispatcher,
		Logger:     zap.NewNop(),
	})
}

func TestAdminSetRole(t *testing.T) {
	ctx := context.Background()
	actor := &domain.User{ID: "mod-1", Role: domain.RoleModerator, DisplayName: "Mod"}

	t.Run("rejects unknown roles", func(t *testing.T) {
		svc := newAdminService(newFakeUserRepo(), newFakeTransactionRepo(), &fakeSiteRepo{}, events.NewInMemoryDispatcher())
		err := svc.SetRole(ctx, actor, "user-1", "superadmin")
		assert.Equal(t, "invalid_role", errCode(t, err))
	})

	t.Run("assigns role and notifies", func(t *testing.T) {
		users := newFakeUserRepo(&domain.User{ID: "user-1", Role: domain.RoleUser})
		dispatcher := events.NewInMemoryDispatcher()
		captured := captureAll(dispatcher)
		svc := newAdminService(users, newFakeTransactionRepo(), &fakeSiteRepo{}, dispatcher)

		require.NoError(t, svc.SetRole(ctx, actor, "user-1", domain.RoleHelper))

		user, err := users.GetByID(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, domain.RoleHelper, user.Role)

		event := captured.last(t)
		assert.Equal(t, events.EventRoleChanged, event.Type)
		assert.Equal(t, "user-1", event.UserID)
		assert.Equal(t, "mod-1", event.Actor.UserID)
	})

	t.Run("unknown target maps to not_found", func(t *testing.T) {
		svc := newAdminService(newFakeUserRepo(), newFakeTransactionRepo(), &fakeSiteRepo{}, events.NewInMemoryDispatcher())
		err := svc.SetRole(ctx, actor, "ghost", domain.RoleHelper)
		assert.Equal(t, "not_found", errCode(t, err))
	})
}

func TestAdminBans(t *testing.T) {
	ctx := context.Background()
	actor := &domain.User{ID: "mod-1", Role: domain.RoleModerator}

	t.Run("temp ban sets banned_until", func(t *testing.T) {
		users := newFakeUserRepo(&domain.User{ID: "user-1"})
		svc := newAdminService(users, newFakeTransactionRepo(), &fakeSiteRepo{}, events.NewInMemoryDispatcher())

		require.NoError(t, svc.TempBan(ctx, actor, "user-1", 1, 6))

		user, err := users.GetByID(ctx, "user-1")
		require.NoError(t, err)
		assert.False(t, user.Banned)
		require.NotNil(t, user.BannedUntil)
		remaining := time.Until(*user.BannedUntil)
		assert.InDelta(t, (30 * time.Hour).Hours(), remaining.Hours(), 0.1)
	})

	t.Run("temp ban requires a positive duration", func(t *testing.T) {
		svc := newAdminService(newFakeUserRepo(&domain.User{ID: "user-1"}), newFakeTransactionRepo(), &fakeSiteRepo{}, events.NewInMemoryDispatcher())
		err := svc.TempBan(ctx, actor, "user-1", 0, 0)
		assert.Equal(t, "invalid_duration", errCode(t, err))
	})

	t.Run("self ban is rejected", func(t *testing.T) {
		svc := newAdminService(newFakeUserRepo(&domain.User{ID: "mod-1"}), newFakeTransactionRepo(), &fakeSiteRepo{}, events.NewInMemoryDispatcher())
		assert.Equal(t, "self_ban", errCode(t, svc.TempBan(ctx, actor, "mod-1", 1, 0)))
		assert.Equal(t, "self_ban", errCode(t, svc.PermBan(ctx, actor, "mod-1")))
	})

	t.Run("perm ban then unban", func(t *testing.T) {
		users := newFakeUserRepo(&domain.User{ID: "user-1"})
		dispatcher := events.NewInMemoryDispatcher()
		captured := captureAll(dispatcher)
		svc := newAdminService(users, newFakeTransactionRepo(), &fakeSiteRepo{}, dispatcher)

		require.NoError(t, svc.PermBan(ctx, actor, "user-1"))
		user, err := users.GetByID(ctx, "user-1")
		require.NoError(t, err)
		assert.True(t, user.Banned)
		require.NotNil(t, user.BannedAt)

		payload, ok := captured.last(t).Payload.(events.UserBannedPayload)
		require.True(t, ok)
		assert.True(t, payload.Permanent)

		require.NoError(t, svc.Unban(ctx, actor, "user-1"))
		user, err = users.GetByID(ctx, "user-1")
		require.NoError(t, err)
		assert.False(t, user.Banned)
		assert.Nil(t, user.BannedUntil)
		assert.Equal(t, events.EventUserUnbanned, captured.last(t).Type)
	})
}

func TestAdminWarn(t *testing.T) {
	ctx := context.Background()
	actor := &domain.User{ID: "mod-1", Role: domain.RoleModerator}

	t.Run("requires a reason", func(t *testing.T) {
		svc := newAdminService(newFakeUserRepo(&domain.User{ID: "user-1"}), newFakeTransactionRepo(), &fakeSiteRepo{}, events.NewInMemoryDispatcher())
		_, err := svc.Warn(ctx, actor, "user-1", "")
		assert.Equal(t, "missing_reason", errCode(t, err))
	})

	t.Run("increments the warning counter", func(t *testing.T) {
		users := newFakeUserRepo(&domain.User{ID: "user-1", Warnings: 2})
		svc := newAdminService(users, newFakeTransactionRepo(), &fakeSiteRepo{}, events.NewInMemoryDispatcher())
		warnings, err := svc.Warn(ctx, actor, "user-1", "spam")
		require.NoError(t, err)
		assert.Equal(t, 3, warnings)
	})
}

func TestAdminAdjustCredits(t *testing.T) {
	ctx := context.Background()
	actor := &domain.User{ID: "mod-1", Role: domain.RoleFounder, DisplayName: "Boss"}

	t.Run("rejects a zero delta", func(t *testing.T) {
		svc := newAdminService(newFakeUserRepo(&domain.User{ID: "user-1"}), newFakeTransactionRepo(), &fakeSiteRepo{}, events.NewInMemoryDispatcher())
		_, err := svc.AdjustCredits(ctx, actor, "user-1", 0)
		assert.Equal(t, "invalid_amount", errCode(t, err))
	})

	t.Run("credits the balance and records the grant", func(t *testing.T) {
		users := newFakeUserRepo(&domain.User{ID: "user-1", Balance: 500})
		txns := newFakeTransactionRepo()
		dispatcher := events.NewInMemoryDispatcher()
		captured := captureAll(dispatcher)
		svc := newAdminService(users, txns, &fakeSiteRepo{}, dispatcher)

		balance, err := svc.AdjustCredits(ctx, actor, "user-1", 100)
		require.NoError(t, err)
		assert.Equal(t, int64(600), balance)

		grants := txns.byType(domain.TransactionAdminGrant)
		require.Len(t, grants, 1)
		assert.Equal(t, int64(100), grants[0].Credits)
		assert.Equal(t, "Grant by admin Boss", grants[0].Note)
		require.NotNil(t, grants[0].ActorID)
		assert.Equal(t, "mod-1", *grants[0].ActorID)

		payload, ok := captured.last(t).Payload.(events.CreditGrantedPayload)
		require.True(t, ok)
		assert.Equal(t, int64(100), payload.Credits)
	})

	t.Run("removal goes negative-delta", func(t *testing.T) {
		users := newFakeUserRepo(&domain.User{ID: "user-1", Balance: 500})
		svc := newAdminService(users, newFakeTransactionRepo(), &fakeSiteRepo{}, events.NewInMemoryDispatcher())
		balance, err := svc.AdjustCredits(ctx, actor, "user-1", -200)
		require.NoError(t, err)
		assert.Equal(t, int64(300), balance)
	})
}

func TestAdminSiteControls(t *testing.T) {
	ctx := context.Background()
	actor := &domain.User{ID: "mod-1", Role: domain.RoleFounder}

	t.Run("announcement requires text", func(t *testing.T) {
		svc := newAdminService(newFakeUserRepo(), newFakeTransactionRepo(), &fakeSiteRepo{}, events.NewInMemoryDispatcher())
		_, err := svc.Announce(ctx, actor, "")
		assert.Equal(t, "missing_text", errCode(t, err))
	})

	t.Run("announcements round-trip", func(t *testing.T) {
		site := &fakeSiteRepo{}
		svc := newAdminService(newFakeUserRepo(), newFakeTransactionRepo(), site, events.NewInMemoryDispatcher())

		announcement, err := svc.Announce(ctx, actor, "Summer sale!")
		require.NoError(t, err)
		assert.NotEmpty(t, announcement.ID)

		list, err := svc.ListAnnouncements(ctx, 20)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "Summer sale!", list[0].Text)
		assert.Equal(t, "mod-1", list[0].AuthorID)
	})

	t.Run("promotion bounds", func(t *testing.T) {
		site := &fakeSiteRepo{}
		svc := newAdminService(newFakeUserRepo(), newFakeTransactionRepo(), site, events.NewInMemoryDispatcher())

		assert.Equal(t, "invalid_percent", errCode(t, svc.SetPromotion(ctx, -1)))
		assert.Equal(t, "invalid_percent", errCode(t, svc.SetPromotion(ctx, 101)))

		require.NoError(t, svc.SetPromotion(ctx, 25))
		promo, err := svc.GetPromotion(ctx)
		require.NoError(t, err)
		assert.Equal(t, 25, promo.AllPercent)
	})

	t.Run("overview counts active listings", func(t *testing.T) {
		svc := newAdminService(newFakeUserRepo(), newFakeTransactionRepo(), &fakeSiteRepo{}, events.NewInMemoryDispatcher())
		overview, err := svc.GetOverview(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), overview.ActiveListings)
	})

	t.Run("maintenance defaults message per scope", func(t *testing.T) {
		site := &fakeSiteRepo{}
		svc := newAdminService(newFakeUserRepo(), newFakeTransactionRepo(), site, events.NewInMemoryDispatcher())

		require.NoError(t, svc.SetMaintenance(ctx, domain.MaintenanceState{Enabled: true, Scope: "shop"}))
		state, err := svc.GetMaintenance(ctx)
		require.NoError(t, err)
		assert.True(t, state.Enabled)
		assert.Equal(t, "shop", state.Scope)
		assert.Equal(t, "Shop under maintenance.", state.Message)

		require.NoError(t, svc.SetMaintenance(ctx, domain.MaintenanceState{Enabled: false}))
		state, err = svc.GetMaintenance(ctx)
		require.NoError(t, err)
		assert.False(t, state.Enabled)
		assert.Equal(t, "global", state.Scope)
	})
}
