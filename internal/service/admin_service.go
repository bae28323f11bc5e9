package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/brainrot-market/market-service/internal/domain"
	"github.com/brainrot-market/market-service/internal/events"
	"github.com/brainrot-market/market-service/internal/repository"
	apperrors "github.com/brainrot-market/market-service/pkg/util/errorutil"
)

const maintenanceCacheKey = "site:maintenance"

// AdminService performs privileged user and site operations. Each
// primary write stands alone; the paired audit transaction and the
// notification are best-effort, so a failed side write leaves the
// primary state updated and is only logged.
type AdminService struct {
	users        repository.UserRepository
	transactions repository.TransactionRepository
	products     repository.ProductRepository
	site         repository.SiteRepository
	dispatcher   events.Dispatcher
	cache        *redis.Client
	logger       *zap.Logger
}

// AdminDependencies bundles requirements for the admin service.
type AdminDependencies struct {
	UserRepo        repository.UserRepository
	TransactionRepo repository.TransactionRepository
	ProductRepo     repository.ProductRepository
	SiteRepo        repository.SiteRepository
	Dispatcher      events.Dispatcher
	Cache           *redis.Client
	Logger          *zap.Logger
}

// NewAdminService constructs the service.
func NewAdminService(deps AdminDependencies) *AdminService {
	return &AdminService{
		users:        deps.UserRepo,
		transactions: deps.TransactionRepo,
		products:     deps.ProductRepo,
		site:         deps.SiteRepo,
		dispatcher:   deps.Dispatcher,
		cache:        deps.Cache,
		logger:       deps.Logger,
	}
}

// ListUsers returns the management overview.
func (s *AdminService) ListUsers(ctx context.Context, search string, limit, offset int) ([]domain.User, error) {
	return s.users.List(ctx, search, limit, offset)
}

// Overview summarizes site activity for the panel dashboard.
type Overview struct {
	ActiveListings int64
}

// GetOverview collects the dashboard counters.
func (s *AdminService) GetOverview(ctx context.Context) (*Overview, error) {
	active, err := s.products.CountActive(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &Overview{ActiveListings: active}, nil
}

// FindUserByEmail looks a user up for the management panel.
func (s *AdminService) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	if email == "" {
		return nil, apperrors.NewValidationError("missing_email", "email is required")
	}
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// SetRole assigns one of the fixed roles and notifies the user.
func (s *AdminService) SetRole(ctx context.Context, actor *domain.User, targetID string, role domain.Role) error {
	if !domain.ValidRole(role) {
		return apperrors.NewValidationError("invalid_role", fmt.Sprintf("unknown role %q", role))
	}
	if err := s.users.SetRole(ctx, targetID, role); err != nil {
		return apperrors.MapError(err)
	}
	s.publish(ctx, events.Event{
		Type:    events.EventRoleChanged,
		UserID:  targetID,
		Actor:   actorOf(actor),
		Payload: events.RoleChangedPayload{NewRole: role},
	})
	return nil
}

// TempBan bans the user until now + days/hours.
func (s *AdminService) TempBan(ctx context.Context, actor *domain.User, targetID string, days, hours int) error {
	if actor != nil && actor.ID == targetID {
		return apperrors.NewValidationError("self_ban", "cannot ban yourself")
	}
	duration := time.Duration(days*24+hours) * time.Hour
	if duration <= 0 {
		return apperrors.NewValidationError("invalid_duration", "ban duration must be positive")
	}
	until := time.Now().Add(duration)
	if err := s.users.SetBan(ctx, targetID, false, nil, &until); err != nil {
		return apperrors.MapError(err)
	}
	s.publish(ctx, events.Event{
		Type:    events.EventUserBanned,
		UserID:  targetID,
		Actor:   actorOf(actor),
		Payload: events.UserBannedPayload{Until: &until},
	})
	return nil
}

// PermBan bans the user permanently.
func (s *AdminService) PermBan(ctx context.Context, actor *domain.User, targetID string) error {
	if actor != nil && actor.ID == targetID {
		return apperrors.NewValidationError("self_ban", "cannot ban yourself")
	}
	now := time.Now()
	if err := s.users.SetBan(ctx, targetID, true, &now, nil); err != nil {
		return apperrors.MapError(err)
	}
	s.publish(ctx, events.Event{
		Type:    events.EventUserBanned,
		UserID:  targetID,
		Actor:   actorOf(actor),
		Payload: events.UserBannedPayload{Permanent: true},
	})
	return nil
}

// Unban lifts both permanent and temporary bans.
func (s *AdminService) Unban(ctx context.Context, actor *domain.User, targetID string) error {
	if actor != nil && actor.ID == targetID {
		return apperrors.NewValidationError("self_ban", "cannot lift your own ban here")
	}
	if err := s.users.SetBan(ctx, targetID, false, nil, nil); err != nil {
		return apperrors.MapError(err)
	}
	s.publish(ctx, events.Event{
		Type:   events.EventUserUnbanned,
		UserID: targetID,
		Actor:  actorOf(actor),
	})
	return nil
}

// Warn increments the warning counter and notifies the user.
func (s *AdminService) Warn(ctx context.Context, actor *domain.User, targetID, reason string) (int, error) {
	if reason == "" {
		return 0, apperrors.NewValidationError("missing_reason", "warning reason is required")
	}
	warnings, err := s.users.IncrementWarnings(ctx, targetID)
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	s.publish(ctx, events.Event{
		Type:    events.EventUserWarned,
		UserID:  targetID,
		Actor:   actorOf(actor),
		Payload: events.UserWarnedPayload{Reason: reason},
	})
	return warnings, nil
}

// AdjustCredits atomically moves the balance, then records the grant
// and notifies the user best-effort. A failed side write is logged and
// never rolls the balance back.
func (s *AdminService) AdjustCredits(ctx context.Context, actor *domain.User, targetID string, credits int64) (int64, error) {
	if credits == 0 {
		return 0, apperrors.NewValidationError("invalid_amount", "credit delta must be non-zero")
	}

	balance, err := s.users.AdjustBalance(ctx, targetID, credits)
	if err != nil {
		return 0, apperrors.MapError(err)
	}

	actorName := "admin"
	var actorID *string
	if actor != nil {
		actorID = &actor.ID
		if actor.DisplayName != "" {
			actorName = actor.DisplayName
		} else if actor.Email != "" {
			actorName = actor.Email
		}
	}
	if err := s.transactions.Create(ctx, &domain.Transaction{
		UserID:    targetID,
		Type:      domain.TransactionAdminGrant,
		Credits:   credits,
		Note:      fmt.Sprintf("Grant by admin %s", actorName),
		ActorID:   actorID,
		ActorName: &actorName,
		Status:    "completed",
	}); err != nil {
		s.logger.Error("admin: create transaction failed",
			zap.String("user_id", targetID), zap.Int64("credits", credits), zap.Error(err))
	}

	s.publish(ctx, events.Event{
		Type:    events.EventCreditGranted,
		UserID:  targetID,
		Actor:   actorOf(actor),
		Payload: events.CreditGrantedPayload{Credits: credits},
	})
	return balance, nil
}

// Announce posts a site-wide announcement.
func (s *AdminService) Announce(ctx context.Context, actor *domain.User, text string) (*domain.Announcement, error) {
	if text == "" {
		return nil, apperrors.NewValidationError("missing_text", "announcement text is required")
	}
	announcement := &domain.Announcement{Text: text, AuthorID: actor.ID}
	if err := s.site.CreateAnnouncement(ctx, announcement); err != nil {
		return nil, apperrors.MapError(err)
	}
	return announcement, nil
}

// ListAnnouncements returns recent announcements.
func (s *AdminService) ListAnnouncements(ctx context.Context, limit int) ([]domain.Announcement, error) {
	return s.site.ListAnnouncements(ctx, limit)
}

// SetPromotion updates the pack discount percentage.
func (s *AdminService) SetPromotion(ctx context.Context, percent int) error {
	if percent < 0 || percent > 100 {
		return apperrors.NewValidationError("invalid_percent", "promotion must be between 0 and 100")
	}
	if err := s.site.SetPromotion(ctx, percent); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// GetPromotion returns the current pack discount.
func (s *AdminService) GetPromotion(ctx context.Context) (*domain.Promotion, error) {
	return s.site.GetPromotion(ctx)
}

// SetMaintenance stores the toggle and refreshes the cache.
func (s *AdminService) SetMaintenance(ctx context.Context, state domain.MaintenanceState) error {
	if state.Scope == "" {
		state.Scope = "global"
	}
	if state.Enabled && state.Message == "" {
		state.Message = defaultMaintenanceMessage(state.Scope)
	}
	if err := s.site.SetMaintenance(ctx, state); err != nil {
		return apperrors.MapError(err)
	}
	s.cacheMaintenance(ctx, state)
	return nil
}

// GetMaintenance serves the toggle from cache when possible.
func (s *AdminService) GetMaintenance(ctx context.Context) (*domain.MaintenanceState, error) {
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, maintenanceCacheKey).Result(); err == nil && raw != "" {
			var state domain.MaintenanceState
			if err := json.Unmarshal([]byte(raw), &state); err == nil {
				return &state, nil
			}
		}
	}
	state, err := s.site.GetMaintenance(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	s.cacheMaintenance(ctx, *state)
	return state, nil
}

func (s *AdminService) cacheMaintenance(ctx context.Context, state domain.MaintenanceState) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(state)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, maintenanceCacheKey, raw, 30*time.Second).Err(); err != nil {
		s.logger.Warn("maintenance cache write failed", zap.Error(err))
	}
}

func defaultMaintenanceMessage(scope string) string {
	switch scope {
	case "marketplace":
		return "Marketplace temporarily unavailable."
	case "shop":
		return "Shop under maintenance."
	case "tickets":
		return "Support temporarily unavailable."
	default:
		return "Site under maintenance. Back soon."
	}
}

func (s *AdminService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func actorOf(user *domain.User) events.Actor {
	if user == nil {
		return events.Actor{}
	}
	name := user.DisplayName
	if name == "" {
		name = user.Email
	}
	return events.Actor{UserID: user.ID, Name: name, Role: user.Role}
}
