package service_test

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/brainrot-market/market-service/internal/domain"
	"github.com/brainrot-market/market-service/internal/payment"
)

// fakeUserRepo is an in-memory UserRepository.
type fakeUserRepo struct {
	users  map[string]*domain.User
	nextID int
}

func newFakeUserRepo(seed ...*domain.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: map[string]*domain.User{}}
	for _, user := range seed {
		repo.users[user.ID] = user
	}
	return repo
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.nextID++
	user.ID = fmt.Sprintf("user-%d", r.nextID)
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) List(_ context.Context, _ string, _, _ int) ([]domain.User, error) {
	result := make([]domain.User, 0, len(r.users))
	for _, user := range r.users {
		result = append(result, *user)
	}
	return result, nil
}

func (r *fakeUserRepo) UpdateProfile(_ context.Context, id, displayName, avatarURL string) error {
	user, ok := r.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.DisplayName = displayName
	user.AvatarURL = avatarURL
	return nil
}

func (r *fakeUserRepo) SetRole(_ context.Context, id string, role domain.Role) error {
	user, ok := r.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.Role = role
	return nil
}

func (r *fakeUserRepo) SetBan(_ context.Context, id string, banned bool, bannedAt, bannedUntil *time.Time) error {
	user, ok := r.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.Banned = banned
	user.BannedAt = bannedAt
	user.BannedUntil = bannedUntil
	return nil
}

func (r *fakeUserRepo) IncrementWarnings(_ context.Context, id string) (int, error) {
	user, ok := r.users[id]
	if !ok {
		return 0, pgx.ErrNoRows
	}
	user.Warnings++
	return user.Warnings, nil
}

func (r *fakeUserRepo) AdjustBalance(_ context.Context, id string, delta int64) (int64, error) {
	user, ok := r.users[id]
	if !ok {
		return 0, pgx.ErrNoRows
	}
	user.Balance += delta
	return user.Balance, nil
}

func (r *fakeUserRepo) DebitBalance(_ context.Context, id string, amount int64) (int64, error) {
	user, ok := r.users[id]
	if !ok || user.Balance < amount {
		return 0, pgx.ErrNoRows
	}
	user.Balance -= amount
	return user.Balance, nil
}

func (r *fakeUserRepo) AdvanceNotifCursor(_ context.Context, id string, cursor int64) error {
	user, ok := r.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	if cursor > user.NotifCursor {
		user.NotifCursor = cursor
	}
	return nil
}

// fakeTransactionRepo records balance movements in memory. When users
// is set, CreditUnique mirrors the production behavior of crediting
// the balance together with the inserted transaction; creditErr
// simulates the whole atomic write failing.
type fakeTransactionRepo struct {
	created   []domain.Transaction
	refs      map[string]bool
	nextID    int
	users     *fakeUserRepo
	creditErr error
}

func newFakeTransactionRepo() *fakeTransactionRepo {
	return &fakeTransactionRepo{refs: map[string]bool{}}
}

func (r *fakeTransactionRepo) Create(_ context.Context, txn *domain.Transaction) error {
	r.nextID++
	txn.ID = fmt.Sprintf("txn-%d", r.nextID)
	txn.CreatedAt = time.Now()
	r.created = append(r.created, *txn)
	return nil
}

func (r *fakeTransactionRepo) CreditUnique(ctx context.Context, txn *domain.Transaction) (bool, error) {
	if txn.Reference != nil && r.refs[*txn.Reference] {
		return false, nil
	}
	if r.creditErr != nil {
		return false, r.creditErr
	}
	if r.users != nil {
		if _, err := r.users.AdjustBalance(ctx, txn.UserID, txn.Credits); err != nil {
			return false, err
		}
	}
	if txn.Reference != nil {
		r.refs[*txn.Reference] = true
	}
	return true, r.Create(ctx, txn)
}

func (r *fakeTransactionRepo) ListByUser(_ context.Context, userID string, _, _ int) ([]domain.Transaction, error) {
	var result []domain.Transaction
	for _, txn := range r.created {
		if txn.UserID == userID {
			result = append(result, txn)
		}
	}
	return result, nil
}

func (r *fakeTransactionRepo) byType(kind domain.TransactionType) []domain.Transaction {
	var result []domain.Transaction
	for _, txn := range r.created {
		if txn.Type == kind {
			result = append(result, txn)
		}
	}
	return result
}

// fakeNotificationRepo is an in-memory append-only log.
type fakeNotificationRepo struct {
	entries []domain.Notification
	nextID  int64
}

func (r *fakeNotificationRepo) Append(_ context.Context, n *domain.Notification) error {
	r.nextID++
	n.ID = r.nextID
	n.CreatedAt = time.Now()
	r.entries = append(r.entries, *n)
	return nil
}

func (r *fakeNotificationRepo) ListByUser(_ context.Context, userID string, _ int) ([]domain.Notification, error) {
	var result []domain.Notification
	for i := len(r.entries) - 1; i >= 0; i-- {
		if r.entries[i].UserID == userID {
			result = append(result, r.entries[i])
		}
	}
	return result, nil
}

func (r *fakeNotificationRepo) LatestID(_ context.Context, userID string) (int64, error) {
	var latest int64
	for _, entry := range r.entries {
		if entry.UserID == userID && entry.ID > latest {
			latest = entry.ID
		}
	}
	return latest, nil
}

func (r *fakeNotificationRepo) UnreadCount(_ context.Context, userID string, cursor int64) (int64, error) {
	var count int64
	for _, entry := range r.entries {
		if entry.UserID == userID && entry.ID > cursor {
			count++
		}
	}
	return count, nil
}

// fakeProductRepo is an in-memory ProductRepository.
type fakeProductRepo struct {
	products map[string]*domain.Product
	nextID   int
	soldErr  error
}

func newFakeProductRepo(seed ...*domain.Product) *fakeProductRepo {
	repo := &fakeProductRepo{products: map[string]*domain.Product{}}
	for _, product := range seed {
		repo.products[product.ID] = product
	}
	return repo
}

func (r *fakeProductRepo) Create(_ context.Context, product *domain.Product) error {
	r.nextID++
	product.ID = fmt.Sprintf("product-%d", r.nextID)
	product.CreatedAt = time.Now()
	product.UpdatedAt = product.CreatedAt
	r.products[product.ID] = product
	return nil
}

func (r *fakeProductRepo) GetByID(_ context.Context, id string) (*domain.Product, error) {
	product, ok := r.products[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *product
	return &copied, nil
}

func (r *fakeProductRepo) List(_ context.Context, status *domain.ProductStatus, _, _ int) ([]domain.Product, error) {
	var result []domain.Product
	for _, product := range r.products {
		if status == nil || product.Status == *status {
			result = append(result, *product)
		}
	}
	return result, nil
}

func (r *fakeProductRepo) CountActive(_ context.Context) (int64, error) {
	var count int64
	for _, product := range r.products {
		if product.Status == domain.ProductStatusActive {
			count++
		}
	}
	return count, nil
}

func (r *fakeProductRepo) MarkSold(_ context.Context, id, buyerID string) error {
	if r.soldErr != nil {
		return r.soldErr
	}
	product, ok := r.products[id]
	if !ok || product.Status != domain.ProductStatusActive {
		return pgx.ErrNoRows
	}
	product.Status = domain.ProductStatusSold
	product.BuyerID = &buyerID
	return nil
}

func (r *fakeProductRepo) SetStatus(_ context.Context, id string, status domain.ProductStatus) error {
	product, ok := r.products[id]
	if !ok {
		return pgx.ErrNoRows
	}
	product.Status = status
	return nil
}

// fakeSiteRepo is an in-memory SiteRepository.
type fakeSiteRepo struct {
	announcements []domain.Announcement
	promotion     domain.Promotion
	maintenance   domain.MaintenanceState
}

func (r *fakeSiteRepo) CreateAnnouncement(_ context.Context, a *domain.Announcement) error {
	a.ID = fmt.Sprintf("announcement-%d", len(r.announcements)+1)
	a.CreatedAt = time.Now()
	r.announcements = append(r.announcements, *a)
	return nil
}

func (r *fakeSiteRepo) ListAnnouncements(_ context.Context, _ int) ([]domain.Announcement, error) {
	return r.announcements, nil
}

func (r *fakeSiteRepo) GetPromotion(_ context.Context) (*domain.Promotion, error) {
	promo := r.promotion
	return &promo, nil
}

func (r *fakeSiteRepo) SetPromotion(_ context.Context, allPercent int) error {
	r.promotion = domain.Promotion{AllPercent: allPercent, UpdatedAt: time.Now()}
	return nil
}

func (r *fakeSiteRepo) GetMaintenance(_ context.Context) (*domain.MaintenanceState, error) {
	state := r.maintenance
	return &state, nil
}

func (r *fakeSiteRepo) SetMaintenance(_ context.Context, state domain.MaintenanceState) error {
	r.maintenance = state
	return nil
}

// fakeStripeGateway captures inputs and returns canned sessions.
type fakeStripeGateway struct {
	createErr error
	getErr    error
	session   *payment.StripeSession
	lastInput payment.StripeSessionInput
	lastGetID string
}

func (g *fakeStripeGateway) CreateCheckoutSession(_ context.Context, in payment.StripeSessionInput) (string, error) {
	g.lastInput = in
	if g.createErr != nil {
		return "", g.createErr
	}
	return "cs_test_123", nil
}

func (g *fakeStripeGateway) GetCheckoutSession(_ context.Context, id string) (*payment.StripeSession, error) {
	g.lastGetID = id
	if g.getErr != nil {
		return nil, g.getErr
	}
	return g.session, nil
}

// fakePayPalGateway captures inputs and returns canned orders.
type fakePayPalGateway struct {
	createErr error
	order     *payment.PayPalOrder
	lastInput payment.PayPalOrderInput
}

func (g *fakePayPalGateway) CreateOrder(_ context.Context, in payment.PayPalOrderInput) (*payment.PayPalOrder, error) {
	g.lastInput = in
	if g.createErr != nil {
		return nil, g.createErr
	}
	return g.order, nil
}

func (g *fakePayPalGateway) GetOrder(_ context.Context, id string) (*payment.PayPalOrder, error) {
	if g.order == nil {
		return nil, pgx.ErrNoRows
	}
	return g.order, nil
}
