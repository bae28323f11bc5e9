package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/brainrot-market/market-service/internal/domain"
	"github.com/brainrot-market/market-service/internal/events"
	"github.com/brainrot-market/market-service/internal/repository"
	apperrors "github.com/brainrot-market/market-service/pkg/util/errorutil"
)

// ProductService runs the RotCoins marketplace: listings and purchases
// settled against wallet balances.
type ProductService struct {
	products     repository.ProductRepository
	users        repository.UserRepository
	transactions repository.TransactionRepository
	dispatcher   events.Dispatcher
	logger       *zap.Logger
}

// ProductDependencies bundles requirements for the product service.
type ProductDependencies struct {
	ProductRepo     repository.ProductRepository
	UserRepo        repository.UserRepository
	TransactionRepo repository.TransactionRepository
	Dispatcher      events.Dispatcher
	Logger          *zap.Logger
}

// NewProductService constructs the service.
func NewProductService(deps ProductDependencies) *ProductService {
	return &ProductService{
		products:     deps.ProductRepo,
		users:        deps.UserRepo,
		transactions: deps.TransactionRepo,
		dispatcher:   deps.Dispatcher,
		logger:       deps.Logger,
	}
}

// CreateListing publishes a product priced in RotCoins.
func (s *ProductService) CreateListing(ctx context.Context, seller *domain.User, title, description string, price int64) (*domain.Product, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperrors.NewValidationError("missing_title", "listing title is required")
	}
	if price <= 0 {
		return nil, apperrors.NewValidationError("invalid_price", "price must be a positive amount of RotCoins")
	}

	product := &domain.Product{
		SellerID:    seller.ID,
		Title:       title,
		Description: description,
		Price:       price,
		Status:      domain.ProductStatusActive,
	}
	if err := s.products.Create(ctx, product); err != nil {
		return nil, apperrors.MapError(err)
	}
	return product, nil
}

// Get returns one listing.
func (s *ProductService) Get(ctx context.Context, id string) (*domain.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return product, nil
}

// List returns listings, optionally filtered by status.
func (s *ProductService) List(ctx context.Context, status *domain.ProductStatus, limit, offset int) ([]domain.Product, error) {
	products, err := s.products.List(ctx, status, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return products, nil
}

// Remove delists a product. Sellers remove their own; staff any.
func (s *ProductService) Remove(ctx context.Context, actor *domain.User, id string) error {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return apperrors.MapError(err)
	}
	if product.SellerID != actor.ID && !actor.Role.IsStaff() {
		return apperrors.NewForbidden("not your listing")
	}
	if product.Status != domain.ProductStatusActive {
		return apperrors.NewConflict("not_active", "listing is no longer active")
	}
	if err := s.products.SetStatus(ctx, id, domain.ProductStatusRemoved); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// Purchase debits the buyer, claims the listing and credits the seller.
// The debit happens first so an insufficient balance never touches the
// listing; a lost race on the listing refunds the buyer.
func (s *ProductService) Purchase(ctx context.Context, buyer *domain.User, productID string) (*domain.Product, error) {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if product.Status != domain.ProductStatusActive {
		return nil, apperrors.NewConflict("not_active", "listing is no longer active")
	}
	if product.SellerID == buyer.ID {
		return nil, apperrors.NewValidationError("own_listing", "cannot buy your own listing")
	}

	if _, err := s.users.DebitBalance(ctx, buyer.ID, product.Price); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewValidationError("insufficient_balance", "not enough RotCoins for this purchase")
		}
		return nil, apperrors.MapError(err)
	}

	if err := s.products.MarkSold(ctx, productID, buyer.ID); err != nil {
		if _, refundErr := s.users.AdjustBalance(ctx, buyer.ID, product.Price); refundErr != nil {
			s.logger.Error("purchase: refund after lost race failed",
				zap.String("product_id", productID),
				zap.String("buyer_id", buyer.ID),
				zap.Error(refundErr))
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewConflict("not_active", "listing was just sold")
		}
		return nil, apperrors.MapError(err)
	}

	if _, err := s.users.AdjustBalance(ctx, product.SellerID, product.Price); err != nil {
		s.logger.Error("purchase: seller credit failed",
			zap.String("product_id", productID),
			zap.String("seller_id", product.SellerID),
			zap.Error(err))
	}

	s.recordTrade(ctx, buyer, product)

	s.publish(ctx, events.Event{
		Type:   events.EventProductSold,
		UserID: product.SellerID,
		Actor:  actorOf(buyer),
		Payload: events.ProductSoldPayload{
			ProductID: product.ID,
			Title:     product.Title,
			Price:     product.Price,
		},
	})

	product.Status = domain.ProductStatusSold
	product.BuyerID = &buyer.ID
	return product, nil
}

// recordTrade writes both sides of the movement best-effort.
func (s *ProductService) recordTrade(ctx context.Context, buyer *domain.User, product *domain.Product) {
	buyerName := displayNameOf(buyer)
	if err := s.transactions.Create(ctx, &domain.Transaction{
		UserID:  buyer.ID,
		Type:    domain.TransactionPurchase,
		Credits: -product.Price,
		Note:    "Bought " + product.Title,
		Status:  "completed",
	}); err != nil {
		s.logger.Error("purchase: buyer transaction failed",
			zap.String("product_id", product.ID), zap.Error(err))
	}
	if err := s.transactions.Create(ctx, &domain.Transaction{
		UserID:    product.SellerID,
		Type:      domain.TransactionSale,
		Credits:   product.Price,
		Note:      "Sold " + product.Title,
		ActorID:   &buyer.ID,
		ActorName: &buyerName,
		Status:    "completed",
	}); err != nil {
		s.logger.Error("purchase: seller transaction failed",
			zap.String("product_id", product.ID), zap.Error(err))
	}
}

func (s *ProductService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, event)
}
