package service

import (
	"context"
	"time"

	"reservas-api/internal/domain"
	"reservas-api/internal/repository"

	"github.com/google/uuid"
)

// CreateProductInput describes a new product listing. InitialStock is
// the only place stock enters the system outside the inventory ledger.
type CreateProductInput struct {
	Name         string
	Description  string
	Price        float64
	InitialStock int
}

// ProductService defines the interface for product catalog logic
type ProductService interface {
	Create(ctx context.Context, entrepreneurID uuid.UUID, in CreateProductInput) (*domain.Product, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	ListOwn(ctx context.Context, entrepreneurID uuid.UUID) ([]*domain.Product, error)
}

type productService struct {
	store repository.Store
}

// NewProductService creates a new instance of ProductService
func NewProductService(store repository.Store) ProductService {
	return &productService{store: store}
}

func (s *productService) Create(ctx context.Context, entrepreneurID uuid.UUID, in CreateProductInput) (*domain.Product, error) {
	now := time.Now()
	product := &domain.Product{
		ID:             uuid.New(),
		EntrepreneurID: entrepreneurID,
		Name:           in.Name,
		Description:    in.Description,
		Price:          in.Price,
		Stock:          in.InitialStock,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.store.Products().Create(ctx, product); err != nil {
		return nil, err
	}

	return product, nil
}

func (s *productService) Get(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return s.store.Products().FindByID(ctx, id)
}

func (s *productService) ListOwn(ctx context.Context, entrepreneurID uuid.UUID) ([]*domain.Product, error) {
	return s.store.Products().ListByEntrepreneur(ctx, entrepreneurID)
}
