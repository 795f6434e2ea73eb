package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"reservas-api/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrPackageNotFound = errors.New("custom package not found")
)

// PackageRepository defines the interface for custom package data access.
// Packages are read-only from the reservation core's point of view; their
// total_amount is fixed at creation.
type PackageRepository interface {
	Create(ctx context.Context, pkg *domain.CustomPackage, productIDs []uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.CustomPackage, error)
}

type packageRepository struct {
	db DBTX
}

// NewPackageRepository creates a new instance of PackageRepository
func NewPackageRepository(db DBTX) PackageRepository {
	return &packageRepository{db: db}
}

// Create inserts a package and its product links
func (r *packageRepository) Create(ctx context.Context, pkg *domain.CustomPackage, productIDs []uuid.UUID) error {
	query := `
		INSERT INTO custom_packages (id, name, total_amount, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.db.ExecContext(ctx, query, pkg.ID, pkg.Name, pkg.TotalAmount, pkg.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create custom package: %w", err)
	}

	linkQuery := `
		INSERT INTO custom_package_products (custom_package_id, product_id)
		VALUES ($1, $2)
	`
	for _, productID := range productIDs {
		if _, err := r.db.ExecContext(ctx, linkQuery, pkg.ID, productID); err != nil {
			return fmt.Errorf("failed to link product to package: %w", err)
		}
	}

	return nil
}

// FindByID retrieves a package together with its constituent products
func (r *packageRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.CustomPackage, error) {
	query := `
		SELECT id, name, total_amount, created_at
		FROM custom_packages
		WHERE id = $1
	`

	pkg := &domain.CustomPackage{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&pkg.ID,
		&pkg.Name,
		&pkg.TotalAmount,
		&pkg.CreatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrPackageNotFound
		}
		return nil, fmt.Errorf("failed to find package by ID: %w", err)
	}

	productsQuery := `
		SELECT p.id, p.entrepreneur_id, p.name, p.description, p.price, p.stock, p.created_at, p.updated_at
		FROM products p
		JOIN custom_package_products cpp ON cpp.product_id = p.id
		WHERE cpp.custom_package_id = $1
	`

	rows, err := r.db.QueryContext(ctx, productsQuery, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load package products: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var product domain.Product
		err := rows.Scan(
			&product.ID,
			&product.EntrepreneurID,
			&product.Name,
			&product.Description,
			&product.Price,
			&product.Stock,
			&product.CreatedAt,
			&product.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan package product: %w", err)
		}
		pkg.Products = append(pkg.Products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating package products: %w", err)
	}

	return pkg, nil
}
