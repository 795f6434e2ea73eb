package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// DBTX is the subset of database/sql used by the repositories. It is
// satisfied by both *sql.DB and *sql.Tx, so a repository works the same
// inside and outside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store bundles all repositories behind one transaction boundary. The
// reservation lifecycle wraps multi-step writes (stock decrement, customer
// creation, reservation insert, payment insert) in ExecTx so a failure at
// any step rolls everything back.
type Store interface {
	Users() UserRepository
	RefreshTokens() RefreshTokenRepository
	Products() ProductRepository
	Inventory() InventoryRepository
	Packages() PackageRepository
	Reservations() ReservationRepository
	Payments() PaymentRepository

	// ExecTx runs fn with a Store whose repositories share a single
	// database transaction. The transaction commits only if fn returns nil.
	ExecTx(ctx context.Context, fn func(Store) error) error
}

type sqlStore struct {
	db *sql.DB // nil when the store is bound to a transaction
	q  DBTX

	users         UserRepository
	refreshTokens RefreshTokenRepository
	products      ProductRepository
	inventory     InventoryRepository
	packages      PackageRepository
	reservations  ReservationRepository
	payments      PaymentRepository
}

// NewStore creates a Store backed by the given connection pool
func NewStore(db *sql.DB) Store {
	return newSQLStore(db, db)
}

func newSQLStore(db *sql.DB, q DBTX) *sqlStore {
	return &sqlStore{
		db:            db,
		q:             q,
		users:         NewUserRepository(q),
		refreshTokens: NewRefreshTokenRepository(q),
		products:      NewProductRepository(q),
		inventory:     NewInventoryRepository(q),
		packages:      NewPackageRepository(q),
		reservations:  NewReservationRepository(q),
		payments:      NewPaymentRepository(q),
	}
}

func (s *sqlStore) Users() UserRepository                 { return s.users }
func (s *sqlStore) RefreshTokens() RefreshTokenRepository { return s.refreshTokens }
func (s *sqlStore) Products() ProductRepository           { return s.products }
func (s *sqlStore) Inventory() InventoryRepository        { return s.inventory }
func (s *sqlStore) Packages() PackageRepository           { return s.packages }
func (s *sqlStore) Reservations() ReservationRepository   { return s.reservations }
func (s *sqlStore) Payments() PaymentRepository           { return s.payments }

// ExecTx begins a transaction and runs fn against a tx-bound store.
// Nested calls join the enclosing transaction instead of opening a new one.
func (s *sqlStore) ExecTx(ctx context.Context, fn func(Store) error) error {
	if s.db == nil {
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	txStore := newSQLStore(nil, tx)
	if err := fn(txStore); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("tx error: %v, rollback error: %w", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
