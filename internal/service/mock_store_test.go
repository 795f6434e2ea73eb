package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"reservas-api/internal/domain"
	"reservas-api/internal/repository"

	"github.com/google/uuid"
)

// mockStore is an in-memory Store for service tests. ExecTx serializes
// transactions with a mutex and restores a snapshot when the callback
// fails, which mirrors the rollback the SQL store provides.
type mockStore struct {
	mu sync.Mutex

	users        map[uuid.UUID]*domain.User
	tokens       map[string]*domain.RefreshToken
	products     map[uuid.UUID]*domain.Product
	packages     map[uuid.UUID]*domain.CustomPackage
	reservations map[uuid.UUID]*domain.Reservation
	payments     map[uuid.UUID]*domain.Payment // keyed by reservation ID

	failPaymentCreate bool
}

func newMockStore() *mockStore {
	return &mockStore{
		users:        make(map[uuid.UUID]*domain.User),
		tokens:       make(map[string]*domain.RefreshToken),
		products:     make(map[uuid.UUID]*domain.Product),
		packages:     make(map[uuid.UUID]*domain.CustomPackage),
		reservations: make(map[uuid.UUID]*domain.Reservation),
		payments:     make(map[uuid.UUID]*domain.Payment),
	}
}

type mockSnapshot struct {
	users        map[uuid.UUID]*domain.User
	products     map[uuid.UUID]*domain.Product
	packages     map[uuid.UUID]*domain.CustomPackage
	reservations map[uuid.UUID]*domain.Reservation
	payments     map[uuid.UUID]*domain.Payment
}

func copyMap[K comparable, V any](src map[K]*V) map[K]*V {
	dst := make(map[K]*V, len(src))
	for k, v := range src {
		clone := *v
		dst[k] = &clone
	}
	return dst
}

func (m *mockStore) snapshot() mockSnapshot {
	return mockSnapshot{
		users:        copyMap(m.users),
		products:     copyMap(m.products),
		packages:     copyMap(m.packages),
		reservations: copyMap(m.reservations),
		payments:     copyMap(m.payments),
	}
}

func (m *mockStore) restore(s mockSnapshot) {
	m.users = s.users
	m.products = s.products
	m.packages = s.packages
	m.reservations = s.reservations
	m.payments = s.payments
}

func (m *mockStore) ExecTx(ctx context.Context, fn func(repository.Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := m.snapshot()
	if err := fn(m); err != nil {
		m.restore(snap)
		return err
	}
	return nil
}

func (m *mockStore) Users() repository.UserRepository                 { return mockUsers{m} }
func (m *mockStore) RefreshTokens() repository.RefreshTokenRepository { return mockTokens{m} }
func (m *mockStore) Products() repository.ProductRepository           { return mockProducts{m} }
func (m *mockStore) Inventory() repository.InventoryRepository        { return mockInventory{m} }
func (m *mockStore) Packages() repository.PackageRepository           { return mockPackages{m} }
func (m *mockStore) Reservations() repository.ReservationRepository   { return mockReservations{m} }
func (m *mockStore) Payments() repository.PaymentRepository           { return mockPayments{m} }

type mockUsers struct{ s *mockStore }

func (r mockUsers) Create(ctx context.Context, user *domain.User) error {
	clone := *user
	r.s.users[user.ID] = &clone
	return nil
}

func (r mockUsers) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	clone := *user
	return &clone, nil
}

func (r mockUsers) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, user := range r.s.users {
		if user.Email != nil && *user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (r mockUsers) FindByPhone(ctx context.Context, phone string) (*domain.User, error) {
	for _, user := range r.s.users {
		if user.Phone == phone {
			clone := *user
			return &clone, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

type mockTokens struct{ s *mockStore }

func (r mockTokens) Create(ctx context.Context, token *domain.RefreshToken) error {
	clone := *token
	r.s.tokens[token.Token] = &clone
	return nil
}

func (r mockTokens) FindByToken(ctx context.Context, token string) (*domain.RefreshToken, error) {
	t, ok := r.s.tokens[token]
	if !ok {
		return nil, repository.ErrRefreshTokenNotFound
	}
	if t.Revoked {
		return nil, repository.ErrRefreshTokenRevoked
	}
	clone := *t
	return &clone, nil
}

func (r mockTokens) Revoke(ctx context.Context, token string) error {
	t, ok := r.s.tokens[token]
	if !ok {
		return repository.ErrRefreshTokenNotFound
	}
	t.Revoked = true
	return nil
}

type mockProducts struct{ s *mockStore }

func (r mockProducts) Create(ctx context.Context, product *domain.Product) error {
	clone := *product
	r.s.products[product.ID] = &clone
	return nil
}

func (r mockProducts) Update(ctx context.Context, product *domain.Product) error {
	existing, ok := r.s.products[product.ID]
	if !ok {
		return repository.ErrProductNotFound
	}
	existing.Name = product.Name
	existing.Description = product.Description
	existing.Price = product.Price
	existing.UpdatedAt = product.UpdatedAt
	return nil
}

func (r mockProducts) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	product, ok := r.s.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	clone := *product
	return &clone, nil
}

func (r mockProducts) ListByEntrepreneur(ctx context.Context, entrepreneurID uuid.UUID) ([]*domain.Product, error) {
	var out []*domain.Product
	for _, product := range r.s.products {
		if product.EntrepreneurID == entrepreneurID {
			clone := *product
			out = append(out, &clone)
		}
	}
	return out, nil
}

type mockInventory struct{ s *mockStore }

func (r mockInventory) CheckAndReserve(ctx context.Context, productID uuid.UUID, quantity int) error {
	product, ok := r.s.products[productID]
	if !ok {
		return repository.ErrProductNotFound
	}
	if product.Stock < quantity {
		return repository.ErrInsufficientStock
	}
	product.Stock -= quantity
	return nil
}

func (r mockInventory) Restock(ctx context.Context, productID uuid.UUID, quantity int) error {
	product, ok := r.s.products[productID]
	if !ok {
		return repository.ErrProductNotFound
	}
	product.Stock += quantity
	return nil
}

func (r mockInventory) StockOf(ctx context.Context, productID uuid.UUID) (int, error) {
	product, ok := r.s.products[productID]
	if !ok {
		return 0, repository.ErrProductNotFound
	}
	return product.Stock, nil
}

type mockPackages struct{ s *mockStore }

func (r mockPackages) Create(ctx context.Context, pkg *domain.CustomPackage, productIDs []uuid.UUID) error {
	clone := *pkg
	for _, id := range productIDs {
		if product, ok := r.s.packageProduct(id); ok {
			clone.Products = append(clone.Products, *product)
		}
	}
	r.s.packages[pkg.ID] = &clone
	return nil
}

func (s *mockStore) packageProduct(id uuid.UUID) (*domain.Product, bool) {
	product, ok := s.products[id]
	return product, ok
}

func (r mockPackages) FindByID(ctx context.Context, id uuid.UUID) (*domain.CustomPackage, error) {
	pkg, ok := r.s.packages[id]
	if !ok {
		return nil, repository.ErrPackageNotFound
	}
	clone := *pkg
	return &clone, nil
}

type mockReservations struct{ s *mockStore }

func (r mockReservations) Create(ctx context.Context, reservation *domain.Reservation) error {
	clone := *reservation
	r.s.reservations[reservation.ID] = &clone
	return nil
}

func (r mockReservations) Update(ctx context.Context, reservation *domain.Reservation) error {
	if _, ok := r.s.reservations[reservation.ID]; !ok {
		return repository.ErrReservationNotFound
	}
	clone := *reservation
	r.s.reservations[reservation.ID] = &clone
	return nil
}

func (r mockReservations) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := r.s.reservations[id]; !ok {
		return repository.ErrReservationNotFound
	}
	delete(r.s.reservations, id)
	delete(r.s.payments, id)
	return nil
}

func (r mockReservations) FindByID(ctx context.Context, id uuid.UUID) (*domain.Reservation, error) {
	reservation, ok := r.s.reservations[id]
	if !ok {
		return nil, repository.ErrReservationNotFound
	}
	clone := *reservation
	return &clone, nil
}

func (r mockReservations) view(reservation *domain.Reservation) *domain.ReservationView {
	view := &domain.ReservationView{Reservation: *reservation}
	if reservation.ProductID != nil {
		if product, ok := r.s.products[*reservation.ProductID]; ok {
			clone := *product
			view.Product = &clone
		}
	}
	if reservation.CustomPackageID != nil {
		if pkg, ok := r.s.packages[*reservation.CustomPackageID]; ok {
			clone := *pkg
			view.CustomPackage = &clone
		}
	}
	if user, ok := r.s.users[reservation.UserID]; ok {
		clone := *user
		view.User = &clone
	}
	if payment, ok := r.s.payments[reservation.ID]; ok {
		clone := *payment
		view.Payment = &clone
	}
	return view
}

func (r mockReservations) GetView(ctx context.Context, id uuid.UUID) (*domain.ReservationView, error) {
	reservation, ok := r.s.reservations[id]
	if !ok {
		return nil, repository.ErrReservationNotFound
	}
	return r.view(reservation), nil
}

func (r mockReservations) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.ReservationView, error) {
	var views []*domain.ReservationView
	for _, reservation := range r.s.reservations {
		if reservation.UserID == userID {
			views = append(views, r.view(reservation))
		}
	}
	sort.Slice(views, func(i, j int) bool {
		return views[i].CreatedAt.After(views[j].CreatedAt)
	})
	if len(views) > limit {
		views = views[:limit]
	}
	return views, nil
}

func (r mockReservations) ListByEntrepreneur(ctx context.Context, entrepreneurID uuid.UUID) ([]*domain.ReservationView, error) {
	var views []*domain.ReservationView
	for _, reservation := range r.s.reservations {
		if r.touchesEntrepreneur(reservation, entrepreneurID) {
			views = append(views, r.view(reservation))
		}
	}
	return views, nil
}

func (r mockReservations) touchesEntrepreneur(reservation *domain.Reservation, entrepreneurID uuid.UUID) bool {
	if reservation.ProductID != nil {
		if product, ok := r.s.products[*reservation.ProductID]; ok && product.EntrepreneurID == entrepreneurID {
			return true
		}
	}
	if reservation.CustomPackageID != nil {
		if pkg, ok := r.s.packages[*reservation.CustomPackageID]; ok {
			for _, product := range pkg.Products {
				if product.EntrepreneurID == entrepreneurID {
					return true
				}
			}
		}
	}
	return false
}

type mockPayments struct{ s *mockStore }

var errPaymentStorage = errors.New("payment storage unavailable")

func (r mockPayments) Create(ctx context.Context, payment *domain.Payment) error {
	if r.s.failPaymentCreate {
		return errPaymentStorage
	}
	if _, exists := r.s.payments[payment.ReservationID]; exists {
		return repository.ErrPaymentAlreadyExists
	}
	clone := *payment
	r.s.payments[payment.ReservationID] = &clone
	return nil
}

func (r mockPayments) FindByReservationID(ctx context.Context, reservationID uuid.UUID) (*domain.Payment, error) {
	payment, ok := r.s.payments[reservationID]
	if !ok {
		return nil, repository.ErrPaymentNotFound
	}
	clone := *payment
	return &clone, nil
}

func (r mockPayments) Confirm(ctx context.Context, id uuid.UUID, confirmedBy uuid.UUID) error {
	for _, payment := range r.s.payments {
		if payment.ID == id && !payment.IsConfirmed {
			now := time.Now()
			payment.IsConfirmed = true
			payment.Status = domain.PaymentStatusConfirmed
			payment.ConfirmationTime = &now
			payment.ConfirmationBy = &confirmedBy
			return nil
		}
	}
	return repository.ErrPaymentNotFound
}
