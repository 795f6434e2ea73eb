package service

import (
	"context"
	"fmt"
	"time"

	"reservas-api/internal/domain"
	"reservas-api/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// CustomerContact is the walk-in customer identity captured at the
// point of sale
type CustomerContact struct {
	Name  string
	Phone string
	Email *string
}

// CustomerResolver finds or creates the customer account for a direct
// sale. Operations take the Store explicitly so they join the caller's
// transaction.
type CustomerResolver interface {
	// ResolveOrCreate returns the matching customer, or a freshly created
	// one with a placeholder credential. The bool reports whether a new
	// account was created. Phone matches take precedence over email.
	ResolveOrCreate(ctx context.Context, store repository.Store, contact CustomerContact) (*domain.User, bool, error)
}

type customerResolver struct{}

// NewCustomerResolver creates a new instance of CustomerResolver
func NewCustomerResolver() CustomerResolver {
	return customerResolver{}
}

func (customerResolver) ResolveOrCreate(ctx context.Context, store repository.Store, contact CustomerContact) (*domain.User, bool, error) {
	users := store.Users()

	if contact.Phone != "" {
		user, err := users.FindByPhone(ctx, contact.Phone)
		if err == nil {
			return user, false, nil
		}
		if err != repository.ErrUserNotFound {
			return nil, false, fmt.Errorf("failed to look up customer by phone: %w", err)
		}
	}

	if contact.Email != nil && *contact.Email != "" {
		user, err := users.FindByEmail(ctx, *contact.Email)
		if err == nil {
			return user, false, nil
		}
		if err != repository.ErrUserNotFound {
			return nil, false, fmt.Errorf("failed to look up customer by email: %w", err)
		}
	}

	// No match: provision an account the customer can claim later. The
	// credential is random so the account is unusable until a password
	// reset.
	placeholder, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcrypt.DefaultCost)
	if err != nil {
		return nil, false, fmt.Errorf("failed to generate placeholder credential: %w", err)
	}

	now := time.Now()
	user := &domain.User{
		ID:           uuid.New(),
		Name:         contact.Name,
		Phone:        contact.Phone,
		Email:        contact.Email,
		PasswordHash: string(placeholder),
		Role:         domain.RoleCustomer,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := users.Create(ctx, user); err != nil {
		return nil, false, fmt.Errorf("failed to create customer: %w", err)
	}

	return user, true, nil
}
