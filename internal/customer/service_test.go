package customer_test

import (
	"context"
	"errors"
	"testing"

	"mechanic-service/internal/customer"
	"mechanic-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubRepo overrides only the methods a test exercises; anything else
// panics through the embedded nil interface.
type stubRepo struct {
	customer.Repository
	byID      *models.Customer
	byEmail   *models.Customer
	emailErr  error
	updateErr error
}

func (s *stubRepo) GetByID(ctx context.Context, id int) (*models.Customer, error) {
	return s.byID, nil
}

func (s *stubRepo) GetByEmail(ctx context.Context, email string) (*models.Customer, error) {
	return s.byEmail, s.emailErr
}

func (s *stubRepo) Update(ctx context.Context, cust *models.Customer) error {
	return s.updateErr
}

func strPtr(s string) *string { return &s }

func TestUpdateEmailPreCheck(t *testing.T) {
	ctx := context.Background()
	current := func() *models.Customer {
		return &models.Customer{ID: 1, Name: "Ash", Email: "ash@example.com", Phone: "555-111-2222"}
	}

	t.Run("LookupFailurePropagates", func(t *testing.T) {
		lookupErr := errors.New("connection reset")
		repo := &stubRepo{byID: current(), emailErr: lookupErr}
		service := customer.NewService(repo, nil, nil)

		_, err := service.Update(ctx, 1, customer.UpdateCustomerRequest{Email: strPtr("new@example.com")})

		// a failed uniqueness lookup is not the same as the email being free
		require.Error(t, err)
		assert.ErrorIs(t, err, lookupErr)
		assert.NotErrorIs(t, err, customer.ErrEmailExists)
	})

	t.Run("NotFoundMeansEmailIsFree", func(t *testing.T) {
		repo := &stubRepo{byID: current(), emailErr: customer.ErrCustomerNotFound}
		service := customer.NewService(repo, nil, nil)

		updated, err := service.Update(ctx, 1, customer.UpdateCustomerRequest{Email: strPtr("new@example.com")})

		require.NoError(t, err)
		assert.Equal(t, "new@example.com", updated.Email)
	})

	t.Run("TakenEmailConflicts", func(t *testing.T) {
		repo := &stubRepo{byID: current(), byEmail: &models.Customer{ID: 2, Email: "taken@example.com"}}
		service := customer.NewService(repo, nil, nil)

		_, err := service.Update(ctx, 1, customer.UpdateCustomerRequest{Email: strPtr("taken@example.com")})

		assert.ErrorIs(t, err, customer.ErrEmailExists)
	})
}
