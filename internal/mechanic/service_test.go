package mechanic_test

import (
	"context"
	"errors"
	"testing"

	"mechanic-service/internal/mechanic"
	"mechanic-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubRepo overrides only the methods a test exercises; anything else
// panics through the embedded nil interface.
type stubRepo struct {
	mechanic.Repository
	byID      *models.Mechanic
	byEmail   *models.Mechanic
	emailErr  error
	updateErr error
}

func (s *stubRepo) GetByID(ctx context.Context, id int) (*models.Mechanic, error) {
	return s.byID, nil
}

func (s *stubRepo) GetByEmail(ctx context.Context, email string) (*models.Mechanic, error) {
	return s.byEmail, s.emailErr
}

func (s *stubRepo) Update(ctx context.Context, mech *models.Mechanic) error {
	return s.updateErr
}

func strPtr(s string) *string { return &s }

func TestUpdateEmailPreCheck(t *testing.T) {
	ctx := context.Background()
	current := func() *models.Mechanic {
		return &models.Mechanic{ID: 1, Name: "Torque", Email: "torque@example.com", Phone: "555-222-3333", Salary: 50000}
	}

	t.Run("LookupFailurePropagates", func(t *testing.T) {
		lookupErr := errors.New("connection reset")
		repo := &stubRepo{byID: current(), emailErr: lookupErr}
		service := mechanic.NewService(repo, nil)

		_, err := service.Update(ctx, 1, mechanic.UpdateMechanicRequest{Email: strPtr("new@example.com")})

		require.Error(t, err)
		assert.ErrorIs(t, err, lookupErr)
		assert.NotErrorIs(t, err, mechanic.ErrEmailExists)
	})

	t.Run("NotFoundMeansEmailIsFree", func(t *testing.T) {
		repo := &stubRepo{byID: current(), emailErr: mechanic.ErrMechanicNotFound}
		service := mechanic.NewService(repo, nil)

		updated, err := service.Update(ctx, 1, mechanic.UpdateMechanicRequest{Email: strPtr("new@example.com")})

		require.NoError(t, err)
		assert.Equal(t, "new@example.com", updated.Email)
	})

	t.Run("TakenEmailConflicts", func(t *testing.T) {
		repo := &stubRepo{byID: current(), byEmail: &models.Mechanic{ID: 2, Email: "taken@example.com"}}
		service := mechanic.NewService(repo, nil)

		_, err := service.Update(ctx, 1, mechanic.UpdateMechanicRequest{Email: strPtr("taken@example.com")})

		assert.ErrorIs(t, err, mechanic.ErrEmailExists)
	})
}
