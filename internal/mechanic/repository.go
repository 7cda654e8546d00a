package mechanic

import (
	"context"
	"database/sql"
	"time"

	dbutil "mechanic-service/internal/db"
	"mechanic-service/internal/metrics"
	"mechanic-service/internal/models"

	"github.com/uptrace/bun"
)

type Repository interface {
	Create(ctx context.Context, mechanic *models.Mechanic) (*models.Mechanic, error)
	GetByID(ctx context.Context, id int) (*models.Mechanic, error)
	GetByEmail(ctx context.Context, email string) (*models.Mechanic, error)
	List(ctx context.Context, limit, offset int) ([]models.Mechanic, error)
	Count(ctx context.Context) (int, error)
	Update(ctx context.Context, mechanic *models.Mechanic) error
	Delete(ctx context.Context, id int) error
	Leaderboard(ctx context.Context) ([]LeaderboardEntry, error)
}

type repository struct {
	db      *bun.DB
	metrics *metrics.Metrics
}

func NewRepository(db *bun.DB, m *metrics.Metrics) Repository {
	return &repository{
		db:      db,
		metrics: m,
	}
}

func (r *repository) Create(ctx context.Context, mechanic *models.Mechanic) (*models.Mechanic, error) {
	existing, err := r.GetByEmail(ctx, mechanic.Email)
	if err != nil && err != ErrMechanicNotFound {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailExists
	}

	start := time.Now()
	_, err = r.db.NewInsert().Model(mechanic).Returning("*").Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "insert", "mechanics", time.Since(start), err)

	if err != nil {
		if dbutil.IsUniqueViolation(err) {
			return nil, ErrEmailExists
		}
		return nil, err
	}
	return mechanic, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*models.Mechanic, error) {
	start := time.Now()
	mechanic := new(models.Mechanic)
	err := r.db.NewSelect().Model(mechanic).Where("m.id = ?", id).Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "mechanics", time.Since(start), err)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrMechanicNotFound
		}
		return nil, err
	}
	return mechanic, nil
}

func (r *repository) GetByEmail(ctx context.Context, email string) (*models.Mechanic, error) {
	start := time.Now()
	mechanic := new(models.Mechanic)
	err := r.db.NewSelect().Model(mechanic).Where("m.email = ?", email).Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "mechanics", time.Since(start), err)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrMechanicNotFound
		}
		return nil, err
	}
	return mechanic, nil
}

func (r *repository) List(ctx context.Context, limit, offset int) ([]models.Mechanic, error) {
	start := time.Now()
	var mechanics []models.Mechanic
	err := r.db.NewSelect().
		Model(&mechanics).
		Order("m.id ASC").
		Limit(limit).
		Offset(offset).
		Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "mechanics", time.Since(start), err)

	return mechanics, err
}

func (r *repository) Count(ctx context.Context) (int, error) {
	start := time.Now()
	count, err := r.db.NewSelect().Model((*models.Mechanic)(nil)).Count(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "mechanics", time.Since(start), err)

	return count, err
}

func (r *repository) Update(ctx context.Context, mechanic *models.Mechanic) error {
	start := time.Now()
	result, err := r.db.NewUpdate().Model(mechanic).WherePK().Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "update", "mechanics", time.Since(start), err)

	if err != nil {
		if dbutil.IsUniqueViolation(err) {
			return ErrEmailExists
		}
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrMechanicNotFound
	}
	return nil
}

// Delete detaches the mechanic from every ticket before removing the
// row. Tickets themselves are never deleted here.
func (r *repository) Delete(ctx context.Context, id int) error {
	start := time.Now()
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*models.TicketMechanic)(nil)).
			Where("mechanic_id = ?", id).
			Exec(ctx); err != nil {
			return err
		}

		result, err := tx.NewDelete().
			Model((*models.Mechanic)(nil)).
			Where("id = ?", id).
			Exec(ctx)
		if err != nil {
			return err
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rowsAffected == 0 {
			return ErrMechanicNotFound
		}
		return nil
	})

	r.metrics.Database.RecordQuery(ctx, "delete", "mechanics", time.Since(start), err)

	return err
}

// Leaderboard ranks mechanics by assigned-ticket count, ties broken by
// ascending id.
func (r *repository) Leaderboard(ctx context.Context) ([]LeaderboardEntry, error) {
	start := time.Now()
	entries := make([]LeaderboardEntry, 0)
	err := r.db.NewSelect().
		Model((*models.Mechanic)(nil)).
		ColumnExpr("m.id, m.name, m.email").
		ColumnExpr("count(tm.ticket_id) AS ticket_count").
		Join("LEFT JOIN ticket_mechanics AS tm ON tm.mechanic_id = m.id").
		GroupExpr("m.id, m.name, m.email").
		OrderExpr("ticket_count DESC, m.id ASC").
		Scan(ctx, &entries)

	r.metrics.Database.RecordQuery(ctx, "select", "mechanics", time.Since(start), err)

	return entries, err
}
