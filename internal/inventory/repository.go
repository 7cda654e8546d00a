package inventory

import (
	"context"
	"database/sql"
	"time"

	"mechanic-service/internal/metrics"
	"mechanic-service/internal/models"

	"github.com/uptrace/bun"
)

type Repository interface {
	Create(ctx context.Context, part *models.Part) (*models.Part, error)
	GetByID(ctx context.Context, id int) (*models.Part, error)
	List(ctx context.Context, limit, offset int) ([]models.Part, error)
	Count(ctx context.Context) (int, error)
	Update(ctx context.Context, part *models.Part) error
	Delete(ctx context.Context, id int) error
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

func (r *repository) Create(ctx context.Context, part *models.Part) (*models.Part, error) {
	start := time.Now()
	_, err := r.db.NewInsert().Model(part).Returning("*").Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "insert", "inventory", time.Since(start), err)

	if err != nil {
		return nil, err
	}
	return part, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*models.Part, error) {
	start := time.Now()
	part := new(models.Part)
	err := r.db.NewSelect().Model(part).Where("p.id = ?", id).Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "inventory", time.Since(start), err)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrPartNotFound
		}
		return nil, err
	}
	return part, nil
}

func (r *repository) List(ctx context.Context, limit, offset int) ([]models.Part, error) {
	start := time.Now()
	var parts []models.Part
	err := r.db.NewSelect().
		Model(&parts).
		Order("p.id ASC").
		Limit(limit).
		Offset(offset).
		Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "inventory", time.Since(start), err)

	return parts, err
}

func (r *repository) Count(ctx context.Context) (int, error) {
	start := time.Now()
	count, err := r.db.NewSelect().Model((*models.Part)(nil)).Count(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "inventory", time.Since(start), err)

	return count, err
}

func (r *repository) Update(ctx context.Context, part *models.Part) error {
	start := time.Now()
	result, err := r.db.NewUpdate().Model(part).WherePK().Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "update", "inventory", time.Since(start), err)

	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrPartNotFound
	}
	return nil
}

// Delete detaches the part from every ticket before removing the row.
func (r *repository) Delete(ctx context.Context, id int) error {
	start := time.Now()
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*models.TicketPart)(nil)).
			Where("part_id = ?", id).
			Exec(ctx); err != nil {
			return err
		}

		result, err := tx.NewDelete().
			Model((*models.Part)(nil)).
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
			return ErrPartNotFound
		}
		return nil
	})

	r.metrics.Database.RecordQuery(ctx, "delete", "inventory", time.Since(start), err)

	return err
}
