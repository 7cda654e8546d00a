package customer

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
	Create(ctx context.Context, customer *models.Customer) (*models.Customer, error)
	GetByID(ctx context.Context, id int) (*models.Customer, error)
	GetByEmail(ctx context.Context, email string) (*models.Customer, error)
	List(ctx context.Context, limit, offset int) ([]models.Customer, error)
	Count(ctx context.Context) (int, error)
	Update(ctx context.Context, customer *models.Customer) error
	Delete(ctx context.Context, id int) error
	Exists(ctx context.Context, id int) (bool, error)
	TicketsByCustomer(ctx context.Context, customerID int) ([]models.ServiceTicket, error)
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

func (r *repository) Create(ctx context.Context, customer *models.Customer) (*models.Customer, error) {
	// friendly uniqueness pre-check; the unique index still backstops races
	existing, err := r.GetByEmail(ctx, customer.Email)
	if err != nil && err != ErrCustomerNotFound {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailExists
	}

	start := time.Now()
	_, err = r.db.NewInsert().Model(customer).Returning("*").Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "insert", "customers", time.Since(start), err)

	if err != nil {
		if dbutil.IsUniqueViolation(err) {
			return nil, ErrEmailExists
		}
		return nil, err
	}
	return customer, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*models.Customer, error) {
	start := time.Now()
	customer := new(models.Customer)
	err := r.db.NewSelect().Model(customer).Where("c.id = ?", id).Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "customers", time.Since(start), err)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}
	return customer, nil
}

func (r *repository) GetByEmail(ctx context.Context, email string) (*models.Customer, error) {
	start := time.Now()
	customer := new(models.Customer)
	err := r.db.NewSelect().Model(customer).Where("c.email = ?", email).Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "customers", time.Since(start), err)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}
	return customer, nil
}

func (r *repository) List(ctx context.Context, limit, offset int) ([]models.Customer, error) {
	start := time.Now()
	var customers []models.Customer
	err := r.db.NewSelect().
		Model(&customers).
		Order("c.id ASC").
		Limit(limit).
		Offset(offset).
		Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "customers", time.Since(start), err)

	return customers, err
}

func (r *repository) Count(ctx context.Context) (int, error) {
	start := time.Now()
	count, err := r.db.NewSelect().Model((*models.Customer)(nil)).Count(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "customers", time.Since(start), err)

	return count, err
}

func (r *repository) Update(ctx context.Context, customer *models.Customer) error {
	start := time.Now()
	result, err := r.db.NewUpdate().Model(customer).WherePK().Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "update", "customers", time.Since(start), err)

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
		return ErrCustomerNotFound
	}
	return nil
}

// Delete removes the customer, its tickets, and their association rows
// in one transaction - no orphaned join rows survive a partial failure.
func (r *repository) Delete(ctx context.Context, id int) error {
	start := time.Now()
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		ticketIDs := tx.NewSelect().
			Model((*models.ServiceTicket)(nil)).
			Column("id").
			Where("customer_id = ?", id)

		if _, err := tx.NewDelete().
			Model((*models.TicketMechanic)(nil)).
			Where("ticket_id IN (?)", ticketIDs).
			Exec(ctx); err != nil {
			return err
		}

		if _, err := tx.NewDelete().
			Model((*models.TicketPart)(nil)).
			Where("ticket_id IN (?)", ticketIDs).
			Exec(ctx); err != nil {
			return err
		}

		if _, err := tx.NewDelete().
			Model((*models.ServiceTicket)(nil)).
			Where("customer_id = ?", id).
			Exec(ctx); err != nil {
			return err
		}

		result, err := tx.NewDelete().
			Model((*models.Customer)(nil)).
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
			return ErrCustomerNotFound
		}
		return nil
	})

	r.metrics.Database.RecordQuery(ctx, "delete", "customers", time.Since(start), err)

	return err
}

func (r *repository) Exists(ctx context.Context, id int) (bool, error) {
	start := time.Now()
	exists, err := r.db.NewSelect().
		Model((*models.Customer)(nil)).
		Where("c.id = ?", id).
		Exists(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "customers", time.Since(start), err)

	return exists, err
}

func (r *repository) TicketsByCustomer(ctx context.Context, customerID int) ([]models.ServiceTicket, error) {
	start := time.Now()
	var tickets []models.ServiceTicket
	err := r.db.NewSelect().
		Model(&tickets).
		Where("st.customer_id = ?", customerID).
		Order("st.id ASC").
		Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "service_tickets", time.Since(start), err)

	return tickets, err
}
