package ticket

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
	Create(ctx context.Context, ticket *models.ServiceTicket, mechanicIDs []int) (*models.ServiceTicket, error)
	GetByID(ctx context.Context, id int) (*models.ServiceTicket, error)
	List(ctx context.Context, limit, offset int) ([]models.ServiceTicket, error)
	Count(ctx context.Context) (int, error)
	Update(ctx context.Context, ticket *models.ServiceTicket, mechanicIDs *[]int) error
	EditMechanics(ctx context.Context, ticketID int, addIDs, removeIDs []int) error
	AttachPart(ctx context.Context, ticketID, partID int) error
	Delete(ctx context.Context, id int) error
	OwnerID(ctx context.Context, id int) (int, error)
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

// Create inserts the ticket and its initial mechanic set in one
// transaction. Unknown customer or mechanic ids abort the whole insert.
func (r *repository) Create(ctx context.Context, ticket *models.ServiceTicket, mechanicIDs []int) (*models.ServiceTicket, error) {
	start := time.Now()
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		exists, err := tx.NewSelect().
			Model((*models.Customer)(nil)).
			Where("c.id = ?", ticket.CustomerID).
			Exists(ctx)
		if err != nil {
			return err
		}
		if !exists {
			return ErrUnknownCustomer
		}

		if err := verifyMechanics(ctx, tx, mechanicIDs); err != nil {
			return err
		}

		if _, err := tx.NewInsert().Model(ticket).Returning("*").Exec(ctx); err != nil {
			if dbutil.IsForeignKeyViolation(err) {
				return ErrUnknownCustomer
			}
			return err
		}

		if len(mechanicIDs) == 0 {
			return nil
		}
		links := make([]models.TicketMechanic, 0, len(mechanicIDs))
		for _, mid := range mechanicIDs {
			links = append(links, models.TicketMechanic{TicketID: ticket.ID, MechanicID: mid})
		}
		_, err = tx.NewInsert().
			Model(&links).
			On("CONFLICT DO NOTHING").
			Exec(ctx)
		if dbutil.IsForeignKeyViolation(err) {
			return ErrUnknownMechanic
		}
		return err
	})

	r.metrics.Database.RecordQuery(ctx, "insert", "service_tickets", time.Since(start), err)

	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, ticket.ID)
}

func (r *repository) GetByID(ctx context.Context, id int) (*models.ServiceTicket, error) {
	start := time.Now()
	ticket := new(models.ServiceTicket)
	err := r.db.NewSelect().
		Model(ticket).
		Relation("Mechanics").
		Relation("Parts").
		Where("st.id = ?", id).
		Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "service_tickets", time.Since(start), err)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrTicketNotFound
		}
		return nil, err
	}
	return ticket, nil
}

func (r *repository) List(ctx context.Context, limit, offset int) ([]models.ServiceTicket, error) {
	start := time.Now()
	var tickets []models.ServiceTicket
	err := r.db.NewSelect().
		Model(&tickets).
		Relation("Mechanics").
		Relation("Parts").
		Order("st.id ASC").
		Limit(limit).
		Offset(offset).
		Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "service_tickets", time.Since(start), err)

	return tickets, err
}

func (r *repository) Count(ctx context.Context) (int, error) {
	start := time.Now()
	count, err := r.db.NewSelect().Model((*models.ServiceTicket)(nil)).Count(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "service_tickets", time.Since(start), err)

	return count, err
}

// Update writes the scalar columns and, when mechanicIDs is non-nil,
// replaces the assigned mechanic set wholesale.
func (r *repository) Update(ctx context.Context, ticket *models.ServiceTicket, mechanicIDs *[]int) error {
	start := time.Now()
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		result, err := tx.NewUpdate().
			Model(ticket).
			Column("vin", "service_date", "service_desc").
			WherePK().
			Exec(ctx)
		if err != nil {
			return err
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rowsAffected == 0 {
			return ErrTicketNotFound
		}

		if mechanicIDs == nil {
			return nil
		}

		if err := verifyMechanics(ctx, tx, *mechanicIDs); err != nil {
			return err
		}

		if _, err := tx.NewDelete().
			Model((*models.TicketMechanic)(nil)).
			Where("ticket_id = ?", ticket.ID).
			Exec(ctx); err != nil {
			return err
		}

		if len(*mechanicIDs) == 0 {
			return nil
		}
		links := make([]models.TicketMechanic, 0, len(*mechanicIDs))
		for _, mid := range *mechanicIDs {
			links = append(links, models.TicketMechanic{TicketID: ticket.ID, MechanicID: mid})
		}
		_, err = tx.NewInsert().
			Model(&links).
			On("CONFLICT DO NOTHING").
			Exec(ctx)
		return err
	})

	r.metrics.Database.RecordQuery(ctx, "update", "service_tickets", time.Since(start), err)

	return err
}

// EditMechanics applies adds and removes atomically. Every referenced
// mechanic must exist, including ids that are only being removed.
func (r *repository) EditMechanics(ctx context.Context, ticketID int, addIDs, removeIDs []int) error {
	start := time.Now()
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		exists, err := tx.NewSelect().
			Model((*models.ServiceTicket)(nil)).
			Where("st.id = ?", ticketID).
			Exists(ctx)
		if err != nil {
			return err
		}
		if !exists {
			return ErrTicketNotFound
		}

		referenced := append(append([]int{}, addIDs...), removeIDs...)
		if err := verifyMechanics(ctx, tx, referenced); err != nil {
			return err
		}

		if len(addIDs) > 0 {
			links := make([]models.TicketMechanic, 0, len(addIDs))
			for _, mid := range addIDs {
				links = append(links, models.TicketMechanic{TicketID: ticketID, MechanicID: mid})
			}
			if _, err := tx.NewInsert().
				Model(&links).
				On("CONFLICT DO NOTHING").
				Exec(ctx); err != nil {
				return err
			}
		}

		if len(removeIDs) > 0 {
			if _, err := tx.NewDelete().
				Model((*models.TicketMechanic)(nil)).
				Where("ticket_id = ?", ticketID).
				Where("mechanic_id IN (?)", bun.In(removeIDs)).
				Exec(ctx); err != nil {
				return err
			}
		}
		return nil
	})

	r.metrics.Database.RecordQuery(ctx, "update", "ticket_mechanics", time.Since(start), err)

	return err
}

// AttachPart links a part to a ticket. Attaching the same part twice is
// a no-op.
func (r *repository) AttachPart(ctx context.Context, ticketID, partID int) error {
	start := time.Now()
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		exists, err := tx.NewSelect().
			Model((*models.ServiceTicket)(nil)).
			Where("st.id = ?", ticketID).
			Exists(ctx)
		if err != nil {
			return err
		}
		if !exists {
			return ErrTicketNotFound
		}

		exists, err = tx.NewSelect().
			Model((*models.Part)(nil)).
			Where("p.id = ?", partID).
			Exists(ctx)
		if err != nil {
			return err
		}
		if !exists {
			return ErrUnknownPart
		}

		_, err = tx.NewInsert().
			Model(&models.TicketPart{TicketID: ticketID, PartID: partID}).
			On("CONFLICT DO NOTHING").
			Exec(ctx)
		return err
	})

	r.metrics.Database.RecordQuery(ctx, "insert", "ticket_parts", time.Since(start), err)

	return err
}

// Delete removes the ticket and its association rows.
func (r *repository) Delete(ctx context.Context, id int) error {
	start := time.Now()
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*models.TicketMechanic)(nil)).
			Where("ticket_id = ?", id).
			Exec(ctx); err != nil {
			return err
		}
		if _, err := tx.NewDelete().
			Model((*models.TicketPart)(nil)).
			Where("ticket_id = ?", id).
			Exec(ctx); err != nil {
			return err
		}

		result, err := tx.NewDelete().
			Model((*models.ServiceTicket)(nil)).
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
			return ErrTicketNotFound
		}
		return nil
	})

	r.metrics.Database.RecordQuery(ctx, "delete", "service_tickets", time.Since(start), err)

	return err
}

// OwnerID returns the customer id that owns the ticket.
func (r *repository) OwnerID(ctx context.Context, id int) (int, error) {
	start := time.Now()
	var customerID int
	err := r.db.NewSelect().
		Model((*models.ServiceTicket)(nil)).
		Column("customer_id").
		Where("st.id = ?", id).
		Scan(ctx, &customerID)

	r.metrics.Database.RecordQuery(ctx, "select", "service_tickets", time.Since(start), err)

	if err != nil {
		if err == sql.ErrNoRows {
			return 0, ErrTicketNotFound
		}
		return 0, err
	}
	return customerID, nil
}

func verifyMechanics(ctx context.Context, tx bun.Tx, ids []int) error {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[int]struct{}, len(ids))
	unique := make([]int, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	count, err := tx.NewSelect().
		Model((*models.Mechanic)(nil)).
		Where("m.id IN (?)", bun.In(unique)).
		Count(ctx)
	if err != nil {
		return err
	}
	if count != len(unique) {
		return ErrUnknownMechanic
	}
	return nil
}
