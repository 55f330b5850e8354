package crdb

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/adhilsalahh/package-booking/internal/domain"
	"github.com/adhilsalahh/package-booking/internal/observability"
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	SerializationFailureCode = "40001"
	ForeignKeyViolationCode  = "23503"
)

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *Repository) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	start := time.Now()
	defer func() { observability.DBTxDuration.Observe(time.Since(start).Seconds()) }()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, "SET TRANSACTION ISOLATION LEVEL SERIALIZABLE")
	if err != nil {
		return err
	}

	err = fn(tx)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == SerializationFailureCode {
			return domain.ErrSerializationFailure
		}
		return err
	}

	return tx.Commit(ctx)
}

const bookingColumns = `id, user_id, package_id, booking_date::TEXT, number_of_members,
	total_price, advance_payment, remaining_payment, status, created_at, updated_at`

func scanBooking(row pgx.Row) (domain.Booking, error) {
	var b domain.Booking
	err := row.Scan(&b.ID, &b.UserID, &b.PackageID, &b.BookingDate, &b.NumberOfMembers,
		&b.TotalPrice, &b.AdvancePayment, &b.RemainingPayment, &b.Status, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}

// CreateBooking writes the booking, its whole manifest and the
// booking.created event in one transaction.
func (r *Repository) CreateBooking(ctx context.Context, b domain.Booking, members []domain.Member) error {
	return r.WithTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO bookings (id, user_id, package_id, booking_date, number_of_members,
				total_price, advance_payment, remaining_payment, status, created_at, updated_at)
			VALUES ($1, $2, $3, $4::DATE, $5, $6, $7, $8, $9, $10, $11)
		`, b.ID, b.UserID, b.PackageID, b.BookingDate, b.NumberOfMembers,
			b.TotalPrice, b.AdvancePayment, b.RemainingPayment, b.Status, b.CreatedAt, b.UpdatedAt)
		if err != nil {
			return errors.Wrap(err, "insert booking")
		}

		batch := &pgx.Batch{}
		for i, m := range members {
			batch.Queue(`
				INSERT INTO booking_members (id, booking_id, position, name, age, phone, created_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
			`, m.ID, b.ID, i, m.Name, m.Age, nullIfEmpty(m.Phone), m.CreatedAt)
		}
		br := tx.SendBatch(ctx, batch)
		for range members {
			if _, err := br.Exec(); err != nil {
				br.Close()
				return errors.Wrap(err, "insert booking member")
			}
		}
		if err := br.Close(); err != nil {
			return errors.Wrap(err, "insert booking members")
		}

		return r.insertEvent(ctx, tx, "booking", b.ID, "booking.created", map[string]interface{}{
			"booking_id":        b.ID,
			"user_id":           b.UserID,
			"package_id":        b.PackageID,
			"booking_date":      b.BookingDate,
			"number_of_members": b.NumberOfMembers,
			"total_price":       b.TotalPrice,
		})
	})
}

func (r *Repository) GetBooking(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	b, err := scanBooking(r.pool.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NotFound("booking", id.String())
	}
	if err != nil {
		return nil, errors.Wrap(err, "get booking")
	}
	return &b, nil
}

// TransitionBooking moves the booking from one status to another. It
// returns domain.ErrConflict when the row no longer has the from status.
func (r *Repository) TransitionBooking(ctx context.Context, id uuid.UUID, from, to domain.BookingStatus, at time.Time) error {
	return r.WithTx(ctx, func(tx pgx.Tx) error {
		result, err := tx.Exec(ctx, `
			UPDATE bookings SET status = $3, updated_at = $4 WHERE id = $1 AND status = $2
		`, id, from, to, at)
		if err != nil {
			return errors.Wrap(err, "update booking status")
		}
		if result.RowsAffected() == 0 {
			return domain.ErrConflict
		}
		return r.insertEvent(ctx, tx, "booking", id, "booking."+string(to), map[string]interface{}{
			"booking_id": id,
			"from":       from,
			"status":     to,
		})
	})
}

func (r *Repository) ListBookings(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE true`
	var args []interface{}
	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		query += ` AND user_id = $` + strconv.Itoa(len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += ` AND status = $` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "list bookings")
	}
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan booking")
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

func (r *Repository) ListMembers(ctx context.Context, bookingIDs []uuid.UUID) (map[uuid.UUID][]domain.Member, error) {
	out := make(map[uuid.UUID][]domain.Member, len(bookingIDs))
	if len(bookingIDs) == 0 {
		return out, nil
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, booking_id, name, age, COALESCE(phone, ''), created_at
		FROM booking_members WHERE booking_id = ANY($1) ORDER BY booking_id, position
	`, bookingIDs)
	if err != nil {
		return nil, errors.Wrap(err, "list members")
	}
	defer rows.Close()

	for rows.Next() {
		var m domain.Member
		if err := rows.Scan(&m.ID, &m.BookingID, &m.Name, &m.Age, &m.Phone, &m.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scan member")
		}
		out[m.BookingID] = append(out[m.BookingID], m)
	}
	return out, rows.Err()
}

const paymentColumns = `id, booking_id, amount, payment_type, utr_id, screenshot_url, status,
	verified_by, verified_at, created_at`

func scanPayment(row pgx.Row) (domain.Payment, error) {
	var p domain.Payment
	err := row.Scan(&p.ID, &p.BookingID, &p.Amount, &p.PaymentType, &p.UTRID, &p.ScreenshotURL,
		&p.Status, &p.VerifiedBy, &p.VerifiedAt, &p.CreatedAt)
	return p, err
}

// CreatePayment inserts a pending payment. The foreign key rejects a
// payment whose booking does not exist.
func (r *Repository) CreatePayment(ctx context.Context, p domain.Payment) error {
	return r.WithTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO payments (id, booking_id, amount, payment_type, utr_id, screenshot_url, status, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, p.ID, p.BookingID, p.Amount, p.PaymentType, p.UTRID, p.ScreenshotURL, p.Status, p.CreatedAt)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == ForeignKeyViolationCode {
				return domain.NotFound("booking", p.BookingID.String())
			}
			return errors.Wrap(err, "insert payment")
		}
		return r.insertEvent(ctx, tx, "payment", p.ID, "payment.submitted", map[string]interface{}{
			"payment_id":   p.ID,
			"booking_id":   p.BookingID,
			"amount":       p.Amount,
			"payment_type": p.PaymentType,
			"utr_id":       p.UTRID,
		})
	})
}

func (r *Repository) GetPayment(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	p, err := scanPayment(r.pool.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NotFound("payment", id.String())
	}
	if err != nil {
		return nil, errors.Wrap(err, "get payment")
	}
	return &p, nil
}

// DecidePayment persists a verification decision on a payment that is
// still pending, or returns domain.ErrConflict.
func (r *Repository) DecidePayment(ctx context.Context, p domain.Payment) error {
	return r.WithTx(ctx, func(tx pgx.Tx) error {
		result, err := tx.Exec(ctx, `
			UPDATE payments SET status = $2, verified_by = $3, verified_at = $4
			WHERE id = $1 AND status = 'pending'
		`, p.ID, p.Status, p.VerifiedBy, p.VerifiedAt)
		if err != nil {
			return errors.Wrap(err, "update payment status")
		}
		if result.RowsAffected() == 0 {
			return domain.ErrConflict
		}
		return r.insertEvent(ctx, tx, "payment", p.ID, "payment."+string(p.Status), map[string]interface{}{
			"payment_id":  p.ID,
			"booking_id":  p.BookingID,
			"amount":      p.Amount,
			"status":      p.Status,
			"verified_by": p.VerifiedBy,
		})
	})
}

func (r *Repository) ListPayments(ctx context.Context, bookingIDs []uuid.UUID) (map[uuid.UUID][]domain.Payment, error) {
	out := make(map[uuid.UUID][]domain.Payment, len(bookingIDs))
	if len(bookingIDs) == 0 {
		return out, nil
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+paymentColumns+` FROM payments WHERE booking_id = ANY($1) ORDER BY created_at ASC
	`, bookingIDs)
	if err != nil {
		return nil, errors.Wrap(err, "list payments")
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan payment")
		}
		out[p.BookingID] = append(out[p.BookingID], p)
	}
	return out, rows.Err()
}

func (r *Repository) CountBookingsByStatus(ctx context.Context) (map[domain.BookingStatus]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT status, count(*) FROM bookings GROUP BY status`)
	if err != nil {
		return nil, errors.Wrap(err, "count bookings")
	}
	defer rows.Close()

	counts := map[domain.BookingStatus]int{}
	for rows.Next() {
		var status domain.BookingStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, errors.Wrap(err, "scan booking count")
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

func (r *Repository) SumVerifiedPayments(ctx context.Context) (float64, error) {
	var total float64
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0)::FLOAT8 FROM payments WHERE status = 'verified'
	`).Scan(&total)
	if err != nil {
		return 0, errors.Wrap(err, "sum verified payments")
	}
	return total, nil
}

func (r *Repository) insertEvent(ctx context.Context, tx pgx.Tx, aggregateType string, aggregateID uuid.UUID, eventType string, data map[string]interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return errors.Wrap(err, "marshal event")
	}
	id := uuid.New()
	return r.InsertOutbox(ctx, tx, OutboxRecord{
		ID:            id,
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		EventType:     eventType,
		Payload:       payload,
		DedupeKey:     eventType + ":" + id.String(),
	})
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
