// Package snapshot persists full ledger exports to PostgreSQL. The core
// stays purely in memory; this repository only sees the flat snapshot
// records at the bulk import/export boundary.
package snapshot

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/restobook/resto-booking-backend/internal/booking"
	"github.com/restobook/resto-booking-backend/internal/ledger"
	"github.com/restobook/resto-booking-backend/internal/person"
)

type Repository interface {
	EnsureSchema(ctx context.Context) error
	Save(ctx context.Context, snap *ledger.Snapshot) error
	Load(ctx context.Context) (*ledger.Snapshot, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

const schema = `
CREATE TABLE IF NOT EXISTS public.persons (
	name        text PRIMARY KEY,
	phone       text NOT NULL UNIQUE,
	email       text NOT NULL,
	address     text NOT NULL,
	tags        text[] NOT NULL DEFAULT '{}',
	is_member   boolean NOT NULL DEFAULT false,
	date_joined timestamptz
);

CREATE TABLE IF NOT EXISTS public.bookings (
	id           integer PRIMARY KEY,
	person_phone text NOT NULL REFERENCES public.persons (phone) ON DELETE CASCADE,
	booked_at    timestamptz NOT NULL,
	created_at   timestamptz NOT NULL,
	pax          integer NOT NULL CHECK (pax > 0),
	remarks      text NOT NULL DEFAULT '',
	tags         text[] NOT NULL DEFAULT '{}',
	status       text NOT NULL
);
`

func (r *pgxRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure snapshot schema failed: %w", err)
	}
	return nil
}

// Save replaces the persisted snapshot with the given one in a single
// transaction.
func (r *pgxRepository) Save(ctx context.Context, snap *ledger.Snapshot) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin snapshot save failed: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "DELETE FROM public.bookings"); err != nil {
		return fmt.Errorf("clear bookings failed: %w", err)
	}
	if _, err := tx.Exec(ctx, "DELETE FROM public.persons"); err != nil {
		return fmt.Errorf("clear persons failed: %w", err)
	}

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	if len(snap.Persons) > 0 {
		ins := psql.Insert("public.persons").
			Columns("name", "phone", "email", "address", "tags", "is_member", "date_joined")
		for _, p := range snap.Persons {
			ins = ins.Values(p.Name, string(p.Phone), p.Email, p.Address, p.Tags, p.IsMember, p.DateJoined)
		}
		query, args, err := ins.ToSql()
		if err != nil {
			return fmt.Errorf("build insert persons query failed: %w", err)
		}
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return asDomainErr(err, person.ErrDuplicate)
		}
	}

	if len(snap.Bookings) > 0 {
		ins := psql.Insert("public.bookings").
			Columns("id", "person_phone", "booked_at", "created_at", "pax", "remarks", "tags", "status")
		for _, b := range snap.Bookings {
			ins = ins.Values(b.ID, string(b.PersonPhone), b.At, b.CreatedAt, b.Pax, b.Remarks, b.Tags, string(b.Status))
		}
		query, args, err := ins.ToSql()
		if err != nil {
			return fmt.Errorf("build insert bookings query failed: %w", err)
		}
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return asDomainErr(err, booking.ErrDuplicate)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit snapshot save failed: %w", err)
	}
	return nil
}

// Load reads the persisted snapshot. Person booking-ID sets are derived
// from the bookings table so the two can never disagree on disk.
func (r *pgxRepository) Load(ctx context.Context) (*ledger.Snapshot, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	snap := &ledger.Snapshot{}

	query, args, err := psql.Select("name", "phone", "email", "address", "tags", "is_member", "date_joined").
		From("public.persons").
		OrderBy("name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select persons query failed: %w", err)
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("load persons failed: %w", err)
	}
	defer rows.Close()

	personIndex := make(map[person.Phone]int)
	for rows.Next() {
		var rec ledger.PersonRecord
		var phone string
		if err := rows.Scan(&rec.Name, &phone, &rec.Email, &rec.Address, &rec.Tags, &rec.IsMember, &rec.DateJoined); err != nil {
			return nil, fmt.Errorf("scan person failed: %w", err)
		}
		rec.Phone = person.Phone(phone)
		personIndex[rec.Phone] = len(snap.Persons)
		snap.Persons = append(snap.Persons, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load persons failed: %w", err)
	}

	query, args, err = psql.Select("id", "person_phone", "booked_at", "created_at", "pax", "remarks", "tags", "status").
		From("public.bookings").
		OrderBy("booked_at", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select bookings query failed: %w", err)
	}
	bookingRows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("load bookings failed: %w", err)
	}
	defer bookingRows.Close()

	for bookingRows.Next() {
		var rec ledger.BookingRecord
		var phone, status string
		if err := bookingRows.Scan(&rec.ID, &phone, &rec.At, &rec.CreatedAt, &rec.Pax, &rec.Remarks, &rec.Tags, &status); err != nil {
			return nil, fmt.Errorf("scan booking failed: %w", err)
		}
		rec.PersonPhone = person.Phone(phone)
		rec.Status = booking.Status(status)
		snap.Bookings = append(snap.Bookings, rec)

		if i, ok := personIndex[rec.PersonPhone]; ok {
			snap.Persons[i].BookingIDs = append(snap.Persons[i].BookingIDs, rec.ID)
		}
	}
	if err := bookingRows.Err(); err != nil {
		return nil, fmt.Errorf("load bookings failed: %w", err)
	}

	return snap, nil
}

// asDomainErr maps a unique-constraint violation onto the matching
// domain error; everything else is reported as a storage failure.
func asDomainErr(err error, onUnique error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return onUnique
	}
	return fmt.Errorf("write snapshot failed: %w", err)
}
