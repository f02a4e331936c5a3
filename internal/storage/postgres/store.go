package postgres

import (
	"context"
	"fmt"

	"github.com/simoamogit/progetto-scuola/internal/domain"
)

// Store implements storage.EventStore on top of a pgx pool. Dates and
// times travel as their wire-layout strings and are cast to the native
// column types in SQL, so ordering and equality live in postgres.
type Store struct {
	db *DB
}

func NewStore(db *DB) *Store { return &Store{db: db} }

const eventColumns = `id,
	subject,
	to_char(event_date, 'YYYY-MM-DD'),
	to_char(event_time, 'HH24:MI'),
	description,
	notified`

func (s *Store) Insert(ctx context.Context, subject, date, tod, description string) (domain.Event, error) {
	var id int64
	err := s.db.Pool.QueryRow(ctx,
		`INSERT INTO events (subject, event_date, event_time, description)
		 VALUES ($1, $2::date, $3::time, $4)
		 RETURNING id`,
		subject, date, tod, description,
	).Scan(&id)
	if err != nil {
		return domain.Event{}, fmt.Errorf("insert event: %w", err)
	}
	return domain.Event{
		ID:          id,
		Subject:     subject,
		Date:        date,
		Time:        tod,
		Description: description,
	}, nil
}

func (s *Store) ListOrdered(ctx context.Context) ([]domain.Event, error) {
	rows, err := s.db.Pool.Query(ctx,
		`SELECT `+eventColumns+`
		 FROM events
		 ORDER BY event_date, event_time, id`)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func (s *Store) ByDate(ctx context.Context, date string) ([]domain.Event, error) {
	rows, err := s.db.Pool.Query(ctx,
		`SELECT `+eventColumns+`
		 FROM events
		 WHERE event_date = $1::date
		 ORDER BY id`,
		date)
	if err != nil {
		return nil, fmt.Errorf("query events by date: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

// MarkNotified flips notified in a single guarded UPDATE; the WHERE
// clause makes the check-then-set atomic so only one caller wins.
func (s *Store) MarkNotified(ctx context.Context, id int64) (bool, error) {
	ct, err := s.db.Pool.Exec(ctx,
		`UPDATE events SET notified = TRUE WHERE id = $1 AND NOT notified`,
		id)
	if err != nil {
		return false, fmt.Errorf("mark notified: %w", err)
	}
	return ct.RowsAffected() == 1, nil
}

type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanEvents(rows rowScanner) ([]domain.Event, error) {
	var out []domain.Event
	for rows.Next() {
		var ev domain.Event
		if err := rows.Scan(&ev.ID, &ev.Subject, &ev.Date, &ev.Time, &ev.Description, &ev.Notified); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return out, nil
}
