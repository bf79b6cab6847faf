// Package repo contains all database access logic for the Moonwave API.
// Each resource has its own file with an interface and a Postgres implementation.
// No business logic lives here, only SQL and type mapping.
package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/moonwavetravel/backend/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Integration tests pass a transaction that is rolled back after each test.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// scanner is satisfied by both pgx.Row and pgx.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// notFound maps pgx.ErrNoRows to domain.ErrNotFound and leaves other errors alone.
func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	return err
}

// uniqueViolation reports whether err is a Postgres unique_violation.
func uniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func toUUID(p pgtype.UUID) uuid.UUID {
	return uuid.UUID(p.Bytes)
}

func toUUIDPtr(p pgtype.UUID) *uuid.UUID {
	if !p.Valid {
		return nil
	}
	id := uuid.UUID(p.Bytes)
	return &id
}

func toUUIDs(ps []pgtype.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(ps))
	for _, p := range ps {
		out = append(out, uuid.UUID(p.Bytes))
	}
	return out
}

// clockArg converts an optional time of day into a TIME argument (NULL when nil).
func clockArg(c *domain.ClockTime) pgtype.Time {
	if c == nil {
		return pgtype.Time{}
	}
	return pgtype.Time{Microseconds: int64(*c) * int64(time.Minute/time.Microsecond), Valid: true}
}

func fromClock(t pgtype.Time) *domain.ClockTime {
	if !t.Valid {
		return nil
	}
	c := domain.ClockTime(t.Microseconds / int64(time.Minute/time.Microsecond))
	return &c
}

// jsonDate decodes the "YYYY-MM-DD" form Postgres uses for DATE in JSON.
type jsonDate struct {
	time.Time
}

func (d *jsonDate) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "null" || s == "" {
		d.Time = time.Time{}
		return nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return fmt.Errorf("repo: decode date %q: %w", s, err)
	}
	d.Time = t
	return nil
}

// Row shapes for the nested JSONB reads. They embed the domain types and
// override the DATE columns, which encoding/json cannot parse into time.Time.

type tripRow struct {
	domain.Trip
	StartDate      jsonDate              `json:"start_date"`
	EndDate        jsonDate              `json:"end_date"`
	CoverImagePath string                `json:"cover_image_path"`
	Days           []dayRow              `json:"days"`
	Collaborators  []domain.Collaborator `json:"collaborators"`
}

func (r tripRow) trip() domain.Trip {
	t := r.Trip
	t.StartDate = r.StartDate.Time
	t.EndDate = r.EndDate.Time
	t.CoverImagePath = r.CoverImagePath
	return t
}

func (r tripRow) tree() domain.TripWithDays {
	out := domain.TripWithDays{
		Trip:          r.trip(),
		Days:          make([]domain.DayWithPlans, 0, len(r.Days)),
		Collaborators: r.Collaborators,
	}
	for _, d := range r.Days {
		out.Days = append(out.Days, d.withPlans())
	}
	return out.Normalize()
}

type dayRow struct {
	domain.Day
	Date  jsonDate      `json:"date"`
	Plans []domain.Plan `json:"plans"`
}

func (r dayRow) withPlans() domain.DayWithPlans {
	d := r.Day
	d.Date = r.Date.Time
	return domain.DayWithPlans{Day: d, Plans: r.Plans}
}

type dayDetailRow struct {
	dayRow
	Trip tripRow `json:"trip"`
}

// decodeJSON scans a single jsonb column and decodes it into dst.
func decodeJSON(s scanner, dst any) error {
	var raw []byte
	if err := s.Scan(&raw); err != nil {
		return notFound(err)
	}
	return json.Unmarshal(raw, dst)
}
