package postgres

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/godaily/godaily/internal/domain"
)

// uniqueViolation is the SQLSTATE for a unique constraint failure.
const uniqueViolation = "23505"

// === pgtype Conversion Helpers ===

// uuidToPgtype converts google/uuid.UUID to pgtype.UUID.
func uuidToPgtype(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: id, Valid: true}
}

// parseUUID converts a string ID to pgtype.UUID, wrapping parse failures in
// domain.ErrInvalidID.
func parseUUID(s string) (pgtype.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return pgtype.UUID{}, fmt.Errorf("%w: %w", domain.ErrInvalidID, err)
	}
	return uuidToPgtype(id), nil
}

// pgtypeToUUIDString converts pgtype.UUID to string (empty if invalid).
func pgtypeToUUIDString(id pgtype.UUID) string {
	if !id.Valid {
		return ""
	}
	return uuid.UUID(id.Bytes).String()
}

// timeToPgtype converts time.Time to pgtype.Timestamptz.
func timeToPgtype(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}

// pgtypeToTime converts pgtype.Timestamptz to time.Time in UTC (zero if invalid).
func pgtypeToTime(t pgtype.Timestamptz) time.Time {
	if !t.Valid {
		return time.Time{}
	}
	return t.Time.UTC()
}

// pgtypeToTimePtr converts pgtype.Timestamptz to *time.Time in UTC (nil if invalid).
func pgtypeToTimePtr(t pgtype.Timestamptz) *time.Time {
	if !t.Valid {
		return nil
	}
	utcTime := t.Time.UTC()
	return &utcTime
}

// timePtrToPgtype converts *time.Time to pgtype.Timestamptz; nil stores NULL.
func timePtrToPgtype(t *time.Time) pgtype.Timestamptz {
	if t == nil {
		return pgtype.Timestamptz{Valid: false}
	}
	return pgtype.Timestamptz{Time: *t, Valid: true}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// === Row types ===

type taskRow struct {
	ID          pgtype.UUID        `db:"id"`
	Title       string             `db:"title"`
	IsCompleted bool               `db:"is_completed"`
	Priority    string             `db:"priority"`
	DueDate     pgtype.Timestamptz `db:"due_date"`
	CreatedAt   pgtype.Timestamptz `db:"created_at"`
}

func (r taskRow) toDomain() domain.Task {
	return domain.Task{
		ID:        pgtypeToUUIDString(r.ID),
		Title:     r.Title,
		Completed: r.IsCompleted,
		CreatedAt: pgtypeToTime(r.CreatedAt),
		Priority:  domain.Priority(r.Priority),
		DueDate:   pgtypeToTimePtr(r.DueDate),
	}
}

type userRow struct {
	ID           pgtype.UUID        `db:"id"`
	Email        string             `db:"email"`
	PasswordHash string             `db:"password_hash"`
	CreatedAt    pgtype.Timestamptz `db:"created_at"`
}

func (r userRow) toDomain() *domain.User {
	return &domain.User{
		ID:           pgtypeToUUIDString(r.ID),
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		CreatedAt:    pgtypeToTime(r.CreatedAt),
	}
}

type apiKeyRow struct {
	ID             pgtype.UUID        `db:"id"`
	UserID         pgtype.UUID        `db:"user_id"`
	KeyType        string             `db:"key_type"`
	Service        string             `db:"service"`
	Version        string             `db:"version"`
	ShortToken     string             `db:"short_token"`
	LongSecretHash string             `db:"long_secret_hash"`
	Name           string             `db:"name"`
	IsActive       bool               `db:"is_active"`
	CreatedAt      pgtype.Timestamptz `db:"created_at"`
	LastUsedAt     pgtype.Timestamptz `db:"last_used_at"`
	ExpiresAt      pgtype.Timestamptz `db:"expires_at"`
}

func (r apiKeyRow) toDomain() *domain.APIKey {
	return &domain.APIKey{
		ID:             pgtypeToUUIDString(r.ID),
		UserID:         pgtypeToUUIDString(r.UserID),
		KeyType:        r.KeyType,
		Service:        r.Service,
		Version:        r.Version,
		ShortToken:     r.ShortToken,
		LongSecretHash: r.LongSecretHash,
		Name:           r.Name,
		IsActive:       r.IsActive,
		CreatedAt:      pgtypeToTime(r.CreatedAt),
		LastUsedAt:     pgtypeToTimePtr(r.LastUsedAt),
		ExpiresAt:      pgtypeToTimePtr(r.ExpiresAt),
	}
}
