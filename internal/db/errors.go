package db

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Domain-level database error sentinels.
var (
	ErrBrandNotFound    = errors.New("brand not found")
	ErrRankingNotFound  = errors.New("ranking not found")
	ErrCitationNotFound = errors.New("citation not found")
	ErrReviewNotFound   = errors.New("review not found")
	ErrUserNotFound     = errors.New("user not found")

	// ErrDuplicateRecord is returned when a record already exists for its
	// (brand, key, date) combination.
	ErrDuplicateRecord = errors.New("record already exists for this brand and date")

	// ErrInvalidBrandReference is returned when a record points at a brand that does not exist.
	ErrInvalidBrandReference = errors.New("referenced brand does not exist")
)

// Postgres error codes.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

// translateWriteError maps constraint violations onto sentinels.
func translateWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			return ErrDuplicateRecord
		case codeForeignKeyViolation:
			return ErrInvalidBrandReference
		}
	}
	return err
}
