package errors

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgNotNullViolation    = "23502"
)

// FriendlyMessage translates recognized database constraint failures into text
// suitable for end users. Unrecognized errors fall back to their own message.
func FriendlyMessage(err error) string {
	if err == nil {
		return ""
	}

	code, constraint, message := pgErrorParts(err)
	switch code {
	case pgUniqueViolation:
		if strings.Contains(constraint, "email") || strings.Contains(message, "email") {
			return "This email is already registered. Please use a different email."
		}
		return "Duplicate value. Please use a different input."
	case pgForeignKeyViolation:
		return "Invalid reference. Please check related data."
	case pgNotNullViolation:
		return "Missing required field."
	}

	if typed := As(err); typed != nil && typed.Message() != "" {
		return typed.Message()
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return "An unexpected error occurred."
}

func pgErrorParts(err error) (code, constraint, message string) {
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return pgxErr.Code, pgxErr.ConstraintName, pgxErr.Message
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code), pqErr.Constraint, pqErr.Message
	}
	return "", "", ""
}
