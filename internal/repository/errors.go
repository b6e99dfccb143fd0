package repository

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Errors shared by every repository.
var (
	ErrNotFound   = errors.New("record not found")
	ErrDuplicate  = errors.New("record already exists")
	ErrReferenced = errors.New("record is referenced by other records")
	ErrInvalidRef = errors.New("referenced record does not exist")
)

// mapErr translates driver errors into the repository sentinels.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return ErrDuplicate
		case "23503":
			// Deleting a parent row and inserting a dangling child both raise 23503.
			if strings.HasPrefix(pgErr.Message, "update or delete") {
				return ErrReferenced
			}
			return ErrInvalidRef
		}
	}
	return err
}

// execAffected fails with ErrNotFound when the statement touched no rows.
func execAffected(tag pgconn.CommandTag, err error) error {
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
