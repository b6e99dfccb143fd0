package repository

import (
	"context"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// querier is satisfied by *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// filter accumulates WHERE conditions with positional arguments.
// Every "?" in a condition is replaced by the placeholder of its argument.
type filter struct {
	conds []string
	args  []interface{}
}

func (f *filter) add(cond string, arg interface{}) {
	f.args = append(f.args, arg)
	f.conds = append(f.conds, strings.ReplaceAll(cond, "?", "$"+strconv.Itoa(len(f.args))))
}

// addRaw appends a condition that takes no argument.
func (f *filter) addRaw(cond string) {
	f.conds = append(f.conds, cond)
}

func (f *filter) where() string {
	if len(f.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(f.conds, " AND ")
}

// page appends LIMIT/OFFSET placeholders and returns the clause with all arguments.
// A non-positive limit returns every row.
func (f *filter) page(limit, offset int) (string, []interface{}) {
	if limit <= 0 {
		return "", f.args
	}
	n := len(f.args)
	args := append(append([]interface{}{}, f.args...), limit, offset)
	return ` LIMIT $` + strconv.Itoa(n+1) + ` OFFSET $` + strconv.Itoa(n+2), args
}

// replaceLinks rewrites a many-to-many link table for owner.
func replaceLinks(ctx context.Context, q querier, table, ownerCol, otherCol string, owner int, ids []int) error {
	if _, err := q.Exec(ctx, `DELETE FROM `+table+` WHERE `+ownerCol+` = $1`, owner); err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	_, err := q.Exec(ctx,
		`INSERT INTO `+table+` (`+ownerCol+`, `+otherCol+`)
		 SELECT $1, unnest($2::int[]) ON CONFLICT DO NOTHING`,
		owner, ids,
	)
	return err
}

func collectInts(rows pgx.Rows, err error) ([]int, error) {
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[int])
}
