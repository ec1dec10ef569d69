package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fixora/resourcesvc/application/port/outbound"
	"github.com/fixora/resourcesvc/domain/entity"
)

// auditColumns are shared by every table managed through Repository, in scan order.
var auditColumns = []string{"created_by", "updated_by", "deleted_by", "created_at", "updated_at", "deleted_at"}

// Schema maps a record type onto its table. Columns lists the record-specific
// columns only; id and the audit columns are handled by Repository.
type Schema[T entity.Record] struct {
	Table        string
	Columns      []string
	SearchColumn string
	New          func() T
	// Fields returns scan destinations for Columns, in order.
	Fields func(rec T) []interface{}
	// Values returns the values written for Columns, in order.
	Values func(rec T) []interface{}
}

// Repository is the generic Postgres outbound.Repository.
type Repository[T entity.Record] struct {
	db     *sql.DB
	schema Schema[T]
	cols   string
}

func NewRepository[T entity.Record](db *sql.DB, schema Schema[T]) *Repository[T] {
	all := append([]string{"id"}, schema.Columns...)
	all = append(all, auditColumns...)
	return &Repository[T]{
		db:     db,
		schema: schema,
		cols:   strings.Join(all, ", "),
	}
}

func (r *Repository[T]) Create(ctx context.Context, rec T) error {
	a := rec.AuditInfo()
	cols := append([]string{"id"}, r.schema.Columns...)
	cols = append(cols, "created_by", "created_at", "updated_at")

	args := append([]interface{}{rec.GetID()}, r.schema.Values(rec)...)
	args = append(args, a.CreatedBy, a.CreatedAt, a.UpdatedAt)

	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		r.schema.Table, strings.Join(cols, ", "), placeholders(1, len(cols)),
	)

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return describe("create "+r.schema.Table, err)
	}
	return nil
}

func (r *Repository[T]) FindByID(ctx context.Context, id string) (T, error) {
	var zero T
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = $1
	`, r.cols, r.schema.Table)

	rec, err := r.scan(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		// a malformed id cannot match any row
		if errors.Is(err, sql.ErrNoRows) || pqCode(err) == codeInvalidTextRepresent {
			return zero, outbound.ErrNotFound
		}
		return zero, describe("find "+r.schema.Table+" by ID", err)
	}
	return rec, nil
}

func (r *Repository[T]) Update(ctx context.Context, rec T) error {
	a := rec.AuditInfo()

	sets := make([]string, 0, len(r.schema.Columns)+2)
	for i, col := range r.schema.Columns {
		sets = append(sets, fmt.Sprintf("%s = $%d", col, i+2))
	}
	n := len(r.schema.Columns) + 2
	sets = append(sets, fmt.Sprintf("updated_by = $%d", n), fmt.Sprintf("updated_at = $%d", n+1))

	query := fmt.Sprintf(`
		UPDATE %s
		SET %s
		WHERE id = $1 AND deleted_at IS NULL
	`, r.schema.Table, strings.Join(sets, ", "))

	var updatedBy interface{}
	if a.UpdatedBy != nil {
		updatedBy = *a.UpdatedBy
	}
	args := append([]interface{}{rec.GetID()}, r.schema.Values(rec)...)
	args = append(args, updatedBy, a.UpdatedAt)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return describe("update "+r.schema.Table, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return outbound.ErrNotFound
	}
	return nil
}

// SoftDelete locks the live row and stamps deleted_by and deleted_at in one
// transaction, so a failure never leaves a half-deleted record behind.
func (r *Repository[T]) SoftDelete(ctx context.Context, id, actorID string, at time.Time) error {
	lockQuery := fmt.Sprintf(`
		SELECT id
		FROM %s
		WHERE id = $1 AND deleted_at IS NULL
		FOR UPDATE
	`, r.schema.Table)

	deleteQuery := fmt.Sprintf(`
		UPDATE %s
		SET deleted_by = $2, deleted_at = $3, updated_at = $3
		WHERE id = $1 AND deleted_at IS NULL
	`, r.schema.Table)

	return WithTx(ctx, r.db, func(tx *sql.Tx) error {
		var locked string
		if err := tx.QueryRowContext(ctx, lockQuery, id).Scan(&locked); err != nil {
			if errors.Is(err, sql.ErrNoRows) || pqCode(err) == codeInvalidTextRepresent {
				return outbound.ErrNotFound
			}
			return describe("lock "+r.schema.Table, err)
		}

		result, err := tx.ExecContext(ctx, deleteQuery, id, actorID, at)
		if err != nil {
			return describe("soft delete "+r.schema.Table, err)
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return outbound.ErrNotFound
		}
		return nil
	})
}

func (r *Repository[T]) FindAll(ctx context.Context, offset, limit int, filters outbound.ListFilters) ([]T, int, error) {
	whereClause := "WHERE created_by = $1 AND deleted_at IS NULL"
	args := []interface{}{filters.OwnerID}
	argIndex := 2

	if filters.Name != "" && r.schema.SearchColumn != "" {
		whereClause += fmt.Sprintf(" AND %s ILIKE $%d", r.schema.SearchColumn, argIndex)
		args = append(args, "%"+escapeLike(filters.Name)+"%")
		argIndex++
	}

	// Count query
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s %s", r.schema.Table, whereClause)
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, describe("count "+r.schema.Table, err)
	}

	// Data query with pagination
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		%s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d
	`, r.cols, r.schema.Table, whereClause, argIndex, argIndex+1)

	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, describe("query "+r.schema.Table, err)
	}
	defer rows.Close()

	records := make([]T, 0, limit)
	for rows.Next() {
		rec, err := r.scan(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan %s: %w", r.schema.Table, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate %s: %w", r.schema.Table, err)
	}

	return records, total, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *Repository[T]) scan(row rowScanner) (T, error) {
	var zero T
	rec := r.schema.New()
	a := rec.AuditInfo()

	var (
		id        string
		updatedBy sql.NullString
		deletedBy sql.NullString
		deletedAt sql.NullTime
	)

	dest := append([]interface{}{&id}, r.schema.Fields(rec)...)
	dest = append(dest, &a.CreatedBy, &updatedBy, &deletedBy, &a.CreatedAt, &a.UpdatedAt, &deletedAt)
	if err := row.Scan(dest...); err != nil {
		return zero, err
	}

	rec.SetID(id)
	if updatedBy.Valid {
		a.UpdatedBy = &updatedBy.String
	}
	if deletedBy.Valid {
		a.DeletedBy = &deletedBy.String
	}
	if deletedAt.Valid {
		a.DeletedAt = &deletedAt.Time
	}
	return rec, nil
}

func placeholders(from, n int) string {
	ps := make([]string, n)
	for i := range ps {
		ps[i] = fmt.Sprintf("$%d", from+i)
	}
	return strings.Join(ps, ", ")
}

// escapeLike makes LIKE wildcards in s match literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
