package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aawaaz/complaint-desk/internal/models"
	"github.com/aawaaz/complaint-desk/internal/services"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

const complaintColumns = `id, owner_id, category, title, description, status, admin_remarks, created_at, updated_at`

// PgStore persists complaints and users in PostgreSQL
type PgStore struct {
	db     *pgxpool.Pool
	cb     *gobreaker.CircuitBreaker
	logger *zap.SugaredLogger
}

var (
	_ services.ComplaintStore = (*PgStore)(nil)
	_ services.UserStore      = (*PgStore)(nil)
)

// NewPgStore creates a store on top of an open pool
func NewPgStore(db *pgxpool.Pool, logger *zap.SugaredLogger) *PgStore {
	return &PgStore{
		db:     db,
		cb:     NewCircuitBreaker("PostgreSQL", 10*time.Second, logger),
		logger: logger,
	}
}

// guarded runs fn through the circuit breaker
func guarded[T any](s *PgStore, fn func() (T, error)) (T, error) {
	out, err := s.cb.Execute(func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return out.(T), nil
}

// Insert stores a new complaint
func (s *PgStore) Insert(ctx context.Context, c *models.Complaint) error {
	query := `
		INSERT INTO complaints (` + complaintColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := guarded(s, func() (struct{}, error) {
		_, err := s.db.Exec(ctx, query,
			c.ID, c.OwnerID,
			string(c.Category), c.Title, c.Description,
			string(c.Status), c.AdminRemarks,
			c.CreatedAt, c.UpdatedAt,
		)
		return struct{}{}, err
	})
	if err != nil {
		return fmt.Errorf("insert complaint: %w", err)
	}
	return nil
}

// FindByID returns the complaint or nil when it does not exist
func (s *PgStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Complaint, error) {
	query := `SELECT ` + complaintColumns + ` FROM complaints WHERE id = $1`

	return guarded(s, func() (*models.Complaint, error) {
		c, err := scanComplaint(s.db.QueryRow(ctx, query, id))
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("select complaint: %w", err)
		}
		return c, nil
	})
}

// FindByOwner lists one student's complaints, newest first
func (s *PgStore) FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Complaint, error) {
	query := `
		SELECT ` + complaintColumns + `
		FROM complaints
		WHERE owner_id = $1
		ORDER BY created_at DESC
	`
	return guarded(s, func() ([]models.Complaint, error) {
		return s.queryComplaints(ctx, query, ownerID)
	})
}

// FindAll lists complaints matching filter, newest first
func (s *PgStore) FindAll(ctx context.Context, filter models.ComplaintFilter) ([]models.Complaint, error) {
	where, args := filterClause(filter)
	query := `SELECT ` + complaintColumns + ` FROM complaints` + where + ` ORDER BY created_at DESC`

	return guarded(s, func() ([]models.Complaint, error) {
		return s.queryComplaints(ctx, query, args...)
	})
}

// Update applies the non-nil patch fields and returns the new row, or nil when
// the complaint no longer exists
func (s *PgStore) Update(ctx context.Context, id uuid.UUID, patch models.ComplaintPatch) (*models.Complaint, error) {
	var (
		sets []string
		args []any
	)
	set := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if patch.Category != nil {
		set("category", string(*patch.Category))
	}
	if patch.Title != nil {
		set("title", *patch.Title)
	}
	if patch.Description != nil {
		set("description", *patch.Description)
	}
	if patch.Status != nil {
		set("status", string(*patch.Status))
	}
	if patch.AdminRemarks != nil {
		set("admin_remarks", *patch.AdminRemarks)
	}
	set("updated_at", time.Now().UTC())

	args = append(args, id)
	where := fmt.Sprintf("id = $%d", len(args))
	if patch.IfStatus != nil {
		args = append(args, string(*patch.IfStatus))
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}
	query := fmt.Sprintf(`UPDATE complaints SET %s WHERE %s RETURNING %s`,
		strings.Join(sets, ", "), where, complaintColumns)

	return guarded(s, func() (*models.Complaint, error) {
		c, err := scanComplaint(s.db.QueryRow(ctx, query, args...))
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("update complaint: %w", err)
		}
		return c, nil
	})
}

// Delete removes a complaint, optionally only while it has status ifStatus.
// It reports whether a row was removed.
func (s *PgStore) Delete(ctx context.Context, id uuid.UUID, ifStatus *models.Status) (bool, error) {
	query := `DELETE FROM complaints WHERE id = $1`
	args := []any{id}
	if ifStatus != nil {
		query += ` AND status = $2`
		args = append(args, string(*ifStatus))
	}

	deleted, err := guarded(s, func() (bool, error) {
		tag, err := s.db.Exec(ctx, query, args...)
		if err != nil {
			return false, err
		}
		return tag.RowsAffected() > 0, nil
	})
	if err != nil {
		return false, fmt.Errorf("delete complaint: %w", err)
	}
	return deleted, nil
}

// Count returns how many complaints match filter
func (s *PgStore) Count(ctx context.Context, filter models.ComplaintFilter) (int64, error) {
	where, args := filterClause(filter)

	return guarded(s, func() (int64, error) {
		var count int64
		err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM complaints`+where, args...).Scan(&count)
		return count, err
	})
}

// CountGroupedBy counts complaints per distinct value of field.
// Values with no complaints do not appear.
func (s *PgStore) CountGroupedBy(ctx context.Context, field models.GroupField) (map[string]int64, error) {
	var col string
	switch field {
	case models.GroupByCategory:
		col = "category"
	case models.GroupByStatus:
		col = "status"
	default:
		return nil, fmt.Errorf("cannot group complaints by %q", field)
	}
	query := fmt.Sprintf(`SELECT %[1]s, COUNT(*) FROM complaints GROUP BY %[1]s`, col)

	return guarded(s, func() (map[string]int64, error) {
		rows, err := s.db.Query(ctx, query)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		counts := make(map[string]int64)
		for rows.Next() {
			var (
				value string
				n     int64
			)
			if err := rows.Scan(&value, &n); err != nil {
				return nil, err
			}
			counts[value] = n
		}
		return counts, rows.Err()
	})
}

// CreateUser stores a new account. A taken e-mail yields services.ErrConflict.
func (s *PgStore) CreateUser(ctx context.Context, u *models.User) error {
	query := `
		INSERT INTO users (id, name, email, password_hash, role, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := guarded(s, func() (struct{}, error) {
		_, err := s.db.Exec(ctx, query, u.ID, u.Name, u.Email, u.PasswordHash, string(u.Role), u.CreatedAt)
		return struct{}{}, err
	})
	if isUniqueViolation(err) {
		return fmt.Errorf("user with email %s: %w", u.Email, services.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// FindUserByEmail returns the account or nil
func (s *PgStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findUser(ctx, `WHERE email = $1`, email)
}

// FindUserByID returns the account or nil
func (s *PgStore) FindUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.findUser(ctx, `WHERE id = $1`, id)
}

func (s *PgStore) findUser(ctx context.Context, where string, arg any) (*models.User, error) {
	query := `SELECT id, name, email, password_hash, role, created_at FROM users ` + where

	return guarded(s, func() (*models.User, error) {
		var (
			u    models.User
			role string
		)
		err := s.db.QueryRow(ctx, query, arg).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &role, &u.CreatedAt)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("select user: %w", err)
		}
		u.Role = models.Role(role)
		return &u, nil
	})
}

func (s *PgStore) queryComplaints(ctx context.Context, query string, args ...any) ([]models.Complaint, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select complaints: %w", err)
	}
	defer rows.Close()

	list := make([]models.Complaint, 0)
	for rows.Next() {
		c, err := scanComplaint(rows)
		if err != nil {
			return nil, fmt.Errorf("scan complaint: %w", err)
		}
		list = append(list, *c)
	}
	return list, rows.Err()
}

func scanComplaint(row pgx.Row) (*models.Complaint, error) {
	var (
		c                models.Complaint
		category, status string
	)
	if err := row.Scan(&c.ID, &c.OwnerID, &category, &c.Title, &c.Description,
		&status, &c.AdminRemarks, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	c.Category = models.Category(category)
	c.Status = models.Status(status)
	return &c, nil
}

// filterClause renders a WHERE clause for the set filter dimensions
func filterClause(filter models.ComplaintFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Category != nil {
		args = append(args, string(*filter.Category))
		conds = append(conds, fmt.Sprintf("category = $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
