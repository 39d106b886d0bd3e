package postgres

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Nok1969/regent-work-order-system/internal/models"
	"github.com/Nok1969/regent-work-order-system/internal/repository"
)

type UserRepo struct{ db *pgxpool.Pool }

func NewUserRepo(db *pgxpool.Pool) repository.UserRepository { return &UserRepo{db: db} }

const userCols = `id, username, name, role, avatar, active, created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.Name, &u.Role, &u.Avatar, &u.Active, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create stores a profile (stores bcrypt hash in password_h).
func (r *UserRepo) Create(ctx context.Context, username, name, role, passwordHash string) (*models.User, error) {
	return scanUser(r.db.QueryRow(ctx, `
		INSERT INTO profiles (username, name, role, password_h)
		VALUES ($1,$2,$3,$4)
		RETURNING `+userCols,
		username, name, role, passwordHash))
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*models.User, string, error) {
	var u models.User
	var ph string
	err := r.db.QueryRow(ctx, `
		SELECT id, username, name, role, avatar, active, password_h, created_at, updated_at
		FROM profiles WHERE username=$1`, username).
		Scan(&u.ID, &u.Username, &u.Name, &u.Role, &u.Avatar, &u.Active, &ph, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, "", nil
		}
		return nil, "", err
	}
	return &u, ph, nil
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, `
		SELECT `+userCols+` FROM profiles WHERE id=$1`, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return u, nil
}

// GetByIDs resolves a batch of profile ids in one query. Missing ids are
// simply absent from the returned map.
func (r *UserRepo) GetByIDs(ctx context.Context, ids []string) (map[string]models.User, error) {
	out := make(map[string]models.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.db.Query(ctx, `
		SELECT `+userCols+` FROM profiles WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out[u.ID] = *u
	}
	return out, rows.Err()
}

// List returns a filtered, paginated page of profiles and the total count.
// Filters: q (matches username or name, ILIKE), role (exact), active.
func (r *UserRepo) List(ctx context.Context, q, role string, active *bool, limit, offset int) ([]models.User, int, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	clauses := []string{"1=1"}
	args := []any{}

	if s := strings.TrimSpace(q); s != "" {
		p := "%" + s + "%"
		args = append(args, p, p)
		clauses = append(clauses, "(username ILIKE $"+strconv.Itoa(len(args)-1)+" OR name ILIKE $"+strconv.Itoa(len(args))+")")
	}
	if s := strings.TrimSpace(role); s != "" {
		args = append(args, s)
		clauses = append(clauses, "role = $"+strconv.Itoa(len(args)))
	}
	if active != nil {
		args = append(args, *active)
		clauses = append(clauses, "active = $"+strconv.Itoa(len(args)))
	}

	countSQL := `SELECT COUNT(*) FROM profiles WHERE ` + strings.Join(clauses, " AND ")
	var total int
	if err := r.db.QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	listSQL := fmt.Sprintf(`
		SELECT %s
		FROM profiles
		WHERE %s
		ORDER BY updated_at DESC
		LIMIT $%d OFFSET $%d
	`, userCols, strings.Join(clauses, " AND "), len(args)-1, len(args))
	rows, err := r.db.Query(ctx, listSQL, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *u)
	}
	return out, total, rows.Err()
}

func (r *UserRepo) UpdateRole(ctx context.Context, id, role string) (*models.User, error) {
	return scanUser(r.db.QueryRow(ctx, `
		UPDATE profiles
		SET role=$1, updated_at=now()
		WHERE id=$2
		RETURNING `+userCols, role, id))
}

func (r *UserRepo) SetActive(ctx context.Context, id string, active bool) (*models.User, error) {
	return scanUser(r.db.QueryRow(ctx, `
		UPDATE profiles
		SET active=$1, updated_at=now()
		WHERE id=$2
		RETURNING `+userCols, active, id))
}

func (r *UserRepo) UpdateBasic(ctx context.Context, id, name string) (*models.User, error) {
	return scanUser(r.db.QueryRow(ctx, `
		UPDATE profiles
		SET name=$1, updated_at=now()
		WHERE id=$2
		RETURNING `+userCols, name, id))
}

func (r *UserRepo) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE profiles SET password_h=$1, updated_at=now() WHERE id=$2`, hash, id)
	return err
}
