package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Nok1969/regent-work-order-system/internal/models"
	"github.com/Nok1969/regent-work-order-system/internal/repository"
)

type RepairRepo struct{ db *pgxpool.Pool }

func NewRepairRepo(db *pgxpool.Pool) *RepairRepo { return &RepairRepo{db: db} }

const repairCols = `
	r.id, r.title, r.description, r.room_number, r.status, r.priority,
	r.work_type, r.requested_by, r.assigned_to, r.notes,
	r.created_at, r.updated_at, r.completed_at`

func scanRepair(row pgx.Row) (*repository.RepairRow, error) {
	var r repository.RepairRow
	err := row.Scan(
		&r.ID, &r.Title, &r.Description, &r.RoomNumber, &r.Status, &r.Priority,
		&r.WorkType, &r.RequestedBy, &r.AssignedTo, &r.Notes,
		&r.CreatedAt, &r.UpdatedAt, &r.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// List returns all repairs newest first, with attachments joined in a
// second query to keep the row scan flat.
func (p *RepairRepo) List(ctx context.Context) ([]repository.RepairRow, error) {
	rows, err := p.db.Query(ctx, `
		SELECT `+repairCols+`
		FROM repairs r
		ORDER BY r.created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []repository.RepairRow
	byID := make(map[string]int)
	for rows.Next() {
		r, err := scanRepair(rows)
		if err != nil {
			return nil, err
		}
		byID[r.ID] = len(out)
		out = append(out, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	arows, err := p.db.Query(ctx, `
		SELECT id, repair_id, url, filename, content_type, created_at
		FROM attachments
		ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, err
	}
	defer arows.Close()
	for arows.Next() {
		var a models.Attachment
		if err := arows.Scan(&a.ID, &a.RepairID, &a.URL, &a.Filename, &a.ContentType, &a.CreatedAt); err != nil {
			return nil, err
		}
		if i, ok := byID[a.RepairID]; ok {
			out[i].Attachments = append(out[i].Attachments, a)
		}
	}
	return out, arows.Err()
}

func (p *RepairRepo) Get(ctx context.Context, id string) (*repository.RepairRow, error) {
	r, err := scanRepair(p.db.QueryRow(ctx, `
		SELECT `+repairCols+`
		FROM repairs r
		WHERE r.id = $1
	`, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	arows, err := p.db.Query(ctx, `
		SELECT id, repair_id, url, filename, content_type, created_at
		FROM attachments
		WHERE repair_id = $1
		ORDER BY created_at ASC
	`, id)
	if err != nil {
		return nil, err
	}
	defer arows.Close()
	for arows.Next() {
		var a models.Attachment
		if err := arows.Scan(&a.ID, &a.RepairID, &a.URL, &a.Filename, &a.ContentType, &a.CreatedAt); err != nil {
			return nil, err
		}
		r.Attachments = append(r.Attachments, a)
	}
	return r, arows.Err()
}

func (p *RepairRepo) Create(ctx context.Context, r *repository.RepairRow) error {
	now := time.Now()
	return p.db.QueryRow(ctx, `
		INSERT INTO repairs (title, description, room_number, status, priority, work_type, requested_by, notes, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING id, created_at, updated_at
	`,
		r.Title, r.Description, r.RoomNumber, r.Status, r.Priority, r.WorkType, r.RequestedBy, r.Notes, now, now,
	).Scan(&r.ID, &r.CreatedAt, &r.UpdatedAt)
}

func (p *RepairRepo) UpdateStatus(ctx context.Context, id, status, notes string, completedAt *time.Time) (*repository.RepairRow, error) {
	r, err := scanRepair(p.db.QueryRow(ctx, `
		UPDATE repairs r SET
			status=$1, notes=$2, updated_at=$3, completed_at=$4
		WHERE r.id=$5
		RETURNING `+repairCols+`
	`, status, notes, time.Now(), completedAt, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return r, nil
}

func (p *RepairRepo) Assign(ctx context.Context, id, technicianID string) (*repository.RepairRow, error) {
	r, err := scanRepair(p.db.QueryRow(ctx, `
		UPDATE repairs r SET
			assigned_to=$1, status='inProgress', updated_at=$2
		WHERE r.id=$3
		RETURNING `+repairCols+`
	`, technicianID, time.Now(), id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return r, nil
}

func (p *RepairRepo) AddAttachment(ctx context.Context, a *models.Attachment) error {
	return p.db.QueryRow(ctx, `
		INSERT INTO attachments (id, repair_id, url, filename, content_type)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING created_at
	`, a.ID, a.RepairID, a.URL, a.Filename, a.ContentType).Scan(&a.CreatedAt)
}

func (p *RepairRepo) CountByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := p.db.Query(ctx, `SELECT status, COUNT(*) FROM repairs GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out[status] = n
	}
	return out, rows.Err()
}

func (p *RepairRepo) CountByWorkType(ctx context.Context) ([]repository.WorkTypeCount, error) {
	rows, err := p.db.Query(ctx, `
		SELECT COALESCE(NULLIF(work_type, ''), 'other'), COUNT(*)
		FROM repairs
		GROUP BY 1
		ORDER BY 2 DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []repository.WorkTypeCount
	for rows.Next() {
		var c repository.WorkTypeCount
		if err := rows.Scan(&c.WorkType, &c.Count); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
