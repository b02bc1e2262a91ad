package sqlite

import (
	"context"
	"database/sql"

	"internwatch/internal/model"
)

type NotifiedRepository struct {
	db *sql.DB
}

func NewNotifiedRepository(db *sql.DB) *NotifiedRepository {
	return &NotifiedRepository{db: db}
}

func (r *NotifiedRepository) Load(ctx context.Context) ([]model.NotifiedRole, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT identity_key, company, title, url, active
		 FROM notified_roles
		 ORDER BY notified_at`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []model.NotifiedRole
	for rows.Next() {
		var role model.NotifiedRole
		if err := rows.Scan(&role.Key, &role.Company, &role.Title, &role.URL, &role.Active); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

func (r *NotifiedRepository) Add(ctx context.Context, role model.NotifiedRole) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO notified_roles (identity_key, company, title, url, active)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (identity_key) DO NOTHING`,
		role.Key, role.Company, role.Title, role.URL, role.Active,
	)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *NotifiedRepository) SetActive(ctx context.Context, key string, active bool) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE notified_roles SET active = ? WHERE identity_key = ?`,
		active, key,
	)
	return err
}
