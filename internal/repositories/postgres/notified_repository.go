package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"internwatch/internal/model"
)

type NotifiedRepository struct {
	pool *pgxpool.Pool
}

func NewNotifiedRepository(pool *pgxpool.Pool) *NotifiedRepository {
	return &NotifiedRepository{pool: pool}
}

func (r *NotifiedRepository) Load(ctx context.Context) ([]model.NotifiedRole, error) {
	rows, err := r.pool.Query(ctx,
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
	tag, err := r.pool.Exec(ctx,
		`INSERT INTO notified_roles (identity_key, company, title, url, active)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (identity_key) DO NOTHING`,
		role.Key, role.Company, role.Title, role.URL, role.Active,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *NotifiedRepository) SetActive(ctx context.Context, key string, active bool) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE notified_roles SET active = $2 WHERE identity_key = $1`,
		key, active,
	)
	return err
}
