package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/mikeydub/go-storefront/service/persist"
)

const createReservationsTable = `CREATE TABLE IF NOT EXISTS reservations (
	catalog_id integer PRIMARY KEY,
	holder varchar(42) NOT NULL,
	expires_at timestamptz NOT NULL,
	created_at timestamptz NOT NULL DEFAULT now()
)`

// ReservationRepository stores outstanding mint authorizations
type ReservationRepository struct {
	pool *pgxpool.Pool
}

// NewReservationRepository creates the reservations table if needed and returns a repository over it
func NewReservationRepository(ctx context.Context, pool *pgxpool.Pool) (*ReservationRepository, error) {
	if _, err := pool.Exec(ctx, createReservationsTable); err != nil {
		return nil, err
	}
	return &ReservationRepository{pool: pool}, nil
}

// Reserve claims the id for holder until the given time. An existing row only yields if it has
// expired or already belongs to holder.
func (r *ReservationRepository) Reserve(ctx context.Context, id int, holder persist.EthereumAddress, until time.Time) (bool, error) {
	tag, err := r.pool.Exec(ctx, `INSERT INTO reservations (catalog_id, holder, expires_at, created_at) VALUES ($1, lower($2), $3, $4)
		ON CONFLICT (catalog_id) DO UPDATE SET holder = excluded.holder, expires_at = excluded.expires_at, created_at = excluded.created_at
		WHERE reservations.expires_at <= $4 OR reservations.holder = excluded.holder`, id, holder.String(), until, time.Now())
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *ReservationRepository) Release(ctx context.Context, id int) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM reservations WHERE catalog_id = $1`, id)
	return err
}

// Reserved returns the ids whose reservations are still outstanding at now
func (r *ReservationRepository) Reserved(ctx context.Context, now time.Time) ([]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT catalog_id FROM reservations WHERE expires_at > $1 ORDER BY catalog_id`, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []int{}
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
