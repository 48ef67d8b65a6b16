package reservation

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/mikeydub/go-storefront/service/persist/postgres"
)

var _ Store = (*postgres.ReservationRepository)(nil)

// NewPostgresStore stores reservations in the reservations table, creating it if needed
func NewPostgresStore(ctx context.Context, pool *pgxpool.Pool) (Store, error) {
	return postgres.NewReservationRepository(ctx, pool)
}
