package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/mikeydub/go-storefront/env"
	"github.com/mikeydub/go-storefront/service/logger"
)

type ErrRoleDoesNotExist struct {
	role string
}

func (e ErrRoleDoesNotExist) Error() string {
	return fmt.Sprintf("role '%s' does not exist", e.role)
}

type connectionParams struct {
	user     string
	password string
	dbname   string
	host     string
	port     int
	appname  string
}

func (c *connectionParams) toConnectionString() string {
	port := c.port
	if port == 0 {
		port = 5432
	}

	connStr := fmt.Sprintf("user=%s dbname=%s host=%s port=%d", c.user, c.dbname, c.host, port)

	// Empty passwords should be omitted so they don't interfere with other parameters
	// (e.g. "password= dbname=something" causes Postgres to ignore the dbname)
	if c.password != "" {
		connStr += fmt.Sprintf(" password=%s", c.password)
	}

	return connStr
}

func newConnectionParamsFromEnv(ctx context.Context) connectionParams {
	return connectionParams{
		user:     env.GetString(ctx, "POSTGRES_USER"),
		password: env.GetString(ctx, "POSTGRES_PASSWORD"),
		dbname:   env.GetString(ctx, "POSTGRES_DB"),
		host:     env.GetString(ctx, "POSTGRES_HOST"),
		port:     int(env.GetInt64(ctx, "POSTGRES_PORT")),
	}
}

type ConnectionOption func(params *connectionParams)

func WithUser(user string) ConnectionOption {
	return func(params *connectionParams) {
		params.user = user
	}
}

func WithPassword(password string) ConnectionOption {
	return func(params *connectionParams) {
		params.password = password
	}
}

func WithDBName(dbname string) ConnectionOption {
	return func(params *connectionParams) {
		params.dbname = dbname
	}
}

func WithHost(host string) ConnectionOption {
	return func(params *connectionParams) {
		params.host = host
	}
}

func WithPort(port int) ConnectionOption {
	return func(params *connectionParams) {
		params.port = port
	}
}

func WithAppName(appName string) ConnectionOption {
	return func(params *connectionParams) {
		params.appname = appName
	}
}

// NewPgxClient creates a new Postgres client via pgx, panicking if the database can't be reached
func NewPgxClient(opts ...ConnectionOption) *pgxpool.Pool {
	pool, err := NewPgxPool(context.Background(), opts...)
	if err != nil {
		logger.For(nil).WithError(err).Error("could not open database connection")
		panic(err)
	}
	return pool
}

// NewPgxPool connects to the database configured by the environment and the given options
func NewPgxPool(ctx context.Context, opts ...ConnectionOption) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Second*20)
	defer cancel()

	params := newConnectionParamsFromEnv(ctx)
	for _, opt := range opts {
		opt(&params)
	}

	config, err := pgxpool.ParseConfig(params.toConnectionString())
	if err != nil {
		return nil, fmt.Errorf("could not parse pgx connection string: %w", err)
	}

	if params.appname != "" {
		config.ConnConfig.RuntimeParams["application_name"] = params.appname
	}

	config.ConnConfig.Logger = &pgxLogger{}
	config.MaxConns = 10

	db, err := pgxpool.ConnectConfig(ctx, config)
	if err != nil {
		return nil, err
	}

	err = db.Ping(ctx)
	if err != nil && strings.Contains(err.Error(), fmt.Sprintf("role \"%s\" does not exist", params.user)) {
		db.Close()
		return nil, ErrRoleDoesNotExist{params.user}
	}
	if err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// pgxLogger forwards pgx's own logging to the request scoped logger
type pgxLogger struct{}

func (l *pgxLogger) Log(ctx context.Context, level pgx.LogLevel, msg string, data map[string]interface{}) {
	entry := logger.For(ctx).WithFields(data)
	switch level {
	case pgx.LogLevelError:
		entry.Error(msg)
	case pgx.LogLevelWarn:
		entry.Warn(msg)
	default:
		entry.Trace(msg)
	}
}
