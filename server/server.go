package server

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	sentry "github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/mikeydub/go-storefront/env"
	"github.com/mikeydub/go-storefront/middleware"
	"github.com/mikeydub/go-storefront/service/catalog"
	"github.com/mikeydub/go-storefront/service/ledger"
	"github.com/mikeydub/go-storefront/service/logger"
	"github.com/mikeydub/go-storefront/service/mint"
	"github.com/mikeydub/go-storefront/service/persist"
	"github.com/mikeydub/go-storefront/service/persist/postgres"
	"github.com/mikeydub/go-storefront/service/redis"
	"github.com/mikeydub/go-storefront/service/reservation"
	"github.com/mikeydub/go-storefront/service/rpc"
	"github.com/mikeydub/go-storefront/service/rpc/ipfs"
	sentryutil "github.com/mikeydub/go-storefront/service/sentry"
	"github.com/mikeydub/go-storefront/service/signature"
	"github.com/mikeydub/go-storefront/util"
	"github.com/mikeydub/go-storefront/validate"
)

func init() {
	env.RegisterValidation("COLLECTION_ADDRESS", "required", "eth_addr")
	env.RegisterValidation("CHAIN_ID", "required", "numeric")
	env.RegisterValidation("LEDGER_PROVIDER", "oneof=alchemy contract")
	env.RegisterValidation("RESERVATION_STORE", "oneof=memory file redis postgres")
}

// Init initializes the server
func Init() {
	setDefaults()

	if viper.GetString("ENV") != "local" {
		logger.InitWithGCPDefaults()
	}
	initSentry()

	router := CoreInit(context.Background())

	http.Handle("/", router)
}

// CoreInit builds the server's dependencies from the environment and returns the router.
// Anything required that is missing or unreachable panics here, before any request is served.
func CoreInit(ctx context.Context) *gin.Engine {
	logger.For(ctx).Info("initializing server...")

	if viper.GetString("ENV") != "production" {
		gin.SetMode(gin.DebugMode)
		logrus.SetLevel(logrus.DebugLevel)
	}

	provider, minter := newServices(ctx)

	return NewRouter(provider, minter)
}

// NewRouter wires the handlers and middleware around already constructed services
func NewRouter(provider *catalog.Provider, minter *mint.Service) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.Tracing(), middleware.Sentry(true), middleware.HandleCORS(), middleware.GinContextToContext(), middleware.ErrLogger())

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		logger.For(nil).Debug("registering validation")
		validate.RegisterCustomValidators(v)
	}

	return handlersInit(router, provider, minter)
}

func setDefaults() {
	viper.SetDefault("ENV", "local")
	viper.SetDefault("PORT", 3000)
	viper.SetDefault("ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("PRIVATE_KEY", "")
	viper.SetDefault("PRIVATE_KEY_SECRET", "")
	viper.SetDefault("CONTRACT_INTERACTION_URL", "")
	viper.SetDefault("COLLECTION_ADDRESS", "")
	viper.SetDefault("CHAIN_ID", 4)
	viper.SetDefault("LEDGER_PROVIDER", "alchemy")
	viper.SetDefault("ALCHEMY_API_URL", "")
	viper.SetDefault("LEDGER_CACHE_TTL", "0s")
	viper.SetDefault("REDIS_URL", "localhost:6379")
	viper.SetDefault("REDIS_PASS", "")
	viper.SetDefault("RESERVATION_STORE", "memory")
	viper.SetDefault("RESERVATION_FILE", "reservations.json")
	viper.SetDefault("POSTGRES_HOST", "0.0.0.0")
	viper.SetDefault("POSTGRES_PORT", 5432)
	viper.SetDefault("POSTGRES_USER", "postgres")
	viper.SetDefault("POSTGRES_PASSWORD", "")
	viper.SetDefault("POSTGRES_DB", "postgres")
	viper.SetDefault("IPFS_URL", "https://ipfs.io")
	viper.SetDefault("IPFS_API_URL", "https://ipfs.infura.io:5001")
	viper.SetDefault("IPFS_PROJECT_ID", "")
	viper.SetDefault("IPFS_PROJECT_SECRET", "")
	viper.SetDefault("MINT_WINDOW", "3m")
	viper.SetDefault("MINT_START_IMMEDIATE", false)
	viper.SetDefault("MINT_RESERVATION_HOLD", "10m")
	viper.SetDefault("CATALOG_FILE", "")
	viper.SetDefault("HTTP_CLIENT_TIMEOUT", "30s")
	viper.SetDefault("SENTRY_DSN", "")
	viper.SetDefault("SENTRY_TRACES_SAMPLE_RATE", 0.2)
	viper.SetDefault("VERSION", "")

	viper.AutomaticEnv()

	envFile := util.ResolveEnvFile("storefront", viper.GetString("ENV"))
	util.LoadEnvFile(envFile)

	if viper.GetString("PRIVATE_KEY") == "" {
		util.VarNotSetTo("PRIVATE_KEY_SECRET", "")
	}
	util.VarNotSetTo("COLLECTION_ADDRESS", "")
	util.MustExist("CHAIN_ID")

	switch viper.GetString("LEDGER_PROVIDER") {
	case "contract":
		util.VarNotSetTo("CONTRACT_INTERACTION_URL", "")
	default:
		util.VarNotSetTo("ALCHEMY_API_URL", "")
	}

	if viper.GetString("ENV") != "local" {
		util.VarNotSetTo("SENTRY_DSN", "")
		util.VarNotSetTo("VERSION", "")
	}

	if err := env.Validate(); err != nil {
		panic(err)
	}
}

func newServices(ctx context.Context) (*catalog.Provider, *mint.Service) {
	collection := persist.EthereumAddress(env.GetString(ctx, "COLLECTION_ADDRESS"))

	chainID, ok := new(big.Int).SetString(env.GetString(ctx, "CHAIN_ID"), 10)
	if !ok {
		panic(fmt.Sprintf("invalid CHAIN_ID: %s", env.GetString(ctx, "CHAIN_ID")))
	}

	items := newCatalog(ctx)
	ipfsClient := ipfs.NewClient(ctx)
	reservations := newReservationStore(ctx)

	provider, err := catalog.NewProvider(items, newLedger(ctx, ipfsClient), collection)
	if err != nil {
		panic(err)
	}

	signer := signature.NewEIP712Generator(newPrivateKey(ctx), chainID, collection, ipfsClient)
	logger.For(ctx).Infof("signing mint requests for %s on chain %s as %s", collection, chainID, signer.Signer())

	window := mint.Window{
		Duration:         env.GetDuration(ctx, "MINT_WINDOW"),
		StartImmediately: env.GetBool(ctx, "MINT_START_IMMEDIATE"),
		Hold:             env.GetDuration(ctx, "MINT_RESERVATION_HOLD"),
	}

	return provider, mint.NewService(provider, signer, reservations, window)
}

func newCatalog(ctx context.Context) persist.Catalog {
	path := env.GetString(ctx, "CATALOG_FILE")
	if path == "" {
		return catalog.Default()
	}

	items, err := catalog.LoadFile(path)
	if err != nil {
		panic(fmt.Sprintf("failed to load catalog from %s: %s", path, err))
	}
	return items
}

func newLedger(ctx context.Context, ipfsClient *ipfs.Client) ledger.Ledger {
	httpClient := ledger.NewHTTPClient(ctx)

	var l ledger.Ledger
	switch name := env.GetString(ctx, "LEDGER_PROVIDER"); name {
	case "", "alchemy":
		l = ledger.NewAlchemyProvider(env.GetString(ctx, "ALCHEMY_API_URL"), httpClient)
	case "contract":
		l = ledger.NewContractProvider(rpc.NewEthClient(ctx), ipfsClient, httpClient)
	default:
		panic(ledger.ErrUnknownProvider{Name: name})
	}

	if ttl := env.GetDuration(ctx, "LEDGER_CACHE_TTL"); ttl > 0 {
		l = ledger.NewCachedLedger(l, redis.NewCache(redis.LedgerCache), ttl)
	}

	return l
}

func newReservationStore(ctx context.Context) reservation.Store {
	switch name := env.GetString(ctx, "RESERVATION_STORE"); name {
	case "", "memory":
		return reservation.NewMemoryStore()
	case "file":
		return reservation.NewFileStore(env.GetString(ctx, "RESERVATION_FILE"))
	case "redis":
		return reservation.NewRedisStore(redis.NewCache(redis.ReservationCache), redis.NewLockClient(redis.NewCache(redis.ReservationLockCache)))
	case "postgres":
		store, err := reservation.NewPostgresStore(ctx, postgres.NewPgxClient(postgres.WithAppName("storefront")))
		if err != nil {
			panic(err)
		}
		return store
	default:
		panic(reservation.ErrUnknownStore{Name: name})
	}
}

func newPrivateKey(ctx context.Context) *ecdsa.PrivateKey {
	raw := env.GetString(ctx, "PRIVATE_KEY")

	if raw == "" {
		secretCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		secret, err := util.AccessSecret(secretCtx, env.GetString(ctx, "PRIVATE_KEY_SECRET"))
		if err != nil {
			panic(fmt.Sprintf("failed to read signer key: %s", err))
		}
		raw = string(secret)
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(raw), "0x"))
	if err != nil {
		panic(fmt.Sprintf("invalid signer key: %s", err))
	}
	return key
}

func initSentry() {
	if viper.GetString("ENV") == "local" {
		logger.For(nil).Info("skipping sentry init")
		return
	}

	logger.For(nil).Info("initializing sentry...")

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              viper.GetString("SENTRY_DSN"),
		Environment:      viper.GetString("ENV"),
		TracesSampleRate: viper.GetFloat64("SENTRY_TRACES_SAMPLE_RATE"),
		Release:          viper.GetString("VERSION"),
		AttachStacktrace: true,
		BeforeSend: func(event *sentry.Event, hint *sentry.EventHint) *sentry.Event {
			event = sentryutil.ScrubEventHeaders(event, hint)
			event = sentryutil.UpdateErrorFingerprints(event, hint)
			return event
		},
	})

	if err != nil {
		logger.For(nil).Fatalf("failed to start sentry: %s", err)
	}
}
