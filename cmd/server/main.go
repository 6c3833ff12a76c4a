package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"trustledger/internal/admission"
	admissionstore "trustledger/internal/admission/store"
	"trustledger/internal/assets"
	"trustledger/internal/attestation"
	"trustledger/internal/attribute"
	"trustledger/internal/audit"
	"trustledger/internal/identity"
	jwttoken "trustledger/internal/jwt_token"
	"trustledger/internal/nft"
	"trustledger/internal/permission"
	"trustledger/internal/platform/config"
	"trustledger/internal/platform/httpserver"
	"trustledger/internal/platform/logger"
	"trustledger/internal/platform/metrics"
	"trustledger/internal/platform/redis"
	"trustledger/internal/provider"
	"trustledger/internal/reputation"
	"trustledger/internal/storage"
	httptransport "trustledger/internal/transport/http"
	"trustledger/internal/zkproof"
	"trustledger/pkg/chain"
	"trustledger/pkg/platform/tx"
)

// custodyAccount holds escrowed provider stakes.
const custodyAccount = chain.Principal("trustledger-custody")

// main wires storage, services, and the HTTP router, then runs the server
// until interrupted. Business rules live in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New(slog.LevelInfo)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	blocks := chain.NewManualBlockSource(cfg.StartBlock)
	serializer := tx.NewSerializer()
	m := metrics.New()

	globals := storage.NewInMemoryGlobalStore(cfg.ContractOwner, cfg.BaseURI)
	identityStore := storage.NewInMemoryIdentityStore()
	attributeStore := storage.NewInMemoryAttributeStore()
	providerStore := storage.NewInMemoryProviderStore()
	attestationStore := storage.NewInMemoryAttestationStore()
	revocationStore := storage.NewInMemoryRevocationStore()
	stakeStore := storage.NewInMemoryStakeStore()
	trackerStore := storage.NewInMemoryDecayTrackerStore()
	permissionStore := storage.NewInMemoryPermissionStore()
	proofStore := storage.NewInMemoryZkProofStore()

	// Rate-limit state lives in Redis when configured so limits survive
	// restarts and are shared across replicas.
	var limitStore admission.StateStore = admissionstore.NewInMemoryStore()
	redisClient, err := redis.New(cfg.Redis())
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		limitStore = admissionstore.NewRedisStore(redisClient.Client)
		log.Info("rate-limit store backed by redis")
	}

	publisher, cleanup, err := buildAuditPublisher(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	ledger := assets.NewMemoryLedger()
	seedFaucet(ledger, log)

	adm := admission.New(globals, limitStore, blocks, serializer,
		admission.WithLogger(log), admission.WithAuditPublisher(publisher))

	services := httptransport.Services{
		Identity: identity.New(globals, identityStore, nft.NewMemoryRegistry(), adm, blocks, serializer,
			identity.WithLogger(log), identity.WithAuditPublisher(publisher), identity.WithMetrics(m)),
		Attribute: attribute.New(identityStore, attributeStore, adm, blocks, serializer,
			attribute.WithLogger(log), attribute.WithAuditPublisher(publisher), attribute.WithMetrics(m)),
		Provider: provider.New(providerStore, stakeStore, ledger, custodyAccount, adm, blocks, serializer,
			provider.WithLogger(log), provider.WithAuditPublisher(publisher), provider.WithMetrics(m)),
		Attestation: attestation.New(attestationStore, revocationStore, attributeStore, providerStore, adm, blocks, serializer,
			attestation.WithLogger(log), attestation.WithAuditPublisher(publisher), attestation.WithMetrics(m)),
		Reputation: reputation.New(providerStore, trackerStore, adm, blocks, serializer,
			reputation.WithLogger(log), reputation.WithAuditPublisher(publisher), reputation.WithMetrics(m)),
		Permission: permission.New(identityStore, permissionStore, adm, blocks, serializer,
			permission.WithLogger(log), permission.WithAuditPublisher(publisher), permission.WithMetrics(m)),
		ZkProof: zkproof.New(identityStore, proofStore, blocks, serializer,
			zkproof.WithLogger(log), zkproof.WithAuditPublisher(publisher), zkproof.WithMetrics(m)),
		Admission: adm,
	}

	tokens := jwttoken.NewService(cfg.JWTSigningKey, "trustledger", "trustledger-api")
	handler := httptransport.NewHandler(services, tokens, blocks, log,
		httptransport.WithManualBlocks(blocks))
	srv := httpserver.New(cfg.Addr, httptransport.NewRouter(handler))

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.Info("starting trustledger", "addr", cfg.Addr, "owner", cfg.ContractOwner.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return group.Wait()
}

// buildAuditPublisher prefers Kafka, falls back to a Postgres journal, then to
// a nop publisher. The returned cleanup is always safe to call.
func buildAuditPublisher(ctx context.Context, cfg config.Server, log *slog.Logger) (audit.Publisher, func(), error) {
	if len(cfg.KafkaBrokers) > 0 {
		client, err := audit.DialKafka(cfg.KafkaBrokers)
		if err != nil {
			return nil, func() {}, err
		}
		log.Info("audit events publishing to kafka", "topic", cfg.KafkaTopic)
		publisher := audit.NewKafkaPublisher(client, cfg.KafkaTopic)
		return publisher, func() { publisher.Close() }, nil
	}

	if cfg.PostgresURL != "" {
		pool, err := pgxpool.New(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, func() {}, err
		}
		journal, err := audit.NewPostgresJournal(ctx, pool)
		if err != nil {
			pool.Close()
			return nil, func() {}, err
		}
		log.Info("audit events journaled to postgres")
		return journal, pool.Close, nil
	}

	return audit.NopPublisher{}, func() {}, nil
}

// seedFaucet credits development balances from TRUSTLEDGER_FAUCET, a
// comma-separated list of principal:amount pairs.
func seedFaucet(ledger *assets.MemoryLedger, log *slog.Logger) {
	raw := os.Getenv("TRUSTLEDGER_FAUCET")
	if raw == "" {
		return
	}
	for _, pair := range strings.Split(raw, ",") {
		principal, amountRaw, ok := strings.Cut(pair, ":")
		if !ok {
			continue
		}
		amount, err := strconv.ParseUint(amountRaw, 10, 64)
		if err != nil {
			log.Warn("skipping malformed faucet entry", "entry", pair)
			continue
		}
		ledger.Credit(chain.Principal(principal), amount)
		log.Info("faucet credit", "principal", principal, "amount", amount)
	}
}
