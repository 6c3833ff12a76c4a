// Package provider owns attestation-provider records and their reputation
// stakes. Value moves into contract custody through the external asset
// transfer primitive in the same operation that writes the record.
package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"trustledger/internal/admission"
	"trustledger/internal/audit"
	"trustledger/internal/domain"
	"trustledger/internal/platform/metrics"
	"trustledger/internal/policy"
	"trustledger/internal/storage"
	"trustledger/pkg/chain"
	dErrors "trustledger/pkg/domain-errors"
	"trustledger/pkg/platform/tx"
	"trustledger/pkg/safemath"
)

// AssetLedger is the native asset transfer primitive supplied by the hosting
// environment. A failed transfer fails the enclosing operation.
type AssetLedger interface {
	Transfer(ctx context.Context, amount uint64, from, to chain.Principal) error
}

type Service struct {
	providers  storage.ProviderStore
	stakes     storage.StakeStore
	assets     AssetLedger
	custody    chain.Principal
	admission  *admission.Service
	blocks     chain.BlockSource
	serializer *tx.Serializer
	audit      audit.Publisher
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditPublisher(publisher audit.Publisher) Option {
	return func(s *Service) { s.audit = publisher }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func New(
	providers storage.ProviderStore,
	stakes storage.StakeStore,
	assets AssetLedger,
	custody chain.Principal,
	adm *admission.Service,
	blocks chain.BlockSource,
	serializer *tx.Serializer,
	opts ...Option,
) *Service {
	svc := &Service{
		providers:  providers,
		stakes:     stakes,
		assets:     assets,
		custody:    custody,
		admission:  adm,
		blocks:     blocks,
		serializer: serializer,
		audit:      audit.NopPublisher{},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Register escrows the stake and creates the provider record with the initial
// reputation. Re-registration is open and overwrites prior state, including
// accumulated counters; that is the documented policy, not an oversight.
func (s *Service) Register(ctx context.Context, caller chain.Principal, stakeAmount uint64) error {
	err := s.serializer.Do(ctx, func() error {
		if err := s.admission.Guard(ctx); err != nil {
			return err
		}
		if stakeAmount < policy.MinStakeAmount {
			return dErrors.New(dErrors.CodeInsufficientStake, "registration stake below minimum")
		}
		if err := s.assets.Transfer(ctx, stakeAmount, caller, s.custody); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInsufficientStake, "escrow transfer failed")
		}
		record := domain.Provider{
			Principal:    caller,
			Reputation:   policy.InitialReputation,
			StakeAmount:  stakeAmount,
			IsActive:     true,
			RegisteredAt: s.blocks.Height(),
		}
		if err := s.providers.Save(ctx, record); err != nil {
			return fmt.Errorf("save provider: %w", err)
		}
		return nil
	})
	s.finish(ctx, audit.OpRegisterProvider, "provider:"+caller.String(), caller, err)
	return err
}

// StakeOnAttestation escrows additional stake backing the caller's
// attestations on one identity, locked until the given block offset elapses.
func (s *Service) StakeOnAttestation(ctx context.Context, caller chain.Principal, tokenID, stakeAmount, lockDuration uint64) error {
	err := s.serializer.Do(ctx, func() error {
		if err := s.admission.Guard(ctx); err != nil {
			return err
		}
		if _, err := s.providers.FindByPrincipal(ctx, caller); errors.Is(err, storage.ErrNotFound) {
			return dErrors.New(dErrors.CodeProviderNotRegistered, "caller is not a registered provider")
		} else if err != nil {
			return fmt.Errorf("load provider: %w", err)
		}
		if stakeAmount < policy.MinStakeAmount {
			return dErrors.New(dErrors.CodeInsufficientStake, "attestation stake below minimum")
		}
		lockedUntil, err := safemath.Add(s.blocks.Height(), lockDuration)
		if err != nil {
			return err
		}
		if err := s.assets.Transfer(ctx, stakeAmount, caller, s.custody); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInsufficientStake, "escrow transfer failed")
		}
		record := domain.ReputationStake{
			Provider:    caller,
			TokenID:     tokenID,
			StakeAmount: stakeAmount,
			LockedUntil: lockedUntil,
		}
		if err := s.stakes.Save(ctx, record); err != nil {
			return fmt.Errorf("save stake: %w", err)
		}
		return nil
	})
	s.finish(ctx, audit.OpStakeOnAttestation, "stake:"+caller.String()+":"+strconv.FormatUint(tokenID, 10), caller, err)
	return err
}

// Provider returns a provider record; ok is false when it does not exist.
func (s *Service) Provider(ctx context.Context, principal chain.Principal) (domain.Provider, bool) {
	record, err := s.providers.FindByPrincipal(ctx, principal)
	if err != nil {
		return domain.Provider{}, false
	}
	return record, true
}

// Stake returns a reputation stake record; ok is false when it does not
// exist.
func (s *Service) Stake(ctx context.Context, provider chain.Principal, tokenID uint64) (domain.ReputationStake, bool) {
	record, err := s.stakes.Find(ctx, domain.StakeKey{Provider: provider, TokenID: tokenID})
	if err != nil {
		return domain.ReputationStake{}, false
	}
	return record, true
}

func (s *Service) finish(ctx context.Context, operation, entity string, caller chain.Principal, err error) {
	s.metrics.Observe(operation, err)
	if err != nil {
		return
	}
	event := audit.Event{Operation: operation, Caller: caller, Entity: entity, Block: s.blocks.Height()}
	if emitErr := s.audit.Emit(ctx, event); emitErr != nil {
		s.logger.WarnContext(ctx, "audit emit failed", "operation", operation, "error", emitErr)
	}
}
