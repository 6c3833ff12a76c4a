// Package reputation implements the time-based decay of provider reputation.
// Decay is never scheduled; it happens only when someone invokes ApplyDecay,
// and any caller may do so for any provider.
package reputation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

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

type Service struct {
	providers  storage.ProviderStore
	trackers   storage.DecayTrackerStore
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
	trackers storage.DecayTrackerStore,
	adm *admission.Service,
	blocks chain.BlockSource,
	serializer *tx.Serializer,
	opts ...Option,
) *Service {
	svc := &Service{
		providers:  providers,
		trackers:   trackers,
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

// ApplyDecay reduces a provider's reputation by the decay rate if a full
// decay period has elapsed since the last application. A provider that has
// never decayed is treated as having last decayed at block zero. Returns the
// provider's new reputation.
func (s *Service) ApplyDecay(ctx context.Context, caller, providerPrincipal chain.Principal) (uint64, error) {
	var newReputation uint64
	err := s.serializer.Do(ctx, func() error {
		if err := s.admission.Guard(ctx); err != nil {
			return err
		}
		provider, err := s.providers.FindByPrincipal(ctx, providerPrincipal)
		if errors.Is(err, storage.ErrNotFound) {
			return dErrors.New(dErrors.CodeProviderNotRegistered, "provider is not registered")
		} else if err != nil {
			return fmt.Errorf("load provider: %w", err)
		}

		tracker, err := s.trackers.FindByProvider(ctx, providerPrincipal)
		if errors.Is(err, storage.ErrNotFound) {
			tracker = domain.ReputationDecayTracker{Provider: providerPrincipal}
		} else if err != nil {
			return fmt.Errorf("load decay tracker: %w", err)
		}

		current := s.blocks.Height()
		if current-tracker.LastDecayBlock < policy.DecayPeriodBlocks {
			return dErrors.New(dErrors.CodeNotAuthorized, "decay period has not elapsed")
		}

		scaled, err := safemath.Mul(provider.Reputation, policy.DecayRatePercent)
		if err != nil {
			return err
		}
		decay := scaled / 100
		provider.Reputation -= decay // decay <= reputation, cannot underflow
		if err := s.providers.Save(ctx, provider); err != nil {
			return fmt.Errorf("save provider: %w", err)
		}

		decayed, err := safemath.Add(tracker.DecayedAmount, decay)
		if err != nil {
			return err
		}
		tracker.LastDecayBlock = current
		tracker.DecayedAmount = decayed
		if err := s.trackers.Save(ctx, tracker); err != nil {
			return fmt.Errorf("save decay tracker: %w", err)
		}
		newReputation = provider.Reputation
		return nil
	})
	s.finish(ctx, "provider:"+providerPrincipal.String(), caller, err)
	if err != nil {
		return 0, err
	}
	return newReputation, nil
}

// Tracker returns a provider's decay tracker; ok is false when the provider
// has never decayed.
func (s *Service) Tracker(ctx context.Context, providerPrincipal chain.Principal) (domain.ReputationDecayTracker, bool) {
	tracker, err := s.trackers.FindByProvider(ctx, providerPrincipal)
	if err != nil {
		return domain.ReputationDecayTracker{}, false
	}
	return tracker, true
}

// Adjusted returns the reputation a provider would hold after an attestation
// outcome is recorded against it. No mutating operation currently calls this;
// wiring attestation outcomes into reputation is an explicitly unfinished
// part of the protocol.
func Adjusted(reputation uint64, successful bool) uint64 {
	if successful {
		return reputation + 1
	}
	if reputation < 5 {
		return 0
	}
	return reputation - 5
}

func (s *Service) finish(ctx context.Context, entity string, caller chain.Principal, err error) {
	s.metrics.Observe(audit.OpApplyDecay, err)
	if err != nil {
		return
	}
	event := audit.Event{Operation: audit.OpApplyDecay, Caller: caller, Entity: entity, Block: s.blocks.Height()}
	if emitErr := s.audit.Emit(ctx, event); emitErr != nil {
		s.logger.WarnContext(ctx, "audit emit failed", "operation", audit.OpApplyDecay, "error", emitErr)
	}
}
