// Package attestation owns attestation records and their advisory revocation
// side records. Creation cross-references the provider registry and the
// attribute store; revocation touches neither.
package attestation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

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

var tracer = otel.Tracer("trustledger/attestation")

// BatchEntry is one attestation request inside a batch call.
type BatchEntry struct {
	TokenID         uint64
	AttributeType   string
	AttestationID   chain.Hash32
	ConfidenceScore uint64
}

type Service struct {
	attestations storage.AttestationStore
	revocations  storage.RevocationStore
	attributes   storage.AttributeStore
	providers    storage.ProviderStore
	admission    *admission.Service
	blocks       chain.BlockSource
	serializer   *tx.Serializer
	audit        audit.Publisher
	metrics      *metrics.Metrics
	logger       *slog.Logger
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
	attestations storage.AttestationStore,
	revocations storage.RevocationStore,
	attributes storage.AttributeStore,
	providers storage.ProviderStore,
	adm *admission.Service,
	blocks chain.BlockSource,
	serializer *tx.Serializer,
	opts ...Option,
) *Service {
	svc := &Service{
		attestations: attestations,
		revocations:  revocations,
		attributes:   attributes,
		providers:    providers,
		admission:    adm,
		blocks:       blocks,
		serializer:   serializer,
		audit:        audit.NopPublisher{},
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// eligibleProvider loads and checks the calling provider once; batch creation
// applies it to the whole batch.
func (s *Service) eligibleProvider(ctx context.Context, caller chain.Principal) (domain.Provider, error) {
	record, err := s.providers.FindByPrincipal(ctx, caller)
	if errors.Is(err, storage.ErrNotFound) {
		return domain.Provider{}, dErrors.New(dErrors.CodeProviderNotRegistered, "caller is not a registered provider")
	} else if err != nil {
		return domain.Provider{}, fmt.Errorf("load provider: %w", err)
	}
	if !record.IsActive {
		return domain.Provider{}, dErrors.New(dErrors.CodeProviderNotRegistered, "provider is not active")
	}
	if record.Reputation < policy.MinReputationThreshold {
		return domain.Provider{}, dErrors.New(dErrors.CodeInsufficientReputation, "provider reputation below threshold")
	}
	return record, nil
}

// writeAttestation persists one attestation and bumps the attribute and
// provider counters. The attribute must already be loaded by the caller.
func (s *Service) writeAttestation(ctx context.Context, provider *domain.Provider, attr domain.Attribute, entry BatchEntry) error {
	attestationCount, err := safemath.Add(attr.AttestationCount, 1)
	if err != nil {
		return err
	}
	totalAttestations, err := safemath.Add(provider.TotalAttestations, 1)
	if err != nil {
		return err
	}

	record := domain.Attestation{
		AttestationID:   entry.AttestationID,
		Provider:        provider.Principal,
		TokenID:         entry.TokenID,
		AttributeType:   entry.AttributeType,
		ConfidenceScore: entry.ConfidenceScore,
		CreatedAt:       s.blocks.Height(),
	}
	if err := s.attestations.Save(ctx, record); err != nil {
		return fmt.Errorf("save attestation: %w", err)
	}
	attr.AttestationCount = attestationCount
	if err := s.attributes.Save(ctx, attr); err != nil {
		return fmt.Errorf("save attribute: %w", err)
	}
	provider.TotalAttestations = totalAttestations
	if err := s.providers.Save(ctx, *provider); err != nil {
		return fmt.Errorf("save provider: %w", err)
	}
	return nil
}

// Create writes one attestation under a caller-supplied id. A colliding id
// silently overwrites the previous attestation; uniqueness is the caller's
// problem.
func (s *Service) Create(ctx context.Context, caller chain.Principal, tokenID uint64, attributeType string, attestationID chain.Hash32, confidenceScore uint64) error {
	ctx, span := tracer.Start(ctx, "attestation.Create", trace.WithAttributes(
		attribute.String("attestation.id", attestationID.String()),
		attribute.Int64("token.id", int64(tokenID)),
	))
	defer span.End()

	err := s.serializer.Do(ctx, func() error {
		if err := s.admission.Guard(ctx); err != nil {
			return err
		}
		provider, err := s.eligibleProvider(ctx, caller)
		if err != nil {
			return err
		}
		if confidenceScore > policy.MaxConfidenceScore {
			return dErrors.New(dErrors.CodeNotAuthorized, "confidence score exceeds maximum")
		}
		attr, err := s.attributes.Find(ctx, domain.AttributeKey{TokenID: tokenID, AttributeType: attributeType})
		if errors.Is(err, storage.ErrNotFound) {
			return dErrors.New(dErrors.CodeAttestationNotFound, "target attribute does not exist")
		} else if err != nil {
			return fmt.Errorf("load attribute: %w", err)
		}
		return s.writeAttestation(ctx, &provider, attr, BatchEntry{
			TokenID:         tokenID,
			AttributeType:   attributeType,
			AttestationID:   attestationID,
			ConfidenceScore: confidenceScore,
		})
	})
	s.finish(ctx, audit.OpCreateAttestation, "attestation:"+attestationID.String(), caller, err)
	return err
}

// CreateBatch processes up to MaxBatchSize entries in one transaction.
// Provider eligibility is checked once for the whole batch; entries whose
// target attribute does not exist (or whose confidence is out of range) are
// silently skipped rather than failing the batch. Returns the number of
// attestations actually written.
func (s *Service) CreateBatch(ctx context.Context, caller chain.Principal, entries []BatchEntry) (uint64, error) {
	ctx, span := tracer.Start(ctx, "attestation.CreateBatch", trace.WithAttributes(
		attribute.Int("batch.size", len(entries)),
	))
	defer span.End()

	var written uint64
	err := s.serializer.Do(ctx, func() error {
		if err := s.admission.GuardRateLimited(ctx, caller); err != nil {
			return err
		}
		if len(entries) > policy.MaxBatchSize {
			return dErrors.New(dErrors.CodeBatchTooLarge, "batch exceeds maximum size")
		}
		provider, err := s.eligibleProvider(ctx, caller)
		if err != nil {
			return err
		}
		for _, entry := range entries {
			if entry.ConfidenceScore > policy.MaxConfidenceScore {
				continue
			}
			attr, err := s.attributes.Find(ctx, domain.AttributeKey{TokenID: entry.TokenID, AttributeType: entry.AttributeType})
			if errors.Is(err, storage.ErrNotFound) {
				continue
			} else if err != nil {
				return fmt.Errorf("load attribute: %w", err)
			}
			if err := s.writeAttestation(ctx, &provider, attr, entry); err != nil {
				return err
			}
			written++
		}
		return nil
	})
	span.SetAttributes(attribute.Int64("batch.written", int64(written)))
	s.finish(ctx, audit.OpBatchAttestations, "provider:"+caller.String(), caller, err)
	if err != nil {
		return 0, err
	}
	return written, nil
}

// Revoke writes the advisory revocation record for an attestation. Only the
// original provider may revoke. The attestation itself, its counters, and
// every read path stay untouched; re-revocation overwrites the record.
func (s *Service) Revoke(ctx context.Context, caller chain.Principal, attestationID chain.Hash32, reason string) error {
	err := s.serializer.Do(ctx, func() error {
		if err := s.admission.Guard(ctx); err != nil {
			return err
		}
		record, err := s.attestations.FindByID(ctx, attestationID)
		if errors.Is(err, storage.ErrNotFound) {
			return dErrors.New(dErrors.CodeAttestationNotFound, "attestation does not exist")
		} else if err != nil {
			return fmt.Errorf("load attestation: %w", err)
		}
		if record.Provider != caller {
			return dErrors.New(dErrors.CodeNotAuthorized, "only the original provider may revoke")
		}
		if reason == "" {
			return dErrors.New(dErrors.CodeInvalidInput, "revocation reason must not be empty")
		}
		revocation := domain.RevokedAttestation{
			AttestationID: attestationID,
			RevokedAt:     s.blocks.Height(),
			Reason:        reason,
		}
		if err := s.revocations.Save(ctx, revocation); err != nil {
			return fmt.Errorf("save revocation: %w", err)
		}
		return nil
	})
	s.finish(ctx, audit.OpRevokeAttestation, "attestation:"+attestationID.String(), caller, err)
	return err
}

// Attestation returns an attestation record; ok is false when it does not
// exist.
func (s *Service) Attestation(ctx context.Context, attestationID chain.Hash32) (domain.Attestation, bool) {
	record, err := s.attestations.FindByID(ctx, attestationID)
	if err != nil {
		return domain.Attestation{}, false
	}
	return record, true
}

// Revocation returns the revocation side record; ok is false when the
// attestation has not been revoked.
func (s *Service) Revocation(ctx context.Context, attestationID chain.Hash32) (domain.RevokedAttestation, bool) {
	record, err := s.revocations.FindByID(ctx, attestationID)
	if err != nil {
		return domain.RevokedAttestation{}, false
	}
	return record, true
}

// IsRevoked reports whether a revocation record exists for the id.
func (s *Service) IsRevoked(ctx context.Context, attestationID chain.Hash32) bool {
	_, revoked := s.Revocation(ctx, attestationID)
	return revoked
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
