// Package attribute owns the per-identity, per-type commitment records. Each
// identity carries at most MaxAttributes of them; the identity's counter moves
// in the same operation as the attribute write.
package attribute

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

type Service struct {
	identities storage.IdentityStore
	attributes storage.AttributeStore
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
	identities storage.IdentityStore,
	attributes storage.AttributeStore,
	adm *admission.Service,
	blocks chain.BlockSource,
	serializer *tx.Serializer,
	opts ...Option,
) *Service {
	svc := &Service{
		identities: identities,
		attributes: attributes,
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

// Add writes or overwrites an attribute record for the caller's identity and
// bumps the identity's attribute counter. Wrong owner and exhausted capacity
// signal the same NotAuthorized code; callers learn nothing about which it
// was.
func (s *Service) Add(ctx context.Context, caller chain.Principal, tokenID uint64, attributeType string, commitmentHash, proofHash chain.Hash32, isPublic bool) error {
	err := s.serializer.Do(ctx, func() error {
		if err := s.admission.GuardRateLimited(ctx, caller); err != nil {
			return err
		}

		identity, err := s.identities.FindByTokenID(ctx, tokenID)
		if errors.Is(err, storage.ErrNotFound) {
			return dErrors.New(dErrors.CodeInvalidToken, "identity does not exist")
		} else if err != nil {
			return fmt.Errorf("load identity: %w", err)
		}
		if identity.Owner != caller {
			return dErrors.New(dErrors.CodeNotAuthorized, "caller may not add attributes to this identity")
		}
		if identity.AttributeCount >= policy.MaxAttributes {
			return dErrors.New(dErrors.CodeNotAuthorized, "caller may not add attributes to this identity")
		}
		if attributeType == "" {
			return dErrors.New(dErrors.CodeInvalidInput, "attribute type must not be empty")
		}

		count, err := safemath.Add(identity.AttributeCount, 1)
		if err != nil {
			return err
		}

		record := domain.Attribute{
			TokenID:        tokenID,
			AttributeType:  attributeType,
			CommitmentHash: commitmentHash,
			ProofHash:      proofHash,
			VerifiedAt:     s.blocks.Height(),
			IsPublic:       isPublic,
		}
		if err := s.attributes.Save(ctx, record); err != nil {
			return fmt.Errorf("save attribute: %w", err)
		}
		identity.AttributeCount = count
		if err := s.identities.Save(ctx, identity); err != nil {
			return fmt.Errorf("save identity: %w", err)
		}
		return nil
	})
	s.finish(ctx, "attribute:"+strconv.FormatUint(tokenID, 10)+":"+attributeType, caller, err)
	return err
}

// Attribute returns an attribute record; ok is false when it does not exist.
func (s *Service) Attribute(ctx context.Context, tokenID uint64, attributeType string) (domain.Attribute, bool) {
	record, err := s.attributes.Find(ctx, domain.AttributeKey{TokenID: tokenID, AttributeType: attributeType})
	if err != nil {
		return domain.Attribute{}, false
	}
	return record, true
}

func (s *Service) finish(ctx context.Context, entity string, caller chain.Principal, err error) {
	s.metrics.Observe(audit.OpAddAttribute, err)
	if err != nil {
		return
	}
	event := audit.Event{Operation: audit.OpAddAttribute, Caller: caller, Entity: entity, Block: s.blocks.Height()}
	if emitErr := s.audit.Emit(ctx, event); emitErr != nil {
		s.logger.WarnContext(ctx, "audit emit failed", "operation", audit.OpAddAttribute, "error", emitErr)
	}
}
