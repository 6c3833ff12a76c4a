// Package zkproof records zero-knowledge proof submissions against identities.
// Verification is a placeholder: any submission against a live identity is
// accepted and stamped, so the ledger keeps a verifiable trail for when a real
// verifier lands.
package zkproof

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"trustledger/internal/audit"
	"trustledger/internal/domain"
	"trustledger/internal/platform/metrics"
	"trustledger/internal/storage"
	"trustledger/pkg/chain"
	dErrors "trustledger/pkg/domain-errors"
	"trustledger/pkg/platform/tx"
)

type Service struct {
	identities storage.IdentityStore
	proofs     storage.ZkProofStore
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
	proofs storage.ZkProofStore,
	blocks chain.BlockSource,
	serializer *tx.Serializer,
	opts ...Option,
) *Service {
	svc := &Service{
		identities: identities,
		proofs:     proofs,
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

// Verify records a proof submission for a live identity. The raw proof bytes
// are accepted for interface stability but not retained; only the proof
// metadata is stored, stamped with the submitting caller and current block.
func (s *Service) Verify(ctx context.Context, caller chain.Principal, tokenID uint64, proofID chain.Hash32, proofType string, publicInputs []chain.Hash32, proofData []byte) error {
	_ = proofData
	err := s.serializer.Do(ctx, func() error {
		identity, err := s.identities.FindByTokenID(ctx, tokenID)
		if errors.Is(err, storage.ErrNotFound) {
			return dErrors.New(dErrors.CodeInvalidToken, "identity does not exist")
		} else if err != nil {
			return fmt.Errorf("load identity: %w", err)
		}
		if !identity.IsActive {
			return dErrors.New(dErrors.CodeInvalidToken, "identity is not active")
		}

		record := domain.ZkProof{
			ProofID:      proofID,
			TokenID:      tokenID,
			ProofType:    proofType,
			PublicInputs: append([]chain.Hash32{}, publicInputs...),
			VerifiedAt:   s.blocks.Height(),
			Verifier:     caller,
		}
		if err := s.proofs.Save(ctx, record); err != nil {
			return fmt.Errorf("save proof: %w", err)
		}
		return nil
	})
	s.finish(ctx, proofID.String(), caller, err)
	return err
}

// Proof returns a recorded proof by its identifier.
func (s *Service) Proof(ctx context.Context, proofID chain.Hash32) (domain.ZkProof, bool) {
	record, err := s.proofs.FindByID(ctx, proofID)
	if err != nil {
		return domain.ZkProof{}, false
	}
	return record, true
}

func (s *Service) finish(ctx context.Context, entity string, caller chain.Principal, err error) {
	s.metrics.Observe(audit.OpVerifyZkProof, err)
	if err != nil {
		return
	}
	event := audit.Event{Operation: audit.OpVerifyZkProof, Caller: caller, Entity: entity, Block: s.blocks.Height()}
	if emitErr := s.audit.Emit(ctx, event); emitErr != nil {
		s.logger.WarnContext(ctx, "audit emit failed", "operation", audit.OpVerifyZkProof, "error", emitErr)
	}
}
