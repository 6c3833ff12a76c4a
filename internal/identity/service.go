// Package identity owns identity records and their 1:1 binding to the NFT
// ownership relation. Token ids come from a strictly increasing nonce; the
// owner field and the NFT relation move together inside one operation.
package identity

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
	"trustledger/internal/storage"
	"trustledger/pkg/chain"
	dErrors "trustledger/pkg/domain-errors"
	"trustledger/pkg/platform/tx"
	"trustledger/pkg/safemath"
)

// OwnershipRegistry is the externally-visible NFT relation the identity
// registry must stay synchronized with.
type OwnershipRegistry interface {
	Mint(ctx context.Context, owner chain.Principal, tokenID uint64) error
	Transfer(ctx context.Context, from, to chain.Principal, tokenID uint64) error
	OwnerOf(ctx context.Context, tokenID uint64) (chain.Principal, bool)
}

type Service struct {
	globals    storage.GlobalStore
	identities storage.IdentityStore
	ownership  OwnershipRegistry
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
	globals storage.GlobalStore,
	identities storage.IdentityStore,
	ownership OwnershipRegistry,
	adm *admission.Service,
	blocks chain.BlockSource,
	serializer *tx.Serializer,
	opts ...Option,
) *Service {
	svc := &Service{
		globals:    globals,
		identities: identities,
		ownership:  ownership,
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

// Mint allocates a new identity for the caller. Identities are self-minted:
// caller and recipient must match.
func (s *Service) Mint(ctx context.Context, caller, recipient chain.Principal, metadataURI string) (uint64, error) {
	var tokenID uint64
	err := s.serializer.Do(ctx, func() error {
		if err := s.admission.GuardRateLimited(ctx, caller); err != nil {
			return err
		}
		if caller != recipient {
			return dErrors.New(dErrors.CodeNotAuthorized, "identities are self-minted")
		}
		if metadataURI == "" {
			return dErrors.New(dErrors.CodeInvalidInput, "metadata URI must not be empty")
		}

		global, err := s.globals.Get(ctx)
		if err != nil {
			return fmt.Errorf("load global state: %w", err)
		}
		next, err := safemath.Add(global.TokenIDNonce, 1)
		if err != nil {
			return err
		}

		if err := s.ownership.Mint(ctx, recipient, next); err != nil {
			return fmt.Errorf("mint ownership token %d: %w", next, err)
		}
		record := domain.Identity{
			TokenID:   next,
			Owner:     recipient,
			CreatedAt: s.blocks.Height(),
			IsActive:  true,
		}
		if err := s.identities.Save(ctx, record); err != nil {
			return fmt.Errorf("save identity: %w", err)
		}
		global.TokenIDNonce = next
		if err := s.globals.Save(ctx, global); err != nil {
			return fmt.Errorf("save global state: %w", err)
		}
		tokenID = next
		return nil
	})
	s.finish(ctx, audit.OpMint, "identity:"+strconv.FormatUint(tokenID, 10), caller, err)
	if err != nil {
		return 0, err
	}
	return tokenID, nil
}

// Transfer moves an active identity to a new owner. Only the current owner
// may transfer; the pause gate applies but the rate limiter does not.
func (s *Service) Transfer(ctx context.Context, caller, from, to chain.Principal, tokenID uint64) error {
	err := s.serializer.Do(ctx, func() error {
		if err := s.admission.Guard(ctx); err != nil {
			return err
		}
		if caller != from {
			return dErrors.New(dErrors.CodeNotAuthorized, "only the owner may transfer an identity")
		}
		record, err := s.identities.FindByTokenID(ctx, tokenID)
		if errors.Is(err, storage.ErrNotFound) {
			return dErrors.New(dErrors.CodeInvalidToken, "identity does not exist")
		} else if err != nil {
			return fmt.Errorf("load identity: %w", err)
		}
		if !record.IsActive {
			return dErrors.New(dErrors.CodeInvalidToken, "identity is not active")
		}
		if record.Owner != from {
			return dErrors.New(dErrors.CodeNotAuthorized, "sender does not own this identity")
		}

		if err := s.ownership.Transfer(ctx, from, to, tokenID); err != nil {
			return fmt.Errorf("transfer ownership token %d: %w", tokenID, err)
		}
		record.Owner = to
		if err := s.identities.Save(ctx, record); err != nil {
			return fmt.Errorf("save identity: %w", err)
		}
		return nil
	})
	s.finish(ctx, audit.OpTransfer, "identity:"+strconv.FormatUint(tokenID, 10), caller, err)
	return err
}

// Identity returns the identity record; ok is false when it does not exist.
func (s *Service) Identity(ctx context.Context, tokenID uint64) (domain.Identity, bool) {
	record, err := s.identities.FindByTokenID(ctx, tokenID)
	if err != nil {
		return domain.Identity{}, false
	}
	return record, true
}

// Owner returns the current owner of a token; ok is false when it does not
// exist.
func (s *Service) Owner(ctx context.Context, tokenID uint64) (chain.Principal, bool) {
	record, ok := s.Identity(ctx, tokenID)
	if !ok {
		return "", false
	}
	return record.Owner, true
}

// LastTokenID returns the most recently allocated token id, zero before the
// first mint.
func (s *Service) LastTokenID(ctx context.Context) uint64 {
	global, err := s.globals.Get(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "load global state", "error", err)
		return 0
	}
	return global.TokenIDNonce
}

// TokenURI derives the metadata URI by concatenating the base URI with the
// decimal token id. Empty when the identity does not exist.
func (s *Service) TokenURI(ctx context.Context, tokenID uint64) string {
	if _, ok := s.Identity(ctx, tokenID); !ok {
		return ""
	}
	global, err := s.globals.Get(ctx)
	if err != nil {
		return ""
	}
	return global.BaseURI + strconv.FormatUint(tokenID, 10)
}

// TrustScore returns an identity's trust score, zero when it does not exist.
func (s *Service) TrustScore(ctx context.Context, tokenID uint64) uint64 {
	record, ok := s.Identity(ctx, tokenID)
	if !ok {
		return 0
	}
	return record.TrustScore
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
