// Package permission owns time-bounded disclosure grants from identity owners
// to third-party applications. The store hands back active grants as written;
// expiry is checked by readers against the current block, never by the store.
package permission

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
	identities  storage.IdentityStore
	permissions storage.PermissionStore
	admission   *admission.Service
	blocks      chain.BlockSource
	serializer  *tx.Serializer
	audit       audit.Publisher
	metrics     *metrics.Metrics
	logger      *slog.Logger
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
	permissions storage.PermissionStore,
	adm *admission.Service,
	blocks chain.BlockSource,
	serializer *tx.Serializer,
	opts ...Option,
) *Service {
	svc := &Service{
		identities:  identities,
		permissions: permissions,
		admission:   adm,
		blocks:      blocks,
		serializer:  serializer,
		audit:       audit.NopPublisher{},
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Grant writes a disclosure grant for a dApp. Only the identity's current
// owner may grant; a later grant for the same (token, dApp) pair replaces the
// earlier one.
func (s *Service) Grant(ctx context.Context, caller chain.Principal, tokenID uint64, dapp chain.Principal, allowedAttributes []string, duration uint64) error {
	err := s.serializer.Do(ctx, func() error {
		if err := s.admission.Guard(ctx); err != nil {
			return err
		}
		identity, err := s.identities.FindByTokenID(ctx, tokenID)
		if errors.Is(err, storage.ErrNotFound) {
			return dErrors.New(dErrors.CodeInvalidToken, "identity does not exist")
		} else if err != nil {
			return fmt.Errorf("load identity: %w", err)
		}
		if identity.Owner != caller {
			return dErrors.New(dErrors.CodeNotAuthorized, "only the identity owner may grant disclosure")
		}
		if len(allowedAttributes) > policy.MaxAllowedAttributes {
			return dErrors.New(dErrors.CodeInvalidInput, "too many attributes in grant")
		}

		now := s.blocks.Height()
		expiresAt, err := safemath.Add(now, duration)
		if err != nil {
			return err
		}
		record := domain.DappPermission{
			TokenID:           tokenID,
			Dapp:              dapp,
			AllowedAttributes: append([]string{}, allowedAttributes...),
			ExpiresAt:         expiresAt,
			GrantedAt:         now,
			IsActive:          true,
		}
		if err := s.permissions.Save(ctx, record); err != nil {
			return fmt.Errorf("save permission: %w", err)
		}
		return nil
	})
	s.finish(ctx, "permission:"+strconv.FormatUint(tokenID, 10)+":"+dapp.String(), caller, err)
	return err
}

// Permission returns the grant for a (token, dApp) pair. Inactive grants read
// as absent; expired-but-active grants are still returned, with the expiry
// comparison left to the caller.
func (s *Service) Permission(ctx context.Context, tokenID uint64, dapp chain.Principal) (domain.DappPermission, bool) {
	record, err := s.permissions.Find(ctx, domain.PermissionKey{TokenID: tokenID, Dapp: dapp})
	if err != nil || !record.IsActive {
		return domain.DappPermission{}, false
	}
	return record, true
}

func (s *Service) finish(ctx context.Context, entity string, caller chain.Principal, err error) {
	s.metrics.Observe(audit.OpGrantPermission, err)
	if err != nil {
		return
	}
	event := audit.Event{Operation: audit.OpGrantPermission, Caller: caller, Entity: entity, Block: s.blocks.Height()}
	if emitErr := s.audit.Emit(ctx, event); emitErr != nil {
		s.logger.WarnContext(ctx, "audit emit failed", "operation", audit.OpGrantPermission, "error", emitErr)
	}
}
