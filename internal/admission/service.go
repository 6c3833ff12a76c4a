// Package admission implements the gate every mutating ledger operation must
// pass before touching domain state: the global pause switch and the
// per-caller rate limiter.
package admission

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"trustledger/internal/audit"
	"trustledger/internal/domain"
	"trustledger/internal/policy"
	"trustledger/internal/storage"
	"trustledger/pkg/chain"
	dErrors "trustledger/pkg/domain-errors"
	"trustledger/pkg/platform/tx"
	"trustledger/pkg/safemath"
)

var rejections = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "trustledger_admission_rejections_total",
	Help: "Operations rejected by admission control, by reason",
}, []string{"reason"})

// StateStore persists per-caller rate-limit state.
type StateStore interface {
	Find(ctx context.Context, caller chain.Principal) (domain.RateLimitState, error)
	Save(ctx context.Context, state domain.RateLimitState) error
}

type Service struct {
	globals    storage.GlobalStore
	limits     StateStore
	blocks     chain.BlockSource
	serializer *tx.Serializer
	audit      audit.Publisher
	logger     *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher audit.Publisher) Option {
	return func(s *Service) {
		s.audit = publisher
	}
}

func New(globals storage.GlobalStore, limits StateStore, blocks chain.BlockSource, serializer *tx.Serializer, opts ...Option) *Service {
	svc := &Service{
		globals:    globals,
		limits:     limits,
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

// Guard rejects the operation when the ledger is paused. It is called by other
// services inside their own serialized section and therefore takes no lock.
func (s *Service) Guard(ctx context.Context) error {
	global, err := s.globals.Get(ctx)
	if err != nil {
		return fmt.Errorf("load global state: %w", err)
	}
	if global.Paused {
		rejections.WithLabelValues("paused").Inc()
		return dErrors.New(dErrors.CodeContractPaused, "ledger is paused")
	}
	return nil
}

// GuardRateLimited applies the pause check and then the rate-limit policy for
// the caller, consuming quota on admission.
//
// A caller is admitted when the window has elapsed since its last rate-limited
// operation, or when its operation counter is under the per-block quota. The
// window branch deliberately does not clear the counter: a caller whose
// counter is saturated earns exactly one admission per elapsed window, and the
// counter keeps growing.
func (s *Service) GuardRateLimited(ctx context.Context, caller chain.Principal) error {
	if err := s.Guard(ctx); err != nil {
		return err
	}

	current := s.blocks.Height()
	state, err := s.limits.Find(ctx, caller)
	if errors.Is(err, storage.ErrNotFound) {
		state = domain.RateLimitState{Caller: caller}
	} else if err != nil {
		return fmt.Errorf("load rate limit state: %w", err)
	}

	windowElapsed := current-state.LastBlock >= policy.RateLimitWindowBlocks
	if !windowElapsed && state.OpsInBlock >= policy.MaxOpsPerBlock {
		rejections.WithLabelValues("rate_limited").Inc()
		return dErrors.New(dErrors.CodeRateLimitExceeded, "operation quota exhausted for caller "+caller.String())
	}

	ops, err := safemath.Add(state.OpsInBlock, 1)
	if err != nil {
		return err
	}
	state.LastBlock = current
	state.OpsInBlock = ops
	if err := s.limits.Save(ctx, state); err != nil {
		return fmt.Errorf("save rate limit state: %w", err)
	}
	return nil
}

// Pause sets the global pause flag. Only the contract owner may toggle it;
// toggling has no side effect besides the flag.
func (s *Service) Pause(ctx context.Context, caller chain.Principal) error {
	return s.setPaused(ctx, caller, true)
}

// Unpause clears the global pause flag.
func (s *Service) Unpause(ctx context.Context, caller chain.Principal) error {
	return s.setPaused(ctx, caller, false)
}

func (s *Service) setPaused(ctx context.Context, caller chain.Principal, paused bool) error {
	return s.serializer.Do(ctx, func() error {
		global, err := s.globals.Get(ctx)
		if err != nil {
			return fmt.Errorf("load global state: %w", err)
		}
		if caller != global.ContractOwner {
			return dErrors.New(dErrors.CodeNotAuthorized, "only the contract owner may toggle the pause flag")
		}
		global.Paused = paused
		if err := s.globals.Save(ctx, global); err != nil {
			return fmt.Errorf("save global state: %w", err)
		}
		s.logger.InfoContext(ctx, "pause flag changed", "paused", paused, "caller", caller)

		operation := audit.OpPause
		if !paused {
			operation = audit.OpUnpause
		}
		event := audit.Event{Operation: operation, Caller: caller, Block: s.blocks.Height()}
		if emitErr := s.audit.Emit(ctx, event); emitErr != nil {
			s.logger.WarnContext(ctx, "audit emit failed", "operation", operation, "error", emitErr)
		}
		return nil
	})
}

// IsPaused reports the pause flag. Reads never fail; store errors read as
// unpaused and are logged.
func (s *Service) IsPaused(ctx context.Context) bool {
	global, err := s.globals.Get(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "load global state", "error", err)
		return false
	}
	return global.Paused
}

// RateLimitState returns the caller's current admission state, zero-valued
// when the caller has never performed a rate-limited operation.
func (s *Service) RateLimitState(ctx context.Context, caller chain.Principal) domain.RateLimitState {
	state, err := s.limits.Find(ctx, caller)
	if err != nil {
		return domain.RateLimitState{Caller: caller}
	}
	return state
}
