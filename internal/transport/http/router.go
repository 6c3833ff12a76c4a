// Package httptransport is the thin HTTP layer over the ledger services. It
// decodes requests, resolves the authenticated caller, and delegates; no
// business rules live here.
package httptransport

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"trustledger/internal/admission"
	"trustledger/internal/attestation"
	"trustledger/internal/attribute"
	"trustledger/internal/identity"
	"trustledger/internal/permission"
	"trustledger/internal/platform/middleware"
	"trustledger/internal/provider"
	"trustledger/internal/reputation"
	"trustledger/internal/transport/http/shared"
	"trustledger/internal/zkproof"
	"trustledger/pkg/chain"
	dErrors "trustledger/pkg/domain-errors"
)

// Services bundles the domain services the transport exposes.
type Services struct {
	Identity    *identity.Service
	Attribute   *attribute.Service
	Provider    *provider.Service
	Attestation *attestation.Service
	Reputation  *reputation.Service
	Permission  *permission.Service
	ZkProof     *zkproof.Service
	Admission   *admission.Service
}

type Handler struct {
	logger    *slog.Logger
	services  Services
	validator middleware.CallerValidator
	blocks    chain.BlockSource

	// manualBlocks is non-nil only when block height is host-driven, which
	// enables the admin block-advance endpoint.
	manualBlocks *chain.ManualBlockSource
}

type Option func(*Handler)

// WithManualBlocks exposes the admin endpoint that advances block height.
func WithManualBlocks(blocks *chain.ManualBlockSource) Option {
	return func(h *Handler) { h.manualBlocks = blocks }
}

func NewHandler(services Services, validator middleware.CallerValidator, blocks chain.BlockSource, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{
		logger:    logger,
		services:  services,
		validator: validator,
		blocks:    blocks,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// NewRouter wires every endpoint. Mutating routes require a bearer token;
// read accessors are public and never fail.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(h.logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(h.logger))

	r.Get("/healthz", h.handleHealthz)
	r.Get("/readyz", h.handleHealthz)
	r.Handle("/metrics", promhttp.Handler())

	// Read accessors.
	r.Get("/identities/last", h.handleLastTokenID)
	r.Get("/identities/{tokenID}", h.handleGetIdentity)
	r.Get("/identities/{tokenID}/owner", h.handleGetOwner)
	r.Get("/identities/{tokenID}/uri", h.handleGetTokenURI)
	r.Get("/identities/{tokenID}/trust-score", h.handleGetTrustScore)
	r.Get("/identities/{tokenID}/attributes/{attributeType}", h.handleGetAttribute)
	r.Get("/identities/{tokenID}/permissions/{dapp}", h.handleGetPermission)
	r.Get("/providers/{principal}", h.handleGetProvider)
	r.Get("/providers/{principal}/stakes/{tokenID}", h.handleGetStake)
	r.Get("/providers/{principal}/decay", h.handleGetDecayTracker)
	r.Get("/attestations/{attestationID}", h.handleGetAttestation)
	r.Get("/attestations/{attestationID}/revocation", h.handleGetRevocation)
	r.Get("/proofs/{proofID}", h.handleGetProof)
	r.Get("/ratelimit/{principal}", h.handleGetRateLimitState)
	r.Get("/admin/paused", h.handleGetPaused)
	r.Get("/admin/blocks", h.handleGetBlockHeight)

	// Mutating operations.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireCaller(h.validator, h.logger))
		r.Post("/identities", h.handleMint)
		r.Post("/identities/{tokenID}/transfer", h.handleTransfer)
		r.Post("/identities/{tokenID}/attributes", h.handleAddAttribute)
		r.Post("/identities/{tokenID}/permissions", h.handleGrantPermission)
		r.Post("/providers", h.handleRegisterProvider)
		r.Post("/providers/stakes", h.handleStakeOnAttestation)
		r.Post("/providers/{principal}/decay", h.handleApplyDecay)
		r.Post("/attestations", h.handleCreateAttestation)
		r.Post("/attestations/batch", h.handleBatchAttestations)
		r.Post("/attestations/{attestationID}/revoke", h.handleRevokeAttestation)
		r.Post("/proofs", h.handleVerifyProof)
		r.Post("/admin/pause", h.handlePause)
		r.Post("/admin/unpause", h.handleUnpause)
		r.Post("/admin/blocks/advance", h.handleAdvanceBlocks)
	})

	return r
}

func (h *Handler) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	shared.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// tokenIDParam parses the decimal token id path segment.
func tokenIDParam(r *http.Request) (uint64, error) {
	raw := chi.URLParam(r, "tokenID")
	tokenID, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "token id must be a decimal integer")
	}
	return tokenID, nil
}

// hashParam parses a 64-char hex path segment into a 32-byte hash.
func hashParam(r *http.Request, name string) (chain.Hash32, error) {
	return chain.ParseHash32(chi.URLParam(r, name))
}
