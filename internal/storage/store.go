package storage

import (
	"context"

	"trustledger/internal/domain"
	"trustledger/pkg/chain"
)

// Stores are interface-driven so the ledger services stay testable and the
// backing key-value store can be swapped without rewiring business code. Each
// store owns exactly one map; records are replaced wholesale on Save.

type GlobalStore interface {
	Get(ctx context.Context) (domain.Global, error)
	Save(ctx context.Context, global domain.Global) error
}

type IdentityStore interface {
	Save(ctx context.Context, identity domain.Identity) error
	FindByTokenID(ctx context.Context, tokenID uint64) (domain.Identity, error)
}

type AttributeStore interface {
	Save(ctx context.Context, attribute domain.Attribute) error
	Find(ctx context.Context, key domain.AttributeKey) (domain.Attribute, error)
}

type ProviderStore interface {
	Save(ctx context.Context, provider domain.Provider) error
	FindByPrincipal(ctx context.Context, principal chain.Principal) (domain.Provider, error)
}

type AttestationStore interface {
	Save(ctx context.Context, attestation domain.Attestation) error
	FindByID(ctx context.Context, id chain.Hash32) (domain.Attestation, error)
}

type RevocationStore interface {
	Save(ctx context.Context, revocation domain.RevokedAttestation) error
	FindByID(ctx context.Context, id chain.Hash32) (domain.RevokedAttestation, error)
}

type StakeStore interface {
	Save(ctx context.Context, stake domain.ReputationStake) error
	Find(ctx context.Context, key domain.StakeKey) (domain.ReputationStake, error)
}

type DecayTrackerStore interface {
	Save(ctx context.Context, tracker domain.ReputationDecayTracker) error
	FindByProvider(ctx context.Context, provider chain.Principal) (domain.ReputationDecayTracker, error)
}

type PermissionStore interface {
	Save(ctx context.Context, permission domain.DappPermission) error
	Find(ctx context.Context, key domain.PermissionKey) (domain.DappPermission, error)
}

type ZkProofStore interface {
	Save(ctx context.Context, proof domain.ZkProof) error
	FindByID(ctx context.Context, id chain.Hash32) (domain.ZkProof, error)
}
