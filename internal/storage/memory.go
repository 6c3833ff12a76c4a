package storage

import (
	"context"
	"sync"

	"trustledger/internal/domain"
	"trustledger/pkg/chain"
)

// In-memory stores back the ledger in tests and single-node deployments. They
// intentionally favor clarity over performance; nothing is ever deleted, only
// overwritten, matching the append/update-only data model.

type InMemoryGlobalStore struct {
	mu     sync.RWMutex
	global domain.Global
}

// NewInMemoryGlobalStore seeds the singleton with the deployment-time owner
// and base URI. The nonce starts at zero so the first minted token id is 1.
func NewInMemoryGlobalStore(owner chain.Principal, baseURI string) *InMemoryGlobalStore {
	return &InMemoryGlobalStore{global: domain.Global{ContractOwner: owner, BaseURI: baseURI}}
}

func (s *InMemoryGlobalStore) Get(_ context.Context) (domain.Global, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.global, nil
}

func (s *InMemoryGlobalStore) Save(_ context.Context, global domain.Global) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.global = global
	return nil
}

type InMemoryIdentityStore struct {
	mu         sync.RWMutex
	identities map[uint64]domain.Identity
}

func NewInMemoryIdentityStore() *InMemoryIdentityStore {
	return &InMemoryIdentityStore{identities: make(map[uint64]domain.Identity)}
}

func (s *InMemoryIdentityStore) Save(_ context.Context, identity domain.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identities[identity.TokenID] = identity
	return nil
}

func (s *InMemoryIdentityStore) FindByTokenID(_ context.Context, tokenID uint64) (domain.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if identity, ok := s.identities[tokenID]; ok {
		return identity, nil
	}
	return domain.Identity{}, ErrNotFound
}

type InMemoryAttributeStore struct {
	mu         sync.RWMutex
	attributes map[domain.AttributeKey]domain.Attribute
}

func NewInMemoryAttributeStore() *InMemoryAttributeStore {
	return &InMemoryAttributeStore{attributes: make(map[domain.AttributeKey]domain.Attribute)}
}

func (s *InMemoryAttributeStore) Save(_ context.Context, attribute domain.Attribute) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := domain.AttributeKey{TokenID: attribute.TokenID, AttributeType: attribute.AttributeType}
	s.attributes[key] = attribute
	return nil
}

func (s *InMemoryAttributeStore) Find(_ context.Context, key domain.AttributeKey) (domain.Attribute, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if attribute, ok := s.attributes[key]; ok {
		return attribute, nil
	}
	return domain.Attribute{}, ErrNotFound
}

type InMemoryProviderStore struct {
	mu        sync.RWMutex
	providers map[chain.Principal]domain.Provider
}

func NewInMemoryProviderStore() *InMemoryProviderStore {
	return &InMemoryProviderStore{providers: make(map[chain.Principal]domain.Provider)}
}

func (s *InMemoryProviderStore) Save(_ context.Context, provider domain.Provider) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.providers[provider.Principal] = provider
	return nil
}

func (s *InMemoryProviderStore) FindByPrincipal(_ context.Context, principal chain.Principal) (domain.Provider, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if provider, ok := s.providers[principal]; ok {
		return provider, nil
	}
	return domain.Provider{}, ErrNotFound
}

type InMemoryAttestationStore struct {
	mu           sync.RWMutex
	attestations map[chain.Hash32]domain.Attestation
}

func NewInMemoryAttestationStore() *InMemoryAttestationStore {
	return &InMemoryAttestationStore{attestations: make(map[chain.Hash32]domain.Attestation)}
}

func (s *InMemoryAttestationStore) Save(_ context.Context, attestation domain.Attestation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attestations[attestation.AttestationID] = attestation
	return nil
}

func (s *InMemoryAttestationStore) FindByID(_ context.Context, id chain.Hash32) (domain.Attestation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if attestation, ok := s.attestations[id]; ok {
		return attestation, nil
	}
	return domain.Attestation{}, ErrNotFound
}

type InMemoryRevocationStore struct {
	mu          sync.RWMutex
	revocations map[chain.Hash32]domain.RevokedAttestation
}

func NewInMemoryRevocationStore() *InMemoryRevocationStore {
	return &InMemoryRevocationStore{revocations: make(map[chain.Hash32]domain.RevokedAttestation)}
}

func (s *InMemoryRevocationStore) Save(_ context.Context, revocation domain.RevokedAttestation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revocations[revocation.AttestationID] = revocation
	return nil
}

func (s *InMemoryRevocationStore) FindByID(_ context.Context, id chain.Hash32) (domain.RevokedAttestation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if revocation, ok := s.revocations[id]; ok {
		return revocation, nil
	}
	return domain.RevokedAttestation{}, ErrNotFound
}

type InMemoryStakeStore struct {
	mu     sync.RWMutex
	stakes map[domain.StakeKey]domain.ReputationStake
}

func NewInMemoryStakeStore() *InMemoryStakeStore {
	return &InMemoryStakeStore{stakes: make(map[domain.StakeKey]domain.ReputationStake)}
}

func (s *InMemoryStakeStore) Save(_ context.Context, stake domain.ReputationStake) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := domain.StakeKey{Provider: stake.Provider, TokenID: stake.TokenID}
	s.stakes[key] = stake
	return nil
}

func (s *InMemoryStakeStore) Find(_ context.Context, key domain.StakeKey) (domain.ReputationStake, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if stake, ok := s.stakes[key]; ok {
		return stake, nil
	}
	return domain.ReputationStake{}, ErrNotFound
}

type InMemoryDecayTrackerStore struct {
	mu       sync.RWMutex
	trackers map[chain.Principal]domain.ReputationDecayTracker
}

func NewInMemoryDecayTrackerStore() *InMemoryDecayTrackerStore {
	return &InMemoryDecayTrackerStore{trackers: make(map[chain.Principal]domain.ReputationDecayTracker)}
}

func (s *InMemoryDecayTrackerStore) Save(_ context.Context, tracker domain.ReputationDecayTracker) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trackers[tracker.Provider] = tracker
	return nil
}

func (s *InMemoryDecayTrackerStore) FindByProvider(_ context.Context, provider chain.Principal) (domain.ReputationDecayTracker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if tracker, ok := s.trackers[provider]; ok {
		return tracker, nil
	}
	return domain.ReputationDecayTracker{}, ErrNotFound
}

type InMemoryPermissionStore struct {
	mu          sync.RWMutex
	permissions map[domain.PermissionKey]domain.DappPermission
}

func NewInMemoryPermissionStore() *InMemoryPermissionStore {
	return &InMemoryPermissionStore{permissions: make(map[domain.PermissionKey]domain.DappPermission)}
}

func (s *InMemoryPermissionStore) Save(_ context.Context, permission domain.DappPermission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := domain.PermissionKey{TokenID: permission.TokenID, Dapp: permission.Dapp}
	s.permissions[key] = permission
	return nil
}

func (s *InMemoryPermissionStore) Find(_ context.Context, key domain.PermissionKey) (domain.DappPermission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if permission, ok := s.permissions[key]; ok {
		return permission, nil
	}
	return domain.DappPermission{}, ErrNotFound
}

type InMemoryZkProofStore struct {
	mu     sync.RWMutex
	proofs map[chain.Hash32]domain.ZkProof
}

func NewInMemoryZkProofStore() *InMemoryZkProofStore {
	return &InMemoryZkProofStore{proofs: make(map[chain.Hash32]domain.ZkProof)}
}

func (s *InMemoryZkProofStore) Save(_ context.Context, proof domain.ZkProof) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.proofs[proof.ProofID] = proof
	return nil
}

func (s *InMemoryZkProofStore) FindByID(_ context.Context, id chain.Hash32) (domain.ZkProof, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if proof, ok := s.proofs[id]; ok {
		return proof, nil
	}
	return domain.ZkProof{}, ErrNotFound
}
