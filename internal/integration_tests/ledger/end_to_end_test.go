package ledger_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"trustledger/internal/admission"
	admissionstore "trustledger/internal/admission/store"
	"trustledger/internal/assets"
	"trustledger/internal/attestation"
	"trustledger/internal/attribute"
	"trustledger/internal/audit"
	"trustledger/internal/identity"
	"trustledger/internal/nft"
	"trustledger/internal/permission"
	"trustledger/internal/policy"
	"trustledger/internal/provider"
	"trustledger/internal/reputation"
	"trustledger/internal/storage"
	"trustledger/internal/zkproof"
	"trustledger/pkg/chain"
	"trustledger/pkg/platform/tx"
)

const (
	contractOwner = chain.Principal("deployer")
	alice         = chain.Principal("alice")
	prov          = chain.Principal("prov")
	custody       = chain.Principal("custody")
)

// LedgerSuite exercises the whole trust ledger through its services with
// purely in-memory storage, the way a single node would run it.
type LedgerSuite struct {
	suite.Suite
	ctx          context.Context
	blocks       *chain.ManualBlockSource
	journal      *audit.MemoryJournal
	ledger       *assets.MemoryLedger
	admission    *admission.Service
	identities   *identity.Service
	attributes   *attribute.Service
	providers    *provider.Service
	attestations *attestation.Service
	reputation   *reputation.Service
	permissions  *permission.Service
	proofs       *zkproof.Service
}

func TestLedgerSuite(t *testing.T) {
	suite.Run(t, new(LedgerSuite))
}

func (s *LedgerSuite) SetupTest() {
	s.ctx = context.Background()
	s.blocks = chain.NewManualBlockSource(1)
	s.journal = audit.NewMemoryJournal()
	s.ledger = assets.NewMemoryLedger()

	globals := storage.NewInMemoryGlobalStore(contractOwner, "https://ledger.example/id/")
	serializer := tx.NewSerializer()
	identityStore := storage.NewInMemoryIdentityStore()
	attributeStore := storage.NewInMemoryAttributeStore()
	providerStore := storage.NewInMemoryProviderStore()
	attestationStore := storage.NewInMemoryAttestationStore()
	revocationStore := storage.NewInMemoryRevocationStore()

	s.admission = admission.New(globals, admissionstore.NewInMemoryStore(), s.blocks, serializer,
		admission.WithAuditPublisher(s.journal))
	s.identities = identity.New(globals, identityStore, nft.NewMemoryRegistry(), s.admission, s.blocks, serializer,
		identity.WithAuditPublisher(s.journal))
	s.attributes = attribute.New(identityStore, attributeStore, s.admission, s.blocks, serializer,
		attribute.WithAuditPublisher(s.journal))
	s.providers = provider.New(providerStore, storage.NewInMemoryStakeStore(), s.ledger, custody, s.admission, s.blocks, serializer,
		provider.WithAuditPublisher(s.journal))
	s.attestations = attestation.New(attestationStore, revocationStore, attributeStore, providerStore, s.admission, s.blocks, serializer,
		attestation.WithAuditPublisher(s.journal))
	s.reputation = reputation.New(providerStore, storage.NewInMemoryDecayTrackerStore(), s.admission, s.blocks, serializer,
		reputation.WithAuditPublisher(s.journal))
	s.permissions = permission.New(identityStore, storage.NewInMemoryPermissionStore(), s.admission, s.blocks, serializer,
		permission.WithAuditPublisher(s.journal))
	s.proofs = zkproof.New(identityStore, storage.NewInMemoryZkProofStore(), s.blocks, serializer,
		zkproof.WithAuditPublisher(s.journal))
}

// TestAttestationLifecycle walks the canonical flow: provider registration,
// identity mint, attribute commitment, attestation, and advisory revocation.
func (s *LedgerSuite) TestAttestationLifecycle() {
	s.ledger.Credit(prov, policy.MinStakeAmount)
	s.Require().NoError(s.providers.Register(s.ctx, prov, policy.MinStakeAmount))
	s.Equal(uint64(0), s.ledger.Balance(prov))
	s.Equal(uint64(policy.MinStakeAmount), s.ledger.Balance(custody))

	tokenID, err := s.identities.Mint(s.ctx, alice, alice, "ipfs://alice")
	s.Require().NoError(err)
	s.Equal(uint64(1), tokenID)

	commitment := chain.Hash32{0x01}
	proofHash := chain.Hash32{0x02}
	s.Require().NoError(s.attributes.Add(s.ctx, alice, tokenID, "email", commitment, proofHash, false))

	attestationID := chain.Hash32{0xaa}
	s.Require().NoError(s.attestations.Create(s.ctx, prov, tokenID, "email", attestationID, 90))

	attr, ok := s.attributes.Attribute(s.ctx, tokenID, "email")
	s.Require().True(ok)
	s.Equal(uint64(1), attr.AttestationCount)

	s.Require().NoError(s.attestations.Revoke(s.ctx, prov, attestationID, "credential withdrawn"))

	// Revocation is advisory: the side record exists, but the attestation and
	// the attribute counter are untouched.
	s.True(s.attestations.IsRevoked(s.ctx, attestationID))
	record, ok := s.attestations.Attestation(s.ctx, attestationID)
	s.Require().True(ok)
	s.False(record.IsVerified)
	s.Equal(uint64(90), record.ConfidenceScore)

	attr, ok = s.attributes.Attribute(s.ctx, tokenID, "email")
	s.Require().True(ok)
	s.Equal(uint64(1), attr.AttestationCount)

	operations := make([]string, 0, len(s.journal.Events()))
	for _, event := range s.journal.Events() {
		operations = append(operations, event.Operation)
	}
	s.Equal([]string{
		audit.OpRegisterProvider,
		audit.OpMint,
		audit.OpAddAttribute,
		audit.OpCreateAttestation,
		audit.OpRevokeAttestation,
	}, operations)
}

// TestFullSurface drives every remaining operation once to pin the cross-module
// behavior: transfer, staking, batches, decay, permissions, proofs, and pause.
func (s *LedgerSuite) TestFullSurface() {
	s.ledger.Credit(prov, 3*policy.MinStakeAmount)
	s.Require().NoError(s.providers.Register(s.ctx, prov, policy.MinStakeAmount))

	tokenID, err := s.identities.Mint(s.ctx, alice, alice, "ipfs://alice")
	s.Require().NoError(err)
	s.Require().NoError(s.attributes.Add(s.ctx, alice, tokenID, "email", chain.Hash32{1}, chain.Hash32{2}, false))
	s.blocks.Advance(policy.RateLimitWindowBlocks)
	s.Require().NoError(s.attributes.Add(s.ctx, alice, tokenID, "age", chain.Hash32{3}, chain.Hash32{4}, true))

	s.Require().NoError(s.providers.StakeOnAttestation(s.ctx, prov, tokenID, policy.MinStakeAmount, 100))
	stake, ok := s.providers.Stake(s.ctx, prov, tokenID)
	s.Require().True(ok)
	s.Equal(s.blocks.Height()+100, stake.LockedUntil)

	written, err := s.attestations.CreateBatch(s.ctx, prov, []attestation.BatchEntry{
		{TokenID: tokenID, AttributeType: "email", AttestationID: chain.Hash32{0x10}, ConfidenceScore: 80},
		{TokenID: tokenID, AttributeType: "age", AttestationID: chain.Hash32{0x11}, ConfidenceScore: 70},
		{TokenID: tokenID, AttributeType: "missing", AttestationID: chain.Hash32{0x12}, ConfidenceScore: 60},
	})
	s.Require().NoError(err)
	s.Equal(uint64(2), written)

	s.Require().NoError(s.permissions.Grant(s.ctx, alice, tokenID, "wallet-app", []string{"email"}, 500))
	grant, ok := s.permissions.Permission(s.ctx, tokenID, "wallet-app")
	s.Require().True(ok)
	s.Equal([]string{"email"}, grant.AllowedAttributes)

	s.Require().NoError(s.proofs.Verify(s.ctx, "verifier", tokenID, chain.Hash32{0x20}, "age-over-18", nil, []byte{1}))

	s.Require().NoError(s.identities.Transfer(s.ctx, alice, alice, "bob", tokenID))
	newOwner, ok := s.identities.Owner(s.ctx, tokenID)
	s.Require().True(ok)
	s.Equal(chain.Principal("bob"), newOwner)

	s.blocks.Advance(policy.DecayPeriodBlocks)
	reputationAfter, err := s.reputation.ApplyDecay(s.ctx, "anyone", prov)
	s.Require().NoError(err)
	s.Equal(uint64(95), reputationAfter)

	s.Require().NoError(s.admission.Pause(s.ctx, contractOwner))
	_, err = s.identities.Mint(s.ctx, "carol", "carol", "ipfs://carol")
	s.Error(err)
	s.Require().NoError(s.admission.Unpause(s.ctx, contractOwner))
}
