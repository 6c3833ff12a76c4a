package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"trustledger/internal/domain"
	"trustledger/pkg/chain"
)

type MemoryStoreSuite struct {
	suite.Suite
	ctx context.Context
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) SetupTest() {
	s.ctx = context.Background()
}

func (s *MemoryStoreSuite) TestGlobalStoreSeed() {
	store := NewInMemoryGlobalStore("deployer", "https://ledger.example/id/")
	global, err := store.Get(s.ctx)
	s.Require().NoError(err)
	s.Equal(chain.Principal("deployer"), global.ContractOwner)
	s.Equal("https://ledger.example/id/", global.BaseURI)
	s.Zero(global.TokenIDNonce)
	s.False(global.Paused)

	global.TokenIDNonce = 1
	global.Paused = true
	s.Require().NoError(store.Save(s.ctx, global))

	reread, err := store.Get(s.ctx)
	s.Require().NoError(err)
	s.Equal(uint64(1), reread.TokenIDNonce)
	s.True(reread.Paused)
}

func (s *MemoryStoreSuite) TestIdentityStore() {
	store := NewInMemoryIdentityStore()

	_, err := store.FindByTokenID(s.ctx, 1)
	s.ErrorIs(err, ErrNotFound)

	identity := domain.Identity{TokenID: 1, Owner: "alice", IsActive: true}
	s.Require().NoError(store.Save(s.ctx, identity))

	found, err := store.FindByTokenID(s.ctx, 1)
	s.Require().NoError(err)
	s.Equal(identity, found)

	// Wholesale replacement, not field merge.
	identity.Owner = "bob"
	identity.AttributeCount = 3
	s.Require().NoError(store.Save(s.ctx, identity))
	found, err = store.FindByTokenID(s.ctx, 1)
	s.Require().NoError(err)
	s.Equal(chain.Principal("bob"), found.Owner)
	s.Equal(uint64(3), found.AttributeCount)
}

func (s *MemoryStoreSuite) TestAttributeStoreCompositeKey() {
	store := NewInMemoryAttributeStore()
	email := domain.Attribute{TokenID: 1, AttributeType: "email", IsPublic: true}
	phone := domain.Attribute{TokenID: 1, AttributeType: "phone"}
	s.Require().NoError(store.Save(s.ctx, email))
	s.Require().NoError(store.Save(s.ctx, phone))

	found, err := store.Find(s.ctx, domain.AttributeKey{TokenID: 1, AttributeType: "email"})
	s.Require().NoError(err)
	s.True(found.IsPublic)

	_, err = store.Find(s.ctx, domain.AttributeKey{TokenID: 2, AttributeType: "email"})
	s.ErrorIs(err, ErrNotFound)
}

func (s *MemoryStoreSuite) TestRevocationOverwrite() {
	store := NewInMemoryRevocationStore()
	id := chain.Hash32{1}
	s.Require().NoError(store.Save(s.ctx, domain.RevokedAttestation{AttestationID: id, RevokedAt: 5, Reason: "typo"}))
	s.Require().NoError(store.Save(s.ctx, domain.RevokedAttestation{AttestationID: id, RevokedAt: 9, Reason: "fraud"}))

	revocation, err := store.FindByID(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(uint64(9), revocation.RevokedAt)
	s.Equal("fraud", revocation.Reason)
}

func (s *MemoryStoreSuite) TestStakeStoreKey() {
	store := NewInMemoryStakeStore()
	s.Require().NoError(store.Save(s.ctx, domain.ReputationStake{Provider: "prov", TokenID: 7, StakeAmount: 2_000_000}))

	stake, err := store.Find(s.ctx, domain.StakeKey{Provider: "prov", TokenID: 7})
	s.Require().NoError(err)
	s.Equal(uint64(2_000_000), stake.StakeAmount)

	_, err = store.Find(s.ctx, domain.StakeKey{Provider: "prov", TokenID: 8})
	s.ErrorIs(err, ErrNotFound)
}
