package identity_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"trustledger/internal/admission"
	admissionstore "trustledger/internal/admission/store"
	"trustledger/internal/audit"
	"trustledger/internal/identity"
	"trustledger/internal/nft"
	"trustledger/internal/policy"
	"trustledger/internal/storage"
	"trustledger/pkg/chain"
	dErrors "trustledger/pkg/domain-errors"
	"trustledger/pkg/platform/tx"
)

const (
	owner   = chain.Principal("deployer")
	baseURI = "https://ledger.example/id/"
)

type IdentitySuite struct {
	suite.Suite
	ctx       context.Context
	blocks    *chain.ManualBlockSource
	admission *admission.Service
	ownership *nft.MemoryRegistry
	journal   *audit.MemoryJournal
	service   *identity.Service
}

func TestIdentitySuite(t *testing.T) {
	suite.Run(t, new(IdentitySuite))
}

func (s *IdentitySuite) SetupTest() {
	s.ctx = context.Background()
	s.blocks = chain.NewManualBlockSource(1)
	globals := storage.NewInMemoryGlobalStore(owner, baseURI)
	serializer := tx.NewSerializer()
	s.admission = admission.New(globals, admissionstore.NewInMemoryStore(), s.blocks, serializer)
	s.ownership = nft.NewMemoryRegistry()
	s.journal = audit.NewMemoryJournal()
	s.service = identity.New(globals, storage.NewInMemoryIdentityStore(), s.ownership,
		s.admission, s.blocks, serializer,
		identity.WithAuditPublisher(s.journal))
}

func (s *IdentitySuite) TestMint() {
	s.Run("token ids increase from one", func() {
		first, err := s.service.Mint(s.ctx, "alice", "alice", "ipfs://alice")
		s.Require().NoError(err)
		s.Equal(uint64(1), first)

		second, err := s.service.Mint(s.ctx, "bob", "bob", "ipfs://bob")
		s.Require().NoError(err)
		s.Equal(uint64(2), second)

		s.Equal(uint64(2), s.service.LastTokenID(s.ctx))
	})

	s.Run("ownership relation mirrors the record", func() {
		nftOwner, ok := s.ownership.OwnerOf(s.ctx, 1)
		s.True(ok)
		s.Equal(chain.Principal("alice"), nftOwner)

		recordOwner, ok := s.service.Owner(s.ctx, 1)
		s.True(ok)
		s.Equal(nftOwner, recordOwner)
	})

	s.Run("self-mint only", func() {
		_, err := s.service.Mint(s.ctx, "alice", "bob", "ipfs://gift")
		s.True(dErrors.HasCode(err, dErrors.CodeNotAuthorized))
	})

	s.Run("empty metadata URI rejected", func() {
		_, err := s.service.Mint(s.ctx, "carol", "carol", "")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("audit trail records successful mints only", func() {
		events := s.journal.Events()
		s.Require().Len(events, 2)
		s.Equal(audit.OpMint, events[0].Operation)
		s.Equal("identity:1", events[0].Entity)
	})
}

func (s *IdentitySuite) TestMintRateLimited() {
	for i := 0; i < policy.MaxOpsPerBlock; i++ {
		_, err := s.service.Mint(s.ctx, "alice", "alice", "ipfs://meta")
		s.Require().NoError(err)
	}
	_, err := s.service.Mint(s.ctx, "alice", "alice", "ipfs://meta")
	s.True(dErrors.HasCode(err, dErrors.CodeRateLimitExceeded))

	s.blocks.Advance(policy.RateLimitWindowBlocks)
	_, err = s.service.Mint(s.ctx, "alice", "alice", "ipfs://meta")
	s.NoError(err)
}

func (s *IdentitySuite) TestMintPaused() {
	s.Require().NoError(s.admission.Pause(s.ctx, owner))
	_, err := s.service.Mint(s.ctx, "alice", "alice", "ipfs://meta")
	s.True(dErrors.HasCode(err, dErrors.CodeContractPaused))
}

func (s *IdentitySuite) TestTransfer() {
	tokenID, err := s.service.Mint(s.ctx, "alice", "alice", "ipfs://alice")
	s.Require().NoError(err)

	s.Run("only the owner transfers", func() {
		err := s.service.Transfer(s.ctx, "bob", "bob", "carol", tokenID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotAuthorized))

		err = s.service.Transfer(s.ctx, "bob", "alice", "carol", tokenID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotAuthorized))
	})

	s.Run("unknown token rejected", func() {
		err := s.service.Transfer(s.ctx, "alice", "alice", "bob", 99)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidToken))
	})

	s.Run("owner and relation move together", func() {
		s.Require().NoError(s.service.Transfer(s.ctx, "alice", "alice", "bob", tokenID))

		recordOwner, ok := s.service.Owner(s.ctx, tokenID)
		s.True(ok)
		s.Equal(chain.Principal("bob"), recordOwner)

		nftOwner, ok := s.ownership.OwnerOf(s.ctx, tokenID)
		s.True(ok)
		s.Equal(chain.Principal("bob"), nftOwner)
	})

	s.Run("paused ledger blocks transfers", func() {
		s.Require().NoError(s.admission.Pause(s.ctx, owner))
		err := s.service.Transfer(s.ctx, "bob", "bob", "carol", tokenID)
		s.True(dErrors.HasCode(err, dErrors.CodeContractPaused))
	})
}

func (s *IdentitySuite) TestReads() {
	tokenID, err := s.service.Mint(s.ctx, "alice", "alice", "ipfs://alice")
	s.Require().NoError(err)

	s.Equal(baseURI+"1", s.service.TokenURI(s.ctx, tokenID))
	s.Empty(s.service.TokenURI(s.ctx, 42))

	s.Zero(s.service.TrustScore(s.ctx, tokenID))
	s.Zero(s.service.TrustScore(s.ctx, 42))

	_, ok := s.service.Owner(s.ctx, 42)
	s.False(ok)
}
