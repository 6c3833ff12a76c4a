package permission_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"trustledger/internal/admission"
	admissionstore "trustledger/internal/admission/store"
	"trustledger/internal/identity"
	"trustledger/internal/nft"
	"trustledger/internal/permission"
	"trustledger/internal/storage"
	"trustledger/pkg/chain"
	dErrors "trustledger/pkg/domain-errors"
	"trustledger/pkg/platform/tx"
)

const owner = chain.Principal("deployer")

type PermissionSuite struct {
	suite.Suite
	ctx        context.Context
	blocks     *chain.ManualBlockSource
	admission  *admission.Service
	identities *identity.Service
	service    *permission.Service
	tokenID    uint64
}

func TestPermissionSuite(t *testing.T) {
	suite.Run(t, new(PermissionSuite))
}

func (s *PermissionSuite) SetupTest() {
	s.ctx = context.Background()
	s.blocks = chain.NewManualBlockSource(50)
	globals := storage.NewInMemoryGlobalStore(owner, "")
	serializer := tx.NewSerializer()
	identityStore := storage.NewInMemoryIdentityStore()
	s.admission = admission.New(globals, admissionstore.NewInMemoryStore(), s.blocks, serializer)
	s.identities = identity.New(globals, identityStore, nft.NewMemoryRegistry(), s.admission, s.blocks, serializer)
	s.service = permission.New(identityStore, storage.NewInMemoryPermissionStore(), s.admission, s.blocks, serializer)

	tokenID, err := s.identities.Mint(s.ctx, "alice", "alice", "ipfs://alice")
	s.Require().NoError(err)
	s.tokenID = tokenID
}

func (s *PermissionSuite) TestGrant() {
	err := s.service.Grant(s.ctx, "alice", s.tokenID, "wallet-app", []string{"email", "age"}, 500)
	s.Require().NoError(err)

	record, ok := s.service.Permission(s.ctx, s.tokenID, "wallet-app")
	s.Require().True(ok)
	s.Equal([]string{"email", "age"}, record.AllowedAttributes)
	s.Equal(uint64(50), record.GrantedAt)
	s.Equal(uint64(550), record.ExpiresAt)
	s.True(record.IsActive)
}

func (s *PermissionSuite) TestGrantValidation() {
	s.Run("unknown identity", func() {
		err := s.service.Grant(s.ctx, "alice", 99, "wallet-app", nil, 500)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidToken))
	})

	s.Run("non-owner rejected", func() {
		err := s.service.Grant(s.ctx, "bob", s.tokenID, "wallet-app", nil, 500)
		s.True(dErrors.HasCode(err, dErrors.CodeNotAuthorized))
	})

	s.Run("attribute list over limit", func() {
		oversized := make([]string, 11)
		for i := range oversized {
			oversized[i] = "attr"
		}
		err := s.service.Grant(s.ctx, "alice", s.tokenID, "wallet-app", oversized, 500)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("paused ledger rejected", func() {
		s.Require().NoError(s.admission.Pause(s.ctx, owner))
		defer func() { s.Require().NoError(s.admission.Unpause(s.ctx, owner)) }()
		err := s.service.Grant(s.ctx, "alice", s.tokenID, "wallet-app", nil, 500)
		s.True(dErrors.HasCode(err, dErrors.CodeContractPaused))
	})
}

func (s *PermissionSuite) TestRegrantReplaces() {
	s.Require().NoError(s.service.Grant(s.ctx, "alice", s.tokenID, "wallet-app", []string{"email"}, 100))
	s.Require().NoError(s.service.Grant(s.ctx, "alice", s.tokenID, "wallet-app", []string{"age"}, 200))

	record, ok := s.service.Permission(s.ctx, s.tokenID, "wallet-app")
	s.Require().True(ok)
	s.Equal([]string{"age"}, record.AllowedAttributes)
	s.Equal(uint64(250), record.ExpiresAt)
}

func (s *PermissionSuite) TestExpiredGrantStillReadable() {
	s.Require().NoError(s.service.Grant(s.ctx, "alice", s.tokenID, "wallet-app", []string{"email"}, 10))

	// The store never checks expiry; the grant reads back even long past it.
	s.blocks.Advance(1_000)
	record, ok := s.service.Permission(s.ctx, s.tokenID, "wallet-app")
	s.Require().True(ok)
	s.Less(record.ExpiresAt, s.blocks.Height())
}
