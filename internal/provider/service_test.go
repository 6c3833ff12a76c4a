package provider_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"trustledger/internal/admission"
	admissionstore "trustledger/internal/admission/store"
	"trustledger/internal/assets"
	"trustledger/internal/policy"
	"trustledger/internal/provider"
	"trustledger/internal/provider/mocks"
	"trustledger/internal/storage"
	"trustledger/pkg/chain"
	dErrors "trustledger/pkg/domain-errors"
	"trustledger/pkg/platform/tx"
)

const (
	owner   = chain.Principal("deployer")
	custody = chain.Principal("trustledger-treasury")
)

type ProviderSuite struct {
	suite.Suite
	ctx       context.Context
	blocks    *chain.ManualBlockSource
	admission *admission.Service
	ledger    *assets.MemoryLedger
	service   *provider.Service
}

func TestProviderSuite(t *testing.T) {
	suite.Run(t, new(ProviderSuite))
}

func (s *ProviderSuite) SetupTest() {
	s.ctx = context.Background()
	s.blocks = chain.NewManualBlockSource(10)
	globals := storage.NewInMemoryGlobalStore(owner, "https://ledger.example/id/")
	serializer := tx.NewSerializer()
	s.admission = admission.New(globals, admissionstore.NewInMemoryStore(), s.blocks, serializer)
	s.ledger = assets.NewMemoryLedger()
	s.ledger.Credit("prov", 10_000_000)
	s.service = provider.New(storage.NewInMemoryProviderStore(), storage.NewInMemoryStakeStore(),
		s.ledger, custody, s.admission, s.blocks, serializer)
}

func (s *ProviderSuite) TestRegister() {
	s.Require().NoError(s.service.Register(s.ctx, "prov", policy.MinStakeAmount))

	record, ok := s.service.Provider(s.ctx, "prov")
	s.Require().True(ok)
	s.Equal(uint64(policy.InitialReputation), record.Reputation)
	s.Equal(uint64(policy.MinStakeAmount), record.StakeAmount)
	s.True(record.IsActive)
	s.Equal(uint64(10), record.RegisteredAt)
	s.Zero(record.TotalAttestations)

	// Stake moved to custody atomically with the record.
	s.Equal(uint64(policy.MinStakeAmount), s.ledger.Balance(custody))
	s.Equal(uint64(10_000_000-policy.MinStakeAmount), s.ledger.Balance("prov"))
}

func (s *ProviderSuite) TestRegisterBelowMinimum() {
	err := s.service.Register(s.ctx, "prov", policy.MinStakeAmount-1)
	s.True(dErrors.HasCode(err, dErrors.CodeInsufficientStake))

	_, ok := s.service.Provider(s.ctx, "prov")
	s.False(ok)
	s.Zero(s.ledger.Balance(custody))
}

func (s *ProviderSuite) TestRegisterInsufficientBalance() {
	err := s.service.Register(s.ctx, "pauper", policy.MinStakeAmount)
	s.True(dErrors.HasCode(err, dErrors.CodeInsufficientStake))
	_, ok := s.service.Provider(s.ctx, "pauper")
	s.False(ok)
}

func (s *ProviderSuite) TestReRegistrationResetsState() {
	s.Require().NoError(s.service.Register(s.ctx, "prov", policy.MinStakeAmount))

	// Simulate accumulated history, then re-register.
	record, _ := s.service.Provider(s.ctx, "prov")
	record.TotalAttestations = 7
	record.Reputation = 40

	s.Require().NoError(s.service.Register(s.ctx, "prov", 2*policy.MinStakeAmount))
	fresh, ok := s.service.Provider(s.ctx, "prov")
	s.Require().True(ok)
	s.Equal(uint64(policy.InitialReputation), fresh.Reputation)
	s.Zero(fresh.TotalAttestations)
	s.Equal(uint64(2*policy.MinStakeAmount), fresh.StakeAmount)
}

func (s *ProviderSuite) TestRegisterPaused() {
	s.Require().NoError(s.admission.Pause(s.ctx, owner))
	err := s.service.Register(s.ctx, "prov", policy.MinStakeAmount)
	s.True(dErrors.HasCode(err, dErrors.CodeContractPaused))
}

func (s *ProviderSuite) TestStakeOnAttestation() {
	s.Require().NoError(s.service.Register(s.ctx, "prov", policy.MinStakeAmount))

	s.Run("requires registration", func() {
		err := s.service.StakeOnAttestation(s.ctx, "stranger", 1, policy.MinStakeAmount, 100)
		s.True(dErrors.HasCode(err, dErrors.CodeProviderNotRegistered))
	})

	s.Run("requires minimum stake", func() {
		err := s.service.StakeOnAttestation(s.ctx, "prov", 1, policy.MinStakeAmount-1, 100)
		s.True(dErrors.HasCode(err, dErrors.CodeInsufficientStake))
	})

	s.Run("locks until current block plus duration", func() {
		s.Require().NoError(s.service.StakeOnAttestation(s.ctx, "prov", 1, policy.MinStakeAmount, 144))
		stake, ok := s.service.Stake(s.ctx, "prov", 1)
		s.Require().True(ok)
		s.Equal(uint64(10+144), stake.LockedUntil)
		s.False(stake.IsSlashed)
	})
}

// The escrow port is exercised against a mock to pin down the exact transfer
// the registry performs.
func (s *ProviderSuite) TestEscrowTransferShape() {
	ctrl := gomock.NewController(s.T())
	ledger := mocks.NewMockAssetLedger(ctrl)
	globals := storage.NewInMemoryGlobalStore(owner, "https://ledger.example/id/")
	serializer := tx.NewSerializer()
	adm := admission.New(globals, admissionstore.NewInMemoryStore(), s.blocks, serializer)
	service := provider.New(storage.NewInMemoryProviderStore(), storage.NewInMemoryStakeStore(),
		ledger, custody, adm, s.blocks, serializer)

	ledger.EXPECT().
		Transfer(gomock.Any(), uint64(policy.MinStakeAmount), chain.Principal("prov"), custody).
		Return(nil)

	s.Require().NoError(service.Register(s.ctx, "prov", policy.MinStakeAmount))
}
