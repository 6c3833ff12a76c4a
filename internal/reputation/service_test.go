package reputation_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"trustledger/internal/admission"
	admissionstore "trustledger/internal/admission/store"
	"trustledger/internal/assets"
	"trustledger/internal/policy"
	"trustledger/internal/provider"
	"trustledger/internal/reputation"
	"trustledger/internal/storage"
	"trustledger/pkg/chain"
	dErrors "trustledger/pkg/domain-errors"
	"trustledger/pkg/platform/tx"
)

const (
	owner = chain.Principal("deployer")
	prov  = chain.Principal("prov")
)

type DecaySuite struct {
	suite.Suite
	ctx       context.Context
	blocks    *chain.ManualBlockSource
	providers *provider.Service
	service   *reputation.Service
}

func TestDecaySuite(t *testing.T) {
	suite.Run(t, new(DecaySuite))
}

func (s *DecaySuite) SetupTest() {
	s.ctx = context.Background()
	s.blocks = chain.NewManualBlockSource(policy.DecayPeriodBlocks)
	globals := storage.NewInMemoryGlobalStore(owner, "https://ledger.example/id/")
	serializer := tx.NewSerializer()
	adm := admission.New(globals, admissionstore.NewInMemoryStore(), s.blocks, serializer)
	providerStore := storage.NewInMemoryProviderStore()

	ledger := assets.NewMemoryLedger()
	ledger.Credit(prov, 10_000_000)
	s.providers = provider.New(providerStore, storage.NewInMemoryStakeStore(), ledger, "treasury", adm, s.blocks, serializer)
	s.service = reputation.New(providerStore, storage.NewInMemoryDecayTrackerStore(), adm, s.blocks, serializer)

	s.Require().NoError(s.providers.Register(s.ctx, prov, policy.MinStakeAmount))
}

func (s *DecaySuite) TestApplyDecay() {
	// First application: implicit last-decay block of zero, already due.
	newReputation, err := s.service.ApplyDecay(s.ctx, "anyone", prov)
	s.Require().NoError(err)
	s.Equal(uint64(95), newReputation)

	tracker, ok := s.service.Tracker(s.ctx, prov)
	s.Require().True(ok)
	s.Equal(uint64(policy.DecayPeriodBlocks), tracker.LastDecayBlock)
	s.Equal(uint64(5), tracker.DecayedAmount)
}

func (s *DecaySuite) TestNotDueWithinPeriod() {
	_, err := s.service.ApplyDecay(s.ctx, "anyone", prov)
	s.Require().NoError(err)

	s.blocks.Advance(policy.DecayPeriodBlocks - 1)
	_, err = s.service.ApplyDecay(s.ctx, "anyone", prov)
	s.True(dErrors.HasCode(err, dErrors.CodeNotAuthorized))

	s.blocks.Advance(1)
	newReputation, err := s.service.ApplyDecay(s.ctx, "anyone", prov)
	s.Require().NoError(err)
	s.Equal(uint64(91), newReputation) // 95 - floor(95*5/100)

	tracker, _ := s.service.Tracker(s.ctx, prov)
	s.Equal(uint64(9), tracker.DecayedAmount)
}

func (s *DecaySuite) TestUnknownProvider() {
	_, err := s.service.ApplyDecay(s.ctx, "anyone", "stranger")
	s.True(dErrors.HasCode(err, dErrors.CodeProviderNotRegistered))
}

func (s *DecaySuite) TestReputationBottomsOutAtZero() {
	record, _ := s.providers.Provider(s.ctx, prov)
	for i := 0; i < 200; i++ {
		reputationBefore := record.Reputation
		newReputation, err := s.service.ApplyDecay(s.ctx, "anyone", prov)
		s.Require().NoError(err)
		s.LessOrEqual(newReputation, reputationBefore)
		s.blocks.Advance(policy.DecayPeriodBlocks)
		record, _ = s.providers.Provider(s.ctx, prov)
	}
	// 5% of anything below 20 floors to zero, so reputation settles there
	// without ever underflowing.
	s.Less(record.Reputation, uint64(20))
}

func TestAdjusted(t *testing.T) {
	assert.Equal(t, uint64(101), reputation.Adjusted(100, true))
	assert.Equal(t, uint64(95), reputation.Adjusted(100, false))
	assert.Equal(t, uint64(0), reputation.Adjusted(3, false))
}
