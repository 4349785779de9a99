package consensus

import (
	"context"
	"testing"

	"github.com/ledgersim/ledgersim/domain/consensus/datastructures/blockstore"
	"github.com/ledgersim/ledgersim/domain/consensus/model"
	"github.com/ledgersim/ledgersim/domain/consensus/model/externalapi"
	"github.com/ledgersim/ledgersim/domain/consensus/processes/consensusstrategy"
	"github.com/ledgersim/ledgersim/domain/consensus/ruleerrors"
	"github.com/ledgersim/ledgersim/domain/consensus/utils/constants"
	"github.com/ledgersim/ledgersim/domain/consensus/utils/pow"
	"github.com/ledgersim/ledgersim/domain/consensus/utils/testutils"
	"github.com/ledgersim/ledgersim/domain/contracts/tokenledger"
	"github.com/ledgersim/ledgersim/domain/identity"
	"github.com/ledgersim/ledgersim/domain/wallet"
	"github.com/ledgersim/ledgersim/infrastructure/db/database/ldb"
	"github.com/pkg/errors"
)

const coin = constants.AtomsPerCoin

func setupConsensus(t *testing.T, testName string) (tc *Consensus, teardownFunc func()) {
	db, err := ldb.NewMemoryLevelDB()
	if err != nil {
		t.Fatalf("%s: NewMemoryLevelDB: %s", testName, err)
	}
	tc, err = New(testutils.Params(1), identity.NewProvider(), db)
	if err != nil {
		t.Fatalf("%s: New: %s", testName, err)
	}
	teardownFunc = func() {
		err := tc.Close()
		if err != nil {
			t.Fatalf("%s: Close: %s", testName, err)
		}
	}
	return tc, teardownFunc
}

func testWallets(t *testing.T, count int) []*wallet.Wallet {
	wallets := make([]*wallet.Wallet, count)
	for i := range wallets {
		var err error
		wallets[i], err = wallet.FromMnemonic(testutils.TestMnemonic, uint32(i))
		if err != nil {
			t.Fatalf("testWallets: FromMnemonic: %s", err)
		}
	}
	return wallets
}

func (s *Consensus) send(t *testing.T, from *wallet.Wallet, to externalapi.PublicIdentity, amount uint64) {
	tx, err := from.SendFunds(s.TransactionProcessor(), s.Ledger(), to, amount)
	if err != nil {
		t.Fatalf("send: SendFunds: %s", err)
	}
	err = s.SubmitTransaction(tx)
	if err != nil {
		t.Fatalf("send: SubmitTransaction: %s", err)
	}
}

func (s *Consensus) mine(t *testing.T, strategy model.ConsensusStrategy) *externalapi.DomainBlock {
	block, err := s.MineNextBlock(context.Background(), strategy)
	if err != nil {
		t.Fatalf("mine: MineNextBlock(%s): %s", strategy.Name(), err)
	}
	return block
}

func TestScenario(t *testing.T) {
	tc, teardownFunc := setupConsensus(t, "TestScenario")
	defer teardownFunc()

	wallets := testWallets(t, 3)
	coinbase, alice, bob := wallets[0], wallets[1], wallets[2]

	err := tc.SubmitTransaction(&externalapi.DomainTransaction{})
	if !errors.Is(err, ruleerrors.ErrNoGenesis) {
		t.Fatalf("TestScenario: Expected ErrNoGenesis before genesis, found %v", err)
	}

	genesis, err := tc.CreateGenesis(context.Background(), coinbase.Identity(), 1000*coin, alice.Identity())
	if err != nil {
		t.Fatalf("TestScenario: CreateGenesis: %s", err)
	}
	if genesis.Header.Producer.Kind != externalapi.ProducerKindProofOfWork ||
		!pow.CheckProofOfWork(genesis.Hash, tc.Params().Difficulty) {
		t.Fatalf("TestScenario: Expected the genesis block to be mined, found stamp %+v and hash %s",
			genesis.Header.Producer, genesis.Hash)
	}
	_, err = tc.CreateGenesis(context.Background(), coinbase.Identity(), 1000*coin, alice.Identity())
	if !errors.Is(err, ruleerrors.ErrGenesisAlreadyExists) {
		t.Fatalf("TestScenario: Expected ErrGenesisAlreadyExists, found %v", err)
	}

	tc.send(t, alice, bob.Identity(), 40*coin)
	powBlock := tc.mine(t, consensusstrategy.NewProofOfWork(tc.Params()))
	if !powBlock.Header.PreviousHash.Equal(genesis.Hash) {
		t.Fatalf("TestScenario: Expected the first block to extend genesis")
	}
	if alice.Balance(tc.Ledger()) != 960*coin || bob.Balance(tc.Ledger()) != 40*coin {
		t.Fatalf("TestScenario: Expected balances 960 and 40, found %d and %d",
			tc.BalanceOf(alice.Identity()), tc.BalanceOf(bob.Identity()))
	}

	stakeManager := tc.StakeManager()
	err = stakeManager.Stake(alice.Identity(), 100*coin)
	if err != nil {
		t.Fatalf("TestScenario: Stake: %s", err)
	}
	err = stakeManager.Stake(bob.Identity(), 50*coin)
	if !errors.Is(err, ruleerrors.ErrInsufficientBalance) {
		t.Fatalf("TestScenario: Expected ErrInsufficientBalance, found %v", err)
	}

	posBlock := tc.mine(t, consensusstrategy.NewProofOfStake(stakeManager,
		[]externalapi.PublicIdentity{alice.Identity(), bob.Identity()}))
	if posBlock.Header.Producer.Identity != alice.Identity() {
		t.Fatalf("TestScenario: Expected alice to produce the proof-of-stake block")
	}

	// Spends the change minted by staking
	tc.send(t, alice, bob.Identity(), 10*coin)
	stakeManager.RegisterDelegate(alice.Identity())
	stakeManager.RegisterDelegate(bob.Identity())
	err = stakeManager.Vote(alice.Identity(), alice.Identity(), 30)
	if err != nil {
		t.Fatalf("TestScenario: Vote: %s", err)
	}
	dposBlock := tc.mine(t, consensusstrategy.NewDelegatedProofOfStake(stakeManager, tc.Params().DelegateCount))
	if dposBlock.Header.Producer.Identity != alice.Identity() {
		t.Fatalf("TestScenario: Expected alice to produce the delegated proof-of-stake block")
	}

	token := tokenledger.Deploy(tc.Contracts(), alice.Identity(), "DPoS Coin", "DPOS", 10000)
	err = token.Transfer(alice.Identity(), bob.Identity(), 250)
	if err != nil {
		t.Fatalf("TestScenario: Transfer: %s", err)
	}
	call, err := alice.CallContract(tc.TransactionProcessor(), token.Address(), bob.Identity(), 250)
	if err != nil {
		t.Fatalf("TestScenario: CallContract: %s", err)
	}
	err = tc.SubmitTransaction(call)
	if err != nil {
		t.Fatalf("TestScenario: SubmitTransaction(contract call): %s", err)
	}
	contractBlock := tc.mine(t, consensusstrategy.NewProofOfWork(tc.Params()))
	if token.BalanceOf(alice.Identity()) != 9500 || token.BalanceOf(bob.Identity()) != 500 {
		t.Fatalf("TestScenario: Expected token balances 9500 and 500, found %d and %d",
			token.BalanceOf(alice.Identity()), token.BalanceOf(bob.Identity()))
	}

	err = tc.ValidateChain()
	if err != nil {
		t.Fatalf("TestScenario: ValidateChain: %s", err)
	}

	blocks, err := tc.Blocks()
	if err != nil {
		t.Fatalf("TestScenario: Blocks: %s", err)
	}
	if len(blocks) != 5 || !blocks[3].Equal(dposBlock) || !blocks[4].Equal(contractBlock) ||
		!tc.Tip().Equal(contractBlock) {
		t.Fatalf("TestScenario: Expected a chain of 5 blocks ending with the contract call block")
	}
	stored, err := tc.BlockByHash(powBlock.Hash)
	if err != nil {
		t.Fatalf("TestScenario: BlockByHash: %s", err)
	}
	if !stored.Equal(powBlock) {
		t.Fatalf("TestScenario: Expected BlockByHash to return the proof-of-work block")
	}
	// A store without a cache reads the block back from the database
	uncachedStore, err := blockstore.New(tc.db, 0)
	if err != nil {
		t.Fatalf("TestScenario: blockstore.New: %s", err)
	}
	stored, err = uncachedStore.Block(contractBlock.Hash)
	if err != nil {
		t.Fatalf("TestScenario: Block: %s", err)
	}
	if !stored.Equal(contractBlock) || len(stored.Transactions) != 1 || !stored.Transactions[0].IsContractCall() ||
		!stored.Transactions[0].Payload.ContractAddress.Equal(token.Address()) {
		t.Fatalf("TestScenario: Expected the stored block to carry the contract call to %s", token.Address())
	}
	if tc.BalanceOf(alice.Identity()) != 850*coin || tc.BalanceOf(bob.Identity()) != 50*coin {
		t.Fatalf("TestScenario: Expected balances 850 and 50, found %d and %d",
			tc.BalanceOf(alice.Identity()), tc.BalanceOf(bob.Identity()))
	}
}

func TestMineNextBlockRetriesAfterFailure(t *testing.T) {
	tc, teardownFunc := setupConsensus(t, "TestMineNextBlockRetriesAfterFailure")
	defer teardownFunc()

	wallets := testWallets(t, 2)
	_, err := tc.CreateGenesis(context.Background(), wallets[0].Identity(), 1000*coin, wallets[1].Identity())
	if err != nil {
		t.Fatalf("TestMineNextBlockRetriesAfterFailure: CreateGenesis: %s", err)
	}
	tc.send(t, wallets[1], wallets[0].Identity(), 5*coin)

	_, err = tc.MineNextBlock(context.Background(), consensusstrategy.NewProofOfStake(tc.StakeManager(), nil))
	if !errors.Is(err, ruleerrors.ErrNoEligibleValidator) {
		t.Fatalf("TestMineNextBlockRetriesAfterFailure: Expected ErrNoEligibleValidator, found %v", err)
	}
	if !tc.Tip().IsGenesis() {
		t.Fatalf("TestMineNextBlockRetriesAfterFailure: Expected a failed stamp to leave the chain unchanged")
	}

	block := tc.mine(t, consensusstrategy.NewProofOfWork(tc.Params()))
	if len(block.Transactions) != 1 {
		t.Fatalf("TestMineNextBlockRetriesAfterFailure: Expected the retried block to keep its transaction")
	}
	err = tc.ValidateChain()
	if err != nil {
		t.Fatalf("TestMineNextBlockRetriesAfterFailure: ValidateChain: %s", err)
	}
}
