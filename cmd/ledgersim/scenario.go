package main

import (
	"context"

	"github.com/ledgersim/ledgersim/domain/consensus"
	"github.com/ledgersim/ledgersim/domain/consensus/model"
	"github.com/ledgersim/ledgersim/domain/consensus/model/externalapi"
	"github.com/ledgersim/ledgersim/domain/consensus/processes/consensusstrategy"
	"github.com/ledgersim/ledgersim/domain/consensus/utils/constants"
	"github.com/ledgersim/ledgersim/domain/contracts/tokenledger"
	"github.com/ledgersim/ledgersim/domain/identity"
	"github.com/ledgersim/ledgersim/domain/wallet"
	"github.com/ledgersim/ledgersim/infrastructure/config"
	"github.com/ledgersim/ledgersim/infrastructure/db/database/ldb"
	"github.com/pkg/errors"
	"github.com/pterm/pterm"
)

const coin = constants.AtomsPerCoin

type scenario struct {
	ctx       context.Context
	cfg       *config.Config
	consensus *consensus.Consensus

	coinbase *wallet.Wallet
	alice    *wallet.Wallet
	bob      *wallet.Wallet
	token    *tokenledger.TokenLedger
}

func runScenario(ctx context.Context, cfg *config.Config) error {
	db, err := ldb.NewMemoryLevelDB()
	if err != nil {
		return err
	}
	c, err := consensus.New(cfg.Params, identity.NewProvider(), db)
	if err != nil {
		return err
	}
	defer func() {
		err := c.Close()
		if err != nil {
			log.Errorf("Failed closing the block database: %s", err)
		}
	}()

	s := &scenario{ctx: ctx, cfg: cfg, consensus: c}
	pterm.DefaultHeader.WithFullWidth().Println("ledgersim")

	steps := []func() error{
		s.createWallets,
		s.createGenesis,
		s.proofOfWork,
		s.proofOfStake,
		s.delegatedProofOfStake,
		s.tokenContract,
		s.validateChain,
	}
	for _, step := range steps {
		err := step()
		if err != nil {
			return err
		}
	}

	return s.printFinalReport()
}

func (s *scenario) createWallets() error {
	pterm.DefaultSection.Println("Wallets")

	wallets := make([]*wallet.Wallet, 3)
	for i := range wallets {
		var err error
		if s.cfg.Mnemonic != "" {
			wallets[i], err = wallet.FromMnemonic(s.cfg.Mnemonic, uint32(i))
		} else {
			wallets[i], err = wallet.New(identity.NewProvider())
		}
		if err != nil {
			return errors.Wrap(err, "failed creating wallets")
		}
	}
	s.coinbase, s.alice, s.bob = wallets[0], wallets[1], wallets[2]

	return renderTable(pterm.TableData{
		{"Wallet", "Identity"},
		{"Coinbase", s.coinbase.Identity().String()},
		{"A", s.alice.Identity().String()},
		{"B", s.bob.Identity().String()},
	})
}

func (s *scenario) createGenesis() error {
	pterm.DefaultSection.Println("Genesis block")

	genesis, err := s.consensus.CreateGenesis(s.ctx, s.coinbase.Identity(), s.cfg.Params.InitialSupply, s.alice.Identity())
	if err != nil {
		return err
	}
	pterm.Success.Printfln("Genesis block created: %s", genesis.Hash)
	pterm.Info.Printfln("Balance of A: %s", formatCoins(s.consensus.BalanceOf(s.alice.Identity())))
	return nil
}

func (s *scenario) proofOfWork() error {
	pterm.DefaultSection.Println("Common transaction (PoW)")

	pterm.Info.Println("A sends 40 coins to B")
	err := s.send(s.alice, s.bob, 40*coin)
	if err != nil {
		return err
	}
	_, err = s.mine(consensusstrategy.NewProofOfWork(s.cfg.Params))
	if err != nil {
		return err
	}
	s.printBalances()
	return nil
}

func (s *scenario) proofOfStake() error {
	pterm.DefaultSection.Println("Proof of Stake")

	stakeManager := s.consensus.StakeManager()
	s.stake(s.alice, "A", 100*coin)
	s.stake(s.bob, "B", 50*coin)

	candidates := []externalapi.PublicIdentity{s.alice.Identity(), s.bob.Identity()}
	validator, err := consensusstrategy.SelectValidator(stakeManager.Candidates(candidates))
	if err != nil {
		return err
	}
	pterm.Info.Printfln("Selected validator: %s", validator)

	_, err = s.mine(consensusstrategy.NewProofOfStake(stakeManager, candidates))
	return err
}

func (s *scenario) stake(w *wallet.Wallet, name string, amount uint64) {
	err := s.consensus.StakeManager().Stake(w.Identity(), amount)
	if err != nil {
		log.Warnf("%s could not stake: %s", name, err)
		pterm.Warning.Printfln("%s could not stake %s: %s", name, formatCoins(amount), err)
		return
	}
	pterm.Success.Printfln("%s staked %s", name, formatCoins(amount))
}

func (s *scenario) delegatedProofOfStake() error {
	pterm.DefaultSection.Println("Delegated Proof of Stake")

	stakeManager := s.consensus.StakeManager()
	stakeManager.RegisterDelegate(s.alice.Identity())
	stakeManager.RegisterDelegate(s.bob.Identity())
	pterm.Info.Printfln("Registered delegates D1 (%s) and D2 (%s)", s.alice.Identity(), s.bob.Identity())

	s.vote(s.alice, "A", 30*coin)
	s.vote(s.bob, "B", 20*coin)

	elected := consensusstrategy.SelectDelegates(stakeManager.Delegates(), s.cfg.Params.DelegateCount)
	for i, delegate := range elected {
		pterm.Info.Printfln("Elected delegate %d: %s (%s votes)", i+1, delegate.Identity, formatCoins(delegate.Votes))
	}

	_, err := s.mine(consensusstrategy.NewDelegatedProofOfStake(stakeManager, s.cfg.Params.DelegateCount))
	return err
}

func (s *scenario) vote(w *wallet.Wallet, name string, votes uint64) {
	err := s.consensus.StakeManager().Vote(w.Identity(), s.alice.Identity(), votes)
	if err != nil {
		log.Warnf("%s could not vote: %s", name, err)
		pterm.Warning.Printfln("%s could not cast %s votes for D1: %s", name, formatCoins(votes), err)
		return
	}
	pterm.Success.Printfln("%s cast %s votes for D1", name, formatCoins(votes))
}

func (s *scenario) tokenContract() error {
	pterm.DefaultSection.Println("Token contract")

	s.token = tokenledger.Deploy(s.consensus.Contracts(), s.alice.Identity(),
		s.cfg.TokenName, s.cfg.TokenSymbol, s.cfg.TokenSupply)
	pterm.Success.Printfln("Deployed %s (%s) at %s with a supply of %d",
		s.token.Name(), s.token.Symbol(), s.token.Address(), s.token.TotalSupply())

	// Half of the transfer is made directly, the other half through a
	// contract call carried by a block.
	direct := uint64(250)
	err := s.token.Transfer(s.alice.Identity(), s.bob.Identity(), direct)
	if err != nil {
		return err
	}
	pterm.Info.Printfln("A transferred %d %s to B", direct, s.token.Symbol())

	tx, err := s.alice.CallContract(s.consensus.TransactionProcessor(), s.token.Address(), s.bob.Identity(), 500-direct)
	if err != nil {
		return err
	}
	err = s.consensus.SubmitTransaction(tx)
	if err != nil {
		return err
	}
	pterm.Info.Printfln("A transferred %d %s to B through a contract call", 500-direct, s.token.Symbol())

	_, err = s.mine(consensusstrategy.NewProofOfWork(s.cfg.Params))
	return err
}

func (s *scenario) validateChain() error {
	pterm.DefaultSection.Println("Chain validation")

	err := s.consensus.ValidateChain()
	if err != nil {
		pterm.Error.Printfln("The chain is invalid: %s", err)
		return err
	}
	pterm.Success.Printfln("The chain is valid. UTXO commitment: %s", s.consensus.UTXOCommitment())
	return nil
}

func (s *scenario) send(from, to *wallet.Wallet, amount uint64) error {
	tx, err := from.SendFunds(s.consensus.TransactionProcessor(), s.consensus.Ledger(), to.Identity(), amount)
	if err != nil {
		return err
	}
	return s.consensus.SubmitTransaction(tx)
}

func (s *scenario) mine(strategy model.ConsensusStrategy) (*externalapi.DomainBlock, error) {
	spinner, _ := pterm.DefaultSpinner.Start("Producing a ", strategy.Name(), " block...")
	block, err := s.consensus.MineNextBlock(s.ctx, strategy)
	if err != nil {
		spinner.Fail(err.Error())
		return nil, err
	}
	spinner.Success("Produced ", strategy.Name(), " block ", block.Hash.String())
	return block, nil
}
