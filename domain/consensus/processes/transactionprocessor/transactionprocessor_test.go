package transactionprocessor

import (
	"testing"

	"github.com/ledgersim/ledgersim/domain/consensus/model/externalapi"
	"github.com/ledgersim/ledgersim/domain/consensus/ruleerrors"
	"github.com/ledgersim/ledgersim/domain/consensus/utils/constants"
	"github.com/ledgersim/ledgersim/domain/consensus/utils/testutils"
	"github.com/ledgersim/ledgersim/domain/consensus/utils/utxo"
	"github.com/ledgersim/ledgersim/domain/contracts"
	"github.com/ledgersim/ledgersim/domain/contracts/tokenledger"
	"github.com/ledgersim/ledgersim/domain/identity"
	"github.com/pkg/errors"
)

const coin = constants.AtomsPerCoin

type testSetup struct {
	processor *TransactionProcessor
	ledger    *utxo.Ledger
	registry  *contracts.Registry
	alice     *testutils.TestIdentity
	bob       *testutils.TestIdentity
	genesis   *externalapi.DomainOutput
}

func setup(t *testing.T) *testSetup {
	identities := testutils.Identities(t, 2)
	registry := contracts.NewRegistry()
	ledger := utxo.New()
	genesis := utxo.NewOutput(identities[0].Identity, 1000*coin, externalapi.GenesisTransactionID, 0)
	ledger.Put(genesis)

	return &testSetup{
		processor: New(identity.NewProvider(), registry, coin/10),
		ledger:    ledger,
		registry:  registry,
		alice:     identities[0],
		bob:       identities[1],
		genesis:   genesis,
	}
}

func (s *testSetup) signedSend(t *testing.T, from, to *testutils.TestIdentity, amount uint64,
	inputIDs ...*externalapi.DomainHash) *externalapi.DomainTransaction {

	inputs := make([]*externalapi.DomainTransactionInput, len(inputIDs))
	for i, id := range inputIDs {
		inputs[i] = &externalapi.DomainTransactionInput{ReferencedOutputID: id}
	}
	tx := s.processor.Create(from.Identity, to.Identity, amount, inputs)
	err := s.processor.Sign(tx, from.PrivateKey)
	if err != nil {
		t.Fatalf("signedSend: Sign: %s", err)
	}
	return tx
}

func TestProcessScenario(t *testing.T) {
	s := setup(t)
	tx := s.signedSend(t, s.alice, s.bob, 40*coin, s.genesis.ID)

	err := s.processor.Process(tx, s.ledger)
	if err != nil {
		t.Fatalf("TestProcessScenario: Process: %s", err)
	}

	if balance := s.ledger.BalanceOf(s.alice.Identity); balance != 960*coin {
		t.Fatalf("TestProcessScenario: Expected alice's balance to be %d, found %d", 960*coin, balance)
	}
	if balance := s.ledger.BalanceOf(s.bob.Identity); balance != 40*coin {
		t.Fatalf("TestProcessScenario: Expected bob's balance to be %d, found %d", 40*coin, balance)
	}
	if _, ok := s.ledger.Get(s.genesis.ID); ok {
		t.Fatalf("TestProcessScenario: Expected the genesis output to be spent")
	}

	if tx.ID == "" || len(tx.Outputs) != 2 {
		t.Fatalf("TestProcessScenario: Expected an ID and two outputs, found %q and %d outputs", tx.ID, len(tx.Outputs))
	}
	if tx.Outputs[0].Owner != s.bob.Identity || tx.Outputs[1].Owner != s.alice.Identity {
		t.Fatalf("TestProcessScenario: Expected outputs to be [recipient, change]")
	}
	if tx.InputsValue() != tx.OutputsValue() {
		t.Fatalf("TestProcessScenario: Expected value to be conserved, inputs %d outputs %d",
			tx.InputsValue(), tx.OutputsValue())
	}
	if s.ledger.Len() != 2 {
		t.Fatalf("TestProcessScenario: Expected 2 live outputs, found %d", s.ledger.Len())
	}
}

func TestProcessConservesValue(t *testing.T) {
	s := setup(t)
	amounts := []uint64{40 * coin, 1, 500 * coin, coin / 3}

	spendable := s.genesis
	for i, amount := range amounts {
		tx := s.signedSend(t, s.alice, s.bob, amount, spendable.ID)
		err := s.processor.Process(tx, s.ledger)
		if err != nil {
			t.Fatalf("TestProcessConservesValue: #%d: Process: %s", i, err)
		}
		if tx.InputsValue() != tx.OutputsValue() {
			t.Fatalf("TestProcessConservesValue: #%d: inputs %d != outputs %d", i, tx.InputsValue(), tx.OutputsValue())
		}
		spendable = tx.Outputs[1]
	}

	total := s.ledger.BalanceOf(s.alice.Identity) + s.ledger.BalanceOf(s.bob.Identity)
	if total != 1000*coin {
		t.Fatalf("TestProcessConservesValue: Expected total value to stay %d, found %d", 1000*coin, total)
	}
}

func TestProcessRejections(t *testing.T) {
	tests := []struct {
		name          string
		buildTx       func(t *testing.T, s *testSetup) *externalapi.DomainTransaction
		expectedError error
	}{
		{
			name: "unsigned",
			buildTx: func(t *testing.T, s *testSetup) *externalapi.DomainTransaction {
				return s.processor.Create(s.alice.Identity, s.bob.Identity, coin,
					[]*externalapi.DomainTransactionInput{{ReferencedOutputID: s.genesis.ID}})
			},
			expectedError: ruleerrors.ErrInvalidSignature,
		},
		{
			name: "signed by someone else",
			buildTx: func(t *testing.T, s *testSetup) *externalapi.DomainTransaction {
				tx := s.signedSend(t, s.alice, s.bob, coin, s.genesis.ID)
				err := s.processor.Sign(tx, s.bob.PrivateKey)
				if err != nil {
					t.Fatalf("Sign: %s", err)
				}
				return tx
			},
			expectedError: ruleerrors.ErrInvalidSignature,
		},
		{
			name: "amount changed after signing",
			buildTx: func(t *testing.T, s *testSetup) *externalapi.DomainTransaction {
				tx := s.signedSend(t, s.alice, s.bob, coin, s.genesis.ID)
				tx.Amount = 2 * coin
				return tx
			},
			expectedError: ruleerrors.ErrInvalidSignature,
		},
		{
			name: "no resolvable inputs",
			buildTx: func(t *testing.T, s *testSetup) *externalapi.DomainTransaction {
				return s.signedSend(t, s.alice, s.bob, coin, &externalapi.DomainHash{})
			},
			expectedError: ruleerrors.ErrInsufficientInputValue,
		},
		{
			name: "spending someone else's later output",
			buildTx: func(t *testing.T, s *testSetup) *externalapi.DomainTransaction {
				return s.signedSend(t, s.bob, s.alice, coin)
			},
			expectedError: ruleerrors.ErrInsufficientInputValue,
		},
		{
			name: "amount above inputs",
			buildTx: func(t *testing.T, s *testSetup) *externalapi.DomainTransaction {
				return s.signedSend(t, s.alice, s.bob, 1001*coin, s.genesis.ID)
			},
			expectedError: ruleerrors.ErrSpendTooHigh,
		},
		{
			name: "same input twice",
			buildTx: func(t *testing.T, s *testSetup) *externalapi.DomainTransaction {
				return s.signedSend(t, s.alice, s.bob, 1500*coin, s.genesis.ID, s.genesis.ID)
			},
			expectedError: ruleerrors.ErrSpendTooHigh,
		},
	}

	for _, test := range tests {
		s := setup(t)
		commitmentBefore := s.ledger.Commitment()
		tx := test.buildTx(t, s)

		err := s.processor.Process(tx, s.ledger)
		if !errors.Is(err, test.expectedError) {
			t.Fatalf("TestProcessRejections: %s: Expected %s, found %v", test.name, test.expectedError, err)
		}
		if !s.ledger.Commitment().Equal(commitmentBefore) {
			t.Fatalf("TestProcessRejections: %s: Expected a rejected transaction to leave the ledger untouched", test.name)
		}
		if tx.ID != "" {
			t.Fatalf("TestProcessRejections: %s: Expected a rejected transaction to get no ID, found %s", test.name, tx.ID)
		}
	}
}

func TestProcessSkipsUnresolvedInputs(t *testing.T) {
	s := setup(t)
	missing := &externalapi.DomainHash{}
	tx := s.signedSend(t, s.alice, s.bob, 40*coin, s.genesis.ID, missing)

	err := s.processor.Process(tx, s.ledger)
	if err != nil {
		t.Fatalf("TestProcessSkipsUnresolvedInputs: Process: %s", err)
	}
	if tx.Inputs[1].UTXO != nil {
		t.Fatalf("TestProcessSkipsUnresolvedInputs: Expected the unknown input to stay unresolved")
	}
	if tx.OutputsValue() != 1000*coin {
		t.Fatalf("TestProcessSkipsUnresolvedInputs: Expected outputs worth %d, found %d", 1000*coin, tx.OutputsValue())
	}
}

// The signature covers sender, recipient and amount only, so a sender may
// name outputs owned by someone else as inputs.
func TestProcessDoesNotCheckInputOwners(t *testing.T) {
	s := setup(t)
	tx := s.signedSend(t, s.bob, s.bob, 100*coin, s.genesis.ID)

	err := s.processor.Process(tx, s.ledger)
	if err != nil {
		t.Fatalf("TestProcessDoesNotCheckInputOwners: Process: %s", err)
	}
	if balance := s.ledger.BalanceOf(s.alice.Identity); balance != 0 {
		t.Fatalf("TestProcessDoesNotCheckInputOwners: Expected alice's balance to be 0, found %d", balance)
	}
	if balance := s.ledger.BalanceOf(s.bob.Identity); balance != 1000*coin {
		t.Fatalf("TestProcessDoesNotCheckInputOwners: Expected bob's balance to be %d, found %d", 1000*coin, balance)
	}
}

func TestProcessGenesisIsUntouched(t *testing.T) {
	s := setup(t)
	tx := &externalapi.DomainTransaction{ID: externalapi.GenesisTransactionID, Recipient: s.alice.Identity, Amount: 5}
	err := s.processor.Process(tx, s.ledger)
	if err != nil {
		t.Fatalf("TestProcessGenesisIsUntouched: Process: %s", err)
	}
	if len(tx.Outputs) != 0 || s.ledger.Len() != 1 {
		t.Fatalf("TestProcessGenesisIsUntouched: Expected the genesis transaction to be accepted as is")
	}
}

func TestProcessContractCall(t *testing.T) {
	s := setup(t)
	token := tokenledger.Deploy(s.registry, s.alice.Identity, "DPoS Coin", "DPOS", 10000)
	commitmentBefore := s.ledger.Commitment()

	call := s.processor.CreateContractCall(s.alice.Identity, s.bob.Identity, 500, token.Address())
	err := s.processor.Sign(call, s.alice.PrivateKey)
	if err != nil {
		t.Fatalf("TestProcessContractCall: Sign: %s", err)
	}
	err = s.processor.Process(call, s.ledger)
	if err != nil {
		t.Fatalf("TestProcessContractCall: Process: %s", err)
	}
	if token.BalanceOf(s.alice.Identity) != 9500 || token.BalanceOf(s.bob.Identity) != 500 {
		t.Fatalf("TestProcessContractCall: Expected token balances 9500/500, found %d/%d",
			token.BalanceOf(s.alice.Identity), token.BalanceOf(s.bob.Identity))
	}
	if !s.ledger.Commitment().Equal(commitmentBefore) {
		t.Fatalf("TestProcessContractCall: Expected a contract call to leave the UTXO ledger untouched")
	}

	tooMuch := s.processor.CreateContractCall(s.alice.Identity, s.bob.Identity, 20000, token.Address())
	err = s.processor.Sign(tooMuch, s.alice.PrivateKey)
	if err != nil {
		t.Fatalf("TestProcessContractCall: Sign: %s", err)
	}
	if err := s.processor.Process(tooMuch, s.ledger); !errors.Is(err, ruleerrors.ErrInsufficientBalance) {
		t.Fatalf("TestProcessContractCall: Expected ErrInsufficientBalance, found %v", err)
	}

	unknown := s.processor.CreateContractCall(s.alice.Identity, s.bob.Identity, 1, &externalapi.DomainHash{})
	err = s.processor.Sign(unknown, s.alice.PrivateKey)
	if err != nil {
		t.Fatalf("TestProcessContractCall: Sign: %s", err)
	}
	if err := s.processor.Process(unknown, s.ledger); !errors.Is(err, ruleerrors.ErrUnknownContract) {
		t.Fatalf("TestProcessContractCall: Expected ErrUnknownContract, found %v", err)
	}

	unsigned := s.processor.CreateContractCall(s.alice.Identity, s.bob.Identity, 1, token.Address())
	if err := s.processor.Process(unsigned, s.ledger); !errors.Is(err, ruleerrors.ErrInvalidSignature) {
		t.Fatalf("TestProcessContractCall: Expected ErrInvalidSignature, found %v", err)
	}
}

func TestTransactionIDsAreUnique(t *testing.T) {
	s := setup(t)
	seen := make(map[externalapi.DomainTransactionID]struct{})
	for i := 0; i < 100; i++ {
		call := s.processor.CreateContractCall(s.alice.Identity, s.bob.Identity, 1, &externalapi.DomainHash{})
		if _, ok := seen[call.ID]; ok {
			t.Fatalf("TestTransactionIDsAreUnique: duplicate ID %s after %d transactions", call.ID, i)
		}
		seen[call.ID] = struct{}{}
	}
}
