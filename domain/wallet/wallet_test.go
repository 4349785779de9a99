package wallet

import (
	"testing"

	"github.com/ledgersim/ledgersim/domain/consensus/model/externalapi"
	"github.com/ledgersim/ledgersim/domain/consensus/processes/transactionprocessor"
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

func newTestWallets(t *testing.T) (alice, bob *Wallet) {
	var err error
	alice, err = FromMnemonic(testutils.TestMnemonic, 0)
	if err != nil {
		t.Fatalf("newTestWallets: FromMnemonic: %s", err)
	}
	bob, err = New(identity.NewProvider())
	if err != nil {
		t.Fatalf("newTestWallets: New: %s", err)
	}
	return alice, bob
}

func TestFromMnemonic(t *testing.T) {
	alice, bob := newTestWallets(t)
	expected := testutils.Identities(t, 1)[0].Identity
	if alice.Identity() != expected {
		t.Fatalf("TestFromMnemonic: Expected identity %s, found %s", expected, alice.Identity())
	}
	if bob.Identity() == alice.Identity() {
		t.Fatalf("TestFromMnemonic: Expected a generated wallet to have its own identity")
	}

	_, err := FromMnemonic("not a mnemonic", 0)
	if err == nil {
		t.Fatalf("TestFromMnemonic: Expected an invalid mnemonic to fail")
	}
}

func TestSendFunds(t *testing.T) {
	alice, bob := newTestWallets(t)
	ledger := utxo.New()
	for i, value := range []uint64{10 * coin, 20 * coin, 30 * coin} {
		ledger.Put(utxo.NewOutput(alice.Identity(), value, "funding", uint32(i)))
	}
	processor := transactionprocessor.New(identity.NewProvider(), nil, testutils.Params(1).MinimumTransactionValue)

	if alice.Balance(ledger) != 60*coin {
		t.Fatalf("TestSendFunds: Expected a balance of %d, found %d", 60*coin, alice.Balance(ledger))
	}

	tx, err := alice.SendFunds(processor, ledger, bob.Identity(), 25*coin)
	if err != nil {
		t.Fatalf("TestSendFunds: SendFunds: %s", err)
	}
	if len(tx.Inputs) == 0 || len(tx.Inputs) > 3 {
		t.Fatalf("TestSendFunds: Expected between 1 and 3 inputs, found %d", len(tx.Inputs))
	}
	if !processor.VerifySignature(tx) {
		t.Fatalf("TestSendFunds: Expected the transaction to be signed by its sender")
	}

	err = processor.Process(tx, ledger)
	if err != nil {
		t.Fatalf("TestSendFunds: Process: %s", err)
	}
	if alice.Balance(ledger) != 35*coin || bob.Balance(ledger) != 25*coin {
		t.Fatalf("TestSendFunds: Expected balances %d and %d, found %d and %d",
			35*coin, 25*coin, alice.Balance(ledger), bob.Balance(ledger))
	}

	_, err = bob.SendFunds(processor, ledger, alice.Identity(), 26*coin)
	if !errors.Is(err, ruleerrors.ErrInsufficientBalance) {
		t.Fatalf("TestSendFunds: Expected ErrInsufficientBalance, found %v", err)
	}
}

func TestCallContract(t *testing.T) {
	alice, bob := newTestWallets(t)
	registry := contracts.NewRegistry()
	token := tokenledger.Deploy(registry, alice.Identity(), "DPoS Coin", "DPOS", 10000)
	processor := transactionprocessor.New(identity.NewProvider(), registry, testutils.Params(1).MinimumTransactionValue)
	ledger := utxo.New()

	tx, err := alice.CallContract(processor, token.Address(), bob.Identity(), 500)
	if err != nil {
		t.Fatalf("TestCallContract: CallContract: %s", err)
	}
	err = processor.Process(tx, ledger)
	if err != nil {
		t.Fatalf("TestCallContract: Process: %s", err)
	}
	if token.BalanceOf(alice.Identity()) != 9500 || token.BalanceOf(bob.Identity()) != 500 {
		t.Fatalf("TestCallContract: Expected token balances 9500 and 500, found %d and %d",
			token.BalanceOf(alice.Identity()), token.BalanceOf(bob.Identity()))
	}

	missing := externalapi.NewDomainHashFromByteArray(&[externalapi.DomainHashSize]byte{1})
	tx, err = alice.CallContract(processor, missing, bob.Identity(), 1)
	if err != nil {
		t.Fatalf("TestCallContract: CallContract: %s", err)
	}
	err = processor.Process(tx, ledger)
	if !errors.Is(err, ruleerrors.ErrUnknownContract) {
		t.Fatalf("TestCallContract: Expected ErrUnknownContract, found %v", err)
	}
}
