package main

import (
	"fmt"
	"strconv"

	"github.com/ledgersim/ledgersim/domain/consensus/model/externalapi"
	"github.com/pterm/pterm"
)

func formatCoins(atoms uint64) string {
	return strconv.FormatFloat(float64(atoms)/coin, 'f', -1, 64)
}

func renderTable(data pterm.TableData) error {
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func (s *scenario) printBalances() {
	pterm.Info.Printfln("Balances: A %s, B %s",
		formatCoins(s.consensus.BalanceOf(s.alice.Identity())),
		formatCoins(s.consensus.BalanceOf(s.bob.Identity())))
}

func (s *scenario) printFinalReport() error {
	pterm.DefaultSection.Println("Chain")

	blocks, err := s.consensus.Blocks()
	if err != nil {
		return err
	}
	chainTable := pterm.TableData{{"Height", "Producer", "Hash", "Transactions"}}
	for height, block := range blocks {
		chainTable = append(chainTable, []string{
			strconv.Itoa(height),
			producerString(block.Header.Producer),
			block.Hash.String(),
			strconv.Itoa(len(block.Transactions)),
		})
	}
	err = renderTable(chainTable)
	if err != nil {
		return err
	}

	pterm.DefaultSection.Println("Final balances")
	stakeManager := s.consensus.StakeManager()
	balanceTable := pterm.TableData{{"Wallet", "Coins", "Stake", s.token.Symbol()}}
	for _, row := range []struct {
		name     string
		identity externalapi.PublicIdentity
	}{
		{"A", s.alice.Identity()},
		{"B", s.bob.Identity()},
	} {
		balanceTable = append(balanceTable, []string{
			row.name,
			formatCoins(s.consensus.BalanceOf(row.identity)),
			formatCoins(stakeManager.StakeOf(row.identity)),
			strconv.FormatUint(s.token.BalanceOf(row.identity), 10),
		})
	}
	return renderTable(balanceTable)
}

func producerString(producer externalapi.ProducerStamp) string {
	if producer.Identity.IsZero() {
		return producer.Kind.String()
	}
	return fmt.Sprintf("%s by %s", producer.Kind, producer.Identity)
}
