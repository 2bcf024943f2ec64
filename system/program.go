package system

import (
	"context"
	"fmt"

	"github.com/egaotan/solana-sandwich/backend"
	"github.com/egaotan/solana-sandwich/program"
	"github.com/gagliardetto/solana-go"
)

// Program reads native SOL balances; the payer spends them on fees and tips.
type Program struct {
	reader backend.AccountReader
	id     solana.PublicKey
}

func NewProgram(reader backend.AccountReader) *Program {
	return &Program{
		reader: reader,
		id:     program.System,
	}
}

func (p *Program) Name() string {
	return "system"
}

func (p *Program) Id() solana.PublicKey {
	return p.id
}

// GetBalance returns the lamports held by key; a missing account holds none.
func (p *Program) GetBalance(ctx context.Context, key solana.PublicKey) (uint64, error) {
	account, err := p.reader.Account(ctx, key)
	if err != nil {
		return 0, err
	}
	if !account.Exists() {
		return 0, nil
	}
	if account.Account.Owner != p.id {
		return 0, fmt.Errorf("account(%s) is not owned by system program: %s", key, account.Account.Owner)
	}
	return account.Account.Lamports, nil
}
