package spltoken

import (
	"context"
	"fmt"

	"github.com/egaotan/solana-sandwich/backend"
	"github.com/egaotan/solana-sandwich/program"
	"github.com/gagliardetto/solana-go"
)

type Program struct {
	reader backend.AccountReader
	id     solana.PublicKey
}

func NewProgram(reader backend.AccountReader) *Program {
	return &Program{
		reader: reader,
		id:     program.Token,
	}
}

func (p *Program) Name() string {
	return "spl token"
}

func (p *Program) Id() solana.PublicKey {
	return p.id
}

// GetUsers fetches and decodes token accounts, failing when any of them is missing or malformed.
func (p *Program) GetUsers(ctx context.Context, pubkeys []solana.PublicKey) ([]*KeyedUser, error) {
	accounts, err := p.reader.Accounts(ctx, pubkeys)
	if err != nil {
		return nil, err
	}
	users := make([]*KeyedUser, 0, len(accounts))
	for _, account := range accounts {
		user, err := ParseUser(account)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func (p *Program) GetBalance(ctx context.Context, key solana.PublicKey) (uint64, error) {
	users, err := p.GetUsers(ctx, []solana.PublicKey{key})
	if err != nil {
		return 0, err
	}
	return users[0].Amount, nil
}

func ParseUser(account *backend.Account) (*KeyedUser, error) {
	if !account.Exists() {
		return nil, fmt.Errorf("account(%s) is missing", account.PubKey)
	}
	if account.Account.Owner != program.Token {
		return nil, fmt.Errorf("account(%s) is not spl token program account, expected: %s, actual: %s", account.PubKey, program.Token, account.Account.Owner)
	}
	data := account.Account.Data.GetBinary()
	if len(data) != TokenLayoutSize {
		return nil, fmt.Errorf("spl token account(%s) data size is not valid, expected: %d, actual: %d", account.PubKey, TokenLayoutSize, len(data))
	}
	user := &KeyedUser{
		Key:    account.PubKey,
		Height: account.Height,
	}
	if err := user.unpack(data); err != nil {
		return nil, fmt.Errorf("spl token account(%s) data is not valid, err: %w", account.PubKey, err)
	}
	return user, nil
}

// AssociatedAddress derives the associated token account of owner for mint.
func AssociatedAddress(owner solana.PublicKey, mint solana.PublicKey) (solana.PublicKey, error) {
	address, _, err := solana.FindProgramAddress([][]byte{
		owner[:],
		program.Token[:],
		mint[:],
	}, program.AssociatedToken)
	return address, err
}
