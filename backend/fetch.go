package backend

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

const (
	MultipleAccountSliceSize = 100
)

type Account struct {
	PubKey  solana.PublicKey
	Account *rpc.Account
	Height  uint64
}

// Exists reports whether the account was found on chain.
func (account *Account) Exists() bool {
	return account != nil && account.Account != nil
}

func (backend *Backend) Accounts(ctx context.Context, pubkeys []solana.PublicKey) ([]*Account, error) {
	return backend.getAccountsFromChain(ctx, pubkeys)
}

func (backend *Backend) getAccountsFromChain(ctx context.Context, pubkeys []solana.PublicKey) ([]*Account, error) {
	accounts := make([]*Account, 0, len(pubkeys))
	index, end := 0, 0
	for index < len(pubkeys) {
		if end = index + MultipleAccountSliceSize; end > len(pubkeys) {
			end = len(pubkeys)
		}
		getMultipleAccountsRsp, err := backend.rpcClient.GetMultipleAccountsWithOpts(ctx, pubkeys[index:end],
			&rpc.GetMultipleAccountsOpts{
				Encoding:   solana.EncodingBase64,
				Commitment: backend.commitment,
			})
		if err != nil {
			return nil, fmt.Errorf("get accounts err: %w", err)
		}
		if len(getMultipleAccountsRsp.Value) != end-index {
			return nil, fmt.Errorf("get accounts err, some account is missing, expected: %d, actual: %d", end-index, len(getMultipleAccountsRsp.Value))
		}
		for i, account := range getMultipleAccountsRsp.Value {
			accounts = append(accounts, &Account{
				PubKey:  pubkeys[index+i],
				Height:  getMultipleAccountsRsp.Context.Slot,
				Account: account,
			})
		}
		index = end
	}
	return accounts, nil
}

func (backend *Backend) Account(ctx context.Context, pubkey solana.PublicKey) (*Account, error) {
	return backend.getAccountFromChain(ctx, pubkey)
}

func (backend *Backend) getAccountFromChain(ctx context.Context, pubkey solana.PublicKey) (*Account, error) {
	response, err := backend.rpcClient.GetAccountInfoWithOpts(ctx, pubkey, &rpc.GetAccountInfoOpts{
		Encoding:   solana.EncodingBase64,
		Commitment: backend.commitment,
	})
	if errors.Is(err, rpc.ErrNotFound) {
		return &Account{PubKey: pubkey}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get account(%s) err: %w", pubkey, err)
	}
	return &Account{
		PubKey:  pubkey,
		Height:  response.Context.Slot,
		Account: response.Value,
	}, nil
}

// AccountReader is the read side of the ledger client used by the pipeline.
type AccountReader interface {
	Account(ctx context.Context, pubkey solana.PublicKey) (*Account, error)
	Accounts(ctx context.Context, pubkeys []solana.PublicKey) ([]*Account, error)
}
