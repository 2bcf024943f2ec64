package raydium

import (
	"context"
	"errors"
	"fmt"

	"github.com/egaotan/solana-sandwich/backend"
	"github.com/egaotan/solana-sandwich/program"
	"github.com/egaotan/solana-sandwich/spltoken"
	"github.com/gagliardetto/solana-go"
)

const (
	CoinVaultSeed = "coin_vault_associated_seed"
	PcVaultSeed   = "pc_vault_associated_seed"
	DefaultFeeBps = 25
)

var ErrPoolNotFound = errors.New("pool not found")

type Program struct {
	reader backend.AccountReader
	id     solana.PublicKey
}

func NewProgram(reader backend.AccountReader) *Program {
	return &Program{
		reader: reader,
		id:     program.Raydium,
	}
}

func (p *Program) Name() string {
	return "raydium"
}

func (p *Program) Id() solana.PublicKey {
	return p.id
}

// Resolve reads the pool's AmmInfo and derives everything the sandwich touches.
func (p *Program) Resolve(ctx context.Context, pool solana.PublicKey) (*PoolState, error) {
	account, err := p.reader.Account(ctx, pool)
	if err != nil {
		return nil, fmt.Errorf("resolve pool(%s) err: %w", pool, err)
	}
	ammInfo, err := p.parseAccount(account)
	if err != nil {
		return nil, err
	}
	coinVault, err := VaultAddress(p.id, ammInfo.Market, CoinVaultSeed)
	if err != nil {
		return nil, fmt.Errorf("raydium pool(%s) coin vault err: %w", pool, err)
	}
	pcVault, err := VaultAddress(p.id, ammInfo.Market, PcVaultSeed)
	if err != nil {
		return nil, fmt.Errorf("raydium pool(%s) pc vault err: %w", pool, err)
	}
	return &PoolState{
		Pool:      pool,
		Market:    ammInfo.Market,
		BaseMint:  ammInfo.CoinMint,
		QuoteMint: ammInfo.PcMint,
		Token:     tradedToken(ammInfo.CoinMint, ammInfo.PcMint),
		CoinVault: coinVault,
		PcVault:   pcVault,
		FeeBps:    feeBps(&ammInfo.Fees),
		Height:    account.Height,
	}, nil
}

// Snapshot reads both vaults and the capital account in one round trip.
func (p *Program) Snapshot(ctx context.Context, pool *PoolState, capital solana.PublicKey) (*ReserveSnapshot, error) {
	accounts, err := p.reader.Accounts(ctx, []solana.PublicKey{pool.CoinVault, pool.PcVault, capital})
	if err != nil {
		return nil, fmt.Errorf("snapshot pool(%s) err: %w", pool.Pool, err)
	}
	users := make([]*spltoken.KeyedUser, 0, len(accounts))
	for _, account := range accounts {
		user, err := spltoken.ParseUser(account)
		if err != nil {
			return nil, fmt.Errorf("snapshot pool(%s) err: %w", pool.Pool, err)
		}
		users = append(users, user)
	}
	reserveIn, reserveOut := pool.Orient(users[0].Amount, users[1].Amount)
	return &ReserveSnapshot{
		ReserveIn:  reserveIn,
		ReserveOut: reserveOut,
		Capital:    users[2].Amount,
		Slot:       users[0].Height,
	}, nil
}

func (p *Program) parseAccount(account *backend.Account) (*KeyedAmmInfo, error) {
	if !account.Exists() {
		return nil, fmt.Errorf("raydium account(%s): %w", account.PubKey, ErrPoolNotFound)
	}
	if account.Account.Owner != p.id {
		return nil, fmt.Errorf("account(%s) is not raydium program account, expected: %s, actual: %s", account.PubKey, p.id, account.Account.Owner)
	}
	accountData := account.Account.Data.GetBinary()
	if len(accountData) != AmmInfoLayoutSize {
		return nil, fmt.Errorf("raydium account(%s) data size is not valid, expected: %d, actual: %d", account.PubKey, AmmInfoLayoutSize, len(accountData))
	}
	ammInfo := &KeyedAmmInfo{
		Height: account.Height,
		Key:    account.PubKey,
	}
	if err := ammInfo.unpack(accountData); err != nil {
		return nil, fmt.Errorf("raydium account(%s) data is not valid, err: %w", account.PubKey, err)
	}
	return ammInfo, nil
}

func VaultAddress(programId solana.PublicKey, market solana.PublicKey, seed string) (solana.PublicKey, error) {
	vault, _, err := solana.FindProgramAddress([][]byte{
		programId[:],
		market[:],
		[]byte(seed),
	}, programId)
	return vault, err
}

func feeBps(fees *FeesLayout) uint64 {
	if fees.SwapFeeDenominator == 0 {
		return DefaultFeeBps
	}
	return fees.SwapFeeNumerator * 10000 / fees.SwapFeeDenominator
}
