package bundle

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/egaotan/solana-sandwich/program"
	"github.com/egaotan/solana-sandwich/raydium"
	"github.com/egaotan/solana-sandwich/spltoken"
	"github.com/gagliardetto/solana-go"
)

type Builder struct {
	programId solana.PublicKey
	state     solana.PublicKey
	payer     solana.PublicKey
	wsol      solana.PublicKey
	signer    func(key solana.PublicKey) *solana.PrivateKey
	tips      []solana.PublicKey
	lock      sync.Mutex
	rand      *rand.Rand
}

// NewBuilder takes the payer's key lookup, e.g. backend.Backend.GetWallet.
func NewBuilder(programId solana.PublicKey, payer solana.PublicKey, signer func(key solana.PublicKey) *solana.PrivateKey) (*Builder, error) {
	state, err := program.SandwichStateAddress(programId)
	if err != nil {
		return nil, fmt.Errorf("sandwich state address err: %w", err)
	}
	wsol, err := spltoken.AssociatedAddress(payer, program.SOL)
	if err != nil {
		return nil, fmt.Errorf("payer wsol address err: %w", err)
	}
	return &Builder{
		programId: programId,
		state:     state,
		payer:     payer,
		wsol:      wsol,
		signer:    signer,
		tips:      program.TipAccounts,
		rand:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

// SetRand replaces the tip draw source.
func (b *Builder) SetRand(r *rand.Rand) {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.rand = r
}

// CapitalAccount is the payer's WSOL account funding the front-run.
func (b *Builder) CapitalAccount() solana.PublicKey {
	return b.wsol
}

func (b *Builder) State() solana.PublicKey {
	return b.state
}

func (b *Builder) tip() solana.PublicKey {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.tips[b.rand.Intn(len(b.tips))]
}

func (b *Builder) swapAccounts(pool *raydium.PoolState) (*program.SwapAccounts, error) {
	tokenUser, err := spltoken.AssociatedAddress(b.payer, pool.Token)
	if err != nil {
		return nil, fmt.Errorf("payer token address err: %w", err)
	}
	return &program.SwapAccounts{
		Payer:     b.payer,
		State:     b.state,
		Wsol:      b.wsol,
		TokenUser: tokenUser,
		TokenMint: pool.Token,
		Amm:       pool.Pool,
		CoinVault: pool.CoinVault,
		PcVault:   pool.PcVault,
	}, nil
}

// Sandwich is the signed pair bracketing a victim.
type Sandwich struct {
	Front    *solana.Transaction
	Back     *solana.Transaction
	Tip      solana.PublicKey
	AmountIn uint64
}

// Build signs the front-run carrying amountIn with no minimum out, and the back-run that
// sells the whole position and pays the tip. Both use the victim's blockhash.
func (b *Builder) Build(pool *raydium.PoolState, amountIn uint64, blockHash solana.Hash) (*Sandwich, error) {
	accounts, err := b.swapAccounts(pool)
	if err != nil {
		return nil, err
	}
	swapIn, err := program.InstructionSwapIn(b.programId, accounts, amountIn, 0)
	if err != nil {
		return nil, fmt.Errorf("swap in instruction err: %w", err)
	}
	tip := b.tip()
	swapOut, err := program.InstructionSwapOut(b.programId, accounts, tip)
	if err != nil {
		return nil, fmt.Errorf("swap out instruction err: %w", err)
	}
	front, err := b.sign(swapIn, blockHash)
	if err != nil {
		return nil, fmt.Errorf("front-run err: %w", err)
	}
	back, err := b.sign(swapOut, blockHash)
	if err != nil {
		return nil, fmt.Errorf("back-run err: %w", err)
	}
	return &Sandwich{
		Front:    front,
		Back:     back,
		Tip:      tip,
		AmountIn: amountIn,
	}, nil
}

func (b *Builder) sign(instruction solana.Instruction, blockHash solana.Hash) (*solana.Transaction, error) {
	trx, err := solana.NewTransaction([]solana.Instruction{instruction}, blockHash, solana.TransactionPayer(b.payer))
	if err != nil {
		return nil, err
	}
	if _, err := trx.Sign(b.signer); err != nil {
		return nil, err
	}
	return trx, nil
}
