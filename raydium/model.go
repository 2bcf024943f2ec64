package raydium

import (
	"github.com/egaotan/solana-sandwich/program"
	"github.com/gagliardetto/solana-go"
)

// PoolState is the part of an AMM v4 pool the sandwich needs, resolved per candidate.
type PoolState struct {
	Pool      solana.PublicKey
	Market    solana.PublicKey
	BaseMint  solana.PublicKey
	QuoteMint solana.PublicKey
	Token     solana.PublicKey
	CoinVault solana.PublicKey
	PcVault   solana.PublicKey
	FeeBps    uint64
	Height    uint64
}

// Orient maps vault balances to (reserveIn, reserveOut) for a WSOL-in swap.
// The pc vault is the input side unless the quote mint is the traded token.
func (p *PoolState) Orient(coinAmount uint64, pcAmount uint64) (uint64, uint64) {
	if p.QuoteMint != p.Token {
		return pcAmount, coinAmount
	}
	return coinAmount, pcAmount
}

func (p *PoolState) TokenPair() []solana.PublicKey {
	return []solana.PublicKey{p.BaseMint, p.QuoteMint}
}

// ReserveSnapshot holds the live numbers sizing works on.
type ReserveSnapshot struct {
	ReserveIn  uint64
	ReserveOut uint64
	Capital    uint64
	Slot       uint64
}

func tradedToken(baseMint solana.PublicKey, quoteMint solana.PublicKey) solana.PublicKey {
	if quoteMint == program.SOL {
		return baseMint
	}
	return quoteMint
}
