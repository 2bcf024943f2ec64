package decoder

import (
	"github.com/egaotan/solana-sandwich/program"
	"github.com/gagliardetto/solana-go"
)

const (
	raydiumSwapBaseIn    = 9
	raydiumSwapSize      = 1 + SwapPayloadSize
	raydiumPoolAccountAt = 1
)

// Raydium decodes direct SwapBaseIn calls into the AMM v4 program.
type Raydium struct{}

func (d *Raydium) Name() string {
	return "raydium"
}

func (d *Raydium) Program() solana.PublicKey {
	return program.Raydium
}

func (d *Raydium) Decode(data []byte, keys solana.PublicKeySlice, accounts []uint16) (*SwapIntent, bool) {
	if len(data) != raydiumSwapSize || data[0] != raydiumSwapBaseIn {
		return nil, false
	}
	pool, ok := accountAt(keys, accounts, raydiumPoolAccountAt)
	if !ok {
		return nil, false
	}
	swap, ok := decodeSwapPayload(data[1:])
	if !ok {
		return nil, false
	}
	return &SwapIntent{
		Program:          d.Program(),
		AmountIn:         swap.AmountIn,
		MinimumAmountOut: swap.MinimumAmountOut,
		Pool:             pool,
	}, true
}
