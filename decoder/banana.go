package decoder

import (
	"github.com/egaotan/solana-sandwich/program"
	"github.com/gagliardetto/solana-go"
)

const (
	bananaRouterAccountAt = 3
	bananaPoolAccountAt   = 7
)

// BananaGun decodes Banana Gun router calls that forward into Raydium. The router
// prepends its own header, so the swap record is the payload suffix.
type BananaGun struct{}

func (d *BananaGun) Name() string {
	return "banana gun"
}

func (d *BananaGun) Program() solana.PublicKey {
	return program.BananaGun
}

func (d *BananaGun) Decode(data []byte, keys solana.PublicKeySlice, accounts []uint16) (*SwapIntent, bool) {
	router, ok := accountAt(keys, accounts, bananaRouterAccountAt)
	if !ok || router != program.Raydium {
		return nil, false
	}
	if len(data) < SwapPayloadSize {
		return nil, false
	}
	pool, ok := accountAt(keys, accounts, bananaPoolAccountAt)
	if !ok {
		return nil, false
	}
	swap, ok := decodeSwapPayload(data[len(data)-SwapPayloadSize:])
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
