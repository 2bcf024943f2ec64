package decoder

import (
	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

const SwapPayloadSize = 16

// SwapIntent is a victim swap normalized from a router instruction.
type SwapIntent struct {
	Program          solana.PublicKey
	AmountIn         uint64
	MinimumAmountOut uint64
	Pool             solana.PublicKey
}

type Decoder interface {
	Name() string
	Program() solana.PublicKey
	Decode(data []byte, keys solana.PublicKeySlice, accounts []uint16) (*SwapIntent, bool)
}

type swapPayload struct {
	AmountIn         uint64
	MinimumAmountOut uint64
}

func decodeSwapPayload(payload []byte) (*swapPayload, bool) {
	if len(payload) != SwapPayloadSize {
		return nil, false
	}
	swap := &swapPayload{}
	if err := bin.NewBorshDecoder(payload).Decode(swap); err != nil {
		return nil, false
	}
	return swap, true
}

// accountAt resolves the index-th instruction account against the transaction keys.
func accountAt(keys solana.PublicKeySlice, accounts []uint16, index int) (solana.PublicKey, bool) {
	if index < 0 || index >= len(accounts) {
		return solana.PublicKey{}, false
	}
	keyIndex := int(accounts[index])
	if keyIndex >= len(keys) {
		return solana.PublicKey{}, false
	}
	return keys[keyIndex], true
}
