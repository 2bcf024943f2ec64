package program

import (
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

const (
	SandwichStateSize = 10
	SandwichStateSeed = "sandwich-state"
)

// SandwichState is the state account owned by the sandwich program.
type SandwichState struct {
	PreswapBalance uint64
	TipBps         uint16
}

func (s *SandwichState) Pack() ([]byte, error) {
	return bin.MarshalBorsh(s)
}

func UnpackSandwichState(data []byte) (*SandwichState, error) {
	if len(data) != SandwichStateSize {
		return nil, fmt.Errorf("sandwich state size is not valid, expected: %d, actual: %d", SandwichStateSize, len(data))
	}
	state := &SandwichState{}
	if err := bin.NewBorshDecoder(data).Decode(state); err != nil {
		return nil, fmt.Errorf("sandwich state data is not valid, err: %w", err)
	}
	return state, nil
}

func SandwichStateAddress(programId solana.PublicKey) (solana.PublicKey, error) {
	state, _, err := solana.FindProgramAddress([][]byte{[]byte(SandwichStateSeed)}, programId)
	return state, err
}
