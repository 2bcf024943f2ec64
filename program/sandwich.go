package program

import (
	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

const (
	SandwichInitialize uint8 = iota
	SandwichSwapIn
	SandwichSwapOut
)

type initializeArgs struct {
	Tag   uint8
	State SandwichState
}

type swapInArgs struct {
	Tag              uint8
	AmountIn         uint64
	MinimumAmountOut uint64
}

// SwapAccounts are the Raydium pool accounts both legs of a sandwich touch.
type SwapAccounts struct {
	Payer     solana.PublicKey
	State     solana.PublicKey
	Wsol      solana.PublicKey
	TokenUser solana.PublicKey
	TokenMint solana.PublicKey
	Amm       solana.PublicKey
	CoinVault solana.PublicKey
	PcVault   solana.PublicKey
}

func InstructionInitialize(programId solana.PublicKey, payer solana.PublicKey, state solana.PublicKey, tipBps uint16) (solana.Instruction, error) {
	data, err := bin.MarshalBorsh(&initializeArgs{
		Tag:   SandwichInitialize,
		State: SandwichState{PreswapBalance: 0, TipBps: tipBps},
	})
	if err != nil {
		return nil, err
	}
	instruction := &Instruction{
		IsAccounts: []*solana.AccountMeta{
			Signer(payer),
			Writable(state),
			ReadOnly(System),
		},
		IsData:      data,
		IsProgramID: programId,
	}
	return instruction, nil
}

func InstructionSwapIn(programId solana.PublicKey, accounts *SwapAccounts, amountIn uint64, minimumAmountOut uint64) (solana.Instruction, error) {
	data, err := bin.MarshalBorsh(&swapInArgs{
		Tag:              SandwichSwapIn,
		AmountIn:         amountIn,
		MinimumAmountOut: minimumAmountOut,
	})
	if err != nil {
		return nil, err
	}
	instruction := &Instruction{
		IsAccounts: []*solana.AccountMeta{
			Signer(accounts.Payer),
			Writable(accounts.State),
			Writable(accounts.Wsol),
			Writable(accounts.TokenUser),
			ReadOnly(Raydium),
			ReadOnly(accounts.TokenMint),
			Writable(accounts.Amm),
			ReadOnly(RaydiumAuthority),
			Writable(accounts.CoinVault),
			Writable(accounts.PcVault),
			ReadOnly(Token),
			ReadOnly(AssociatedToken),
			ReadOnly(System),
		},
		IsData:      data,
		IsProgramID: programId,
	}
	return instruction, nil
}

func InstructionSwapOut(programId solana.PublicKey, accounts *SwapAccounts, tip solana.PublicKey) (solana.Instruction, error) {
	instruction := &Instruction{
		IsAccounts: []*solana.AccountMeta{
			Signer(accounts.Payer),
			Writable(accounts.State),
			Writable(accounts.TokenUser),
			Writable(accounts.Wsol),
			ReadOnly(Raydium),
			Writable(accounts.Amm),
			ReadOnly(RaydiumAuthority),
			Writable(accounts.CoinVault),
			Writable(accounts.PcVault),
			ReadOnly(Token),
			ReadOnly(System),
			Writable(tip),
		},
		IsData:      []byte{SandwichSwapOut},
		IsProgramID: programId,
	}
	return instruction, nil
}
