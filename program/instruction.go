package program

import "github.com/gagliardetto/solana-go"

type Instruction struct {
	IsAccounts  []*solana.AccountMeta
	IsData      []byte
	IsProgramID solana.PublicKey
}

func (i *Instruction) Accounts() []*solana.AccountMeta {
	return i.IsAccounts
}

func (i *Instruction) ProgramID() solana.PublicKey {
	return i.IsProgramID
}

func (i *Instruction) Data() ([]byte, error) {
	return i.IsData, nil
}

func Signer(key solana.PublicKey) *solana.AccountMeta {
	return &solana.AccountMeta{PublicKey: key, IsSigner: true, IsWritable: true}
}

func Writable(key solana.PublicKey) *solana.AccountMeta {
	return &solana.AccountMeta{PublicKey: key, IsSigner: false, IsWritable: true}
}

func ReadOnly(key solana.PublicKey) *solana.AccountMeta {
	return &solana.AccountMeta{PublicKey: key, IsSigner: false, IsWritable: false}
}
