package bundle

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
)

const Size = 3

// Bundle is [front-run, victim, back-run] in wire form.
type Bundle struct {
	Transactions [Size][]byte
	Signatures   [Size]solana.Signature
}

// New serializes the sandwich around the victim's original wire bytes.
func New(sandwich *Sandwich, victimRaw []byte, victimSignature solana.Signature) (*Bundle, error) {
	if len(victimRaw) == 0 {
		return nil, fmt.Errorf("victim transaction is empty")
	}
	front, err := sandwich.Front.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("marshal front-run err: %w", err)
	}
	back, err := sandwich.Back.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("marshal back-run err: %w", err)
	}
	return &Bundle{
		Transactions: [Size][]byte{front, victimRaw, back},
		Signatures:   [Size]solana.Signature{sandwich.Front.Signatures[0], victimSignature, sandwich.Back.Signatures[0]},
	}, nil
}

// Encode returns the base58 form sendBundle expects.
func (b *Bundle) Encode() []string {
	encoded := make([]string, 0, Size)
	for _, trx := range b.Transactions {
		encoded = append(encoded, base58.Encode(trx))
	}
	return encoded
}
