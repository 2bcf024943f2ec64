package backend

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

type Wallet struct {
	pubkey solana.PublicKey
	prikey solana.PrivateKey
}

func (backend *Backend) ImportWallet(priKey string) (solana.PublicKey, error) {
	pri, err := solana.PrivateKeyFromBase58(priKey)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("import wallet err: %w", err)
	}
	return backend.addWallet(pri), nil
}

// LoadWallet reads a solana-keygen JSON key file.
func (backend *Backend) LoadWallet(path string) (solana.PublicKey, error) {
	pri, err := solana.PrivateKeyFromSolanaKeygenFile(path)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("load wallet(%s) err: %w", path, err)
	}
	return backend.addWallet(pri), nil
}

func (backend *Backend) addWallet(pri solana.PrivateKey) solana.PublicKey {
	pub := pri.PublicKey()
	backend.wallets = append(backend.wallets, &Wallet{
		pubkey: pub,
		prikey: pri,
	})
	if backend.player.IsZero() {
		backend.player = pub
	}
	backend.log.Printf("import wallet: %s", pub)
	return pub
}

// GetWallet is the signer lookup handed to solana.Transaction.Sign; unknown keys yield nil.
func (backend *Backend) GetWallet(key solana.PublicKey) *solana.PrivateKey {
	for _, wallet := range backend.wallets {
		if wallet.pubkey == key {
			return &wallet.prikey
		}
	}
	return nil
}

func (backend *Backend) Player() solana.PublicKey {
	return backend.player
}
