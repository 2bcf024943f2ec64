package backend

import (
	"context"
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

func (backend *Backend) LatestBlockhash(ctx context.Context) (solana.Hash, error) {
	response, err := backend.rpcClient.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return solana.Hash{}, fmt.Errorf("get latest blockhash err: %w", err)
	}
	return response.Value.Blockhash, nil
}

// Transaction builds a transaction paid and signed by the player.
func (backend *Backend) Transaction(is []solana.Instruction, blockHash solana.Hash) (*solana.Transaction, error) {
	trx, err := solana.NewTransaction(is, blockHash, solana.TransactionPayer(backend.player))
	if err != nil {
		return nil, fmt.Errorf("build transaction err: %w", err)
	}
	if _, err := trx.Sign(backend.GetWallet); err != nil {
		return nil, fmt.Errorf("sign transaction err: %w", err)
	}
	return trx, nil
}

// Simulate runs the instructions against the latest blockhash and returns the program logs.
func (backend *Backend) Simulate(ctx context.Context, is []solana.Instruction) ([]string, error) {
	blockHash, err := backend.LatestBlockhash(ctx)
	if err != nil {
		return nil, err
	}
	trx, err := backend.Transaction(is, blockHash)
	if err != nil {
		return nil, err
	}
	response, err := backend.rpcClient.SimulateTransactionWithOpts(ctx, trx, &rpc.SimulateTransactionOpts{
		SigVerify:  false,
		Commitment: rpc.CommitmentProcessed,
	})
	if err != nil {
		return nil, fmt.Errorf("simulate transaction err: %w", err)
	}
	result := response.Value
	if result.Logs == nil {
		return nil, fmt.Errorf("log is nil, simulate failed before the transaction was able to executed, such as signature verification failure or invalid blockhash")
	}
	if result.Err != nil {
		return result.Logs, fmt.Errorf("simulate transaction failed: %v, logs: %s", result.Err, strings.Join(result.Logs, "; "))
	}
	return result.Logs, nil
}

func (backend *Backend) SendTransaction(ctx context.Context, is []solana.Instruction) (solana.Signature, error) {
	blockHash, err := backend.LatestBlockhash(ctx)
	if err != nil {
		return solana.Signature{}, err
	}
	trx, err := backend.Transaction(is, blockHash)
	if err != nil {
		return solana.Signature{}, err
	}
	sig, err := backend.rpcClient.SendTransactionWithOpts(ctx, trx, rpc.TransactionOpts{
		SkipPreflight:       false,
		PreflightCommitment: rpc.CommitmentProcessed,
	})
	if err != nil {
		return solana.Signature{}, fmt.Errorf("send transaction err: %w", err)
	}
	backend.log.Printf("send transaction: %s", sig)
	return sig, nil
}
