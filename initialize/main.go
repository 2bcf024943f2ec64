package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/egaotan/solana-sandwich/backend"
	"github.com/egaotan/solana-sandwich/config"
	"github.com/egaotan/solana-sandwich/program"
	"github.com/egaotan/solana-sandwich/utils"
	"github.com/gagliardetto/solana-go"
)

// initialize creates the sandwich program state account with the given tip share.
// usage: initialize <workspace> [tip_bps]
func main() {
	if len(os.Args) < 2 || len(os.Args) > 3 {
		panic("args is invalid, usage: initialize <workspace> [tip_bps]")
	}
	if err := os.Chdir(os.Args[1]); err != nil {
		panic(err)
	}
	cfg, err := config.Load(config.ConfigFile)
	if err != nil {
		panic(err)
	}
	tipBps := cfg.TipBps
	if len(os.Args) == 3 {
		v, err := strconv.ParseUint(os.Args[2], 10, 16)
		if err != nil {
			panic(err)
		}
		if v > 10000 {
			panic(fmt.Errorf("tip bps(%d) out of range", v))
		}
		tipBps = uint16(v)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	log := utils.NewLog(config.LogPath, config.InitializeLog)
	b := backend.NewBackend(ctx, log, cfg.Nodes)
	payer, err := b.LoadWallet(cfg.KeyFile)
	if err != nil {
		panic(err)
	}
	state, err := program.SandwichStateAddress(cfg.SandwichProgram)
	if err != nil {
		panic(err)
	}
	account, err := b.Account(ctx, state)
	if err != nil {
		panic(err)
	}
	if account.Exists() {
		current, err := program.UnpackSandwichState(account.Account.Data.GetBinary())
		if err != nil {
			panic(err)
		}
		fmt.Printf("state %s already initialized, tip bps: %d\n", state, current.TipBps)
		return
	}

	instruction, err := program.InstructionInitialize(cfg.SandwichProgram, payer, state, tipBps)
	if err != nil {
		panic(err)
	}
	is := []solana.Instruction{instruction}
	logs, err := b.Simulate(ctx, is)
	for _, line := range logs {
		log.Print(line)
	}
	if err != nil {
		panic(err)
	}
	sig, err := b.SendTransaction(ctx, is)
	if err != nil {
		panic(err)
	}
	fmt.Printf("state %s initialized with tip bps %d: %s\n", state, tipBps, sig)
}
