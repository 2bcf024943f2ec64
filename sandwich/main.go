package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/egaotan/solana-sandwich/config"
	"github.com/egaotan/solana-sandwich/sandwich/app"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM, syscall.SIGABRT)
	go shutdown(cancel, quit)

	if len(os.Args) != 2 {
		panic("args is invalid, usage: sandwich <workspace>")
	}
	workSpace := os.Args[1]
	if err := os.Chdir(workSpace); err != nil {
		panic(err)
	}
	workspace, _ := os.Getwd()
	fmt.Printf("work space: %s\n", workspace)

	cfg, err := config.Load(config.ConfigFile)
	if err != nil {
		panic(err)
	}
	sw, err := app.NewSandwich(ctx, cfg)
	if err != nil {
		panic(err)
	}
	if err := sw.Service(); err != nil {
		panic(err)
	}
}

func shutdown(cancel context.CancelFunc, quit <-chan os.Signal) {
	osCall := <-quit
	fmt.Printf("System call: %v, sandwich is shutting down......\n", osCall)
	cancel()
}
