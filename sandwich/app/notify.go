package app

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/egaotan/solana-sandwich/balancelisten"
	"github.com/egaotan/solana-sandwich/dingsdk"
	"github.com/sirupsen/logrus"
)

// Notify pushes submitted bundles to the ding webhook off the hot path.
type Notify struct {
	ctx  context.Context
	wg   sync.WaitGroup
	log  *logrus.Logger
	data chan *Result
	dsdk *dingsdk.DingSdk
}

func NewNotify(ctx context.Context, log *logrus.Logger, dsdk *dingsdk.DingSdk) *Notify {
	return &Notify{
		ctx:  ctx,
		log:  log,
		dsdk: dsdk,
		data: make(chan *Result, 32),
	}
}

func (notify *Notify) Start() {
	notify.wg.Add(1)
	go notify.listen()
}

func (notify *Notify) Stop() {
	notify.wg.Wait()
}

func (notify *Notify) Commit(result *Result) {
	if !notify.dsdk.Enabled() {
		return
	}
	select {
	case notify.data <- result:
	default:
	}
}

func (notify *Notify) listen() {
	defer notify.wg.Done()
	for {
		select {
		case result := <-notify.data:
			notify.tryNotify(result)
		case <-notify.ctx.Done():
			return
		}
	}
}

func (notify *Notify) tryNotify(result *Result) {
	if _, err := notify.dsdk.Notify(notify.ctx, dingsdk.NewTextNotify(notifyText(result))); err != nil {
		notify.log.Printf("ding notify err: %s", err.Error())
	}
}

func notifyText(result *Result) string {
	items := make([]string, 0, 8)
	items = append(items, "sandwich: ")
	items = append(items, fmt.Sprintf("id: %s;", result.Id))
	items = append(items, fmt.Sprintf("time: %s;", result.Received.Format("2006-01-02 15:04:05")))
	if result.Candidate != nil {
		items = append(items, fmt.Sprintf("victim: %s;", result.Candidate.Signature))
	}
	if result.Pool != nil {
		items = append(items, fmt.Sprintf("pool: %s;", result.Pool.Pool))
		items = append(items, fmt.Sprintf("token: %s;", result.Pool.Token))
	}
	if result.Sizing != nil {
		items = append(items, fmt.Sprintf("front-run: %s SOL;", balancelisten.Lamports(result.Sizing.AmountIn).StringFixed(4)))
	}
	items = append(items, fmt.Sprintf("bundle: %s;", result.BundleId))
	return strings.Join(items, "\n")
}
