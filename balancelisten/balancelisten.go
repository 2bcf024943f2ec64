package balancelisten

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/egaotan/solana-sandwich/dingsdk"
	"github.com/gagliardetto/solana-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const SolDecimals = 9

type BalanceGetter interface {
	GetBalance(ctx context.Context, key solana.PublicKey) (uint64, error)
}

// BalanceListen polls one payer account and reports every change.
type BalanceListen struct {
	ctx      context.Context
	wg       sync.WaitGroup
	log      *logrus.Logger
	name     string
	getter   BalanceGetter
	account  solana.PublicKey
	interval time.Duration
	gauge    prometheus.Gauge
	dsdk     *dingsdk.DingSdk
	balance  uint64
	known    bool
}

func NewBalanceListen(ctx context.Context, log *logrus.Logger, name string, getter BalanceGetter, account solana.PublicKey, interval time.Duration, gauge prometheus.Gauge, dsdk *dingsdk.DingSdk) *BalanceListen {
	bl := &BalanceListen{
		ctx:      ctx,
		log:      log,
		name:     name,
		getter:   getter,
		account:  account,
		interval: interval,
		gauge:    gauge,
		dsdk:     dsdk,
	}
	return bl
}

func (bl *BalanceListen) Start() {
	bl.wg.Add(1)
	go bl.accountBalance()
}

func (bl *BalanceListen) Stop() {
	bl.wg.Wait()
}

func (bl *BalanceListen) accountBalance() {
	defer bl.wg.Done()
	bl.poll()
	ticker := time.NewTicker(bl.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			bl.poll()
		case <-bl.ctx.Done():
			return
		}
	}
}

func (bl *BalanceListen) poll() {
	balance, err := bl.getter.GetBalance(bl.ctx, bl.account)
	if err != nil {
		bl.log.Printf("get balance of %s err: %s", bl.account, err.Error())
		return
	}
	bl.update(balance)
}

// update returns the notification text, empty when the balance did not move.
func (bl *BalanceListen) update(balance uint64) string {
	if bl.gauge != nil {
		bl.gauge.Set(float64(balance))
	}
	if bl.known && balance == bl.balance {
		return ""
	}
	content := FormatChange(bl.name, bl.balance, balance, bl.known, time.Now())
	bl.log.Print(content)
	bl.balance = balance
	bl.known = true
	if bl.dsdk.Enabled() {
		if _, err := bl.dsdk.Notify(bl.ctx, dingsdk.NewTextNotify(content)); err != nil {
			bl.log.Printf("ding notify err: %s", err.Error())
		}
	}
	return content
}

// Lamports renders a raw WSOL amount in SOL.
func Lamports(amount uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(amount), -SolDecimals)
}

func FormatChange(name string, before, after uint64, known bool, at time.Time) string {
	oldBalance := Lamports(before)
	newBalance := Lamports(after)
	diff := decimal.Zero
	if known {
		diff = newBalance.Sub(oldBalance)
	}
	return fmt.Sprintf("sandwich %s balance update: \n%s -> %s (%s);\ntime: %s;",
		name, oldBalance.StringFixed(4), newBalance.StringFixed(4),
		diff.StringFixed(4), at.Format("2006-01-02 15:04:05"))
}
