package app

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/egaotan/solana-sandwich/backend"
	"github.com/egaotan/solana-sandwich/balancelisten"
	"github.com/egaotan/solana-sandwich/bundle"
	"github.com/egaotan/solana-sandwich/config"
	"github.com/egaotan/solana-sandwich/decoder"
	"github.com/egaotan/solana-sandwich/dingsdk"
	"github.com/egaotan/solana-sandwich/metrics"
	"github.com/egaotan/solana-sandwich/networkdetect"
	"github.com/egaotan/solana-sandwich/raydium"
	"github.com/egaotan/solana-sandwich/relayer"
	"github.com/egaotan/solana-sandwich/sender"
	"github.com/egaotan/solana-sandwich/spltoken"
	"github.com/egaotan/solana-sandwich/store"
	"github.com/egaotan/solana-sandwich/system"
	"github.com/egaotan/solana-sandwich/utils"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Sandwich struct {
	ctx           context.Context
	log           *logrus.Logger
	config        *config.Config
	wg            sync.WaitGroup
	backend       *backend.Backend
	relayer       *relayer.Relayer
	pipeline      *Pipeline
	metrics       *metrics.Metrics
	store         *store.Store
	balanceListen *balancelisten.BalanceListen
	feeListen     *balancelisten.BalanceListen
	notify        *Notify
	nd            *networkdetect.NetworkDetector
	httpServer    *http.Server
}

func NewSandwich(ctx context.Context, cfg *config.Config) (*Sandwich, error) {
	log := utils.NewLog(config.LogPath, config.PipelineLog)
	backendLog := utils.NewLog(config.LogPath, config.BackendLog)
	relayerLog := utils.NewLog(config.LogPath, config.RelayerLog)
	senderLog := utils.NewLog(config.LogPath, config.SenderLog)
	networkLog := utils.NewLog(config.LogPath, config.NetworkLog)
	balanceLog := utils.NewLog(config.LogPath, config.BalanceLog)
	storeLog := utils.NewLog(config.LogPath, config.StoreLog)
	utils.SetLevel(cfg.LogLevel, log, backendLog, relayerLog, senderLog, networkLog, balanceLog, storeLog)

	sw := &Sandwich{
		ctx:     ctx,
		log:     log,
		config:  cfg,
		metrics: metrics.NewMetrics(),
	}
	b := backend.NewBackend(ctx, backendLog, cfg.Nodes)
	payer, err := b.LoadWallet(cfg.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("load wallet err: %w", err)
	}
	sw.backend = b
	log.Printf("payer: %s", payer)

	dsdk := dingsdk.NewDingSdk(cfg.DingUrl)
	engineUrl := cfg.BlockEngines[0]
	if cfg.DetectBlockEngine {
		var rtt time.Duration
		engineUrl, rtt = networkdetect.DetectPeers(networkLog, cfg.BlockEngines, networkdetect.PingProbe)
		log.Printf("block engine: %s, rtt: %d ms", engineUrl, rtt.Milliseconds())
		nd, err := networkdetect.NewNetworkDetector(ctx, networkLog, engineUrl, dsdk)
		if err != nil {
			return nil, err
		}
		sw.nd = nd
	}
	engine := sender.NewBlockEngine(senderLog, engineUrl, time.Duration(cfg.SubmitTimeoutMs)*time.Millisecond)

	builder, err := bundle.NewBuilder(cfg.SandwichProgram, payer, b.GetWallet)
	if err != nil {
		return nil, err
	}
	pipeline := NewPipeline(log, PipelineConfig{
		MaxInFlight:   cfg.MaxInFlight,
		ToleranceBps:  cfg.ToleranceBps,
		FeeBps:        cfg.FeeBps,
		SubmitTimeout: time.Duration(cfg.SubmitTimeoutMs) * time.Millisecond,
	}, decoder.Default(), raydium.NewProgram(b), builder, engine, sw.metrics)

	if cfg.DBUrl != "" {
		s, err := store.NewStore(ctx, storeLog, cfg.DBDialect, cfg.DBUrl)
		if err != nil {
			return nil, err
		}
		sw.store = s
		pipeline.SetRecorder(s)
	}
	sw.notify = NewNotify(ctx, log, dsdk)
	pipeline.SetNotifier(sw.notify)
	sw.pipeline = pipeline

	ticker := time.Duration(cfg.BalanceTicker) * time.Second
	sw.balanceListen = balancelisten.NewBalanceListen(ctx, balanceLog, "capital", spltoken.NewProgram(b), builder.CapitalAccount(),
		ticker, sw.metrics.PayerBalance, dsdk)
	sw.feeListen = balancelisten.NewBalanceListen(ctx, balanceLog, "fee", system.NewProgram(b), payer,
		ticker, sw.metrics.PayerSolBalance, dsdk)
	sw.relayer = relayer.NewRelayer(ctx, relayerLog, cfg.Relayer, cfg.QueueSize)
	return sw, nil
}

func (sw *Sandwich) Service() error {
	if err := sw.Start(); err != nil {
		return err
	}
	sw.StartRPC()
	<-sw.ctx.Done()
	sw.StopRPC()
	sw.Stop()
	return nil
}

func (sw *Sandwich) Start() error {
	if sw.store != nil {
		sw.store.Start()
	}
	if sw.nd != nil {
		sw.nd.Start()
	}
	sw.notify.Start()
	sw.balanceListen.Start()
	sw.feeListen.Start()
	if err := sw.relayer.Start(); err != nil {
		return err
	}
	sw.wg.Add(1)
	go func() {
		defer sw.wg.Done()
		sw.pipeline.Dispatch(sw.ctx, sw.relayer.Batches())
	}()
	sw.log.Printf("sandwich has started......")
	return nil
}

func (sw *Sandwich) Stop() {
	sw.relayer.Stop()
	sw.wg.Wait()
	sw.pipeline.Wait()
	sw.notify.Stop()
	sw.balanceListen.Stop()
	sw.feeListen.Stop()
	if sw.nd != nil {
		sw.nd.Stop()
	}
	if sw.store != nil {
		sw.store.Stop()
	}
	sw.log.Printf("sandwich has stopped......")
}

func (sw *Sandwich) StartRPC() {
	gin.SetMode(gin.ReleaseMode)
	var query Query
	if sw.store != nil {
		query = sw.store
	}
	sw.httpServer = &http.Server{
		Addr:    sw.config.Listen,
		Handler: NewRouter(query, sw.metrics),
	}
	sw.log.Printf("start rpc server......")
	go func() {
		if err := sw.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sw.log.Printf("ListenAndServe: %s", err.Error())
		}
	}()
}

func (sw *Sandwich) StopRPC() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sw.httpServer.Shutdown(ctx); err != nil {
		sw.log.Printf("rpc server shutdown err: %s", err.Error())
	}
	sw.log.Printf("rpc server has stopped......")
}
