package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/egaotan/solana-sandwich/bundle"
	"github.com/egaotan/solana-sandwich/calculator"
	"github.com/egaotan/solana-sandwich/decoder"
	"github.com/egaotan/solana-sandwich/metrics"
	"github.com/egaotan/solana-sandwich/raydium"
	"github.com/egaotan/solana-sandwich/relayer"
	"github.com/egaotan/solana-sandwich/store"
	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"
)

type PoolResolver interface {
	Resolve(ctx context.Context, pool solana.PublicKey) (*raydium.PoolState, error)
	Snapshot(ctx context.Context, pool *raydium.PoolState, capital solana.PublicKey) (*raydium.ReserveSnapshot, error)
}

type BundleSubmitter interface {
	Url() string
	SendBundle(ctx context.Context, transactions []string) (string, error)
}

type Recorder interface {
	StoreCandidate(candidate *store.Candidate)
	StoreSubmittedBundle(bundle *store.SubmittedBundle)
}

type Notifier interface {
	Commit(result *Result)
}

// Result is what one candidate went through; Stage is where it stopped.
type Result struct {
	Id        string
	Stage     string
	Err       error
	Received  time.Time
	Finished  time.Time
	Candidate *relayer.Candidate
	Decoder   string
	Intent    *decoder.SwapIntent
	Pool      *raydium.PoolState
	Snapshot  *raydium.ReserveSnapshot
	Sizing    *calculator.SizingResult
	Sandwich  *bundle.Sandwich
	Bundle    *bundle.Bundle
	BundleId  string
	SendTime  time.Time
	RespTime  time.Time
}

func (r *Result) Submitted() bool {
	return r.Stage == store.StageSubmitted
}

type PipelineConfig struct {
	MaxInFlight   int64
	ToleranceBps  uint64
	FeeBps        uint64
	SubmitTimeout time.Duration
}

type Pipeline struct {
	log       *logrus.Logger
	config    PipelineConfig
	registry  *decoder.Registry
	resolver  PoolResolver
	builder   *bundle.Builder
	submitter BundleSubmitter
	metrics   *metrics.Metrics
	recorder  Recorder
	notifier  Notifier
	sem       *semaphore.Weighted
	wg        sync.WaitGroup
}

func NewPipeline(log *logrus.Logger, cfg PipelineConfig, registry *decoder.Registry, resolver PoolResolver, builder *bundle.Builder, submitter BundleSubmitter, m *metrics.Metrics) *Pipeline {
	return &Pipeline{
		log:       log,
		config:    cfg,
		registry:  registry,
		resolver:  resolver,
		builder:   builder,
		submitter: submitter,
		metrics:   m,
		sem:       semaphore.NewWeighted(cfg.MaxInFlight),
	}
}

func (p *Pipeline) SetRecorder(recorder Recorder) {
	p.recorder = recorder
}

func (p *Pipeline) SetNotifier(notifier Notifier) {
	p.notifier = notifier
}

// Dispatch drains batches until the channel closes or ctx is done. Every packet runs in
// its own goroutine, at most MaxInFlight at a time.
func (p *Pipeline) Dispatch(ctx context.Context, batches <-chan *relayer.Batch) {
	for {
		select {
		case batch, ok := <-batches:
			if !ok {
				return
			}
			p.metrics.QueueDepth.Set(float64(len(batches)))
			for _, packet := range batch.Transactions {
				if err := p.sem.Acquire(ctx, 1); err != nil {
					return
				}
				p.wg.Add(1)
				go func(packet *relayer.Packet, received time.Time) {
					defer p.wg.Done()
					defer p.sem.Release(1)
					p.Process(ctx, packet, received)
				}(packet, batch.Received)
			}
		case <-ctx.Done():
			return
		}
	}
}

// Wait blocks until every dispatched candidate has finished.
func (p *Pipeline) Wait() {
	p.wg.Wait()
}

// Process runs one candidate through decode, resolve, size, build and submit.
// Any failure drops the candidate; nothing is retried.
func (p *Pipeline) Process(ctx context.Context, packet *relayer.Packet, received time.Time) *Result {
	p.metrics.InFlight.Inc()
	defer p.metrics.InFlight.Dec()
	p.metrics.CandidatesReceived.Inc()
	if received.IsZero() {
		received = time.Now()
	}
	result := &Result{
		Id:       uuid.NewString(),
		Received: received,
	}
	result.Stage, result.Err = p.process(ctx, packet, result)
	result.Finished = time.Now()
	p.finish(result)
	return result
}

func (p *Pipeline) process(ctx context.Context, packet *relayer.Packet, result *Result) (string, error) {
	start := time.Now()
	candidate, err := relayer.DecodePacket(packet)
	p.observe(store.StageDeserialize, start)
	if err != nil {
		return store.StageDeserialize, err
	}
	result.Candidate = candidate

	start = time.Now()
	intent, _, ok := p.registry.Decode(candidate.Tx)
	p.observe(store.StageDecode, start)
	if !ok {
		return store.StageDecode, fmt.Errorf("no swap intent in transaction")
	}
	result.Intent = intent
	if d, ok := p.registry.Get(intent.Program); ok {
		result.Decoder = d.Name()
		p.metrics.IntentsDecoded.WithLabelValues(d.Name()).Inc()
	}

	ctx, cancel := context.WithTimeout(ctx, p.config.SubmitTimeout)
	defer cancel()

	start = time.Now()
	pool, err := p.resolver.Resolve(ctx, intent.Pool)
	if err != nil {
		p.observe(store.StageResolve, start)
		return store.StageResolve, err
	}
	result.Pool = pool
	snapshot, err := p.resolver.Snapshot(ctx, pool, p.builder.CapitalAccount())
	p.observe(store.StageResolve, start)
	if err != nil {
		return store.StageResolve, err
	}
	result.Snapshot = snapshot

	start = time.Now()
	feeBps := pool.FeeBps
	if feeBps == 0 {
		feeBps = p.config.FeeBps
	}
	sizer := calculator.NewSizer(feeBps, p.config.ToleranceBps)
	sizing, err := sizer.Size(0, snapshot.Capital, intent.AmountIn, intent.MinimumAmountOut, snapshot.ReserveIn, snapshot.ReserveOut)
	p.observe(store.StageSize, start)
	if err != nil {
		return store.StageSize, err
	}
	result.Sizing = sizing
	if sizing.AmountIn == 0 {
		return store.StageSize, calculator.ErrNoOpportunity
	}
	p.metrics.FrontRunAmount.Observe(float64(sizing.AmountIn))

	start = time.Now()
	sandwich, err := p.builder.Build(pool, sizing.AmountIn, candidate.Tx.Message.RecentBlockhash)
	if err != nil {
		return store.StageBuild, err
	}
	result.Sandwich = sandwich
	b, err := bundle.New(sandwich, candidate.Raw, candidate.Signature)
	p.observe(store.StageBuild, start)
	if err != nil {
		return store.StageBuild, err
	}
	result.Bundle = b

	result.SendTime = time.Now()
	bundleId, err := p.submitter.SendBundle(ctx, b.Encode())
	result.RespTime = time.Now()
	p.observe(store.StageSubmit, result.SendTime)
	if err != nil {
		return store.StageSubmit, err
	}
	result.BundleId = bundleId
	return store.StageSubmitted, nil
}

func (p *Pipeline) observe(stage string, start time.Time) {
	p.metrics.StageLatency.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

func (p *Pipeline) fields(result *Result) logrus.Fields {
	fields := logrus.Fields{
		"id":    result.Id,
		"stage": result.Stage,
	}
	if result.Candidate != nil {
		fields["signature"] = result.Candidate.Signature.String()
	}
	if result.Intent != nil {
		fields["decoder"] = result.Decoder
		fields["pool"] = result.Intent.Pool.String()
		fields["amount_in"] = result.Intent.AmountIn
		fields["min_out"] = result.Intent.MinimumAmountOut
	}
	if result.Sizing != nil {
		fields["front_run"] = result.Sizing.AmountIn
		fields["iterations"] = result.Sizing.Iterations
	}
	return fields
}

func (p *Pipeline) finish(result *Result) {
	entry := p.log.WithFields(p.fields(result))
	switch {
	case result.Err == nil:
		p.metrics.BundlesSubmitted.Inc()
		entry.WithField("bundle", result.BundleId).Info("bundle submitted")
	case result.Stage == store.StageSubmit:
		p.metrics.BundlesFailed.Inc()
		p.metrics.CandidatesDropped.WithLabelValues(result.Stage).Inc()
		entry.WithError(result.Err).Warn("bundle submission failed")
	case errors.Is(result.Err, calculator.ErrInvariant):
		p.metrics.CandidatesDropped.WithLabelValues(result.Stage).Inc()
		entry.WithError(result.Err).Error("candidate dropped on invariant violation")
	case errors.Is(result.Err, calculator.ErrNoOpportunity):
		p.metrics.CandidatesDropped.WithLabelValues(result.Stage).Inc()
		entry.WithError(result.Err).Debug("candidate dropped")
	default:
		p.metrics.CandidatesDropped.WithLabelValues(result.Stage).Inc()
		entry.WithError(result.Err).Warn("candidate dropped")
	}
	p.record(result)
	if result.Submitted() && p.notifier != nil {
		p.notifier.Commit(result)
	}
}

func (p *Pipeline) record(result *Result) {
	if p.recorder == nil {
		return
	}
	candidate := &store.Candidate{
		Id:          result.Id,
		Stage:       result.Stage,
		ReceiveTime: uint64(result.Received.UnixMilli()),
		FinishTime:  uint64(result.Finished.UnixMilli()),
	}
	if result.Err != nil {
		candidate.Reason = truncate(result.Err.Error(), 255)
	}
	if result.Candidate != nil {
		candidate.Signature = result.Candidate.Signature.String()
	}
	if result.Intent != nil {
		candidate.Decoder = result.Decoder
		candidate.Pool = result.Intent.Pool.String()
		candidate.AmountIn = result.Intent.AmountIn
		candidate.MinimumAmountOut = result.Intent.MinimumAmountOut
	}
	p.recorder.StoreCandidate(candidate)
	if result.Bundle == nil {
		return
	}
	submitted := &store.SubmittedBundle{
		CandidateId:    result.Id,
		Token:          result.Pool.Token.String(),
		FrontRunAmount: result.Sandwich.AmountIn,
		ReserveIn:      result.Snapshot.ReserveIn,
		ReserveOut:     result.Snapshot.ReserveOut,
		Tip:            result.Sandwich.Tip.String(),
		BlockEngine:    p.submitter.Url(),
		BundleId:       result.BundleId,
		FrontSignature: result.Bundle.Signatures[0].String(),
		BackSignature:  result.Bundle.Signatures[2].String(),
		SendTime:       uint64(result.SendTime.UnixMilli()),
		ResponseTime:   uint64(result.RespTime.UnixMilli()),
	}
	if result.Err != nil {
		submitted.Error = truncate(result.Err.Error(), 255)
	}
	p.recorder.StoreSubmittedBundle(submitted)
}

// truncate cuts s to at most n bytes without splitting a utf-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
