package app

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/egaotan/solana-sandwich/dingsdk"
	"github.com/egaotan/solana-sandwich/metrics"
	"github.com/egaotan/solana-sandwich/store"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeQuery struct {
	candidates map[string]*store.Candidate
	bundles    map[string][]*store.SubmittedBundle
	err        error
}

func (f *fakeQuery) GetCandidate(id string) ([]*store.Candidate, error) {
	if f.err != nil {
		return nil, f.err
	}
	if c, ok := f.candidates[id]; ok {
		return []*store.Candidate{c}, nil
	}
	return []*store.Candidate{}, nil
}

func (f *fakeQuery) GetSubmittedBundle(candidateId string) ([]*store.SubmittedBundle, error) {
	return f.bundles[candidateId], nil
}

func (f *fakeQuery) Stats() (map[string]int64, error) {
	if f.err != nil {
		return nil, f.err
	}
	return map[string]int64{store.StageSubmitted: 2, store.StageDecode: 7}, nil
}

func serve(router *gin.Engine, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestRouter_Candidate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	query := &fakeQuery{
		candidates: map[string]*store.Candidate{
			"c1": {Id: "c1", Signature: "sig", Stage: store.StageSubmitted, AmountIn: 10_000},
		},
		bundles: map[string][]*store.SubmittedBundle{
			"c1": {{CandidateId: "c1", FrontRunAmount: 1_500_000_000, BundleId: "b1"}},
		},
	}
	router := NewRouter(query, metrics.NewMetrics())

	w := serve(router, "/api/candidate?id=c1")
	require.Equal(t, http.StatusOK, w.Code)
	detail := &CandidateDetail{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), detail))
	assert.Equal(t, "sig", detail.Candidate.Signature)
	assert.Equal(t, uint64(10_000), detail.Candidate.AmountIn)
	require.Len(t, detail.Bundles, 1)
	assert.Equal(t, "1.5000", detail.Bundles[0].FrontRunAmount)
	assert.Equal(t, "b1", detail.Bundles[0].BundleId)

	assert.Equal(t, http.StatusNotFound, serve(router, "/api/candidate?id=missing").Code)
	assert.Equal(t, http.StatusBadRequest, serve(router, "/api/candidate").Code)
}

func TestRouter_Stats(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := NewRouter(&fakeQuery{}, metrics.NewMetrics())
	w := serve(router, "/api/stats")
	require.Equal(t, http.StatusOK, w.Code)
	stats := map[string]int64{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, int64(7), stats[store.StageDecode])

	router = NewRouter(&fakeQuery{err: errors.New("db down")}, metrics.NewMetrics())
	assert.Equal(t, http.StatusInternalServerError, serve(router, "/api/stats").Code)
}

func TestRouter_NoStore(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := metrics.NewMetrics()
	m.BundlesSubmitted.Inc()
	router := NewRouter(nil, m)
	assert.Equal(t, http.StatusServiceUnavailable, serve(router, "/api/stats").Code)
	assert.Equal(t, http.StatusServiceUnavailable, serve(router, "/api/candidate?id=x").Code)

	w := serve(router, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "solana_sandwich_bundle_submitted_total 1")
}

func TestNotify(t *testing.T) {
	received := make(chan string, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		received <- string(body)
		w.Write([]byte(`{"errcode":0,"errmsg":"ok"}`))
	}))
	defer server.Close()

	f := newFixture(t)
	packet, _, _ := victimPacket(t, f.pool.Pool, 10_000, 9_800)
	result := f.pipeline.Process(context.Background(), packet, time.Now())
	require.True(t, result.Submitted())

	text := notifyText(result)
	assert.Contains(t, text, "bundle: bundle-1;")
	assert.Contains(t, text, "front-run: 0.0000 SOL;")
	assert.Contains(t, text, result.Pool.Token.String())

	log := logrus.New()
	log.SetOutput(io.Discard)
	ctx, cancel := context.WithCancel(context.Background())
	notify := NewNotify(ctx, log, dingsdk.NewDingSdk(server.URL))
	notify.Start()
	notify.Commit(result)
	select {
	case body := <-received:
		assert.Contains(t, body, result.Id)
	case <-time.After(5 * time.Second):
		t.Fatal("notification not delivered")
	}
	cancel()
	notify.Stop()
}
