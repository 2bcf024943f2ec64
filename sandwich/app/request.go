package app

import (
	"net/http"
	"time"

	"github.com/egaotan/solana-sandwich/balancelisten"
	"github.com/egaotan/solana-sandwich/metrics"
	"github.com/egaotan/solana-sandwich/store"
	"github.com/gin-gonic/gin"
)

type Query interface {
	GetCandidate(id string) ([]*store.Candidate, error)
	GetSubmittedBundle(candidateId string) ([]*store.SubmittedBundle, error)
	Stats() (map[string]int64, error)
}

type CandidateView struct {
	Id               string `json:"id"`
	Signature        string `json:"signature"`
	Decoder          string `json:"decoder"`
	Pool             string `json:"pool"`
	AmountIn         uint64 `json:"amount_in"`
	MinimumAmountOut uint64 `json:"minimum_amount_out"`
	Stage            string `json:"stage"`
	Reason           string `json:"reason,omitempty"`
	ReceiveTime      string `json:"receive_time"`
	FinishTime       string `json:"finish_time"`
}

type BundleView struct {
	Token          string `json:"token"`
	FrontRunAmount string `json:"front_run_amount"`
	ReserveIn      uint64 `json:"reserve_in"`
	ReserveOut     uint64 `json:"reserve_out"`
	Tip            string `json:"tip"`
	BlockEngine    string `json:"block_engine"`
	BundleId       string `json:"bundle_id"`
	FrontSignature string `json:"front_signature"`
	BackSignature  string `json:"back_signature"`
	Error          string `json:"error,omitempty"`
	SendTime       string `json:"send_time"`
	ResponseTime   string `json:"response_time"`
}

type CandidateDetail struct {
	Candidate *CandidateView `json:"candidate"`
	Bundles   []*BundleView  `json:"bundles"`
}

func formatMilli(ms uint64) string {
	return time.UnixMilli(int64(ms)).Format("2006-01-02 15:04:05.000")
}

func buildCandidate(c *store.Candidate) *CandidateView {
	return &CandidateView{
		Id:               c.Id,
		Signature:        c.Signature,
		Decoder:          c.Decoder,
		Pool:             c.Pool,
		AmountIn:         c.AmountIn,
		MinimumAmountOut: c.MinimumAmountOut,
		Stage:            c.Stage,
		Reason:           c.Reason,
		ReceiveTime:      formatMilli(c.ReceiveTime),
		FinishTime:       formatMilli(c.FinishTime),
	}
}

func buildBundle(b *store.SubmittedBundle) *BundleView {
	return &BundleView{
		Token:          b.Token,
		FrontRunAmount: balancelisten.Lamports(b.FrontRunAmount).StringFixed(4),
		ReserveIn:      b.ReserveIn,
		ReserveOut:     b.ReserveOut,
		Tip:            b.Tip,
		BlockEngine:    b.BlockEngine,
		BundleId:       b.BundleId,
		FrontSignature: b.FrontSignature,
		BackSignature:  b.BackSignature,
		Error:          b.Error,
		SendTime:       formatMilli(b.SendTime),
		ResponseTime:   formatMilli(b.ResponseTime),
	}
}

func buildBundles(bundles []*store.SubmittedBundle) []*BundleView {
	views := make([]*BundleView, 0, len(bundles))
	for _, b := range bundles {
		views = append(views, buildBundle(b))
	}
	return views
}

// NewRouter serves the status api; query may be nil when no database is configured.
func NewRouter(query Query, m *metrics.Metrics) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	g := router.Group("/api")
	g.GET("/candidate", getCandidate(query))
	g.GET("/stats", getStats(query))
	router.GET("/metrics", gin.WrapH(m.Handler()))
	return router
}

func getCandidate(query Query) gin.HandlerFunc {
	return func(c *gin.Context) {
		if query == nil {
			c.JSON(http.StatusServiceUnavailable, "store is not configured")
			return
		}
		id, ok := c.GetQuery("id")
		if !ok || id == "" {
			c.JSON(http.StatusBadRequest, "parameter is invalid")
			return
		}
		candidates, err := query.GetCandidate(id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, err.Error())
			return
		}
		if len(candidates) == 0 {
			c.JSON(http.StatusNotFound, "candidate is not found")
			return
		}
		bundles, err := query.GetSubmittedBundle(id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, err.Error())
			return
		}
		c.JSON(http.StatusOK, &CandidateDetail{
			Candidate: buildCandidate(candidates[0]),
			Bundles:   buildBundles(bundles),
		})
	}
}

func getStats(query Query) gin.HandlerFunc {
	return func(c *gin.Context) {
		if query == nil {
			c.JSON(http.StatusServiceUnavailable, "store is not configured")
			return
		}
		stats, err := query.Stats()
		if err != nil {
			c.JSON(http.StatusInternalServerError, err.Error())
			return
		}
		c.JSON(http.StatusOK, stats)
	}
}
