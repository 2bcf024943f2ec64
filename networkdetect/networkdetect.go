package networkdetect

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"sync"
	"time"

	"github.com/egaotan/solana-sandwich/dingsdk"
	"github.com/go-ping/ping"
	"github.com/sirupsen/logrus"
)

const (
	PingCount      = 3
	PingTimeout    = 3 * time.Second
	HighLatency    = 20 * time.Millisecond
	NotifyInterval = 5 * time.Minute
	window         = 300
)

// Probe returns the average round trip to host.
type Probe func(host string) (time.Duration, error)

// PingProbe measures the round trip with ICMP echo.
func PingProbe(host string) (time.Duration, error) {
	pinger, err := ping.NewPinger(host)
	if err != nil {
		return 0, err
	}
	pinger.Count = PingCount
	pinger.Timeout = PingTimeout
	if err := pinger.Run(); err != nil {
		return 0, err
	}
	stats := pinger.Statistics()
	if stats.PacketsRecv == 0 {
		return 0, fmt.Errorf("no echo reply from %s", host)
	}
	return stats.AvgRtt, nil
}

// Host strips scheme and port from an endpoint url.
func Host(endpoint string) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", err
	}
	if u.Hostname() == "" {
		return "", fmt.Errorf("endpoint(%s) has no host", endpoint)
	}
	return u.Hostname(), nil
}

// DetectPeers returns the peer with the lowest round trip, or the first one when none answer.
func DetectPeers(log *logrus.Logger, peers []string, probe Probe) (string, time.Duration) {
	if len(peers) == 0 {
		return "", 0
	}
	best := -1
	minRtt := time.Duration(math.MaxInt64)
	for i, peer := range peers {
		host, err := Host(peer)
		if err != nil {
			log.Printf("peer(%s) err: %s", peer, err.Error())
			continue
		}
		rtt, err := probe(host)
		if err != nil {
			log.Printf("ping peer(%s) err: %s", peer, err.Error())
			continue
		}
		log.Printf("ping peer(%s) rtt: %d ms", peer, rtt.Milliseconds())
		if rtt < minRtt {
			minRtt = rtt
			best = i
		}
	}
	if best < 0 {
		return peers[0], 0
	}
	return peers[best], minRtt
}

type NetworkDetector struct {
	ctx        context.Context
	wg         sync.WaitGroup
	peer       string
	probe      Probe
	interval   time.Duration
	rtt        []time.Duration
	log        *logrus.Logger
	dsdk       *dingsdk.DingSdk
	notifyTime time.Time
}

func NewNetworkDetector(ctx context.Context, log *logrus.Logger, peer string, dsdk *dingsdk.DingSdk) (*NetworkDetector, error) {
	host, err := Host(peer)
	if err != nil {
		return nil, err
	}
	nd := &NetworkDetector{
		ctx:      ctx,
		peer:     host,
		probe:    PingProbe,
		interval: 10 * time.Second,
		rtt:      make([]time.Duration, 0, window),
		log:      log,
		dsdk:     dsdk,
	}
	return nd, nil
}

func (nd *NetworkDetector) Start() {
	nd.wg.Add(1)
	go nd.detect()
}

func (nd *NetworkDetector) Stop() {
	nd.wg.Wait()
}

func (nd *NetworkDetector) detect() {
	defer nd.wg.Done()
	ticker := time.NewTicker(nd.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			rtt, err := nd.probe(nd.peer)
			if err != nil {
				nd.log.Printf("ping %s err: %s", nd.peer, err.Error())
				continue
			}
			nd.record(rtt)
		case <-nd.ctx.Done():
			return
		}
	}
}

// record keeps a moving window of samples and alerts when the average stays above HighLatency.
func (nd *NetworkDetector) record(rtt time.Duration) time.Duration {
	nd.rtt = append(nd.rtt, rtt)
	if len(nd.rtt) > window {
		nd.rtt = nd.rtt[len(nd.rtt)-window:]
	}
	sum := time.Duration(0)
	for _, x := range nd.rtt {
		sum += x
	}
	avg := sum / time.Duration(len(nd.rtt))
	nd.log.Printf("ping %s rtt: %d ms, avg: %d ms", nd.peer, rtt.Milliseconds(), avg.Milliseconds())
	if avg < HighLatency {
		return avg
	}
	nd.log.Printf("network latency to %s is too large", nd.peer)
	now := time.Now()
	if now.Sub(nd.notifyTime) > NotifyInterval {
		nd.notify(avg)
		nd.notifyTime = now
	}
	return avg
}

func (nd *NetworkDetector) notify(avg time.Duration) {
	if !nd.dsdk.Enabled() {
		return
	}
	ttStr := time.Now().Format("2006-01-02 15:04:05")
	content := fmt.Sprintf("sandwich block engine(%s) rtt: %d ms;\ntime: %s;", nd.peer, avg.Milliseconds(), ttStr)
	if _, err := nd.dsdk.Notify(nd.ctx, dingsdk.NewTextNotify(content)); err != nil {
		nd.log.Printf("ding notify err: %s", err.Error())
	}
}
