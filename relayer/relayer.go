package relayer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	HandshakeTimeout  = 10 * time.Second
	ReconnectDelay    = time.Second
	MaxReconnectDelay = 30 * time.Second
)

// Relayer streams candidate batches from the relay websocket into a bounded queue.
type Relayer struct {
	url     string
	log     *logrus.Logger
	ctx     context.Context
	cancel  context.CancelFunc
	conn    *websocket.Conn
	connMu  sync.Mutex
	batches chan *Batch
	wg      sync.WaitGroup
}

func NewRelayer(ctx context.Context, log *logrus.Logger, url string, queueSize int) *Relayer {
	ctx, cancel := context.WithCancel(ctx)
	return &Relayer{
		url:     url,
		log:     log,
		ctx:     ctx,
		cancel:  cancel,
		batches: make(chan *Batch, queueSize),
	}
}

// Batches is closed once the relayer stops.
func (r *Relayer) Batches() <-chan *Batch {
	return r.batches
}

// Start dials the relay; a failed first dial is fatal to the caller.
func (r *Relayer) Start() error {
	if err := r.connect(); err != nil {
		return err
	}
	r.log.Printf("relayer connected: %s", r.url)
	r.wg.Add(1)
	go r.recv()
	return nil
}

func (r *Relayer) Stop() {
	r.cancel()
	r.connMu.Lock()
	if r.conn != nil {
		r.conn.Close()
	}
	r.connMu.Unlock()
	r.wg.Wait()
	r.log.Printf("relayer stopped")
}

func (r *Relayer) connect() error {
	dialer := websocket.Dialer{
		HandshakeTimeout: HandshakeTimeout,
	}
	conn, _, err := dialer.DialContext(r.ctx, r.url, nil)
	if err != nil {
		return fmt.Errorf("relayer dial(%s) err: %w", r.url, err)
	}
	r.connMu.Lock()
	r.conn = conn
	r.connMu.Unlock()
	return nil
}

func (r *Relayer) recv() {
	defer r.wg.Done()
	defer close(r.batches)
	for {
		r.connMu.Lock()
		conn := r.conn
		r.connMu.Unlock()
		err := r.readLoop(conn)
		conn.Close()
		if r.ctx.Err() != nil {
			return
		}
		r.log.Printf("relayer connection lost, err: %v", err)
		if !r.reconnect() {
			return
		}
	}
}

func (r *Relayer) readLoop(conn *websocket.Conn) error {
	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		if messageType != websocket.TextMessage {
			continue
		}
		batch, err := DecodeBatch(data)
		if err != nil {
			r.log.Printf("relayer frame dropped, err: %s", err.Error())
			continue
		}
		select {
		case r.batches <- batch:
		case <-r.ctx.Done():
			return r.ctx.Err()
		}
	}
}

func (r *Relayer) reconnect() bool {
	delay := ReconnectDelay
	for {
		select {
		case <-time.After(delay):
		case <-r.ctx.Done():
			return false
		}
		if err := r.connect(); err != nil {
			r.log.Printf("relayer reconnect err: %s", err.Error())
			if delay *= 2; delay > MaxReconnectDelay {
				delay = MaxReconnectDelay
			}
			continue
		}
		r.log.Printf("relayer reconnected: %s", r.url)
		return true
	}
}
