package sender

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sugawarayuuta/sonnet"
)

// BlockEngine submits bundles to a block-engine relay over JSON-RPC.
type BlockEngine struct {
	url    string
	log    *logrus.Logger
	client *http.Client
}

func NewBlockEngine(log *logrus.Logger, endpoint string, timeout time.Duration) *BlockEngine {
	return &BlockEngine{
		url: strings.TrimRight(endpoint, "/") + BundlePath,
		log: log,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

func (engine *BlockEngine) Url() string {
	return engine.url
}

// SendBundle posts the encoded transactions and returns the bundle id.
func (engine *BlockEngine) SendBundle(ctx context.Context, transactions []string) (string, error) {
	requestJson, err := sonnet.Marshal(NewSendBundle(transactions))
	if err != nil {
		return "", fmt.Errorf("marshal bundle err: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, engine.url, bytes.NewReader(requestJson))
	if err != nil {
		return "", err
	}
	req.Header.Set("Accepts", "application/json")
	req.Header.Set("Content-Type", "application/json")

	begin := time.Now()
	resp, err := engine.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send bundle err: %w", err)
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read bundle response err: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("send bundle response status code: %d, body: %s", resp.StatusCode, string(respBody))
	}
	response := &Response{}
	if err := sonnet.Unmarshal(respBody, response); err != nil {
		return "", fmt.Errorf("decode bundle response err: %w", err)
	}
	if response.Error != nil {
		return "", fmt.Errorf("send bundle rejected, %w", response.Error)
	}
	if response.Result == "" {
		return "", fmt.Errorf("send bundle response has no result")
	}
	engine.log.Printf("bundle %s accepted by %s in %s", response.Result, engine.url, time.Since(begin))
	return response.Result, nil
}
