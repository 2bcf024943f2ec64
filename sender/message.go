package sender

import "fmt"

const (
	BundlePath       = "/api/v1/bundles"
	MethodSendBundle = "sendBundle"
)

type Request struct {
	JsonRpc string        `json:"jsonrpc"`
	Id      int           `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type RpcError struct {
	Code    int64  `json:"code"`
	Message string `json:"message"`
}

func (e *RpcError) Error() string {
	return fmt.Sprintf("code: %d, err: %s", e.Code, e.Message)
}

type Response struct {
	JsonRpc string    `json:"jsonrpc"`
	Id      int       `json:"id"`
	Result  string    `json:"result"`
	Error   *RpcError `json:"error,omitempty"`
}

func NewSendBundle(transactions []string) *Request {
	return &Request{
		JsonRpc: "2.0",
		Id:      0,
		Method:  MethodSendBundle,
		Params:  []interface{}{transactions},
	}
}
