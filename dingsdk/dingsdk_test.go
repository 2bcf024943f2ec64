package dingsdk

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sugawarayuuta/sonnet"
)

func TestNotify(t *testing.T) {
	var received DingNotify
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = sonnet.Unmarshal(body, &received)
		w.Write([]byte(`{"errcode":0,"errmsg":"ok"}`))
	}))
	defer server.Close()

	sdk := NewDingSdk(server.URL)
	result, err := sdk.Notify(context.Background(), NewTextNotify("bundle submitted"))
	require.NoError(t, err)
	assert.Equal(t, "ok", result.ErrMsg)
	assert.Equal(t, "text", received.MsgType)
	assert.Equal(t, "bundle submitted", received.Text.Content)
}

func TestNotify_Errors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/down" {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"errcode":310000,"errmsg":"keywords not in content"}`))
	}))
	defer server.Close()

	_, err := NewDingSdk(server.URL).Notify(context.Background(), NewTextNotify("x"))
	assert.ErrorContains(t, err, "310000")

	_, err = NewDingSdk(server.URL+"/down").Notify(context.Background(), NewTextNotify("x"))
	assert.ErrorContains(t, err, "502")
}

func TestNotify_Disabled(t *testing.T) {
	sdk := NewDingSdk("")
	assert.False(t, sdk.Enabled())
	result, err := sdk.Notify(context.Background(), NewTextNotify("x"))
	assert.NoError(t, err)
	assert.Nil(t, result)

	var nilSdk *DingSdk
	assert.False(t, nilSdk.Enabled())
}
