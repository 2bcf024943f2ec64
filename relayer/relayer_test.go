package relayer

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/egaotan/solana-sandwich/program"
	"github.com/gagliardetto/solana-go"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func victimTransaction(t *testing.T) ([]byte, *solana.Transaction) {
	key := solana.NewWallet().PrivateKey
	data := make([]byte, 17)
	data[0] = 9
	ix := solana.NewInstruction(program.Raydium, solana.AccountMetaSlice{
		solana.Meta(program.Token),
		solana.Meta(solana.NewWallet().PublicKey()).WRITE(),
		solana.Meta(key.PublicKey()).WRITE().SIGNER(),
	}, data)
	trx, err := solana.NewTransaction([]solana.Instruction{ix}, solana.Hash{5}, solana.TransactionPayer(key.PublicKey()))
	require.NoError(t, err)
	_, err = trx.Sign(func(pub solana.PublicKey) *solana.PrivateKey {
		if pub == key.PublicKey() {
			return &key
		}
		return nil
	})
	require.NoError(t, err)
	raw, err := trx.MarshalBinary()
	require.NoError(t, err)
	return raw, trx
}

func frame(t *testing.T, raw []byte, meta *Meta) []byte {
	values := make([]int, 0, len(raw))
	for _, b := range raw {
		values = append(values, int(b))
	}
	packet := map[string]interface{}{"data": values}
	if meta != nil {
		packet["meta"] = meta
	}
	data, err := json.Marshal(map[string]interface{}{"transactions": []interface{}{packet}})
	require.NoError(t, err)
	return data
}

func TestDecodeBatch(t *testing.T) {
	raw, _ := victimTransaction(t)
	batch, err := DecodeBatch(frame(t, raw, &Meta{Size: len(raw)}))
	require.NoError(t, err)
	require.Len(t, batch.Transactions, 1)
	assert.Equal(t, raw, []byte(batch.Transactions[0].Data))
	assert.Equal(t, len(raw), batch.Transactions[0].Meta.Size)

	encoded := `{"transactions":[{"data":"` + base64.StdEncoding.EncodeToString(raw) + `"}]}`
	batch, err = DecodeBatch([]byte(encoded))
	require.NoError(t, err)
	assert.Equal(t, raw, []byte(batch.Transactions[0].Data))
	assert.Nil(t, batch.Transactions[0].Meta)

	_, err = DecodeBatch([]byte(`{"transactions":[{"data":[1,2,300]}]}`))
	assert.Error(t, err)
	_, err = DecodeBatch([]byte(`not json`))
	assert.Error(t, err)
}

func TestDecodePacket(t *testing.T) {
	raw, trx := victimTransaction(t)

	candidate, err := DecodePacket(&Packet{Data: raw})
	require.NoError(t, err)
	assert.Equal(t, raw, candidate.Raw)
	assert.Equal(t, trx.Signatures[0], candidate.Signature)
	assert.Equal(t, trx.Message.RecentBlockhash, candidate.Tx.Message.RecentBlockhash)
	assert.Equal(t, trx.Message.AccountKeys, candidate.Tx.Message.AccountKeys)

	candidate, err = DecodePacket(&Packet{Data: raw, Meta: &Meta{Size: len(raw)}})
	require.NoError(t, err)
	assert.Equal(t, raw, candidate.Raw)
}

func TestDecodePacket_Invalid(t *testing.T) {
	raw, _ := victimTransaction(t)

	_, err := DecodePacket(&Packet{Data: raw, Meta: &Meta{Size: len(raw) / 2}})
	assert.Error(t, err, "declared size cuts the transaction")

	_, err = DecodePacket(&Packet{Data: make([]byte, PacketDataSize+1)})
	assert.Error(t, err, "oversized")

	_, err = DecodePacket(&Packet{Data: raw, Meta: &Meta{Size: PacketDataSize + 1}})
	assert.Error(t, err)

	_, err = DecodePacket(&Packet{Data: nil})
	assert.Error(t, err, "all zero")

	_, err = DecodePacket(nil)
	assert.Error(t, err)
}

func TestRelayer(t *testing.T) {
	raw, _ := victimTransaction(t)
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		conn.WriteMessage(websocket.BinaryMessage, []byte{1, 2, 3})
		conn.WriteMessage(websocket.TextMessage, []byte("garbage"))
		conn.WriteMessage(websocket.TextMessage, frame(t, raw, nil))
		conn.ReadMessage()
	}))
	defer server.Close()

	log := logrus.New()
	log.SetOutput(io.Discard)
	url := "ws" + strings.TrimPrefix(server.URL, "http")
	r := NewRelayer(context.Background(), log, url, 4)
	require.NoError(t, r.Start())

	select {
	case batch := <-r.Batches():
		require.Len(t, batch.Transactions, 1)
		assert.Equal(t, raw, []byte(batch.Transactions[0].Data))
	case <-time.After(5 * time.Second):
		t.Fatal("no batch received")
	}

	r.Stop()
	_, ok := <-r.Batches()
	assert.False(t, ok)
}

func TestRelayer_ReconnectClosesLostConn(t *testing.T) {
	raw, _ := victimTransaction(t)
	upgrader := websocket.Upgrader{}
	var connections int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		if atomic.AddInt32(&connections, 1) == 1 {
			return
		}
		conn.WriteMessage(websocket.TextMessage, frame(t, raw, nil))
		conn.ReadMessage()
	}))
	defer server.Close()

	log := logrus.New()
	log.SetOutput(io.Discard)
	url := "ws" + strings.TrimPrefix(server.URL, "http")
	r := NewRelayer(context.Background(), log, url, 4)
	require.NoError(t, r.Start())
	r.connMu.Lock()
	first := r.conn
	r.connMu.Unlock()

	select {
	case batch := <-r.Batches():
		require.Len(t, batch.Transactions, 1)
	case <-time.After(5 * time.Second):
		t.Fatal("no batch after reconnect")
	}
	assert.Equal(t, int32(2), atomic.LoadInt32(&connections))
	r.connMu.Lock()
	assert.NotSame(t, first, r.conn)
	r.connMu.Unlock()
	assert.Error(t, first.UnderlyingConn().SetReadDeadline(time.Now()), "lost connection still open")

	r.Stop()
}

func TestRelayer_DialError(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	r := NewRelayer(context.Background(), log, "ws://127.0.0.1:1", 1)
	assert.Error(t, r.Start())
}
