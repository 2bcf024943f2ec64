package decoder

import (
	"encoding/binary"
	"math/rand"
	"testing"

	"github.com/egaotan/solana-sandwich/program"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func swapRecord(amountIn, minOut uint64) []byte {
	data := make([]byte, SwapPayloadSize)
	binary.LittleEndian.PutUint64(data[0:8], amountIn)
	binary.LittleEndian.PutUint64(data[8:16], minOut)
	return data
}

func randomKeys(n int) solana.PublicKeySlice {
	keys := make(solana.PublicKeySlice, 0, n)
	for i := 0; i < n; i++ {
		keys = append(keys, solana.NewWallet().PublicKey())
	}
	return keys
}

func TestRaydium_Decode(t *testing.T) {
	keys := randomKeys(4)
	data := append([]byte{raydiumSwapBaseIn}, swapRecord(10_000, 9_800)...)

	intent, ok := (&Raydium{}).Decode(data, keys, []uint16{0, 2, 3})
	require.True(t, ok)
	assert.Equal(t, uint64(10_000), intent.AmountIn)
	assert.Equal(t, uint64(9_800), intent.MinimumAmountOut)
	assert.Equal(t, keys[2], intent.Pool)
	assert.Equal(t, program.Raydium, intent.Program)
}

func TestRaydium_Reject(t *testing.T) {
	keys := randomKeys(4)
	record := swapRecord(10_000, 9_800)
	d := &Raydium{}

	_, ok := d.Decode(append([]byte{11}, record...), keys, []uint16{0, 1})
	assert.False(t, ok, "wrong discriminator")

	_, ok = d.Decode(append([]byte{raydiumSwapBaseIn}, record[:15]...), keys, []uint16{0, 1})
	assert.False(t, ok, "truncated")

	_, ok = d.Decode(append(append([]byte{raydiumSwapBaseIn}, record...), 0), keys, []uint16{0, 1})
	assert.False(t, ok, "trailing bytes")

	_, ok = d.Decode(append([]byte{raydiumSwapBaseIn}, record...), keys, []uint16{0})
	assert.False(t, ok, "missing pool account")

	_, ok = d.Decode(append([]byte{raydiumSwapBaseIn}, record...), keys, []uint16{0, 9})
	assert.False(t, ok, "pool index out of keys")
}

func bananaAccounts(routerIndex uint16) []uint16 {
	return []uint16{0, 1, 2, routerIndex, 4, 5, 6, 7}
}

func TestBananaGun_Decode(t *testing.T) {
	keys := randomKeys(8)
	keys[3] = program.Raydium
	data := append([]byte{0xde, 0xad, 0xbe, 0xef, 0x01}, swapRecord(2_000_000, 1_500_000)...)

	intent, ok := (&BananaGun{}).Decode(data, keys, bananaAccounts(3))
	require.True(t, ok)
	assert.Equal(t, uint64(2_000_000), intent.AmountIn)
	assert.Equal(t, uint64(1_500_000), intent.MinimumAmountOut)
	assert.Equal(t, keys[7], intent.Pool)
	assert.Equal(t, program.BananaGun, intent.Program)
}

func TestBananaGun_Reject(t *testing.T) {
	keys := randomKeys(8)
	keys[3] = program.Raydium
	d := &BananaGun{}

	_, ok := d.Decode(swapRecord(1, 1), keys, bananaAccounts(2))
	assert.False(t, ok, "router is not raydium")

	_, ok = d.Decode(swapRecord(1, 1)[:15], keys, bananaAccounts(3))
	assert.False(t, ok, "payload shorter than record")

	_, ok = d.Decode(swapRecord(1, 1), keys, []uint16{0, 1, 2, 3})
	assert.False(t, ok, "missing pool account")

	_, ok = d.Decode(swapRecord(1, 1), keys, nil)
	assert.False(t, ok, "no accounts")
}

func TestDecoders_RandomInput(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	keys := randomKeys(6)
	keys[2] = program.Raydium
	decoders := []Decoder{&Raydium{}, &BananaGun{}}
	for i := 0; i < 5000; i++ {
		data := make([]byte, r.Intn(48))
		r.Read(data)
		accounts := make([]uint16, r.Intn(12))
		for j := range accounts {
			accounts[j] = uint16(r.Intn(10))
		}
		for _, d := range decoders {
			assert.NotPanics(t, func() {
				intent, ok := d.Decode(data, keys, accounts)
				if ok {
					assert.NotNil(t, intent)
				}
			})
		}
	}
}

func TestRegistry(t *testing.T) {
	r := Default()
	d, ok := r.Get(program.Raydium)
	require.True(t, ok)
	assert.Equal(t, "raydium", d.Name())
	_, ok = r.Get(program.BananaGun)
	assert.True(t, ok)
	_, ok = r.Get(program.Token)
	assert.False(t, ok)
	assert.Len(t, r.Programs(), 2)

	assert.Error(t, r.Register(&Raydium{}))
	assert.Panics(t, func() { r.MustRegister(&BananaGun{}) })
}

func TestRegistry_DecodeFirstIntent(t *testing.T) {
	keys := randomKeys(6)
	keys[0] = program.Raydium
	keys[1] = program.Token
	pool := keys[4]
	tx := &solana.Transaction{
		Message: solana.Message{
			AccountKeys: keys,
			Instructions: []solana.CompiledInstruction{
				{ProgramIDIndex: 1, Accounts: []uint16{2, 3}, Data: []byte{3, 1, 2}},
				{ProgramIDIndex: 0, Accounts: []uint16{5}, Data: []byte{raydiumSwapBaseIn, 1}},
				{ProgramIDIndex: 0, Accounts: []uint16{5, 4}, Data: append([]byte{raydiumSwapBaseIn}, swapRecord(7, 5)...)},
				{ProgramIDIndex: 0, Accounts: []uint16{5, 3}, Data: append([]byte{raydiumSwapBaseIn}, swapRecord(9, 9)...)},
				{ProgramIDIndex: 42, Accounts: nil, Data: nil},
			},
		},
	}
	intent, index, ok := Default().Decode(tx)
	require.True(t, ok)
	assert.Equal(t, 2, index)
	assert.Equal(t, pool, intent.Pool)
	assert.Equal(t, uint64(7), intent.AmountIn)

	_, _, ok = Default().Decode(nil)
	assert.False(t, ok)
}
