package bundle

import (
	"encoding/binary"
	"math/rand"
	"testing"

	"github.com/egaotan/solana-sandwich/program"
	"github.com/egaotan/solana-sandwich/raydium"
	"github.com/egaotan/solana-sandwich/spltoken"
	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sandwichProgram = solana.NewWallet().PublicKey()

func testPool() *raydium.PoolState {
	token := solana.NewWallet().PublicKey()
	return &raydium.PoolState{
		Pool:      solana.NewWallet().PublicKey(),
		Market:    solana.NewWallet().PublicKey(),
		BaseMint:  token,
		QuoteMint: program.SOL,
		Token:     token,
		CoinVault: solana.NewWallet().PublicKey(),
		PcVault:   solana.NewWallet().PublicKey(),
		FeeBps:    25,
	}
}

func testBuilder(t *testing.T, key solana.PrivateKey) *Builder {
	signer := func(pub solana.PublicKey) *solana.PrivateKey {
		if pub == key.PublicKey() {
			return &key
		}
		return nil
	}
	b, err := NewBuilder(sandwichProgram, key.PublicKey(), signer)
	require.NoError(t, err)
	return b
}

func instructionKeys(t *testing.T, trx *solana.Transaction) []solana.PublicKey {
	require.Len(t, trx.Message.Instructions, 1)
	ix := trx.Message.Instructions[0]
	assert.Equal(t, sandwichProgram, trx.Message.AccountKeys[ix.ProgramIDIndex])
	keys := make([]solana.PublicKey, 0, len(ix.Accounts))
	for _, index := range ix.Accounts {
		keys = append(keys, trx.Message.AccountKeys[index])
	}
	return keys
}

func TestBuilder_Build(t *testing.T) {
	key := solana.NewWallet().PrivateKey
	payer := key.PublicKey()
	b := testBuilder(t, key)
	pool := testPool()
	blockHash := solana.Hash{7, 7, 7}

	sandwich, err := b.Build(pool, 3_919, blockHash)
	require.NoError(t, err)

	state, err := program.SandwichStateAddress(sandwichProgram)
	require.NoError(t, err)
	wsol, err := spltoken.AssociatedAddress(payer, program.SOL)
	require.NoError(t, err)
	tokenUser, err := spltoken.AssociatedAddress(payer, pool.Token)
	require.NoError(t, err)
	assert.Equal(t, state, b.State())
	assert.Equal(t, wsol, b.CapitalAccount())

	front := sandwich.Front
	assert.Equal(t, blockHash, front.Message.RecentBlockhash)
	assert.NoError(t, front.VerifySignatures())
	assert.Equal(t, payer, front.Message.AccountKeys[0])
	data := []byte(front.Message.Instructions[0].Data)
	require.Len(t, data, 17)
	assert.Equal(t, program.SandwichSwapIn, data[0])
	assert.Equal(t, uint64(3_919), binary.LittleEndian.Uint64(data[1:9]))
	assert.Equal(t, uint64(0), binary.LittleEndian.Uint64(data[9:17]))
	assert.Equal(t, []solana.PublicKey{
		payer, state, wsol, tokenUser, program.Raydium, pool.Token, pool.Pool,
		program.RaydiumAuthority, pool.CoinVault, pool.PcVault, program.Token,
		program.AssociatedToken, program.System,
	}, instructionKeys(t, front))

	back := sandwich.Back
	assert.Equal(t, blockHash, back.Message.RecentBlockhash)
	assert.NoError(t, back.VerifySignatures())
	assert.Equal(t, []byte{program.SandwichSwapOut}, []byte(back.Message.Instructions[0].Data))
	assert.Equal(t, []solana.PublicKey{
		payer, state, tokenUser, wsol, program.Raydium, pool.Pool, program.RaydiumAuthority,
		pool.CoinVault, pool.PcVault, program.Token, program.System, sandwich.Tip,
	}, instructionKeys(t, back))
	assert.True(t, program.IsTipAccount(sandwich.Tip))
}

func TestBuilder_Deterministic(t *testing.T) {
	key := solana.NewWallet().PrivateKey
	pool := testPool()
	a, b := testBuilder(t, key), testBuilder(t, key)
	a.SetRand(rand.New(rand.NewSource(3)))
	b.SetRand(rand.New(rand.NewSource(3)))

	sa, err := a.Build(pool, 1_000, solana.Hash{1})
	require.NoError(t, err)
	sb, err := b.Build(pool, 1_000, solana.Hash{1})
	require.NoError(t, err)

	fa, err := sa.Front.MarshalBinary()
	require.NoError(t, err)
	fb, err := sb.Front.MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, fa, fb)
	assert.Equal(t, sa.Tip, sb.Tip)
}

func TestBuilder_TipDraw(t *testing.T) {
	b := testBuilder(t, solana.NewWallet().PrivateKey)
	b.SetRand(rand.New(rand.NewSource(11)))
	seen := make(map[solana.PublicKey]bool)
	for i := 0; i < 400; i++ {
		tip := b.tip()
		require.True(t, program.IsTipAccount(tip))
		seen[tip] = true
	}
	assert.Len(t, seen, len(program.TipAccounts))
}

func TestBuilder_UnknownSigner(t *testing.T) {
	key := solana.NewWallet().PrivateKey
	b, err := NewBuilder(sandwichProgram, key.PublicKey(), func(solana.PublicKey) *solana.PrivateKey { return nil })
	require.NoError(t, err)
	_, err = b.Build(testPool(), 1, solana.Hash{})
	assert.Error(t, err)
}

func TestBundle(t *testing.T) {
	key := solana.NewWallet().PrivateKey
	sandwich, err := testBuilder(t, key).Build(testPool(), 5, solana.Hash{2})
	require.NoError(t, err)
	victim := []byte{1, 2, 3, 4}
	victimSig := solana.Signature{9}

	b, err := New(sandwich, victim, victimSig)
	require.NoError(t, err)
	require.Len(t, b.Transactions, Size)

	front, err := sandwich.Front.MarshalBinary()
	require.NoError(t, err)
	back, err := sandwich.Back.MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, front, b.Transactions[0])
	assert.Equal(t, victim, b.Transactions[1])
	assert.Equal(t, back, b.Transactions[2])
	assert.Equal(t, sandwich.Front.Signatures[0], b.Signatures[0])
	assert.Equal(t, victimSig, b.Signatures[1])
	assert.Equal(t, sandwich.Back.Signatures[0], b.Signatures[2])

	encoded := b.Encode()
	require.Len(t, encoded, Size)
	for i, s := range encoded {
		raw, err := base58.Decode(s)
		require.NoError(t, err)
		assert.Equal(t, b.Transactions[i], raw)
	}

	_, err = New(sandwich, nil, victimSig)
	assert.Error(t, err)
}
