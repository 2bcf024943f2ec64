package decoder

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Registry maps router program ids to decoders. It is filled at startup and
// only read afterwards, so lookups need no locking.
type Registry struct {
	decoders map[solana.PublicKey]Decoder
}

func NewRegistry() *Registry {
	return &Registry{
		decoders: make(map[solana.PublicKey]Decoder),
	}
}

// Default registers every supported router.
func Default() *Registry {
	r := NewRegistry()
	r.MustRegister(&Raydium{})
	r.MustRegister(&BananaGun{})
	return r
}

func (r *Registry) Register(d Decoder) error {
	if _, ok := r.decoders[d.Program()]; ok {
		return fmt.Errorf("decoder for program(%s) is already registered", d.Program())
	}
	r.decoders[d.Program()] = d
	return nil
}

func (r *Registry) MustRegister(d Decoder) {
	if err := r.Register(d); err != nil {
		panic(err)
	}
}

func (r *Registry) Get(programId solana.PublicKey) (Decoder, bool) {
	d, ok := r.decoders[programId]
	return d, ok
}

func (r *Registry) Programs() []solana.PublicKey {
	programs := make([]solana.PublicKey, 0, len(r.decoders))
	for id := range r.decoders {
		programs = append(programs, id)
	}
	return programs
}

// Decode scans the top-level instructions and returns the first one any registered
// decoder turns into an intent, together with its instruction index.
func (r *Registry) Decode(tx *solana.Transaction) (*SwapIntent, int, bool) {
	if tx == nil {
		return nil, -1, false
	}
	keys := tx.Message.AccountKeys
	for i, ix := range tx.Message.Instructions {
		if int(ix.ProgramIDIndex) >= len(keys) {
			continue
		}
		d, ok := r.Get(keys[ix.ProgramIDIndex])
		if !ok {
			continue
		}
		intent, ok := d.Decode(ix.Data, keys, ix.Accounts)
		if !ok {
			continue
		}
		return intent, i, true
	}
	return nil, -1, false
}
