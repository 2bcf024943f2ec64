package relayer

import (
	"encoding/base64"
	"fmt"
	"time"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/sugawarayuuta/sonnet"
)

// PacketDataSize is the largest wire transaction a validator accepts.
const PacketDataSize = 1232

// ByteArray accepts either a JSON number array or a base64 string.
type ByteArray []byte

func (b *ByteArray) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := sonnet.Unmarshal(data, &s); err != nil {
			return err
		}
		raw, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return fmt.Errorf("packet data is not base64: %w", err)
		}
		*b = raw
		return nil
	}
	var values []int
	if err := sonnet.Unmarshal(data, &values); err != nil {
		return err
	}
	raw := make([]byte, len(values))
	for i, v := range values {
		if v < 0 || v > 255 {
			return fmt.Errorf("packet byte %d out of range: %d", i, v)
		}
		raw[i] = byte(v)
	}
	*b = raw
	return nil
}

type Meta struct {
	Size int `json:"size"`
}

type Packet struct {
	Data ByteArray `json:"data"`
	Meta *Meta     `json:"meta,omitempty"`
}

type Batch struct {
	Transactions []*Packet `json:"transactions"`
	Received     time.Time `json:"-"`
}

func DecodeBatch(data []byte) (*Batch, error) {
	batch := &Batch{}
	if err := sonnet.Unmarshal(data, batch); err != nil {
		return nil, fmt.Errorf("decode batch err: %w", err)
	}
	batch.Received = time.Now()
	return batch, nil
}

// Candidate is a deserialized victim transaction with its exact wire bytes.
type Candidate struct {
	Raw       []byte
	Tx        *solana.Transaction
	Signature solana.Signature
}

// DecodePacket zero-pads the payload to PacketDataSize, limits it to the declared
// size, and decodes one transaction from the front of it.
func DecodePacket(packet *Packet) (candidate *Candidate, err error) {
	defer func() {
		if r := recover(); r != nil {
			candidate, err = nil, fmt.Errorf("decode transaction panic: %v", r)
		}
	}()
	if packet == nil {
		return nil, fmt.Errorf("packet is nil")
	}
	if len(packet.Data) > PacketDataSize {
		return nil, fmt.Errorf("packet size %d exceeds %d", len(packet.Data), PacketDataSize)
	}
	buf := make([]byte, PacketDataSize)
	copy(buf, packet.Data)
	size := PacketDataSize
	if packet.Meta != nil {
		if packet.Meta.Size <= 0 || packet.Meta.Size > PacketDataSize {
			return nil, fmt.Errorf("packet meta size %d is not valid", packet.Meta.Size)
		}
		size = packet.Meta.Size
	}
	decoder := bin.NewBinDecoder(buf[:size])
	tx, err := solana.TransactionFromDecoder(decoder)
	if err != nil {
		return nil, fmt.Errorf("decode transaction err: %w", err)
	}
	if len(tx.Signatures) == 0 || len(tx.Message.AccountKeys) == 0 {
		return nil, fmt.Errorf("transaction has no signatures or account keys")
	}
	return &Candidate{
		Raw:       buf[:decoder.Position()],
		Tx:        tx,
		Signature: tx.Signatures[0],
	}, nil
}
