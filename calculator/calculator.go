package calculator

import "errors"

const (
	BpsDenominator = 10000
	MaxIterations  = 128
)

var (
	// ErrInvariant marks corrupted market data or a logic defect; it must never be clamped away.
	ErrInvariant = errors.New("invariant violation")
	// ErrNoOpportunity means no front-run amount in the bracket keeps the victim whole.
	ErrNoOpportunity = errors.New("no opportunity")
)

type Quote struct {
	AmountIn      uint64
	AmountOut     uint64
	NewReserveIn  uint64
	NewReserveOut uint64
}

type SizingResult struct {
	AmountIn   uint64
	Iterations int
}

// Sizer binds pool fee and search tolerance for repeated sizing calls.
type Sizer struct {
	FeeBps       uint64
	ToleranceBps uint64
}

func NewSizer(feeBps uint64, toleranceBps uint64) *Sizer {
	return &Sizer{
		FeeBps:       feeBps,
		ToleranceBps: toleranceBps,
	}
}

func (s *Sizer) Size(lowerBound, upperBound, victimAmountIn, victimMinOut, reserveIn, reserveOut uint64) (*SizingResult, error) {
	return Size(lowerBound, upperBound, victimAmountIn, victimMinOut, reserveIn, reserveOut, s.FeeBps, s.ToleranceBps)
}
