package calculator

import (
	"fmt"
	"math/big"
)

var (
	bigZero = new(big.Int)
	bigBps  = new(big.Int).SetUint64(BpsDenominator)
)

// QuoteConstantProduct quotes a swap against x*y=k with the fee taken from the input.
func QuoteConstantProduct(amountIn, reserveIn, reserveOut, feeBps uint64) (*Quote, error) {
	if feeBps > BpsDenominator {
		return nil, fmt.Errorf("%w: fee bps(%d) exceeds %d", ErrInvariant, feeBps, BpsDenominator)
	}
	amountInAfterFee := new(big.Int).Div(
		new(big.Int).Mul(
			new(big.Int).SetUint64(amountIn),
			new(big.Int).SetUint64(BpsDenominator-feeBps),
		),
		bigBps,
	)
	denominator := new(big.Int).Add(new(big.Int).SetUint64(reserveIn), amountInAfterFee)
	if denominator.Cmp(bigZero) == 0 {
		return nil, fmt.Errorf("%w: empty input reserve", ErrInvariant)
	}
	amountOut := new(big.Int).Div(
		new(big.Int).Mul(amountInAfterFee, new(big.Int).SetUint64(reserveOut)),
		denominator,
	)
	newReserveIn := new(big.Int).Add(new(big.Int).SetUint64(reserveIn), new(big.Int).SetUint64(amountIn))
	if !newReserveIn.IsUint64() {
		return nil, fmt.Errorf("%w: input reserve overflow, reserve: %d, amount: %d", ErrInvariant, reserveIn, amountIn)
	}
	newReserveOut := new(big.Int).Sub(new(big.Int).SetUint64(reserveOut), amountOut)
	if newReserveOut.Sign() < 0 {
		return nil, fmt.Errorf("%w: output reserve underflow, reserve: %d, out: %s", ErrInvariant, reserveOut, amountOut)
	}
	return &Quote{
		AmountIn:      amountIn,
		AmountOut:     amountOut.Uint64(),
		NewReserveIn:  newReserveIn.Uint64(),
		NewReserveOut: newReserveOut.Uint64(),
	}, nil
}
