package calculator

import (
	"fmt"
	"math/big"
)

// Size returns the largest front-run input in [lowerBound, upperBound] after which the
// victim still receives at least victimMinOut. The bracket is narrowed by bisection until
// its width falls within toleranceBps of the midpoint.
func Size(lowerBound, upperBound, victimAmountIn, victimMinOut, reserveIn, reserveOut, feeBps, toleranceBps uint64) (*SizingResult, error) {
	if lowerBound > upperBound {
		return nil, fmt.Errorf("%w: sizing bracket inverted, lower: %d, upper: %d", ErrInvariant, lowerBound, upperBound)
	}
	if toleranceBps > BpsDenominator {
		return nil, fmt.Errorf("%w: tolerance bps(%d) exceeds %d", ErrInvariant, toleranceBps, BpsDenominator)
	}
	feasible := func(x uint64) (bool, error) {
		front, err := QuoteConstantProduct(x, reserveIn, reserveOut, feeBps)
		if err != nil {
			return false, err
		}
		victim, err := QuoteConstantProduct(victimAmountIn, front.NewReserveIn, front.NewReserveOut, feeBps)
		if err != nil {
			return false, err
		}
		return victim.AmountOut >= victimMinOut, nil
	}

	ok, err := feasible(lowerBound)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: victim min out %d unreachable at %d", ErrNoOpportunity, victimMinOut, lowerBound)
	}
	ok, err = feasible(upperBound)
	if err != nil {
		return nil, err
	}
	if ok {
		return &SizingResult{AmountIn: upperBound}, nil
	}

	// lb stays feasible and ub infeasible from here on
	lb, ub := lowerBound, upperBound
	iterations := 0
	for ub-lb > tolerance(lb, ub, toleranceBps) {
		if iterations >= MaxIterations {
			return nil, fmt.Errorf("%w: sizing did not converge in %d iterations, bracket: [%d, %d]", ErrInvariant, MaxIterations, lb, ub)
		}
		iterations++
		mid := midpoint(lb, ub)
		ok, err := feasible(mid)
		if err != nil {
			return nil, err
		}
		if ok {
			lb = mid
		} else {
			ub = mid
		}
	}
	amount := midpoint(lb, ub)
	if amount != lb {
		ok, err := feasible(amount)
		if err != nil {
			return nil, err
		}
		if !ok {
			amount = lb
		}
	}
	return &SizingResult{AmountIn: amount, Iterations: iterations}, nil
}

func midpoint(lb, ub uint64) uint64 {
	return lb + (ub-lb)/2
}

// tolerance is toleranceBps of the bracket midpoint, never below one unit.
func tolerance(lb, ub, toleranceBps uint64) uint64 {
	width := new(big.Int).Div(
		new(big.Int).Mul(new(big.Int).SetUint64(midpoint(lb, ub)), new(big.Int).SetUint64(toleranceBps)),
		bigBps,
	)
	if width.Cmp(big.NewInt(1)) < 0 {
		return 1
	}
	return width.Uint64()
}
