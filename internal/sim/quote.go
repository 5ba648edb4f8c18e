// =============================
// File: internal/sim/quote.go
// =============================
package sim

import (
	"context"
	"errors"
	"fmt"

	cosmath "cosmossdk.io/math"
	"golang.org/x/sync/errgroup"

	"github.com/rovshanmuradov/solana-amm/internal/amm/curve"
	"github.com/rovshanmuradov/solana-amm/internal/amm/state"
)

// ErrNoTrade reports a quote size the curve cannot fill: the output would be
// zero or the arithmetic leaves 128-bit range.
var ErrNoTrade = errors.New("no trade possible at this size")

// Quote is a pure curve evaluation against the current reserves. Nothing on
// the ledger moves.
type Quote struct {
	AmountIn       uint64
	AmountOut      uint64
	OwnerFee       uint64
	EffectivePrice float64
}

// poolView is one consistent read of everything a quote needs.
type poolView struct {
	fees       curve.Fees
	swapCurve  curve.SwapCurve
	reserveIn  uint64
	reserveOut uint64
}

func (s *Session) poolView(ctx context.Context, aToB bool) (poolView, error) {
	acc, err := s.ledger.Account(ctx, s.stateKey)
	if err != nil {
		return poolView{}, fmt.Errorf("load governance record: %w", err)
	}
	st, err := state.UnpackProgramState(acc.Data)
	if err != nil {
		return poolView{}, err
	}

	reserveA, err := s.tokenAmount(ctx, s.tokenA)
	if err != nil {
		return poolView{}, err
	}
	reserveB, err := s.tokenAmount(ctx, s.tokenB)
	if err != nil {
		return poolView{}, err
	}

	view := poolView{fees: st.Fees, swapCurve: st.SwapCurve, reserveIn: reserveA, reserveOut: reserveB}
	if !aToB {
		view.reserveIn, view.reserveOut = reserveB, reserveA
	}
	return view, nil
}

func (v poolView) quote(aToB bool, amountIn uint64) (Quote, error) {
	direction := curve.DirectionBtoA
	if aToB {
		direction = curve.DirectionAtoB
	}
	result, ok := v.swapCurve.Swap(
		cosmath.NewIntFromUint64(amountIn),
		cosmath.NewIntFromUint64(v.reserveIn),
		cosmath.NewIntFromUint64(v.reserveOut),
		direction,
		v.fees,
	)
	if !ok {
		return Quote{}, ErrNoTrade
	}
	if !result.DestinationAmountSwapped.IsUint64() || !result.OwnerFee.IsUint64() {
		return Quote{}, ErrNoTrade
	}
	q := Quote{
		AmountIn:  amountIn,
		AmountOut: result.DestinationAmountSwapped.Uint64(),
		OwnerFee:  result.OwnerFee.Uint64(),
	}
	if amountIn > 0 {
		q.EffectivePrice = float64(q.AmountOut) / float64(amountIn)
	}
	return q, nil
}

// Quote prices a swap of amountIn without executing it.
func (s *Session) Quote(ctx context.Context, aToB bool, amountIn uint64) (Quote, error) {
	view, err := s.poolView(ctx, aToB)
	if err != nil {
		return Quote{}, err
	}
	return view.quote(aToB, amountIn)
}

// QuoteLadder prices every amount against one consistent reserve snapshot,
// fanning the curve math out across goroutines. Sizes the curve cannot fill
// come back as zero-output quotes rather than failing the whole ladder.
func (s *Session) QuoteLadder(ctx context.Context, aToB bool, amounts []uint64) ([]Quote, error) {
	view, err := s.poolView(ctx, aToB)
	if err != nil {
		return nil, err
	}

	quotes := make([]Quote, len(amounts))
	g, _ := errgroup.WithContext(ctx)
	for i, amount := range amounts {
		g.Go(func() error {
			q, err := view.quote(aToB, amount)
			if errors.Is(err, ErrNoTrade) {
				quotes[i] = Quote{AmountIn: amount}
				return nil
			}
			if err != nil {
				return err
			}
			quotes[i] = q
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return quotes, nil
}

// Ladder builds a doubling size ladder starting at start.
func Ladder(start uint64, steps int) []uint64 {
	if start == 0 {
		start = 1
	}
	amounts := make([]uint64, 0, steps)
	for i := 0; i < steps; i++ {
		amounts = append(amounts, start)
		if start > 1<<62 {
			break
		}
		start *= 2
	}
	return amounts
}
