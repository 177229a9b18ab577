package classify

import (
	"solana-wallet-pnl/internal/domain"
)

// evidence is everything a classification rule may inspect.
type evidence struct {
	isSwap       bool
	nativeChange float64
	movements    []domain.TokenMovement
}

func (e evidence) has(dir domain.Direction) bool {
	for _, m := range e.movements {
		if m.Direction == dir {
			return true
		}
	}
	return false
}

func (e evidence) hasStable(dir domain.Direction) bool {
	for _, m := range e.movements {
		if m.Direction == dir && domain.IsStableMint(m.Mint) {
			return true
		}
	}
	return false
}

// A rule inspects the evidence and either classifies the transaction
// or declines. Rules run in declaration order; the first match wins.
type rule struct {
	name  string
	apply func(evidence) (domain.TransactionType, bool)
}

var rules = []rule{
	{name: "swap", apply: classifySwap},
	{name: "native-flow", apply: classifyNativeFlow},
	{name: "token-transfer", apply: classifyTokenTransfer},
}

// classifySwap handles transactions the indexer tagged as swaps, plus
// untagged transactions moving tokens in both directions. Spending a
// stable (or SOL) marks a buy, receiving one marks a sell. A pure
// token-for-token swap counts as selling the spent side.
func classifySwap(e evidence) (domain.TransactionType, bool) {
	if !e.isSwap && !(e.has(domain.DirIn) && e.has(domain.DirOut)) {
		return "", false
	}
	if e.hasStable(domain.DirOut) || e.nativeChange < 0 {
		return domain.TxBuy, true
	}
	if e.hasStable(domain.DirIn) || e.nativeChange > 0 {
		return domain.TxSell, true
	}
	return domain.TxSell, true
}

// classifyNativeFlow keys off a meaningful SOL delta. SOL leaving with
// tokens arriving is a buy; SOL arriving with tokens leaving is a
// sell. SOL moving alone is a plain transfer.
func classifyNativeFlow(e evidence) (domain.TransactionType, bool) {
	switch {
	case e.nativeChange < -domain.NativeChangeEpsilon:
		if e.has(domain.DirIn) {
			return domain.TxBuy, true
		}
		return domain.TxTransferOut, true
	case e.nativeChange > domain.NativeChangeEpsilon:
		if e.has(domain.DirOut) {
			return domain.TxSell, true
		}
		return domain.TxTransferIn, true
	}
	return "", false
}

// classifyTokenTransfer covers token movement with no meaningful SOL
// delta. Defaults to an inbound transfer when direction is ambiguous.
func classifyTokenTransfer(e evidence) (domain.TransactionType, bool) {
	out := e.has(domain.DirOut)
	in := e.has(domain.DirIn)
	if out && !in {
		return domain.TxTransferOut, true
	}
	if in && !out {
		return domain.TxTransferIn, true
	}
	return domain.TxTransferIn, true
}

// classifyType runs the ordered rule list.
func classifyType(e evidence) domain.TransactionType {
	for _, r := range rules {
		if t, ok := r.apply(e); ok {
			return t
		}
	}
	return domain.TxTransferIn
}
