package domain

// TransactionType classifies the economic intent of a wallet transaction.
type TransactionType string

// Transaction types assigned by the classifier.
const (
	TxBuy         TransactionType = "BUY"
	TxSell        TransactionType = "SELL"
	TxTransferIn  TransactionType = "TRANSFER_IN"
	TxTransferOut TransactionType = "TRANSFER_OUT"
)

// Direction indicates which way a token moved relative to the wallet.
type Direction string

// Movement directions.
const (
	DirIn  Direction = "IN"
	DirOut Direction = "OUT"
)

// TokenMovement is one token leg of a transaction.
// Amount is always non-negative; the sign is carried by Direction.
type TokenMovement struct {
	Mint      string    `json:"mint"`
	Symbol    string    `json:"symbol"`
	Amount    float64   `json:"amount"`
	Direction Direction `json:"direction"`
}

// Transaction is a wallet transaction with classified intent.
// Built once by the classifier and immutable afterwards.
type Transaction struct {
	Signature    string          `json:"signature"`
	Timestamp    int64           `json:"timestamp"` // Unix seconds
	Type         TransactionType `json:"type"`
	Movements    []TokenMovement `json:"tokens"`
	NativeChange float64         `json:"solChange"`     // signed SOL delta for the wallet
	TotalUSD     float64         `json:"totalUsdValue"` // estimated trade value, >= 0
}

// HasMovement reports whether any movement matches the given direction.
func (t *Transaction) HasMovement(dir Direction) bool {
	for _, m := range t.Movements {
		if m.Direction == dir {
			return true
		}
	}
	return false
}
