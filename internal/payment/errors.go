package payment

import "errors"

// Verification outcomes other than success. Infrastructure faults are
// returned wrapped and match none of these.
var (
	ErrBadChain  = errors.New("unsupported or unconfigured chain")
	ErrBadTxHash = errors.New("malformed transaction hash")
	ErrNotFound  = errors.New("transaction receipt not found")
	ErrFailedTx  = errors.New("transaction reverted")
	ErrNotPaid   = errors.New("no qualifying transfer in transaction")
)

// Code returns the client-facing error code for err.
func Code(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrBadChain):
		return "bad_chain"
	case errors.Is(err, ErrBadTxHash):
		return "bad_txHash"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrFailedTx):
		return "failed_tx"
	case errors.Is(err, ErrNotPaid):
		return "not_paid"
	default:
		return "server_error"
	}
}
