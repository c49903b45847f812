package domain

import "time"

// RevenueRecord is one line of the append-only revenue log.
type RevenueRecord struct {
	Timestamp time.Time `json:"ts"`
	Chain     string    `json:"chain"`
	Token     string    `json:"token"`
	To        string    `json:"to"`
	Value     string    `json:"value"`
	TxHash    string    `json:"txHash"`
}
