package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Topic classifies a snapshot for stream subscribers.
type Topic string

const (
	// TopicPrices carries snapshots produced by a tick.
	TopicPrices Topic = "prices"
	// TopicWallet carries snapshots produced by any other action.
	TopicWallet Topic = "wallet"
	// TopicAll subscribes to every snapshot.
	TopicAll Topic = "*"
)

// Snapshot is the read model published after every accepted transition.
type Snapshot struct {
	SessionID      string          `json:"session_id"`
	Topic          Topic           `json:"topic"`
	Action         string          `json:"action"`
	State          State           `json:"state"`
	PortfolioValue decimal.Decimal `json:"portfolio_value"`
	NetWorth       decimal.Decimal `json:"net_worth"`
	Timestamp      time.Time       `json:"timestamp"`
}
