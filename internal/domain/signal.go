package domain

import "time"

// Bus channels and streams.
const (
	ChannelOpportunities = "opportunities"
	ChannelTrades        = "trades"
	StreamTradeJournal   = "trade_journal"
)

// Event is the envelope published on the signal bus and relayed to
// websocket clients.
type Event struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// BotStatus is a summary of the bot's current operational state.
type BotStatus struct {
	Mode          string    `json:"mode"`
	Venues        []string  `json:"venues"`
	Symbols       []string  `json:"symbols"`
	Cycles        int64     `json:"cycles"`
	LastCycleAt   time.Time `json:"last_cycle_at"`
	UptimeSeconds int64     `json:"uptime_seconds"`
}
