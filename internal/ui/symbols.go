package ui

// Unicode symbols for status indicators.
const (
	SymbolSuccess  = "✓" // Probe completed successfully
	SymbolFail     = "✗" // Probe failed
	SymbolPending  = "○" // Instance not yet probed
	SymbolProgress = "◐" // Probe in flight
)
