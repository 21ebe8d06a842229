package domain

// Preferences are display settings persisted across restarts.
type Preferences struct {
	DarkMode     bool   `json:"darkMode"`
	WatchAddress string `json:"watchAddress,omitempty"`
	TokenSymbol  string `json:"tokenSymbol,omitempty"`
}
