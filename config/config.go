// Package config stores and exports the runtime configuration of the
// moderation case system
package config

import (
	"sync"
)

var (
	// Ensures no reads happen, while the configuration is reloading
	globalMu sync.RWMutex

	// Contains currently loaded global configuration
	global *Configs

	// Defaults contains the default configuration values
	Defaults = Configs{
		RootURL:           "http://localhost",
		ReportNewWarnings: true,
	}
)

// Configs stores the global moderation configuration
type Configs struct {
	// Open a case for a new warning, when none exists for its content yet
	ReportNewWarnings bool `json:"report_new_warnings"`

	// Close the linked case by default, when a sanction is applied
	AutoResolveCases bool `json:"auto_resolve_cases"`

	// Mirror new cases into this forum as threads. 0 disables mirroring.
	CaseForumID uint64 `json:"case_forum_id"`

	// Email error-level log entries
	EmailErr     bool   `json:"email_errors"`
	EmailErrPort uint   `json:"email_errors_server_port"`
	EmailErrMail string `json:"email_errors_address"`
	EmailErrPass string `json:"email_errors_password"`
	EmailErrSub  string `json:"email_errors_server_address"`

	RootURL string `json:"root_URL"`
}

// Get returns a pointer to the current configuration struct. Callers should
// not modify this struct.
func Get() *Configs {
	globalMu.RLock()
	defer globalMu.RUnlock()
	if global == nil {
		return &Defaults
	}
	return global
}

// Set sets the internal configuration struct
func Set(c Configs) {
	globalMu.Lock()
	global = &c
	globalMu.Unlock()
}

// Clear resets the configuration to defaults. Only used in tests.
func Clear() {
	globalMu.Lock()
	global = nil
	globalMu.Unlock()
}
