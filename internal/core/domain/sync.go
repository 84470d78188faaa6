package domain

import (
	"sync"
	"time"
)

// SyncPhase is the orchestrator's position inside a synchronization cycle.
type SyncPhase string

const (
	SyncIdle        SyncPhase = "idle"
	SyncFetching    SyncPhase = "fetching"
	SyncDecoding    SyncPhase = "decoding"
	SyncReconciling SyncPhase = "reconciling"
)

// RegimeSyncResult summarizes one regime's reconciliation within a cycle.
type RegimeSyncResult struct {
	Regime            Regime `json:"regime"`
	Decoded           int    `json:"decoded"`
	Appended          int    `json:"appended"`
	Skipped           int    `json:"skipped"`
	DroppedComponents int    `json:"droppedComponents"`
}

// SyncReport describes the outcome of one synchronization cycle.
type SyncReport struct {
	StartedAt          time.Time          `json:"startedAt"`
	FinishedAt         time.Time          `json:"finishedAt"`
	CurrenciesUpserted int                `json:"currenciesUpserted"`
	Regimes            []RegimeSyncResult `json:"regimes"`
	Succeeded          bool               `json:"succeeded"`
	Error              string             `json:"error,omitempty"`
}

// SyncState tracks the date of the last fully successful synchronization. The zero value
// is ready to use and reports no sync.
type SyncState struct {
	mu                 sync.RWMutex
	lastSuccessfulSync time.Time
}

// LastSuccessfulSync returns the date of the last successful cycle, or false if none completed.
func (s *SyncState) LastSuccessfulSync() (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSuccessfulSync, !s.lastSuccessfulSync.IsZero()
}

// MarkSucceeded records date as the last successful cycle date.
func (s *SyncState) MarkSucceeded(date time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSuccessfulSync = TruncateToDate(date)
}
