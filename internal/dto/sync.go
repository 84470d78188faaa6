package dto

import (
	"time"

	"github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/core/domain"
)

// SyncStatusResponse reports data freshness and the state of the synchronizer.
type SyncStatusResponse struct {
	LastSuccessfulSync *string            `json:"lastSuccessfulSync"`
	Phase              domain.SyncPhase   `json:"phase"`
	LastReport         *domain.SyncReport `json:"lastReport,omitempty"`
}

// LastUpdateResponse reports when rates were last refreshed.
type LastUpdateResponse struct {
	LastUpdate *time.Time `json:"lastUpdate"`
}

// ToSyncStatusResponse builds the status DTO from the synchronizer's accessors.
func ToSyncStatusResponse(last time.Time, ok bool, phase domain.SyncPhase, report *domain.SyncReport) SyncStatusResponse {
	res := SyncStatusResponse{Phase: phase, LastReport: report}
	if ok {
		date := last.Format(domain.DateLayout)
		res.LastSuccessfulSync = &date
	}
	return res
}

// ToLastUpdateResponse renders the last successful sync as midnight of that day.
func ToLastUpdateResponse(last time.Time, ok bool) LastUpdateResponse {
	if !ok {
		return LastUpdateResponse{}
	}
	midnight := domain.TruncateToDate(last)
	return LastUpdateResponse{LastUpdate: &midnight}
}
