package store

import (
	"io"
	"time"

	"github.com/gocarina/gocsv"
)

type actionRow struct {
	CreatedAt string `csv:"time"`
	SessionID string `csv:"session"`
	Version   uint64 `csv:"version"`
	Kind      string `csv:"action"`
	Accepted  bool   `csv:"accepted"`
	Reason    string `csv:"reason"`
	Primary   string `csv:"primary"`
	Premium   string `csv:"premium"`
	Payload   string `csv:"payload"`
}

type netWorthRow struct {
	CreatedAt string `csv:"time"`
	SessionID string `csv:"session"`
	Version   uint64 `csv:"version"`
	Primary   string `csv:"primary"`
	Premium   string `csv:"premium"`
	Portfolio string `csv:"portfolio"`
	NetWorth  string `csv:"net_worth"`
}

// WriteActionsCSV writes action records as CSV with a header row.
func WriteActionsCSV(w io.Writer, records []ActionRecord) error {
	rows := make([]*actionRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, &actionRow{
			CreatedAt: rec.CreatedAt.UTC().Format(time.RFC3339),
			SessionID: rec.SessionID,
			Version:   rec.Version,
			Kind:      rec.Kind,
			Accepted:  rec.Accepted,
			Reason:    rec.Reason,
			Primary:   rec.Primary.StringFixed(2),
			Premium:   rec.Premium.StringFixed(2),
			Payload:   rec.Payload,
		})
	}
	return gocsv.Marshal(&rows, w)
}

// WriteSnapshotsCSV writes net-worth records as CSV with a header row.
func WriteSnapshotsCSV(w io.Writer, records []NetWorthRecord) error {
	rows := make([]*netWorthRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, &netWorthRow{
			CreatedAt: rec.CreatedAt.UTC().Format(time.RFC3339),
			SessionID: rec.SessionID,
			Version:   rec.Version,
			Primary:   rec.Primary.StringFixed(2),
			Premium:   rec.Premium.StringFixed(2),
			Portfolio: rec.Portfolio.StringFixed(2),
			NetWorth:  rec.NetWorth.StringFixed(2),
		})
	}
	return gocsv.Marshal(&rows, w)
}
