package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lamchahon-maker/web-dashboard/internal/analytics"
	"github.com/lamchahon-maker/web-dashboard/internal/dataset"
	"github.com/lamchahon-maker/web-dashboard/internal/metrics"
)

// ErrInvalidMessage is returned for payloads that are not record JSON
var ErrInvalidMessage = errors.New("invalid record message")

// DecodeRecords parses a single record object or an array of records.
// Every record must carry a recognizable date, normalized to YYYY-MM-DD.
func DecodeRecords(data []byte) ([]analytics.Record, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrInvalidMessage)
	}

	var records []analytics.Record
	if data[0] == '[' {
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
		}
	} else {
		var r analytics.Record
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
		}
		records = append(records, r)
	}

	for i := range records {
		date, err := dataset.NormalizeDate(records[i].Date)
		if err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", ErrInvalidMessage, i, err)
		}
		records[i].Date = date
	}
	return records, nil
}

// RecordHandler appends decoded records to store. Messages that fail to
// decode are counted and rejected whole so the queue can redeliver or
// dead-letter them. m may be nil.
func RecordHandler(store *dataset.Store, m *metrics.Metrics, source string) MessageHandler {
	return func(ctx context.Context, subject string, data []byte) error {
		records, err := DecodeRecords(data)
		if err != nil {
			if m != nil {
				m.IngestErrors.WithLabelValues(source).Inc()
			}
			return err
		}

		store.Append(records...)
		if m != nil {
			m.RecordsIngested.WithLabelValues(source).Add(float64(len(records)))
		}
		return nil
	}
}
