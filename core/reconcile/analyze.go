package reconcile

// IndexRecords maps ledger records by the primary event they track.
func IndexRecords(records []LedgerRecord) map[RecordKey]LedgerRecord {
	index := make(map[RecordKey]LedgerRecord, len(records))
	for _, r := range records {
		index[r.Key()] = r
	}
	return index
}

// Analyze classifies sourceEvents against the ledger snapshot.
//
// Events without an id are ignored. Synced copies and events the target calendar is
// invited to count as skipped duplicates. The rest are looked up by
// (sourceCalendarID, event id): untracked events are created, tracked events with a
// different signature are updated, and the remainder are unchanged.
func Analyze(sourceEvents []CalendarEvent, records []LedgerRecord, sourceCalendarID, targetCalendarID string) SyncAnalysis {
	return analyzeIndexed(sourceEvents, IndexRecords(records), sourceCalendarID, targetCalendarID)
}

func analyzeIndexed(sourceEvents []CalendarEvent, index map[RecordKey]LedgerRecord, sourceCalendarID, targetCalendarID string) SyncAnalysis {
	var analysis SyncAnalysis

	for _, event := range sourceEvents {
		if event.ID == "" {
			continue
		}

		if isDuplicate(event, targetCalendarID) {
			analysis.SkippedDuplicate++
			continue
		}

		record, tracked := index[RecordKey{CalendarID: sourceCalendarID, EventID: event.ID}]
		switch {
		case !tracked:
			analysis.ToCreate = append(analysis.ToCreate, event)
		case record.Signature != ComputeSignature(event):
			analysis.ToUpdate = append(analysis.ToUpdate, PendingUpdate{Event: event, Record: record})
		default:
			analysis.Unchanged++
		}
	}

	return analysis
}
