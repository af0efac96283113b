package main

import (
	"labdesk/internal/audit"
	"labdesk/internal/business"
	"labdesk/internal/notify"
)

// recordObserver collects store mutations and, once the dataset has been
// saved, fans them out to the audit log, the process logger and the notifier.
type recordObserver struct {
	s       *session
	audit   *audit.Logger
	pending []recordChange
}

type recordChange struct {
	op     string
	kind   business.Kind
	id     string
	key    string
	record any
}

var _ business.Observer = (*recordObserver)(nil)

func (o *recordObserver) Created(kind business.Kind, id string, record any) {
	o.pending = append(o.pending, recordChange{"created", kind, id, "record", record})
}

// Updated receives the record as it was before the update.
func (o *recordObserver) Updated(kind business.Kind, id string, record any) {
	o.pending = append(o.pending, recordChange{"updated", kind, id, "previous", record})
}

func (o *recordObserver) Deleted(kind business.Kind, id string, record any) {
	o.pending = append(o.pending, recordChange{"deleted", kind, id, "record", record})
}

// flush emits every pending change. Call it only after the dataset is saved.
func (o *recordObserver) flush() {
	for _, ch := range o.pending {
		o.s.logEvent(o.audit, "record_"+ch.op, map[string]any{
			"kind": ch.kind.Name,
			"id":   ch.id,
			ch.key: ch.record,
		})
		o.s.logger.Debug("record "+ch.op, "kind", ch.kind.Name, "id", ch.id)
		o.s.notify(notify.FormatRecordChange(ch.op, ch.kind.Name, ch.id))
	}
	o.pending = nil
}

// discard drops pending changes and records that the save failed.
func (o *recordObserver) discard(path string, err error) {
	for _, ch := range o.pending {
		o.s.logEvent(o.audit, "record_save_failed", map[string]any{
			"kind":    ch.kind.Name,
			"id":      ch.id,
			"op":      ch.op,
			"dataset": path,
			"error":   err.Error(),
		})
	}
	o.pending = nil
}
