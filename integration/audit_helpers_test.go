package integration_test

import (
	"testing"

	"labdesk/internal/audit"
)

func requireAuditEvents(t *testing.T, dbPath string, want []string) {
	t.Helper()
	events, err := audit.NewLogger(dbPath).Events(0)
	if err != nil {
		t.Fatalf("read audit events from %s: %v", dbPath, err)
	}
	counts := make(map[string]int, len(events))
	for _, ev := range events {
		counts[ev.Type]++
	}
	for _, eventType := range want {
		if counts[eventType] == 0 {
			t.Fatalf("missing audit event %s in %s (have %v)", eventType, dbPath, counts)
		}
	}
}
