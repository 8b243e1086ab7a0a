package queue

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatLine(t *testing.T) {
	ev := Event{
		Type:       InvoiceCreated,
		Kind:       "invoice",
		EntityID:   12,
		ActorID:    1,
		Status:     "pending",
		Amount:     "265.50",
		Reference:  "BILL-20250301-0001",
		OccurredAt: time.Date(2025, 3, 1, 18, 30, 0, 0, time.UTC),
	}
	assert.Equal(t,
		"[2025-03-01T18:30:00Z] invoice.created | kind=invoice | id=12 | actor=1 | status=pending | amount=265.50 | ref=BILL-20250301-0001\n",
		FormatLine(ev))

	guest := Event{Type: BookingCreated, Kind: "restaurant", EntityID: 3, Resource: "T4", OccurredAt: ev.OccurredAt}
	assert.Equal(t, "[2025-03-01T18:30:00Z] booking.created | kind=restaurant | id=3 | actor=0 | resource=\"T4\"\n", FormatLine(guest))
}

func TestHandleAppendsLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "events.log")
	c := &Consumer{path: path}

	require.NoError(t, c.handle([]byte(`{"type":"booking.deleted","kind":"hotel","entity_id":5,"occurred_at":"2025-03-01T00:00:00Z"}`)))
	require.NoError(t, c.handle([]byte(`{"type":"booking.updated","kind":"hotel","entity_id":5,"status":"cancelled","occurred_at":"2025-03-01T00:00:00Z"}`)))
	assert.Error(t, c.handle([]byte(`not json`)))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t,
		"[2025-03-01T00:00:00Z] booking.deleted | kind=hotel | id=5 | actor=0\n"+
			"[2025-03-01T00:00:00Z] booking.updated | kind=hotel | id=5 | actor=0 | status=cancelled\n",
		string(b))
}
