package activity

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salama135/discord-bots/internal/model"
	"github.com/salama135/discord-bots/internal/storage"
)

type fixture struct {
	rec     *Recorder
	backend storage.Backend
	logs    *bytes.Buffer
	now     time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	backend, err := storage.NewFileBackend(afero.NewMemMapFs(), "/gtd")
	require.NoError(t, err)
	f := &fixture{backend: backend, logs: &bytes.Buffer{}, now: time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)}
	logger := slog.New(slog.NewTextHandler(f.logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	f.rec, err = NewRecorder(backend, WithClock(func() time.Time { return f.now }), WithLogger(logger))
	require.NoError(t, err)
	return f
}

func TestRecordAppendsAndMirrorsToLogger(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	first := f.rec.Record(ctx, "U1", model.TaskCaptured{TaskID: 1, Content: "Buy milk"})
	f.now = f.now.Add(time.Minute)
	f.rec.Record(ctx, "U1", model.InboxViewed{Count: 1})

	assert.Equal(t, model.EventTaskCaptured, first.EventType)
	assert.Equal(t, "U1", first.UserID)

	entries, err := f.rec.Entries(ctx, "U1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, model.TaskCaptured{TaskID: 1, Content: "Buy milk"}, entries[0].Details)
	assert.Equal(t, model.InboxViewed{Count: 1}, entries[1].Details)
	assert.True(t, entries[1].Timestamp.After(entries[0].Timestamp))

	assert.Contains(t, f.logs.String(), "event=TASK_CAPTURED")
	assert.Contains(t, f.logs.String(), "user=U1")
}

func TestRecordStartsFreshOnCorruptLog(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()
	require.NoError(t, f.backend.Write(ctx, storage.KindActivity, "U1", []byte("not json")))

	_, err := f.rec.Entries(ctx, "U1")
	require.ErrorIs(t, err, storage.ErrCorrupt)

	f.rec.Record(ctx, "U1", model.HelpViewed{})

	entries, err := f.rec.Entries(ctx, "U1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, model.EventHelpViewed, entries[0].EventType)
	assert.Contains(t, f.logs.String(), "starting fresh")
}

func TestRecordIsSafeForConcurrentWriters(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			f.rec.Record(ctx, model.SystemActor, model.WeeklyReminderScheduled{TargetUserID: "U1"})
		}(i)
	}
	wg.Wait()

	entries, err := f.rec.Entries(ctx, model.SystemActor)
	require.NoError(t, err)
	assert.Len(t, entries, 20)
}

func TestRecentReturnsNewestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()
	for i := 1; i <= 12; i++ {
		f.rec.Record(ctx, "U1", model.InboxViewed{Count: i})
		f.now = f.now.Add(time.Second)
	}

	recent, err := f.rec.Recent(ctx, "U1", 10)
	require.NoError(t, err)
	require.Len(t, recent, 10)
	assert.Equal(t, model.InboxViewed{Count: 12}, recent[0].Details)
	assert.Equal(t, model.InboxViewed{Count: 3}, recent[9].Details)

	none, err := f.rec.Recent(ctx, "U2", 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestExportMissingLog(t *testing.T) {
	f := newFixture(t)
	_, err := f.rec.Export(t.Context(), "U1", "json")
	assert.ErrorIs(t, err, ErrNoLog)

	f.rec.Record(t.Context(), "U1", model.HelpViewed{})
	_, err = f.rec.Export(t.Context(), "U1", "xml")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestExportJSON(t *testing.T) {
	f := newFixture(t)
	f.rec.Record(t.Context(), "U1", model.TaskCaptured{TaskID: 7, Content: "x"})

	out, err := f.rec.Export(t.Context(), "U1", "json")
	require.NoError(t, err)

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(out, &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "TASK_CAPTURED", decoded[0]["eventType"])
	assert.Equal(t, "U1", decoded[0]["userId"])
}

func TestExportCSVRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()
	f.rec.Record(ctx, "U1", model.TaskCaptured{TaskID: 1, Content: `Say "hello", then leave`})
	f.rec.Record(ctx, "U1", model.UnknownCommand{Command: "frobnicate", FullMessage: `!gtd frobnicate "now"`})
	f.rec.Record(ctx, "U1", model.HelpViewed{})

	out, err := f.rec.Export(ctx, "U1", "csv")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), "timestamp,userId,eventType,details\n"))
	assert.Contains(t, string(out), `""content"":""Say \""hello\"", then leave""`)

	rows, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4, "header plus one row per entry")

	assert.Equal(t, []string{"timestamp", "userId", "eventType", "details"}, rows[0])
	assert.Equal(t, "2026-02-09T12:00:00Z", rows[1][0])
	assert.Equal(t, "TASK_CAPTURED", rows[1][2])

	var details model.TaskCaptured
	require.NoError(t, json.Unmarshal([]byte(rows[1][3]), &details))
	assert.Equal(t, `Say "hello", then leave`, details.Content)
	assert.Equal(t, "{}", rows[3][3])
}
