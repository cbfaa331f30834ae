package activity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/salama135/discord-bots/internal/model"
	"github.com/salama135/discord-bots/internal/storage"
)

const (
	FormatJSON = "json"
	FormatCSV  = "csv"
)

const csvHeader = "timestamp,userId,eventType,details"

// Export renders the actor's whole log. It returns ErrNoLog when the actor
// has never been recorded.
func (r *Recorder) Export(ctx context.Context, actorID, format string) ([]byte, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format != FormatJSON && format != FormatCSV {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if _, err := r.backend.Read(ctx, storage.KindActivity, actorID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNoLog
		}
		return nil, err
	}
	entries, err := r.Entries(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if format == FormatJSON {
		return json.MarshalIndent(entries, "", "  ")
	}
	return encodeCSV(entries)
}

// encodeCSV quotes every field and doubles embedded quotes. Rows are joined
// with a bare newline and the last row has no terminator.
func encodeCSV(entries []model.LogEntry) ([]byte, error) {
	var b strings.Builder
	b.WriteString(csvHeader)
	b.WriteByte('\n')
	for i, e := range entries {
		details, err := e.DetailsJSON()
		if err != nil {
			return nil, fmt.Errorf("encode details of entry %d: %w", i, err)
		}
		if i > 0 {
			b.WriteByte('\n')
		}
		fields := []string{
			e.Timestamp.Format(time.RFC3339Nano),
			e.UserID,
			string(e.EventType),
			string(details),
		}
		for j, f := range fields {
			if j > 0 {
				b.WriteByte(',')
			}
			b.WriteByte('"')
			b.WriteString(strings.ReplaceAll(f, `"`, `""`))
			b.WriteByte('"')
		}
	}
	return []byte(b.String()), nil
}
