// Package export writes processed match datasets to a partitioned object store
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"path"
	"sort"
	"strconv"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	"github.com/sourcegraph/conc/pool"
	"github.com/valyala/bytebufferpool"

	"github.com/myusername/cricket-commentary-scraper/pkg/models"
)

// Format is the file encoding of one dataset
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// Dataset names used in object keys
const (
	DatasetEvents   = "events"
	DatasetMetadata = "metadata"
	DatasetPlayers  = "players"
)

// ParseFormat accepts "csv" or "json"
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatCSV, FormatJSON:
		return Format(s), nil
	}
	return "", errors.Newf("unsupported export format %q", s)
}

// Formats picks the encoding of each dataset
type Formats struct {
	Events   Format
	Metadata Format
	Players  Format
}

// DefaultFormats writes the flattened metadata as JSON lines and the other datasets as CSV
var DefaultFormats = Formats{Events: FormatCSV, Metadata: FormatJSON, Players: FormatCSV}

// MatchData is everything exported for one match
type MatchData struct {
	MatchID  int64
	Events   []models.CommentaryRecord
	Metadata *models.MatchMetadata
	Players  []models.PlayerRecord
}

// Exporter encodes match datasets and puts them under <prefix>/match_id=<id>/
type Exporter struct {
	store   ObjectStore
	prefix  string
	formats Formats
}

// NewExporter returns an Exporter writing under prefix; empty formats fall back to DefaultFormats
func NewExporter(store ObjectStore, prefix string, formats Formats) *Exporter {
	if formats.Events == "" {
		formats.Events = DefaultFormats.Events
	}
	if formats.Metadata == "" {
		formats.Metadata = DefaultFormats.Metadata
	}
	if formats.Players == "" {
		formats.Players = DefaultFormats.Players
	}
	return &Exporter{store: store, prefix: prefix, formats: formats}
}

// Key returns the object key of one dataset of a match
func Key(prefix string, matchID int64, dataset string, format Format) string {
	return path.Join(prefix, fmt.Sprintf("match_id=%d", matchID), fmt.Sprintf("%s_data.%s", dataset, format))
}

// Export writes every non-empty dataset of the match and returns the keys written
func (e *Exporter) Export(ctx context.Context, data MatchData) ([]string, error) {
	type job struct {
		dataset string
		format  Format
		encode  func(io.Writer, Format) error
	}

	var jobs []job
	if len(data.Events) > 0 {
		jobs = append(jobs, job{DatasetEvents, e.formats.Events, func(w io.Writer, f Format) error {
			return EncodeEvents(w, f, data.Events)
		}})
	}
	if data.Metadata != nil {
		jobs = append(jobs, job{DatasetMetadata, e.formats.Metadata, func(w io.Writer, f Format) error {
			return EncodeMetadata(w, f, data.Metadata)
		}})
	}
	if len(data.Players) > 0 {
		jobs = append(jobs, job{DatasetPlayers, e.formats.Players, func(w io.Writer, f Format) error {
			return EncodePlayers(w, f, data.Players)
		}})
	}

	keys := make([]string, len(jobs))
	p := pool.New().WithErrors().WithContext(ctx)
	for i, j := range jobs {
		p.Go(func(ctx context.Context) error {
			key := Key(e.prefix, data.MatchID, j.dataset, j.format)
			if err := e.put(ctx, key, j.format, j.encode); err != nil {
				return errors.Wrapf(err, "export %s of match %d", j.dataset, data.MatchID)
			}
			keys[i] = key
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}
	return keys, nil
}

func (e *Exporter) put(ctx context.Context, key string, format Format, encode func(io.Writer, Format) error) error {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if err := encode(buf, format); err != nil {
		return err
	}
	body := append([]byte(nil), buf.B...)
	return e.store.Put(ctx, key, body)
}

// EncodeEvents writes commentary records in CommentaryColumns order
func EncodeEvents(w io.Writer, format Format, events []models.CommentaryRecord) error {
	if format == FormatJSON {
		return writeJSONLines(w, events)
	}
	rows := make([][]string, 0, len(events))
	for _, ev := range events {
		rows = append(rows, ev.Row())
	}
	return writeCSV(w, models.CommentaryColumns, rows)
}

// EncodePlayers writes roster records in PlayerColumns order
func EncodePlayers(w io.Writer, format Format, players []models.PlayerRecord) error {
	if format == FormatJSON {
		return writeJSONLines(w, players)
	}
	rows := make([][]string, 0, len(players))
	for _, p := range players {
		rows = append(rows, p.Row())
	}
	return writeCSV(w, models.PlayerColumns, rows)
}

// EncodeMetadata writes the flattened metadata row with normalized, sorted columns
func EncodeMetadata(w io.Writer, format Format, metadata *models.MatchMetadata) error {
	row := metadata.Flatten()
	if format == FormatJSON {
		return writeJSONLines(w, []map[string]any{row})
	}

	columns := make([]string, 0, len(row))
	for k := range row {
		columns = append(columns, k)
	}
	sort.Strings(columns)

	values := make([]string, len(columns))
	for i, c := range columns {
		values[i] = formatValue(row[c])
	}
	return writeCSV(w, columns, [][]string{values})
}

func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case *string:
		if t == nil {
			return ""
		}
		return *t
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		return fmt.Sprint(t)
	}
}

func writeCSV(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return errors.Wrap(err, "write csv header")
	}
	if err := cw.WriteAll(rows); err != nil {
		return errors.Wrap(err, "write csv rows")
	}
	return nil
}

func writeJSONLines[T any](w io.Writer, records []T) error {
	for _, r := range records {
		line, err := sonic.ConfigStd.Marshal(r)
		if err != nil {
			return errors.Wrap(err, "encode json line")
		}
		line = append(line, '\n')
		if _, err := w.Write(line); err != nil {
			return errors.Wrap(err, "write json line")
		}
	}
	return nil
}
