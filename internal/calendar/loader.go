package calendar

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/rxtech-lab/argo-quality/internal/logger"
	"github.com/rxtech-lab/argo-quality/internal/types"
	"github.com/rxtech-lab/argo-quality/pkg/errors"
	"go.uber.org/zap"
)

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Loader reads economic calendar CSV files through DuckDB and keeps only
// high-impact rows.
type Loader struct {
	db     *sql.DB
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
}

func NewLoader(log *logger.Logger) (*Loader, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to open DuckDB", err)
	}

	if log == nil {
		log = logger.NewNopLogger()
	}

	return &Loader{
		db:     db,
		logger: log,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}, nil
}

// FileName returns the conventional calendar file name of a year.
func FileName(year int) string {
	return fmt.Sprintf("calendar_%d.csv", year)
}

// FindForYear returns the first calendar_<year>.csv found in dirs.
func FindForYear(dirs []string, year int) (string, bool) {
	for _, dir := range dirs {
		path := filepath.Join(dir, FileName(year))
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}

	return "", false
}

// LoadHighImpact returns the high-impact events of a calendar CSV sorted and
// de-duplicated by timestamp. A missing file yields no events and no error.
//
// Accepted columns: datetime_utc (or datetime, else the first column), event,
// impact (or importance). Rows with unparsable timestamps are dropped. When
// no impact column exists every row is kept.
func (l *Loader) LoadHighImpact(path string) ([]types.HighImpactEvent, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			l.logger.Debug("Calendar file not found", zap.String("path", path))

			return nil, nil
		}

		return nil, errors.Wrap(errors.ErrCodeCalendarLoadFailed, "failed to stat calendar file", err)
	}

	source := fmt.Sprintf("read_csv_auto('%s', header=true, all_varchar=true)", strings.ReplaceAll(path, "'", "''"))

	columns, err := l.columns(source)
	if err != nil {
		return nil, err
	}

	if len(columns) == 0 {
		return nil, nil
	}

	timeCol := pickColumn(columns, "datetime_utc", "datetime")
	if timeCol == "" {
		timeCol = columns[0]
	}

	eventCol := pickColumn(columns, "event")
	impactCol := pickColumn(columns, "impact", "importance")

	query, args, err := l.sq.
		Select(quote(timeCol), selectOrEmpty(eventCol), selectOrEmpty(impactCol)).
		From(source).
		Where(squirrel.Expr(quote(timeCol) + " IS NOT NULL")).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build calendar query", err)
	}

	rows, err := l.db.Query(query, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeCalendarLoadFailed, "failed to read calendar file", err)
	}
	defer rows.Close()

	var events []types.HighImpactEvent

	for rows.Next() {
		var ts, title, impact sql.NullString
		if err := rows.Scan(&ts, &title, &impact); err != nil {
			return nil, errors.Wrap(errors.ErrCodeCalendarLoadFailed, "failed to scan calendar row", err)
		}

		t, ok := ParseTimestamp(ts.String)
		if !ok {
			continue
		}

		if impactCol != "" && !IsHighImpact(impact.String) {
			continue
		}

		events = append(events, types.HighImpactEvent{Time: t, Impact: impact.String, Title: title.String})
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeCalendarLoadFailed, "error iterating calendar rows", err)
	}

	events = Normalize(events)

	l.logger.Debug("Loaded calendar",
		zap.String("path", path),
		zap.Int("high_impact_events", len(events)))

	return events, nil
}

func (l *Loader) columns(source string) ([]string, error) {
	rows, err := l.db.Query("SELECT * FROM " + source + " LIMIT 0")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeCalendarLoadFailed, "failed to read calendar header", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeCalendarLoadFailed, "failed to read calendar columns", err)
	}

	return columns, nil
}

// Close releases the DuckDB connection.
func (l *Loader) Close() error {
	if l.db != nil {
		return l.db.Close()
	}

	return nil
}

// Normalize sorts events ascending and keeps the first event per timestamp.
func Normalize(events []types.HighImpactEvent) []types.HighImpactEvent {
	sorted := make([]types.HighImpactEvent, len(events))
	copy(sorted, events)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Time.Before(sorted[j].Time)
	})

	result := make([]types.HighImpactEvent, 0, len(sorted))

	for _, e := range sorted {
		if len(result) > 0 && result[len(result)-1].Time.Equal(e.Time) {
			continue
		}

		result = append(result, e)
	}

	return result
}

// IsHighImpact reports whether an impact label denotes a high-impact event.
func IsHighImpact(label string) bool {
	s := strings.ToLower(strings.TrimSpace(label))

	return s == "3" || strings.Contains(s, "high")
}

// ParseTimestamp parses a calendar timestamp into UTC. Values without a zone are taken as UTC.
func ParseTimestamp(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}

	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), true
		}
	}

	return time.Time{}, false
}

func pickColumn(columns []string, candidates ...string) string {
	for _, candidate := range candidates {
		for _, c := range columns {
			if strings.EqualFold(strings.TrimSpace(c), candidate) {
				return c
			}
		}
	}

	return ""
}

func quote(column string) string {
	return `"` + strings.ReplaceAll(column, `"`, `""`) + `"`
}

func selectOrEmpty(column string) string {
	if column == "" {
		return "''"
	}

	return quote(column)
}
