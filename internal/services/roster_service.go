// Package services – RosterService
//
// RosterService imports the celebration roster from CSV. The header must
// contain name, type and date; year and spouse are optional. The whole
// file is validated before anything is written; rows are then upserted by
// (name, type) so re-uploading the same sheet updates rather than
// duplicates.
package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-celebrations-backend/internal/clock"
	"github.com/tbourn/go-celebrations-backend/internal/domain"
	"github.com/tbourn/go-celebrations-backend/internal/repo"
)

// ImportResult summarizes one upload.
type ImportResult struct {
	Filename         string   `json:"filename"`
	RecordsProcessed int      `json:"records_processed"`
	RecordsAdded     int      `json:"records_added"`
	RecordsUpdated   int      `json:"records_updated"`
	RowErrors        []string `json:"row_errors,omitempty"`
}

type RosterService struct {
	DB *gorm.DB
	// MaxRows bounds one upload; 0 means 10000.
	MaxRows int
}

func NewRosterService(db *gorm.DB) *RosterService {
	return &RosterService{DB: db, MaxRows: 10000}
}

type rosterRow struct {
	line int
	rec  domain.RosterRecord
}

// ImportCSV validates and upserts every row of r. Validation problems for
// any row reject the whole file with an error wrapping ErrCSVInvalid.
// Failures writing individual rows are reported in RowErrors and do not
// stop the import. Each call is recorded in roster_imports.
func (s *RosterService) ImportCSV(ctx context.Context, filename string, r io.Reader) (*ImportResult, error) {
	tr := otel.Tracer("services/RosterService")
	ctx, span := tr.Start(ctx, "ImportCSV", trace.WithAttributes(attribute.String("file", filename)))
	defer span.End()

	res := &ImportResult{Filename: filename}
	rows, err := s.parse(r)
	if err != nil {
		s.recordImport(ctx, res, err)
		return res, err
	}
	res.RecordsProcessed = len(rows)

	for _, row := range rows {
		rec := row.rec
		created, err := repo.UpsertRoster(ctx, s.DB, &rec)
		if err != nil {
			log.Error().Err(err).Int("line", row.line).Str("name", rec.Name).Msg("roster row upsert failed")
			res.RowErrors = append(res.RowErrors, fmt.Sprintf("line %d: %v", row.line, err))
			continue
		}
		if created {
			res.RecordsAdded++
		} else {
			res.RecordsUpdated++
		}
	}
	span.SetAttributes(
		attribute.Int("rows", res.RecordsProcessed),
		attribute.Int("added", res.RecordsAdded),
		attribute.Int("updated", res.RecordsUpdated),
	)
	s.recordImport(ctx, res, nil)
	return res, nil
}

func (s *RosterService) recordImport(ctx context.Context, res *ImportResult, cause error) {
	imp := &domain.RosterImport{
		Filename:         res.Filename,
		RecordsProcessed: res.RecordsProcessed,
		RecordsAdded:     res.RecordsAdded,
		RecordsUpdated:   res.RecordsUpdated,
		Success:          cause == nil,
	}
	if cause != nil {
		msg := cause.Error()
		imp.ErrorMessage = &msg
	}
	if err := repo.CreateRosterImport(ctx, s.DB, imp); err != nil {
		log.Warn().Err(err).Str("file", res.Filename).Msg("failed to record roster import")
	}
}

// Imports returns recent upload summaries.
func (s *RosterService) Imports(ctx context.Context, limit int) ([]domain.RosterImport, error) {
	return repo.ListRosterImports(ctx, s.DB, limit)
}

func (s *RosterService) parse(r io.Reader) ([]rosterRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: file is empty", ErrCSVInvalid)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCSVInvalid, err)
	}
	col := map[string]int{}
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	var missing []string
	for _, req := range []string{"name", "type", "date"} {
		if _, ok := col[req]; !ok {
			missing = append(missing, req)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing required columns: %s", ErrCSVInvalid, strings.Join(missing, ", "))
	}

	max := s.MaxRows
	if max <= 0 {
		max = 10000
	}
	get := func(rec []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var (
		rows                     []rosterRow
		badDates, badTypes, misc []string
	)
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrCSVInvalid, line, err)
		}
		if len(rows) >= max {
			return nil, fmt.Errorf("%w: more than %d rows", ErrCSVInvalid, max)
		}
		if isBlank(rec) {
			continue
		}
		row := domain.RosterRecord{
			Name:      get(rec, "name"),
			EventType: strings.ToLower(get(rec, "type")),
			EventDate: get(rec, "date"),
			Active:    true,
		}
		if row.Name == "" {
			misc = append(misc, fmt.Sprintf("line %d: name is required", line))
		}
		if _, _, err := clock.ParseMonthDay(row.EventDate); err != nil {
			badDates = append(badDates, strconv.Itoa(line))
		}
		if row.EventType != domain.EventBirthday && row.EventType != domain.EventAnniversary {
			badTypes = append(badTypes, strconv.Itoa(line))
		}
		if y := get(rec, "year"); y != "" {
			n, err := strconv.Atoi(strings.TrimSuffix(y, ".0"))
			if err != nil || n < 1900 || n > 2100 {
				misc = append(misc, fmt.Sprintf("line %d: invalid year %q", line, y))
			} else {
				row.Year = &n
			}
		}
		if sp := get(rec, "spouse"); sp != "" {
			row.Spouse = &sp
		}
		rows = append(rows, rosterRow{line: line, rec: row})
	}

	var problems []string
	if len(badDates) > 0 {
		problems = append(problems, "Invalid date format in lines: "+strings.Join(badDates, ", ")+". Expected MM-DD format.")
	}
	if len(badTypes) > 0 {
		problems = append(problems, "Invalid event types in lines: "+strings.Join(badTypes, ", ")+". Must be 'birthday' or 'anniversary'.")
	}
	problems = append(problems, misc...)
	if len(problems) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrCSVInvalid, strings.Join(problems, "; "))
	}
	return rows, nil
}

func isBlank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
