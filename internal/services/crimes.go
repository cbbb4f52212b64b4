package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/jkilzi/taskqueue/internal/models"
	"github.com/jkilzi/taskqueue/pkg/scheduler"
)

const (
	crimeHeaderPrefix  = "lsoa_code"
	crimeColumns       = 7
	defaultTrendWindow = 4
	// ctx is checked once per batch of rows
	crimeCheckInterval = 4096
)

// crimeTotals accumulates the crime CSV rows. Totals merge by addition so
// files can be aggregated independently.
type crimeTotals struct {
	rows            int
	byCategory      map[string]int
	byBorough       map[string]int
	byBoroughCrimes map[string]map[string]int
	byYear          map[int]int
}

func newCrimeTotals() *crimeTotals {
	return &crimeTotals{
		byCategory:      make(map[string]int),
		byBorough:       make(map[string]int),
		byBoroughCrimes: make(map[string]map[string]int),
		byYear:          make(map[int]int),
	}
}

func (t *crimeTotals) add(r models.CrimeRecord) {
	t.rows++
	t.byCategory[r.MajorCategory] += r.Value
	t.byBorough[r.Borough] += r.Value
	if t.byBoroughCrimes[r.Borough] == nil {
		t.byBoroughCrimes[r.Borough] = make(map[string]int)
	}
	t.byBoroughCrimes[r.Borough][r.MajorCategory] += r.Value
	t.byYear[r.Year] += r.Value
}

func (t *crimeTotals) merge(o *crimeTotals) {
	t.rows += o.rows
	for k, v := range o.byCategory {
		t.byCategory[k] += v
	}
	for k, v := range o.byBorough {
		t.byBorough[k] += v
	}
	for borough, crimes := range o.byBoroughCrimes {
		if t.byBoroughCrimes[borough] == nil {
			t.byBoroughCrimes[borough] = make(map[string]int)
		}
		for k, v := range crimes {
			t.byBoroughCrimes[borough][k] += v
		}
	}
	for k, v := range o.byYear {
		t.byYear[k] += v
	}
}

type CrimesOption func(*Crimes)

// WithTrendWindow sets how many of the most recent years the trend covers.
func WithTrendWindow(years int) CrimesOption {
	return func(c *Crimes) {
		c.trendWindow = years
	}
}

// Crimes aggregates the London crime statistics CSV.
type Crimes struct {
	concurrency int
	trendWindow int
	log         *zap.SugaredLogger
}

func NewCrimesService(concurrency int, opts ...CrimesOption) *Crimes {
	c := &Crimes{
		concurrency: concurrency,
		trendWindow: defaultTrendWindow,
		log:         zap.S().Named("crimes_service"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Report aggregates files concurrently and builds one report over all of
// them.
func (c *Crimes) Report(ctx context.Context, files ...string) (*models.CrimeReport, error) {
	partials, err := scheduler.MapAsync(ctx, files, c.concurrency, func(ctx context.Context, file string, _ int) (*crimeTotals, error) {
		f, err := os.Open(file)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		totals, err := c.aggregate(ctx, f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", file, err)
		}
		return totals, nil
	})
	if err != nil {
		return nil, err
	}

	totals := newCrimeTotals()
	for _, p := range partials {
		totals.merge(p)
	}
	return c.report(totals), nil
}

// ReportFrom builds a report from a single CSV stream.
func (c *Crimes) ReportFrom(ctx context.Context, r io.Reader) (*models.CrimeReport, error) {
	totals, err := c.aggregate(ctx, r)
	if err != nil {
		return nil, err
	}
	return c.report(totals), nil
}

func (c *Crimes) aggregate(ctx context.Context, r io.Reader) (*crimeTotals, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	totals := newCrimeTotals()
	for n := 1; ; n++ {
		if n%crimeCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if n == 1 && strings.HasPrefix(fields[0], crimeHeaderPrefix) {
			continue
		}

		record, err := parseCrimeRecord(fields)
		if err != nil {
			line, _ := reader.FieldPos(0)
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		totals.add(record)
	}

	c.log.Debugw("crime data aggregated", "rows", totals.rows)
	return totals, nil
}

func parseCrimeRecord(fields []string) (models.CrimeRecord, error) {
	if len(fields) < crimeColumns {
		return models.CrimeRecord{}, fmt.Errorf("expected %d columns, got %d", crimeColumns, len(fields))
	}

	var numbers [3]int
	for i, name := range []string{"value", "year", "month"} {
		n, err := strconv.Atoi(strings.TrimSpace(fields[4+i]))
		if err != nil {
			return models.CrimeRecord{}, fmt.Errorf("invalid %s %q", name, fields[4+i])
		}
		numbers[i] = n
	}

	return models.CrimeRecord{
		LSOACode:      fields[0],
		Borough:       fields[1],
		MajorCategory: fields[2],
		MinorCategory: fields[3],
		Value:         numbers[0],
		Year:          numbers[1],
		Month:         numbers[2],
	}, nil
}

func (c *Crimes) report(t *crimeTotals) *models.CrimeReport {
	report := &models.CrimeReport{
		Rows:                     t.rows,
		LeastCommonCrime:         pick(t.byCategory, func(a, b int) bool { return a < b }),
		MostDangerousBorough:     pick(t.byBorough, func(a, b int) bool { return a > b }),
		MostCommonCrimeByBorough: make(map[string]string, len(t.byBoroughCrimes)),
		TotalsByYear:             t.byYear,
		TrendWindow:              c.trendWindow,
	}
	for borough, crimes := range t.byBoroughCrimes {
		report.MostCommonCrimeByBorough[borough] = pick(crimes, func(a, b int) bool { return a > b })
	}

	years := make([]int, 0, len(t.byYear))
	for y := range t.byYear {
		years = append(years, y)
	}
	sort.Ints(years)
	if len(years) > c.trendWindow {
		years = years[len(years)-c.trendWindow:]
	}
	if len(years) >= 2 {
		report.Increasing = t.byYear[years[len(years)-1]] > t.byYear[years[0]]
	}

	return report
}

// pick returns the key whose value wins under better. Ties go to the
// alphabetically first key.
func pick(m map[string]int, better func(a, b int) bool) string {
	var (
		best  string
		value int
		found bool
	)
	for k, v := range m {
		if !found || better(v, value) || (v == value && k < best) {
			best, value, found = k, v, true
		}
	}
	return best
}

// ExportCrimeReport writes report to an XLSX workbook at path with one sheet
// per answer.
func ExportCrimeReport(report *models.CrimeReport, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", "Summary"); err != nil {
		return err
	}
	summary := [][]any{
		{"Rows", report.Rows},
		{"Least common crime", report.LeastCommonCrime},
		{"Most dangerous borough", report.MostDangerousBorough},
		{fmt.Sprintf("Increasing over the last %d years", report.TrendWindow), report.Increasing},
	}
	if err := writeRows(f, "Summary", summary); err != nil {
		return err
	}

	boroughs := make([]string, 0, len(report.MostCommonCrimeByBorough))
	for b := range report.MostCommonCrimeByBorough {
		boroughs = append(boroughs, b)
	}
	sort.Strings(boroughs)
	rows := [][]any{{"Borough", "Most common crime"}}
	for _, b := range boroughs {
		rows = append(rows, []any{b, report.MostCommonCrimeByBorough[b]})
	}
	if _, err := f.NewSheet("Boroughs"); err != nil {
		return err
	}
	if err := writeRows(f, "Boroughs", rows); err != nil {
		return err
	}

	years := make([]int, 0, len(report.TotalsByYear))
	for y := range report.TotalsByYear {
		years = append(years, y)
	}
	sort.Ints(years)
	rows = [][]any{{"Year", "Crimes"}}
	for _, y := range years {
		rows = append(rows, []any{y, report.TotalsByYear[y]})
	}
	if _, err := f.NewSheet("Years"); err != nil {
		return err
	}
	if err := writeRows(f, "Years", rows); err != nil {
		return err
	}

	return f.SaveAs(path)
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}
