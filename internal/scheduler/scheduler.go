// Package scheduler writes the day-end (Z) report to disk every night.
package scheduler

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"warungpos/backend/internal/analytics"
	"warungpos/backend/internal/domain"
	"warungpos/backend/internal/report"
)

// Source supplies the figures and shop name a report is built from.
type Source interface {
	DailyBreakdown(date string) (domain.DailyBreakdown, error)
	ShopDetails() domain.ShopDetails
}

type DayEnd struct {
	src Source
	dir string
	loc *time.Location
	log *zap.Logger
}

func NewDayEnd(src Source, dir string, loc *time.Location, log *zap.Logger) *DayEnd {
	if loc == nil {
		loc = time.Local
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &DayEnd{src: src, dir: dir, loc: loc, log: log.Named("dayend")}
}

// Write renders the report for date as xlsx and pdf into the report
// directory and returns the written paths.
func (d *DayEnd) Write(date string) ([]string, error) {
	b, err := d.src.DailyBreakdown(date)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create report dir: %w", err)
	}

	workbook, err := report.Workbook(b)
	if err != nil {
		return nil, err
	}
	pdf, err := report.PDF(d.src.ShopDetails().Name, b)
	if err != nil {
		return nil, err
	}

	base := filepath.Join(d.dir, report.FileName(b.Date))
	paths := []string{base + ".xlsx", base + ".pdf"}
	for i, data := range [][]byte{workbook, pdf} {
		if err := os.WriteFile(paths[i], data, 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", paths[i], err)
		}
	}
	return paths, nil
}

func (d *DayEnd) run() {
	date := analytics.Today(d.loc)
	paths, err := d.Write(date)
	if err != nil {
		d.log.Error("day-end report failed", zap.String("date", date), zap.Error(err))
		return
	}
	d.log.Info("day-end report written", zap.String("date", date), zap.Strings("files", paths))
}

// Start runs the job every day at the HH:MM wall-clock time in the job's
// location. Stop the returned scheduler on shutdown.
func Start(job *DayEnd, at string) (*gocron.Scheduler, error) {
	s := gocron.NewScheduler(job.loc)
	if _, err := s.Every(1).Day().At(at).Do(job.run); err != nil {
		return nil, fmt.Errorf("schedule day-end report at %q: %w", at, err)
	}
	s.StartAsync()
	return s, nil
}
