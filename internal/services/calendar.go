package services

import (
	"context"
	"time"

	"github.com/abrezinsky/gymscore/internal/models"
)

// Calendar is one month of competitions laid out as Monday-first weeks
type Calendar struct {
	Year         int                          `json:"year"`
	Month        int                          `json:"month"`
	MonthName    string                       `json:"month_name"`
	Weeks        [][7]int                     `json:"weeks"` // day of month, 0 outside it
	Competitions map[int][]models.Competition `json:"competitions"`
	Total        int                          `json:"total"`
	PrevYear     int                          `json:"prev_year"`
	PrevMonth    int                          `json:"prev_month"`
	NextYear     int                          `json:"next_year"`
	NextMonth    int                          `json:"next_month"`
}

// NormalizeMonth wraps an out-of-range month into the adjacent year.
// Month 13 is January of the next year and month 0 December of the previous.
func NormalizeMonth(year, month int) (int, int) {
	switch {
	case month > 12:
		return year + 1, 1
	case month < 1:
		return year - 1, 12
	}
	return year, month
}

// MonthWeeks returns the Monday-first week grid of a month
func MonthWeeks(year, month int) [][7]int {
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	days := first.AddDate(0, 1, -1).Day()
	offset := (int(first.Weekday()) + 6) % 7

	var weeks [][7]int
	var week [7]int
	col := offset
	for day := 1; day <= days; day++ {
		week[col] = day
		col++
		if col == 7 {
			weeks = append(weeks, week)
			week = [7]int{}
			col = 0
		}
	}
	if col > 0 {
		weeks = append(weeks, week)
	}
	return weeks
}

// Calendar returns the competitions dated in a month, after wrapping the
// month with NormalizeMonth
func (s *CompetitionService) Calendar(ctx context.Context, year, month int) (*Calendar, error) {
	year, month = NormalizeMonth(year, month)

	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	competitions, err := s.repo.ListCompetitionsBetween(ctx, from, to)
	if err != nil {
		return nil, internalError(err)
	}

	cal := &Calendar{
		Year:         year,
		Month:        month,
		MonthName:    from.Month().String(),
		Weeks:        MonthWeeks(year, month),
		Competitions: make(map[int][]models.Competition),
		Total:        len(competitions),
	}
	for _, c := range competitions {
		if c.Date == nil {
			continue
		}
		day := c.Date.Day()
		cal.Competitions[day] = append(cal.Competitions[day], c)
	}

	prev := from.AddDate(0, -1, 0)
	cal.PrevYear, cal.PrevMonth = prev.Year(), int(prev.Month())
	cal.NextYear, cal.NextMonth = to.Year(), int(to.Month())
	return cal, nil
}
