package analytics

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tair/pos-core/internal/domain"
)

// ErrInvalidMode is returned for an unknown calendar layout
var ErrInvalidMode = errors.New("unknown calendar mode")

// Mode selects the calendar layout
type Mode string

const (
	ModeWeek  Mode = "week"
	ModeMonth Mode = "month"
	ModeYear  Mode = "year"
)

func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeWeek, ModeMonth, ModeYear:
		return m, nil
	case "":
		return ModeMonth, nil
	}
	return "", fmt.Errorf("%w %q", ErrInvalidMode, s)
}

// CalendarView is one page of the calendar. Week pages start on Sunday;
// month pages list every day with LeadingBlanks empty cells before the
// first one; year pages list twelve month summaries.
type CalendarView struct {
	Mode          Mode        `json:"mode"`
	Anchor        string      `json:"anchor"`
	Title         string      `json:"title"`
	Prev          string      `json:"prev"`
	Next          string      `json:"next"`
	LeadingBlanks int         `json:"leading_blanks"`
	Days          []DailyStat `json:"days,omitempty"`
	Months        []Period    `json:"months,omitempty"`
	Summary       Totals      `json:"summary"`
}

// Shift moves an anchor by one page in the given mode
func Shift(mode Mode, anchor time.Time, steps int) time.Time {
	switch mode {
	case ModeWeek:
		return anchor.AddDate(0, 0, 7*steps)
	case ModeYear:
		return time.Date(anchor.Year()+steps, time.January, 1, 0, 0, 0, 0, anchor.Location())
	default:
		first := time.Date(anchor.Year(), anchor.Month(), 1, 0, 0, 0, 0, anchor.Location())
		return first.AddDate(0, steps, 0)
	}
}

// Calendar renders the page containing anchor. An empty anchor means today.
func (e *Engine) Calendar(mode Mode, anchor string) (CalendarView, error) {
	if anchor == "" {
		anchor = e.Today()
	}
	at, err := e.parse(anchor)
	if err != nil {
		return CalendarView{}, err
	}

	view := CalendarView{
		Mode:   mode,
		Anchor: domain.DayKey(at),
		Prev:   domain.DayKey(Shift(mode, at, -1)),
		Next:   domain.DayKey(Shift(mode, at, 1)),
	}
	days := e.buckets()

	switch mode {
	case ModeWeek:
		start := at.AddDate(0, 0, -int(at.Weekday()))
		sum := newBucket()
		for i := 0; i < 7; i++ {
			d := start.AddDate(0, 0, i)
			key := domain.DayKey(d)
			if b := days[key]; b != nil {
				sum.add(b)
			}
			view.Days = append(view.Days, stat(key, d, days[key]))
		}
		view.Title = fmt.Sprintf("Week of %s", domain.DayKey(start))
		view.Summary = sum.totals()

	case ModeMonth:
		month, _ := e.month(days, at.Year(), at.Month())
		first := time.Date(at.Year(), at.Month(), 1, 0, 0, 0, 0, at.Location())
		view.LeadingBlanks = int(first.Weekday())
		view.Days = month.Days
		view.Title = first.Format("January 2006")
		view.Summary = month.Totals

	case ModeYear:
		sum := newBucket()
		for m := time.January; m <= time.December; m++ {
			month, b := e.month(days, at.Year(), m)
			month.Days = nil
			view.Months = append(view.Months, month)
			sum.add(b)
		}
		view.Title = fmt.Sprintf("%04d", at.Year())
		view.Summary = sum.totals()

	default:
		return CalendarView{}, fmt.Errorf("%w %q", ErrInvalidMode, mode)
	}
	return view, nil
}
