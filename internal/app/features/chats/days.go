// internal/app/features/chats/days.go
package chats

import (
	"time"

	"github.com/dalemusser/collabhub/internal/domain/models"
)

// timeNow is swapped in tests.
var timeNow = func() time.Time { return time.Now().UTC() }

// DaySection is one calendar day of messages with a display label.
type DaySection struct {
	Label    string           `json:"label"`
	Date     string           `json:"date"` // YYYY-MM-DD
	Messages []models.Message `json:"messages"`
}

// DayLabel names a calendar day relative to now: "Today", "Yesterday",
// the weekday name within the past week, and the full date beyond that.
func DayLabel(day, now time.Time) string {
	today := truncateDay(now)
	target := truncateDay(day)
	switch diff := int(today.Sub(target).Hours() / 24); {
	case diff <= 0:
		return "Today"
	case diff == 1:
		return "Yesterday"
	case diff < 7:
		return target.Weekday().String()
	default:
		return target.Format("January 2, 2006")
	}
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// GroupByDay splits messages (already in sequence order) into
// consecutive calendar-day sections.
func GroupByDay(msgs []models.Message, now time.Time) []DaySection {
	var out []DaySection
	for _, m := range msgs {
		day := truncateDay(m.Timestamp)
		date := day.Format("2006-01-02")
		if len(out) == 0 || out[len(out)-1].Date != date {
			out = append(out, DaySection{
				Label: DayLabel(day, now),
				Date:  date,
			})
		}
		out[len(out)-1].Messages = append(out[len(out)-1].Messages, m)
	}
	return out
}
