package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const minutesPerDay = 24 * 60

// WorkEntry is one recorded shift. Times are wall-clock "HH:MM" strings
// with no timezone; breaks are minutes; TotalHours is derived at write
// time and stored alongside the raw fields.
type WorkEntry struct {
	ID             string    `gorm:"primaryKey;size:64" json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	UserID         string    `gorm:"not null;index;size:64" json:"user_id"`
	Date           time.Time `gorm:"not null;type:date" json:"date"`
	TimeIn         string    `gorm:"not null;size:5" json:"time_in"`
	TimeOut        string    `gorm:"not null;size:5" json:"time_out"`
	MorningBreak   int       `gorm:"not null;default:0" json:"morning_break"`
	Lunch          int       `gorm:"not null;default:0" json:"lunch"`
	AfternoonBreak int       `gorm:"not null;default:0" json:"afternoon_break"`
	TotalHours     float64   `gorm:"not null" json:"total_hours"`
}

func (e *WorkEntry) BreakMinutes() int {
	return e.MorningBreak + e.Lunch + e.AfternoonBreak
}

// ComputeTotalHours derives the worked hours from the clock times and
// breaks. A time-out earlier than the time-in wraps past midnight; the
// result is floored at zero.
func (e *WorkEntry) ComputeTotalHours() (float64, error) {
	in, err := parseClock(e.TimeIn)
	if err != nil {
		return 0, fmt.Errorf("invalid time in %q: %w", e.TimeIn, err)
	}
	out, err := parseClock(e.TimeOut)
	if err != nil {
		return 0, fmt.Errorf("invalid time out %q: %w", e.TimeOut, err)
	}

	worked := out - in
	if worked < 0 {
		worked += minutesPerDay
	}
	worked -= e.BreakMinutes()
	if worked < 0 {
		worked = 0
	}
	return float64(worked) / 60, nil
}

// parseClock converts an "HH:MM" string to minutes since midnight.
func parseClock(s string) (int, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("expected HH:MM")
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, err
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, err
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("out of range")
	}
	return h*60 + m, nil
}
