package lottery

import (
	"fmt"
	"time"
)

// LastFridayOfMonth returns the draw date of the monthly lottery
func LastFridayOfMonth(year int, month time.Month, loc *time.Location) time.Time {
	lastDay := time.Date(year, month+1, 0, 0, 0, 0, 0, loc)
	offset := (int(lastDay.Weekday()) - int(time.Friday) + 7) % 7
	return lastDay.AddDate(0, 0, -offset)
}

// PreviousMonth returns the year and month before the one t falls in
func PreviousMonth(t time.Time) (int, time.Month) {
	if t.Month() == time.January {
		return t.Year() - 1, time.December
	}
	return t.Year(), t.Month() - 1
}

// IsDrawDay reports whether t, in loc, is the last Friday of its month
func IsDrawDay(t time.Time, loc *time.Location) bool {
	local := t.In(loc)
	draw := LastFridayOfMonth(local.Year(), local.Month(), loc)
	return local.Day() == draw.Day()
}

// LastTwoDigits returns the last two characters of a result, left-padded with zeros
func LastTwoDigits(s string) string {
	if len(s) > 2 {
		s = s[len(s)-2:]
	}
	for len(s) < 2 {
		s = "0" + s
	}
	return s
}

// Outcome is the comparison of a member's number with a draw
type Outcome struct {
	ResultDigits string
	NumberDigits string
	Won          bool
}

// Check compares the last two digits of result and number
func Check(result string, number int) Outcome {
	resultDigits := LastTwoDigits(result)
	numberDigits := LastTwoDigits(fmt.Sprintf("%d", number))
	return Outcome{
		ResultDigits: resultDigits,
		NumberDigits: numberDigits,
		Won:          resultDigits == numberDigits,
	}
}

// Message is the member-facing summary of the outcome
func (o Outcome) Message() string {
	if o.Won {
		return fmt.Sprintf("Número ganador del mes pasado: %s. ¡Ganaste!", o.ResultDigits)
	}
	return fmt.Sprintf("Número ganador del mes pasado: %s. No ganaste.", o.ResultDigits)
}
