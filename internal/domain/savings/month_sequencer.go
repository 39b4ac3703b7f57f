package savings

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/natillera-ledger/internal/domain/movement"
)

var monthNames = [12]string{
	"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
	"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
}

var monthLabelPattern = regexp.MustCompile(`(?i)\((` + strings.Join(monthNames[:], "|") + `)\s+(\d{4})\)`)

// MonthLabel names a contribution cycle, e.g. "Enero 2025"
type MonthLabel struct {
	Month time.Month
	Year  int
}

func (l MonthLabel) String() string {
	return fmt.Sprintf("%s %d", monthNames[l.Month-1], l.Year)
}

// Next advances one calendar month, rolling December into January of the next year
func (l MonthLabel) Next() MonthLabel {
	if l.Month == time.December {
		return MonthLabel{Month: time.January, Year: l.Year + 1}
	}
	return MonthLabel{Month: l.Month + 1, Year: l.Year}
}

// LabelOf returns the cycle t falls in, evaluated in loc
func LabelOf(t time.Time, loc *time.Location) MonthLabel {
	local := t.In(loc)
	return MonthLabel{Month: local.Month(), Year: local.Year()}
}

// ParseMonthLabel extracts "(Mes Año)" from a contribution description
func ParseMonthLabel(description string) (MonthLabel, bool) {
	match := monthLabelPattern.FindStringSubmatch(description)
	if match == nil {
		return MonthLabel{}, false
	}
	year, err := strconv.Atoi(match[2])
	if err != nil {
		return MonthLabel{}, false
	}
	for i, name := range monthNames {
		if strings.EqualFold(name, match[1]) {
			return MonthLabel{Month: time.Month(i + 1), Year: year}, true
		}
	}
	return MonthLabel{}, false
}

// NextContributionLabel labels the contribution that follows latest. Without history the
// current month is used. The description label is authoritative; the entry timestamp is
// only consulted when the description cannot be parsed.
func NextContributionLabel(latest *movement.Entry, now time.Time, loc *time.Location) MonthLabel {
	if latest == nil {
		return LabelOf(now, loc)
	}
	if label, ok := ParseMonthLabel(latest.Description); ok {
		return label.Next()
	}
	return LabelOf(latest.CreatedAt, loc).Next()
}
