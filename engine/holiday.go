/*
holiday.go - Brazilian national holiday calculator

PURPOSE:
  Computes the 11 national holidays of a year: 8 fixed dates plus
  Carnival, Good Friday and Corpus Christi, which float relative to
  Easter Sunday. Easter itself is computed with the Meeus/Jones/Butcher
  algorithm (pure integer arithmetic on the year) and is used only to
  derive the other three.

PROPERTIES:
  - Pure and deterministic; any positive year is valid input
  - HolidaysForYear always returns exactly 11 dates, sorted ascending
  - Carnival  = Easter - 47 days
  - Good Friday = Easter - 2 days
  - Corpus Christi = Easter + 60 days
*/
package engine

import (
	"sort"
	"time"
)

// Holiday is a named national holiday date.
type Holiday struct {
	Date Date   `json:"date"`
	Name string `json:"name"`
}

// EasterSunday computes Easter for a year using the Meeus/Jones/Butcher
// Gregorian algorithm.
func EasterSunday(year int) Date {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1
	return NewDate(year, time.Month(month), day)
}

// HolidaysForYear returns the year's holidays sorted by date.
func HolidaysForYear(year int) []Holiday {
	holidays := []Holiday{
		{Date: NewDate(year, time.January, 1), Name: "CONFRATERNIZAÇÃO"},
		{Date: NewDate(year, time.April, 21), Name: "TIRADENTES"},
		{Date: NewDate(year, time.May, 1), Name: "DIA DO TRABALHO"},
		{Date: NewDate(year, time.September, 7), Name: "INDEPENDÊNCIA"},
		{Date: NewDate(year, time.October, 12), Name: "N. SRA. APARECIDA"},
		{Date: NewDate(year, time.November, 2), Name: "FINADOS"},
		{Date: NewDate(year, time.November, 15), Name: "PROCLAMAÇÃO REP."},
		{Date: NewDate(year, time.December, 25), Name: "NATAL"},
	}

	easter := EasterSunday(year)
	holidays = append(holidays,
		Holiday{Date: easter.AddDays(-47), Name: "CARNAVAL"},
		Holiday{Date: easter.AddDays(-2), Name: "PAIXÃO DE CRISTO"},
		Holiday{Date: easter.AddDays(60), Name: "CORPUS CHRISTI"},
	)

	sort.Slice(holidays, func(i, j int) bool {
		return holidays[i].Date.Before(holidays[j].Date)
	})
	return holidays
}

// HolidayName returns the holiday name for a date, if any.
func HolidayName(d Date) (string, bool) {
	for _, h := range HolidaysForYear(d.Year()) {
		if h.Date.Equal(d) {
			return h.Name, true
		}
	}
	return "", false
}

// IsHoliday reports whether the date is a national holiday.
func IsHoliday(d Date) bool {
	_, ok := HolidayName(d)
	return ok
}
