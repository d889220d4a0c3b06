package process

import (
	"errors"
	"math"
	"time"
)

// averageDaysPerMonth matches the reference calendar approximation
const averageDaysPerMonth = 30.44

// ErrNonChronological is returned when the end precedes the start
var ErrNonChronological = errors.New("end date precedes start date")

// ElapsedTime breaks a span into whole months, weeks and days
type ElapsedTime struct {
	Months int `json:"monthsElapsed"`
	Weeks  int `json:"weeksElapsed"`
	Days   int `json:"daysElapsed"`
}

// Elapsed computes the months, weeks and days between start and end.
// Months are counted as 30.44-day spans and weeks as 7-day spans within
// the remainder, truncating at each step.
func Elapsed(start, end time.Time) (ElapsedTime, error) {
	if end.Before(start) {
		return ElapsedTime{}, ErrNonChronological
	}

	totalDays := end.Sub(start).Hours() / 24

	months := math.Floor(totalDays / averageDaysPerMonth)
	weeks := math.Floor(totalDays/7 - months*4)
	days := math.Floor(totalDays - (weeks+months*4)*7)

	return ElapsedTime{
		Months: int(months),
		Weeks:  int(weeks),
		Days:   int(days),
	}, nil
}
