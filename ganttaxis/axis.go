// Package ganttaxis converts between chart time and horizontal pixel positions.
package ganttaxis

import (
	"fmt"
	"math"
	"time"
)

// Axis is the only authority for date to pixel conversion.
// Times are epoch milliseconds and positions are logical left to right pixels.
type Axis interface {
	DatePosition(minTime, maxTime, t int64, width float64) float64
	PositionDate(minTime, maxTime int64, pos, width float64) int64
}

// Linear maps time proportionally onto [0, width].
type Linear struct{}

var _ Axis = Linear{}

func (Linear) DatePosition(minTime, maxTime, t int64, width float64) float64 {
	if maxTime <= minTime {
		return 0
	}
	return float64(t-minTime) / float64(maxTime-minTime) * width
}

func (Linear) PositionDate(minTime, maxTime int64, pos, width float64) int64 {
	if width <= 0 {
		return minTime
	}
	return minTime + int64(math.Round(pos/width*float64(maxTime-minTime)))
}

// Ticks returns the scale boundaries within [minTime, maxTime], aligned to the scale unit in UTC.
func Ticks(scale string, minTime, maxTime int64) ([]int64, error) {
	step, err := stepper(scale)
	if err != nil {
		return nil, err
	}
	t := align(scale, time.UnixMilli(minTime).UTC())
	var ticks []int64
	for ; t.UnixMilli() <= maxTime; t = step(t) {
		if ms := t.UnixMilli(); ms >= minTime {
			ticks = append(ticks, ms)
		}
	}
	return ticks, nil
}

func stepper(scale string) (func(time.Time) time.Time, error) {
	switch scale {
	case "seconds":
		return func(t time.Time) time.Time { return t.Add(time.Second) }, nil
	case "minutes":
		return func(t time.Time) time.Time { return t.Add(time.Minute) }, nil
	case "hours":
		return func(t time.Time) time.Time { return t.Add(time.Hour) }, nil
	case "days":
		return func(t time.Time) time.Time { return t.AddDate(0, 0, 1) }, nil
	case "weeks":
		return func(t time.Time) time.Time { return t.AddDate(0, 0, 7) }, nil
	case "months":
		return func(t time.Time) time.Time { return t.AddDate(0, 1, 0) }, nil
	case "quarters":
		return func(t time.Time) time.Time { return t.AddDate(0, 3, 0) }, nil
	case "years":
		return func(t time.Time) time.Time { return t.AddDate(1, 0, 0) }, nil
	}
	return nil, fmt.Errorf("unknown axis scale %q", scale)
}

func align(scale string, t time.Time) time.Time {
	switch scale {
	case "seconds":
		return t.Truncate(time.Second)
	case "minutes":
		return t.Truncate(time.Minute)
	case "hours":
		return t.Truncate(time.Hour)
	case "days":
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	case "weeks":
		d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		// weeks start on monday
		offset := (int(d.Weekday()) + 6) % 7
		return d.AddDate(0, 0, -offset)
	case "months":
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	case "quarters":
		m := (int(t.Month())-1)/3*3 + 1
		return time.Date(t.Year(), time.Month(m), 1, 0, 0, 0, 0, time.UTC)
	default:
		return time.Date(t.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
	}
}
