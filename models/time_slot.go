package models

import (
	"fmt"
	"strings"
	"time"
)

// TimeSlot is one of the fixed two-hour reservation windows, identified by its start time.
type TimeSlot string

const (
	Slot1200 TimeSlot = "12:00"
	Slot1400 TimeSlot = "14:00"
	Slot1600 TimeSlot = "16:00"
	Slot1800 TimeSlot = "18:00"
	Slot2000 TimeSlot = "20:00"
	Slot2200 TimeSlot = "22:00"
)

// SlotDuration is the width of every slot.
const SlotDuration = 2 * time.Hour

// DateLayout is the wire and storage format of booking dates.
const DateLayout = "2006-01-02"

var allTimeSlots = []TimeSlot{Slot1200, Slot1400, Slot1600, Slot1800, Slot2000, Slot2200}

// AllTimeSlots returns the slots in chronological order.
func AllTimeSlots() []TimeSlot {
	out := make([]TimeSlot, len(allTimeSlots))
	copy(out, allTimeSlots)
	return out
}

// ParseTimeSlot accepts "18:00" as well as "18:00:00".
func ParseTimeSlot(s string) (TimeSlot, error) {
	if len(s) == len("15:04:05") && strings.HasSuffix(s, ":00") {
		s = strings.TrimSuffix(s, ":00")
	}
	slot := TimeSlot(s)
	if !slot.Valid() {
		return "", fmt.Errorf("unknown time slot %q", s)
	}
	return slot, nil
}

func (s TimeSlot) Valid() bool {
	for _, v := range allTimeSlots {
		if v == s {
			return true
		}
	}
	return false
}

func (s TimeSlot) clock() (int, int) {
	t, err := time.Parse("15:04", string(s))
	if err != nil {
		return 0, 0
	}
	return t.Hour(), t.Minute()
}

// Start returns the moment the slot begins on the given day, in loc.
func (s TimeSlot) Start(day time.Time, loc *time.Location) time.Time {
	h, m := s.clock()
	d := day.In(loc)
	return time.Date(d.Year(), d.Month(), d.Day(), h, m, 0, 0, loc)
}

// End returns the moment the slot finishes; the 22:00 slot ends at midnight of the next day.
func (s TimeSlot) End(day time.Time, loc *time.Location) time.Time {
	return s.Start(day, loc).Add(SlotDuration)
}

// Label -> "18:00-20:00"
func (s TimeSlot) Label() string {
	h, m := s.clock()
	end := (h + int(SlotDuration/time.Hour)) % 24
	return fmt.Sprintf("%s-%02d:%02d", s, end, m)
}

// ParseDate parses a YYYY-MM-DD booking date as midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, loc)
}
