package entity

import "time"

// Status is the derived lifecycle phase of a travel record. It is never
// stored; callers compute it from the record and the current time.
type Status string

const (
	StatusCompleted   Status = "completed"
	StatusPast        Status = "past"
	StatusUrgent      Status = "urgent"
	StatusCheckinOpen Status = "checkin_open"
	StatusUpcoming    Status = "upcoming"
)

// Classify computes the lifecycle phase. Completed wins over every
// time-based phase regardless of departure time.
func Classify(departureUTC time.Time, checkinCompleted bool, now time.Time) Status {
	switch {
	case checkinCompleted:
		return StatusCompleted
	case departureUTC.Before(now):
		return StatusPast
	case !now.Before(departureUTC.Add(-3 * time.Hour)):
		return StatusUrgent
	case !now.Before(departureUTC.Add(-24 * time.Hour)):
		return StatusCheckinOpen
	default:
		return StatusUpcoming
	}
}

// Status classifies the record at the given instant.
func (r *TravelRecord) Status(now time.Time) Status {
	return Classify(r.DepartureUTC, r.CheckinCompleted, now)
}

var statusRank = map[Status]int{
	StatusUrgent:      0,
	StatusCheckinOpen: 1,
	StatusUpcoming:    2,
	StatusCompleted:   3,
	StatusPast:        4,
}

// Rank orders statuses most-actionable first for display. Ties within a
// rank break by the caller's secondary sort field.
func (s Status) Rank() int {
	if r, ok := statusRank[s]; ok {
		return r
	}
	return len(statusRank)
}
