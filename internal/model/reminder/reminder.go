package reminder

import "time"

// NoTime is shown for reminders set without an "at <time>" clause.
const NoTime = "No specific time"

// CreatedLayout formats the moment a reminder was noted, e.g. "03:04 PM, Jan 02".
const CreatedLayout = "03:04 PM, Jan 02"

// Reminder is a task the user asked to be reminded about. Reminders never
// expire; they live until the list is cleared.
type Reminder struct {
	ID        string    `json:"id"`
	Task      string    `json:"task"`
	Time      string    `json:"time,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// DisplayTime returns the scheduled time or NoTime.
func (r Reminder) DisplayTime() string {
	if r.Time == "" {
		return NoTime
	}
	return r.Time
}

// DisplayCreated returns the creation moment in local time.
func (r Reminder) DisplayCreated() string {
	return r.CreatedAt.Local().Format(CreatedLayout)
}
