// Package timeentries stores the time-tracking records behind the demonstration API.
package timeentries

import "time"

type Entry struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"ownerId"`
	Project   string    `json:"project"`
	Minutes   int       `json:"minutes"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type Repo interface {
	Create(ownerID string, entry Entry) (Entry, error)
	Get(ownerID, id string) (Entry, error)
	List(ownerID string) ([]Entry, error)
}
