package domain

import "time"

type ServiceRequest struct {
	ID          int64     `json:"id"`
	ClientID    int64     `json:"client_id"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	EventTime   time.Time `json:"event_time"`
	Closed      bool      `json:"closed"`
	CreatedOn   time.Time `json:"created_on"`
	UpdatedOn   time.Time `json:"updated_on"`
}
