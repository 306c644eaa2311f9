package models

import "time"

type Customer struct {
	ID        int64
	Name      string
	Email     string
	Phone     string
	Document  string
	CreatedAt time.Time
}
