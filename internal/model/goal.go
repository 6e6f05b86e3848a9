package model

import "time"

type SustainabilityGoal struct {
	ID         int64     `json:"id"`
	UserID     string    `json:"userId"`
	Goal       string    `json:"goal"`
	TargetDate Date      `json:"targetDate"`
	Completed  bool      `json:"completed"`
	Progress   int       `json:"progress"`
	Notes      *string   `json:"notes"`
	CreatedAt  time.Time `json:"createdAt"`
}
