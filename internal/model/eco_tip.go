package model

import "time"

type EcoTip struct {
	ID            int64     `json:"id"`
	UserID        string    `json:"userId"`
	Tip           string    `json:"tip"`
	Category      string    `json:"category"`
	ImageURL      string    `json:"imageUrl"`
	IsAIGenerated bool      `json:"isAiGenerated"`
	CreatedAt     time.Time `json:"createdAt"`
}
