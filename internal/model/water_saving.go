package model

import "time"

type WaterSaving struct {
	ID          int64     `json:"id"`
	UserID      string    `json:"userId"`
	Date        Date      `json:"date"`
	AmountSaved Amount    `json:"amountSaved"`
	Notes       *string   `json:"notes"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
