package model

import "time"

type CarbonFootprint struct {
	ID             int64     `json:"id"`
	UserID         string    `json:"userId"`
	Date           Date      `json:"date"`
	Transportation Amount    `json:"transportation"`
	Energy         Amount    `json:"energy"`
	Food           Amount    `json:"food"`
	Total          Amount    `json:"total"`
	CreatedAt      time.Time `json:"createdAt"`
}

type CarbonInsight struct {
	ID                int64     `json:"id"`
	CarbonFootprintID int64     `json:"carbonFootprintId"`
	UserID            string    `json:"userId"`
	Date              Date      `json:"date"`
	Insight           string    `json:"insight"`
	CreatedAt         time.Time `json:"createdAt"`
}
