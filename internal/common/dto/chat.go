package dto

import "time"

// ChatRequest records one exchange with the assistant
type ChatRequest struct {
	UserMessage string `json:"user_message" binding:"required"`
	AIResponse  string `json:"ai_response" binding:"required"`
}

// ChatEntry is one stored exchange
type ChatEntry struct {
	ID          uint      `json:"id"`
	UserMessage string    `json:"user_message"`
	AIResponse  string    `json:"ai_response"`
	Timestamp   time.Time `json:"timestamp"`
}

// PageQuery holds plain pagination parameters
type PageQuery struct {
	Page     int `form:"page"`
	PageSize int `form:"page_size"`
}
