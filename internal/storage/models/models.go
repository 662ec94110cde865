package models

import "time"

// ChatMessage is one turn of a chat session.
type ChatMessage struct {
	ID        string
	SessionID string
	Role      string
	Content   string
	CreatedAt time.Time
}

// Evaluation stores one judge run: the question and the raw evaluator
// text.
type Evaluation struct {
	ID        int
	Question  string
	Verdict   string
	CreatedAt time.Time
}
