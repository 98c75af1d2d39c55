package models

// Activity is a one-line entry in the team activity feed, kept in Redis.
type Activity struct {
	ID        string `json:"id"` // ULID
	UserID    string `json:"user_id"`
	UserName  string `json:"user_name"`
	Summary   string `json:"summary"`
	Timestamp int64  `json:"ts"` // Unix ms
}
