package models

import "time"

// ScoreEvent records one award of points to a player
type ScoreEvent struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	PlayerID    uint      `gorm:"not null;index" json:"player_id"`
	MatchID     uint      `gorm:"not null;index" json:"match_id"`
	Points      int       `gorm:"not null" json:"points"`
	ScoreBefore int       `gorm:"not null" json:"score_before"`
	ScoreAfter  int       `gorm:"not null" json:"score_after"`
	CreatedAt   time.Time `json:"created_at"`
}
