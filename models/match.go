package models

import (
	"time"

	"github.com/bellapacxx/bingo-sessions/game"
	"gorm.io/datatypes"
)

type Match struct {
	ID              uint                     `gorm:"primaryKey" json:"id"`
	Type            game.MatchType           `gorm:"size:16;not null" json:"type"`
	WinRule         game.WinRule             `gorm:"size:32;not null" json:"win_rule"`
	StartedAt       time.Time                `gorm:"not null;index" json:"started_at"`
	EndedAt         *time.Time               `json:"ended_at"` // nil while in progress
	DurationSeconds *int64                   `json:"duration_seconds"`
	Numbers         datatypes.JSONSlice[int] `json:"numbers"` // drawn order
	Participants    []Player                 `gorm:"many2many:match_participants;constraint:OnDelete:CASCADE" json:"participants"`
	WinnerID        *uint                    `gorm:"index" json:"winner_id"`
	Winner          *Player                  `gorm:"foreignKey:WinnerID;constraint:OnDelete:SET NULL" json:"winner,omitempty"`
	CreatedAt       time.Time                `json:"created_at"`
	UpdatedAt       time.Time                `json:"updated_at"`
}

// InProgress reports whether the match still accepts draws
func (m *Match) InProgress() bool {
	return m.EndedAt == nil
}

// HasParticipant reports whether playerID is among the loaded participants
func (m *Match) HasParticipant(playerID uint) bool {
	for _, p := range m.Participants {
		if p.ID == playerID {
			return true
		}
	}
	return false
}
