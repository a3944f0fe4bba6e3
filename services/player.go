package services

import (
	"context"
	"errors"
	"strings"

	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/bellapacxx/bingo-sessions/metrics"
	"github.com/bellapacxx/bingo-sessions/models"
	"github.com/bellapacxx/bingo-sessions/utils/logger"
)

const maxNameLength = 100

type PlayerService struct {
	db      *gorm.DB
	metrics *metrics.Metrics
}

func NewPlayerService(db *gorm.DB, m *metrics.Metrics) *PlayerService {
	return &PlayerService{db: db, metrics: m}
}

func cleanName(name string) (string, error) {
	clean := strings.TrimSpace(name)
	if clean == "" {
		return "", NewGameError("player name must not be empty")
	}
	if len([]rune(clean)) > maxNameLength {
		return "", NewGameError("player name must be at most %d characters", maxNameLength)
	}
	return clean, nil
}

func nameKey(name string) string {
	return strings.ToLower(name)
}

// Create registers a player. An inactive player with the same name
// (ignoring case) is reactivated instead of duplicated.
func (s *PlayerService) Create(ctx context.Context, name string) (*models.Player, error) {
	clean, err := cleanName(name)
	if err != nil {
		return nil, err
	}

	var player models.Player
	outcome := "created"
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("name_key = ?", nameKey(clean)).First(&player).Error
		switch {
		case err == nil:
			if player.Active {
				return NewGameError("an active player named %q already exists", player.Name)
			}
			outcome = "reactivated"
			player.Active = true
			return pkgerrors.Wrap(tx.Model(&player).Update("active", true).Error, "reactivate player")
		case isNotFound(err):
			player = models.Player{Name: clean, NameKey: nameKey(clean), Active: true}
			if err := tx.Create(&player).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return NewGameError("an active player named %q already exists", clean)
				}
				return pkgerrors.Wrap(err, "create player")
			}
			return nil
		default:
			return pkgerrors.Wrap(err, "find player by name")
		}
	})
	if err != nil {
		return nil, err
	}

	s.metrics.PlayerRegistered(outcome)
	logger.Infof("[Players] %s player %d (%s)", outcome, player.ID, player.Name)
	return &player, nil
}

// Rename changes a player's display name
func (s *PlayerService) Rename(ctx context.Context, id uint, name string) (*models.Player, error) {
	clean, err := cleanName(name)
	if err != nil {
		return nil, err
	}

	var player models.Player
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := findPlayer(tx, id, &player); err != nil {
			return err
		}

		var clash models.Player
		err := tx.Where("name_key = ? AND id <> ?", nameKey(clean), id).First(&clash).Error
		if err == nil {
			return NewGameError("name %q is already used by another player", clash.Name)
		}
		if !isNotFound(err) {
			return pkgerrors.Wrap(err, "check name collision")
		}

		player.Name = clean
		player.NameKey = nameKey(clean)
		err = tx.Model(&player).Updates(map[string]any{"name": player.Name, "name_key": player.NameKey}).Error
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return NewGameError("name %q is already used by another player", clean)
		}
		return pkgerrors.Wrap(err, "rename player")
	})
	if err != nil {
		return nil, err
	}
	return &player, nil
}

// Deactivate soft-deletes a player. Repeating it is harmless.
func (s *PlayerService) Deactivate(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var player models.Player
		if err := findPlayer(tx, id, &player); err != nil {
			return err
		}
		if !player.Active {
			return nil
		}
		if err := tx.Model(&player).Update("active", false).Error; err != nil {
			return pkgerrors.Wrap(err, "deactivate player")
		}
		logger.Infof("[Players] deactivated player %d (%s)", player.ID, player.Name)
		return nil
	})
}

func (s *PlayerService) Get(ctx context.Context, id uint) (*models.Player, error) {
	var player models.Player
	if err := findPlayer(s.db.WithContext(ctx), id, &player); err != nil {
		return nil, err
	}
	return &player, nil
}

// ListActive returns active players, best score first
func (s *PlayerService) ListActive(ctx context.Context) ([]models.Player, error) {
	players := []models.Player{}
	err := s.db.WithContext(ctx).
		Where("active = ?", true).
		Order("score DESC").Order("id ASC").
		Find(&players).Error
	return players, pkgerrors.Wrap(err, "list active players")
}

// Ranking returns every player, active or not, best score first
func (s *PlayerService) Ranking(ctx context.Context) ([]models.Player, error) {
	players := []models.Player{}
	err := s.db.WithContext(ctx).
		Order("score DESC").Order("id ASC").
		Find(&players).Error
	return players, pkgerrors.Wrap(err, "list ranking")
}

// ScoreEvents returns the points a player was awarded, newest first
func (s *PlayerService) ScoreEvents(ctx context.Context, id uint) ([]models.ScoreEvent, error) {
	db := s.db.WithContext(ctx)
	var player models.Player
	if err := findPlayer(db, id, &player); err != nil {
		return nil, err
	}

	events := []models.ScoreEvent{}
	err := db.Where("player_id = ?", id).Order("id DESC").Find(&events).Error
	return events, pkgerrors.Wrap(err, "list score events")
}

func findPlayer(db *gorm.DB, id uint, player *models.Player) error {
	err := db.First(player, id).Error
	if isNotFound(err) {
		return NewGameError("player not found: %d", id)
	}
	return pkgerrors.Wrapf(err, "find player %d", id)
}
