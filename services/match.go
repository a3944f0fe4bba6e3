package services

import (
	"context"
	"errors"
	"time"

	pkgerrors "github.com/pkg/errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bellapacxx/bingo-sessions/game"
	"github.com/bellapacxx/bingo-sessions/metrics"
	"github.com/bellapacxx/bingo-sessions/models"
	"github.com/bellapacxx/bingo-sessions/utils/logger"
)

const DefaultWinPoints = 3

// History filters
const (
	StatusAll        = "all"
	StatusInProgress = "in_progress"
	StatusFinished   = "finished"
)

// DrawResult is the outcome of one draw
type DrawResult struct {
	Number    int           `json:"number"`
	Letter    string        `json:"letter"`
	Narration string        `json:"narration"`
	Match     *models.Match `json:"match"`
}

type MatchService struct {
	db        *gorm.DB
	events    EventPublisher
	metrics   *metrics.Metrics
	rng       game.Source
	winPoints int
	now       func() time.Time
}

// NewMatchService wires the lifecycle. events and m may be nil.
func NewMatchService(db *gorm.DB, events EventPublisher, m *metrics.Metrics, winPoints int) *MatchService {
	if winPoints <= 0 {
		winPoints = DefaultWinPoints
	}
	return &MatchService{
		db:        db,
		events:    events,
		metrics:   m,
		rng:       game.CryptoSource{},
		winPoints: winPoints,
		now:       time.Now,
	}
}

// WithSource swaps the random source, mainly for tests
func (s *MatchService) WithSource(src game.Source) *MatchService {
	s.rng = src
	return s
}

// Create starts a match with the given participants
func (s *MatchService) Create(ctx context.Context, matchType game.MatchType, rule game.WinRule, participantIDs []uint) (*models.Match, error) {
	if !matchType.Valid() {
		return nil, NewGameError("unknown match type %q", matchType)
	}
	if rule == "" {
		rule = game.FullCard
	}
	if !rule.Valid() {
		return nil, NewGameError("unknown win rule %q", rule)
	}

	ids := uniqueIDs(participantIDs)
	if len(ids) == 0 {
		return nil, NewGameError("select at least one participant")
	}

	match := models.Match{
		Type:      matchType,
		WinRule:   rule,
		StartedAt: s.now(),
		Numbers:   datatypes.JSONSlice[int]{},
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var players []models.Player
		if err := tx.Where("id IN ?", ids).Find(&players).Error; err != nil {
			return pkgerrors.Wrap(err, "load participants")
		}
		if len(players) != len(ids) {
			return NewGameError("player not found: %d", firstMissing(ids, players))
		}

		match.Participants = players
		if err := tx.Omit("Participants.*").Create(&match).Error; err != nil {
			return pkgerrors.Wrap(err, "create match")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.MatchCreated(string(matchType))
	logger.Infof("[Match %d] started %s with %d players", match.ID, matchType, len(match.Participants))
	s.publish(MatchEvent{Type: EventMatchStarted, MatchID: match.ID, Numbers: match.Numbers, At: match.StartedAt})
	return &match, nil
}

// Draw adds one fresh number to an in-progress match. The match row stays
// locked for the whole transaction so concurrent draws serialize.
func (s *MatchService) Draw(ctx context.Context, matchID uint) (*DrawResult, error) {
	var (
		match  models.Match
		number int
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockMatch(tx, matchID, &match); err != nil {
			return err
		}
		if !match.InProgress() {
			return NewGameError("match %d is already finished", matchID)
		}

		n, err := game.DrawNext(match.Type, match.Numbers, s.rng)
		if errors.Is(err, game.ErrPoolExhausted) {
			return NewGameError("all numbers have been drawn")
		}
		if err != nil {
			return err
		}
		number = n

		match.Numbers = append(match.Numbers, n)
		if err := tx.Model(&match).Update("numbers", match.Numbers).Error; err != nil {
			return pkgerrors.Wrap(err, "save drawn number")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	full, err := s.Get(ctx, matchID)
	if err != nil {
		return nil, err
	}

	res := &DrawResult{
		Number:    number,
		Letter:    game.LetterFor(number, full.Type),
		Narration: game.Narration(number, full.Type),
		Match:     full,
	}

	s.metrics.NumberDrawn(string(full.Type))
	logger.Debugf("[Match %d] drew %s %d (%d/%d)", matchID, res.Letter, number, len(full.Numbers), full.Type.MaxNumber())
	s.publish(MatchEvent{
		Type:      EventNumberDrawn,
		MatchID:   matchID,
		Number:    number,
		Letter:    res.Letter,
		Narration: res.Narration,
		Numbers:   full.Numbers,
		At:        s.now(),
	})
	return res, nil
}

// Finalize closes the match, records the winner and credits their points
func (s *MatchService) Finalize(ctx context.Context, matchID, winnerID uint) (*models.Match, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var match models.Match
		if err := lockMatch(tx, matchID, &match); err != nil {
			return err
		}
		if !match.InProgress() {
			return NewGameError("match %d is already finished", matchID)
		}

		// locked so concurrent awards to the same player chain their ledger rows
		var winner models.Player
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&winner, winnerID).Error; err != nil {
			if isNotFound(err) {
				return NewGameError("winner not found: %d", winnerID)
			}
			return pkgerrors.Wrap(err, "load winner")
		}

		var n int64
		err := tx.Table("match_participants").
			Where("match_id = ? AND player_id = ?", matchID, winnerID).
			Count(&n).Error
		if err != nil {
			return pkgerrors.Wrap(err, "check participant")
		}
		if n == 0 {
			return NewGameError("player %d did not take part in match %d", winnerID, matchID)
		}

		ended := s.now()
		duration := int64(ended.Sub(match.StartedAt) / time.Second)
		if duration < 0 {
			duration = 0
		}
		err = tx.Model(&match).Updates(map[string]any{
			"ended_at":         ended,
			"duration_seconds": duration,
			"winner_id":        winnerID,
		}).Error
		if err != nil {
			return pkgerrors.Wrap(err, "close match")
		}

		err = tx.Model(&models.Player{}).
			Where("id = ?", winnerID).
			Update("score", gorm.Expr("score + ?", s.winPoints)).Error
		if err != nil {
			return pkgerrors.Wrap(err, "credit winner")
		}

		event := models.ScoreEvent{
			PlayerID:    winnerID,
			MatchID:     matchID,
			Points:      s.winPoints,
			ScoreBefore: winner.Score,
			ScoreAfter:  winner.Score + s.winPoints,
		}
		return pkgerrors.Wrap(tx.Create(&event).Error, "record score event")
	})
	if err != nil {
		return nil, err
	}

	match, err := s.Get(ctx, matchID)
	if err != nil {
		return nil, err
	}

	s.metrics.MatchFinalized(string(match.Type))
	logger.Infof("[Match %d] finished, winner %d (+%d points) after %ds", matchID, winnerID, s.winPoints, *match.DurationSeconds)
	s.publish(MatchEvent{
		Type:     EventMatchFinalized,
		MatchID:  matchID,
		Numbers:  match.Numbers,
		WinnerID: match.WinnerID,
		At:       *match.EndedAt,
	})
	return match, nil
}

func (s *MatchService) Get(ctx context.Context, matchID uint) (*models.Match, error) {
	var match models.Match
	err := s.db.WithContext(ctx).
		Preload("Participants", func(db *gorm.DB) *gorm.DB { return db.Order("players.id ASC") }).
		Preload("Winner").
		First(&match, matchID).Error
	if isNotFound(err) {
		return nil, NewGameError("match not found: %d", matchID)
	}
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "load match %d", matchID)
	}
	normalize(&match)
	return &match, nil
}

// History lists matches, newest first. status is one of the Status* values
// or empty for all.
func (s *MatchService) History(ctx context.Context, status string) ([]models.Match, error) {
	q := s.db.WithContext(ctx).
		Preload("Participants", func(db *gorm.DB) *gorm.DB { return db.Order("players.id ASC") }).
		Preload("Winner").
		Order("started_at DESC").Order("id DESC")

	switch status {
	case "", StatusAll:
	case StatusInProgress:
		q = q.Where("ended_at IS NULL")
	case StatusFinished:
		q = q.Where("ended_at IS NOT NULL")
	default:
		return nil, NewGameError("unknown status %q, use in_progress, finished or all", status)
	}

	matches := []models.Match{}
	if err := q.Find(&matches).Error; err != nil {
		return nil, pkgerrors.Wrap(err, "list matches")
	}
	for i := range matches {
		normalize(&matches[i])
	}
	return matches, nil
}

// Annul deletes a match. Unknown ids are ignored.
func (s *MatchService) Annul(ctx context.Context, matchID uint) error {
	deleted := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var match models.Match
		err := tx.First(&match, matchID).Error
		if isNotFound(err) {
			return nil
		}
		if err != nil {
			return pkgerrors.Wrapf(err, "load match %d", matchID)
		}

		if err := tx.Model(&match).Association("Participants").Clear(); err != nil {
			return pkgerrors.Wrap(err, "clear participants")
		}
		if err := tx.Delete(&match).Error; err != nil {
			return pkgerrors.Wrap(err, "delete match")
		}
		deleted = true
		return nil
	})
	if err != nil {
		return err
	}

	if deleted {
		s.metrics.MatchAnnulled()
		logger.Infof("[Match %d] annulled", matchID)
		s.publish(MatchEvent{Type: EventMatchAnnulled, MatchID: matchID, Numbers: []int{}, At: s.now()})
	}
	return nil
}

// ExtraNumber draws the tie-break stone, unrelated to any match
func (s *MatchService) ExtraNumber() int {
	return game.ExtraNumber(s.rng)
}

func (s *MatchService) publish(evt MatchEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(evt); err != nil {
		logger.Errorf("[Match %d] failed to publish %s: %v", evt.MatchID, evt.Type, err)
	}
}

func lockMatch(tx *gorm.DB, matchID uint, match *models.Match) error {
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(match, matchID).Error
	if isNotFound(err) {
		return NewGameError("match not found: %d", matchID)
	}
	return pkgerrors.Wrapf(err, "lock match %d", matchID)
}

func normalize(m *models.Match) {
	if m.Numbers == nil {
		m.Numbers = datatypes.JSONSlice[int]{}
	}
	if m.Participants == nil {
		m.Participants = []models.Player{}
	}
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func firstMissing(ids []uint, players []models.Player) uint {
	found := make(map[uint]struct{}, len(players))
	for _, p := range players {
		found[p.ID] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			return id
		}
	}
	return 0
}
