package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bellapacxx/bingo-sessions/game"
	"github.com/bellapacxx/bingo-sessions/services"
)

type MatchController struct {
	matches *services.MatchService
}

func NewMatchController(matches *services.MatchService) *MatchController {
	return &MatchController{matches: matches}
}

type createMatchRequest struct {
	Type         game.MatchType `json:"type" binding:"required"`
	WinRule      game.WinRule   `json:"win_rule"`
	Participants []uint         `json:"participants"`
}

type finalizeRequest struct {
	WinnerID uint `json:"winner_id" binding:"required"`
}

// Create starts a match
func (mc *MatchController) Create(c *gin.Context) {
	var req createMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	match, err := mc.matches.Create(c.Request.Context(), req.Type, req.WinRule, req.Participants)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, match)
}

// List returns the match history, newest first. ?status=in_progress|finished|all
func (mc *MatchController) List(c *gin.Context) {
	matches, err := mc.matches.History(c.Request.Context(), c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, matches)
}

func (mc *MatchController) Get(c *gin.Context) {
	id, ok := parseID(c, "match")
	if !ok {
		return
	}

	match, err := mc.matches.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, match)
}

// Draw pulls the next number of a match
func (mc *MatchController) Draw(c *gin.Context) {
	id, ok := parseID(c, "match")
	if !ok {
		return
	}

	res, err := mc.matches.Draw(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Finalize closes a match with its winner
func (mc *MatchController) Finalize(c *gin.Context) {
	id, ok := parseID(c, "match")
	if !ok {
		return
	}

	var req finalizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	match, err := mc.matches.Finalize(c.Request.Context(), id, req.WinnerID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, match)
}

// Delete annuls a match
func (mc *MatchController) Delete(c *gin.Context) {
	id, ok := parseID(c, "match")
	if !ok {
		return
	}

	if err := mc.matches.Annul(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ExtraDraw returns a tie-break number in [1, 100]
func (mc *MatchController) ExtraDraw(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"number": mc.matches.ExtraNumber()})
}

func MatchTypes(c *gin.Context) {
	c.JSON(http.StatusOK, game.Types())
}

func WinRules(c *gin.Context) {
	c.JSON(http.StatusOK, game.Rules())
}
