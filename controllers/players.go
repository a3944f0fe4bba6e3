package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bellapacxx/bingo-sessions/services"
)

type PlayerController struct {
	players *services.PlayerService
}

func NewPlayerController(players *services.PlayerService) *PlayerController {
	return &PlayerController{players: players}
}

type playerRequest struct {
	Name string `json:"name"`
}

// Create registers a player, or reactivates one with the same name
func (pc *PlayerController) Create(c *gin.Context) {
	var req playerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	player, err := pc.players.Create(c.Request.Context(), req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, player)
}

// List returns active players, best score first
func (pc *PlayerController) List(c *gin.Context) {
	players, err := pc.players.ListActive(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, players)
}

func (pc *PlayerController) Get(c *gin.Context) {
	id, ok := parseID(c, "player")
	if !ok {
		return
	}

	player, err := pc.players.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, player)
}

// Update renames a player
func (pc *PlayerController) Update(c *gin.Context) {
	id, ok := parseID(c, "player")
	if !ok {
		return
	}

	var req playerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	player, err := pc.players.Rename(c.Request.Context(), id, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, player)
}

// Delete deactivates a player; their history and score are kept
func (pc *PlayerController) Delete(c *gin.Context) {
	id, ok := parseID(c, "player")
	if !ok {
		return
	}

	if err := pc.players.Deactivate(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (pc *PlayerController) ScoreEvents(c *gin.Context) {
	id, ok := parseID(c, "player")
	if !ok {
		return
	}

	events, err := pc.players.ScoreEvents(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, events)
}
