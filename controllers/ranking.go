package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bellapacxx/bingo-sessions/reports"
	"github.com/bellapacxx/bingo-sessions/services"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type RankingController struct {
	players *services.PlayerService
}

func NewRankingController(players *services.PlayerService) *RankingController {
	return &RankingController{players: players}
}

// List returns every player ordered by score
func (rc *RankingController) List(c *gin.Context) {
	players, err := rc.players.Ranking(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, players)
}

// Export downloads the ranking as a spreadsheet
func (rc *RankingController) Export(c *gin.Context) {
	players, err := rc.players.Ranking(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	data, err := reports.RankingXLSX(players)
	if err != nil {
		respondError(c, err)
		return
	}

	filename := fmt.Sprintf("ranking-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}
