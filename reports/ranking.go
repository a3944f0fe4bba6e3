package reports

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/bellapacxx/bingo-sessions/models"
)

const RankingSheet = "Ranking"

var rankingHeader = []interface{}{"Position", "Player", "Score", "Active"}

// RankingXLSX renders players, already ordered by score, as a workbook
func RankingXLSX(players []models.Player) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", RankingSheet); err != nil {
		return nil, err
	}

	if err := f.SetSheetRow(RankingSheet, "A1", &rankingHeader); err != nil {
		return nil, err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	if err := f.SetRowStyle(RankingSheet, 1, 1, bold); err != nil {
		return nil, err
	}

	position := 0
	for i, p := range players {
		// equal scores share a position
		if i == 0 || p.Score != players[i-1].Score {
			position = i + 1
		}
		active := "no"
		if p.Active {
			active = "yes"
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []interface{}{position, p.Name, p.Score, active}
		if err := f.SetSheetRow(RankingSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.SetColWidth(RankingSheet, "B", "B", 30); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
