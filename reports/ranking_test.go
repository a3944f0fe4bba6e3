package reports

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/bellapacxx/bingo-sessions/models"
)

func TestRankingXLSX(t *testing.T) {
	players := []models.Player{
		{ID: 2, Name: "Ana", Score: 9, Active: true},
		{ID: 5, Name: "Bruno", Score: 6, Active: true},
		{ID: 1, Name: "Carla", Score: 6, Active: false},
		{ID: 3, Name: "Davi", Score: 0, Active: true},
	}

	data, err := RankingXLSX(players)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(RankingSheet)
	require.NoError(t, err)
	require.Len(t, rows, 5)

	assert.Equal(t, []string{"Position", "Player", "Score", "Active"}, rows[0])
	assert.Equal(t, []string{"1", "Ana", "9", "yes"}, rows[1])
	assert.Equal(t, []string{"2", "Bruno", "6", "yes"}, rows[2])
	assert.Equal(t, []string{"2", "Carla", "6", "no"}, rows[3])
	assert.Equal(t, []string{"4", "Davi", "0", "yes"}, rows[4])
}

func TestRankingXLSXEmpty(t *testing.T) {
	data, err := RankingXLSX(nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(RankingSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
