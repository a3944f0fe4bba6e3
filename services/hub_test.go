package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bellapacxx/bingo-sessions/game"
	"github.com/bellapacxx/bingo-sessions/testutil"
)

func newHubServer(t *testing.T) (*MatchService, *Hub, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewDB(t)
	bus := NewEventBus()
	t.Cleanup(func() { _ = bus.Close() })

	matches := NewMatchService(db, bus, nil, 0)
	hub := NewHub(bus, matches)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	require.NoError(t, hub.Start(ctx))

	r := gin.New()
	r.GET("/ws/matches/:id", hub.HandleWebSocket)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return matches, hub, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func readEvent(t *testing.T, conn *websocket.Conn) MatchEvent {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var evt MatchEvent
	require.NoError(t, conn.ReadJSON(&evt))
	return evt
}

func TestHubStreamsMatchEvents(t *testing.T) {
	ctx := context.Background()
	matches, hub, base := newHubServer(t)
	matches.WithSource(&fixed{values: []int{6, 70}})

	players := testutil.SeedPlayers(t, matches.db, 0, 0)
	m, err := matches.Create(ctx, game.Bingo75, "", []uint{players[0].ID, players[1].ID})
	require.NoError(t, err)
	_, err = matches.Draw(ctx, m.ID)
	require.NoError(t, err)

	conn, _, err := websocket.DefaultDialer.Dial(base+"/ws/matches/"+strconv.Itoa(int(m.ID)), nil)
	require.NoError(t, err)
	defer conn.Close()

	snapshot := readEvent(t, conn)
	assert.Equal(t, EventSnapshot, snapshot.Type)
	assert.Equal(t, m.ID, snapshot.MatchID)
	assert.Equal(t, []int{7}, snapshot.Numbers)
	assert.Equal(t, 7, snapshot.Number)
	assert.Equal(t, "B", snapshot.Letter)
	assert.Equal(t, 1, hub.ClientCount(m.ID))

	_, err = matches.Draw(ctx, m.ID)
	require.NoError(t, err)

	drawn := readEvent(t, conn)
	assert.Equal(t, EventNumberDrawn, drawn.Type)
	assert.Equal(t, 71, drawn.Number)
	assert.Equal(t, "O", drawn.Letter)
	assert.Equal(t, "Letter O, number 71", drawn.Narration)
	assert.Equal(t, []int{7, 71}, drawn.Numbers)

	_, err = matches.Finalize(ctx, m.ID, players[1].ID)
	require.NoError(t, err)

	final := readEvent(t, conn)
	assert.Equal(t, EventMatchFinalized, final.Type)
	require.NotNil(t, final.WinnerID)
	assert.Equal(t, players[1].ID, *final.WinnerID)
}

func TestHubOnlyDeliversOwnMatch(t *testing.T) {
	ctx := context.Background()
	matches, _, base := newHubServer(t)

	players := testutil.SeedPlayers(t, matches.db, 0)
	watched, err := matches.Create(ctx, game.Bingo90, "", []uint{players[0].ID})
	require.NoError(t, err)
	other, err := matches.Create(ctx, game.Bingo90, "", []uint{players[0].ID})
	require.NoError(t, err)

	conn, _, err := websocket.DefaultDialer.Dial(base+"/ws/matches/"+strconv.Itoa(int(watched.ID)), nil)
	require.NoError(t, err)
	defer conn.Close()
	assert.Equal(t, EventSnapshot, readEvent(t, conn).Type)

	_, err = matches.Draw(ctx, other.ID)
	require.NoError(t, err)
	require.NoError(t, matches.Annul(ctx, watched.ID))

	evt := readEvent(t, conn)
	assert.Equal(t, EventMatchAnnulled, evt.Type)
	assert.Equal(t, watched.ID, evt.MatchID)
}

func TestHubRejectsUnknownMatch(t *testing.T) {
	_, _, base := newHubServer(t)

	_, resp, err := websocket.DefaultDialer.Dial(base+"/ws/matches/404", nil)
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	_, resp, err = websocket.DefaultDialer.Dial(base+"/ws/matches/abc", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHubDropsClosedClients(t *testing.T) {
	ctx := context.Background()
	matches, hub, base := newHubServer(t)

	players := testutil.SeedPlayers(t, matches.db, 0)
	m, err := matches.Create(ctx, game.Bingo75, "", []uint{players[0].ID})
	require.NoError(t, err)

	conn, _, err := websocket.DefaultDialer.Dial(base+"/ws/matches/"+strconv.Itoa(int(m.ID)), nil)
	require.NoError(t, err)
	readEvent(t, conn)
	require.Equal(t, 1, hub.ClientCount(m.ID))

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye")))
	conn.Close()

	assert.Eventually(t, func() bool { return hub.ClientCount(m.ID) == 0 }, 5*time.Second, 20*time.Millisecond)
}

func TestHubJoinDuringDrawsMissesNothing(t *testing.T) {
	ctx := context.Background()
	matches, _, base := newHubServer(t)

	players := testutil.SeedPlayers(t, matches.db, 0)
	m, err := matches.Create(ctx, game.Bingo75, "", []uint{players[0].ID})
	require.NoError(t, err)
	url := base + "/ws/matches/" + strconv.Itoa(int(m.ID))

	const draws = 30
	const viewers = 6
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < draws; i++ {
			_, err := matches.Draw(ctx, m.ID)
			assert.NoError(t, err)
		}
	}()

	conns := make([]*websocket.Conn, viewers)
	for i := range conns {
		conn, _, err := websocket.DefaultDialer.Dial(url, nil)
		require.NoError(t, err)
		defer conn.Close()
		conns[i] = conn
	}
	<-done

	_, err = matches.Finalize(ctx, m.ID, players[0].ID)
	require.NoError(t, err)
	final, err := matches.Get(ctx, m.ID)
	require.NoError(t, err)
	require.Len(t, final.Numbers, draws)

	for i, conn := range conns {
		// the snapshot plus every later draw must cover the whole sequence
		seen := map[int]bool{}
		snapshot := readEvent(t, conn)
		require.Equal(t, EventSnapshot, snapshot.Type)
		for _, n := range snapshot.Numbers {
			seen[n] = true
		}
		for {
			evt := readEvent(t, conn)
			if evt.Type == EventMatchFinalized {
				break
			}
			require.Equal(t, EventNumberDrawn, evt.Type)
			seen[evt.Number] = true
		}
		for _, n := range final.Numbers {
			assert.True(t, seen[n], "viewer %d missed %d", i, n)
		}
	}
}
