package handler_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/moonwavetravel/backend/internal/domain"
	"github.com/moonwavetravel/backend/internal/errmsg"
	"github.com/moonwavetravel/backend/internal/realtime"
)

type frame struct {
	Type     string          `json:"type"`
	Status   string          `json:"status"`
	Error    string          `json:"error"`
	Category string          `json:"category"`
	Version  uint64          `json:"version"`
	Data     json.RawMessage `json:"data"`
}

// liveTrips serves a mutable trip tree to the handler under test.
type liveTrips struct {
	mu   sync.Mutex
	tree domain.TripWithDays
}

func (l *liveTrips) set(f func(*domain.TripWithDays)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	f(&l.tree)
}

func (l *liveTrips) mock() *mockTripServicer {
	return &mockTripServicer{
		tree: func(context.Context, uuid.UUID) (domain.TripWithDays, error) {
			l.mu.Lock()
			defer l.mu.Unlock()
			return cloneTree(l.tree), nil
		},
	}
}

// cloneTree copies the slices a view sorts in place.
func cloneTree(t domain.TripWithDays) domain.TripWithDays {
	t.Days = slices.Clone(t.Days)
	for i := range t.Days {
		t.Days[i].Plans = slices.Clone(t.Days[i].Plans)
	}
	return t
}

func dial(t *testing.T, srv *httptest.Server, path string, as user) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + path
	if as.id != uuid.Nil {
		url += "?access_token=" + as.token(t)
	}
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// readUntil reads frames until match accepts one or the deadline passes.
func readUntil(t *testing.T, conn *websocket.Conn, match func(frame) bool) frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	for {
		var f frame
		_, msg, err := conn.ReadMessage()
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(msg, &f))
		require.Equal(t, "snapshot", f.Type)
		if match(f) {
			return f
		}
	}
}

func titled(title string) func(frame) bool {
	return func(f frame) bool {
		if f.Status != "ready" {
			return false
		}
		var body struct {
			Title string `json:"title"`
		}
		return json.Unmarshal(f.Data, &body) == nil && body.Title == title
	}
}

func newLiveServer(t *testing.T, d deps) (*httptest.Server, *realtime.Hub) {
	t.Helper()
	hub := realtime.NewHub(slog.New(slog.NewJSONHandler(io.Discard, nil)))
	t.Cleanup(func() { _ = hub.Close() })
	d.events = hub
	srv := httptest.NewServer(newHTTPHandler(t, d))
	t.Cleanup(srv.Close)
	return srv, hub
}

func TestWatchTrip_pushesSnapshotOnChangeEvent(t *testing.T) {
	me := newUser()
	trips := &liveTrips{tree: tripFixture(me.id, false)}
	id := trips.tree.ID
	srv, hub := newLiveServer(t, deps{trips: trips.mock()})

	conn := dial(t, srv, "/ws/trips/"+id.String(), me)
	first := readUntil(t, conn, titled("Jeju spring"))

	trips.set(func(tree *domain.TripWithDays) { tree.Title = "Jeju summer" })
	require.NoError(t, hub.Publish(context.Background(), domain.ChangeEvent{
		Table:    domain.TablePlans,
		Kind:     domain.ChangeInsert,
		RecordID: uuid.New(),
		TripID:   id,
		OwnerID:  me.id,
	}))

	next := readUntil(t, conn, titled("Jeju summer"))
	assert.Greater(t, next.Version, first.Version)
}

func TestWatchTrip_clientRefetch(t *testing.T) {
	me := newUser()
	trips := &liveTrips{tree: tripFixture(me.id, false)}
	srv, _ := newLiveServer(t, deps{trips: trips.mock()})

	conn := dial(t, srv, "/ws/trips/"+trips.tree.ID.String(), me)
	readUntil(t, conn, titled("Jeju spring"))

	trips.set(func(tree *domain.TripWithDays) { tree.Title = "Jeju autumn" })
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"refetch"}`)))

	readUntil(t, conn, titled("Jeju autumn"))
}

func TestWatchTrip_accessDeniedFrame(t *testing.T) {
	trips := &liveTrips{tree: tripFixture(uuid.New(), false)}
	srv, _ := newLiveServer(t, deps{trips: trips.mock()})

	conn := dial(t, srv, "/ws/trips/"+trips.tree.ID.String(), newUser())
	f := readUntil(t, conn, func(f frame) bool { return f.Status == "errored" })

	assert.Equal(t, errmsg.Render(language.Korean, errmsg.KeyAccessDenied), f.Error)
	assert.Equal(t, string(errmsg.CategoryDatabase), f.Category)
	assert.JSONEq(t, "null", string(f.Data))
}

func TestWatchTrips_anonymousIsIdle(t *testing.T) {
	srv, _ := newLiveServer(t, deps{})

	conn := dial(t, srv, "/ws/trips", user{})
	f := readUntil(t, conn, func(f frame) bool { return f.Status == "idle" })

	assert.JSONEq(t, "[]", string(f.Data))
}

func TestWatchDay_pushesOnPlanEvent(t *testing.T) {
	me := newUser()
	detail := dayDetailFixture(me.id, true)
	var mu sync.Mutex
	days := &mockDayServicer{
		detail: func(context.Context, uuid.UUID) (domain.DayDetail, error) {
			mu.Lock()
			defer mu.Unlock()
			out := detail
			out.Plans = slices.Clone(detail.Plans)
			return out, nil
		},
	}
	srv, hub := newLiveServer(t, deps{days: days})

	conn := dial(t, srv, "/ws/days/"+detail.ID.String(), user{})
	planCount := func(n int) func(frame) bool {
		return func(f frame) bool {
			var body struct {
				Stats struct {
					Total int `json:"total"`
				} `json:"stats"`
			}
			return f.Status == "ready" && json.Unmarshal(f.Data, &body) == nil && body.Stats.Total == n
		}
	}
	readUntil(t, conn, planCount(3))

	mu.Lock()
	detail.Plans = detail.Plans[:1]
	mu.Unlock()
	require.NoError(t, hub.Publish(context.Background(), domain.ChangeEvent{
		Table:    domain.TablePlans,
		Kind:     domain.ChangeDelete,
		RecordID: uuid.New(),
		DayID:    detail.ID,
	}))

	readUntil(t, conn, planCount(1))
}
