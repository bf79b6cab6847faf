package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/olahol/melody"

	"github.com/moonwavetravel/backend/internal/aggregate"
	"github.com/moonwavetravel/backend/internal/errmsg"
	"github.com/moonwavetravel/backend/internal/middleware"
)

const sessionKey = "live"

// liveView is the part of an aggregate view a WebSocket session drives.
type liveView interface {
	Load(ctx context.Context, key uuid.UUID) error
	Refetch(ctx context.Context) error
	Updates() <-chan struct{}
	Close()
}

// liveSession binds one WebSocket connection to one view.
type liveSession struct {
	view  liveView
	key   uuid.UUID
	frame func() snapshotFrame
}

// snapshotFrame is pushed to the client after every state change of its view.
type snapshotFrame struct {
	Type     string            `json:"type"`
	Status   string            `json:"status"`
	Loading  bool              `json:"loading"`
	Error    string            `json:"error,omitempty"`
	Category errmsg.Category   `json:"category,omitempty"`
	Fields   map[string]string `json:"fields,omitempty"`
	Version  uint64            `json:"version"`
	Data     any               `json:"data"`
}

// clientMessage is what a client may send. Only {"type":"refetch"} is understood.
type clientMessage struct {
	Type string `json:"type"`
}

func frameOf[T any](st aggregate.State[T], data any) snapshotFrame {
	return snapshotFrame{
		Type:     "snapshot",
		Status:   st.Status.String(),
		Loading:  st.Loading,
		Error:    st.Error,
		Category: st.Category,
		Fields:   st.Fields,
		Version:  st.Version,
		Data:     data,
	}
}

func (s *Server) newMelody() *melody.Melody {
	m := melody.New()
	m.Config.MaxMessageSize = 4 << 10
	m.Config.PingPeriod = 30 * time.Second
	m.Config.PongWait = 60 * time.Second
	m.Upgrader = &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     middleware.OriginChecker(s.origins),
	}

	m.HandleConnect(func(ms *melody.Session) {
		sess, ok := sessionOf(ms)
		if !ok {
			_ = ms.Close()
			return
		}
		go s.pushSnapshots(ms, sess)
	})

	m.HandleMessage(func(ms *melody.Session, msg []byte) {
		sess, ok := sessionOf(ms)
		if !ok {
			return
		}
		var cm clientMessage
		if err := json.Unmarshal(msg, &cm); err != nil || cm.Type != "refetch" {
			s.logger.Debug("websocket message ignored", "path", ms.Request.URL.Path)
			return
		}
		if err := sess.view.Refetch(ms.Request.Context()); err != nil {
			s.logger.Debug("websocket refetch failed", "path", ms.Request.URL.Path, "error", err)
		}
	})

	m.HandleDisconnect(func(ms *melody.Session) {
		if sess, ok := sessionOf(ms); ok {
			sess.view.Close()
		}
	})

	m.HandleError(func(ms *melody.Session, err error) {
		s.logger.Debug("websocket error", "path", ms.Request.URL.Path, "error", err)
	})

	return m
}

func sessionOf(ms *melody.Session) (*liveSession, bool) {
	v, ok := ms.Get(sessionKey)
	if !ok {
		return nil, false
	}
	sess, ok := v.(*liveSession)
	return sess, ok
}

// pushSnapshots loads the view and writes a snapshot after each change until
// the view is closed on disconnect.
func (s *Server) pushSnapshots(ms *melody.Session, sess *liveSession) {
	if err := sess.view.Load(ms.Request.Context(), sess.key); err != nil {
		s.logger.Debug("websocket initial load failed", "path", ms.Request.URL.Path, "error", err)
	}
	for range sess.view.Updates() {
		b, err := json.Marshal(sess.frame())
		if err != nil {
			s.logger.Error("encode snapshot", "error", err)
			continue
		}
		if err := ms.Write(b); err != nil {
			return
		}
	}
}

// liveEnv is the view environment of a WebSocket session: subscribed to the
// change feed and reporting failures, since no handler is left to do so.
func (s *Server) liveEnv(r *http.Request) aggregate.Env {
	env := s.oneShotEnv(r)
	env.Events = s.events
	env.Reporter = s.reporter
	return env
}

func (s *Server) serveLive(w http.ResponseWriter, r *http.Request, sess *liveSession) {
	if err := s.ws.HandleRequestWithKeys(w, r, map[string]any{sessionKey: sess}); err != nil {
		sess.view.Close()
		s.logger.Debug("websocket upgrade failed", "path", r.URL.Path, "error", err)
	}
}

// WatchTrips handles GET /ws/trips: the caller's trip list, kept live.
func (s *Server) WatchTrips(w http.ResponseWriter, r *http.Request) {
	view := aggregate.NewTripList(s.liveEnv(r), s.trips, s.trips)
	s.serveLive(w, r, &liveSession{
		view: view,
		key:  actor(r),
		frame: func() snapshotFrame {
			st := view.Snapshot()
			data := []treeResponse{}
			if st.Data != nil {
				for _, t := range *st.Data {
					data = append(data, treeToResponse(t))
				}
			}
			return frameOf(st, data)
		},
	})
}

// WatchTrip handles GET /ws/trips/{tripId}: one trip tree, kept live.
func (s *Server) WatchTrip(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "tripId")
	if err != nil {
		s.writeError(w, r, err, errmsg.ContextConnection, "WatchTrip")
		return
	}
	view := aggregate.NewTripDetail(s.liveEnv(r), s.trips, s.trips, s.plans)
	s.serveLive(w, r, &liveSession{
		view: view,
		key:  id,
		frame: func() snapshotFrame {
			st := view.Snapshot()
			var data any
			if st.Data != nil {
				data = treeToResponse(*st.Data)
			}
			return frameOf(st, data)
		},
	})
}

// WatchDay handles GET /ws/days/{dayId}: one day with its plans, kept live.
func (s *Server) WatchDay(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "dayId")
	if err != nil {
		s.writeError(w, r, err, errmsg.ContextConnection, "WatchDay")
		return
	}
	view := aggregate.NewDayDetail(s.liveEnv(r), s.days, s.plans)
	s.serveLive(w, r, &liveSession{
		view: view,
		key:  id,
		frame: func() snapshotFrame {
			st := view.Snapshot()
			var data any
			if st.Data != nil {
				data = dayDetailToResponse(*st.Data)
			}
			return frameOf(st, data)
		},
	})
}
