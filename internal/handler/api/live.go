package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	models "CapitolPulse/internal/domain/models"
	"CapitolPulse/internal/service/present"
	"CapitolPulse/internal/usecase"
	xlogger "CapitolPulse/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	liveWriteTimeout = 10 * time.Second
	livePongTimeout  = 60 * time.Second
	livePingInterval = 30 * time.Second
)

// LiveHandler serves the websocket feed. A session binds each dataset to a
// filter and receives a rendered frame on every snapshot transition. A
// refresh ticker invalidates bound keys so long-lived sessions keep
// revalidating.
type LiveHandler struct {
	logger      *xlogger.Logger
	leaderboard *usecase.Store[*models.LeaderboardPayload]
	sectors     *usecase.Store[*models.SectorPayload]
	trades      *usecase.Store[[]models.Trade]
	refresh     time.Duration

	upgrader websocket.Upgrader
}

func NewLiveHandler(
	logger *xlogger.Logger,
	leaderboard *usecase.Store[*models.LeaderboardPayload],
	sectors *usecase.Store[*models.SectorPayload],
	trades *usecase.Store[[]models.Trade],
	refresh time.Duration,
) *LiveHandler {
	if refresh <= 0 {
		refresh = time.Minute
	}
	return &LiveHandler{
		logger:      logger,
		leaderboard: leaderboard,
		sectors:     sectors,
		trades:      trades,
		refresh:     refresh,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// Public read-only feed.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

func (h *LiveHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/api/live", h.Live)
}

// bindRequest is a client frame selecting a dataset and filter.
type bindRequest struct {
	Dataset string `json:"dataset"`
	Period  string `json:"period"`
	Chamber string `json:"chamber"`
	Limit   int    `json:"limit"`
	Top     int    `json:"top"`
}

// liveFrame is one pushed update.
type liveFrame struct {
	Dataset   string      `json:"dataset"`
	Status    string      `json:"status"`
	Stale     bool        `json:"stale"`
	FetchedAt time.Time   `json:"fetched_at,omitempty"`
	Error     string      `json:"error,omitempty"`
	View      interface{} `json:"view,omitempty"`
}

func (h *LiveHandler) Live(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", xlogger.Error(err))
		return err
	}
	h.logger.Debug("live session opened", xlogger.String("remote", conn.RemoteAddr().String()))

	s := &liveSession{
		handler: h,
		conn:    conn,
		out:     make(chan liveFrame, 16),
		done:    make(chan struct{}),
	}
	s.leaderboard = usecase.NewBinding(h.leaderboard)
	s.sectors = usecase.NewBinding(h.sectors)
	s.trades = usecase.NewBinding(h.trades)

	go s.writeLoop()
	s.readLoop()
	return nil
}

type liveSession struct {
	handler *LiveHandler
	conn    *websocket.Conn
	out     chan liveFrame

	mu          sync.Mutex
	leaderboard *usecase.Binding[*models.LeaderboardPayload]
	sectors     *usecase.Binding[*models.SectorPayload]
	trades      *usecase.Binding[[]models.Trade]
	topN        int

	closeOnce sync.Once
	done      chan struct{}
}

func (s *liveSession) close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.leaderboard.Close()
		s.sectors.Close()
		s.trades.Close()
		_ = s.conn.Close()
	})
}

func (s *liveSession) readLoop() {
	defer s.close()

	s.conn.SetReadLimit(4096)
	_ = s.conn.SetReadDeadline(time.Now().Add(livePongTimeout))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(livePongTimeout))
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			return
		}

		var req bindRequest
		if err := json.Unmarshal(data, &req); err != nil {
			s.push(liveFrame{Dataset: req.Dataset, Status: "error", Error: "invalid bind request"})
			continue
		}
		s.bind(req)
	}
}

func (s *liveSession) bind(req bindRequest) {
	f := models.FilterState{
		Period:  models.Period(req.Period),
		Chamber: models.Chamber(req.Chamber),
		Limit:   req.Limit,
	}

	s.mu.Lock()
	if req.Top > 0 {
		s.topN = req.Top
	}
	s.mu.Unlock()

	switch req.Dataset {
	case "leaderboard":
		s.leaderboard.OnUpdate(func(snap usecase.Snapshot[*models.LeaderboardPayload]) {
			s.push(s.leaderboardFrame(snap))
		})
		s.push(s.leaderboardFrame(s.leaderboard.Bind(f)))
	case "sectors":
		s.sectors.OnUpdate(func(snap usecase.Snapshot[*models.SectorPayload]) {
			s.push(s.sectorFrame(snap))
		})
		s.push(s.sectorFrame(s.sectors.Bind(models.FilterState{Period: f.Period})))
	case "trades":
		s.trades.OnUpdate(func(snap usecase.Snapshot[[]models.Trade]) {
			s.push(s.tradeFrame(snap))
		})
		s.push(s.tradeFrame(s.trades.Bind(f)))
	default:
		s.push(liveFrame{Dataset: req.Dataset, Status: "error", Error: "unknown dataset"})
	}
}

func (s *liveSession) leaderboardFrame(snap usecase.Snapshot[*models.LeaderboardPayload]) liveFrame {
	frame := baseFrame("leaderboard", snap.Status, snap.Stale, snap.FetchedAt, snap.Err)
	if snap.HasData {
		frame.View = present.LeaderboardTable(snap.Data, present.TableConfig{})
	}
	return frame
}

func (s *liveSession) sectorFrame(snap usecase.Snapshot[*models.SectorPayload]) liveFrame {
	frame := baseFrame("sectors", snap.Status, snap.Stale, snap.FetchedAt, snap.Err)
	if snap.HasData {
		s.mu.Lock()
		topN := s.topN
		s.mu.Unlock()
		frame.View = present.SectorSeries(snap.Data, topN)
	}
	return frame
}

func (s *liveSession) tradeFrame(snap usecase.Snapshot[[]models.Trade]) liveFrame {
	frame := baseFrame("trades", snap.Status, snap.Stale, snap.FetchedAt, snap.Err)
	if snap.HasData {
		frame.View = present.TradeRows(snap.Data)
	}
	return frame
}

func baseFrame(dataset string, status usecase.Status, stale bool, fetchedAt time.Time, err error) liveFrame {
	frame := liveFrame{
		Dataset:   dataset,
		Status:    string(status),
		Stale:     stale,
		FetchedAt: fetchedAt,
	}
	if err != nil {
		frame.Error = err.Error()
	}
	return frame
}

func (s *liveSession) push(frame liveFrame) {
	select {
	case s.out <- frame:
	case <-s.done:
	default:
		// Slow consumer; drop the frame. The next transition resends a
		// full view, so nothing is lost permanently.
	}
}

func (s *liveSession) writeLoop() {
	defer s.close()

	ping := time.NewTicker(livePingInterval)
	defer ping.Stop()
	refresh := time.NewTicker(s.handler.refresh)
	defer refresh.Stop()

	for {
		select {
		case <-s.done:
			return
		case frame := <-s.out:
			_ = s.conn.SetWriteDeadline(time.Now().Add(liveWriteTimeout))
			if err := s.conn.WriteJSON(frame); err != nil {
				return
			}
		case <-ping.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(liveWriteTimeout))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-refresh.C:
			s.revalidateBound()
		}
	}
}

// revalidateBound invalidates every bound key so the stores refetch and push
// fresh frames to this session.
func (s *liveSession) revalidateBound() {
	if snap := s.leaderboard.Current(); snap.Key != "" {
		s.handler.leaderboard.Invalidate(snap.Key)
	}
	if snap := s.sectors.Current(); snap.Key != "" {
		s.handler.sectors.Invalidate(snap.Key)
	}
	if snap := s.trades.Current(); snap.Key != "" {
		s.handler.trades.Invalidate(snap.Key)
	}
}
