package api

import (
	"time"

	models "CapitolPulse/internal/domain/models"
	"CapitolPulse/internal/service/present"
	"CapitolPulse/internal/usecase"
	xhttp "CapitolPulse/pkg/http"
	xlogger "CapitolPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

// DashboardHandler implements the Echo-based read API for the dashboard.
// Every endpoint resolves through the query stores, so concurrent requests
// for the same filter share one upstream fetch.
type DashboardHandler struct {
	logger      *xlogger.Logger
	leaderboard *usecase.Store[*models.LeaderboardPayload]
	sectors     *usecase.Store[*models.SectorPayload]
	trades      *usecase.Store[[]models.Trade]
}

func NewDashboardHandler(
	logger *xlogger.Logger,
	leaderboard *usecase.Store[*models.LeaderboardPayload],
	sectors *usecase.Store[*models.SectorPayload],
	trades *usecase.Store[[]models.Trade],
) *DashboardHandler {
	return &DashboardHandler{
		logger:      logger,
		leaderboard: leaderboard,
		sectors:     sectors,
		trades:      trades,
	}
}

func (h *DashboardHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/leaderboard", h.Leaderboard)
	g.GET("/leaderboard/chart", h.LeaderboardChart)
	g.GET("/sectors/chart", h.SectorChart)
	g.GET("/trades", h.Trades)
	g.GET("/summary", h.Summary)

	e.GET("/healthz", h.Health)
}

// queryMeta exposes cache provenance so clients can render a staleness hint.
type queryMeta struct {
	Key       string    `json:"key"`
	Stale     bool      `json:"stale"`
	FetchedAt time.Time `json:"fetched_at"`
}

type viewResponse struct {
	Meta queryMeta   `json:"meta"`
	View interface{} `json:"view"`
}

func meta[T any](snap usecase.Snapshot[T]) queryMeta {
	return queryMeta{
		Key:       string(snap.Key),
		Stale:     snap.Stale,
		FetchedAt: snap.FetchedAt,
	}
}

func (h *DashboardHandler) Leaderboard(c echo.Context) error {
	req := &models.LeaderboardRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	snap, err := h.leaderboard.Resolve(c.Request().Context(), req.Filter())
	if err != nil {
		h.logger.Error("leaderboard resolve error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, upstreamError(err))
	}

	rows := present.LeaderboardTable(snap.Data, present.TableConfig{
		Sort: present.SortKey(req.Sort),
		Dir:  req.Dir,
	})
	h.setCacheHeader(c, snap.Stale)
	return xhttp.SuccessResponse(c, viewResponse{Meta: meta(snap), View: rows})
}

func (h *DashboardHandler) LeaderboardChart(c echo.Context) error {
	req := &models.LeaderboardChartRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	snap, err := h.leaderboard.Resolve(c.Request().Context(), req.Filter())
	if err != nil {
		h.logger.Error("leaderboard chart resolve error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, upstreamError(err))
	}

	series := present.LeaderboardSeries(snap.Data, req.Top)
	h.setCacheHeader(c, snap.Stale)
	return xhttp.SuccessResponse(c, viewResponse{Meta: meta(snap), View: series})
}

func (h *DashboardHandler) SectorChart(c echo.Context) error {
	req := &models.SectorChartRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	snap, err := h.sectors.Resolve(c.Request().Context(), req.Filter())
	if err != nil {
		h.logger.Error("sector chart resolve error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, upstreamError(err))
	}

	series := present.SectorSeries(snap.Data, req.Top)
	h.setCacheHeader(c, snap.Stale)
	return xhttp.SuccessResponse(c, viewResponse{Meta: meta(snap), View: series})
}

func (h *DashboardHandler) Trades(c echo.Context) error {
	req := &models.TradesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	snap, err := h.trades.Resolve(c.Request().Context(), req.Filter())
	if err != nil {
		h.logger.Error("trades resolve error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, upstreamError(err))
	}

	rows := present.TradeRows(snap.Data)
	h.setCacheHeader(c, snap.Stale)
	return xhttp.SuccessResponse(c, viewResponse{Meta: meta(snap), View: rows})
}

func (h *DashboardHandler) Summary(c echo.Context) error {
	req := &models.SummaryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	snap, err := h.leaderboard.Resolve(c.Request().Context(), req.Filter())
	if err != nil {
		h.logger.Error("summary resolve error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, upstreamError(err))
	}

	h.setCacheHeader(c, snap.Stale)
	return xhttp.SuccessResponse(c, viewResponse{Meta: meta(snap), View: present.Summarize(snap.Data)})
}

func (h *DashboardHandler) Health(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]string{"status": "ok"})
}

// setCacheHeader lets intermediaries cache fresh responses briefly. Stale
// responses are about to be superseded by a revalidation, so they are not
// shared.
func (h *DashboardHandler) setCacheHeader(c echo.Context, stale bool) {
	if stale {
		c.Response().Header().Set(echo.HeaderCacheControl, "no-cache")
		return
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "public, max-age=15")
}

func upstreamError(err error) error {
	switch models.KindOf(err) {
	case string(models.ErrKindHTTP), string(models.ErrKindNetwork):
		return xhttp.BadGatewayError("trade aggregation service is unavailable").WithError(err)
	case string(models.ErrKindDecode):
		return xhttp.BadGatewayError("trade aggregation service returned an invalid payload").WithError(err)
	default:
		return err
	}
}
