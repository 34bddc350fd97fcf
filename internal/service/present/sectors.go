package present

import "CapitolPulse/internal/domain/models"

// SectorSeries slices the top N tickers by volume into a chart series. The
// payload is already ordered by magnitude descending, so slicing is a
// prefix operation.
func SectorSeries(payload *models.SectorPayload, topN int) Series {
	if payload == nil {
		return Series{}
	}

	tickers := payload.Tickers
	if topN > 0 && topN < len(tickers) {
		tickers = tickers[:topN]
	}

	s := Series{
		Labels: make([]string, len(tickers)),
		Values: make([]float64, len(tickers)),
	}
	for i, t := range tickers {
		s.Labels[i] = t.Ticker
		s.Values[i] = t.Volume.InexactFloat64()
	}
	return s
}
