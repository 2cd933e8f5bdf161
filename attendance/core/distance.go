package core

import (
	"context"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"fieldtrack.com/fieldtrack/attendance/model"
	"fieldtrack.com/fieldtrack/utils"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ZeroDistance stands in for any leg the mapping service could not measure.
const ZeroDistance = "0 m"

type DistanceEngine struct {
	Matrix DistanceMatrix
	Store  DistanceStore
	Now    Clock
}

func NewDistanceEngine(matrix DistanceMatrix, store DistanceStore) *DistanceEngine {
	return &DistanceEngine{Matrix: matrix, Store: store, Now: time.Now}
}

// ComputeLegDistances returns one distance string per consecutive pair of
// points, asking the mapping service once for the whole sequence.
func (de *DistanceEngine) ComputeLegDistances(ctx context.Context, points []model.Location) ([]string, error) {
	if len(points) < 2 {
		return []string{}, nil
	}

	origins := points[:len(points)-1]
	destinations := points[1:]

	rows, err := de.Matrix.PairwiseDistances(ctx, origins, destinations)
	if err != nil {
		return nil, &UpstreamError{Service: "distance matrix", Err: err}
	}

	legs := make([]string, len(origins))
	for i := range legs {
		if i >= len(rows) || rows[i].Status != "OK" || strings.TrimSpace(rows[i].DistanceText) == "" {
			log.Warn().Int("leg", i).Msg("distance matrix returned no usable row, defaulting to 0 m")
			legs[i] = ZeroDistance
			continue
		}
		legs[i] = rows[i].DistanceText
	}
	return legs, nil
}

// LegInput is a client-reported leg before validation.
type LegInput struct {
	From        string `json:"from"`
	To          string `json:"to"`
	Distance    any    `json:"distance"`
	TransitTime string `json:"transitTime"`
}

// SaveDailyDistance normalises the reported total to kilometres and upserts
// the user's summary for date. Invalid legs are dropped individually.
func (de *DistanceEngine) SaveDailyDistance(ctx context.Context, userID, date string, totalRaw any, legs []LegInput) (*model.DistanceSummary, error) {
	if userID == "" {
		return nil, invalid("userId", "is required")
	}
	if _, err := utils.ParseDate(date); err != nil {
		return nil, invalid("date", "%v", err)
	}

	total, err := NormalizeDistanceKm(totalRaw)
	if err != nil {
		return nil, err
	}

	summary := &model.DistanceSummary{
		ID:                    uuid.NewString(),
		UserID:                userID,
		Date:                  date,
		TotalDistance:         total,
		PointToPointDistances: validLegs(legs),
		UpdatedAt:             de.Now().UTC(),
	}

	saved, err := de.Store.UpsertDistance(ctx, summary)
	if err != nil {
		return nil, &PersistenceError{Op: "save daily distance", Err: err}
	}
	return saved, nil
}

func (de *DistanceEngine) GetDailyDistance(ctx context.Context, userID, date string) (*model.DistanceSummary, error) {
	if _, err := utils.ParseDate(date); err != nil {
		return nil, invalid("date", "%v", err)
	}
	summary, err := de.Store.FindDistance(ctx, userID, date)
	if err != nil {
		return nil, &PersistenceError{Op: "find daily distance", Err: err}
	}
	if summary == nil {
		return nil, &NotFoundError{Resource: "distance summary", Key: date}
	}
	return summary, nil
}

func validLegs(legs []LegInput) []model.Leg {
	valid := make([]model.Leg, 0, len(legs))
	for i, l := range legs {
		if strings.TrimSpace(l.From) == "" || strings.TrimSpace(l.To) == "" {
			log.Warn().Int("leg", i).Msg("dropping leg without endpoints")
			continue
		}
		km, ok := toFloat(l.Distance)
		if !ok {
			log.Warn().Int("leg", i).Interface("distance", l.Distance).Msg("dropping leg with non-numeric distance")
			continue
		}
		valid = append(valid, model.Leg{From: l.From, To: l.To, DistanceKm: km, TransitTime: l.TransitTime})
	}
	return valid
}

// NormalizeDistanceKm converts a reported distance to kilometres.
//
//	"5 km 200 m" -> 5.2
//	"800 m"      -> 0.8
//	1500, "1500" -> 1.5 (bare numbers are metres)
func NormalizeDistanceKm(raw any) (float64, error) {
	var km float64

	switch v := raw.(type) {
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(v), ",", "")
		switch {
		case strings.Contains(s, "km"):
			parts := strings.SplitN(s, " km ", 2)
			whole := leadingFloat(parts[0])
			frac := 0.0
			if len(parts) == 2 {
				frac = leadingFloat(parts[1]) / 1000
			}
			km = whole + frac
		case strings.Contains(s, "m"):
			km = leadingFloat(s) / 1000
		default:
			km = leadingFloat(s) / 1000
		}
	default:
		n, ok := toFloat(raw)
		if !ok {
			return 0, invalid("totalDistance", "unsupported value %v", raw)
		}
		km = n / 1000
	}

	if math.IsNaN(km) || math.IsInf(km, 0) {
		return 0, invalid("totalDistance", "%v is not a valid distance", raw)
	}
	if km < 0 {
		return 0, invalid("totalDistance", "must not be negative")
	}
	return km, nil
}

// leadingFloat parses the numeric prefix of s, NaN when there is none.
func leadingFloat(s string) float64 {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) {
		c := s[end]
		if (c >= '0' && c <= '9') || c == '.' || (end == 0 && (c == '-' || c == '+')) {
			end++
			continue
		}
		break
	}
	f, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, !math.IsNaN(n) && !math.IsInf(n, 0)
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil && !math.IsNaN(f) && !math.IsInf(f, 0)
	}
	return 0, false
}
