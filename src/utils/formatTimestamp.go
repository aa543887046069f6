package utils

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"groundwater-quality-api/src/types"
)

// Indexed by time.Weekday (Sunday first) and time.Month-1.
var (
	dayNames = [7]string{"Minggu", "Senin", "Selasa", "Rabu", "Kamis", "Jumat", "Sabtu"}

	monthNames = [12]string{
		"Januari", "Februari", "Maret", "April", "Mei", "Juni",
		"Juli", "Agustus", "September", "Oktober", "November", "Desember",
	}
)

// InvalidTimestamp is returned for any timestamp that cannot be converted.
var InvalidTimestamp = types.Timestamp{
	Datetime: "Invalid Timestamp",
	Date:     "-",
	Time:     "-",
}

// FormatTimestamp converts an epoch-millisecond attribute into its display triple in loc.
// It never fails: unusable input yields InvalidTimestamp.
func FormatTimestamp(raw interface{}, loc *time.Location) types.Timestamp {
	ms, err := epochMillis(raw)
	if err != nil {
		return InvalidTimestamp
	}

	if loc == nil {
		loc = time.Local
	}

	t := time.UnixMilli(ms).In(loc)
	if t.Year() < 1 || t.Year() > 9999 {
		return InvalidTimestamp
	}

	date := fmt.Sprintf("%s, %02d %s %d", dayNames[t.Weekday()], t.Day(), monthNames[t.Month()-1], t.Year())
	clock := t.Format("15:04:05")

	return types.Timestamp{
		Datetime: date + " - " + clock,
		Date:     date,
		Time:     clock,
	}
}

// Years 1..9999 as epoch milliseconds, with a day of slack for zone offsets.
const (
	minEpochMillis = -62135596800000 - 86400000
	maxEpochMillis = 253402300799999 + 86400000
)

func epochMillis(raw interface{}) (int64, error) {
	switch v := raw.(type) {
	case nil:
		return 0, fmt.Errorf("timestamp is missing")
	case int64:
		return checkRange(v)
	case int:
		return checkRange(int64(v))
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) || v < minEpochMillis || v > maxEpochMillis {
			return 0, fmt.Errorf("timestamp %v out of range", v)
		}
		return int64(v), nil
	case json.Number:
		return parseMillis(string(v))
	case string:
		return parseMillis(v)
	default:
		return 0, fmt.Errorf("unsupported timestamp type %T", raw)
	}
}

func parseMillis(s string) (int64, error) {
	ms, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("error parsing timestamp: %w", err)
	}
	return checkRange(ms)
}

func checkRange(ms int64) (int64, error) {
	if ms < minEpochMillis || ms > maxEpochMillis {
		return 0, fmt.Errorf("timestamp %d out of range", ms)
	}
	return ms, nil
}
