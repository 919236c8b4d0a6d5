package storage

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"time"
)

// maxEpochMillis is the largest absolute epoch offset a stored date may carry.
const maxEpochMillis = 8.64e15

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	"Jan 2, 2006",
	"January 2, 2006",
}

// Dater is implemented by lazy timestamp values that only yield a time on demand.
type Dater interface {
	ToDate() time.Time
}

// Timestamp is the document-store timestamp encoding.
type Timestamp struct {
	Seconds int64 `json:"_seconds"`
	Nanos   int64 `json:"_nanoseconds"`
}

func (t Timestamp) ToDate() time.Time {
	return time.Unix(t.Seconds, t.Nanos).UTC()
}

// RawDate holds a date in whichever encoding it was stored with: time.Time,
// epoch milliseconds, a string, a Dater, or nothing.
type RawDate struct {
	value any
}

func DateOf(v any) RawDate {
	if d, ok := v.(RawDate); ok {
		return d
	}
	return RawDate{value: v}
}

func (d RawDate) Value() any {
	return d.value
}

func (d RawDate) IsZero() bool {
	return d.value == nil
}

// Time normalizes the held value. Unparseable or unsupported values report false.
func (d RawDate) Time() (time.Time, bool) {
	switch v := d.value.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		return validTime(v)
	case *time.Time:
		if v == nil {
			return time.Time{}, false
		}
		return validTime(*v)
	case int:
		return fromMillis(float64(v))
	case int32:
		return fromMillis(float64(v))
	case int64:
		return fromMillis(float64(v))
	case float32:
		return fromMillis(float64(v))
	case float64:
		return fromMillis(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return time.Time{}, false
		}
		return fromMillis(f)
	case string:
		return parseDateString(v)
	case Dater:
		return validTime(v.ToDate())
	case RawDate:
		return v.Time()
	}
	return time.Time{}, false
}

// EpochMillis returns the normalized date as epoch milliseconds.
func (d RawDate) EpochMillis() (int64, bool) {
	t, ok := d.Time()
	if !ok {
		return 0, false
	}
	return t.UnixMilli(), true
}

func (d RawDate) MarshalJSON() ([]byte, error) {
	switch v := d.value.(type) {
	case nil:
		return []byte("null"), nil
	case time.Time:
		return json.Marshal(v.UTC().Format(time.RFC3339Nano))
	case json.RawMessage:
		return v, nil
	case Timestamp:
		return json.Marshal(v)
	case Dater:
		return json.Marshal(v.ToDate().UTC().Format(time.RFC3339Nano))
	default:
		return json.Marshal(v)
	}
}

func (d *RawDate) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)

	switch {
	case len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")):
		d.value = nil
		return nil
	case trimmed[0] == '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		d.value = s
		return nil
	case trimmed[0] == '{':
		var obj map[string]json.Number
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			// objects that are not timestamps are kept verbatim and never parse
			d.value = json.RawMessage(append([]byte(nil), trimmed...))
			return nil
		}
		ts, ok := timestampFromFields(obj)
		if !ok {
			d.value = json.RawMessage(append([]byte(nil), trimmed...))
			return nil
		}
		d.value = ts
		return nil
	case trimmed[0] == '-' || (trimmed[0] >= '0' && trimmed[0] <= '9'):
		n := json.Number(trimmed)
		if i, err := n.Int64(); err == nil {
			d.value = i
			return nil
		}
		f, err := n.Float64()
		if err != nil {
			return err
		}
		d.value = f
		return nil
	default:
		d.value = json.RawMessage(append([]byte(nil), trimmed...))
		return nil
	}
}

func timestampFromFields(obj map[string]json.Number) (Timestamp, bool) {
	secs, ok := obj["_seconds"]
	if !ok {
		secs, ok = obj["seconds"]
	}
	if !ok {
		return Timestamp{}, false
	}
	s, err := secs.Int64()
	if err != nil {
		return Timestamp{}, false
	}

	nanos, ok := obj["_nanoseconds"]
	if !ok {
		nanos = obj["nanoseconds"]
	}
	var n int64
	if nanos != "" {
		n, err = nanos.Int64()
		if err != nil {
			return Timestamp{}, false
		}
	}

	return Timestamp{Seconds: s, Nanos: n}, true
}

func fromMillis(ms float64) (time.Time, bool) {
	if math.IsNaN(ms) || math.IsInf(ms, 0) || math.Abs(ms) > maxEpochMillis {
		return time.Time{}, false
	}
	return time.UnixMilli(int64(ms)).UTC(), true
}

func validTime(t time.Time) (time.Time, bool) {
	if t.IsZero() {
		return time.Time{}, false
	}
	return t, true
}

func parseDateString(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
