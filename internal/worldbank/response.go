package worldbank

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// page is the provider's [metadata, points] envelope.
type page struct {
	decoded bool
	meta    pageMeta
	points  []dataPoint
}

type pageMeta struct {
	Page    json.RawMessage `json:"page"`
	Pages   json.RawMessage `json:"pages"`
	PerPage json.RawMessage `json:"per_page"`
	Total   json.RawMessage `json:"total"`
	Message []struct {
		ID    string `json:"id"`
		Key   string `json:"key"`
		Value string `json:"value"`
	} `json:"message"`
}

type dataPoint struct {
	Date  json.RawMessage `json:"date"`
	Value json.RawMessage `json:"value"`
}

var errNotArray = errors.New("response is not a JSON array")

// UnmarshalJSON accepts any JSON array and records its shape. Arrays shorter
// than two elements are reported by shapeError rather than here, which keeps
// the provider's one-element error envelope available for logging.
func (p *page) UnmarshalJSON(data []byte) error {
	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		return fmt.Errorf("%w: %v", errNotArray, err)
	}

	var meta pageMeta
	if len(elems) > 0 {
		// metadata is informational only
		_ = json.Unmarshal(elems[0], &meta)
	}

	var points []dataPoint
	if len(elems) > 1 && !isNull(elems[1]) {
		if err := json.Unmarshal(elems[1], &points); err != nil {
			return fmt.Errorf("data points: %w", err)
		}
	}

	*p = page{decoded: len(elems) > 1, meta: meta, points: points}
	return nil
}

// shapeError describes why a decoded body is not a usable page, or returns "".
func (p *page) shapeError() string {
	if p.decoded {
		return ""
	}
	if len(p.meta.Message) > 0 {
		m := p.meta.Message[0]
		return fmt.Sprintf("provider message %s: %s %s", m.ID, m.Key, strings.TrimSpace(m.Value))
	}
	return "expected a [metadata, points] array"
}

// pages returns the page count reported in the metadata, if any.
func (m pageMeta) pages() int {
	s, ok := scalar(m.Pages)
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

func (d dataPoint) year() (int, error) {
	s, ok := scalar(d.Date)
	if !ok {
		return 0, errors.New("missing date")
	}
	y, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid date %q", s)
	}
	return y, nil
}

func (d dataPoint) value() (float64, bool, error) {
	s, ok := scalar(d.Value)
	if !ok {
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, true, fmt.Errorf("invalid value %q", s)
	}
	return v, true, nil
}

// scalar unwraps a JSON string or number into its text. Null, absent and
// composite values report false.
func scalar(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || isNull(raw) {
		return "", false
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", false
		}
		return strings.TrimSpace(s), true
	case '{', '[':
		return "", false
	default:
		return string(raw), true
	}
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
