package sink

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/Wumpf/issue-explorer/internal/domain"
)

// Record is one line of the NDJSON record stream. Times carries a snapshot of
// every timeline cursor that was set before the emission.
type Record struct {
	Kind   string             `json:"kind"` // "scalar" or "log"
	Entity string             `json:"entity"`
	Times  map[string]float64 `json:"times,omitempty"`
	Value  *float64           `json:"value,omitempty"`
	Text   string             `json:"text,omitempty"`
	Level  string             `json:"level,omitempty"`
	Color  [4]uint8           `json:"color"`
}

// RecordSink writes the emission stream as newline-delimited JSON to a file,
// one record per emission. The file can be replayed into a viewer later.
type RecordSink struct {
	f     *os.File
	enc   *json.Encoder
	times map[string]float64
	err   error
}

var _ Sink = (*RecordSink)(nil)

// NewRecordSink creates (or truncates) the record file at path.
func NewRecordSink(path string) (*RecordSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create record file %q: %w", path, err)
	}
	return &RecordSink{
		f:     f,
		enc:   json.NewEncoder(f),
		times: make(map[string]float64),
	}, nil
}

func (s *RecordSink) SetTimeSeconds(timeline string, seconds float64) {
	s.times[timeline] = seconds
}

func (s *RecordSink) SetTimeSequence(timeline string, index int64) {
	s.times[timeline] = float64(index)
}

func (s *RecordSink) Scalar(entity string, value float64, color domain.Color) {
	v := value
	s.write(Record{Kind: "scalar", Entity: entity, Value: &v, Color: color})
}

func (s *RecordSink) TextLog(entity string, text string, color domain.Color, level string) {
	s.write(Record{Kind: "log", Entity: entity, Text: text, Level: level, Color: color})
}

func (s *RecordSink) write(rec Record) {
	if s.err != nil {
		return
	}
	rec.Times = make(map[string]float64, len(s.times))
	for k, v := range s.times {
		rec.Times[k] = v
	}
	if err := s.enc.Encode(rec); err != nil {
		s.err = fmt.Errorf("failed to append record for %q: %w", rec.Entity, err)
	}
}

// Close closes the record file, surfacing the first write error.
func (s *RecordSink) Close() error {
	closeErr := s.f.Close()
	if s.err != nil {
		return s.err
	}
	return closeErr
}
