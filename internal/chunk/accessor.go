package chunk

import (
	"strconv"

	"github.com/casetrace/evidence-analyzer/pkg/models"
)

// Accessor normalizes heterogeneous chunk representations into canonical
// field reads. Callers never branch on the underlying representation; a new
// representation gets a new Accessor implementation, nothing else changes.
type Accessor interface {
	ID() string
	CaseID() string
	DocumentID() string
	PageRange() [2]int
	Speaker() string
	Text() string
	Confidence() float64
}

// Record wraps a structured models.Chunk.
type Record struct {
	c models.Chunk
}

// NewRecord returns an Accessor over a structured chunk.
func NewRecord(c models.Chunk) Record {
	return Record{c: c}
}

func (r Record) ID() string          { return r.c.ChunkID }
func (r Record) CaseID() string      { return r.c.CaseID }
func (r Record) DocumentID() string  { return r.c.DocumentID }
func (r Record) PageRange() [2]int   { return r.c.PageRange }
func (r Record) Speaker() string     { return r.c.Speaker }
func (r Record) Text() string        { return r.c.Text }
func (r Record) Confidence() float64 { return r.c.Confidence }

// MapChunk wraps a loosely-typed map, as produced by JSON decoding of
// upstream payloads. Missing or ill-typed fields resolve to tolerant
// defaults so one malformed chunk never aborts a whole run: strings default
// to "", confidence to 0 (which the confidence threshold then filters
// naturally), page range to [0,0].
type MapChunk struct {
	m map[string]any
}

// NewMapChunk returns an Accessor over a loosely-typed chunk map.
func NewMapChunk(m map[string]any) MapChunk {
	return MapChunk{m: m}
}

func (mc MapChunk) ID() string         { return stringField(mc.m, "chunk_id") }
func (mc MapChunk) CaseID() string     { return stringField(mc.m, "case_id") }
func (mc MapChunk) DocumentID() string { return stringField(mc.m, "document_id") }
func (mc MapChunk) Speaker() string    { return stringField(mc.m, "speaker") }
func (mc MapChunk) Text() string       { return stringField(mc.m, "text") }

func (mc MapChunk) Confidence() float64 {
	v, ok := mc.m["confidence"]
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

func (mc MapChunk) PageRange() [2]int {
	v, ok := mc.m["page_range"]
	if !ok {
		return [2]int{}
	}
	var pr [2]int
	switch seq := v.(type) {
	case []any:
		for i := 0; i < len(seq) && i < 2; i++ {
			pr[i] = intValue(seq[i])
		}
	case []int:
		for i := 0; i < len(seq) && i < 2; i++ {
			pr[i] = seq[i]
		}
	case [2]int:
		pr = seq
	}
	return pr
}

// Reference projects an accessor into the output-record form.
func Reference(a Accessor) models.ChunkReference {
	return models.ChunkReference{
		ChunkID:    a.ID(),
		CaseID:     a.CaseID(),
		DocumentID: a.DocumentID(),
		PageRange:  a.PageRange(),
		Speaker:    a.Speaker(),
		Text:       a.Text(),
	}
}

func stringField(m map[string]any, key string) string {
	v, ok := m[key]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return s
}

func intValue(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	case float32:
		return int(n)
	default:
		return 0
	}
}
