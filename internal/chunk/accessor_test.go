package chunk

import (
	"testing"

	"github.com/casetrace/evidence-analyzer/pkg/models"
)

func TestRecordAccessor(t *testing.T) {
	c := models.Chunk{
		ChunkID:    "chunk-1",
		CaseID:     "24-890-H",
		DocumentID: "doc-1",
		PageRange:  [2]int{3, 5},
		Speaker:    "Dana Cole",
		Text:       "I was at home.",
		Confidence: 0.93,
	}

	a := NewRecord(c)

	if a.ID() != "chunk-1" {
		t.Errorf("expected chunk-1, got %s", a.ID())
	}
	if a.CaseID() != "24-890-H" {
		t.Errorf("expected 24-890-H, got %s", a.CaseID())
	}
	if a.PageRange() != [2]int{3, 5} {
		t.Errorf("unexpected page range %v", a.PageRange())
	}
	if a.Confidence() != 0.93 {
		t.Errorf("expected 0.93, got %f", a.Confidence())
	}
}

func TestMapChunkAccessor(t *testing.T) {
	// Shapes the way encoding/json produces them: float64 numbers, []any.
	m := map[string]any{
		"chunk_id":    "chunk-2",
		"case_id":     "24-890-H",
		"document_id": "doc-2",
		"page_range":  []any{float64(1), float64(2)},
		"speaker":     "Ray Ortiz",
		"text":        "I saw Marcus at the scene.",
		"confidence":  0.91,
	}

	a := NewMapChunk(m)

	if a.ID() != "chunk-2" {
		t.Errorf("expected chunk-2, got %s", a.ID())
	}
	if a.Speaker() != "Ray Ortiz" {
		t.Errorf("expected Ray Ortiz, got %s", a.Speaker())
	}
	if a.PageRange() != [2]int{1, 2} {
		t.Errorf("unexpected page range %v", a.PageRange())
	}
	if a.Confidence() != 0.91 {
		t.Errorf("expected 0.91, got %f", a.Confidence())
	}
}

func TestMapChunkDefaults(t *testing.T) {
	a := NewMapChunk(map[string]any{})

	if a.ID() != "" {
		t.Errorf("expected empty id, got %q", a.ID())
	}
	if a.Text() != "" {
		t.Errorf("expected empty text, got %q", a.Text())
	}
	if a.Confidence() != 0 {
		t.Errorf("expected zero confidence, got %f", a.Confidence())
	}
	if a.PageRange() != [2]int{0, 0} {
		t.Errorf("expected zero page range, got %v", a.PageRange())
	}
}

func TestMapChunkIllTypedFields(t *testing.T) {
	a := NewMapChunk(map[string]any{
		"chunk_id":   42,
		"confidence": "0.8",
		"page_range": "3-4",
	})

	if a.ID() != "" {
		t.Errorf("expected empty id for non-string value, got %q", a.ID())
	}
	if a.Confidence() != 0.8 {
		t.Errorf("expected numeric string parsed to 0.8, got %f", a.Confidence())
	}
	if a.PageRange() != [2]int{0, 0} {
		t.Errorf("expected zero page range for non-list value, got %v", a.PageRange())
	}
}

func TestReference(t *testing.T) {
	c := models.Chunk{
		ChunkID:    "chunk-3",
		CaseID:     "24-891-H",
		DocumentID: "doc-3",
		PageRange:  [2]int{7, 7},
		Text:       "The report was filed at 9 PM.",
		Confidence: 0.5,
	}

	ref := Reference(NewRecord(c))

	if ref.ChunkID != c.ChunkID || ref.CaseID != c.CaseID || ref.Text != c.Text {
		t.Errorf("reference does not preserve provenance: %+v", ref)
	}
	if ref.PageRange != c.PageRange {
		t.Errorf("reference does not preserve page range: %v", ref.PageRange)
	}
}
