package nli

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHeuristicClassifier_Contradiction(t *testing.T) {
	c := NewHeuristicClassifier()

	label, conf, err := c.Classify(context.Background(),
		"Marcus was at the warehouse on Friday night.",
		"Marcus was not at the warehouse on Friday night.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if label != LabelContradiction {
		t.Errorf("expected contradiction, got %s", label)
	}
	if conf < 0.5 || conf > 1 {
		t.Errorf("confidence out of range: %f", conf)
	}
}

func TestHeuristicClassifier_Entailment(t *testing.T) {
	c := NewHeuristicClassifier()

	label, _, err := c.Classify(context.Background(),
		"Marcus left the bar at nine.",
		"Marcus left the bar at nine with Dana.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if label != LabelEntailment {
		t.Errorf("expected entailment, got %s", label)
	}
}

func TestHeuristicClassifier_Neutral(t *testing.T) {
	c := NewHeuristicClassifier()

	label, _, err := c.Classify(context.Background(),
		"The invoice arrived on Tuesday.",
		"Marcus owns a gray sedan.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if label != LabelNeutral {
		t.Errorf("expected neutral, got %s", label)
	}
}

func TestHeuristicClassifier_Deterministic(t *testing.T) {
	c := NewHeuristicClassifier()
	textA := "Marcus was at the warehouse at 9 PM."
	textB := "Marcus was never at the warehouse."

	firstLabel, firstConf, _ := c.Classify(context.Background(), textA, textB)
	for i := 0; i < 100; i++ {
		label, conf, _ := c.Classify(context.Background(), textA, textB)
		if label != firstLabel || conf != firstConf {
			t.Fatalf("run %d diverged: %s/%f vs %s/%f", i, label, conf, firstLabel, firstConf)
		}
	}
}

func TestClaudeClassifier_Classify(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/messages" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		resp := map[string]any{
			"content": []map[string]string{
				{"text": `{"label": "contradiction", "confidence": 0.88}`},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	c := NewClaudeClassifier(ClaudeConfig{APIKey: "test", BaseURL: srv.URL})

	label, conf, err := c.Classify(context.Background(), "a", "b")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if label != LabelContradiction {
		t.Errorf("expected contradiction, got %s", label)
	}
	if conf != 0.88 {
		t.Errorf("expected 0.88, got %f", conf)
	}
}

func TestClaudeClassifier_RejectsUnknownLabel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]any{
			"content": []map[string]string{
				{"text": `{"label": "maybe", "confidence": 0.5}`},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	c := NewClaudeClassifier(ClaudeConfig{APIKey: "test", BaseURL: srv.URL})

	if _, _, err := c.Classify(context.Background(), "a", "b"); err == nil {
		t.Error("expected error for unrecognized label")
	}
}
