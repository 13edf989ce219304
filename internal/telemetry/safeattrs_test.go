package telemetry

import (
	"testing"
)

func TestSafeAttributesFiltersEvidence(t *testing.T) {
	kvs := map[string]interface{}{
		"filename":      "should drop",
		"source_url":    "drop",
		"api_key":       "sk-123",
		"token":         "abc",
		"media_type":    "image",
		"long_string":   string(make([]byte, 600)),
		"short_string":  "fine",
		"analysis_id":   "a-1",
		"authorization": "secret",
	}

	attrs := SafeAttributes(kvs)
	for _, a := range attrs {
		if a.Key == "filename" || a.Key == "source_url" || a.Key == "api_key" || a.Key == "authorization" || a.Key == "token" {
			t.Fatalf("unexpected unsafe attribute %s", a.Key)
		}
		if a.Key == "long_string" {
			t.Fatalf("expected long string to be skipped")
		}
	}
}

func TestSafeAttributesKeepsScalars(t *testing.T) {
	attrs := SafeAttributes(map[string]interface{}{
		"signal_count": 4,
		"flagged":      true,
		"risk_score":   81.0,
	})
	if len(attrs) != 3 {
		t.Fatalf("expected 3 attributes, got %d", len(attrs))
	}
}
