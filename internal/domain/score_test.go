package domain

import (
	"encoding/json"
	"testing"
)

func TestSubscore_MarshalNullWhenAbsent(t *testing.T) {
	data, err := json.Marshal(SubscoreNone())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "null" {
		t.Errorf("absent subscore: got %s, want null", data)
	}
}

func TestSubscore_MarshalZeroIsNotNull(t *testing.T) {
	data, err := json.Marshal(NewSubscore(0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "0" {
		t.Errorf("computed zero subscore: got %s, want 0", data)
	}
}

func TestSubscore_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		in   Subscore
	}{
		{"absent", SubscoreNone()},
		{"zero", NewSubscore(0)},
		{"mid", NewSubscore(0.73)},
		{"one", NewSubscore(1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.in)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			var out Subscore
			if err := json.Unmarshal(data, &out); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if out.Computed() != tt.in.Computed() || out.Value() != tt.in.Value() {
				t.Errorf("round trip changed subscore: got (%v, %v), want (%v, %v)",
					out.Value(), out.Computed(), tt.in.Value(), tt.in.Computed())
			}
		})
	}
}

func TestBreakdown_AbsentFieldsMarshalNull(t *testing.T) {
	b := Breakdown{
		Keyframes: NewSubscore(0.9),
		Audio:     NewSubscore(0),
	}
	data, err := json.Marshal(b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if string(raw["keyframes"]) != "0.9" {
		t.Errorf("keyframes: got %s, want 0.9", raw["keyframes"])
	}
	if string(raw["audio"]) != "0" {
		t.Errorf("audio: got %s, want 0", raw["audio"])
	}
	if string(raw["ocr"]) != "null" {
		t.Errorf("ocr: got %s, want null", raw["ocr"])
	}
	if string(raw["semantic"]) != "null" {
		t.Errorf("semantic: got %s, want null", raw["semantic"])
	}
}

func TestContentDescriptor_Scorable(t *testing.T) {
	tests := []struct {
		name string
		d    ContentDescriptor
		want bool
	}{
		{"empty", ContentDescriptor{ID: "a"}, false},
		{"text only", ContentDescriptor{ID: "a", Title: "clip", Description: "desc"}, false},
		{"perceptual", ContentDescriptor{ID: "a", Perceptual: &PerceptualHash{}}, true},
		{"audio", ContentDescriptor{ID: "a", Audio: &AudioFingerprint{}}, true},
		{"frames", ContentDescriptor{ID: "a", Frames: []FrameSample{{Hash: "ff"}}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.d.Scorable(); got != tt.want {
				t.Errorf("Scorable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestContentDescriptor_Text(t *testing.T) {
	d := ContentDescriptor{Title: "My Clip", Description: "A description."}
	if got := d.Text(); got != "My Clip\nA description." {
		t.Errorf("Text() = %q", got)
	}

	if got := (ContentDescriptor{Title: "only title"}).Text(); got != "only title" {
		t.Errorf("title only: got %q", got)
	}
	if got := (ContentDescriptor{Description: "only desc"}).Text(); got != "only desc" {
		t.Errorf("description only: got %q", got)
	}
	if got := (ContentDescriptor{}).Text(); got != "" {
		t.Errorf("empty: got %q", got)
	}
}
