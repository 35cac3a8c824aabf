package services

import (
	"reflect"
	"testing"
)

func TestExtractJSONCandidate(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		want  string
		found bool
	}{
		{
			name:  "object with surrounding commentary",
			text:  `here is it: {"a":1} thanks`,
			want:  `{"a":1}`,
			found: true,
		},
		{
			name:  "brace inside quoted string does not terminate early",
			text:  `{"note":"a{b}c","x":1}`,
			want:  `{"note":"a{b}c","x":1}`,
			found: true,
		},
		{
			name:  "escaped quote does not toggle string mode",
			text:  `{"note":"say \"hi\" {ok}","x":1} trailing`,
			want:  `{"note":"say \"hi\" {ok}","x":1}`,
			found: true,
		},
		{
			name:  "nested objects",
			text:  "result: {\"outer\":{\"inner\":2}} done",
			want:  `{"outer":{"inner":2}}`,
			found: true,
		},
		{
			name:  "markdown fenced reply",
			text:  "```json\n{\"source_airports\":[\"FRA\"]}\n```",
			want:  `{"source_airports":["FRA"]}`,
			found: true,
		},
		{
			name:  "no opening brace",
			text:  "sorry, I cannot help with that",
			found: false,
		},
		{
			name:  "never balances",
			text:  `{"a": {"b": 1}`,
			found: false,
		},
		{
			name:  "empty input",
			text:  "",
			found: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := ExtractJSONCandidate(tt.text)
			if found != tt.found {
				t.Fatalf("found = %v, want %v", found, tt.found)
			}
			if got != tt.want {
				t.Errorf("candidate = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseCandidate(t *testing.T) {
	parsed, ok := parseCandidate(`{"source_airports":["fra","muc"]}`)
	if !ok {
		t.Fatal("expected successful parse")
	}
	if _, exists := parsed["source_airports"]; !exists {
		t.Error("expected source_airports key")
	}

	if _, ok := parseCandidate(`{"broken": `); ok {
		t.Error("malformed candidate must report no result, not parse")
	}
	if _, ok := parseCandidate(""); ok {
		t.Error("missing candidate must report no result")
	}
	if _, ok := parseCandidate(`["not","an","object"]`); ok {
		t.Error("non-object JSON must report no result")
	}
}

func TestExtractCodeTokens(t *testing.T) {
	// Only capitalized runs qualify; "Fly", "the" and "hub" must not.
	got := ExtractCodeTokens("Fly from NYC to the CDG hub, LAX also possible")
	want := []string{"NYC", "CDG", "LAX"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("tokens = %v, want %v", got, want)
	}
}

func TestExtractCodeTokensDedupAndBoundaries(t *testing.T) {
	got := ExtractCodeTokens("JFK or JFK again, maybe JFKX, ab, abcd, try LHR")
	want := []string{"JFK", "LHR"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("tokens = %v, want %v", got, want)
	}

	if got := ExtractCodeTokens("fly from nyc to cdg"); len(got) != 0 {
		t.Errorf("lowercase words must never become codes, got %v", got)
	}

	if got := ExtractCodeTokens(""); len(got) != 0 {
		t.Errorf("expected no tokens from empty text, got %v", got)
	}
}
