package services

import (
	"errors"
	"reflect"
	"testing"
)

// stubGenerator plays the upstream text model.
type stubGenerator struct {
	reply string
	err   error
	calls int
}

func (s *stubGenerator) Generate(prompt string, temperature float64, maxTokens int) (string, error) {
	s.calls++
	return s.reply, s.err
}

func TestResolveStructuredReply(t *testing.T) {
	gen := &stubGenerator{
		reply: "Sure! Here you go:\n" +
			`{"source_airports": ["fra", "muc"], "destination_airports": ["CDG"]}` +
			"\nLet me know if you need anything else.",
	}

	got := NewAirportResolver(gen).Resolve("Frankfurt", "Paris")

	if want := []string{"FRA", "MUC"}; !reflect.DeepEqual(got.SourceAirports, want) {
		t.Errorf("source = %v, want %v", got.SourceAirports, want)
	}
	if want := []string{"CDG"}; !reflect.DeepEqual(got.DestinationAirports, want) {
		t.Errorf("destination = %v, want %v", got.DestinationAirports, want)
	}
}

func TestResolveBareStringCoercion(t *testing.T) {
	gen := &stubGenerator{reply: `{"source_airports": "jfk", "destination_airports": ["lhr"]}`}

	got := NewAirportResolver(gen).Resolve("New York", "London")

	if want := []string{"JFK"}; !reflect.DeepEqual(got.SourceAirports, want) {
		t.Errorf("source = %v, want %v", got.SourceAirports, want)
	}
}

func TestResolveStructuredOneSideEmpty(t *testing.T) {
	// Parse succeeds with one usable key; the other side falls through to the
	// static table.
	gen := &stubGenerator{reply: `{"source_airports": ["VIE"], "destination_airports": []}`}

	got := NewAirportResolver(gen).Resolve("Vienna", "France")

	if want := []string{"VIE"}; !reflect.DeepEqual(got.SourceAirports, want) {
		t.Errorf("source = %v, want %v", got.SourceAirports, want)
	}
	if want := []string{"CDG", "ORY", "NCE", "LYS", "MRS"}; !reflect.DeepEqual(got.DestinationAirports, want) {
		t.Errorf("destination = %v, want %v", got.DestinationAirports, want)
	}
}

func TestResolveTokenFallback(t *testing.T) {
	// No parsable object anywhere: the 3-letter token scan kicks in, first
	// token to source, the rest to destination.
	gen := &stubGenerator{reply: "Depart from FRA, arrive at CDG, alternatively ORY."}

	got := NewAirportResolver(gen).Resolve("Frankfurt", "Paris")

	if want := []string{"FRA"}; !reflect.DeepEqual(got.SourceAirports, want) {
		t.Errorf("source = %v, want %v", got.SourceAirports, want)
	}
	if want := []string{"CDG", "ORY"}; !reflect.DeepEqual(got.DestinationAirports, want) {
		t.Errorf("destination = %v, want %v", got.DestinationAirports, want)
	}
}

func TestResolveTableFallbackOnUpstreamFailure(t *testing.T) {
	gen := &stubGenerator{err: errors.New("connection refused")}

	got := NewAirportResolver(gen).Resolve("Germany", "France")

	if want := []string{"FRA", "MUC", "BER", "DUS", "HAM"}; !reflect.DeepEqual(got.SourceAirports, want) {
		t.Errorf("source = %v, want %v", got.SourceAirports, want)
	}
	if want := []string{"CDG", "ORY", "NCE", "LYS", "MRS"}; !reflect.DeepEqual(got.DestinationAirports, want) {
		t.Errorf("destination = %v, want %v", got.DestinationAirports, want)
	}
}

func TestResolveLiteralCodeAndSubstitution(t *testing.T) {
	gen := &stubGenerator{err: errors.New("timeout")}

	got := NewAirportResolver(gen).Resolve("XYZ", "")

	if want := []string{"XYZ"}; !reflect.DeepEqual(got.SourceAirports, want) {
		t.Errorf("source = %v, want %v", got.SourceAirports, want)
	}
	// Nothing resolved the empty destination, so it borrows the source's code.
	if want := []string{"XYZ"}; !reflect.DeepEqual(got.DestinationAirports, want) {
		t.Errorf("destination = %v, want %v", got.DestinationAirports, want)
	}
}

func TestResolveBothInputsEmpty(t *testing.T) {
	gen := &stubGenerator{err: errors.New("down")}

	got := NewAirportResolver(gen).Resolve("", "")

	if len(got.SourceAirports) != 0 || len(got.DestinationAirports) != 0 {
		t.Errorf("expected both sides empty, got %v / %v",
			got.SourceAirports, got.DestinationAirports)
	}
}

func TestResolveIdempotent(t *testing.T) {
	gen := &stubGenerator{reply: `{"source_airports":["BER"],"destination_airports":["IST","SAW"]}`}
	r := NewAirportResolver(gen)

	first := r.Resolve("Berlin", "Istanbul")
	second := r.Resolve("Berlin", "Istanbul")

	if !reflect.DeepEqual(first, second) {
		t.Errorf("identical inputs and upstream behavior must resolve identically: %v vs %v", first, second)
	}
	if gen.calls != 2 {
		t.Errorf("expected exactly one upstream call per resolution, got %d total", gen.calls)
	}
}

func TestResolveCaseInsensitiveTableLookup(t *testing.T) {
	gen := &stubGenerator{reply: "no codes here, sorry"}

	got := NewAirportResolver(gen).Resolve("  GERMANY ", "japan")

	if want := []string{"FRA", "MUC", "BER", "DUS", "HAM"}; !reflect.DeepEqual(got.SourceAirports, want) {
		t.Errorf("source = %v, want %v", got.SourceAirports, want)
	}
	if want := []string{"HND", "NRT", "KIX"}; !reflect.DeepEqual(got.DestinationAirports, want) {
		t.Errorf("destination = %v, want %v", got.DestinationAirports, want)
	}
}
