package services

import (
	"fmt"
	"log"
	"strings"
)

// TextGenerator is the upstream model dependency of the resolver, satisfied by
// *AIClient and by test stubs.
type TextGenerator interface {
	Generate(prompt string, temperature float64, maxTokens int) (string, error)
}

// AirportResolution carries the resolved IATA codes for both sides of a trip,
// most relevant first. After Resolve both sides are non-empty whenever at
// least one side resolved by any tier.
type AirportResolution struct {
	SourceAirports      []string `json:"source"`
	DestinationAirports []string `json:"destination"`
}

// AirportResolver turns free-text locations into IATA codes. The model reply
// is untrusted: the resolver works through an ordered chain of fallback tiers
// (strict JSON extraction, a 3-letter token scan, a literal code echo, the
// static country table, cross-side substitution) and takes the first tier that
// yields anything. No failure escapes; every dead end degrades to the next
// tier with a logged warning.
type AirportResolver struct {
	ai TextGenerator
}

func NewAirportResolver(ai TextGenerator) *AirportResolver {
	return &AirportResolver{ai: ai}
}

// Resolve maps the raw source and destination strings to airport code lists.
func (r *AirportResolver) Resolve(source, destination string) AirportResolution {
	raw := ""
	if r.ai != nil {
		text, err := r.ai.Generate(BuildAirportPrompt(source, destination), 0.0, 300)
		if err != nil {
			log.Printf("⚠️  Airport lookup call failed: %v — falling back", err)
		} else {
			raw = text
		}
	}

	src, dst := structuredCodes(raw)
	if len(src) == 0 && len(dst) == 0 {
		src, dst = tokenSplitCodes(raw)
	}

	if len(src) == 0 {
		src = localCodes(source)
	}
	if len(dst) == 0 {
		dst = localCodes(destination)
	}

	// Last tier: borrow the other side's best code so neither side comes back
	// empty when anything at all resolved.
	if len(src) == 0 && len(dst) > 0 {
		src = []string{dst[0]}
	}
	if len(dst) == 0 && len(src) > 0 {
		dst = []string{src[0]}
	}

	return AirportResolution{SourceAirports: src, DestinationAirports: dst}
}

// structuredCodes extracts the first balanced JSON object from the model reply
// and coerces its airport keys into code lists. Both lists come back empty
// when no structured result was obtained.
func structuredCodes(raw string) (src, dst []string) {
	candidate, found := ExtractJSONCandidate(raw)
	if !found {
		return nil, nil
	}

	parsed, ok := parseCandidate(candidate)
	if !ok {
		return nil, nil
	}

	return coerceCodes(parsed["source_airports"]), coerceCodes(parsed["destination_airports"])
}

// coerceCodes forces a parsed JSON value into an uppercase string list: arrays
// element-wise, a bare string as a single element, anything else as empty.
func coerceCodes(v any) []string {
	switch t := v.(type) {
	case []any:
		codes := make([]string, 0, len(t))
		for _, e := range t {
			codes = append(codes, strings.ToUpper(fmt.Sprint(e)))
		}
		return codes
	case string:
		return []string{strings.ToUpper(t)}
	}
	return nil
}

// tokenSplitCodes scans the raw reply for 3-letter tokens when no structured
// result came through. The first token becomes the source and the rest the
// destinations. That split is a deliberately naive heuristic: freeform text
// gives no way to tell which side a mentioned airport belongs to.
func tokenSplitCodes(raw string) (src, dst []string) {
	tokens := ExtractCodeTokens(raw)
	if len(tokens) < 2 {
		return nil, nil
	}
	log.Printf("⚠️  No structured airport data in AI reply — splitting %d scanned tokens", len(tokens))
	return tokens[:1], tokens[1:]
}

// localCodes resolves one side without the model: a trimmed 3-letter input is
// taken as a literal code, otherwise the static country table is consulted.
func localCodes(input string) []string {
	trimmed := strings.TrimSpace(input)
	if validCodeRe.MatchString(strings.ToUpper(trimmed)) {
		return []string{strings.ToUpper(trimmed)}
	}

	if codes, ok := countryAirports[strings.ToLower(trimmed)]; ok {
		return codes
	}
	return nil
}

// countryAirports maps lowercase country and major-city names to their
// representative IATA codes, most relevant first. Read-only after startup;
// concurrent requests read it without synchronization.
var countryAirports = map[string][]string{
	"germany":        {"FRA", "MUC", "BER", "DUS", "HAM"},
	"france":         {"CDG", "ORY", "NCE", "LYS", "MRS"},
	"united kingdom": {"LHR", "LGW", "STN", "MAN", "EDI"},
	"uk":             {"LHR", "LGW", "STN", "MAN", "EDI"},
	"england":        {"LHR", "LGW", "STN", "MAN"},
	"london":         {"LHR", "LGW", "STN", "LTN", "LCY"},
	"paris":          {"CDG", "ORY"},
	"spain":          {"MAD", "BCN", "AGP", "PMI"},
	"italy":          {"FCO", "MXP", "VCE", "NAP"},
	"portugal":       {"LIS", "OPO", "FAO"},
	"netherlands":    {"AMS", "EIN", "RTM"},
	"switzerland":    {"ZRH", "GVA", "BSL"},
	"austria":        {"VIE", "SZG", "INN"},
	"greece":         {"ATH", "SKG", "HER"},
	"poland":         {"WAW", "KRK", "GDN"},
	"czech republic": {"PRG", "BRQ"},
	"ireland":        {"DUB", "ORK", "SNN"},
	"norway":         {"OSL", "BGO", "TRD"},
	"sweden":         {"ARN", "GOT", "MMX"},
	"denmark":        {"CPH", "AAL", "BLL"},
	"finland":        {"HEL", "TMP"},
	"turkey":         {"IST", "SAW", "AYT", "ESB"},
	"istanbul":       {"IST", "SAW"},
	"russia":         {"SVO", "DME", "LED"},
	"united states":  {"JFK", "LAX", "ORD", "MIA", "SFO"},
	"usa":            {"JFK", "LAX", "ORD", "MIA", "SFO"},
	"new york":       {"JFK", "LGA", "EWR"},
	"canada":         {"YYZ", "YVR", "YUL"},
	"mexico":         {"MEX", "CUN", "GDL"},
	"brazil":         {"GRU", "GIG", "BSB"},
	"argentina":      {"EZE", "AEP"},
	"japan":          {"HND", "NRT", "KIX"},
	"tokyo":          {"HND", "NRT"},
	"china":          {"PEK", "PVG", "CAN", "SZX"},
	"south korea":    {"ICN", "GMP", "PUS"},
	"india":          {"DEL", "BOM", "BLR", "MAA"},
	"thailand":       {"BKK", "DMK", "HKT", "CNX"},
	"vietnam":        {"SGN", "HAN", "DAD"},
	"indonesia":      {"CGK", "DPS", "SUB"},
	"malaysia":       {"KUL", "PEN", "BKI"},
	"singapore":      {"SIN"},
	"philippines":    {"MNL", "CEB"},
	"australia":      {"SYD", "MEL", "BNE", "PER"},
	"new zealand":    {"AKL", "WLG", "CHC"},
	"uae":            {"DXB", "AUH", "SHJ"},
	"united arab emirates": {"DXB", "AUH", "SHJ"},
	"dubai":          {"DXB", "DWC"},
	"qatar":          {"DOH"},
	"saudi arabia":   {"JED", "RUH", "DMM"},
	"israel":         {"TLV"},
	"egypt":          {"CAI", "HRG", "SSH"},
	"morocco":        {"CMN", "RAK", "AGA"},
	"south africa":   {"JNB", "CPT", "DUR"},
	"kenya":          {"NBO", "MBA"},
	"ethiopia":       {"ADD"},
	"uzbekistan":     {"TAS", "SKD", "BHK"},
	"kazakhstan":     {"ALA", "NQZ"},
}
