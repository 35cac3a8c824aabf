package services

import (
	"fmt"
	"strings"
)

// BuildAirportPrompt asks the model for exactly one JSON object mapping each
// side of the trip to its IATA codes. Run this at temperature 0 — the lookup
// must be deterministic.
func BuildAirportPrompt(source, destination string) string {
	return fmt.Sprintf(`[INST] You are an IATA airport code lookup service.
For each of the two locations below:
- If the input is already a 3-letter airport code, echo it back as a single-element list.
- If it is a city or region, list its major airports.
- If it is a country, pick the capital or a notable tourist city and list that city's major airports.

Reply with exactly one JSON object and nothing else — no commentary, no markdown.
Use the keys "source_airports" and "destination_airports". Each value must be an
array of uppercase 3-letter strings, ordered most relevant first.

Source: %q
Destination: %q [/INST]`, source, destination)
}

// BuildItineraryPrompt assembles the natural-language itinerary request. When
// a cheapest-flight airport was selected it is woven into the destination and,
// if any flight options exist, the model is told to plan from arrival there.
func BuildItineraryPrompt(
	source, destination, startDate, endDate string,
	budget float64,
	travelers int,
	interests string,
	selectedAirport string,
	hasFlights bool,
) string {
	dest := destination
	if selectedAirport != "" {
		dest = fmt.Sprintf("%s (arriving at airport %s)", destination, selectedAirport)
	}

	budgetText := "flexible"
	if budget > 0 {
		budgetText = fmt.Sprintf("$%.0f", budget)
	}

	if travelers <= 0 {
		travelers = 1
	}

	var b strings.Builder
	fmt.Fprintf(&b, `[INST] You are an expert travel planner. Create a detailed itinerary for this trip:

From: %s
To: %s
Dates: %s to %s
Budget: %s
Travelers: %d
`, source, dest, startDate, endDate, budgetText, travelers)

	if interests != "" {
		fmt.Fprintf(&b, "Interests: %s\n", interests)
	}

	if hasFlights {
		fmt.Fprintf(&b, "\nThe travelers arrive at %s airport — base the itinerary on arriving there.\n", selectedAirport)
	}

	b.WriteString(`
Do not include flight details in your answer; flights are presented separately.
Structure the plan day by day, starting at "Day 1". Use headers for: an
introduction, accommodation suggestions, transportation, a budget breakdown,
and travel and cultural tips. [/INST]`)

	return b.String()
}
