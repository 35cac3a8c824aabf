package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"
	"wayfarer/database"
	"wayfarer/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type PlanRequest struct {
	Source         string  `json:"source"`
	Destination    string  `json:"destination"`
	StartDate      string  `json:"startDate"`
	EndDate        string  `json:"endDate"`
	Budget         float64 `json:"budget"`
	Travelers      int     `json:"travelers"`
	Interests      string  `json:"interests"`
	IncludeFlights bool    `json:"includeFlights"`
}

type airportCodes struct {
	Source      []string `json:"source"`
	Destination []string `json:"destination"`
}

type PlanResponse struct {
	AirportCodes        airportCodes            `json:"airportCodes"`
	SelectedAirportCode *string                 `json:"selectedAirportCode"`
	FlightData          []services.FlightOption `json:"flightData"`
	Itinerary           string                  `json:"itinerary"`
	PDFURL              string                  `json:"pdf_url,omitempty"`
}

// PlanHandler orchestrates the full pipeline: airport resolution, optional
// concurrent flight search, itinerary generation, optional persistence. Every
// failure surfaces as one {"error": ...} envelope; recoverable upstream
// trouble is absorbed by the fallback tiers below and never reaches here.
func PlanHandler(c *gin.Context) {
	var req PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	if req.Source == "" && req.Destination == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Provide a source or a destination"})
		return
	}

	for _, date := range []string{req.StartDate, req.EndDate} {
		if date == "" {
			continue
		}
		if _, err := time.Parse("2006-01-02", date); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format. Use YYYY-MM-DD"})
			return
		}
	}

	// The text-generation credential is the one hard requirement.
	ai := services.GetAIClient()
	if !ai.Configured() {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Text generation service is not configured"})
		return
	}

	// ── Airport resolution ────────────────────────────────────────────────────
	resolution := services.NewAirportResolver(ai).Resolve(req.Source, req.Destination)
	log.Printf("✅ Resolved airports: %v → %v", resolution.SourceAirports, resolution.DestinationAirports)

	// ── Flight search ─────────────────────────────────────────────────────────
	var flights []services.FlightOption
	selected := ""

	if req.IncludeFlights && len(resolution.SourceAirports) > 0 {
		flightClient := services.GetFlightClient()
		if flightClient.Configured() {
			flights, selected = services.AggregateFlights(
				flightClient,
				resolution.SourceAirports[0],
				resolution.DestinationAirports,
				req.StartDate,
			)
			log.Printf("✅ Flight search: %d options, selected airport %q", len(flights), selected)
		} else {
			log.Println("⚠️  Flight search requested but Amadeus is not configured — skipping")
		}
	}

	// ── Itinerary generation ──────────────────────────────────────────────────
	prompt := services.BuildItineraryPrompt(
		req.Source, req.Destination,
		req.StartDate, req.EndDate,
		req.Budget, req.Travelers, req.Interests,
		selected, len(flights) > 0,
	)

	itinerary, err := ai.Generate(prompt, 0.7, 1500)
	if err != nil {
		log.Printf("❌ Itinerary generation failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to generate itinerary: " + err.Error()})
		return
	}

	resp := PlanResponse{
		AirportCodes: airportCodes{
			Source:      resolution.SourceAirports,
			Destination: resolution.DestinationAirports,
		},
		FlightData: flights,
		Itinerary:  itinerary,
	}
	if selected != "" {
		resp.SelectedAirportCode = &selected
	}

	// ── Persist + PDF (best effort) ───────────────────────────────────────────
	if database.Enabled() {
		resp.PDFURL = persistItinerary(req, itinerary, flights)
	}

	c.JSON(http.StatusOK, resp)
}

// persistItinerary stores the finished itinerary with a rendered PDF and
// returns its download URL. Failures are logged and swallowed — the caller
// already has the itinerary in hand.
func persistItinerary(req PlanRequest, itinerary string, flights []services.FlightOption) string {
	var cheapest *services.FlightOption
	if len(flights) > 0 {
		cheapest = &flights[0]
	}

	pdfBytes, err := services.GeneratePDFBytes(services.PDFData{
		Source:      req.Source,
		Destination: req.Destination,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Travelers:   req.Travelers,
		Budget:      req.Budget,
		Itinerary:   itinerary,
		Cheapest:    cheapest,
	})
	if err != nil {
		log.Printf("❌ PDF generation failed: %v", err)
		return ""
	}

	flightsJSON, _ := json.Marshal(flights)

	id := uuid.New().String()
	record := &database.Itinerary{
		ID:          id,
		Source:      req.Source,
		Destination: req.Destination,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Itinerary:   itinerary,
		FlightsJSON: string(flightsJSON),
		PDFData:     pdfBytes,
	}
	if err := database.SaveItinerary(record); err != nil {
		log.Printf("❌ Failed to save itinerary: %v", err)
		return ""
	}

	log.Printf("✅ Itinerary %s saved (%d bytes of PDF)", id, len(pdfBytes))
	return "/api/download/" + id
}
