package services

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// ─── Types ────────────────────────────────────────────────────────────────────

type FlightLeg struct {
	FromCode string `json:"from_code"`
	ToCode   string `json:"to_code"`
	FromName string `json:"from_name"`
	ToName   string `json:"to_name"`
}

// FlightOption is one normalized offer for one requested destination. Price is
// nil when the provider omitted it; such options sort after every priced one
// but are not dropped.
type FlightOption struct {
	DestinationCode string      `json:"destination_code"`
	DestinationName string      `json:"destination_name"`
	Price           *float64    `json:"price"`
	Currency        string      `json:"currency,omitempty"`
	DurationMinutes int         `json:"duration_minutes"`
	Airline         string      `json:"airline"`
	Legs            []FlightLeg `json:"legs"`
	DepartureTime   string      `json:"departure_time"`
	ArrivalTime     string      `json:"arrival_time"`
}

// FlightSearcher is what the aggregator fans out over; implemented by
// *FlightClient and by test mocks.
type FlightSearcher interface {
	SearchFlights(origin, destination, departureDate string) ([]FlightOption, error)
}

// ─── Aggregator ───────────────────────────────────────────────────────────────

// AggregateFlights issues one search per destination concurrently, each
// fault-isolated: a failed destination contributes nothing and is logged, the
// rest proceed. Results are flattened in destination request order, then
// stably sorted by price ascending (missing price last). The returned code is
// the cheapest option's destination, or "" when nothing came back.
func AggregateFlights(searcher FlightSearcher, origin string, destinations []string, departureDate string) ([]FlightOption, string) {
	if len(destinations) == 0 {
		return nil, ""
	}

	// One result slot per destination; each goroutine owns its slot, so the
	// join needs no mutex.
	results := make([][]FlightOption, len(destinations))
	var wg sync.WaitGroup

	for i, dest := range destinations {
		wg.Add(1)
		go func(i int, dest string) {
			defer wg.Done()
			options, err := searcher.SearchFlights(origin, dest, departureDate)
			if err != nil {
				log.Printf("⚠️  Flight search %s → %s failed: %v", origin, dest, err)
				return
			}
			results[i] = options
		}(i, dest)
	}
	wg.Wait()

	var flights []FlightOption
	for _, options := range results {
		flights = append(flights, options...)
	}

	sort.SliceStable(flights, func(a, b int) bool {
		return priceSortKey(flights[a]) < priceSortKey(flights[b])
	})

	if len(flights) == 0 {
		return nil, ""
	}
	return flights, flights[0].DestinationCode
}

func priceSortKey(f FlightOption) float64 {
	if f.Price == nil {
		return math.MaxFloat64
	}
	return *f.Price
}

// ─── Flight Client (Amadeus) ──────────────────────────────────────────────────

type FlightClient struct {
	clientID     string
	clientSecret string
	baseURL      string
	accessToken  string
	tokenExpiry  time.Time
	mu           sync.Mutex
	httpClient   *http.Client
}

var flightClient *FlightClient

func InitFlights() {
	env := os.Getenv("AMADEUS_ENV")
	baseURL := "https://api.amadeus.com" // production
	if env == "" || env == "test" {
		baseURL = "https://test.api.amadeus.com" // free test environment
	}

	flightClient = &FlightClient{
		clientID:     os.Getenv("AMADEUS_CLIENT_ID"),
		clientSecret: os.Getenv("AMADEUS_CLIENT_SECRET"),
		baseURL:      baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	if flightClient.clientID == "" || flightClient.clientSecret == "" {
		log.Println("⚠️  AMADEUS_CLIENT_ID or AMADEUS_CLIENT_SECRET not set — flight search will be skipped")
		return
	}

	if err := flightClient.refreshToken(); err != nil {
		log.Printf("⚠️  Amadeus token pre-warm failed: %v", err)
	} else {
		log.Println("✅ Amadeus API authenticated")
	}
}

func GetFlightClient() *FlightClient {
	return flightClient
}

// Configured reports whether flight-search credentials are present.
func (c *FlightClient) Configured() bool {
	return c != nil && c.clientID != "" && c.clientSecret != ""
}

func (c *FlightClient) refreshToken() error {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)

	req, err := http.NewRequest("POST",
		c.baseURL+"/v1/security/oauth2/token",
		strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("token request failed (%d): %s", resp.StatusCode, string(body))
	}

	var result struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("failed to parse token response: %v", err)
	}

	c.mu.Lock()
	c.accessToken = result.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(result.ExpiresIn-30) * time.Second)
	c.mu.Unlock()

	return nil
}

func (c *FlightClient) getToken() (string, error) {
	c.mu.Lock()
	expired := time.Now().After(c.tokenExpiry)
	token := c.accessToken
	c.mu.Unlock()

	if expired || token == "" {
		if err := c.refreshToken(); err != nil {
			return "", err
		}
		c.mu.Lock()
		token = c.accessToken
		c.mu.Unlock()
	}
	return token, nil
}

func (c *FlightClient) doRequest(path string) ([]byte, error) {
	token, err := c.getToken()
	if err != nil {
		return nil, fmt.Errorf("auth failed: %w", err)
	}

	req, err := http.NewRequest("GET", c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("amadeus error (%d): %s", resp.StatusCode, string(respBody))
	}
	return respBody, nil
}

// SearchFlights runs one one-way Flight Offers search for a single
// origin/destination pair.
func (c *FlightClient) SearchFlights(origin, destination, departureDate string) ([]FlightOption, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("amadeus not configured")
	}

	path := fmt.Sprintf(
		"/v2/shopping/flight-offers?originLocationCode=%s&destinationLocationCode=%s"+
			"&departureDate=%s&adults=1&max=5&currencyCode=USD",
		url.QueryEscape(origin),
		url.QueryEscape(destination),
		url.QueryEscape(departureDate),
	)

	body, err := c.doRequest(path)
	if err != nil {
		return nil, fmt.Errorf("flight search failed: %w", err)
	}

	return parseFlightOffers(body, destination)
}

// Amadeus Flight Offers response shape, reduced to what we read.
type flightOffersResponse struct {
	Data []struct {
		Price struct {
			GrandTotal string `json:"grandTotal"`
			Currency   string `json:"currency"`
		} `json:"price"`
		Itineraries []struct {
			Duration string `json:"duration"`
			Segments []struct {
				Departure struct {
					IataCode string `json:"iataCode"`
					At       string `json:"at"`
				} `json:"departure"`
				Arrival struct {
					IataCode string `json:"iataCode"`
					At       string `json:"at"`
				} `json:"arrival"`
				CarrierCode string `json:"carrierCode"`
			} `json:"segments"`
		} `json:"itineraries"`
	} `json:"data"`
}

// parseFlightOffers normalizes a provider response into FlightOptions. The
// requested destination code doubles as the arrival name — Amadeus offers
// carry codes only.
func parseFlightOffers(data []byte, destination string) ([]FlightOption, error) {
	var resp flightOffersResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse flight offers: %w", err)
	}

	options := make([]FlightOption, 0, len(resp.Data))

	for _, offer := range resp.Data {
		if len(offer.Itineraries) == 0 || len(offer.Itineraries[0].Segments) == 0 {
			continue
		}
		itinerary := offer.Itineraries[0]
		segments := itinerary.Segments

		legs := make([]FlightLeg, 0, len(segments))
		for _, seg := range segments {
			legs = append(legs, FlightLeg{
				FromCode: seg.Departure.IataCode,
				ToCode:   seg.Arrival.IataCode,
				FromName: seg.Departure.IataCode,
				ToName:   seg.Arrival.IataCode,
			})
		}
		if last := len(legs) - 1; legs[last].ToName == "" {
			legs[last].ToName = destination
		}

		option := FlightOption{
			DestinationCode: destination,
			DestinationName: destination,
			Price:           parsePriceAmount(offer.Price.GrandTotal),
			Currency:        offer.Price.Currency,
			DurationMinutes: parseDurationMinutes(itinerary.Duration),
			Airline:         airlineName(segments[0].CarrierCode),
			Legs:            legs,
			DepartureTime:   segments[0].Departure.At,
			ArrivalTime:     segments[len(segments)-1].Arrival.At,
		}
		options = append(options, option)
	}

	return options, nil
}

// ─── Helpers ──────────────────────────────────────────────────────────────────

// parseDurationMinutes converts an ISO 8601 duration (PT5H30M) to minutes.
func parseDurationMinutes(iso string) int {
	s := strings.TrimPrefix(iso, "PT")
	minutes := 0
	if hIdx := strings.Index(s, "H"); hIdx >= 0 {
		if h, err := strconv.Atoi(s[:hIdx]); err == nil {
			minutes += h * 60
		}
		s = s[hIdx+1:]
	}
	if mIdx := strings.Index(s, "M"); mIdx >= 0 {
		if m, err := strconv.Atoi(s[:mIdx]); err == nil {
			minutes += m
		}
	}
	return minutes
}

// parsePriceAmount parses a provider price string; nil when absent or not a
// number.
func parsePriceAmount(s string) *float64 {
	if s == "" {
		return nil
	}
	price, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &price
}

// airlineName returns the full airline name for an IATA carrier code.
func airlineName(code string) string {
	names := map[string]string{
		"TK": "Turkish Airlines",
		"LH": "Lufthansa",
		"AF": "Air France",
		"BA": "British Airways",
		"EK": "Emirates",
		"QR": "Qatar Airways",
		"PC": "Pegasus Airlines",
		"FR": "Ryanair",
		"U2": "EasyJet",
		"W6": "Wizz Air",
		"FZ": "FlyDubai",
		"HY": "Uzbekistan Airways",
		"UA": "United Airlines",
		"AA": "American Airlines",
		"DL": "Delta Air Lines",
		"KL": "KLM",
		"IB": "Iberia",
		"AZ": "ITA Airways",
		"OS": "Austrian Airlines",
		"LX": "Swiss International Air Lines",
		"SQ": "Singapore Airlines",
		"CX": "Cathay Pacific",
		"NH": "ANA",
		"JL": "Japan Airlines",
		"EY": "Etihad Airways",
		"MS": "EgyptAir",
		"ET": "Ethiopian Airlines",
	}
	if name, ok := names[code]; ok {
		return name
	}
	if code != "" {
		return code + " Airlines"
	}
	return "Unknown Airline"
}
