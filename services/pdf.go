package services

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

type PDFData struct {
	Source      string
	Destination string
	StartDate   string
	EndDate     string
	Travelers   int
	Budget      float64
	Itinerary   string
	Cheapest    *FlightOption // nil when no flight options were found
}

// GeneratePDFBytes renders the itinerary as a PDF and returns raw bytes
// (stored in the database, no filesystem needed).
func GeneratePDFBytes(data PDFData) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()

	// ── Header Bar ───────────────────────────────────────────
	pdf.SetFillColor(13, 24, 37)
	pdf.Rect(0, 0, 210, 28, "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 18)
	pdf.SetXY(20, 8)
	pdf.CellFormat(100, 10, "Wayfarer", "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(212, 168, 67)
	pdf.SetXY(20, 18)
	pdf.CellFormat(170, 6, "AI-Generated Travel Itinerary", "", 1, "L", false, 0, "")

	pdf.SetY(35)
	pdf.SetTextColor(0, 0, 0)

	// ── Section Helper ───────────────────────────────────────
	sectionHeader := func(title string) {
		pdf.SetFillColor(13, 24, 37)
		pdf.SetTextColor(255, 255, 255)
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(170, 8, "  "+title, "", 1, "L", true, 0, "")
		pdf.SetTextColor(0, 0, 0)
		pdf.Ln(2)
	}

	row := func(label, value string) {
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetTextColor(100, 100, 100)
		pdf.CellFormat(55, 7, label, "", 0, "L", false, 0, "")
		pdf.SetTextColor(20, 20, 20)
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(115, 7, value, "", 1, "L", false, 0, "")
	}

	// ── Trip Overview ─────────────────────────────────────────
	sectionHeader("Trip Overview")
	row("Route", fmt.Sprintf("%s → %s", data.Source, data.Destination))
	row("Dates", fmt.Sprintf("%s to %s", fmtDateReadable(data.StartDate), fmtDateReadable(data.EndDate)))
	if data.Travelers > 0 {
		row("Travelers", fmt.Sprintf("%d", data.Travelers))
	}
	if data.Budget > 0 {
		row("Budget", fmt.Sprintf("$%.0f", data.Budget))
	}
	row("Generated", time.Now().Format("02 Jan 2006, 15:04 UTC"))
	pdf.Ln(4)

	// ── Cheapest Flight ───────────────────────────────────────
	if f := data.Cheapest; f != nil {
		sectionHeader("Cheapest Flight Found")
		row("Airline", f.Airline)
		row("Arrival airport", f.DestinationCode)
		row("Times", formatFlightTimes(f.DepartureTime, f.ArrivalTime, f.DurationMinutes))
		if f.Price != nil {
			row("Price", fmt.Sprintf("$%.0f per person", *f.Price))
		} else {
			row("Price", "not provided")
		}
		pdf.Ln(4)
	}

	// ── Itinerary ─────────────────────────────────────────────
	sectionHeader("Itinerary")
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(40, 40, 40)
	pdf.MultiCell(170, 5, data.Itinerary, "", "L", false)
	pdf.Ln(4)

	// ── Footer ────────────────────────────────────────────────
	pdf.SetY(-22)
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.3)
	pdf.Line(20, pdf.GetY(), 190, pdf.GetY())
	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(150, 150, 150)
	pdf.CellFormat(0, 8,
		"Generated by Wayfarer · Not a booking confirmation · Prices subject to change",
		"", 0, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("PDF output failed: %w", err)
	}
	return buf.Bytes(), nil
}

func fmtDateReadable(iso string) string {
	t, err := time.Parse("2006-01-02", iso)
	if err != nil {
		return iso
	}
	return t.Format("02 Jan 2006 (Mon)")
}

func formatFlightTimes(dep, arr string, durationMinutes int) string {
	depT, err1 := time.Parse("2006-01-02T15:04:05", dep)
	arrT, err2 := time.Parse("2006-01-02T15:04:05", arr)
	if err1 != nil || err2 != nil {
		if dep != "" && arr != "" {
			return dep + " → " + arr
		}
		return "N/A"
	}
	result := fmt.Sprintf("%s → %s",
		depT.Format("02 Jan 15:04"),
		arrT.Format("02 Jan 15:04"))
	if durationMinutes > 0 {
		result += fmt.Sprintf(" (%dh %02dm)", durationMinutes/60, durationMinutes%60)
	}
	return result
}
