package handlers

import (
	"net/http"
	"wayfarer/database"

	"github.com/gin-gonic/gin"
)

func DownloadHandler(c *gin.Context) {
	if !database.Enabled() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Itinerary storage is not configured"})
		return
	}

	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing itinerary ID"})
		return
	}

	itinerary, err := database.GetItinerary(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Itinerary not found"})
		return
	}

	if len(itinerary.PDFData) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "PDF has not been generated for this itinerary"})
		return
	}

	c.Header("Content-Disposition", "attachment; filename=wayfarer-itinerary.pdf")
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "application/pdf", itinerary.PDFData)
}

func HealthHandler(c *gin.Context) {
	dbStatus := "disabled"
	if database.Enabled() {
		dbStatus = "ok"
		if err := database.DB.Ping(); err != nil {
			dbStatus = "error: " + err.Error()
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"service":  "Wayfarer API",
		"database": dbStatus,
	})
}
