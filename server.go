package gatekeep

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/websocket"
)

// Server exposes the tracker over HTTP.
type Server struct {
	tracker *Tracker
	config  *Config
	router  *gin.Engine
}

// NewServer builds the router around the given tracker.
func NewServer(tracker *Tracker, config *Config) *Server {
	if !config.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		tracker: tracker,
		config:  config,
		router:  gin.New(),
	}
	s.router.Use(gin.Recovery(), requestLogger())
	s.registerRoutes()

	return s
}

// Router returns the underlying gin engine, mainly for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Run starts the HTTP server on the configured port.
func (s *Server) Run() error {
	log.Info().Str("Port", s.config.Port).Bool("Configured", s.config.Configured()).Msg("Server starting.")
	return s.router.Run("0.0.0.0:" + s.config.Port)
}

func (s *Server) registerRoutes() {
	api := s.router.Group("/api")
	{
		api.GET("/health", s.getHealth)
		api.GET("/sheets/validate", s.validateSheet)
		api.GET("/attendees", s.getAttendees)
		api.GET("/attendees/search", s.searchAttendees)
		api.POST("/attendees/:id/checkin", s.checkInAttendee)
		api.GET("/attendance/summary", s.getSummary)
		api.POST("/attendance/sync-from-sheet", s.syncFromSheet)
		api.GET("/attendance/live", s.liveFeed)
	}
}

// requestLogger emits one structured log line per request.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug().
			Str("Method", c.Request.Method).
			Str("Path", c.Request.URL.Path).
			Int("Status", c.Writer.Status()).
			Dur("Took", time.Since(start)).
			Msg("Request handled.")
	}
}

// statusFor maps a tracker error onto an HTTP status code.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrAuthentication):
		return http.StatusUnauthorized
	case errors.Is(err, ErrPermission):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrRateLimited), errors.Is(err, ErrServiceUnavailable), errors.Is(err, ErrNotConfigured):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrSheetIDRequired), errors.Is(err, ErrInvalidRequest), errors.Is(err, ErrInvalidRow):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) getAttendees(c *gin.Context) {
	sheetID := c.Query("sheetId")
	rng := c.Query("range")

	if s.config.Configured() && sheetID == "" && s.config.SheetID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Sheet ID is required. Provide sheetId as query parameter or set GOOGLE_SHEET_ID."})
		return
	}

	attendees, err := s.tracker.Attendees(c.Request.Context(), sheetID, rng)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": "Failed to fetch attendees: " + err.Error(), "errorCode": RemoteCode(err)})
		return
	}

	c.JSON(http.StatusOK, attendees)
}

func (s *Server) searchAttendees(c *gin.Context) {
	query := c.Query("query")
	sheetID := c.Query("sheetId")
	rng := c.Query("range")

	if s.config.Configured() && sheetID == "" && s.config.SheetID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Sheet ID is required. Provide sheetId as query parameter or set GOOGLE_SHEET_ID."})
		return
	}

	results, err := s.tracker.Search(c.Request.Context(), query, sheetID, rng)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": "Failed to search attendees: " + err.Error(), "errorCode": RemoteCode(err)})
		return
	}

	c.JSON(http.StatusOK, results)
}

func (s *Server) checkInAttendee(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid attendee ID"})
		return
	}

	body := struct {
		CheckedIn *bool  `json:"checkedIn"`
		SheetID   string `json:"sheetId"`
		Range     string `json:"range"`
	}{}
	if err := c.ShouldBindJSON(&body); err != nil || body.CheckedIn == nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "checkedIn must be a boolean"})
		return
	}

	result, err := s.tracker.SetCheckIn(c.Request.Context(), id, *body.CheckedIn, body.SheetID, body.Range)
	if err != nil {
		response := gin.H{
			"success":     false,
			"error":       err.Error(),
			"errorCode":   RemoteCode(err),
			"checkedIn":   result.CheckedIn,
			"checkInTime": result.CheckInTime,
		}
		if result.Warning != "" {
			response["warning"] = result.Warning
		}
		c.JSON(statusFor(err), response)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (s *Server) getSummary(c *gin.Context) {
	summary := s.tracker.Summary(c.Request.Context(), c.Query("sheetId"), c.Query("range"))
	c.JSON(http.StatusOK, summary)
}

func (s *Server) syncFromSheet(c *gin.Context) {
	body := struct {
		SheetID string `json:"sheetId"`
		Range   string `json:"range"`
	}{}
	// Body is optional; defaults cover the common case.
	c.ShouldBindJSON(&body)

	synced, err := s.tracker.SyncFromSheet(c.Request.Context(), body.SheetID, body.Range)
	switch {
	case errors.Is(err, ErrEmptySheet):
		c.JSON(http.StatusOK, gin.H{"message": "No data found in sheet"})
	case errors.Is(err, ErrColumnResolution):
		c.JSON(http.StatusOK, gin.H{"message": "No check-in status column found in sheet"})
	case errors.Is(err, ErrNotConfigured):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Grid access not configured",
			"message": "Cannot sync: grid integration is not set up",
			"fix":     "Set GOOGLE_API_TOKEN. Check /api/health for details.",
		})
	case errors.Is(err, ErrSheetIDRequired):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Sheet ID is required",
			"message": "Cannot sync: Sheet ID not provided",
			"fix":     "Provide sheetId in request body or set GOOGLE_SHEET_ID.",
		})
	case err != nil:
		c.JSON(statusFor(err), gin.H{"error": "Failed to sync from sheet: " + err.Error(), "errorCode": RemoteCode(err)})
	default:
		c.JSON(http.StatusOK, gin.H{
			"message":        "Synced " + strconv.Itoa(synced) + " check-ins from sheet",
			"totalCheckedIn": synced,
		})
	}
}

func (s *Server) getHealth(c *gin.Context) {
	health := gin.H{
		"status":                 "ok",
		"credentialsConfigured":  s.config.Configured(),
		"timestamp":              time.Now().UTC().Format(time.RFC3339),
		"liveListeners":          s.tracker.Live.Listeners(),
		"cachedCheckIns":         s.tracker.cache.Len(),
		"defaultSheetConfigured": s.config.SheetID != "",
	}

	if !s.config.Configured() {
		health["message"] = "Running in demo mode"
		c.JSON(http.StatusOK, health)
		return
	}

	health["message"] = "Grid credentials configured"
	if sheetID := c.Query("sheetId"); sheetID != "" {
		if err := s.tracker.ValidateAccess(c.Request.Context(), sheetID, c.Query("range")); err != nil {
			health["status"] = "degraded"
			health["sheetValidation"] = gin.H{"valid": false, "error": err.Error()}
		} else {
			health["sheetValidation"] = gin.H{"valid": true}
		}
	}

	c.JSON(http.StatusOK, health)
}

func (s *Server) validateSheet(c *gin.Context) {
	sheetID := c.Query("sheetId")
	if sheetID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"valid": false, "error": "sheetId is required"})
		return
	}

	rng := c.Query("range")
	if rng == "" {
		rng = s.config.Range
	}

	if err := s.tracker.ValidateAccess(c.Request.Context(), sheetID, rng); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"valid": false, "error": err.Error(), "sheetId": sheetID, "range": rng})
		return
	}

	c.JSON(http.StatusOK, gin.H{"valid": true, "message": "Sheet access validated successfully", "sheetId": sheetID, "range": rng})
}

func (s *Server) liveFeed(c *gin.Context) {
	if s.tracker.Live == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "live feed not enabled"})
		return
	}
	websocket.Handler(s.tracker.Live.Serve).ServeHTTP(c.Writer, c.Request)
}
