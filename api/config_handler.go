package api

import (
	"net/http"
)

// ConfigResponse is the running configuration as returned by GET /config.
type ConfigResponse struct {
	BaseURL       string   `json:"base_url"`
	Timeout       string   `json:"timeout"`
	RateLimit     float64  `json:"rate_limit"`
	RateBurst     int      `json:"rate_burst"`
	BatchLimit    int      `json:"batch_limit"`
	SessionDB     string   `json:"session_db"`
	Ephemeral     bool     `json:"ephemeral"`
	DerivedWindow string   `json:"derived_window"`
	CatalogTTL    string   `json:"catalog_ttl"`
	GatewayAddr   string   `json:"gateway_addr"`
	CORSOrigins   []string `json:"cors_origins"`
	LogLevel      string   `json:"log_level"`
	LogFormat     string   `json:"log_format"`
}

// handleGetConfig returns the running configuration. The session token is
// never part of it.
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	c := s.cfg
	writeData(w, http.StatusOK, ConfigResponse{
		BaseURL:       c.API.BaseURL,
		Timeout:       c.API.Timeout.String(),
		RateLimit:     c.API.RateLimit,
		RateBurst:     c.API.RateBurst,
		BatchLimit:    c.API.BatchLimit,
		SessionDB:     c.Session.DBPath,
		Ephemeral:     c.Session.Ephemeral,
		DerivedWindow: c.Cache.DerivedWindow.String(),
		CatalogTTL:    c.Cache.CatalogTTL.String(),
		GatewayAddr:   c.Gateway.Addr(),
		CORSOrigins:   c.Gateway.CORSOrigins,
		LogLevel:      c.Logging.Level,
		LogFormat:     c.Logging.Format,
	})
}
