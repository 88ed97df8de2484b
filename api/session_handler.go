package api

import (
	"net/http"
	"time"

	"github.com/seenimoa/bonosportal/internal/apierr"
	"github.com/seenimoa/bonosportal/internal/config"
	"github.com/seenimoa/bonosportal/internal/guard"
	"github.com/seenimoa/bonosportal/internal/session"
	"github.com/seenimoa/bonosportal/pkg/models"
)

// SessionInfo is the public view of the session. The token is masked.
type SessionInfo struct {
	Authenticated bool       `json:"authenticated"`
	ID            int64      `json:"id,omitempty"`
	Username      string     `json:"username,omitempty"`
	Roles         []string   `json:"roles"`
	PrimaryRole   string     `json:"primaryRole,omitempty"`
	Token         string     `json:"token,omitempty"`
	ExpiresAt     *time.Time `json:"expiresAt,omitempty"`
}

// LoginResponse is returned by POST /session/login.
type LoginResponse struct {
	Session SessionInfo `json:"session"`
	Warning string      `json:"warning,omitempty"`
}

// HomeResponse is returned by GET /home.
type HomeResponse struct {
	Session SessionInfo `json:"session"`
	Areas   []string    `json:"areas"`
}

func (s *Server) sessionInfo() SessionInfo {
	return describeIdentity(s.svc.Session.Current())
}

func (s *Server) sessionEvent(ev session.Event) map[string]interface{} {
	return map[string]interface{}{
		"reason":  ev.Reason,
		"session": describeIdentity(ev.Identity),
	}
}

func describeIdentity(id *models.Identity) SessionInfo {
	info := SessionInfo{Roles: []string{}}
	if id == nil {
		return info
	}
	info.Authenticated = id.Token != ""
	info.ID = id.ID
	info.Username = id.Username
	info.Roles = append(info.Roles, id.Roles...)
	if len(id.Roles) > 0 {
		info.PrimaryRole = id.Roles[0]
	}
	if id.Token == "" {
		return info
	}
	info.Token = config.MaskToken(id.Token)
	if exp, err := session.TokenExpiry(id.Token); err == nil {
		info.ExpiresAt = &exp
	}
	return info
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	data := map[string]interface{}{
		"status":        "ok",
		"version":       s.version,
		"backend":       s.cfg.API.BaseURL,
		"authenticated": s.svc.Session.IsAuthenticated(),
		"busy":          s.loading.Active(),
	}
	if s.svc.Health != nil {
		h, err := s.svc.Health.Health(r.Context())
		if err != nil {
			data["backend_status"] = "DOWN"
			data["backend_error"] = apierr.UserMessage(err)
		} else {
			data["backend_status"] = h.Status
			data["backend_via"] = h.Via
			data["backend_elapsed_ms"] = h.ElapsedMS
		}
	}
	writeData(w, http.StatusOK, data)
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusUnauthorized, APIResponse{
		Success: false,
		Data:    s.sessionInfo(),
		Error:   "Inicia sesión con POST /session/login",
	})
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	areas := []string{}
	if guard.Issuer().Check(s.svc.Session).Allow {
		areas = append(areas, "/emisor/bonos")
	}
	if guard.Investor().Check(s.svc.Session).Allow {
		areas = append(areas, "/inversor/catalogo", "/inversor/calculos")
	}
	writeData(w, http.StatusOK, HomeResponse{Session: s.sessionInfo(), Areas: areas})
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, s.sessionInfo())
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds models.Credentials
	if err := decodeBody(r, &creds); err != nil {
		s.writeFailure(w, r, err)
		return
	}
	if creds.Username == "" || creds.Password == "" {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	res, err := s.svc.Session.SignIn(r.Context(), creds)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	resp := LoginResponse{Session: describeIdentity(res.Identity)}
	if res.Warning != nil {
		resp.Warning = "Sesión iniciada sin perfil: " + res.Warning.Error()
	}
	writeData(w, http.StatusOK, resp)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var data models.SignUpData
	if err := decodeBody(r, &data); err != nil {
		s.writeFailure(w, r, err)
		return
	}
	if data.Username == "" || data.Password == "" {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	id, err := s.svc.Session.SignUp(r.Context(), data)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, describeIdentity(id))
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.svc.Session.Logout()
	writeData(w, http.StatusOK, s.sessionInfo())
}
