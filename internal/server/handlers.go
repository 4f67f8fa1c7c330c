package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/theirongolddev/tripbudget/internal/auth"
	"github.com/theirongolddev/tripbudget/internal/form"
	"github.com/theirongolddev/tripbudget/internal/logging"
	"github.com/theirongolddev/tripbudget/internal/model"
	"github.com/theirongolddev/tripbudget/internal/trips"
)

const maxBodyBytes = 1 << 20

type errorBody struct {
	Error  string           `json:"error"`
	Fields form.FieldErrors `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) handleListTrips(w http.ResponseWriter, r *http.Request) {
	list := s.trips.List()
	if q := r.URL.Query().Get("destination"); q != "" {
		list = trips.FilterByDestination(list, q)
	}
	if list == nil {
		list = []model.TripPlan{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleCreateTrip(w http.ResponseWriter, r *http.Request) {
	var body form.RawTrip
	if !decodeBody(w, r, &body) {
		return
	}

	req, errs := form.ParseTrip(body.Input())
	if !errs.Empty() {
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: "validation failed", Fields: errs})
		return
	}

	plan := s.trips.Create(req)
	logFor(r, s.log).Info("trip created",
		"trip_id", plan.ID,
		"destination", plan.Destination,
		"total", plan.TotalEstimated,
		"sufficient", plan.IsSufficient,
	)
	s.emit(EventTripCreated, &plan)

	w.Header().Set("Location", "/v1/trips/"+plan.ID)
	writeJSON(w, http.StatusCreated, plan)
}

func (s *Server) handleGetTrip(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	plan, ok := s.trips.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "trip not found: "+id)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (s *Server) handleCurrentTrip(w http.ResponseWriter, _ *http.Request) {
	plan, ok := s.trips.Current()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (s *Server) handleSelectTrip(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ID string `json:"id"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	if plan, ok := s.trips.Get(body.ID); ok {
		s.trips.Select(body.ID)
		s.emit(EventTripSelected, &plan)
	}
	s.handleCurrentTrip(w, r)
}

func (s *Server) handleClearTrip(w http.ResponseWriter, _ *http.Request) {
	s.trips.ClearCurrent()
	s.emit(EventTripCleared, nil)
	w.WriteHeader(http.StatusNoContent)
}

type summaryResponse struct {
	Name     string               `json:"name,omitempty"`
	Greeting string               `json:"greeting"`
	Stats    model.DashboardStats `json:"stats"`
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	resp := summaryResponse{Stats: s.trips.Stats()}

	u, ok := s.bearerUser(r)
	if !ok && s.auth != nil {
		u, ok = s.auth.CurrentUser()
	}
	if ok {
		resp.Name = u.FirstName()
	}
	resp.Greeting = Greeting(resp.Name)
	writeJSON(w, http.StatusOK, resp)
}

// Greeting is the dashboard welcome line.
func Greeting(firstName string) string {
	if firstName == "" {
		return "Welcome back"
	}
	return "Welcome back, " + firstName
}

type credentialsBody struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	auth.Result
	Token string      `json:"token,omitempty"`
	User  *model.User `json:"user,omitempty"`
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var body credentialsBody
	if !decodeBody(w, r, &body) {
		return
	}
	if errs := form.ValidateSignup(body.Name, body.Email, body.Password); !errs.Empty() {
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: "validation failed", Fields: errs})
		return
	}
	res := s.auth.Signup(r.Context(), body.Name, body.Email, body.Password)
	s.writeAuthResult(w, r, res, body.Email)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body credentialsBody
	if !decodeBody(w, r, &body) {
		return
	}
	if errs := form.ValidateLogin(body.Email, body.Password); !errs.Empty() {
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: "validation failed", Fields: errs})
		return
	}
	res := s.auth.Login(r.Context(), body.Email, body.Password)
	s.writeAuthResult(w, r, res, body.Email)
}

func (s *Server) writeAuthResult(w http.ResponseWriter, r *http.Request, res auth.Result, email string) {
	if !res.Success {
		logFor(r, s.log).Info("auth rejected", "reason", res.Error)
		writeJSON(w, authStatus(res), authResponse{Result: res})
		return
	}

	u, ok := s.auth.UserByEmail(email)
	if !ok {
		writeError(w, http.StatusInternalServerError, "account vanished after sign-in")
		return
	}
	token, err := s.tokens.Issue(u)
	if err != nil {
		logFor(r, s.log).Error("issuing token", "error", err)
		writeError(w, http.StatusInternalServerError, "could not issue token")
		return
	}
	writeJSON(w, http.StatusOK, authResponse{Result: res, Token: token, User: &u})
}

func authStatus(res auth.Result) int {
	switch res.Error {
	case auth.ErrEmailTaken:
		return http.StatusConflict
	case auth.ErrRequestCanceled:
		return http.StatusRequestTimeout
	default:
		return http.StatusUnauthorized
	}
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.auth.Logout(r.Context()); err != nil {
		logFor(r, s.log).Warn("logout", "error", err)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	u, ok := s.bearerUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing or invalid bearer token")
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) bearerUser(r *http.Request) (model.User, bool) {
	header := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		return model.User{}, false
	}
	u, err := s.tokens.Verify(strings.TrimSpace(token))
	if err != nil {
		logFor(r, s.log).Debug("rejected bearer token", "error", err)
		return model.User{}, false
	}
	return u, true
}

func logFor(r *http.Request, base *slog.Logger) *slog.Logger {
	return logging.FromContext(r.Context(), base)
}
