// Package fakeplatform is an in-process stand-in for the card platform API,
// used by tests. It keeps its state in memory and speaks the same tagged
// JSON as the real service.
package fakeplatform

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/s0up4200/cardctl/model"
	"github.com/s0up4200/cardctl/parser"
)

const (
	// APIKey is the only key the server accepts
	APIKey = "test-api-key"
	// Secret completes every verification
	Secret = "000000"
)

// Backend error codes returned in error bodies
const (
	CodeInvalidSecret    = 90195
	CodeNotVerified      = 90196
	CodeNotFound         = 90197
	CodeInvalidWorkflow  = 90198
	CodeInvalidAPIKey    = 90199
	CodeInvalidSession   = 3031
	CodeMaintenanceError = 90200
)

// Server is a running fake platform
type Server struct {
	*httptest.Server
	parser *parser.Parser

	mu             sync.Mutex
	seq            int
	token          string
	user           model.User
	verifications  map[string]model.Verification
	config         model.ContextConfiguration
	products       []model.CardProduct
	cards          []model.Card
	details        map[string]model.CardDetails
	transactions   map[string][]model.Transaction
	fundingSources map[string][]model.FundingSource
	selected       map[string]string
	applications   map[string]model.CardApplication
	attempts       map[string]model.OAuthAttempt
	prefs          model.NotificationPreferences
	period         model.MonthlyStatementsPeriod
	offerRequests  map[string]model.OfferRequest

	failures map[string][]int
	calls    map[string]int
}

// New starts a fake platform seeded with a user, two cards and their
// transactions
func New() *Server {
	s := &Server{
		parser:         parser.New(zerolog.Nop()),
		verifications:  make(map[string]model.Verification),
		details:        make(map[string]model.CardDetails),
		transactions:   make(map[string][]model.Transaction),
		fundingSources: make(map[string][]model.FundingSource),
		selected:       make(map[string]string),
		applications:   make(map[string]model.CardApplication),
		attempts:       make(map[string]model.OAuthAttempt),
		offerRequests:  make(map[string]model.OfferRequest),
		failures:       make(map[string][]int),
		calls:          make(map[string]int),
	}
	s.seed()
	s.Server = httptest.NewServer(s.routes())
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.record, s.injectFailures, s.requireAPIKey)

	r.Post("/user", s.createUser)
	r.Post("/user/login", s.login)

	r.Post("/verifications/start", s.startVerification)
	r.Route("/verifications/{verificationId}", func(r chi.Router) {
		r.Get("/", s.verificationStatus)
		r.Post("/finish", s.finishVerification)
		r.Post("/restart", s.restartVerification)
	})

	r.Get("/config", s.contextConfig)
	r.Get("/config/cardproducts", s.cardProducts)
	r.Get("/config/cardproducts/{cardProductId}", s.cardProduct)

	r.Group(func(r chi.Router) {
		r.Use(s.requireSession)

		r.Get("/user", s.currentUser)
		r.Put("/user", s.updateUser)
		r.Post("/session/invalidate", s.logout)
		r.Get("/user/notifications/preferences", s.preferences)
		r.Put("/user/notifications/preferences", s.updatePreferences)

		r.Post("/user/accounts/apply", s.apply)
		r.Route("/user/accounts/applications/{applicationId}", func(r chi.Router) {
			r.Get("/status", s.applicationStatus)
			r.Post("/select_balance_store", s.selectBalanceStore)
			r.Post("/issue_card", s.issueCard)
		})
		r.Post("/disclaimers/accept", s.acceptDisclaimer)

		r.Get("/user/accounts", s.listCards)
		r.Route("/user/accounts/{accountId}", func(r chi.Router) {
			r.Get("/", s.getCard)
			r.Get("/details", s.cardDetails)
			r.Get("/transactions", s.listTransactions)
			r.Post("/activate_physical", s.activatePhysical)
			r.Post("/enable", s.setCardState(model.CardActive))
			r.Post("/disable", s.setCardState(model.CardInactive))
			r.Post("/pin", s.setPIN)
			r.Get("/balance", s.fundingSource)
			r.Put("/balance", s.setFundingSource)
			r.Get("/balances", s.listFundingSources)
			r.Get("/stats/monthly_spending", s.monthlySpending)
		})

		r.Post("/oauth", s.startOAuth)
		r.Post("/oauth/userdata/retrieve", s.oauthUserData)
		r.Get("/oauth/{attemptId}", s.oauthAttempt)

		r.Get("/user/statements/period", s.statementsPeriod)
		r.Get("/user/statements/{month}/{year}", s.statement)

		r.Post("/offer_requests", s.requestOffers)
		r.Get("/offer_requests/{offerRequestId}/offers", s.listOffers)
	})

	return r
}

func callKey(method, path string) string {
	return method + " " + path
}

// Calls returns how many requests hit method and path
func (s *Server) Calls(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[callKey(method, path)]
}

// FailNext makes the next requests to method and path answer with the given
// statuses, one per request. A status of 0 drops the connection without a
// response.
func (s *Server) FailNext(method, path string, statuses ...int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := callKey(method, path)
	s.failures[key] = append(s.failures[key], statuses...)
}

// Token returns the currently valid session token
func (s *Server) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// ExpireSession invalidates the current session token
func (s *Server) ExpireSession() {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
}

// SetSession starts a session for the seeded user and returns its token
func (s *Server) SetSession(token string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return token
}

// CompleteOAuth marks an OAuth attempt as passed
func (s *Server) CompleteOAuth(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.attempts[id]; ok {
		a.Status = model.OAuthPassed
		s.attempts[id] = a
	}
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.calls[callKey(r.Method, r.URL.Path)]++
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) injectFailures(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := callKey(r.Method, r.URL.Path)

		s.mu.Lock()
		pending := s.failures[key]
		status, fail := 0, len(pending) > 0
		if fail {
			status = pending[0]
			s.failures[key] = pending[1:]
		}
		s.mu.Unlock()

		if !fail {
			next.ServeHTTP(w, r)
			return
		}
		if status == 0 {
			dropConnection(w)
			return
		}
		writeError(w, status, CodeMaintenanceError, http.StatusText(status))
	})
}

func dropConnection(w http.ResponseWriter) {
	hj, ok := w.(http.Hijacker)
	if !ok {
		panic("fakeplatform: response writer cannot be hijacked")
	}
	conn, _, err := hj.Hijack()
	if err != nil {
		panic(fmt.Sprintf("fakeplatform: hijack: %v", err))
	}
	conn.Close()
}

func (s *Server) requireAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Api-Key") != "Bearer "+APIKey {
			writeError(w, http.StatusUnauthorized, CodeInvalidAPIKey, "invalid API key")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		s.mu.Lock()
		valid := s.token != "" && token == s.token
		s.mu.Unlock()

		if !valid {
			writeError(w, http.StatusUnauthorized, CodeInvalidSession, "invalid session")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status, code int, message string) {
	writeJSON(w, status, model.BackendError{Code: code, Message: message})
}

// nextID returns a fresh identifier; callers hold s.mu
func (s *Server) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s_%d", prefix, s.seq)
}

// Base time for seeded transactions
var epoch = time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)
