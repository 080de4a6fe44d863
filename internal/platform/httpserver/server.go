package httpserver

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	assistantservice "leadgate/contexts/lead-capture/assistant-service"
	assistanterrors "leadgate/contexts/lead-capture/assistant-service/domain/errors"
	assistanthttp "leadgate/contexts/lead-capture/assistant-service/transport/http"
	intakeservice "leadgate/contexts/lead-capture/intake-service"
	"leadgate/contexts/lead-capture/intake-service/application/queries"
	domainerrors "leadgate/contexts/lead-capture/intake-service/domain/errors"
	leadhttp "leadgate/contexts/lead-capture/intake-service/transport/http"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "leadgate/internal/platform/httpserver/docs"
)

const chatSessionCookie = "chat_session"

type Server struct {
	mux       *http.ServeMux
	logger    *slog.Logger
	addr      string
	intake    intakeservice.Module
	assistant assistantservice.Module
	adminUser string
	adminPass string
}

func New(
	intake intakeservice.Module,
	assistant assistantservice.Module,
	adminUser string,
	adminPass string,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:       http.NewServeMux(),
		logger:    logger,
		addr:      addr,
		intake:    intake,
		assistant: assistant,
		adminUser: adminUser,
		adminPass: adminPass,
	}
	s.registerRoutes()
	return s
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.mux,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server starting",
			"event", "http_server_starting",
			"module", "internal/platform/httpserver",
			"layer", "platform",
			"addr", s.addr,
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("GET /healthz", s.handleHealthz)
	s.mux.HandleFunc("POST /submit", s.handleSubmitLead)
	s.mux.HandleFunc("GET /chat/greeting", s.handleChatGreeting)
	s.mux.HandleFunc("POST /chat", s.handleChat)
	s.mux.HandleFunc("GET /admin/leads", s.handleListLeads)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleSubmitLead accepts the marketing-site form post. Honeypot trips and
// duplicate emails come back through the handler as ordinary successes, so the
// response here never reveals whether a record was actually written.
//
//	@Summary	Submit a lead-capture form
//	@Accept		x-www-form-urlencoded
//	@Produce	json
//	@Success	200	{object}	http.SubmitLeadResponse
//	@Failure	400	{object}	http.ErrorResponse
//	@Router		/submit [post]
func (s *Server) handleSubmitLead(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeLeadError(w, http.StatusBadRequest, "invalid_form", "request body is not a valid form")
		return
	}

	req := leadhttp.SubmitLeadRequest{
		FullName:         r.PostFormValue("name"),
		Email:            r.PostFormValue("email"),
		Phone:            r.PostFormValue("phone"),
		ContactMethod:    r.PostFormValue("contact_method"),
		Address:          r.PostFormValue("address"),
		City:             r.PostFormValue("city"),
		State:            r.PostFormValue("state"),
		ZipCode:          r.PostFormValue("zip"),
		Age:              r.PostFormValue("age"),
		Website:          r.PostFormValue("website"),
		CaptchaToken:     r.PostFormValue("g-recaptcha-response"),
		Metadata:         r.PostFormValue("metadata"),
		FingerprintToken: r.PostFormValue("fingerprint"),
	}

	resp, err := s.intake.Handler.SubmitLeadHandler(r.Context(), resolveClientIP(r), r.UserAgent(), req)
	if err != nil {
		writeLeadDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleChatGreeting opens (or resets) a chat session and answers with the
// assistant's opening line.
//
//	@Summary	Start a chat session
//	@Produce	json
//	@Success	200	{object}	http.ChatResponse
//	@Router		/chat/greeting [get]
func (s *Server) handleChatGreeting(w http.ResponseWriter, r *http.Request) {
	resp, sessionID, err := s.assistant.Handler.GreetingHandler(r.Context(), s.chatSessionID(r))
	if err != nil {
		s.logger.Error("chat greeting failed",
			"event", "chat_greeting_failed",
			"module", "internal/platform/httpserver",
			"layer", "platform",
			"error", err,
		)
		writeJSON(w, http.StatusInternalServerError, assistanthttp.ChatResponse{
			Response: "Sorry, I'm currently experiencing a technical issue and cannot respond. Please try again in a moment.",
		})
		return
	}
	s.setChatSession(w, sessionID)
	writeJSON(w, http.StatusOK, resp)
}

// handleChat runs one question/answer turn against the session history.
//
//	@Summary	Send a chat message
//	@Accept		json
//	@Produce	json
//	@Success	200	{object}	http.ChatResponse
//	@Failure	400	{object}	http.ChatResponse
//	@Router		/chat [post]
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req assistanthttp.ChatRequest
	// A malformed body leaves the message empty, which the pipeline answers
	// with the "please type a message" reply.
	_ = json.NewDecoder(r.Body).Decode(&req)

	resp, sessionID, err := s.assistant.Handler.ChatHandler(r.Context(), s.chatSessionID(r), req)
	s.setChatSession(w, sessionID)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, resp)
	case errors.Is(err, assistanterrors.ErrEmptyMessage):
		writeJSON(w, http.StatusBadRequest, resp)
	default:
		s.logger.Error("chat turn failed",
			"event", "chat_turn_failed",
			"module", "internal/platform/httpserver",
			"layer", "platform",
			"error", err,
		)
		if resp.Response == "" {
			resp.Response = "Sorry, I'm currently experiencing a technical issue and cannot respond. Please try again in a moment."
		}
		writeJSON(w, http.StatusInternalServerError, resp)
	}
}

func (s *Server) chatSessionID(r *http.Request) string {
	cookie, err := r.Cookie(chatSessionCookie)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func (s *Server) setChatSession(w http.ResponseWriter, sessionID string) {
	if sessionID == "" {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     chatSessionCookie,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// handleListLeads is the operator read surface, gated by Basic auth.
//
//	@Summary	List captured leads
//	@Produce	json
//	@Success	200	{object}	http.ListLeadsResponse
//	@Failure	401	{object}	http.ErrorResponse
//	@Router		/admin/leads [get]
func (s *Server) handleListLeads(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		w.Header().Set("WWW-Authenticate", `Basic realm="Login Required"`)
		writeLeadError(w, http.StatusUnauthorized, "unauthorized", "admin credentials required")
		return
	}

	query := r.URL.Query()
	listQuery := queries.ListLeadsQuery{
		FullName: query.Get("name"),
		Email:    query.Get("email"),
		Phone:    query.Get("phone"),
		ClientIP: query.Get("ip"),
		State:    query.Get("state"),
		City:     query.Get("city"),
	}
	if limitRaw := query.Get("limit"); limitRaw != "" {
		limit, err := strconv.Atoi(limitRaw)
		if err != nil {
			writeLeadError(w, http.StatusBadRequest, "invalid_limit", "limit must be an integer")
			return
		}
		listQuery.Limit = limit
	}

	resp, err := s.intake.Handler.ListLeadsHandler(r.Context(), listQuery)
	if err != nil {
		writeLeadDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) authorized(r *http.Request) bool {
	user, pass, ok := r.BasicAuth()
	if !ok || s.adminUser == "" || s.adminPass == "" {
		return false
	}
	userMatch := subtle.ConstantTimeCompare([]byte(user), []byte(s.adminUser)) == 1
	passMatch := subtle.ConstantTimeCompare([]byte(pass), []byte(s.adminPass)) == 1
	return userMatch && passMatch
}

func writeLeadDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domainerrors.ErrMissingField):
		writeLeadError(w, http.StatusBadRequest, "missing_field", "Please fill in all required fields.")
	case errors.Is(err, domainerrors.ErrInvalidEmail):
		writeLeadError(w, http.StatusBadRequest, "invalid_email", "Please enter a valid email address.")
	case errors.Is(err, domainerrors.ErrDisposableDomain):
		writeLeadError(w, http.StatusBadRequest, "disposable_email", "Disposable email addresses are not accepted.")
	case errors.Is(err, domainerrors.ErrCaptchaRejected):
		writeLeadError(w, http.StatusBadRequest, "captcha_failed", "reCAPTCHA verification failed. Please try again.")
	default:
		writeLeadError(w, http.StatusInternalServerError, "internal_error", "Your application could not be submitted due to a server error. Please try again.")
	}
}

func writeLeadError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, leadhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// resolveClientIP prefers the first hop of a forwarded-for chain, falling
// back to the direct peer address.
func resolveClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
