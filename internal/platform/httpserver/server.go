package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	electionengine "hustings/contexts/election-core/election-engine"
	electionerrors "hustings/contexts/election-core/election-engine/domain/errors"
	electionhttp "hustings/contexts/election-core/election-engine/transport/http"
	"hustings/internal/platform/identity"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "hustings/internal/platform/httpserver/docs"
)

type Server struct {
	mux      *http.ServeMux
	logger   *slog.Logger
	addr     string
	election electionengine.Module
	identity *identity.Resolver
}

func New(
	election electionengine.Module,
	resolver *identity.Resolver,
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
		mux:      http.NewServeMux(),
		logger:   logger,
		addr:     addr,
		election: election,
		identity: resolver,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

// Handler exposes the route table for in-process serving and tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("POST /v1/election/candidates", s.handleAddCandidate)
	s.mux.HandleFunc("POST /v1/election/voters", s.handleAddVoter)
	s.mux.HandleFunc("POST /v1/election/start", s.handleStartElection)
	s.mux.HandleFunc("POST /v1/election/end", s.handleEndElection)
	s.mux.HandleFunc("POST /v1/election/votes", s.handleCastVote)
	s.mux.HandleFunc("POST /v1/election/delegations", s.handleDelegate)

	s.mux.HandleFunc("GET /v1/election", s.handleElection)
	s.mux.HandleFunc("GET /v1/election/candidates", s.handleListCandidates)
	s.mux.HandleFunc("GET /v1/election/candidates/{candidate_id}", s.handleGetCandidate)
	s.mux.HandleFunc("GET /v1/election/results", s.handleStandings)
	s.mux.HandleFunc("GET /v1/election/results/{candidate_id}", s.handleCandidateResult)
	s.mux.HandleFunc("GET /v1/election/winner", s.handleWinner)
	s.mux.HandleFunc("GET /v1/election/voters/{voter_id}", s.handleVoterDetails)
	s.mux.HandleFunc("GET /v1/election/turnout", s.handleTurnout)
	s.mux.HandleFunc("GET /v1/election/history", s.handlePhaseHistory)
	s.mux.HandleFunc("GET /v1/election/audit", s.handleAuditTrail)
}

// callerID resolves the request identity. Falls back to the raw X-User-Id
// header when no resolver is wired.
func (s *Server) callerID(r *http.Request) string {
	if s.identity != nil {
		return s.identity.FromRequest(r)
	}
	return r.Header.Get(identity.HeaderUserID)
}

func (s *Server) handleAddCandidate(w http.ResponseWriter, r *http.Request) {
	actorID := s.callerID(r)
	if actorID == "" {
		writeElectionError(w, http.StatusUnauthorized, "missing_identity", "a caller identity is required")
		return
	}

	var req electionhttp.AddCandidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeElectionError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.election.Handler.AddCandidateHandler(r.Context(), actorID, req)
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAddVoter(w http.ResponseWriter, r *http.Request) {
	actorID := s.callerID(r)
	if actorID == "" {
		writeElectionError(w, http.StatusUnauthorized, "missing_identity", "a caller identity is required")
		return
	}

	var req electionhttp.AddVoterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeElectionError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.election.Handler.AddVoterHandler(r.Context(), actorID, req)
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStartElection(w http.ResponseWriter, r *http.Request) {
	actorID := s.callerID(r)
	if actorID == "" {
		writeElectionError(w, http.StatusUnauthorized, "missing_identity", "a caller identity is required")
		return
	}

	resp, err := s.election.Handler.StartElectionHandler(r.Context(), actorID)
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleEndElection(w http.ResponseWriter, r *http.Request) {
	actorID := s.callerID(r)
	if actorID == "" {
		writeElectionError(w, http.StatusUnauthorized, "missing_identity", "a caller identity is required")
		return
	}

	resp, err := s.election.Handler.EndElectionHandler(r.Context(), actorID)
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCastVote(w http.ResponseWriter, r *http.Request) {
	voterID := s.callerID(r)
	if voterID == "" {
		writeElectionError(w, http.StatusUnauthorized, "missing_identity", "a caller identity is required")
		return
	}

	var req electionhttp.CastVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeElectionError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.election.Handler.CastVoteHandler(r.Context(), voterID, req)
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDelegate(w http.ResponseWriter, r *http.Request) {
	voterID := s.callerID(r)
	if voterID == "" {
		writeElectionError(w, http.StatusUnauthorized, "missing_identity", "a caller identity is required")
		return
	}

	var req electionhttp.DelegateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeElectionError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.election.Handler.DelegateHandler(r.Context(), voterID, req)
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleElection(w http.ResponseWriter, r *http.Request) {
	resp, err := s.election.Handler.ElectionHandler(r.Context())
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListCandidates(w http.ResponseWriter, r *http.Request) {
	resp, err := s.election.Handler.CandidateListHandler(r.Context())
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetCandidate(w http.ResponseWriter, r *http.Request) {
	candidateID, ok := candidatePathID(w, r)
	if !ok {
		return
	}
	resp, err := s.election.Handler.CandidateHandler(r.Context(), candidateID)
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStandings(w http.ResponseWriter, r *http.Request) {
	resp, err := s.election.Handler.StandingsHandler(r.Context())
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCandidateResult(w http.ResponseWriter, r *http.Request) {
	candidateID, ok := candidatePathID(w, r)
	if !ok {
		return
	}
	resp, err := s.election.Handler.CandidateResultHandler(r.Context(), candidateID)
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleWinner(w http.ResponseWriter, r *http.Request) {
	resp, err := s.election.Handler.WinnerHandler(r.Context())
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleVoterDetails(w http.ResponseWriter, r *http.Request) {
	voterID := r.PathValue("voter_id")
	resp, err := s.election.Handler.VoterDetailsHandler(r.Context(), voterID)
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTurnout(w http.ResponseWriter, r *http.Request) {
	resp, err := s.election.Handler.TurnoutHandler(r.Context())
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePhaseHistory(w http.ResponseWriter, r *http.Request) {
	resp, err := s.election.Handler.PhaseHistoryHandler(r.Context())
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAuditTrail(w http.ResponseWriter, r *http.Request) {
	resp, err := s.election.Handler.AuditTrailHandler(r.Context())
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func candidatePathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	candidateID, err := strconv.Atoi(r.PathValue("candidate_id"))
	if err != nil {
		writeElectionError(w, http.StatusBadRequest, "invalid_candidate_id", "candidate_id must be an integer")
		return 0, false
	}
	return candidateID, true
}

func writeElectionDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, electionerrors.ErrNotAdministrator):
		writeElectionError(w, http.StatusForbidden, "not_administrator", err.Error())
	case errors.Is(err, electionerrors.ErrVoterNotRegistered):
		writeElectionError(w, http.StatusForbidden, "voter_not_registered", err.Error())
	case errors.Is(err, electionerrors.ErrRegistrationClosed):
		writeElectionError(w, http.StatusConflict, "registration_closed", err.Error())
	case errors.Is(err, electionerrors.ErrElectionAlreadyStarted):
		writeElectionError(w, http.StatusConflict, "election_already_started", err.Error())
	case errors.Is(err, electionerrors.ErrVotingNotStarted):
		writeElectionError(w, http.StatusConflict, "voting_not_started", err.Error())
	case errors.Is(err, electionerrors.ErrVotingEnded):
		writeElectionError(w, http.StatusConflict, "voting_ended", err.Error())
	case errors.Is(err, electionerrors.ErrElectionNotClosed):
		writeElectionError(w, http.StatusConflict, "election_not_closed", err.Error())
	case errors.Is(err, electionerrors.ErrVoterAlreadyRegistered):
		writeElectionError(w, http.StatusConflict, "voter_already_registered", err.Error())
	case errors.Is(err, electionerrors.ErrAlreadyVoted):
		writeElectionError(w, http.StatusConflict, "already_voted", err.Error())
	case errors.Is(err, electionerrors.ErrInvalidCandidate):
		writeElectionError(w, http.StatusNotFound, "invalid_candidate", err.Error())
	case errors.Is(err, electionerrors.ErrDelegateNotRegistered):
		writeElectionError(w, http.StatusNotFound, "delegate_not_registered", err.Error())
	case errors.Is(err, electionerrors.ErrSelfDelegation):
		writeElectionError(w, http.StatusBadRequest, "self_delegation", err.Error())
	case errors.Is(err, electionerrors.ErrDelegationLoop):
		writeElectionError(w, http.StatusConflict, "delegation_loop", err.Error())
	case errors.Is(err, electionerrors.ErrInvalidInput):
		writeElectionError(w, http.StatusBadRequest, "invalid_input", err.Error())
	case errors.Is(err, electionerrors.ErrConflict):
		writeElectionError(w, http.StatusConflict, "conflict", err.Error())
	default:
		writeElectionError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeElectionError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, electionhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
