package httpserver

import (
	"log/slog"
	"net/http"
	"testing"
	"time"

	electionengine "hustings/contexts/election-core/election-engine"
	"hustings/contexts/election-core/election-engine/domain/entities"
	electionhttp "hustings/contexts/election-core/election-engine/transport/http"
	"hustings/internal/platform/identity"
)

func TestAddCandidateRequiresIdentity(t *testing.T) {
	server := newTestServer()

	rr := doRequest(server, http.MethodPost, "/v1/election/candidates", "", `{"name":"Ada"}`)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", rr.Code, rr.Body.String())
	}
	var problem electionhttp.ErrorResponse
	decodeBody(t, rr, &problem)
	if problem.Code != "missing_identity" {
		t.Fatalf("expected missing_identity code, got %q", problem.Code)
	}
}

func TestAddCandidateRejectsNonAdministratorOverHTTP(t *testing.T) {
	server := newTestServer()

	rr := doRequest(server, http.MethodPost, "/v1/election/candidates", "intruder", `{"name":"Ada"}`)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d body=%s", rr.Code, rr.Body.String())
	}
	var problem electionhttp.ErrorResponse
	decodeBody(t, rr, &problem)
	if problem.Code != "not_administrator" {
		t.Fatalf("expected not_administrator code, got %q", problem.Code)
	}
}

func TestAddCandidateRejectsMalformedJSON(t *testing.T) {
	server := newTestServer()

	rr := doRequest(server, http.MethodPost, "/v1/election/candidates", "admin-1", `{"name":`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rr.Code, rr.Body.String())
	}
	var problem electionhttp.ErrorResponse
	decodeBody(t, rr, &problem)
	if problem.Code != "invalid_json" {
		t.Fatalf("expected invalid_json code, got %q", problem.Code)
	}
}

func TestCastVoteOutsideVotingPhaseConflicts(t *testing.T) {
	server := newTestServer()

	rr := doRequest(server, http.MethodPost, "/v1/election/votes", "voter-1", `{"candidate_id":1}`)
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409 during setup, got %d body=%s", rr.Code, rr.Body.String())
	}
	var problem electionhttp.ErrorResponse
	decodeBody(t, rr, &problem)
	if problem.Code != "voting_not_started" {
		t.Fatalf("expected voting_not_started code, got %q", problem.Code)
	}
}

func TestCastVoteUnregisteredVoterForbidden(t *testing.T) {
	server := newTestServer()
	if rr := doRequest(server, http.MethodPost, "/v1/election/start", "admin-1", ""); rr.Code != http.StatusOK {
		t.Fatalf("start election failed: %d body=%s", rr.Code, rr.Body.String())
	}

	rr := doRequest(server, http.MethodPost, "/v1/election/votes", "ghost", `{"candidate_id":1}`)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d body=%s", rr.Code, rr.Body.String())
	}
	var problem electionhttp.ErrorResponse
	decodeBody(t, rr, &problem)
	if problem.Code != "voter_not_registered" {
		t.Fatalf("expected voter_not_registered code, got %q", problem.Code)
	}
}

func TestWinnerBeforeCloseConflicts(t *testing.T) {
	server := newTestServer()

	rr := doRequest(server, http.MethodGet, "/v1/election/winner", "", "")
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d body=%s", rr.Code, rr.Body.String())
	}
	var problem electionhttp.ErrorResponse
	decodeBody(t, rr, &problem)
	if problem.Code != "election_not_closed" {
		t.Fatalf("expected election_not_closed code, got %q", problem.Code)
	}
}

func TestCandidateLookupValidation(t *testing.T) {
	server := newTestServer()

	rr := doRequest(server, http.MethodGet, "/v1/election/candidates/abc", "", "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-numeric id, got %d body=%s", rr.Code, rr.Body.String())
	}

	rr = doRequest(server, http.MethodGet, "/v1/election/candidates/7", "", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown id, got %d body=%s", rr.Code, rr.Body.String())
	}
	var problem electionhttp.ErrorResponse
	decodeBody(t, rr, &problem)
	if problem.Code != "invalid_candidate" {
		t.Fatalf("expected invalid_candidate code, got %q", problem.Code)
	}
}

func TestSelfDelegationRejectedOverHTTP(t *testing.T) {
	server := newTestServer()
	if rr := doRequest(server, http.MethodPost, "/v1/election/voters", "admin-1", `{"voter_id":"voter-1"}`); rr.Code != http.StatusOK {
		t.Fatalf("add voter failed: %d body=%s", rr.Code, rr.Body.String())
	}
	if rr := doRequest(server, http.MethodPost, "/v1/election/start", "admin-1", ""); rr.Code != http.StatusOK {
		t.Fatalf("start election failed: %d body=%s", rr.Code, rr.Body.String())
	}

	rr := doRequest(server, http.MethodPost, "/v1/election/delegations", "voter-1", `{"delegate_to":"voter-1"}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rr.Code, rr.Body.String())
	}
	var problem electionhttp.ErrorResponse
	decodeBody(t, rr, &problem)
	if problem.Code != "self_delegation" {
		t.Fatalf("expected self_delegation code, got %q", problem.Code)
	}
}

func TestBearerTokenResolvesAdministrator(t *testing.T) {
	resolver := identity.NewResolver("test-secret", slog.Default())
	server := New(
		electionengine.NewInMemoryModule("admin-1", entities.DelegationSingleHop, slog.Default()),
		resolver,
		slog.Default(),
		":0",
	)
	token, err := resolver.Issue("admin-1", time.Hour)
	if err != nil {
		t.Fatalf("issue token failed: %v", err)
	}

	req := newJSONRequest(http.MethodPost, "/v1/election/candidates", `{"name":"Ada"}`)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := record(server, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 with bearer token, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestInvalidBearerCannotImpersonateHeaderIdentity(t *testing.T) {
	resolver := identity.NewResolver("test-secret", slog.Default())
	server := New(
		electionengine.NewInMemoryModule("admin-1", entities.DelegationSingleHop, slog.Default()),
		resolver,
		slog.Default(),
		":0",
	)

	req := newJSONRequest(http.MethodPost, "/v1/election/candidates", `{"name":"Ada"}`)
	req.Header.Set("Authorization", "Bearer forged-token")
	req.Header.Set(identity.HeaderUserID, "admin-1")
	rr := record(server, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for invalid bearer, got %d body=%s", rr.Code, rr.Body.String())
	}
}
