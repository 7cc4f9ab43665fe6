package httpserver

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	electionengine "hustings/contexts/election-core/election-engine"
	"hustings/contexts/election-core/election-engine/domain/entities"
	electionhttp "hustings/contexts/election-core/election-engine/transport/http"
)

func newTestServer() *Server {
	return New(
		electionengine.NewInMemoryModule("admin-1", entities.DelegationSingleHop, slog.Default()),
		nil,
		slog.Default(),
		":0",
	)
}

func newJSONRequest(method string, path string, body string) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func record(server *Server, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	return rr
}

func doRequest(server *Server, method string, path string, userID string, body string) *httptest.ResponseRecorder {
	req := newJSONRequest(method, path, body)
	if userID != "" {
		req.Header.Set("X-User-Id", userID)
	}
	return record(server, req)
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, target any) {
	if err := json.Unmarshal(rr.Body.Bytes(), target); err != nil {
		t.Fatalf("decode response failed: %v body=%s", err, rr.Body.String())
	}
}

func TestElectionFullLifecycleOverHTTP(t *testing.T) {
	server := newTestServer()

	// Setup: two candidates, three voters.
	rr := doRequest(server, http.MethodPost, "/v1/election/candidates", "admin-1", `{"name":"Ada","proposal":"more libraries"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("add candidate expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	var candidate electionhttp.CandidateResponse
	decodeBody(t, rr, &candidate)
	if candidate.CandidateID != 1 || candidate.VoteCount != 0 {
		t.Fatalf("expected candidate 1 with zero votes, got %+v", candidate)
	}

	rr = doRequest(server, http.MethodPost, "/v1/election/candidates", "admin-1", `{"name":"Grace"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("add second candidate expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	decodeBody(t, rr, &candidate)
	if candidate.CandidateID != 2 {
		t.Fatalf("expected dense candidate id 2, got %d", candidate.CandidateID)
	}

	for _, voterID := range []string{"voter-1", "voter-2", "voter-3"} {
		rr = doRequest(server, http.MethodPost, "/v1/election/voters", "admin-1", `{"voter_id":"`+voterID+`"}`)
		if rr.Code != http.StatusOK {
			t.Fatalf("add voter %s expected 200, got %d body=%s", voterID, rr.Code, rr.Body.String())
		}
	}

	rr = doRequest(server, http.MethodGet, "/v1/election", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("get election expected 200, got %d", rr.Code)
	}
	var election electionhttp.ElectionResponse
	decodeBody(t, rr, &election)
	if election.Phase != "setup" || election.CandidateCount != 2 || election.VoterCount != 3 {
		t.Fatalf("unexpected election state: %+v", election)
	}

	// Open voting.
	rr = doRequest(server, http.MethodPost, "/v1/election/start", "admin-1", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("start election expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	decodeBody(t, rr, &election)
	if election.Phase != "voting" || election.StartedAt == nil {
		t.Fatalf("expected voting phase with started_at, got %+v", election)
	}

	// voter-1 votes for candidate 1, voter-2 delegates to voter-1, voter-3
	// votes for candidate 2.
	rr = doRequest(server, http.MethodPost, "/v1/election/votes", "voter-1", `{"candidate_id":1}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("cast vote expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	var vote electionhttp.CastVoteResponse
	decodeBody(t, rr, &vote)
	if vote.CandidateID != 1 || vote.VoteCount != 1 {
		t.Fatalf("expected candidate 1 at one vote, got %+v", vote)
	}

	rr = doRequest(server, http.MethodPost, "/v1/election/delegations", "voter-2", `{"delegate_to":"voter-1"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("delegate expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	var delegation electionhttp.DelegateResponse
	decodeBody(t, rr, &delegation)
	if !delegation.CountedNow || delegation.CandidateID != 1 {
		t.Fatalf("expected delegation counted for candidate 1, got %+v", delegation)
	}

	rr = doRequest(server, http.MethodPost, "/v1/election/votes", "voter-3", `{"candidate_id":2}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("third vote expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}

	// Close and read the winner.
	rr = doRequest(server, http.MethodPost, "/v1/election/end", "admin-1", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("end election expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}

	rr = doRequest(server, http.MethodGet, "/v1/election/winner", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("winner expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	var winner electionhttp.WinnerResponse
	decodeBody(t, rr, &winner)
	if winner.CandidateID != 1 || winner.VoteCount != 2 {
		t.Fatalf("expected candidate 1 winning with 2 votes, got %+v", winner)
	}

	rr = doRequest(server, http.MethodGet, "/v1/election/results", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("results expected 200, got %d", rr.Code)
	}
	var results electionhttp.ResultsResponse
	decodeBody(t, rr, &results)
	if len(results.Items) != 2 || results.Items[0].CandidateID != 1 || results.Items[1].CandidateID != 2 {
		t.Fatalf("expected standings 1 then 2, got %+v", results.Items)
	}

	rr = doRequest(server, http.MethodGet, "/v1/election/voters/voter-2", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("voter details expected 200, got %d", rr.Code)
	}
	var voter electionhttp.VoterResponse
	decodeBody(t, rr, &voter)
	if !voter.HasVoted || voter.DelegateTo != "voter-1" {
		t.Fatalf("expected delegated ballot details, got %+v", voter)
	}

	rr = doRequest(server, http.MethodGet, "/v1/election/turnout", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("turnout expected 200, got %d", rr.Code)
	}
	var turnout electionhttp.TurnoutResponse
	decodeBody(t, rr, &turnout)
	if turnout.RegisteredVoters != 3 || turnout.BallotsCast != 3 || turnout.DirectVotes != 2 || turnout.Delegations != 1 {
		t.Fatalf("unexpected turnout: %+v", turnout)
	}
	if turnout.CountedBallots != 3 {
		t.Fatalf("expected 3 counted ballots, got %d", turnout.CountedBallots)
	}

	rr = doRequest(server, http.MethodGet, "/v1/election/history", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("history expected 200, got %d", rr.Code)
	}
	var history electionhttp.PhaseHistoryResponse
	decodeBody(t, rr, &history)
	if len(history.Items) != 2 || history.Items[0].ToPhase != "voting" || history.Items[1].ToPhase != "closed" {
		t.Fatalf("expected setup->voting->closed history, got %+v", history.Items)
	}
}

func TestVoterDetailsUnknownIdentityOverHTTP(t *testing.T) {
	server := newTestServer()

	rr := doRequest(server, http.MethodGet, "/v1/election/voters/ghost", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 for unknown voter, got %d", rr.Code)
	}
	var voter electionhttp.VoterResponse
	decodeBody(t, rr, &voter)
	if voter.VoterID != "ghost" || voter.Registered || voter.HasVoted {
		t.Fatalf("expected zero-valued voter, got %+v", voter)
	}
}

func TestAuditTrailEmptyWithoutConsumer(t *testing.T) {
	server := newTestServer()

	rr := doRequest(server, http.MethodGet, "/v1/election/audit", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("audit expected 200, got %d", rr.Code)
	}
	var trail electionhttp.AuditTrailResponse
	decodeBody(t, rr, &trail)
	if len(trail.Items) != 0 {
		t.Fatalf("expected empty audit trail, got %+v", trail.Items)
	}
}
