// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/meetvote/meetvote/models"
	"github.com/meetvote/meetvote/testutil"
)

// TestConcurrentVoteSubmissions verifies that simultaneous ballots from
// distinct voters don't cause data corruption or duplicates
func TestConcurrentVoteSubmissions(t *testing.T) {
	st := testutil.SetupStore(t)
	handler := NewPublicHandler(st)

	cred := testutil.CreateTestOwner(t, st, "alice")
	summary := testutil.CreateTestPoll(t, st, cred, false)

	numVoters := 10
	var successCount atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < numVoters; i++ {
		wg.Add(1)
		go func(voterIdx int) {
			defer wg.Done()

			voteReq := models.SubmitVoteRequest{
				Name: "Voter" + string(rune('A'+voterIdx)),
				Selections: []models.VoteSelection{
					{Date: testutil.TestDates[voterIdx%3], Value: "yes"},
					{Date: testutil.TestDates[(voterIdx+1)%3], Value: "maybe"},
				},
			}
			body, _ := json.Marshal(voteReq)
			req := httptest.NewRequest("POST", "/public/polls/"+summary.Token+"/vote", bytes.NewReader(body))
			req.SetPathValue("token", summary.Token)
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			handler.Vote(w, req)

			if w.Code == http.StatusOK {
				successCount.Add(1)
			}
		}(i)
	}

	wg.Wait()

	if int(successCount.Load()) != numVoters {
		t.Errorf("Expected %d successful submissions, got %d", numVoters, successCount.Load())
	}

	poll, err := st.PollByToken(context.Background(), summary.Token)
	if err != nil {
		t.Fatalf("Failed to load poll: %v", err)
	}
	if len(poll.Votes) != numVoters {
		t.Errorf("Expected %d votes in poll, got %d", numVoters, len(poll.Votes))
	}

	seen := make(map[string]bool)
	for _, v := range poll.Votes {
		key := models.FoldName(v.Name)
		if seen[key] {
			t.Errorf("Duplicate voter %q after concurrent submissions", v.Name)
		}
		seen[key] = true
	}
}

// TestConcurrentSameVoterUpdates verifies that one voter re-submitting
// concurrently still ends up with exactly one ballot
func TestConcurrentSameVoterUpdates(t *testing.T) {
	st := testutil.SetupStore(t)
	handler := NewPublicHandler(st)

	cred := testutil.CreateTestOwner(t, st, "alice")
	summary := testutil.CreateTestPoll(t, st, cred, false)

	testutil.SubmitTestVote(t, st, summary.Token, "Bob", map[string]string{
		testutil.TestDates[0]: "yes",
	})

	values := []string{"yes", "no", "maybe"}
	numUpdates := 10
	var wg sync.WaitGroup

	for i := 0; i < numUpdates; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			voteReq := models.SubmitVoteRequest{
				// Mixed casing still targets the same ballot.
				Name: []string{"Bob", "BOB", "bob"}[idx%3],
				Selections: []models.VoteSelection{
					{Date: testutil.TestDates[idx%3], Value: values[idx%3]},
				},
			}
			body, _ := json.Marshal(voteReq)
			req := httptest.NewRequest("POST", "/public/polls/"+summary.Token+"/vote", bytes.NewReader(body))
			req.SetPathValue("token", summary.Token)
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			handler.Vote(w, req)
			// We don't care which update wins, just that it completes.
		}(i)
	}

	wg.Wait()

	poll, err := st.PollByToken(context.Background(), summary.Token)
	if err != nil {
		t.Fatalf("Failed to load poll: %v", err)
	}
	if len(poll.Votes) != 1 {
		t.Fatalf("Expected 1 ballot after concurrent updates, got %d", len(poll.Votes))
	}
	for date, value := range poll.Votes[0].Selections {
		if value != "yes" && value != "no" && value != "maybe" {
			t.Errorf("Invalid vote value %q for %s", value, date)
		}
	}
}

// TestConcurrentPollClose verifies that racing closes leave the poll in a
// valid closed state with a single close timestamp
func TestConcurrentPollClose(t *testing.T) {
	st := testutil.SetupStore(t)
	handler := NewPollHandler(st)

	cred := testutil.CreateTestOwner(t, st, "alice")
	summary := testutil.CreateTestPoll(t, st, cred, false)

	pollID := strconv.FormatInt(summary.ID, 10)
	numAttempts := 5
	var successCount atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < numAttempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			req := testutil.MakeRequest("POST", "/polls/"+pollID+"/close", nil, bearer(cred))
			req.SetPathValue("id", pollID)
			w := httptest.NewRecorder()

			handler.Close(w, req)

			if w.Code == http.StatusOK {
				successCount.Add(1)
			}
		}()
	}

	wg.Wait()

	// Close is idempotent, every attempt succeeds.
	if int(successCount.Load()) != numAttempts {
		t.Errorf("Expected %d successful closes, got %d", numAttempts, successCount.Load())
	}

	poll, err := st.PollByID(context.Background(), cred, summary.ID)
	if err != nil {
		t.Fatalf("Failed to load poll: %v", err)
	}
	if !poll.IsClosed {
		t.Error("Expected poll to be closed")
	}
	if poll.ClosedAt == nil {
		t.Error("Expected a close timestamp")
	}
}

// TestVoteCloseRace verifies that every vote racing a close either lands
// before the close or is rejected, never silently dropped
func TestVoteCloseRace(t *testing.T) {
	st := testutil.SetupStore(t)
	publicHandler := NewPublicHandler(st)
	pollHandler := NewPollHandler(st)

	cred := testutil.CreateTestOwner(t, st, "alice")
	summary := testutil.CreateTestPoll(t, st, cred, false)

	pollID := strconv.FormatInt(summary.ID, 10)
	numVoters := 8
	var accepted, rejected atomic.Int32
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()

		req := testutil.MakeRequest("POST", "/polls/"+pollID+"/close", nil, bearer(cred))
		req.SetPathValue("id", pollID)
		w := httptest.NewRecorder()
		pollHandler.Close(w, req)
	}()

	for i := 0; i < numVoters; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			voteReq := models.SubmitVoteRequest{
				Name:       "Racer" + string(rune('A'+idx)),
				Selections: []models.VoteSelection{{Date: testutil.TestDates[0], Value: "yes"}},
			}
			body, _ := json.Marshal(voteReq)
			req := httptest.NewRequest("POST", "/public/polls/"+summary.Token+"/vote", bytes.NewReader(body))
			req.SetPathValue("token", summary.Token)
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			publicHandler.Vote(w, req)

			switch w.Code {
			case http.StatusOK:
				accepted.Add(1)
			case http.StatusConflict, http.StatusNotFound:
				rejected.Add(1)
			default:
				t.Errorf("Unexpected status %d racing a close", w.Code)
			}
		}(i)
	}

	wg.Wait()

	if int(accepted.Load()+rejected.Load()) != numVoters {
		t.Errorf("Expected every vote accounted for, got %d accepted + %d rejected",
			accepted.Load(), rejected.Load())
	}

	poll, err := st.PollByID(context.Background(), cred, summary.ID)
	if err != nil {
		t.Fatalf("Failed to load poll: %v", err)
	}
	if len(poll.Votes) != int(accepted.Load()) {
		t.Errorf("Expected %d persisted votes, got %d", accepted.Load(), len(poll.Votes))
	}
}

// TestParallelPolls verifies that operations on different polls don't interfere
func TestParallelPolls(t *testing.T) {
	t.Parallel()

	st := testutil.SetupStore(t)
	pollHandler := NewPollHandler(st)
	publicHandler := NewPublicHandler(st)

	cred := testutil.CreateTestOwner(t, st, "alice")

	numPolls := 5
	var wg sync.WaitGroup

	for i := 0; i < numPolls; i++ {
		wg.Add(1)
		go func(pollIdx int) {
			defer wg.Done()

			createReq := models.CreatePollRequest{
				Title: "Parallel Poll " + string(rune('A'+pollIdx)),
				Dates: testutil.TestDates,
			}
			body, _ := json.Marshal(createReq)
			req := httptest.NewRequest("POST", "/polls", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Authorization", "Bearer "+cred)
			w := httptest.NewRecorder()
			pollHandler.Create(w, req)

			if w.Code != http.StatusCreated {
				t.Errorf("Poll %d creation failed: %d", pollIdx, w.Code)
				return
			}

			var summary models.PollSummary
			json.NewDecoder(w.Body).Decode(&summary)

			voteReq := models.SubmitVoteRequest{
				Name:       "Voter" + string(rune('A'+pollIdx)),
				Selections: []models.VoteSelection{{Date: testutil.TestDates[0], Value: "yes"}},
			}
			body, _ = json.Marshal(voteReq)
			req = httptest.NewRequest("POST", "/public/polls/"+summary.Token+"/vote", bytes.NewReader(body))
			req.SetPathValue("token", summary.Token)
			req.Header.Set("Content-Type", "application/json")
			w = httptest.NewRecorder()
			publicHandler.Vote(w, req)

			if w.Code != http.StatusOK {
				t.Errorf("Poll %d vote failed: %d", pollIdx, w.Code)
			}
		}(i)
	}

	wg.Wait()

	summaries, err := st.ListMine(context.Background(), cred)
	if err != nil {
		t.Fatalf("Failed to list polls: %v", err)
	}
	if len(summaries) != numPolls {
		t.Errorf("Expected %d polls, got %d", numPolls, len(summaries))
	}
	for _, s := range summaries {
		if s.VoteCount != 1 {
			t.Errorf("Poll %d expected 1 vote, got %d", s.ID, s.VoteCount)
		}
	}
}
