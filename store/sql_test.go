// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store_test

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/meetvote/meetvote/models"
	"github.com/meetvote/meetvote/testutil"
)

func TestCreateUserNormalizesUsername(t *testing.T) {
	st := testutil.SetupStore(t)
	ctx := context.Background()

	user, err := st.CreateUser(ctx, "  Alice  ", "secret123")
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if user.Username != "alice" {
		t.Errorf("Expected lower-cased username, got %q", user.Username)
	}
}

func TestCreateUserDuplicate(t *testing.T) {
	st := testutil.SetupStore(t)
	ctx := context.Background()

	if _, err := st.CreateUser(ctx, "alice", "secret123"); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	// Same name modulo case and whitespace is the same account.
	_, err := st.CreateUser(ctx, " ALICE ", "other456")
	if !errors.Is(err, models.ErrExists) {
		t.Errorf("Expected ErrExists, got %v", err)
	}
}

func TestCreateUserValidation(t *testing.T) {
	st := testutil.SetupStore(t)
	ctx := context.Background()

	if _, err := st.CreateUser(ctx, "", "secret123"); !models.IsValidation(err) {
		t.Errorf("Expected ValidationError for empty username, got %v", err)
	}
	if _, err := st.CreateUser(ctx, "alice", "  "); !models.IsValidation(err) {
		t.Errorf("Expected ValidationError for empty password, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	st := testutil.SetupStore(t)
	ctx := context.Background()

	st.CreateUser(ctx, "alice", "secret123")

	session, user, err := st.Login(ctx, "Alice", "secret123")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if session.Token == "" {
		t.Error("Expected a session token")
	}
	if user.Username != "alice" {
		t.Errorf("Expected user alice, got %q", user.Username)
	}

	resolved, err := st.Identity(ctx, session.Token)
	if err != nil {
		t.Fatalf("Identity failed: %v", err)
	}
	if resolved.ID != user.ID {
		t.Errorf("Identity resolved wrong user: %s vs %s", resolved.ID, user.ID)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	st := testutil.SetupStore(t)
	ctx := context.Background()

	st.CreateUser(ctx, "alice", "secret123")

	if _, _, err := st.Login(ctx, "alice", "wrong"); !errors.Is(err, models.ErrAuth) {
		t.Errorf("Expected ErrAuth for wrong password, got %v", err)
	}
	if _, _, err := st.Login(ctx, "nobody", "secret123"); !errors.Is(err, models.ErrAuth) {
		t.Errorf("Expected ErrAuth for unknown user, got %v", err)
	}
}

func TestIdentityRejectsMissingAndExpired(t *testing.T) {
	ctx := context.Background()

	st := testutil.SetupStore(t)
	if _, err := st.Identity(ctx, ""); !errors.Is(err, models.ErrAuth) {
		t.Errorf("Expected ErrAuth for empty credential, got %v", err)
	}
	if _, err := st.Identity(ctx, "bogus-token"); !errors.Is(err, models.ErrAuth) {
		t.Errorf("Expected ErrAuth for unknown credential, got %v", err)
	}

	// A store whose sessions are born expired.
	expired := testutil.SetupStoreWithTTL(t, -time.Second)
	expired.CreateUser(ctx, "alice", "secret123")
	session, _, err := expired.Login(ctx, "alice", "secret123")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if _, err := expired.Identity(ctx, session.Token); !errors.Is(err, models.ErrAuth) {
		t.Errorf("Expected ErrAuth for expired session, got %v", err)
	}
}

func TestCreatePollValidation(t *testing.T) {
	st := testutil.SetupStore(t)
	ctx := context.Background()
	cred := testutil.CreateTestOwner(t, st, "alice")

	cases := []struct {
		name  string
		title string
		dates []string
	}{
		{"two dates", "Meeting", []string{"2024-01-05", "2024-01-06"}},
		{"seven dates", "Meeting", []string{
			"2024-01-01", "2024-01-02", "2024-01-03", "2024-01-04",
			"2024-01-05", "2024-01-06", "2024-01-07"}},
		{"duplicates collapse below minimum", "Meeting",
			[]string{"2024-01-05", "2024-01-05", "2024-01-06"}},
		{"empty title", "", testutil.TestDates},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := st.CreatePoll(ctx, cred, tc.title, "", tc.dates)
			if !models.IsValidation(err) {
				t.Errorf("Expected ValidationError, got %v", err)
			}
		})
	}
}

func TestCreatePollSortsAndAcceptsSixDates(t *testing.T) {
	st := testutil.SetupStore(t)
	ctx := context.Background()
	cred := testutil.CreateTestOwner(t, st, "alice")

	summary, err := st.CreatePoll(ctx, cred, "Offsite", "", []string{
		"2024-02-03", "2024-02-01", "2024-02-06", "2024-02-05", "2024-02-02", "2024-02-04",
	})
	if err != nil {
		t.Fatalf("CreatePoll failed: %v", err)
	}

	want := []string{"2024-02-01", "2024-02-02", "2024-02-03", "2024-02-04", "2024-02-05", "2024-02-06"}
	if !reflect.DeepEqual(summary.Dates, want) {
		t.Errorf("Expected sorted dates %v, got %v", want, summary.Dates)
	}
	if summary.Token == "" {
		t.Error("Expected a public token")
	}
	if summary.IsClosed {
		t.Error("New poll must be open")
	}
}

func TestCreatePollRequiresCredential(t *testing.T) {
	st := testutil.SetupStore(t)

	_, err := st.CreatePoll(context.Background(), "", "Meeting", "", testutil.TestDates)
	if !errors.Is(err, models.ErrAuth) {
		t.Errorf("Expected ErrAuth without credential, got %v", err)
	}
}

func TestPollByTokenHidesClosed(t *testing.T) {
	st := testutil.SetupStore(t)
	ctx := context.Background()
	cred := testutil.CreateTestOwner(t, st, "alice")

	open := testutil.CreateTestPoll(t, st, cred, false)
	if _, err := st.PollByToken(ctx, open.Token); err != nil {
		t.Fatalf("Expected open poll to be reachable, got %v", err)
	}

	closed := testutil.CreateTestPoll(t, st, cred, true)
	if _, err := st.PollByToken(ctx, closed.Token); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for closed poll via public token, got %v", err)
	}

	if _, err := st.PollByToken(ctx, "no-such-token"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for unknown token, got %v", err)
	}
}

func TestPollByIDOwnership(t *testing.T) {
	st := testutil.SetupStore(t)
	ctx := context.Background()
	alice := testutil.CreateTestOwner(t, st, "alice")
	mallory := testutil.CreateTestOwner(t, st, "mallory")

	summary := testutil.CreateTestPoll(t, st, alice, true)

	// The owner keeps access after close.
	poll, err := st.PollByID(ctx, alice, summary.ID)
	if err != nil {
		t.Fatalf("Owner read failed: %v", err)
	}
	if !poll.IsClosed || poll.ClosedAt == nil {
		t.Error("Expected closed poll with closedAt set")
	}

	if _, err := st.PollByID(ctx, mallory, summary.ID); !errors.Is(err, models.ErrAuth) {
		t.Errorf("Expected ErrAuth for foreign poll, got %v", err)
	}
	if _, err := st.PollByID(ctx, alice, 99999); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for unknown id, got %v", err)
	}
}

func TestListMine(t *testing.T) {
	st := testutil.SetupStore(t)
	ctx := context.Background()
	alice := testutil.CreateTestOwner(t, st, "alice")
	bob := testutil.CreateTestOwner(t, st, "bob")

	first := testutil.CreateTestPoll(t, st, alice, false)
	second := testutil.CreateTestPoll(t, st, alice, false)
	testutil.CreateTestPoll(t, st, bob, false)

	testutil.SubmitTestVote(t, st, first.Token, "Anna", map[string]string{"2024-01-05": "yes"})

	summaries, err := st.ListMine(ctx, alice)
	if err != nil {
		t.Fatalf("ListMine failed: %v", err)
	}

	if len(summaries) != 2 {
		t.Fatalf("Expected 2 polls for alice, got %d", len(summaries))
	}
	// Newest first.
	if summaries[0].ID != second.ID || summaries[1].ID != first.ID {
		t.Errorf("Expected order [%d %d], got [%d %d]",
			second.ID, first.ID, summaries[0].ID, summaries[1].ID)
	}
	if summaries[1].VoteCount != 1 {
		t.Errorf("Expected vote count 1, got %d", summaries[1].VoteCount)
	}
	if summaries[0].CreatedAgo == "" {
		t.Error("Expected a humanized created-ago string")
	}
	if !reflect.DeepEqual(summaries[0].Dates, testutil.TestDates) {
		t.Errorf("Expected dates %v, got %v", testutil.TestDates, summaries[0].Dates)
	}
}

func TestClosePollIdempotent(t *testing.T) {
	st := testutil.SetupStore(t)
	ctx := context.Background()
	cred := testutil.CreateTestOwner(t, st, "alice")
	summary := testutil.CreateTestPoll(t, st, cred, false)

	closed, err := st.ClosePoll(ctx, cred, summary.ID)
	if err != nil {
		t.Fatalf("ClosePoll failed: %v", err)
	}
	if !closed.IsClosed || closed.ClosedAt == nil {
		t.Fatal("Expected isClosed and closedAt set together")
	}
	firstClosedAt := *closed.ClosedAt

	// Re-closing is a no-op success and keeps the original timestamp.
	again, err := st.ClosePoll(ctx, cred, summary.ID)
	if err != nil {
		t.Fatalf("Second ClosePoll failed: %v", err)
	}
	if !again.ClosedAt.Equal(firstClosedAt) {
		t.Errorf("Re-close must not move closedAt: %v vs %v", again.ClosedAt, firstClosedAt)
	}
}

func TestClosePollGuards(t *testing.T) {
	st := testutil.SetupStore(t)
	ctx := context.Background()
	alice := testutil.CreateTestOwner(t, st, "alice")
	mallory := testutil.CreateTestOwner(t, st, "mallory")
	summary := testutil.CreateTestPoll(t, st, alice, false)

	if _, err := st.ClosePoll(ctx, mallory, summary.ID); !errors.Is(err, models.ErrAuth) {
		t.Errorf("Expected ErrAuth for foreign close, got %v", err)
	}
	if _, err := st.ClosePoll(ctx, alice, 99999); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for unknown id, got %v", err)
	}
}

func TestDeletePollCascades(t *testing.T) {
	st := testutil.SetupStore(t)
	ctx := context.Background()
	cred := testutil.CreateTestOwner(t, st, "alice")
	summary := testutil.CreateTestPoll(t, st, cred, false)
	testutil.SubmitTestVote(t, st, summary.Token, "Anna", map[string]string{"2024-01-05": "yes"})

	if err := st.DeletePoll(ctx, cred, summary.ID); err != nil {
		t.Fatalf("DeletePoll failed: %v", err)
	}

	if _, err := st.PollByID(ctx, cred, summary.ID); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for owner read after delete, got %v", err)
	}
	if _, err := st.PollByToken(ctx, summary.Token); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for public read after delete, got %v", err)
	}
	if _, err := st.SubmitVote(ctx, summary.Token, "Ben",
		map[string]string{"2024-01-05": "yes"}); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for vote after delete, got %v", err)
	}
}

func TestSubmitVoteUpsert(t *testing.T) {
	st := testutil.SetupStore(t)
	ctx := context.Background()
	cred := testutil.CreateTestOwner(t, st, "alice")
	summary := testutil.CreateTestPoll(t, st, cred, false)

	testutil.SubmitTestVote(t, st, summary.Token, "Alice", map[string]string{
		"2024-01-05": "yes", "2024-01-06": "no", "2024-01-07": "maybe",
	})
	testutil.SubmitTestVote(t, st, summary.Token, "Bob", map[string]string{
		"2024-01-05": "yes", "2024-01-06": "yes", "2024-01-07": "no",
	})

	// Bob re-votes under different case with fewer dates.
	poll, err := st.SubmitVote(ctx, summary.Token, "bob", map[string]string{"2024-01-05": "no"})
	if err != nil {
		t.Fatalf("Re-vote failed: %v", err)
	}

	if len(poll.Votes) != 2 {
		t.Fatalf("Expected 2 votes after re-vote, got %d", len(poll.Votes))
	}

	bob := poll.VoteFor("Bob")
	if bob == nil {
		t.Fatal("Expected bob's vote to exist")
	}
	if bob.Name != "bob" {
		t.Errorf("Display name follows the latest submission, got %q", bob.Name)
	}
	want := map[string]string{"2024-01-05": "no"}
	if !reflect.DeepEqual(bob.Selections, want) {
		t.Errorf("Expected replaced selections %v, got %v", want, bob.Selections)
	}
}

func TestSubmitVoteValidation(t *testing.T) {
	st := testutil.SetupStore(t)
	ctx := context.Background()
	cred := testutil.CreateTestOwner(t, st, "alice")
	summary := testutil.CreateTestPoll(t, st, cred, false)

	if _, err := st.SubmitVote(ctx, summary.Token, "", map[string]string{"2024-01-05": "yes"}); !models.IsValidation(err) {
		t.Errorf("Expected ValidationError for empty name, got %v", err)
	}
	if _, err := st.SubmitVote(ctx, summary.Token, "Anna", nil); !models.IsValidation(err) {
		t.Errorf("Expected ValidationError for empty selections, got %v", err)
	}
	if _, err := st.SubmitVote(ctx, summary.Token, "Anna",
		map[string]string{"2030-01-01": "yes"}); !models.IsValidation(err) {
		t.Errorf("Expected ValidationError for unknown date, got %v", err)
	}
}

func TestSubmitVoteOnClosedPoll(t *testing.T) {
	st := testutil.SetupStore(t)
	ctx := context.Background()
	cred := testutil.CreateTestOwner(t, st, "alice")
	summary := testutil.CreateTestPoll(t, st, cred, true)

	_, err := st.SubmitVote(ctx, summary.Token, "Anna", map[string]string{"2024-01-05": "yes"})
	if !errors.Is(err, models.ErrState) {
		t.Errorf("Expected ErrState for vote on closed poll, got %v", err)
	}
}

func TestSeedIdempotent(t *testing.T) {
	st := testutil.SetupStore(t)
	ctx := context.Background()

	if err := st.Seed(ctx); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}
	if err := st.Seed(ctx); err != nil {
		t.Fatalf("Second Seed failed: %v", err)
	}

	session, _, err := st.Login(ctx, "demo", "demo123")
	if err != nil {
		t.Fatalf("Demo login failed: %v", err)
	}

	summaries, err := st.ListMine(ctx, session.Token)
	if err != nil {
		t.Fatalf("ListMine failed: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("Expected exactly 1 demo poll, got %d", len(summaries))
	}
	if summaries[0].VoteCount != 2 {
		t.Errorf("Expected 2 seeded votes, got %d", summaries[0].VoteCount)
	}
}
