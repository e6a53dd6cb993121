// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/meetvote/meetvote/cliparse"
	"github.com/meetvote/meetvote/db"
	"github.com/meetvote/meetvote/models"
	"github.com/meetvote/meetvote/store"
)

// TestDates is the shared candidate date fixture.
var TestDates = []string{"2024-01-05", "2024-01-06", "2024-01-07"}

// SetupTestDB opens a fresh in-memory sqlite database with the full
// schema. Each call is an isolated database.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := store.Open(db.BackendSQLite, "file::memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	return conn
}

// SetupStore opens a fresh in-memory store.
func SetupStore(t *testing.T) *store.SQLStore {
	t.Helper()
	return store.NewSQL(SetupTestDB(t))
}

// SetupStoreWithTTL opens a store whose sessions expire after ttl.
func SetupStoreWithTTL(t *testing.T, ttl time.Duration) *store.SQLStore {
	t.Helper()
	return store.NewSQLWithTTL(SetupTestDB(t), ttl)
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:          5000,
		DatabaseType:  db.BackendSQLite,
		DatabaseURL:   "file::memory:",
		SessionTTL:    time.Hour,
		AllowedOrigin: "*",
	}
}

// CreateTestOwner registers a user and logs them in, returning the
// bearer credential.
func CreateTestOwner(t *testing.T, st store.Store, username string) string {
	t.Helper()

	ctx := context.Background()
	if _, err := st.CreateUser(ctx, username, "secret123"); err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	session, _, err := st.Login(ctx, username, "secret123")
	if err != nil {
		t.Fatalf("Failed to log in test user: %v", err)
	}
	return session.Token
}

// CreateTestPoll creates a poll with the standard dates. If closed is
// true the poll is closed before returning.
func CreateTestPoll(t *testing.T, st store.Store, credential string, closed bool) *models.PollSummary {
	t.Helper()

	ctx := context.Background()
	summary, err := st.CreatePoll(ctx, credential, "Test Poll", "A test poll", TestDates)
	if err != nil {
		t.Fatalf("Failed to create test poll: %v", err)
	}
	if closed {
		if summary, err = st.ClosePoll(ctx, credential, summary.ID); err != nil {
			t.Fatalf("Failed to close test poll: %v", err)
		}
	}
	return summary
}

// SubmitTestVote records a ballot through the store.
func SubmitTestVote(t *testing.T, st store.Store, token, name string, selections map[string]string) *models.Poll {
	t.Helper()

	poll, err := st.SubmitVote(context.Background(), token, name, selections)
	if err != nil {
		t.Fatalf("Failed to submit test vote: %v", err)
	}
	return poll
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
