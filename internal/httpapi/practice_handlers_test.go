package httpapi

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// startSession opens a practice session over the user's items and returns
// the session id with the item ids in session order.
func (f libraryFixture) startSession(t *testing.T, token, body string) (string, []string) {
	t.Helper()
	rec := doRequest(f.e, http.MethodPost, "/api/practice/sessions", body, tokenCookie(token))
	if rec.Code != http.StatusCreated {
		t.Fatalf("start session: got %d want %d (%s)", rec.Code, http.StatusCreated, rec.Body.String())
	}
	resp := decodeBody(t, rec)
	session, _ := resp["session"].(map[string]any)
	sessionID, _ := session["id"].(string)
	var itemIDs []string
	items, _ := resp["items"].([]any)
	for _, raw := range items {
		item, _ := raw.(map[string]any)
		id, _ := item["id"].(string)
		itemIDs = append(itemIDs, id)
	}
	return sessionID, itemIDs
}

func answerBody(itemID string, correct bool) string {
	return fmt.Sprintf(`{"itemId":%q,"correct":%t}`, itemID, correct)
}

func TestStartPracticeSessionAcceptsEmptyBody(t *testing.T) {
	t.Parallel()

	f := newLibraryFixture(t)
	token, _ := f.auth.signIn(t, f.tokens, "ann@example.com")
	f.createItem(t, token, `{"word":"apple"}`)

	sessionID, itemIDs := f.startSession(t, token, "")
	if sessionID == "" || len(itemIDs) != 1 {
		t.Fatalf("unexpected session: %q %v", sessionID, itemIDs)
	}

	// Chunked uploads carry no Content-Length even when empty.
	req := httptest.NewRequest(http.MethodPost, "/api/practice/sessions", strings.NewReader(""))
	req.ContentLength = -1
	req.TransferEncoding = []string{"chunked"}
	req.AddCookie(tokenCookie(token))
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("chunked empty body: got %d want %d (%s)", rec.Code, http.StatusCreated, rec.Body.String())
	}
	session, _ := decodeBody(t, rec)["session"].(map[string]any)
	if session["kind"] != "flashcard" || session["status"] != "active" {
		t.Fatalf("expected default flashcard session, got %#v", session)
	}
}

func TestStartPracticeSessionValidation(t *testing.T) {
	t.Parallel()

	f := newLibraryFixture(t)
	token, _ := f.auth.signIn(t, f.tokens, "ann@example.com")

	rec := doRequest(f.e, http.MethodPost, "/api/practice/sessions", `{}`, tokenCookie(token))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("no items: got %d want %d", rec.Code, http.StatusBadRequest)
	}

	f.createItem(t, token, `{"word":"apple"}`)
	for _, body := range []string{`{"kind":"essay"}`, `{"size":51}`, `{"size":-1}`, `{"kind":`} {
		rec := doRequest(f.e, http.MethodPost, "/api/practice/sessions", body, tokenCookie(token))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: got %d want %d", body, rec.Code, http.StatusBadRequest)
		}
	}

	sessionID, _ := f.startSession(t, token, `{"kind":"quiz","size":5}`)
	if sessionID == "" {
		t.Fatalf("expected a quiz session")
	}
}

func TestRecordPracticeAnswerRejectsRepeat(t *testing.T) {
	t.Parallel()

	f := newLibraryFixture(t)
	token, _ := f.auth.signIn(t, f.tokens, "ann@example.com")
	f.createItem(t, token, `{"word":"apple"}`)
	f.createItem(t, token, `{"word":"banana"}`)
	sessionID, itemIDs := f.startSession(t, token, "")
	if len(itemIDs) != 2 {
		t.Fatalf("expected two session items, got %v", itemIDs)
	}
	path := "/api/practice/sessions/" + sessionID + "/answers"

	rec := doRequest(f.e, http.MethodPost, path, answerBody(itemIDs[0], true), tokenCookie(token))
	if rec.Code != http.StatusOK {
		t.Fatalf("first answer: got %d want %d (%s)", rec.Code, http.StatusOK, rec.Body.String())
	}
	body := decodeBody(t, rec)
	session, _ := body["session"].(map[string]any)
	if session["answered"] != float64(1) || session["correctCount"] != float64(1) || session["status"] != "active" {
		t.Fatalf("unexpected session after first answer: %#v", session)
	}
	if item, _ := body["item"].(map[string]any); item["reviewCount"] != float64(1) {
		t.Fatalf("answer should update the item: %#v", item)
	}

	rec = doRequest(f.e, http.MethodPost, path, answerBody(itemIDs[0], false), tokenCookie(token))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("repeated answer: got %d want %d", rec.Code, http.StatusBadRequest)
	}

	rec = doRequest(f.e, http.MethodPost, path, `{"itemId":"`+itemIDs[1]+`"}`, tokenCookie(token))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing correct flag: got %d want %d", rec.Code, http.StatusBadRequest)
	}

	rec = doRequest(f.e, http.MethodPost, path, answerBody("not-in-session", true), tokenCookie(token))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("foreign item: got %d want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestRecordPracticeAnswerOnCompletedSession(t *testing.T) {
	t.Parallel()

	f := newLibraryFixture(t)
	token, _ := f.auth.signIn(t, f.tokens, "ann@example.com")
	f.createItem(t, token, `{"word":"apple"}`)
	f.createItem(t, token, `{"word":"banana"}`)
	sessionID, itemIDs := f.startSession(t, token, "")

	rec := doRequest(f.e, http.MethodPost, "/api/practice/sessions/"+sessionID+"/complete", "", tokenCookie(token))
	if rec.Code != http.StatusOK {
		t.Fatalf("complete: got %d want %d", rec.Code, http.StatusOK)
	}
	session, _ := decodeBody(t, rec)["session"].(map[string]any)
	if session["status"] != "completed" || session["completedAt"] == nil {
		t.Fatalf("expected completed session, got %#v", session)
	}

	rec = doRequest(f.e, http.MethodPost, "/api/practice/sessions/"+sessionID+"/answers", answerBody(itemIDs[0], true), tokenCookie(token))
	if rec.Code != http.StatusConflict {
		t.Fatalf("answer on completed session: got %d want %d", rec.Code, http.StatusConflict)
	}

	// Completing twice is a no-op.
	rec = doRequest(f.e, http.MethodPost, "/api/practice/sessions/"+sessionID+"/complete", "", tokenCookie(token))
	if rec.Code != http.StatusOK {
		t.Fatalf("second complete: got %d want %d", rec.Code, http.StatusOK)
	}
}

func TestPracticeSessionCompletesAfterLastAnswer(t *testing.T) {
	t.Parallel()

	f := newLibraryFixture(t)
	token, _ := f.auth.signIn(t, f.tokens, "ann@example.com")
	f.createItem(t, token, `{"word":"apple"}`)
	sessionID, itemIDs := f.startSession(t, token, "")
	path := "/api/practice/sessions/" + sessionID + "/answers"

	rec := doRequest(f.e, http.MethodPost, path, answerBody(itemIDs[0], false), tokenCookie(token))
	if rec.Code != http.StatusOK {
		t.Fatalf("answer: got %d want %d (%s)", rec.Code, http.StatusOK, rec.Body.String())
	}
	session, _ := decodeBody(t, rec)["session"].(map[string]any)
	if session["status"] != "completed" || session["accuracy"] != float64(0) {
		t.Fatalf("expected completed session with zero accuracy, got %#v", session)
	}

	rec = doRequest(f.e, http.MethodPost, path, answerBody(itemIDs[0], true), tokenCookie(token))
	if rec.Code != http.StatusConflict {
		t.Fatalf("answer after completion: got %d want %d", rec.Code, http.StatusConflict)
	}
}

func TestPracticeSessionsAreScopedToOwner(t *testing.T) {
	t.Parallel()

	f := newLibraryFixture(t)
	token, _ := f.auth.signIn(t, f.tokens, "ann@example.com")
	otherToken, _ := f.auth.signIn(t, f.tokens, "bob@example.com")
	f.createItem(t, token, `{"word":"apple"}`)
	sessionID, itemIDs := f.startSession(t, token, "")

	if rec := doRequest(f.e, http.MethodGet, "/api/practice/sessions/"+sessionID, "", tokenCookie(otherToken)); rec.Code != http.StatusNotFound {
		t.Fatalf("foreign get: got %d want %d", rec.Code, http.StatusNotFound)
	}
	rec := doRequest(f.e, http.MethodPost, "/api/practice/sessions/"+sessionID+"/answers", answerBody(itemIDs[0], true), tokenCookie(otherToken))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("foreign answer: got %d want %d", rec.Code, http.StatusNotFound)
	}

	rec = doRequest(f.e, http.MethodGet, "/api/practice/sessions", "", tokenCookie(token))
	if rec.Code != http.StatusOK {
		t.Fatalf("list: got %d want %d", rec.Code, http.StatusOK)
	}
	if items, _ := decodeBody(t, rec)["items"].([]any); len(items) != 1 {
		t.Fatalf("expected one session, got %#v", items)
	}
}
