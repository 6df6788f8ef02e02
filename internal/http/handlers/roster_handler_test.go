package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tbourn/go-celebrations-backend/internal/auth"
	"github.com/tbourn/go-celebrations-backend/internal/domain"
	"github.com/tbourn/go-celebrations-backend/internal/services"
)

func intPtr(n int) *int { return &n }

func sampleRoster() []domain.RosterRecord {
	return []domain.RosterRecord{
		{ID: 1, Name: "Ann", EventType: domain.EventBirthday, EventDate: "03-15", Year: intPtr(1990), Active: true},
		{ID: 2, Name: "Bo", EventType: domain.EventAnniversary, EventDate: "03-15", Active: true},
		{ID: 3, Name: "Cy", EventType: domain.EventBirthday, EventDate: "03-15", Active: false},
		{ID: 4, Name: "Di", EventType: domain.EventBirthday, EventDate: "04-01", Active: true},
	}
}

func uploadRequest(t *testing.T, field, name, content string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, name)
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	_, _ = fw.Write([]byte(content))
	_ = mw.Close()
	req := httptest.NewRequest(http.MethodPost, "/roster/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestListRoster(t *testing.T) {
	f := newFixture(sampleRoster()...)
	for query, want := range map[string]int{"": 4, "?active=true": 3, "?active=false": 4} {
		w := httptest.NewRecorder()
		f.r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/roster"+query, nil))
		var resp RosterListResponse
		_ = json.Unmarshal(w.Body.Bytes(), &resp)
		if w.Code != http.StatusOK || resp.Total != want || len(resp.Records) != want {
			t.Fatalf("query %q: status=%d total=%d want %d", query, w.Code, resp.Total, want)
		}
	}

	w := httptest.NewRecorder()
	f.r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/roster?active=perhaps", nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad flag status=%d", w.Code)
	}

	f.cel.err = errBoom
	w = httptest.NewRecorder()
	f.r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/roster", nil))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("store failure status=%d", w.Code)
	}
}

func TestUploadRoster_AdminOnly(t *testing.T) {
	f := newFixture()
	csv := "name,type,date\nAnn,birthday,03-15\n"

	w := httptest.NewRecorder()
	f.r.ServeHTTP(w, uploadRequest(t, "file", "roster.csv", csv))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous status=%d", w.Code)
	}

	w = httptest.NewRecorder()
	req := uploadRequest(t, "file", "roster.csv", csv)
	req.Header.Set("Authorization", f.token(auth.RoleUser))
	f.r.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("user status=%d", w.Code)
	}

	w = httptest.NewRecorder()
	req = uploadRequest(t, "file", "roster.csv", csv)
	req.Header.Set("Authorization", f.token(auth.RoleAdmin))
	f.r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("admin status=%d body=%s", w.Code, w.Body.String())
	}
	var res services.ImportResult
	_ = json.Unmarshal(w.Body.Bytes(), &res)
	if res.RecordsProcessed != 2 || f.imp.gotName != "roster.csv" || f.imp.gotBody != csv {
		t.Fatalf("import result=%+v name=%q body=%q", res, f.imp.gotName, f.imp.gotBody)
	}
}

func TestUploadRoster_Errors(t *testing.T) {
	f := newFixture()
	admin := f.token(auth.RoleAdmin)

	w := httptest.NewRecorder()
	req := uploadRequest(t, "upload", "roster.csv", "x")
	req.Header.Set("Authorization", admin)
	f.r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing field status=%d", w.Code)
	}

	f.imp.err = fmt.Errorf("%w: missing required columns: date", services.ErrCSVInvalid)
	w = httptest.NewRecorder()
	req = uploadRequest(t, "file", "roster.csv", "name,type\n")
	req.Header.Set("Authorization", admin)
	f.r.ServeHTTP(w, req)
	var resp ErrorResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if w.Code != http.StatusBadRequest || resp.Code != ErrCodeCSVInvalid {
		t.Fatalf("csv invalid: status=%d body=%+v", w.Code, resp)
	}

	f.imp.err = errBoom
	w = httptest.NewRecorder()
	req = uploadRequest(t, "file", "roster.csv", "name,type,date\n")
	req.Header.Set("Authorization", admin)
	f.r.ServeHTTP(w, req)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("store failure status=%d", w.Code)
	}
}

func TestListRosterImports_Limit(t *testing.T) {
	f := newFixture()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/roster/imports?limit=2", nil)
	req.Header.Set("Authorization", f.token(auth.RoleAdmin))
	f.r.ServeHTTP(w, req)
	var resp RosterImportsResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if w.Code != http.StatusOK || len(resp.Imports) != 2 {
		t.Fatalf("status=%d imports=%d", w.Code, len(resp.Imports))
	}
}

func TestUpdateRoster(t *testing.T) {
	f := newFixture(sampleRoster()...)
	admin := f.token(auth.RoleAdmin)
	patch := func(path, body string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPatch, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", admin)
		f.r.ServeHTTP(w, req)
		return w
	}

	if w := patch("/roster/1", `{"active":false}`); w.Code != http.StatusNoContent {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if f.cel.activeID != 1 || f.cel.active == nil || *f.cel.active {
		t.Fatalf("SetActive got id=%d active=%v", f.cel.activeID, f.cel.active)
	}
	if w := patch("/roster/99", `{"active":true}`); w.Code != http.StatusNotFound {
		t.Fatalf("unknown id status=%d", w.Code)
	}
	if w := patch("/roster/abc", `{"active":true}`); w.Code != http.StatusBadRequest {
		t.Fatalf("bad id status=%d", w.Code)
	}
	if w := patch("/roster/1", `{}`); w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("missing active status=%d", w.Code)
	}
}
