package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tbourn/go-celebrations-backend/internal/auth"
	"github.com/tbourn/go-celebrations-backend/internal/scheduler"
	"github.com/tbourn/go-celebrations-backend/internal/services"
)

func TestTodayCelebrations(t *testing.T) {
	f := newFixture(sampleRoster()...)
	w := httptest.NewRecorder()
	f.r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/celebrations/today", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	var resp CelebrationsResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Date != "2025-03-15" || resp.Count != 2 {
		t.Fatalf("resp = %+v", resp)
	}
	ann := resp.Celebrations[0]
	if ann.Name != "Ann" || ann.AgeOrYears != 35 || ann.Description != "Ann's birthday (turning 35)" {
		t.Fatalf("ann = %+v", ann)
	}
	if resp.Celebrations[1].Description != "Bo's anniversary" {
		t.Fatalf("bo = %+v", resp.Celebrations[1])
	}
}

func TestCelebrationsOn(t *testing.T) {
	f := newFixture(sampleRoster()...)
	w := httptest.NewRecorder()
	f.r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/celebrations/04-01", nil))
	var resp CelebrationsResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if w.Code != http.StatusOK || resp.Count != 1 || resp.Celebrations[0].Name != "Di" {
		t.Fatalf("status=%d resp=%+v", w.Code, resp)
	}

	for _, bad := range []string{"13-01", "4-1", "02-30"} {
		w := httptest.NewRecorder()
		f.r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/celebrations/"+bad, nil))
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s status=%d", bad, w.Code)
		}
	}
}

func TestSendCelebrations(t *testing.T) {
	f := newFixture(sampleRoster()...)
	send := func(query, role string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/celebrations/send"+query, nil)
		if role != "" {
			req.Header.Set("Authorization", f.token(role))
		}
		f.r.ServeHTTP(w, req)
		return w
	}

	if w := send("", auth.RoleUser); w.Code != http.StatusForbidden {
		t.Fatalf("user status=%d", w.Code)
	}

	w := send("", auth.RoleAdmin)
	var sum services.Summary
	_ = json.Unmarshal(w.Body.Bytes(), &sum)
	if w.Code != http.StatusOK || sum.Date != "2025-03-15" || sum.Succeeded != 1 {
		t.Fatalf("status=%d sum=%+v", w.Code, sum)
	}

	w = send("?date=2025-12-25", auth.RoleAdmin)
	if w.Code != http.StatusOK || f.sched.gotDay.Format("2006-01-02") != "2025-12-25" {
		t.Fatalf("status=%d day=%v", w.Code, f.sched.gotDay)
	}

	if w := send("?date=25-12-2025", auth.RoleAdmin); w.Code != http.StatusBadRequest {
		t.Fatalf("bad date status=%d", w.Code)
	}

	f.sched.err = fmt.Errorf("%w: db down", services.ErrRosterUnavailable)
	w = send("", auth.RoleAdmin)
	var resp ErrorResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if w.Code != http.StatusInternalServerError || resp.Code != ErrCodeDispatchFailed {
		t.Fatalf("status=%d body=%+v", w.Code, resp)
	}
}

func TestListDeliveries(t *testing.T) {
	f := newFixture()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/celebrations/deliveries?date=2025-03-14", nil)
	req.Header.Set("Authorization", f.token(auth.RoleAdmin))
	f.r.ServeHTTP(w, req)
	var resp DeliveriesResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if w.Code != http.StatusOK || resp.Date != "2025-03-14" || f.deliv.gotDate != "2025-03-14" || len(resp.Deliveries) != 1 {
		t.Fatalf("status=%d resp=%+v", w.Code, resp)
	}
}

func TestSchedulerStatus(t *testing.T) {
	f := newFixture()
	w := httptest.NewRecorder()
	f.r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/scheduler/status", nil))
	var st scheduler.Status
	_ = json.Unmarshal(w.Body.Bytes(), &st)
	if w.Code != http.StatusOK || !st.Enabled || st.ScheduleTime != "08:00" || st.Timezone != "UTC" {
		t.Fatalf("status=%d st=%+v", w.Code, st)
	}
}
