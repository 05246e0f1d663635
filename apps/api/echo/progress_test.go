package echoapi_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	. "github.com/intellilearn/backend/apps/api/echo"
	"github.com/intellilearn/backend/core/mastery"
	"github.com/intellilearn/backend/core/user"
)

func Test_progressApi_retrieve(t *testing.T) {
	app, deps := setup(t)
	ctx := context.Background()
	student := createUser(t, deps.usrRepo, "Student", "student1", "s1@test.cd", user.RoleStudent)
	sibling := createUser(t, deps.usrRepo, "Sibling", "student2", "s2@test.cd", user.RoleStudent)
	teacher := createUser(t, deps.usrRepo, "Teacher", "teacher1", "t1@test.cd", user.RoleTeacher)
	parent := createUser(t, deps.usrRepo, "Parent", "parent1", "p1@test.cd", user.RoleParent, student.ID)

	t.Run("auth required", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/v1/progress")
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusUnauthorized, wantData: marshallObj(t, errMissingToken)}, rec)
	})

	t.Run("virgin learner gets a default profile", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/progress", getToken(t, student))
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v, want %v; body: %s", rec.Code, http.StatusOK, rec.Body.String())
		}
		var profile mastery.Profile
		if err := json.Unmarshal(rec.Body.Bytes(), &profile); err != nil {
			t.Fatalf("unmarshaling response: %v", err)
		}
		if profile.LearnerID != student.ID {
			t.Errorf("LearnerID = %q, want %q", profile.LearnerID, student.ID)
		}
		if profile.OverallRate != mastery.DefaultRate {
			t.Errorf("OverallRate = %g, want %g", profile.OverallRate, mastery.DefaultRate)
		}
		if len(profile.History) != 0 {
			t.Errorf("len(History) = %d, want 0", len(profile.History))
		}
	})

	// seed some progress for the student
	score := 90.0
	if _, err := deps.engine.RecordInteraction(ctx, student.ID, mastery.Interaction{
		Type: mastery.TypeQuiz, Subject: "Math", Score: &score,
	}); err != nil {
		t.Fatalf("RecordInteraction(): %v", err)
	}
	want := deps.engine.GetProfile(ctx, student.ID)

	tests := []httpTest{
		{
			name: "teacher may read any student", token: getToken(t, teacher),
			path:     "/v1/progress?student_id=" + student.ID,
			wantCode: http.StatusOK, wantData: marshallObj(t, want),
		},
		{
			name: "parent may read their child", token: getToken(t, parent),
			path:     "/v1/progress?student_id=" + student.ID,
			wantCode: http.StatusOK, wantData: marshallObj(t, want),
		},
		{
			name: "parent may not read other children", token: getToken(t, parent),
			path:     "/v1/progress?student_id=" + sibling.ID,
			wantCode: http.StatusForbidden, wantData: marshallObj(t, errForbidden),
		},
		{
			name: "student may not read classmates", token: getToken(t, sibling),
			path:     "/v1/progress?student_id=" + student.ID,
			wantCode: http.StatusForbidden, wantData: marshallObj(t, errForbidden),
		},
		{
			name: "student_id defaults to the caller", token: getToken(t, student),
			path:     "/v1/progress",
			wantCode: http.StatusOK, wantData: marshallObj(t, want),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_progressApi_recordInteraction(t *testing.T) {
	app, deps := setup(t)
	student := createUser(t, deps.usrRepo, "Student", "student1", "s1@test.cd", user.RoleStudent)
	token := getToken(t, student)

	tests := []httpTest{
		{name: "auth required", body: []byte(`{"type":"quiz"}`), wantCode: http.StatusUnauthorized, wantData: marshallObj(t, errMissingToken)},
		{name: "type required", token: token, body: []byte(`{}`), wantCode: http.StatusBadRequest},
		{name: "score out of range", token: token, body: []byte(`{"type":"quiz","score":150}`), wantCode: http.StatusBadRequest},
		{name: "invalid difficulty", token: token, body: []byte(`{"type":"quiz","score":80,"difficulty":"brutal"}`), wantCode: http.StatusBadRequest},
		{name: "negative time spent", token: token, body: []byte(`{"type":"quiz","score":80,"timeSpent":-5}`), wantCode: http.StatusBadRequest},
		{
			name:     "quiz raises the rate",
			token:    token,
			body:     []byte(`{"type":"quiz","subject":"Math","topic":"Fractions","score":90,"difficulty":"hard","timeSpent":30}`),
			wantCode: http.StatusOK,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/progress/interactions", tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if tt.wantCode == http.StatusOK {
				var profile mastery.Profile
				if err := json.Unmarshal(rec.Body.Bytes(), &profile); err != nil {
					t.Fatalf("unmarshaling response: %v", err)
				}
				// (90-70)/10 * 1.3 (hard) * 1.0 (30 min) = 2.6
				if want := mastery.DefaultRate + 2.6; profile.OverallRate != want {
					t.Errorf("OverallRate = %g, want %g", profile.OverallRate, want)
				}
				if rate := profile.SubjectRates["Math"]; rate != mastery.DefaultRate+2.6 {
					t.Errorf("SubjectRates[Math] = %g, want %g", rate, mastery.DefaultRate+2.6)
				}
				if len(profile.History) != 1 {
					t.Fatalf("len(History) = %d, want 1", len(profile.History))
				}
				if in := profile.History[0]; in.RateChange != 2.6 || in.Topic != "Fractions" {
					t.Errorf("History[0] = %+v, want rateChange 2.6 on Fractions", in)
				}
			}
		})
	}

	t.Run("recorded against the caller, not a query param", func(t *testing.T) {
		other := createUser(t, deps.usrRepo, "Other", "student2", "s2@test.cd", user.RoleStudent)
		body := []byte(`{"type":"content_view","subject":"History"}`)
		req, rec := newAuthRequest(http.MethodPost, "/v1/progress/interactions?student_id="+other.ID, token, body)
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v, want %v; body: %s", rec.Code, http.StatusOK, rec.Body.String())
		}
		profile := deps.engine.GetProfile(context.Background(), other.ID)
		if len(profile.History) != 0 {
			t.Error("interaction must not be recorded against another learner")
		}
	})
}

func Test_progressApi_subjectSummary(t *testing.T) {
	app, deps := setup(t)
	ctx := context.Background()
	student := createUser(t, deps.usrRepo, "Student", "student1", "s1@test.cd", user.RoleStudent)
	token := getToken(t, student)

	t.Run("no history yields an empty summary", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/progress/Math/summary", token)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusOK,
			wantData: marshallObj(t, SubjectSummaryResponse{Subject: "Math", Summary: []string{}}),
		}, rec)
	})

	t.Run("summarizes subject interactions only", func(t *testing.T) {
		score := 85.0
		interactions := []mastery.Interaction{
			{Type: mastery.TypeQuiz, Subject: "Math", Topic: "Fractions", Score: &score},
			{Type: mastery.TypeContentView, Subject: "History", Topic: "WW2"},
			{Type: mastery.TypeDoubt, Subject: "Math", Topic: "Decimals"},
		}
		for _, in := range interactions {
			if _, err := deps.engine.RecordInteraction(ctx, student.ID, in); err != nil {
				t.Fatalf("RecordInteraction(): %v", err)
			}
		}

		req, rec := newAuthRequest(http.MethodGet, "/v1/progress/Math/summary", token)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusOK,
			wantData: marshallObj(t, SubjectSummaryResponse{
				Subject: "Math",
				Summary: []string{
					fmt.Sprintf("Scored %g%% on %s quiz", score, "Fractions"),
					"Asked about Decimals",
				},
			}),
		}, rec)
	})
}
