package echoapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/intellilearn/backend/core/mastery"
	"github.com/intellilearn/backend/core/user"
)

func Test_aiApi_chat(t *testing.T) {
	app, deps := setup(t)
	ctx := context.Background()
	student := createUser(t, deps.usrRepo, "Student", "student1", "s1@test.cd", user.RoleStudent)
	token := getToken(t, student)

	t.Run("auth required", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/v1/ai/chat", []byte(`{"message":"help","subject":"Math"}`))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusUnauthorized, wantData: marshallObj(t, errMissingToken)}, rec)
	})

	t.Run("message and subject required", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/ai/chat", token, []byte(`{}`))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusBadRequest}, rec)
	})

	t.Run("ok", func(t *testing.T) {
		body := []byte(`{"message":"What is a derivative?","subject":"Math"}`)
		req, rec := newAuthRequest(http.MethodPost, "/v1/ai/chat", token, body)
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v, want %v; body: %s", rec.Code, http.StatusOK, rec.Body.String())
		}
		var resp struct {
			Response     string  `json:"response"`
			LearningRate float64 `json:"learning_rate"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshaling response: %v", err)
		}
		if resp.Response == "" {
			t.Error("expected a tutor reply")
		}
		if !strings.Contains(resp.Response, "Math") {
			t.Errorf("reply %q does not mention the subject", resp.Response)
		}

		// asking a question counts as a doubt against the subject
		profile := deps.engine.GetProfile(ctx, student.ID)
		if len(profile.History) != 1 {
			t.Fatalf("len(History) = %d, want 1", len(profile.History))
		}
		in := profile.History[0]
		if in.Type != mastery.TypeDoubt || in.Subject != "Math" {
			t.Errorf("History[0] = %+v, want a doubt on Math", in)
		}
		if in.RateChange != -1 {
			t.Errorf("RateChange = %g, want -1", in.RateChange)
		}
		if resp.LearningRate != profile.OverallRate {
			t.Errorf("LearningRate = %g, want the post-doubt rate %g", resp.LearningRate, profile.OverallRate)
		}
	})
}

func Test_aiApi_generateContent(t *testing.T) {
	app, deps := setup(t)
	teacher := createUser(t, deps.usrRepo, "Teacher", "teacher1", "t1@test.cd", user.RoleTeacher)
	student := createUser(t, deps.usrRepo, "Student", "student1", "s1@test.cd", user.RoleStudent)

	tests := []httpTest{
		{name: "auth required", wantCode: http.StatusUnauthorized, wantData: marshallObj(t, errMissingToken)},
		{
			name: "teacher only", token: getToken(t, student),
			body:     []byte(`{"topic":"Fractions","content_type":"lesson"}`),
			wantCode: http.StatusForbidden, wantData: marshallObj(t, errForbidden),
		},
		{name: "topic required", token: getToken(t, teacher), body: []byte(`{"content_type":"lesson"}`), wantCode: http.StatusBadRequest},
		{
			name: "invalid difficulty", token: getToken(t, teacher),
			body:     []byte(`{"topic":"Fractions","content_type":"lesson","difficulty":"brutal"}`),
			wantCode: http.StatusBadRequest,
		},
		{
			name: "ok", token: getToken(t, teacher),
			body:     []byte(`{"topic":"Fractions","content_type":"lesson","difficulty":"easy"}`),
			wantCode: http.StatusOK,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/ai/generate-content", tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if tt.wantCode == http.StatusOK {
				var resp struct {
					Content string `json:"content"`
				}
				if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
					t.Fatalf("unmarshaling response: %v", err)
				}
				if resp.Content == "" {
					t.Error("expected generated content")
				}
			}
		})
	}
}

func Test_aiApi_analyzePerformance(t *testing.T) {
	app, deps := setup(t)
	teacher := createUser(t, deps.usrRepo, "Teacher", "teacher1", "t1@test.cd", user.RoleTeacher)
	student := createUser(t, deps.usrRepo, "Student", "student1", "s1@test.cd", user.RoleStudent)

	tests := []httpTest{
		{name: "auth required", wantCode: http.StatusUnauthorized, wantData: marshallObj(t, errMissingToken)},
		{
			name: "teacher only", token: getToken(t, student),
			body:     []byte(`{"student_data":{"avg":62},"subject":"Math"}`),
			wantCode: http.StatusForbidden, wantData: marshallObj(t, errForbidden),
		},
		{name: "student data required", token: getToken(t, teacher), body: []byte(`{"subject":"Math"}`), wantCode: http.StatusBadRequest},
		{
			name: "ok", token: getToken(t, teacher),
			body:     []byte(`{"student_data":{"avg":62,"quizzes":4},"subject":"Math"}`),
			wantCode: http.StatusOK,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/ai/analyze-performance", tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if tt.wantCode == http.StatusOK {
				var resp struct {
					Analysis string `json:"analysis"`
				}
				if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
					t.Fatalf("unmarshaling response: %v", err)
				}
				if resp.Analysis == "" {
					t.Error("expected an analysis")
				}
			}
		})
	}
}
