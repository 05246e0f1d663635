package echoapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/mail"
	"reflect"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	. "github.com/intellilearn/backend/apps/api/echo"
	"github.com/intellilearn/backend/core"
	"github.com/intellilearn/backend/core/course"
	"github.com/intellilearn/backend/core/mastery"
	"github.com/intellilearn/backend/core/tutor"
	"github.com/intellilearn/backend/core/user"
	aisvc "github.com/intellilearn/backend/services/ai"
	emailsvc "github.com/intellilearn/backend/services/email"
	inmemdb "github.com/intellilearn/backend/storage/database/inmem"
)

var (
	conf = &core.Config{
		TestMode:         true,
		Env:              "test",
		AppName:          "IntelliLearn",
		SecretKey:        "p@$$w0rd",
		FrontendBaseURL:  "http://localhost:3000",
		DefaultFromEmail: mail.Address{Name: "IntelliLearn", Address: "noreply@intellilearn.test"},
		Server: core.ServerConfig{
			JWTExpirationDelta:        10 * time.Minute,
			JWTRefreshExpirationDelta: 4 * time.Hour,
		},
	}

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
	errForbidden    = httpErr{Error: "permission denied"}
)

type testDeps struct {
	usrRepo user.Repository
	crsRepo course.Repository
	engine  *mastery.Engine
	usrSvc  user.Service
}

type nopLogger struct{}

func (nopLogger) Enable(bool)                  {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

func setup(t *testing.T) (*Server, *testDeps) {
	t.Helper()

	db := inmemdb.NewDB()
	usrRepo := inmemdb.NewUserRepository(db)
	crsRepo := inmemdb.NewCourseRepository(db)

	logger := nopLogger{}
	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	engine := mastery.NewEngine(inmemdb.NewMasteryStore(db), logger)
	usrSvc := user.NewServiceMock(usrRepo, mailSvc, conf)
	crsSvc := course.NewService(crsRepo, usrSvc, engine, logger)
	tutorSvc := tutor.NewService(aisvc.NewMockProvider(1), engine, logger)

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	course.InitValidators(validate, translator)

	app := NewServer(ServerDeps{
		Conf:       conf,
		Logger:     logger,
		UserSvc:    usrSvc,
		CourseSvc:  crsSvc,
		TutorSvc:   tutorSvc,
		Engine:     engine,
		Validate:   validate,
		Translator: translator,
	})
	return app, &testDeps{usrRepo: usrRepo, crsRepo: crsRepo, engine: engine, usrSvc: usrSvc}
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

func createUser(t *testing.T, repo user.Repository, name, uname, email, role string, children ...string) user.User {
	t.Helper()
	now := time.Now().UTC()
	usr := user.User{
		Name:        name,
		Username:    uname,
		Email:       email,
		Role:        role,
		Preferences: user.DefaultPreferences(),
		IsActive:    true,
		Children:    children,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := usr.SetPassword("Sup3r$ecret"); err != nil {
		t.Fatalf("SetPassword(): %v", err)
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser(): %v", err)
	}
	return usr
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, usr user.User) string {
	claims := GetUserClaims(usr)
	token, err := GenerateToken(claims)
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

func marshallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshallObj(): %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ObjectsAreEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
