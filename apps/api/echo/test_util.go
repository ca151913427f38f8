package echoapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/attendance"
	"github.com/trezcool/shule/core/fee"
	"github.com/trezcool/shule/core/grade"
	"github.com/trezcool/shule/core/notification"
	emailsvc "github.com/trezcool/shule/services/email"
	smssvc "github.com/trezcool/shule/services/sms"
	inmemdb "github.com/trezcool/shule/storage/database/inmem"
)

type testLogger struct{}

func (testLogger) Debug(msg string, args ...interface{}) {}
func (testLogger) Info(msg string, args ...interface{})  {}
func (testLogger) Warn(msg string, args ...interface{})  {}
func (testLogger) Error(msg string, args ...interface{}) {}
func (testLogger) Fatal(msg string, args ...interface{}) {}

func newTestConfig() *core.Config {
	conf := core.NewConfig()
	conf.Debug = false
	conf.TestMode = true
	conf.Engine.LateFeeDailyRate = "10"
	return conf
}

func newTestServer(t *testing.T, conf *core.Config) (*Server, *inmemdb.DB) {
	t.Helper()

	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("newTestServer() failed: %v", err)
	}

	validate := validator.New()
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	core.InitValidators(validate, translator)

	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	smsSvc := smssvc.NewConsoleServiceMock(conf)

	server := NewServer(ServerDeps{
		Conf:          conf,
		Logger:        testLogger{},
		Validate:      validate,
		Translator:    translator,
		FeeSvc:        fee.NewService(inmemdb.NewFeeRepository(db)),
		GradeSvc:      grade.NewService(inmemdb.NewScoreRepository(db), grade.ScaleKCSE),
		AttendanceSvc: attendance.NewService(inmemdb.NewAttendanceRepository(db)),
		NotifSvc:      notification.NewService(inmemdb.NewContactDirectory(db), mailSvc, smsSvc),
	})
	return server, db
}

func getToken(t *testing.T, conf *core.Config, roles ...string) string {
	t.Helper()

	claims := NewClaims(conf, "test-user", "Test User", roles)
	token, err := GenerateToken(conf, claims)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
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

func marshallObj(t *testing.T, obj interface{}) []byte {
	t.Helper()

	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshallObj() failed: %v", err)
	}
	return data
}

func unmarshallMap(t *testing.T, data []byte) map[string]interface{} {
	t.Helper()

	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("unmarshallMap() failed: %v (%s)", err, data)
	}
	return m
}

func unmarshallList(t *testing.T, data []byte) []map[string]interface{} {
	t.Helper()

	var l []map[string]interface{}
	if err := json.Unmarshal(data, &l); err != nil {
		t.Fatalf("unmarshallList() failed: %v (%s)", err, data)
	}
	return l
}
