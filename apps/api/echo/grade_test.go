package echoapi

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_gradeApi_create(t *testing.T) {
	conf := newTestConfig()
	server, _ := newTestServer(t, conf)
	token := getToken(t, conf, RoleTeacher)

	t.Run("no token", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/v1/scores")
		server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("ok", func(t *testing.T) {
		body := []byte(`{"student_id":1,"subject_id":3,"class_id":2,"assessment_type":"exam",` +
			`"assessment_name":"Midterm","marks_obtained":"45","total_marks":"50"}`)
		req, rec := newAuthRequest(http.MethodPost, "/v1/scores", token, body)
		server.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
		data := unmarshallMap(t, rec.Body.Bytes())
		assert.Equal(t, "90", data["percentage"])
		assert.Equal(t, "A", data["letter"])
		assert.Equal(t, float64(12), data["points"])
	})

	t.Run("zero total rejected", func(t *testing.T) {
		body := []byte(`{"student_id":1,"subject_id":3,"assessment_type":"exam",` +
			`"assessment_name":"Midterm","marks_obtained":"45","total_marks":"0"}`)
		req, rec := newAuthRequest(http.MethodPost, "/v1/scores", token, body)
		server.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		data := unmarshallMap(t, rec.Body.Bytes())
		assert.Contains(t, data, "total_marks")
	})
}

func Test_gradeApi_regrade(t *testing.T) {
	conf := newTestConfig()
	server, _ := newTestServer(t, conf)
	token := getToken(t, conf, RoleTeacher)

	body := []byte(`{"student_id":1,"subject_id":3,"assessment_type":"exam",` +
		`"assessment_name":"Midterm","marks_obtained":"20","total_marks":"50"}`)
	req, rec := newAuthRequest(http.MethodPost, "/v1/scores", token, body)
	server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code)

	t.Run("ok", func(t *testing.T) {
		body := []byte(`{"marks_obtained":"40","total_marks":"50"}`)
		req, rec := newAuthRequest(http.MethodPut, "/v1/scores/1/regrade", token, body)
		server.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		data := unmarshallMap(t, rec.Body.Bytes())
		assert.Equal(t, "80", data["percentage"])
		assert.Equal(t, "A", data["letter"])
	})

	t.Run("unknown record", func(t *testing.T) {
		body := []byte(`{"marks_obtained":"40","total_marks":"50"}`)
		req, rec := newAuthRequest(http.MethodPut, "/v1/scores/999/regrade", token, body)
		server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func Test_gradeApi_rankingsAndReport(t *testing.T) {
	conf := newTestConfig()
	server, _ := newTestServer(t, conf)
	token := getToken(t, conf, RoleTeacher)

	bulk := []byte(`[
		{"student_id":1,"subject_id":3,"class_id":2,"assessment_type":"exam","assessment_name":"Final","marks_obtained":"90","total_marks":"100"},
		{"student_id":2,"subject_id":3,"class_id":2,"assessment_type":"exam","assessment_name":"Final","marks_obtained":"70","total_marks":"100"},
		{"student_id":3,"subject_id":4,"class_id":2,"assessment_type":"exam","assessment_name":"Final","marks_obtained":"30","total_marks":"100"}
	]`)
	req, rec := newAuthRequest(http.MethodPost, "/v1/scores/bulk", token, bulk)
	server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code)

	t.Run("rankings", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/scores/rankings?class_id=2", token)
		server.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		list := unmarshallList(t, rec.Body.Bytes())
		assert.Len(t, list, 3)
		assert.Equal(t, float64(1), list[0]["student_id"])
		assert.Equal(t, float64(1), list[0]["position"])
		assert.Equal(t, float64(3), list[2]["student_id"])
		assert.Equal(t, float64(3), list[2]["position"])
	})

	t.Run("class report grouped by subject", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/scores/class-report?group_by=subject", token)
		server.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		data := unmarshallMap(t, rec.Body.Bytes())
		assert.Len(t, data, 2)

		subj3 := data["3"].(map[string]interface{})
		stats := subj3["stats"].(map[string]interface{})
		assert.Equal(t, float64(2), stats["count"])
		assert.Equal(t, "80", stats["average"])
	})

	t.Run("filter by student", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/scores?student_id=2", token)
		server.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, unmarshallList(t, rec.Body.Bytes()), 1)
	})
}
