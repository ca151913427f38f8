package echoapi

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func Test_feeApi_permissions(t *testing.T) {
	conf := newTestConfig()
	server, _ := newTestServer(t, conf)
	teacherToken := getToken(t, conf, RoleTeacher)

	tests := []struct {
		name     string
		method   string
		path     string
		token    string
		wantCode int
	}{
		{name: "create: no token", method: http.MethodPost, path: "/v1/fees", wantCode: http.StatusUnauthorized},
		{name: "create: teacher forbidden", method: http.MethodPost, path: "/v1/fees", token: teacherToken, wantCode: http.StatusForbidden},
		{name: "payment: teacher forbidden", method: http.MethodPost, path: "/v1/fees/1/payments", token: teacherToken, wantCode: http.StatusForbidden},
		{name: "delete: teacher forbidden", method: http.MethodDelete, path: "/v1/fees/1", token: teacherToken, wantCode: http.StatusForbidden},
		{name: "query: no token", method: http.MethodGet, path: "/v1/fees", wantCode: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token)
			server.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

func Test_feeApi_create(t *testing.T) {
	conf := newTestConfig()
	server, _ := newTestServer(t, conf)
	token := getToken(t, conf, RoleAdmin)

	t.Run("ok", func(t *testing.T) {
		body := []byte(`{"student_id":1,"category":"Tuition","amount":"1000","due_date":"2099-09-30T00:00:00Z"}`)
		req, rec := newAuthRequest(http.MethodPost, "/v1/fees", token, body)
		server.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
		data := unmarshallMap(t, rec.Body.Bytes())
		assert.Equal(t, "tuition", data["category"]) // lowered
		assert.Equal(t, "pending", data["status"])
		assert.NotEmpty(t, data["uuid"])
	})

	t.Run("negative amount rejected", func(t *testing.T) {
		body := []byte(`{"student_id":1,"category":"tuition","amount":"-10","due_date":"2099-09-30T00:00:00Z"}`)
		req, rec := newAuthRequest(http.MethodPost, "/v1/fees", token, body)
		server.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		data := unmarshallMap(t, rec.Body.Bytes())
		assert.Contains(t, data, "amount")
	})

	t.Run("missing due date rejected", func(t *testing.T) {
		body := []byte(`{"student_id":1,"category":"tuition","amount":"10"}`)
		req, rec := newAuthRequest(http.MethodPost, "/v1/fees", token, body)
		server.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		data := unmarshallMap(t, rec.Body.Bytes())
		assert.Contains(t, data, "due_date")
	})

	t.Run("bulk: bad row reports its index", func(t *testing.T) {
		body := []byte(`[
			{"student_id":1,"category":"tuition","amount":"100","due_date":"2099-09-30T00:00:00Z"},
			{"student_id":2,"category":"tuition","amount":"-1","due_date":"2099-09-30T00:00:00Z"}
		]`)
		req, rec := newAuthRequest(http.MethodPost, "/v1/fees/bulk", token, body)
		server.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		data := unmarshallMap(t, rec.Body.Bytes())
		assert.Equal(t, float64(1), data["row"])
	})

	t.Run("bulk ok", func(t *testing.T) {
		body := []byte(`[
			{"student_id":1,"category":"tuition","amount":"100","due_date":"2099-09-30T00:00:00Z"},
			{"student_id":2,"category":"library","amount":"50","due_date":"2099-09-30T00:00:00Z"}
		]`)
		req, rec := newAuthRequest(http.MethodPost, "/v1/fees/bulk", token, body)
		server.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Len(t, unmarshallList(t, rec.Body.Bytes()), 2)
	})
}

func Test_feeApi_recordPayment(t *testing.T) {
	conf := newTestConfig()
	server, _ := newTestServer(t, conf)
	token := getToken(t, conf, RoleAdmin)

	createBody := []byte(`{"student_id":7,"category":"tuition","amount":"500","due_date":"2099-09-30T00:00:00Z"}`)
	req, rec := newAuthRequest(http.MethodPost, "/v1/fees", token, createBody)
	server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code)
	id := unmarshallMap(t, rec.Body.Bytes())["id"].(float64)

	t.Run("partial payment", func(t *testing.T) {
		body := []byte(`{"amount":"200","method":"mobile_money","transaction_ref":"MM-1"}`)
		req, rec := newAuthRequest(http.MethodPost, fmt.Sprintf("/v1/fees/%d/payments", int(id)), token, body)
		server.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		data := unmarshallMap(t, rec.Body.Bytes())
		assert.Equal(t, "partial", data["status"])
		assert.Equal(t, "200", data["paid_amount"])
	})

	t.Run("settling payment", func(t *testing.T) {
		body := []byte(`{"amount":"300","method":"cash"}`)
		req, rec := newAuthRequest(http.MethodPost, fmt.Sprintf("/v1/fees/%d/payments", int(id)), token, body)
		server.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		data := unmarshallMap(t, rec.Body.Bytes())
		assert.Equal(t, "paid", data["status"])
		assert.Equal(t, "500", data["paid_amount"])
	})

	t.Run("non-positive amount rejected", func(t *testing.T) {
		body := []byte(`{"amount":"0","method":"cash"}`)
		req, rec := newAuthRequest(http.MethodPost, fmt.Sprintf("/v1/fees/%d/payments", int(id)), token, body)
		server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown fee", func(t *testing.T) {
		body := []byte(`{"amount":"10","method":"cash"}`)
		req, rec := newAuthRequest(http.MethodPost, "/v1/fees/999/payments", token, body)
		server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func Test_feeApi_overdueAndSummary(t *testing.T) {
	conf := newTestConfig()
	server, _ := newTestServer(t, conf)
	token := getToken(t, conf, RoleAdmin)

	pastDue := time.Now().UTC().AddDate(0, 0, -10).Format(time.RFC3339)
	bulk := []byte(fmt.Sprintf(`[
		{"student_id":1,"category":"tuition","amount":"1000","due_date":%q},
		{"student_id":1,"category":"library","amount":"200","due_date":"2099-09-30T00:00:00Z"},
		{"student_id":2,"category":"tuition","amount":"800","due_date":%q}
	]`, pastDue, pastDue))
	req, rec := newAuthRequest(http.MethodPost, "/v1/fees/bulk", token, bulk)
	server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code)

	t.Run("overdue lists unpaid past-due items", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/fees/overdue", token)
		server.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		list := unmarshallList(t, rec.Body.Bytes())
		assert.Len(t, list, 2)
		for _, f := range list {
			assert.Equal(t, "overdue", f["status"])
		}
	})

	t.Run("student summary", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/fees/students/1/summary", token)
		server.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		data := unmarshallMap(t, rec.Body.Bytes())
		summary := data["summary"].(map[string]interface{})
		assert.Equal(t, float64(2), summary["count"])
		assert.Equal(t, "1200", summary["total_amount"])
	})

	t.Run("query by category", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/fees?category=tuition", token)
		server.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, unmarshallList(t, rec.Body.Bytes()), 2)
	})

	t.Run("late fee accrual is idempotent", func(t *testing.T) {
		// first accrual
		req, rec := newAuthRequest(http.MethodPost, "/v1/fees/1/accrue-late-fee", token)
		server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		first := unmarshallMap(t, rec.Body.Bytes())["late_fee"]

		// recompute for the same day yields the same late fee
		req, rec = newAuthRequest(http.MethodPost, "/v1/fees/1/accrue-late-fee", token)
		server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, first, unmarshallMap(t, rec.Body.Bytes())["late_fee"])
		assert.Equal(t, "100", first) // 10 days overdue at daily rate 10
	})
}
