package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"campus_lostfound/internal/dto/request"
	"campus_lostfound/pkg/errorx"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestHandleErrorStatus(t *testing.T) {
	cases := []struct {
		err    error
		status int
		msg    string
	}{
		{errorx.New(errorx.CodeInvalidParam, "Invalid item type"), http.StatusBadRequest, "Invalid item type"},
		{errorx.New(errorx.CodeUserExist, "taken"), http.StatusConflict, "taken"},
		{errorx.New(errorx.CodeInvalidPassword, "Invalid username or password"), http.StatusUnauthorized, "Invalid username or password"},
		{errorx.New(errorx.CodeUnverified, "User is not verified"), http.StatusForbidden, "User is not verified"},
		{errorx.New(errorx.CodeForbidden, "not yours"), http.StatusForbidden, "not yours"},
		{errorx.New(errorx.CodeNotFound, "User not found"), http.StatusNotFound, "User not found"},
		{errorx.New(errorx.CodeTooManyRequests, "slow down"), http.StatusTooManyRequests, "slow down"},
		{errorx.ErrServerBusy, http.StatusInternalServerError, errorx.ErrServerBusy.Msg},
		{errors.New("boom"), http.StatusInternalServerError, "Internal server error"},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		HandleError(c, tc.err)

		var body ErrorResponse
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("%v: body %q", tc.err, w.Body.String())
		}
		if w.Code != tc.status || body.Error != tc.msg {
			t.Errorf("%v: got %d %q, want %d %q", tc.err, w.Code, body.Error, tc.status, tc.msg)
		}
	}
}

func TestHandleParamErrorTranslates(t *testing.T) {
	if err := InitTrans("en"); err != nil {
		t.Fatal(err)
	}
	r := gin.New()
	r.POST("/auth/login", func(c *gin.Context) {
		var req request.LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleParamError(c, err)
			return
		}
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", jsonBody(`{"username":"terp"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	var body ErrorResponse
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if w.Code != http.StatusBadRequest || body.Fields["password"] == "" {
		t.Fatalf("got %d %+v", w.Code, body)
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/auth/login", jsonBody(`{not json`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("malformed json: %d", w.Code)
	}
}

func jsonBody(s string) *strings.Reader {
	return strings.NewReader(s)
}
