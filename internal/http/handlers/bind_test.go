package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/geocoder89/catalogadmin/internal/http/handlers"
	"github.com/geocoder89/catalogadmin/internal/service"
	"github.com/gin-gonic/gin"
)

type bindErrorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details struct {
			JSON   string                `json:"json"`
			Field  string                `json:"field"`
			Fields []handlers.FieldError `json:"fields"`
		} `json:"details"`
	} `json:"error"`
}

func newBindRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.POST("/login", func(ctx *gin.Context) {
		var req service.LoginInput
		if !handlers.BindJSON(ctx, &req) {
			return
		}
		ctx.JSON(http.StatusOK, req)
	})
	return r
}

func TestBindJSON_TypeMismatchNamesJSONField(t *testing.T) {
	r := newBindRouter()

	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewBufferString(`{"email":42}`))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusBadRequest, w.Body.String())
	}

	var resp bindErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal error response: %v body=%s", err, w.Body.String())
	}

	if resp.Error.Code != "invalid_request" {
		t.Fatalf("unexpected code: %s", resp.Error.Code)
	}
	if resp.Error.Details.JSON != "invalid_json_type" || resp.Error.Details.Field != "email" {
		t.Fatalf("unexpected details: %+v", resp.Error.Details)
	}
}

func TestBindJSON_SyntaxError(t *testing.T) {
	r := newBindRouter()

	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewBufferString(`{"email":`))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want %d", w.Code, http.StatusBadRequest)
	}

	var resp bindErrorResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Error.Details.JSON != "invalid_json_syntax" {
		t.Fatalf("expected invalid_json_syntax, got %+v", resp.Error.Details)
	}
}

func TestBindJSON_EmptyBodyDecodesAsEmptyObject(t *testing.T) {
	r := newBindRouter()

	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200 body=%s", w.Code, w.Body.String())
	}
}
