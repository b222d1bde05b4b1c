package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"facility_workorders/internal/adapter/http/middleware"
	"facility_workorders/internal/domain/entities"
	"facility_workorders/pkg"

	"github.com/gin-gonic/gin"
)

var (
	adminActor  = entities.Actor{ID: "admin-1", Name: "Ana", Role: entities.RoleAdmin}
	clientActor = entities.Actor{ID: "client-1", Name: "Caio", Role: entities.RoleClient}
	subActor    = entities.Actor{ID: "sub-1", Name: "Sol", Role: entities.RoleSubcontractor}

	fixedNow = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
)

// newRouter authenticates every request as actor; a zero actor leaves the
// request anonymous.
func newRouter(actor entities.Actor) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	if actor.ID != "" {
		r.Use(func(c *gin.Context) { middleware.SetActor(c, actor) })
	}
	return r
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var buf *bytes.Buffer
	if body == "" {
		buf = &bytes.Buffer{}
	} else {
		buf = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, buf)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) pkg.HTTPError {
	t.Helper()
	var out pkg.HTTPError
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode error body %q: %v", w.Body.String(), err)
	}
	return out
}
