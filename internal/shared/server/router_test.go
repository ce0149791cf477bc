package server

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"jobboard-backend/internal/blob"
	"jobboard-backend/internal/files"
	"jobboard-backend/internal/shared/config"
	"jobboard-backend/internal/shared/server/middleware"
	"jobboard-backend/internal/users"
)

func newTestRouter(t *testing.T) (*gin.Engine, *blob.MemoryStore) {
	t.Helper()
	store := blob.NewMemoryStore()
	filesSvc := &files.Service{
		Store:  store,
		Policy: files.NewPolicy(10<<20, []string{"image/jpeg", "image/png", "image/gif", "application/pdf"}),
	}
	usersSvc := users.NewService(users.NewMemoryRepo(), filesSvc)

	r := NewRouter(RouterDeps{
		Config:       config.Config{CORSAllowOrigin: []string{"http://localhost:5173"}},
		FilesHandler: files.NewHandler(filesSvc),
		UsersHandler: users.NewHandler(usersSvc),
	})
	return r, store
}

func TestHealthAndMetricsEndpoints(t *testing.T) {
	r, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("health status = %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("metrics status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "uploads_started_total") {
		t.Fatalf("metrics output missing counters: %s", w.Body.String())
	}
}

func TestUploadRequiresSession(t *testing.T) {
	r, _ := newTestRouter(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.Close()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestRegisterLoginUploadDownloadFlow(t *testing.T) {
	r, store := newTestRouter(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range map[string]string{
		"fullname":    "Ada Lovelace",
		"email":       "ada@example.com",
		"phoneNumber": "1234567890",
		"password":    "s3cret-pass",
		"role":        "student",
	} {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	mw.Close()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/user/register", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("register status = %d, body %s", w.Code, w.Body.String())
	}

	payload, _ := json.Marshal(map[string]string{"email": "ada@example.com", "password": "s3cret-pass", "role": "student"})
	req = httptest.NewRequest(http.MethodPost, "/api/v1/user/login", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d, body %s", w.Code, w.Body.String())
	}
	var session *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.TokenCookie {
			session = c
		}
	}
	if session == nil {
		t.Fatal("no session cookie after login")
	}

	content := []byte("\x89PNGfake profile image")
	buf.Reset()
	mw = multipart.NewWriter(&buf)
	hdr := map[string][]string{
		"Content-Disposition": {`form-data; name="file"; filename="profile.png"`},
		"Content-Type":        {"image/png"},
	}
	part, err := mw.CreatePart(hdr)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatal(err)
	}
	mw.Close()
	req = httptest.NewRequest(http.MethodPost, "/api/v1/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.AddCookie(session)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("upload status = %d, body %s", w.Code, w.Body.String())
	}
	var uploaded files.UploadResponse
	if err := json.Unmarshal(w.Body.Bytes(), &uploaded); err != nil {
		t.Fatal(err)
	}
	if uploaded.Category != "image" {
		t.Fatalf("category = %q, want image", uploaded.Category)
	}
	if store.Len() != 1 {
		t.Fatalf("store holds %d blobs, want 1", store.Len())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/files/"+uploaded.ID, nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("download status = %d", w.Code)
	}
	if got := w.Header().Get("Content-Type"); got != "image/png" {
		t.Fatalf("Content-Type = %q", got)
	}
	if got := w.Header().Get("Content-Disposition"); got != `inline; filename="profile.png"` {
		t.Fatalf("Content-Disposition = %q", got)
	}
	if !bytes.Equal(w.Body.Bytes(), content) {
		t.Fatal("downloaded bytes differ from uploaded bytes")
	}
}
