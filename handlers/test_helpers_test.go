package handlers

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"pricelist/config"
	"pricelist/services"
	"pricelist/testhelpers"
)

// newTestRequestEvent creates a RequestEvent suitable for handler tests.
func newTestRequestEvent(app *pocketbase.PocketBase, req *http.Request, rec *httptest.ResponseRecorder) *core.RequestEvent {
	e := &core.RequestEvent{}
	e.App = app
	e.Request = req
	e.Response = rec
	return e
}

// testConfig returns settings pointing at the fixture document template.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Env:          "testing",
		LogLevel:     "error",
		TemplatePath: testhelpers.WriteTemplate(t, testhelpers.DocumentTemplate),
		LogoPath:     "/srv/assets/logo.png",
		StaticDir:    t.TempDir(),
		MaxUploadMB:  1,
		ExportPolicy: "fail-fast",
	}
}

const testSessionID = "3f2c1a9e-8a61-4c55-9c1e-2b7f4d1e0a11"

// withSessionID attaches the test session id to req.
func withSessionID(req *http.Request) *http.Request {
	return req.WithContext(context.WithValue(req.Context(), SessionIDKey, testSessionID))
}

// seedSession stores a session holding the parsed csv.
func seedSession(t *testing.T, app *pocketbase.PocketBase, csv string) *Session {
	t.Helper()
	tbl, err := services.LoadTable(strings.NewReader(csv), "pricelist.csv")
	if err != nil {
		t.Fatalf("LoadTable() error = %v", err)
	}
	s := &Session{
		ID:         testSessionID,
		FileName:   "pricelist.csv",
		Original:   tbl,
		Table:      tbl,
		UploadedAt: time.Now(),
	}
	saveSession(app, s)
	return s
}

// newUploadRequest builds a multipart POST /upload carrying content as "file".
func newUploadRequest(t *testing.T, fileName, content string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", fileName)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return withSessionID(req)
}

// newFormRequest builds a url-encoded POST.
func newFormRequest(path string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return withSessionID(req)
}

// flashFrom decodes the toast a handler left for the next page view.
func flashFrom(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	return parseShowToast(t, rec.Header().Get("HX-Trigger"))
}
