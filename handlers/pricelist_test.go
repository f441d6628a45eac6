package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"strings"
	"testing"

	"pricelist/services"
	"pricelist/testhelpers"
)

func TestHandleHome_NoSession(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	req := withSessionID(httptest.NewRequest(http.MethodGet, "/", nil))
	rec := httptest.NewRecorder()

	if err := HandleHome(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	body := rec.Body.String()
	testhelpers.AssertHTMLContains(t, body,
		"Pricelist Generator",
		`action="/upload"`,
		`href="/template.csv"`,
		"Upload your CSV to get started.",
	)
	testhelpers.AssertHTMLNotContains(t, body, "Step 3: Select client", `action="/adjust"`)
}

func TestHandleHome_WithSession(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	seedSession(t, app, testhelpers.PricelistCSV)

	req := withSessionID(httptest.NewRequest(http.MethodGet, "/", nil))
	rec := httptest.NewRecorder()
	if err := HandleHome(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	body := rec.Body.String()
	testhelpers.AssertHTMLContains(t, body,
		"pricelist.csv",
		"3 rows",
		"<th>Client Name</th>",
		"<td>ann@acme.test</td>",
		`href="/pricelists/Acme"`,
		`href="/pricelists/Beta/pdf"`,
		`href="/export/all"`,
		"Prices are as uploaded.",
	)
}

func TestHandleHome_ShowsDivergenceWarning(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	seedSession(t, app, testhelpers.CSV(
		testhelpers.Header,
		"Acme,Ann,ann@acme.test,,2024-01-01,Widget,1,",
		"Acme,Andy,ann@acme.test,,2024-01-01,Gadget,2,",
	))

	req := withSessionID(httptest.NewRequest(http.MethodGet, "/", nil))
	rec := httptest.NewRecorder()
	if err := HandleHome(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	testhelpers.AssertHTMLContains(t, rec.Body.String(), "Acme has differing Contact Name values")
}

func TestHandleHome_EscapesClientNames(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	seedSession(t, app, testhelpers.CSV(
		"Client Name,Product,Price per kg",
		`<b>Evil</b> & Co,Widget,1`,
	))

	req := withSessionID(httptest.NewRequest(http.MethodGet, "/", nil))
	rec := httptest.NewRecorder()
	if err := HandleHome(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	body := rec.Body.String()
	testhelpers.AssertHTMLContains(t, body, "&lt;b&gt;Evil&lt;/b&gt; &amp; Co")
	testhelpers.AssertHTMLNotContains(t, body, "<b>Evil</b>")
}

func TestHandleUpload_Success(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	cfg := testConfig(t)
	rec := httptest.NewRecorder()
	req := newUploadRequest(t, "march.csv", testhelpers.PricelistCSV)

	if err := HandleUpload(app, cfg)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if toast := flashFrom(t, rec); toast["type"] != "success" || !strings.Contains(toast["message"], "march.csv") {
		t.Errorf("toast = %v", toast)
	}

	s := loadSession(app, req)
	if s == nil {
		t.Fatal("expected session to be stored")
	}
	if s.FileName != "march.csv" || s.Table.Len() != 3 || s.Delta != 0 {
		t.Errorf("session = %+v", s)
	}
	if s.Table != s.Original {
		t.Error("fresh upload should have no adjustment")
	}
}

func TestHandleUpload_ReplacesAdjustedSession(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	cfg := testConfig(t)
	old := seedSession(t, app, testhelpers.PricelistCSV)
	adjusted := *old
	adjusted.Delta = 5
	saveSession(app, &adjusted)

	req := newUploadRequest(t, "new.csv", "Client Name,Product,Price per kg\nZed,Bolt,9\n")
	rec := httptest.NewRecorder()
	if err := HandleUpload(app, cfg)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	s := loadSession(app, req)
	if s.FileName != "new.csv" || s.Delta != 0 {
		t.Errorf("session = %+v", s)
	}
	if got := services.ClientNames(s.Table); !reflect.DeepEqual(got, []string{"Zed"}) {
		t.Errorf("clients = %v", got)
	}
}

func TestHandleUpload_RejectsOversizedFile(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	cfg := testConfig(t)

	row := "Acme,Ann,ann@acme.test,5 t/month,2024-01-01,Widget,1.50,Fresh\n"
	big := testhelpers.Header + "\n" + strings.Repeat(row, int(cfg.MaxUploadBytes())/len(row)+100)

	req := newUploadRequest(t, "big.csv", big)
	rec := httptest.NewRecorder()
	if err := HandleUpload(app, cfg)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	toast := flashFrom(t, rec)
	if toast["type"] != "error" || !strings.Contains(toast["message"], "File too large (limit 1 MB)") {
		t.Errorf("toast = %v", toast)
	}
	if loadSession(app, req) != nil {
		t.Error("oversized upload must not start a session")
	}
}

func TestHandleUpload_Errors(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		validate bool
		wantMsg  string
	}{
		{"malformed", "Client Name,Product\nAcme,Widget,1.5\n", false, "Could not read the uploaded file"},
		{"empty", "", false, "Could not read the uploaded file"},
		{"missing column with eager validation", "Client Name,Product\nAcme,Widget\n", true, "The pricelist is incomplete"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := testhelpers.NewTestApp(t)
			cfg := testConfig(t)
			cfg.ValidateOnUpload = tt.validate

			req := newUploadRequest(t, "bad.csv", tt.content)
			rec := httptest.NewRecorder()
			if err := HandleUpload(app, cfg)(newTestRequestEvent(app, req, rec)); err != nil {
				t.Fatalf("handler error: %v", err)
			}

			if rec.Code != http.StatusSeeOther {
				t.Errorf("status = %d, want 303", rec.Code)
			}
			toast := flashFrom(t, rec)
			if toast["type"] != "error" || !strings.Contains(toast["message"], tt.wantMsg) {
				t.Errorf("toast = %v, want message containing %q", toast, tt.wantMsg)
			}
			if loadSession(app, req) != nil {
				t.Error("failed upload should not create a session")
			}
		})
	}
}

func TestHandleUpload_MissingColumnAcceptedByDefault(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	req := newUploadRequest(t, "partial.csv", "Client Name,Product\nAcme,Widget\n")
	rec := httptest.NewRecorder()
	if err := HandleUpload(app, testConfig(t))(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if loadSession(app, req) == nil {
		t.Error("lazy validation should accept the upload")
	}
}

func TestHandleUpload_NoFile(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	req := newFormRequest("/upload", url.Values{})
	rec := httptest.NewRecorder()

	if err := HandleUpload(app, testConfig(t))(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if toast := flashFrom(t, rec); toast["type"] != "error" {
		t.Errorf("toast = %v", toast)
	}
}

func TestHandleAdjust(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	seedSession(t, app, testhelpers.PricelistCSV)

	adjust := func(delta string) *Session {
		t.Helper()
		req := newFormRequest("/adjust", url.Values{"delta": {delta}})
		rec := httptest.NewRecorder()
		if err := HandleAdjust(app)(newTestRequestEvent(app, req, rec)); err != nil {
			t.Fatalf("handler error: %v", err)
		}
		if rec.Code != http.StatusSeeOther {
			t.Fatalf("status = %d, want 303", rec.Code)
		}
		return loadSession(app, req)
	}
	prices := func(s *Session) []string {
		idx := s.Table.ColumnIndex(services.ColPricePerKg)
		var out []string
		for _, r := range s.Table.Rows {
			out = append(out, r.Cells[idx])
		}
		return out
	}

	s := adjust("10")
	if got := prices(s); !reflect.DeepEqual(got, []string{"11.5", "12.25", "13"}) {
		t.Errorf("after +10 prices = %v", got)
	}
	if s.Delta != 10 || !s.Adjusted() {
		t.Errorf("Delta = %v", s.Delta)
	}

	// Adjustments apply to the uploaded prices, not on top of each other.
	s = adjust("20")
	if got := prices(s); !reflect.DeepEqual(got, []string{"21.5", "22.25", "23"}) {
		t.Errorf("after +20 prices = %v", got)
	}

	s = adjust("0")
	if got := prices(s); !reflect.DeepEqual(got, []string{"1.50", "2.25", "3"}) {
		t.Errorf("after 0 prices = %v", got)
	}
	if s.Adjusted() {
		t.Error("zero delta should clear the adjustment")
	}
}

func TestHandleAdjust_Errors(t *testing.T) {
	tests := []struct {
		name    string
		csv     string
		delta   string
		wantMsg string
	}{
		{"not a number", testhelpers.PricelistCSV, "ten", `adjustment "ten" is not a number`},
		{"bad price cell", "Client Name,Product,Price per kg\nAcme,Widget,cheap\n", "1", "invalid value"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := testhelpers.NewTestApp(t)
			before := seedSession(t, app, tt.csv)

			req := newFormRequest("/adjust", url.Values{"delta": {tt.delta}})
			rec := httptest.NewRecorder()
			if err := HandleAdjust(app)(newTestRequestEvent(app, req, rec)); err != nil {
				t.Fatalf("handler error: %v", err)
			}

			toast := flashFrom(t, rec)
			if toast["type"] != "error" || !strings.Contains(toast["message"], tt.wantMsg) {
				t.Errorf("toast = %v, want message containing %q", toast, tt.wantMsg)
			}
			if after := loadSession(app, req); after != before {
				t.Error("failed adjustment should leave the session unchanged")
			}
		})
	}
}

func TestHandleAdjust_NoSession(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	req := newFormRequest("/adjust", url.Values{"delta": {"1"}})
	rec := httptest.NewRecorder()

	if err := HandleAdjust(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if toast := flashFrom(t, rec); toast["type"] != "error" {
		t.Errorf("toast = %v", toast)
	}
}

func TestHandleReset(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	seedSession(t, app, testhelpers.PricelistCSV)

	req := newFormRequest("/adjust", url.Values{"delta": {"5"}})
	if err := HandleAdjust(app)(newTestRequestEvent(app, req, httptest.NewRecorder())); err != nil {
		t.Fatal(err)
	}

	req = newFormRequest("/reset", nil)
	rec := httptest.NewRecorder()
	if err := HandleReset(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	s := loadSession(app, req)
	if s.Delta != 0 || s.Table != s.Original {
		t.Errorf("session after reset = %+v", s)
	}
}

func TestParseDelta(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"", 0, false},
		{" 2.5 ", 2.5, false},
		{"-1", -1, false},
		{"1,25", 1.25, false},
		{"abc", 0, true},
		{"NaN", 0, true},
	}
	for _, tt := range tests {
		got, err := parseDelta(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("parseDelta(%q) = %v, %v", tt.in, got, err)
		}
	}
}
