package main

import (
	"bytes"
	"net/http"
	"strings"
	"testing"

	"github.com/Simplici0/atelier/internal/advisory"
	"github.com/Simplici0/atelier/internal/blob"
)

func publishSample(t *testing.T, h http.Handler) quoteDetail {
	t.Helper()
	c, p := createClientProject(t, h)
	rr := do(t, h, http.MethodPost, "/api/quotes", quoteRequest{FormValues: sampleForm(c.ID, p.ID), Notes: "Deliver in March"})
	expectStatus(t, rr, http.StatusCreated)
	return decode[quoteDetail](t, rr)
}

func TestHandleQuoteTextReturnsPlainText(t *testing.T) {
	_, h := newTestServer(t, "")
	q := publishSample(t, h)

	rr := do(t, h, http.MethodGet, "/api/quotes/"+q.ID+"/text", nil)
	expectStatus(t, rr, http.StatusOK)
	if !strings.Contains(rr.Header().Get("Content-Type"), "text/plain") {
		t.Fatalf("expected text/plain content type, got %q", rr.Header().Get("Content-Type"))
	}

	body := rr.Body.String()
	for _, expected := range []string{"Total: KES 14,500.00", "Client: Wanjiru Interiors", "Project: Living room", "Oak panel"} {
		if !strings.Contains(body, expected) {
			t.Fatalf("expected body to contain %q, got: %s", expected, body)
		}
	}
}

func TestQuoteDownloads(t *testing.T) {
	_, h := newTestServer(t, "")
	q := publishSample(t, h)

	rr := do(t, h, http.MethodGet, "/api/quotes/"+q.ID+"/export.pdf", nil)
	expectStatus(t, rr, http.StatusOK)
	if !bytes.HasPrefix(rr.Body.Bytes(), []byte("%PDF")) {
		t.Fatalf("pdf body does not start with %%PDF")
	}
	if !strings.Contains(rr.Header().Get("Content-Disposition"), q.Number+".pdf") {
		t.Fatalf("content disposition = %q", rr.Header().Get("Content-Disposition"))
	}

	rr = do(t, h, http.MethodGet, "/api/quotes/"+q.ID+"/export.xlsx", nil)
	expectStatus(t, rr, http.StatusOK)
	if !bytes.HasPrefix(rr.Body.Bytes(), []byte("PK")) {
		t.Fatalf("xlsx body is not a zip archive")
	}

	rr = do(t, h, http.MethodGet, "/api/quotes/missing/export.pdf", nil)
	expectStatus(t, rr, http.StatusNotFound)
}

func TestArchiveQuote(t *testing.T) {
	_, h := newTestServer(t, "")
	q := publishSample(t, h)

	rr := do(t, h, http.MethodPost, "/api/quotes/"+q.ID+"/archive?format=xlsx", nil)
	expectStatus(t, rr, http.StatusCreated)
	info := decode[blob.Info](t, rr)
	if !strings.HasPrefix(info.Key, "quotes/"+q.ID+"/") || !strings.HasSuffix(info.Key, ".xlsx") || info.Size == 0 {
		t.Fatalf("info = %+v", info)
	}

	// Same quote, format and instant maps to the same key.
	rr = do(t, h, http.MethodPost, "/api/quotes/"+q.ID+"/archive?format=xlsx", nil)
	expectStatus(t, rr, http.StatusConflict)

	rr = do(t, h, http.MethodPost, "/api/quotes/"+q.ID+"/archive?format=docx", nil)
	expectStatus(t, rr, http.StatusBadRequest)

	rr = do(t, h, http.MethodGet, "/api/quotes/"+q.ID+"/archive", nil)
	expectStatus(t, rr, http.StatusOK)
	if items := decode[[]blob.Info](t, rr); len(items) != 1 {
		t.Fatalf("archive items = %d, want 1", len(items))
	}
}

func TestInsights(t *testing.T) {
	srv, h := newTestServer(t, "")
	q := publishSample(t, h)

	rr := do(t, h, http.MethodGet, "/api/quotes/"+q.ID+"/insights", nil)
	expectStatus(t, rr, http.StatusNotFound)

	rr = do(t, h, http.MethodPost, "/api/quotes/"+q.ID+"/insights", nil)
	expectStatus(t, rr, http.StatusAccepted)
	if ins := decode[advisory.Insight](t, rr); ins.Status != advisory.StatusPending {
		t.Fatalf("status = %s, want pending", ins.Status)
	}

	srv.advisor.Wait()
	rr = do(t, h, http.MethodGet, "/api/quotes/"+q.ID+"/insights", nil)
	expectStatus(t, rr, http.StatusOK)
	if ins := decode[advisory.Insight](t, rr); ins.Status != advisory.StatusReady || ins.Text == "" {
		t.Fatalf("insight = %+v", ins)
	}
}
