package embed

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/newsdesk-hq/newsdesk/pkg/httpclient"
)

func TestOpenAIEmbedPlacesVectorsByIndex(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("expected bearer auth, got %q", got)
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("read request: %v", err)
		}
		var req openAIEmbedRequest
		if err := json.Unmarshal(body, &req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(req.Input) != 2 || req.Model != defaultOpenAIModel {
			t.Errorf("unexpected request payload %+v", req)
		}

		// Vectors arrive out of order; index decides placement.
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write([]byte(`{
			"data": [
				{"index": 1, "embedding": [0.5]},
				{"index": 0, "embedding": [0.25]}
			]
		}`)); err != nil {
			t.Errorf("write response: %v", err)
		}
	}))
	defer srv.Close()

	oracle := newOpenAIOracle(httpclient.NewRestyClient(5*time.Second), "sk-test", "", srv.URL)

	vecs, err := oracle.Embed(context.Background(), []string{"first", "second"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vecs) != 2 {
		t.Fatalf("expected 2 vectors, got %d", len(vecs))
	}
	if vecs[0][0] != 0.25 || vecs[1][0] != 0.5 {
		t.Errorf("expected index-ordered vectors, got %v", vecs)
	}
}

func TestOpenAIEmbedEmptyInput(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	oracle := newOpenAIOracle(httpclient.NewRestyClient(5*time.Second), "sk-test", "", srv.URL)

	vecs, err := oracle.Embed(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if vecs != nil {
		t.Errorf("expected nil vectors for empty input, got %v", vecs)
	}
	if hits.Load() != 0 {
		t.Errorf("expected no request for empty input, got %d", hits.Load())
	}
}

func TestOpenAIEmbedCountMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write([]byte(`{"data": [{"index": 0, "embedding": [0.1]}]}`)); err != nil {
			t.Errorf("write response: %v", err)
		}
	}))
	defer srv.Close()

	oracle := newOpenAIOracle(httpclient.NewRestyClient(5*time.Second), "sk-test", "", srv.URL)

	if _, err := oracle.Embed(context.Background(), []string{"a", "b"}); err == nil {
		t.Fatal("expected error when embedding count does not match input count")
	}
}

func TestOpenAIEmbedRejectsNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	oracle := newOpenAIOracle(httpclient.NewRestyClient(5*time.Second), "sk-test", "", srv.URL)

	if _, err := oracle.Embed(context.Background(), []string{"a"}); err == nil {
		t.Fatal("expected error for non-200 response")
	}
}
