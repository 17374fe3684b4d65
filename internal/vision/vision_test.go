package vision

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func writeImage(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte("not-a-real-png"), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestFindImage(t *testing.T) {
	dir := t.TempDir()
	writeImage(t, dir, "BT4_Level7_ID7.png")
	writeImage(t, dir, "bt4_level9_id9.JPG")
	writeImage(t, dir, "BT4_Level17_ID17.png")
	if err := os.Mkdir(filepath.Join(dir, "ID8.d"), 0755); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		assetID string
		want    string
		ok      bool
	}{
		{assetID: "ID7", want: "BT4_Level7_ID7.png", ok: true},
		{assetID: "7", want: "BT4_Level7_ID7.png", ok: true},
		{assetID: "ID9", want: "bt4_level9_id9.JPG", ok: true},
		{assetID: "ID17", want: "BT4_Level17_ID17.png", ok: true},
		{assetID: "ID8", want: "", ok: false},
		{assetID: "ID99", want: "", ok: false},
	}

	for _, tt := range tests {
		got, ok := FindImage(dir, tt.assetID)
		if ok != tt.ok {
			t.Errorf("FindImage(%s) ok = %v, want %v", tt.assetID, ok, tt.ok)
			continue
		}
		if ok && filepath.Base(got) != tt.want {
			t.Errorf("FindImage(%s) = %s, want %s", tt.assetID, filepath.Base(got), tt.want)
		}
	}
}

func TestDescribeSkipped(t *testing.T) {
	p := New(Config{APIKey: "key"})
	desc := p.Describe(context.Background(), "", "ID1")

	if desc.Provenance != ProvenanceSkipped {
		t.Errorf("provenance = %s, want %s", desc.Provenance, ProvenanceSkipped)
	}
	if desc.Text != DescSkipped {
		t.Errorf("text = %q, want %q", desc.Text, DescSkipped)
	}
	if desc.Filename != "ID1.unknown" {
		t.Errorf("filename = %q", desc.Filename)
	}
}

func TestDescribeImageNotFound(t *testing.T) {
	p := New(Config{APIKey: "key"})
	desc := p.Describe(context.Background(), t.TempDir(), "ID1")

	if desc.Provenance != ProvenanceFallback {
		t.Errorf("provenance = %s, want %s", desc.Provenance, ProvenanceFallback)
	}
	if desc.Text != DescNotFound {
		t.Errorf("text = %q, want %q", desc.Text, DescNotFound)
	}
}

func TestDescribeDebugDeterministic(t *testing.T) {
	dir := t.TempDir()
	writeImage(t, dir, "BT4_Level1_ID1.png")

	p := New(Config{Debug: true})
	first := p.Describe(context.Background(), dir, "ID1")
	second := p.Describe(context.Background(), dir, "ID1")

	if first.Text != second.Text {
		t.Errorf("debug descriptions differ: %q vs %q", first.Text, second.Text)
	}
	if !strings.Contains(first.Text, "BT4_Level1_ID1.png") {
		t.Errorf("debug description does not reference the file: %q", first.Text)
	}
	if first.Provenance != ProvenanceAPI {
		t.Errorf("provenance = %s", first.Provenance)
	}
}

func TestDescribeResponseShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "standard chat shape",
			body: `{"choices":[{"message":{"content":"A garden scene."}}]}`,
			want: "A garden scene.",
		},
		{
			name: "legacy text shape",
			body: `{"choices":[{"text":"A garden scene."}]}`,
			want: "A garden scene.",
		},
		{
			name: "response key",
			body: `{"response":"A garden scene."}`,
			want: "A garden scene.",
		},
		{
			name: "generated_text key",
			body: `{"generated_text":"A garden scene."}`,
			want: "A garden scene.",
		},
		{
			name: "completion key",
			body: `{"completion":"A garden scene."}`,
			want: "A garden scene.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
					t.Errorf("Authorization = %q", got)
				}
				var req visionRequest
				if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
					t.Errorf("request body not decodable: %v", err)
				}
				if req.MaxTokens != 300 {
					t.Errorf("max_tokens = %d, want 300", req.MaxTokens)
				}
				fmt.Fprint(w, tt.body)
			}))
			defer server.Close()

			dir := t.TempDir()
			writeImage(t, dir, "BT4_Level1_ID1.png")

			p := New(Config{APIKey: "test-key", BaseURL: server.URL, MaxRetries: 0})
			desc := p.Describe(context.Background(), dir, "ID1")

			if desc.Provenance != ProvenanceAPI {
				t.Fatalf("provenance = %s, want %s", desc.Provenance, ProvenanceAPI)
			}
			if desc.Text != tt.want {
				t.Errorf("text = %q, want %q", desc.Text, tt.want)
			}
		})
	}
}

func TestDescribeAPIErrorFallsBack(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "error envelope", body: `{"error":{"message":"quota exceeded"}}`},
		{name: "empty choices entry", body: `{"choices":[{}]}`},
		{name: "unrecognized shape", body: `{"weird":true}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, tt.body)
			}))
			defer server.Close()

			dir := t.TempDir()
			writeImage(t, dir, "BT4_Level1_ID1.png")

			p := New(Config{APIKey: "test-key", BaseURL: server.URL, MaxRetries: 0})
			desc := p.Describe(context.Background(), dir, "ID1")

			if desc.Provenance != ProvenanceFallback {
				t.Fatalf("provenance = %s, want %s", desc.Provenance, ProvenanceFallback)
			}
			if !strings.Contains(desc.Text, "File: BT4_Level1_ID1.png") {
				t.Errorf("fallback text does not reference the file: %q", desc.Text)
			}
		})
	}
}

func TestDescribeRetriesTimeouts(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	dir := t.TempDir()
	writeImage(t, dir, "BT4_Level1_ID1.png")

	p := New(Config{
		APIKey:     "test-key",
		BaseURL:    server.URL,
		Timeout:    30 * time.Millisecond,
		MaxRetries: 2,
		RetryDelay: time.Millisecond,
	})
	desc := p.Describe(context.Background(), dir, "ID1")

	if desc.Provenance != ProvenanceFallback {
		t.Errorf("provenance = %s, want %s", desc.Provenance, ProvenanceFallback)
	}
	if got := attempts.Load(); got != 3 {
		t.Errorf("server saw %d attempts, want 3 (1 + 2 retries)", got)
	}
}

// MaxRetries of 0 must mean zero retries, not the default.
func TestDescribeZeroRetries(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	dir := t.TempDir()
	writeImage(t, dir, "BT4_Level1_ID1.png")

	p := New(Config{
		APIKey:     "test-key",
		BaseURL:    server.URL,
		Timeout:    30 * time.Millisecond,
		MaxRetries: 0,
		RetryDelay: time.Millisecond,
	})
	desc := p.Describe(context.Background(), dir, "ID1")

	if desc.Provenance != ProvenanceFallback {
		t.Errorf("provenance = %s, want %s", desc.Provenance, ProvenanceFallback)
	}
	if got := attempts.Load(); got != 1 {
		t.Errorf("server saw %d attempts, want 1", got)
	}
}

func TestDescribeConnectionRefusedFallsBack(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	dir := t.TempDir()
	writeImage(t, dir, "BT4_Level1_ID1.png")

	p := New(Config{APIKey: "test-key", BaseURL: url, MaxRetries: 1, RetryDelay: time.Millisecond})
	desc := p.Describe(context.Background(), dir, "ID1")

	if desc.Provenance != ProvenanceFallback {
		t.Errorf("provenance = %s, want %s", desc.Provenance, ProvenanceFallback)
	}
}

func TestTruncateSentences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{
			name: "under the limit",
			in:   "One. Two.",
			n:    5,
			want: "One. Two.",
		},
		{
			name: "over the limit",
			in:   "One. Two! Three? Four. Five. Six. Seven.",
			n:    5,
			want: "One. Two! Three? Four. Five.",
		},
		{
			name: "decimal point not a boundary",
			in:   "Scale is 1.5 here. Second. Third.",
			n:    2,
			want: "Scale is 1.5 here. Second.",
		},
		{
			name: "newline after punctuation",
			in:   "One.\nTwo.\nThree.",
			n:    2,
			want: "One.\nTwo.",
		},
		{
			name: "zero keeps everything",
			in:   "One. Two. Three.",
			n:    0,
			want: "One. Two. Three.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TruncateSentences(tt.in, tt.n); got != tt.want {
				t.Errorf("TruncateSentences(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
			}
		})
	}
}
