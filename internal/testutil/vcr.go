package testutil

import (
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/dnaeon/go-vcr.v2/cassette"
	"gopkg.in/dnaeon/go-vcr.v2/recorder"
)

// NewVCRRecorder replays testdata/fixtures/<cassetteName>.yaml.
// Set VCR_MODE=record to capture a fresh cassette against the live API.
func NewVCRRecorder(t *testing.T, cassetteName string) (*recorder.Recorder, func()) {
	t.Helper()

	mode := recorder.ModeReplaying
	if os.Getenv("VCR_MODE") == "record" {
		mode = recorder.ModeRecording
	}

	cassettePath := filepath.Join("testdata", "fixtures", cassetteName)

	r, err := recorder.NewAsMode(cassettePath, mode, nil)
	if err != nil {
		t.Fatalf("Failed to create VCR recorder: %v", err)
	}

	// Bodies are not matched; the URL carries the model id
	r.SetMatcher(func(r *http.Request, i cassette.Request) bool {
		return r.Method == i.Method && withoutKey(r.URL.String()) == withoutKey(i.URL)
	})

	r.AddSaveFilter(ScrubInteraction)

	cleanup := func() {
		if err := r.Stop(); err != nil {
			t.Errorf("Failed to stop VCR recorder: %v", err)
		}
	}

	return r, cleanup
}

// ScrubInteraction removes credentials before an interaction is saved:
// the Authorization header and the Gemini key query parameter.
func ScrubInteraction(i *cassette.Interaction) error {
	delete(i.Request.Headers, "Authorization")
	i.Request.URL = withoutKey(i.Request.URL)
	return nil
}

func withoutKey(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	if !q.Has("key") {
		return rawURL
	}
	q.Del("key")
	u.RawQuery = q.Encode()
	return u.String()
}

// VCRHTTPClient returns an HTTP client configured to use the VCR recorder
func VCRHTTPClient(r *recorder.Recorder) *http.Client {
	return &http.Client{
		Transport: r,
	}
}
