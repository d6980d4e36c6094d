package publisher

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/crescentlab/postpilot/internal/models"
)

func testCredential(platform string) *models.PlatformCredential {
	return &models.PlatformCredential{
		Platform:    platform,
		AccessToken: "test-token",
		AccountID:   "acct-1",
	}
}

func TestParsePlatform(t *testing.T) {
	for _, name := range []string{"facebook", "instagram", "twitter", "linkedin"} {
		if _, err := ParsePlatform(name); err != nil {
			t.Errorf("ParsePlatform(%q): %v", name, err)
		}
	}
	if _, err := ParsePlatform("myspace"); err == nil {
		t.Error("ParsePlatform accepted an unsupported platform")
	}
}

func TestRegistryUnknownPlatform(t *testing.T) {
	registry := NewRegistry()
	res := registry.Publish(context.Background(), PlatformTwitter, Payload{}, testCredential("twitter"))
	if res.Success {
		t.Fatal("publish succeeded with no registered adapter")
	}
	if res.Error == "" {
		t.Fatal("missing error for unregistered platform")
	}
}

func TestFacebookPublishSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/acct-1/feed" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if r.Form.Get("message") != "hello" {
			t.Errorf("message = %q", r.Form.Get("message"))
		}
		json.NewEncoder(w).Encode(map[string]string{"id": "acct-1_999"})
	}))
	defer server.Close()

	p := &facebookPublisher{baseURL: server.URL, http: server.Client()}
	res := p.Publish(context.Background(), Payload{Body: "hello"}, testCredential("facebook"))
	if !res.Success {
		t.Fatalf("publish failed: %s", res.Error)
	}
	if res.PlatformPostID != "acct-1_999" {
		t.Fatalf("platform post id = %q", res.PlatformPostID)
	}
}

func TestFacebookPublishGraphError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "Invalid OAuth access token", "code": 190},
		})
	}))
	defer server.Close()

	p := &facebookPublisher{baseURL: server.URL, http: server.Client()}
	res := p.Publish(context.Background(), Payload{Body: "hello"}, testCredential("facebook"))
	if res.Success {
		t.Fatal("publish reported success on a graph error")
	}
	if res.Error == "" {
		t.Fatal("missing error message")
	}
}

func TestFacebookPublishTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	p := &facebookPublisher{baseURL: server.URL, http: newHTTPClient()}
	res := p.Publish(context.Background(), Payload{Body: "hello"}, testCredential("facebook"))
	if res.Success {
		t.Fatal("publish reported success on a transport error")
	}
}

func TestInstagramRequiresMedia(t *testing.T) {
	p := &instagramPublisher{baseURL: "http://unused", http: newHTTPClient()}
	res := p.Publish(context.Background(), Payload{Body: "hello"}, testCredential("instagram"))
	if res.Success {
		t.Fatal("text-only instagram publish should fail")
	}
}

func TestInstagramTwoStepPublish(t *testing.T) {
	var containerCreated bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/acct-1/media":
			containerCreated = true
			json.NewEncoder(w).Encode(map[string]string{"id": "container-7"})
		case "/acct-1/media_publish":
			if err := r.ParseForm(); err != nil {
				t.Fatalf("parse form: %v", err)
			}
			if r.Form.Get("creation_id") != "container-7" {
				t.Errorf("creation_id = %q", r.Form.Get("creation_id"))
			}
			json.NewEncoder(w).Encode(map[string]string{"id": "ig-42"})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	p := &instagramPublisher{baseURL: server.URL, http: server.Client()}
	res := p.Publish(context.Background(), Payload{Body: "hi", MediaURLs: []string{"https://cdn.example.com/a.jpg"}}, testCredential("instagram"))
	if !res.Success {
		t.Fatalf("publish failed: %s", res.Error)
	}
	if !containerCreated {
		t.Fatal("container step skipped")
	}
	if res.PlatformPostID != "ig-42" {
		t.Fatalf("platform post id = %q", res.PlatformPostID)
	}
}

func TestTwitterPublish(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-token" {
			t.Errorf("authorization = %q", r.Header.Get("Authorization"))
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{"data": map[string]string{"id": "tw-1", "text": "hello"}})
	}))
	defer server.Close()

	p := &twitterPublisher{baseURL: server.URL, http: server.Client()}
	res := p.Publish(context.Background(), Payload{Body: "hello"}, testCredential("twitter"))
	if !res.Success {
		t.Fatalf("publish failed: %s", res.Error)
	}
	if res.PlatformPostID != "tw-1" {
		t.Fatalf("platform post id = %q", res.PlatformPostID)
	}
}

func TestTwitterPublishRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]string{"title": "Forbidden", "detail": "You are not permitted"})
	}))
	defer server.Close()

	p := &twitterPublisher{baseURL: server.URL, http: server.Client()}
	res := p.Publish(context.Background(), Payload{Body: "hello"}, testCredential("twitter"))
	if res.Success {
		t.Fatal("publish reported success on a 403")
	}
}

func TestLinkedinRequiresAuthorURN(t *testing.T) {
	p := &linkedinPublisher{baseURL: "http://unused", http: newHTTPClient()}
	res := p.Publish(context.Background(), Payload{Body: "hello"}, testCredential("linkedin"))
	if res.Success {
		t.Fatal("publish succeeded without an author urn")
	}
}

func TestLinkedinPublish(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Restli-Protocol-Version") != "2.0.0" {
			t.Errorf("restli header = %q", r.Header.Get("X-Restli-Protocol-Version"))
		}
		w.Header().Set("X-Restli-Id", "urn:li:share:123")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"id": "urn:li:share:123"})
	}))
	defer server.Close()

	cred := testCredential("linkedin")
	cred.Metadata = map[string]string{"author_urn": "urn:li:organization:42"}

	p := &linkedinPublisher{baseURL: server.URL, http: server.Client()}
	res := p.Publish(context.Background(), Payload{Body: "hello"}, cred)
	if !res.Success {
		t.Fatalf("publish failed: %s", res.Error)
	}
	if res.PlatformPostID != "urn:li:share:123" {
		t.Fatalf("platform post id = %q", res.PlatformPostID)
	}
}
