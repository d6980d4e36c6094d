package publisher

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/crescentlab/postpilot/internal/models"
)

// Platform is the closed set of publish targets. Adding a platform
// means adding a constant here, one adapter, and one registry entry.
type Platform string

const (
	PlatformFacebook  Platform = "facebook"
	PlatformInstagram Platform = "instagram"
	PlatformTwitter   Platform = "twitter"
	PlatformLinkedin  Platform = "linkedin"
)

func ParsePlatform(name string) (Platform, error) {
	switch Platform(name) {
	case PlatformFacebook, PlatformInstagram, PlatformTwitter, PlatformLinkedin:
		return Platform(name), nil
	}
	return "", fmt.Errorf("unsupported platform %q", name)
}

// Payload is the normalized post content handed to an adapter. Body is
// already resolved to the platform override when one exists, and media
// references are already resolved to fetchable URLs.
type Payload struct {
	PostID    int64
	Title     string
	Body      string
	MediaURLs []string
}

// Result is the uniform outcome of one publish call. Adapters never
// return Go errors; every failure mode lands here so the orchestrator
// can fan out without one platform aborting the others.
type Result struct {
	Platform       Platform
	Success        bool
	PlatformPostID string
	Error          string
}

func failure(platform Platform, format string, args ...any) Result {
	return Result{Platform: platform, Error: fmt.Sprintf(format, args...)}
}

func success(platform Platform, platformPostID string) Result {
	return Result{Platform: platform, Success: true, PlatformPostID: platformPostID}
}

// Publisher publishes a normalized payload to one platform.
type Publisher interface {
	Platform() Platform
	Publish(ctx context.Context, payload Payload, cred *models.PlatformCredential) Result
}

// Registry dispatches publish calls across the closed platform set.
type Registry struct {
	adapters map[Platform]Publisher
}

func NewRegistry(publishers ...Publisher) *Registry {
	adapters := make(map[Platform]Publisher, len(publishers))
	for _, p := range publishers {
		adapters[p.Platform()] = p
	}
	return &Registry{adapters: adapters}
}

// DefaultRegistry wires every supported platform adapter.
func DefaultRegistry() *Registry {
	return NewRegistry(
		NewFacebookPublisher(),
		NewInstagramPublisher(),
		NewTwitterPublisher(),
		NewLinkedinPublisher(),
	)
}

func (r *Registry) Publish(ctx context.Context, platform Platform, payload Payload, cred *models.PlatformCredential) Result {
	adapter, ok := r.adapters[platform]
	if !ok {
		return failure(platform, "no publisher registered for platform %q", platform)
	}
	return adapter.Publish(ctx, payload, cred)
}

const publishTimeout = 30 * time.Second

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: publishTimeout}
}
