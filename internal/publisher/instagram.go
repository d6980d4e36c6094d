package publisher

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/crescentlab/postpilot/internal/models"
	"github.com/crescentlab/postpilot/internal/transfer"
)

const instagramGraphURL = "https://graph.facebook.com/v19.0"

type instagramPublisher struct {
	baseURL string
	http    *http.Client
}

func NewInstagramPublisher() Publisher {
	return &instagramPublisher{
		baseURL: instagramGraphURL,
		http:    newHTTPClient(),
	}
}

func (p *instagramPublisher) Platform() Platform {
	return PlatformInstagram
}

// Publish runs the two-step container flow: create a media container,
// then publish it. Instagram has no text-only post type, so a payload
// without media fails up front.
func (p *instagramPublisher) Publish(ctx context.Context, payload Payload, cred *models.PlatformCredential) Result {
	if len(payload.MediaURLs) == 0 {
		return failure(PlatformInstagram, "instagram requires at least one media url")
	}

	containerID, res := p.createContainer(ctx, payload, cred)
	if !res.Success {
		return res
	}
	return p.publishContainer(ctx, containerID, cred)
}

func (p *instagramPublisher) createContainer(ctx context.Context, payload Payload, cred *models.PlatformCredential) (string, Result) {
	data := url.Values{}
	data.Set("image_url", payload.MediaURLs[0])
	data.Set("caption", payload.Body)
	data.Set("access_token", cred.AccessToken)

	endpoint := p.baseURL + "/" + cred.AccountID + "/media"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(data.Encode()))
	if err != nil {
		return "", failure(PlatformInstagram, "error creating request: %v", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.http.Do(req)
	if err != nil {
		return "", failure(PlatformInstagram, "container request failed: %v", err)
	}
	defer resp.Body.Close()

	var result transfer.InstagramContainerResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", failure(PlatformInstagram, "failed to decode container response: %v", err)
	}
	if resp.StatusCode != http.StatusOK || result.Error != nil {
		if result.Error != nil {
			return "", failure(PlatformInstagram, "graph api error: %s (code %d)", result.Error.Message, result.Error.Code)
		}
		return "", failure(PlatformInstagram, "container endpoint returned status %d", resp.StatusCode)
	}

	return result.ID, Result{Platform: PlatformInstagram, Success: true}
}

func (p *instagramPublisher) publishContainer(ctx context.Context, containerID string, cred *models.PlatformCredential) Result {
	data := url.Values{}
	data.Set("creation_id", containerID)
	data.Set("access_token", cred.AccessToken)

	endpoint := p.baseURL + "/" + cred.AccountID + "/media_publish"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(data.Encode()))
	if err != nil {
		return failure(PlatformInstagram, "error creating request: %v", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.http.Do(req)
	if err != nil {
		return failure(PlatformInstagram, "publish request failed: %v", err)
	}
	defer resp.Body.Close()

	var result transfer.InstagramPublishResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return failure(PlatformInstagram, "failed to decode publish response: %v", err)
	}
	if resp.StatusCode != http.StatusOK || result.Error != nil {
		if result.Error != nil {
			return failure(PlatformInstagram, "graph api error: %s (code %d)", result.Error.Message, result.Error.Code)
		}
		return failure(PlatformInstagram, "publish endpoint returned status %d", resp.StatusCode)
	}

	return success(PlatformInstagram, result.ID)
}
