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

const facebookGraphURL = "https://graph.facebook.com/v19.0"

type facebookPublisher struct {
	baseURL string
	http    *http.Client
}

func NewFacebookPublisher() Publisher {
	return &facebookPublisher{
		baseURL: facebookGraphURL,
		http:    newHTTPClient(),
	}
}

func (p *facebookPublisher) Platform() Platform {
	return PlatformFacebook
}

// Publish posts to the page feed, or to /photos when the payload
// carries media (facebook attaches the first image to the story).
func (p *facebookPublisher) Publish(ctx context.Context, payload Payload, cred *models.PlatformCredential) Result {
	endpoint := p.baseURL + "/" + cred.AccountID + "/feed"
	data := url.Values{}
	data.Set("message", payload.Body)
	data.Set("access_token", cred.AccessToken)

	if len(payload.MediaURLs) > 0 {
		endpoint = p.baseURL + "/" + cred.AccountID + "/photos"
		data.Set("url", payload.MediaURLs[0])
		data.Set("caption", payload.Body)
		data.Del("message")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(data.Encode()))
	if err != nil {
		return failure(PlatformFacebook, "error creating request: %v", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.http.Do(req)
	if err != nil {
		return failure(PlatformFacebook, "request failed: %v", err)
	}
	defer resp.Body.Close()

	var result transfer.FacebookPublishResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return failure(PlatformFacebook, "failed to decode response: %v", err)
	}

	if resp.StatusCode != http.StatusOK || result.Error != nil {
		if result.Error != nil {
			return failure(PlatformFacebook, "graph api error: %s (code %d)", result.Error.Message, result.Error.Code)
		}
		return failure(PlatformFacebook, "graph api returned status %d", resp.StatusCode)
	}

	postID := result.PostID
	if postID == "" {
		postID = result.ID
	}
	return success(PlatformFacebook, postID)
}
