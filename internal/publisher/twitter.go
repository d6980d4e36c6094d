package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/crescentlab/postpilot/internal/models"
	"github.com/crescentlab/postpilot/internal/transfer"
)

const twitterAPIURL = "https://api.twitter.com"

type twitterPublisher struct {
	baseURL string
	http    *http.Client
}

func NewTwitterPublisher() Publisher {
	return &twitterPublisher{
		baseURL: twitterAPIURL,
		http:    newHTTPClient(),
	}
}

func (p *twitterPublisher) Platform() Platform {
	return PlatformTwitter
}

func (p *twitterPublisher) Publish(ctx context.Context, payload Payload, cred *models.PlatformCredential) Result {
	body, err := json.Marshal(transfer.TweetRequest{Text: payload.Body})
	if err != nil {
		return failure(PlatformTwitter, "error marshalling request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/2/tweets", bytes.NewBuffer(body))
	if err != nil {
		return failure(PlatformTwitter, "error creating request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+cred.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.http.Do(req)
	if err != nil {
		return failure(PlatformTwitter, "request failed: %v", err)
	}
	defer resp.Body.Close()

	var result transfer.TweetResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return failure(PlatformTwitter, "failed to decode response: %v", err)
	}

	if resp.StatusCode != http.StatusCreated {
		if result.Detail != "" {
			return failure(PlatformTwitter, "twitter api error: %s", result.Detail)
		}
		if len(result.Errors) > 0 {
			return failure(PlatformTwitter, "twitter api error: %s", result.Errors[0].Message)
		}
		return failure(PlatformTwitter, "twitter api returned status %d", resp.StatusCode)
	}

	return success(PlatformTwitter, result.Data.ID)
}
