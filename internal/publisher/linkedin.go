package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/crescentlab/postpilot/internal/models"
	"github.com/crescentlab/postpilot/internal/transfer"
)

const linkedinAPIURL = "https://api.linkedin.com"

// metadataAuthorURN is the credential metadata key carrying the
// author URN linkedin requires on every share.
const metadataAuthorURN = "author_urn"

type linkedinPublisher struct {
	baseURL string
	http    *http.Client
}

func NewLinkedinPublisher() Publisher {
	return &linkedinPublisher{
		baseURL: linkedinAPIURL,
		http:    newHTTPClient(),
	}
}

func (p *linkedinPublisher) Platform() Platform {
	return PlatformLinkedin
}

func (p *linkedinPublisher) Publish(ctx context.Context, payload Payload, cred *models.PlatformCredential) Result {
	author := cred.Metadata[metadataAuthorURN]
	if author == "" {
		return failure(PlatformLinkedin, "credential metadata is missing %s", metadataAuthorURN)
	}

	share := transfer.LinkedinShareRequest{
		Author:         author,
		LifecycleState: "PUBLISHED",
		SpecificContent: transfer.LinkedinSpecificContent{
			ShareContent: transfer.LinkedinShareContent{
				ShareCommentary:    transfer.LinkedinText{Text: payload.Body},
				ShareMediaCategory: "NONE",
			},
		},
		Visibility: transfer.LinkedinShareVisibility{MemberNetworkVisibility: "PUBLIC"},
	}

	if len(payload.MediaURLs) > 0 {
		share.SpecificContent.ShareContent.ShareMediaCategory = "IMAGE"
		for _, mediaURL := range payload.MediaURLs {
			share.SpecificContent.ShareContent.Media = append(share.SpecificContent.ShareContent.Media, transfer.LinkedinMedia{
				Status:      "READY",
				OriginalURL: mediaURL,
				Title:       transfer.LinkedinText{Text: payload.Title},
			})
		}
	}

	body, err := json.Marshal(share)
	if err != nil {
		return failure(PlatformLinkedin, "error marshalling request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v2/ugcPosts", bytes.NewBuffer(body))
	if err != nil {
		return failure(PlatformLinkedin, "error creating request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+cred.AccessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Restli-Protocol-Version", "2.0.0")

	resp, err := p.http.Do(req)
	if err != nil {
		return failure(PlatformLinkedin, "request failed: %v", err)
	}
	defer resp.Body.Close()

	var result transfer.LinkedinShareResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return failure(PlatformLinkedin, "failed to decode response: %v", err)
	}

	if resp.StatusCode != http.StatusCreated {
		if result.Message != "" {
			return failure(PlatformLinkedin, "linkedin api error: %s", result.Message)
		}
		return failure(PlatformLinkedin, "linkedin api returned status %d", resp.StatusCode)
	}

	shareID := result.ID
	if restliID := resp.Header.Get("X-Restli-Id"); restliID != "" {
		shareID = restliID
	}
	return success(PlatformLinkedin, shareID)
}
