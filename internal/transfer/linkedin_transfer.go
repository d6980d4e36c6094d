package transfer

type LinkedinShareRequest struct {
	Author          string                  `json:"author"`
	LifecycleState  string                  `json:"lifecycleState"`
	SpecificContent LinkedinSpecificContent `json:"specificContent"`
	Visibility      LinkedinShareVisibility `json:"visibility"`
}

type LinkedinSpecificContent struct {
	ShareContent LinkedinShareContent `json:"com.linkedin.ugc.ShareContent"`
}

type LinkedinShareContent struct {
	ShareCommentary    LinkedinText    `json:"shareCommentary"`
	ShareMediaCategory string          `json:"shareMediaCategory"`
	Media              []LinkedinMedia `json:"media,omitempty"`
}

type LinkedinText struct {
	Text string `json:"text"`
}

type LinkedinMedia struct {
	Status      string       `json:"status"`
	OriginalURL string       `json:"originalUrl"`
	Title       LinkedinText `json:"title"`
}

type LinkedinShareVisibility struct {
	MemberNetworkVisibility string `json:"com.linkedin.ugc.MemberNetworkVisibility"`
}

type LinkedinShareResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}
