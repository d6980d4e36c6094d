package transfer

type FacebookPublishResponse struct {
	ID     string      `json:"id"`
	PostID string      `json:"post_id"`
	Error  *GraphError `json:"error"`
}

// GraphError is the error envelope shared by the Meta Graph API
// (facebook and instagram).
type GraphError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    int    `json:"code"`
}
