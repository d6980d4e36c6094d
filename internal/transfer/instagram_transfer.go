package transfer

type InstagramContainerResponse struct {
	ID    string      `json:"id"`
	Error *GraphError `json:"error"`
}

type InstagramPublishResponse struct {
	ID    string      `json:"id"`
	Error *GraphError `json:"error"`
}
