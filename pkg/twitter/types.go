package twitter

// Wire schema of the X API v2 responses consumed by the client.

type apiVariant struct {
	BitRate     *int   `json:"bit_rate"`
	ContentType string `json:"content_type"`
	URL         string `json:"url"`
}

type apiMedia struct {
	MediaKey        string       `json:"media_key"`
	Type            string       `json:"type"`
	URL             string       `json:"url"`
	PreviewImageURL string       `json:"preview_image_url"`
	Variants        []apiVariant `json:"variants"`
}

type apiUser struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

type apiIncludes struct {
	Media []apiMedia `json:"media"`
	Users []apiUser  `json:"users"`
}

type apiTweet struct {
	ID             string  `json:"id"`
	Text           *string `json:"text"`
	ConversationID string  `json:"conversation_id"`
	AuthorID       string  `json:"author_id"`
	Attachments    struct {
		MediaKeys []string `json:"media_keys"`
	} `json:"attachments"`
}

type apiProblem struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
	Type   string `json:"type"`
}

type tweetResponse struct {
	Data     *apiTweet    `json:"data"`
	Includes *apiIncludes `json:"includes"`
	Errors   []apiProblem `json:"errors"`
}

type apiReference struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

type searchTweet struct {
	ID               string         `json:"id"`
	ReferencedTweets []apiReference `json:"referenced_tweets"`
}

type searchResponse struct {
	Data []searchTweet `json:"data"`
	Meta struct {
		ResultCount int `json:"result_count"`
	} `json:"meta"`
}
