package cms

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/arleytruth/Magicwraptool-sub001/internal/pkg/httpclient"
)

// CollectionClient reads posts from a REST collection endpoint filtered by slug.
type CollectionClient struct {
	baseURL    string
	collection string
	token      string
	http       *http.Client
}

func NewCollectionClient(baseURL, collection, token string, timeout time.Duration) *CollectionClient {
	return &CollectionClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		collection: collection,
		token:      token,
		http:       httpclient.New(timeout),
	}
}

type collectionResponse struct {
	Data []json.RawMessage `json:"data"`
}

func (c *CollectionClient) Fetch(ctx context.Context, slug string) (json.RawMessage, error) {
	q := url.Values{}
	q.Set("filters[slug][$eq]", slug)
	q.Set("pagination[pageSize]", "1")
	q.Set("populate", "*")

	endpoint := fmt.Sprintf("%s/api/%s?%s", c.baseURL, c.collection, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("cms_secondary: %w: %v", httpclient.ErrRequest, err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, httpclient.ClassifyRequestError(ctx, "cms_secondary", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, httpclient.StatusError("cms_secondary", resp)
	}

	var body collectionResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("cms_secondary: %w: decode: %v", httpclient.ErrRequest, err)
	}
	if len(body.Data) == 0 {
		return nil, ErrNotFound
	}
	return body.Data[0], nil
}
