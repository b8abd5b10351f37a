package cms

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/arleytruth/Magicwraptool-sub001/internal/pkg/httpclient"
)

// pageQuery selects one published page by slug.
const pageQuery = `*[_type == "page" && slug.current == $slug && !(_id in path("drafts.**"))][0]`

// QueryClient reads pages from a GROQ-style query endpoint, e.g.
// https://<project>.api.sanity.io/v2023-05-03/data/query/<dataset>.
type QueryClient struct {
	endpoint string
	token    string
	http     *http.Client
}

func NewQueryClient(endpoint, token string, timeout time.Duration) *QueryClient {
	return &QueryClient{
		endpoint: strings.TrimRight(endpoint, "/"),
		token:    token,
		http:     httpclient.New(timeout),
	}
}

type queryResponse struct {
	Result json.RawMessage `json:"result"`
}

func (c *QueryClient) Fetch(ctx context.Context, slug string) (json.RawMessage, error) {
	q := url.Values{}
	q.Set("query", pageQuery)
	q.Set("$slug", strconv.Quote(slug))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("cms_primary: %w: %v", httpclient.ErrRequest, err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, httpclient.ClassifyRequestError(ctx, "cms_primary", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, httpclient.StatusError("cms_primary", resp)
	}

	var body queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("cms_primary: %w: decode: %v", httpclient.ErrRequest, err)
	}
	if len(body.Result) == 0 || string(body.Result) == "null" {
		return nil, ErrNotFound
	}
	return body.Result, nil
}
