// Package unsplash searches photos through the Unsplash search API.
package unsplash

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"github.com/omarmfouad25/travel-agency-dashboard/internal/model"
)

const DefaultBaseURL = "https://api.unsplash.com"

type Client struct {
	http  *resty.Client
	key   string
	cache *cache.Cache
	log   zerolog.Logger
}

// New creates a client. cacheTTL > 0 memoizes non-empty results per query.
func New(baseURL, accessKey string, timeout, cacheTTL time.Duration, log zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	h := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("Accept-Version", "v1")
	if accessKey != "" {
		h.SetHeader("Authorization", "Client-ID "+accessKey)
	}
	if timeout > 0 {
		h.SetTimeout(timeout)
	}
	c := &Client{http: h, key: accessKey, log: log}
	if cacheTTL > 0 {
		c.cache = cache.New(cacheTTL, 2*cacheTTL)
	}
	return c
}

type searchResponse struct {
	Results *[]struct {
		ID   string `json:"id"`
		URLs *struct {
			Regular string `json:"regular"`
		} `json:"urls"`
	} `json:"results"`
}

// Search returns up to three regular-size photo URLs. Failures are logged
// and yield an empty slice.
func (c *Client) Search(ctx context.Context, query string) []string {
	if c.cache != nil {
		if v, ok := c.cache.Get(query); ok {
			return append([]string(nil), v.([]string)...)
		}
	}

	var out searchResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"query":     query,
			"client_id": c.key,
			"per_page":  strconv.Itoa(model.MaxTripImages),
		}).
		SetResult(&out).
		Get("/search/photos")
	if err != nil {
		c.log.Warn().Err(err).Str("query", query).Msg("image search degraded: request failed")
		return []string{}
	}
	if resp.StatusCode() != http.StatusOK {
		c.log.Warn().Int("status", resp.StatusCode()).Str("query", query).Msg("image search degraded: unexpected status")
		return []string{}
	}
	if out.Results == nil {
		c.log.Warn().Str("query", query).Msg("image search degraded: response has no results")
		return []string{}
	}

	urls := make([]string, 0, model.MaxTripImages)
	for _, r := range *out.Results {
		if len(urls) == model.MaxTripImages {
			break
		}
		if r.URLs == nil || r.URLs.Regular == "" {
			continue
		}
		urls = append(urls, r.URLs.Regular)
	}

	if c.cache != nil && len(urls) > 0 {
		c.cache.SetDefault(query, append([]string(nil), urls...))
	}
	return urls
}
