package ytvideodata

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

const (
	defaultOEmbedURL = "https://www.youtube.com/oembed"
	defaultPageURL   = "https://youtu.be/"
)

type VideoData struct {
	Title        string `json:"title"`
	AuthorName   string `json:"author_name"`
	ThumbnailUrl string `json:"thumbnail_url"`
}

type Client struct {
	httpClient *http.Client
	oembedURL  string
	pageURL    string
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithBaseURLs overrides the oEmbed endpoint and the watch page prefix.
func WithBaseURLs(oembedURL, pageURL string) Option {
	return func(cl *Client) {
		cl.oembedURL = oembedURL
		cl.pageURL = pageURL
	}
}

func New(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 5 * time.Second},
		oembedURL:  defaultOEmbedURL,
		pageURL:    defaultPageURL,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Get resolves display data for a video, falling back to the watch page when
// the video cannot be embedded.
func (c *Client) Get(ctx context.Context, videoId string) (*VideoData, error) {
	videoData, err := c.getWithEmbed(ctx, videoId)
	if err != nil {
		if !errors.Is(err, ErrVideoNotEmbeddable) {
			return nil, fmt.Errorf("failed to get video data with embed: %w", err)
		}

		videoData, err = c.getFromPage(ctx, videoId)
		if err != nil {
			return nil, fmt.Errorf("failed to get video data from page: %w", err)
		}
	}

	return videoData, nil
}
