package embedding

import (
	"context"
	"fmt"
	"net/http"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"golang.org/x/time/rate"
)

// DefaultMaxBatchSize is the largest input list sent in one request.
const DefaultMaxBatchSize = 100

// Client calls an OpenAI-compatible embeddings endpoint for one profile.
type Client struct {
	sdk          openai.Client
	profile      Profile
	maxBatchSize int
	limiter      *rate.Limiter
}

var _ Embedder = (*Client)(nil)

type clientOptions struct {
	baseURL      string
	httpClient   *http.Client
	maxBatchSize int
	limiter      *rate.Limiter
}

// ClientOption configures a Client.
type ClientOption func(*clientOptions)

// WithBaseURL points the client at another OpenAI-compatible endpoint.
func WithBaseURL(url string) ClientOption {
	return func(o *clientOptions) { o.baseURL = url }
}

// WithHTTPClient overrides the transport.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(o *clientOptions) { o.httpClient = c }
}

// WithMaxBatchSize caps how many texts go in a single request.
func WithMaxBatchSize(n int) ClientOption {
	return func(o *clientOptions) { o.maxBatchSize = n }
}

// WithRateLimit paces requests to rps with the given burst.
func WithRateLimit(rps float64, burst int) ClientOption {
	return func(o *clientOptions) { o.limiter = rate.NewLimiter(rate.Limit(rps), burst) }
}

// NewClient binds a profile to the embeddings API. It validates the profile
// but neither performs network I/O nor checks apiKey; bad credentials surface
// on the first Embed call.
func NewClient(apiKey string, profile Profile, opts ...ClientOption) (*Client, error) {
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	o := &clientOptions{
		baseURL:      DefaultBaseURL,
		maxBatchSize: DefaultMaxBatchSize,
		limiter:      rate.NewLimiter(rate.Inf, 1),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.maxBatchSize <= 0 {
		o.maxBatchSize = DefaultMaxBatchSize
	}
	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithBaseURL(o.baseURL),
		option.WithMaxRetries(0),
	}
	if o.httpClient != nil {
		reqOpts = append(reqOpts, option.WithHTTPClient(o.httpClient))
	}
	return &Client{
		sdk:          openai.NewClient(reqOpts...),
		profile:      profile,
		maxBatchSize: o.maxBatchSize,
		limiter:      o.limiter,
	}, nil
}

// NewProfiles builds the document and query clients for one API key.
func NewProfiles(apiKey, documentModel, queryModel string, opts ...ClientOption) (Profiles, error) {
	docProfile, err := NewProfile(documentModel, RoleDocument)
	if err != nil {
		return Profiles{}, err
	}
	queryProfile, err := NewProfile(queryModel, RoleQuery)
	if err != nil {
		return Profiles{}, err
	}
	doc, err := NewClient(apiKey, docProfile, opts...)
	if err != nil {
		return Profiles{}, err
	}
	query, err := NewClient(apiKey, queryProfile, opts...)
	if err != nil {
		return Profiles{}, err
	}
	return Profiles{Document: doc, Query: query}, nil
}

// Profile reports the bound profile.
func (c *Client) Profile() Profile { return c.profile }

// Embed embeds texts, splitting them into requests of at most the configured
// batch size. Any failed request aborts the whole call.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += c.maxBatchSize {
		end := min(start+c.maxBatchSize, len(texts))
		vecs, err := c.embedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		out = append(out, vecs...)
	}
	return out, nil
}

func (c *Client) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("embedding: %w", err)
	}
	resp, err := c.sdk.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: texts,
		},
		Model:          openai.EmbeddingModel(c.profile.Model),
		EncodingFormat: openai.EmbeddingNewParamsEncodingFormatFloat,
	})
	if err != nil {
		return nil, fmt.Errorf("embedding %s: %w", c.profile.Model, err)
	}
	if len(resp.Data) == 0 {
		return nil, ErrEmptyResponse
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrCountMismatch, len(resp.Data), len(texts))
	}
	out := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || int(d.Index) >= len(out) || out[d.Index] != nil {
			return nil, fmt.Errorf("embedding: unexpected index %d in response", d.Index)
		}
		vec := make([]float32, len(d.Embedding))
		for i, v := range d.Embedding {
			vec[i] = float32(v)
		}
		out[d.Index] = vec
	}
	return out, nil
}
