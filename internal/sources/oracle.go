package sources

import (
	"context"
	"crypto/sha256"
	"errors"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/coldkeep/fortunad/internal/source"
)

const oracleMaxBodyBytes = 1 << 16

const oracleTimeout = 5 * time.Second

// Oracle polls a single external HTTP endpoint per cycle and folds
// the response body into a fixed-size digest. It is deliberately
// untrusted: a slow, wrong, or hostile endpoint degrades to "this
// cycle contributed nothing" rather than corrupting anything.
type Oracle struct {
	name   string
	url    string
	client *http.Client
}

// NewOracle constructs an Oracle polling rawURL. rawURL must be a
// valid absolute http(s) URL. A nil client is replaced by one with a
// fixed request timeout.
func NewOracle(name, rawURL string, client *http.Client) (*Oracle, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, errors.New("sources: oracle URL must be http or https")
	}
	if client == nil {
		client = &http.Client{Timeout: oracleTimeout}
	}
	return &Oracle{name: name, url: rawURL, client: client}, nil
}

func (o *Oracle) Name() string { return o.name }

func (o *Oracle) GetEntropy(ctx context.Context, _ source.Priority) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := o.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, errors.New("sources: oracle endpoint returned " + resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, oracleMaxBodyBytes))
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, nil
	}
	digest := sha256.Sum256(body)
	return digest[:], nil
}

func (o *Oracle) Release() error { return nil }
