package attribution

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/ecobalance/ecobalance/internal/provider/resilience"
)

// DefaultLocation is the bundled demo feed.
const DefaultLocation = "demo_data/august.json"

// HTTPSource fetches the feed over HTTP.
type HTTPSource struct {
	url    string
	client *resilience.Client
}

// NewHTTPSource creates a source for url. A nil client gets defaults.
func NewHTTPSource(url string, client *resilience.Client) *HTTPSource {
	if client == nil {
		client = resilience.NewClient(resilience.ClientConfig{Name: "attribution"})
	}
	return &HTTPSource{url: url, client: client}
}

// Fetch implements Source.
func (s *HTTPSource) Fetch(ctx context.Context) (*Payload, error) {
	var raw json.RawMessage
	if err := s.client.GetJSON(ctx, s.url, &raw); err != nil {
		return nil, fmt.Errorf("fetch attribution feed: %w", err)
	}
	p, err := decodePayload(raw)
	if err != nil {
		return nil, fmt.Errorf("decode attribution feed: %w", err)
	}
	return p, nil
}

func (s *HTTPSource) String() string { return s.url }

// FileSource reads the feed from a local file.
type FileSource struct {
	path string
}

// NewFileSource creates a source reading path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Fetch implements Source.
func (s *FileSource) Fetch(ctx context.Context) (*Payload, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read attribution file: %w", err)
	}
	p, err := decodePayload(data)
	if err != nil {
		return nil, fmt.Errorf("decode attribution file %s: %w", s.path, err)
	}
	return p, nil
}

func (s *FileSource) String() string { return s.path }

// NewSource returns an HTTPSource for http(s) locations and a FileSource
// otherwise.
func NewSource(location string, client *resilience.Client) Source {
	if location == "" {
		location = DefaultLocation
	}
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return NewHTTPSource(location, client)
	}
	return NewFileSource(location)
}
