package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Fetcher 下载远程图片（表情包模板）
type Fetcher struct {
	httpClient *http.Client
	maxBytes   int64
}

func NewFetcher(timeout time.Duration, maxBytes int64) *Fetcher {
	return &Fetcher{
		httpClient: &http.Client{Timeout: timeout},
		maxBytes:   maxBytes,
	}
}

// Fetch GET 下载，非 2xx 或超出大小上限都返回错误
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch %s: %w", ErrUpstream, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Title: http.StatusText(resp.StatusCode)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %w", ErrUpstream, err)
	}
	if int64(len(body)) > f.maxBytes {
		return nil, fmt.Errorf("%w: remote image exceeds %d bytes", ErrUpstream, f.maxBytes)
	}
	return body, nil
}
