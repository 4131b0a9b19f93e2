// Package netx holds small HTTP helpers shared by client commands.
package netx

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// maxDownloadBytes caps how much of a presigned object is read into memory.
const maxDownloadBytes = 32 << 20

// DownloadPresignedURL fetches the object behind a presigned GET URL. The
// URL already carries its signature, so no credentials are attached.
func DownloadPresignedURL(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("download failed: %s; body: %s", resp.Status, string(b))
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxDownloadBytes))
}
