package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"

	"github.com/kozaktomas/face-sieve/internal/imaging"
)

const defaultRemoteURL = "http://localhost:8000"

// RemoteExtractor computes face embeddings using the embedding server.
// The server detects faces, auto-rotates by EXIF orientation, and returns
// one embedding per face. Device preference (cpu/cuda) is forwarded to the
// server; it affects speed only, never results.
type RemoteExtractor struct {
	baseURL string
	device  string
	client  *http.Client
}

// NewRemoteExtractor creates a client for the embedding server.
// An empty device means the server picks its default.
func NewRemoteExtractor(baseURL, device string) *RemoteExtractor {
	if baseURL == "" {
		baseURL = defaultRemoteURL
	}
	return &RemoteExtractor{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		device:  device,
		client:  &http.Client{},
	}
}

// faceResponse represents the response from the face embedding endpoint
type faceResponse struct {
	FacesCount int    `json:"faces_count"`
	Faces      []Face `json:"faces"`
	Model      string `json:"model"`
}

// ExtractFaces posts the image to /embed/face and decodes the detections.
func (e *RemoteExtractor) ExtractFaces(ctx context.Context, imageData []byte) ([]Face, error) {
	endpoint := "/embed/face"
	if e.device != "" && e.device != "auto" {
		endpoint += "?device=" + url.QueryEscape(e.device)
	}

	body, err := e.postMultipartImage(ctx, endpoint, imageData)
	if err != nil {
		return nil, err
	}

	var resp faceResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return resp.Faces, nil
}

// Name returns the backend identifier.
func (e *RemoteExtractor) Name() string {
	return "remote"
}

// postMultipartImage constructs a multipart form with the image data and posts
// it to the given endpoint. The part carries an explicit Content-Type header
// based on magic byte detection.
func (e *RemoteExtractor) postMultipartImage(ctx context.Context, endpoint string, imageData []byte) ([]byte, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="image.jpg"`)
	h.Set("Content-Type", imaging.DetectMIMEType(imageData))
	part, err := writer.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}

	if _, err := part.Write(imageData); err != nil {
		return nil, fmt.Errorf("failed to write image data: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+endpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	return body, nil
}
