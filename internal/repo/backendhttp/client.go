package backendhttp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/Oohan21/utopia-drafts/internal/domain/model"
	"github.com/Oohan21/utopia-drafts/internal/infra/httpclient"
	listingsvc "github.com/Oohan21/utopia-drafts/internal/services/listing"
)

var ErrListingNotFound = listingsvc.ErrListingNotFound

// Client talks to the listings backend.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

type RequestError struct {
	Op         string
	StatusCode int
	Retryable  bool
	Err        error
}

func (e *RequestError) Error() string {
	if e == nil {
		return ""
	}
	switch {
	case e.Err != nil && e.StatusCode > 0:
		return fmt.Sprintf("%s: status=%d: %v", e.Op, e.StatusCode, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case e.StatusCode > 0:
		return fmt.Sprintf("%s: status=%d", e.Op, e.StatusCode)
	default:
		return e.Op
	}
}

func (e *RequestError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func NewClient(baseURL, token string, timeout time.Duration) (*Client, error) {
	trimmed := strings.TrimSpace(baseURL)
	if trimmed == "" {
		return nil, &RequestError{Op: "create backend client", Err: errors.New("backend base url is empty")}
	}
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return nil, &RequestError{Op: "parse backend url", Err: err}
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, &RequestError{Op: "validate backend url", Err: fmt.Errorf("invalid backend url: %s", trimmed)}
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &Client{
		baseURL:    strings.TrimRight(trimmed, "/"),
		token:      strings.TrimSpace(token),
		httpClient: httpclient.New(timeout),
	}, nil
}

type assetDTO struct {
	ID          string `json:"id"`
	URL         string `json:"url"`
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

type listingDTO struct {
	ID        string                     `json:"id"`
	Fields    map[string]json.RawMessage `json:"fields"`
	Flags     map[string]bool            `json:"flags"`
	Location  model.Coordinates          `json:"location"`
	Images    []assetDTO                 `json:"images"`
	Video     *assetDTO                  `json:"video"`
	Documents []assetDTO                 `json:"documents"`
}

type mediaManifest struct {
	Slot      string `json:"slot"`
	Position  int    `json:"position"`
	RemoteID  string `json:"remote_id,omitempty"`
	FileField string `json:"file_field,omitempty"`
	Name      string `json:"name,omitempty"`
}

type submissionManifest struct {
	Fields           map[string]any    `json:"fields"`
	Flags            map[string]bool   `json:"flags"`
	Location         model.Coordinates `json:"location"`
	Media            []mediaManifest   `json:"media"`
	PendingDeletions []string          `json:"pending_deletions"`
}

type errorResponse struct {
	Detail string            `json:"detail"`
	Errors map[string]string `json:"errors"`
}

func (c *Client) GetListing(ctx context.Context, listingID string) (model.Listing, error) {
	listingID = strings.TrimSpace(listingID)
	if listingID == "" {
		return model.Listing{}, ErrListingNotFound
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/listings/"+url.PathEscape(listingID), nil)
	if err != nil {
		return model.Listing{}, &RequestError{Op: "create http request", Err: err}
	}
	c.authorize(req)

	status, body, err := c.do(req)
	if err != nil {
		if status == http.StatusNotFound {
			return model.Listing{}, fmt.Errorf("%w: %s", ErrListingNotFound, listingID)
		}
		return model.Listing{}, err
	}
	return decodeListing(status, body)
}

// Submit creates a listing, or updates it when the payload carries a listing id.
// New media is streamed as multipart file parts next to a JSON manifest.
func (c *Client) Submit(ctx context.Context, payload model.SubmissionPayload) (model.Listing, error) {
	method, path := http.MethodPost, "/listings"
	if payload.ListingID != "" {
		method, path = http.MethodPut, "/listings/"+url.PathEscape(payload.ListingID)
	}

	manifest := submissionManifest{
		Fields:           make(map[string]any, len(payload.Fields)),
		Flags:            payload.Flags,
		Location:         payload.Location,
		Media:            make([]mediaManifest, 0, len(payload.Media)),
		PendingDeletions: payload.PendingDeletions,
	}
	for name, v := range payload.Fields {
		manifest.Fields[name] = v.Any()
	}
	if manifest.PendingDeletions == nil {
		manifest.PendingDeletions = []string{}
	}
	for _, part := range payload.Media {
		entry := mediaManifest{Slot: string(part.Slot), Position: part.Position, RemoteID: part.RemoteID, Name: part.Meta.Name}
		if part.Source != nil {
			entry.FileField = fmt.Sprintf("file_%s_%d", part.Slot, part.Position)
		}
		manifest.Media = append(manifest.Media, entry)
	}

	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)
	go func() {
		pw.CloseWithError(writeMultipart(writer, manifest, payload.Media))
	}()

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, pr)
	if err != nil {
		_ = pr.CloseWithError(err)
		return model.Listing{}, &RequestError{Op: "create http request", Err: err}
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	c.authorize(req)

	status, body, err := c.do(req)
	_ = pr.Close()
	if err != nil {
		if status == http.StatusBadRequest || status == http.StatusUnprocessableEntity {
			return model.Listing{}, submissionError(body, err)
		}
		return model.Listing{}, err
	}
	return decodeListing(status, body)
}

func writeMultipart(writer *multipart.Writer, manifest submissionManifest, parts []model.MediaPart) error {
	encoded, err := json.Marshal(manifest)
	if err != nil {
		return fmt.Errorf("encode submission manifest: %w", err)
	}
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="payload"`)
	header.Set("Content-Type", "application/json")
	field, err := writer.CreatePart(header)
	if err != nil {
		return fmt.Errorf("create payload part: %w", err)
	}
	if _, err := field.Write(encoded); err != nil {
		return fmt.Errorf("write payload part: %w", err)
	}

	for i, part := range parts {
		if part.Source == nil {
			continue
		}
		if err := writeFilePart(writer, manifest.Media[i].FileField, part); err != nil {
			return err
		}
	}
	return writer.Close()
}

func writeFilePart(writer *multipart.Writer, fieldName string, part model.MediaPart) error {
	src, err := part.Source.Open()
	if err != nil {
		return fmt.Errorf("open media %s: %w", part.Meta.Name, err)
	}
	defer src.Close()

	contentType := part.Meta.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, fieldName, part.Meta.Name))
	header.Set("Content-Type", contentType)
	dst, err := writer.CreatePart(header)
	if err != nil {
		return fmt.Errorf("create media part: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("stream media %s: %w", part.Meta.Name, err)
	}
	return nil
}

func (c *Client) authorize(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

func (c *Client) do(req *http.Request) (int, []byte, error) {
	if c == nil || c.httpClient == nil {
		return 0, nil, &RequestError{Op: "do request", Err: errors.New("backend http client is not initialized")}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, &RequestError{Op: "execute http request", Retryable: isNetworkError(err), Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2*1024*1024))
	if err != nil {
		return resp.StatusCode, nil, &RequestError{Op: "read http response", StatusCode: resp.StatusCode, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := strings.TrimSpace(string(body))
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return resp.StatusCode, body, &RequestError{
			Op:         "unexpected http status",
			StatusCode: resp.StatusCode,
			Retryable:  resp.StatusCode >= 500,
			Err:        errors.New(msg),
		}
	}
	return resp.StatusCode, body, nil
}

func decodeListing(status int, body []byte) (model.Listing, error) {
	var dto listingDTO
	if err := json.Unmarshal(body, &dto); err != nil {
		return model.Listing{}, &RequestError{Op: "decode http response", StatusCode: status, Err: err}
	}

	l := model.Listing{
		ID:       dto.ID,
		Fields:   make(map[string]model.Value, len(dto.Fields)),
		Flags:    dto.Flags,
		Location: dto.Location,
	}
	for name, raw := range dto.Fields {
		v, err := model.ValueFromJSON(raw)
		if err != nil {
			return model.Listing{}, &RequestError{Op: "decode listing field " + name, StatusCode: status, Err: err}
		}
		if !v.IsNull() {
			l.Fields[name] = v
		}
	}
	for _, a := range dto.Images {
		l.Images = append(l.Images, toRemoteAsset(a))
	}
	if dto.Video != nil {
		video := toRemoteAsset(*dto.Video)
		l.Video = &video
	}
	for _, a := range dto.Documents {
		l.Documents = append(l.Documents, toRemoteAsset(a))
	}
	return l, nil
}

func toRemoteAsset(a assetDTO) model.RemoteAsset {
	return model.RemoteAsset{ID: a.ID, URL: a.URL, Name: a.Name, ContentType: a.ContentType, Size: a.Size}
}

func submissionError(body []byte, cause error) error {
	var resp errorResponse
	if err := json.Unmarshal(body, &resp); err != nil || (resp.Detail == "" && len(resp.Errors) == 0) {
		return &listingsvc.SubmissionError{Message: "listing was rejected", Err: cause}
	}
	return &listingsvc.SubmissionError{FieldErrors: resp.Errors, Message: resp.Detail, Err: cause}
}

func isNetworkError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
