package upload

// In this file: the Uploader and the per-upload session state machine.

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"github.com/dustin/go-humanize"
)

const (
	// DefaultBaseURL is the upload endpoint prefix of the X API.
	DefaultBaseURL = "https://api.twitter.com/2"
	// DefaultChunkSize is the maximum size of one append segment.  The
	// service recommends keeping segments at or below 1 MiB.
	DefaultChunkSize = 1 << 20
)

// Uploader drives chunked media uploads for one credential set.  It holds no
// per-upload state; each call to [Uploader.Upload] creates a fresh session,
// so a single Uploader may serve concurrent uploads.
type Uploader struct {
	cl        *http.Client
	baseURL   string
	token     string
	chunkSize int
	lg        *slog.Logger
}

// Option is the Uploader constructor option.
type Option func(*Uploader)

// WithHTTPClient sets the HTTP client to use.  Timeout behaviour is the
// client's responsibility; the uploader enforces no timeouts of its own.
func WithHTTPClient(cl *http.Client) Option {
	return func(u *Uploader) {
		if cl != nil {
			u.cl = cl
		}
	}
}

// WithBaseURL overrides the upload endpoint prefix.
func WithBaseURL(base string) Option {
	return func(u *Uploader) {
		if base != "" {
			u.baseURL = base
		}
	}
}

// WithChunkSize sets the maximum append segment size in bytes.
func WithChunkSize(n int) Option {
	return func(u *Uploader) {
		u.chunkSize = n
	}
}

// WithLogger sets the logger.
func WithLogger(lg *slog.Logger) Option {
	return func(u *Uploader) {
		if lg != nil {
			u.lg = lg
		}
	}
}

// New creates an Uploader that authenticates with the given bearer token.
func New(token string, opt ...Option) (*Uploader, error) {
	u := &Uploader{
		cl:        http.DefaultClient,
		baseURL:   DefaultBaseURL,
		token:     token,
		chunkSize: DefaultChunkSize,
		lg:        slog.Default(),
	}
	for _, o := range opt {
		o(u)
	}
	if u.chunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", u.chunkSize)
	}
	return u, nil
}

// Upload sends the payload to the remote service and returns the opaque
// media identifier to attach to a post.  The upload is strictly sequential:
// initialize, one append per segment in index order, finalize.  Any failure
// aborts the whole upload; the partially appended remote session is
// abandoned and a new call to Upload starts over with a new session.
func (u *Uploader) Upload(ctx context.Context, p Payload) (string, error) {
	desc, err := describe(p)
	if err != nil {
		return "", err
	}

	s := &session{up: u}
	if err := s.initialize(ctx, desc); err != nil {
		return "", err
	}
	u.lg.DebugContext(ctx, "media upload: initialized",
		"media_id", s.id,
		"mime_type", desc.MIME,
		"category", desc.Category,
		"size", humanize.Bytes(uint64(desc.TotalBytes)),
	)

	for c, err := range p.Chunks(u.chunkSize) {
		if err != nil {
			s.state = stateFailed
			return "", err
		}
		if err := s.appendSegment(ctx, c); err != nil {
			return "", err
		}
	}

	if err := s.finalize(ctx); err != nil {
		return "", err
	}
	u.lg.DebugContext(ctx, "media upload: finalized", "media_id", s.id, "segments", s.next)
	return s.id, nil
}

// sessionState is the lifecycle state of one upload session.
type sessionState int

const (
	stateUninitialized sessionState = iota
	stateInitialized
	stateAppending
	stateFinalized
	stateFailed
)

// session tracks one in-progress chunked upload.  It is owned exclusively by
// the Upload call that created it, is never reused, and requires no locking.
type session struct {
	up    *Uploader
	id    string       // remote media identifier, set by initialize
	state sessionState // advanced by each successful phase
	next  int          // next expected segment index
}

type initRequest struct {
	MediaType     string `json:"media_type"`
	TotalBytes    int64  `json:"total_bytes"`
	MediaCategory string `json:"media_category"`
}

type initResponse struct {
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

// initialize creates the remote upload and stores its identifier.  It
// succeeds only if the response status is 2xx and the response carries a
// non-empty identifier.
func (s *session) initialize(ctx context.Context, desc MediaDescriptor) error {
	if s.state != stateUninitialized {
		return fmt.Errorf("initialize: invalid session state %d", s.state)
	}
	data, err := json.Marshal(initRequest{
		MediaType:     desc.MIME,
		TotalBytes:    desc.TotalBytes,
		MediaCategory: string(desc.Category),
	})
	if err != nil {
		return fmt.Errorf("initialize: marshal: %w", err)
	}
	status, body, err := s.up.post(ctx, s.up.baseURL+"/media/upload/initialize", "application/json", bytes.NewReader(data))
	if err != nil {
		s.state = stateFailed
		return fmt.Errorf("upload initialize: %w", err)
	}
	if !is2xx(status) {
		s.state = stateFailed
		return &InitError{Status: status, Body: string(body)}
	}
	var r initResponse
	if err := json.Unmarshal(body, &r); err != nil || r.Data.ID == "" {
		s.state = stateFailed
		return &InitError{Status: status, Body: "missing media identifier in response: " + string(body)}
	}
	s.id = r.Data.ID
	s.state = stateInitialized
	return nil
}

// appendSegment uploads one segment.  Segments must be sent strictly in
// index order; an index mismatch is a caller contract violation.
func (s *session) appendSegment(ctx context.Context, c Chunk) error {
	switch s.state {
	case stateInitialized, stateAppending:
	default:
		return fmt.Errorf("append: invalid session state %d", s.state)
	}
	if c.Index != s.next {
		return fmt.Errorf("append: segment %d out of order, expected %d", c.Index, s.next)
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("segment_index", strconv.Itoa(c.Index)); err != nil {
		return fmt.Errorf("append: write form: %w", err)
	}
	// CreateFormFile sets the part content type to application/octet-stream,
	// which is what the service expects.
	part, err := w.CreateFormFile("media", "blob")
	if err != nil {
		return fmt.Errorf("append: create form file: %w", err)
	}
	if _, err := part.Write(c.Data); err != nil {
		return fmt.Errorf("append: write segment: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("append: close form: %w", err)
	}

	status, body, err := s.up.post(ctx, s.appendURL(), w.FormDataContentType(), &buf)
	if err != nil {
		s.state = stateFailed
		return fmt.Errorf("upload append: segment %d: %w", c.Index, err)
	}
	if !is2xx(status) {
		s.state = stateFailed
		return &AppendError{Segment: c.Index, Status: status, Body: string(body)}
	}
	s.state = stateAppending
	s.next++
	return nil
}

func (s *session) appendURL() string {
	return s.up.baseURL + "/media/upload/" + url.PathEscape(s.id) + "/append"
}

// finalize commits the upload.  It is valid immediately after initialize for
// an empty payload (zero segments).
func (s *session) finalize(ctx context.Context) error {
	switch s.state {
	case stateInitialized, stateAppending:
	default:
		return fmt.Errorf("finalize: invalid session state %d", s.state)
	}
	status, body, err := s.up.post(ctx, s.up.baseURL+"/media/upload/"+url.PathEscape(s.id)+"/finalize", "", nil)
	if err != nil {
		s.state = stateFailed
		return fmt.Errorf("upload finalize: %w", err)
	}
	if !is2xx(status) {
		s.state = stateFailed
		return &FinalizeError{Status: status, Body: string(body)}
	}
	s.state = stateFinalized
	return nil
}

// post issues one request and returns the response status and body.  A
// returned error indicates a transport failure; protocol-level failures are
// left to the caller to judge from the status code.
func (u *Uploader) post(ctx context.Context, reqURL, contentType string, body io.Reader) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, body)
	if err != nil {
		return 0, nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if u.token != "" {
		req.Header.Set("Authorization", "Bearer "+u.token)
	}
	resp, err := u.cl.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, respBody, nil
}

func is2xx(status int) bool {
	return 200 <= status && status < 300
}
