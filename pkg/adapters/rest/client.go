// Package rest implements core.Remote over the job tracker's HTTP API.
//
// The session credential is a cookie kept in a cookie jar. Mutating
// requests carry an anti-forgery token fetched from the server on first
// use and cached until the server rejects it.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/publicsuffix"

	"github.com/aretw0/jobboard/pkg/core"
)

const (
	// DefaultCSRFHeader is the header the anti-forgery token travels in.
	DefaultCSRFHeader = "X-CSRFToken"
	// DefaultCookieName is the session cookie set by the server.
	DefaultCookieName = "session"
	// RequestIDHeader tags every request for server-side correlation.
	RequestIDHeader = "X-Request-ID"

	maxErrorBody = 64 << 10
)

// Config describes how to reach the server.
type Config struct {
	BaseURL string

	// HTTPClient is used as a template; its Jar is replaced by the
	// client's own cookie jar.
	HTTPClient *http.Client
	Timeout    time.Duration

	CookieName  string
	CookieValue string
	CSRFHeader  string

	Logger *slog.Logger
}

// Client is a core.Remote backed by HTTP.
type Client struct {
	base       *url.URL
	http       *http.Client
	cookieName string
	csrfHeader string
	logger     *slog.Logger

	mu    sync.Mutex
	token string
	stats clientStats
}

type clientStats struct {
	requests      int
	failures      int
	lastStatus    int
	lastRequestID string
}

// New validates cfg and returns a Client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("rest: base URL is required")
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("rest: invalid base URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("rest: base URL %q must be http or https", cfg.BaseURL)
	}

	hc := &http.Client{}
	if cfg.HTTPClient != nil {
		*hc = *cfg.HTTPClient
	}
	if cfg.Timeout > 0 {
		hc.Timeout = cfg.Timeout
	}

	c := &Client{
		base:       base,
		http:       hc,
		cookieName: cfg.CookieName,
		csrfHeader: cfg.CSRFHeader,
		logger:     cfg.Logger,
	}
	if c.cookieName == "" {
		c.cookieName = DefaultCookieName
	}
	if c.csrfHeader == "" {
		c.csrfHeader = DefaultCSRFHeader
	}
	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}
	if err := c.resetJar(cfg.CookieValue); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Client) resetJar(cookieValue string) error {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return fmt.Errorf("rest: cookie jar: %w", err)
	}
	if cookieValue != "" {
		jar.SetCookies(c.base, []*http.Cookie{{Name: c.cookieName, Value: cookieValue, Path: "/"}})
	}
	c.http.Jar = jar
	return nil
}

func (c *Client) endpoint(path string, query string) string {
	u := *c.base
	u.Path = strings.TrimRight(c.base.Path, "/") + path
	u.RawQuery = query
	return u.String()
}

// request is one HTTP exchange.
type request struct {
	method      string
	path        string
	query       string
	body        []byte
	contentType string
}

func (r request) mutating() bool {
	return r.method != http.MethodGet && r.method != http.MethodHead
}

// do performs req and returns the response body of a 2xx answer. Every
// other outcome is mapped onto the core error taxonomy.
func (c *Client) do(ctx context.Context, req request) ([]byte, error) {
	var token string
	if req.mutating() {
		t, err := c.csrfToken(ctx)
		if err != nil {
			return nil, err
		}
		token = t
	}

	var body io.Reader
	if req.body != nil {
		body = bytes.NewReader(req.body)
	}
	hreq, err := http.NewRequestWithContext(ctx, req.method, c.endpoint(req.path, req.query), body)
	if err != nil {
		return nil, fmt.Errorf("rest: build request: %w", err)
	}
	reqID := uuid.NewString()
	hreq.Header.Set(RequestIDHeader, reqID)
	hreq.Header.Set("Accept", "application/json")
	if req.contentType != "" {
		hreq.Header.Set("Content-Type", req.contentType)
	}
	if token != "" {
		hreq.Header.Set(c.csrfHeader, token)
	}

	log := c.logger.With("request_id", reqID, "method", req.method, "path", req.path)
	resp, err := c.http.Do(hreq)
	if err != nil {
		c.record(reqID, 0, true)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		log.Debug("transport failure", "error", err)
		return nil, &core.RemoteError{Kind: core.ErrNetworkUnavailable, Message: err.Error()}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		c.record(reqID, resp.StatusCode, true)
		return nil, &core.RemoteError{Kind: core.ErrNetworkUnavailable, Status: resp.StatusCode, Message: err.Error()}
	}

	failed := resp.StatusCode < 200 || resp.StatusCode > 299
	c.record(reqID, resp.StatusCode, failed)
	log.Debug("response", "status", resp.StatusCode)
	if !failed {
		return data, nil
	}

	if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusForbidden {
		// The token may have rotated; the next user action fetches a new one.
		c.forgetToken()
	}
	return nil, remoteError(resp.StatusCode, data)
}

func remoteError(status int, data []byte) *core.RemoteError {
	e := &core.RemoteError{Kind: core.KindForStatus(status), Status: status}
	if len(data) > maxErrorBody {
		data = data[:maxErrorBody]
	}
	var eb errorBody
	if json.Unmarshal(data, &eb) == nil {
		e.Message = eb.text()
		e.Code = eb.Code
	}
	if e.Message == "" {
		e.Message = strings.TrimSpace(http.StatusText(status))
	}
	return e
}

func (c *Client) record(reqID string, status int, failed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats.requests++
	c.stats.lastRequestID = reqID
	c.stats.lastStatus = status
	if failed {
		c.stats.failures++
	}
}

// csrfToken returns the cached anti-forgery token, fetching it when
// needed. A token that cannot be obtained blocks the mutating request.
func (c *Client) csrfToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	token := c.token
	c.mu.Unlock()
	if token != "" {
		return token, nil
	}

	data, err := c.do(ctx, request{method: http.MethodGet, path: "/api/get-csrf-token"})
	if err != nil {
		if ctx.Err() != nil || errors.Is(err, core.ErrUnauthenticated) || errors.Is(err, core.ErrNetworkUnavailable) {
			return "", err
		}
		return "", &core.RemoteError{Kind: core.ErrForbidden, Message: "anti-forgery token unavailable: " + err.Error()}
	}

	var body struct {
		Token string `json:"csrf_token"`
	}
	if err := json.Unmarshal(data, &body); err != nil || body.Token == "" {
		return "", &core.RemoteError{Kind: core.ErrForbidden, Message: "anti-forgery token missing from response"}
	}

	c.mu.Lock()
	c.token = body.Token
	c.mu.Unlock()
	return body.Token, nil
}

func (c *Client) forgetToken() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = ""
}

// CurrentUser checks the session.
func (c *Client) CurrentUser(ctx context.Context) (core.User, error) {
	data, err := c.do(ctx, request{method: http.MethodGet, path: "/api/user-details"})
	if err != nil {
		return core.User{}, err
	}
	var u core.User
	if err := json.Unmarshal(data, &u); err != nil {
		return core.User{}, decodeError("user details", err)
	}
	return u, nil
}

// ListJobs fetches the jobs matching q.
func (c *Client) ListJobs(ctx context.Context, q core.Query) ([]core.JobItem, error) {
	data, err := c.do(ctx, request{method: http.MethodGet, path: "/api/jobs", query: q.Encode()})
	if err != nil {
		return nil, err
	}
	// Anything other than an array is an empty board.
	if trimmed := bytes.TrimSpace(data); len(trimmed) == 0 || trimmed[0] != '[' {
		c.logger.Debug("job list is not an array, treating as empty", "bytes", len(data))
		return []core.JobItem{}, nil
	}
	var wire []wireJob
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, decodeError("job list", err)
	}
	items := make([]core.JobItem, 0, len(wire))
	for _, w := range wire {
		if w.Salary.invalid != "" {
			c.logger.Debug("unreadable salary ignored", "id", w.ID, "salary", w.Salary.invalid)
		}
		items = append(items, w.toCore())
	}
	return items, nil
}

// CreateJob posts a new job. Notes travel as one JSON field.
func (c *Client) CreateJob(ctx context.Context, cs core.ChangeSet) (core.JobItem, error) {
	notes := make([]wireNote, 0, len(cs.Notes))
	for _, n := range cs.Notes {
		notes = append(notes, wireNote{Stage: string(n.Stage), Text: n.Text})
	}
	notesJSON, err := json.Marshal(notes)
	if err != nil {
		return core.JobItem{}, err
	}

	body, contentType, err := buildForm(func(mw *multipart.Writer) error {
		if err := writeFields(mw, jobFields(cs.Job)); err != nil {
			return err
		}
		if err := mw.WriteField("notes", string(notesJSON)); err != nil {
			return err
		}
		return writeUploads(mw, cs.Additions)
	})
	if err != nil {
		return core.JobItem{}, err
	}

	data, err := c.do(ctx, request{method: http.MethodPost, path: "/api/jobs", body: body, contentType: contentType})
	if err != nil {
		return core.JobItem{}, err
	}
	return decodeJob(data), nil
}

// UpdateJob sends the change set of an existing job.
func (c *Client) UpdateJob(ctx context.Context, id int64, cs core.ChangeSet) (core.JobItem, error) {
	body, contentType, err := buildForm(func(mw *multipart.Writer) error {
		if err := writeFields(mw, jobFields(cs.Job)); err != nil {
			return err
		}
		for i, n := range cs.Notes {
			prefix := "notes[" + strconv.Itoa(i) + "]"
			if n.ID != 0 {
				if err := mw.WriteField(prefix+"[id]", strconv.FormatInt(n.ID, 10)); err != nil {
					return err
				}
			}
			if err := mw.WriteField(prefix+"[stage]", string(n.Stage)); err != nil {
				return err
			}
			if err := mw.WriteField(prefix+"[note_text]", n.Text); err != nil {
				return err
			}
		}
		if err := writeUploads(mw, cs.Additions); err != nil {
			return err
		}
		for _, docID := range cs.RemovedDocumentIDs {
			if err := mw.WriteField("remove_document_ids[]", strconv.FormatInt(docID, 10)); err != nil {
				return err
			}
		}
		for _, noteID := range cs.RemovedNoteIDs {
			if err := mw.WriteField("remove_note_ids[]", strconv.FormatInt(noteID, 10)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return core.JobItem{}, err
	}

	data, err := c.do(ctx, request{method: http.MethodPut, path: jobPath(id), body: body, contentType: contentType})
	if err != nil {
		return core.JobItem{}, err
	}
	return decodeJob(data), nil
}

// SetStatus changes only the stage of a job.
func (c *Client) SetStatus(ctx context.Context, id int64, stage core.Stage) (core.JobItem, error) {
	body, err := json.Marshal(map[string]string{"status": string(stage)})
	if err != nil {
		return core.JobItem{}, err
	}
	data, err := c.do(ctx, request{method: http.MethodPut, path: jobPath(id), body: body, contentType: "application/json"})
	if err != nil {
		return core.JobItem{}, err
	}
	item := decodeJob(data)
	if item.ID == 0 {
		item = core.JobItem{ID: id, Status: stage}
	}
	return item, nil
}

// DeleteJob removes a job.
func (c *Client) DeleteJob(ctx context.Context, id int64) error {
	_, err := c.do(ctx, request{method: http.MethodDelete, path: jobPath(id)})
	return err
}

// Logout ends the session and forgets every credential.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.do(ctx, request{method: http.MethodPost, path: "/logout", body: []byte("{}"), contentType: "application/json"})
	c.forgetToken()
	if jerr := c.resetJar(""); jerr != nil && err == nil {
		err = jerr
	}
	return err
}

func jobPath(id int64) string {
	return "/api/jobs/" + strconv.FormatInt(id, 10)
}

// decodeJob reads a job from a mutation response. Servers that answer
// with a bare acknowledgement yield a zero job.
func decodeJob(data []byte) core.JobItem {
	var w wireJob
	if json.Unmarshal(data, &w) == nil && w.ID != 0 {
		return w.toCore()
	}
	var env struct {
		Job wireJob `json:"job"`
	}
	if json.Unmarshal(data, &env) == nil && env.Job.ID != 0 {
		return env.Job.toCore()
	}
	return core.JobItem{}
}

func decodeError(what string, err error) error {
	return &core.RemoteError{Kind: core.ErrRemoteRejected, Message: fmt.Sprintf("unexpected %s response: %v", what, err)}
}

func buildForm(fill func(*multipart.Writer) error) ([]byte, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := fill(mw); err != nil {
		return nil, "", fmt.Errorf("rest: build form: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("rest: build form: %w", err)
	}
	return buf.Bytes(), mw.FormDataContentType(), nil
}

func writeFields(mw *multipart.Writer, fields [][2]string) error {
	for _, f := range fields {
		if err := mw.WriteField(f[0], f[1]); err != nil {
			return err
		}
	}
	return nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func writeUploads(mw *multipart.Writer, uploads []core.Upload) error {
	for _, u := range uploads {
		ct := u.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="documents[]"; filename="%s"`, quoteEscaper.Replace(u.Name)))
		h.Set("Content-Type", ct)
		part, err := mw.CreatePart(h)
		if err != nil {
			return err
		}
		if _, err := part.Write(u.Data); err != nil {
			return err
		}
	}
	return nil
}

var (
	_ core.Remote        = (*Client)(nil)
	_ core.SessionCloser = (*Client)(nil)
)
