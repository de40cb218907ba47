package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/adamwoolhether/fetchkit/client/fetch"
	"github.com/adamwoolhether/fetchkit/client/throttle"
)

// Client wraps the std-lib *http.Client
// It sets a default *http.Client and *http.Transport, which
// can be customized via optional funcs.
type Client struct {
	c      *http.Client
	logger *slog.Logger
	tracer trace.Tracer
}

func Build(optFns ...Option) (*Client, error) {
	client := &Client{
		logger: slog.Default(),
		tracer: noop.NewTracerProvider().Tracer(""),
	}

	var opts options
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return nil, fmt.Errorf("applying client option: %w", err)
		}
	}

	// Copy so that configuring one Client never mutates another's http.Client.
	hc := &http.Client{}
	if opts.client != nil {
		*hc = *opts.client
	}
	client.c = hc

	if opts.logger != nil {
		client.logger = opts.logger
	}

	if opts.tracer != nil {
		client.tracer = opts.tracer
	}

	if opts.timeout != nil {
		client.c.Timeout = *opts.timeout
	}

	if opts.noFollowRedirects {
		client.c.CheckRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}

	var transport http.RoundTripper
	switch {
	case opts.rt != nil:
		transport = opts.rt
	case opts.client != nil && opts.client.Transport != nil:
		transport = opts.client.Transport
	default:
		transport = http.DefaultTransport
	}
	if opts.userAgent != "" {
		transport = userAgent{value: opts.userAgent, base: transport}
	}
	if opts.throttle != nil {
		rt, err := throttle.NewRoundTripper(*opts.throttle, func() *slog.Logger { return client.logger }, transport)
		if err != nil {
			return nil, fmt.Errorf("configuring throttle: %w", err)
		}
		transport = rt
	}
	client.c.Transport = transport

	return client, nil
}

// Do will fire the request, and write response to the given dest object if any.
func (c *Client) Do(req *http.Request, expCode int, opts ...DoOption) error {
	var settings doOpts
	for _, opt := range opts {
		err := opt(&settings)
		if err != nil {
			return err
		}
	}

	doFunc := func(resp *http.Response) error {
		if settings.responseBody != nil {
			d := json.NewDecoder(resp.Body)

			if settings.useJSONNum {
				d.UseNumber()
			}

			if err := d.Decode(settings.responseBody); err != nil {
				return fmt.Errorf("decoding body: %w", err)
			}
		}

		return nil
	}

	return c.exec(req, expCode, doFunc)
}

// Fetch executes req and reads the whole response body into memory,
// enforcing the size envelope and content checks given by opts.
// An expCode of [ExpectSuccess] accepts any 2xx status.
//
// Every returned error carries a [fetch.Error] code: connection failures
// and status mismatches are classified as [fetch.ErrTransport].
func (c *Client) Fetch(req *http.Request, expCode int, opts ...FetchOption) ([]byte, error) {
	if err := fetch.ValidateOptions(opts...); err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}

	reqID := req.Header.Get(requestIDHeader)
	if reqID == "" {
		reqID = uuid.NewString()
	}

	ctx, span := c.tracer.Start(req.Context(), "fetch.download", trace.WithAttributes(
		attribute.String("http.url", req.URL.Redacted()),
		attribute.String("request.id", reqID),
	))
	defer span.End()

	// The caller's request is left untouched so it can be reused.
	req = req.Clone(ctx)
	req.Header.Set(requestIDHeader, reqID)
	logger := c.logger.With("request_id", reqID, "url", req.URL.Redacted())

	var data []byte
	fetchFunc := func(resp *http.Response) error {
		span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

		b, err := fetch.Handle(ctx, resp.Body, resp.Header, resp.ContentLength, logger, opts...)
		if err != nil {
			return err
		}
		data = b

		return nil
	}

	if err := c.exec(req, expCode, fetchFunc); err != nil {
		var fe *fetch.Error
		if !errors.As(err, &fe) {
			err = fetch.NewTransportError("executing request", err)
		}

		logger.Error("fetch failed", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		return nil, fmt.Errorf("fetch: %w", err)
	}

	span.SetAttributes(attribute.Int("fetch.bytes", len(data)))

	return data, nil
}

// DownloadFile GETs rawURL and returns its body, which must fit the size
// bounds given through [WithFetchOptions]. Bounds default to
// [0, fetch.DefaultMaxBytes].
func (c *Client) DownloadFile(ctx context.Context, rawURL string, opts ...DownloadOption) ([]byte, error) {
	return c.download(ctx, rawURL, false, opts...)
}

// DownloadImage behaves like [Client.DownloadFile], but also fails with
// [fetch.ErrURLIsNotImage] when the declared Content-Type is neither
// image/* nor application/octet-stream.
func (c *Client) DownloadImage(ctx context.Context, imageURL string, opts ...DownloadOption) ([]byte, error) {
	return c.download(ctx, imageURL, true, opts...)
}

func (c *Client) download(ctx context.Context, rawURL string, requireImage bool, optFns ...DownloadOption) ([]byte, error) {
	var settings downloadOpts
	for _, opt := range optFns {
		if err := opt(&settings); err != nil {
			return nil, fmt.Errorf("applying download option: %w", err)
		}
	}

	reqURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", fetch.NewTransportError("parsing url", err))
	}

	if len(settings.params) > 0 {
		q := reqURL.Query()
		for k, v := range settings.params {
			q.Set(k, v)
		}
		reqURL.RawQuery = q.Encode()
	}

	req, err := Request(ctx, reqURL, http.MethodGet, settings.reqOpts...)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	fetchOpts := settings.fetchOpts
	if requireImage {
		fetchOpts = append(fetchOpts, fetch.WithImageContentType())
		req.Header.Set("Accept", "image/*")
	}

	return c.Fetch(req, ExpectSuccess, fetchOpts...)
}

// Request instantiates an *http.Request with the provided information.
// It's just a convenience method that wraps the public Request func.
func (c *Client) Request(ctx context.Context, reqURL *url.URL, method string, opts ...RequestOption) (*http.Request, error) {
	return Request(ctx, reqURL, method, opts...)
}

// URL creates a url.URL for use in Request.
// It's just a convenience method that wraps the public URL func.
func (c *Client) URL(scheme, host, path string, opts ...URLOption) *url.URL {
	return URL(scheme, host, path, opts...)
}

// exec runs the request and injected function on success after validating the expected status code.
// The body is always closed. It is drained first unless fn fails, so an
// oversized or rejected body is abandoned rather than read to the end.
func (c *Client) exec(req *http.Request, expCode int, fn execFn) error {
	resp, err := c.c.Do(req)
	if err != nil {
		return fmt.Errorf("exec http do: %w", err)
	}

	discardBody := true
	defer func() {
		if discardBody {
			if _, err := io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainSize)); err != nil {
				c.logger.Error("failed to discard unused body", "error", err)
			}
		}
		if err := resp.Body.Close(); err != nil {
			c.logger.Error("failed to close response body", "error", err)
		}
	}()

	if !statusMatches(resp.StatusCode, expCode) {
		b, err := io.ReadAll(io.LimitReader(resp.Body, maxErrBodySize))
		if err != nil {
			b = []byte("unable to read body")
		}

		return &UnexpectedStatusError{
			StatusCode: resp.StatusCode,
			Body:       string(b),
			Err:        statusErr(resp.StatusCode),
		}
	}

	if err := fn(resp); err != nil {
		discardBody = false
		return err
	}

	return nil
}

// Request instantiates an *http.Request with the provided information.
// Content-Type defaults to `application/json` when a payload is set, unless
// overridden via WithContentType.
func Request(ctx context.Context, reqURL *url.URL, method string, opts ...RequestOption) (*http.Request, error) {
	var settings requestOpts
	for _, opt := range opts {
		err := opt(&settings)
		if err != nil {
			return nil, err
		}
	}

	var body io.Reader = http.NoBody
	var payload bytes.Buffer
	if settings.body != nil {
		if err := json.NewEncoder(&payload).Encode(settings.body); err != nil {
			return nil, fmt.Errorf("encoding request payload: %w", err)
		}
		body = &payload
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), body)
	if err != nil {
		return nil, fmt.Errorf("instantiating request: %w", err)
	}

	for _, cookie := range settings.cookies {
		req.AddCookie(cookie)
	}

	switch {
	case settings.contentType != nil:
		req.Header.Set("Content-Type", *settings.contentType)
	case settings.body != nil:
		req.Header.Set("Content-Type", "application/json")
	}

	for k, v := range settings.headers {
		for _, element := range v {
			req.Header.Add(k, element)
		}
	}

	if settings.basicAuth != nil {
		req.SetBasicAuth(settings.basicAuth[0], settings.basicAuth[1])
	}
	if settings.bearer != "" {
		req.Header.Set("Authorization", "Bearer "+settings.bearer)
	}

	return req, nil
}

// URL creates a url.URL for use in Request.
func URL(scheme, host, path string, opts ...URLOption) *url.URL {
	var settings urlOpts
	for _, opt := range opts {
		opt(&settings)
	}

	if settings.port != nil {
		host = fmt.Sprintf("%s:%d", host, *settings.port)
	}

	endpoint := url.URL{
		Scheme: scheme,
		Host:   host,
		Path:   path,
	}

	if settings.queryStrings != nil {
		queryParams := url.Values{}
		for k, v := range settings.queryStrings {
			queryParams.Add(k, v)
		}

		endpoint.RawQuery = queryParams.Encode()
	}

	return &endpoint
}
