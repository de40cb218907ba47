// Package client provides the configurable HTTP client built on
// [net/http] that performs size-bounded downloads.
//
// # Building a Client
//
// Use [Build] to create a [Client] with functional options:
//
//	c, err := client.Build(
//		client.WithTimeout(10 * time.Second),
//		client.WithUserAgent("myapp/1.0"),
//	)
//
// # Downloading Into Memory
//
// [Client.DownloadFile] and [Client.DownloadImage] GET a URL and return
// the whole body, provided it fits the size bounds:
//
//	data, err := c.DownloadImage(ctx, "https://example.com/cat.png",
//		client.WithParams(map[string]string{"w": "512"}),
//		client.WithFetchOptions(client.WithBounds(1, 5<<20)),
//	)
//	if errors.Is(err, client.ErrFileSizeTooLarge) { ... }
//
// The declared Content-Length is checked before the body is read, and the
// running total is checked after every chunk, so an oversized response is
// abandoned as soon as it crosses the limit.
//
// # Batches
//
// [Client.DownloadAll] runs many downloads with a concurrency limit and
// reports one [Result] per URL, in input order:
//
//	results, err := c.DownloadAll(ctx, urls, 4, client.WithImagesOnly())
//
// # Lower-Level Requests
//
// Construct a [URL] and [Request], then execute with [Client.Fetch] or
// [Client.Do]:
//
//	u := client.URL("https", "api.example.com", "/v1/export")
//	req, err := client.Request(ctx, u, http.MethodGet)
//	data, err := c.Fetch(req, http.StatusOK, client.WithMaxSize(1<<20))
//
// For lower-level control see the
// [github.com/adamwoolhether/fetchkit/client/fetch] package.
package client
