// Package client talks to a booksdb server over its HTTP API.
package client

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/ASHISH26940/booksdb/internal/server"
	"github.com/ASHISH26940/booksdb/internal/store"
	"github.com/carlmjohnson/requests"
)

// Client calls the books endpoints of one server. It is safe for
// concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a client for the server at baseURL, e.g. "http://localhost:8080".
// A nil httpClient means http.DefaultClient.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: baseURL, http: httpClient}
}

func (c *Client) req() *requests.Builder {
	return requests.URL(c.baseURL).Client(c.http)
}

// withReason prefixes err with the message the server put in its error body.
func withReason(err error, body *server.ErrorResponse) error {
	if err != nil && body.Error != "" {
		return fmt.Errorf("%s: %w", body.Error, err)
	}
	return err
}

// List returns every book in the order the server stores them.
func (c *Client) List(ctx context.Context) ([]store.Book, error) {
	var books []store.Book
	var apiErr server.ErrorResponse
	err := c.req().
		Path("/books").
		AddValidator(requests.ErrorJSON(&apiErr)).
		ToJSON(&books).
		Fetch(ctx)
	return books, withReason(err, &apiErr)
}

// Add creates a book and returns it with the id the server assigned.
func (c *Client) Add(ctx context.Context, title, author string) (store.Book, error) {
	var b store.Book
	var apiErr server.ErrorResponse
	err := c.req().
		Path("/books").
		BodyJSON(server.AddRequest{Title: title, Author: author}).
		AddValidator(requests.ErrorJSON(&apiErr)).
		ToJSON(&b).
		Fetch(ctx)
	return b, withReason(err, &apiErr)
}

// UpdateTitle returns ok=false when the server has no book with that id.
func (c *Client) UpdateTitle(ctx context.Context, id int64, title string) (b store.Book, ok bool, err error) {
	var apiErr server.ErrorResponse
	err = c.req().
		Path("/books/" + strconv.FormatInt(id, 10)).
		Method(http.MethodPatch).
		BodyJSON(server.UpdateTitleRequest{Title: title}).
		AddValidator(requests.ValidatorHandler(
			requests.CheckStatus(http.StatusOK, http.StatusNotFound),
			requests.ToJSON(&apiErr),
		)).
		Handle(func(res *http.Response) error {
			if res.StatusCode == http.StatusNotFound {
				return nil
			}
			ok = true
			return requests.ToJSON(&b)(res)
		}).
		Fetch(ctx)
	if err != nil {
		return store.Book{}, false, withReason(err, &apiErr)
	}
	return b, ok, nil
}
