// Package client talks to the containers API served by the server command.
package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/jtarchie/environments/provision"
)

// APIError is a failed response from the server.
type APIError struct {
	StatusCode int
	Message    string `json:"error"`
	Kind       string `json:"kind"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}

	return fmt.Sprintf("request failed with status %d (%s): %s", e.StatusCode, e.Kind, e.Message)
}

type Client struct {
	http *resty.Client
}

type Option func(*resty.Client)

func WithBasicAuth(username, password string) Option {
	return func(c *resty.Client) {
		if username != "" && password != "" {
			c.SetBasicAuth(username, password)
		}
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *resty.Client) {
		c.SetTimeout(timeout)
	}
}

func New(baseURL string, opts ...Option) *Client {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json")

	for _, opt := range opts {
		opt(httpClient)
	}

	return &Client{http: httpClient}
}

func (c *Client) ListContainers(ctx context.Context) (*provision.ContainerList, error) {
	var list provision.ContainerList

	err := c.do(ctx, http.MethodGet, "/api/containers", nil, &list)
	if err != nil {
		return nil, fmt.Errorf("could not query containers: %w", err)
	}

	return &list, nil
}

func (c *Client) CreateContainer(ctx context.Context, name, image string) (*provision.Container, error) {
	var container provision.Container

	err := c.do(ctx, http.MethodPost, "/api/containers", provision.CreateRequest{Name: name, Image: image}, &container)
	if err != nil {
		return nil, fmt.Errorf("could not create container: %w", err)
	}

	return &container, nil
}

func (c *Client) FindContainer(ctx context.Context, name string) (*provision.Container, error) {
	var container provision.Container

	err := c.do(ctx, http.MethodGet, "/api/containers/"+url.PathEscape(name), nil, &container)
	if err != nil {
		return nil, fmt.Errorf("could not find container: %w", err)
	}

	return &container, nil
}

func (c *Client) DeleteContainer(ctx context.Context, name string) (*provision.Container, error) {
	var container provision.Container

	err := c.do(ctx, http.MethodDelete, "/api/containers/"+url.PathEscape(name), nil, &container)
	if err != nil {
		return nil, fmt.Errorf("could not delete container: %w", err)
	}

	return &container, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, result any) error {
	apiErr := &APIError{}

	request := c.http.R().
		SetContext(ctx).
		SetResult(result).
		SetError(apiErr)

	if body != nil {
		request.SetBody(body)
	}

	response, err := request.Execute(method, path)
	if err != nil {
		return fmt.Errorf("could not send request: %w", err)
	}

	if response.IsError() {
		apiErr.StatusCode = response.StatusCode()

		return apiErr
	}

	return nil
}
