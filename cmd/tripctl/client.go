package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/go-resty/resty/v2"
)

type apiClient struct {
	http *resty.Client
}

func newAPIClient(baseURL, token string) *apiClient {
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(2 * time.Minute).
		SetHeader("Accept", "application/json")
	if token != "" {
		c.SetAuthToken(token)
	}
	return &apiClient{http: c}
}

// do sends one request and returns the raw body of a 2xx response.
func (c *apiClient) do(ctx context.Context, method, path string, query map[string]string, body interface{}) ([]byte, error) {
	req := c.http.R().SetContext(ctx)
	for k, v := range query {
		if v != "" {
			req.SetQueryParam(k, v)
		}
	}
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}
	resp, err := req.Execute(method, path)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("http %d: %s", resp.StatusCode(), bytes.TrimSpace(resp.Body()))
	}
	return resp.Body(), nil
}

// printJSON indents JSON bodies; anything else is copied as-is.
func printJSON(out io.Writer, data []byte) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		_, err = out.Write(data)
		return err
	}
	buf.WriteByte('\n')
	_, err := buf.WriteTo(out)
	return err
}
