package plannerrepos

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/kalenda/core"
	"github.com/trezcool/kalenda/core/calendar"
)

// apiClient is the thin request layer shared by the planner repositories.
type apiClient struct {
	baseURL string
	http    *http.Client
}

func newAPIClient(conf *core.Config) *apiClient {
	return &apiClient{
		baseURL: strings.TrimRight(conf.Planner.APIURL, "/"),
		http:    &http.Client{Timeout: conf.Planner.Timeout},
	}
}

func (c *apiClient) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return errors.Wrapf(err, "building request GET %s", path)
	}
	return c.do(req, out)
}

func (c *apiClient) patch(ctx context.Context, path string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrapf(err, "marshalling payload for PATCH %s", path)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return errors.Wrapf(err, "building request PATCH %s", path)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, nil)
}

func (c *apiClient) do(req *http.Request, out interface{}) error {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.New().String())

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", req.Method, req.URL.Path)
	}
	defer func() {
		_, _ = io.Copy(ioutil.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return calendar.ErrNotFound
	case resp.StatusCode >= http.StatusBadRequest:
		return errors.Errorf("planner api: %s %s returned %d", req.Method, req.URL.Path, resp.StatusCode)
	}

	if out != nil {
		if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
			return errors.Wrapf(err, "decoding %s %s response", req.Method, req.URL.Path)
		}
	}
	return nil
}

func windowQuery(start, end time.Time) url.Values {
	q := make(url.Values)
	q.Set("from", start.Format(time.RFC3339))
	q.Set("to", end.Format(time.RFC3339))
	return q
}
