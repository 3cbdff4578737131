package tasks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultBaseURL  = "https://tasks.googleapis.com"
	statusCompleted = "completed"
)

// Client talks to the Google Tasks v1 REST API. The HTTP client is expected
// to carry authorization, typically built by auth.Session.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func New(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		BaseURL: defaultBaseURL,
		HTTP:    httpClient,
	}
}

type apiTaskPage struct {
	Items         []apiTask `json:"items"`
	NextPageToken string    `json:"nextPageToken"`
}

type apiTaskListEntry struct {
	ID    *string `json:"id,omitempty"`
	Title *string `json:"title,omitempty"`
}

type apiTaskListPage struct {
	Items         []apiTaskListEntry `json:"items"`
	NextPageToken string             `json:"nextPageToken"`
}

// List fetches every task of the list, walking all pages. Hidden and
// completed tasks are included. Individual pages may be empty; ErrNoTasks
// is returned only when the whole listing ends up empty.
func (c *Client) List(ctx context.Context, tasklist string) ([]Task, error) {
	var all []Task
	pageToken := ""
	for {
		query := url.Values{}
		query.Set("showCompleted", "true")
		query.Set("showHidden", "true")
		query.Set("maxResults", "100")
		if pageToken != "" {
			query.Set("pageToken", pageToken)
		}
		var page apiTaskPage
		if err := c.do(ctx, http.MethodGet, c.tasksURL(tasklist, "")+"?"+query.Encode(), nil, &page); err != nil {
			return nil, fmt.Errorf("list tasks in %s: %w", tasklist, err)
		}
		for _, raw := range page.Items {
			task, err := taskFromAPI(raw)
			if err != nil {
				return nil, err
			}
			all = append(all, task)
		}
		if page.NextPageToken == "" {
			if len(all) == 0 {
				return nil, fmt.Errorf("list tasks in %s: %w", tasklist, ErrNoTasks)
			}
			return all, nil
		}
		pageToken = page.NextPageToken
	}
}

// Get fetches a single task by id.
func (c *Client) Get(ctx context.Context, tasklist, id string) (Task, error) {
	var raw apiTask
	if err := c.do(ctx, http.MethodGet, c.tasksURL(tasklist, id), nil, &raw); err != nil {
		return Task{}, fmt.Errorf("get task %s: %w", id, err)
	}
	return taskFromAPI(raw)
}

// Create inserts a new task and returns it with its server-assigned id.
// due is an RFC 3339 timestamp, or empty for no due date.
func (c *Client) Create(ctx context.Context, tasklist, title, due string) (Task, error) {
	body := apiTask{Title: &title}
	if due != "" {
		body.Due = &due
	}
	var raw apiTask
	if err := c.do(ctx, http.MethodPost, c.tasksURL(tasklist, ""), body, &raw); err != nil {
		return Task{}, fmt.Errorf("create task %q: %w", title, err)
	}
	return taskFromAPI(raw)
}

// Update rewrites title and due date of an existing task and returns the
// refreshed projection. An empty due clears the remote due date.
func (c *Client) Update(ctx context.Context, tasklist, id, title, due string) (Task, error) {
	var raw apiTask
	if err := c.do(ctx, http.MethodGet, c.tasksURL(tasklist, id), nil, &raw); err != nil {
		return Task{}, fmt.Errorf("fetch task %s for update: %w", id, err)
	}
	raw.Title = &title
	if due == "" {
		raw.Due = nil
	} else {
		raw.Due = &due
	}
	var updated apiTask
	if err := c.do(ctx, http.MethodPut, c.tasksURL(tasklist, id), raw, &updated); err != nil {
		return Task{}, fmt.Errorf("update task %s: %w", id, err)
	}
	return taskFromAPI(updated)
}

// Complete marks the task done remotely. Completing an already completed
// task only logs.
func (c *Client) Complete(ctx context.Context, tasklist, id string) error {
	var raw apiTask
	if err := c.do(ctx, http.MethodGet, c.tasksURL(tasklist, id), nil, &raw); err != nil {
		return fmt.Errorf("fetch task %s for completion: %w", id, err)
	}
	if raw.Completed != nil {
		slog.Warn("task already completed", "id", id)
		return nil
	}
	status := statusCompleted
	raw.Status = &status
	if err := c.do(ctx, http.MethodPut, c.tasksURL(tasklist, id), raw, nil); err != nil {
		return fmt.Errorf("complete task %s: %w", id, err)
	}
	return nil
}

// Delete removes the task from the list.
func (c *Client) Delete(ctx context.Context, tasklist, id string) error {
	if err := c.do(ctx, http.MethodDelete, c.tasksURL(tasklist, id), nil, nil); err != nil {
		return fmt.Errorf("delete task %s: %w", id, err)
	}
	return nil
}

// TaskLists fetches all task lists of the authorized user.
func (c *Client) TaskLists(ctx context.Context) ([]TaskList, error) {
	var all []TaskList
	pageToken := ""
	for {
		u := c.taskListsURL()
		if pageToken != "" {
			u += "?pageToken=" + url.QueryEscape(pageToken)
		}
		var page apiTaskListPage
		if err := c.do(ctx, http.MethodGet, u, nil, &page); err != nil {
			return nil, fmt.Errorf("list task lists: %w", err)
		}
		for _, item := range page.Items {
			if item.ID == nil {
				continue
			}
			tl := TaskList{ID: *item.ID}
			if item.Title != nil {
				tl.Title = *item.Title
			}
			all = append(all, tl)
		}
		if page.NextPageToken == "" {
			return all, nil
		}
		pageToken = page.NextPageToken
	}
}

func (c *Client) tasksURL(tasklist, id string) string {
	base := strings.TrimRight(c.BaseURL, "/") + "/tasks/v1/lists/" + url.PathEscape(tasklist) + "/tasks"
	if id == "" {
		return base
	}
	return base + "/" + url.PathEscape(id)
}

func (c *Client) taskListsURL() string {
	return strings.TrimRight(c.BaseURL, "/") + "/tasks/v1/users/@me/lists"
}

func (c *Client) do(ctx context.Context, method, rawURL string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("tasks: http %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, out)
}
