package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/okian/sked/internal/domain/model"
	"github.com/okian/sked/internal/domain/types"
)

type (
	AgendaResponse struct {
		View    string             `json:"view"`
		Daily   *types.DailyView   `json:"daily,omitempty"`
		Weekly  []types.WeekGroup  `json:"weekly,omitempty"`
		Monthly []types.MonthGroup `json:"monthly,omitempty"`
	}

	ErrorResponse struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
)

type APIClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// fetches one agenda view from the dashboard
func (c *APIClient) GetAgenda(view string) (*AgendaResponse, error) {
	url := fmt.Sprintf("%s/agenda?view=%s", c.baseURL, view)

	res, err := c.httpClient.Get(url)
	if err != nil {
		return nil, fmt.Errorf("error making request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, decodeError(res)
	}

	var agenda AgendaResponse
	if err := json.NewDecoder(res.Body).Decode(&agenda); err != nil {
		return nil, fmt.Errorf("error decoding response: %w", err)
	}
	return &agenda, nil
}

// fetches the stored personal tasks
func (c *APIClient) GetTasks() ([]model.Event, error) {
	res, err := c.httpClient.Get(c.baseURL + "/tasks")
	if err != nil {
		return nil, fmt.Errorf("error making request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, decodeError(res)
	}

	var tasks []model.Event
	if err := json.NewDecoder(res.Body).Decode(&tasks); err != nil {
		return nil, fmt.Errorf("error decoding response: %w", err)
	}
	return tasks, nil
}

// creates a personal task; date may be empty for today
func (c *APIClient) AddTask(title, date, timeRange string) (*model.Event, error) {
	body, err := json.Marshal(types.TaskRequest{Title: title, Date: date, TimeRange: timeRange})
	if err != nil {
		return nil, fmt.Errorf("error encoding request body: %w", err)
	}

	res, err := c.httpClient.Post(c.baseURL+"/tasks", "application/json", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("error making request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusCreated {
		return nil, decodeError(res)
	}

	var task model.Event
	if err := json.NewDecoder(res.Body).Decode(&task); err != nil {
		return nil, fmt.Errorf("error decoding response: %w", err)
	}
	return &task, nil
}

// removes a personal task by ID
func (c *APIClient) RemoveTask(id string) error {
	req, err := http.NewRequest(http.MethodDelete, c.baseURL+"/tasks/"+id, nil)
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("error making request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusNoContent {
		return decodeError(res)
	}
	return nil
}

// triggers a feed sync and returns its result
func (c *APIClient) Sync() (*types.SyncResult, error) {
	res, err := c.httpClient.Post(c.baseURL+"/sync", "application/json", nil)
	if err != nil {
		return nil, fmt.Errorf("error making request: %w", err)
	}
	defer res.Body.Close()

	var result types.SyncResult
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("error decoding response: %w", err)
	}

	if res.StatusCode != http.StatusOK {
		return &result, fmt.Errorf("sync failed: %s", result.LastError)
	}
	return &result, nil
}

// fetches the dashboard stats snapshot
func (c *APIClient) GetStats() (*types.Stats, error) {
	res, err := c.httpClient.Get(c.baseURL + "/stats")
	if err != nil {
		return nil, fmt.Errorf("error making request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, decodeError(res)
	}

	var stats types.Stats
	if err := json.NewDecoder(res.Body).Decode(&stats); err != nil {
		return nil, fmt.Errorf("error decoding response: %w", err)
	}
	return &stats, nil
}

func decodeError(res *http.Response) error {
	var errRes ErrorResponse
	if err := json.NewDecoder(res.Body).Decode(&errRes); err != nil {
		return fmt.Errorf("request failed with status %d", res.StatusCode)
	}
	return fmt.Errorf("%s", errRes.Message)
}
