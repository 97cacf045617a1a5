package hevy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
)

const defaultPageSize = 50

// Workout is the subset of the Hevy workout payload the agents consume.
type Workout struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	StartTime   string     `json:"start_time"`
	EndTime     string     `json:"end_time"`
	Exercises   []Exercise `json:"exercises"`
}

type Exercise struct {
	Title      string `json:"title"`
	Notes      string `json:"notes"`
	TemplateID string `json:"exercise_template_id"`
	Sets       []Set  `json:"sets"`
}

type Set struct {
	Type            string   `json:"type"`
	WeightKg        *float64 `json:"weight_kg"`
	Reps            *int     `json:"reps"`
	DistanceMeters  *float64 `json:"distance_meters"`
	DurationSeconds *float64 `json:"duration_seconds"`
	RPE             *float64 `json:"rpe"`
}

// HistoryRow is one set-level entry from the per-exercise history endpoint.
type HistoryRow struct {
	WorkoutID        string   `json:"workout_id"`
	WorkoutStartTime string   `json:"workout_start_time"`
	WeightKg         *float64 `json:"weight_kg"`
	Reps             *int     `json:"reps"`
	DurationSeconds  *float64 `json:"duration_seconds"`
	DistanceMeters   *float64 `json:"distance_meters"`
}

type workoutsPage struct {
	Workouts  []Workout `json:"workouts"`
	Page      int       `json:"page"`
	PageCount int       `json:"page_count"`
}

type historyResponse struct {
	ExerciseHistory []HistoryRow `json:"exercise_history"`
}

type Getter interface {
	GetParameter(ctx context.Context, name string) (string, error)
}

// HTTPStatusError captures non-2xx upstream responses with status-aware context.
type HTTPStatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("hevy: unexpected status %d from %s: %s", e.StatusCode, e.URL, e.Body)
}

func (e *HTTPStatusError) HTTPStatusCode() int {
	return e.StatusCode
}

// Client is a read-only client for the Hevy workout API. The API key is
// fetched from SSM on first use and cached for the process lifetime.
type Client struct {
	baseURL    string
	httpClient *http.Client
	getter     Getter
	keyParam   string
	now        func() time.Time

	keyOnce sync.Once
	apiKey  string
	keyErr  error
}

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient creates a Client backed by the given paramstore Getter for API
// key retrieval.
func NewClient(ps Getter, keyParam string, opts ...Option) (*Client, error) {
	if ps == nil {
		return nil, errors.New("hevy: paramstore getter must not be nil")
	}
	keyParam = strings.TrimSpace(keyParam)
	if keyParam == "" {
		return nil, errors.New("hevy: key parameter name must not be empty")
	}
	c := &Client{
		baseURL:    "https://api.hevyapp.com/v1",
		httpClient: &http.Client{Timeout: 15 * time.Second},
		getter:     ps,
		keyParam:   keyParam,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) resolveAPIKey(ctx context.Context) (string, error) {
	c.keyOnce.Do(func() {
		key, err := c.getter.GetParameter(ctx, c.keyParam)
		if err != nil {
			c.keyErr = fmt.Errorf("hevy: fetch api key from paramstore: %w", err)
			return
		}
		key = strings.TrimSpace(key)
		if key == "" {
			c.keyErr = errors.New("hevy: api key parameter is empty")
			return
		}
		c.apiKey = key
	})
	return c.apiKey, c.keyErr
}

// WorkoutsRange fetches all workouts in [start, end], following page_count
// pagination until the last page or an empty page.
func (c *Client) WorkoutsRange(ctx context.Context, start, end time.Time) ([]Workout, error) {
	var all []Workout
	for page := 1; ; page++ {
		q := url.Values{}
		q.Set("start_date", start.UTC().Format("2006-01-02T15:04:05Z"))
		q.Set("end_date", end.UTC().Format("2006-01-02T15:04:05Z"))
		q.Set("page_size", strconv.Itoa(defaultPageSize))
		q.Set("page", strconv.Itoa(page))

		var parsed workoutsPage
		if err := c.getJSON(ctx, c.baseURL+"/workouts?"+q.Encode(), &parsed); err != nil {
			return nil, err
		}
		all = append(all, parsed.Workouts...)

		pageCount := parsed.PageCount
		if pageCount == 0 {
			pageCount = page
		}
		if page >= pageCount || len(parsed.Workouts) == 0 {
			break
		}
	}
	return all, nil
}

// RecentWorkouts fetches workouts from the last N days.
func (c *Client) RecentWorkouts(ctx context.Context, days int) ([]Workout, error) {
	end := c.now().UTC()
	return c.WorkoutsRange(ctx, end.AddDate(0, 0, -days), end)
}

// WorkoutByID fetches a single workout.
func (c *Client) WorkoutByID(ctx context.Context, workoutID string) (Workout, error) {
	workoutID = strings.TrimSpace(workoutID)
	if workoutID == "" {
		return Workout{}, errors.New("hevy: workout id must not be empty")
	}
	var w Workout
	if err := c.getJSON(ctx, c.baseURL+"/workouts/"+url.PathEscape(workoutID), &w); err != nil {
		return Workout{}, err
	}
	return w, nil
}

// ExerciseHistory fetches set-level history rows for one exercise template in
// [start, end].
func (c *Client) ExerciseHistory(ctx context.Context, exerciseID string, start, end time.Time) ([]HistoryRow, error) {
	exerciseID = strings.TrimSpace(exerciseID)
	if exerciseID == "" {
		return nil, errors.New("hevy: exercise id must not be empty")
	}
	q := url.Values{}
	q.Set("start_date", start.UTC().Format("2006-01-02T15:04:05Z"))
	q.Set("end_date", end.UTC().Format("2006-01-02T15:04:05Z"))

	var parsed historyResponse
	if err := c.getJSON(ctx, c.baseURL+"/exercise_history/"+url.PathEscape(exerciseID)+"?"+q.Encode(), &parsed); err != nil {
		return nil, err
	}
	return parsed.ExerciseHistory, nil
}

// RecentWorkoutsText fetches the last N days of workouts and renders them as
// a prompt-ready text block.
func (c *Client) RecentWorkoutsText(ctx context.Context, days int) (string, error) {
	workouts, err := c.RecentWorkouts(ctx, days)
	if err != nil {
		return "", err
	}
	return FormatWorkouts(workouts, c.now().UTC()), nil
}

// FrequencyText fetches the last N days of workouts and renders a per-exercise
// frequency summary.
func (c *Client) FrequencyText(ctx context.Context, days int) (string, error) {
	end := c.now().UTC()
	start := end.AddDate(0, 0, -days)
	workouts, err := c.WorkoutsRange(ctx, start, end)
	if err != nil {
		return "", err
	}
	return FormatFrequency(workouts, start, end), nil
}

// WorkoutText fetches one workout and renders it for analysis.
func (c *Client) WorkoutText(ctx context.Context, workoutID string) (string, error) {
	w, err := c.WorkoutByID(ctx, workoutID)
	if err != nil {
		return "", err
	}
	return FormatWorkouts([]Workout{w}, c.now().UTC()), nil
}

func (c *Client) getJSON(ctx context.Context, rawURL string, out any) error {
	apiKey, err := c.resolveAPIKey(ctx)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("hevy: create request: %w", err)
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("api-key", apiKey)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("hevy: request failed: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		buf, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return &HTTPStatusError{StatusCode: res.StatusCode, URL: rawURL, Body: string(buf)}
	}

	buf, err := io.ReadAll(io.LimitReader(res.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("hevy: read response body: %w", err)
	}
	if err := json.Unmarshal(buf, out); err != nil {
		return fmt.Errorf("hevy: decode response: %w", err)
	}
	return nil
}
