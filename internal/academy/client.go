package academy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
)

// ErrServiceUnavailable wraps transport-level failures (connection refused,
// DNS, reset). The caller surfaces it and offers the user a retry; there is
// no automatic retry here.
var ErrServiceUnavailable = errors.New("course service unavailable")

// APIError is the uniform error for every non-2xx response. Message carries
// the server-provided text verbatim when the body has one.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if strings.TrimSpace(e.Message) == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return e.Message
}

// Client talks to the course API. It is safe for concurrent use; WithToken
// returns a shallow copy bound to one bearer credential, so each request
// handler binds the session it is serving.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient builds a client for the given base URL. A nil httpClient falls
// back to http.DefaultClient; callers that want a hung request to eventually
// fail must configure their own timeout, none is applied here.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = "http://127.0.0.1:8000/api"
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: baseURL, httpClient: httpClient}
}

// WithToken binds a copy of the client to a bearer credential. An empty
// token yields an anonymous client.
func (c *Client) WithToken(token string) *Client {
	copied := *c
	copied.token = token
	return &copied
}

/* ---------------- auth ---------------- */

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	req := map[string]string{"username": username, "password": password}
	var resp struct {
		Access string `json:"access"`
	}
	if _, err := c.doJSON(ctx, http.MethodPost, "/token/", req, &resp); err != nil {
		return "", err
	}
	return resp.Access, nil
}

// Register creates a student account.
func (c *Client) Register(ctx context.Context, username, email, password string) error {
	req := map[string]string{"username": username, "email": email, "password": password}
	_, err := c.doJSON(ctx, http.MethodPost, "/register/", req, nil)
	return err
}

/* ---------------- courses ---------------- */

func (c *Client) ListCourses(ctx context.Context) ([]Course, error) {
	var out []Course
	if _, err := c.doJSON(ctx, http.MethodGet, "/courses/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetCourse(ctx context.Context, id int64) (*Course, error) {
	var out Course
	hasBody, err := c.doJSON(ctx, http.MethodGet, coursePath(id), nil, &out)
	if err != nil || !hasBody {
		return nil, err
	}
	return &out, nil
}

// CoursePatch carries the partial-update fields; nil fields are omitted
// from the PATCH body.
type CoursePatch struct {
	Title       *string       `json:"title,omitempty"`
	Description *string       `json:"description,omitempty"`
	Status      *CourseStatus `json:"status,omitempty"`
}

func (c *Client) UpdateCourse(ctx context.Context, id int64, patch CoursePatch) (*Course, error) {
	var out Course
	hasBody, err := c.doJSON(ctx, http.MethodPatch, coursePath(id), patch, &out)
	if err != nil || !hasBody {
		return nil, err
	}
	return &out, nil
}

func (c *Client) PublishCourse(ctx context.Context, id int64) (*Course, error) {
	status := StatusPublished
	return c.UpdateCourse(ctx, id, CoursePatch{Status: &status})
}

func (c *Client) DeleteCourse(ctx context.Context, id int64) error {
	_, err := c.doJSON(ctx, http.MethodDelete, coursePath(id), nil, nil)
	return err
}

/* ---------------- AI generation ---------------- */

type GenerateCourseRequest struct {
	Prompt              string `json:"prompt"`
	NumContentModules   int    `json:"num_content_modules"`
	NumLessonsPerModule int    `json:"num_lessons_per_module"`
	NumTestModules      int    `json:"num_test_modules"`
}

// GenerateCourse asks the backend to author a whole course. The call is
// long-running on the server; no client-side timeout is applied.
func (c *Client) GenerateCourse(ctx context.Context, req GenerateCourseRequest) (*Course, error) {
	var out Course
	hasBody, err := c.doJSON(ctx, http.MethodPost, "/courses/generate/", req, &out)
	if err != nil || !hasBody {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GenerateModule(ctx context.Context, courseID int64, prompt string, moduleType ModuleType) (*Module, error) {
	req := map[string]any{"prompt": prompt, "module_type": moduleType}
	var out Module
	hasBody, err := c.doJSON(ctx, http.MethodPost, "/courses/"+itoa(courseID)+"/generate-module/", req, &out)
	if err != nil || !hasBody {
		return nil, err
	}
	return &out, nil
}

/* ---------------- modules ---------------- */

func (c *Client) CreateModule(ctx context.Context, courseID int64, title string, order int, moduleType ModuleType) (*Module, error) {
	req := map[string]any{"course": courseID, "title": title, "order": order, "module_type": moduleType}
	var out Module
	hasBody, err := c.doJSON(ctx, http.MethodPost, "/modules/", req, &out)
	if err != nil || !hasBody {
		return nil, err
	}
	return &out, nil
}

type ModulePatch struct {
	Title *string `json:"title,omitempty"`
	Order *int    `json:"order,omitempty"`
}

func (c *Client) UpdateModule(ctx context.Context, id int64, patch ModulePatch) (*Module, error) {
	var out Module
	hasBody, err := c.doJSON(ctx, http.MethodPatch, "/modules/"+itoa(id)+"/", patch, &out)
	if err != nil || !hasBody {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteModule(ctx context.Context, id int64) error {
	_, err := c.doJSON(ctx, http.MethodDelete, "/modules/"+itoa(id)+"/", nil, nil)
	return err
}

/* ---------------- lessons ---------------- */

func (c *Client) CreateLesson(ctx context.Context, moduleID int64, title string, order int, content string) (*Lesson, error) {
	req := map[string]any{"module": moduleID, "title": title, "order": order, "content": content}
	var out Lesson
	hasBody, err := c.doJSON(ctx, http.MethodPost, "/lessons/", req, &out)
	if err != nil || !hasBody {
		return nil, err
	}
	return &out, nil
}

type LessonPatch struct {
	Title            *string   `json:"title,omitempty"`
	Content          *string   `json:"content,omitempty"`
	VideoID          *string   `json:"video_id,omitempty"`
	MCQQuestion      *string   `json:"mcq_question,omitempty"`
	MCQOptions       *[]string `json:"mcq_options,omitempty"`
	MCQCorrectAnswer *string   `json:"mcq_correct_answer,omitempty"`
}

func (c *Client) UpdateLesson(ctx context.Context, id int64, patch LessonPatch) (*Lesson, error) {
	var out Lesson
	hasBody, err := c.doJSON(ctx, http.MethodPatch, "/lessons/"+itoa(id)+"/", patch, &out)
	if err != nil || !hasBody {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteLesson(ctx context.Context, id int64) error {
	_, err := c.doJSON(ctx, http.MethodDelete, "/lessons/"+itoa(id)+"/", nil, nil)
	return err
}

/* ---------------- quizzes & questions ---------------- */

func (c *Client) CreateQuiz(ctx context.Context, moduleID int64, title string) (*Quiz, error) {
	req := map[string]any{"module": moduleID, "title": title}
	var out Quiz
	hasBody, err := c.doJSON(ctx, http.MethodPost, "/quizzes/", req, &out)
	if err != nil || !hasBody {
		return nil, err
	}
	return &out, nil
}

type QuizPatch struct {
	Title *string `json:"title,omitempty"`
}

func (c *Client) UpdateQuiz(ctx context.Context, id int64, patch QuizPatch) (*Quiz, error) {
	var out Quiz
	hasBody, err := c.doJSON(ctx, http.MethodPatch, "/quizzes/"+itoa(id)+"/", patch, &out)
	if err != nil || !hasBody {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateQuestion(ctx context.Context, quizID int64, text string, order int, options []string, correctAnswer string) (*Question, error) {
	req := map[string]any{
		"quiz":           quizID,
		"question_text":  text,
		"order":          order,
		"options":        options,
		"correct_answer": correctAnswer,
	}
	var out Question
	hasBody, err := c.doJSON(ctx, http.MethodPost, "/questions/", req, &out)
	if err != nil || !hasBody {
		return nil, err
	}
	return &out, nil
}

type QuestionPatch struct {
	QuestionText  *string   `json:"question_text,omitempty"`
	Order         *int      `json:"order,omitempty"`
	Options       *[]string `json:"options,omitempty"`
	CorrectAnswer *string   `json:"correct_answer,omitempty"`
}

func (c *Client) UpdateQuestion(ctx context.Context, id int64, patch QuestionPatch) (*Question, error) {
	var out Question
	hasBody, err := c.doJSON(ctx, http.MethodPatch, "/questions/"+itoa(id)+"/", patch, &out)
	if err != nil || !hasBody {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteQuestion(ctx context.Context, id int64) error {
	_, err := c.doJSON(ctx, http.MethodDelete, "/questions/"+itoa(id)+"/", nil, nil)
	return err
}

/* ---------------- plumbing ---------------- */

// errorBody covers the message shapes the API emits (DRF uses "detail",
// some views use "error" or "message").
type errorBody struct {
	Detail  string `json:"detail"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (b errorBody) text() string {
	for _, s := range []string{b.Detail, b.Error, b.Message} {
		if strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

// doJSON issues one request. Non-2xx responses become *APIError; transport
// failures wrap ErrServiceUnavailable. The returned bool reports whether a
// body was decoded into responseBody, so a 204 resolves to an explicit
// empty result rather than a zero-valued object.
func (c *Client) doJSON(ctx context.Context, method, path string, requestBody, responseBody any) (bool, error) {
	var body io.Reader
	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return false, err
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return false, err
	}
	if requestBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var payload errorBody
		if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil {
			apiErr.Message = payload.text()
		}
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return false, apiErr
	}

	if resp.StatusCode == http.StatusNoContent || responseBody == nil {
		return false, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(responseBody); err != nil {
		return false, fmt.Errorf("decode response: %w", err)
	}
	return true, nil
}

func coursePath(id int64) string { return "/courses/" + itoa(id) + "/" }

func itoa(id int64) string { return strconv.FormatInt(id, 10) }
