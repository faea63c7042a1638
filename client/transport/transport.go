package transport

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	json "github.com/json-iterator/go"

	"github.com/quillhub/quillhub/client/config"
	"github.com/quillhub/quillhub/client/credentials"
	"github.com/quillhub/quillhub/client/logger"
)

// ErrSessionExpired is returned when a request got a 401 and the silent
// refresh could not produce a new session.
var ErrSessionExpired = errors.New("session expired, please log in again")

var httpClient *resty.Client

// Init initializes the HTTP client with retry and backoff. Transient
// failures and 5xx responses are retried; client errors never are.
func Init() {
	httpClient = resty.New()

	httpClient.SetBaseURL(config.GetString("api.base_url"))
	httpClient.SetTimeout(time.Duration(config.GetInt("api.timeout")) * time.Second)
	httpClient.SetHeader("User-Agent", "Quill-CLI/0.1.0")

	httpClient.SetRetryCount(3)
	httpClient.SetRetryWaitTime(1 * time.Second)
	httpClient.SetRetryMaxWaitTime(30 * time.Second)
	httpClient.AddRetryCondition(func(resp *resty.Response, err error) bool {
		if err != nil {
			return true
		}
		return resp.StatusCode() >= 500
	})

	httpClient.OnBeforeRequest(func(c *resty.Client, req *resty.Request) error {
		logger.Debug("HTTP request", "method", req.Method, "url", req.URL)
		return nil
	})
	httpClient.OnAfterResponse(func(c *resty.Client, resp *resty.Response) error {
		logger.Debug("HTTP response", "status", resp.StatusCode())
		return nil
	})
}

// GetClient returns the HTTP client, initializing it on first use
func GetClient() *resty.Client {
	if httpClient == nil {
		Init()
	}
	return httpClient
}

// SetAuthToken sets the bearer token for subsequent requests
func SetAuthToken(token string) {
	GetClient().SetHeader("Authorization", "Bearer "+token)
}

// ClearAuthToken removes the bearer token
func ClearAuthToken() {
	GetClient().Header.Del("Authorization")
}

// Envelope is the uniform response body every endpoint returns
type Envelope struct {
	StatusCode int             `json:"statusCode"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
}

// APIError is a non-2xx envelope. Message is a machine-readable key;
// Fields carries per-field validation reasons when present.
type APIError struct {
	StatusCode int
	Message    string
	Fields     map[string]string
}

func (e *APIError) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("[%d] %s %v", e.StatusCode, e.Message, e.Fields)
	}
	return fmt.Sprintf("[%d] %s", e.StatusCode, e.Message)
}

// IsMessage reports whether err is an APIError carrying the given key
func IsMessage(err error, message string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Message == message
}

// Request describes one API call
type Request struct {
	Method string
	Path   string
	Query  map[string]string
	Body   interface{}
	// Result, when non-nil, receives the decoded envelope data
	Result interface{}
	// NoRefresh disables the silent refresh on 401, for the auth
	// endpoints themselves.
	NoRefresh bool
}

// Do executes a request and decodes the envelope. On a 401 it refreshes
// the session once and retries; if that fails the stored credentials
// are dropped and ErrSessionExpired is returned.
func Do(req Request) error {
	resp, err := execute(req)
	if err != nil {
		return err
	}

	if resp.StatusCode() == 401 && !req.NoRefresh {
		if refreshErr := refreshSession(); refreshErr != nil {
			return refreshErr
		}
		if resp, err = execute(req); err != nil {
			return err
		}
	}

	return decode(resp, req.Result)
}

func execute(req Request) (*resty.Response, error) {
	r := GetClient().R()
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, err
		}
		r.SetHeader("Content-Type", "application/json")
		r.SetBody(payload)
	}
	if len(req.Query) > 0 {
		r.SetQueryParams(req.Query)
	}
	return r.Execute(req.Method, req.Path)
}

func decode(resp *resty.Response, result interface{}) error {
	var env Envelope
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		if resp.IsSuccess() {
			return fmt.Errorf("malformed response: %w", err)
		}
		return &APIError{StatusCode: resp.StatusCode(), Message: string(resp.Body())}
	}

	if !resp.IsSuccess() {
		apiErr := &APIError{StatusCode: resp.StatusCode(), Message: env.Message}
		if len(env.Data) > 0 {
			// Validation failures carry per-field reasons in data
			_ = json.Unmarshal(env.Data, &apiErr.Fields)
		}
		return apiErr
	}

	if result != nil && len(env.Data) > 0 {
		return json.Unmarshal(env.Data, result)
	}
	return nil
}

// refreshSession exchanges the stored refresh token for a new pair.
// Any failure clears the stored session.
func refreshSession() error {
	creds, err := credentials.Load()
	if err != nil || creds == nil || creds.RefreshToken == "" {
		return ErrSessionExpired
	}

	logger.Debug("refreshing session")

	var tokens struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	err = Do(Request{
		Method:    "POST",
		Path:      "/api/auth/refresh-token",
		Body:      map[string]string{"refreshToken": creds.RefreshToken},
		Result:    &tokens,
		NoRefresh: true,
	})
	if err != nil {
		logger.Debug("session refresh failed", "error", err)
		_ = credentials.Delete()
		ClearAuthToken()
		return ErrSessionExpired
	}

	creds.AccessToken = tokens.AccessToken
	creds.RefreshToken = tokens.RefreshToken
	if err := credentials.Save(creds); err != nil {
		logger.Warn("failed to persist refreshed credentials", "error", err)
	}
	SetAuthToken(tokens.AccessToken)
	return nil
}
