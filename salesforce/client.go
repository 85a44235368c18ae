package salesforce

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

const defaultAPIVersion = "v59.0"

type Config struct {
	Username       string
	Password       string
	SecurityToken  string
	ConsumerKey    string
	ConsumerSecret string
	LoginURL       string
	APIVersion     string
}

// ConfigFromEnv reads SF_* credentials. Username, password and consumer
// key/secret are required; the security token may be empty for IP-allowlisted
// orgs.
func ConfigFromEnv() (Config, error) {
	cfg := Config{
		Username:       strings.TrimSpace(os.Getenv("SF_USERNAME")),
		Password:       strings.TrimSpace(os.Getenv("SF_PASSWORD")),
		SecurityToken:  strings.TrimSpace(os.Getenv("SF_SECURITY_TOKEN")),
		ConsumerKey:    strings.TrimSpace(os.Getenv("SF_CONSUMER_KEY")),
		ConsumerSecret: strings.TrimSpace(os.Getenv("SF_CONSUMER_SECRET")),
		LoginURL:       strings.TrimSpace(os.Getenv("SF_LOGIN_URL")),
		APIVersion:     strings.TrimSpace(os.Getenv("SF_API_VERSION")),
	}
	if cfg.LoginURL == "" {
		cfg.LoginURL = "https://login.salesforce.com"
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = defaultAPIVersion
	}
	if cfg.Username == "" || cfg.Password == "" {
		return Config{}, errors.New("SF_USERNAME/SF_PASSWORD are required")
	}
	if cfg.ConsumerKey == "" || cfg.ConsumerSecret == "" {
		return Config{}, errors.New("SF_CONSUMER_KEY/SF_CONSUMER_SECRET are required")
	}
	return cfg, nil
}

type Client struct {
	http        *http.Client
	instanceURL string
	accessToken string
	apiVersion  string
}

type tokenResponse struct {
	AccessToken      string `json:"access_token"`
	InstanceURL      string `json:"instance_url"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// Login performs the OAuth2 username-password flow. The security token is
// appended to the password, as Salesforce requires outside trusted networks.
// Any failure here is fatal to the sync.
func Login(ctx context.Context, cfg Config) (*Client, error) {
	form := url.Values{}
	form.Set("grant_type", "password")
	form.Set("client_id", cfg.ConsumerKey)
	form.Set("client_secret", cfg.ConsumerSecret)
	form.Set("username", cfg.Username)
	form.Set("password", cfg.Password+cfg.SecurityToken)

	endpoint := strings.TrimRight(cfg.LoginURL, "/") + "/services/oauth2/token"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	httpClient := &http.Client{Timeout: 30 * time.Second}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	var token tokenResponse
	if err := json.Unmarshal(body, &token); err != nil {
		return nil, fmt.Errorf("salesforce login: unexpected response %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 || token.AccessToken == "" {
		return nil, fmt.Errorf("salesforce login failed (%d): %s %s", resp.StatusCode, token.Error, token.ErrorDescription)
	}

	apiVersion := cfg.APIVersion
	if apiVersion == "" {
		apiVersion = defaultAPIVersion
	}
	return &Client{
		http:        httpClient,
		instanceURL: strings.TrimRight(token.InstanceURL, "/"),
		accessToken: token.AccessToken,
		apiVersion:  apiVersion,
	}, nil
}

// QueryResult is one page of records. When Done is false, NextRecordsURL is
// the continuation locator consumed by QueryMore.
type QueryResult struct {
	TotalSize      int               `json:"totalSize"`
	Done           bool              `json:"done"`
	NextRecordsURL string            `json:"nextRecordsUrl"`
	Records        []json.RawMessage `json:"records"`
}

func (c *Client) Query(ctx context.Context, soql string) (QueryResult, error) {
	path := fmt.Sprintf("/services/data/%s/query?q=%s", c.apiVersion, url.QueryEscape(soql))
	return c.get(ctx, path)
}

func (c *Client) QueryMore(ctx context.Context, nextRecordsURL string) (QueryResult, error) {
	if strings.TrimSpace(nextRecordsURL) == "" {
		return QueryResult{}, errors.New("empty query locator")
	}
	return c.get(ctx, nextRecordsURL)
}

func (c *Client) get(ctx context.Context, path string) (QueryResult, error) {
	endpoint := c.instanceURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return QueryResult{}, err
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return QueryResult{}, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return QueryResult{}, fmt.Errorf("salesforce api error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed QueryResult
	if err := json.Unmarshal(body, &parsed); err != nil {
		return QueryResult{}, err
	}
	return parsed, nil
}
