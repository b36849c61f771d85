// Package api is an HTTP client for the chess server REST API
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"chesscore/internal/client/display"
	"chesscore/internal/core"
)

// HealthResponse mirrors the server's /health body
type HealthResponse struct {
	Status  string `json:"status"`
	Time    int64  `json:"time"`
	Games   int    `json:"games"`
	Storage string `json:"storage"`
}

// APIError is returned for any response with a 4xx or 5xx status
type APIError struct {
	Status int
	core.ErrorResponse
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("request failed with status %d", e.Status)
	}
	return fmt.Sprintf("%s (%s)", e.ErrorResponse.Error, e.Code)
}

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Verbose    bool
	out        io.Writer
}

// New creates a client that traces requests and responses to out
func New(baseURL string, out io.Writer) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			// Long polls hold the request for up to 25s
			Timeout: 30 * time.Second,
		},
		out: out,
	}
}

func (c *Client) SetVerbose(v bool) {
	c.Verbose = v
}

// SetBaseURL updates the API base URL for the client
func (c *Client) SetBaseURL(baseURL string) {
	c.BaseURL = strings.TrimRight(baseURL, "/")
}

// WebSocketURL returns the stream endpoint of a game
func (c *Client) WebSocketURL(gameID string) string {
	base := c.BaseURL
	switch {
	case strings.HasPrefix(base, "https://"):
		base = "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}
	return base + "/ws/games/" + gameID
}

func (c *Client) doRequest(method, path string, body any, result any) error {
	var bodyReader io.Reader
	var bodyData []byte
	if body != nil {
		var err error
		if bodyData, err = json.Marshal(body); err != nil {
			return err
		}
		bodyReader = bytes.NewReader(bodyData)
	}

	req, err := http.NewRequest(method, c.BaseURL+path, bodyReader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	fmt.Fprintf(c.out, "%s[API] %s %s%s\n", display.Blue, method, path, display.Reset)
	if c.Verbose && len(bodyData) > 0 {
		fmt.Fprintf(c.out, "%sRequest Body:%s\n", display.Cyan, display.Reset)
		display.PrettyPrintJSON(c.out, json.RawMessage(bodyData))
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	statusColor := display.Green
	if resp.StatusCode >= 400 {
		statusColor = display.Red
	}
	fmt.Fprintf(c.out, "%s[%d %s]%s\n", statusColor, resp.StatusCode, http.StatusText(resp.StatusCode), display.Reset)

	if c.Verbose && len(respBody) > 0 {
		if json.Valid(respBody) {
			display.PrettyPrintJSON(c.out, json.RawMessage(respBody))
		} else {
			fmt.Fprintln(c.out, string(respBody))
		}
	}

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode}
		_ = json.Unmarshal(respBody, &apiErr.ErrorResponse)
		return apiErr
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}

	return nil
}

func (c *Client) Health() (*HealthResponse, error) {
	var resp HealthResponse
	err := c.doRequest(http.MethodGet, "/health", nil, &resp)
	return &resp, err
}

// CreateGame starts a game from fen, or the standard setup when fen is empty
func (c *Client) CreateGame(fen string) (*core.GameResponse, error) {
	var resp core.GameResponse
	err := c.doRequest(http.MethodPost, "/api/v1/games", core.CreateGameRequest{FEN: fen}, &resp)
	return &resp, err
}

func (c *Client) GetGame(gameID string) (*core.GameResponse, error) {
	var resp core.GameResponse
	err := c.doRequest(http.MethodGet, "/api/v1/games/"+gameID, nil, &resp)
	return &resp, err
}

// GetGameWithPoll blocks until the game's move count differs from moveCount
// or the server times the poll out
func (c *Client) GetGameWithPoll(gameID string, moveCount int) (*core.GameResponse, error) {
	var resp core.GameResponse
	path := fmt.Sprintf("/api/v1/games/%s?wait=true&moveCount=%d", gameID, moveCount)
	err := c.doRequest(http.MethodGet, path, nil, &resp)
	return &resp, err
}

func (c *Client) DeleteGame(gameID string) error {
	return c.doRequest(http.MethodDelete, "/api/v1/games/"+gameID, nil, nil)
}

func (c *Client) MakeMove(gameID, from, to string) (*core.MoveResponse, error) {
	var resp core.MoveResponse
	err := c.doRequest(http.MethodPost, "/api/v1/games/"+gameID+"/moves", core.MoveRequest{From: from, To: to}, &resp)
	return &resp, err
}

func (c *Client) LegalMoves(gameID, from string) (*core.LegalMovesResponse, error) {
	var resp core.LegalMovesResponse
	path := "/api/v1/games/" + gameID + "/moves?from=" + url.QueryEscape(from)
	err := c.doRequest(http.MethodGet, path, nil, &resp)
	return &resp, err
}

func (c *Client) UndoMoves(gameID string, count int) (*core.GameResponse, error) {
	var resp core.GameResponse
	err := c.doRequest(http.MethodPost, "/api/v1/games/"+gameID+"/undo", core.UndoRequest{Count: count}, &resp)
	return &resp, err
}

func (c *Client) GetBoard(gameID string) (*core.BoardResponse, error) {
	var resp core.BoardResponse
	err := c.doRequest(http.MethodGet, "/api/v1/games/"+gameID+"/board", nil, &resp)
	return &resp, err
}

// RawRequest sends body as-is when it is valid JSON, quoted otherwise
func (c *Client) RawRequest(method, path, body string) error {
	var payload any
	if body != "" {
		if json.Valid([]byte(body)) {
			payload = json.RawMessage(body)
		} else {
			payload = body
		}
	}
	return c.doRequest(method, path, payload, nil)
}
