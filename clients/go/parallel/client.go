// Package parallel provides a client for the Parallel AI workspace API.
package parallel

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"time"
)

// Client is a Parallel AI API client. Sessions are cookie-based: call
// Login (or Register) once and the jar carries the session afterwards.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a new client.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	jar, _ := cookiejar.New(nil)
	return &Client{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Jar:     jar,
			Timeout: 120 * time.Second, // team turns fan out several model calls
		},
	}
}

// apiError is the server's JSON error envelope.
type apiError struct {
	Error string `json:"error"`
}

func (c *Client) do(method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.BaseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 400 {
		var apiErr apiError
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s %s: %s", method, path, apiErr.Error)
		}
		return fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
	}

	if out != nil {
		return json.Unmarshal(data, out)
	}
	return nil
}

// User is a workspace member.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	OrgID     string `json:"org_id"`
	CreatedAt string `json:"created_at"`
}

// Register creates an account and starts a session.
func (c *Client) Register(email, name, password, org string) (*User, error) {
	var user User
	err := c.do("POST", "/auth/register", map[string]string{
		"email":    email,
		"name":     name,
		"password": password,
		"org":      org,
	}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Login starts a session.
func (c *Client) Login(email, password string) error {
	return c.do("POST", "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, nil)
}

// Me returns the current user.
func (c *Client) Me() (*User, error) {
	var user User
	if err := c.do("GET", "/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Room is a collaboration space.
type Room struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	ProjectSummary string `json:"project_summary"`
	MemorySummary  string `json:"memory_summary"`
	SummaryVersion int64  `json:"summary_version"`
	SummaryUpdates int64  `json:"summary_updates"`
	CreatedAt      int64  `json:"created_at"`
}

// CreateRoom creates a room in the caller's org.
func (c *Client) CreateRoom(name string) (*Room, error) {
	var room Room
	err := c.do("POST", "/rooms", map[string]string{"name": name}, &room)
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// ListRooms lists the caller's org rooms.
func (c *Client) ListRooms() ([]Room, error) {
	var resp struct {
		Rooms []Room `json:"rooms"`
	}
	if err := c.do("GET", "/rooms", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Rooms, nil
}

// Message is one entry in a room's log.
type Message struct {
	ID         string `json:"id"`
	RoomID     string `json:"room_id"`
	SenderID   string `json:"sender_id"`
	SenderName string `json:"sender_name"`
	Role       string `json:"role"`
	Content    string `json:"content"`
	CreatedAt  string `json:"created_at"`
}

// Transcript is the room state returned from a chat turn or a
// transcript fetch. Reply is nil on fetches.
type Transcript struct {
	RoomID         string    `json:"room_id"`
	ProjectSummary string    `json:"project_summary"`
	MemorySummary  string    `json:"memory_summary"`
	SummaryVersion int64     `json:"summary_version"`
	SummaryUpdates int64     `json:"summary_updates"`
	Reply          *Message  `json:"reply"`
	Messages       []Message `json:"messages"`
}

// Chat sends one message through the orchestrator. mode is "self",
// "teammate" or "team"; target names an agent for teammate mode.
func (c *Client) Chat(roomID, mode, target, content string) (*Transcript, error) {
	var transcript Transcript
	err := c.do("POST", "/chat", map[string]string{
		"room_id": roomID,
		"mode":    mode,
		"target":  target,
		"content": content,
	}, &transcript)
	if err != nil {
		return nil, err
	}
	return &transcript, nil
}

// GetMessages fetches a room's log. limit 0 fetches everything.
func (c *Client) GetMessages(roomID string, limit int) ([]Message, error) {
	path := "/rooms/" + url.PathEscape(roomID) + "/messages"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var resp struct {
		Messages []Message `json:"messages"`
	}
	if err := c.do("GET", path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Messages, nil
}

// GetTranscript fetches a room's summary state and full message log.
func (c *Client) GetTranscript(roomID string) (*Transcript, error) {
	var transcript Transcript
	if err := c.do("GET", "/rooms/"+url.PathEscape(roomID)+"/transcript", nil, &transcript); err != nil {
		return nil, err
	}
	return &transcript, nil
}

// Member is one entry of the presence list.
type Member struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Online bool   `json:"online"`
}

// Online lists org members with presence.
func (c *Client) Online() ([]Member, error) {
	var resp struct {
		Members []Member `json:"members"`
	}
	if err := c.do("GET", "/online", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Members, nil
}

// Activity is one entry of the team activity feed.
type Activity struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	UserName  string `json:"user_name"`
	Summary   string `json:"summary"`
	Timestamp int64  `json:"ts"`
}

// GetActivity fetches the org's recent activity, newest first.
func (c *Client) GetActivity(limit int) ([]Activity, error) {
	path := "/activity"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var resp struct {
		Activity []Activity `json:"activity"`
	}
	if err := c.do("GET", path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Activity, nil
}

// Notification is a delivered outreach message.
type Notification struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Message   string `json:"message"`
	Read      bool   `json:"read"`
	CreatedAt string `json:"created_at"`
}

// GetNotifications fetches the caller's notifications.
func (c *Client) GetNotifications(unreadOnly bool) ([]Notification, error) {
	path := "/notifications"
	if unreadOnly {
		path += "?unread=true"
	}
	var resp struct {
		Notifications []Notification `json:"notifications"`
	}
	if err := c.do("GET", path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Notifications, nil
}

// Health fetches the server health report.
func (c *Client) Health() (map[string]any, error) {
	var resp map[string]any
	if err := c.do("GET", "/health", nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}
