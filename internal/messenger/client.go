package messenger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultGraphAPIBase = "https://graph.facebook.com/v18.0"
	defaultHTTPTimeout  = 10 * time.Second

	profileFields = "first_name,last_name,timezone"
)

// Client talks to the Messenger Send API and User Profile API.
type Client struct {
	pageAccessToken string
	graphAPIBase    string
	httpClient      *http.Client
}

// NewClient creates a new Graph API client.
func NewClient(pageAccessToken string) *Client {
	return &Client{
		pageAccessToken: pageAccessToken,
		graphAPIBase:    defaultGraphAPIBase,
		httpClient:      &http.Client{Timeout: defaultHTTPTimeout},
	}
}

// SetGraphAPIBase overrides the Graph API base URL (useful for testing).
func (c *Client) SetGraphAPIBase(base string) {
	c.graphAPIBase = strings.TrimRight(base, "/")
}

// SetTimeout bounds every Graph API round-trip.
func (c *Client) SetTimeout(d time.Duration) {
	if d > 0 {
		c.httpClient.Timeout = d
	}
}

// SendText sends a text message, optionally with quick replies.
func (c *Client) SendText(ctx context.Context, recipientID, text string, replies []QuickReply) (*SendResponse, error) {
	return c.send(ctx, SendRequest{
		Recipient:     Participant{ID: recipientID},
		MessagingType: "RESPONSE",
		Message:       &SendMessage{Text: text, QuickReplies: replies},
	})
}

// SendImage sends an image attachment hosted at imageURL.
func (c *Client) SendImage(ctx context.Context, recipientID, imageURL string) (*SendResponse, error) {
	return c.send(ctx, SendRequest{
		Recipient:     Participant{ID: recipientID},
		MessagingType: "RESPONSE",
		Message: &SendMessage{
			Attachment: &Attachment{
				Type:    "image",
				Payload: AttachmentPayload{URL: imageURL, IsReusable: true},
			},
		},
	})
}

// SendSenderAction shows a typing indicator or marks the conversation as seen.
func (c *Client) SendSenderAction(ctx context.Context, recipientID string, action SenderAction) (*SendResponse, error) {
	return c.send(ctx, SendRequest{
		Recipient:    Participant{ID: recipientID},
		SenderAction: action,
	})
}

// UserProfile fetches the first name and UTC offset of a page-scoped user.
func (c *Client) UserProfile(ctx context.Context, userID string) (*UserProfile, error) {
	q := url.Values{}
	q.Set("fields", profileFields)
	q.Set("access_token", c.pageAccessToken)
	endpoint := fmt.Sprintf("%s/%s?%s", c.graphAPIBase, url.PathEscape(userID), q.Encode())

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("messenger: create profile request: %w", err)
	}

	var profile UserProfile
	status, body, err := c.do(httpReq, &profile)
	if err != nil {
		return nil, fmt.Errorf("messenger: user profile %s: %w", userID, err)
	}
	if profile.Error != nil {
		return nil, fmt.Errorf("messenger: user profile %s: API error %d: %s", userID, profile.Error.Code, profile.Error.Message)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("messenger: user profile %s: unexpected status %d: %s", userID, status, body)
	}
	return &profile, nil
}

func (c *Client) send(ctx context.Context, req SendRequest) (*SendResponse, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("messenger: marshal send request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/me/messages?access_token=%s", c.graphAPIBase, url.QueryEscape(c.pageAccessToken))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("messenger: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	var sendResp SendResponse
	status, body, err := c.do(httpReq, &sendResp)
	if err != nil {
		return nil, fmt.Errorf("messenger: send to %s: %w", req.Recipient.ID, err)
	}
	if sendResp.Error != nil {
		return &sendResp, fmt.Errorf("messenger: API error %d: %s", sendResp.Error.Code, sendResp.Error.Message)
	}
	if status != http.StatusOK {
		return &sendResp, fmt.Errorf("messenger: unexpected status %d: %s", status, body)
	}
	return &sendResp, nil
}

// do executes the request and decodes the JSON body into out.
func (c *Client) do(req *http.Request, out any) (int, string, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, "", fmt.Errorf("read response: %w", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return resp.StatusCode, string(body), fmt.Errorf("unmarshal response: %w", err)
	}
	return resp.StatusCode, string(body), nil
}
