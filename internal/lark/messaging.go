package lark

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

const (
	MsgTypeText        = "text"
	MsgTypeInteractive = "interactive"
)

type sendMessageData struct {
	MessageID string `json:"message_id"`
}

// SendMessage delivers a message to a user addressed by open id. The content
// value is serialized and sent as the string-encoded payload the IM API
// expects. Returns the created message id.
func (c *Client) SendMessage(ctx context.Context, receiveID, msgType string, content any) (string, error) {
	raw, err := json.Marshal(content)
	if err != nil {
		return "", err
	}

	query := url.Values{}
	query.Set("receive_id_type", "open_id")

	body := map[string]any{
		"receive_id": receiveID,
		"msg_type":   msgType,
		"content":    string(raw),
	}

	var data sendMessageData
	if err := c.doJSON(ctx, http.MethodPost, "/open-apis/im/v1/messages", query, body, &data); err != nil {
		return "", fmt.Errorf("send %s message: %w", msgType, err)
	}
	return data.MessageID, nil
}

// PatchMessage replaces the content of an existing card message.
func (c *Client) PatchMessage(ctx context.Context, messageID string, content any) error {
	raw, err := json.Marshal(content)
	if err != nil {
		return err
	}

	path := fmt.Sprintf("/open-apis/im/v1/messages/%s", messageID)
	body := map[string]any{"content": string(raw)}
	if err := c.doJSON(ctx, http.MethodPatch, path, nil, body, nil); err != nil {
		return fmt.Errorf("patch message %s: %w", messageID, err)
	}
	return nil
}
