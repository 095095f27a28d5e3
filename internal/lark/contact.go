package lark

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// User is the subset of the contact directory profile the bot reads.
type User struct {
	OpenID string `json:"open_id"`
	Name   string `json:"name"`
	EnName string `json:"en_name"`
}

type getUserData struct {
	User User `json:"user"`
}

// GetUser resolves a user profile by open id.
func (c *Client) GetUser(ctx context.Context, userID string) (*User, error) {
	query := url.Values{}
	query.Set("user_id_type", "open_id")

	var data getUserData
	path := fmt.Sprintf("/open-apis/contact/v3/users/%s", userID)
	if err := c.doJSON(ctx, http.MethodGet, path, query, nil, &data); err != nil {
		return nil, fmt.Errorf("get user %s: %w", userID, err)
	}
	return &data.User, nil
}
