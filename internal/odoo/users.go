package odoo

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/thiop/delivery/internal/domain"
)

var userFields = map[string]interface{}{
	"fields": []string{"id", "name", "login", "email"},
}

// VerifyAPIKey checks that the configured credentials resolve to a real
// backend user. Returns nil without error when the user does not exist.
func (c *Client) VerifyAPIKey(ctx context.Context) (*domain.User, error) {
	args := []interface{}{
		[]interface{}{[]interface{}{"id", "=", c.cfg.UserID}},
	}
	result, err := c.Call(ctx, "res.users", "search_read", args, userFields)
	if err != nil {
		return nil, err
	}

	var users []domain.User
	if err := json.Unmarshal(result, &users); err != nil {
		return nil, fmt.Errorf("unmarshal users: %w", err)
	}
	if len(users) == 0 {
		return nil, nil
	}
	return &users[0], nil
}

// CurrentUser reads the configured user's record.
func (c *Client) CurrentUser(ctx context.Context) (*domain.User, error) {
	args := []interface{}{[]interface{}{c.cfg.UserID}}
	result, err := c.Call(ctx, "res.users", "read", args, userFields)
	if err != nil {
		return nil, err
	}

	var users []domain.User
	if err := json.Unmarshal(result, &users); err != nil {
		return nil, fmt.Errorf("unmarshal user: %w", err)
	}
	if len(users) == 0 {
		return nil, &RemoteError{Message: fmt.Sprintf("user %d not found", c.cfg.UserID)}
	}
	return &users[0], nil
}
