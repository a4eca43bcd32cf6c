package xapi

// In this file: user lookup and social graph operations.

import (
	"context"
	"net/url"
	"strconv"
)

// User is the fixed response schema for user lookups.
type User struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Username    string `json:"username"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
}

type userResponse struct {
	Data User `json:"data"`
}

type userListResponse struct {
	Data []User `json:"data"`
}

// Me returns the authenticated user.
func (c *Client) Me(ctx context.Context) (User, error) {
	var r userResponse
	if err := c.get(ctx, "/users/me", nil, &r); err != nil {
		return User{}, err
	}
	return r.Data, nil
}

// UserByUsername looks a user up by their handle (without the @).
func (c *Client) UserByUsername(ctx context.Context, username string) (User, error) {
	var r userResponse
	if err := c.get(ctx, "/users/by/username/"+url.PathEscape(username), nil, &r); err != nil {
		return User{}, err
	}
	return r.Data, nil
}

// UserByID looks a user up by their numeric id.
func (c *Client) UserByID(ctx context.Context, userID string) (User, error) {
	var r userResponse
	if err := c.get(ctx, "/users/"+url.PathEscape(userID), nil, &r); err != nil {
		return User{}, err
	}
	return r.Data, nil
}

type followRequest struct {
	TargetUserID string `json:"target_user_id"`
}

// FollowResult is the fixed response schema of a follow operation.
type FollowResult struct {
	Following     bool `json:"following"`
	PendingFollow bool `json:"pending_follow,omitempty"`
}

type followResponse struct {
	Data FollowResult `json:"data"`
}

// Follow makes the authenticated user follow the target user.
func (c *Client) Follow(ctx context.Context, targetUserID string) (FollowResult, error) {
	me, err := c.authedUserID(ctx)
	if err != nil {
		return FollowResult{}, err
	}
	var r followResponse
	if err := c.post(ctx, "/users/"+url.PathEscape(me)+"/following", followRequest{TargetUserID: targetUserID}, &r); err != nil {
		return FollowResult{}, err
	}
	return r.Data, nil
}

// Unfollow makes the authenticated user unfollow the target user.
func (c *Client) Unfollow(ctx context.Context, targetUserID string) (FollowResult, error) {
	me, err := c.authedUserID(ctx)
	if err != nil {
		return FollowResult{}, err
	}
	var r followResponse
	if err := c.del(ctx, "/users/"+url.PathEscape(me)+"/following/"+url.PathEscape(targetUserID), &r); err != nil {
		return FollowResult{}, err
	}
	return r.Data, nil
}

func maxResultsQuery(maxResults int) url.Values {
	if maxResults <= 0 {
		return nil
	}
	return url.Values{"max_results": []string{strconv.Itoa(maxResults)}}
}

// Followers lists the followers of a user.
func (c *Client) Followers(ctx context.Context, userID string, maxResults int) ([]User, error) {
	var r userListResponse
	if err := c.get(ctx, "/users/"+url.PathEscape(userID)+"/followers", maxResultsQuery(maxResults), &r); err != nil {
		return nil, err
	}
	return r.Data, nil
}

// Following lists the users a user follows.
func (c *Client) Following(ctx context.Context, userID string, maxResults int) ([]User, error) {
	var r userListResponse
	if err := c.get(ctx, "/users/"+url.PathEscape(userID)+"/following", maxResultsQuery(maxResults), &r); err != nil {
		return nil, err
	}
	return r.Data, nil
}
