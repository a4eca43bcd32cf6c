package xapi

// In this file: post creation, lookup, timelines and engagement operations.

import (
	"context"
	"net/url"
)

// Post is the fixed response schema for post lookups.
type Post struct {
	ID             string `json:"id"`
	Text           string `json:"text"`
	AuthorID       string `json:"author_id,omitempty"`
	CreatedAt      string `json:"created_at,omitempty"`
	ConversationID string `json:"conversation_id,omitempty"`
}

type postResponse struct {
	Data Post `json:"data"`
}

type postListResponse struct {
	Data []Post `json:"data"`
}

// CreatePostRequest is the request schema of post creation.  Optional parts
// are pointers so that absent sub-objects are omitted from the wire format.
type CreatePostRequest struct {
	Text        string     `json:"text"`
	Media       *PostMedia `json:"media,omitempty"`
	Reply       *PostReply `json:"reply,omitempty"`
	QuotePostID string     `json:"quote_tweet_id,omitempty"`
}

// PostMedia attaches previously uploaded media to a new post.
type PostMedia struct {
	MediaIDs []string `json:"media_ids"`
}

// PostReply marks a new post as a reply to an existing one.
type PostReply struct {
	InReplyToPostID string `json:"in_reply_to_tweet_id"`
}

// CreatePost publishes a new post.
func (c *Client) CreatePost(ctx context.Context, req CreatePostRequest) (Post, error) {
	var r postResponse
	if err := c.post(ctx, "/tweets", req, &r); err != nil {
		return Post{}, err
	}
	return r.Data, nil
}

type deleteResponse struct {
	Data struct {
		Deleted bool `json:"deleted"`
	} `json:"data"`
}

// DeletePost removes a post owned by the authenticated user.
func (c *Client) DeletePost(ctx context.Context, postID string) (bool, error) {
	var r deleteResponse
	if err := c.del(ctx, "/tweets/"+url.PathEscape(postID), &r); err != nil {
		return false, err
	}
	return r.Data.Deleted, nil
}

// GetPost returns a single post by id.
func (c *Client) GetPost(ctx context.Context, postID string) (Post, error) {
	var r postResponse
	if err := c.get(ctx, "/tweets/"+url.PathEscape(postID), nil, &r); err != nil {
		return Post{}, err
	}
	return r.Data, nil
}

// SearchRecent searches posts from the last seven days.
func (c *Client) SearchRecent(ctx context.Context, query string, maxResults int) ([]Post, error) {
	q := maxResultsQuery(maxResults)
	if q == nil {
		q = url.Values{}
	}
	q.Set("query", query)
	var r postListResponse
	if err := c.get(ctx, "/tweets/search/recent", q, &r); err != nil {
		return nil, err
	}
	return r.Data, nil
}

// SearchAll searches the full post archive.  Requires Pro or Enterprise API
// access; lesser tiers get a 403 APIError.
func (c *Client) SearchAll(ctx context.Context, query string, maxResults int) ([]Post, error) {
	q := maxResultsQuery(maxResults)
	if q == nil {
		q = url.Values{}
	}
	q.Set("query", query)
	var r postListResponse
	if err := c.get(ctx, "/tweets/search/all", q, &r); err != nil {
		return nil, err
	}
	return r.Data, nil
}

// TimelineOpts narrows a home timeline request.
type TimelineOpts struct {
	MaxResults int
	// StartTime and EndTime are ISO 8601 timestamps bounding the window.
	StartTime string
	EndTime   string
}

// HomeTimeline returns the reverse-chronological home timeline of the
// authenticated user.
func (c *Client) HomeTimeline(ctx context.Context, opts TimelineOpts) ([]Post, error) {
	me, err := c.authedUserID(ctx)
	if err != nil {
		return nil, err
	}
	q := maxResultsQuery(opts.MaxResults)
	if q == nil {
		q = url.Values{}
	}
	if opts.StartTime != "" {
		q.Set("start_time", opts.StartTime)
	}
	if opts.EndTime != "" {
		q.Set("end_time", opts.EndTime)
	}
	var r postListResponse
	if err := c.get(ctx, "/users/"+url.PathEscape(me)+"/timelines/reverse_chronological", q, &r); err != nil {
		return nil, err
	}
	return r.Data, nil
}

// UserPosts returns the latest posts of a user.
func (c *Client) UserPosts(ctx context.Context, userID string, maxResults int) ([]Post, error) {
	var r postListResponse
	if err := c.get(ctx, "/users/"+url.PathEscape(userID)+"/tweets", maxResultsQuery(maxResults), &r); err != nil {
		return nil, err
	}
	return r.Data, nil
}

type likeRequest struct {
	TweetID string `json:"tweet_id"`
}

type likeResponse struct {
	Data struct {
		Liked bool `json:"liked"`
	} `json:"data"`
}

// Like marks a post as liked by the authenticated user.
func (c *Client) Like(ctx context.Context, postID string) (bool, error) {
	me, err := c.authedUserID(ctx)
	if err != nil {
		return false, err
	}
	var r likeResponse
	if err := c.post(ctx, "/users/"+url.PathEscape(me)+"/likes", likeRequest{TweetID: postID}, &r); err != nil {
		return false, err
	}
	return r.Data.Liked, nil
}

// Unlike removes the authenticated user's like from a post.
func (c *Client) Unlike(ctx context.Context, postID string) (bool, error) {
	me, err := c.authedUserID(ctx)
	if err != nil {
		return false, err
	}
	var r likeResponse
	if err := c.del(ctx, "/users/"+url.PathEscape(me)+"/likes/"+url.PathEscape(postID), &r); err != nil {
		return false, err
	}
	return r.Data.Liked, nil
}

type repostRequest struct {
	TweetID string `json:"tweet_id"`
}

type repostResponse struct {
	Data struct {
		Retweeted bool `json:"retweeted"`
	} `json:"data"`
}

// Repost reposts a post as the authenticated user.
func (c *Client) Repost(ctx context.Context, postID string) (bool, error) {
	me, err := c.authedUserID(ctx)
	if err != nil {
		return false, err
	}
	var r repostResponse
	if err := c.post(ctx, "/users/"+url.PathEscape(me)+"/retweets", repostRequest{TweetID: postID}, &r); err != nil {
		return false, err
	}
	return r.Data.Retweeted, nil
}

// Unrepost removes the authenticated user's repost of a post.
func (c *Client) Unrepost(ctx context.Context, postID string) (bool, error) {
	me, err := c.authedUserID(ctx)
	if err != nil {
		return false, err
	}
	var r repostResponse
	if err := c.del(ctx, "/users/"+url.PathEscape(me)+"/retweets/"+url.PathEscape(postID), &r); err != nil {
		return false, err
	}
	return r.Data.Retweeted, nil
}
