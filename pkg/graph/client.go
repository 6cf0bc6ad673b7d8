package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"igfollowers/pkg/config"
	"igfollowers/pkg/instagram"
	"igfollowers/pkg/logger"
	"igfollowers/pkg/models"
)

const (
	graphqlEndpoint = "https://www.instagram.com/graphql/query/"

	// Query hash for the edge_followed_by connection. Stable across
	// the web client versions observed so far.
	followersQueryHash = "c76146de99bb02f6415203be841dd25a"

	// EdgePageSize is the follower count requested per GraphQL page.
	EdgePageSize = 100
)

// Client walks the GraphQL follower edge of a user with a saved session.
// It reuses the web API client for transport so retry, backoff, and the
// error taxonomy behave the same as the api strategy.
type Client struct {
	api    *instagram.Client
	logger logger.Logger
}

// NewClient builds a GraphQL client from a saved session. The session's
// cookies replace whatever cookies the configuration carries.
func NewClient(sess *Session, cfg *config.Config, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}

	sessCfg := *cfg
	sessCfg.Instagram.SessionID = sess.SessionID()
	sessCfg.Instagram.CSRFToken = sess.CSRFToken()
	sessCfg.Instagram.DSUserID = sess.Cookies["ds_user_id"]
	if sess.UserAgent != "" {
		sessCfg.Instagram.UserAgent = sess.UserAgent
	}

	return &Client{
		api:    instagram.NewClient(&sessCfg, log),
		logger: log,
	}
}

// FollowerEdgePage is one page of the follower edge.
type FollowerEdgePage struct {
	Followers   []models.Follower
	Total       int
	HasNextPage bool
	EndCursor   string
}

type edgeResponse struct {
	Data struct {
		User *struct {
			EdgeFollowedBy struct {
				Count    int `json:"count"`
				PageInfo struct {
					HasNextPage bool   `json:"has_next_page"`
					EndCursor   string `json:"end_cursor"`
				} `json:"page_info"`
				Edges []struct {
					Node struct {
						ID            string `json:"id"`
						Username      string `json:"username"`
						FullName      string `json:"full_name"`
						IsPrivate     bool   `json:"is_private"`
						IsVerified    bool   `json:"is_verified"`
						ProfilePicURL string `json:"profile_pic_url"`
					} `json:"node"`
				} `json:"edges"`
			} `json:"edge_followed_by"`
		} `json:"user"`
	} `json:"data"`
	Status string `json:"status"`
}

// ResolveUser resolves a username to its user info via the web API.
func (c *Client) ResolveUser(ctx context.Context, username string) (*instagram.UserInfo, error) {
	return c.api.ResolveUser(ctx, username)
}

// FetchProfile satisfies the enrichment profile fetcher.
func (c *Client) FetchProfile(ctx context.Context, username string) (models.Profile, error) {
	return c.api.FetchProfile(ctx, username)
}

// FetchFollowerEdge fetches one page of the follower edge. after is the
// end cursor from the previous page; empty fetches the first page.
func (c *Client) FetchFollowerEdge(ctx context.Context, userID, after string) (*FollowerEdgePage, error) {
	variables := map[string]interface{}{
		"id":    userID,
		"first": EdgePageSize,
	}
	if after != "" {
		variables["after"] = after
	}
	varsJSON, err := json.Marshal(variables)
	if err != nil {
		return nil, fmt.Errorf("failed to encode query variables: %w", err)
	}

	params := url.Values{
		"query_hash": {followersQueryHash},
		"variables":  {string(varsJSON)},
	}
	queryURL := graphqlEndpoint + "?" + params.Encode()

	c.logger.DebugWithFields("fetching follower edge", map[string]interface{}{
		"user_id": userID,
		"after":   after,
	})

	var resp edgeResponse
	if err := c.api.GetJSON(ctx, queryURL, &resp); err != nil {
		return nil, err
	}

	return toEdgePage(&resp), nil
}

func toEdgePage(resp *edgeResponse) *FollowerEdgePage {
	if resp.Data.User == nil {
		// 404 or an empty payload; treat as an exhausted edge
		return &FollowerEdgePage{}
	}

	edge := resp.Data.User.EdgeFollowedBy
	page := &FollowerEdgePage{
		Total:       edge.Count,
		HasNextPage: edge.PageInfo.HasNextPage,
		EndCursor:   edge.PageInfo.EndCursor,
	}
	for _, e := range edge.Edges {
		page.Followers = append(page.Followers, models.Follower{
			UserID:     e.Node.ID,
			Handle:     e.Node.Username,
			FullName:   e.Node.FullName,
			IsPrivate:  e.Node.IsPrivate,
			IsVerified: e.Node.IsVerified,
			PicURL:     e.Node.ProfilePicURL,
		})
	}

	return page
}
