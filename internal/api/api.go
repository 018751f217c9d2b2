package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Login is the one unauthenticated call. Storing the returned session is
// the caller's job.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	payload := map[string]string{"email": email, "password": password}
	buf, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/login", bytes.NewReader(buf))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		reqErr := &RequestError{Status: resp.StatusCode}
		var body struct {
			Message string `json:"message"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
			reqErr.Message = body.Message
		}
		return nil, reqErr
	}

	var result LoginResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &result, nil
}

func (c *Client) Articles(ctx context.Context) ([]Article, error) {
	var articles []Article
	if err := c.do(ctx, http.MethodGet, "/article", nil, &articles); err != nil {
		return nil, err
	}
	return articles, nil
}

func (c *Client) Communities(ctx context.Context) ([]Community, error) {
	var communities []Community
	if err := c.do(ctx, http.MethodGet, "/community", nil, &communities); err != nil {
		return nil, err
	}
	return communities, nil
}

func (c *Client) Community(ctx context.Context, id string) (*Community, error) {
	var community Community
	if err := c.do(ctx, http.MethodGet, "/community/"+id, nil, &community); err != nil {
		return nil, err
	}
	return &community, nil
}

func (c *Client) JoinCommunity(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/community/"+id+"/join", nil, nil)
}

func (c *Client) Vote(ctx context.Context, communityID, timeSlot string) error {
	payload := map[string]string{"timeSlot": timeSlot}
	return c.do(ctx, http.MethodPost, "/community/"+communityID+"/vote", payload, nil)
}

func (c *Client) Orders(ctx context.Context) ([]Order, error) {
	var orders []Order
	if err := c.do(ctx, http.MethodGet, "/order", nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (c *Client) PlaceOrder(ctx context.Context, draft OrderDraft) error {
	return c.do(ctx, http.MethodPost, "/order", draft, nil)
}

// UserCommunity returns the id of the community the user already belongs
// to, or "" when they have none.
func (c *Client) UserCommunity(ctx context.Context) (string, error) {
	var resp struct {
		CommunityID string `json:"communityId"`
	}
	if err := c.do(ctx, http.MethodGet, "/user/community", nil, &resp); err != nil {
		return "", err
	}
	return resp.CommunityID, nil
}

// OrderHistory fetches the user's orders and resolves each line against the
// catalog. A line whose article is missing from the catalog is kept with an
// "Unknown Article" placeholder rather than failing the whole view.
func (c *Client) OrderHistory(ctx context.Context) ([]OrderDetails, error) {
	orders, err := c.Orders(ctx)
	if err != nil {
		return nil, err
	}
	articles, err := c.Articles(ctx)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]Article, len(articles))
	for _, a := range articles {
		byID[a.ID] = a
	}

	details := make([]OrderDetails, 0, len(orders))
	for _, o := range orders {
		d := OrderDetails{
			ID:           o.ID,
			Status:       o.Status,
			DeliveryDate: o.DeliveryDate,
			TotalAmount:  o.TotalAmount,
			CreatedAt:    o.CreatedAt,
			Lines:        make([]OrderLine, 0, len(o.Items)),
		}
		for _, item := range o.Items {
			article, ok := byID[item.Article]
			if !ok {
				article = Article{ID: item.Article, Name: "Unknown Article"}
			}
			d.Lines = append(d.Lines, OrderLine{Article: article, Quantity: item.Quantity})
		}
		details = append(details, d)
	}
	return details, nil
}
