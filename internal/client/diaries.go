package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"diary-backend/internal/domains/diary/model"
	explore "diary-backend/internal/domains/explore/model"
)

// Page is one page of a feed together with its paging meta.
type Page[T any] struct {
	Items []T
	Meta  Meta
}

func feedPath(base string, page, limit int) string {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if len(q) == 0 {
		return base
	}
	return base + "?" + q.Encode()
}

func (c *Client) feed(ctx context.Context, s Session, path string) (*Page[model.DiaryWithComments], error) {
	var items []model.DiaryWithComments
	env, err := c.call(ctx, s, http.MethodGet, path, nil, &items)
	if err != nil {
		return nil, err
	}
	page := &Page[model.DiaryWithComments]{Items: items}
	if env.Meta != nil {
		page.Meta = *env.Meta
	}
	return page, nil
}

// OwnDiaries lists the session user's entries, private ones included.
func (c *Client) OwnDiaries(ctx context.Context, s Session, page, limit int) (*Page[model.DiaryWithComments], error) {
	return c.feed(ctx, s, feedPath("/diaries", page, limit))
}

func (c *Client) PublicDiaries(ctx context.Context, s Session, page, limit int) (*Page[model.DiaryWithComments], error) {
	return c.feed(ctx, s, feedPath("/diaries/public", page, limit))
}

func (c *Client) UserDiaries(ctx context.Context, s Session, userID int64, page, limit int) (*Page[model.DiaryWithComments], error) {
	return c.feed(ctx, s, feedPath(fmt.Sprintf("/diaries/user/%d", userID), page, limit))
}

func (c *Client) CreateDiary(ctx context.Context, s Session, req model.CreateDiaryRequest) (*model.DiaryWithComments, error) {
	var out model.DiaryWithComments
	if _, err := c.call(ctx, s, http.MethodPost, "/diaries", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateDiary(ctx context.Context, s Session, id int64, req model.UpdateDiaryRequest) (*model.DiaryWithComments, error) {
	var out model.DiaryWithComments
	if _, err := c.call(ctx, s, http.MethodPut, fmt.Sprintf("/diaries/%d", id), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteDiary(ctx context.Context, s Session, id int64) error {
	_, err := c.call(ctx, s, http.MethodDelete, fmt.Sprintf("/diaries/%d", id), nil, nil)
	return err
}

// ToggleLike flips the session user's like and returns the server's view.
func (c *Client) ToggleLike(ctx context.Context, s Session, id int64) (*model.ToggleLikeResult, error) {
	raw, err := c.do(ctx, s, http.MethodPost, fmt.Sprintf("/diaries/%d/like", id), nil)
	if err != nil {
		return nil, err
	}
	var out model.ToggleLikeResult
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &out, nil
}

func (c *Client) AddComment(ctx context.Context, s Session, diaryID int64, text string) (*model.CommentResponse, error) {
	var out model.CommentResponse
	req := model.AddCommentRequest{Comment: text}
	if _, err := c.call(ctx, s, http.MethodPost, fmt.Sprintf("/diaries/%d/comment", diaryID), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteComment(ctx context.Context, s Session, commentID int64) error {
	_, err := c.call(ctx, s, http.MethodDelete, fmt.Sprintf("/comments/%d", commentID), nil, nil)
	return err
}

// =====================================================
// EXPLORE
// =====================================================

func (c *Client) Trending(ctx context.Context, s Session) ([]model.DiaryResponse, error) {
	var out struct {
		Diaries []model.DiaryResponse `json:"diaries"`
	}
	if _, err := c.call(ctx, s, http.MethodGet, "/explore/trending", nil, &out); err != nil {
		return nil, err
	}
	return out.Diaries, nil
}

func (c *Client) UserPublicDiaries(ctx context.Context, s Session, userID int64) (*explore.UserPublicDiaries, error) {
	var out explore.UserPublicDiaries
	if _, err := c.call(ctx, s, http.MethodGet, fmt.Sprintf("/explore/user/%d/public-diaries", userID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
