package client

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"diary-backend/internal/domains/diary/model"
)

var (
	ErrUnknownEntry   = errors.New("entry is not in the feed")
	ErrUnknownComment = errors.New("comment is not in the feed")
	// ErrPending rejects a mutation while an earlier one on the same target
	// is still unconfirmed.
	ErrPending = errors.New("an earlier change is still pending")
)

// Interactions are the server calls the feed confirms against.
// *Client implements it.
type Interactions interface {
	ToggleLike(ctx context.Context, s Session, id int64) (*model.ToggleLikeResult, error)
	AddComment(ctx context.Context, s Session, diaryID int64, text string) (*model.CommentResponse, error)
	DeleteComment(ctx context.Context, s Session, commentID int64) error
}

// =====================================================
// OPTIMISTIC FEED
// =====================================================

// Feed is a local copy of a feed page that applies interactions before the
// server confirms them. Every mutation runs in two phases: the tentative
// state is applied and visible at once; the server result then either
// replaces it or the pre-change snapshot is restored.
type Feed struct {
	api     Interactions
	session Session
	now     func() time.Time

	mu      sync.Mutex
	entries []model.DiaryWithComments
	liking  map[int64]bool
	tempSeq int64
}

func NewFeed(api Interactions, s Session, entries []model.DiaryWithComments) *Feed {
	f := &Feed{
		api:     api,
		session: s,
		now:     time.Now,
		liking:  make(map[int64]bool),
	}
	f.Replace(entries)
	return f
}

// Replace swaps in a freshly fetched page.
func (f *Feed) Replace(entries []model.DiaryWithComments) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = make([]model.DiaryWithComments, len(entries))
	for i, e := range entries {
		f.entries[i] = cloneEntry(e)
	}
}

// Prepend adds a newly created entry at the top.
func (f *Feed) Prepend(e model.DiaryWithComments) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append([]model.DiaryWithComments{cloneEntry(e)}, f.entries...)
}

// Entries returns a copy of the current state, tentative changes included.
func (f *Feed) Entries() []model.DiaryWithComments {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.DiaryWithComments, len(f.entries))
	for i, e := range f.entries {
		out[i] = cloneEntry(e)
	}
	return out
}

func (f *Feed) Entry(id int64) (model.DiaryWithComments, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.find(id)
	if i < 0 {
		return model.DiaryWithComments{}, false
	}
	return cloneEntry(f.entries[i]), true
}

// ToggleLike flips the like locally, then confirms with the server.
// On failure the previous like state and count are restored.
func (f *Feed) ToggleLike(ctx context.Context, id int64) (*model.ToggleLikeResult, error) {
	f.mu.Lock()
	i := f.find(id)
	if i < 0 {
		f.mu.Unlock()
		return nil, ErrUnknownEntry
	}
	if f.liking[id] {
		f.mu.Unlock()
		return nil, ErrPending
	}
	f.liking[id] = true

	e := &f.entries[i]
	prevLiked, prevCount := e.IsLikedByUser, e.LikesCount
	e.IsLikedByUser = !prevLiked
	if e.IsLikedByUser {
		e.LikesCount++
	} else if e.LikesCount > 0 {
		e.LikesCount--
	}
	f.mu.Unlock()

	res, err := f.api.ToggleLike(ctx, f.session, id)

	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.liking, id)

	i = f.find(id)
	if err != nil {
		if i >= 0 {
			f.entries[i].IsLikedByUser = prevLiked
			f.entries[i].LikesCount = prevCount
		}
		return nil, err
	}
	if i >= 0 {
		f.reconcileEntry(i, res)
	}
	return res, nil
}

// reconcileEntry adopts the server's entry and keeps comments that are
// still waiting for confirmation.
func (f *Feed) reconcileEntry(i int, res *model.ToggleLikeResult) {
	e := &f.entries[i]
	if res.Diary != nil {
		pending := pendingComments(e.Comments)
		*e = cloneEntry(*res.Diary)
		e.Comments = append(e.Comments, pending...)
		e.CommentsCount += int64(len(pending))
	}
	e.IsLikedByUser = res.IsLiked
	e.LikesCount = res.LikesCount
}

// AddComment appends a placeholder comment with a negative id, then swaps
// it for the stored comment or removes it again on failure.
func (f *Feed) AddComment(ctx context.Context, diaryID int64, text string) (*model.CommentResponse, error) {
	f.mu.Lock()
	i := f.find(diaryID)
	if i < 0 {
		f.mu.Unlock()
		return nil, ErrUnknownEntry
	}
	f.tempSeq++
	tempID := -f.tempSeq
	e := &f.entries[i]
	e.Comments = append(e.Comments, model.CommentResponse{
		ID:        tempID,
		DiaryID:   diaryID,
		UserID:    f.session.UserID,
		Comment:   text,
		CreatedAt: f.now(),
		User:      model.UserSummary{ID: f.session.UserID},
	})
	e.CommentsCount++
	f.mu.Unlock()

	created, err := f.api.AddComment(ctx, f.session, diaryID, text)

	f.mu.Lock()
	defer f.mu.Unlock()

	i = f.find(diaryID)
	if i < 0 {
		if err != nil {
			return nil, err
		}
		return created, nil
	}
	e = &f.entries[i]
	j := commentIndex(e.Comments, tempID)
	if j < 0 {
		// the placeholder went away with a reconcile; nothing left to fix
		if err != nil {
			return nil, err
		}
		return created, nil
	}

	if err != nil {
		e.Comments = append(e.Comments[:j], e.Comments[j+1:]...)
		e.CommentsCount--
		return nil, err
	}
	e.Comments[j] = *created
	return created, nil
}

// DeleteComment removes the comment locally, then on the server. A comment
// the server no longer has counts as deleted; any other failure puts it
// back in its old position.
func (f *Feed) DeleteComment(ctx context.Context, diaryID, commentID int64) error {
	f.mu.Lock()
	i := f.find(diaryID)
	if i < 0 {
		f.mu.Unlock()
		return ErrUnknownEntry
	}
	if commentID < 0 {
		f.mu.Unlock()
		return ErrPending
	}
	e := &f.entries[i]
	j := commentIndex(e.Comments, commentID)
	if j < 0 {
		f.mu.Unlock()
		return ErrUnknownComment
	}
	removed := e.Comments[j]
	e.Comments = append(e.Comments[:j:j], e.Comments[j+1:]...)
	e.CommentsCount--
	f.mu.Unlock()

	err := f.api.DeleteComment(ctx, f.session, commentID)
	if err == nil || IsStatus(err, http.StatusNotFound) {
		return nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if i = f.find(diaryID); i >= 0 {
		e = &f.entries[i]
		if j > len(e.Comments) {
			j = len(e.Comments)
		}
		e.Comments = append(e.Comments[:j:j], append([]model.CommentResponse{removed}, e.Comments[j:]...)...)
		e.CommentsCount++
	}
	return err
}

// =====================================================
// HELPERS
// =====================================================

func (f *Feed) find(id int64) int {
	for i := range f.entries {
		if f.entries[i].ID == id {
			return i
		}
	}
	return -1
}

func commentIndex(comments []model.CommentResponse, id int64) int {
	for j := range comments {
		if comments[j].ID == id {
			return j
		}
	}
	return -1
}

func pendingComments(comments []model.CommentResponse) []model.CommentResponse {
	var out []model.CommentResponse
	for _, c := range comments {
		if c.ID < 0 {
			out = append(out, c)
		}
	}
	return out
}

func cloneEntry(e model.DiaryWithComments) model.DiaryWithComments {
	out := e
	if e.User != nil {
		u := *e.User
		out.User = &u
	}
	out.Comments = append([]model.CommentResponse(nil), e.Comments...)
	if out.Comments == nil {
		out.Comments = []model.CommentResponse{}
	}
	return out
}
