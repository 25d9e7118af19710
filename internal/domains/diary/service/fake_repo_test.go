package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"diary-backend/internal/domains/diary/model"
	"diary-backend/internal/domains/diary/repository"
)

type likeKey struct{ diaryID, userID int64 }

type fakeState struct {
	diaries  map[int64]model.Diary
	likes    map[likeKey]time.Time
	comments map[int64]model.Comment
	nextID   int64
}

func (s fakeState) clone() fakeState {
	out := fakeState{
		diaries:  make(map[int64]model.Diary, len(s.diaries)),
		likes:    make(map[likeKey]time.Time, len(s.likes)),
		comments: make(map[int64]model.Comment, len(s.comments)),
		nextID:   s.nextID,
	}
	for k, v := range s.diaries {
		out.diaries[k] = v
	}
	for k, v := range s.likes {
		out.likes[k] = v
	}
	for k, v := range s.comments {
		out.comments[k] = v
	}
	return out
}

// fakeRepo is an in-memory repository. WithinTx serializes callers and
// restores the previous state when fn fails.
type fakeRepo struct {
	txMu  sync.Mutex
	users map[int64]string
	state fakeState
	clock time.Time
	// pinned creation time for tie-break tests
	fixedTime *time.Time
}

var _ repository.Repository = (*fakeRepo)(nil)

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users: map[int64]string{1: "Alice", 2: "Bob", 3: "Carol"},
		state: fakeState{
			diaries:  map[int64]model.Diary{},
			likes:    map[likeKey]time.Time{},
			comments: map[int64]model.Comment{},
			nextID:   10,
		},
		clock: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (f *fakeRepo) now() time.Time {
	if f.fixedTime != nil {
		return *f.fixedTime
	}
	f.clock = f.clock.Add(time.Minute)
	return f.clock
}

func (f *fakeRepo) id() int64 {
	id := f.state.nextID
	f.state.nextID++
	return id
}

func (f *fakeRepo) WithinTx(ctx context.Context, fn func(repository.Repository) error) error {
	f.txMu.Lock()
	defer f.txMu.Unlock()

	saved := f.state.clone()
	if err := fn(f); err != nil {
		f.state = saved
		return err
	}
	return nil
}

func (f *fakeRepo) WithinSnapshot(ctx context.Context, fn func(repository.Repository) error) error {
	f.txMu.Lock()
	defer f.txMu.Unlock()
	return fn(f)
}

func (f *fakeRepo) Create(ctx context.Context, d *model.Diary) error {
	d.ID = f.id()
	d.CreatedAt = f.now()
	d.UpdatedAt = d.CreatedAt
	f.state.diaries[d.ID] = *d
	return nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id int64) (*model.Diary, error) {
	d, ok := f.state.diaries[id]
	if !ok {
		return nil, model.ErrDiaryNotFound
	}
	return &d, nil
}

func (f *fakeRepo) Update(ctx context.Context, d *model.Diary) error {
	if _, ok := f.state.diaries[d.ID]; !ok {
		return model.ErrDiaryNotFound
	}
	d.UpdatedAt = f.now()
	f.state.diaries[d.ID] = *d
	return nil
}

func (f *fakeRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := f.state.diaries[id]; !ok {
		return model.ErrDiaryNotFound
	}
	delete(f.state.diaries, id)
	for k := range f.state.likes {
		if k.diaryID == id {
			delete(f.state.likes, k)
		}
	}
	for cid, c := range f.state.comments {
		if c.DiaryID == id {
			delete(f.state.comments, cid)
		}
	}
	return nil
}

func (f *fakeRepo) view(d model.Diary, viewerID int64) *model.DiaryView {
	v := &model.DiaryView{Diary: d, OwnerName: f.users[d.UserID]}
	for k := range f.state.likes {
		if k.diaryID == d.ID {
			v.LikesCount++
			if k.userID == viewerID {
				v.IsLiked = true
			}
		}
	}
	for _, c := range f.state.comments {
		if c.DiaryID == d.ID {
			v.CommentsCount++
		}
	}
	return v
}

func (f *fakeRepo) GetView(ctx context.Context, id, viewerID int64) (*model.DiaryView, error) {
	d, ok := f.state.diaries[id]
	if !ok {
		return nil, model.ErrDiaryNotFound
	}
	return f.view(d, viewerID), nil
}

func newestFirst(views []*model.DiaryView) {
	sort.Slice(views, func(i, j int) bool {
		if !views[i].CreatedAt.Equal(views[j].CreatedAt) {
			return views[i].CreatedAt.After(views[j].CreatedAt)
		}
		return views[i].ID > views[j].ID
	})
}

func (f *fakeRepo) ListFeed(ctx context.Context, filter repository.FeedFilter, viewerID int64) ([]*model.DiaryView, int64, error) {
	var all []*model.DiaryView
	for _, d := range f.state.diaries {
		switch filter.Scope {
		case repository.ScopeOwn:
			if d.UserID != filter.OwnerID {
				continue
			}
		case repository.ScopePublic:
			if d.Status != model.StatusPublic {
				continue
			}
		case repository.ScopeUserPublic:
			if d.UserID != filter.OwnerID || d.Status != model.StatusPublic {
				continue
			}
		}
		all = append(all, f.view(d, viewerID))
	}
	newestFirst(all)

	total := int64(len(all))
	start := filter.Offset
	if start > len(all) {
		start = len(all)
	}
	end := start + filter.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (f *fakeRepo) ListTrending(ctx context.Context, viewerID int64, limit int) ([]*model.DiaryView, error) {
	var all []*model.DiaryView
	for _, d := range f.state.diaries {
		if d.Status == model.StatusPublic {
			all = append(all, f.view(d, viewerID))
		}
	}
	newestFirst(all)
	sort.SliceStable(all, func(i, j int) bool { return all[i].LikesCount > all[j].LikesCount })
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (f *fakeRepo) CommentsFor(ctx context.Context, diaryIDs []int64) (map[int64][]*model.CommentView, error) {
	want := make(map[int64]bool, len(diaryIDs))
	for _, id := range diaryIDs {
		want[id] = true
	}
	out := make(map[int64][]*model.CommentView)
	for _, c := range f.state.comments {
		if want[c.DiaryID] {
			out[c.DiaryID] = append(out[c.DiaryID], &model.CommentView{Comment: c, AuthorName: f.users[c.UserID]})
		}
	}
	for _, list := range out {
		sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	}
	return out, nil
}

func (f *fakeRepo) HasLiked(ctx context.Context, diaryID, userID int64) (bool, error) {
	_, ok := f.state.likes[likeKey{diaryID, userID}]
	return ok, nil
}

func (f *fakeRepo) AddLike(ctx context.Context, diaryID, userID int64) (bool, error) {
	k := likeKey{diaryID, userID}
	if _, ok := f.state.likes[k]; ok {
		return false, nil
	}
	f.state.likes[k] = f.now()
	return true, nil
}

func (f *fakeRepo) RemoveLike(ctx context.Context, diaryID, userID int64) error {
	delete(f.state.likes, likeKey{diaryID, userID})
	return nil
}

func (f *fakeRepo) CreateComment(ctx context.Context, c *model.Comment) error {
	if _, ok := f.state.diaries[c.DiaryID]; !ok {
		return model.ErrDiaryNotFound
	}
	c.ID = f.id()
	c.CreatedAt = f.now()
	c.UpdatedAt = c.CreatedAt
	f.state.comments[c.ID] = *c
	return nil
}

func (f *fakeRepo) GetComment(ctx context.Context, id int64) (*model.CommentView, error) {
	c, ok := f.state.comments[id]
	if !ok {
		return nil, model.ErrCommentNotFound
	}
	return &model.CommentView{Comment: c, AuthorName: f.users[c.UserID]}, nil
}

func (f *fakeRepo) DeleteComment(ctx context.Context, id int64) error {
	if _, ok := f.state.comments[id]; !ok {
		return model.ErrCommentNotFound
	}
	delete(f.state.comments, id)
	return nil
}

// likeCount is the cardinality of the like set, read straight from state.
func (f *fakeRepo) likeCount(diaryID int64) int64 {
	var n int64
	for k := range f.state.likes {
		if k.diaryID == diaryID {
			n++
		}
	}
	return n
}
