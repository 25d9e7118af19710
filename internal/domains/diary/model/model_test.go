package model

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"diary-backend/internal/shared/apperror"
	"diary-backend/internal/shared/auth"
)

func TestCanAccess(t *testing.T) {
	owner := auth.Viewer{UserID: 1, Role: auth.RoleClient}
	other := auth.Viewer{UserID: 2, Role: auth.RoleClient}
	admin := auth.Viewer{UserID: 3, Role: auth.RoleAdmin}

	public := &Diary{ID: 10, UserID: 1, Status: StatusPublic}
	private := &Diary{ID: 11, UserID: 1, Status: StatusPrivate}

	assert.True(t, CanAccess(owner, public))
	assert.True(t, CanAccess(other, public))
	assert.True(t, CanAccess(owner, private))
	assert.False(t, CanAccess(other, private))
	assert.False(t, CanAccess(admin, private), "roles do not widen visibility")
	assert.False(t, CanAccess(owner, nil))
}

func TestIsOwner(t *testing.T) {
	d := &Diary{UserID: 5}
	assert.True(t, IsOwner(auth.Viewer{UserID: 5}, d))
	assert.False(t, IsOwner(auth.Viewer{UserID: 6}, d))
	assert.False(t, IsOwner(auth.Viewer{}, &Diary{}))
}

func TestCreateDiaryRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     CreateDiaryRequest
		wantErr string
	}{
		{"valid public", CreateDiaryRequest{Message: "hello", Status: "public"}, ""},
		{"valid private", CreateDiaryRequest{Message: "hello", Status: "private"}, ""},
		{"blank message", CreateDiaryRequest{Message: "   ", Status: "public"}, "message"},
		{"too long", CreateDiaryRequest{Message: strings.Repeat("a", MaxMessageLength+1), Status: "public"}, "message"},
		{"max length ok", CreateDiaryRequest{Message: strings.Repeat("é", MaxMessageLength), Status: "public"}, ""},
		{"bad status", CreateDiaryRequest{Message: "hi", Status: "friends"}, "status"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			req.Normalize()
			err := req.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			appErr := apperror.As(err)
			require.Equal(t, apperror.KindValidation, appErr.Kind)
			assert.Contains(t, appErr.Details, tt.wantErr)
		})
	}
}

func TestUpdateDiaryRequest_PartialFields(t *testing.T) {
	status := "private"
	req := UpdateDiaryRequest{Status: &status}
	req.Normalize()
	assert.NoError(t, req.Validate())

	empty := "  "
	req = UpdateDiaryRequest{Message: &empty}
	req.Normalize()
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(req.Validate()))

	assert.NoError(t, UpdateDiaryRequest{}.Validate())
}

func TestAddCommentRequest_Validate(t *testing.T) {
	ok := AddCommentRequest{Comment: "  nice  "}
	ok.Normalize()
	assert.Equal(t, "nice", ok.Comment)
	assert.NoError(t, ok.Validate())

	tooLong := AddCommentRequest{Comment: strings.Repeat("x", MaxCommentLength+1)}
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(tooLong.Validate()))

	blank := AddCommentRequest{Comment: "\t"}
	blank.Normalize()
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(blank.Validate()))
}

func TestFeedQuery_Normalize(t *testing.T) {
	q := FeedQuery{}
	q.Normalize()
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, DefaultFeedLimit, q.Limit)
	assert.Equal(t, 0, q.Offset())

	q = FeedQuery{Page: 3, Limit: 500}
	q.Normalize()
	assert.Equal(t, MaxFeedLimit, q.Limit)
	assert.Equal(t, 200, q.Offset())
}

func TestWithComments_EmptyListRendersAsArray(t *testing.T) {
	view := &DiaryView{Diary: Diary{ID: 1, UserID: 2, Status: StatusPublic}, OwnerName: "Ann"}
	raw, err := json.Marshal(WithComments(view, nil))
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, []interface{}{}, decoded["comments"])
	assert.Equal(t, "Ann", decoded["user"].(map[string]interface{})["name"])
	assert.Equal(t, false, decoded["is_liked_by_user"])
}
