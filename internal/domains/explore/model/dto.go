package model

import (
	diarymodel "diary-backend/internal/domains/diary/model"
	usermodel "diary-backend/internal/domains/user/model"
)

// PublicDiariesLimit caps the entries shown on a user's explore page.
const PublicDiariesLimit = 50

// UserPublicDiaries is one user's explore page.
type UserPublicDiaries struct {
	User    usermodel.PublicProfile     `json:"user"`
	Diaries []diarymodel.DiaryResponse `json:"diaries"`
}
