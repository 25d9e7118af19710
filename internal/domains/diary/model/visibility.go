package model

import "diary-backend/internal/shared/auth"

// CanAccess decides whether viewer may see or interact with d.
// Public entries are open to every authenticated viewer; private entries
// only to their owner.
func CanAccess(viewer auth.Viewer, d *Diary) bool {
	if d == nil {
		return false
	}
	return d.Status == StatusPublic || IsOwner(viewer, d)
}

// IsOwner gates update and delete.
func IsOwner(viewer auth.Viewer, d *Diary) bool {
	return d != nil && !viewer.IsZero() && d.UserID == viewer.UserID
}
