package model

import "time"

// Cooldown is the outcome of the profile edit policy.
type Cooldown struct {
	Allowed       bool
	DaysRemaining int
}

// CanEditProfile applies the edit cooldown. Elapsed time is counted in whole
// days, rounded down. A never-edited profile may always be edited.
func CanEditProfile(lastUpdate *time.Time, now time.Time) Cooldown {
	if lastUpdate == nil {
		return Cooldown{Allowed: true}
	}

	elapsed := int(now.Sub(*lastUpdate) / (24 * time.Hour))
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed >= ProfileCooldownDays {
		return Cooldown{Allowed: true}
	}
	return Cooldown{DaysRemaining: ProfileCooldownDays - elapsed}
}

// CooldownCutoff is the latest last_profile_update that still allows an edit at now.
func CooldownCutoff(now time.Time) time.Time {
	return now.Add(-ProfileCooldown)
}
