package model

import "time"

const (
	// ProfileCooldownDays is how many whole days must pass between profile edits.
	ProfileCooldownDays = 3
	ProfileCooldown     = ProfileCooldownDays * 24 * time.Hour

	MaxNameLength     = 255
	MaxEmailLength    = 255
	MaxBioLength      = 500
	MinPasswordLength = 8

	SearchLimit   = 20
	AdminPageSize = 10
)
