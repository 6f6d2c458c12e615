package models

// TagRecord is a tag as the staff API sees it, with its id.
type TagRecord struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// UserPatch updates account flags; nil fields are left alone.
type UserPatch struct {
	IsStaff  *bool `json:"is_staff,omitempty"`
	IsActive *bool `json:"is_active,omitempty"`
}

// UserDetail is one account with its latest condition logs.
type UserDetail struct {
	User       User           `json:"user"`
	RecentLogs []ConditionLog `json:"recent_logs"`
}

// Stats is the staff dashboard summary.
type Stats struct {
	TotalUsers     int            `json:"total_users"`
	TotalLogs      int            `json:"total_logs"`
	TotalExercises int            `json:"total_exercises"`
	NewUsers30d    int            `json:"new_users_30d"`
	RecentLogs     []ConditionLog `json:"recent_logs"`
}
