package common

// ContentRef identifies a piece of reportable content
type ContentRef struct {
	Type  string `json:"type"`
	ID    uint64 `json:"id"`
	Title string `json:"title"`
}

// UserRef identifies a user together with the display name used for case
// titles
type UserRef struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

// PostRef points at a specific post inside a thread
type PostRef struct {
	ID          uint64 `json:"id"`
	ThreadID    uint64 `json:"thread_id"`
	ThreadTitle string `json:"thread_title"`

	// Case already linked to this post, if any
	Case *Case `json:"-"`
}

// Warning is a formal points-bearing disciplinary action tied to specific
// content
type Warning struct {
	ID           uint64  `json:"id"`
	ContentType  string  `json:"content_type"`
	ContentID    uint64  `json:"content_id"`
	ContentTitle string  `json:"content_title"`
	UserID       uint64  `json:"user_id"`
	IssuedAt     int64   `json:"warning_date"`
	IssuerID     uint64  `json:"warning_user_id"`
	DefinitionID uint64  `json:"warning_definition_id"`
	Title        string  `json:"title"`
	Notes        string  `json:"notes"`
	Points       uint16  `json:"points"`
	ExpiresAt    int64   `json:"expiry_date"` // 0 = never
	IsExpired    bool    `json:"is_expired"`
	ExtraGroups  []int64 `json:"extra_user_group_ids"` // nil, when none applied

	// Case already linked to this warning, if any
	Case *Case `json:"-"`

	// Underlying content. nil, when the content no longer exists.
	Content *ContentRef `json:"-"`
}

// ReplyBan is a time-bounded restriction preventing a user from replying in a
// thread, optionally scoped to one post
type ReplyBan struct {
	ThreadID  uint64  `json:"thread_id"`
	PostID    uint64  `json:"post_id"` // 0 = the whole thread
	User      UserRef `json:"user"`
	IssuerID  uint64  `json:"issuer_id"`
	ExpiresAt int64   `json:"expiry_date"` // 0 = permanent
	Reason    string  `json:"reason"`

	// Case linked to the user-level restriction, if any
	Case *Case `json:"-"`

	// Target post, when the ban is scoped to one
	Post *PostRef `json:"-"`
}
