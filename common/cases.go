package common

import (
	"database/sql/driver"
	"fmt"
	"time"
)

var (
	caseStateStr = [...]string{
		"",
		"open",
		"assigned",
		"resolved",
		"rejected",
	}
	opTypeStr = [...]string{
		"new",
		"edit",
	}
)

// CaseState is the lifecycle state of a moderation case
type CaseState uint8

// All possible case lifecycle states. StateNone doubles as the empty
// state-change marker on notes.
const (
	StateNone CaseState = iota
	CaseOpen
	CaseAssigned
	CaseResolved
	CaseRejected
)

// Returns string representation of the case state
func (s CaseState) String() string {
	if int(s) >= len(caseStateStr) {
		return ""
	}
	return caseStateStr[s]
}

func (s CaseState) MarshalText() (text []byte, err error) {
	return []byte(s.String()), nil
}

func (s *CaseState) UnmarshalText(text []byte) error {
	str := string(text)
	for i, v := range caseStateStr {
		if str == v {
			*s = CaseState(i)
			return nil
		}
	}
	return ErrInvalidEnum(str)
}

func (s CaseState) Value() (driver.Value, error) {
	return s.String(), nil
}

func (s *CaseState) Scan(src interface{}) error {
	switch src := src.(type) {
	case string:
		return s.UnmarshalText([]byte(src))
	case []byte:
		return s.UnmarshalText(src)
	default:
		return fmt.Errorf("unscannable case state: %#v", src)
	}
}

// OperationType tags a case log row as recording a fresh sanction or an edit
// of an existing one
type OperationType uint8

// All supported case log operations
const (
	OpNew OperationType = iota
	OpEdit
)

func (o OperationType) String() string {
	if int(o) >= len(opTypeStr) {
		return ""
	}
	return opTypeStr[o]
}

func (o OperationType) MarshalText() (text []byte, err error) {
	return []byte(o.String()), nil
}

func (o *OperationType) UnmarshalText(text []byte) error {
	s := string(text)
	for i, v := range opTypeStr {
		if s == v {
			*o = OperationType(i)
			return nil
		}
	}
	return ErrInvalidEnum(s)
}

func (o OperationType) Value() (driver.Value, error) {
	return o.String(), nil
}

func (o *OperationType) Scan(src interface{}) error {
	switch src := src.(type) {
	case string:
		return o.UnmarshalText([]byte(src))
	case []byte:
		return o.UnmarshalText(src)
	default:
		return fmt.Errorf("unscannable operation type: %#v", src)
	}
}

// Case is an open moderation report about a piece of content
type Case struct {
	ID           uint64    `json:"id"`
	ContentType  string    `json:"content_type"`
	ContentID    uint64    `json:"content_id"`
	Title        string    `json:"title"`
	ReportedUser uint64    `json:"reported_user"`
	State        CaseState `json:"state"`
	AssignedUser uint64    `json:"assigned_user"`
	AutoReported bool      `json:"auto_reported"`
	Created      time.Time `json:"created"`
}

// CaseNote is a commentary or state-change entry attached to a case
type CaseNote struct {
	ID           uint64    `json:"id"`
	CaseID       uint64    `json:"case_id"`
	UserID       uint64    `json:"user_id"`
	Body         string    `json:"body"`
	IsReport     bool      `json:"is_report"`
	StateChange  CaseState `json:"state_change"`
	WarningLogID uint64    `json:"warning_log_id"`
	Created      time.Time `json:"created"`
}

// CaseLog is an immutable audit snapshot of a sanction at the moment it was
// applied or edited. Rows are only ever inserted, never updated or deleted.
type CaseLog struct {
	ID               uint64        `json:"id"`
	Op               OperationType `json:"operation_type"`
	EditedAt         int64         `json:"warning_edit_date"` // 0 for new sanctions
	ContentType      string        `json:"content_type"`
	ContentID        uint64        `json:"content_id"`
	ContentTitle     string        `json:"content_title"`
	UserID           uint64        `json:"user_id"`
	WarningID        uint64        `json:"warning_id"`
	IssuedAt         int64         `json:"warning_date"`
	IssuerID         uint64        `json:"warning_user_id"`
	DefinitionID     uint64        `json:"warning_definition_id"` // 0 for reply bans
	Title            string        `json:"title"`
	Notes            string        `json:"notes"`
	Points           uint16        `json:"points"`
	ExpiresAt        int64         `json:"expiry_date"` // 0 = permanent
	IsExpired        bool          `json:"is_expired"`
	ExtraGroups      []int64       `json:"extra_user_group_ids"`
	ReplyBanThreadID uint64        `json:"reply_ban_thread_id"`
	ReplyBanPostID   uint64        `json:"reply_ban_post_id"`
}

// Validate checks the staged log row for field-level consistency
func (l *CaseLog) Validate() (errs []string) {
	switch l.Op {
	case OpNew:
		if l.EditedAt != 0 {
			errs = append(errs, "edit date set on a new sanction")
		}
	case OpEdit:
		if l.EditedAt == 0 {
			errs = append(errs, "missing edit date")
		}
	default:
		errs = append(errs, "invalid operation type")
	}
	if l.ContentType == "" {
		errs = append(errs, "missing content type")
	}
	if len(l.ContentType) > MaxLenContentType {
		errs = append(errs, "content type too long")
	}
	if l.ContentID == 0 {
		errs = append(errs, "missing content")
	}
	if l.UserID == 0 {
		errs = append(errs, "missing sanctioned user")
	}
	if l.IssuerID == 0 {
		errs = append(errs, "missing issuing moderator")
	}
	if l.Title == "" {
		errs = append(errs, "missing title")
	}
	if len(l.Title) > MaxLenWarningTitle {
		errs = append(errs, "title too long")
	}
	if len(l.Notes) > MaxLenNotes {
		errs = append(errs, "notes too long")
	}
	return
}
