package caselog

import (
	"database/sql"
	"strings"

	"github.com/bakape/caselog/common"
	"github.com/bakape/caselog/db"
	"github.com/go-playground/log"
)

// linkToken authorizes writing the case-linkage fields of a note. Only the
// Creator mints a valid token, and only for the span of one
// validate-and-save call, so the relaxation can not leak into unrelated
// work.
type linkToken struct {
	valid bool
}

// caseWriter is the contract shared by Opener and Commenter, as consumed by
// the Creator
type caseWriter interface {
	Comment() *common.CaseNote
	Case() *common.Case
	Validate(errs *[]string, tok linkToken)
	Save(tx *sql.Tx, tok linkToken) error
	SendNotifications() error
}

var (
	_ caseWriter = (*Opener)(nil)
	_ caseWriter = (*Commenter)(nil)
)

func wasClosed(prev common.CaseState) bool {
	return prev == common.CaseResolved || prev == common.CaseRejected
}

// Append any errors on the staged note. Writes to the linkage fields require
// a valid token.
func validateNote(n *common.CaseNote, tok linkToken, errs *[]string) {
	if len(n.Body) > common.MaxLenNotes {
		*errs = append(*errs, "body too long")
	}
	if !tok.valid {
		if n.WarningLogID != 0 {
			*errs = append(*errs, "may not link a warning log")
		}
		if n.StateChange != common.StateNone {
			*errs = append(*errs, "may not change case state")
		}
	}
}

// Opener stages a new case over a piece of content together with its initial
// note
type Opener struct {
	// State of the case before this operation. Always StateNone for a case
	// that does not exist yet.
	prevState common.CaseState

	kase common.Case
	note common.CaseNote
}

// NewOpener prepares a new case for the given content with an initial note
// authored by the acting moderator
func NewOpener(contentType string, contentID uint64, title string,
	reportedUser, by uint64,
) *Opener {
	return &Opener{
		kase: common.Case{
			ContentType:  contentType,
			ContentID:    contentID,
			Title:        title,
			ReportedUser: reportedUser,
			State:        common.CaseOpen,
		},
		note: common.CaseNote{
			UserID: by,
			// The ordinary report path flips this on; sanction-derived notes
			// override it before saving
			IsReport: true,
		},
	}
}

// Case returns the staged case
func (o *Opener) Case() *common.Case {
	return &o.kase
}

// Comment returns the staged initial note
func (o *Opener) Comment() *common.CaseNote {
	return &o.note
}

// Validate appends any errors with the staged case and note to errs
func (o *Opener) Validate(errs *[]string, tok linkToken) {
	k := &o.kase
	if k.ContentType == "" {
		*errs = append(*errs, "missing content type")
	}
	if k.ContentID == 0 {
		*errs = append(*errs, "missing content")
	}
	if k.Title == "" {
		*errs = append(*errs, "missing title")
	}
	if len(k.Title) > common.MaxLenCaseTitle {
		*errs = append(*errs, "title too long")
	}
	if k.ReportedUser == 0 {
		*errs = append(*errs, "missing reported user")
	}
	validateNote(&o.note, tok, errs)
}

// Save writes the case and its initial note. Must run inside the caller's
// transaction.
func (o *Opener) Save(tx *sql.Tx, tok linkToken) (err error) {
	var errs []string
	o.Validate(&errs, tok)
	if len(errs) != 0 {
		return common.ErrInvalidInput(strings.Join(errs, ", "))
	}

	err = db.InsertCase(tx, &o.kase)
	if err != nil {
		return
	}
	o.note.CaseID = o.kase.ID
	return db.InsertCaseNote(tx, &o.note)
}

// SendNotifications announces the new case to listening instances and the
// moderation team. Best-effort; runs only after the transaction committed.
func (o *Opener) SendNotifications() (err error) {
	log.Infof("case %d opened on %s:%d", o.kase.ID, o.kase.ContentType,
		o.kase.ContentID)
	return db.NotifyCaseUpdated(o.kase.ID)
}
