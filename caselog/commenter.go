package caselog

import (
	"database/sql"
	"strings"

	"github.com/bakape/caselog/common"
	"github.com/bakape/caselog/db"
	"github.com/go-playground/log"
)

// Commenter stages an additional note on an existing case
type Commenter struct {
	// Lifecycle fields as read before this operation. Restored on save, when
	// resolution is declined, to defend against concurrent writes between
	// read and save.
	prevState    common.CaseState
	prevAssigned uint64

	kase *common.Case
	note common.CaseNote
}

// NewCommenter prepares a note on kase authored by the acting moderator
func NewCommenter(kase *common.Case, by uint64) *Commenter {
	return &Commenter{
		prevState:    kase.State,
		prevAssigned: kase.AssignedUser,
		kase:         kase,
		note: common.CaseNote{
			CaseID: kase.ID,
			UserID: by,
		},
	}
}

// Case returns the commented case
func (c *Commenter) Case() *common.Case {
	return c.kase
}

// Comment returns the staged note
func (c *Commenter) Comment() *common.CaseNote {
	return &c.note
}

// Validate appends any errors with the staged note to errs
func (c *Commenter) Validate(errs *[]string, tok linkToken) {
	if c.kase == nil || c.kase.ID == 0 {
		*errs = append(*errs, "missing case")
	}
	validateNote(&c.note, tok, errs)
}

// Save writes the note and pins the case row to the staged lifecycle fields.
// Must run inside the caller's transaction.
func (c *Commenter) Save(tx *sql.Tx, tok linkToken) (err error) {
	var errs []string
	c.Validate(&errs, tok)
	if len(errs) != 0 {
		return common.ErrInvalidInput(strings.Join(errs, ", "))
	}

	err = db.InsertCaseNote(tx, &c.note)
	if err != nil {
		return
	}
	return db.UpdateCaseState(tx, c.kase)
}

// SendNotifications announces the case update to listening instances.
// Best-effort; runs only after the transaction committed.
func (c *Commenter) SendNotifications() (err error) {
	log.Infof("note %d added to case %d", c.note.ID, c.kase.ID)
	return db.NotifyCaseUpdated(c.kase.ID)
}
