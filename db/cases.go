package db

import (
	"database/sql"

	"github.com/bakape/caselog/common"
)

// InsertCase writes a new case, assigning its id
func InsertCase(tx *sql.Tx, c *common.Case) (err error) {
	err = sq.Insert("cases").
		Columns("content_type", "content_id", "title", "reported_user",
			"state", "assigned_user", "auto_reported").
		Values(c.ContentType, c.ContentID, c.Title, c.ReportedUser,
			c.State, c.AssignedUser, c.AutoReported).
		Suffix("returning id, created").
		RunWith(tx).
		Scan(&c.ID, &c.Created)
	return
}

// InsertCaseNote writes a note to an existing case, assigning its id
func InsertCaseNote(tx *sql.Tx, n *common.CaseNote) (err error) {
	err = sq.Insert("case_notes").
		Columns("case_id", "user_id", "body", "is_report", "state_change",
			"warning_log_id").
		Values(n.CaseID, n.UserID, n.Body, n.IsReport, n.StateChange,
			n.WarningLogID).
		Suffix("returning id, created").
		RunWith(tx).
		Scan(&n.ID, &n.Created)
	return
}

func scanCase(r rowScanner) (c common.Case, err error) {
	err = r.Scan(&c.ID, &c.ContentType, &c.ContentID, &c.Title,
		&c.ReportedUser, &c.State, &c.AssignedUser, &c.AutoReported,
		&c.Created)
	return
}

var caseColumns = []string{
	"id", "content_type", "content_id", "title", "reported_user", "state",
	"assigned_user", "auto_reported", "created",
}

// GetCase retrieves a case by id
func GetCase(id uint64) (c common.Case, err error) {
	c, err = scanCase(sq.Select(caseColumns...).
		From("cases").
		Where("id = ?", id).
		QueryRow())
	return
}

// FindCaseByContent retrieves the most recent case about a piece of content.
// Returns nil, when none exists.
//
// Read-then-decide: two sanctions against the same content processed
// concurrently can both miss an existing case here and open duplicates.
func FindCaseByContent(contentType string, contentID uint64) (
	c *common.Case, err error,
) {
	kase, err := scanCase(sq.Select(caseColumns...).
		From("cases").
		Where("content_type = ? and content_id = ?", contentType, contentID).
		OrderBy("created desc").
		Limit(1).
		QueryRow())
	switch err {
	case nil:
		c = &kase
	case sql.ErrNoRows:
		err = nil
	}
	return
}

// UpdateCaseState writes the case's lifecycle fields. Used both for resolving
// a case and for pinning it to its pre-transaction state.
func UpdateCaseState(tx *sql.Tx, c *common.Case) (err error) {
	_, err = sq.Update("cases").
		SetMap(map[string]interface{}{
			"state":         c.State,
			"assigned_user": c.AssignedUser,
			"auto_reported": c.AutoReported,
		}).
		Where("id = ?", c.ID).
		RunWith(tx).
		Exec()
	return
}

// GetCaseNotes retrieves all notes on a case, oldest first
func GetCaseNotes(caseID uint64) (notes []common.CaseNote, err error) {
	notes = make([]common.CaseNote, 0, 8)
	n := common.CaseNote{CaseID: caseID}
	err = queryAll(
		sq.Select("id", "user_id", "body", "is_report", "state_change",
			"warning_log_id", "created").
			From("case_notes").
			Where("case_id = ?", caseID).
			OrderBy("created asc", "id asc"),
		func(r *sql.Rows) (err error) {
			err = r.Scan(&n.ID, &n.UserID, &n.Body, &n.IsReport,
				&n.StateChange, &n.WarningLogID, &n.Created)
			if err != nil {
				return
			}
			notes = append(notes, n)
			return
		},
	)
	return
}

// NotifyCaseUpdated announces a committed case mutation to listening
// instances. Best-effort; never part of the saving transaction.
func NotifyCaseUpdated(id uint64) (err error) {
	_, err = db.Exec(`select pg_notify('cases_updated', $1::text)`, id)
	return
}
