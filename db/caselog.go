package db

import (
	"database/sql"

	"github.com/bakape/caselog/common"
	"github.com/lib/pq"
)

// The audit trail is append-only: this package exposes no update or delete
// on case_logs.

// InsertCaseLog writes an audit snapshot row, assigning its id. This is the
// point where a deferred log id placeholder becomes a real key.
func InsertCaseLog(tx *sql.Tx, l *common.CaseLog) (err error) {
	err = sq.Insert("case_logs").
		Columns("operation_type", "warning_edit_date", "content_type",
			"content_id", "content_title", "user_id", "warning_id",
			"warning_date", "warning_user_id", "warning_definition_id",
			"title", "notes", "points", "expiry_date", "is_expired",
			"extra_user_group_ids", "reply_ban_thread_id",
			"reply_ban_post_id").
		Values(l.Op, l.EditedAt, l.ContentType, l.ContentID, l.ContentTitle,
			l.UserID, l.WarningID, l.IssuedAt, l.IssuerID, l.DefinitionID,
			l.Title, l.Notes, l.Points, l.ExpiresAt, l.IsExpired,
			pq.Int64Array(l.ExtraGroups), l.ReplyBanThreadID,
			l.ReplyBanPostID).
		Suffix("returning id").
		RunWith(tx).
		Scan(&l.ID)
	return
}

var caseLogColumns = []string{
	"id", "operation_type", "warning_edit_date", "content_type", "content_id",
	"content_title", "user_id", "warning_id", "warning_date",
	"warning_user_id", "warning_definition_id", "title", "notes", "points",
	"expiry_date", "is_expired", "extra_user_group_ids",
	"reply_ban_thread_id", "reply_ban_post_id",
}

func scanCaseLog(r rowScanner) (l common.CaseLog, err error) {
	var groups pq.Int64Array
	err = r.Scan(&l.ID, &l.Op, &l.EditedAt, &l.ContentType, &l.ContentID,
		&l.ContentTitle, &l.UserID, &l.WarningID, &l.IssuedAt, &l.IssuerID,
		&l.DefinitionID, &l.Title, &l.Notes, &l.Points, &l.ExpiresAt,
		&l.IsExpired, &groups, &l.ReplyBanThreadID, &l.ReplyBanPostID)
	l.ExtraGroups = []int64(groups)
	return
}

// GetCaseLog retrieves an audit snapshot by id
func GetCaseLog(id uint64) (l common.CaseLog, err error) {
	l, err = scanCaseLog(sq.Select(caseLogColumns...).
		From("case_logs").
		Where("id = ?", id).
		QueryRow())
	return
}

// GetCaseLogs retrieves the audit trail of a case through its note links,
// oldest first
func GetCaseLogs(caseID uint64) (logs []common.CaseLog, err error) {
	logs = make([]common.CaseLog, 0, 8)
	cols := make([]string, len(caseLogColumns))
	for i, c := range caseLogColumns {
		cols[i] = "l." + c
	}
	err = queryAll(
		sq.Select(cols...).
			From("case_logs l").
			Join("case_notes n on n.warning_log_id = l.id").
			Where("n.case_id = ?", caseID).
			OrderBy("l.id asc"),
		func(r *sql.Rows) (err error) {
			l, err := scanCaseLog(r)
			if err != nil {
				return
			}
			logs = append(logs, l)
			return
		},
	)
	return
}
