package db

import (
	"database/sql"

	"github.com/bakape/caselog/common"
	"github.com/lib/pq"
)

// InsertWarning writes a formal warning, assigning its id
func InsertWarning(tx *sql.Tx, w *common.Warning) (err error) {
	var caseID uint64
	if w.Case != nil {
		caseID = w.Case.ID
	}
	var groups interface{}
	if w.ExtraGroups != nil {
		groups = pq.Int64Array(w.ExtraGroups)
	}
	err = sq.Insert("warnings").
		Columns("content_type", "content_id", "content_title", "user_id",
			"warning_date", "warning_user_id", "warning_definition_id",
			"title", "notes", "points", "expiry_date", "is_expired",
			"extra_user_group_ids", "case_id").
		Values(w.ContentType, w.ContentID, w.ContentTitle, w.UserID,
			w.IssuedAt, w.IssuerID, w.DefinitionID, w.Title, w.Notes,
			w.Points, w.ExpiresAt, w.IsExpired, groups, caseID).
		Suffix("returning id").
		RunWith(tx).
		Scan(&w.ID)
	return
}

// GetWarning retrieves a warning by id, hydrating its linked case, if any
func GetWarning(id uint64) (w common.Warning, err error) {
	var (
		groups pq.Int64Array
		caseID uint64
	)
	err = sq.Select("id", "content_type", "content_id", "content_title",
		"user_id", "warning_date", "warning_user_id",
		"warning_definition_id", "title", "notes", "points", "expiry_date",
		"is_expired", "extra_user_group_ids", "case_id").
		From("warnings").
		Where("id = ?", id).
		QueryRow().
		Scan(&w.ID, &w.ContentType, &w.ContentID, &w.ContentTitle, &w.UserID,
			&w.IssuedAt, &w.IssuerID, &w.DefinitionID, &w.Title, &w.Notes,
			&w.Points, &w.ExpiresAt, &w.IsExpired, &groups, &caseID)
	if err != nil {
		return
	}
	if groups != nil {
		w.ExtraGroups = []int64(groups)
	}
	w.Content = &common.ContentRef{
		Type:  w.ContentType,
		ID:    w.ContentID,
		Title: w.ContentTitle,
	}
	if caseID != 0 {
		var kase common.Case
		kase, err = GetCase(caseID)
		switch err {
		case nil:
			w.Case = &kase
		case sql.ErrNoRows: // Case deleted out from under the warning
			err = nil
		}
	}
	return
}

// LinkWarningCase points a warning at the case opened for it
func LinkWarningCase(tx *sql.Tx, warningID, caseID uint64) (err error) {
	_, err = sq.Update("warnings").
		Set("case_id", caseID).
		Where("id = ?", warningID).
		RunWith(tx).
		Exec()
	return
}

// InsertReplyBan writes a reply restriction. Reissuing a ban for the same
// thread and user pair overwrites the old one.
func InsertReplyBan(tx *sql.Tx, b *common.ReplyBan) (err error) {
	_, err = sq.Insert("reply_bans").
		Columns("thread_id", "user_id", "post_id", "issuer_id", "expiry_date",
			"reason").
		Values(b.ThreadID, b.User.ID, b.PostID, b.IssuerID, b.ExpiresAt,
			b.Reason).
		Suffix(`on conflict (thread_id, user_id) do update
			set post_id = excluded.post_id,
				issuer_id = excluded.issuer_id,
				expiry_date = excluded.expiry_date,
				reason = excluded.reason`).
		RunWith(tx).
		Exec()
	return
}

// GetReplyBan retrieves the reply restriction on a user in a thread
func GetReplyBan(threadID, userID uint64) (b common.ReplyBan, err error) {
	b.ThreadID = threadID
	b.User.ID = userID
	err = sq.Select("post_id", "issuer_id", "expiry_date", "reason").
		From("reply_bans").
		Where("thread_id = ? and user_id = ?", threadID, userID).
		QueryRow().
		Scan(&b.PostID, &b.IssuerID, &b.ExpiresAt, &b.Reason)
	return
}
