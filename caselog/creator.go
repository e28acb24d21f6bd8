// Package caselog builds immutable audit records of moderator sanctions and
// links them into the moderation case system
package caselog

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/bakape/caselog/common"
	"github.com/bakape/caselog/config"
	"github.com/bakape/caselog/db"
)

// Placeholder for a case log primary key not yet allocated by the database.
// Staged note links carry this value until the log row is inserted inside
// the saving transaction.
const deferredLogID = ^uint64(0)

// Creator derives a case log from a single sanction and commits it together
// with its case and note in one transaction
type Creator struct {
	op       common.OperationType
	warning  *common.Warning
	replyBan *common.ReplyBan

	log  common.CaseLog
	kase *common.Case

	// Exactly one of these is set, when the sanction touches a case
	opener    *Opener
	commenter *Commenter

	autoResolve bool

	// Overrides autoResolve on the new-case path, when set
	autoResolveNewCases *bool
}

// NewCreator stages a case log for a sanction. content must be a
// *common.Warning or a *common.ReplyBan; anything else is a construction
// error. Defaults are computed immediately.
func NewCreator(content interface{}, op common.OperationType) (
	c *Creator, err error,
) {
	c = &Creator{op: op}
	switch s := content.(type) {
	case *common.Warning:
		c.warning = s
	case *common.ReplyBan:
		c.replyBan = s
	default:
		return nil, fmt.Errorf("unsupported sanction type: %T", content)
	}
	c.setupDefaults()
	return
}

// SetAutoResolve sets, if the linked case should be closed together with
// recording the sanction
func (c *Creator) SetAutoResolve(resolve bool) {
	c.autoResolve = resolve
}

// SetAutoResolveNewCases overrides the auto-resolve decision for cases
// freshly opened by this sanction. Has no effect on existing cases.
func (c *Creator) SetAutoResolveNewCases(resolve bool) {
	c.autoResolveNewCases = &resolve
}

// CaseLog returns the staged or saved audit row
func (c *Creator) CaseLog() *common.CaseLog {
	return &c.log
}

// Case returns the case the sanction is being attached to. nil, when the
// sanction touches no case.
func (c *Creator) Case() *common.Case {
	return c.kase
}

func (c *Creator) setupDefaults() {
	c.log.Op = c.op
	if c.op != common.OpNew {
		c.log.EditedAt = time.Now().Unix()
	}

	if c.warning != nil {
		c.kase = c.defaultsForWarning()
	} else {
		c.kase = c.defaultsForReplyBan()
	}

	var note *common.CaseNote
	switch {
	case c.commenter != nil:
		note = c.commenter.Comment()
	case c.opener != nil:
		note = c.opener.Comment()
	}
	if note != nil {
		// The log row has no id yet. Stage the link with a placeholder and
		// resolve it after the insert inside the transaction.
		note.WarningLogID = deferredLogID
	}
}

// Copy the warning's loggable fields and pick the case to attach to: the
// already-linked one, or a fresh one, when configured and the underlying
// content still exists
func (c *Creator) defaultsForWarning() *common.Case {
	w := c.warning
	l := &c.log
	l.ContentType = w.ContentType
	l.ContentID = w.ContentID
	l.ContentTitle = w.ContentTitle
	l.UserID = w.UserID
	l.WarningID = w.ID
	l.IssuedAt = w.IssuedAt
	l.IssuerID = w.IssuerID
	l.DefinitionID = w.DefinitionID
	l.Title = w.Title
	l.Notes = w.Notes
	l.Points = w.Points
	l.ExpiresAt = w.ExpiresAt
	l.IsExpired = w.IsExpired
	if w.ExtraGroups != nil { // Optional on the source
		l.ExtraGroups = append([]int64(nil), w.ExtraGroups...)
	}

	kase := w.Case
	switch {
	case kase != nil:
		c.commenter = NewCommenter(kase, w.IssuerID)
	case config.Get().ReportNewWarnings && w.Content != nil:
		c.opener = NewOpener(w.Content.Type, w.Content.ID, w.Content.Title,
			w.UserID, w.IssuerID)
		kase = c.opener.Case()
	}
	return kase
}

// Synthesize log fields from the restriction. Content identity defaults to
// the restricted user and narrows to the post, when the ban is scoped to
// one. Unlike warnings a missing case is always opened.
func (c *Creator) defaultsForReplyBan() *common.Case {
	b := c.replyBan
	l := &c.log
	now := time.Now().Unix()
	l.IssuedAt = now

	kase := b.Case
	contentType := "user"
	contentID := b.User.ID
	title := b.User.Name
	if b.Post != nil {
		kase = b.Post.Case
		contentType = "post"
		contentID = b.Post.ID
		title = fmt.Sprintf("post in thread %q", b.Post.ThreadTitle)
		l.ReplyBanPostID = b.Post.ID
	}

	l.ContentType = contentType
	l.ContentID = contentID
	l.ContentTitle = title
	l.ExpiresAt = b.ExpiresAt
	// Historical quirk kept as is: flags bans that expire in the future, not
	// ones already expired. Permanent bans (zero expiry) are never flagged.
	l.IsExpired = b.ExpiresAt > now
	l.ReplyBanThreadID = b.ThreadID
	l.UserID = b.User.ID
	l.IssuerID = b.IssuerID
	l.Title = "Reply banned"
	l.Notes = replyBanLink(b) + "\n" + b.Reason

	if kase != nil {
		c.commenter = NewCommenter(kase, b.IssuerID)
	} else {
		c.opener = NewOpener(contentType, contentID, title, b.User.ID,
			b.IssuerID)
		kase = c.opener.Case()
	}
	return kase
}

// Permalink to the restriction in the moderation UI
func replyBanLink(b *common.ReplyBan) string {
	return fmt.Sprintf("%s/threads/%d/reply-bans/%d",
		strings.TrimSuffix(config.Get().RootURL, "/"),
		b.ThreadID, b.User.ID)
}

// Validate runs the case log's field validation and the validation of
// whichever case writer is active, aggregating every error into one list
// instead of failing on the first. Returns nil, when ready to save.
func (c *Creator) Validate() (errs []string) {
	collect := func(component string, in []string) {
		for _, e := range in {
			errs = append(errs, component+": "+e)
		}
	}

	tok := linkToken{valid: true}
	collect("case log", c.log.Validate())

	var sub []string
	switch {
	case c.opener != nil:
		c.opener.Validate(&sub, tok)
		collect("case", sub)
	case c.commenter != nil:
		c.commenter.Validate(&sub, tok)
		collect("case note", sub)
	}

	if len(errs) != 0 && c.warning != nil {
		errs = append([]string{fmt.Sprintf("warning:%d", c.warning.ID)},
			errs...)
	}
	return
}

// Save validates and persists the case log, the case and the note inside one
// transaction. No row survives a failure in any step. Returns the persisted
// audit row.
func (c *Creator) Save() (saved *common.CaseLog, err error) {
	if errs := c.Validate(); len(errs) != 0 {
		return nil, common.ErrInvalidInput(strings.Join(errs, ",\n"))
	}

	tok := linkToken{valid: true}
	err = db.InTransaction(false, func(tx *sql.Tx) (err error) {
		err = db.InsertCaseLog(tx, &c.log)
		if err != nil {
			return
		}
		switch {
		case c.opener != nil:
			c.finalizeNewCase()
			err = c.opener.Save(tx, tok)
		case c.commenter != nil:
			c.finalizeComment()
			err = c.commenter.Save(tx, tok)
		}
		return
	})
	if err != nil {
		return
	}
	return &c.log, nil
}

// Resolve the placeholder link on a freshly opened case and apply the
// auto-resolve policy. The explicit new-case override takes precedence over
// the general flag, when set.
func (c *Creator) finalizeNewCase() {
	autoResolve := c.autoResolve
	if c.autoResolveNewCases != nil {
		autoResolve = *c.autoResolveNewCases
	}

	note := c.opener.Comment()
	kase := c.opener.Case()
	note.WarningLogID = c.log.ID
	note.IsReport = false

	if autoResolve && !wasClosed(c.opener.prevState) {
		note.StateChange = common.CaseResolved
		kase.State = common.CaseResolved
		kase.AutoReported = true
	} else {
		note.StateChange = common.StateNone
	}
}

// Resolve the placeholder link on a note to an existing case. On
// auto-resolve the case save cascades with the note; otherwise the case is
// pinned to its pre-transaction state and assignment.
func (c *Creator) finalizeComment() {
	note := c.commenter.Comment()
	kase := c.commenter.Case()
	note.WarningLogID = c.log.ID
	note.IsReport = false

	if c.autoResolve && !wasClosed(c.commenter.prevState) {
		note.StateChange = common.CaseResolved
		kase.State = common.CaseResolved
	} else {
		note.StateChange = common.StateNone
		kase.State = c.commenter.prevState
		kase.AssignedUser = c.commenter.prevAssigned
	}
}

// SendNotifications dispatches post-commit notifications for the saved
// sanction through whichever case writer was used. Failures here never roll
// back the already committed data; the caller decides how to surface them.
func (c *Creator) SendNotifications() error {
	switch {
	case c.opener != nil:
		return c.opener.SendNotifications()
	case c.commenter != nil:
		return c.commenter.SendNotifications()
	}
	return nil
}
