package caselog

import (
	"strings"
	"testing"
	"time"

	"github.com/bakape/caselog/common"
	"github.com/bakape/caselog/config"
)

func sampleWarning() *common.Warning {
	return &common.Warning{
		ID:           11,
		ContentType:  "post",
		ContentID:    22,
		ContentTitle: "a post",
		UserID:       5,
		IssuedAt:     time.Now().Unix(),
		IssuerID:     8,
		DefinitionID: 2,
		Title:        "Spam",
		Notes:        "first offence",
		Points:       3,
		ExpiresAt:    time.Now().Add(time.Hour).Unix(),
		ExtraGroups:  []int64{4, 5},
		Content: &common.ContentRef{
			Type:  "post",
			ID:    22,
			Title: "a post",
		},
	}
}

func TestUnsupportedSanction(t *testing.T) {
	_, err := NewCreator("not a sanction", common.OpNew)
	if err == nil {
		t.Fatal("expected construction error")
	}
}

func TestWarningDefaults(t *testing.T) {
	kase := &common.Case{ID: 7, State: common.CaseOpen, AssignedUser: 3}
	w := sampleWarning()
	w.Case = kase

	c, err := NewCreator(w, common.OpNew)
	if err != nil {
		t.Fatal(err)
	}

	l := c.CaseLog()
	if l.Op != common.OpNew || l.EditedAt != 0 {
		t.Fatalf("bad operation defaults: %+v", l)
	}
	if l.ContentType != w.ContentType || l.ContentID != w.ContentID ||
		l.UserID != w.UserID || l.WarningID != w.ID ||
		l.IssuerID != w.IssuerID || l.DefinitionID != w.DefinitionID ||
		l.Title != w.Title || l.Notes != w.Notes || l.Points != w.Points ||
		l.ExpiresAt != w.ExpiresAt {
		t.Fatalf("loggable fields not copied: %+v", l)
	}
	if len(l.ExtraGroups) != 2 || l.ExtraGroups[0] != 4 {
		t.Fatalf("extra groups not copied: %v", l.ExtraGroups)
	}

	// Existing case: note appended, not a new case
	if c.commenter == nil || c.opener != nil {
		t.Fatal("expected a commenter on the linked case")
	}
	if c.Case() != kase {
		t.Fatal("case not resolved from linkage")
	}
	if c.commenter.Comment().WarningLogID != deferredLogID {
		t.Fatal("note not stamped with the deferred log id")
	}
}

func TestWarningEditDate(t *testing.T) {
	w := sampleWarning()
	w.Case = &common.Case{ID: 7, State: common.CaseOpen}

	c, err := NewCreator(w, common.OpEdit)
	if err != nil {
		t.Fatal(err)
	}
	if c.CaseLog().EditedAt == 0 {
		t.Fatal("edit date not set")
	}
}

func TestWarningAutoOpen(t *testing.T) {
	w := sampleWarning()

	// Policy on: a fresh case is opened for the warning's content
	c, err := NewCreator(w, common.OpNew)
	if err != nil {
		t.Fatal(err)
	}
	if c.opener == nil || c.commenter != nil {
		t.Fatal("expected an opener")
	}
	kase := c.Case()
	if kase.ContentType != "post" || kase.ContentID != 22 ||
		kase.ReportedUser != 5 {
		t.Fatalf("bad staged case: %+v", kase)
	}
	if c.opener.Comment().WarningLogID != deferredLogID {
		t.Fatal("note not stamped with the deferred log id")
	}

	// Policy off: the sanction is logged without touching any case
	conf := *config.Get()
	conf.ReportNewWarnings = false
	config.Set(conf)
	defer config.Set(config.Defaults)

	c, err = NewCreator(sampleWarning(), common.OpNew)
	if err != nil {
		t.Fatal(err)
	}
	if c.opener != nil || c.commenter != nil || c.Case() != nil {
		t.Fatal("expected no case writer")
	}

	// Content gone: same
	w = sampleWarning()
	w.Content = nil
	conf.ReportNewWarnings = true
	config.Set(conf)
	c, err = NewCreator(w, common.OpNew)
	if err != nil {
		t.Fatal(err)
	}
	if c.opener != nil || c.Case() != nil {
		t.Fatal("expected no case writer for missing content")
	}
}

func TestReplyBanDefaults(t *testing.T) {
	b := &common.ReplyBan{
		ThreadID:  100,
		User:      common.UserRef{ID: 5, Name: "flagrant"},
		IssuerID:  2,
		ExpiresAt: time.Now().Add(time.Hour).Unix(),
		Reason:    "spamming",
	}
	c, err := NewCreator(b, common.OpNew)
	if err != nil {
		t.Fatal(err)
	}

	l := c.CaseLog()
	if l.ContentType != "user" || l.ContentID != 5 ||
		l.ContentTitle != "flagrant" {
		t.Fatalf("bad content identity: %+v", l)
	}
	if l.ReplyBanThreadID != 100 || l.ReplyBanPostID != 0 {
		t.Fatalf("bad restriction fields: %+v", l)
	}
	if l.Title != "Reply banned" {
		t.Fatalf("bad title: %q", l.Title)
	}
	want := "http://localhost/threads/100/reply-bans/5\nspamming"
	if l.Notes != want {
		t.Fatalf("bad notes: %q", l.Notes)
	}
	// Future expiry raises the flag at construction time
	if !l.IsExpired {
		t.Fatal("future expiry not flagged")
	}
	// A missing case is always opened for restrictions
	if c.opener == nil {
		t.Fatal("expected an opener")
	}
}

func TestReplyBanPostScope(t *testing.T) {
	kase := &common.Case{ID: 9, State: common.CaseOpen}
	b := &common.ReplyBan{
		ThreadID: 100,
		PostID:   55,
		User:     common.UserRef{ID: 5, Name: "flagrant"},
		IssuerID: 2,
		Reason:   "off topic",
		Post: &common.PostRef{
			ID:          55,
			ThreadID:    100,
			ThreadTitle: "Duck pictures",
			Case:        kase,
		},
	}
	c, err := NewCreator(b, common.OpNew)
	if err != nil {
		t.Fatal(err)
	}

	l := c.CaseLog()
	if l.ContentType != "post" || l.ContentID != 55 {
		t.Fatalf("content identity not narrowed to the post: %+v", l)
	}
	if l.ContentTitle != `post in thread "Duck pictures"` {
		t.Fatalf("bad content title: %q", l.ContentTitle)
	}
	if l.ReplyBanPostID != 55 {
		t.Fatalf("bad post id: %d", l.ReplyBanPostID)
	}
	// Permanent ban carries zero expiry and is never flagged
	if l.ExpiresAt != 0 || l.IsExpired {
		t.Fatalf("bad expiry: %+v", l)
	}
	if c.commenter == nil {
		t.Fatal("expected a commenter on the post's case")
	}
}

func TestValidationAggregation(t *testing.T) {
	w := sampleWarning()
	w.IssuerID = 0
	w.Title = ""
	w.Content.Title = ""

	c, err := NewCreator(w, common.OpNew)
	if err != nil {
		t.Fatal(err)
	}
	errs := c.Validate()
	if len(errs) < 4 {
		t.Fatalf("errors dropped: %v", errs)
	}
	if errs[0] != "warning:11" {
		t.Fatalf("missing sanction prefix: %v", errs)
	}
	for _, want := range [...]string{
		"case log: missing issuing moderator",
		"case log: missing title",
		"case: missing title",
	} {
		found := false
		for _, e := range errs {
			if e == want {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("missing error %q in %v", want, errs)
		}
	}

	_, err = c.Save()
	if err == nil {
		t.Fatal("expected aggregated validation failure")
	}
	if !strings.Contains(err.Error(), "warning:11") {
		t.Fatalf("bad combined error: %s", err)
	}
}

func TestNoteLinkProtection(t *testing.T) {
	n := &common.CaseNote{
		WarningLogID: 1,
		StateChange:  common.CaseResolved,
	}

	var errs []string
	validateNote(n, linkToken{}, &errs)
	if len(errs) != 2 {
		t.Fatalf("linkage writes not rejected: %v", errs)
	}

	errs = nil
	validateNote(n, linkToken{valid: true}, &errs)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
}

func TestOverridePrecedence(t *testing.T) {
	newCaseCreator := func() *Creator {
		b := &common.ReplyBan{
			ThreadID: 100,
			User:     common.UserRef{ID: 5, Name: "flagrant"},
			IssuerID: 2,
			Reason:   "spamming",
		}
		c, err := NewCreator(b, common.OpNew)
		if err != nil {
			t.Fatal(err)
		}
		c.log.ID = 1
		return c
	}

	// Override wins over the general flag on the new-case path
	c := newCaseCreator()
	c.SetAutoResolve(false)
	c.SetAutoResolveNewCases(true)
	c.finalizeNewCase()
	if c.opener.Comment().StateChange != common.CaseResolved ||
		c.Case().State != common.CaseResolved || !c.Case().AutoReported {
		t.Fatal("override did not resolve the new case")
	}

	c = newCaseCreator()
	c.SetAutoResolve(true)
	c.SetAutoResolveNewCases(false)
	c.finalizeNewCase()
	if c.opener.Comment().StateChange != common.StateNone ||
		c.Case().State != common.CaseOpen {
		t.Fatal("override did not decline resolution")
	}

	// The existing-case path ignores the override
	w := sampleWarning()
	w.Case = &common.Case{ID: 7, State: common.CaseOpen, AssignedUser: 3}
	cw, err := NewCreator(w, common.OpNew)
	if err != nil {
		t.Fatal(err)
	}
	cw.log.ID = 1
	cw.SetAutoResolve(false)
	cw.SetAutoResolveNewCases(true)
	cw.finalizeComment()
	note := cw.commenter.Comment()
	if note.StateChange != common.StateNone {
		t.Fatal("override leaked into the existing-case path")
	}
	if cw.Case().State != common.CaseOpen || cw.Case().AssignedUser != 3 {
		t.Fatal("case not pinned to its previous lifecycle fields")
	}
	if note.WarningLogID != 1 || note.IsReport {
		t.Fatalf("note not finalized: %+v", note)
	}
}

func TestResolveClosedCaseDeclined(t *testing.T) {
	for _, state := range [...]common.CaseState{
		common.CaseResolved, common.CaseRejected,
	} {
		w := sampleWarning()
		w.Case = &common.Case{ID: 7, State: state, AssignedUser: 3}
		c, err := NewCreator(w, common.OpNew)
		if err != nil {
			t.Fatal(err)
		}
		c.log.ID = 1
		c.SetAutoResolve(true)
		c.finalizeComment()
		if c.commenter.Comment().StateChange != common.StateNone {
			t.Fatalf("state change written on a closed case: %s", state)
		}
		if c.Case().State != state {
			t.Fatalf("closed case re-resolved: %s", state)
		}
	}
}
