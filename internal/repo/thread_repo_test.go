package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/caerus-app/caerus-backend/internal/domain"
)

func TestFindOrCreateQAThread_Idempotent(t *testing.T) {
	db := newSchemaDB(t)
	ctx := context.Background()

	seedUser(t, db, "f1", domain.RoleFounder)
	seedUser(t, db, "i1", domain.RoleInvestor)
	seedStartup(t, db, "s1", "f1")
	p := seedPitch(t, db, "p1", "s1", domain.PitchPublished)

	th, created, err := FindOrCreateQAThread(ctx, db, p, "i1")
	if err != nil || !created || th.Status != domain.ThreadActive || th.StartupID != "s1" {
		t.Fatalf("first = %+v created=%v err=%v", th, created, err)
	}
	again, created, err := FindOrCreateQAThread(ctx, db, p, "i1")
	if err != nil || created || again.ID != th.ID {
		t.Fatalf("second = %+v created=%v err=%v", again, created, err)
	}

	inv, _ := ListQAThreadsForInvestor(ctx, db, "i1")
	fou, _ := ListQAThreadsForFounder(ctx, db, "f1")
	if len(inv) != 1 || len(fou) != 1 || fou[0].Pitch.Startup.Name == "" {
		t.Fatalf("listing: investor=%d founder=%d", len(inv), len(fou))
	}
}

func TestQAMessages_ReadFlagsAndOrdering(t *testing.T) {
	db := newSchemaDB(t)
	ctx := context.Background()

	seedUser(t, db, "f1", domain.RoleFounder)
	seedUser(t, db, "i1", domain.RoleInvestor)
	seedStartup(t, db, "s1", "f1")
	p := seedPitch(t, db, "p1", "s1", domain.PitchPublished)
	th, _, _ := FindOrCreateQAThread(ctx, db, p, "i1")

	base := time.Now().UTC()
	msgs := []*domain.QAMessage{
		{ThreadID: th.ID, SenderID: "i1", MessageType: domain.MessageText, Content: "q1", CreatedAt: base},
		{ThreadID: th.ID, SenderID: "i1", MessageType: domain.MessageText, Content: "q2", CreatedAt: base.Add(time.Second)},
		{ThreadID: th.ID, SenderID: "f1", MessageType: domain.MessageText, Content: "a1", CreatedAt: base.Add(2 * time.Second)},
	}
	for _, m := range msgs {
		if err := CreateQAMessage(ctx, db, m); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	unreadFounder, _ := CountUnread(ctx, db, &domain.QAMessage{}, th.ID, "f1")
	unreadInvestor, _ := CountUnread(ctx, db, &domain.QAMessage{}, th.ID, "i1")
	if unreadFounder != 2 || unreadInvestor != 1 {
		t.Fatalf("unread founder=%d investor=%d", unreadFounder, unreadInvestor)
	}

	n, err := MarkRead(ctx, db, &domain.QAMessage{}, th.ID, "f1")
	if err != nil || n != 2 {
		t.Fatalf("MarkRead = %d %v", n, err)
	}
	unreadFounder, _ = CountUnread(ctx, db, &domain.QAMessage{}, th.ID, "f1")
	unreadInvestor, _ = CountUnread(ctx, db, &domain.QAMessage{}, th.ID, "i1")
	if unreadFounder != 0 || unreadInvestor != 1 {
		t.Fatalf("after read: founder=%d investor=%d", unreadFounder, unreadInvestor)
	}

	history, _ := ListQAMessages(ctx, db, th.ID)
	if len(history) != 3 || history[0].Content != "q1" || history[2].Content != "a1" {
		t.Fatalf("history order = %+v", history)
	}
	last, _ := LastQAMessage(ctx, db, th.ID)
	if last == nil || last.Content != "a1" {
		t.Fatalf("last = %+v", last)
	}

	got, _ := GetQAThread(ctx, db, th.ID)
	if !got.UpdatedAt.After(th.UpdatedAt) {
		t.Fatalf("thread updated_at not bumped: %v", got.UpdatedAt)
	}
}

func TestUpdateQAThreadStatus_CompareAndSet(t *testing.T) {
	db := newSchemaDB(t)
	ctx := context.Background()

	seedUser(t, db, "f1", domain.RoleFounder)
	seedStartup(t, db, "s1", "f1")
	p := seedPitch(t, db, "p1", "s1", domain.PitchPublished)
	th, _, _ := FindOrCreateQAThread(ctx, db, p, "i1")

	if err := UpdateQAThreadStatus(ctx, db, th.ID, domain.ThreadActive, domain.ThreadInterested, time.Now()); err != nil {
		t.Fatalf("transition: %v", err)
	}
	if err := UpdateQAThreadStatus(ctx, db, th.ID, domain.ThreadActive, domain.ThreadDeclined, time.Now()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("stale from-status should miss, got %v", err)
	}
	got, _ := GetQAThread(ctx, db, th.ID)
	if got.Status != domain.ThreadInterested {
		t.Fatalf("status = %q", got.Status)
	}
}

func TestTalentThreads(t *testing.T) {
	db := newSchemaDB(t)
	ctx := context.Background()

	seedUser(t, db, "t1", domain.RoleTalent)
	tp := &domain.TalentPitch{ID: "tp1", TalentID: "t1", VideoKey: "k", Status: domain.PitchPublished}
	if err := CreateTalentPitch(ctx, db, tp); err != nil {
		t.Fatalf("pitch: %v", err)
	}

	th, created, err := FindOrCreateTalentThread(ctx, db, tp, "f1")
	if err != nil || !created || th.TalentID != "t1" {
		t.Fatalf("open = %+v %v %v", th, created, err)
	}
	if _, created, _ := FindOrCreateTalentThread(ctx, db, tp, "f1"); created {
		t.Fatalf("second open must reuse the thread")
	}
	if err := CreateTalentMessage(ctx, db, &domain.TalentQAMessage{ThreadID: th.ID, SenderID: "f1", MessageType: domain.MessageText, Content: "hi"}); err != nil {
		t.Fatalf("message: %v", err)
	}

	forTalent, _ := ListTalentThreadsFor(ctx, db, "t1")
	forRecruiter, _ := ListTalentThreadsFor(ctx, db, "f1")
	if len(forTalent) != 1 || len(forRecruiter) != 1 {
		t.Fatalf("threads talent=%d recruiter=%d", len(forTalent), len(forRecruiter))
	}
	last, _ := LastTalentMessage(ctx, db, th.ID)
	if last == nil || last.Content != "hi" {
		t.Fatalf("last = %+v", last)
	}
	unread, _ := CountUnread(ctx, db, &domain.TalentQAMessage{}, th.ID, "t1")
	if unread != 1 {
		t.Fatalf("unread for talent = %d", unread)
	}
}
