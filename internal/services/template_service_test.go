package services

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/caerus-app/caerus-backend/internal/domain"
	"github.com/caerus-app/caerus-backend/internal/notify"
	"github.com/caerus-app/caerus-backend/internal/repo"
)

func TestTemplateService_SeedAndCRUD(t *testing.T) {
	db := newTestDB(t)
	svc := &TemplateService{DB: db, Threads: &QAService{DB: db, Now: fixedNow}}
	ctx := context.Background()
	inv := seedUser(t, db, domain.RoleInvestor, 15)

	list, err := svc.List(ctx, inv.UserID)
	if err != nil || len(list) != len(domain.DefaultQuestions) {
		t.Fatalf("seeded = %d, %v", len(list), err)
	}
	again, _ := svc.List(ctx, inv.UserID)
	if len(again) != len(list) {
		t.Fatalf("second list reseeded: %d", len(again))
	}

	tpl, err := svc.Create(ctx, inv.UserID, "  Who else is on the cap table? ")
	if err != nil || tpl.DisplayOrder != len(list) || tpl.QuestionText != "Who else is on the cap table?" {
		t.Fatalf("create = %+v, %v", tpl, err)
	}
	_, err = svc.Create(ctx, inv.UserID, "  ")
	wantKind(t, err, ErrInvalidInput)

	q, order := "Updated?", 0
	up, err := svc.Update(ctx, inv.UserID, tpl.ID, &q, &order)
	if err != nil || up.QuestionText != q || up.DisplayOrder != 0 {
		t.Fatalf("update = %+v, %v", up, err)
	}
	other := seedUser(t, db, domain.RoleInvestor, 15)
	_, err = svc.Update(ctx, other.UserID, tpl.ID, &q, nil)
	wantKind(t, err, ErrNotFound)

	wantKind(t, svc.Delete(ctx, other.UserID, tpl.ID), ErrNotFound)
	if err := svc.Delete(ctx, inv.UserID, tpl.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
}

func TestTemplateService_Send(t *testing.T) {
	db := newTestDB(t)
	notes := &recordingNotifier{}
	svc := &TemplateService{DB: db, Threads: &QAService{DB: db, Notifier: notes, Log: zerolog.Nop(), Now: fixedNow}}
	ctx := context.Background()
	founder := seedUser(t, db, domain.RoleFounder, 0)
	inv := seedUser(t, db, domain.RoleInvestor, 15)
	p := seedPitch(t, db, seedStartup(t, db, founder.UserID).ID, domain.PitchPublished)

	tpls, err := svc.List(ctx, inv.UserID)
	if err != nil {
		t.Fatal(err)
	}
	ids := []string{tpls[0].ID, tpls[1].ID}

	_, err = svc.Send(ctx, inv.UserID, p.ID, ids, "")
	wantKind(t, err, ErrPaymentRequired)

	subscribe(t, db, inv.UserID, testNow.Add(time.Hour))
	_, err = svc.Send(ctx, inv.UserID, p.ID, nil, "  ")
	wantKind(t, err, ErrInvalidInput)

	res, err := svc.Send(ctx, inv.UserID, p.ID, ids, "Any LOIs?")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if res.MessagesSent != 3 || res.Questions[2] != "Any LOIs?" {
		t.Fatalf("send = %+v", res)
	}

	msgs, err := repo.ListQAMessages(ctx, db, res.ThreadID)
	if err != nil || len(msgs) != 3 || msgs[0].Content != tpls[0].QuestionText {
		t.Fatalf("thread messages = %+v, %v", msgs, err)
	}
	sent := notes.all()
	if len(sent) != 1 || sent[0].Type != notify.TypeNewQuestion || sent[0].Token != tokenOf(founder.UserID) {
		t.Fatalf("notifications = %+v", sent)
	}
}
