package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/caerus-app/caerus-backend/internal/domain"
)

func TestSupportTickets(t *testing.T) {
	db := newSchemaDB(t)
	ctx := context.Background()

	tk := &domain.SupportTicket{UserID: "u1", Subject: "Video won't upload", Status: domain.TicketOpen}
	if err := CreateTicket(ctx, db, tk); err != nil {
		t.Fatalf("ticket: %v", err)
	}
	base := time.Now().UTC()
	for i, m := range []*domain.SupportMessage{
		{TicketID: tk.ID, SenderType: domain.SenderUser, Content: "help", CreatedAt: base},
		{TicketID: tk.ID, SenderType: domain.SenderAI, Content: "try again", CreatedAt: base.Add(time.Second)},
	} {
		if err := AddSupportMessage(ctx, db, m); err != nil {
			t.Fatalf("message %d: %v", i, err)
		}
	}

	list, err := ListTickets(ctx, db, "u1")
	if err != nil || len(list) != 1 || list[0].MessageCount != 2 {
		t.Fatalf("tickets = %+v %v", list, err)
	}
	if _, err := GetOwnedTicket(ctx, db, tk.ID, "u2"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("foreign ticket should be ErrNotFound, got %v", err)
	}
	msgs, _ := ListSupportMessages(ctx, db, tk.ID)
	if len(msgs) != 2 || msgs[0].SenderType != domain.SenderUser {
		t.Fatalf("messages = %+v", msgs)
	}

	last, err := LastSupportMessage(ctx, db, tk.ID)
	if err != nil || last == nil || last.Content != "try again" {
		t.Fatalf("last = %+v %v", last, err)
	}
	if none, err := LastSupportMessage(ctx, db, "missing"); err != nil || none != nil {
		t.Fatalf("empty ticket last = %+v %v", none, err)
	}

	err = AddSupportMessage(ctx, db, &domain.SupportMessage{TicketID: tk.ID, SenderType: "bot", Content: "x"})
	if err == nil {
		t.Fatalf("expected CHECK violation for unknown sender type")
	}
}
