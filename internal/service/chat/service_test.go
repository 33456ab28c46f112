package chat_test

import (
	"context"
	"errors"
	"testing"

	model "github.com/zhouzirui/career-guide/backend/internal/model/chat"
	chat "github.com/zhouzirui/career-guide/backend/internal/service/chat"
)

func TestServiceGetSession(t *testing.T) {
	svc := chat.NewService()
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, "u1", "career-guide")
	if err != nil {
		t.Fatalf("CreateSession err: %v", err)
	}

	got, err := svc.GetSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("GetSession err: %v", err)
	}

	if got.ID != session.ID {
		t.Fatalf("unexpected session ID: got %s want %s", got.ID, session.ID)
	}
	if got.PersonaID != "career-guide" || got.UserID != "u1" {
		t.Fatalf("unexpected session: %+v", got)
	}
}

func TestServiceGetSessionNotFound(t *testing.T) {
	svc := chat.NewService()
	ctx := context.Background()

	if _, err := svc.GetSession(ctx, "missing"); err == nil {
		t.Fatal("expected error for missing session")
	}
}

func TestServiceCreateSessionRequiresPersona(t *testing.T) {
	svc := chat.NewService()
	if _, err := svc.CreateSession(context.Background(), "u1", " "); !errors.Is(err, chat.ErrPersonaRequired) {
		t.Fatalf("expected ErrPersonaRequired, got %v", err)
	}
}

func TestServiceSaveMessageValidation(t *testing.T) {
	svc := chat.NewService()
	ctx := context.Background()
	session, _ := svc.CreateSession(ctx, "", "career-guide")

	if _, err := svc.SaveMessage(ctx, model.Message{SessionID: session.ID, Sender: "system", Content: "hi"}); !errors.Is(err, chat.ErrInvalidSender) {
		t.Fatalf("expected ErrInvalidSender, got %v", err)
	}
	if _, err := svc.SaveMessage(ctx, model.Message{SessionID: session.ID, Sender: model.SenderUser, Content: "  "}); !errors.Is(err, chat.ErrEmptyMessage) {
		t.Fatalf("expected ErrEmptyMessage, got %v", err)
	}
	if _, err := svc.SaveMessage(ctx, model.Message{SessionID: "missing", Sender: model.SenderUser, Content: "hi"}); !errors.Is(err, chat.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}

	saved, err := svc.SaveMessage(ctx, model.Message{SessionID: session.ID, Sender: model.SenderUser, Content: "hi"})
	if err != nil {
		t.Fatalf("SaveMessage err: %v", err)
	}
	if saved.ID == "" || saved.CreatedAt.IsZero() {
		t.Fatalf("expected id and timestamp to be set, got %+v", saved)
	}

	transcript, err := svc.LoadTranscript(ctx, session.ID)
	if err != nil {
		t.Fatalf("LoadTranscript err: %v", err)
	}
	if len(transcript) != 1 || transcript[0].Content != "hi" {
		t.Fatalf("unexpected transcript %+v", transcript)
	}
}

func TestServiceListSessionsByUser(t *testing.T) {
	svc := chat.NewService()
	ctx := context.Background()
	_, _ = svc.CreateSession(ctx, "u1", "career-guide")
	_, _ = svc.CreateSession(ctx, "u2", "career-guide")
	_, _ = svc.CreateSession(ctx, "u1", "pm-interviewer")

	if got := svc.ListSessions(ctx, "u1"); len(got) != 2 {
		t.Fatalf("expected 2 sessions for u1, got %d", len(got))
	}
	if got := svc.ListSessions(ctx, ""); len(got) != 0 {
		t.Fatalf("expected anonymous listing to be empty, got %d", len(got))
	}
}
