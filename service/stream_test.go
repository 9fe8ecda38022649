package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"stream-service/constant"
	"stream-service/errs"
	"stream-service/pkg/token"
)

func newStreamFixture(t *testing.T) (StreamService, *fakeRepo, *fakePublisher, *token.Signer) {
	t.Helper()
	signer, err := token.NewSigner("test-api-key", "test-secret")
	if err != nil {
		t.Fatal(err)
	}
	repo := newFakeRepo()
	publisher := &fakePublisher{}
	return NewStreamService(repo, signer, publisher), repo, publisher, signer
}

func TestCreateStream(t *testing.T) {
	svc, repo, publisher, signer := newStreamFixture(t)
	owner := uuid.New()

	resp, err := svc.Create(context.Background(), owner, "Morning workout")
	if err != nil {
		t.Fatal(err)
	}

	if resp.StreamID == "" {
		t.Fatal("expected a stream id")
	}
	if resp.APIKey != "test-api-key" {
		t.Fatalf("expected signing key id in response, got %q", resp.APIKey)
	}
	subject, err := signer.Verify(resp.Token)
	if err != nil {
		t.Fatalf("minted token does not verify: %v", err)
	}
	if subject != owner.String() {
		t.Fatalf("token subject = %s, want %s", subject, owner)
	}

	row, err := repo.FindByStreamID(context.Background(), resp.StreamID)
	if err != nil {
		t.Fatal(err)
	}
	if row.Status != constant.StreamStatusActive {
		t.Fatalf("new session status = %s, want active", row.Status)
	}
	if row.UserID != owner {
		t.Fatalf("session owner = %s, want %s", row.UserID, owner)
	}

	events := publisher.published()
	if len(events) != 1 || events[0].event.Type != constant.EventStreamCreated {
		t.Fatalf("expected one stream.created event, got %+v", events)
	}
}

func TestCreateStreamRejectsEmptyTitle(t *testing.T) {
	svc, _, _, _ := newStreamFixture(t)
	if _, err := svc.Create(context.Background(), uuid.New(), "   "); !errors.Is(err, errs.ErrEmptyTitle) {
		t.Fatalf("expected ErrEmptyTitle, got %v", err)
	}
}

func TestCreateStreamBlocksSecondActiveSession(t *testing.T) {
	svc, _, _, _ := newStreamFixture(t)
	owner := uuid.New()

	if _, err := svc.Create(context.Background(), owner, "first"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Create(context.Background(), owner, "second"); !errors.Is(err, errs.ErrAlreadyLive) {
		t.Fatalf("expected ErrAlreadyLive, got %v", err)
	}
}

func TestEndStreamLifecycle(t *testing.T) {
	svc, repo, _, _ := newStreamFixture(t)
	owner := uuid.New()

	resp, err := svc.Create(context.Background(), owner, "workout")
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.End(context.Background(), owner, resp.StreamID); err != nil {
		t.Fatal(err)
	}

	row, err := repo.FindByStreamID(context.Background(), resp.StreamID)
	if err != nil {
		t.Fatal(err)
	}
	if row.Status != constant.StreamStatusInactive {
		t.Fatalf("status = %s, want inactive", row.Status)
	}
	if row.EndedAt == nil {
		t.Fatal("ended_at not set")
	}
	if row.EndedAt.Before(row.CreatedAt) {
		t.Fatalf("ended_at %s before created_at %s", row.EndedAt, row.CreatedAt)
	}
}

func TestLifecycleEventsShareRowTopic(t *testing.T) {
	svc, repo, publisher, _ := newStreamFixture(t)
	owner := uuid.New()

	resp, err := svc.Create(context.Background(), owner, "workout")
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.End(context.Background(), owner, resp.StreamID); err != nil {
		t.Fatal(err)
	}

	row, err := repo.FindByStreamID(context.Background(), resp.StreamID)
	if err != nil {
		t.Fatal(err)
	}

	events := publisher.published()
	if len(events) != 2 {
		t.Fatalf("expected create and end events, got %d", len(events))
	}
	for _, e := range events {
		if e.event.StreamID != row.ID.String() {
			t.Fatalf("%s event topic = %s, want row id %s", e.event.Type, e.event.StreamID, row.ID)
		}
	}
}

func TestEndStreamOwnershipIsolation(t *testing.T) {
	svc, _, _, _ := newStreamFixture(t)
	ownerA := uuid.New()
	ownerB := uuid.New()

	resp, err := svc.Create(context.Background(), ownerA, "a's stream")
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.End(context.Background(), ownerB, resp.StreamID); !errors.Is(err, errs.ErrStreamNotFound) {
		t.Fatalf("expected ErrStreamNotFound for non-owner, got %v", err)
	}
}

func TestRejoinWithoutActiveSession(t *testing.T) {
	svc, _, _, _ := newStreamFixture(t)
	if _, err := svc.Rejoin(context.Background(), uuid.New()); !errors.Is(err, errs.ErrNoActiveStream) {
		t.Fatalf("expected ErrNoActiveStream, got %v", err)
	}
}

func TestRejoinReturnsActiveSessionWithFreshToken(t *testing.T) {
	svc, _, _, signer := newStreamFixture(t)
	owner := uuid.New()

	created, err := svc.Create(context.Background(), owner, "workout")
	if err != nil {
		t.Fatal(err)
	}

	resp, err := svc.Rejoin(context.Background(), owner)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StreamID != created.StreamID {
		t.Fatalf("rejoin stream id = %s, want %s", resp.StreamID, created.StreamID)
	}
	subject, err := signer.Verify(resp.Token)
	if err != nil {
		t.Fatalf("rejoin token does not verify: %v", err)
	}
	if subject != owner.String() {
		t.Fatalf("rejoin token subject = %s, want %s", subject, owner)
	}
}

// Mirrors the full broadcaster/viewer scenario: a viewer token is scoped to
// the viewer, not the broadcaster, and remains mintable after the session
// ends. Application state and token validity are deliberately independent.
func TestViewerTokenScenario(t *testing.T) {
	svc, _, _, signer := newStreamFixture(t)
	broadcaster := uuid.New()
	viewer := uuid.New()

	created, err := svc.Create(context.Background(), broadcaster, "Morning workout")
	if err != nil {
		t.Fatal(err)
	}

	viewerResp, err := svc.ViewerToken(context.Background(), viewer, created.StreamID)
	if err != nil {
		t.Fatal(err)
	}
	subject, err := signer.Verify(viewerResp.Token)
	if err != nil {
		t.Fatal(err)
	}
	if subject != viewer.String() {
		t.Fatalf("viewer token subject = %s, want viewer %s", subject, viewer)
	}

	if err := svc.End(context.Background(), broadcaster, created.StreamID); err != nil {
		t.Fatal(err)
	}

	afterEnd, err := svc.ViewerToken(context.Background(), viewer, created.StreamID)
	if err != nil {
		t.Fatalf("viewer token after end should still mint, got %v", err)
	}
	if afterEnd.Token == "" {
		t.Fatal("expected a token after session end")
	}
}

func TestListActiveExcludesEndedStreams(t *testing.T) {
	svc, _, _, _ := newStreamFixture(t)
	ownerA := uuid.New()
	ownerB := uuid.New()

	a, err := svc.Create(context.Background(), ownerA, "a")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Create(context.Background(), ownerB, "b"); err != nil {
		t.Fatal(err)
	}
	if err := svc.End(context.Background(), ownerA, a.StreamID); err != nil {
		t.Fatal(err)
	}

	active, err := svc.ListActive(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(active) != 1 || active[0].UserID != ownerB {
		t.Fatalf("expected only b's stream active, got %+v", active)
	}
}
