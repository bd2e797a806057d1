package service

import (
	"context"
	"regexp"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tunepulse/tunepulse-api/internal/domain"
	"github.com/tunepulse/tunepulse-api/internal/events"
	"github.com/tunepulse/tunepulse-api/internal/repository"
	apperrors "github.com/tunepulse/tunepulse-api/pkg/util/errorutil"
)

// --- Mock Ticket Repository ---

type mockTicketRepository struct {
	mock.Mock
}

func (m *mockTicketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	args := m.Called(ctx, ticket)
	return args.Error(0)
}

func (m *mockTicketRepository) GetByTicketID(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	args := m.Called(ctx, ticketID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *mockTicketRepository) List(ctx context.Context) ([]domain.Ticket, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Ticket), args.Error(1)
}

func (m *mockTicketRepository) UpdateStatus(ctx context.Context, ticketID string, status domain.TicketStatus) (*domain.Ticket, error) {
	args := m.Called(ctx, ticketID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *mockTicketRepository) Delete(ctx context.Context, ticketID string) error {
	args := m.Called(ctx, ticketID)
	return args.Error(0)
}

func newTicketFixture(t *testing.T) (*TicketService, *mockTicketRepository, *eventRecorder) {
	t.Helper()
	repo := &mockTicketRepository{}
	dispatcher, recorder := recordingDispatcher()
	return NewTicketService(repo, dispatcher, zap.NewNop()), repo, recorder
}

func validTicketInput() TicketCreateInput {
	return TicketCreateInput{
		Title:    "Player keeps buffering",
		Category: "Playback",
		Message:  "Every track stalls after thirty seconds.",
		Priority: "High",
		Email:    "listener@example.com",
	}
}

var ticketIDPattern = regexp.MustCompile(`^T-[0-9a-z]{1,6}-[0-9a-z]{4}$`)

func TestCreateTicket(t *testing.T) {
	svc, repo, recorder := newTicketFixture(t)

	repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Ticket")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*domain.Ticket).ID = "row-1"
		}).Return(nil)

	ticket, err := svc.CreateTicket(context.Background(), validTicketInput())
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusOpen, ticket.Status)
	assert.Regexp(t, ticketIDPattern, ticket.TicketID)

	sent := recorder.byType(events.EventTicketCreated)
	require.Len(t, sent, 1)
	payload := sent[0].Payload.(events.TicketCreatedPayload)
	assert.Equal(t, ticket.TicketID, payload.TicketID)
	assert.Equal(t, "listener@example.com", payload.Email)
}

func TestCreateTicketValidationMessages(t *testing.T) {
	svc, repo, _ := newTicketFixture(t)

	_, err := svc.CreateTicket(context.Background(), TicketCreateInput{
		Title:    "ab",
		Category: "",
		Message:  "too short",
		Priority: "Urgent",
		Email:    "not-an-email",
	})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", domainCode(t, err))

	var de *apperrors.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "Title must be at least 3 characters long.", de.Details["title"])
	assert.Equal(t, "Category is required.", de.Details["category"])
	assert.Equal(t, "Message must be at least 10 characters long.", de.Details["message"])
	assert.Equal(t, "Priority must be one of Low, Medium, or High.", de.Details["priority"])
	assert.Equal(t, "A valid email address is required.", de.Details["email"])
	repo.AssertNotCalled(t, "Create")
}

func TestCreateTicketRetriesOnDuplicateID(t *testing.T) {
	svc, repo, _ := newTicketFixture(t)

	repo.On("Create", mock.Anything, mock.Anything).Return(repository.ErrDuplicateTicketID).Once()
	repo.On("Create", mock.Anything, mock.Anything).Return(nil).Once()

	ticket, err := svc.CreateTicket(context.Background(), validTicketInput())
	require.NoError(t, err)
	assert.Regexp(t, ticketIDPattern, ticket.TicketID)
	repo.AssertNumberOfCalls(t, "Create", 2)
}

func TestCreateTicketGivesUpAfterSecondCollision(t *testing.T) {
	svc, repo, _ := newTicketFixture(t)

	repo.On("Create", mock.Anything, mock.Anything).Return(repository.ErrDuplicateTicketID)

	_, err := svc.CreateTicket(context.Background(), validTicketInput())
	require.Error(t, err)
	repo.AssertNumberOfCalls(t, "Create", 2)
}

func TestGetTicketNotFound(t *testing.T) {
	svc, repo, _ := newTicketFixture(t)

	repo.On("GetByTicketID", mock.Anything, "T-missing-0000").Return(nil, pgx.ErrNoRows)

	_, err := svc.GetTicket(context.Background(), "T-missing-0000")
	assert.Equal(t, "NOT_FOUND", domainCode(t, err))
}

func TestSetStatus(t *testing.T) {
	svc, repo, _ := newTicketFixture(t)

	updated := &domain.Ticket{TicketID: "T-abc123-zz99", Status: domain.TicketStatusResolved}
	repo.On("UpdateStatus", mock.Anything, "T-abc123-zz99", domain.TicketStatusResolved).
		Return(updated, nil)

	ticket, err := svc.SetStatus(context.Background(), "T-abc123-zz99", domain.TicketStatusResolved)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusResolved, ticket.Status)
}

func TestSetStatusRejectsUnknownValue(t *testing.T) {
	svc, repo, _ := newTicketFixture(t)

	_, err := svc.SetStatus(context.Background(), "T-abc123-zz99", domain.TicketStatus("Closed"))
	assert.Equal(t, "VALIDATION_FAILED", domainCode(t, err))
	repo.AssertNotCalled(t, "UpdateStatus")
}

func TestReplyUsesStoredOwnerEmail(t *testing.T) {
	svc, repo, recorder := newTicketFixture(t)

	stored := &domain.Ticket{
		TicketID: "T-abc123-zz99",
		Email:    "owner@example.com",
		Status:   domain.TicketStatusInProgress,
	}
	repo.On("GetByTicketID", mock.Anything, "T-abc123-zz99").Return(stored, nil)

	_, err := svc.Reply(context.Background(), "T-abc123-zz99", "We pushed a fix, please retry.")
	require.NoError(t, err)

	sent := recorder.byType(events.EventTicketReplied)
	require.Len(t, sent, 1)
	payload := sent[0].Payload.(events.TicketRepliedPayload)
	assert.Equal(t, "owner@example.com", payload.Email)
	assert.Equal(t, "We pushed a fix, please retry.", payload.Reply)
}

func TestReplyEmptyBody(t *testing.T) {
	svc, repo, _ := newTicketFixture(t)

	_, err := svc.Reply(context.Background(), "T-abc123-zz99", "   ")
	assert.Equal(t, "VALIDATION_FAILED", domainCode(t, err))
	repo.AssertNotCalled(t, "GetByTicketID")
}

func TestDeleteTicketNotFound(t *testing.T) {
	svc, repo, _ := newTicketFixture(t)

	repo.On("Delete", mock.Anything, "T-missing-0000").Return(pgx.ErrNoRows)

	err := svc.DeleteTicket(context.Background(), "T-missing-0000")
	assert.Equal(t, "NOT_FOUND", domainCode(t, err))
}

func TestGenerateTicketIDShape(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := generateTicketID()
		assert.Regexp(t, ticketIDPattern, id)
		seen[id] = true
	}
	// Random suffix keeps ids distinct within the same millisecond.
	assert.Greater(t, len(seen), 90)
}
