package commands

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"leadgate/contexts/lead-capture/intake-service/domain/entities"
	domainerrors "leadgate/contexts/lead-capture/intake-service/domain/errors"
	"leadgate/contexts/lead-capture/intake-service/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	saveErr error
	saved   []entities.Lead
}

func (f *fakeRepo) SaveLead(_ context.Context, lead entities.Lead) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, lead)
	return nil
}

func (f *fakeRepo) FindLeadByEmail(context.Context, string) (entities.Lead, error) {
	return entities.Lead{}, domainerrors.ErrLeadNotFound
}

func (f *fakeRepo) ListLeads(context.Context, ports.LeadFilter) ([]entities.Lead, error) {
	return f.saved, nil
}

type acceptAll struct{}

func (acceptAll) Verify(context.Context, string, string) bool { return true }

type countingEmail struct{ calls int }

func (c *countingEmail) Send(context.Context, entities.Lead, *rand.Rand) error {
	c.calls++
	return nil
}

type countingChat struct{ calls int }

func (c *countingChat) Alert(context.Context, entities.Lead) error {
	c.calls++
	return nil
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type fixedIDs struct{ id string }

func (g fixedIDs) NewID(context.Context) (string, error) { return g.id, nil }

type fixedRandom struct{ seed int64 }

func (r fixedRandom) NewRand() *rand.Rand { return rand.New(rand.NewSource(r.seed)) }

func newUseCase(t *testing.T, repo ports.Repository, email *countingEmail, chat *countingChat) SubmitLeadUseCase {
	t.Helper()
	denyList, err := NewDenyList(nil)
	require.NoError(t, err)
	return SubmitLeadUseCase{
		Repository: repo,
		Captcha:    acceptAll{},
		Email:      email,
		Chat:       chat,
		DenyList:   denyList,
		Clock:      fixedClock{t: time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)},
		IDGen:      fixedIDs{id: "4f9d2c81-aaaa-bbbb-cccc-111122223333"},
		Random:     fixedRandom{seed: 5},
	}
}

func validCommand() SubmitLeadCommand {
	return SubmitLeadCommand{
		FullName:      "Jane Doe",
		Email:         "jane@example.com",
		Phone:         "555-0100",
		ContactMethod: "email",
		Address:       "1 Main St",
		City:          "Austin",
		State:         "TX",
		ZipCode:       "78701",
		AgeRaw:        "yes",
		CaptchaToken:  "valid",
		ClientIP:      "203.0.113.9",
	}
}

func TestExecutePersistenceFailureIsFatal(t *testing.T) {
	email := &countingEmail{}
	chat := &countingChat{}
	repo := &fakeRepo{saveErr: errors.New("connection refused")}
	uc := newUseCase(t, repo, email, chat)

	_, err := uc.Execute(context.Background(), validCommand())
	require.Error(t, err)
	assert.NotErrorIs(t, err, domainerrors.ErrDuplicateLead)
	assert.Zero(t, email.calls, "no notification may fire without a stored record")
	assert.Zero(t, chat.calls)
}

func TestExecuteUniqueViolationBackstopIsDuplicateNoop(t *testing.T) {
	// The lookup missed but the insert hit the unique index: the
	// check-then-insert race resolved by the store.
	email := &countingEmail{}
	chat := &countingChat{}
	repo := &fakeRepo{saveErr: domainerrors.ErrDuplicateLead}
	uc := newUseCase(t, repo, email, chat)

	result, err := uc.Execute(context.Background(), validCommand())
	require.NoError(t, err)
	assert.Equal(t, OutcomeDuplicate, result.Outcome)
	assert.Zero(t, email.calls)
	assert.Zero(t, chat.calls)
}

func TestExecuteAssignsIdentityAndTimestamp(t *testing.T) {
	email := &countingEmail{}
	chat := &countingChat{}
	repo := &fakeRepo{}
	uc := newUseCase(t, repo, email, chat)

	result, err := uc.Execute(context.Background(), validCommand())
	require.NoError(t, err)
	assert.Equal(t, OutcomeCreated, result.Outcome)
	require.Len(t, repo.saved, 1)
	assert.Equal(t, "4f9d2c81-aaaa-bbbb-cccc-111122223333", repo.saved[0].LeadID)
	assert.Equal(t, time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC), repo.saved[0].CreatedAt)
	assert.Equal(t, 1, email.calls)
	assert.Equal(t, 1, chat.calls)
}

func TestExecuteSurvivesCallerCancellation(t *testing.T) {
	// A cancelled request context must not abort persistence or dispatch.
	email := &countingEmail{}
	chat := &countingChat{}
	repo := &fakeRepo{}
	uc := newUseCase(t, repo, email, chat)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := uc.Execute(ctx, validCommand())
	require.NoError(t, err)
	assert.Equal(t, OutcomeCreated, result.Outcome)
	require.Len(t, repo.saved, 1)
	assert.Equal(t, 1, email.calls)
	assert.Equal(t, 1, chat.calls)
}
