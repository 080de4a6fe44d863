package unit

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"

	intakeservice "leadgate/contexts/lead-capture/intake-service"
	"leadgate/contexts/lead-capture/intake-service/domain/entities"
	domainerrors "leadgate/contexts/lead-capture/intake-service/domain/errors"
	"leadgate/contexts/lead-capture/intake-service/ports"
	leadhttp "leadgate/contexts/lead-capture/intake-service/transport/http"
)

type stubCaptcha struct {
	accept bool
}

func (s stubCaptcha) Verify(context.Context, string, string) bool {
	return s.accept
}

type recordingEmail struct {
	mu    sync.Mutex
	calls int
	fail  bool
	last  entities.Lead
}

func (r *recordingEmail) Send(_ context.Context, lead entities.Lead, _ *rand.Rand) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	r.last = lead
	if r.fail {
		return errors.New("mail api down")
	}
	return nil
}

func (r *recordingEmail) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

type recordingChat struct {
	mu    sync.Mutex
	calls int
	fail  bool
}

func (r *recordingChat) Alert(context.Context, entities.Lead) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.fail {
		return errors.New("webhook down")
	}
	return nil
}

func (r *recordingChat) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func newTestModule(captchaAccepts bool) (intakeservice.Module, *recordingEmail, *recordingChat) {
	email := &recordingEmail{}
	chat := &recordingChat{}
	module := intakeservice.NewInMemoryModule(nil, intakeservice.Dependencies{
		Captcha: stubCaptcha{accept: captchaAccepts},
		Email:   email,
		Chat:    chat,
	})
	module.Store.SeedRandom(1)
	return module, email, chat
}

func submitRequest() leadhttp.SubmitLeadRequest {
	return leadhttp.SubmitLeadRequest{
		FullName:      "Jane Doe",
		Email:         "JANE@Example.com",
		Phone:         "555-0100",
		ContactMethod: "email",
		Address:       "1 Main St",
		City:          "Austin",
		State:         "TX",
		ZipCode:       "78701",
		Age:           "yes",
		CaptchaToken:  "valid",
	}
}

func TestSubmitLeadEndToEnd(t *testing.T) {
	module, email, chat := newTestModule(true)

	resp, err := module.Handler.SubmitLeadHandler(context.Background(), "203.0.113.9", "test-agent", submitRequest())
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if resp.Status != "ok" {
		t.Fatalf("expected ok status, got %s", resp.Status)
	}

	stored, err := module.Store.FindLeadByEmail(context.Background(), "jane@example.com")
	if err != nil {
		t.Fatalf("stored lead lookup failed: %v", err)
	}
	if stored.Email != "jane@example.com" {
		t.Fatalf("expected normalized email, got %s", stored.Email)
	}
	if !stored.AgeConfirmed {
		t.Fatal("expected age sentinel \"yes\" to set the consent flag")
	}
	if stored.ClientIP != "203.0.113.9" {
		t.Fatalf("expected client ip to be captured, got %s", stored.ClientIP)
	}
	if stored.LeadID == "" || stored.CreatedAt.IsZero() {
		t.Fatalf("expected id and timestamp to be assigned, got %+v", stored)
	}
	if email.callCount() != 1 {
		t.Fatalf("expected exactly one email notification, got %d", email.callCount())
	}
	if chat.callCount() != 1 {
		t.Fatalf("expected exactly one chat alert, got %d", chat.callCount())
	}
}

func TestSubmitLeadHoneypotSilentDiscard(t *testing.T) {
	module, email, chat := newTestModule(true)

	req := submitRequest()
	req.Website = "http://spam"
	resp, err := module.Handler.SubmitLeadHandler(context.Background(), "203.0.113.9", "bot", req)
	if err != nil {
		t.Fatalf("honeypot submission must look successful, got %v", err)
	}
	if resp.Status != "ok" {
		t.Fatalf("expected ok status, got %s", resp.Status)
	}

	if _, err := module.Store.FindLeadByEmail(context.Background(), "jane@example.com"); !errors.Is(err, domainerrors.ErrLeadNotFound) {
		t.Fatalf("expected no stored record, got %v", err)
	}
	if email.callCount() != 0 || chat.callCount() != 0 {
		t.Fatalf("expected zero notifications, got email=%d chat=%d", email.callCount(), chat.callCount())
	}
}

func TestSubmitLeadHoneypotWinsOverInvalidFields(t *testing.T) {
	module, email, chat := newTestModule(true)

	// A tripped honeypot short-circuits before validation, so even a payload
	// that would normally 400 comes back as the uniform success body.
	req := submitRequest()
	req.Website = "http://spam"
	req.Email = "not-an-email"
	req.FullName = ""
	resp, err := module.Handler.SubmitLeadHandler(context.Background(), "203.0.113.9", "bot", req)
	if err != nil {
		t.Fatalf("honeypot submission must look successful, got %v", err)
	}
	if resp.Status != "ok" {
		t.Fatalf("expected ok status, got %s", resp.Status)
	}

	items, err := module.Store.ListLeads(context.Background(), ports.LeadFilter{})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected no stored records, got %d", len(items))
	}
	if email.callCount() != 0 || chat.callCount() != 0 {
		t.Fatalf("expected zero notifications, got email=%d chat=%d", email.callCount(), chat.callCount())
	}
}

func TestSubmitLeadDisposableDomainRejected(t *testing.T) {
	module, email, chat := newTestModule(true)

	req := submitRequest()
	req.Email = "jane@mailinator.com"
	_, err := module.Handler.SubmitLeadHandler(context.Background(), "203.0.113.9", "agent", req)
	if !errors.Is(err, domainerrors.ErrDisposableDomain) {
		t.Fatalf("expected disposable-domain rejection, got %v", err)
	}

	if _, err := module.Store.FindLeadByEmail(context.Background(), "jane@mailinator.com"); !errors.Is(err, domainerrors.ErrLeadNotFound) {
		t.Fatalf("expected no stored record, got %v", err)
	}
	if email.callCount() != 0 || chat.callCount() != 0 {
		t.Fatalf("expected zero notifications, got email=%d chat=%d", email.callCount(), chat.callCount())
	}
}

func TestSubmitLeadInvalidEmailRejected(t *testing.T) {
	module, _, _ := newTestModule(true)

	req := submitRequest()
	req.Email = "not-an-email"
	_, err := module.Handler.SubmitLeadHandler(context.Background(), "203.0.113.9", "agent", req)
	if !errors.Is(err, domainerrors.ErrInvalidEmail) {
		t.Fatalf("expected invalid-email rejection, got %v", err)
	}
}

func TestSubmitLeadCaptchaRejected(t *testing.T) {
	module, email, chat := newTestModule(false)

	_, err := module.Handler.SubmitLeadHandler(context.Background(), "203.0.113.9", "agent", submitRequest())
	if !errors.Is(err, domainerrors.ErrCaptchaRejected) {
		t.Fatalf("expected captcha rejection, got %v", err)
	}
	if email.callCount() != 0 || chat.callCount() != 0 {
		t.Fatalf("expected zero notifications, got email=%d chat=%d", email.callCount(), chat.callCount())
	}
}

func TestSubmitLeadDuplicateIsSilentNoop(t *testing.T) {
	module, email, chat := newTestModule(true)

	first, err := module.Handler.SubmitLeadHandler(context.Background(), "203.0.113.9", "agent", submitRequest())
	if err != nil {
		t.Fatalf("first submit failed: %v", err)
	}

	// Same email in a different case: still one record, still a success body.
	req := submitRequest()
	req.Email = "jane@EXAMPLE.com"
	req.Phone = "555-9999"
	second, err := module.Handler.SubmitLeadHandler(context.Background(), "198.51.100.7", "agent", req)
	if err != nil {
		t.Fatalf("duplicate submit must look successful, got %v", err)
	}
	if first.Message != second.Message {
		t.Fatalf("duplicate response must be indistinguishable: %q vs %q", first.Message, second.Message)
	}

	items, err := module.Store.ListLeads(context.Background(), ports.LeadFilter{})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected exactly one stored record, got %d", len(items))
	}
	if items[0].Phone != "555-0100" {
		t.Fatalf("duplicate must not overwrite the original record, got phone %s", items[0].Phone)
	}
	if email.callCount() != 1 || chat.callCount() != 1 {
		t.Fatalf("duplicate must not re-notify, got email=%d chat=%d", email.callCount(), chat.callCount())
	}
}

func TestSubmitLeadNotifierFailuresAreIsolated(t *testing.T) {
	module, email, chat := newTestModule(true)
	email.fail = true

	resp, err := module.Handler.SubmitLeadHandler(context.Background(), "203.0.113.9", "agent", submitRequest())
	if err != nil {
		t.Fatalf("notifier failure must not fail the submission, got %v", err)
	}
	if resp.Status != "ok" {
		t.Fatalf("expected ok status, got %s", resp.Status)
	}
	if email.callCount() != 1 {
		t.Fatalf("expected the failing email notifier to be invoked once, got %d", email.callCount())
	}
	if chat.callCount() != 1 {
		t.Fatalf("expected the chat alert despite the email failure, got %d", chat.callCount())
	}
	if _, err := module.Store.FindLeadByEmail(context.Background(), "jane@example.com"); err != nil {
		t.Fatalf("record must still be persisted: %v", err)
	}
}

func TestSubmitLeadBothNotifierFailuresStillSuccess(t *testing.T) {
	module, email, chat := newTestModule(true)
	email.fail = true
	chat.fail = true

	_, err := module.Handler.SubmitLeadHandler(context.Background(), "203.0.113.9", "agent", submitRequest())
	if err != nil {
		t.Fatalf("notifier failures must not fail the submission, got %v", err)
	}
	if email.callCount() != 1 || chat.callCount() != 1 {
		t.Fatalf("both notifiers must still be invoked, got email=%d chat=%d", email.callCount(), chat.callCount())
	}
}
