package telegram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"leadgate/contexts/lead-capture/intake-service/domain/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func alertLead() entities.Lead {
	return entities.Lead{
		LeadID:        "4f9d2c81-aaaa-bbbb-cccc-111122223333",
		FullName:      "Jane Doe",
		Email:         "jane@example.com",
		Phone:         "555-0100",
		ContactMethod: "phone",
		Address:       "1 Main St",
		City:          "Austin",
		State:         "TX",
		ZipCode:       "78701",
		AgeConfirmed:  true,
		ClientIP:      "203.0.113.9",
		CreatedAt:     time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestAlertPostsFormattedMessage(t *testing.T) {
	var gotPath, gotChatID, gotText, gotParseMode string
	stub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, r.ParseForm())
		gotChatID = r.PostFormValue("chat_id")
		gotText = r.PostFormValue("text")
		gotParseMode = r.PostFormValue("parse_mode")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer stub.Close()

	alerter := NewAlerter("bot-token", "-100200300", nil).WithEndpoint(stub.URL)
	require.NoError(t, alerter.Alert(context.Background(), alertLead()))

	assert.Equal(t, "/botbot-token/sendMessage", gotPath)
	assert.Equal(t, "-100200300", gotChatID)
	assert.Equal(t, "HTML", gotParseMode)
	assert.Contains(t, gotText, "Jane Doe")
	assert.Contains(t, gotText, "jane@example.com")
	assert.Contains(t, gotText, "4F9D2C81")
	assert.Contains(t, gotText, "1 Main St, Austin, TX 78701")
	assert.Contains(t, gotText, "203.0.113.9")
}

func TestAlertEscapesSubmittedMarkup(t *testing.T) {
	var gotText string
	stub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotText = r.PostFormValue("text")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer stub.Close()

	lead := alertLead()
	lead.FullName = "<script>alert(1)</script>"
	lead.Address = "Main & 5th <b>Ave</b>"

	alerter := NewAlerter("bot-token", "chat", nil).WithEndpoint(stub.URL)
	require.NoError(t, alerter.Alert(context.Background(), lead))

	assert.Contains(t, gotText, "&lt;script&gt;alert(1)&lt;/script&gt;")
	assert.Contains(t, gotText, "Main &amp; 5th &lt;b&gt;Ave&lt;/b&gt;")
	assert.NotContains(t, gotText, "<script>")
	// Our own markup stays intact.
	assert.Contains(t, gotText, "<b>New lead</b>")
}

func TestAlertReportsNon200Status(t *testing.T) {
	stub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"ok":false,"description":"bot was blocked"}`))
	}))
	defer stub.Close()

	err := NewAlerter("bot-token", "chat", nil).WithEndpoint(stub.URL).Alert(context.Background(), alertLead())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestAlertRequiresCredentials(t *testing.T) {
	called := false
	stub := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		called = true
	}))
	defer stub.Close()

	assert.Error(t, NewAlerter("", "chat", nil).WithEndpoint(stub.URL).Alert(context.Background(), alertLead()))
	assert.Error(t, NewAlerter("token", "", nil).WithEndpoint(stub.URL).Alert(context.Background(), alertLead()))
	assert.False(t, called)
}

func TestAlertReportsAPILevelFailure(t *testing.T) {
	stub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"ok":false}`))
	}))
	defer stub.Close()

	err := NewAlerter("token", "chat", nil).WithEndpoint(stub.URL).Alert(context.Background(), alertLead())
	assert.Error(t, err)
}
