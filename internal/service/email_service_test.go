package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mailrelay/mailrelay/internal/config"
	"github.com/mailrelay/mailrelay/internal/email"
	"github.com/mailrelay/mailrelay/internal/logger"
	"github.com/mailrelay/mailrelay/internal/model"
)

// MockSender is a mock implementation of email.Sender.
type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(ctx context.Context, msg email.TemplateMessage) (*email.Receipt, error) {
	args := m.Called(ctx, msg)
	receipt, _ := args.Get(0).(*email.Receipt)
	return receipt, args.Error(1)
}

func testConfig(apiKey string) *config.Config {
	return &config.Config{
		Email: config.EmailConfig{
			Provider: email.ProviderSendGrid,
			From:     config.SenderConfig{Address: "your-email@example.com", Name: "Your Name"},
			SendGrid: config.SendGridConfig{APIKey: apiKey},
		},
	}
}

func testRequest() model.SendEmailRequest {
	return model.SendEmailRequest{
		To:           "a@b.com",
		TemplateID:   "T1",
		TemplateData: map[string]string{"name": "A"},
	}
}

// factoryFor returns a SenderFactory that hands out sender and records each API key it was built with.
func factoryFor(sender email.Sender, keys *[]string) SenderFactory {
	return func(cfg config.EmailConfig, _ *logger.Logger) (email.Sender, error) {
		*keys = append(*keys, cfg.SendGrid.APIKey)
		return sender, nil
	}
}

func TestEmailService_SendTemplateEmail_Success(t *testing.T) {
	sender := &MockSender{}
	var keys []string
	svc := NewEmailServiceWithFactory(config.Static(testConfig("SG.key")), factoryFor(sender, &keys), logger.Nop())

	expected := email.TemplateMessage{
		From:         email.Address{Email: "your-email@example.com", Name: "Your Name"},
		To:           email.Address{Email: "a@b.com"},
		TemplateID:   "T1",
		TemplateData: map[string]string{"name": "A"},
	}
	sender.On("Send", mock.Anything, expected).
		Return(&email.Receipt{StatusCode: http.StatusAccepted, MessageID: "m-1"}, nil).
		Once()

	err := svc.SendTemplateEmail(context.Background(), testRequest())
	require.NoError(t, err)

	sender.AssertExpectations(t)
	assert.Equal(t, []string{"SG.key"}, keys)
}

func TestEmailService_SendTemplateEmail_SenderIdentityIsFixed(t *testing.T) {
	sender := &MockSender{}
	var keys []string
	svc := NewEmailServiceWithFactory(config.Static(testConfig("SG.key")), factoryFor(sender, &keys), logger.Nop())

	var froms []email.Address
	sender.On("Send", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			froms = append(froms, args.Get(1).(email.TemplateMessage).From)
		}).
		Return(&email.Receipt{StatusCode: http.StatusAccepted}, nil)

	requests := []model.SendEmailRequest{
		testRequest(),
		{To: "other@example.com", TemplateID: "T2"},
		{To: "your-email@example.com", TemplateID: "T3", TemplateData: map[string]string{"from": "x@y.z"}},
	}
	for _, req := range requests {
		require.NoError(t, svc.SendTemplateEmail(context.Background(), req))
	}

	require.Len(t, froms, len(requests))
	for _, from := range froms {
		assert.Equal(t, email.Address{Email: "your-email@example.com", Name: "Your Name"}, from)
	}
}

func TestEmailService_SendTemplateEmail_ReadsCredentialPerCall(t *testing.T) {
	sender := &MockSender{}
	var keys []string
	store := config.Static(testConfig("SG.first"))
	svc := NewEmailServiceWithFactory(store, factoryFor(sender, &keys), logger.Nop())

	sender.On("Send", mock.Anything, mock.Anything).
		Return(&email.Receipt{StatusCode: http.StatusAccepted}, nil)

	require.NoError(t, svc.SendTemplateEmail(context.Background(), testRequest()))

	store.Set(testConfig("SG.rotated"))
	require.NoError(t, svc.SendTemplateEmail(context.Background(), testRequest()))

	assert.Equal(t, []string{"SG.first", "SG.rotated"}, keys)
	sender.AssertNumberOfCalls(t, "Send", 2)
}

func TestEmailService_SendTemplateEmail_SendFailure(t *testing.T) {
	sender := &MockSender{}
	var keys []string
	svc := NewEmailServiceWithFactory(config.Static(testConfig("SG.key")), factoryFor(sender, &keys), logger.Nop())

	rejected := &email.ProviderError{Provider: "sendgrid", StatusCode: http.StatusBadRequest}
	sender.On("Send", mock.Anything, mock.Anything).Return(nil, rejected).Once()

	err := svc.SendTemplateEmail(context.Background(), testRequest())
	require.Error(t, err)
	assert.ErrorIs(t, err, rejected)
	assert.Contains(t, err.Error(), "failed to send email")

	sender.AssertNumberOfCalls(t, "Send", 1)
}

func TestEmailService_SendTemplateEmail_FactoryFailure(t *testing.T) {
	factory := func(config.EmailConfig, *logger.Logger) (email.Sender, error) {
		return nil, email.ErrMissingAPIKey
	}
	svc := NewEmailServiceWithFactory(config.Static(testConfig("")), factory, logger.Nop())

	err := svc.SendTemplateEmail(context.Background(), testRequest())
	require.ErrorIs(t, err, email.ErrMissingAPIKey)
	assert.Contains(t, err.Error(), "failed to create email sender")
}

func TestEmailService_SendTemplateEmail_PassesContext(t *testing.T) {
	sender := &MockSender{}
	var keys []string
	svc := NewEmailServiceWithFactory(config.Static(testConfig("SG.key")), factoryFor(sender, &keys), logger.Nop())

	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "marker")

	sender.On("Send", mock.MatchedBy(func(c context.Context) bool {
		return c.Value(key{}) == "marker"
	}), mock.Anything).Return(nil, errors.New("boom")).Once()

	require.Error(t, svc.SendTemplateEmail(ctx, testRequest()))
	sender.AssertExpectations(t)
}

func TestEmailService_SendTemplateEmail_SendGridEndToEnd(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	cfg := testConfig("SG.live")
	cfg.Email.SendGrid.BaseURL = srv.URL
	svc := NewEmailService(config.Static(cfg), logger.Nop())

	require.NoError(t, svc.SendTemplateEmail(context.Background(), testRequest()))
	assert.Equal(t, "Bearer SG.live", auth)
}

func TestEmailService_Ready(t *testing.T) {
	svc := NewEmailService(config.Static(testConfig("")), logger.Nop())
	assert.ErrorIs(t, svc.Ready(), email.ErrMissingAPIKey)

	svc = NewEmailService(config.Static(testConfig("SG.key")), logger.Nop())
	assert.NoError(t, svc.Ready())
}
