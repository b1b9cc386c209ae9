package alert

import (
	"context"
	"errors"
	"fmt"

	"github.com/twilio/twilio-go"
	twclient "github.com/twilio/twilio-go/client"
	api "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/tonypeng1/moomoo/internal/resilience"
)

// TwilioTransport sends SMS through the Twilio REST API. Calls run
// inside a circuit breaker so a dead provider fails fast instead of
// holding every alerting episode through a full retry cycle.
type TwilioTransport struct {
	client  *twilio.RestClient
	from    string
	to      string
	breaker *resilience.Breaker
	retry   resilience.RetryConfig
}

// NewTwilioTransport builds a transport from account credentials.
// Numbers must be in E.164 form; the from number must be
// SMS-enabled on the account.
func NewTwilioTransport(accountSID, authToken, from, to string) *TwilioTransport {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	cfg := resilience.SMSRetryConfig()
	cfg.IsRetryable = isRetryableTwilio
	return &TwilioTransport{
		client:  client,
		from:    from,
		to:      to,
		breaker: resilience.New(resilience.DefaultConfig()),
		retry:   cfg,
	}
}

// Send delivers one message, retrying transient provider failures.
func (t *TwilioTransport) Send(ctx context.Context, message string) error {
	err := t.breaker.Execute(func() error {
		return resilience.Retry(ctx, t.retry, func() error {
			params := &api.CreateMessageParams{}
			params.SetTo(t.to)
			params.SetFrom(t.from)
			params.SetBody(message)
			_, err := t.client.Api.CreateMessage(params)
			return err
		})
	})
	if err != nil {
		return fmt.Errorf("twilio send: %w", err)
	}
	return nil
}

// isRetryableTwilio retries rate limiting and provider-side errors.
// Client errors (bad number, auth failure) will not heal on retry.
func isRetryableTwilio(err error) bool {
	var rest *twclient.TwilioRestError
	if errors.As(err, &rest) {
		return rest.Status == 429 || rest.Status >= 500
	}
	return resilience.IsRetryableTransport(err)
}
