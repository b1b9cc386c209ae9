package alert

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	twclient "github.com/twilio/twilio-go/client"

	"github.com/tonypeng1/moomoo/internal/aggregate"
	"github.com/tonypeng1/moomoo/internal/episode"
	"github.com/tonypeng1/moomoo/internal/recognize"
)

type fakeTransport struct {
	calls    int
	lastBody string
	err      error
}

func (f *fakeTransport) Send(_ context.Context, message string) error {
	f.calls++
	f.lastBody = message
	return f.err
}

type fakeNotifier struct {
	calls     int
	lastTitle string
	lastBody  string
	err       error
}

func (f *fakeNotifier) Notify(title, body string) error {
	f.calls++
	f.lastTitle = title
	f.lastBody = body
	return f.err
}

func alertEpisode() *episode.Episode {
	return &episode.Episode{
		Alert: true,
		Findings: []aggregate.Finding{
			{
				Term:       "卖出",
				Confidence: 1.0,
				Methods: []aggregate.Method{
					{Kind: recognize.KindText, Variant: "red-channel", Confidence: 1.0},
					{Kind: recognize.KindTemplate, Variant: "luma", Confidence: 0.81},
				},
			},
		},
	}
}

func TestDispatchFiresEachChannelOnce(t *testing.T) {
	transport := &fakeTransport{}
	notifier := &fakeNotifier{}
	d := NewDispatcher(transport, notifier, 0)

	out := d.dispatch(context.Background(), alertEpisode())

	assert.Equal(t, 1, transport.calls)
	assert.Equal(t, 1, notifier.calls)
	assert.True(t, out.SMSSent)
	assert.True(t, out.Notified)
	assert.Equal(t, transport.lastBody, notifier.lastBody, "both channels carry the same summary")
	assert.Equal(t, "moomoo signal", notifier.lastTitle)
}

func TestDispatchChannelsIndependent(t *testing.T) {
	transport := &fakeTransport{err: errors.New("provider down")}
	notifier := &fakeNotifier{}
	d := NewDispatcher(transport, notifier, 0)

	out := d.dispatch(context.Background(), alertEpisode())

	assert.False(t, out.SMSSent)
	assert.True(t, out.Notified, "SMS failure must not block the local notification")
	assert.Equal(t, 1, notifier.calls)
}

func TestDispatchNilChannelsSkipped(t *testing.T) {
	d := NewDispatcher(nil, nil, 0)
	out := d.dispatch(context.Background(), alertEpisode())
	assert.False(t, out.SMSSent)
	assert.False(t, out.Notified)
}

func TestSummaryContent(t *testing.T) {
	got := Summary(alertEpisode(), 0)

	require.True(t, strings.HasPrefix(got, "moomoo signal: 卖出"), "summary = %q", got)
	assert.Contains(t, got, "text-recognition/red-channel")
	assert.Contains(t, got, "template-match/luma")
}

func TestSummaryTruncatesOnRuneBoundary(t *testing.T) {
	ep := &episode.Episode{
		Findings: []aggregate.Finding{{Term: strings.Repeat("卖出", 200), Confidence: 1.0}},
	}

	got := Summary(ep, 20)

	assert.Equal(t, 20, len([]rune(got)))
	for _, r := range got {
		assert.NotEqual(t, '�', r, "truncation must not split a multi-byte rune")
	}
}

func TestIsRetryableTwilio(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"rate limited", &twclient.TwilioRestError{Status: 429}, true},
		{"server error", &twclient.TwilioRestError{Status: 503}, true},
		{"bad request", &twclient.TwilioRestError{Status: 400}, false},
		{"unauthorized", &twclient.TwilioRestError{Status: 401}, false},
		{"cancelled", context.Canceled, false},
		{"unknown transport", errors.New("connection reset"), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, isRetryableTwilio(tc.err))
		})
	}
}
