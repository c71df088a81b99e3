package email

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capture struct {
	mu   sync.Mutex
	msgs []string
	rcpt [][]string
}

func (c *capture) send(_ *Config, recipients []string, msg []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rcpt = append(c.rcpt, recipients)
	c.msgs = append(c.msgs, string(msg))
	return nil
}

func (c *capture) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.msgs)
}

func newTestService(host string) (*Service, *capture) {
	s := NewService(&Config{Host: host, Port: 587, From: "noreply@projecthub.io", FromName: "ProjectHub"})
	c := &capture{}
	s.transport = c.send
	return s, c
}

func TestSendSkippedWithoutHost(t *testing.T) {
	s, c := newTestService("")
	require.NoError(t, s.Send(&Email{To: []string{"a@b.io"}, Subject: "x", Body: "y"}))
	assert.Zero(t, c.count())
	assert.False(t, s.Enabled())
}

func TestSendContactMessage(t *testing.T) {
	s, c := newTestService("smtp.example.com")

	err := s.SendContactMessage("support@projecthub.io", ContactMessageData{
		Name: "Ada", Email: "ada@example.com", Message: "<b>hello</b>",
	})
	require.NoError(t, err)
	require.Equal(t, 1, c.count())

	msg := c.msgs[0]
	assert.Equal(t, []string{"support@projecthub.io"}, c.rcpt[0])
	assert.Contains(t, msg, "Reply-To: ada@example.com\r\n")
	assert.Contains(t, msg, "Subject: [ProjectHub] Contact message from Ada")
	assert.Contains(t, msg, "&lt;b&gt;hello&lt;/b&gt;")
}

func TestSendPricingDecision(t *testing.T) {
	s, c := newTestService("smtp.example.com")

	require.NoError(t, s.SendPricingDecision("u@example.com", PricingDecisionData{
		PlanName: "Premium", PlanPrice: "$49/mo", Approved: true, Notes: "welcome",
	}))
	msg := c.msgs[0]
	assert.Contains(t, msg, "was approved")
	assert.Contains(t, msg, "has been approved")
	assert.Contains(t, msg, "welcome")
}

func TestUnknownTemplate(t *testing.T) {
	s, _ := newTestService("smtp.example.com")
	err := s.SendWithTemplate([]string{"a@b.io"}, "x", "missing", nil)
	assert.Error(t, err)
}

func TestQueueDelivers(t *testing.T) {
	s, c := newTestService("smtp.example.com")
	q := NewEmailQueue(s, 2)
	defer q.Stop()

	q.Enqueue([]string{"u@example.com"}, "decision", "pricing_decision", PricingDecisionData{PlanName: "Basic"})

	assert.Eventually(t, func() bool { return c.count() == 1 }, time.Second, 10*time.Millisecond)
	assert.True(t, strings.Contains(c.msgs[0], "has been rejected"))
}
