package ws

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/pairsync/pairsync/internal/model"
	"github.com/pairsync/pairsync/internal/testutil"
)

type HubSuite struct {
	suite.Suite
	hub *Hub
}

func TestHubSuite(t *testing.T) {
	suite.Run(t, new(HubSuite))
}

func (s *HubSuite) SetupTest() {
	s.hub = NewHub(testutil.NopLogger())
}

// newTestClient builds a client without a connection; hub delivery only
// touches the send channel.
func (s *HubSuite) newTestClient(id model.ProfileID) *Client {
	return newClient(s.hub, nil, id, testutil.NopLogger())
}

func (s *HubSuite) receive(c *Client) Envelope {
	select {
	case msg, ok := <-c.send:
		s.Require().True(ok, "send channel closed")
		var env Envelope
		s.Require().NoError(json.Unmarshal(msg, &env))
		return env
	case <-time.After(time.Second):
		s.Require().FailNow("no message received")
		return Envelope{}
	}
}

func (s *HubSuite) assertEmpty(c *Client) {
	select {
	case msg := <-c.send:
		s.Require().FailNowf("unexpected message", "%s", msg)
	default:
	}
}

func (s *HubSuite) TestRegisterAndCount() {
	s.Equal(0, s.hub.ClientCount())

	c := s.newTestClient("alice")
	s.hub.Register(c)
	s.Equal(1, s.hub.ClientCount())

	s.hub.Unregister(c)
	s.Equal(0, s.hub.ClientCount())
}

func (s *HubSuite) TestBroadcastReachesAllClients() {
	a := s.newTestClient("alice")
	b := s.newTestClient("bob")
	s.hub.Register(a)
	s.hub.Register(b)

	s.hub.Broadcast(model.EventNewMessage, "hello")

	for _, c := range []*Client{a, b} {
		env := s.receive(c)
		s.Equal(model.EventNewMessage, env.Event)

		var text string
		s.Require().NoError(json.Unmarshal(env.Data, &text))
		s.Equal("hello", text)
	}
}

func (s *HubSuite) TestBroadcastExceptSkipsSender() {
	a := s.newTestClient("alice")
	b := s.newTestClient("bob")
	s.hub.Register(a)
	s.hub.Register(b)

	s.hub.BroadcastExcept(a, model.EventRevealNotification, model.RevealNotification{
		Username: "alice",
		Item:     "jump",
	})

	env := s.receive(b)
	s.Equal(model.EventRevealNotification, env.Event)
	s.assertEmpty(a)
}

func (s *HubSuite) TestSendToTargetsOneClient() {
	a := s.newTestClient("alice")
	b := s.newTestClient("bob")
	s.hub.Register(a)
	s.hub.Register(b)

	s.hub.SendTo(a, model.EventRevealResult, "jump")

	env := s.receive(a)
	s.Equal(model.EventRevealResult, env.Event)
	s.assertEmpty(b)
}

func (s *HubSuite) TestSendToUnregisteredClientIsNoOp() {
	c := s.newTestClient("alice")

	// Never registered; must not panic or deliver
	s.hub.SendTo(c, model.EventRevealResult, "jump")
	s.assertEmpty(c)
}

func (s *HubSuite) TestUnregisterClosesSendChannel() {
	c := s.newTestClient("alice")
	s.hub.Register(c)
	s.hub.Unregister(c)

	_, ok := <-c.send
	s.False(ok)
}

func (s *HubSuite) TestUnregisterTwiceIsSafe() {
	c := s.newTestClient("alice")
	s.hub.Register(c)
	s.hub.Unregister(c)
	s.hub.Unregister(c)
}

func (s *HubSuite) TestEventWithoutPayloadHasNoData() {
	c := s.newTestClient("alice")
	s.hub.Register(c)

	s.hub.Broadcast(model.EventClearChat, nil)

	env := s.receive(c)
	s.Equal(model.EventClearChat, env.Event)
	s.Nil(env.Data)
}

func (s *HubSuite) TestCloseDisconnectsAllClients() {
	a := s.newTestClient("alice")
	b := s.newTestClient("bob")
	s.hub.Register(a)
	s.hub.Register(b)

	s.hub.Close()

	s.Equal(0, s.hub.ClientCount())
	_, ok := <-a.send
	s.False(ok)
	_, ok = <-b.send
	s.False(ok)
}
