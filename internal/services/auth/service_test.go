package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/pairsync/pairsync/internal/dependencies/mocks"
	"github.com/pairsync/pairsync/internal/model"
	"github.com/pairsync/pairsync/internal/storage/memory"
	"github.com/pairsync/pairsync/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	clock   *mocks.MockClock
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	registry := Registry{
		"alice": "pw1",
		"bob":   "pw2",
	}
	s.service = New(registry, s.storage, s.clock, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *ServiceSuite) TestAuthenticateCreatesProfileOnFirstLogin() {
	profile, err := s.service.Authenticate(s.ctx, "alice", "pw1")
	s.Require().NoError(err)

	s.Equal(model.ProfileID("alice"), profile.ID)
	s.Equal("alice", profile.DisplayName)
	s.Empty(profile.Dares)
	s.Empty(profile.Truths)
	s.Equal(s.clock.Now(), profile.CreatedAt)
}

func (s *ServiceSuite) TestAuthenticatePersistsCreatedProfile() {
	_, err := s.service.Authenticate(s.ctx, "alice", "pw1")
	s.Require().NoError(err)

	stored, err := s.storage.GetProfile(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(model.ProfileID("alice"), stored.ID)
}

func (s *ServiceSuite) TestAuthenticateReturnsExistingProfile() {
	existing := &model.Profile{
		ID:          "alice",
		DisplayName: "Ali",
		Dares:       []model.Item{{ID: 1, Text: "jump"}},
		Truths:      []model.Item{},
	}
	s.Require().NoError(s.storage.SaveProfile(s.ctx, existing))

	profile, err := s.service.Authenticate(s.ctx, "alice", "pw1")
	s.Require().NoError(err)

	// Display data survives reconnects; the default name is only for
	// first logins.
	s.Equal("Ali", profile.DisplayName)
	s.Len(profile.Dares, 1)
}

func (s *ServiceSuite) TestAuthenticateFailsOnWrongPassword() {
	_, err := s.service.Authenticate(s.ctx, "alice", "wrong")
	s.ErrorIs(err, ErrInvalidCredentials)
}

func (s *ServiceSuite) TestAuthenticateFailsOnUnknownID() {
	_, err := s.service.Authenticate(s.ctx, "mallory", "pw1")
	s.ErrorIs(err, ErrInvalidCredentials)
}

func (s *ServiceSuite) TestAuthenticateFailsOnEmptyPassword() {
	_, err := s.service.Authenticate(s.ctx, "alice", "")
	s.ErrorIs(err, ErrInvalidCredentials)
}

func (s *ServiceSuite) TestFailedAuthenticationCreatesNoProfile() {
	_, err := s.service.Authenticate(s.ctx, "alice", "wrong")
	s.Require().Error(err)

	_, err = s.storage.GetProfile(s.ctx, "alice")
	s.ErrorIs(err, model.ErrProfileNotFound)
}

// ParseRegistry tests

func (s *ServiceSuite) TestParseRegistry() {
	registry, err := ParseRegistry("alice:pw1,bob:pw2")
	s.Require().NoError(err)
	s.Len(registry, 2)
	s.Equal("pw1", registry["alice"])
	s.Equal("pw2", registry["bob"])
}

func (s *ServiceSuite) TestParseRegistryTrimsWhitespace() {
	registry, err := ParseRegistry(" alice:pw1 , bob:pw2 ")
	s.Require().NoError(err)
	s.Len(registry, 2)
}

func (s *ServiceSuite) TestParseRegistryRejectsMissingPassword() {
	_, err := ParseRegistry("alice")
	s.Error(err)
}

func (s *ServiceSuite) TestParseRegistryRejectsEmpty() {
	_, err := ParseRegistry("")
	s.Error(err)
}
