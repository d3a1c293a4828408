package reveal

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/pairsync/pairsync/internal/dependencies/mocks"
	"github.com/pairsync/pairsync/internal/dependencies/random"
	"github.com/pairsync/pairsync/internal/model"
	"github.com/pairsync/pairsync/internal/storage/memory"
	"github.com/pairsync/pairsync/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	random  *mocks.MockRandom
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.random = mocks.NewMockRandom()
	s.service = New(s.storage, s.random, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *ServiceSuite) saveProfile(id model.ProfileID, name string, dares, truths []string) {
	profile := &model.Profile{
		ID:          id,
		DisplayName: name,
		Dares:       []model.Item{},
		Truths:      []model.Item{},
	}
	for i, text := range dares {
		profile.Dares = append(profile.Dares, model.Item{ID: int64(i), Text: text})
	}
	for i, text := range truths {
		profile.Truths = append(profile.Truths, model.Item{ID: int64(100 + i), Text: text})
	}
	s.Require().NoError(s.storage.SaveProfile(s.ctx, profile))
}

func (s *ServiceSuite) TestRevealEmptyPoolReturnsSentinel() {
	s.saveProfile("alice", "Alice", []string{"jump"}, nil)

	// Only alice has items, and alice is the requester
	result, err := s.service.Reveal(s.ctx, "alice")
	s.Require().NoError(err)

	s.True(result.Empty)
	s.Equal(NoItemsSentinel, result.Text)
}

func (s *ServiceSuite) TestRevealNoProfilesReturnsSentinel() {
	result, err := s.service.Reveal(s.ctx, "alice")
	s.Require().NoError(err)
	s.True(result.Empty)
}

func (s *ServiceSuite) TestRevealExcludesRequesterItems() {
	s.saveProfile("alice", "Alice", []string{"own dare"}, []string{"own truth"})
	s.saveProfile("bob", "Bob", []string{"bob dare"}, nil)

	// The pool holds only bob's single item; alice's own never qualify
	s.random.QueueIntn(0)
	result, err := s.service.Reveal(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal("bob dare", result.Text)
	s.Equal("Bob", result.OwnerUsername)
}

func (s *ServiceSuite) TestRevealPoolIsFlatAcrossOwnersAndKinds() {
	// Profiles list in id order: bob before carol. Pool layout is
	// bob.Dares, bob.Truths, carol.Dares, carol.Truths flattened.
	s.saveProfile("alice", "Alice", []string{"never drawn"}, nil)
	s.saveProfile("bob", "Bob", []string{"b-dare"}, []string{"b-truth"})
	s.saveProfile("carol", "Carol", []string{"c-dare"}, []string{"c-truth"})

	expected := []struct {
		text  string
		owner string
	}{
		{"b-dare", "Bob"},
		{"b-truth", "Bob"},
		{"c-dare", "Carol"},
		{"c-truth", "Carol"},
	}

	for i, want := range expected {
		s.random.Reset()
		s.random.QueueIntn(i)
		result, err := s.service.Reveal(s.ctx, "alice")
		s.Require().NoError(err)
		s.Equal(want.text, result.Text)
		s.Equal(want.owner, result.OwnerUsername)
	}
}

func (s *ServiceSuite) TestRepeatedRevealsDrawWithReplacement() {
	s.saveProfile("bob", "Bob", []string{"only"}, nil)

	for i := 0; i < 3; i++ {
		s.random.Reset()
		s.random.QueueIntn(0)
		result, err := s.service.Reveal(s.ctx, "alice")
		s.Require().NoError(err)
		s.Equal("only", result.Text)
	}
}

func (s *ServiceSuite) TestRevealSamplingIsUniformAcrossItems() {
	// Three items split unevenly across two other participants; flat
	// sampling gives each item ~1/3 regardless of owner.
	s.saveProfile("bob", "Bob", []string{"b1", "b2"}, nil)
	s.saveProfile("carol", "Carol", nil, []string{"c1"})

	service := New(s.storage, random.New(), testutil.NopLogger())

	const draws = 3000
	counts := make(map[string]int)
	for i := 0; i < draws; i++ {
		result, err := service.Reveal(s.ctx, "alice")
		s.Require().NoError(err)
		counts[result.Text]++
	}

	s.Len(counts, 3)
	for text, count := range counts {
		freq := float64(count) / draws
		s.InDelta(1.0/3.0, freq, 0.05, "item %s drawn with frequency %f", text, freq)
	}
}
