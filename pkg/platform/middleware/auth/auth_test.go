package auth

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	id "unitgate/pkg/domain"
	"unitgate/pkg/requestcontext"
)

const (
	testUserID     = "550e8400-e29b-41d4-a716-446655440001"
	testBuildingID = "550e8400-e29b-41d4-a716-446655440010"
)

type MockTokenValidator struct {
	mock.Mock
}

func (m *MockTokenValidator) ValidateToken(tokenString string) (*ActorClaims, error) {
	args := m.Called(tokenString)
	if claims := args.Get(0); claims != nil {
		return claims.(*ActorClaims), args.Error(1)
	}
	return nil, args.Error(1)
}

type RequireAuthSuite struct {
	suite.Suite
	validator *MockTokenValidator
	handler   http.Handler
	actor     id.Actor
	reached   bool
}

func TestRequireAuthSuite(t *testing.T) {
	suite.Run(t, new(RequireAuthSuite))
}

func (s *RequireAuthSuite) SetupTest() {
	s.validator = new(MockTokenValidator)
	s.reached = false
	s.actor = id.Actor{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.handler = RequireAuth(s.validator, logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.reached = true
		s.actor, _ = requestcontext.Actor(r.Context())
		w.WriteHeader(http.StatusOK)
	}))
}

func (s *RequireAuthSuite) serve(header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/membership/list", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	return w
}

func (s *RequireAuthSuite) TestValidTokenPopulatesActor() {
	s.validator.On("ValidateToken", "good").Return(&ActorClaims{
		UserID:           testUserID,
		Phone:            "+98 912 000 1111",
		FullName:         "Sara Manager",
		ManagedBuildings: []string{testBuildingID},
	}, nil)

	w := s.serve("Bearer good")

	s.Equal(http.StatusOK, w.Code)
	s.True(s.reached)
	s.Equal(testUserID, s.actor.UserID.String())
	s.Equal("09120001111", s.actor.Phone)
	building, _ := id.ParseBuildingID(testBuildingID)
	s.True(s.actor.Manages(building))
}

func (s *RequireAuthSuite) TestMissingHeader() {
	w := s.serve("")
	s.Equal(http.StatusUnauthorized, w.Code)
	s.False(s.reached)
	s.validator.AssertNotCalled(s.T(), "ValidateToken", mock.Anything)
}

func (s *RequireAuthSuite) TestNonBearerScheme() {
	w := s.serve("Basic abc")
	s.Equal(http.StatusUnauthorized, w.Code)
	s.False(s.reached)
}

func (s *RequireAuthSuite) TestInvalidToken() {
	s.validator.On("ValidateToken", "bad").Return(nil, errors.New("token expired"))
	w := s.serve("Bearer bad")
	s.Equal(http.StatusUnauthorized, w.Code)
	s.Contains(w.Body.String(), "Invalid or expired token")
	s.False(s.reached)
}

func (s *RequireAuthSuite) TestMalformedClaims() {
	s.Run("bad user id", func() {
		s.SetupTest()
		s.validator.On("ValidateToken", "t").Return(&ActorClaims{UserID: "nope", Phone: "09120001111"}, nil)
		s.Equal(http.StatusUnauthorized, s.serve("Bearer t").Code)
		s.False(s.reached)
	})
	s.Run("missing phone", func() {
		s.SetupTest()
		s.validator.On("ValidateToken", "t").Return(&ActorClaims{UserID: testUserID}, nil)
		s.Equal(http.StatusUnauthorized, s.serve("Bearer t").Code)
		s.False(s.reached)
	})
	s.Run("bad managed building", func() {
		s.SetupTest()
		s.validator.On("ValidateToken", "t").Return(&ActorClaims{
			UserID: testUserID, Phone: "09120001111", ManagedBuildings: []string{"x"},
		}, nil)
		s.Equal(http.StatusUnauthorized, s.serve("Bearer t").Code)
		s.False(s.reached)
	})
}

func TestOptionalAuth(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	validator := new(MockTokenValidator)
	validator.On("ValidateToken", "bad").Return(nil, errors.New("token expired"))

	var hasActor bool
	h := OptionalAuth(validator, logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hasActor = requestcontext.Actor(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("anonymous passes through", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/invite-links/abc", nil))
		if w.Code != http.StatusOK || hasActor {
			t.Fatalf("expected anonymous 200, got %d actor=%v", w.Code, hasActor)
		}
	})

	t.Run("invalid token still rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/invite-links/abc", nil)
		req.Header.Set("Authorization", "Bearer bad")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", w.Code)
		}
	})
}
