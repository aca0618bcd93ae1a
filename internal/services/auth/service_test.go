package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/letterstacks/internal/dependencies/mocks"
	"github.com/mcoot/letterstacks/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	clock   *mocks.MockClock
	service *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.clock = mocks.NewMockClock(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	svc, err := New(s.clock, Config{Secret: []byte("test-secret"), TokenTTL: time.Hour, Logger: testutil.NopLogger()})
	s.Require().NoError(err)
	s.service = svc
}

func (s *ServiceSuite) TestIssueAndValidate() {
	token, expires, err := s.service.Issue("SESSION00001", "alice")
	s.Require().NoError(err)
	s.Equal(s.clock.Now().Add(time.Hour), expires)

	claims, err := s.service.Validate(token)
	s.Require().NoError(err)
	s.Equal("SESSION00001", claims.SessionID)
	s.Equal("alice", claims.Profile)
	s.Equal(Issuer, claims.Issuer)
}

func (s *ServiceSuite) TestExpiredToken() {
	token, _, err := s.service.Issue("SESSION00001", "alice")
	s.Require().NoError(err)

	s.clock.Advance(2 * time.Hour)

	_, err = s.service.Validate(token)
	s.ErrorIs(err, ErrInvalidToken)
}

func (s *ServiceSuite) TestTokenFromAnotherSecret() {
	other, err := New(s.clock, Config{Secret: []byte("other"), Logger: testutil.NopLogger()})
	s.Require().NoError(err)
	token, _, err := other.Issue("SESSION00001", "alice")
	s.Require().NoError(err)

	_, err = s.service.Validate(token)
	s.ErrorIs(err, ErrInvalidToken)
}

func (s *ServiceSuite) TestTokenWithoutSessionID() {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			ExpiresAt: jwt.NewNumericDate(s.clock.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte("test-secret"))
	s.Require().NoError(err)

	_, err = s.service.Validate(signed)
	s.ErrorIs(err, ErrInvalidToken)
}

func (s *ServiceSuite) TestGarbage() {
	_, err := s.service.Validate("not-a-token")
	s.ErrorIs(err, ErrInvalidToken)
}

func (s *ServiceSuite) TestAuthorizeChecksSession() {
	token, _, err := s.service.Issue("SESSION00001", "alice")
	s.Require().NoError(err)

	_, err = s.service.Authorize(token, "SESSION00001")
	s.NoError(err)

	_, err = s.service.Authorize(token, "SESSION00002")
	s.ErrorIs(err, ErrInvalidToken)
}

func (s *ServiceSuite) TestRandomSecretWhenUnset() {
	svc, err := New(s.clock, Config{Logger: testutil.NopLogger()})
	s.Require().NoError(err)

	token, _, err := svc.Issue("SESSION00001", "")
	s.Require().NoError(err)
	_, err = svc.Validate(token)
	s.NoError(err)
	_, err = s.service.Validate(token)
	s.ErrorIs(err, ErrInvalidToken)
}
