package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
)

// DomainErrorsSuite covers the error primitives every service boundary relies on:
// code preservation through Wrap and code-based matching through errors.Is.
type DomainErrorsSuite struct {
	suite.Suite
}

func TestDomainErrorsSuite(t *testing.T) {
	suite.Run(t, new(DomainErrorsSuite))
}

func (s *DomainErrorsSuite) TestErrorString() {
	s.Run("message wins over code", func() {
		err := &Error{Code: CodeConflict, Message: "request is no longer pending"}
		s.Equal("request is no longer pending", err.Error())
	})

	s.Run("code is used when message is empty", func() {
		err := &Error{Code: CodeOrdering}
		s.Equal("ordering_violation", err.Error())
	})
}

func (s *DomainErrorsSuite) TestUnwrap() {
	inner := errors.New("directory timeout")
	err := &Error{Code: CodeUnavailable, Message: "unit directory unavailable", Err: inner}

	s.Equal(inner, errors.Unwrap(err))
	s.Nil((&Error{Code: CodeNotFound}).Unwrap())
}

func (s *DomainErrorsSuite) TestIsMatchesByCode() {
	s.Run("same code different message", func() {
		s.True(errors.Is(New(CodeAlreadyUsed, "invite link already used"), &Error{Code: CodeAlreadyUsed}))
	})

	s.Run("different code", func() {
		s.False(errors.Is(New(CodeExpired, "expired"), &Error{Code: CodeAlreadyUsed}))
	})

	s.Run("plain error never matches", func() {
		s.False((&Error{Code: CodeNotFound}).Is(errors.New("not found")))
	})

	s.Run("matches through a fmt wrap chain", func() {
		err := fmt.Errorf("approve: %w", New(CodeConflict, "stale status"))
		s.True(errors.Is(err, &Error{Code: CodeConflict}))
	})
}

func (s *DomainErrorsSuite) TestWrap() {
	s.Run("keeps the inner domain code", func() {
		wrapped := Wrap(New(CodeNotFound, "request not found"), CodeInternal, "load request")
		s.True(HasCode(wrapped, CodeNotFound))
		s.Equal("load request", wrapped.Error())
	})

	s.Run("applies the given code to foreign errors", func() {
		root := errors.New("connection reset")
		wrapped := Wrap(root, CodeInternal, "update request")
		s.True(HasCode(wrapped, CodeInternal))
		s.True(errors.Is(wrapped, root))
	})
}

func (s *DomainErrorsSuite) TestHasCodeAndCodeOf() {
	s.False(HasCode(nil, CodeNotFound))
	s.False(HasCode(errors.New("plain"), CodeNotFound))
	s.True(HasCode(New(CodeOrdering, "not the oldest suggestion"), CodeOrdering))

	s.Equal(CodeExpired, CodeOf(fmt.Errorf("use link: %w", New(CodeExpired, "link expired"))))
	s.Equal(CodeInternal, CodeOf(errors.New("boom")))
}
