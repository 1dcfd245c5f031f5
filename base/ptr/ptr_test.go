package ptr

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type pointerSuite struct {
	suite.Suite
}

func TestPointerSuite(t *testing.T) {
	suite.Run(t, new(pointerSuite))
}

func (s *pointerSuite) TestInt32() {
	s.Equal(int32(4567), *Int32(4567))
	s.NotSame(Int32(1), Int32(1))
}

func (s *pointerSuite) TestInt32Value() {
	s.Equal(int32(20), Int32Value(nil, 20))
	s.Equal(int32(20), Int32Value(Int32(0), 20))
	s.Equal(int32(20), Int32Value(Int32(-3), 20))
	s.Equal(int32(5), Int32Value(Int32(5), 20))
}
