package ctx

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/x-xyz/treemarket/base/log"
)

type testsuite struct {
	suite.Suite
}

func Test(t *testing.T) {
	suite.Run(t, new(testsuite))
}

func (ts *testsuite) TestWithValue() {
	c := WithValue(Background(), "caller", "0xabc")
	ts.Equal("0xabc", c.Value("caller"))
}

func (ts *testsuite) TestWithValues() {
	c := WithValues(Background(), map[string]interface{}{
		"contract": "0x1",
		"tokenId":  "7",
	})
	ts.Equal("0x1", c.Value("contract"))
	ts.Equal("7", c.Value("tokenId"))
}

func (ts *testsuite) TestWithFieldsKeepsValues() {
	c := WithValue(Background(), "a", 1)
	c = WithFields(c, log.Fields{"b": 2})
	ts.Equal(1, c.Value("a"))
	ts.Nil(c.Value("b"))
}

func (ts *testsuite) TestWithCancel() {
	c, cancel := WithCancel(Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	select {
	case <-c.Done():
	case <-time.After(time.Second):
		ts.Fail("context not cancelled")
	}
	ts.Equal(context.Canceled, c.Err())
}

func (ts *testsuite) TestTimeout() {
	c, cancel := WithTimeout(Background(), 10*time.Millisecond)
	defer cancel()
	<-c.Done()
	ts.Equal(context.DeadlineExceeded, c.Err())
}

func (ts *testsuite) TestDetachOutlivesParent() {
	parent, cancel := WithCancel(WithValue(Background(), "req", "r1"))
	detached := Detach(parent)
	cancel()
	ts.Error(parent.Err())
	ts.NoError(detached.Err())
}
