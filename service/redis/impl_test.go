package redis

import (
	"testing"
	"time"

	"github.com/gomodule/redigo/redis"
	"github.com/stretchr/testify/suite"

	"github.com/x-xyz/treemarket/base/ctx"
)

// memConn answers the handful of commands the service issues
type memConn struct {
	vals     map[string][]byte
	commands []string
}

func (m *memConn) Close() error { return nil }
func (m *memConn) Err() error   { return nil }
func (m *memConn) Flush() error { return nil }

func (m *memConn) Send(commandName string, args ...interface{}) error {
	return nil
}

func (m *memConn) Receive() (interface{}, error) {
	return nil, nil
}

func (m *memConn) Do(commandName string, args ...interface{}) (interface{}, error) {
	if commandName == "" {
		return nil, nil
	}
	m.commands = append(m.commands, commandName)
	switch commandName {
	case "GET":
		v, ok := m.vals[args[0].(string)]
		if !ok {
			return nil, nil
		}
		return v, nil
	case "SET":
		key := args[0].(string)
		for _, opt := range args[2:] {
			if opt == "NX" {
				if _, ok := m.vals[key]; ok {
					return nil, nil
				}
			}
		}
		m.vals[key] = args[1].([]byte)
		return "OK", nil
	case "DEL":
		n := int64(0)
		for _, k := range args {
			if _, ok := m.vals[k.(string)]; ok {
				delete(m.vals, k.(string))
				n++
			}
		}
		return n, nil
	case "PTTL":
		if _, ok := m.vals[args[0].(string)]; !ok {
			return int64(-2), nil
		}
		return int64(-1), nil
	}
	return nil, redis.Error("ERR unknown command " + commandName)
}

type redisSuite struct {
	suite.Suite

	conn *memConn
	im   Service
}

func TestRedisSuite(t *testing.T) {
	suite.Run(t, new(redisSuite))
}

func (s *redisSuite) SetupTest() {
	s.conn = &memConn{vals: map[string][]byte{}}
	pool := &redis.Pool{
		MaxIdle: 1,
		Dial:    func() (redis.Conn, error) { return s.conn, nil },
	}
	s.im = New("test", pool)
}

func (s *redisSuite) TestSetGetDel() {
	c := ctx.Background()
	_, err := s.im.Get(c, "nonce:0xa1")
	s.Equal(ErrNotFound, err)

	s.NoError(s.im.Set(c, "nonce:0xa1", []byte("abc"), time.Minute))
	v, err := s.im.Get(c, "nonce:0xa1")
	s.NoError(err)
	s.Equal([]byte("abc"), v)

	ttl, err := s.im.TTL(c, "nonce:0xa1")
	s.NoError(err)
	s.Equal(Forever, ttl)

	n, err := s.im.Del(c, "nonce:0xa1", "nonce:0xa2")
	s.NoError(err)
	s.Equal(1, n)
	_, err = s.im.TTL(c, "nonce:0xa1")
	s.Equal(ErrNotFound, err)

	s.Equal([]string{"GET", "SET", "GET", "PTTL", "DEL", "PTTL"}, s.conn.commands)
}

func (s *redisSuite) TestSetNX() {
	c := ctx.Background()
	ok, err := s.im.SetNX(c, "lock:k", []byte("t1"), time.Second)
	s.NoError(err)
	s.True(ok)

	ok, err = s.im.SetNX(c, "lock:k", []byte("t2"), time.Second)
	s.NoError(err)
	s.False(ok)
	s.Equal([]byte("t1"), s.conn.vals["lock:k"])
}

func (s *redisSuite) TestDelNeedsKeys() {
	_, err := s.im.Del(ctx.Background())
	s.Error(err)
}
