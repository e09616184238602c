package fetchhandlers

import (
	"context"
	"math/rand"

	"github.com/feedmill/webget/fetch"
)

// DefaultUserAgents is the pool of real-world browser strings a
// UserAgent handler picks from when none is pinned.
var DefaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/74.0.3729.131 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/74.0.3729.169 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:66.0) Gecko/20100101 Firefox/66.0",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/74.0.3729.157 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/73.0.3683.103 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_14_4) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/12.1 Safari/605.1.15",
	"Mozilla/5.0 (Windows NT 6.2; WOW64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/68.0.3440.106 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_14_4) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/74.0.3729.131 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:67.0) Gecko/20100101 Firefox/67.0",
	"Mozilla/5.0 (Windows NT 6.1; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/74.0.3729.131 Safari/537.36",
}

// UserAgent sets the User-Agent header. The agent is chosen once, at
// construction, so every hop of one fetch identifies the same way.
type UserAgent struct {
	agent string
}

// UserAgentConfig configures the UserAgent handler.
type UserAgentConfig struct {
	// Agent pins the string to send. When empty, one is drawn at
	// random from Pool.
	Agent string

	// Pool is the set to draw from; DefaultUserAgents when empty.
	Pool []string
}

// NewUserAgent returns a UserAgent handler.
func NewUserAgent(cfg UserAgentConfig) *UserAgent {
	agent := cfg.Agent
	if agent == "" {
		pool := cfg.Pool
		if len(pool) == 0 {
			pool = DefaultUserAgents
		}
		agent = pool[rand.Intn(len(pool))]
	}
	return &UserAgent{agent: agent}
}

// Order implements fetch.Handler.
func (u *UserAgent) Order() int { return fetch.DefaultOrder }

// HandleRequest sets the User-Agent header; it is unredirectable.
func (u *UserAgent) HandleRequest(_ context.Context, req *fetch.Request) error {
	if u.agent != "" {
		req.SetUnredirected("User-Agent", u.agent)
	}
	return nil
}

// Agent returns the string this handler sends.
func (u *UserAgent) Agent() string { return u.agent }
