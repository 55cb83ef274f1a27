package channels

import (
	"fmt"

	"github.com/Md-Tanvir-Ahamed-Shanto/brandsdiscount-backend-sub000/internal/domain/channel"
)

// ClientRegistry holds the configured channel clients in registration order.
// It implements channel.Registry.
type ClientRegistry struct {
	clients map[channel.Code]channel.Client
	order   []channel.Code
}

// NewClientRegistry creates a registry from the given clients. Duplicate
// codes are rejected so a misconfigured account cannot shadow another.
func NewClientRegistry(clients ...channel.Client) (*ClientRegistry, error) {
	r := &ClientRegistry{
		clients: make(map[channel.Code]channel.Client, len(clients)),
		order:   make([]channel.Code, 0, len(clients)),
	}
	for _, c := range clients {
		code := c.Code()
		if !code.IsValid() {
			return nil, fmt.Errorf("%w: %s", channel.ErrNotRegistered, code)
		}
		if _, dup := r.clients[code]; dup {
			return nil, fmt.Errorf("channels: duplicate client for %s", code)
		}
		r.clients[code] = c
		r.order = append(r.order, code)
	}
	return r, nil
}

// Get returns the client for the given code
func (r *ClientRegistry) Get(code channel.Code) (channel.Client, error) {
	c, ok := r.clients[code]
	if !ok {
		return nil, fmt.Errorf("%w: %s", channel.ErrNotRegistered, code)
	}
	return c, nil
}

// All returns every registered client in registration order
func (r *ClientRegistry) All() []channel.Client {
	out := make([]channel.Client, 0, len(r.order))
	for _, code := range r.order {
		out = append(out, r.clients[code])
	}
	return out
}

// Others returns every registered client except the given code
func (r *ClientRegistry) Others(code channel.Code) []channel.Client {
	out := make([]channel.Client, 0, len(r.order))
	for _, c := range r.order {
		if c == code {
			continue
		}
		out = append(out, r.clients[c])
	}
	return out
}

// Ensure ClientRegistry implements channel.Registry
var _ channel.Registry = (*ClientRegistry)(nil)
