package control

import "sync"

// Broadcaster fans a stream of vm.Snapshot-derived events out to any
// number of WebSocket clients, grounded on the teacher's broadcaster:
// a register/unregister/broadcast event loop over channels rather than a
// shared slice guarded by a mutex, so publishing never blocks on a slow
// subscriber.
type Broadcaster struct {
	mu            sync.RWMutex
	subscriptions map[chan []byte]bool
	broadcast     chan []byte
	register      chan chan []byte
	unregister    chan chan []byte
	done          chan struct{}
}

// NewBroadcaster creates and starts a broadcaster.
func NewBroadcaster() *Broadcaster {
	b := &Broadcaster{
		subscriptions: make(map[chan []byte]bool),
		broadcast:     make(chan []byte, 256),
		register:      make(chan chan []byte),
		unregister:    make(chan chan []byte),
		done:          make(chan struct{}),
	}
	go b.run()
	return b
}

func (b *Broadcaster) run() {
	for {
		select {
		case <-b.done:
			b.mu.Lock()
			for sub := range b.subscriptions {
				close(sub)
			}
			b.subscriptions = nil
			b.mu.Unlock()
			return

		case sub := <-b.register:
			b.mu.Lock()
			b.subscriptions[sub] = true
			b.mu.Unlock()

		case sub := <-b.unregister:
			b.mu.Lock()
			if b.subscriptions[sub] {
				delete(b.subscriptions, sub)
				close(sub)
			}
			b.mu.Unlock()

		case msg := <-b.broadcast:
			b.mu.RLock()
			for sub := range b.subscriptions {
				select {
				case sub <- msg:
				default:
					// slow client, drop this message rather than block
				}
			}
			b.mu.RUnlock()
		}
	}
}

// Subscribe registers a new client channel to receive future broadcasts.
func (b *Broadcaster) Subscribe() chan []byte {
	ch := make(chan []byte, 32)
	b.register <- ch
	return ch
}

// Unsubscribe removes a previously subscribed channel.
func (b *Broadcaster) Unsubscribe(ch chan []byte) {
	b.unregister <- ch
}

// Publish sends msg to every current subscriber.
func (b *Broadcaster) Publish(msg []byte) {
	select {
	case b.broadcast <- msg:
	default:
		// broadcaster is backed up; drop rather than block the caller
	}
}

// Close shuts the broadcaster down, closing every subscriber channel.
func (b *Broadcaster) Close() {
	close(b.done)
}
