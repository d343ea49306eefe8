// Package watcher synchronizes policy reloads across Aegis instances.
// When one instance mutates the rule store it publishes an update message;
// peers react by reloading policy from storage.
package watcher

import (
	"context"
	"sync"

	"github.com/casbin/casbin/v2/persist"
	"github.com/kart-io/logger"
	"github.com/panjf2000/ants/v2"
	"github.com/redis/go-redis/v9"

	"github.com/kart-io/aegis/pkg/utils/id"
)

// ChannelName is the Redis channel for policy update notifications.
const ChannelName = "aegis:policy:update"

// callbackPoolSize bounds concurrent callback executions.
const callbackPoolSize = 8

// RedisWatcher implements persist.Watcher over Redis pub/sub. Messages
// carry the publishing instance's ID so an instance does not reload in
// response to its own mutations.
type RedisWatcher struct {
	client     *redis.Client
	channel    string
	instanceID string

	mu       sync.RWMutex
	callback func(string)

	pool    *ants.Pool
	pubsub  *redis.PubSub
	closeCh chan struct{}
	wg      sync.WaitGroup
}

// NewRedisWatcher creates the watcher and starts its subscription loop.
func NewRedisWatcher(client *redis.Client, channel ...string) (*RedisWatcher, error) {
	ch := ChannelName
	if len(channel) > 0 && channel[0] != "" {
		ch = channel[0]
	}

	pool, err := ants.NewPool(callbackPoolSize, ants.WithNonblocking(false))
	if err != nil {
		return nil, err
	}

	w := &RedisWatcher{
		client:     client,
		channel:    ch,
		instanceID: id.NewULID(),
		pool:       pool,
		closeCh:    make(chan struct{}),
	}

	w.startSubscribe()
	return w, nil
}

func (w *RedisWatcher) startSubscribe() {
	w.pubsub = w.client.Subscribe(context.Background(), w.channel)
	w.wg.Add(1)

	go func() {
		defer w.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				logger.Global().Errorw("Recovered from panic in watcher subscription",
					"error", r,
					"component", "authz.watcher",
				)
			}
		}()

		ch := w.pubsub.Channel()
		for {
			select {
			case <-w.closeCh:
				return
			case msg, ok := <-ch:
				if !ok {
					w.handleChannelClosed()
					return
				}
				if msg.Payload == w.instanceID {
					// Own mutation; the local enforcer is already current.
					continue
				}
				w.dispatch(msg.Payload)
			}
		}
	}()
}

func (w *RedisWatcher) handleChannelClosed() {
	select {
	case <-w.closeCh:
		logger.Global().Debugw("Watcher subscription closed",
			"component", "authz.watcher",
		)
	default:
		logger.Global().Warnw("Watcher subscription closed unexpectedly",
			"component", "authz.watcher",
			"reason", "possible network disconnect or Redis error",
		)
	}
}

// dispatch runs the callback on the bounded pool so a slow policy reload
// cannot stall the subscription loop.
func (w *RedisWatcher) dispatch(payload string) {
	w.mu.RLock()
	callback := w.callback
	w.mu.RUnlock()
	if callback == nil {
		return
	}

	task := func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Global().Errorw("Recovered from panic in watcher callback",
					"error", r,
					"component", "authz.watcher",
				)
			}
		}()
		callback(payload)
	}

	if err := w.pool.Submit(task); err != nil {
		logger.Global().Warnw("failed to submit watcher callback to pool, fallback to goroutine",
			"error", err.Error(),
			"component", "authz.watcher",
		)
		go task()
	}
}

// SetUpdateCallback sets the function invoked when a peer updates policy.
func (w *RedisWatcher) SetUpdateCallback(callback func(string)) error {
	w.mu.Lock()
	w.callback = callback
	w.mu.Unlock()
	return nil
}

// Update notifies peer instances that policy changed.
func (w *RedisWatcher) Update() error {
	return w.client.Publish(context.Background(), w.channel, w.instanceID).Err()
}

// Close stops the subscription loop and releases the callback pool.
func (w *RedisWatcher) Close() {
	close(w.closeCh)
	if w.pubsub != nil {
		_ = w.pubsub.Close()
	}
	w.wg.Wait()
	w.pool.Release()
}

var _ persist.Watcher = (*RedisWatcher)(nil)
