/*
 * Copyright (c) 2026, WSO2 LLC. (http://www.wso2.com).
 *
 * WSO2 LLC. licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

package sync

import (
	"context"
	gosync "sync"

	"github.com/redis/go-redis/v9"
	"github.com/wso2/identity-consent-privacy-service/internal/system/config"
	"github.com/wso2/identity-consent-privacy-service/internal/system/constants"
	"github.com/wso2/identity-consent-privacy-service/internal/system/log"
)

// ChangeNotifierInterface delivers fire-only consent change events scoped to
// one user. The event carries no payload; receivers refetch everything.
type ChangeNotifierInterface interface {
	Subscribe(ctx context.Context, userID string) (<-chan struct{}, func(), error)
}

// ChangePublisherInterface broadcasts that a user's consents changed.
type ChangePublisherInterface interface {
	Publish(ctx context.Context, userID string) error
}

// RedisChangeNotifier subscribes to the per-user consent channel on Redis
// Pub/Sub.
type RedisChangeNotifier struct {
	client *redis.Client
}

// NewRedisChangeNotifier creates a notifier from the runtime Redis config.
func NewRedisChangeNotifier() *RedisChangeNotifier {
	cfg := config.GetCPSRuntime().Config
	return &RedisChangeNotifier{
		client: redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.Database,
		}),
	}
}

// NewRedisChangeNotifierWithClient creates a notifier over an existing client.
func NewRedisChangeNotifierWithClient(client *redis.Client) *RedisChangeNotifier {
	return &RedisChangeNotifier{client: client}
}

var (
	notifierInstance *RedisChangeNotifier
	notifierOnce     gosync.Once
)

// GetChangeNotifier returns the shared notifier. One Redis client serves all
// subscriptions and publishes of the process.
func GetChangeNotifier() *RedisChangeNotifier {
	notifierOnce.Do(func() {
		notifierInstance = NewRedisChangeNotifier()
	})
	return notifierInstance
}

// Publish broadcasts a change event on the user's channel. The payload is
// irrelevant; subscribers refetch everything on any event.
func (rn *RedisChangeNotifier) Publish(ctx context.Context, userID string) error {
	return rn.client.Publish(ctx, constants.ConsentChannelPrefix+userID, "changed").Err()
}

// Subscribe starts listening on the user's channel. Events are coalesced:
// a slow receiver sees at least one event for any burst, which is enough
// since every event triggers a full refetch. The returned function cancels
// the subscription.
func (rn *RedisChangeNotifier) Subscribe(ctx context.Context, userID string) (<-chan struct{}, func(), error) {

	logger := log.GetLogger()
	channel := constants.ConsentChannelPrefix + userID
	pubsub := rn.client.Subscribe(ctx, channel)

	// Force the subscription to be established before returning.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, nil, err
	}

	events := make(chan struct{}, 1)
	go func() {
		defer close(events)
		for range pubsub.Channel() {
			select {
			case events <- struct{}{}:
			default:
			}
		}
	}()

	logger.Debug("Subscribed to consent change channel: " + channel)
	cancel := func() {
		if err := pubsub.Close(); err != nil {
			logger.Warn("Failed to close consent change subscription", log.Error(err))
		}
	}
	return events, cancel, nil
}
