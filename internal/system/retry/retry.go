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

package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/wso2/identity-consent-privacy-service/internal/system/config"
)

// Do runs op with bounded exponential backoff. A zero MaxRetries disables
// retrying so call sites stay single-attempt unless configured otherwise.
func Do(ctx context.Context, cfg config.RetryConfig, op func() error) error {

	if cfg.MaxRetries == 0 {
		return op()
	}

	b := backoff.NewExponentialBackOff()
	if cfg.InitialIntervalMillis > 0 {
		b.InitialInterval = time.Duration(cfg.InitialIntervalMillis) * time.Millisecond
	}
	if cfg.MaxIntervalMillis > 0 {
		b.MaxInterval = time.Duration(cfg.MaxIntervalMillis) * time.Millisecond
	}
	if cfg.MaxElapsedTimeSeconds > 0 {
		b.MaxElapsedTime = time.Duration(cfg.MaxElapsedTimeSeconds) * time.Second
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(cfg.MaxRetries)), ctx)
	return backoff.Retry(op, policy)
}
