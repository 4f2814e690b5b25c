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
	"fmt"

	"github.com/wso2/identity-consent-privacy-service/internal/consent/model"
	"github.com/wso2/identity-consent-privacy-service/internal/consent/store"
	errors2 "github.com/wso2/identity-consent-privacy-service/internal/system/errors"
	"github.com/wso2/identity-consent-privacy-service/internal/system/log"
)

// ConsentApplier is the part of the consent service the engine feeds merged
// remote state into.
type ConsentApplier interface {
	ApplyRemote(records []model.ConsentRecord)
}

// SyncEngine keeps the local consent cache eventually consistent with the
// remote system of record for one user. Conflicts resolve remote-wins per
// key on every successful sync. There is no delta application: every change
// event triggers a full refetch, trading efficiency for correctness against
// missed events.
type SyncEngine struct {
	userID   string
	applier  ConsentApplier
	remote   store.RemoteConsentStoreInterface
	notifier ChangeNotifierInterface

	cancelSub func()
	done      chan struct{}
}

// NewSyncEngine creates an engine for the given user.
func NewSyncEngine(userID string, applier ConsentApplier, remote store.RemoteConsentStoreInterface,
	notifier ChangeNotifierInterface) *SyncEngine {

	return &SyncEngine{
		userID:   userID,
		applier:  applier,
		remote:   remote,
		notifier: notifier,
	}
}

// Refresh fetches all remote consent records and merges them into the local
// state. An empty remote result keeps local values untouched: it is
// ambiguous between "never synced" and "everything deleted", and the bulk
// revoke path already clears local state explicitly.
func (se *SyncEngine) Refresh(ctx context.Context) error {

	logger := log.GetLogger()
	records, err := se.remote.FetchConsents(ctx, se.userID)
	if err != nil {
		errorMsg := fmt.Sprintf("Failed to fetch remote consents for user: %s", se.userID)
		logger.Error(errorMsg, log.Error(err))
		return errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.CONSENT_SYNC.Code,
			Message:     errors2.CONSENT_SYNC.Message,
			Description: errorMsg,
		}, err)
	}

	if len(records) == 0 {
		logger.Debug(fmt.Sprintf("No remote consent records for user: %s, keeping local state", se.userID))
		return nil
	}

	se.applier.ApplyRemote(records)
	logger.Debug(fmt.Sprintf("Merged %d remote consent records for user: %s", len(records), se.userID))
	return nil
}

// Start performs an initial refresh and then subscribes to the change
// notification channel, refetching on every event until ctx is cancelled or
// Stop is called. The initial refresh failure is logged but does not prevent
// the subscription; a later event will retry the fetch.
func (se *SyncEngine) Start(ctx context.Context) error {

	logger := log.GetLogger()
	if err := se.Refresh(ctx); err != nil {
		logger.Warn("Initial consent refresh failed", log.Error(err))
	}

	events, cancel, err := se.notifier.Subscribe(ctx, se.userID)
	if err != nil {
		errorMsg := fmt.Sprintf("Failed to subscribe to consent changes for user: %s", se.userID)
		logger.Error(errorMsg, log.Error(err))
		return errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.CONSENT_SYNC.Code,
			Message:     errors2.CONSENT_SYNC.Message,
			Description: errorMsg,
		}, err)
	}

	se.cancelSub = cancel
	se.done = make(chan struct{})
	go func() {
		defer close(se.done)
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-events:
				if !ok {
					return
				}
				if err := se.Refresh(ctx); err != nil {
					logger.Warn("Consent refresh after change event failed", log.Error(err))
				}
			}
		}
	}()
	return nil
}

// Stop unsubscribes from the change channel and waits for the event loop to
// drain. Safe to call when Start was never called or already stopped.
func (se *SyncEngine) Stop() {

	if se.cancelSub != nil {
		se.cancelSub()
		se.cancelSub = nil
	}
	if se.done != nil {
		<-se.done
		se.done = nil
	}
}
