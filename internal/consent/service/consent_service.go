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

package service

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/wso2/identity-consent-privacy-service/internal/consent/model"
	"github.com/wso2/identity-consent-privacy-service/internal/consent/store"
	"github.com/wso2/identity-consent-privacy-service/internal/system/config"
	errors2 "github.com/wso2/identity-consent-privacy-service/internal/system/errors"
	"github.com/wso2/identity-consent-privacy-service/internal/system/log"
	"github.com/wso2/identity-consent-privacy-service/internal/system/retry"
)

// ConsentServiceInterface is the single authorized entry point for all
// consent mutations of one user. Mutations are applied to the in-memory set
// first, persisted to the local cache, then pushed to the remote store;
// a failed remote push never rolls back the local change.
type ConsentServiceInterface interface {
	Consents() model.ConsentSet
	HasConsent(category model.ConsentCategory) bool
	HasCompletedOnboarding() bool
	GrantConsent(ctx context.Context, category model.ConsentCategory) (*model.ConsentUpdateResult, error)
	RevokeConsent(ctx context.Context, category model.ConsentCategory) (*model.ConsentUpdateResult, error)
	GrantAllConsents(ctx context.Context) *model.BulkConsentResult
	RevokeAllConsents(ctx context.Context) *model.BulkConsentResult
	AcceptEssentialOnly(ctx context.Context) *model.BulkConsentResult
	CompleteConsentOnboarding()
	ApplyRemote(records []model.ConsentRecord)
}

// ConsentService is the default implementation. One instance owns the
// consent state of one user; readers get whole-value copies so they never
// observe a partially updated record.
type ConsentService struct {
	userID   string
	local    store.LocalConsentStoreInterface
	remote   store.RemoteConsentStoreInterface
	retryCfg config.RetryConfig

	mutex              sync.RWMutex
	consents           model.ConsentSet
	onboardingComplete bool
}

// GetConsentService returns a service for the user wired with the default
// file-backed local cache and Postgres remote store.
func GetConsentService(userID string) ConsentServiceInterface {

	cfg := config.GetCPSRuntime().Config
	ttl := time.Duration(cfg.Consent.CacheTTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	local := store.NewFileConsentStore(cfg.Consent.StorageDir, ttl)
	return NewConsentService(userID, local, store.NewPostgresConsentStore(), cfg.Retry)
}

// NewConsentService creates a service with explicit dependencies and loads
// the cached state for the user. An empty userID keeps all mutations
// local-only; remote pushes resume once an identity is in scope.
func NewConsentService(userID string, local store.LocalConsentStoreInterface,
	remote store.RemoteConsentStoreInterface, retryCfg config.RetryConfig) *ConsentService {

	consents, onboardingComplete := local.Load(userID)
	return &ConsentService{
		userID:             userID,
		local:              local,
		remote:             remote,
		retryCfg:           retryCfg,
		consents:           consents,
		onboardingComplete: onboardingComplete,
	}
}

// Consents returns a copy of the current consent set.
func (cs *ConsentService) Consents() model.ConsentSet {
	cs.mutex.RLock()
	defer cs.mutex.RUnlock()

	return cs.consents.Clone()
}

// HasConsent reports the current granted state of a category. Pure in-memory
// read; never touches storage or the remote store.
func (cs *ConsentService) HasConsent(category model.ConsentCategory) bool {
	cs.mutex.RLock()
	defer cs.mutex.RUnlock()

	return cs.consents[category].Granted
}

// HasCompletedOnboarding reports whether the consent choice flow has been
// completed at least once.
func (cs *ConsentService) HasCompletedOnboarding() bool {
	cs.mutex.RLock()
	defer cs.mutex.RUnlock()

	return cs.onboardingComplete
}

// GrantConsent grants a category, stamping GrantedAt and clearing RevokedAt.
func (cs *ConsentService) GrantConsent(ctx context.Context,
	category model.ConsentCategory) (*model.ConsentUpdateResult, error) {

	result, err := cs.saveConsent(ctx, category, true)
	if err != nil {
		return nil, err
	}
	cs.audit(log.ActionGrantConsent, category)
	return result, nil
}

// RevokeConsent revokes a category, stamping RevokedAt. GrantedAt is left
// untouched so the original grant time survives the revoke.
func (cs *ConsentService) RevokeConsent(ctx context.Context,
	category model.ConsentCategory) (*model.ConsentUpdateResult, error) {

	result, err := cs.saveConsent(ctx, category, false)
	if err != nil {
		return nil, err
	}
	cs.audit(log.ActionRevokeConsent, category)
	return result, nil
}

// GrantAllConsents grants every category sequentially. The loop is not
// atomic: a partial failure leaves earlier categories granted remotely and
// is reported through the bulk result instead of being swallowed.
func (cs *ConsentService) GrantAllConsents(ctx context.Context) *model.BulkConsentResult {

	bulk := cs.applyToAll(ctx, func(category model.ConsentCategory) bool { return true })
	bulk.RemoteSynced = !bulk.PartialFailure
	cs.audit(log.ActionGrantAllConsents, "")
	return bulk
}

// RevokeAllConsents revokes every category sequentially, then invokes the
// bulk remote revoke procedure. The sequential writes keep per-row state
// consistent for readers; the bulk call is the authoritative guarantee, so
// RemoteSynced reflects only the bulk call's outcome.
func (cs *ConsentService) RevokeAllConsents(ctx context.Context) *model.BulkConsentResult {

	logger := log.GetLogger()
	bulk := cs.applyToAll(ctx, func(category model.ConsentCategory) bool { return false })

	bulk.RemoteSynced = false
	if cs.userID != "" {
		err := retry.Do(ctx, cs.retryCfg, func() error {
			return cs.remote.RevokeAllConsents(ctx, cs.userID)
		})
		if err != nil {
			logger.Error(fmt.Sprintf("Bulk remote revoke failed for user: %s", cs.userID), log.Error(err))
		} else {
			bulk.RemoteSynced = true
		}
	}
	cs.audit(log.ActionRevokeAllConsents, "")
	return bulk
}

// AcceptEssentialOnly grants exactly the categories marked essential in the
// static catalog and revokes the rest. With the current uniformly
// non-essential catalog this revokes everything.
func (cs *ConsentService) AcceptEssentialOnly(ctx context.Context) *model.BulkConsentResult {

	bulk := cs.applyToAll(ctx, func(category model.ConsentCategory) bool {
		return model.CategoryCatalog[category].Essential
	})
	bulk.RemoteSynced = !bulk.PartialFailure
	cs.audit(log.ActionAcceptEssential, "")
	return bulk
}

// CompleteConsentOnboarding marks the one-time consent choice flow as done.
// Idempotent; the flag is never reset by consent edits.
func (cs *ConsentService) CompleteConsentOnboarding() {

	cs.mutex.Lock()
	cs.onboardingComplete = true
	consents := cs.consents
	cs.mutex.Unlock()

	cs.local.Persist(cs.userID, consents, true)
	cs.audit(log.ActionConsentOnboarding, "")
}

// ApplyRemote merges remote records into the in-memory set, remote-wins per
// key: categories missing from the records keep their local value. Called by
// the sync engine with a non-empty fetch result, which also marks onboarding
// as completed since remote rows only exist after a first choice.
func (cs *ConsentService) ApplyRemote(records []model.ConsentRecord) {

	if len(records) == 0 {
		return
	}

	cs.mutex.Lock()
	merged := cs.consents.Clone()
	for _, record := range records {
		if record.Category.IsValid() {
			merged[record.Category] = record
		}
	}
	cs.consents = merged
	cs.onboardingComplete = true
	cs.mutex.Unlock()

	cs.local.Persist(cs.userID, merged, true)
}

// saveConsent applies one consent state change: in-memory first, then the
// local cache, then the remote upsert. Remote failures are logged and
// reported in the result, never rolled back locally.
func (cs *ConsentService) saveConsent(ctx context.Context, category model.ConsentCategory,
	granted bool) (*model.ConsentUpdateResult, error) {

	if !category.IsValid() {
		return nil, errors2.NewClientError(errors2.ErrorMessage{
			Code:        errors2.INVALID_CONSENT_CATEGORY.Code,
			Message:     errors2.INVALID_CONSENT_CATEGORY.Message,
			Description: fmt.Sprintf("Unknown consent category: %s", category),
		}, http.StatusBadRequest)
	}

	logger := log.GetLogger()
	now := time.Now().UTC()

	cs.mutex.Lock()
	previous := cs.consents[category]
	record := model.ConsentRecord{
		Category:  category,
		Granted:   granted,
		GrantedAt: previous.GrantedAt,
		RevokedAt: nil,
	}
	if granted {
		record.GrantedAt = &now
	} else {
		record.RevokedAt = &now
	}
	updated := cs.consents.Clone()
	updated[category] = record
	cs.consents = updated
	onboardingComplete := cs.onboardingComplete
	cs.mutex.Unlock()

	cs.local.Persist(cs.userID, updated, onboardingComplete)

	result := &model.ConsentUpdateResult{
		Category: category,
		Granted:  granted,
	}
	if cs.userID == "" {
		return result, nil
	}

	if err := cs.remote.UpsertConsent(ctx, cs.userID, record); err != nil {
		logger.Error(fmt.Sprintf("Failed to push consent %s to the remote store", category), log.Error(err))
		result.RemoteError = err.Error()
		return result, nil
	}
	result.RemoteSynced = true
	return result, nil
}

// applyToAll runs one state change per category in the fixed order.
func (cs *ConsentService) applyToAll(ctx context.Context,
	granted func(model.ConsentCategory) bool) *model.BulkConsentResult {

	bulk := &model.BulkConsentResult{}
	for _, category := range model.AllCategories() {
		result, err := cs.saveConsent(ctx, category, granted(category))
		if err != nil {
			// Cannot happen for the fixed set; guard anyway.
			bulk.PartialFailure = true
			continue
		}
		bulk.Results = append(bulk.Results, *result)
		if cs.userID != "" && !result.RemoteSynced {
			bulk.PartialFailure = true
		}
	}
	return bulk
}

func (cs *ConsentService) audit(actionID string, category model.ConsentCategory) {

	event := log.AuditEvent{
		InitiatorID:   cs.userID,
		InitiatorType: log.InitiatorTypeUser,
		TargetID:      cs.userID,
		TargetType:    log.TargetTypeConsent,
		ActionID:      actionID,
	}
	if category != "" {
		event.Data = map[string]string{"category": string(category)}
	}
	log.GetLogger().Audit(event)
}
