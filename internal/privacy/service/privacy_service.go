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
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	consentStore "github.com/wso2/identity-consent-privacy-service/internal/consent/store"
	"github.com/wso2/identity-consent-privacy-service/internal/privacy/model"
	"github.com/wso2/identity-consent-privacy-service/internal/privacy/store"
	"github.com/wso2/identity-consent-privacy-service/internal/system/authn"
	"github.com/wso2/identity-consent-privacy-service/internal/system/config"
	"github.com/wso2/identity-consent-privacy-service/internal/system/constants"
	errors2 "github.com/wso2/identity-consent-privacy-service/internal/system/errors"
	"github.com/wso2/identity-consent-privacy-service/internal/system/log"
	"github.com/wso2/identity-consent-privacy-service/internal/system/retry"
)

const unauthenticatedError = "User is not authenticated."

// PrivacyServiceInterface exposes the data-portability and right-to-erasure
// workflows. Every operation returns a structured outcome instead of an
// error so callers branch on Success without exception-style handling.
type PrivacyServiceInterface interface {
	ExportUserData(ctx context.Context) *model.ExportResult
	SaveExportToFile(snapshot *model.DataExportSnapshot) (string, error)
	DeleteAllUserData(ctx context.Context) *model.DeletionOutcome
	GetDataSummary(ctx context.Context) *model.SummaryOutcome
}

// PrivacyService is the default implementation.
type PrivacyService struct {
	session      authn.SessionInterface
	store        store.PrivacyStoreInterface
	consentCache consentStore.LocalConsentStoreInterface
	exportDir    string
	retryCfg     config.RetryConfig
}

// GetPrivacyService returns a service wired with the Postgres-backed store
// and the file-backed consent cache.
func GetPrivacyService(session authn.SessionInterface) PrivacyServiceInterface {

	cfg := config.GetCPSRuntime().Config
	ttl := time.Duration(cfg.Consent.CacheTTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	cache := consentStore.NewFileConsentStore(cfg.Consent.StorageDir, ttl)
	return NewPrivacyService(session, store.NewPostgresPrivacyStore(), cache, cfg.Privacy.ExportDir, cfg.Retry)
}

// NewPrivacyService creates a service with explicit dependencies. A nil
// consentCache skips local eviction after deletion.
func NewPrivacyService(session authn.SessionInterface, privacyStore store.PrivacyStoreInterface,
	consentCache consentStore.LocalConsentStoreInterface, exportDir string,
	retryCfg config.RetryConfig) *PrivacyService {

	return &PrivacyService{
		session:      session,
		store:        privacyStore,
		consentCache: consentCache,
		exportDir:    exportDir,
		retryCfg:     retryCfg,
	}
}

// ExportUserData produces a complete portable snapshot of all data tied to
// the signed-in user. Emits exactly one audit event on success; the event
// records the fact of the export, never the exported data.
func (ps *PrivacyService) ExportUserData(ctx context.Context) *model.ExportResult {

	logger := log.GetLogger()
	userID := ps.session.CurrentUserID()
	if userID == "" {
		return &model.ExportResult{Success: false, Error: unauthenticatedError}
	}

	snapshot, err := ps.store.ExportUserData(ctx, userID)
	if err != nil {
		logger.Error("Data export failed", log.Error(err))
		return &model.ExportResult{Success: false, Error: err.Error()}
	}
	snapshot.ExportMetadata = model.ExportMetadata{
		ExportedAt:    time.Now().UTC().Format(time.RFC3339),
		UserID:        userID,
		FormatVersion: constants.ExportFormatVersion,
	}

	logger.Audit(log.AuditEvent{
		InitiatorID:   userID,
		InitiatorType: log.InitiatorTypeUser,
		TargetID:      userID,
		TargetType:    log.TargetTypeAccount,
		ActionID:      log.ActionDataExport,
		TraceID:       uuid.New().String(),
	})
	logger.Info("User data exported successfully")

	return &model.ExportResult{Success: true, Data: snapshot}
}

// SaveExportToFile writes the snapshot as a JSON file under the export
// directory and returns its path. This is the download hand-off; its failure
// is not a failure of the export itself.
func (ps *PrivacyService) SaveExportToFile(snapshot *model.DataExportSnapshot) (string, error) {

	if snapshot == nil {
		return "", errors2.NewClientError(errors2.ErrorMessage{
			Code:        errors2.BAD_REQUEST.Code,
			Message:     errors2.BAD_REQUEST.Message,
			Description: "No export snapshot to save.",
		}, http.StatusBadRequest)
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.SAVE_EXPORT_FILE.Code,
			Message:     errors2.SAVE_EXPORT_FILE.Message,
			Description: "Failed to serialize the export snapshot.",
		}, err)
	}

	if err := os.MkdirAll(ps.exportDir, 0o700); err != nil {
		return "", errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.SAVE_EXPORT_FILE.Code,
			Message:     errors2.SAVE_EXPORT_FILE.Message,
			Description: "Failed to create the export directory.",
		}, err)
	}

	// Random file name so nothing about the user leaks into the path.
	path := filepath.Join(ps.exportDir, fmt.Sprintf("user-data-export-%s.json", uuid.New().String()))
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.SAVE_EXPORT_FILE.Code,
			Message:     errors2.SAVE_EXPORT_FILE.Message,
			Description: "Failed to write the export file.",
		}, err)
	}
	return path, nil
}

// DeleteAllUserData irrevocably erases all data tied to the signed-in user.
//
// The sequence is strict: identity check, best-effort export as a last
// chance to keep a copy, the remote erasure, then session termination. A
// failed erasure returns a failure without signing out, leaving the intact
// account accessible. There is no undo.
func (ps *PrivacyService) DeleteAllUserData(ctx context.Context) *model.DeletionOutcome {

	logger := log.GetLogger()
	userID := ps.session.CurrentUserID()
	if userID == "" {
		return &model.DeletionOutcome{Success: false, Error: unauthenticatedError}
	}

	// Export first so the user keeps a copy. The outcome is deliberately
	// ignored: an unavailable export must not block the erasure right.
	_ = ps.ExportUserData(ctx)

	var result *model.DeletionResult
	err := retry.Do(ctx, ps.retryCfg, func() error {
		var callErr error
		result, callErr = ps.store.DeleteUserData(ctx, userID)
		return callErr
	})
	if err != nil {
		logger.Error("User data deletion failed", log.Error(err))
		return &model.DeletionOutcome{Success: false, Error: err.Error()}
	}

	logger.Audit(log.AuditEvent{
		InitiatorID:   userID,
		InitiatorType: log.InitiatorTypeUser,
		TargetID:      userID,
		TargetType:    log.TargetTypeAccount,
		ActionID:      log.ActionDataDeletion,
		TraceID:       uuid.New().String(),
	})
	logger.Info("User data deleted")

	// The erased user's cached consents must not outlive the account.
	if ps.consentCache != nil {
		ps.consentCache.Evict(userID)
	}

	if err := ps.session.SignOut(); err != nil {
		// The account is gone; a failed sign-out only leaves a dangling
		// local session and must not turn the deletion into a failure.
		logger.Warn("Sign-out after deletion failed", log.Error(err))
	}

	return &model.DeletionOutcome{Success: true, Result: result}
}

// GetDataSummary returns counts of what a deletion would remove.
func (ps *PrivacyService) GetDataSummary(ctx context.Context) *model.SummaryOutcome {

	logger := log.GetLogger()
	userID := ps.session.CurrentUserID()
	if userID == "" {
		return &model.SummaryOutcome{Success: false, Error: unauthenticatedError}
	}

	summary, err := ps.store.FetchDataSummary(ctx, userID)
	if err != nil {
		logger.Error("Data summary fetch failed", log.Error(err))
		return &model.SummaryOutcome{Success: false, Error: err.Error()}
	}
	return &model.SummaryOutcome{Success: true, Summary: summary}
}
