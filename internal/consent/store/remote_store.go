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

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/wso2/identity-consent-privacy-service/internal/consent/model"
	"github.com/wso2/identity-consent-privacy-service/internal/system/database/provider"
	errors2 "github.com/wso2/identity-consent-privacy-service/internal/system/errors"
	"github.com/wso2/identity-consent-privacy-service/internal/system/log"
)

// RemoteConsentStoreInterface is the remote system of record for consents.
// An empty fetch result is valid: it cannot distinguish "never synced" from
// "all rows deleted", which is why the sync engine keeps local state on empty.
type RemoteConsentStoreInterface interface {
	FetchConsents(ctx context.Context, userID string) ([]model.ConsentRecord, error)
	UpsertConsent(ctx context.Context, userID string, record model.ConsentRecord) error
	RevokeAllConsents(ctx context.Context, userID string) error
}

// PostgresConsentStore is the default implementation over the user_consents
// table and the revoke_all_user_consents procedure.
type PostgresConsentStore struct{}

// NewPostgresConsentStore returns a new instance.
func NewPostgresConsentStore() RemoteConsentStoreInterface {
	return &PostgresConsentStore{}
}

// FetchConsents retrieves all consent records for the user.
func (ps *PostgresConsentStore) FetchConsents(ctx context.Context, userID string) ([]model.ConsentRecord, error) {

	dbClient, err := provider.NewDBProvider().GetDBClient()
	logger := log.GetLogger()
	if err != nil {
		errorMsg := fmt.Sprintf("Failed to get db client for fetching consents of user: %s", userID)
		logger.Debug(errorMsg, log.Error(err))
		return nil, errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.FETCH_CONSENTS.Code,
			Message:     errors2.FETCH_CONSENTS.Message,
			Description: errorMsg,
		}, err)
	}
	defer dbClient.Close()

	query := `SELECT consent_type, granted, granted_at, revoked_at FROM user_consents WHERE user_id = $1`
	results, err := dbClient.ExecuteQuery(query, userID)
	if err != nil {
		errorMsg := fmt.Sprintf("Failed to execute query for fetching consents of user: %s", userID)
		logger.Debug(errorMsg, log.Error(err))
		return nil, errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.FETCH_CONSENTS.Code,
			Message:     errors2.FETCH_CONSENTS.Message,
			Description: errorMsg,
		}, err)
	}

	records := make([]model.ConsentRecord, 0, len(results))
	for _, row := range results {
		category := model.ConsentCategory(parseString(row["consent_type"]))
		if !category.IsValid() {
			logger.Warn(fmt.Sprintf("Skipping unknown consent category from remote: %s", category))
			continue
		}
		records = append(records, model.ConsentRecord{
			Category:  category,
			Granted:   parseBool(row["granted"]),
			GrantedAt: parseTime(row["granted_at"]),
			RevokedAt: parseTime(row["revoked_at"]),
		})
	}
	logger.Debug(fmt.Sprintf("Fetched %d consent records for user: %s", len(records), userID))
	return records, nil
}

// UpsertConsent inserts or updates the record keyed by (user, category). An
// upsert is required because a never-touched category has no prior row.
func (ps *PostgresConsentStore) UpsertConsent(ctx context.Context, userID string, record model.ConsentRecord) error {

	dbClient, err := provider.NewDBProvider().GetDBClient()
	logger := log.GetLogger()
	if err != nil {
		errorMsg := fmt.Sprintf("Failed to get db client for upserting consent: %s", record.Category)
		logger.Debug(errorMsg, log.Error(err))
		return errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.UPSERT_CONSENT.Code,
			Message:     errors2.UPSERT_CONSENT.Message,
			Description: errorMsg,
		}, err)
	}
	defer dbClient.Close()

	tx, err := dbClient.BeginTx()
	if err != nil {
		errorMsg := fmt.Sprintf("Failed to begin transaction for upserting consent: %s", record.Category)
		logger.Debug(errorMsg, log.Error(err))
		return errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.UPSERT_CONSENT.Code,
			Message:     errors2.UPSERT_CONSENT.Message,
			Description: errorMsg,
		}, err)
	}

	query := `INSERT INTO user_consents (user_id, consent_type, granted, granted_at, revoked_at)
				VALUES ($1, $2, $3, $4, $5)
				ON CONFLICT (user_id, consent_type)
				DO UPDATE SET granted = EXCLUDED.granted, granted_at = EXCLUDED.granted_at,
					revoked_at = EXCLUDED.revoked_at, updated_at = now()`
	_, err = tx.Exec(query, userID, string(record.Category), record.Granted, record.GrantedAt, record.RevokedAt)
	if err != nil {
		if errRollback := tx.Rollback(); errRollback != nil {
			errorMsg := fmt.Sprintf("Failed to rollback upserting consent: %s", record.Category)
			logger.Debug(errorMsg, log.Error(errRollback))
			return errors2.NewServerError(errors2.ErrorMessage{
				Code:        errors2.UPSERT_CONSENT.Code,
				Message:     errors2.UPSERT_CONSENT.Message,
				Description: errorMsg,
			}, errRollback)
		}
		errorMsg := fmt.Sprintf("Failed to execute query for upserting consent: %s", record.Category)
		logger.Debug(errorMsg, log.Error(err))
		return errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.UPSERT_CONSENT.Code,
			Message:     errors2.UPSERT_CONSENT.Message,
			Description: errorMsg,
		}, err)
	}
	return tx.Commit()
}

// RevokeAllConsents invokes the server-side bulk revoke procedure. This is
// the authoritative must-not-fail-open path for the all-revoke action.
func (ps *PostgresConsentStore) RevokeAllConsents(ctx context.Context, userID string) error {

	dbClient, err := provider.NewDBProvider().GetDBClient()
	logger := log.GetLogger()
	if err != nil {
		errorMsg := fmt.Sprintf("Failed to get db client for revoking all consents of user: %s", userID)
		logger.Debug(errorMsg, log.Error(err))
		return errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.REVOKE_ALL_CONSENTS.Code,
			Message:     errors2.REVOKE_ALL_CONSENTS.Message,
			Description: errorMsg,
		}, err)
	}
	defer dbClient.Close()

	_, err = dbClient.ExecuteQuery(`SELECT revoke_all_user_consents($1)`, userID)
	if err != nil {
		errorMsg := fmt.Sprintf("Failed to execute bulk revoke for user: %s", userID)
		logger.Debug(errorMsg, log.Error(err))
		return errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.REVOKE_ALL_CONSENTS.Code,
			Message:     errors2.REVOKE_ALL_CONSENTS.Message,
			Description: errorMsg,
		}, err)
	}
	logger.Info(fmt.Sprintf("Revoked all consents remotely for user: %s", userID))
	return nil
}

func parseString(raw interface{}) string {
	switch v := raw.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return ""
	}
}

func parseBool(raw interface{}) bool {
	b, ok := raw.(bool)
	return ok && b
}

func parseTime(raw interface{}) *time.Time {
	if raw == nil {
		return nil
	}
	if t, ok := raw.(time.Time); ok {
		utc := t.UTC()
		return &utc
	}
	return nil
}
