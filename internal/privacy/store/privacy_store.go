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
	"encoding/json"
	"fmt"

	"github.com/wso2/identity-consent-privacy-service/internal/privacy/model"
	"github.com/wso2/identity-consent-privacy-service/internal/system/database/provider"
	errors2 "github.com/wso2/identity-consent-privacy-service/internal/system/errors"
	"github.com/wso2/identity-consent-privacy-service/internal/system/log"
)

// PrivacyStoreInterface wraps the remote aggregation and erasure procedures.
// Both procedures are opaque single calls; the deletion is treated as
// atomic-or-nothing from this side.
type PrivacyStoreInterface interface {
	ExportUserData(ctx context.Context, userID string) (*model.DataExportSnapshot, error)
	DeleteUserData(ctx context.Context, userID string) (*model.DeletionResult, error)
	FetchDataSummary(ctx context.Context, userID string) (*model.DataSummary, error)
}

// PostgresPrivacyStore is the default implementation over the
// export_user_data and delete_user_data procedures.
type PostgresPrivacyStore struct{}

// NewPostgresPrivacyStore returns a new instance.
func NewPostgresPrivacyStore() PrivacyStoreInterface {
	return &PostgresPrivacyStore{}
}

// ExportUserData invokes the single aggregation procedure for the user.
func (ps *PostgresPrivacyStore) ExportUserData(ctx context.Context,
	userID string) (*model.DataExportSnapshot, error) {

	raw, err := ps.callProcedure("export_user_data", userID, errors2.EXPORT_USER_DATA)
	if err != nil {
		return nil, err
	}

	var snapshot model.DataExportSnapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		errorMsg := fmt.Sprintf("Failed to decode export snapshot for user: %s", userID)
		log.GetLogger().Debug(errorMsg, log.Error(err))
		return nil, errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.EXPORT_USER_DATA.Code,
			Message:     errors2.EXPORT_USER_DATA.Message,
			Description: errorMsg,
		}, err)
	}
	return &snapshot, nil
}

// DeleteUserData invokes the irreversible erasure procedure for the user and
// returns its per-category receipt.
func (ps *PostgresPrivacyStore) DeleteUserData(ctx context.Context,
	userID string) (*model.DeletionResult, error) {

	raw, err := ps.callProcedure("delete_user_data", userID, errors2.DELETE_USER_DATA)
	if err != nil {
		return nil, err
	}

	var result model.DeletionResult
	if err := json.Unmarshal(raw, &result); err != nil {
		errorMsg := fmt.Sprintf("Failed to decode deletion receipt for user: %s", userID)
		log.GetLogger().Debug(errorMsg, log.Error(err))
		return nil, errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.DELETE_USER_DATA.Code,
			Message:     errors2.DELETE_USER_DATA.Message,
			Description: errorMsg,
		}, err)
	}
	return &result, nil
}

// FetchDataSummary counts the user's data per category.
func (ps *PostgresPrivacyStore) FetchDataSummary(ctx context.Context,
	userID string) (*model.DataSummary, error) {

	dbClient, err := provider.NewDBProvider().GetDBClient()
	logger := log.GetLogger()
	if err != nil {
		errorMsg := fmt.Sprintf("Failed to get db client for the data summary of user: %s", userID)
		logger.Debug(errorMsg, log.Error(err))
		return nil, errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.FETCH_DATA_SUMMARY.Code,
			Message:     errors2.FETCH_DATA_SUMMARY.Message,
			Description: errorMsg,
		}, err)
	}
	defer dbClient.Close()

	type countQuery struct {
		query string
		dest  *int
	}
	summary := &model.DataSummary{}
	counts := []countQuery{
		{`SELECT count(*) AS total FROM matches WHERE organizer_id = $1`, &summary.Matches},
		{`SELECT count(*) AS total FROM posts WHERE user_id = $1`, &summary.Posts},
		{`SELECT count(*) AS total FROM bookings WHERE user_id = $1`, &summary.Bookings},
		{`SELECT count(*) AS total FROM follows WHERE following_id = $1`, &summary.Followers},
		{`SELECT count(*) AS total FROM follows WHERE follower_id = $1`, &summary.Following},
	}

	for _, count := range counts {
		results, err := dbClient.ExecuteQuery(count.query, userID)
		if err != nil {
			errorMsg := fmt.Sprintf("Failed to execute a data summary count for user: %s", userID)
			logger.Debug(errorMsg, log.Error(err))
			return nil, errors2.NewServerError(errors2.ErrorMessage{
				Code:        errors2.FETCH_DATA_SUMMARY.Code,
				Message:     errors2.FETCH_DATA_SUMMARY.Message,
				Description: errorMsg,
			}, err)
		}
		if len(results) > 0 {
			*count.dest = parseCount(results[0]["total"])
		}
	}
	return summary, nil
}

// callProcedure runs a single-argument jsonb-returning procedure.
func (ps *PostgresPrivacyStore) callProcedure(name, userID string,
	errMessage errors2.ErrorMessage) ([]byte, error) {

	dbClient, err := provider.NewDBProvider().GetDBClient()
	logger := log.GetLogger()
	if err != nil {
		errorMsg := fmt.Sprintf("Failed to get db client for %s of user: %s", name, userID)
		logger.Debug(errorMsg, log.Error(err))
		return nil, errors2.NewServerError(errors2.ErrorMessage{
			Code:        errMessage.Code,
			Message:     errMessage.Message,
			Description: errorMsg,
		}, err)
	}
	defer dbClient.Close()

	results, err := dbClient.ExecuteQuery(fmt.Sprintf(`SELECT %s($1) AS payload`, name), userID)
	if err != nil {
		errorMsg := fmt.Sprintf("Failed to execute %s for user: %s", name, userID)
		logger.Debug(errorMsg, log.Error(err))
		return nil, errors2.NewServerError(errors2.ErrorMessage{
			Code:        errMessage.Code,
			Message:     errMessage.Message,
			Description: errorMsg,
		}, err)
	}
	if len(results) == 0 {
		errorMsg := fmt.Sprintf("Procedure %s returned no rows for user: %s", name, userID)
		logger.Debug(errorMsg)
		return nil, errors2.NewServerError(errors2.ErrorMessage{
			Code:        errMessage.Code,
			Message:     errMessage.Message,
			Description: errorMsg,
		}, fmt.Errorf("empty result from %s", name))
	}

	switch payload := results[0]["payload"].(type) {
	case []byte:
		return payload, nil
	case string:
		return []byte(payload), nil
	default:
		errorMsg := fmt.Sprintf("Procedure %s returned an unexpected payload type for user: %s", name, userID)
		logger.Debug(errorMsg)
		return nil, errors2.NewServerError(errors2.ErrorMessage{
			Code:        errMessage.Code,
			Message:     errMessage.Message,
			Description: errorMsg,
		}, fmt.Errorf("unexpected payload type %T", payload))
	}
}

func parseCount(raw interface{}) int {
	switch v := raw.(type) {
	case int64:
		return int(v)
	case int:
		return v
	case []byte:
		var n int
		_, _ = fmt.Sscanf(string(v), "%d", &n)
		return n
	default:
		return 0
	}
}
