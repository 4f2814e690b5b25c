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
	"errors"
	"net/http"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	consentModel "github.com/wso2/identity-consent-privacy-service/internal/consent/model"
	"github.com/wso2/identity-consent-privacy-service/internal/privacy/model"
	"github.com/wso2/identity-consent-privacy-service/internal/system/config"
	errors2 "github.com/wso2/identity-consent-privacy-service/internal/system/errors"
	"github.com/wso2/identity-consent-privacy-service/internal/system/log"
)

type MockPrivacyStore struct {
	mock.Mock
}

func (m *MockPrivacyStore) ExportUserData(ctx context.Context, userID string) (*model.DataExportSnapshot, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DataExportSnapshot), args.Error(1)
}

func (m *MockPrivacyStore) DeleteUserData(ctx context.Context, userID string) (*model.DeletionResult, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DeletionResult), args.Error(1)
}

func (m *MockPrivacyStore) FetchDataSummary(ctx context.Context, userID string) (*model.DataSummary, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DataSummary), args.Error(1)
}

type MockSession struct {
	mock.Mock
}

func (m *MockSession) CurrentUserID() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockSession) SignOut() error {
	args := m.Called()
	return args.Error(0)
}

func newTestPrivacyService(t *testing.T, session *MockSession, store *MockPrivacyStore) *PrivacyService {
	_ = log.Init("debug")
	return NewPrivacyService(session, store, nil, t.TempDir(), config.RetryConfig{})
}

func TestExportUserData(t *testing.T) {
	session := new(MockSession)
	session.On("CurrentUserID").Return("user1")

	snapshot := &model.DataExportSnapshot{
		Profile: map[string]interface{}{"display_name": "Sam"},
	}
	store := new(MockPrivacyStore)
	store.On("ExportUserData", mock.Anything, "user1").Return(snapshot, nil).Once()

	svc := newTestPrivacyService(t, session, store)
	result := svc.ExportUserData(context.Background())

	assert.True(t, result.Success)
	assert.Equal(t, snapshot, result.Data)
	assert.Empty(t, result.Error)
	assert.Equal(t, "user1", result.Data.ExportMetadata.UserID)
	assert.Equal(t, "1.0", result.Data.ExportMetadata.FormatVersion)
	assert.NotEmpty(t, result.Data.ExportMetadata.ExportedAt)
	store.AssertExpectations(t)
}

func TestExportUserDataUnauthenticated(t *testing.T) {
	session := new(MockSession)
	session.On("CurrentUserID").Return("")
	store := new(MockPrivacyStore)

	svc := newTestPrivacyService(t, session, store)
	result := svc.ExportUserData(context.Background())

	assert.False(t, result.Success)
	assert.Equal(t, "User is not authenticated.", result.Error)
	store.AssertNotCalled(t, "ExportUserData", mock.Anything, mock.Anything)
}

func TestExportUserDataRemoteFailure(t *testing.T) {
	session := new(MockSession)
	session.On("CurrentUserID").Return("user1")
	store := new(MockPrivacyStore)
	store.On("ExportUserData", mock.Anything, "user1").
		Return(nil, errors.New("aggregation failed")).Once()

	svc := newTestPrivacyService(t, session, store)
	result := svc.ExportUserData(context.Background())

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "aggregation failed")
	assert.Nil(t, result.Data)
}

func TestDeleteAllUserData(t *testing.T) {
	session := new(MockSession)
	session.On("CurrentUserID").Return("user1")
	session.On("SignOut").Return(nil).Once()

	deletion := &model.DeletionResult{
		ConsentsDeleted: 5,
		MatchesDeleted:  2,
		ProfileDeleted:  1,
	}
	store := new(MockPrivacyStore)
	store.On("ExportUserData", mock.Anything, "user1").Return(&model.DataExportSnapshot{}, nil).Once()
	store.On("DeleteUserData", mock.Anything, "user1").Return(deletion, nil).Once()

	svc := newTestPrivacyService(t, session, store)
	outcome := svc.DeleteAllUserData(context.Background())

	assert.True(t, outcome.Success)
	// The per-table counts are passed through untouched.
	assert.Equal(t, deletion, outcome.Result)
	session.AssertNumberOfCalls(t, "SignOut", 1)
	store.AssertExpectations(t)
}

func TestDeleteAllUserDataExportsBeforeDeleting(t *testing.T) {
	session := new(MockSession)
	session.On("CurrentUserID").Return("user1")
	session.On("SignOut").Return(nil).Once()

	var calls []string
	store := new(MockPrivacyStore)
	store.On("ExportUserData", mock.Anything, "user1").
		Run(func(args mock.Arguments) { calls = append(calls, "export") }).
		Return(&model.DataExportSnapshot{}, nil).Once()
	store.On("DeleteUserData", mock.Anything, "user1").
		Run(func(args mock.Arguments) { calls = append(calls, "delete") }).
		Return(&model.DeletionResult{ProfileDeleted: 1}, nil).Once()

	svc := newTestPrivacyService(t, session, store)
	outcome := svc.DeleteAllUserData(context.Background())

	assert.True(t, outcome.Success)
	// The last-resort export has to run while the data still exists.
	assert.Equal(t, []string{"export", "delete"}, calls)
}

func TestDeleteAllUserDataFailureKeepsSession(t *testing.T) {
	session := new(MockSession)
	session.On("CurrentUserID").Return("user1")

	store := new(MockPrivacyStore)
	store.On("ExportUserData", mock.Anything, "user1").Return(&model.DataExportSnapshot{}, nil).Once()
	store.On("DeleteUserData", mock.Anything, "user1").
		Return(nil, errors.New("deletion procedure failed"))

	svc := newTestPrivacyService(t, session, store)
	outcome := svc.DeleteAllUserData(context.Background())

	assert.False(t, outcome.Success)
	assert.Contains(t, outcome.Error, "deletion procedure failed")
	// A failed deletion leaves the intact account signed in.
	session.AssertNotCalled(t, "SignOut")
}

func TestDeleteAllUserDataUnauthenticated(t *testing.T) {
	session := new(MockSession)
	session.On("CurrentUserID").Return("")
	store := new(MockPrivacyStore)

	svc := newTestPrivacyService(t, session, store)
	outcome := svc.DeleteAllUserData(context.Background())

	assert.False(t, outcome.Success)
	store.AssertNotCalled(t, "ExportUserData", mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "DeleteUserData", mock.Anything, mock.Anything)
	session.AssertNotCalled(t, "SignOut")
}

func TestDeleteAllUserDataProceedsWhenExportFails(t *testing.T) {
	session := new(MockSession)
	session.On("CurrentUserID").Return("user1")
	session.On("SignOut").Return(nil).Once()

	store := new(MockPrivacyStore)
	store.On("ExportUserData", mock.Anything, "user1").
		Return(nil, errors.New("export unavailable")).Once()
	store.On("DeleteUserData", mock.Anything, "user1").
		Return(&model.DeletionResult{ProfileDeleted: 1}, nil).Once()

	svc := newTestPrivacyService(t, session, store)
	outcome := svc.DeleteAllUserData(context.Background())

	// The best-effort export must not block the erasure right.
	assert.True(t, outcome.Success)
	store.AssertExpectations(t)
}

func TestDeleteAllUserDataRetriesTransientFailures(t *testing.T) {
	session := new(MockSession)
	session.On("CurrentUserID").Return("user1")
	session.On("SignOut").Return(nil).Once()

	store := new(MockPrivacyStore)
	store.On("ExportUserData", mock.Anything, "user1").Return(&model.DataExportSnapshot{}, nil).Once()
	store.On("DeleteUserData", mock.Anything, "user1").
		Return(nil, errors.New("deadlock detected")).Twice()
	store.On("DeleteUserData", mock.Anything, "user1").
		Return(&model.DeletionResult{ProfileDeleted: 1}, nil).Once()

	_ = log.Init("debug")
	svc := NewPrivacyService(session, store, nil, t.TempDir(), config.RetryConfig{
		MaxRetries:            3,
		InitialIntervalMillis: 1,
		MaxIntervalMillis:     5,
	})
	outcome := svc.DeleteAllUserData(context.Background())

	assert.True(t, outcome.Success)
	store.AssertNumberOfCalls(t, "DeleteUserData", 3)
	session.AssertNumberOfCalls(t, "SignOut", 1)
}

type MockConsentCache struct {
	mock.Mock
}

func (m *MockConsentCache) Load(userID string) (consentModel.ConsentSet, bool) {
	args := m.Called(userID)
	return args.Get(0).(consentModel.ConsentSet), args.Bool(1)
}

func (m *MockConsentCache) Persist(userID string, consents consentModel.ConsentSet, onboardingComplete bool) {
	m.Called(userID, consents, onboardingComplete)
}

func (m *MockConsentCache) Evict(userID string) {
	m.Called(userID)
}

func TestDeleteAllUserDataEvictsLocalConsentCache(t *testing.T) {
	session := new(MockSession)
	session.On("CurrentUserID").Return("user1")
	session.On("SignOut").Return(nil)

	store := new(MockPrivacyStore)
	store.On("ExportUserData", mock.Anything, "user1").Return(&model.DataExportSnapshot{}, nil)
	store.On("DeleteUserData", mock.Anything, "user1").Return(&model.DeletionResult{ProfileDeleted: 1}, nil)

	cache := new(MockConsentCache)
	cache.On("Evict", "user1").Return().Once()

	_ = log.Init("debug")
	svc := NewPrivacyService(session, store, cache, t.TempDir(), config.RetryConfig{})
	outcome := svc.DeleteAllUserData(context.Background())

	assert.True(t, outcome.Success)
	cache.AssertExpectations(t)
}

func TestGetDataSummary(t *testing.T) {
	session := new(MockSession)
	session.On("CurrentUserID").Return("user1")

	summary := &model.DataSummary{Matches: 4, Posts: 12, Followers: 3}
	store := new(MockPrivacyStore)
	store.On("FetchDataSummary", mock.Anything, "user1").Return(summary, nil).Once()

	svc := newTestPrivacyService(t, session, store)
	outcome := svc.GetDataSummary(context.Background())

	assert.True(t, outcome.Success)
	assert.Equal(t, summary, outcome.Summary)
}

func TestGetDataSummaryUnauthenticated(t *testing.T) {
	session := new(MockSession)
	session.On("CurrentUserID").Return("")
	store := new(MockPrivacyStore)

	svc := newTestPrivacyService(t, session, store)
	outcome := svc.GetDataSummary(context.Background())

	assert.False(t, outcome.Success)
	store.AssertNotCalled(t, "FetchDataSummary", mock.Anything, mock.Anything)
}

func TestSaveExportToFile(t *testing.T) {
	session := new(MockSession)
	store := new(MockPrivacyStore)
	svc := newTestPrivacyService(t, session, store)

	snapshot := &model.DataExportSnapshot{
		Profile: map[string]interface{}{"display_name": "Sam"},
	}
	path, err := svc.SaveExportToFile(snapshot)

	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var loaded model.DataExportSnapshot
	require.NoError(t, json.Unmarshal(data, &loaded))
	assert.Equal(t, "Sam", loaded.Profile["display_name"])
}

func TestSaveExportToFileNilSnapshot(t *testing.T) {
	session := new(MockSession)
	store := new(MockPrivacyStore)
	svc := newTestPrivacyService(t, session, store)

	_, err := svc.SaveExportToFile(nil)
	require.Error(t, err)

	var clientError *errors2.ClientError
	require.ErrorAs(t, err, &clientError)
	assert.Equal(t, http.StatusBadRequest, clientError.StatusCode)
}
