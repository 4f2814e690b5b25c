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
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/wso2/identity-consent-privacy-service/internal/consent/model"
	"github.com/wso2/identity-consent-privacy-service/internal/system/log"
)

type MockRemoteStore struct {
	mock.Mock
}

func (m *MockRemoteStore) FetchConsents(ctx context.Context, userID string) ([]model.ConsentRecord, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]model.ConsentRecord), args.Error(1)
}

func (m *MockRemoteStore) UpsertConsent(ctx context.Context, userID string, record model.ConsentRecord) error {
	args := m.Called(ctx, userID, record)
	return args.Error(0)
}

func (m *MockRemoteStore) RevokeAllConsents(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type MockApplier struct {
	mock.Mock
}

func (m *MockApplier) ApplyRemote(records []model.ConsentRecord) {
	m.Called(records)
}

// fakeNotifier drives the event loop from the test without Redis.
type fakeNotifier struct {
	events chan struct{}
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{events: make(chan struct{}, 1)}
}

func (f *fakeNotifier) Subscribe(ctx context.Context, userID string) (<-chan struct{}, func(), error) {
	return f.events, func() { close(f.events) }, nil
}

func TestRefreshMergesRemoteRecords(t *testing.T) {
	_ = log.Init("debug")

	records := []model.ConsentRecord{
		{Category: model.CategoryAnalytics, Granted: true},
	}
	remote := new(MockRemoteStore)
	remote.On("FetchConsents", mock.Anything, "user1").Return(records, nil).Once()
	applier := new(MockApplier)
	applier.On("ApplyRemote", records).Return().Once()

	engine := NewSyncEngine("user1", applier, remote, newFakeNotifier())
	err := engine.Refresh(context.Background())

	assert.NoError(t, err)
	remote.AssertExpectations(t)
	applier.AssertExpectations(t)
}

func TestRefreshEmptyResultKeepsLocalState(t *testing.T) {
	_ = log.Init("debug")

	remote := new(MockRemoteStore)
	remote.On("FetchConsents", mock.Anything, "user1").Return([]model.ConsentRecord{}, nil).Once()
	applier := new(MockApplier)

	engine := NewSyncEngine("user1", applier, remote, newFakeNotifier())
	err := engine.Refresh(context.Background())

	assert.NoError(t, err)
	applier.AssertNotCalled(t, "ApplyRemote", mock.Anything)
}

func TestRefreshFetchFailure(t *testing.T) {
	_ = log.Init("debug")

	remote := new(MockRemoteStore)
	remote.On("FetchConsents", mock.Anything, "user1").
		Return([]model.ConsentRecord{}, errors.New("connection reset")).Once()
	applier := new(MockApplier)

	engine := NewSyncEngine("user1", applier, remote, newFakeNotifier())
	err := engine.Refresh(context.Background())

	assert.Error(t, err)
	applier.AssertNotCalled(t, "ApplyRemote", mock.Anything)
}

func TestChangeEventTriggersRefetch(t *testing.T) {
	_ = log.Init("debug")

	records := []model.ConsentRecord{
		{Category: model.CategoryLocation, Granted: true},
	}
	fetched := make(chan struct{}, 2)
	remote := new(MockRemoteStore)
	remote.On("FetchConsents", mock.Anything, "user1").Return(records, nil).
		Run(func(args mock.Arguments) { fetched <- struct{}{} })
	applier := new(MockApplier)
	applier.On("ApplyRemote", records).Return()

	notifier := newFakeNotifier()
	engine := NewSyncEngine("user1", applier, remote, notifier)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, engine.Start(ctx))

	// Initial refresh on Start.
	select {
	case <-fetched:
	case <-time.After(time.Second):
		t.Fatal("initial refresh did not happen")
	}

	// A change event triggers a full refetch.
	notifier.events <- struct{}{}
	select {
	case <-fetched:
	case <-time.After(time.Second):
		t.Fatal("refetch after change event did not happen")
	}

	engine.Stop()
	applier.AssertExpectations(t)
}

func TestStopWithoutStart(t *testing.T) {
	_ = log.Init("debug")

	engine := NewSyncEngine("user1", new(MockApplier), new(MockRemoteStore), newFakeNotifier())
	engine.Stop()
}
