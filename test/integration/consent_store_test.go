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

package integration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wso2/identity-consent-privacy-service/internal/consent/model"
	"github.com/wso2/identity-consent-privacy-service/internal/consent/store"
)

func TestConsentRoundTrip(t *testing.T) {
	ctx := context.Background()
	consentStore := store.NewPostgresConsentStore()

	now := time.Now().UTC().Truncate(time.Second)
	record := model.ConsentRecord{
		Category:  model.CategoryAnalytics,
		Granted:   true,
		GrantedAt: &now,
	}
	require.NoError(t, consentStore.UpsertConsent(ctx, "it-user-1", record))

	records, err := consentStore.FetchConsents(ctx, "it-user-1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, model.CategoryAnalytics, records[0].Category)
	assert.True(t, records[0].Granted)
	require.NotNil(t, records[0].GrantedAt)
	assert.True(t, records[0].GrantedAt.Equal(now))
	assert.Nil(t, records[0].RevokedAt)
}

func TestConsentUpsertReplacesExistingRow(t *testing.T) {
	ctx := context.Background()
	consentStore := store.NewPostgresConsentStore()

	grantedAt := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, consentStore.UpsertConsent(ctx, "it-user-2", model.ConsentRecord{
		Category:  model.CategoryLocation,
		Granted:   true,
		GrantedAt: &grantedAt,
	}))

	revokedAt := grantedAt.Add(time.Minute)
	require.NoError(t, consentStore.UpsertConsent(ctx, "it-user-2", model.ConsentRecord{
		Category:  model.CategoryLocation,
		Granted:   false,
		GrantedAt: &grantedAt,
		RevokedAt: &revokedAt,
	}))

	records, err := consentStore.FetchConsents(ctx, "it-user-2")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.False(t, records[0].Granted)
	require.NotNil(t, records[0].GrantedAt)
	assert.True(t, records[0].GrantedAt.Equal(grantedAt))
	require.NotNil(t, records[0].RevokedAt)
	assert.True(t, records[0].RevokedAt.Equal(revokedAt))
}

func TestRevokeAllConsentsProcedure(t *testing.T) {
	ctx := context.Background()
	consentStore := store.NewPostgresConsentStore()

	now := time.Now().UTC().Truncate(time.Second)
	for _, category := range model.AllCategories() {
		require.NoError(t, consentStore.UpsertConsent(ctx, "it-user-3", model.ConsentRecord{
			Category:  category,
			Granted:   true,
			GrantedAt: &now,
		}))
	}

	require.NoError(t, consentStore.RevokeAllConsents(ctx, "it-user-3"))

	records, err := consentStore.FetchConsents(ctx, "it-user-3")
	require.NoError(t, err)
	require.Len(t, records, len(model.AllCategories()))
	for _, record := range records {
		assert.False(t, record.Granted)
		assert.NotNil(t, record.RevokedAt)
	}
}

func TestFetchConsentsEmptyForUnknownUser(t *testing.T) {
	ctx := context.Background()
	consentStore := store.NewPostgresConsentStore()

	records, err := consentStore.FetchConsents(ctx, "it-user-none")
	require.NoError(t, err)
	assert.Empty(t, records)
}
