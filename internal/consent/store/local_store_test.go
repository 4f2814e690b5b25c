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
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wso2/identity-consent-privacy-service/internal/consent/model"
	"github.com/wso2/identity-consent-privacy-service/internal/system/log"
)

func newTestFileStore(t *testing.T) *FileConsentStore {
	_ = log.Init("debug")
	return NewFileConsentStore(t.TempDir(), time.Minute)
}

func TestLoadMissingBlobReturnsDefaults(t *testing.T) {
	store := newTestFileStore(t)

	consents, onboardingComplete := store.Load("user1")

	assert.False(t, onboardingComplete)
	assert.Len(t, consents, len(model.AllCategories()))
	for _, category := range model.AllCategories() {
		assert.False(t, consents[category].Granted)
	}
}

func TestPersistAndLoadRoundTrip(t *testing.T) {
	store := newTestFileStore(t)

	now := time.Now().UTC().Truncate(time.Second)
	set := model.DefaultConsentSet()
	set[model.CategoryAnalytics] = model.ConsentRecord{
		Category:  model.CategoryAnalytics,
		Granted:   true,
		GrantedAt: &now,
	}
	store.Persist("user1", set, true)

	loaded, onboardingComplete := store.Load("user1")

	assert.True(t, onboardingComplete)
	assert.True(t, loaded[model.CategoryAnalytics].Granted)
	require.NotNil(t, loaded[model.CategoryAnalytics].GrantedAt)
	assert.True(t, loaded[model.CategoryAnalytics].GrantedAt.Equal(now))
	assert.False(t, loaded[model.CategoryMarketing].Granted)
}

func TestLoadSurvivesProcessRestart(t *testing.T) {
	_ = log.Init("debug")
	dir := t.TempDir()

	first := NewFileConsentStore(dir, time.Minute)
	set := model.DefaultConsentSet()
	set[model.CategoryLocation] = model.ConsentRecord{Category: model.CategoryLocation, Granted: true}
	first.Persist("user1", set, true)

	// A fresh store with a cold cache reads the same state from disk.
	second := NewFileConsentStore(dir, time.Minute)
	loaded, onboardingComplete := second.Load("user1")

	assert.True(t, onboardingComplete)
	assert.True(t, loaded[model.CategoryLocation].Granted)
}

func TestLoadCorruptBlobReturnsDefaults(t *testing.T) {
	_ = log.Init("debug")
	dir := t.TempDir()
	store := NewFileConsentStore(dir, time.Minute)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "consents-user1.json"), []byte("{not json"), 0o600))

	consents, onboardingComplete := store.Load("user1")

	assert.False(t, onboardingComplete)
	assert.False(t, consents[model.CategoryAnalytics].Granted)
}

func TestLoadSchemaVersionMismatchReturnsDefaults(t *testing.T) {
	_ = log.Init("debug")
	dir := t.TempDir()
	store := NewFileConsentStore(dir, time.Minute)

	blob := fmt.Sprintf(`{"schema_version": 99, "user_id": "user1", "consents": {"%s": {"consent_type": "%s", "granted": true}}, "onboarding_complete": true}`,
		model.CategoryAnalytics, model.CategoryAnalytics)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "consents-user1.json"), []byte(blob), 0o600))

	consents, onboardingComplete := store.Load("user1")

	assert.False(t, onboardingComplete)
	assert.False(t, consents[model.CategoryAnalytics].Granted)
}

func TestLoadFillsMissingCategories(t *testing.T) {
	_ = log.Init("debug")
	dir := t.TempDir()
	store := NewFileConsentStore(dir, time.Minute)

	blob := `{"schema_version": 1, "user_id": "user1", "consents": {"camera": {"consent_type": "camera", "granted": true}}, "onboarding_complete": true}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "consents-user1.json"), []byte(blob), 0o600))

	consents, _ := store.Load("user1")

	assert.Len(t, consents, len(model.AllCategories()))
	assert.True(t, consents[model.CategoryCamera].Granted)
	assert.False(t, consents[model.CategoryLocation].Granted)
}

func TestPersistIsolatesUsers(t *testing.T) {
	store := newTestFileStore(t)

	set := model.DefaultConsentSet()
	set[model.CategoryMarketing] = model.ConsentRecord{Category: model.CategoryMarketing, Granted: true}
	store.Persist("user1", set, true)

	consents, onboardingComplete := store.Load("user2")

	assert.False(t, onboardingComplete)
	assert.False(t, consents[model.CategoryMarketing].Granted)
}

func TestPersistRejectsPathEscapingUserID(t *testing.T) {
	_ = log.Init("debug")
	dir := t.TempDir()
	store := NewFileConsentStore(dir, time.Minute)

	// A forged subject claim pointing outside the storage directory.
	userID := "../../../escape"
	set := model.DefaultConsentSet()
	set[model.CategoryLocation] = model.ConsentRecord{Category: model.CategoryLocation, Granted: true}
	store.Persist(userID, set, true)

	// Nothing may be written, inside the directory or above it.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
	_, err = os.Stat(filepath.Join(filepath.Dir(dir), "escape.json"))
	assert.True(t, os.IsNotExist(err))

	// The state is still served from memory for the process lifetime.
	consents, onboardingComplete := store.Load(userID)
	assert.True(t, onboardingComplete)
	assert.True(t, consents[model.CategoryLocation].Granted)

	store.Evict(userID)
	consents, onboardingComplete = store.Load(userID)
	assert.False(t, onboardingComplete)
	assert.False(t, consents[model.CategoryLocation].Granted)
}

func TestPersistToUnwritableDirDegradesToMemory(t *testing.T) {
	_ = log.Init("debug")
	store := NewFileConsentStore("/proc/nonexistent/consents", time.Minute)

	set := model.DefaultConsentSet()
	set[model.CategoryNotifications] = model.ConsentRecord{Category: model.CategoryNotifications, Granted: true}
	store.Persist("user1", set, false)

	// The write failed silently; the in-memory cache still serves the state.
	consents, _ := store.Load("user1")
	assert.True(t, consents[model.CategoryNotifications].Granted)
}
