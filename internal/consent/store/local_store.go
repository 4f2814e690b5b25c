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
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/wso2/identity-consent-privacy-service/internal/consent/model"
	"github.com/wso2/identity-consent-privacy-service/internal/system/cache"
	"github.com/wso2/identity-consent-privacy-service/internal/system/constants"
	"github.com/wso2/identity-consent-privacy-service/internal/system/log"
)

// LocalConsentStoreInterface is the durable, offline-first cache of the
// consent set and onboarding flag per user. It is a best-effort accelerator
// mirroring the remote system of record, so neither operation returns an
// error: absence is a valid state and I/O failures are logged and swallowed.
type LocalConsentStoreInterface interface {
	Load(userID string) (model.ConsentSet, bool)
	Persist(userID string, consents model.ConsentSet, onboardingComplete bool)
	Evict(userID string)
}

// consentBlob is the serialized per-user record. The schema version allows
// safe migration when the category set or record shape changes.
type consentBlob struct {
	SchemaVersion      int              `json:"schema_version"`
	UserID             string           `json:"user_id"`
	Consents           model.ConsentSet `json:"consents"`
	OnboardingComplete bool             `json:"onboarding_complete"`
}

// FileConsentStore persists one JSON blob per user under a storage directory,
// fronted by an in-memory TTL cache.
type FileConsentStore struct {
	dir      string
	memCache *cache.Cache
}

// NewFileConsentStore creates a store rooted at dir.
func NewFileConsentStore(dir string, cacheTTL time.Duration) *FileConsentStore {
	return &FileConsentStore{
		dir:      dir,
		memCache: cache.NewCache(cacheTTL),
	}
}

// Load returns the cached consent set and onboarding flag for the user. A
// missing, unreadable or version-mismatched blob yields the all-false
// default set and onboarding incomplete.
func (s *FileConsentStore) Load(userID string) (model.ConsentSet, bool) {

	logger := log.GetLogger()

	if cached, found := s.memCache.Get(cacheKey(userID)); found {
		if blob, ok := cached.(consentBlob); ok {
			return normalizeSet(blob.Consents), blob.OnboardingComplete
		}
	}

	if !safeBlobUserID(userID) {
		return model.DefaultConsentSet(), false
	}

	data, err := os.ReadFile(s.filePath(userID))
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn(fmt.Sprintf("Failed to read consent cache for user: %s", userID), log.Error(err))
		}
		return model.DefaultConsentSet(), false
	}

	var blob consentBlob
	if err := json.Unmarshal(data, &blob); err != nil {
		logger.Warn(fmt.Sprintf("Discarding unreadable consent cache for user: %s", userID), log.Error(err))
		return model.DefaultConsentSet(), false
	}
	if blob.SchemaVersion != constants.ConsentSchemaVersion {
		logger.Warn(fmt.Sprintf("Discarding consent cache with unknown schema version for user: %s", userID),
			log.Int("schema_version", blob.SchemaVersion))
		return model.DefaultConsentSet(), false
	}

	s.memCache.Set(cacheKey(userID), blob)
	return normalizeSet(blob.Consents), blob.OnboardingComplete
}

// Persist durably stores the consent set and onboarding flag as one atomic
// pair, replacing any prior value. Write failures leave the in-memory state
// authoritative for the process lifetime.
func (s *FileConsentStore) Persist(userID string, consents model.ConsentSet, onboardingComplete bool) {

	logger := log.GetLogger()
	blob := consentBlob{
		SchemaVersion:      constants.ConsentSchemaVersion,
		UserID:             userID,
		Consents:           consents.Clone(),
		OnboardingComplete: onboardingComplete,
	}
	s.memCache.Set(cacheKey(userID), blob)

	if !safeBlobUserID(userID) {
		logger.Warn("Refusing to persist consent cache for a user id containing path separators")
		return
	}

	data, err := json.Marshal(blob)
	if err != nil {
		logger.Error("Failed to serialize consent cache", log.Error(err))
		return
	}

	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		logger.Warn("Failed to create consent cache directory", log.Error(err))
		return
	}

	// Write to a temp file and rename so a crash never leaves a torn blob.
	target := s.filePath(userID)
	tmp, err := os.CreateTemp(s.dir, "consents-*.tmp")
	if err != nil {
		logger.Warn("Failed to create temp file for consent cache", log.Error(err))
		return
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		logger.Warn("Failed to write consent cache", log.Error(err))
		return
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		logger.Warn("Failed to close consent cache file", log.Error(err))
		return
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		_ = os.Remove(tmp.Name())
		logger.Warn("Failed to replace consent cache file", log.Error(err))
		return
	}
	logger.Debug(fmt.Sprintf("Persisted consent cache for user: %s", userID))
}

// Evict drops the cached blob of a user, memory and disk. Called after an
// account deletion so the erased user's consents do not outlive the account.
func (s *FileConsentStore) Evict(userID string) {

	s.memCache.Delete(cacheKey(userID))
	if !safeBlobUserID(userID) {
		return
	}
	if err := os.Remove(s.filePath(userID)); err != nil && !os.IsNotExist(err) {
		log.GetLogger().Warn(fmt.Sprintf("Failed to remove consent cache for user: %s", userID), log.Error(err))
	}
}

func (s *FileConsentStore) filePath(userID string) string {
	return filepath.Join(s.dir, fmt.Sprintf("consents-%s.json", userID))
}

// safeBlobUserID guards the blob file name. The subject identifier comes from
// an unverified token claim, so one carrying path separators must never reach
// filepath.Join and escape the storage directory.
func safeBlobUserID(userID string) bool {
	return !strings.ContainsAny(userID, `/\`)
}

func cacheKey(userID string) string {
	return "consents:" + userID
}

// normalizeSet fills categories missing from a stored blob with defaults so
// callers always see a fully populated set.
func normalizeSet(set model.ConsentSet) model.ConsentSet {
	normalized := model.DefaultConsentSet()
	for category, record := range set {
		if category.IsValid() {
			normalized[category] = record
		}
	}
	return normalized
}
