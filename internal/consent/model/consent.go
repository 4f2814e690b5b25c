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

package model

import "time"

// ConsentCategory is one of a fixed set of data-use purposes a user can
// independently allow or deny.
type ConsentCategory string

const (
	CategoryLocation      ConsentCategory = "location"
	CategoryCamera        ConsentCategory = "camera"
	CategoryNotifications ConsentCategory = "notifications"
	CategoryAnalytics     ConsentCategory = "analytics"
	CategoryMarketing     ConsentCategory = "marketing"
)

// AllCategories returns the fixed category set in its canonical order.
func AllCategories() []ConsentCategory {
	return []ConsentCategory{
		CategoryLocation,
		CategoryCamera,
		CategoryNotifications,
		CategoryAnalytics,
		CategoryMarketing,
	}
}

// CategoryInfo is the static descriptive metadata of a category. Essential
// categories are exempt from the reject-non-essential bulk action.
type CategoryInfo struct {
	Category    ConsentCategory `json:"category"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Essential   bool            `json:"essential"`
}

// CategoryCatalog maps every category to its metadata. The current set is
// uniformly non-essential; the Essential flag stays live in the policy code
// so a future essential category needs no code change beyond this table.
var CategoryCatalog = map[ConsentCategory]CategoryInfo{
	CategoryLocation: {
		Category:    CategoryLocation,
		Title:       "Location",
		Description: "Used to find nearby courts and suggest matches in your area.",
		Essential:   false,
	},
	CategoryCamera: {
		Category:    CategoryCamera,
		Title:       "Camera and Photos",
		Description: "Allows adding a profile photo, match photos and sharing moments.",
		Essential:   false,
	},
	CategoryNotifications: {
		Category:    CategoryNotifications,
		Title:       "Notifications",
		Description: "Receive alerts about match invites, messages and important updates.",
		Essential:   false,
	},
	CategoryAnalytics: {
		Category:    CategoryAnalytics,
		Title:       "Usage Analytics",
		Description: "Helps improve the app by analyzing how you use it (anonymous data).",
		Essential:   false,
	},
	CategoryMarketing: {
		Category:    CategoryMarketing,
		Title:       "Marketing",
		Description: "Receive news, promotions and personalized tips about sports and events.",
		Essential:   false,
	},
}

// IsValid reports whether c belongs to the fixed category set.
func (c ConsentCategory) IsValid() bool {
	_, ok := CategoryCatalog[c]
	return ok
}

// ConsentRecord is the consent state of one (user, category) pair.
//
// GrantedAt is set on grant and kept across a later revoke so the original
// grant time survives. RevokedAt is set on revoke and cleared on re-grant.
// A never-touched category has both timestamps nil and Granted false.
type ConsentRecord struct {
	Category  ConsentCategory `json:"consent_type"`
	Granted   bool            `json:"granted"`
	GrantedAt *time.Time      `json:"granted_at"`
	RevokedAt *time.Time      `json:"revoked_at"`
}

// ConsentSet maps every category to its record. A loaded set is always fully
// populated.
type ConsentSet map[ConsentCategory]ConsentRecord

// DefaultConsentSet returns an all-false set with nil timestamps.
func DefaultConsentSet() ConsentSet {
	set := make(ConsentSet, len(CategoryCatalog))
	for _, category := range AllCategories() {
		set[category] = ConsentRecord{Category: category}
	}
	return set
}

// Clone returns a shallow copy. Mutations happen on copies so concurrent
// readers never observe a partially updated set.
func (s ConsentSet) Clone() ConsentSet {
	cloned := make(ConsentSet, len(s))
	for category, record := range s {
		cloned[category] = record
	}
	return cloned
}

// ConsentUpdateResult reports the outcome of a single consent mutation. The
// local state change is applied regardless; RemoteSynced tells the caller
// whether the remote push succeeded.
type ConsentUpdateResult struct {
	Category     ConsentCategory `json:"category"`
	Granted      bool            `json:"granted"`
	RemoteSynced bool            `json:"remote_synced"`
	RemoteError  string          `json:"remote_error,omitempty"`
}

// BulkConsentResult reports the outcome of a bulk consent operation.
// For revoke-all, RemoteSynced reflects the authoritative bulk remote call;
// the per-category results are best-effort state synchronization.
type BulkConsentResult struct {
	Results        []ConsentUpdateResult `json:"results"`
	RemoteSynced   bool                  `json:"remote_synced"`
	PartialFailure bool                  `json:"partial_failure"`
}
