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

// SocialGraph holds following/followers as identity-reference lists.
type SocialGraph struct {
	Following []string `json:"following"`
	Followers []string `json:"followers"`
}

// ExportMetadata describes one export snapshot.
type ExportMetadata struct {
	ExportedAt    string `json:"exported_at"`
	UserID        string `json:"user_id"`
	FormatVersion string `json:"format_version"`
}

// DataExportSnapshot is an immutable, point-in-time aggregate of all data
// associated with a user. Created fresh on each export call and handed to
// the caller; never stored by this subsystem.
type DataExportSnapshot struct {
	Profile        map[string]interface{} `json:"profile"`
	Matches        []interface{}          `json:"matches"`
	Bookings       []interface{}          `json:"bookings"`
	Posts          []interface{}          `json:"posts"`
	Social         SocialGraph            `json:"social"`
	Consents       []interface{}          `json:"consents"`
	ExportMetadata ExportMetadata         `json:"export_metadata"`
}

// DeletionResult is the audit receipt returned by the remote deletion
// procedure: how many rows were deleted or anonymized per category.
type DeletionResult struct {
	AnalyticsAnonymized int `json:"analytics_anonymized"`
	ConsentsDeleted     int `json:"consents_deleted"`
	MatchPlayersDeleted int `json:"match_players_deleted"`
	InvitesDeleted      int `json:"invites_deleted"`
	MatchesDeleted      int `json:"matches_deleted"`
	FollowsDeleted      int `json:"follows_deleted"`
	CheckinsDeleted     int `json:"checkins_deleted"`
	PostsDeleted        int `json:"posts_deleted"`
	BookingsAnonymized  int `json:"bookings_anonymized"`
	ProfileDeleted      int `json:"profile_deleted"`
}

// DataSummary counts what a deletion would remove, for confirmation screens.
type DataSummary struct {
	Matches   int `json:"matches"`
	Posts     int `json:"posts"`
	Bookings  int `json:"bookings"`
	Followers int `json:"followers"`
	Following int `json:"following"`
}

// ExportResult is the structured outcome of the export workflow. Workflows
// return results rather than raising errors across the public boundary so
// callers always branch on Success.
type ExportResult struct {
	Success bool                `json:"success"`
	Data    *DataExportSnapshot `json:"data,omitempty"`
	Error   string              `json:"error,omitempty"`
}

// DeletionOutcome is the structured outcome of the deletion workflow.
type DeletionOutcome struct {
	Success bool            `json:"success"`
	Result  *DeletionResult `json:"result,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// SummaryOutcome is the structured outcome of the data summary query.
type SummaryOutcome struct {
	Success bool         `json:"success"`
	Summary *DataSummary `json:"summary,omitempty"`
	Error   string       `json:"error,omitempty"`
}
