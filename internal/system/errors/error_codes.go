/*
 * Copyright (c) 2025-2026, WSO2 LLC. (http://www.wso2.com).
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

package errors

const errorPrefix = "CPS-"

var (
	// Server error codes

	FETCH_CONSENTS = ErrorMessage{
		Code:    errorPrefix + "15001",
		Message: "Error while fetching user consents.",
	}

	UPSERT_CONSENT = ErrorMessage{
		Code:    errorPrefix + "15002",
		Message: "Error while storing user consent.",
	}

	REVOKE_ALL_CONSENTS = ErrorMessage{
		Code:    errorPrefix + "15003",
		Message: "Error while revoking all user consents.",
	}

	EXPORT_USER_DATA = ErrorMessage{
		Code:    errorPrefix + "15004",
		Message: "Error while exporting user data.",
	}

	DELETE_USER_DATA = ErrorMessage{
		Code:    errorPrefix + "15005",
		Message: "Error while deleting user data.",
	}

	FETCH_DATA_SUMMARY = ErrorMessage{
		Code:    errorPrefix + "15006",
		Message: "Error while fetching data summary.",
	}

	CONSENT_SYNC = ErrorMessage{
		Code:    errorPrefix + "15007",
		Message: "Error while synchronizing consents with the remote store.",
	}

	PARSING_ERROR = ErrorMessage{
		Code:    errorPrefix + "15008",
		Message: "Error while parsing token claims.",
	}

	SAVE_EXPORT_FILE = ErrorMessage{
		Code:    errorPrefix + "15009",
		Message: "Error while saving the export snapshot to a file.",
	}

	// Client error codes

	UN_AUTHORIZED = ErrorMessage{
		Code:    errorPrefix + "11001",
		Message: "User is not authenticated.",
	}

	INVALID_CONSENT_CATEGORY = ErrorMessage{
		Code:    errorPrefix + "11002",
		Message: "Invalid consent category.",
	}

	BAD_REQUEST = ErrorMessage{
		Code:    errorPrefix + "11003",
		Message: "Invalid request.",
	}
)
