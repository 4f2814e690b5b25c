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

package constants

// ApiBasePath is the base path all HTTP services are mounted under.
const ApiBasePath = "/api/v1"

// ExportFormatVersion tags every export snapshot so consumers can detect
// shape changes.
const ExportFormatVersion = "1.0"

// ConsentSchemaVersion tags the locally persisted consent blob. Blobs with a
// different version are discarded and rebuilt from the remote store.
const ConsentSchemaVersion = 1

// ConsentChannelPrefix is the Pub/Sub channel prefix for per-user consent
// change notifications. The full channel name is prefix + user id.
const ConsentChannelPrefix = "user-consents:"
