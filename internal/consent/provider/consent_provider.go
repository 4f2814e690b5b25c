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

package provider

import (
	"github.com/wso2/identity-consent-privacy-service/internal/consent/service"
	"github.com/wso2/identity-consent-privacy-service/internal/consent/store"
	"github.com/wso2/identity-consent-privacy-service/internal/consent/sync"
)

// ConsentProviderInterface defines the interface for the consent provider.
type ConsentProviderInterface interface {
	GetConsentService(userID string) service.ConsentServiceInterface
	GetSyncEngine(userID string, applier sync.ConsentApplier) *sync.SyncEngine
	GetChangePublisher() sync.ChangePublisherInterface
}

// ConsentProvider is the default implementation of the ConsentProviderInterface.
type ConsentProvider struct{}

// NewConsentProvider creates a new instance of ConsentProvider.
func NewConsentProvider() ConsentProviderInterface {

	return &ConsentProvider{}
}

// GetConsentService returns a consent service scoped to the given user.
func (cp *ConsentProvider) GetConsentService(userID string) service.ConsentServiceInterface {

	return service.GetConsentService(userID)
}

// GetSyncEngine returns a sync engine feeding remote state into the applier.
func (cp *ConsentProvider) GetSyncEngine(userID string, applier sync.ConsentApplier) *sync.SyncEngine {

	return sync.NewSyncEngine(userID, applier, store.NewPostgresConsentStore(), sync.GetChangeNotifier())
}

// GetChangePublisher returns the shared consent change publisher.
func (cp *ConsentProvider) GetChangePublisher() sync.ChangePublisherInterface {

	return sync.GetChangeNotifier()
}
