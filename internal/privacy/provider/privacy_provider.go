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
	"github.com/wso2/identity-consent-privacy-service/internal/privacy/service"
	"github.com/wso2/identity-consent-privacy-service/internal/system/authn"
)

// PrivacyProviderInterface defines the interface for the privacy provider.
type PrivacyProviderInterface interface {
	GetPrivacyService(session authn.SessionInterface) service.PrivacyServiceInterface
}

// PrivacyProvider is the default implementation of the PrivacyProviderInterface.
type PrivacyProvider struct{}

// NewPrivacyProvider creates a new instance of PrivacyProvider.
func NewPrivacyProvider() PrivacyProviderInterface {

	return &PrivacyProvider{}
}

// GetPrivacyService returns a privacy service bound to the given session.
func (pp *PrivacyProvider) GetPrivacyService(session authn.SessionInterface) service.PrivacyServiceInterface {

	return service.GetPrivacyService(session)
}
