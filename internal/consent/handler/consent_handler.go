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

package handler

import (
	"encoding/json"
	"net/http"

	consentModel "github.com/wso2/identity-consent-privacy-service/internal/consent/model"
	"github.com/wso2/identity-consent-privacy-service/internal/consent/provider"
	"github.com/wso2/identity-consent-privacy-service/internal/system/authn"
	"github.com/wso2/identity-consent-privacy-service/internal/system/errors"
	"github.com/wso2/identity-consent-privacy-service/internal/system/log"
	"github.com/wso2/identity-consent-privacy-service/internal/system/utils"
)

// consentUpdateRequest is the body of PUT /consents.
type consentUpdateRequest struct {
	Category consentModel.ConsentCategory `json:"consent_type"`
	Granted  bool                         `json:"granted"`
}

// consentStateResponse is the shape returned by GET /consents.
type consentStateResponse struct {
	Consents           consentModel.ConsentSet `json:"consents"`
	OnboardingComplete bool                    `json:"onboarding_complete"`
}

type ConsentHandler struct{}

func NewConsentHandler() *ConsentHandler {
	return &ConsentHandler{}
}

// publishChange broadcasts a consent change, best effort. Other devices of
// the user refetch on the event; a lost event only delays their sync.
func publishChange(r *http.Request, userID string) {
	if err := provider.NewConsentProvider().GetChangePublisher().Publish(r.Context(), userID); err != nil {
		log.GetLogger().Debug("Failed to publish consent change event", log.Error(err))
	}
}

// GetConsents handles GET /consents
func (h *ConsentHandler) GetConsents(w http.ResponseWriter, r *http.Request) {

	userID, err := authn.ResolveUserID(r)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	consentProvider := provider.NewConsentProvider()
	service := consentProvider.GetConsentService(userID)

	// Merge the remote system of record before answering. A failed refresh
	// falls back to the cached local state.
	_ = consentProvider.GetSyncEngine(userID, service).Refresh(r.Context())

	response := consentStateResponse{
		Consents:           service.Consents(),
		OnboardingComplete: service.HasCompletedOnboarding(),
	}
	utils.WriteJSONResponse(w, http.StatusOK, response)
}

// UpdateConsent handles PUT /consents
func (h *ConsentHandler) UpdateConsent(w http.ResponseWriter, r *http.Request) {

	userID, err := authn.ResolveUserID(r)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	var request consentUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		clientError := errors.NewClientError(errors.ErrorMessage{
			Code:        errors.BAD_REQUEST.Code,
			Message:     errors.BAD_REQUEST.Message,
			Description: utils.HandleDecodeError(err, "consent update"),
		}, http.StatusBadRequest)
		utils.HandleError(w, clientError)
		return
	}

	service := provider.NewConsentProvider().GetConsentService(userID)
	var result *consentModel.ConsentUpdateResult
	if request.Granted {
		result, err = service.GrantConsent(r.Context(), request.Category)
	} else {
		result, err = service.RevokeConsent(r.Context(), request.Category)
	}
	if err != nil {
		utils.HandleError(w, err)
		return
	}
	publishChange(r, userID)
	utils.WriteJSONResponse(w, http.StatusOK, result)
}

// GrantAllConsents handles POST /consents/grant-all
func (h *ConsentHandler) GrantAllConsents(w http.ResponseWriter, r *http.Request) {

	userID, err := authn.ResolveUserID(r)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	service := provider.NewConsentProvider().GetConsentService(userID)
	result := service.GrantAllConsents(r.Context())
	publishChange(r, userID)
	utils.WriteJSONResponse(w, http.StatusOK, result)
}

// RevokeAllConsents handles POST /consents/revoke-all
func (h *ConsentHandler) RevokeAllConsents(w http.ResponseWriter, r *http.Request) {

	userID, err := authn.ResolveUserID(r)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	service := provider.NewConsentProvider().GetConsentService(userID)
	result := service.RevokeAllConsents(r.Context())
	publishChange(r, userID)
	utils.WriteJSONResponse(w, http.StatusOK, result)
}

// AcceptEssentialOnly handles POST /consents/essential-only
func (h *ConsentHandler) AcceptEssentialOnly(w http.ResponseWriter, r *http.Request) {

	userID, err := authn.ResolveUserID(r)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	service := provider.NewConsentProvider().GetConsentService(userID)
	result := service.AcceptEssentialOnly(r.Context())
	publishChange(r, userID)
	utils.WriteJSONResponse(w, http.StatusOK, result)
}

// CompleteOnboarding handles POST /consents/onboarding
func (h *ConsentHandler) CompleteOnboarding(w http.ResponseWriter, r *http.Request) {

	userID, err := authn.ResolveUserID(r)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	service := provider.NewConsentProvider().GetConsentService(userID)
	service.CompleteConsentOnboarding()
	w.WriteHeader(http.StatusNoContent)
}
