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
	"net/http"

	"github.com/wso2/identity-consent-privacy-service/internal/privacy/provider"
	"github.com/wso2/identity-consent-privacy-service/internal/system/authn"
	"github.com/wso2/identity-consent-privacy-service/internal/system/utils"
)

type PrivacyHandler struct{}

func NewPrivacyHandler() *PrivacyHandler {
	return &PrivacyHandler{}
}

// ExportUserData handles GET /privacy/export
func (h *PrivacyHandler) ExportUserData(w http.ResponseWriter, r *http.Request) {

	userID, err := authn.ResolveUserID(r)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	service := provider.NewPrivacyProvider().GetPrivacyService(authn.NewSession(userID))
	result := service.ExportUserData(r.Context())
	status := http.StatusOK
	if !result.Success {
		status = http.StatusBadGateway
	}
	utils.WriteJSONResponse(w, status, result)
}

// SaveExport handles POST /privacy/export/save
func (h *PrivacyHandler) SaveExport(w http.ResponseWriter, r *http.Request) {

	userID, err := authn.ResolveUserID(r)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	service := provider.NewPrivacyProvider().GetPrivacyService(authn.NewSession(userID))
	result := service.ExportUserData(r.Context())
	if !result.Success {
		utils.WriteJSONResponse(w, http.StatusBadGateway, result)
		return
	}

	path, err := service.SaveExportToFile(result.Data)
	if err != nil {
		utils.HandleError(w, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, map[string]string{"path": path})
}

// DeleteAllUserData handles POST /privacy/delete
func (h *PrivacyHandler) DeleteAllUserData(w http.ResponseWriter, r *http.Request) {

	userID, err := authn.ResolveUserID(r)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	service := provider.NewPrivacyProvider().GetPrivacyService(authn.NewSession(userID))
	outcome := service.DeleteAllUserData(r.Context())
	status := http.StatusOK
	if !outcome.Success {
		status = http.StatusBadGateway
	}
	utils.WriteJSONResponse(w, status, outcome)
}

// GetDataSummary handles GET /privacy/summary
func (h *PrivacyHandler) GetDataSummary(w http.ResponseWriter, r *http.Request) {

	userID, err := authn.ResolveUserID(r)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	service := provider.NewPrivacyProvider().GetPrivacyService(authn.NewSession(userID))
	outcome := service.GetDataSummary(r.Context())
	status := http.StatusOK
	if !outcome.Success {
		status = http.StatusBadGateway
	}
	utils.WriteJSONResponse(w, status, outcome)
}
