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

package services

import (
	"fmt"
	"net/http"

	"github.com/wso2/identity-consent-privacy-service/internal/privacy/handler"
)

// PrivacyService wires the data-portability and erasure endpoints onto the mux.
type PrivacyService struct {
	handler *handler.PrivacyHandler
}

// NewPrivacyService creates the service and registers its routes.
func NewPrivacyService(mux *http.ServeMux, apiBasePath string) *PrivacyService {
	instance := &PrivacyService{
		handler: handler.NewPrivacyHandler(),
	}
	instance.RegisterRoutes(mux, apiBasePath)
	return instance
}

// RegisterRoutes registers the privacy endpoints.
func (s *PrivacyService) RegisterRoutes(mux *http.ServeMux, apiBasePath string) {
	mux.HandleFunc(fmt.Sprintf("GET %s/privacy/export", apiBasePath), s.handler.ExportUserData)
	mux.HandleFunc(fmt.Sprintf("POST %s/privacy/export/save", apiBasePath), s.handler.SaveExport)
	mux.HandleFunc(fmt.Sprintf("POST %s/privacy/delete", apiBasePath), s.handler.DeleteAllUserData)
	mux.HandleFunc(fmt.Sprintf("GET %s/privacy/summary", apiBasePath), s.handler.GetDataSummary)
}
