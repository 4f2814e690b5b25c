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
	"net/http"

	"github.com/wso2/identity-consent-privacy-service/internal/healthcheck/handler"
)

// HealthService handles routing for health and readiness endpoints.
type HealthService struct {
	handler *handler.HealthHandler
}

// NewHealthService creates the service and registers its routes.
func NewHealthService(mux *http.ServeMux) *HealthService {
	instance := &HealthService{
		handler: handler.NewHealthHandler(),
	}
	instance.RegisterRoutes(mux)
	return instance
}

// RegisterRoutes registers the health and readiness endpoints.
func (s *HealthService) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", s.handler.HandleHealth)
	mux.HandleFunc("GET /ready", s.handler.HandleReadiness)
}
