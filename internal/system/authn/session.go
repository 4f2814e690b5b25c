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

package authn

import (
	"sync"

	"github.com/wso2/identity-consent-privacy-service/internal/system/log"
)

// SessionInterface resolves the identity the consent and privacy workflows
// operate on, and terminates it after an account deletion.
type SessionInterface interface {
	CurrentUserID() string
	SignOut() error
}

// Session is the default implementation. The user id is fixed at creation
// (resolved from the bearer token) and cleared on sign out.
type Session struct {
	mutex  sync.RWMutex
	userID string
}

// NewSession creates a session for the given user id. An empty id represents
// an unauthenticated caller.
func NewSession(userID string) *Session {
	return &Session{userID: userID}
}

// CurrentUserID returns the signed-in user id, or empty when signed out.
func (s *Session) CurrentUserID() string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return s.userID
}

// SignOut terminates the session. Idempotent.
func (s *Session) SignOut() error {
	s.mutex.Lock()
	userID := s.userID
	s.userID = ""
	s.mutex.Unlock()

	if userID == "" {
		return nil
	}

	log.GetLogger().Audit(log.AuditEvent{
		InitiatorID:   userID,
		InitiatorType: log.InitiatorTypeSystem,
		TargetID:      userID,
		TargetType:    log.TargetTypeAccount,
		ActionID:      log.ActionSignOut,
	})
	return nil
}
