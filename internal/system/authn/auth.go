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

package authn

import (
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	errors2 "github.com/wso2/identity-consent-privacy-service/internal/system/errors"
	"github.com/wso2/identity-consent-privacy-service/internal/system/log"
)

// ResolveUserID extracts and validates the bearer token on the request and
// returns the subject identity the consent system is keyed on.
func ResolveUserID(r *http.Request) (string, error) {

	authHeader := r.Header.Get("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		return "", unauthorizedError("Missing or invalid Authorization header")
	}

	token := strings.TrimPrefix(authHeader, "Bearer ")
	claims, err := ParseJWTClaims(token)
	if err != nil {
		return "", unauthorizedError("Could not parse the bearer token")
	}

	if !validateClaims(claims) {
		return "", unauthorizedError("The bearer token is not valid")
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		log.GetLogger().Debug("Token does not carry a subject claim.")
		return "", unauthorizedError("The bearer token does not identify a user")
	}
	return sub, nil
}

// ParseJWTClaims parses claims from a JWT without verifying the signature.
// Signature verification is the gateway's responsibility.
func ParseJWTClaims(tokenString string) (map[string]interface{}, error) {

	logger := log.GetLogger()
	claims := jwt.MapClaims{}
	_, _, err := new(jwt.Parser).ParseUnverified(tokenString, claims)
	if err != nil {
		errMsg := "Error occurred when parsing claims from JWT token."
		logger.Debug(errMsg, log.Error(err))
		serverError := errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.PARSING_ERROR.Code,
			Message:     errors2.PARSING_ERROR.Message,
			Description: errMsg,
		}, err)
		return nil, serverError
	}
	return claims, nil
}

// validateClaims ensures the token has not expired.
func validateClaims(claims map[string]interface{}) bool {

	logger := log.GetLogger()
	expRaw, ok := claims["exp"]
	if !ok {
		logger.Debug("Token does not have an expiration time.")
		return false
	}
	expFloat, ok := expRaw.(float64)
	if !ok {
		logger.Debug("Token does not have a valid expiration time.", log.Any("exp", expRaw))
		return false
	}
	expUnix := int64(expFloat)
	if expUnix < time.Now().Unix() {
		logger.Debug("Token has expired.", log.String("exp", time.Unix(expUnix, 0).String()))
		return false
	}
	return true
}

func unauthorizedError(description string) *errors2.ClientError {
	return errors2.NewClientError(errors2.ErrorMessage{
		Code:        errors2.UN_AUTHORIZED.Code,
		Message:     errors2.UN_AUTHORIZED.Message,
		Description: description,
	}, http.StatusUnauthorized)
}
