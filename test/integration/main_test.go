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

package integration

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/wso2/identity-consent-privacy-service/internal/system/config"
	"github.com/wso2/identity-consent-privacy-service/internal/system/database/client"
	"github.com/wso2/identity-consent-privacy-service/internal/system/database/provider"
	"github.com/wso2/identity-consent-privacy-service/internal/system/log"
	"github.com/wso2/identity-consent-privacy-service/test/setup"
)

func TestMain(m *testing.M) {
	if os.Getenv("CPS_INTEGRATION_TESTS") == "" {
		fmt.Println("CPS_INTEGRATION_TESTS is not set, skipping integration tests")
		os.Exit(0)
	}

	ctx := context.Background()
	os.Setenv("TEST_MODE", "true")

	conf := config.Config{
		Log: config.LogConfig{
			LogLevel: "DEBUG",
		},
	}
	config.OverrideCPSRuntime(conf)
	_ = log.Init("DEBUG")

	pg, err := setup.SetupTestPostgres(ctx)
	if err != nil {
		fmt.Println("Failed to start test DB:", err)
		os.Exit(1)
	}

	provider.SetTestDB(pg.DB)
	if err := client.NewDBClient(pg.DB).InitDatabase(filepath.Join("..", ".."), filepath.Join("dbscripts", "postgres.sql")); err != nil {
		fmt.Println("Failed to apply schema:", err)
		_ = pg.Container.Terminate(ctx)
		os.Exit(1)
	}

	code := m.Run()

	_ = pg.Container.Terminate(ctx)

	os.Exit(code)
}
