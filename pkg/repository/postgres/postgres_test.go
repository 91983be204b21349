package postgres_test

import (
	"context"
	"os"
	"testing"

	testenv "github.com/opst/footprintweb/internal/testutils/context"
	kpool "github.com/opst/footprintweb/pkg/conn/db/postgres/pool"
	"github.com/opst/footprintweb/pkg/repository/postgres"
	"github.com/opst/footprintweb/pkg/repository/testsuite"
	"github.com/opst/footprintweb/pkg/utils/try"
)

// ENV_TEST_PGURI names a database the test can create tables in.
const ENV_TEST_PGURI = "FOOTPRINTWEB_TEST_PGURI"

func TestProvider(t *testing.T) {
	uri := os.Getenv(ENV_TEST_PGURI)
	if uri == "" {
		t.Skipf("%s is not set", ENV_TEST_PGURI)
	}
	ctx, cancel := testenv.WithTest(context.Background(), t)
	defer cancel()
	pool := try.To(kpool.Connect(ctx, uri)).OrFatal(t)
	defer pool.Close()

	testee := postgres.New(pool)
	if err := testee.Migrate(ctx); err != nil {
		t.Fatal(err)
	}
	testsuite.Run(t, testee)
}
