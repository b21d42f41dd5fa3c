package logging_test

import (
	"bytes"
	"os"
	"testing"

	"github.com/paveg/tidyframe/internal/config"
	"github.com/paveg/tidyframe/internal/logging"
	"github.com/stretchr/testify/assert"
)

func TestLogger_LevelFollowsConfig(t *testing.T) {
	original := config.GetGlobalConfig()
	defer config.SetGlobalConfig(original)

	var buf bytes.Buffer
	logging.SetOutput(&buf)
	defer logging.SetOutput(os.Stderr)

	logging.Logger().Debug("hidden step")
	assert.NotContains(t, buf.String(), "hidden step")

	verbose := config.NewConfig()
	verbose.VerboseLogging = true
	config.SetGlobalConfig(verbose)

	logging.Logger().Debug("visible step", "verb", "select")
	assert.Contains(t, buf.String(), "visible step")
	assert.Contains(t, buf.String(), "verb=select")
}
