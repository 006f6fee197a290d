package options

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	utilerrors "k8s.io/apimachinery/pkg/util/errors"
)

func validOptions() *ServerOptions {
	o := NewServerOptions()
	o.IdentityOptions.SigningMethod = "HS256"
	o.IdentityOptions.Key = strings.Repeat("k", 32)
	return o
}

// TestServerOptions_Validate 测试配置校验会聚合所有错误
func TestServerOptions_Validate(t *testing.T) {
	require.NoError(t, validOptions().Validate())

	t.Run("rs256 needs a public key", func(t *testing.T) {
		o := NewServerOptions()
		assert.Error(t, o.Validate())
	})

	t.Run("errors are aggregated", func(t *testing.T) {
		o := validOptions()
		o.HTTPOptions.CORSOrigins = []string{"*"}
		o.DatabaseOptions.Driver = "oracle"
		o.RedisOptions.Enabled = true
		o.RedisOptions.Port = 0

		err := o.Validate()
		require.Error(t, err)
		agg, ok := err.(utilerrors.Aggregate)
		require.True(t, ok)
		assert.Len(t, agg.Errors(), 3)
	})
}

func TestServerOptions_Flags(t *testing.T) {
	o := NewServerOptions()
	fss := o.Flags()

	for section, flag := range map[string]string{
		"http":     "http.addr",
		"log":      "log.level",
		"identity": "identity.signing-method",
		"authz":    "authz.persist",
		"database": "database.mysql.host",
		"redis":    "redis.enabled",
		"pool":     "pool.capacity",
		"misc":     "shutdown-timeout",
	} {
		fs, ok := fss.FlagSets[section]
		require.True(t, ok, section)
		assert.NotNil(t, fs.Lookup(flag), flag)
	}

	require.NoError(t, fss.FlagSets["database"].Parse([]string{"--database.driver=postgres"}))
	assert.Equal(t, "postgres", o.DatabaseOptions.Driver)
}

func TestServerOptions_Config(t *testing.T) {
	o := validOptions()
	cfg := o.Config()
	assert.Same(t, o.HTTPOptions, cfg.HTTPOptions)
	assert.Same(t, o.DatabaseOptions, cfg.DatabaseOptions)
	assert.Equal(t, o.ShutdownTimeout, cfg.ShutdownTimeout)
}
