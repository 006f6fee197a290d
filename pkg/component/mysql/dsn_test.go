package mysql

import (
	"testing"

	driver "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	options "github.com/kart-io/datasphere/pkg/options/mysql"
)

func TestBuildDSN(t *testing.T) {
	tests := []struct {
		name     string
		password string
	}{
		{"simple", "secret"},
		{"special characters", "p@ss/w:rd?x=1"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := options.NewOptions()
			opts.Password = tt.password

			cfg, err := driver.ParseDSN(BuildDSN(opts))
			require.NoError(t, err)
			assert.Equal(t, tt.password, cfg.Passwd)
			assert.Equal(t, "127.0.0.1:3306", cfg.Addr)
			assert.Equal(t, "datasphere", cfg.DBName)
			assert.True(t, cfg.ParseTime)
		})
	}
}
