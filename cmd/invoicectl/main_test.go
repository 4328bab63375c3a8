package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/facturador/internal/http/auth"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)

	err := root.Execute()

	return out.String(), err
}

func TestToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "cli-secret")

	out, err := execute(t, "token", "--tenant", "tenant-a", "--subject", "ops")
	require.NoError(t, err)

	claims, err := auth.New("cli-secret").Parse(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "tenant-a", claims.TenantID)
	assert.Equal(t, "ops", claims.Subject)
}

func TestNumbering_MemoryStore(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")

	type testCase struct {
		name    string
		args    []string
		want    string
		wantErr bool
	}

	tests := []testCase{
		{name: "Peek", args: []string{"numbering", "peek", "--tenant", "t1"}, want: "0001-00000001\n"},
		{name: "AllocateOtherPOS", args: []string{"numbering", "allocate", "--tenant", "t1", "--pos", "3"}, want: "3-00000001\n"},
		{name: "MissingTenant", args: []string{"numbering", "peek"}, wantErr: true},
		{name: "InvalidPOS", args: []string{"numbering", "peek", "--tenant", "t1", "--pos", "abc"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, tt.args...)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestMigrate_RequiresPostgres(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")

	_, err := execute(t, "migrate")
	assert.ErrorContains(t, err, "STORE_DRIVER=postgres")
}

func TestStockAdjust_InvalidProduct(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")

	_, err := execute(t, "stock", "adjust", "--tenant", "t1", "--product", "nope", "--delta", "1")
	assert.ErrorContains(t, err, "invalid --product")
}
