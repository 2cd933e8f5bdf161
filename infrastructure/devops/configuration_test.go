package devops

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSSM struct {
	value *string
	err   error
	name  string
}

func (f *fakeSSM) GetParameter(_ context.Context, in *ssm.GetParameterInput, _ ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	f.name = aws.ToString(in.Name)
	if f.err != nil {
		return nil, f.err
	}
	return &ssm.GetParameterOutput{Parameter: &types.Parameter{Value: f.value}}, nil
}

func TestReadOverlay(t *testing.T) {
	tests := []struct {
		name    string
		client  *fakeSSM
		check   func(t *testing.T, res map[string]any)
		wantErr bool
	}{
		{
			name: "nested yaml",
			client: &fakeSSM{value: aws.String(`
database:
  driver: postgres
  dsn: postgres://fieldtrack
roster:
  excludedEmails: [ops@example.com]
`)},
			check: func(t *testing.T, res map[string]any) {
				db := res["database"].(map[string]any)
				assert.Equal(t, "postgres", db["driver"])
				roster := res["roster"].(map[string]any)
				assert.Equal(t, []any{"ops@example.com"}, roster["excludedEmails"])
			},
		},
		{name: "ssm failure", client: &fakeSSM{err: errors.New("throttled")}, wantErr: true},
		{name: "no value", client: &fakeSSM{}, wantErr: true},
		{name: "bad yaml", client: &fakeSSM{value: aws.String("a: [")}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := ReadOverlay(context.Background(), tt.client, "/fieldtrack/config")
			assert.Equal(t, "/fieldtrack/config", tt.client.name)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, res)
		})
	}
}
