package devops

import (
	"context"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// ParameterAPI is the subset of the SSM client used to read parameters.
type ParameterAPI interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

var (
	once       sync.Once
	overlay    map[string]any
	overlayErr error
)

// LoadConfigOverlay reads a YAML document of config settings from the SSM
// parameter paramName. The result is cached for the life of the process.
func LoadConfigOverlay(ctx context.Context, paramName string) (map[string]any, error) {
	once.Do(func() {
		cfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			overlayErr = fmt.Errorf("load aws config: %w", err)
			return
		}
		overlay, overlayErr = ReadOverlay(ctx, ssm.NewFromConfig(cfg), paramName)
	})

	return overlay, overlayErr
}

// ReadOverlay fetches and parses one parameter without caching.
func ReadOverlay(ctx context.Context, client ParameterAPI, paramName string) (map[string]any, error) {
	out, err := client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(paramName),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("get parameter: %w", err)
	}
	if out.Parameter == nil || out.Parameter.Value == nil {
		return nil, fmt.Errorf("parameter %s has no value", paramName)
	}

	parsed := map[string]any{}
	if err := yaml.Unmarshal([]byte(*out.Parameter.Value), &parsed); err != nil {
		return nil, fmt.Errorf("unmarshal yaml: %w", err)
	}
	return parsed, nil
}
