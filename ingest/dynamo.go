/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package ingest

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// DynamoConfig selects the tag table and how to reach it. Empty keys fall
// back to the default AWS credential chain; Endpoint targets a local store.
type DynamoConfig struct {
	Region    string `mapstructure:"region" yaml:"region" validate:"required"`
	Table     string `mapstructure:"table" yaml:"table" validate:"required"`
	Endpoint  string `mapstructure:"endpoint" yaml:"endpoint" validate:"omitempty,url"`
	AccessKey string `mapstructure:"access_key" yaml:"access_key" validate:"required_with=SecretKey"`
	SecretKey string `mapstructure:"secret_key" yaml:"secret_key" validate:"required_with=AccessKey"`
}

// NewDynamoDBClient builds a DynamoDB client from cfg.
func NewDynamoDBClient(ctx context.Context, cfg DynamoConfig) (*dynamodb.Client, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}
	return dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	}), nil
}

var _ BatchWriter = (*dynamodb.Client)(nil)
