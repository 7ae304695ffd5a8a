/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/suparena/entitybind/datastore"
	entityerrors "github.com/suparena/entitybind/errors"
	"github.com/suparena/entitybind/registry"
)

// ProviderName is the connection string provider served by this package:
//
//	Provider=dynamodb;Region=us-east-1;Table=documents;PartitionKeyPath=/pk
//
// AccessKey and SecretKey select static credentials; otherwise the default AWS chain is used.
// Endpoint points the client at a local or compatible endpoint.
const ProviderName = "dynamodb"

func init() {
	registry.RegisterProvider(ProviderName, FromConnectionString)
}

// FromConnectionString builds a Service from a parsed connection string.
func FromConnectionString(ctx context.Context, cs datastore.ConnectionString) (datastore.Service, error) {
	region := cs.GetOr("Region", "")
	if region == "" {
		return nil, entityerrors.NewConfigurationError("Region", "dynamodb connection string requires a Region")
	}
	table := cs.GetOr("Table", "")
	if table == "" {
		return nil, entityerrors.NewConfigurationError("Table", "dynamodb connection string requires a Table")
	}

	loadOptions := []func(*config.LoadOptions) error{
		config.WithRegion(region),
	}
	accessKey, secretKey := cs.GetOr("AccessKey", ""), cs.GetOr("SecretKey", "")
	if accessKey != "" && secretKey != "" {
		loadOptions = append(loadOptions, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, cs.GetOr("SessionToken", "")),
		))
	}

	awsConfig, err := config.LoadDefaultConfig(ctx, loadOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	client := sdk.NewFromConfig(awsConfig, func(o *sdk.Options) {
		if endpoint := cs.GetOr("Endpoint", ""); endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	var opts []Option
	if path := cs.GetOr("PartitionKeyPath", ""); path != "" {
		opts = append(opts, WithPartitionKeyPath(path))
	}
	svc, err := New(client, table, opts...)
	if err != nil {
		return nil, err
	}
	return svc, nil
}
