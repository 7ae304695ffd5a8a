/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package mongo

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/caarlos0/env/v11"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/suparena/entitybind/datastore"
	entityerrors "github.com/suparena/entitybind/errors"
	"github.com/suparena/entitybind/registry"
)

// ProviderName is the provider served by this package. Both mongodb:// and mongodb+srv://
// connection strings resolve to it.
const ProviderName = "mongodb"

// URI query options consumed here and removed before the URI reaches the driver.
const (
	partitionKeyPathOption = "partitionKeyPath"
	pageSizeOption         = "pageSize"
)

func init() {
	registry.RegisterProvider(ProviderName, FromConnectionString)
}

// FromConnectionString connects to the deployment named by a mongodb:// URI. Pool and retry
// settings come from the MONGODB_* environment (see Config).
func FromConnectionString(ctx context.Context, cs datastore.ConnectionString) (datastore.Service, error) {
	if cs.URI == "" {
		return nil, entityerrors.NewConfigurationError("ConnectionString", "mongodb requires a mongodb:// URI")
	}
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("failed to parse mongo config: %w", err)
	}
	uri, opts, err := splitOptions(cs.URI, cfg)
	if err != nil {
		return nil, err
	}
	client, err := New(ctx, uri, cfg)
	if err != nil {
		return nil, err
	}
	return NewService(client, opts...), nil
}

// splitOptions removes the service options from the URI query.
func splitOptions(uri string, cfg Config) (string, []Option, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", nil, entityerrors.NewConfigurationError("ConnectionString", fmt.Sprintf("invalid mongodb URI: %v", err))
	}
	opts := []Option{WithPageSize(cfg.PageSize)}
	q := u.Query()
	if path := q.Get(partitionKeyPathOption); path != "" {
		opts = append(opts, WithPartitionKeyPath(path))
	}
	if size := q.Get(pageSizeOption); size != "" {
		n, err := strconv.ParseInt(size, 10, 64)
		if err != nil || n <= 0 {
			return "", nil, entityerrors.NewConfigurationError(pageSizeOption, fmt.Sprintf("invalid page size %q", size))
		}
		opts = append(opts, WithPageSize(n))
	}
	q.Del(partitionKeyPathOption)
	q.Del(pageSizeOption)
	u.RawQuery = q.Encode()
	return u.String(), opts, nil
}

// New connects a client and pings it, retrying up to cfg.RetryAttempts times.
func New(ctx context.Context, uri string, cfg Config) (*mongo.Client, error) {
	attempts := max(cfg.RetryAttempts, 1)
	var lastErr error
	for attempt := range attempts {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %w", ErrFailedToConnect, ctx.Err())
			case <-time.After(cfg.RetryInterval):
			}
		}
		client, err := mongo.Connect(
			options.Client().
				ApplyURI(uri).
				SetConnectTimeout(cfg.ConnectTimeout).
				SetMaxPoolSize(cfg.MaxPoolSize).
				SetMinPoolSize(cfg.MinPoolSize).
				SetMaxConnIdleTime(cfg.MaxConnIdleTime),
		)
		if err != nil {
			lastErr = err
			continue
		}
		if err := client.Ping(ctx, nil); err != nil {
			lastErr = err
			_ = client.Disconnect(ctx)
			continue
		}
		return client, nil
	}
	return nil, fmt.Errorf("%w: %w", ErrFailedToConnect, lastErr)
}
