/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"

	"github.com/suparena/entitybind/datastore"
	entityerrors "github.com/suparena/entitybind/errors"
	"github.com/suparena/entitybind/storagemodels"
)

// Item attributes owned by the service. They are stripped from documents on the way out.
const (
	AttrPK         = "PK"
	AttrSK         = "SK"
	AttrCollection = "Collection"

	// noPartitionKey is the SK of documents stored without a partition key.
	noPartitionKey = "[]"
)

// Client is the subset of the DynamoDB API used by Service.
type Client interface {
	GetItem(ctx context.Context, params *sdk.GetItemInput, optFns ...func(*sdk.Options)) (*sdk.GetItemOutput, error)
	PutItem(ctx context.Context, params *sdk.PutItemInput, optFns ...func(*sdk.Options)) (*sdk.PutItemOutput, error)
	Query(ctx context.Context, params *sdk.QueryInput, optFns ...func(*sdk.Options)) (*sdk.QueryOutput, error)
	ExecuteStatement(ctx context.Context, params *sdk.ExecuteStatementInput, optFns ...func(*sdk.Options)) (*sdk.ExecuteStatementOutput, error)
	DescribeTable(ctx context.Context, params *sdk.DescribeTableInput, optFns ...func(*sdk.Options)) (*sdk.DescribeTableOutput, error)
	CreateTable(ctx context.Context, params *sdk.CreateTableInput, optFns ...func(*sdk.Options)) (*sdk.CreateTableOutput, error)
}

// Service implements datastore.Service on a single DynamoDB table.
//
// Every document is one item keyed by
//
//	PK = "{database}/{collection}/{id}"
//	SK = partition key wire form, e.g. ["partkey3"], or [] without one
//
// and tagged with Collection = "{database}/{collection}" so query results can be scoped.
type Service struct {
	client           Client
	tableName        string
	partitionKeyPath string
	tableWait        time.Duration

	// collection address -> partition key path given to EnsureCollection
	collectionPaths sync.Map
}

// Option configures a Service.
type Option func(*Service)

// WithPartitionKeyPath sets the document path upserts take their partition key from, e.g. "/pk".
func WithPartitionKeyPath(path string) Option {
	return func(s *Service) {
		s.partitionKeyPath = path
	}
}

// WithTableWait bounds how long EnsureCollection waits for a new table to become active.
func WithTableWait(d time.Duration) Option {
	return func(s *Service) {
		s.tableWait = d
	}
}

// New returns a Service over an existing client.
func New(client Client, tableName string, opts ...Option) (*Service, error) {
	if client == nil {
		return nil, fmt.Errorf("dynamodb client is required")
	}
	if tableName == "" {
		return nil, entityerrors.NewConfigurationError("Table", "dynamodb table name is required")
	}
	s := &Service{client: client, tableName: tableName, tableWait: 2 * time.Minute}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// TableName returns the backing table.
func (s *Service) TableName() string {
	return s.tableName
}

func partitionValue(address datastore.Address) string {
	return address.Database + "/" + address.Collection + "/" + address.ID
}

func collectionValue(address datastore.Address) string {
	return address.Database + "/" + address.Collection
}

func sortValue(pk *storagemodels.PartitionKey) string {
	if pk == nil {
		return noPartitionKey
	}
	return pk.String()
}

// partitionKeyOf reads the key at the path the collection was ensured with,
// falling back to the service-wide path.
func (s *Service) partitionKeyOf(address datastore.Address, doc storagemodels.Document) *storagemodels.PartitionKey {
	path := s.partitionKeyPath
	if v, ok := s.collectionPaths.Load(collectionValue(address)); ok {
		path = v.(string)
	}
	if path == "" {
		return nil
	}
	v, ok := doc.ValueAt(path)
	if !ok {
		return nil
	}
	return storagemodels.NewPartitionKey(v)
}

// ReadDocument implements datastore.Service. With a partition key it is a GetItem; without
// one it queries the PK and requires exactly one match.
func (s *Service) ReadDocument(ctx context.Context, address datastore.Address, pk *storagemodels.PartitionKey) (storagemodels.Document, error) {
	if pk != nil {
		out, err := s.client.GetItem(ctx, &sdk.GetItemInput{
			TableName: aws.String(s.tableName),
			Key: map[string]types.AttributeValue{
				AttrPK: &types.AttributeValueMemberS{Value: partitionValue(address)},
				AttrSK: &types.AttributeValueMemberS{Value: sortValue(pk)},
			},
		})
		if err != nil {
			return nil, transportError("GetItem", err)
		}
		if out.Item == nil {
			return nil, entityerrors.NewDocumentNotFoundError(address.String(), pk.String())
		}
		return fromItem(out.Item)
	}

	items, err := s.queryOne(ctx, partitionValue(address))
	if err != nil {
		return nil, err
	}
	switch len(items) {
	case 0:
		return nil, entityerrors.NewDocumentNotFoundError(address.String(), "")
	case 1:
		return fromItem(items[0])
	default:
		return nil, entityerrors.NewValidationError("partitionKey", fmt.Sprintf("read of %s matched more than one document; a partition key is required", address))
	}
}

// queryOne looks a document up by PK alone. Two items are requested so an ambiguous
// read can be told apart from a unique one.
func (s *Service) queryOne(ctx context.Context, pk string) ([]map[string]types.AttributeValue, error) {
	keyCond := "PK = :pkVal"
	out, err := s.client.Query(ctx, &sdk.QueryInput{
		TableName:              aws.String(s.tableName),
		KeyConditionExpression: &keyCond,
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pkVal": &types.AttributeValueMemberS{Value: pk},
		},
		Limit: aws.Int32(2),
	})
	if err != nil {
		return nil, transportError("Query", err)
	}
	return out.Items, nil
}

// UpsertDocument implements datastore.Service.
func (s *Service) UpsertDocument(ctx context.Context, collection datastore.Address, doc storagemodels.Document) (storagemodels.Document, error) {
	if doc.ID() == "" {
		return nil, entityerrors.NewValidationError("id", "document id is required")
	}
	address := datastore.DocumentAddress(collection.Database, collection.Collection, doc.ID())
	item, err := s.toItem(address, doc)
	if err != nil {
		return nil, err
	}
	if _, err := s.client.PutItem(ctx, &sdk.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	}); err != nil {
		return nil, transportError("PutItem", err)
	}
	return doc.Clone(), nil
}

// ReplaceDocument implements datastore.Service. The item must already exist.
func (s *Service) ReplaceDocument(ctx context.Context, address datastore.Address, doc storagemodels.Document) (storagemodels.Document, error) {
	stored := doc.Clone()
	stored.SetID(address.ID)
	item, err := s.toItem(address, stored)
	if err != nil {
		return nil, err
	}
	_, err = s.client.PutItem(ctx, &sdk.PutItemInput{
		TableName:           aws.String(s.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_exists(PK)"),
	})
	if err != nil {
		var cfe *types.ConditionalCheckFailedException
		if errors.As(err, &cfe) {
			return nil, entityerrors.NewDocumentNotFoundError(address.String(), sortValue(s.partitionKeyOf(address, stored)))
		}
		return nil, transportError("PutItem", err)
	}
	return stored, nil
}

// ExecuteQueryPage implements datastore.Service with a PartiQL statement. Named @parameters
// become positional parameters and only items of the requested collection are returned.
func (s *Service) ExecuteQueryPage(ctx context.Context, collection datastore.Address, query storagemodels.QuerySpec, continuation string) (*storagemodels.Page, error) {
	statement, params, err := s.toPartiQL(query)
	if err != nil {
		return nil, err
	}
	input := &sdk.ExecuteStatementInput{
		Statement:  aws.String(statement),
		Parameters: params,
	}
	if continuation != "" {
		input.NextToken = aws.String(continuation)
	}

	out, err := s.client.ExecuteStatement(ctx, input)
	if err != nil {
		return nil, transportError("ExecuteStatement", err)
	}

	page := &storagemodels.Page{}
	scope := collectionValue(collection)
	for _, item := range out.Items {
		if c, ok := item[AttrCollection].(*types.AttributeValueMemberS); !ok || c.Value != scope {
			continue
		}
		doc, err := fromItem(item)
		if err != nil {
			return nil, err
		}
		page.Documents = append(page.Documents, doc)
	}
	if out.NextToken != nil {
		page.Continuation = *out.NextToken
	}
	return page, nil
}

// EnsureCollection creates the table when it does not exist yet. Collections share the
// table and its fixed key schema; a non-empty partitionKeyPath is remembered for the
// collection and used for the SK of later writes.
func (s *Service) EnsureCollection(ctx context.Context, collection datastore.Address, partitionKeyPath string) error {
	if partitionKeyPath != "" {
		s.collectionPaths.Store(collectionValue(collection), partitionKeyPath)
	}
	_, err := s.client.DescribeTable(ctx, &sdk.DescribeTableInput{TableName: aws.String(s.tableName)})
	if err == nil {
		return nil
	}
	var rnf *types.ResourceNotFoundException
	if !errors.As(err, &rnf) {
		return transportError("DescribeTable", err)
	}

	_, err = s.client.CreateTable(ctx, &sdk.CreateTableInput{
		TableName: aws.String(s.tableName),
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String(AttrPK), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String(AttrSK), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String(AttrPK), KeyType: types.KeyTypeHash},
			{AttributeName: aws.String(AttrSK), KeyType: types.KeyTypeRange},
		},
		BillingMode: types.BillingModePayPerRequest,
	})
	if err != nil {
		var inUse *types.ResourceInUseException
		if errors.As(err, &inUse) {
			return nil
		}
		return transportError("CreateTable", err)
	}

	waiter := sdk.NewTableExistsWaiter(s.client)
	if err := waiter.Wait(ctx, &sdk.DescribeTableInput{TableName: aws.String(s.tableName)}, s.tableWait); err != nil {
		return transportError("DescribeTable", err)
	}
	return nil
}

func (s *Service) toItem(address datastore.Address, doc storagemodels.Document) (map[string]types.AttributeValue, error) {
	item, err := attributevalue.MarshalMap(map[string]any(doc))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document %s: %w", address, err)
	}
	item[AttrPK] = &types.AttributeValueMemberS{Value: partitionValue(address)}
	item[AttrSK] = &types.AttributeValueMemberS{Value: sortValue(s.partitionKeyOf(address, doc))}
	item[AttrCollection] = &types.AttributeValueMemberS{Value: collectionValue(address)}
	return item, nil
}

func fromItem(item map[string]types.AttributeValue) (storagemodels.Document, error) {
	var doc map[string]any
	if err := attributevalue.UnmarshalMap(item, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal item: %w", err)
	}
	delete(doc, AttrPK)
	delete(doc, AttrSK)
	delete(doc, AttrCollection)
	return storagemodels.Document(doc), nil
}

// transportError wraps a driver failure, keeping the service error code when there is one.
func transportError(operation string, err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		operation = fmt.Sprintf("%s (code: %s)", operation, apiErr.ErrorCode())
	}
	return entityerrors.NewTransportError(operation, err)
}

