package dynamodb

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"sync/atomic"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/hupe1980/jsondata/blobstore"
)

// MaxItemSize is the DynamoDB item size limit in bytes.
const MaxItemSize = 400 * 1024

const (
	attrNamespace = "namespace"
	attrName      = "name"
	attrData      = "data"
)

// ErrBlobTooLarge is returned when a blob does not fit into a single item.
var ErrBlobTooLarge = errors.New("dynamodb: blob exceeds item size limit")

// Client is the interface for DynamoDB operations.
type Client interface {
	dynamodb.QueryAPIClient
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

var _ Client = (*dynamodb.Client)(nil)

// Store implements blobstore.BlobStore on a DynamoDB table.
type Store struct {
	client    Client
	table     string
	namespace string
}

var _ blobstore.BlobStore = (*Store)(nil)

// NewStore creates a store for namespace in table.
func NewStore(client Client, table, namespace string) *Store {
	return &Store{
		client:    client,
		table:     table,
		namespace: namespace,
	}
}

// New creates a store using the default AWS credential chain.
func New(ctx context.Context, table, namespace string, optFns ...func(*config.LoadOptions) error) (*Store, error) {
	cfg, err := config.LoadDefaultConfig(ctx, optFns...)
	if err != nil {
		return nil, err
	}
	return NewStore(dynamodb.NewFromConfig(cfg), table, namespace), nil
}

func (s *Store) key(name string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		attrNamespace: &types.AttributeValueMemberS{Value: s.namespace},
		attrName:      &types.AttributeValueMemberS{Value: name},
	}
}

// itemSize approximates the stored size: attribute names plus values.
func (s *Store) itemSize(name string, data []byte) int {
	return len(attrNamespace) + len(s.namespace) +
		len(attrName) + len(name) +
		len(attrData) + len(data)
}

// Open fetches the item with a consistent read.
func (s *Store) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	resp, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.table),
		Key:            s.key(name),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("dynamodb: get %s: %w", name, err)
	}
	if resp.Item == nil {
		return nil, fmt.Errorf("dynamodb: %s: %w", name, blobstore.ErrNotFound)
	}

	attr, ok := resp.Item[attrData].(*types.AttributeValueMemberB)
	if !ok {
		return nil, fmt.Errorf("dynamodb: %s: invalid %s attribute", name, attrData)
	}
	return &itemBlob{data: attr.Value}, nil
}

// Create buffers writes and stores the item on Close.
func (s *Store) Create(ctx context.Context, name string) (blobstore.WritableBlob, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &itemWriter{ctx: ctx, store: s, name: name}, nil
}

// Put stores data as a single item.
func (s *Store) Put(ctx context.Context, name string, data []byte) error {
	if size := s.itemSize(name, data); size > MaxItemSize {
		return fmt.Errorf("%w: %s is %d bytes", ErrBlobTooLarge, name, size)
	}
	if data == nil {
		data = []byte{}
	}

	item := s.key(name)
	item[attrData] = &types.AttributeValueMemberB{Value: data}

	if _, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	}); err != nil {
		return fmt.Errorf("dynamodb: put %s: %w", name, err)
	}
	return nil
}

// Delete removes the item. Deleting a missing item is not an error.
func (s *Store) Delete(ctx context.Context, name string) error {
	if _, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.table),
		Key:       s.key(name),
	}); err != nil {
		return fmt.Errorf("dynamodb: delete %s: %w", name, err)
	}
	return nil
}

// List queries the namespace for names beginning with prefix.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.table),
		KeyConditionExpression: aws.String("#ns = :ns"),
		ProjectionExpression:   aws.String("#name"),
		ExpressionAttributeNames: map[string]string{
			"#ns":   attrNamespace,
			"#name": attrName,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":ns": &types.AttributeValueMemberS{Value: s.namespace},
		},
		ConsistentRead: aws.Bool(true),
	}
	// begins_with rejects an empty operand.
	if prefix != "" {
		input.KeyConditionExpression = aws.String("#ns = :ns AND begins_with(#name, :prefix)")
		input.ExpressionAttributeValues[":prefix"] = &types.AttributeValueMemberS{Value: prefix}
	}

	var names []string
	paginator := dynamodb.NewQueryPaginator(s.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("dynamodb: query: %w", err)
		}
		for _, item := range page.Items {
			if attr, ok := item[attrName].(*types.AttributeValueMemberS); ok {
				names = append(names, attr.Value)
			}
		}
	}
	sort.Strings(names)
	return names, nil
}

// itemBlob is a fetched item held in memory.
type itemBlob struct {
	data []byte
}

func (b *itemBlob) Close() error {
	return nil
}

func (b *itemBlob) Size() int64 {
	return int64(len(b.data))
}

func (b *itemBlob) Bytes() ([]byte, error) {
	return b.data, nil
}

func (b *itemBlob) ReadAt(_ context.Context, p []byte, off int64) (int, error) {
	if off >= int64(len(b.data)) {
		return 0, io.EOF
	}
	n := copy(p, b.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (b *itemBlob) ReadRange(_ context.Context, off, length int64) (io.ReadCloser, error) {
	if off < 0 || off >= int64(len(b.data)) {
		return nil, io.EOF
	}
	end := min(off+length, int64(len(b.data)))
	return io.NopCloser(bytes.NewReader(b.data[off:end])), nil
}

// itemWriter buffers a blob until Close.
type itemWriter struct {
	ctx   context.Context
	store *Store
	name  string
	buf   bytes.Buffer
	done  atomic.Bool
}

func (w *itemWriter) Write(p []byte) (int, error) {
	if w.done.Load() {
		return 0, os.ErrClosed
	}
	if w.store.itemSize(w.name, nil)+w.buf.Len()+len(p) > MaxItemSize {
		return 0, fmt.Errorf("%w: %s", ErrBlobTooLarge, w.name)
	}
	return w.buf.Write(p)
}

func (w *itemWriter) Close() error {
	if !w.done.CompareAndSwap(false, true) {
		return os.ErrClosed
	}
	return w.store.Put(w.ctx, w.name, w.buf.Bytes())
}

func (w *itemWriter) Abort() error {
	w.done.Store(true)
	w.buf.Reset()
	return nil
}

func (w *itemWriter) Sync() error {
	return nil
}
