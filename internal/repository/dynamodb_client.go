// Package repository implements the per-user session store over DynamoDB.
//
// Scalar session fields live as FIELD# items keyed by user; chat history is
// a bounded list of MSG# items. TTL'd fields carry an expiry timestamp that
// is checked client-side on read, because DynamoDB's own TTL deletion is
// lazy and can lag by hours.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const (
	skPrefixField = "FIELD#"
	skPrefixMsg   = "MSG#"
)

// dynamodbAPI is the minimal DynamoDB interface required by Client.
// Defined here for testability.
type dynamodbAPI interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, in *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// Client wraps a DynamoDB table as a per-user keyed session store.
type Client struct {
	api       dynamodbAPI
	tableName string
	namespace string
	now       func() time.Time
}

// New creates a session store Client scoped to the given tenant namespace.
func New(api dynamodbAPI, tableName, namespace string) (*Client, error) {
	if api == nil {
		return nil, errors.New("repository: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("repository: table name must not be empty")
	}
	if strings.TrimSpace(namespace) == "" {
		return nil, errors.New("repository: namespace must not be empty")
	}
	return &Client{api: api, tableName: tableName, namespace: namespace, now: time.Now}, nil
}

func (c *Client) userPK(userID string) string {
	return "USER#" + c.namespace + "#" + userID
}

func fieldSK(field string) string {
	return skPrefixField + field
}

func msgSK(ts time.Time) string {
	return skPrefixMsg + ts.UTC().Format(time.RFC3339Nano)
}

// Get returns the stored value for a session field, or "" when the field is
// absent or expired.
func (c *Client) Get(ctx context.Context, userID, field string) (string, error) {
	out, err := c.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(c.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: c.userPK(userID)},
			"SK": &types.AttributeValueMemberS{Value: fieldSK(field)},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("repository: Get %s: %w", field, err)
	}
	if out == nil || len(out.Item) == 0 {
		return "", nil
	}
	if expires, ok := out.Item["expires"]; ok {
		n, ok := expires.(*types.AttributeValueMemberN)
		if ok {
			unix, err := strconv.ParseInt(n.Value, 10, 64)
			if err != nil {
				return "", fmt.Errorf("repository: Get %s decode expires: %w", field, err)
			}
			if unix > 0 && !c.now().Before(time.Unix(unix, 0)) {
				return "", nil
			}
		}
	}
	val, err := strAttr(out.Item, "val")
	if err != nil {
		return "", fmt.Errorf("repository: Get %s: %w", field, err)
	}
	return val, nil
}

// Set stores a session field without expiry.
func (c *Client) Set(ctx context.Context, userID, field, value string) error {
	_, err := c.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(c.tableName),
		Item: map[string]types.AttributeValue{
			"PK":  &types.AttributeValueMemberS{Value: c.userPK(userID)},
			"SK":  &types.AttributeValueMemberS{Value: fieldSK(field)},
			"val": &types.AttributeValueMemberS{Value: value},
		},
	})
	if err != nil {
		return fmt.Errorf("repository: Set %s: %w", field, err)
	}
	return nil
}

// SetTTL stores a session field that expires after ttl. The expiry doubles
// as the table's TTL attribute so DynamoDB eventually reclaims the item.
func (c *Client) SetTTL(ctx context.Context, userID, field, value string, ttl time.Duration) error {
	expires := c.now().Add(ttl).Unix()
	_, err := c.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(c.tableName),
		Item: map[string]types.AttributeValue{
			"PK":      &types.AttributeValueMemberS{Value: c.userPK(userID)},
			"SK":      &types.AttributeValueMemberS{Value: fieldSK(field)},
			"val":     &types.AttributeValueMemberS{Value: value},
			"expires": &types.AttributeValueMemberN{Value: strconv.FormatInt(expires, 10)},
		},
	})
	if err != nil {
		return fmt.Errorf("repository: SetTTL %s: %w", field, err)
	}
	return nil
}

// Delete removes a session field. Deleting an absent field is not an error.
func (c *Client) Delete(ctx context.Context, userID, field string) error {
	_, err := c.api.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(c.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: c.userPK(userID)},
			"SK": &types.AttributeValueMemberS{Value: fieldSK(field)},
		},
	})
	if err != nil {
		return fmt.Errorf("repository: Delete %s: %w", field, err)
	}
	return nil
}

// Consume reads a field and then deletes it. The two calls are not atomic:
// a concurrent request for the same user can observe the same value before
// the delete lands. The conversation engine accepts this race.
func (c *Client) Consume(ctx context.Context, userID, field string) (string, error) {
	val, err := c.Get(ctx, userID, field)
	if err != nil {
		return "", err
	}
	if val == "" {
		return "", nil
	}
	if err := c.Delete(ctx, userID, field); err != nil {
		return "", err
	}
	return val, nil
}

// AppendHistory appends one message to the user's chat history and trims the
// list to the most recent limit entries.
func (c *Client) AppendHistory(ctx context.Context, userID, message string, limit int) error {
	_, err := c.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(c.tableName),
		Item: map[string]types.AttributeValue{
			"PK":   &types.AttributeValueMemberS{Value: c.userPK(userID)},
			"SK":   &types.AttributeValueMemberS{Value: msgSK(c.now())},
			"text": &types.AttributeValueMemberS{Value: message},
		},
	})
	if err != nil {
		return fmt.Errorf("repository: AppendHistory put: %w", err)
	}

	keys, err := c.historyKeys(ctx, userID)
	if err != nil {
		return fmt.Errorf("repository: AppendHistory trim: %w", err)
	}
	if limit <= 0 || len(keys) <= limit {
		return nil
	}
	for _, sk := range keys[:len(keys)-limit] {
		_, err := c.api.DeleteItem(ctx, &dynamodb.DeleteItemInput{
			TableName: aws.String(c.tableName),
			Key: map[string]types.AttributeValue{
				"PK": &types.AttributeValueMemberS{Value: c.userPK(userID)},
				"SK": &types.AttributeValueMemberS{Value: sk},
			},
		})
		if err != nil {
			return fmt.Errorf("repository: AppendHistory trim delete: %w", err)
		}
	}
	return nil
}

// History returns up to limit most recent messages in chronological order.
func (c *Client) History(ctx context.Context, userID string, limit int) ([]string, error) {
	out, err := c.api.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(c.tableName),
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :prefix)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk":     &types.AttributeValueMemberS{Value: c.userPK(userID)},
			":prefix": &types.AttributeValueMemberS{Value: skPrefixMsg},
		},
		// Read newest first so Limit keeps the most recent context.
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(int32(limit)),
	})
	if err != nil {
		return nil, fmt.Errorf("repository: History query: %w", err)
	}

	msgs := make([]string, 0, len(out.Items))
	for _, item := range out.Items {
		text, err := strAttr(item, "text")
		if err != nil {
			return nil, fmt.Errorf("repository: History unmarshal: %w", err)
		}
		msgs = append(msgs, text)
	}
	// Reverse to chronological order before returning to prompt assembly.
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

func (c *Client) historyKeys(ctx context.Context, userID string) ([]string, error) {
	out, err := c.api.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(c.tableName),
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :prefix)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk":     &types.AttributeValueMemberS{Value: c.userPK(userID)},
			":prefix": &types.AttributeValueMemberS{Value: skPrefixMsg},
		},
		ScanIndexForward:     aws.Bool(true),
		ProjectionExpression: aws.String("SK"),
	})
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(out.Items))
	for _, item := range out.Items {
		sk, err := strAttr(item, "SK")
		if err != nil {
			return nil, err
		}
		keys = append(keys, sk)
	}
	return keys, nil
}

func strAttr(item map[string]types.AttributeValue, key string) (string, error) {
	v, ok := item[key]
	if !ok {
		return "", fmt.Errorf("repository: missing attribute %q", key)
	}
	s, ok := v.(*types.AttributeValueMemberS)
	if !ok {
		return "", fmt.Errorf("repository: attribute %q is not a string", key)
	}
	return s.Value, nil
}
