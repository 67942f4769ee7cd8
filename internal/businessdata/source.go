// Package businessdata loads the read-only tenant business profile from
// DynamoDB. Profiles are stored per language as one JSON document and are
// fetched fresh on every request; this layer does no caching.
package businessdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"studio-assistant/internal/domain"
)

// dynamodbAPI is the minimal DynamoDB interface required by Source.
type dynamodbAPI interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
}

// Source reads business profiles for one tenant namespace.
type Source struct {
	api             dynamodbAPI
	tableName       string
	namespace       string
	defaultLanguage string
}

// New creates a Source scoped to a tenant namespace.
func New(api dynamodbAPI, tableName, namespace, defaultLanguage string) (*Source, error) {
	if api == nil {
		return nil, errors.New("businessdata: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("businessdata: table name must not be empty")
	}
	if strings.TrimSpace(namespace) == "" {
		return nil, errors.New("businessdata: namespace must not be empty")
	}
	if strings.TrimSpace(defaultLanguage) == "" {
		return nil, errors.New("businessdata: default language must not be empty")
	}
	return &Source{api: api, tableName: tableName, namespace: namespace, defaultLanguage: defaultLanguage}, nil
}

// Profile returns the business profile for a language, falling back to the
// default language and finally to an empty profile when nothing is stored.
func (s *Source) Profile(ctx context.Context, language string) (domain.BusinessProfile, error) {
	doc, err := s.document(ctx, language)
	if err != nil {
		return domain.BusinessProfile{}, err
	}
	if doc == "" && language != s.defaultLanguage {
		doc, err = s.document(ctx, s.defaultLanguage)
		if err != nil {
			return domain.BusinessProfile{}, err
		}
	}
	if doc == "" {
		return domain.BusinessProfile{}, nil
	}

	var profile domain.BusinessProfile
	if err := json.Unmarshal([]byte(doc), &profile); err != nil {
		return domain.BusinessProfile{}, fmt.Errorf("businessdata: decode profile: %w", err)
	}
	return profile, nil
}

func (s *Source) document(ctx context.Context, language string) (string, error) {
	out, err := s.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: "TENANT#" + s.namespace},
			"SK": &types.AttributeValueMemberS{Value: "PROFILE#" + language},
		},
	})
	if err != nil {
		return "", fmt.Errorf("businessdata: get profile %s: %w", language, err)
	}
	if out == nil || len(out.Item) == 0 {
		return "", nil
	}
	data, ok := out.Item["data"]
	if !ok {
		return "", nil
	}
	str, ok := data.(*types.AttributeValueMemberS)
	if !ok {
		return "", errors.New("businessdata: profile data is not a string")
	}
	return str.Value, nil
}
