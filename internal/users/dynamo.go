package users

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type dynamoAPI interface {
	PutItem(context.Context, *dynamodb.PutItemInput, ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(context.Context, *dynamodb.GetItemInput, ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Scan(context.Context, *dynamodb.ScanInput, ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// DynamoStore stores frequencies in a DynamoDB table keyed by userId.
type DynamoStore struct {
	client    dynamoAPI
	tableName string
}

var _ Store = (*DynamoStore)(nil)

// NewDynamoStore builds a store backed by the provided DynamoDB client.
func NewDynamoStore(client dynamoAPI, tableName string) *DynamoStore {
	if client == nil {
		panic("users: dynamodb client cannot be nil")
	}
	if tableName == "" {
		panic("users: table name cannot be empty")
	}
	return &DynamoStore{client: client, tableName: tableName}
}

// Register puts userID with FrequencyUnset only when no item exists for it.
func (s *DynamoStore) Register(ctx context.Context, userID string) error {
	item, err := attributevalue.MarshalMap(User{ID: userID, Frequency: FrequencyUnset})
	if err != nil {
		return fmt.Errorf("users: marshal %s: %w", userID, err)
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(userId)"),
	})
	var exists *types.ConditionalCheckFailedException
	if errors.As(err, &exists) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("users: register %s: %w", userID, err)
	}
	return nil
}

// Save puts the frequency for userID, replacing any previous item.
func (s *DynamoStore) Save(ctx context.Context, userID string, frequency int) error {
	if err := ValidateFrequency(frequency); err != nil {
		return err
	}
	item, err := attributevalue.MarshalMap(User{ID: userID, Frequency: frequency})
	if err != nil {
		return fmt.Errorf("users: marshal %s: %w", userID, err)
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("users: save %s: %w", userID, err)
	}
	return nil
}

// ListUsers scans the table for every user ID.
func (s *DynamoStore) ListUsers(ctx context.Context) ([]string, error) {
	return s.scan(ctx, &dynamodb.ScanInput{
		TableName: aws.String(s.tableName),
	})
}

// ListUsersWithFrequencyAtLeast scans with a frequency >= n filter.
func (s *DynamoStore) ListUsersWithFrequencyAtLeast(ctx context.Context, n int) ([]string, error) {
	return s.scan(ctx, &dynamodb.ScanInput{
		TableName:        aws.String(s.tableName),
		FilterExpression: aws.String("#f >= :n"),
		ExpressionAttributeNames: map[string]string{
			"#f": "frequency",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":n": &types.AttributeValueMemberN{Value: strconv.Itoa(n)},
		},
	})
}

// GetFrequency reads the item consistently, FrequencyUnset when absent.
func (s *DynamoStore) GetFrequency(ctx context.Context, userID string) (int, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.tableName),
		Key:            map[string]types.AttributeValue{"userId": &types.AttributeValueMemberS{Value: userID}},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return FrequencyUnset, fmt.Errorf("users: get frequency %s: %w", userID, err)
	}
	if len(out.Item) == 0 {
		return FrequencyUnset, nil
	}
	var u User
	if err := attributevalue.UnmarshalMap(out.Item, &u); err != nil {
		return FrequencyUnset, fmt.Errorf("users: unmarshal %s: %w", userID, err)
	}
	return u.Frequency, nil
}

// scan follows LastEvaluatedKey until the table is exhausted.
func (s *DynamoStore) scan(ctx context.Context, input *dynamodb.ScanInput) ([]string, error) {
	var ids []string
	for {
		out, err := s.client.Scan(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("users: scan %s: %w", s.tableName, err)
		}
		var page []User
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, fmt.Errorf("users: unmarshal scan page: %w", err)
		}
		for _, u := range page {
			ids = append(ids, u.ID)
		}
		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
	sort.Strings(ids)
	return ids, nil
}
