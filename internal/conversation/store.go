package conversation

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

	"training-bridge/internal/domain"
)

// dynamodbAPI is the minimal DynamoDB interface required by Store.
// Defined here for testability.
type dynamodbAPI interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, in *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// Store wraps the DynamoDB conversation table. Records are keyed
// (thread_id, timestamp) and expire passively via expires_at; expired
// records are filtered out of reads because DynamoDB TTL deletion lags.
type Store struct {
	api       dynamodbAPI
	tableName string
	now       func() time.Time
}

// New creates a conversation Store over the given table.
func New(api dynamodbAPI, tableName string) (*Store, error) {
	if api == nil {
		return nil, errors.New("conversation: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("conversation: table name must not be empty")
	}
	return &Store{api: api, tableName: tableName, now: time.Now}, nil
}

// Append inserts a new turn for the thread. Callers treat a returned error
// as a non-fatal side effect: history loss is tolerated, failing the turn
// that produced the message is not.
func (s *Store) Append(ctx context.Context, threadID, role, text string, agent domain.Agent, ttlDays int) error {
	if strings.TrimSpace(threadID) == "" {
		return errors.New("conversation: Append: thread id is required")
	}
	if ttlDays <= 0 {
		return fmt.Errorf("conversation: Append: ttl days must be positive, got %d", ttlDays)
	}
	now := s.now().UTC()
	item := map[string]types.AttributeValue{
		"thread_id":    &types.AttributeValueMemberS{Value: threadID},
		"timestamp":    &types.AttributeValueMemberS{Value: now.Format(time.RFC3339Nano)},
		"role":         &types.AttributeValueMemberS{Value: role},
		"message_text": &types.AttributeValueMemberS{Value: text},
		"agent":        &types.AttributeValueMemberS{Value: string(agent)},
		"expires_at":   &types.AttributeValueMemberN{Value: strconv.FormatInt(now.Add(time.Duration(ttlDays)*24*time.Hour).Unix(), 10)},
	}
	_, err := s.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("conversation: Append: %w", err)
	}
	return nil
}

// History returns the thread's non-expired turns in chronological order as
// role/content pairs ready for prompt assembly. Unknown threads yield an
// empty slice.
func (s *Store) History(ctx context.Context, threadID string) ([]domain.ChatMessage, error) {
	out, err := s.api.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.tableName),
		KeyConditionExpression: aws.String("thread_id = :t"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":t": &types.AttributeValueMemberS{Value: threadID},
		},
		ScanIndexForward: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("conversation: History query: %w", err)
	}

	cutoff := s.now().Unix()
	msgs := make([]domain.ChatMessage, 0, len(out.Items))
	for _, item := range out.Items {
		rec, err := itemToRecord(item)
		if err != nil {
			return nil, fmt.Errorf("conversation: History unmarshal: %w", err)
		}
		if rec.ExpiresAt != 0 && rec.ExpiresAt <= cutoff {
			continue
		}
		msgs = append(msgs, domain.ChatMessage{Role: rec.Role, Content: rec.Text})
	}
	return msgs, nil
}

// LastOwner returns the agent tag of the thread's most recent record. The
// second return is false when the thread has no records at all.
func (s *Store) LastOwner(ctx context.Context, threadID string) (domain.Agent, bool, error) {
	out, err := s.api.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.tableName),
		KeyConditionExpression: aws.String("thread_id = :t"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":t": &types.AttributeValueMemberS{Value: threadID},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(1),
	})
	if err != nil {
		return domain.AgentUnknown, false, fmt.Errorf("conversation: LastOwner query: %w", err)
	}
	if len(out.Items) == 0 {
		return domain.AgentUnknown, false, nil
	}
	tag, err := strAttr(out.Items[0], "agent")
	if err != nil {
		return domain.AgentUnknown, false, fmt.Errorf("conversation: LastOwner decode: %w", err)
	}
	return domain.ParseAgent(tag), true, nil
}

func itemToRecord(item map[string]types.AttributeValue) (domain.ConversationRecord, error) {
	threadID, err := strAttr(item, "thread_id")
	if err != nil {
		return domain.ConversationRecord{}, err
	}
	ts, err := strAttr(item, "timestamp")
	if err != nil {
		return domain.ConversationRecord{}, err
	}
	role, err := strAttr(item, "role")
	if err != nil {
		return domain.ConversationRecord{}, err
	}
	text, err := strAttr(item, "message_text")
	if err != nil {
		return domain.ConversationRecord{}, err
	}
	tag, _ := strAttr(item, "agent") // allow empty
	expiresAt, err := int64Attr(item, "expires_at")
	if err != nil {
		return domain.ConversationRecord{}, err
	}
	return domain.ConversationRecord{
		ThreadID:  threadID,
		Timestamp: ts,
		Role:      role,
		Text:      text,
		Agent:     domain.ParseAgent(tag),
		ExpiresAt: expiresAt,
	}, nil
}

func strAttr(item map[string]types.AttributeValue, key string) (string, error) {
	v, ok := item[key]
	if !ok {
		return "", fmt.Errorf("conversation: missing attribute %q", key)
	}
	s, ok := v.(*types.AttributeValueMemberS)
	if !ok {
		return "", fmt.Errorf("conversation: attribute %q is not a string", key)
	}
	return s.Value, nil
}

func int64Attr(item map[string]types.AttributeValue, key string) (int64, error) {
	v, ok := item[key]
	if !ok {
		return 0, nil
	}
	n, ok := v.(*types.AttributeValueMemberN)
	if !ok {
		return 0, fmt.Errorf("conversation: attribute %q is not a number", key)
	}
	parsed, err := strconv.ParseInt(n.Value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("conversation: parse attribute %q: %w", key, err)
	}
	return parsed, nil
}
