package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/example/checkout/internal/domain/order"
)

// DynamoOrderStore stores orders and the processed_events ledger in
// DynamoDB. Orders are keyed by session_id; a fixed-value GSI supports
// listing. Transitions use TransactWriteItems so the ledger put and the
// status update are a single atomic unit, with condition expressions
// standing in for the row locks the Postgres store relies on.
type DynamoOrderStore struct {
	client          *dynamodb.Client
	ordersTable     string
	eventsTable     string
}

// dynamoOrder represents the DynamoDB item structure
type dynamoOrder struct {
	SessionID     string `dynamodbav:"session_id"`
	ID            string `dynamodbav:"id"`
	CustomerEmail string `dynamodbav:"customer_email"`
	CustomerName  string `dynamodbav:"customer_name"`
	Items         string `dynamodbav:"items"`
	Amount        int    `dynamodbav:"amount"`
	Currency      string `dynamodbav:"currency"`
	Status        string `dynamodbav:"status"`
	CreatedAt     string `dynamodbav:"created_at"`
	UpdatedAt     string `dynamodbav:"updated_at"`
	PaidAt        string `dynamodbav:"paid_at,omitempty"`
	GSI1PK        string `dynamodbav:"gsi1pk"`
}

func NewDynamoOrderStore(client *dynamodb.Client, ordersTable, eventsTable string) *DynamoOrderStore {
	return &DynamoOrderStore{
		client:      client,
		ordersTable: ordersTable,
		eventsTable: eventsTable,
	}
}

func (s *DynamoOrderStore) CreateOrder(ctx context.Context, o *order.Order) error {
	item, err := marshalOrder(o)
	if err != nil {
		return err
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.ordersTable),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(session_id)"),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return fmt.Errorf("%w: %s", order.ErrDuplicateOrder, o.SessionID)
		}
		return fmt.Errorf("failed to put order: %w", err)
	}
	return nil
}

func (s *DynamoOrderStore) GetBySessionID(ctx context.Context, sessionID string) (*order.Order, error) {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.ordersTable),
		Key: map[string]types.AttributeValue{
			"session_id": &types.AttributeValueMemberS{Value: sessionID},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	if result.Item == nil {
		return nil, order.ErrOrderNotFound
	}
	return unmarshalOrder(result.Item)
}

func (s *DynamoOrderStore) GetByID(ctx context.Context, id string) (*order.Order, error) {
	result, err := s.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.ordersTable),
		IndexName:              aws.String("order_id_index"),
		KeyConditionExpression: aws.String("id = :id"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":id": &types.AttributeValueMemberS{Value: id},
		},
		Limit: aws.Int32(1),
	})
	if err != nil {
		return nil, err
	}
	if len(result.Items) == 0 {
		return nil, order.ErrOrderNotFound
	}
	return unmarshalOrder(result.Items[0])
}

func (s *DynamoOrderStore) ApplyTransition(ctx context.Context, eventID, sessionID string, next order.Status, at time.Time) (ApplyOutcome, error) {
	current, err := s.GetBySessionID(ctx, sessionID)
	if err != nil {
		return 0, err
	}

	ledgerPut := &types.Put{
		TableName: aws.String(s.eventsTable),
		Item: map[string]types.AttributeValue{
			"event_id":     &types.AttributeValueMemberS{Value: eventID},
			"processed_at": &types.AttributeValueMemberS{Value: at.Format(time.RFC3339Nano)},
		},
		ConditionExpression: aws.String("attribute_not_exists(event_id)"),
	}

	if current.Status.IsTerminal() {
		// Record the event only; the order stays where it is.
		_, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
			TableName:           ledgerPut.TableName,
			Item:                ledgerPut.Item,
			ConditionExpression: ledgerPut.ConditionExpression,
		})
		if err != nil {
			var ccf *types.ConditionalCheckFailedException
			if errors.As(err, &ccf) {
				return OutcomeDuplicate, nil
			}
			return 0, fmt.Errorf("failed to record event: %w", err)
		}
		return OutcomeTerminal, nil
	}

	update := &types.Update{
		TableName: aws.String(s.ordersTable),
		Key: map[string]types.AttributeValue{
			"session_id": &types.AttributeValueMemberS{Value: sessionID},
		},
		UpdateExpression:    aws.String("SET #status = :next, updated_at = :at"),
		ConditionExpression: aws.String("#status = :pending"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":next":    &types.AttributeValueMemberS{Value: string(next)},
			":pending": &types.AttributeValueMemberS{Value: string(order.StatusPending)},
			":at":      &types.AttributeValueMemberS{Value: at.Format(time.RFC3339Nano)},
		},
	}
	if next == order.StatusPaid {
		update.UpdateExpression = aws.String("SET #status = :next, updated_at = :at, paid_at = :at")
	}

	_, err = s.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Put: ledgerPut},
			{Update: update},
		},
	})
	if err != nil {
		var canceled *types.TransactionCanceledException
		if errors.As(err, &canceled) {
			for i, reason := range canceled.CancellationReasons {
				if reason.Code == nil || *reason.Code != "ConditionalCheckFailed" {
					continue
				}
				if i == 0 {
					// Ledger condition failed: someone else already
					// processed this event.
					return OutcomeDuplicate, nil
				}
				// Order condition failed: status moved under us since
				// the read above. The caller re-reads and retries.
				return 0, ErrConflict
			}
		}
		return 0, fmt.Errorf("failed to apply transition: %w", err)
	}
	return OutcomeApplied, nil
}

func (s *DynamoOrderStore) ListOrders(ctx context.Context, status order.Status) ([]*order.Order, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.ordersTable),
		IndexName:              aws.String("gsi1"),
		KeyConditionExpression: aws.String("gsi1pk = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: "ORDERS"},
		},
		ScanIndexForward: aws.Bool(false), // Descending by created_at
	}
	if status != "" {
		input.FilterExpression = aws.String("#status = :status")
		input.ExpressionAttributeNames = map[string]string{"#status": "status"}
		input.ExpressionAttributeValues[":status"] = &types.AttributeValueMemberS{Value: string(status)}
	}

	result, err := s.client.Query(ctx, input)
	if err != nil {
		return nil, err
	}

	orders := make([]*order.Order, 0, len(result.Items))
	for _, item := range result.Items {
		o, err := unmarshalOrder(item)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}

func marshalOrder(o *order.Order) (map[string]types.AttributeValue, error) {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return nil, err
	}

	item := dynamoOrder{
		SessionID:     o.SessionID,
		ID:            o.ID,
		CustomerEmail: o.CustomerEmail,
		CustomerName:  o.CustomerName,
		Items:         string(items),
		Amount:        o.Amount,
		Currency:      o.Currency,
		Status:        string(o.Status),
		CreatedAt:     o.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt:     o.UpdatedAt.Format(time.RFC3339Nano),
		GSI1PK:        "ORDERS", // Fixed value for GSI1 to enable ListOrders
	}
	if o.PaidAt != nil {
		item.PaidAt = o.PaidAt.Format(time.RFC3339Nano)
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal order: %w", err)
	}
	return av, nil
}

func unmarshalOrder(av map[string]types.AttributeValue) (*order.Order, error) {
	var item dynamoOrder
	if err := attributevalue.UnmarshalMap(av, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal order: %w", err)
	}

	o := &order.Order{
		ID:            item.ID,
		SessionID:     item.SessionID,
		CustomerEmail: item.CustomerEmail,
		CustomerName:  item.CustomerName,
		Amount:        item.Amount,
		Currency:      item.Currency,
		Status:        order.Status(item.Status),
	}
	if err := json.Unmarshal([]byte(item.Items), &o.Items); err != nil {
		return nil, err
	}

	var err error
	if o.CreatedAt, err = time.Parse(time.RFC3339Nano, item.CreatedAt); err != nil {
		return nil, err
	}
	if o.UpdatedAt, err = time.Parse(time.RFC3339Nano, item.UpdatedAt); err != nil {
		return nil, err
	}
	if item.PaidAt != "" {
		paidAt, err := time.Parse(time.RFC3339Nano, item.PaidAt)
		if err != nil {
			return nil, err
		}
		o.PaidAt = &paidAt
	}
	return o, nil
}
